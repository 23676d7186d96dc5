package types

// UpdateStatus is the outcome of a data feed update.
type UpdateStatus uint8

const (
	// UpdateApplied means the record was written.
	UpdateApplied UpdateStatus = iota + 1
	// UpdateIgnoredStale means the update was valid but not newer than the
	// stored record, so nothing was written and no error is raised.
	UpdateIgnoredStale
	// UpdateRejected means the update failed validation.
	UpdateRejected
)

func (s UpdateStatus) String() string {
	switch s {
	case UpdateApplied:
		return "applied"
	case UpdateIgnoredStale:
		return "ignored_stale"
	case UpdateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// UpdateResult distinguishes malformed or unauthorized updates (Rejected,
// with Reason) from merely outdated ones (IgnoredStale).
type UpdateResult struct {
	Status UpdateStatus
	Reason error
}

// Applied returns an UpdateApplied result.
func Applied() UpdateResult { return UpdateResult{Status: UpdateApplied} }

// IgnoredStale returns an UpdateIgnoredStale result.
func IgnoredStale() UpdateResult { return UpdateResult{Status: UpdateIgnoredStale} }

// Rejected returns an UpdateRejected result carrying reason.
func Rejected(reason error) UpdateResult { return UpdateResult{Status: UpdateRejected, Reason: reason} }

// Ok reports whether the update was accepted, written or not.
func (r UpdateResult) Ok() bool {
	return r.Status == UpdateApplied || r.Status == UpdateIgnoredStale
}
