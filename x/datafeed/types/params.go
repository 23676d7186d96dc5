package types

import (
	"fmt"
)

const (
	// DefaultFutureTimestampTolerance is how far, in seconds, an observation
	// may be ahead of block time.
	DefaultFutureTimestampTolerance uint32 = 3600

	// MaxFutureTimestampTolerance caps the tolerance at one day.
	MaxFutureTimestampTolerance uint32 = 86400
)

// Params defines the parameters for the datafeed module.
type Params struct {
	FutureTimestampTolerance uint32 `json:"future_timestamp_tolerance"`
}

// DefaultParams returns default datafeed parameters
func DefaultParams() Params {
	return Params{
		FutureTimestampTolerance: DefaultFutureTimestampTolerance,
	}
}

// Validate performs basic validation of datafeed parameters
func (p Params) Validate() error {
	if p.FutureTimestampTolerance == 0 {
		return fmt.Errorf("future timestamp tolerance must be positive")
	}
	if p.FutureTimestampTolerance > MaxFutureTimestampTolerance {
		return fmt.Errorf("future timestamp tolerance %d exceeds %d", p.FutureTimestampTolerance, MaxFutureTimestampTolerance)
	}
	return nil
}
