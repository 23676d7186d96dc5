package types

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// DapiNameSetterRole may point dAPI names at data feeds.
	DapiNameSetterRole = RoleID("dAPI name setter")

	// OevBeneficiarySetterRole may register OEV beneficiaries.
	OevBeneficiarySetterRole = RoleID("OEV beneficiary setter")
)

// RoleID derives a role identifier from its description.
func RoleID(description string) common.Hash {
	return crypto.Keccak256Hash([]byte(description))
}

// AccessControl is the role registry the module consults for privileged
// registrations. It is never consulted by the aggregation path.
type AccessControl interface {
	HasRole(ctx context.Context, role common.Hash, account common.Address) bool
}
