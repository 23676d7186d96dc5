package types

import (
	"errors"

	sdkerrors "cosmossdk.io/errors"
)

// Datafeed module sentinel errors
var (
	// Aggregation errors
	ErrCapacityExceeded = sdkerrors.Register(ModuleName, 2, "capacity exceeded")
	ErrEmptyInput       = sdkerrors.Register(ModuleName, 3, "empty input")
	ErrInvalidBeaconSet = sdkerrors.Register(ModuleName, 4, "invalid beacon set")

	// Update errors
	ErrInvalidSignature    = sdkerrors.Register(ModuleName, 10, "invalid signature")
	ErrFutureTimestamp     = sdkerrors.Register(ModuleName, 11, "timestamp too far in the future")
	ErrInvalidValue        = sdkerrors.Register(ModuleName, 12, "invalid data feed value")
	ErrUninitializedBeacon = sdkerrors.Register(ModuleName, 13, "beacon not initialized")

	// Read errors
	ErrNotInitialized  = sdkerrors.Register(ModuleName, 20, "data feed not initialized")
	ErrInvalidDapiName = sdkerrors.Register(ModuleName, 21, "invalid dAPI name")

	// OEV errors
	ErrNotBeneficiary         = sdkerrors.Register(ModuleName, 30, "caller is not the OEV beneficiary")
	ErrStaleOverride          = sdkerrors.Register(ModuleName, 31, "OEV override is not fresher than the data feed")
	ErrInsufficientSignatures = sdkerrors.Register(ModuleName, 32, "not enough valid signatures")

	// Access and registry errors
	ErrUnauthorized         = sdkerrors.Register(ModuleName, 40, "account does not hold the required role")
	ErrProxyAlreadyDeployed = sdkerrors.Register(ModuleName, 41, "proxy already deployed")
	ErrProxyNotFound        = sdkerrors.Register(ModuleName, 42, "proxy not found")

	// Configuration errors
	ErrInvalidParams  = sdkerrors.Register(ModuleName, 50, "invalid params")
	ErrInvalidGenesis = sdkerrors.Register(ModuleName, 51, "invalid genesis state")
)

// RecoverySuggestions maps errors to the action a caller should take.
var RecoverySuggestions = map[error]string{
	ErrCapacityExceeded:    "Split the input so that no sort exceeds 9 elements and no median or beacon set exceeds 21.",
	ErrEmptyInput:          "Provide at least one value to aggregate.",
	ErrInvalidBeaconSet:    "A beacon set needs at least two member beacon IDs.",
	ErrInvalidSignature:    "Check that the airnode signed keccak256(templateId, timestamp, data) as an EIP-191 message with the key of the submitted address.",
	ErrFutureTimestamp:     "The observation timestamp is ahead of block time by more than the tolerance. Check the airnode clock.",
	ErrInvalidValue:        "Data must be a 32-byte ABI-encoded int256 that fits in int224.",
	ErrUninitializedBeacon: "Update every member beacon at least once before aggregating the set.",
	ErrNotInitialized:      "The data feed or dAPI name has never been written. Update the feed or set the dAPI name first.",
	ErrNotBeneficiary:      "Only the registered OEV beneficiary of the data feed may use the OEV read path.",
	ErrStaleOverride:       "The OEV update must carry a timestamp newer than the stored data feed.",
	ErrUnauthorized:        "Ask the manager to grant the role to this account.",

	ErrInsufficientSignatures: "More than half of the data feed's airnodes must sign the OEV update for this updater and bid.",
	ErrInvalidDapiName:        "A dAPI name must be a non-empty string of at most 32 bytes, such as ETH/USD.",
	ErrProxyAlreadyDeployed:   "A proxy with this binding exists. Use it, or change the metadata to deploy another.",
	ErrProxyNotFound:          "Deploy the proxy first, or compute its address from the binding and the server address.",
	ErrInvalidParams:          "Check the parameter bounds: the future timestamp tolerance must be between 1 and 86400 seconds, and IDs must be nonzero.",
}

// GetRecoverySuggestion returns the recovery suggestion for an error
func GetRecoverySuggestion(err error) string {
	for _, target := range []error{
		ErrCapacityExceeded, ErrEmptyInput, ErrInvalidBeaconSet, ErrInvalidSignature,
		ErrFutureTimestamp, ErrInvalidValue, ErrUninitializedBeacon, ErrNotInitialized,
		ErrNotBeneficiary, ErrStaleOverride, ErrInsufficientSignatures, ErrUnauthorized,
		ErrInvalidDapiName, ErrProxyAlreadyDeployed, ErrProxyNotFound, ErrInvalidParams,
	} {
		if errors.Is(err, target) {
			return RecoverySuggestions[target]
		}
	}
	return "No recovery suggestion available. Check error message for details."
}
