package keeper

import (
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// RegisterInvariants registers all datafeed module invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "record-validity",
		RecordValidityInvariant(k))
	ir.RegisterRoute(types.ModuleName, "dapi-name-targets",
		DapiNameTargetInvariant(k))
	ir.RegisterRoute(types.ModuleName, "proxy-addresses",
		ProxyAddressInvariant(k))
}

// AllInvariants runs all invariants of the datafeed module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := RecordValidityInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		res, stop = DapiNameTargetInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return ProxyAddressInvariant(k)(ctx)
	}
}

// RecordValidityInvariant checks that every stored record decodes and has a
// nonzero timestamp. The future tolerance only gates admission, so records
// accepted under an earlier tolerance stay valid.
func RecordValidityInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string

		store := ctx.KVStore(k.storeKey)
		iter := storetypes.KVStorePrefixIterator(store, types.DataFeedKeyPrefix)
		defer iter.Close()

		for ; iter.Valid(); iter.Next() {
			id := common.BytesToHash(iter.Key()[len(types.DataFeedKeyPrefix):])
			feed, err := types.UnmarshalDataFeed(iter.Value())
			if err != nil {
				issues = append(issues, fmt.Sprintf("data feed %s: %v", id.Hex(), err))
				continue
			}
			if feed.Timestamp == 0 {
				issues = append(issues, fmt.Sprintf("data feed %s stored with zero timestamp", id.Hex()))
			}
		}

		return formatInvariant("record-validity", "invalid records", issues)
	}
}

// DapiNameTargetInvariant checks that no dAPI name points at the zero ID.
func DapiNameTargetInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string
		for _, d := range k.GetAllDapiNames(ctx) {
			if d.DataFeedID == (common.Hash{}) {
				issues = append(issues, fmt.Sprintf("dAPI name hash %s stored with zero data feed ID", d.DapiNameHash.Hex()))
			}
		}
		return formatInvariant("dapi-name-targets", "invalid dAPI names", issues)
	}
}

// ProxyAddressInvariant checks that every proxy is stored at the address its
// binding derives.
func ProxyAddressInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var issues []string
		for addr, b := range k.GetAllProxies(ctx) {
			if want := k.ComputeProxyAddress(b); want != addr {
				issues = append(issues, fmt.Sprintf("proxy %s should be at %s", addr.Hex(), want.Hex()))
			}
		}
		return formatInvariant("proxy-addresses", "misplaced proxies", issues)
	}
}

func formatInvariant(route, what string, issues []string) (string, bool) {
	var msg string
	if len(issues) > 0 {
		msg = fmt.Sprintf("%d %s:\n", len(issues), what)
		for _, issue := range issues {
			msg += fmt.Sprintf("  - %s\n", issue)
		}
	}
	return sdk.FormatInvariant(types.ModuleName, route, msg), len(issues) > 0
}
