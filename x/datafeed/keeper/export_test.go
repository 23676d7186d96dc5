package keeper

// This file exports private keeper state for testing purposes.

import (
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// StoreKey exposes the module store key.
func (k Keeper) StoreKey() storetypes.StoreKey {
	return k.storeKey
}

// SetRawRecord writes bz as the record of dataFeedID without validation.
func (k Keeper) SetRawRecord(ctx sdk.Context, dataFeedID common.Hash, bz []byte) {
	ctx.KVStore(k.storeKey).Set(types.DataFeedKey(dataFeedID), bz)
}
