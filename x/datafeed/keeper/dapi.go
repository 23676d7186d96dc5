package keeper

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// SetDapiName points dapiName at a data feed. A zero dataFeedID unsets it.
// The sender must hold the dAPI name setter role.
func (k Keeper) SetDapiName(ctx sdk.Context, sender common.Address, dapiName common.Hash, dataFeedID common.Hash) error {
	if !k.hasRole(ctx, types.DapiNameSetterRole, sender) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot set dAPI names", sender.Hex())
	}
	if dapiName == (common.Hash{}) {
		return errorsmod.Wrap(types.ErrInvalidDapiName, "dAPI name is zero")
	}

	dapiNameHash := types.DeriveDapiNameHash(dapiName)
	k.setDapiNameHash(ctx, dapiNameHash, dataFeedID)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeDapiNameSet,
			sdk.NewAttribute(types.AttributeKeyDapiName, strings.TrimRight(string(dapiName.Bytes()), "\x00")),
			sdk.NewAttribute(types.AttributeKeyDapiNameHash, dapiNameHash.Hex()),
			sdk.NewAttribute(types.AttributeKeyDataFeedID, dataFeedID.Hex()),
			sdk.NewAttribute(types.AttributeKeySender, sender.Hex()),
		),
	)
	k.Logger(ctx).Info("dAPI name set", "dapi_name_hash", dapiNameHash.Hex(), "data_feed_id", dataFeedID.Hex())
	return nil
}

func (k Keeper) setDapiNameHash(ctx sdk.Context, dapiNameHash, dataFeedID common.Hash) {
	store := ctx.KVStore(k.storeKey)
	if dataFeedID == (common.Hash{}) {
		store.Delete(types.DapiNameKey(dapiNameHash))
		return
	}
	store.Set(types.DapiNameKey(dapiNameHash), dataFeedID.Bytes())
}

// DapiNameHashToDataFeedID returns the data feed a dAPI name hash points to,
// or the zero hash if unset.
func (k Keeper) DapiNameHashToDataFeedID(ctx sdk.Context, dapiNameHash common.Hash) common.Hash {
	bz := ctx.KVStore(k.storeKey).Get(types.DapiNameKey(dapiNameHash))
	if bz == nil {
		return common.Hash{}
	}
	return common.BytesToHash(bz)
}

// DapiNameToDataFeedID returns the data feed a bytes32 dAPI name points to.
func (k Keeper) DapiNameToDataFeedID(ctx sdk.Context, dapiName common.Hash) common.Hash {
	return k.DapiNameHashToDataFeedID(ctx, types.DeriveDapiNameHash(dapiName))
}

// GetAllDapiNames returns every dAPI name mapping.
func (k Keeper) GetAllDapiNames(ctx sdk.Context) []types.GenesisDapiName {
	store := prefix.NewStore(ctx.KVStore(k.storeKey), types.DapiNameKeyPrefix)
	iter := storetypes.KVStorePrefixIterator(store, nil)
	defer iter.Close()

	names := []types.GenesisDapiName{}
	for ; iter.Valid(); iter.Next() {
		names = append(names, types.GenesisDapiName{
			DapiNameHash: common.BytesToHash(iter.Key()),
			DataFeedID:   common.BytesToHash(iter.Value()),
		})
	}
	return names
}
