package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// ReadDataFeedWithID returns the stored value and timestamp of a beacon or
// beacon set.
func (k Keeper) ReadDataFeedWithID(ctx sdk.Context, dataFeedID common.Hash) (types.DataFeed, error) {
	ctx.GasMeter().ConsumeGas(gasRecordRead, "datafeed_read")

	feed, err := k.getDataFeed(ctx, dataFeedID)
	if err != nil {
		return types.DataFeed{}, err
	}
	if !feed.IsInitialized() {
		k.metrics.Reads.WithLabelValues("data_feed", "not_initialized").Inc()
		return types.DataFeed{}, errorsmod.Wrapf(types.ErrNotInitialized, "data feed %s", dataFeedID.Hex())
	}
	k.metrics.Reads.WithLabelValues("data_feed", "ok").Inc()
	return feed, nil
}

// ReadDataFeedWithDapiNameHash resolves a dAPI name hash and reads its data feed.
func (k Keeper) ReadDataFeedWithDapiNameHash(ctx sdk.Context, dapiNameHash common.Hash) (types.DataFeed, error) {
	dataFeedID := k.DapiNameHashToDataFeedID(ctx, dapiNameHash)
	if dataFeedID == (common.Hash{}) {
		k.metrics.Reads.WithLabelValues("dapi", "not_initialized").Inc()
		return types.DataFeed{}, errorsmod.Wrapf(types.ErrNotInitialized, "dAPI name hash %s not set", dapiNameHash.Hex())
	}
	return k.ReadDataFeedWithID(ctx, dataFeedID)
}

// ReadDataFeedWithDapiName reads the data feed a dAPI name such as "ETH/USD" points to.
func (k Keeper) ReadDataFeedWithDapiName(ctx sdk.Context, name string) (types.DataFeed, error) {
	dapiName, err := types.DapiNameToBytes32(name)
	if err != nil {
		return types.DataFeed{}, err
	}
	return k.ReadDataFeedWithDapiNameHash(ctx, types.DeriveDapiNameHash(dapiName))
}

// GetAllDataFeeds returns every stored record.
func (k Keeper) GetAllDataFeeds(ctx sdk.Context) []types.GenesisDataFeed {
	store := prefix.NewStore(ctx.KVStore(k.storeKey), types.DataFeedKeyPrefix)
	iter := storetypes.KVStorePrefixIterator(store, nil)
	defer iter.Close()

	feeds := []types.GenesisDataFeed{}
	for ; iter.Valid(); iter.Next() {
		feed, err := types.UnmarshalDataFeed(iter.Value())
		if err != nil {
			k.Logger(ctx).Error("skipping corrupt data feed record", "key", common.Bytes2Hex(iter.Key()), "error", err)
			continue
		}
		feeds = append(feeds, types.GenesisDataFeed{
			DataFeedID: common.BytesToHash(iter.Key()),
			Value:      feed.Int(),
			Timestamp:  feed.Timestamp,
		})
	}
	return feeds
}
