package keeper_test

import (
	"errors"
	"testing"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/api3dao/airnode-protocol-v1-sub003/testutil/keeper"
	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/keeper"
)

func TestTryMulticallIsolatesItems(t *testing.T) {
	k, _, ctx := keepertest.DataFeedKeeper(t)
	key := []byte("scratch")
	store := func(ctx sdk.Context) storetypes.KVStore { return ctx.KVStore(k.StoreKey()) }

	results := keeper.TryMulticall(ctx, []keeper.Call{
		func(ctx sdk.Context) ([]byte, error) {
			store(ctx).Set(key, []byte("first"))
			return []byte("ok"), nil
		},
		func(ctx sdk.Context) ([]byte, error) {
			store(ctx).Set(key, []byte("discarded"))
			return nil, errors.New("boom")
		},
		func(ctx sdk.Context) ([]byte, error) {
			store(ctx).Set(key, []byte("also discarded"))
			panic("unexpected")
		},
		func(ctx sdk.Context) ([]byte, error) {
			// sees the first call's write
			return store(ctx).Get(key), nil
		},
	})

	require.Len(t, results, 4)
	require.True(t, results[0].Success)
	require.Equal(t, []byte("ok"), results[0].ReturnData)
	require.False(t, results[1].Success)
	require.EqualError(t, results[1].Err, "boom")
	require.False(t, results[2].Success)
	require.ErrorContains(t, results[2].Err, "unexpected")
	require.True(t, results[3].Success)
	require.Equal(t, []byte("first"), results[3].ReturnData)

	require.Equal(t, []byte("first"), store(ctx).Get(key))
}

func TestTryMulticallPropagatesOutOfGas(t *testing.T) {
	_, _, ctx := keepertest.DataFeedKeeper(t)

	require.Panics(t, func() {
		keeper.TryMulticall(ctx, []keeper.Call{
			func(ctx sdk.Context) ([]byte, error) {
				panic(storetypes.ErrorOutOfGas{Descriptor: "test"})
			},
		})
	})
}
