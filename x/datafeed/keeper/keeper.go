package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// Keeper owns every beacon, beacon set, dAPI name and OEV beneficiary record
// of the datafeed module.
type Keeper struct {
	storeKey      storetypes.StoreKey
	accessControl types.AccessControl
	manager       common.Address // holds every role
	server        common.Address // address signatures and proxies are bound to
	metrics       *DataFeedMetrics
}

// NewKeeper creates a new datafeed Keeper instance
func NewKeeper(
	storeKey storetypes.StoreKey,
	accessControl types.AccessControl,
	manager common.Address,
	server common.Address,
) *Keeper {
	return &Keeper{
		storeKey:      storeKey,
		accessControl: accessControl,
		manager:       manager,
		server:        server,
		metrics:       NewDataFeedMetrics(),
	}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// Manager returns the account that implicitly holds every role.
func (k Keeper) Manager() common.Address {
	return k.manager
}

// ServerAddress returns the address OEV signatures and proxy addresses are bound to.
func (k Keeper) ServerAddress() common.Address {
	return k.server
}

// GetParams gets all parameters from the store
func (k Keeper) GetParams(ctx sdk.Context) types.Params {
	bz := ctx.KVStore(k.storeKey).Get(types.ParamsKey)
	if bz == nil {
		return types.DefaultParams()
	}

	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		k.Logger(ctx).Error("failed to unmarshal params, using defaults", "error", err)
		return types.DefaultParams()
	}
	return params
}

// SetParams sets the module parameters
func (k Keeper) SetParams(ctx sdk.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %s", types.ErrInvalidParams, err)
	}

	bz, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}

	ctx.KVStore(k.storeKey).Set(types.ParamsKey, bz)
	return nil
}

// hasRole reports whether account holds role or is the manager.
func (k Keeper) hasRole(ctx sdk.Context, role common.Hash, account common.Address) bool {
	if account == k.manager {
		return true
	}
	return k.accessControl != nil && k.accessControl.HasRole(ctx, role, account)
}

// getDataFeed returns the stored record, or a zero record if none exists.
func (k Keeper) getDataFeed(ctx sdk.Context, dataFeedID common.Hash) (types.DataFeed, error) {
	bz := ctx.KVStore(k.storeKey).Get(types.DataFeedKey(dataFeedID))
	if bz == nil {
		return types.DataFeed{}, nil
	}
	return types.UnmarshalDataFeed(bz)
}

func (k Keeper) setDataFeed(ctx sdk.Context, dataFeedID common.Hash, feed types.DataFeed) error {
	bz, err := feed.Marshal()
	if err != nil {
		return err
	}
	ctx.KVStore(k.storeKey).Set(types.DataFeedKey(dataFeedID), bz)
	return nil
}

// checkTimestamp rejects timestamps beyond the future tolerance.
func (k Keeper) checkTimestamp(ctx sdk.Context, timestamp uint32) error {
	tolerance := int64(k.GetParams(ctx).FutureTimestampTolerance)
	now := ctx.BlockTime().Unix()
	if int64(timestamp) > now+tolerance {
		return fmt.Errorf("%w: %d is %d seconds ahead of block time (tolerance %d)",
			types.ErrFutureTimestamp, timestamp, int64(timestamp)-now, tolerance)
	}
	return nil
}
