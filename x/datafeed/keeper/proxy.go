package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

const gasProxyDeploy = 30000

// ComputeProxyAddress returns the address binding would be deployed to.
func (k Keeper) ComputeProxyAddress(binding types.ProxyBinding) common.Address {
	return binding.Address(k.server)
}

// DeployProxy records binding at its deterministic address. Deploying the
// same binding twice fails.
func (k Keeper) DeployProxy(ctx sdk.Context, binding types.ProxyBinding) (common.Address, error) {
	ctx.GasMeter().ConsumeGas(gasProxyDeploy, "datafeed_deploy_proxy")

	if err := binding.Validate(); err != nil {
		return common.Address{}, err
	}
	addr := k.ComputeProxyAddress(binding)
	store := ctx.KVStore(k.storeKey)
	if store.Has(types.ProxyKey(addr)) {
		return common.Address{}, errorsmod.Wrapf(types.ErrProxyAlreadyDeployed, "%s", addr.Hex())
	}
	store.Set(types.ProxyKey(addr), binding.Marshal())

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeProxyDeployed,
			sdk.NewAttribute(types.AttributeKeyProxy, addr.Hex()),
			sdk.NewAttribute(types.AttributeKeyProxyKind, binding.Kind.String()),
			sdk.NewAttribute(types.AttributeKeyDataFeedID, binding.ID.Hex()),
			sdk.NewAttribute(types.AttributeKeyBeneficiary, binding.OevBeneficiary.Hex()),
		),
	)
	k.Logger(ctx).Info("proxy deployed", "proxy", addr.Hex(), "kind", binding.Kind.String(), "id", binding.ID.Hex())
	k.metrics.ProxiesDeployed.WithLabelValues(binding.Kind.String()).Inc()
	return addr, nil
}

// GetProxyBinding returns the binding deployed at addr.
func (k Keeper) GetProxyBinding(ctx sdk.Context, addr common.Address) (types.ProxyBinding, error) {
	bz := ctx.KVStore(k.storeKey).Get(types.ProxyKey(addr))
	if bz == nil {
		return types.ProxyBinding{}, errorsmod.Wrapf(types.ErrProxyNotFound, "%s", addr.Hex())
	}
	return types.UnmarshalProxyBinding(bz)
}

// GetAllProxies returns every deployed proxy keyed by address.
func (k Keeper) GetAllProxies(ctx sdk.Context) map[common.Address]types.ProxyBinding {
	store := prefix.NewStore(ctx.KVStore(k.storeKey), types.ProxyKeyPrefix)
	iter := storetypes.KVStorePrefixIterator(store, nil)
	defer iter.Close()

	out := make(map[common.Address]types.ProxyBinding)
	for ; iter.Valid(); iter.Next() {
		binding, err := types.UnmarshalProxyBinding(iter.Value())
		if err != nil {
			k.Logger(ctx).Error("skipping corrupt proxy record", "key", common.Bytes2Hex(iter.Key()), "error", err)
			continue
		}
		out[common.BytesToAddress(iter.Key())] = binding
	}
	return out
}
