package keeper

import (
	"fmt"
	"sort"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// InitGenesis initializes the datafeed module's state from a genesis state
func (k Keeper) InitGenesis(ctx sdk.Context, data types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}

	// Set parameters
	if err := k.SetParams(ctx, data.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	// Set data feeds
	for _, f := range data.DataFeeds {
		feed, err := types.NewDataFeed(f.Value, f.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to decode data feed %s: %w", f.DataFeedID.Hex(), err)
		}
		if err := k.setDataFeed(ctx, f.DataFeedID, feed); err != nil {
			return fmt.Errorf("failed to set data feed %s: %w", f.DataFeedID.Hex(), err)
		}
	}

	// Set dAPI names
	for _, d := range data.DapiNames {
		k.setDapiNameHash(ctx, d.DapiNameHash, d.DataFeedID)
	}

	// Set OEV beneficiaries
	store := ctx.KVStore(k.storeKey)
	for _, b := range data.OevBeneficiaries {
		store.Set(types.OevBeneficiaryKey(b.DataFeedID), b.Beneficiary.Bytes())
	}

	// Set proxies
	for _, p := range data.Proxies {
		binding := p.Binding()
		if addr := k.ComputeProxyAddress(binding); addr != p.Address {
			return fmt.Errorf("proxy %s does not match its binding address %s", p.Address.Hex(), addr.Hex())
		}
		store.Set(types.ProxyKey(p.Address), binding.Marshal())
	}

	return nil
}

// ExportGenesis exports the datafeed module's state to a genesis state
func (k Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	proxies := []types.GenesisProxy{}
	for addr, b := range k.GetAllProxies(ctx) {
		proxies = append(proxies, types.GenesisProxy{
			Address:        addr,
			Kind:           b.Kind,
			ID:             b.ID,
			OevBeneficiary: b.OevBeneficiary,
			Metadata:       b.Metadata,
		})
	}
	sort.Slice(proxies, func(i, j int) bool {
		return proxies[i].Address.Cmp(proxies[j].Address) < 0
	})

	return &types.GenesisState{
		Params:           k.GetParams(ctx),
		DataFeeds:        k.GetAllDataFeeds(ctx),
		DapiNames:        k.GetAllDapiNames(ctx),
		OevBeneficiaries: k.GetAllOevBeneficiaries(ctx),
		Proxies:          proxies,
	}
}
