// Package proxy provides read-only handles bound to a single data feed or
// dAPI name, as consumed by downstream contracts and modules.
package proxy

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// DataFeedReader is the subset of the datafeed keeper a proxy reads through.
type DataFeedReader interface {
	ReadDataFeedWithID(ctx sdk.Context, dataFeedID common.Hash) (types.DataFeed, error)
	DapiNameHashToDataFeedID(ctx sdk.Context, dapiNameHash common.Hash) common.Hash
}

// OevServer serves OEV reads.
type OevServer interface {
	ReadWithOev(ctx sdk.Context, caller common.Address, update types.OevUpdate, bid sdk.Coin) (types.DataFeed, error)
}

// Keeper is what a proxy needs from the datafeed keeper.
type Keeper interface {
	DataFeedReader
	OevServer
	ComputeProxyAddress(binding types.ProxyBinding) common.Address
	GetProxyBinding(ctx sdk.Context, addr common.Address) (types.ProxyBinding, error)
}

// Reader reads the value behind a proxy.
type Reader interface {
	Read(ctx sdk.Context) (types.DataFeed, error)
}

// OevReader additionally serves OEV updates to the proxy's beneficiary.
type OevReader interface {
	Reader
	ReadWithOev(ctx sdk.Context, caller common.Address, update types.OevUpdate, bid sdk.Coin) (types.DataFeed, error)
}

var _ OevReader = (*Proxy)(nil)

// Proxy is an immutable read handle. It exposes no way to modify the feed.
type Proxy struct {
	keeper  Keeper
	address common.Address
	binding types.ProxyBinding
}

// New binds a proxy without requiring it to be deployed.
func New(k Keeper, binding types.ProxyBinding) (*Proxy, error) {
	if err := binding.Validate(); err != nil {
		return nil, err
	}
	return &Proxy{
		keeper:  k,
		address: k.ComputeProxyAddress(binding),
		binding: binding,
	}, nil
}

// Open returns the proxy deployed at addr.
func Open(ctx sdk.Context, k Keeper, addr common.Address) (*Proxy, error) {
	binding, err := k.GetProxyBinding(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &Proxy{keeper: k, address: addr, binding: binding}, nil
}

// Address returns the proxy's deterministic address.
func (p *Proxy) Address() common.Address { return p.address }

// Binding returns a copy of the proxy's parameters.
func (p *Proxy) Binding() types.ProxyBinding {
	b := p.binding
	b.Metadata = append([]byte(nil), p.binding.Metadata...)
	return b
}

// DataFeedID returns the data feed the proxy currently reads. For a dAPI
// proxy the name is resolved at call time, so it follows re-pointing.
func (p *Proxy) DataFeedID(ctx sdk.Context) (common.Hash, error) {
	if p.binding.Kind == types.ProxyKindDataFeed {
		return p.binding.ID, nil
	}
	id := p.keeper.DapiNameHashToDataFeedID(ctx, p.binding.ID)
	if id == (common.Hash{}) {
		return common.Hash{}, errorsmod.Wrapf(types.ErrNotInitialized, "dAPI name hash %s not set", p.binding.ID.Hex())
	}
	return id, nil
}

// Read returns the canonical value and timestamp of the bound feed.
func (p *Proxy) Read(ctx sdk.Context) (types.DataFeed, error) {
	id, err := p.DataFeedID(ctx)
	if err != nil {
		return types.DataFeed{}, err
	}
	return p.keeper.ReadDataFeedWithID(ctx, id)
}

// ReadWithOev serves update to the bound beneficiary. Any other caller, or a
// proxy without a beneficiary, gets the canonical value.
func (p *Proxy) ReadWithOev(ctx sdk.Context, caller common.Address, update types.OevUpdate, bid sdk.Coin) (types.DataFeed, error) {
	if !p.binding.HasOevBeneficiary() || caller != p.binding.OevBeneficiary {
		return p.Read(ctx)
	}
	id, err := p.DataFeedID(ctx)
	if err != nil {
		return types.DataFeed{}, err
	}
	if update.DataFeedID != id {
		return types.DataFeed{}, errorsmod.Wrapf(types.ErrInvalidParams,
			"OEV update targets %s, proxy reads %s", update.DataFeedID.Hex(), id.Hex())
	}
	return p.keeper.ReadWithOev(ctx, caller, update, bid)
}
