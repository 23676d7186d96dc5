package types

import (
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// GenesisDataFeed is an exported beacon or beacon set record.
type GenesisDataFeed struct {
	DataFeedID common.Hash `json:"data_feed_id"`
	Value      sdkmath.Int `json:"value"`
	Timestamp  uint32      `json:"timestamp"`
}

// GenesisDapiName is an exported dAPI name mapping.
type GenesisDapiName struct {
	DapiNameHash common.Hash `json:"dapi_name_hash"`
	DataFeedID   common.Hash `json:"data_feed_id"`
}

// GenesisOevBeneficiary is an exported OEV beneficiary registration.
type GenesisOevBeneficiary struct {
	DataFeedID  common.Hash    `json:"data_feed_id"`
	Beneficiary common.Address `json:"beneficiary"`
}

// GenesisProxy is an exported proxy deployment.
type GenesisProxy struct {
	Address        common.Address `json:"address"`
	Kind           ProxyKind      `json:"kind"`
	ID             common.Hash    `json:"id"`
	OevBeneficiary common.Address `json:"oev_beneficiary"`
	Metadata       hexutil.Bytes  `json:"metadata,omitempty"`
}

// Binding returns the proxy's binding.
func (p GenesisProxy) Binding() ProxyBinding {
	return ProxyBinding{Kind: p.Kind, ID: p.ID, OevBeneficiary: p.OevBeneficiary, Metadata: p.Metadata}
}

// GenesisState defines the datafeed module's genesis state.
type GenesisState struct {
	Params           Params                  `json:"params"`
	DataFeeds        []GenesisDataFeed       `json:"data_feeds"`
	DapiNames        []GenesisDapiName       `json:"dapi_names"`
	OevBeneficiaries []GenesisOevBeneficiary `json:"oev_beneficiaries"`
	Proxies          []GenesisProxy          `json:"proxies"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:           DefaultParams(),
		DataFeeds:        []GenesisDataFeed{},
		DapiNames:        []GenesisDapiName{},
		OevBeneficiaries: []GenesisOevBeneficiary{},
		Proxies:          []GenesisProxy{},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return errorsmod.Wrap(ErrInvalidGenesis, err.Error())
	}

	feeds := make(map[common.Hash]struct{}, len(gs.DataFeeds))
	for i, f := range gs.DataFeeds {
		if f.DataFeedID == (common.Hash{}) {
			return errorsmod.Wrapf(ErrInvalidGenesis, "data feed %d has zero ID", i)
		}
		if _, dup := feeds[f.DataFeedID]; dup {
			return errorsmod.Wrapf(ErrInvalidGenesis, "duplicate data feed %s", f.DataFeedID.Hex())
		}
		feeds[f.DataFeedID] = struct{}{}
		if f.Timestamp == 0 {
			return errorsmod.Wrapf(ErrInvalidGenesis, "data feed %s has zero timestamp", f.DataFeedID.Hex())
		}
		if _, err := IntToWord(f.Value); err != nil {
			return errorsmod.Wrapf(ErrInvalidGenesis, "data feed %s: %s", f.DataFeedID.Hex(), err)
		}
	}

	names := make(map[common.Hash]struct{}, len(gs.DapiNames))
	for _, d := range gs.DapiNames {
		if d.DapiNameHash == (common.Hash{}) {
			return errorsmod.Wrap(ErrInvalidGenesis, "dAPI name hash is zero")
		}
		if _, dup := names[d.DapiNameHash]; dup {
			return errorsmod.Wrapf(ErrInvalidGenesis, "duplicate dAPI name hash %s", d.DapiNameHash.Hex())
		}
		names[d.DapiNameHash] = struct{}{}
	}

	beneficiaries := make(map[common.Hash]struct{}, len(gs.OevBeneficiaries))
	for _, b := range gs.OevBeneficiaries {
		if b.DataFeedID == (common.Hash{}) {
			return errorsmod.Wrap(ErrInvalidGenesis, "OEV beneficiary registered for zero data feed ID")
		}
		if b.Beneficiary == (common.Address{}) {
			return errorsmod.Wrapf(ErrInvalidGenesis, "zero OEV beneficiary for %s", b.DataFeedID.Hex())
		}
		if _, dup := beneficiaries[b.DataFeedID]; dup {
			return errorsmod.Wrapf(ErrInvalidGenesis, "duplicate OEV beneficiary for %s", b.DataFeedID.Hex())
		}
		beneficiaries[b.DataFeedID] = struct{}{}
	}

	proxies := make(map[common.Address]struct{}, len(gs.Proxies))
	for _, p := range gs.Proxies {
		if err := p.Binding().Validate(); err != nil {
			return errorsmod.Wrapf(ErrInvalidGenesis, "proxy %s: %s", p.Address.Hex(), err)
		}
		if _, dup := proxies[p.Address]; dup {
			return errorsmod.Wrapf(ErrInvalidGenesis, "duplicate proxy %s", p.Address.Hex())
		}
		proxies[p.Address] = struct{}{}
	}
	return nil
}

// MustMarshalJSON encodes the genesis state.
func (gs GenesisState) MustMarshalJSON() json.RawMessage {
	bz, err := json.Marshal(gs)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal %s genesis state: %s", ModuleName, err))
	}
	return bz
}

// UnmarshalGenesis decodes a genesis state.
func UnmarshalGenesis(bz json.RawMessage) (*GenesisState, error) {
	var gs GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return nil, errorsmod.Wrap(ErrInvalidGenesis, err.Error())
	}
	return &gs, nil
}
