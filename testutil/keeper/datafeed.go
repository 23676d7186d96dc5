package keeper

import (
	"context"
	"crypto/ecdsa"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/keeper"
	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

const (
	// TestChainID is the chain ID of contexts built by DataFeedKeeper.
	TestChainID = "api3-test-1"

	// TestBlockTime is the block time, in Unix seconds, of contexts built by DataFeedKeeper.
	TestBlockTime = 1_700_000_000
)

var (
	// TestManager holds every role on keepers built by DataFeedKeeper.
	TestManager = common.HexToAddress("0x00000000000000000000000000000000000A11CE")

	// TestServer is the server address OEV signatures and proxies are bound to.
	TestServer = common.HexToAddress("0x000000000000000000000000000000005E4FE400")
)

// AccessControl is an in-memory role registry.
type AccessControl struct {
	mu    sync.RWMutex
	roles map[common.Hash]map[common.Address]bool
}

var _ types.AccessControl = (*AccessControl)(nil)

// NewAccessControl returns an empty registry.
func NewAccessControl() *AccessControl {
	return &AccessControl{roles: make(map[common.Hash]map[common.Address]bool)}
}

// Grant gives role to account.
func (a *AccessControl) Grant(role common.Hash, account common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.roles[role] == nil {
		a.roles[role] = make(map[common.Address]bool)
	}
	a.roles[role][account] = true
}

// Revoke takes role away from account.
func (a *AccessControl) Revoke(role common.Hash, account common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.roles[role], account)
}

// HasRole implements types.AccessControl.
func (a *AccessControl) HasRole(_ context.Context, role common.Hash, account common.Address) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.roles[role][account]
}

// DataFeedKeeper creates a datafeed keeper over an in-memory store. The
// returned context carries TestChainID and TestBlockTime.
func DataFeedKeeper(t testing.TB) (*keeper.Keeper, *AccessControl, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	accessControl := NewAccessControl()
	k := keeper.NewKeeper(storeKey, accessControl, TestManager, TestServer)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{
		ChainID: TestChainID,
		Height:  1,
		Time:    time.Unix(TestBlockTime, 0).UTC(),
	}, false, log.NewNopLogger())

	require.NoError(t, k.SetParams(ctx, types.DefaultParams()))
	return k, accessControl, ctx
}

// Airnode is a test reporter with its own signing key.
type Airnode struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
}

// NewAirnode generates a fresh airnode key.
func NewAirnode(t testing.TB) Airnode {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return Airnode{Key: key, Address: crypto.PubkeyToAddress(key.PublicKey)}
}

// BeaconID returns the airnode's beacon for templateID.
func (a Airnode) BeaconID(templateID common.Hash) common.Hash {
	return types.DeriveBeaconID(a.Address, templateID)
}

// SignedData signs value at timestamp for templateID.
func (a Airnode) SignedData(t testing.TB, templateID common.Hash, timestamp uint32, value int64) types.SignedData {
	data, err := types.EncodeValue(sdkmath.NewInt(value))
	require.NoError(t, err)
	sig, err := types.SignData(a.Key, templateID, timestamp, data)
	require.NoError(t, err)
	return types.SignedData{
		Airnode:    a.Address,
		TemplateID: templateID,
		Timestamp:  timestamp,
		Data:       data,
		Signature:  sig,
	}
}

// UpdateBeacon signs and applies value at timestamp, failing the test if
// the update is not applied.
func (a Airnode) UpdateBeacon(t testing.TB, k *keeper.Keeper, ctx sdk.Context, templateID common.Hash, timestamp uint32, value int64) common.Hash {
	sd := a.SignedData(t, templateID, timestamp, value)
	res, err := k.UpdateBeaconWithSignedData(ctx, sd.Airnode, sd.TemplateID, sd.Timestamp, sd.Data, sd.Signature)
	require.NoError(t, err)
	require.Equal(t, types.UpdateApplied, res.Status)
	return sd.BeaconID()
}

// TestTemplateID derives a template ID from a short parameter string.
func TestTemplateID(parameters string) common.Hash {
	return types.DeriveTemplateID(crypto.Keccak256Hash([]byte("endpoint")), []byte(parameters))
}
