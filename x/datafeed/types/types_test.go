package types

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"testing"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestDeriveBeaconID(t *testing.T) {
	airnode := common.HexToAddress("0x1111111111111111111111111111111111111111")
	templateID := common.HexToHash("0x2222")

	want := crypto.Keccak256Hash(append(airnode.Bytes(), templateID.Bytes()...))
	require.Equal(t, want, DeriveBeaconID(airnode, templateID))
	require.NotEqual(t, want, DeriveBeaconID(common.HexToAddress("0x01"), templateID))
}

func TestDeriveTemplateID(t *testing.T) {
	endpointID := crypto.Keccak256Hash([]byte("endpoint"))
	params := []byte{0x31, 0x73}

	require.Equal(t, crypto.Keccak256Hash(endpointID.Bytes(), params), DeriveTemplateID(endpointID, params))
}

func TestDeriveBeaconSetIDMatchesABIEncoding(t *testing.T) {
	ids := []common.Hash{common.HexToHash("0xaa"), common.HexToHash("0xbb"), common.HexToHash("0xcc")}

	// abi.encode(bytes32[]): offset, length, elements
	var encoded []byte
	encoded = append(encoded, common.BigToHash(big.NewInt(32)).Bytes()...)
	encoded = append(encoded, common.BigToHash(big.NewInt(int64(len(ids)))).Bytes()...)
	for _, id := range ids {
		encoded = append(encoded, id.Bytes()...)
	}

	require.Equal(t, crypto.Keccak256Hash(encoded), DeriveBeaconSetID(ids))
}

func TestDeriveBeaconSetIDIsOrderSensitive(t *testing.T) {
	a, b := common.HexToHash("0x01"), common.HexToHash("0x02")
	require.NotEqual(t, DeriveBeaconSetID([]common.Hash{a, b}), DeriveBeaconSetID([]common.Hash{b, a}))
}

func TestDapiNameToBytes32(t *testing.T) {
	name, err := DapiNameToBytes32("ETH/USD")
	require.NoError(t, err)
	require.Equal(t, []byte("ETH/USD"), name[:7])
	require.Equal(t, make([]byte, 25), name[7:])
	require.Equal(t, crypto.Keccak256Hash(name.Bytes()), DeriveDapiNameHash(name))

	_, err = DapiNameToBytes32("")
	require.ErrorIs(t, err, ErrInvalidDapiName)

	_, err = DapiNameToBytes32(string(bytes.Repeat([]byte("x"), 33)))
	require.ErrorIs(t, err, ErrInvalidDapiName)

	_, err = DapiNameToBytes32(string(bytes.Repeat([]byte("x"), 32)))
	require.NoError(t, err)
}

func TestEncodeDecodeValue(t *testing.T) {
	cases := []sdkmath.Int{
		sdkmath.ZeroInt(),
		sdkmath.NewInt(1),
		sdkmath.NewInt(-1),
		sdkmath.NewInt(123456789),
		sdkmath.NewIntFromBigInt(MaxInt224),
		sdkmath.NewIntFromBigInt(MinInt224),
	}
	for _, v := range cases {
		data, err := EncodeValue(v)
		require.NoError(t, err)
		require.Len(t, data, EncodedValueLength)

		w, err := DecodeValue(data)
		require.NoError(t, err)
		require.True(t, v.Equal(WordToInt(&w)), "value %s", v)
	}
}

func TestDecodeValueRejectsOutOfRange(t *testing.T) {
	tooBig := new(big.Int).Add(MaxInt224, big.NewInt(1))
	_, err := DecodeValue(common.BigToHash(tooBig).Bytes())
	require.ErrorIs(t, err, ErrInvalidValue)

	// -2^223 - 1 in two's complement
	tooSmall := new(big.Int).Sub(MinInt224, big.NewInt(1))
	word := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 256), tooSmall)
	_, err = DecodeValue(common.BigToHash(word).Bytes())
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = DecodeValue(make([]byte, 31))
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = DecodeValue(make([]byte, 64))
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = EncodeValue(sdkmath.NewIntFromBigInt(tooBig))
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestDataFeedPacking(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 42, -123456789} {
		feed, err := NewDataFeed(sdkmath.NewInt(v), 1_700_000_000)
		require.NoError(t, err)

		bz, err := feed.Marshal()
		require.NoError(t, err)
		require.Len(t, bz, DataFeedRecordLength)
		require.Equal(t, uint32(1_700_000_000), binary.BigEndian.Uint32(bz[:4]))

		got, err := UnmarshalDataFeed(bz)
		require.NoError(t, err)
		require.Equal(t, feed.Timestamp, got.Timestamp)
		require.True(t, sdkmath.NewInt(v).Equal(got.Int()))
	}
}

func TestDataFeedPackingExtremes(t *testing.T) {
	for _, b := range []*big.Int{MaxInt224, MinInt224} {
		feed, err := NewDataFeed(sdkmath.NewIntFromBigInt(b), 1)
		require.NoError(t, err)
		bz, err := feed.Marshal()
		require.NoError(t, err)
		got, err := UnmarshalDataFeed(bz)
		require.NoError(t, err)
		require.Equal(t, 0, got.Int().BigInt().Cmp(b))
	}

	_, err := UnmarshalDataFeed(make([]byte, 31))
	require.ErrorIs(t, err, ErrInvalidValue)

	var empty DataFeed
	require.False(t, empty.IsInitialized())
}

func TestSignedDataRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	airnode := crypto.PubkeyToAddress(key.PublicKey)
	templateID := common.HexToHash("0x1234")
	data, err := EncodeValue(sdkmath.NewInt(100))
	require.NoError(t, err)

	sig, err := SignData(key, templateID, 1000, data)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)
	require.Contains(t, []byte{27, 28}, sig[64])

	signer, err := RecoverSignedDataSigner(templateID, 1000, data, sig)
	require.NoError(t, err)
	require.Equal(t, airnode, signer)
	require.NoError(t, VerifySignedData(airnode, templateID, 1000, data, sig))

	// Any change to the signed fields recovers another address.
	require.ErrorIs(t, VerifySignedData(airnode, templateID, 1001, data, sig), ErrInvalidSignature)
	require.ErrorIs(t, VerifySignedData(airnode, common.HexToHash("0x99"), 1000, data, sig), ErrInvalidSignature)
	require.ErrorIs(t, VerifySignedData(common.HexToAddress("0x01"), templateID, 1000, data, sig), ErrInvalidSignature)
}

func TestRecoverSignerRejectsMalformed(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hash := crypto.Keccak256Hash([]byte("message"))
	sig, err := SignHash(hash, key)
	require.NoError(t, err)

	_, err = RecoverSigner(hash, sig[:64])
	require.ErrorIs(t, err, ErrInvalidSignature)

	// (r, n-s, v^1) recovers the same key but is not canonical.
	n := crypto.S256().Params().N
	s := new(big.Int).SetBytes(sig[32:64])
	malleable := append([]byte(nil), sig...)
	copy(malleable[32:64], common.BigToHash(new(big.Int).Sub(n, s)).Bytes())
	malleable[64] = 27 + (1 - (sig[64] - 27))
	_, err = RecoverSigner(hash, malleable)
	require.ErrorIs(t, err, ErrInvalidSignature)

	// Raw 0/1 recovery ids are accepted as well.
	raw := append([]byte(nil), sig...)
	raw[64] -= 27
	signer, err := RecoverSigner(hash, raw)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer)
}

func TestProxyBindingAddress(t *testing.T) {
	factory := common.HexToAddress("0xfac7")
	binding := ProxyBinding{
		Kind:           ProxyKindDataFeed,
		ID:             common.HexToHash("0xfeed"),
		OevBeneficiary: common.HexToAddress("0xbe"),
		Metadata:       []byte("metadata"),
	}
	require.NoError(t, binding.Validate())

	addr := binding.Address(factory)
	require.Equal(t, addr, binding.Address(factory))
	require.Equal(t, crypto.CreateAddress2(factory, crypto.Keccak256Hash(binding.Metadata), binding.InitCodeHash().Bytes()), addr)

	other := binding
	other.Metadata = []byte("other")
	require.NotEqual(t, addr, other.Address(factory))

	other = binding
	other.OevBeneficiary = common.Address{}
	require.NotEqual(t, addr, other.Address(factory))
	require.False(t, other.HasOevBeneficiary())

	other = binding
	other.Kind = ProxyKindDapi
	require.NotEqual(t, addr, other.Address(factory))

	decoded, err := UnmarshalProxyBinding(binding.Marshal())
	require.NoError(t, err)
	require.Equal(t, binding, decoded)

	_, err = UnmarshalProxyBinding([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestProxyBindingValidate(t *testing.T) {
	require.ErrorIs(t, ProxyBinding{Kind: 9, ID: common.HexToHash("0x01")}.Validate(), ErrInvalidParams)
	require.ErrorIs(t, ProxyBinding{Kind: ProxyKindDapi}.Validate(), ErrInvalidParams)
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
	require.Equal(t, uint32(DefaultFutureTimestampTolerance), DefaultParams().FutureTimestampTolerance)
	require.Error(t, Params{FutureTimestampTolerance: 0}.Validate())
	require.Error(t, Params{FutureTimestampTolerance: MaxFutureTimestampTolerance + 1}.Validate())
}

func TestGenesisValidate(t *testing.T) {
	valid := func() GenesisState {
		gs := *DefaultGenesis()
		gs.DataFeeds = []GenesisDataFeed{{DataFeedID: common.HexToHash("0x01"), Value: sdkmath.NewInt(-5), Timestamp: 10}}
		gs.DapiNames = []GenesisDapiName{{DapiNameHash: common.HexToHash("0x02"), DataFeedID: common.HexToHash("0x01")}}
		gs.OevBeneficiaries = []GenesisOevBeneficiary{{DataFeedID: common.HexToHash("0x01"), Beneficiary: common.HexToAddress("0x03")}}
		gs.Proxies = []GenesisProxy{{Address: common.HexToAddress("0x04"), Kind: ProxyKindDataFeed, ID: common.HexToHash("0x01")}}
		return gs
	}
	require.NoError(t, DefaultGenesis().Validate())
	require.NoError(t, valid().Validate())

	cases := map[string]func(*GenesisState){
		"bad params":            func(gs *GenesisState) { gs.Params.FutureTimestampTolerance = 0 },
		"zero feed id":          func(gs *GenesisState) { gs.DataFeeds[0].DataFeedID = common.Hash{} },
		"duplicate feed":        func(gs *GenesisState) { gs.DataFeeds = append(gs.DataFeeds, gs.DataFeeds[0]) },
		"zero timestamp":        func(gs *GenesisState) { gs.DataFeeds[0].Timestamp = 0 },
		"value out of range":    func(gs *GenesisState) { gs.DataFeeds[0].Value = sdkmath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 230)) },
		"zero dapi hash":        func(gs *GenesisState) { gs.DapiNames[0].DapiNameHash = common.Hash{} },
		"duplicate dapi":        func(gs *GenesisState) { gs.DapiNames = append(gs.DapiNames, gs.DapiNames[0]) },
		"zero beneficiary":      func(gs *GenesisState) { gs.OevBeneficiaries[0].Beneficiary = common.Address{} },
		"duplicate beneficiary": func(gs *GenesisState) { gs.OevBeneficiaries = append(gs.OevBeneficiaries, gs.OevBeneficiaries[0]) },
		"bad proxy kind":        func(gs *GenesisState) { gs.Proxies[0].Kind = 0 },
		"duplicate proxy":       func(gs *GenesisState) { gs.Proxies = append(gs.Proxies, gs.Proxies[0]) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			gs := valid()
			mutate(&gs)
			require.ErrorIs(t, gs.Validate(), ErrInvalidGenesis)
		})
	}
}

func TestGenesisJSON(t *testing.T) {
	gs := DefaultGenesis()
	gs.DataFeeds = []GenesisDataFeed{{DataFeedID: common.HexToHash("0x01"), Value: sdkmath.NewInt(-5), Timestamp: 10}}
	gs.Proxies = []GenesisProxy{{Address: common.HexToAddress("0x04"), Kind: ProxyKindDapi, ID: common.HexToHash("0x02"), Metadata: []byte{0xab}}}

	decoded, err := UnmarshalGenesis(gs.MustMarshalJSON())
	require.NoError(t, err)
	require.Equal(t, gs.Params, decoded.Params)
	require.Equal(t, gs.DataFeeds[0].DataFeedID, decoded.DataFeeds[0].DataFeedID)
	require.True(t, gs.DataFeeds[0].Value.Equal(decoded.DataFeeds[0].Value))
	require.Equal(t, gs.Proxies, decoded.Proxies)

	_, err = UnmarshalGenesis([]byte("{"))
	require.ErrorIs(t, err, ErrInvalidGenesis)
}

func TestRecoverySuggestion(t *testing.T) {
	require.NotEmpty(t, GetRecoverySuggestion(ErrFutureTimestamp))
	require.NotEqual(t, GetRecoverySuggestion(ErrFutureTimestamp), GetRecoverySuggestion(ErrInvalidSignature))
	require.Equal(t, RecoverySuggestions[ErrNotInitialized], GetRecoverySuggestion(errorsmod.Wrap(ErrNotInitialized, "feed")))

	fallback := GetRecoverySuggestion(errorsmod.Wrap(ErrInvalidGenesis, "genesis"))
	for _, err := range []error{
		ErrInsufficientSignatures, ErrInvalidDapiName, ErrProxyAlreadyDeployed, ErrProxyNotFound, ErrInvalidParams,
	} {
		require.Equal(t, RecoverySuggestions[err], GetRecoverySuggestion(errorsmod.Wrap(err, "wrapped")), err.Error())
		require.NotEqual(t, fallback, GetRecoverySuggestion(err), err.Error())
	}
}
