package types

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ProxyKind selects what a proxy's ID refers to.
type ProxyKind uint8

const (
	// ProxyKindDataFeed binds a beacon or beacon set ID.
	ProxyKindDataFeed ProxyKind = iota + 1
	// ProxyKindDapi binds a dAPI name hash, resolved on every read.
	ProxyKindDapi
)

func (k ProxyKind) String() string {
	switch k {
	case ProxyKindDataFeed:
		return "data_feed"
	case ProxyKindDapi:
		return "dapi"
	default:
		return fmt.Sprintf("proxy_kind(%d)", uint8(k))
	}
}

var proxyInitArguments = abi.Arguments{
	mustArguments("uint8")[0],
	mustArguments("bytes32")[0],
	mustArguments("address")[0],
}

// ProxyBinding holds the immutable parameters of a read proxy. A zero
// OevBeneficiary means the proxy has no OEV path.
type ProxyBinding struct {
	Kind           ProxyKind
	ID             common.Hash
	OevBeneficiary common.Address
	Metadata       []byte
}

// HasOevBeneficiary reports whether the binding names a beneficiary.
func (b ProxyBinding) HasOevBeneficiary() bool {
	return b.OevBeneficiary != (common.Address{})
}

// Validate checks the binding can be deployed.
func (b ProxyBinding) Validate() error {
	if b.Kind != ProxyKindDataFeed && b.Kind != ProxyKindDapi {
		return errorsmod.Wrapf(ErrInvalidParams, "unknown proxy kind %d", b.Kind)
	}
	if b.ID == (common.Hash{}) {
		return errorsmod.Wrap(ErrInvalidParams, "proxy ID is zero")
	}
	return nil
}

// InitCodeHash commits to the binding's kind, ID and beneficiary.
func (b ProxyBinding) InitCodeHash() common.Hash {
	encoded, err := proxyInitArguments.Pack(uint8(b.Kind), [32]byte(b.ID), b.OevBeneficiary)
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(encoded)
}

// Address derives the deterministic CREATE2 address the factory deploys the
// binding to. Bindings that differ only in metadata get distinct addresses.
func (b ProxyBinding) Address(factory common.Address) common.Address {
	salt := crypto.Keccak256Hash(b.Metadata)
	return crypto.CreateAddress2(factory, salt, b.InitCodeHash().Bytes())
}

// Marshal encodes the binding as kind || id || beneficiary || metadata.
func (b ProxyBinding) Marshal() []byte {
	out := make([]byte, 0, 1+common.HashLength+common.AddressLength+len(b.Metadata))
	out = append(out, byte(b.Kind))
	out = append(out, b.ID.Bytes()...)
	out = append(out, b.OevBeneficiary.Bytes()...)
	return append(out, b.Metadata...)
}

// UnmarshalProxyBinding decodes a binding written by Marshal.
func UnmarshalProxyBinding(bz []byte) (ProxyBinding, error) {
	const fixed = 1 + common.HashLength + common.AddressLength
	if len(bz) < fixed {
		return ProxyBinding{}, fmt.Errorf("proxy binding too short: %d bytes", len(bz))
	}
	b := ProxyBinding{
		Kind:           ProxyKind(bz[0]),
		ID:             common.BytesToHash(bz[1 : 1+common.HashLength]),
		OevBeneficiary: common.BytesToAddress(bz[1+common.HashLength : fixed]),
	}
	if len(bz) > fixed {
		b.Metadata = append([]byte(nil), bz[fixed:]...)
	}
	return b, nil
}
