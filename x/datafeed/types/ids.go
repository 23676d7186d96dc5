package types

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var bytes32ArrayArguments = mustArguments("bytes32[]")

// DeriveTemplateID derives a template ID from its endpoint ID and encoded
// parameters.
func DeriveTemplateID(endpointID common.Hash, parameters []byte) common.Hash {
	return crypto.Keccak256Hash(endpointID.Bytes(), parameters)
}

// DeriveBeaconID derives the ID of the beacon an airnode serves for a template.
func DeriveBeaconID(airnode common.Address, templateID common.Hash) common.Hash {
	return crypto.Keccak256Hash(airnode.Bytes(), templateID.Bytes())
}

// DeriveBeaconSetID derives a beacon set ID from the ABI encoding of its
// ordered member IDs. The same members in another order form another set.
func DeriveBeaconSetID(beaconIDs []common.Hash) common.Hash {
	ids := make([][32]byte, len(beaconIDs))
	for i, id := range beaconIDs {
		ids[i] = id
	}
	encoded, err := bytes32ArrayArguments.Pack(ids)
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(encoded)
}

// DapiNameToBytes32 left-aligns a dAPI name such as "ETH/USD" into 32 bytes.
func DapiNameToBytes32(name string) (common.Hash, error) {
	if name == "" {
		return common.Hash{}, errorsmod.Wrap(ErrInvalidDapiName, "empty name")
	}
	if len(name) > common.HashLength {
		return common.Hash{}, errorsmod.Wrapf(ErrInvalidDapiName, "%q is longer than 32 bytes", name)
	}
	var out common.Hash
	copy(out[:], name)
	return out, nil
}

// DeriveDapiNameHash hashes a bytes32 dAPI name.
func DeriveDapiNameHash(dapiName common.Hash) common.Hash {
	return crypto.Keccak256Hash(dapiName.Bytes())
}
