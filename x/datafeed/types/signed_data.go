package types

import (
	"crypto/ecdsa"
	"encoding/binary"
	"math/big"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the length of an r || s || v signature.
const SignatureLength = 65

var ethSignedMessagePrefix = []byte("\x19Ethereum Signed Message:\n32")

// SignedData is one airnode observation as submitted for a beacon update.
type SignedData struct {
	Airnode    common.Address
	TemplateID common.Hash
	Timestamp  uint32
	Data       []byte
	Signature  []byte
}

// BeaconID returns the beacon the observation belongs to.
func (s SignedData) BeaconID() common.Hash {
	return DeriveBeaconID(s.Airnode, s.TemplateID)
}

// uint256Bytes left-pads a uint64 to a 32-byte word.
func uint256Bytes(v uint64) []byte {
	word := make([]byte, 32)
	binary.BigEndian.PutUint64(word[24:], v)
	return word
}

// SignedDataHash is the digest an airnode signs for an observation.
func SignedDataHash(templateID common.Hash, timestamp uint32, data []byte) common.Hash {
	return crypto.Keccak256Hash(templateID.Bytes(), uint256Bytes(uint64(timestamp)), data)
}

// EthSignedMessageHash applies the EIP-191 personal message prefix.
func EthSignedMessageHash(hash common.Hash) common.Hash {
	return crypto.Keccak256Hash(ethSignedMessagePrefix, hash.Bytes())
}

// RecoverSigner recovers the address that produced signature over hash.
// It only recovers; deciding whether that address is trusted is left to the caller.
func RecoverSigner(hash common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, errorsmod.Wrapf(ErrInvalidSignature, "signature length %d, expected %d", len(signature), SignatureLength)
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)

	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return common.Address{}, errorsmod.Wrap(ErrInvalidSignature, "malformed signature values")
	}
	sig[64] = v

	pub, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return common.Address{}, errorsmod.Wrap(ErrInvalidSignature, err.Error())
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// RecoverSignedDataSigner recovers the signer of an observation.
func RecoverSignedDataSigner(templateID common.Hash, timestamp uint32, data, signature []byte) (common.Address, error) {
	return RecoverSigner(EthSignedMessageHash(SignedDataHash(templateID, timestamp, data)), signature)
}

// VerifySignedData checks that airnode signed the observation.
func VerifySignedData(airnode common.Address, templateID common.Hash, timestamp uint32, data, signature []byte) error {
	signer, err := RecoverSignedDataSigner(templateID, timestamp, data, signature)
	if err != nil {
		return err
	}
	if signer != airnode {
		return errorsmod.Wrapf(ErrInvalidSignature, "recovered %s, expected %s", signer.Hex(), airnode.Hex())
	}
	return nil
}

// SignHash produces an r || s || v signature with v in {27, 28}.
func SignHash(hash common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// SignData signs an observation the way an airnode does.
func SignData(key *ecdsa.PrivateKey, templateID common.Hash, timestamp uint32, data []byte) ([]byte, error) {
	return SignHash(EthSignedMessageHash(SignedDataHash(templateID, timestamp, data)), key)
}
