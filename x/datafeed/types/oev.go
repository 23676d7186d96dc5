package types

import (
	"crypto/ecdsa"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// OevSignedData is one airnode's signature over an OEV update. For a beacon
// set the entries follow the member order; an empty Signature marks a
// member that did not sign.
type OevSignedData struct {
	Airnode    common.Address
	TemplateID common.Hash
	Signature  []byte
}

// OevUpdate is a fresher value offered to an OEV beneficiary together with
// the airnode signatures that authorize it.
type OevUpdate struct {
	DataFeedID common.Hash
	UpdateID   common.Hash
	Timestamp  uint32
	Data       []byte
	Signatures []OevSignedData
}

// BeaconIDs returns the beacon IDs of the signing members in order.
func (u OevUpdate) BeaconIDs() []common.Hash {
	ids := make([]common.Hash, len(u.Signatures))
	for i, s := range u.Signatures {
		ids[i] = DeriveBeaconID(s.Airnode, s.TemplateID)
	}
	return ids
}

// OevUpdateHash is the digest airnodes sign to authorize an OEV update for a
// specific server, updater and bid.
func OevUpdateHash(chainID string, server common.Address, update OevUpdate, updater common.Address, bid sdk.Coin) common.Hash {
	amount := common.Hash{}
	if !bid.Amount.IsNil() {
		amount = common.BigToHash(bid.Amount.BigInt())
	}
	return crypto.Keccak256Hash(
		crypto.Keccak256([]byte(chainID)),
		server.Bytes(),
		update.DataFeedID.Bytes(),
		update.UpdateID.Bytes(),
		uint256Bytes(uint64(update.Timestamp)),
		update.Data,
		updater.Bytes(),
		crypto.Keccak256([]byte(bid.Denom)),
		amount.Bytes(),
	)
}

// SignOevUpdate signs an OEV update as an airnode.
func SignOevUpdate(key *ecdsa.PrivateKey, chainID string, server common.Address, update OevUpdate, updater common.Address, bid sdk.Coin) ([]byte, error) {
	return SignHash(EthSignedMessageHash(OevUpdateHash(chainID, server, update, updater, bid)), key)
}
