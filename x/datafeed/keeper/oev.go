package keeper

import (
	"strconv"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airnode-protocol-v1-sub003/pkg/median"
	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

const (
	gasOevRead         = 15000
	gasOevPerSignature = 3000
)

// SetOevBeneficiary registers the account allowed to read dataFeedID through
// the OEV path. A zero beneficiary removes the registration.
func (k Keeper) SetOevBeneficiary(ctx sdk.Context, sender common.Address, dataFeedID common.Hash, beneficiary common.Address) error {
	if !k.hasRole(ctx, types.OevBeneficiarySetterRole, sender) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot set OEV beneficiaries", sender.Hex())
	}
	if dataFeedID == (common.Hash{}) {
		return errorsmod.Wrap(types.ErrInvalidParams, "data feed ID is zero")
	}

	store := ctx.KVStore(k.storeKey)
	if beneficiary == (common.Address{}) {
		store.Delete(types.OevBeneficiaryKey(dataFeedID))
	} else {
		store.Set(types.OevBeneficiaryKey(dataFeedID), beneficiary.Bytes())
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOevBeneficiarySet,
			sdk.NewAttribute(types.AttributeKeyDataFeedID, dataFeedID.Hex()),
			sdk.NewAttribute(types.AttributeKeyBeneficiary, beneficiary.Hex()),
			sdk.NewAttribute(types.AttributeKeySender, sender.Hex()),
		),
	)
	k.Logger(ctx).Info("OEV beneficiary set", "data_feed_id", dataFeedID.Hex(), "beneficiary", beneficiary.Hex())
	return nil
}

// OevBeneficiary returns the registered OEV beneficiary of a data feed.
func (k Keeper) OevBeneficiary(ctx sdk.Context, dataFeedID common.Hash) (common.Address, bool) {
	bz := ctx.KVStore(k.storeKey).Get(types.OevBeneficiaryKey(dataFeedID))
	if bz == nil {
		return common.Address{}, false
	}
	return common.BytesToAddress(bz), true
}

// GetAllOevBeneficiaries returns every OEV beneficiary registration.
func (k Keeper) GetAllOevBeneficiaries(ctx sdk.Context) []types.GenesisOevBeneficiary {
	store := prefix.NewStore(ctx.KVStore(k.storeKey), types.OevBeneficiaryKeyPrefix)
	iter := storetypes.KVStorePrefixIterator(store, nil)
	defer iter.Close()

	out := []types.GenesisOevBeneficiary{}
	for ; iter.Valid(); iter.Next() {
		out = append(out, types.GenesisOevBeneficiary{
			DataFeedID:  common.BytesToHash(iter.Key()),
			Beneficiary: common.BytesToAddress(iter.Value()),
		})
	}
	return out
}

// ReadWithOev returns the value of an OEV update to the data feed's
// beneficiary. The update must be signed by the feed's airnodes for this
// server, caller and bid, and be newer than the stored record. The stored
// record is not modified.
func (k Keeper) ReadWithOev(ctx sdk.Context, caller common.Address, update types.OevUpdate, bid sdk.Coin) (types.DataFeed, error) {
	ctx.GasMeter().ConsumeGas(gasOevRead+uint64(len(update.Signatures))*gasOevPerSignature, "datafeed_read_with_oev")

	feed, err := k.verifyOevUpdate(ctx, caller, update, bid)
	if err != nil {
		k.metrics.OevReads.WithLabelValues("rejected").Inc()
		return types.DataFeed{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOevRead,
			sdk.NewAttribute(types.AttributeKeyDataFeedID, update.DataFeedID.Hex()),
			sdk.NewAttribute(types.AttributeKeyUpdateID, update.UpdateID.Hex()),
			sdk.NewAttribute(types.AttributeKeyBeneficiary, caller.Hex()),
			sdk.NewAttribute(types.AttributeKeyBid, bid.String()),
			sdk.NewAttribute(types.AttributeKeyValue, feed.Int().String()),
			sdk.NewAttribute(types.AttributeKeyTimestamp, strconv.FormatUint(uint64(feed.Timestamp), 10)),
		),
	)
	k.metrics.OevReads.WithLabelValues("served").Inc()
	return feed, nil
}

func (k Keeper) verifyOevUpdate(ctx sdk.Context, caller common.Address, update types.OevUpdate, bid sdk.Coin) (types.DataFeed, error) {
	beneficiary, ok := k.OevBeneficiary(ctx, update.DataFeedID)
	if !ok || beneficiary != caller {
		return types.DataFeed{}, errorsmod.Wrapf(types.ErrNotBeneficiary, "%s for data feed %s", caller.Hex(), update.DataFeedID.Hex())
	}
	if err := bid.Validate(); err != nil {
		return types.DataFeed{}, errorsmod.Wrap(sdkerrors.ErrInvalidCoins, err.Error())
	}

	value, err := types.DecodeValue(update.Data)
	if err != nil {
		return types.DataFeed{}, err
	}
	if err := k.checkTimestamp(ctx, update.Timestamp); err != nil {
		return types.DataFeed{}, err
	}
	stored, err := k.getDataFeed(ctx, update.DataFeedID)
	if err != nil {
		return types.DataFeed{}, err
	}
	if update.Timestamp <= stored.Timestamp {
		return types.DataFeed{}, errorsmod.Wrapf(types.ErrStaleOverride, "timestamp %d, stored %d", update.Timestamp, stored.Timestamp)
	}

	if err := k.verifyOevSignatures(ctx, caller, update, bid); err != nil {
		return types.DataFeed{}, err
	}
	return types.DataFeed{Value: value, Timestamp: update.Timestamp}, nil
}

// verifyOevSignatures checks that the signers form the data feed and that a
// beacon's airnode, or a majority of a beacon set's airnodes, signed.
func (k Keeper) verifyOevSignatures(ctx sdk.Context, caller common.Address, update types.OevUpdate, bid sdk.Coin) error {
	n := len(update.Signatures)
	switch {
	case n == 0:
		return errorsmod.Wrap(types.ErrInsufficientSignatures, "no signatures")
	case n > median.MaxMedianLength:
		return errorsmod.Wrapf(types.ErrCapacityExceeded, "%d signatures > %d", n, median.MaxMedianLength)
	}

	beaconIDs := update.BeaconIDs()
	var signedFeedID common.Hash
	if n == 1 {
		signedFeedID = beaconIDs[0]
	} else {
		signedFeedID = types.DeriveBeaconSetID(beaconIDs)
	}
	if signedFeedID != update.DataFeedID {
		return errorsmod.Wrapf(types.ErrInvalidSignature, "signers form data feed %s, not %s", signedFeedID.Hex(), update.DataFeedID.Hex())
	}

	hash := types.EthSignedMessageHash(types.OevUpdateHash(ctx.ChainID(), k.server, update, caller, bid))
	valid := 0
	for i, s := range update.Signatures {
		if len(s.Signature) == 0 {
			continue
		}
		signer, err := types.RecoverSigner(hash, s.Signature)
		if err != nil {
			return errorsmod.Wrapf(err, "signature %d", i)
		}
		if signer != s.Airnode {
			return errorsmod.Wrapf(types.ErrInvalidSignature, "signature %d recovered %s, expected %s", i, signer.Hex(), s.Airnode.Hex())
		}
		valid++
	}

	if valid*2 <= n {
		return errorsmod.Wrapf(types.ErrInsufficientSignatures, "%d of %d members signed", valid, n)
	}
	return nil
}
