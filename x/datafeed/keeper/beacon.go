package keeper

import (
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

const (
	gasBeaconUpdate = 20000
	gasRecordRead   = 2000
)

// UpdateBeaconWithSignedData applies one airnode observation to its beacon.
//
// An invalid signature, undecodable value or timestamp beyond the future
// tolerance rejects the update with an error and writes nothing. A valid
// observation that is not newer than the stored beacon is ignored without
// error, so slow reporters cannot fail a batch.
func (k Keeper) UpdateBeaconWithSignedData(
	ctx sdk.Context,
	airnode common.Address,
	templateID common.Hash,
	timestamp uint32,
	data []byte,
	signature []byte,
) (types.UpdateResult, error) {
	ctx.GasMeter().ConsumeGas(gasBeaconUpdate, "datafeed_update_beacon")

	beaconID := types.DeriveBeaconID(airnode, templateID)
	if err := types.VerifySignedData(airnode, templateID, timestamp, data, signature); err != nil {
		return k.rejectBeacon(err)
	}
	value, err := types.DecodeValue(data)
	if err != nil {
		return k.rejectBeacon(err)
	}
	if err := k.checkTimestamp(ctx, timestamp); err != nil {
		return k.rejectBeacon(err)
	}

	stored, err := k.getDataFeed(ctx, beaconID)
	if err != nil {
		return k.rejectBeacon(err)
	}
	if timestamp <= stored.Timestamp {
		k.Logger(ctx).Debug("ignored stale beacon update",
			"beacon_id", beaconID.Hex(),
			"timestamp", timestamp,
			"stored_timestamp", stored.Timestamp,
		)
		k.metrics.BeaconUpdates.WithLabelValues(types.UpdateIgnoredStale.String()).Inc()
		return types.IgnoredStale(), nil
	}

	feed := types.DataFeed{Value: value, Timestamp: timestamp}
	if err := k.setDataFeed(ctx, beaconID, feed); err != nil {
		return k.rejectBeacon(err)
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeBeaconUpdated,
			sdk.NewAttribute(types.AttributeKeyBeaconID, beaconID.Hex()),
			sdk.NewAttribute(types.AttributeKeyAirnode, airnode.Hex()),
			sdk.NewAttribute(types.AttributeKeyTemplateID, templateID.Hex()),
			sdk.NewAttribute(types.AttributeKeyValue, feed.Int().String()),
			sdk.NewAttribute(types.AttributeKeyTimestamp, strconv.FormatUint(uint64(timestamp), 10)),
		),
	)
	k.Logger(ctx).Debug("beacon updated", "beacon_id", beaconID.Hex(), "timestamp", timestamp)
	k.metrics.BeaconUpdates.WithLabelValues(types.UpdateApplied.String()).Inc()
	return types.Applied(), nil
}

func (k Keeper) rejectBeacon(err error) (types.UpdateResult, error) {
	k.metrics.BeaconUpdates.WithLabelValues(types.UpdateRejected.String()).Inc()
	return types.Rejected(err), err
}

// UpdateBeaconsWithSignedData applies observations in order, each in its own
// cached context. A rejected item does not undo the items before it.
func (k Keeper) UpdateBeaconsWithSignedData(ctx sdk.Context, updates []types.SignedData) []types.UpdateResult {
	results := make([]types.UpdateResult, len(updates))
	calls := make([]Call, len(updates))
	for i, u := range updates {
		calls[i] = func(ctx sdk.Context) ([]byte, error) {
			res, err := k.UpdateBeaconWithSignedData(ctx, u.Airnode, u.TemplateID, u.Timestamp, u.Data, u.Signature)
			results[i] = res
			return nil, err
		}
	}

	for i, r := range TryMulticall(ctx, calls) {
		if !r.Success {
			results[i] = types.Rejected(r.Err)
		}
	}
	return results
}
