package keeper

import (
	"errors"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/api3dao/airnode-protocol-v1-sub003/pkg/median"
	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

const (
	gasBeaconSetBase      = 10000
	gasBeaconSetPerMember = 3000
)

// AggregateBeacons computes the beacon set record from the current state of
// its members without writing anything. The value is the median of member
// values; the timestamp is that of the median member, or for an even count
// the older of the two middle members.
func (k Keeper) AggregateBeacons(ctx sdk.Context, beaconIDs []common.Hash) (types.DataFeed, error) {
	n := len(beaconIDs)
	if n < 2 {
		return types.DataFeed{}, errorsmod.Wrapf(types.ErrInvalidBeaconSet, "specified %d beacons, need at least 2", n)
	}
	if n > median.MaxMedianLength {
		return types.DataFeed{}, errorsmod.Wrapf(types.ErrCapacityExceeded, "beacon set of %d > %d", n, median.MaxMedianLength)
	}

	var (
		values     [median.MaxMedianLength]uint256.Int
		timestamps [median.MaxMedianLength]uint32
	)
	for i, id := range beaconIDs {
		beacon, err := k.getDataFeed(ctx, id)
		if err != nil {
			return types.DataFeed{}, err
		}
		if !beacon.IsInitialized() {
			return types.DataFeed{}, errorsmod.Wrapf(types.ErrUninitializedBeacon, "beacon %s", id.Hex())
		}
		values[i] = beacon.Value
		timestamps[i] = beacon.Timestamp
	}

	value, err := median.Median(values[:n])
	if err != nil {
		return types.DataFeed{}, medianError(err)
	}
	lower, upper, err := median.MedianIndices(values[:n])
	if err != nil {
		return types.DataFeed{}, medianError(err)
	}
	timestamp := timestamps[lower]
	if timestamps[upper] < timestamp {
		timestamp = timestamps[upper]
	}
	return types.DataFeed{Value: value, Timestamp: timestamp}, nil
}

// UpdateBeaconSetWithBeacons recomputes and stores the beacon set formed by
// beaconIDs. An aggregate older than the stored one, or identical to it, is
// ignored without error.
func (k Keeper) UpdateBeaconSetWithBeacons(ctx sdk.Context, beaconIDs []common.Hash) (common.Hash, types.UpdateResult, error) {
	ctx.GasMeter().ConsumeGas(gasBeaconSetBase+uint64(len(beaconIDs))*gasBeaconSetPerMember, "datafeed_update_beacon_set")

	aggregate, err := k.AggregateBeacons(ctx, beaconIDs)
	if err != nil {
		k.metrics.BeaconSetUpdates.WithLabelValues(types.UpdateRejected.String()).Inc()
		return common.Hash{}, types.Rejected(err), err
	}

	beaconSetID := types.DeriveBeaconSetID(beaconIDs)
	stored, err := k.getDataFeed(ctx, beaconSetID)
	if err != nil {
		k.metrics.BeaconSetUpdates.WithLabelValues(types.UpdateRejected.String()).Inc()
		return beaconSetID, types.Rejected(err), err
	}
	if aggregate.Timestamp < stored.Timestamp ||
		(aggregate.Timestamp == stored.Timestamp && aggregate.Value.Eq(&stored.Value)) {
		k.metrics.BeaconSetUpdates.WithLabelValues(types.UpdateIgnoredStale.String()).Inc()
		return beaconSetID, types.IgnoredStale(), nil
	}

	if err := k.setDataFeed(ctx, beaconSetID, aggregate); err != nil {
		k.metrics.BeaconSetUpdates.WithLabelValues(types.UpdateRejected.String()).Inc()
		return beaconSetID, types.Rejected(err), err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeBeaconSetUpdated,
			sdk.NewAttribute(types.AttributeKeyBeaconSetID, beaconSetID.Hex()),
			sdk.NewAttribute(types.AttributeKeyValue, aggregate.Int().String()),
			sdk.NewAttribute(types.AttributeKeyTimestamp, strconv.FormatUint(uint64(aggregate.Timestamp), 10)),
		),
	)
	k.metrics.BeaconSetUpdates.WithLabelValues(types.UpdateApplied.String()).Inc()
	k.metrics.BeaconSetSize.Observe(float64(len(beaconIDs)))
	return beaconSetID, types.Applied(), nil
}

// medianError maps aggregation errors onto the module's registered errors.
func medianError(err error) error {
	switch {
	case errors.Is(err, median.ErrCapacityExceeded):
		return errorsmod.Wrap(types.ErrCapacityExceeded, err.Error())
	case errors.Is(err, median.ErrEmptyInput):
		return errorsmod.Wrap(types.ErrEmptyInput, err.Error())
	default:
		return err
	}
}
