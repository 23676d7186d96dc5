package keeper_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	keepertest "github.com/api3dao/airnode-protocol-v1-sub003/testutil/keeper"
	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

const baseTimestamp = uint32(keepertest.TestBlockTime - 1000)

func TestUpdateBeaconStaleIsNoOp(t *testing.T) {
	k, _, ctx := keepertest.DataFeedKeeper(t)
	airnode := keepertest.NewAirnode(t)
	templateID := keepertest.TestTemplateID("ETH/USD")

	beaconID := airnode.UpdateBeacon(t, k, ctx, templateID, baseTimestamp, 100)

	for _, ts := range []uint32{baseTimestamp, baseTimestamp - 1, 1} {
		sd := airnode.SignedData(t, templateID, ts, 999)
		res, err := k.UpdateBeaconWithSignedData(ctx, sd.Airnode, sd.TemplateID, sd.Timestamp, sd.Data, sd.Signature)
		require.NoError(t, err)
		require.Equal(t, types.UpdateIgnoredStale, res.Status)
		require.True(t, res.Ok())

		feed, err := k.ReadDataFeedWithID(ctx, beaconID)
		require.NoError(t, err)
		require.Equal(t, baseTimestamp, feed.Timestamp)
		require.True(t, sdkmath.NewInt(100).Equal(feed.Int()))
	}

	airnode.UpdateBeacon(t, k, ctx, templateID, baseTimestamp+1, -250)
	feed, err := k.ReadDataFeedWithID(ctx, beaconID)
	require.NoError(t, err)
	require.Equal(t, baseTimestamp+1, feed.Timestamp)
	require.True(t, sdkmath.NewInt(-250).Equal(feed.Int()))
}

func TestReadUninitializedThenUpdated(t *testing.T) {
	k, _, ctx := keepertest.DataFeedKeeper(t)
	airnode := keepertest.NewAirnode(t)
	templateID := keepertest.TestTemplateID("BTC/USD")
	beaconID := airnode.BeaconID(templateID)

	_, err := k.ReadDataFeedWithID(ctx, beaconID)
	require.ErrorIs(t, err, types.ErrNotInitialized)

	airnode.UpdateBeacon(t, k, ctx, templateID, baseTimestamp, 67_000)

	feed, err := k.ReadDataFeedWithID(ctx, beaconID)
	require.NoError(t, err)
	require.Equal(t, baseTimestamp, feed.Timestamp)
	require.True(t, sdkmath.NewInt(67_000).Equal(feed.Int()))
}

func TestUpdateBeaconEmitsEvent(t *testing.T) {
	k, _, ctx := keepertest.DataFeedKeeper(t)
	airnode := keepertest.NewAirnode(t)
	templateID := keepertest.TestTemplateID("ETH/USD")

	beaconID := airnode.UpdateBeacon(t, k, ctx, templateID, baseTimestamp, 5)

	events := ctx.EventManager().Events()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.Equal(t, types.EventTypeBeaconUpdated, last.Type)

	attrs := map[string]string{}
	for _, a := range last.Attributes {
		attrs[a.Key] = a.Value
	}
	require.Equal(t, beaconID.Hex(), attrs[types.AttributeKeyBeaconID])
	require.Equal(t, "5", attrs[types.AttributeKeyValue])
}

func TestUpdateBeaconFutureTimestamp(t *testing.T) {
	k, _, ctx := keepertest.DataFeedKeeper(t)
	airnode := keepertest.NewAirnode(t)
	templateID := keepertest.TestTemplateID("ETH/USD")
	limit := uint32(keepertest.TestBlockTime) + types.DefaultFutureTimestampTolerance

	sd := airnode.SignedData(t, templateID, limit+1, 1)
	res, err := k.UpdateBeaconWithSignedData(ctx, sd.Airnode, sd.TemplateID, sd.Timestamp, sd.Data, sd.Signature)
	require.ErrorIs(t, err, types.ErrFutureTimestamp)
	require.Equal(t, types.UpdateRejected, res.Status)
	require.ErrorIs(t, res.Reason, types.ErrFutureTimestamp)

	_, err = k.ReadDataFeedWithID(ctx, sd.BeaconID())
	require.ErrorIs(t, err, types.ErrNotInitialized)

	airnode.UpdateBeacon(t, k, ctx, templateID, limit, 1)
}

func TestUpdateBeaconRejectsInvalidInput(t *testing.T) {
	k, _, ctx := keepertest.DataFeedKeeper(t)
	airnode := keepertest.NewAirnode(t)
	other := keepertest.NewAirnode(t)
	templateID := keepertest.TestTemplateID("ETH/USD")

	t.Run("signed by another airnode", func(t *testing.T) {
		sd := other.SignedData(t, templateID, baseTimestamp, 1)
		_, err := k.UpdateBeaconWithSignedData(ctx, airnode.Address, sd.TemplateID, sd.Timestamp, sd.Data, sd.Signature)
		require.ErrorIs(t, err, types.ErrInvalidSignature)
	})

	t.Run("tampered data", func(t *testing.T) {
		sd := airnode.SignedData(t, templateID, baseTimestamp, 1)
		tampered, err := types.EncodeValue(sdkmath.NewInt(2))
		require.NoError(t, err)
		_, err = k.UpdateBeaconWithSignedData(ctx, sd.Airnode, sd.TemplateID, sd.Timestamp, tampered, sd.Signature)
		require.ErrorIs(t, err, types.ErrInvalidSignature)
	})

	t.Run("truncated signature", func(t *testing.T) {
		sd := airnode.SignedData(t, templateID, baseTimestamp, 1)
		_, err := k.UpdateBeaconWithSignedData(ctx, sd.Airnode, sd.TemplateID, sd.Timestamp, sd.Data, sd.Signature[:64])
		require.ErrorIs(t, err, types.ErrInvalidSignature)
	})

	t.Run("value outside int224", func(t *testing.T) {
		data := common.MaxHash.Bytes()
		data[0] = 0x7f
		sig, err := types.SignData(airnode.Key, templateID, baseTimestamp, data)
		require.NoError(t, err)
		_, err = k.UpdateBeaconWithSignedData(ctx, airnode.Address, templateID, baseTimestamp, data, sig)
		require.ErrorIs(t, err, types.ErrInvalidValue)
	})

	t.Run("invalid signature is fatal even when stale", func(t *testing.T) {
		airnode.UpdateBeacon(t, k, ctx, templateID, baseTimestamp+10, 1)
		sd := other.SignedData(t, templateID, baseTimestamp, 1)
		_, err := k.UpdateBeaconWithSignedData(ctx, airnode.Address, sd.TemplateID, sd.Timestamp, sd.Data, sd.Signature)
		require.ErrorIs(t, err, types.ErrInvalidSignature)
	})
}

func TestUpdateBeaconsWithSignedDataIsolatesFailures(t *testing.T) {
	k, _, ctx := keepertest.DataFeedKeeper(t)
	a := keepertest.NewAirnode(t)
	b := keepertest.NewAirnode(t)
	templateID := keepertest.TestTemplateID("ETH/USD")

	bad := b.SignedData(t, templateID, baseTimestamp, 7)
	bad.Signature = a.SignedData(t, templateID, baseTimestamp, 7).Signature

	results := k.UpdateBeaconsWithSignedData(ctx, []types.SignedData{
		a.SignedData(t, templateID, baseTimestamp, 10),
		bad,
		a.SignedData(t, templateID, baseTimestamp+5, 11),
		a.SignedData(t, templateID, baseTimestamp+1, 12),
	})
	require.Len(t, results, 4)
	require.Equal(t, types.UpdateApplied, results[0].Status)
	require.Equal(t, types.UpdateRejected, results[1].Status)
	require.ErrorIs(t, results[1].Reason, types.ErrInvalidSignature)
	require.Equal(t, types.UpdateApplied, results[2].Status)
	require.Equal(t, types.UpdateIgnoredStale, results[3].Status)

	feed, err := k.ReadDataFeedWithID(ctx, a.BeaconID(templateID))
	require.NoError(t, err)
	require.Equal(t, baseTimestamp+5, feed.Timestamp)
	require.True(t, sdkmath.NewInt(11).Equal(feed.Int()))

	_, err = k.ReadDataFeedWithID(ctx, b.BeaconID(templateID))
	require.ErrorIs(t, err, types.ErrNotInitialized)
}
