package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/keeper"
	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// ReplayBatch is the input of the replay command.
type ReplayBatch struct {
	// BlockTime is the Unix time of the replay block. Zero means now.
	BlockTime     int64               `json:"block_time"`
	Genesis       *types.GenesisState `json:"genesis,omitempty"`
	BeaconUpdates []ReplaySignedData  `json:"beacon_updates"`
	BeaconSets    [][]common.Hash     `json:"beacon_sets"`
	DapiNames     []ReplayDapiName    `json:"dapi_names"`
}

// ReplaySignedData is one signed airnode observation.
type ReplaySignedData struct {
	Airnode    common.Address `json:"airnode"`
	TemplateID common.Hash    `json:"template_id"`
	Timestamp  uint32         `json:"timestamp"`
	Data       hexutil.Bytes  `json:"data"`
	Signature  hexutil.Bytes  `json:"signature"`
}

// ReplayDapiName points a dAPI name at a data feed.
type ReplayDapiName struct {
	Name       string      `json:"name"`
	DataFeedID common.Hash `json:"data_feed_id"`
}

// ReplayOutcome is the result of one replayed operation.
type ReplayOutcome struct {
	ID     common.Hash `json:"id"`
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// ReplayReport is the output of the replay command.
type ReplayReport struct {
	BeaconUpdates []ReplayOutcome     `json:"beacon_updates"`
	BeaconSets    []ReplayOutcome     `json:"beacon_sets"`
	DapiNames     []ReplayOutcome     `json:"dapi_names"`
	State         *types.GenesisState `json:"state"`
}

// NewReplayCmd returns the command that replays a batch of signed data
// against an in-memory data feed store.
func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [batch.json]",
		Short: "Replay signed data against an in-memory data feed store",
		Long: `Replay a JSON batch of signed beacon updates, beacon set updates and dAPI name
registrations against an in-memory store, then print every outcome and the
resulting state. The store starts from the batch's genesis when one is given.

The replay fails if any module invariant is broken afterwards. With --metrics-port
the update counters stay served on /metrics until the process is interrupted.

Example:
  $ feedctl replay batch.json --server 0x5e4f... --manager 0xa11c...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromCmd(cmd)
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			bz, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read batch: %w", err)
			}
			var batch ReplayBatch
			if err := json.Unmarshal(bz, &batch); err != nil {
				return fmt.Errorf("failed to decode batch %s: %w", args[0], err)
			}

			var server *http.Server
			if cfg.MetricsPort > 0 {
				server = StartPrometheusServer(cfg.MetricsPort, logger)
				logger.Info("serving metrics", "port", cfg.MetricsPort)
			}

			report, err := Replay(cfg, batch, logger)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if server != nil {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				<-ctx.Done()
				return server.Close()
			}
			return nil
		},
	}
	cmd.Flags().String(FlagServer, "", "Address OEV signatures and proxies are bound to")
	cmd.Flags().Int(FlagMetricsPort, 0, "Serve Prometheus metrics on this port (0 disables)")
	return cmd
}

// Replay applies batch to a fresh in-memory store configured by cfg.
func Replay(cfg Config, batch ReplayBatch, logger log.Logger) (*ReplayReport, error) {
	blockTime := time.Now().UTC()
	if batch.BlockTime != 0 {
		blockTime = time.Unix(batch.BlockTime, 0).UTC()
	}
	k, ctx, err := newReplayKeeper(cfg, blockTime, logger)
	if err != nil {
		return nil, err
	}

	if batch.Genesis != nil {
		if err := k.InitGenesis(ctx, *batch.Genesis); err != nil {
			return nil, fmt.Errorf("failed to load genesis: %w", err)
		}
	}

	report := &ReplayReport{
		BeaconUpdates: make([]ReplayOutcome, 0, len(batch.BeaconUpdates)),
		BeaconSets:    make([]ReplayOutcome, 0, len(batch.BeaconSets)),
		DapiNames:     make([]ReplayOutcome, 0, len(batch.DapiNames)),
	}

	updates := make([]types.SignedData, len(batch.BeaconUpdates))
	for i, u := range batch.BeaconUpdates {
		updates[i] = types.SignedData{
			Airnode:    u.Airnode,
			TemplateID: u.TemplateID,
			Timestamp:  u.Timestamp,
			Data:       u.Data,
			Signature:  u.Signature,
		}
	}
	for i, res := range k.UpdateBeaconsWithSignedData(ctx, updates) {
		report.BeaconUpdates = append(report.BeaconUpdates, outcome(updates[i].BeaconID(), res))
	}

	for _, ids := range batch.BeaconSets {
		id, res, _ := k.UpdateBeaconSetWithBeacons(ctx, ids)
		if id == (common.Hash{}) {
			id = types.DeriveBeaconSetID(ids)
		}
		report.BeaconSets = append(report.BeaconSets, outcome(id, res))
	}

	for _, d := range batch.DapiNames {
		o := ReplayOutcome{Status: types.UpdateApplied.String()}
		name, err := types.DapiNameToBytes32(d.Name)
		if err == nil {
			o.ID = types.DeriveDapiNameHash(name)
			err = k.SetDapiName(ctx, k.Manager(), name, d.DataFeedID)
		}
		if err != nil {
			o.Status = types.UpdateRejected.String()
			o.Error = err.Error()
		}
		report.DapiNames = append(report.DapiNames, o)
	}

	report.State = k.ExportGenesis(ctx)
	if msg, broken := keeper.AllInvariants(*k)(ctx); broken {
		return report, fmt.Errorf("replayed state is inconsistent: %s", msg)
	}
	logger.Info("replay complete",
		"beacon_updates", len(report.BeaconUpdates),
		"beacon_sets", len(report.BeaconSets),
		"dapi_names", len(report.DapiNames),
	)
	return report, nil
}

func outcome(id common.Hash, res types.UpdateResult) ReplayOutcome {
	o := ReplayOutcome{ID: id, Status: res.Status.String()}
	if res.Reason != nil {
		o.Error = res.Reason.Error()
	}
	return o
}

// newReplayKeeper mounts the datafeed store on an in-memory database. The
// manager holds every role, so no separate role registry is wired.
func newReplayKeeper(cfg Config, blockTime time.Time, logger log.Logger) (*keeper.Keeper, sdk.Context, error) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		return nil, sdk.Context{}, fmt.Errorf("failed to load store: %w", err)
	}

	k := keeper.NewKeeper(storeKey, nil, cfg.Manager, cfg.Server)
	ctx := sdk.NewContext(stateStore, cmtproto.Header{
		ChainID: cfg.ChainID,
		Height:  1,
		Time:    blockTime,
	}, false, logger)

	if err := k.SetParams(ctx, cfg.Params); err != nil {
		return nil, sdk.Context{}, err
	}
	return k, ctx, nil
}
