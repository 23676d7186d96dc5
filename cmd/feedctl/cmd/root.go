package cmd

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed"
	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

type configKey struct{}

func withConfig(cmd *cobra.Command, cfg Config) context.Context {
	return context.WithValue(cmd.Context(), configKey{}, cfg)
}

// configFromCmd returns the configuration resolved by the root command, or
// the defaults when the command runs outside it.
func configFromCmd(cmd *cobra.Command) Config {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(Config); ok {
			return cfg
		}
	}
	return Config{
		ChainID:  defaultChainID,
		Params:   types.DefaultParams(),
		LogLevel: defaultLogLevel,
	}
}

// NewRootCmd creates the feedctl root command.
func NewRootCmd() *cobra.Command {
	v := newViper()

	rootCmd := &cobra.Command{
		Use:   "feedctl",
		Short: "Airnode data feed tooling",
		Long: `feedctl derives data feed identifiers, signs observations and OEV updates as an
airnode, and replays signed data against an in-memory data feed store.

Every flag can also be set in the --config TOML file or as a FEEDCTL_* environment
variable, for example FEEDCTL_CHAIN_ID.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, cmd.Flags())
			if err != nil {
				return err
			}
			if err := applyConfigToFlags(v, cmd); err != nil {
				return err
			}
			cmd.SetContext(withConfig(cmd, cfg))
			return nil
		},
	}
	addConfigFlags(rootCmd)

	basic := datafeed.AppModuleBasic{}
	txCmd := &cobra.Command{Use: "tx", Short: "Airnode signing subcommands"}
	txCmd.AddCommand(basic.GetTxCmd())
	queryCmd := &cobra.Command{Use: "query", Aliases: []string{"q"}, Short: "Offline derivation and inspection subcommands"}
	queryCmd.AddCommand(basic.GetQueryCmd())

	rootCmd.AddCommand(
		txCmd,
		queryCmd,
		NewReplayCmd(),
	)
	return rootCmd
}

// newLogger builds a logger writing to the command's error stream at the
// configured level.
func newLogger(cmd *cobra.Command, cfg Config) (log.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", FlagLogLevel, cfg.LogLevel, err)
	}
	return log.NewLogger(cmd.ErrOrStderr(), log.LevelOption(level)), nil
}
