package cmd

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

const (
	// EnvPrefix prefixes every environment variable feedctl reads.
	EnvPrefix = "FEEDCTL"

	FlagConfig      = "config"
	FlagChainID     = "chain-id"
	FlagServer      = "server"
	FlagManager     = "manager"
	FlagTolerance   = "future-timestamp-tolerance"
	FlagLogLevel    = "log-level"
	FlagMetricsPort = "metrics-port"

	defaultChainID  = "api3-local"
	defaultLogLevel = "info"
)

// Config is the resolved feedctl configuration.
type Config struct {
	ChainID     string
	Server      common.Address
	Manager     common.Address
	Params      types.Params
	LogLevel    string
	MetricsPort int
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(FlagChainID, defaultChainID)
	v.SetDefault(FlagTolerance, types.DefaultFutureTimestampTolerance)
	v.SetDefault(FlagLogLevel, defaultLogLevel)
	v.SetDefault(FlagMetricsPort, 0)
	return v
}

// loadConfig resolves flags, then FEEDCTL_* environment variables, then the
// TOML file named by --config, then defaults.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (Config, error) {
	if err := v.BindPFlags(flags); err != nil {
		return Config{}, err
	}
	if path := v.GetString(FlagConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := Config{
		ChainID:  v.GetString(FlagChainID),
		LogLevel: v.GetString(FlagLogLevel),
	}

	tolerance, err := cast.ToUint32E(v.Get(FlagTolerance))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", FlagTolerance, err)
	}
	cfg.Params = types.Params{FutureTimestampTolerance: tolerance}
	if err := cfg.Params.Validate(); err != nil {
		return Config{}, err
	}

	if cfg.MetricsPort, err = cast.ToIntE(v.Get(FlagMetricsPort)); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", FlagMetricsPort, err)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return Config{}, fmt.Errorf("invalid %s %d", FlagMetricsPort, cfg.MetricsPort)
	}

	for name, dst := range map[string]*common.Address{FlagServer: &cfg.Server, FlagManager: &cfg.Manager} {
		s := v.GetString(name)
		if s == "" {
			continue
		}
		if !common.IsHexAddress(s) {
			return Config{}, fmt.Errorf("%s must be a hex address, got %q", name, s)
		}
		*dst = common.HexToAddress(s)
	}
	return cfg, nil
}

// applyConfigToFlags copies resolved values into flags the user did not set,
// so module commands reading their own flags see the configured defaults.
func applyConfigToFlags(v *viper.Viper, cmd *cobra.Command) error {
	var firstErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) || firstErr != nil {
			return
		}
		if err := f.Value.Set(cast.ToString(v.Get(f.Name))); err != nil {
			firstErr = fmt.Errorf("invalid configured value for --%s: %w", f.Name, err)
		}
	})
	return firstErr
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagConfig, "", "Path to a TOML config file")
	cmd.PersistentFlags().String(FlagChainID, defaultChainID, "Chain ID OEV signatures are bound to")
	cmd.PersistentFlags().String(FlagManager, "", "Address holding every role in replayed state")
	cmd.PersistentFlags().Uint32(FlagTolerance, types.DefaultFutureTimestampTolerance, "Seconds an observation may be ahead of block time")
	cmd.PersistentFlags().String(FlagLogLevel, defaultLogLevel, "Log level (trace|debug|info|warn|error)")
}
