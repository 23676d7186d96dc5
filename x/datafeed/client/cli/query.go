package cli

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"

	"github.com/api3dao/airnode-protocol-v1-sub003/pkg/median"
	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// GetQueryCmd returns the offline derivation and inspection commands for the
// datafeed module. None of them needs a node.
func GetQueryCmd() *cobra.Command {
	datafeedQueryCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Derive data feed identifiers and inspect signed data",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	datafeedQueryCmd.PersistentFlags().Bool(FlagJSON, false, "Print output as JSON")
	datafeedQueryCmd.SetFlagErrorFunc(negativeValueHint)

	datafeedQueryCmd.AddCommand(
		GetCmdTemplateID(),
		GetCmdBeaconID(),
		GetCmdBeaconSetID(),
		GetCmdDapiNameHash(),
		GetCmdProxyAddress(),
		GetCmdVerifySignedData(),
		GetCmdMedian(),
	)

	return datafeedQueryCmd
}

// GetCmdTemplateID returns the command deriving a template ID
func GetCmdTemplateID() *cobra.Command {
	return &cobra.Command{
		Use:   "template-id [endpoint-id] [parameters-hex]",
		Short: "Derive a template ID from an endpoint ID and encoded parameters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID, err := parseHash("endpoint-id", args[0])
			if err != nil {
				return err
			}
			params, err := parseBytes("parameters", args[1])
			if err != nil {
				return err
			}
			return printFields(cmd, field{"template_id", types.DeriveTemplateID(endpointID, params).Hex()})
		},
	}
}

// GetCmdBeaconID returns the command deriving a beacon ID
func GetCmdBeaconID() *cobra.Command {
	return &cobra.Command{
		Use:   "beacon-id [airnode] [template-id]",
		Short: "Derive the beacon ID an airnode serves for a template",
		Long: `Derive the beacon ID an airnode serves for a template.

Example:
  $ feedctl query datafeed beacon-id 0x8438... 0x1aa0...`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			airnode, err := parseAddress("airnode", args[0])
			if err != nil {
				return err
			}
			templateID, err := parseHash("template-id", args[1])
			if err != nil {
				return err
			}
			return printFields(cmd, field{"beacon_id", types.DeriveBeaconID(airnode, templateID).Hex()})
		},
	}
}

// GetCmdBeaconSetID returns the command deriving a beacon set ID
func GetCmdBeaconSetID() *cobra.Command {
	return &cobra.Command{
		Use:   "beacon-set-id [beacon-id]...",
		Short: "Derive the beacon set ID of an ordered list of beacons",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]common.Hash, len(args))
			for i, arg := range args {
				id, err := parseHash(fmt.Sprintf("beacon-id %d", i), arg)
				if err != nil {
					return err
				}
				ids[i] = id
			}
			return printFields(cmd, field{"beacon_set_id", types.DeriveBeaconSetID(ids).Hex()})
		},
	}
}

// GetCmdDapiNameHash returns the command hashing a dAPI name
func GetCmdDapiNameHash() *cobra.Command {
	return &cobra.Command{
		Use:   "dapi-name-hash [name]",
		Short: "Encode a dAPI name as bytes32 and hash it",
		Long: `Encode a dAPI name as bytes32 and hash it.

Example:
  $ feedctl query datafeed dapi-name-hash ETH/USD`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := types.DapiNameToBytes32(args[0])
			if err != nil {
				return err
			}
			return printFields(cmd,
				field{"dapi_name", name.Hex()},
				field{"dapi_name_hash", types.DeriveDapiNameHash(name).Hex()},
			)
		},
	}
}

// GetCmdProxyAddress returns the command computing a proxy's deterministic address
func GetCmdProxyAddress() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy-address [data-feed|dapi] [id]",
		Short: "Compute the address a proxy binding deploys to",
		Long: `Compute the address a proxy binding deploys to. For a dapi proxy the id is
the dAPI name hash.

Example:
  $ feedctl query datafeed proxy-address dapi 0x5a3d... --server 0x5e4f... --beneficiary 0xbe00...`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind types.ProxyKind
			switch args[0] {
			case types.ProxyKindDataFeed.String(), "data-feed":
				kind = types.ProxyKindDataFeed
			case types.ProxyKindDapi.String():
				kind = types.ProxyKindDapi
			default:
				return fmt.Errorf("unknown proxy kind %q", args[0])
			}
			id, err := parseHash("id", args[1])
			if err != nil {
				return err
			}

			serverStr, _ := cmd.Flags().GetString(FlagServer)
			server, err := parseAddress(FlagServer, serverStr)
			if err != nil {
				return err
			}
			binding := types.ProxyBinding{Kind: kind, ID: id}
			if s, _ := cmd.Flags().GetString(FlagBeneficiary); s != "" {
				if binding.OevBeneficiary, err = parseAddress(FlagBeneficiary, s); err != nil {
					return err
				}
			}
			metadata, _ := cmd.Flags().GetString(FlagMetadata)
			if binding.Metadata, err = parseBytes(FlagMetadata, metadata); err != nil {
				return err
			}
			if err := binding.Validate(); err != nil {
				return err
			}
			return printFields(cmd,
				field{"proxy", binding.Address(server).Hex()},
				field{"init_code_hash", binding.InitCodeHash().Hex()},
			)
		},
	}
	cmd.Flags().String(FlagServer, "", "Address of the data feed server the proxy reads from")
	cmd.Flags().String(FlagBeneficiary, "", "OEV beneficiary bound to the proxy")
	cmd.Flags().String(FlagMetadata, "", "0x-prefixed metadata distinguishing otherwise identical proxies")
	return cmd
}

// GetCmdVerifySignedData returns the command checking an airnode signature
func GetCmdVerifySignedData() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [airnode] [template-id] [timestamp] [data] [signature]",
		Short: "Check that an airnode signed an observation",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			airnode, err := parseAddress("airnode", args[0])
			if err != nil {
				return err
			}
			templateID, err := parseHash("template-id", args[1])
			if err != nil {
				return err
			}
			timestamp, err := parseTimestamp(args[2])
			if err != nil {
				return err
			}
			data, err := hexutil.Decode(args[3])
			if err != nil {
				return fmt.Errorf("data must be 0x-prefixed hex: %w", err)
			}
			signature, err := hexutil.Decode(args[4])
			if err != nil {
				return fmt.Errorf("signature must be 0x-prefixed hex: %w", err)
			}

			if err := types.VerifySignedData(airnode, templateID, timestamp, data, signature); err != nil {
				return err
			}
			value, err := types.DecodeValue(data)
			if err != nil {
				return err
			}
			return printFields(cmd,
				field{"beacon_id", types.DeriveBeaconID(airnode, templateID).Hex()},
				field{"value", types.WordToInt(&value).String()},
				field{"timestamp", strconv.FormatUint(uint64(timestamp), 10)},
			)
		},
	}
}

// GetCmdMedian returns the command computing the aggregate of a list of values
func GetCmdMedian() *cobra.Command {
	return &cobra.Command{
		Use:   "median [value]...",
		Short: "Compute the median beacon sets use for the given int224 values",
		Long: `Compute the median beacon sets use for the given int224 values. Negative
values must follow --, otherwise they are read as flags.

Example:
  $ feedctl query datafeed median 300 100 200
  $ feedctl query datafeed median -- -5 3 7`,
		Args: cobra.RangeArgs(1, median.MaxMedianLength),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]uint256.Int, len(args))
			for i, arg := range args {
				v, err := parseValue(arg)
				if err != nil {
					return err
				}
				if values[i], err = types.IntToWord(v); err != nil {
					return err
				}
			}
			m, err := median.Median(values)
			if err != nil {
				return err
			}
			return printFields(cmd, field{"median", types.WordToInt(&m).String()})
		},
	}
}
