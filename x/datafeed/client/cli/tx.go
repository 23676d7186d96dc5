package cli

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/api3dao/airnode-protocol-v1-sub003/x/datafeed/types"
)

// GetTxCmd returns the airnode signing commands for the datafeed module
func GetTxCmd() *cobra.Command {
	datafeedTxCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Sign data feed observations and OEV updates",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	datafeedTxCmd.PersistentFlags().Bool(FlagJSON, false, "Print output as JSON")
	datafeedTxCmd.SetFlagErrorFunc(negativeValueHint)

	datafeedTxCmd.AddCommand(
		CmdSignData(),
		CmdSignOevUpdate(),
	)

	return datafeedTxCmd
}

// CmdSignData returns a CLI command that signs an observation as an airnode
func CmdSignData() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-data [template-id] [timestamp] [value]",
		Short: "Sign an int224 observation for a template",
		Long: `Sign an int224 observation for a template the way an airnode does. The value is
ABI-encoded as int256 and signed together with the template ID and timestamp as an
EIP-191 message. A negative value must follow --, after every flag.

Example:
  $ feedctl tx datafeed sign-data 0x1aa0... 1700000000 2500000000000000000000 --key-file airnode.key
  $ feedctl tx datafeed sign-data --key-file airnode.key -- 0x1aa0... 1700000000 -42`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(cmd)
			if err != nil {
				return err
			}
			templateID, err := parseHash("template-id", args[0])
			if err != nil {
				return err
			}
			timestamp, err := parseTimestamp(args[1])
			if err != nil {
				return err
			}
			value, err := parseValue(args[2])
			if err != nil {
				return err
			}

			data, err := types.EncodeValue(value)
			if err != nil {
				return err
			}
			sig, err := types.SignData(key, templateID, timestamp, data)
			if err != nil {
				return err
			}

			airnode := crypto.PubkeyToAddress(key.PublicKey)
			return printFields(cmd,
				field{"airnode", airnode.Hex()},
				field{"beacon_id", types.DeriveBeaconID(airnode, templateID).Hex()},
				field{"timestamp", strconv.FormatUint(uint64(timestamp), 10)},
				field{"data", hexutil.Encode(data)},
				field{"signature", hexutil.Encode(sig)},
			)
		},
	}
	addKeyFlags(cmd)
	return cmd
}

// CmdSignOevUpdate returns a CLI command that signs an OEV update for one beneficiary and bid
func CmdSignOevUpdate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-oev-update [chain-id] [data-feed-id] [update-id] [timestamp] [value] [updater] [bid]",
		Short: "Sign an OEV update for a specific updater and bid",
		Long: `Sign an OEV update as one airnode. The signature binds the chain, the server
address, the update and the winning bid, so it is only usable by that updater.
A negative value must follow --, after every flag.

Example:
  $ feedctl tx datafeed sign-oev-update api3-1 0x5a3d... 0x7d2e... 1700000100 2501 0xbe00... 1000uapi3 --server 0x5e4f... --key-file airnode.key`,
		Args: cobra.ExactArgs(7),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(cmd)
			if err != nil {
				return err
			}
			serverStr, _ := cmd.Flags().GetString(FlagServer)
			server, err := parseAddress(FlagServer, serverStr)
			if err != nil {
				return err
			}
			dataFeedID, err := parseHash("data-feed-id", args[1])
			if err != nil {
				return err
			}
			updateID, err := parseHash("update-id", args[2])
			if err != nil {
				return err
			}
			timestamp, err := parseTimestamp(args[3])
			if err != nil {
				return err
			}
			value, err := parseValue(args[4])
			if err != nil {
				return err
			}
			updater, err := parseAddress("updater", args[5])
			if err != nil {
				return err
			}
			bid, err := sdk.ParseCoinNormalized(args[6])
			if err != nil {
				return err
			}

			data, err := types.EncodeValue(value)
			if err != nil {
				return err
			}
			update := types.OevUpdate{
				DataFeedID: dataFeedID,
				UpdateID:   updateID,
				Timestamp:  timestamp,
				Data:       data,
			}
			sig, err := types.SignOevUpdate(key, args[0], server, update, updater, bid)
			if err != nil {
				return err
			}
			return printFields(cmd,
				field{"airnode", crypto.PubkeyToAddress(key.PublicKey).Hex()},
				field{"update_hash", types.OevUpdateHash(args[0], server, update, updater, bid).Hex()},
				field{"data", hexutil.Encode(data)},
				field{"bid", bid.String()},
				field{"value", value.String()},
				field{"signature", hexutil.Encode(sig)},
			)
		},
	}
	addKeyFlags(cmd)
	cmd.Flags().String(FlagServer, "", "Address of the data feed server the update is for")
	return cmd
}
