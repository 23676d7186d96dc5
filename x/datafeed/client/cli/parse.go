package cli

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func parseHash(name, s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%s must be a 0x-prefixed 32-byte hex string, got %q", name, s)
	}
	return common.BytesToHash(b), nil
}

func parseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%s must be a hex address, got %q", name, s)
	}
	return common.HexToAddress(s), nil
}

func parseBytes(name, s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return nil, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be 0x-prefixed hex: %w", name, err)
	}
	return b, nil
}

func parseTimestamp(s string) (uint32, error) {
	ts, err := cast.ToUint32E(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return ts, nil
}

func parseValue(s string) (sdkmath.Int, error) {
	v, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid integer value %q", s)
	}
	return v, nil
}

// loadKey reads the signing key from --key, or from --key-file if --key is unset.
func loadKey(cmd *cobra.Command) (*ecdsa.PrivateKey, error) {
	hexKey, err := cmd.Flags().GetString(FlagKey)
	if err != nil {
		return nil, err
	}
	if hexKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", FlagKey, err)
		}
		return key, nil
	}

	path, err := cmd.Flags().GetString(FlagKeyFile)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("one of --%s or --%s is required", FlagKey, FlagKeyFile)
	}
	key, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load key from %s: %w", path, err)
	}
	return key, nil
}

// negativeValueHint points at -- when a negative value was taken for a flag.
func negativeValueHint(cmd *cobra.Command, err error) error {
	const unknownShorthand = "unknown shorthand flag: '"
	msg := err.Error()
	i := strings.Index(msg, unknownShorthand)
	if i < 0 || len(msg) <= i+len(unknownShorthand) || !unicode.IsDigit(rune(msg[i+len(unknownShorthand)])) {
		return err
	}
	return fmt.Errorf("%w; pass negative values after --, as in: %s -- -5", err, cmd.CommandPath())
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagKey, "", "Hex-encoded secp256k1 private key of the airnode")
	cmd.Flags().String(FlagKeyFile, "", "File holding the hex-encoded private key of the airnode")
}

type field struct {
	name  string
	value string
}

// printFields writes name: value lines, or a JSON object with --json.
func printFields(cmd *cobra.Command, fields ...field) error {
	asJSON, _ := cmd.Flags().GetBool(FlagJSON)
	out := cmd.OutOrStdout()
	if asJSON {
		obj := make(map[string]string, len(fields))
		for _, f := range fields {
			obj[f.name] = f.value
		}
		bz, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(bz))
		return err
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(out, "%s: %s\n", f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}
