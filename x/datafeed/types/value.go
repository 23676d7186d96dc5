package types

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/holiman/uint256"
)

// EncodedValueLength is the length of an ABI-encoded int256.
const EncodedValueLength = 32

var (
	// int224 sign bit lives in byte 27 counted from the right
	int224SignByte = uint256.NewInt(27)

	// MaxInt224 and MinInt224 bound beacon values.
	MaxInt224 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 223), big.NewInt(1))
	MinInt224 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 223))

	int256Arguments = mustArguments("int256")
)

func mustArguments(typ string) abi.Arguments {
	t, err := abi.NewType(typ, "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: t}}
}

// FitsInt224 reports whether the two's complement word w is an int224.
func FitsInt224(w *uint256.Int) bool {
	var ext uint256.Int
	ext.ExtendSign(w, int224SignByte)
	return ext.Eq(w)
}

// WordToInt reads w as a signed integer.
func WordToInt(w *uint256.Int) sdkmath.Int {
	if w.Sign() >= 0 {
		return sdkmath.NewIntFromBigInt(w.ToBig())
	}
	var neg uint256.Int
	neg.Neg(w)
	b := neg.ToBig()
	return sdkmath.NewIntFromBigInt(b.Neg(b))
}

// IntToWord converts v to a two's complement word. v must be an int224.
func IntToWord(v sdkmath.Int) (uint256.Int, error) {
	var w uint256.Int
	if v.IsNil() {
		return w, errorsmod.Wrap(ErrInvalidValue, "nil value")
	}
	b := v.BigInt()
	if b.Cmp(MaxInt224) > 0 || b.Cmp(MinInt224) < 0 {
		return w, errorsmod.Wrapf(ErrInvalidValue, "%s does not fit in int224", v)
	}
	w.SetFromBig(b)
	return w, nil
}

// DecodeValue decodes ABI-encoded int256 data into a word, requiring that it
// fits in int224.
func DecodeValue(data []byte) (uint256.Int, error) {
	var w uint256.Int
	if len(data) != EncodedValueLength {
		return w, errorsmod.Wrapf(ErrInvalidValue, "data length %d, expected %d", len(data), EncodedValueLength)
	}
	out, err := int256Arguments.Unpack(data)
	if err != nil {
		return w, errorsmod.Wrap(ErrInvalidValue, err.Error())
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return w, errorsmod.Wrapf(ErrInvalidValue, "unexpected decoded type %T", out[0])
	}
	return IntToWord(sdkmath.NewIntFromBigInt(v))
}

// EncodeValue ABI-encodes v as an int256.
func EncodeValue(v sdkmath.Int) ([]byte, error) {
	if _, err := IntToWord(v); err != nil {
		return nil, err
	}
	return int256Arguments.Pack(v.BigInt())
}
