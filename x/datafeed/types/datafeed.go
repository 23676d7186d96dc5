package types

import (
	"encoding/binary"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"
)

// DataFeedRecordLength is the size of one packed record.
const DataFeedRecordLength = 32

// DataFeed is the state of a beacon or beacon set: an int224 value and the
// Unix timestamp it was observed at. A zero timestamp means never written.
type DataFeed struct {
	Value     uint256.Int
	Timestamp uint32
}

// NewDataFeed builds a record from a signed value.
func NewDataFeed(value sdkmath.Int, timestamp uint32) (DataFeed, error) {
	w, err := IntToWord(value)
	if err != nil {
		return DataFeed{}, err
	}
	return DataFeed{Value: w, Timestamp: timestamp}, nil
}

// Int returns the value as a signed integer.
func (f DataFeed) Int() sdkmath.Int {
	return WordToInt(&f.Value)
}

// IsInitialized reports whether the record was ever written.
func (f DataFeed) IsInitialized() bool {
	return f.Timestamp != 0
}

// Marshal packs the record into one slot: 4 bytes of big-endian timestamp
// followed by the low 28 bytes of the value.
func (f DataFeed) Marshal() ([]byte, error) {
	if !FitsInt224(&f.Value) {
		return nil, errorsmod.Wrap(ErrInvalidValue, "value does not fit in int224")
	}
	word := f.Value.Bytes32()
	bz := make([]byte, DataFeedRecordLength)
	binary.BigEndian.PutUint32(bz[:4], f.Timestamp)
	copy(bz[4:], word[4:])
	return bz, nil
}

// UnmarshalDataFeed reverses DataFeed.Marshal, sign-extending the value.
func UnmarshalDataFeed(bz []byte) (DataFeed, error) {
	if len(bz) != DataFeedRecordLength {
		return DataFeed{}, errorsmod.Wrapf(ErrInvalidValue, "record length %d, expected %d", len(bz), DataFeedRecordLength)
	}
	var f DataFeed
	f.Timestamp = binary.BigEndian.Uint32(bz[:4])

	var word [32]byte
	copy(word[4:], bz[4:])
	f.Value.SetBytes32(word[:])
	f.Value.ExtendSign(&f.Value, int224SignByte)
	return f, nil
}
