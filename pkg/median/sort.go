// Package median implements the bounded sort, median and average primitives
// used to combine reporter observations. Values are 256-bit two's complement
// words compared with signed semantics.
package median

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// MaxSortLength is the largest slice Sort accepts.
	MaxSortLength = 9
	// MaxMedianLength is the largest slice Median and MedianIndices accept.
	MaxMedianLength = 21
)

var (
	// ErrCapacityExceeded is returned when an input is longer than the fixed bound.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrEmptyInput is returned for a median of zero elements.
	ErrEmptyInput = errors.New("empty input")
)

// Sort sorts values in place in ascending signed order. Slices longer than
// MaxSortLength are rejected before any element is touched.
func Sort(values []uint256.Int) error {
	if len(values) > MaxSortLength {
		return fmt.Errorf("%w: sort length %d > %d", ErrCapacityExceeded, len(values), MaxSortLength)
	}
	insertionSort(values)
	return nil
}

func insertionSort(values []uint256.Int) {
	for i := 1; i < len(values); i++ {
		key := values[i]
		j := i
		for ; j > 0 && key.Slt(&values[j-1]); j-- {
			values[j] = values[j-1]
		}
		values[j] = key
	}
}

// sortIndices sorts idx so that values[idx[i]] is ascending. Ties keep the
// lower original index first.
func sortIndices(values []uint256.Int, idx []uint8) {
	for i := 1; i < len(idx); i++ {
		key := idx[i]
		j := i
		for ; j > 0 && less(values, key, idx[j-1]); j-- {
			idx[j] = idx[j-1]
		}
		idx[j] = key
	}
}

// less orders indices by signed value, then by index.
func less(values []uint256.Int, a, b uint8) bool {
	if values[a].Slt(&values[b]) {
		return true
	}
	if values[a].Eq(&values[b]) {
		return a < b
	}
	return false
}
