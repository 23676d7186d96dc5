package median

import (
	"fmt"

	"github.com/holiman/uint256"
)

var one = uint256.NewInt(1)

// Median returns the median of values without modifying them. Even-length
// inputs yield the Average of the two middle elements.
func Median(values []uint256.Int) (uint256.Int, error) {
	n := len(values)
	if n == 0 {
		return uint256.Int{}, ErrEmptyInput
	}
	if n > MaxMedianLength {
		return uint256.Int{}, fmt.Errorf("%w: median length %d > %d", ErrCapacityExceeded, n, MaxMedianLength)
	}

	if n <= MaxSortLength {
		var buf [MaxSortLength]uint256.Int
		copy(buf[:], values)
		if err := Sort(buf[:n]); err != nil {
			return uint256.Int{}, err
		}
		if n%2 == 1 {
			return buf[n/2], nil
		}
		return Average(&buf[n/2-1], &buf[n/2]), nil
	}

	lower, upper, err := MedianIndices(values)
	if err != nil {
		return uint256.Int{}, err
	}
	if lower == upper {
		return values[lower], nil
	}
	return Average(&values[lower], &values[upper]), nil
}

// MedianIndices returns the positions in values of the lower and upper middle
// order statistics. For odd lengths both are the same index. Equal values are
// ordered by position, so the result is deterministic.
func MedianIndices(values []uint256.Int) (lower, upper int, err error) {
	n := len(values)
	if n == 0 {
		return 0, 0, ErrEmptyInput
	}
	if n > MaxMedianLength {
		return 0, 0, fmt.Errorf("%w: median length %d > %d", ErrCapacityExceeded, n, MaxMedianLength)
	}

	var buf [MaxMedianLength]uint8
	idx := buf[:n]
	for i := range idx {
		idx[i] = uint8(i)
	}

	if n <= MaxSortLength {
		sortIndices(values, idx)
		if n%2 == 1 {
			return int(idx[n/2]), int(idx[n/2]), nil
		}
		return int(idx[n/2-1]), int(idx[n/2]), nil
	}

	k := (n - 1) / 2
	quickselect(values, idx, k)
	if n%2 == 1 {
		return int(idx[k]), int(idx[k]), nil
	}
	// everything right of k is ordered after idx[k]; its minimum is k+1
	next := idx[k+1]
	for _, i := range idx[k+2:] {
		if less(values, i, next) {
			next = i
		}
	}
	return int(idx[k]), int(next), nil
}

// quickselect reorders idx so that idx[k] is the k-th smallest and the
// partitions on either side hold smaller and larger elements.
func quickselect(values []uint256.Int, idx []uint8, k int) {
	lo, hi := 0, len(idx)-1
	for lo < hi {
		p := partition(values, idx, lo, hi)
		switch {
		case k < p:
			hi = p - 1
		case k > p:
			lo = p + 1
		default:
			return
		}
	}
}

func partition(values []uint256.Int, idx []uint8, lo, hi int) int {
	mid := lo + (hi-lo)/2
	idx[mid], idx[hi] = idx[hi], idx[mid]
	pivot := idx[hi]
	store := lo
	for i := lo; i < hi; i++ {
		if less(values, idx[i], pivot) {
			idx[store], idx[i] = idx[i], idx[store]
			store++
		}
	}
	idx[store], idx[hi] = idx[hi], idx[store]
	return store
}

// Average returns (x+y)/2 rounded toward zero, computed without an
// intermediate sum so that no pair of int256 values can overflow.
func Average(x, y *uint256.Int) uint256.Int {
	var hx, hy, odd, z uint256.Int
	hx.SRsh(x, 1)
	hy.SRsh(y, 1)
	odd.And(x, y)
	odd.And(&odd, one)

	// floor((x+y)/2)
	z.Add(&hx, &hy)
	z.Add(&z, &odd)

	// a negative floor with one odd operand is one below the truncated value
	if z.Sign() < 0 {
		var carry uint256.Int
		carry.Xor(x, y)
		carry.And(&carry, one)
		z.Add(&z, &carry)
	}
	return z
}
