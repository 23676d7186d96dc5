package median_test

import (
	"math/big"
	"sort"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/api3dao/airnode-protocol-v1-sub003/pkg/median"
)

var (
	maxInt256 = func() uint256.Int {
		var z uint256.Int
		z.SetAllOne()
		z.Rsh(&z, 1)
		return z
	}()
	minInt256 = func() uint256.Int {
		var z uint256.Int
		z.Not(&maxInt256)
		return z
	}()
)

func word(v int64) uint256.Int {
	var z uint256.Int
	z.SetFromBig(big.NewInt(v))
	return z
}

func words(vs ...int64) []uint256.Int {
	out := make([]uint256.Int, len(vs))
	for i, v := range vs {
		out[i] = word(v)
	}
	return out
}

// signedBig reads z as a two's complement integer.
func signedBig(z *uint256.Int) *big.Int {
	if z.Sign() >= 0 {
		return z.ToBig()
	}
	var neg uint256.Int
	neg.Neg(z)
	b := neg.ToBig()
	return b.Neg(b)
}

// permute calls fn with every permutation of values (Heap's algorithm).
func permute(values []uint256.Int, fn func([]uint256.Int)) {
	var generate func(k int)
	generate = func(k int) {
		if k <= 1 {
			fn(values)
			return
		}
		for i := 0; i < k-1; i++ {
			generate(k - 1)
			if k%2 == 0 {
				values[i], values[k-1] = values[k-1], values[i]
			} else {
				values[0], values[k-1] = values[k-1], values[0]
			}
		}
		generate(k - 1)
	}
	generate(len(values))
}

// referenceMedian sorts a copy with the standard library and averages with big.Int.
func referenceMedian(values []uint256.Int) *big.Int {
	bigs := make([]*big.Int, len(values))
	for i := range values {
		bigs[i] = signedBig(&values[i])
	}
	sort.Slice(bigs, func(i, j int) bool { return bigs[i].Cmp(bigs[j]) < 0 })
	n := len(bigs)
	if n%2 == 1 {
		return bigs[n/2]
	}
	sum := new(big.Int).Add(bigs[n/2-1], bigs[n/2])
	return sum.Quo(sum, big.NewInt(2))
}

func TestSortAllPermutations(t *testing.T) {
	for n := 1; n <= median.MaxSortLength; n++ {
		sorted := make([]uint256.Int, n)
		for i := range sorted {
			sorted[i] = word(int64(i) - int64(n/2))
		}
		input := append([]uint256.Int(nil), sorted...)
		scratch := make([]uint256.Int, n)

		permute(input, func(p []uint256.Int) {
			copy(scratch, p)
			require.NoError(t, median.Sort(scratch))
			require.Equal(t, sorted, scratch)
		})
	}
}

func TestSortWithDuplicatesAndExtremes(t *testing.T) {
	values := []uint256.Int{maxInt256, word(0), minInt256, word(-1), word(1), maxInt256, word(-1)}
	require.NoError(t, median.Sort(values))
	require.Equal(t, []uint256.Int{minInt256, word(-1), word(-1), word(0), word(1), maxInt256, maxInt256}, values)
}

func TestSortCapacityExceeded(t *testing.T) {
	for extra := 1; extra <= 3; extra++ {
		n := median.MaxSortLength + extra
		values := make([]uint256.Int, n)
		for i := range values {
			values[i] = word(int64(n - i))
		}
		before := append([]uint256.Int(nil), values...)

		err := median.Sort(values)
		require.ErrorIs(t, err, median.ErrCapacityExceeded)
		require.Equal(t, before, values, "input must be untouched")
	}
}

func TestMedianAllPermutations(t *testing.T) {
	for n := 1; n <= 8; n++ {
		input := make([]uint256.Int, n)
		for i := range input {
			input[i] = word(int64(i*3) - 7)
		}
		want := referenceMedian(input)

		permute(input, func(p []uint256.Int) {
			before := append([]uint256.Int(nil), p...)
			got, err := median.Median(p)
			require.NoError(t, err)
			require.Zero(t, want.Cmp(signedBig(&got)), "median of %v", p)
			require.Equal(t, before, p, "median must not reorder its input")
		})
	}
}

func TestMedianMatchesReference(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, median.MaxMedianLength).Draw(t, "n")
		raw := rapid.SliceOfN(rapid.Int64Range(-50, 50), n, n).Draw(t, "values")
		values := words(raw...)

		got, err := median.Median(values)
		if err != nil {
			t.Fatalf("median: %v", err)
		}
		if want := referenceMedian(values); want.Cmp(signedBig(&got)) != 0 {
			t.Fatalf("median(%v) = %s, want %s", raw, signedBig(&got), want)
		}
	})
}

func TestMedianFullWidthValues(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, median.MaxMedianLength).Draw(t, "n")
		values := make([]uint256.Int, n)
		for i := range values {
			values[i].SetBytes32(rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "word"))
		}

		got, err := median.Median(values)
		if err != nil {
			t.Fatalf("median: %v", err)
		}
		if want := referenceMedian(values); want.Cmp(signedBig(&got)) != 0 {
			t.Fatalf("median = %s, want %s", signedBig(&got), want)
		}
	})
}

func TestMedianIndicesSelectMiddleMembers(t *testing.T) {
	values := words(300, 100, 200)
	lower, upper, err := median.MedianIndices(values)
	require.NoError(t, err)
	require.Equal(t, 2, lower)
	require.Equal(t, 2, upper)

	values = words(40, 10, 30, 20)
	lower, upper, err = median.MedianIndices(values)
	require.NoError(t, err)
	require.Equal(t, 3, lower)
	require.Equal(t, 2, upper)

	// above the sort bound the quickselect path must agree with a full sort
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(median.MaxSortLength+1, median.MaxMedianLength).Draw(t, "n")
		raw := rapid.SliceOfN(rapid.Int64Range(-5, 5), n, n).Draw(t, "values")
		values := words(raw...)

		lower, upper, err := median.MedianIndices(values)
		if err != nil {
			t.Fatalf("indices: %v", err)
		}
		sorted := append([]int64(nil), raw...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		if n%2 == 1 {
			if lower != upper || raw[lower] != sorted[n/2] {
				t.Fatalf("odd: got %d/%d for %v", lower, upper, raw)
			}
			return
		}
		if lower == upper || raw[lower] != sorted[n/2-1] || raw[upper] != sorted[n/2] {
			t.Fatalf("even: got %d/%d for %v", lower, upper, raw)
		}
	})
}

func TestMedianErrors(t *testing.T) {
	_, err := median.Median(nil)
	require.ErrorIs(t, err, median.ErrEmptyInput)

	_, _, err = median.MedianIndices([]uint256.Int{})
	require.ErrorIs(t, err, median.ErrEmptyInput)

	for extra := 1; extra <= 3; extra++ {
		values := make([]uint256.Int, median.MaxMedianLength+extra)
		_, err := median.Median(values)
		require.ErrorIs(t, err, median.ErrCapacityExceeded)
		_, _, err = median.MedianIndices(values)
		require.ErrorIs(t, err, median.ErrCapacityExceeded)
	}
}

func TestAverageExtremes(t *testing.T) {
	got := median.Average(&maxInt256, &maxInt256)
	require.Equal(t, maxInt256, got)

	got = median.Average(&minInt256, &minInt256)
	require.Equal(t, minInt256, got)

	// (max + min) / 2 = -1/2, truncated to zero
	got = median.Average(&maxInt256, &minInt256)
	require.True(t, got.IsZero())

	got = median.Average(&minInt256, &maxInt256)
	require.True(t, got.IsZero())
}

func TestAverageSmallRangeBruteForce(t *testing.T) {
	for x := int64(-2); x <= 2; x++ {
		for y := int64(-2); y <= 2; y++ {
			a, b := word(x), word(y)
			got := median.Average(&a, &b)

			want := big.NewInt(x + y)
			want.Quo(want, big.NewInt(2))
			require.Zero(t, want.Cmp(signedBig(&got)), "average(%d, %d)", x, y)

			swapped := median.Average(&b, &a)
			require.Equal(t, got, swapped)
		}
	}
}

func TestAverageMatchesBigArithmetic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var x, y uint256.Int
		x.SetBytes32(rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "x"))
		y.SetBytes32(rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "y"))

		got := median.Average(&x, &y)
		want := new(big.Int).Add(signedBig(&x), signedBig(&y))
		want.Quo(want, big.NewInt(2))
		if want.Cmp(signedBig(&got)) != 0 {
			t.Fatalf("average(%s, %s) = %s, want %s", signedBig(&x), signedBig(&y), signedBig(&got), want)
		}
	})
}
