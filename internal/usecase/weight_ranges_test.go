package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseRangesLayout(t *testing.T) {
	calc := NewWeightRangeCalculator(2.0, 20.0)
	ranges := calc.BaseRanges()

	require.NotEmpty(t, ranges)
	assert.Equal(t, 0.0, ranges[0].Min)
	assert.Equal(t, 0.05, ranges[0].Max)

	// 10 fine bands to 0.50, then 16 coarse bands to 2.10
	assert.Len(t, ranges, 26)
	assert.Equal(t, 0.50, ranges[9].Max)
	assert.Equal(t, 0.60, ranges[10].Max)
	assert.Equal(t, 2.10, ranges[len(ranges)-1].Max)
}

func TestParcelRangesContiguousAndSorted(t *testing.T) {
	calc := NewWeightRangeCalculator(2.0, 20.0)

	for parcel := 1; parcel <= calc.MaxParcels(); parcel++ {
		ranges := calc.ParcelRanges(parcel)
		for i := 0; i < len(ranges)-1; i++ {
			assert.Less(t, ranges[i].Min, ranges[i].Max, "parcel %d range %d inverted", parcel, i)
			assert.Equal(t, ranges[i].Max, ranges[i+1].Min, "parcel %d gap between range %d and %d", parcel, i, i+1)
		}
		for _, r := range ranges {
			assert.LessOrEqual(t, r.Max, 20.0, "parcel %d exceeds total weight ceiling", parcel)
		}
	}
}

func TestParcelRangesShiftedByParcelWeight(t *testing.T) {
	calc := NewWeightRangeCalculator(2.0, 20.0)

	first := calc.ParcelRanges(1)
	second := calc.ParcelRanges(2)
	require.NotEmpty(t, second)

	assert.Equal(t, 2.0, second[0].Min)
	assert.Equal(t, 2.05, second[0].Max)
	assert.Equal(t, first[0].Max+2.0, second[0].Max)
}

func TestParcelRangesFilteredAtTotalCeiling(t *testing.T) {
	// Total ceiling of 3kg: parcel 2 only fits bands up to 3.00
	calc := NewWeightRangeCalculator(2.0, 3.0)

	ranges := calc.ParcelRanges(2)
	require.NotEmpty(t, ranges)
	assert.Equal(t, 3.0, ranges[len(ranges)-1].Max)

	// Parcel 3 starts at 4kg, entirely above the ceiling
	assert.Empty(t, calc.ParcelRanges(3))
}

func TestParcelBoundaryStitching(t *testing.T) {
	// The last band of parcel N must touch the first band of parcel N+1
	calc := NewWeightRangeCalculator(2.0, 20.0)

	p1 := calc.ParcelRanges(1)
	p2 := calc.ParcelRanges(2)
	require.NotEmpty(t, p1)
	require.NotEmpty(t, p2)

	// Base layout tops out one coarse step past the parcel weight, so the
	// layers overlap by design rather than leaving a hole
	assert.GreaterOrEqual(t, p1[len(p1)-1].Max, p2[0].Min)
}
