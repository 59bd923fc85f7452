package usecase

import (
	"math"

	"ratebridge-backend/internal/domain"
)

// Band synthesis constants: fine 0.05kg steps up to half a kilo, then coarse
// 0.10kg steps up to one coarse step past the parcel ceiling.
const (
	fineStep   = 0.05
	fineLimit  = 0.50
	coarseStep = 0.10
)

// WeightRangeCalculator synthesizes the contiguous weight bands for one
// carrier's parcel geometry. Pure; no side effects.
type WeightRangeCalculator struct {
	maxParcelWeight float64
	maxTotalWeight  float64
}

func NewWeightRangeCalculator(maxParcelWeight, maxTotalWeight float64) *WeightRangeCalculator {
	return &WeightRangeCalculator{
		maxParcelWeight: maxParcelWeight,
		maxTotalWeight:  maxTotalWeight,
	}
}

// round2 keeps all band bounds and prices at currency/centigram granularity,
// avoiding float drift across the repeated additions.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BaseRanges returns the parcel-1 band layout: 0.05 steps to 0.50, then 0.10
// steps to maxParcelWeight+0.10 (2.10 for the standard 2.00 parcel).
func (c *WeightRangeCalculator) BaseRanges() []domain.WeightRange {
	var ranges []domain.WeightRange
	min := 0.0
	for max := fineStep; max <= fineLimit+1e-9; max += fineStep {
		r := domain.WeightRange{Min: round2(min), Max: round2(max)}
		ranges = append(ranges, r)
		min = r.Max
	}
	ceiling := c.maxParcelWeight + coarseStep
	for max := fineLimit + coarseStep; max <= ceiling+1e-9; max += coarseStep {
		r := domain.WeightRange{Min: round2(min), Max: round2(max)}
		ranges = append(ranges, r)
		min = r.Max
	}
	return ranges
}

// ParcelRanges shifts the base layout by whole parcels and drops any band
// whose upper bound would exceed the carrier's total weight ceiling.
func (c *WeightRangeCalculator) ParcelRanges(parcelNumber int) []domain.WeightRange {
	offset := float64(parcelNumber-1) * c.maxParcelWeight
	var ranges []domain.WeightRange
	for _, base := range c.BaseRanges() {
		r := domain.WeightRange{
			Min: round2(base.Min + offset),
			Max: round2(base.Max + offset),
		}
		if r.Max > c.maxTotalWeight+1e-9 {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// MaxParcels is how many parcels fit under the total weight ceiling.
func (c *WeightRangeCalculator) MaxParcels() int {
	if c.maxParcelWeight <= 0 {
		return 1
	}
	n := int(math.Ceil(c.maxTotalWeight / c.maxParcelWeight))
	if n < 1 {
		n = 1
	}
	return n
}
