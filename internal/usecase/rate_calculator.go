package usecase

import "ratebridge-backend/internal/domain"

// CeilingLookup returns the tariff at the smallest breakpoint >= weight.
// When the weight exceeds every configured breakpoint the highest
// breakpoint's tariff is used as a fallback. That is an extrapolation, not
// an error; whether it should hard-fail instead is an open product question.
// Tariffs must be sorted ascending by breakpoint.
func CeilingLookup(tariffs []domain.Tariff, weight float64) (float64, bool) {
	if len(tariffs) == 0 {
		return 0, false
	}
	for _, t := range tariffs {
		if t.WeightKg >= weight-1e-9 {
			return t.TariffAmount, true
		}
	}
	return tariffs[len(tariffs)-1].TariffAmount, true
}

// CalculateRate prices one weight range. Parcel 1 is a direct ceiling lookup
// on the range's upper bound. For parcel N>1 the prior parcel's maximum
// tariff is carried over and the lookup runs on the range's absolute upper
// bound (already offset by prior parcels), NOT the weight remaining within
// the current parcel. That operand is suspected of inflating prices near
// parcel boundaries but is preserved as-is pending product clarification.
func CalculateRate(tariffs []domain.Tariff, r domain.WeightRange, parcelNumber int, previousParcelMaxTariff float64) (float64, bool) {
	tariff, ok := CeilingLookup(tariffs, r.Max)
	if !ok {
		return 0, false
	}
	if parcelNumber > 1 {
		return round2(previousParcelMaxTariff + tariff), true
	}
	return round2(tariff), true
}

// ApplyMargin inflates a tariff by a percentage, rounded to currency
// granularity.
func ApplyMargin(tariff, marginPct float64) float64 {
	return round2(tariff * (1 + marginPct/100))
}
