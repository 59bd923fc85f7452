package usecase

import (
	"context"
	"testing"
	"time"

	"ratebridge-backend/internal/domain"
	memcache "ratebridge-backend/internal/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTariffRepo struct {
	set *domain.TariffSet
	err error
}

func (f *fakeTariffRepo) FetchAll(ctx context.Context) (*domain.TariffSet, error) {
	return f.set, f.err
}

type fakeRateRepo struct {
	replaced  [][]domain.GeneratedRate
	summaries []domain.ZoneRateCount
}

func (f *fakeRateRepo) ReplaceAll(ctx context.Context, rates []domain.GeneratedRate) error {
	f.replaced = append(f.replaced, rates)
	return nil
}

func (f *fakeRateRepo) GetZoneSummaries(ctx context.Context) ([]domain.ZoneRateCount, error) {
	return f.summaries, nil
}

func (f *fakeRateRepo) GetByZoneName(ctx context.Context, zoneName string) ([]domain.GeneratedRate, error) {
	return nil, nil
}

func testTariffSet() *domain.TariffSet {
	return &domain.TariffSet{
		Carriers: []domain.CarrierInfo{{
			ID:               "rm",
			Name:             "Royal Mail",
			MarginPercentage: 20,
			MaxParcelWeight:  2.0,
			MaxTotalWeight:   4.0,
			ZoneScope:        domain.ZoneScopeSpecific,
		}},
		Zones: []domain.ZoneRef{{ID: 1, Name: "Europe"}},
		ZoneTariffs: []domain.ZoneTariff{
			{ZoneID: 1, ZoneName: "Europe", CarrierID: "rm", WeightKg: 0.05, TariffAmount: 2.00},
			{ZoneID: 1, ZoneName: "Europe", CarrierID: "rm", WeightKg: 2.00, TariffAmount: 5.00},
		},
		UniversalTariffs: map[string][]domain.Tariff{},
	}
}

func newTestGenerator(set *domain.TariffSet, rateRepo *fakeRateRepo) *RateGeneratorService {
	return NewRateGeneratorService(
		&fakeTariffRepo{set: set},
		rateRepo,
		memcache.NewMemoryCache(time.Minute, time.Minute),
		time.Minute,
		2.0, 20.0,
	)
}

func TestGenerateAllReplacesPersistedRates(t *testing.T) {
	rateRepo := &fakeRateRepo{}
	gen := newTestGenerator(testTariffSet(), rateRepo)

	result, err := gen.GenerateAll(context.Background())
	require.NoError(t, err)

	require.Len(t, rateRepo.replaced, 1)
	assert.Equal(t, result.TotalRates, len(rateRepo.replaced[0]))
	assert.Equal(t, 1, result.ZoneCount)
	assert.Empty(t, result.Warnings)
	assert.NotZero(t, result.TotalRates)
}

func TestGenerateAllFailsOnEmptyTariffStore(t *testing.T) {
	gen := newTestGenerator(&domain.TariffSet{
		Zones:            []domain.ZoneRef{{ID: 1, Name: "Europe"}},
		UniversalTariffs: map[string][]domain.Tariff{},
	}, &fakeRateRepo{})

	_, err := gen.GenerateAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoTariffs)
}

func TestGenerateAllAccumulatesWarningsWithoutAborting(t *testing.T) {
	set := testTariffSet()
	// Universal carrier with no breakpoints at all: warned, not fatal
	set.Carriers = append(set.Carriers, domain.CarrierInfo{
		ID:        "dhl",
		Name:      "DHL",
		ZoneScope: domain.ZoneScopeUniversal,
	})

	rateRepo := &fakeRateRepo{}
	gen := newTestGenerator(set, rateRepo)

	result, err := gen.GenerateAll(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)
	assert.NotZero(t, result.TotalRates)
}

func TestGenerationIsDeterministic(t *testing.T) {
	first, err := newTestGenerator(testTariffSet(), &fakeRateRepo{}).CollectZoneRates(context.Background(), "Europe")
	require.NoError(t, err)
	second, err := newTestGenerator(testTariffSet(), &fakeRateRepo{}).CollectZoneRates(context.Background(), "Europe")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i])
	}
}

func TestCollectZoneRatesConcreteScenario(t *testing.T) {
	// Breakpoints up to 2.00kg -> 5.00; 20% margin; range (1.95, 2.00]
	// must price at 6.00
	rates, err := newTestGenerator(testTariffSet(), &fakeRateRepo{}).CollectZoneRates(context.Background(), "Europe")
	require.NoError(t, err)

	var found bool
	for _, r := range rates {
		if r.WeightMin == 1.95 && r.WeightMax == 2.00 {
			found = true
			assert.Equal(t, 5.00, r.Tariff)
			assert.Equal(t, 6.00, r.CalculatedPrice)
		}
	}
	assert.True(t, found, "expected a (1.95, 2.00] range in parcel 1")
}

func TestCollectZoneRatesCarriesParcelMaximumForward(t *testing.T) {
	rates, err := newTestGenerator(testTariffSet(), &fakeRateRepo{}).CollectZoneRates(context.Background(), "Europe")
	require.NoError(t, err)

	// Parcel 1 maximum tariff is the fallback 5.00 (lookups past 2.00kg
	// extrapolate); every parcel-2 band adds that carry-over on top. Parcel 1
	// tops out at 2.10, so anything starting at or above that is parcel 2.
	var checked int
	for _, r := range rates {
		if r.WeightMin >= 2.10 {
			checked++
			assert.Equal(t, 10.00, r.Tariff, "range %.2f-%.2f", r.WeightMin, r.WeightMax)
		}
	}
	assert.NotZero(t, checked)

	// The first parcel-2 band specifically
	var found bool
	for _, r := range rates {
		if r.WeightMin == 2.00 && r.WeightMax == 2.05 {
			found = true
			assert.Equal(t, 10.00, r.Tariff)
		}
	}
	assert.True(t, found, "expected a (2.00, 2.05] range in parcel 2")
}

func TestCollectZoneRatesUnknownZoneYieldsNothingForSpecificCarriers(t *testing.T) {
	rates, err := newTestGenerator(testTariffSet(), &fakeRateRepo{}).CollectZoneRates(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, rates)
}
