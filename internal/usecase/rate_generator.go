package usecase

import (
	"context"
	"fmt"
	"time"

	"ratebridge-backend/internal/domain"
	"ratebridge-backend/pkg/cache"
	"ratebridge-backend/pkg/logger"
)

const tariffSetCacheKey = "tariffs:snapshot"

// RateGeneratorService drives weight-range synthesis and tariff lookup
// across all parcels, zones and carriers, and persists the assembled rates
// as a wholesale replace.
type RateGeneratorService struct {
	tariffRepo domain.TariffRepository
	rateRepo   domain.RateRepository
	cache      cache.CacheService
	tariffTTL  time.Duration

	defaultMaxParcelWeight float64
	defaultMaxTotalWeight  float64
}

func NewRateGeneratorService(
	tariffRepo domain.TariffRepository,
	rateRepo domain.RateRepository,
	cacheSvc cache.CacheService,
	tariffTTL time.Duration,
	defaultMaxParcelWeight, defaultMaxTotalWeight float64,
) *RateGeneratorService {
	return &RateGeneratorService{
		tariffRepo:             tariffRepo,
		rateRepo:               rateRepo,
		cache:                  cacheSvc,
		tariffTTL:              tariffTTL,
		defaultMaxParcelWeight: defaultMaxParcelWeight,
		defaultMaxTotalWeight:  defaultMaxTotalWeight,
	}
}

// tariffSet returns the cached snapshot so a multi-zone run does one DB
// round-trip instead of one per zone.
func (s *RateGeneratorService) tariffSet(ctx context.Context) (*domain.TariffSet, error) {
	if val, found := s.cache.Get(tariffSetCacheKey); found {
		return val.(*domain.TariffSet), nil
	}
	set, err := s.tariffRepo.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tariffs: %w", err)
	}
	s.cache.Set(tariffSetCacheKey, set, s.tariffTTL)
	return set, nil
}

// GenerateAll computes rates for every zone/carrier combination and replaces
// the persisted table. Zero tariff rows fails the whole run; per-zone and
// per-carrier problems accumulate as warnings without aborting.
func (s *RateGeneratorService) GenerateAll(ctx context.Context) (*domain.GenerationResult, error) {
	set, err := s.tariffSet(ctx)
	if err != nil {
		return nil, err
	}
	if set.IsEmpty() {
		return nil, domain.ErrNoTariffs
	}

	result := &domain.GenerationResult{}
	var allRates []domain.GeneratedRate
	for _, zone := range set.Zones {
		rates, warnings := s.zoneRates(set, zone)
		allRates = append(allRates, rates...)
		result.Warnings = append(result.Warnings, warnings...)
		if len(rates) > 0 {
			result.ZoneCount++
		}
	}
	result.TotalRates = len(allRates)

	if err := s.rateRepo.ReplaceAll(ctx, allRates); err != nil {
		return nil, fmt.Errorf("failed to persist generated rates: %w", err)
	}

	logger.Get().Info().
		Int("total_rates", result.TotalRates).
		Int("zones", result.ZoneCount).
		Int("warnings", len(result.Warnings)).
		Msg("Rate generation complete")
	return result, nil
}

// CollectZoneRates computes the in-memory rates for one zone name without
// touching the persisted table. The orchestrator calls this per zone.
func (s *RateGeneratorService) CollectZoneRates(ctx context.Context, zoneName string) ([]domain.GeneratedRate, error) {
	set, err := s.tariffSet(ctx)
	if err != nil {
		return nil, err
	}
	if set.IsEmpty() {
		return nil, domain.ErrNoTariffs
	}
	zone, ok := set.ZoneByName(zoneName)
	if !ok {
		// Remote-only zone: no local tariff data, nothing to collect
		zone = domain.ZoneRef{Name: zoneName}
	}
	rates, warnings := s.zoneRates(set, zone)
	for _, w := range warnings {
		logger.Get().Warn().Str("zone", zoneName).Msg(w)
	}
	return rates, nil
}

// zoneRates assembles the full rate table for one zone across every carrier
// and parcel. The prior parcel's maximum tariff (not its last range's) is
// carried into the next parcel's pricing.
func (s *RateGeneratorService) zoneRates(set *domain.TariffSet, zone domain.ZoneRef) ([]domain.GeneratedRate, []string) {
	var rates []domain.GeneratedRate
	var warnings []string

	byCarrier := set.TariffsForZone(zone.Name)
	for _, carrier := range set.Carriers {
		tariffs := byCarrier[carrier.ID]
		if len(tariffs) == 0 {
			if carrier.ZoneScope == domain.ZoneScopeSpecific {
				continue // carrier simply doesn't serve this zone
			}
			warnings = append(warnings, fmt.Sprintf("carrier %s has no tariff rows for zone %s", carrier.ID, zone.Name))
			continue
		}

		calc := NewWeightRangeCalculator(s.maxParcelWeight(carrier), s.maxTotalWeight(carrier))
		previousParcelMaxTariff := 0.0
		for parcel := 1; parcel <= calc.MaxParcels(); parcel++ {
			ranges := calc.ParcelRanges(parcel)
			if len(ranges) == 0 {
				break
			}
			parcelMax := 0.0
			for _, r := range ranges {
				tariff, ok := CalculateRate(tariffs, r, parcel, previousParcelMaxTariff)
				if !ok {
					warnings = append(warnings, fmt.Sprintf("carrier %s zone %s: no tariff for range %.2f-%.2f", carrier.ID, zone.Name, r.Min, r.Max))
					continue
				}
				if tariff > parcelMax {
					parcelMax = tariff
				}
				rates = append(rates, domain.GeneratedRate{
					ZoneID:              zone.ID,
					ZoneName:            zone.Name,
					CarrierID:           carrier.ID,
					WeightMin:           r.Min,
					WeightMax:           r.Max,
					Tariff:              tariff,
					CalculatedPrice:     ApplyMargin(tariff, carrier.MarginPercentage),
					RateTitle:           fmt.Sprintf("%s %.2fkg - %.2fkg", carrier.Name, r.Min, r.Max),
					DeliveryDescription: carrier.DeliveryDescription,
				})
			}
			previousParcelMaxTariff = parcelMax
		}
	}
	return rates, warnings
}

func (s *RateGeneratorService) maxParcelWeight(c domain.CarrierInfo) float64 {
	if c.MaxParcelWeight > 0 {
		return c.MaxParcelWeight
	}
	return s.defaultMaxParcelWeight
}

func (s *RateGeneratorService) maxTotalWeight(c domain.CarrierInfo) float64 {
	if c.MaxTotalWeight > 0 {
		return c.MaxTotalWeight
	}
	return s.defaultMaxTotalWeight
}
