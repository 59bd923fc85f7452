package usecase

import (
	"context"
	"fmt"
	"time"

	"ratebridge-backend/internal/domain"
	"ratebridge-backend/pkg/cache"
)

const remoteZonesCacheKey = "shopify:zones"

// MatchZonesByName reconciles remote and local zone identities by exact,
// case-sensitive name equality. A mismatch in case, whitespace or
// punctuation lands the zone on both unmatched sides for operator review;
// no fuzzy matching is attempted.
func MatchZonesByName(remote []domain.RemoteZone, local []domain.ZoneRateCount) *domain.ZoneMatchResult {
	localByName := make(map[string]domain.ZoneRateCount, len(local))
	for _, l := range local {
		localByName[l.ZoneName] = l
	}

	result := &domain.ZoneMatchResult{}
	matchedNames := make(map[string]bool)
	for _, rz := range remote {
		if l, ok := localByName[rz.Name]; ok {
			result.Matched = append(result.Matched, domain.ZoneMatch{
				RemoteID:  rz.ID,
				ZoneName:  rz.Name,
				RateCount: l.RateCount,
			})
			matchedNames[rz.Name] = true
		} else {
			result.RemoteOnly = append(result.RemoteOnly, rz)
		}
	}
	for _, l := range local {
		if !matchedNames[l.ZoneName] {
			result.LocalOnly = append(result.LocalOnly, l)
		}
	}
	return result
}

// ZoneMatcher serves the operator-facing reconciliation view: remote zones
// from the delivery profile traversal against locally generated rates.
type ZoneMatcher struct {
	resolver domain.ZoneResolver
	rateRepo domain.RateRepository
	cache    cache.CacheService
	zonesTTL time.Duration
}

func NewZoneMatcher(resolver domain.ZoneResolver, rateRepo domain.RateRepository, cacheSvc cache.CacheService, zonesTTL time.Duration) *ZoneMatcher {
	return &ZoneMatcher{
		resolver: resolver,
		rateRepo: rateRepo,
		cache:    cacheSvc,
		zonesTTL: zonesTTL,
	}
}

func (m *ZoneMatcher) Match(ctx context.Context) (*domain.ZoneMatchResult, error) {
	var remote []domain.RemoteZone
	if val, found := m.cache.Get(remoteZonesCacheKey); found {
		remote = val.([]domain.RemoteZone)
	} else {
		var err error
		remote, err = m.resolver.ListZones(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list remote zones: %w", err)
		}
		m.cache.Set(remoteZonesCacheKey, remote, m.zonesTTL)
	}

	local, err := m.rateRepo.GetZoneSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load local zone summaries: %w", err)
	}

	return MatchZonesByName(remote, local), nil
}
