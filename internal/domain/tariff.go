package domain

import (
	"context"
	"sort"
)

// Zone scope of a carrier's tariff table
const (
	ZoneScopeSpecific  = "zone_specific"
	ZoneScopeUniversal = "universal"
)

// CarrierInfo drives both weight-range synthesis and price inflation.
type CarrierInfo struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	MarginPercentage    float64 `json:"marginPercentage"`
	MaxParcelWeight     float64 `json:"maxParcelWeight"`
	MaxTotalWeight      float64 `json:"maxTotalWeight"`
	ZoneScope           string  `json:"zoneScope"`
	DeliveryDescription string  `json:"deliveryDescription"`
}

// Tariff is a single weight breakpoint in a carrier's tariff table.
type Tariff struct {
	WeightKg     float64 `json:"weightKg"`
	TariffAmount float64 `json:"tariffAmount"`
}

// ZoneTariff is one breakpoint row scoped to a shipping zone.
type ZoneTariff struct {
	ZoneID       int32   `json:"zoneId"`
	ZoneName     string  `json:"zoneName"`
	CarrierID    string  `json:"carrierId"`
	WeightKg     float64 `json:"weightKg"`
	TariffAmount float64 `json:"tariffAmount"`
}

// ZoneRef is a locally known shipping zone.
type ZoneRef struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// TariffSet is one fetched snapshot of everything rate generation needs.
type TariffSet struct {
	Carriers         []CarrierInfo
	Zones            []ZoneRef
	ZoneTariffs      []ZoneTariff
	UniversalTariffs map[string][]Tariff // carrier id -> breakpoints, sorted by weight
}

// IsEmpty reports whether the snapshot holds no tariff rows at all.
func (ts *TariffSet) IsEmpty() bool {
	return len(ts.ZoneTariffs) == 0 && len(ts.UniversalTariffs) == 0
}

// Carrier returns carrier metadata by id.
func (ts *TariffSet) Carrier(id string) (CarrierInfo, bool) {
	for _, c := range ts.Carriers {
		if c.ID == id {
			return c, true
		}
	}
	return CarrierInfo{}, false
}

// TariffsForZone returns the per-carrier tariff tables effective in a zone.
// Zone-specific rows are taken as-is; universal carriers are replicated into
// every known zone, which is how a single universal table becomes a per-zone
// view at generation time.
func (ts *TariffSet) TariffsForZone(zoneName string) map[string][]Tariff {
	byCarrier := make(map[string][]Tariff)
	for _, zt := range ts.ZoneTariffs {
		if zt.ZoneName != zoneName {
			continue
		}
		byCarrier[zt.CarrierID] = append(byCarrier[zt.CarrierID], Tariff{
			WeightKg:     zt.WeightKg,
			TariffAmount: zt.TariffAmount,
		})
	}
	for carrierID, tariffs := range ts.UniversalTariffs {
		if len(byCarrier[carrierID]) == 0 {
			byCarrier[carrierID] = append([]Tariff(nil), tariffs...)
		}
	}
	// Ceiling lookup requires ascending breakpoints
	for _, tariffs := range byCarrier {
		sort.Slice(tariffs, func(i, j int) bool { return tariffs[i].WeightKg < tariffs[j].WeightKg })
	}
	return byCarrier
}

// ZoneByName returns the local zone ref for a name, if known.
func (ts *TariffSet) ZoneByName(name string) (ZoneRef, bool) {
	for _, z := range ts.Zones {
		if z.Name == name {
			return z, true
		}
	}
	return ZoneRef{}, false
}

type TariffRepository interface {
	// FetchAll reads carriers, active zones, zone-specific tariff rows
	// (breakpoints ordered ascending) and universal tariff rows in one pass.
	FetchAll(ctx context.Context) (*TariffSet, error)
}
