package domain

import "context"

// WeightRange is an ephemeral (min, max] band in kilograms. Never persisted
// on its own; it only exists while rates are being assembled.
type WeightRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// GeneratedRate is one priced weight band for one zone and carrier. The whole
// generated_rates table is deleted and rewritten on every generation run.
type GeneratedRate struct {
	ZoneID              int32   `json:"zoneId"`
	ZoneName            string  `json:"zoneName"`
	CarrierID           string  `json:"carrierId"`
	WeightMin           float64 `json:"weightMin"`
	WeightMax           float64 `json:"weightMax"`
	Tariff              float64 `json:"tariff"`
	CalculatedPrice     float64 `json:"calculatedPrice"`
	RateTitle           string  `json:"rateTitle"`
	DeliveryDescription string  `json:"deliveryDescription"`
}

// ZoneRateCount summarizes the locally generated rates for one zone name.
type ZoneRateCount struct {
	ZoneName  string `json:"zoneName"`
	RateCount int    `json:"rateCount"`
}

// GenerationResult reports one full generation run. Per-zone/per-carrier
// problems land in Warnings without aborting the run.
type GenerationResult struct {
	TotalRates int      `json:"totalRates"`
	ZoneCount  int      `json:"zoneCount"`
	Warnings   []string `json:"warnings"`
}

type RateRepository interface {
	// ReplaceAll deletes every generated rate and inserts the given set in
	// a single transaction.
	ReplaceAll(ctx context.Context, rates []GeneratedRate) error
	GetZoneSummaries(ctx context.Context) ([]ZoneRateCount, error)
	GetByZoneName(ctx context.Context, zoneName string) ([]GeneratedRate, error)
}
