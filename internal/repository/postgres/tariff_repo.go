package postgres

import (
	"context"
	"fmt"

	"ratebridge-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type tariffRepository struct {
	db *pgxpool.Pool
}

func NewTariffRepository(db *pgxpool.Pool) domain.TariffRepository {
	return &tariffRepository{db: db}
}

// FetchAll reads the complete tariff snapshot: carriers, active zones,
// zone-scoped breakpoints and universal breakpoints. Breakpoints come back
// ordered ascending so ceiling lookup can scan them directly.
func (r *tariffRepository) FetchAll(ctx context.Context) (*domain.TariffSet, error) {
	set := &domain.TariffSet{
		UniversalTariffs: make(map[string][]domain.Tariff),
	}

	carrierRows, err := r.db.Query(ctx, `
		SELECT id, name, margin_percentage, max_parcel_weight, max_total_weight, zone_scope, delivery_description
		FROM carriers
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query carriers: %w", err)
	}
	defer carrierRows.Close()
	for carrierRows.Next() {
		var c domain.CarrierInfo
		if err := carrierRows.Scan(&c.ID, &c.Name, &c.MarginPercentage, &c.MaxParcelWeight, &c.MaxTotalWeight, &c.ZoneScope, &c.DeliveryDescription); err != nil {
			return nil, fmt.Errorf("failed to scan carrier row: %w", err)
		}
		set.Carriers = append(set.Carriers, c)
	}
	if err := carrierRows.Err(); err != nil {
		return nil, err
	}

	zoneRows, err := r.db.Query(ctx, `
		SELECT id, name
		FROM shipping_zones
		WHERE is_active
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipping zones: %w", err)
	}
	defer zoneRows.Close()
	for zoneRows.Next() {
		var z domain.ZoneRef
		if err := zoneRows.Scan(&z.ID, &z.Name); err != nil {
			return nil, fmt.Errorf("failed to scan zone row: %w", err)
		}
		set.Zones = append(set.Zones, z)
	}
	if err := zoneRows.Err(); err != nil {
		return nil, err
	}

	tariffRows, err := r.db.Query(ctx, `
		SELECT z.id, z.name, t.carrier_id, t.weight_kg, t.tariff_amount
		FROM zone_tariffs t
		JOIN shipping_zones z ON z.id = t.zone_id
		WHERE z.is_active
		ORDER BY t.carrier_id, z.name, t.weight_kg`)
	if err != nil {
		return nil, fmt.Errorf("failed to query zone tariffs: %w", err)
	}
	defer tariffRows.Close()
	for tariffRows.Next() {
		var zt domain.ZoneTariff
		if err := tariffRows.Scan(&zt.ZoneID, &zt.ZoneName, &zt.CarrierID, &zt.WeightKg, &zt.TariffAmount); err != nil {
			return nil, fmt.Errorf("failed to scan zone tariff row: %w", err)
		}
		set.ZoneTariffs = append(set.ZoneTariffs, zt)
	}
	if err := tariffRows.Err(); err != nil {
		return nil, err
	}

	universalRows, err := r.db.Query(ctx, `
		SELECT carrier_id, weight_kg, tariff_amount
		FROM universal_tariffs
		ORDER BY carrier_id, weight_kg`)
	if err != nil {
		return nil, fmt.Errorf("failed to query universal tariffs: %w", err)
	}
	defer universalRows.Close()
	for universalRows.Next() {
		var carrierID string
		var t domain.Tariff
		if err := universalRows.Scan(&carrierID, &t.WeightKg, &t.TariffAmount); err != nil {
			return nil, fmt.Errorf("failed to scan universal tariff row: %w", err)
		}
		set.UniversalTariffs[carrierID] = append(set.UniversalTariffs[carrierID], t)
	}
	if err := universalRows.Err(); err != nil {
		return nil, err
	}

	return set, nil
}
