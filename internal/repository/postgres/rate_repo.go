package postgres

import (
	"context"
	"fmt"

	"ratebridge-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rateRepository struct {
	db *pgxpool.Pool
}

func NewRateRepository(db *pgxpool.Pool) domain.RateRepository {
	return &rateRepository{db: db}
}

// ReplaceAll wipes the generated rates and bulk-inserts the new set inside
// one transaction. The table carries no versioning; each run fully owns it.
func (r *rateRepository) ReplaceAll(ctx context.Context, rates []domain.GeneratedRate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM generated_rates`); err != nil {
		return fmt.Errorf("failed to clear generated rates: %w", err)
	}

	if len(rates) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"generated_rates"},
			[]string{"zone_id", "zone_name", "carrier_id", "weight_min", "weight_max", "tariff", "calculated_price", "rate_title", "delivery_description"},
			pgx.CopyFromSlice(len(rates), func(i int) ([]interface{}, error) {
				gr := rates[i]
				return []interface{}{gr.ZoneID, gr.ZoneName, gr.CarrierID, gr.WeightMin, gr.WeightMax, gr.Tariff, gr.CalculatedPrice, gr.RateTitle, gr.DeliveryDescription}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to insert generated rates: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *rateRepository) GetZoneSummaries(ctx context.Context) ([]domain.ZoneRateCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT zone_name, COUNT(*)
		FROM generated_rates
		GROUP BY zone_name
		ORDER BY zone_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query zone summaries: %w", err)
	}
	defer rows.Close()

	var result []domain.ZoneRateCount
	for rows.Next() {
		var zc domain.ZoneRateCount
		if err := rows.Scan(&zc.ZoneName, &zc.RateCount); err != nil {
			return nil, fmt.Errorf("failed to scan zone summary row: %w", err)
		}
		result = append(result, zc)
	}
	return result, rows.Err()
}

func (r *rateRepository) GetByZoneName(ctx context.Context, zoneName string) ([]domain.GeneratedRate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT zone_id, zone_name, carrier_id, weight_min, weight_max, tariff, calculated_price, rate_title, delivery_description
		FROM generated_rates
		WHERE zone_name = $1
		ORDER BY carrier_id, weight_min`, zoneName)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for zone: %w", err)
	}
	defer rows.Close()

	var result []domain.GeneratedRate
	for rows.Next() {
		var gr domain.GeneratedRate
		if err := rows.Scan(&gr.ZoneID, &gr.ZoneName, &gr.CarrierID, &gr.WeightMin, &gr.WeightMax, &gr.Tariff, &gr.CalculatedPrice, &gr.RateTitle, &gr.DeliveryDescription); err != nil {
			return nil, fmt.Errorf("failed to scan rate row: %w", err)
		}
		result = append(result, gr)
	}
	return result, rows.Err()
}
