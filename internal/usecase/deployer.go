package usecase

import (
	"context"
	"fmt"

	"ratebridge-backend/internal/domain"
	"ratebridge-backend/internal/infrastructure/shopify"
	"ratebridge-backend/pkg/logger"
)

// profileMutator is the slice of the Shopify client the deployer needs.
type profileMutator interface {
	UpdateDeliveryProfile(ctx context.Context, profileID string, profile shopify.DeliveryProfileInput) error
}

// RateDeployer replaces one zone's remote method definitions. Deletion of
// the existing definitions and creation of the new set ride in a single
// mutation, so the zone never observably holds a mixture of old and new.
type RateDeployer struct {
	client   profileMutator
	currency string
}

func NewRateDeployer(client profileMutator, currency string) *RateDeployer {
	return &RateDeployer{client: client, currency: currency}
}

func (d *RateDeployer) buildProfileInput(rates []domain.GeneratedRate, sctx *domain.ShopifyContext) shopify.DeliveryProfileInput {
	methods := make([]shopify.MethodDefinitionInput, 0, len(rates))
	for _, rate := range rates {
		methods = append(methods, shopify.MethodDefinitionInput{
			Name:           rate.RateTitle,
			Description:    rate.DeliveryDescription,
			Active:         true,
			RateDefinition: shopify.RateDefinitionInput{Price: shopify.MoneyInput{Amount: rate.CalculatedPrice, CurrencyCode: d.currency}},
			WeightConditionsToCreate: []shopify.WeightCriteriaInput{
				shopify.NewWeightCondition(rate.WeightMin, "GREATER_THAN_OR_EQUAL_TO"),
				shopify.NewWeightCondition(rate.WeightMax, "LESS_THAN_OR_EQUAL_TO"),
			},
		})
	}

	toDelete := sctx.ExistingMethodDefinitionIDs
	if toDelete == nil {
		toDelete = []string{}
	}
	return shopify.DeliveryProfileInput{
		MethodDefinitionsToDelete: toDelete,
		LocationGroupsToUpdate: []shopify.LocationGroupUpdateInput{{
			ID: sctx.LocationGroupID,
			ZonesToUpdate: []shopify.ZoneUpdateInput{{
				ID:                        sctx.ZoneID,
				MethodDefinitionsToCreate: methods,
			}},
		}},
	}
}

// DeployZoneRates submits the atomic replace for one zone, or logs and
// returns a preview in dry-run mode. Transient throttling is retried inside
// the client; user errors from the platform come back non-retryable.
func (d *RateDeployer) DeployZoneRates(ctx context.Context, zoneID string, rates []domain.GeneratedRate, sctx *domain.ShopifyContext, dryRun bool) (*domain.DeployPreview, error) {
	input := d.buildProfileInput(rates, sctx)

	if dryRun {
		logger.WithContext(ctx).Info().
			Str("zone_id", zoneID).
			Str("zone_name", sctx.ZoneName).
			Int("delete_count", len(input.MethodDefinitionsToDelete)).
			Int("create_count", len(rates)).
			Msg("Dry run: skipping deliveryProfileUpdate mutation")
		return &domain.DeployPreview{
			ZoneID:      zoneID,
			ZoneName:    sctx.ZoneName,
			DeleteCount: len(input.MethodDefinitionsToDelete),
			CreateCount: len(rates),
		}, nil
	}

	if err := d.client.UpdateDeliveryProfile(ctx, sctx.ProfileID, input); err != nil {
		return nil, fmt.Errorf("deploy failed for zone %s: %w", sctx.ZoneName, err)
	}

	logger.WithContext(ctx).Info().
		Str("zone_id", zoneID).
		Str("zone_name", sctx.ZoneName).
		Int("deleted", len(input.MethodDefinitionsToDelete)).
		Int("created", len(rates)).
		Msg("Zone rates deployed")
	return nil, nil
}
