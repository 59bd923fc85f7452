package usecase

import (
	"context"
	"testing"

	"ratebridge-backend/internal/domain"
	"ratebridge-backend/internal/infrastructure/shopify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMutator struct {
	profileID string
	input     shopify.DeliveryProfileInput
	calls     int
	err       error
}

func (f *fakeMutator) UpdateDeliveryProfile(ctx context.Context, profileID string, profile shopify.DeliveryProfileInput) error {
	f.calls++
	f.profileID = profileID
	f.input = profile
	return f.err
}

func deployContext() *domain.ShopifyContext {
	return &domain.ShopifyContext{
		ProfileID:                   "gid://profile/1",
		LocationGroupID:             "gid://lg/1",
		ZoneID:                      "gid://zone/1",
		ZoneName:                    "Europe",
		ExistingMethodDefinitionIDs: []string{"gid://md/1", "gid://md/2"},
	}
}

func deployRates() []domain.GeneratedRate {
	return []domain.GeneratedRate{
		{
			RateTitle:           "Royal Mail 0.00kg - 0.05kg",
			DeliveryDescription: "3-5 working days",
			WeightMin:           0.00,
			WeightMax:           0.05,
			CalculatedPrice:     2.40,
		},
		{
			RateTitle:       "Royal Mail 0.05kg - 0.10kg",
			WeightMin:       0.05,
			WeightMax:       0.10,
			CalculatedPrice: 2.60,
		},
	}
}

func TestDeployZoneRatesBuildsAtomicReplace(t *testing.T) {
	mutator := &fakeMutator{}
	deployer := NewRateDeployer(mutator, "GBP")

	preview, err := deployer.DeployZoneRates(context.Background(), "gid://zone/1", deployRates(), deployContext(), false)
	require.NoError(t, err)
	assert.Nil(t, preview)

	assert.Equal(t, "gid://profile/1", mutator.profileID)
	assert.Equal(t, []string{"gid://md/1", "gid://md/2"}, mutator.input.MethodDefinitionsToDelete)

	require.Len(t, mutator.input.LocationGroupsToUpdate, 1)
	lg := mutator.input.LocationGroupsToUpdate[0]
	assert.Equal(t, "gid://lg/1", lg.ID)
	require.Len(t, lg.ZonesToUpdate, 1)
	assert.Equal(t, "gid://zone/1", lg.ZonesToUpdate[0].ID)

	methods := lg.ZonesToUpdate[0].MethodDefinitionsToCreate
	require.Len(t, methods, 2)
	assert.Equal(t, "Royal Mail 0.00kg - 0.05kg", methods[0].Name)
	assert.Equal(t, "3-5 working days", methods[0].Description)
	assert.True(t, methods[0].Active)
	assert.Equal(t, 2.40, methods[0].RateDefinition.Price.Amount)
	assert.Equal(t, "GBP", methods[0].RateDefinition.Price.CurrencyCode)

	require.Len(t, methods[0].WeightConditionsToCreate, 2)
	lower := methods[0].WeightConditionsToCreate[0]
	assert.Equal(t, "GREATER_THAN_OR_EQUAL_TO", lower.Operator)
	assert.Equal(t, 0.00, lower.Criteria.Value)
	assert.Equal(t, "KILOGRAMS", lower.Criteria.Unit)
	upper := methods[0].WeightConditionsToCreate[1]
	assert.Equal(t, "LESS_THAN_OR_EQUAL_TO", upper.Operator)
	assert.Equal(t, 0.05, upper.Criteria.Value)
}

func TestDeployZoneRatesEmptyDeleteListStaysNonNil(t *testing.T) {
	mutator := &fakeMutator{}
	deployer := NewRateDeployer(mutator, "GBP")

	sctx := deployContext()
	sctx.ExistingMethodDefinitionIDs = nil

	_, err := deployer.DeployZoneRates(context.Background(), "gid://zone/1", deployRates(), sctx, false)
	require.NoError(t, err)

	// The mutation field must serialize as [] rather than null
	assert.NotNil(t, mutator.input.MethodDefinitionsToDelete)
	assert.Empty(t, mutator.input.MethodDefinitionsToDelete)
}

func TestDeployZoneRatesDryRunSkipsMutation(t *testing.T) {
	mutator := &fakeMutator{}
	deployer := NewRateDeployer(mutator, "GBP")

	preview, err := deployer.DeployZoneRates(context.Background(), "gid://zone/1", deployRates(), deployContext(), true)
	require.NoError(t, err)

	assert.Zero(t, mutator.calls)
	require.NotNil(t, preview)
	assert.Equal(t, "Europe", preview.ZoneName)
	assert.Equal(t, 2, preview.DeleteCount)
	assert.Equal(t, 2, preview.CreateCount)
}

func TestDeployZoneRatesWrapsClientError(t *testing.T) {
	mutator := &fakeMutator{err: &shopify.UserErrorsError{Errors: []shopify.UserError{{Message: "nope"}}}}
	deployer := NewRateDeployer(mutator, "GBP")

	_, err := deployer.DeployZoneRates(context.Background(), "gid://zone/1", deployRates(), deployContext(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Europe")

	var ue *shopify.UserErrorsError
	assert.ErrorAs(t, err, &ue)
}
