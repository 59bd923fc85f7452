package usecase

import (
	"context"
	"fmt"

	"ratebridge-backend/internal/domain"
	"ratebridge-backend/internal/infrastructure/shopify"
)

// profileQuerier is the slice of the Shopify client the resolver needs.
type profileQuerier interface {
	QueryDeliveryProfiles(ctx context.Context) (*shopify.DeliveryProfilesResponse, error)
}

// ContextResolver turns the nested profile -> location-group -> zone ->
// method-definition traversal into flat, zone-keyed lookups. One remote read
// per refresh; ResolveForZone refreshes every time because the existing
// method-definition ids it returns dictate what the next mutation deletes.
type ContextResolver struct {
	client profileQuerier
}

func NewContextResolver(client profileQuerier) *ContextResolver {
	return &ContextResolver{client: client}
}

type profileIndex struct {
	byZoneID map[string]*domain.ShopifyContext
	zones    []domain.RemoteZone
}

func (r *ContextResolver) refresh(ctx context.Context) (*profileIndex, error) {
	resp, err := r.client.QueryDeliveryProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery profiles: %w", err)
	}

	idx := &profileIndex{byZoneID: make(map[string]*domain.ShopifyContext)}
	for _, profileEdge := range resp.DeliveryProfiles.Edges {
		profile := profileEdge.Node
		for _, plg := range profile.ProfileLocationGroups {
			for _, zoneEdge := range plg.LocationGroupZones.Edges {
				node := zoneEdge.Node
				sctx := &domain.ShopifyContext{
					ProfileID:       profile.ID,
					LocationGroupID: plg.LocationGroup.ID,
					ZoneID:          node.Zone.ID,
					ZoneName:        node.Zone.Name,
				}
				for _, mdEdge := range node.MethodDefinitions.Edges {
					sctx.ExistingMethodDefinitionIDs = append(sctx.ExistingMethodDefinitionIDs, mdEdge.Node.ID)
				}
				if _, dup := idx.byZoneID[node.Zone.ID]; dup {
					continue // first profile wins; zones shouldn't repeat across profiles
				}
				idx.byZoneID[node.Zone.ID] = sctx
				idx.zones = append(idx.zones, domain.RemoteZone{ID: node.Zone.ID, Name: node.Zone.Name})
			}
		}
	}
	return idx, nil
}

// ListZones returns every zone the remote platform currently knows.
func (r *ContextResolver) ListZones(ctx context.Context) ([]domain.RemoteZone, error) {
	idx, err := r.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return idx.zones, nil
}

// ResolveForZone returns the fresh deployment context for one zone id.
// A zone absent from every profile is fatal for that zone, not retried.
func (r *ContextResolver) ResolveForZone(ctx context.Context, zoneID string) (*domain.ShopifyContext, error) {
	idx, err := r.refresh(ctx)
	if err != nil {
		return nil, err
	}
	sctx, ok := idx.byZoneID[zoneID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrZoneNotFound, zoneID)
	}
	return sctx, nil
}
