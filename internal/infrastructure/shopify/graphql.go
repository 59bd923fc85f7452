package shopify

import (
	"fmt"
	"strings"
)

// The two documents below are the whole wire surface against the Admin API:
// one nested traversal used for both context resolution and zone matching,
// and one mutation that deletes the old method definitions and creates the
// new ones in a single atomic write.

const deliveryProfilesQuery = `
query deliveryProfiles($first: Int!) {
  deliveryProfiles(first: $first) {
    edges {
      node {
        id
        profileLocationGroups {
          locationGroup { id }
          locationGroupZones(first: 50) {
            edges {
              node {
                zone { id name }
                methodDefinitions(first: 250) {
                  edges { node { id } }
                }
              }
            }
          }
        }
      }
    }
  }
}`

const deliveryProfileUpdateMutation = `
mutation deliveryProfileUpdate($id: ID!, $profile: DeliveryProfileInput!) {
  deliveryProfileUpdate(id: $id, profile: $profile) {
    profile { id }
    userErrors { field message }
  }
}`

// --- Query wire types ---

type DeliveryProfilesResponse struct {
	DeliveryProfiles struct {
		Edges []struct {
			Node DeliveryProfileNode `json:"node"`
		} `json:"edges"`
	} `json:"deliveryProfiles"`
}

type DeliveryProfileNode struct {
	ID                    string `json:"id"`
	ProfileLocationGroups []struct {
		LocationGroup struct {
			ID string `json:"id"`
		} `json:"locationGroup"`
		LocationGroupZones struct {
			Edges []struct {
				Node struct {
					Zone struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"zone"`
					MethodDefinitions struct {
						Edges []struct {
							Node struct {
								ID string `json:"id"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"methodDefinitions"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"locationGroupZones"`
	} `json:"profileLocationGroups"`
}

// --- Mutation wire types ---

type MoneyInput struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currencyCode"`
}

type WeightCriteriaInput struct {
	Criteria struct {
		Unit  string  `json:"unit"`
		Value float64 `json:"value"`
	} `json:"criteria"`
	Operator string `json:"operator"`
}

func NewWeightCondition(valueKg float64, operator string) WeightCriteriaInput {
	c := WeightCriteriaInput{Operator: operator}
	c.Criteria.Unit = "KILOGRAMS"
	c.Criteria.Value = valueKg
	return c
}

type RateDefinitionInput struct {
	Price MoneyInput `json:"price"`
}

type MethodDefinitionInput struct {
	Name                     string                `json:"name"`
	Description              string                `json:"description,omitempty"`
	Active                   bool                  `json:"active"`
	RateDefinition           RateDefinitionInput   `json:"rateDefinition"`
	WeightConditionsToCreate []WeightCriteriaInput `json:"weightConditionsToCreate"`
}

type ZoneUpdateInput struct {
	ID                        string                  `json:"id"`
	MethodDefinitionsToCreate []MethodDefinitionInput `json:"methodDefinitionsToCreate"`
}

type LocationGroupUpdateInput struct {
	ID            string            `json:"id"`
	ZonesToUpdate []ZoneUpdateInput `json:"zonesToUpdate"`
}

type DeliveryProfileInput struct {
	MethodDefinitionsToDelete []string                   `json:"methodDefinitionsToDelete"`
	LocationGroupsToUpdate    []LocationGroupUpdateInput `json:"locationGroupsToUpdate"`
}

type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type DeliveryProfileUpdateResponse struct {
	DeliveryProfileUpdate struct {
		Profile *struct {
			ID string `json:"id"`
		} `json:"profile"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"deliveryProfileUpdate"`
}

// UserErrorsError is the non-retryable business-rule rejection reported by a
// mutation that otherwise succeeded at the transport level.
type UserErrorsError struct {
	Errors []UserError
}

func (e *UserErrorsError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ue := range e.Errors {
		if len(ue.Field) > 0 {
			msgs[i] = fmt.Sprintf("%s: %s", strings.Join(ue.Field, "."), ue.Message)
		} else {
			msgs[i] = ue.Message
		}
	}
	return "shopify rejected mutation: " + strings.Join(msgs, "; ")
}
