package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(endpoint string) *Client {
	return NewClient("example.myshopify.com", "test-token", "2024-07",
		WithEndpoint(endpoint),
		WithRetryPolicy(3, 5*time.Millisecond, 50*time.Millisecond, 0),
		WithBudgetGuard(0, 0),
	)
}

func TestExecuteRetriesOnHTTPThrottle(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-Shopify-Access-Token"))
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data": {"ok": true}}`))
	}))
	defer server.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := testClient(server.URL).Execute(context.Background(), "query { ok }", nil, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestExecuteHonorsRetryAfterHeader(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Retry-After", "0.05")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	start := time.Now()
	err := testClient(server.URL).Execute(context.Background(), "query { ok }", nil, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestExecuteRetriesOnThrottledGraphQLError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Write([]byte(`{"errors": [{"message": "Throttled", "extensions": {"code": "THROTTLED"}}]}`))
			return
		}
		w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	err := testClient(server.URL).Execute(context.Background(), "query { ok }", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestExecuteDoesNotRetryBusinessErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Write([]byte(`{"errors": [{"message": "Field 'bogus' doesn't exist"}]}`))
	}))
	defer server.Close()

	err := testClient(server.URL).Execute(context.Background(), "query { bogus }", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestExecuteExhaustsRetryBudget(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := testClient(server.URL).Execute(context.Background(), "query { ok }", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
	// maxRetries=3 means 4 total attempts
	assert.Equal(t, int32(4), atomic.LoadInt32(&attempts))
}

func TestExecuteAbortsWaitOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "10")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := testClient(server.URL).Execute(ctx, "query { ok }", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUpdateDeliveryProfileSurfacesUserErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"deliveryProfileUpdate": {"profile": null, "userErrors": [{"field": ["profile", "methodDefinitionsToDelete"], "message": "Method definition not found"}]}}}`))
	}))
	defer server.Close()

	err := testClient(server.URL).UpdateDeliveryProfile(context.Background(), "gid://shopify/DeliveryProfile/1", DeliveryProfileInput{
		MethodDefinitionsToDelete: []string{"gid://shopify/DeliveryMethodDefinition/404"},
	})

	var ue *UserErrorsError
	require.ErrorAs(t, err, &ue)
	require.Len(t, ue.Errors, 1)
	assert.Contains(t, err.Error(), "Method definition not found")
	assert.Contains(t, err.Error(), "profile.methodDefinitionsToDelete")
}

func TestUpdateDeliveryProfileSendsVariables(t *testing.T) {
	var captured graphQLRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"data": {"deliveryProfileUpdate": {"profile": {"id": "gid://shopify/DeliveryProfile/1"}, "userErrors": []}}}`))
	}))
	defer server.Close()

	profile := DeliveryProfileInput{
		MethodDefinitionsToDelete: []string{"gid://old/1"},
		LocationGroupsToUpdate: []LocationGroupUpdateInput{{
			ID: "gid://lg/1",
			ZonesToUpdate: []ZoneUpdateInput{{
				ID: "gid://zone/1",
				MethodDefinitionsToCreate: []MethodDefinitionInput{{
					Name:   "Royal Mail 0.00kg - 0.05kg",
					Active: true,
					RateDefinition: RateDefinitionInput{
						Price: MoneyInput{Amount: 2.40, CurrencyCode: "GBP"},
					},
					WeightConditionsToCreate: []WeightCriteriaInput{
						NewWeightCondition(0.00, "GREATER_THAN_OR_EQUAL_TO"),
						NewWeightCondition(0.05, "LESS_THAN_OR_EQUAL_TO"),
					},
				}},
			}},
		}},
	}

	err := testClient(server.URL).UpdateDeliveryProfile(context.Background(), "gid://shopify/DeliveryProfile/1", profile)
	require.NoError(t, err)

	assert.Equal(t, "gid://shopify/DeliveryProfile/1", captured.Variables["id"])
	require.Contains(t, captured.Variables, "profile")
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, 2*time.Second, parseRetryAfter("2"))
	assert.Equal(t, 500*time.Millisecond, parseRetryAfter("0.5"))
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	c := NewClient("x", "t", "2024-07", WithRetryPolicy(5, 100*time.Millisecond, 400*time.Millisecond, 0))

	assert.Equal(t, 100*time.Millisecond, c.backoff(0))
	assert.Equal(t, 200*time.Millisecond, c.backoff(1))
	assert.Equal(t, 400*time.Millisecond, c.backoff(2))
	assert.Equal(t, 400*time.Millisecond, c.backoff(3))
}
