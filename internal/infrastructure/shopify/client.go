package shopify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ratebridge-backend/pkg/logger"

	"github.com/goccy/go-json"
)

// Client talks to the Shopify Admin GraphQL API. Transient throttling
// (HTTP 429/503 or a THROTTLED GraphQL error) is retried transparently with
// bounded exponential backoff; everything else surfaces immediately.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client

	maxRetries  int
	retryBase   time.Duration
	retryCap    time.Duration
	retryJitter time.Duration
	minBudget   int
	budgetPause time.Duration
}

type Option func(*Client)

func WithRetryPolicy(maxRetries int, base, cap, jitter time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryBase = base
		c.retryCap = cap
		c.retryJitter = jitter
	}
}

func WithBudgetGuard(minBudget int, pause time.Duration) Option {
	return func(c *Client) {
		c.minBudget = minBudget
		c.budgetPause = pause
	}
}

// WithEndpoint overrides the computed shop endpoint (tests).
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

func NewClient(shopDomain, accessToken, apiVersion string, opts ...Option) *Client {
	c := &Client{
		endpoint:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, apiVersion),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries:  5,
		retryBase:   500 * time.Millisecond,
		retryCap:    8 * time.Second,
		retryJitter: 200 * time.Millisecond,
		minBudget:   50,
		budgetPause: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type costExtension struct {
	Cost struct {
		RequestedQueryCost int `json:"requestedQueryCost"`
		ActualQueryCost    int `json:"actualQueryCost"`
		ThrottleStatus     struct {
			MaximumAvailable   float64 `json:"maximumAvailable"`
			CurrentlyAvailable int     `json:"currentlyAvailable"`
			RestoreRate        float64 `json:"restoreRate"`
		} `json:"throttleStatus"`
	} `json:"cost"`
}

type graphQLResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     []graphQLError  `json:"errors"`
	Extensions *costExtension  `json:"extensions"`
}

// Execute posts one GraphQL document and decodes the data payload into out.
// Exhausting the retry budget on throttling is a terminal error.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.post(ctx, body)
		if err != nil {
			// Transport failure; retry on the same schedule as throttling
			lastErr = err
			if waitErr := c.wait(ctx, c.backoff(attempt)); waitErr != nil {
				return waitErr
			}
			continue
		}

		if resp.throttled {
			lastErr = fmt.Errorf("shopify throttled request (status %d)", resp.status)
			delay := c.backoff(attempt)
			if resp.retryAfter > 0 {
				delay = resp.retryAfter
			}
			if waitErr := c.wait(ctx, delay); waitErr != nil {
				return waitErr
			}
			continue
		}

		if resp.err != nil {
			return resp.err
		}

		// Budget guard: a healthy response can still mean the next call will
		// trip the limiter, so pace down before returning.
		if resp.remaining >= 0 && resp.remaining < c.minBudget {
			logger.Get().Warn().
				Int("remaining_budget", resp.remaining).
				Msg("Shopify call budget low, pausing")
			if waitErr := c.wait(ctx, c.budgetPause); waitErr != nil {
				return waitErr
			}
		}

		if out != nil {
			if err := json.Unmarshal(resp.data, out); err != nil {
				return fmt.Errorf("failed to decode graphql data: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("shopify retries exhausted after %d attempts: %w", c.maxRetries+1, lastErr)
}

type postResult struct {
	status     int
	throttled  bool
	retryAfter time.Duration
	remaining  int // -1 when the cost extension is absent
	data       json.RawMessage
	err        error // terminal, non-retryable
}

func (c *Client) post(ctx context.Context, body []byte) (*postResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify request failed: %w", err)
	}
	defer httpResp.Body.Close()

	res := &postResult{status: httpResp.StatusCode, remaining: -1}

	if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode == http.StatusServiceUnavailable {
		res.throttled = true
		res.retryAfter = parseRetryAfter(httpResp.Header.Get("Retry-After"))
		io.Copy(io.Discard, httpResp.Body)
		return res, nil
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		res.err = fmt.Errorf("shopify returned status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(raw)))
		return res, nil
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(raw, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to decode graphql response: %w", err)
	}

	if gqlResp.Extensions != nil {
		res.remaining = gqlResp.Extensions.Cost.ThrottleStatus.CurrentlyAvailable
	}

	if len(gqlResp.Errors) > 0 {
		if isThrottleError(gqlResp.Errors) {
			res.throttled = true
			return res, nil
		}
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		res.err = fmt.Errorf("graphql errors: %s", strings.Join(msgs, "; "))
		return res, nil
	}

	res.data = gqlResp.Data
	return res, nil
}

func isThrottleError(errs []graphQLError) bool {
	for _, e := range errs {
		if e.Extensions.Code == "THROTTLED" || strings.Contains(strings.ToLower(e.Message), "throttled") {
			return true
		}
	}
	return false
}

// backoff doubles per attempt from the base, capped, with a little jitter so
// concurrent processes don't stampede.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.retryBase << attempt
	if d > c.retryCap {
		d = c.retryCap
	}
	if c.retryJitter > 0 {
		d += time.Duration(rand.Int63n(int64(c.retryJitter)))
	}
	return d
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(header, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}

// QueryDeliveryProfiles fetches the full nested profile traversal.
func (c *Client) QueryDeliveryProfiles(ctx context.Context) (*DeliveryProfilesResponse, error) {
	var resp DeliveryProfilesResponse
	if err := c.Execute(ctx, deliveryProfilesQuery, map[string]interface{}{"first": 10}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateDeliveryProfile submits the atomic delete-existing + create-new
// mutation for one profile. Remote-reported user errors are returned as a
// *UserErrorsError and must not be retried.
func (c *Client) UpdateDeliveryProfile(ctx context.Context, profileID string, profile DeliveryProfileInput) error {
	var resp DeliveryProfileUpdateResponse
	err := c.Execute(ctx, deliveryProfileUpdateMutation, map[string]interface{}{
		"id":      profileID,
		"profile": profile,
	}, &resp)
	if err != nil {
		return err
	}
	if len(resp.DeliveryProfileUpdate.UserErrors) > 0 {
		return &UserErrorsError{Errors: resp.DeliveryProfileUpdate.UserErrors}
	}
	return nil
}
