package domain

import (
	"context"
	"time"
)

// RemoteZone is a zone as the remote platform reports it.
type RemoteZone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ShopifyContext carries the remote identifiers a single zone deployment
// needs. Resolved fresh before every deploy: the existing method-definition
// ids dictate what the mutation deletes, so a stale context is dangerous.
type ShopifyContext struct {
	ProfileID                   string   `json:"profileId"`
	LocationGroupID             string   `json:"locationGroupId"`
	ZoneID                      string   `json:"zoneId"`
	ZoneName                    string   `json:"zoneName"`
	ExistingMethodDefinitionIDs []string `json:"existingMethodDefinitionIds"`
}

// ZoneMatch pairs a remote zone with the locally generated rates of the same
// name. Matching is exact and case-sensitive.
type ZoneMatch struct {
	RemoteID  string `json:"remoteId"`
	ZoneName  string `json:"zoneName"`
	RateCount int    `json:"rateCount"`
}

// ZoneMatchResult partitions remote and local zone names into three disjoint
// sets for operator review.
type ZoneMatchResult struct {
	Matched    []ZoneMatch     `json:"matched"`
	RemoteOnly []RemoteZone    `json:"remoteOnly"`
	LocalOnly  []ZoneRateCount `json:"localOnly"`
}

// DeployPreview is what a dry-run deploy returns instead of mutating.
type DeployPreview struct {
	ZoneID        string `json:"zoneId"`
	ZoneName      string `json:"zoneName"`
	DeleteCount   int    `json:"deleteCount"`
	CreateCount   int    `json:"createCount"`
}

// ZoneResult is the outcome of one per-zone generate+deploy call.
type ZoneResult struct {
	ZoneID    string         `json:"zone_id"`
	ZoneName  string         `json:"zone_name"`
	Success   bool           `json:"success"`
	RateCount int            `json:"rate_count"`
	Error     string         `json:"error,omitempty"`
	Preview   *DeployPreview `json:"preview,omitempty"`
}

// RunOptions configures one orchestration run.
type RunOptions struct {
	DryRun bool   `json:"dry_run"`
	Target string `json:"target,omitempty"` // optional zone name filter
}

// RunError identifies the failing zone of a fail-fast run, with enough
// context for an operator to retry only the unprocessed remainder.
type RunError struct {
	ZoneID     string `json:"zone_id"`
	ZoneName   string `json:"zone_name"`
	Detail     string `json:"detail"`
	Processed  int    `json:"processed"`
	TotalZones int    `json:"total_zones"`
}

// RunResult is the full outcome of an orchestration run.
type RunResult struct {
	RunID                 string       `json:"run_id"`
	DryRun                bool         `json:"dry_run"`
	TotalZonesProcessed   int          `json:"total_zones_processed"`
	SuccessfulDeployments int          `json:"successful_deployments"`
	FailedDeployments     int          `json:"failed_deployments"`
	Aborted               bool         `json:"aborted,omitempty"`
	Results               []ZoneResult `json:"results"`
	Error                 *RunError    `json:"error,omitempty"`
}

// ProgressSnapshot is the run status served to polling callers. Readers get
// deep copies; the live struct is owned by the tracker.
type ProgressSnapshot struct {
	Started     bool         `json:"started"`
	StartTime   time.Time    `json:"start_time"`
	TotalZones  int          `json:"total_zones"`
	Completed   []ZoneResult `json:"completed"`
	Done        bool         `json:"done"`
	Aborted     bool         `json:"aborted"`
	AbortReason string       `json:"abort_reason,omitempty"`
	LastUpdate  time.Time    `json:"last_update"`
}

// ZoneResolver reads the remote zone topology.
type ZoneResolver interface {
	ListZones(ctx context.Context) ([]RemoteZone, error)
	ResolveForZone(ctx context.Context, zoneID string) (*ShopifyContext, error)
}

// RateCollector produces the in-memory rates for one zone from tariffs.
type RateCollector interface {
	CollectZoneRates(ctx context.Context, zoneName string) ([]GeneratedRate, error)
}

// ZoneDeployer atomically replaces a zone's remote method definitions.
type ZoneDeployer interface {
	DeployZoneRates(ctx context.Context, zoneID string, rates []GeneratedRate, sctx *ShopifyContext, dryRun bool) (*DeployPreview, error)
}
