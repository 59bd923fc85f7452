package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ratebridge-backend/internal/domain"
	"ratebridge-backend/pkg/logger"

	"github.com/google/uuid"
)

// MultiZoneOrchestrator sequences per-zone generate+deploy calls. Zones are
// processed strictly one at a time (the remote API's rate limit is the
// constraint, not throughput), failures are fail-fast, and the abort flag is
// checked only between zones: an in-flight zone always runs to completion.
type MultiZoneOrchestrator struct {
	resolver  domain.ZoneResolver
	collector domain.RateCollector
	deployer  domain.ZoneDeployer
	progress  *ProgressTracker
	abort     *AbortFlag

	dryRunZoneDelay time.Duration

	mu      sync.Mutex
	running bool
}

func NewMultiZoneOrchestrator(
	resolver domain.ZoneResolver,
	collector domain.RateCollector,
	deployer domain.ZoneDeployer,
	progress *ProgressTracker,
	abort *AbortFlag,
	dryRunZoneDelay time.Duration,
) *MultiZoneOrchestrator {
	return &MultiZoneOrchestrator{
		resolver:        resolver,
		collector:       collector,
		deployer:        deployer,
		progress:        progress,
		abort:           abort,
		dryRunZoneDelay: dryRunZoneDelay,
	}
}

func (o *MultiZoneOrchestrator) tryAcquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	return true
}

func (o *MultiZoneOrchestrator) release() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

// Run executes one orchestration pass over the remote zone list. The
// returned result is complete even when err != nil: it bundles every zone
// processed before the failure plus the failing zone's diagnostic.
func (o *MultiZoneOrchestrator) Run(ctx context.Context, opts domain.RunOptions) (*domain.RunResult, error) {
	if !o.tryAcquire() {
		return nil, domain.ErrRunInProgress
	}
	defer o.release()

	o.abort.Reset()

	result := &domain.RunResult{
		RunID:  uuid.New().String(),
		DryRun: opts.DryRun,
	}
	runLog := logger.WithRunID(*logger.Get(), result.RunID)
	ctx = logger.NewContext(ctx, &runLog)

	zones, err := o.resolver.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote zones: %w", err)
	}
	if opts.Target != "" {
		var filtered []domain.RemoteZone
		for _, z := range zones {
			if z.Name == opts.Target {
				filtered = append(filtered, z)
			}
		}
		zones = filtered
	}

	o.progress.MarkStart(len(zones))
	defer o.progress.MarkDone()

	runLog.Info().Int("zones", len(zones)).Bool("dry_run", opts.DryRun).Msg("Deployment run started")

	for i, zone := range zones {
		// Cooperative cancellation checkpoint: between zones only
		if o.abort.IsAborted() {
			result.Aborted = true
			o.progress.MarkAborted(o.abort.Reason())
			runLog.Warn().Str("reason", o.abort.Reason()).Int("processed", i).Msg("Deployment run aborted")
			return result, nil
		}

		zr := o.processZone(ctx, zone, opts.DryRun)
		result.Results = append(result.Results, zr)
		result.TotalZonesProcessed++
		o.progress.ReportZone(zr)

		if !zr.Success {
			result.FailedDeployments++
			result.Error = &domain.RunError{
				ZoneID:     zone.ID,
				ZoneName:   zone.Name,
				Detail:     zr.Error,
				Processed:  result.TotalZonesProcessed,
				TotalZones: len(zones),
			}
			runLog.Error().Str("zone", zone.Name).Str("detail", zr.Error).Msg("Zone deployment failed, stopping run")
			return result, fmt.Errorf("zone %s failed: %s", zone.Name, zr.Error)
		}
		result.SuccessfulDeployments++

		// Dry runs do no real writes but still pace between zones out of
		// courtesy to the remote limiter
		if opts.DryRun && i < len(zones)-1 {
			select {
			case <-time.After(o.dryRunZoneDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	runLog.Info().
		Int("processed", result.TotalZonesProcessed).
		Int("succeeded", result.SuccessfulDeployments).
		Msg("Deployment run complete")
	return result, nil
}

// processZone performs the full resolve -> collect -> deploy sequence for
// one zone. Any error is fatal for the run; transient throttling was already
// retried a layer down in the GraphQL client.
func (o *MultiZoneOrchestrator) processZone(ctx context.Context, zone domain.RemoteZone, dryRun bool) domain.ZoneResult {
	zr := domain.ZoneResult{ZoneID: zone.ID, ZoneName: zone.Name}

	sctx, err := o.resolver.ResolveForZone(ctx, zone.ID)
	if err != nil {
		zr.Error = err.Error()
		return zr
	}

	rates, err := o.collector.CollectZoneRates(ctx, zone.Name)
	if err != nil {
		zr.Error = err.Error()
		return zr
	}
	if len(rates) == 0 {
		zr.Error = fmt.Sprintf("no generated rates for zone %q", zone.Name)
		return zr
	}
	zr.RateCount = len(rates)

	preview, err := o.deployer.DeployZoneRates(ctx, zone.ID, rates, sctx, dryRun)
	if err != nil {
		zr.Error = err.Error()
		return zr
	}
	zr.Preview = preview
	zr.Success = true
	return zr
}
