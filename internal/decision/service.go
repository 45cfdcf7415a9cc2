// Package decision orchestrates one scoring run: input gathering,
// engine execution, trace policy, archival, and telemetry.
package decision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fishcast/internal/catalog"
	"fishcast/internal/engine"
	"fishcast/internal/reports"
	"fishcast/internal/telemetry"
	"fishcast/internal/types"
)

// EngineVersion identifies the scoring pipeline build. Bumped when
// scoring semantics change, independent of the ruleset version.
const EngineVersion = "1.2.0"

// Default evaluation coordinates: the mouth of the strait, central to
// all catalog spots.
const (
	defaultLat = 41.01
	defaultLon = 28.97
)

// defaultScoreWorkers bounds parallel per-spot scoring.
const defaultScoreWorkers = 4

// archiveFreshFor is how long an archived today-document is served
// before the read path recomputes.
const archiveFreshFor = 6 * time.Hour

// WeatherProvider yields the normalized weather snapshot. Satisfied by
// weather.Provider; never returns nil.
type WeatherProvider interface {
	Snapshot(ctx context.Context, lat, lon float64) *types.WeatherSnapshot
}

// SolunarProvider yields lunar windows and daylight bounds. Satisfied
// by solunar.Provider.
type SolunarProvider interface {
	Location() *time.Location
	Snapshot(t time.Time) types.SolunarSnapshot
	Daylight(t time.Time) types.DaylightSnapshot
}

// DecisionArchive is the document store surface. Satisfied by
// db.DecisionRepository.
type DecisionArchive interface {
	Upsert(ctx context.Context, doc *types.DecisionDocument) error
	GetByDate(ctx context.Context, date string) (*types.DecisionDocument, error)
}

// SpotScoreArchive stores per-spot rows. Satisfied by
// db.SpotScoreRepository.
type SpotScoreArchive interface {
	UpsertBatch(ctx context.Context, date string, scores []types.SpotScore) error
}

// Service runs the decision pipeline. Archive fields may be nil for
// stateless deployments (CLI, offline mode); everything else is
// required.
type Service struct {
	Catalog   *catalog.Catalog
	Weather   WeatherProvider
	Solunar   SolunarProvider
	Reports   reports.SignalProvider
	Decisions DecisionArchive
	Scores    SpotScoreArchive
	Metrics   telemetry.MetricPublisher
	Logger    *slog.Logger

	// Lat, Lon are the weather evaluation coordinates; zero values use
	// the strait defaults.
	Lat float64
	Lon float64

	// AllowTraceFull permits full traces in archived and served
	// documents. When false a requested full trace degrades to minimal.
	AllowTraceFull bool

	// ScoreWorkers bounds parallel per-spot scoring; zero uses the
	// default.
	ScoreWorkers int

	// Clock is replaceable for tests; nil means time.Now.
	Clock func() time.Time
}

// RunOptions shape one invocation of Run.
type RunOptions struct {
	// Region restricts scoring to one region's spots. Empty runs all
	// spots; only full runs archive the daily document.
	Region types.RegionID

	// TraceLevel requested by the caller, before the policy guard.
	TraceLevel types.TraceLevel

	// Archive controls whether the result is written to the database.
	Archive bool
}

// RunResult is the outcome of one Run.
type RunResult struct {
	Document       *types.DecisionDocument
	SpotsProcessed int
	ArchiveWritten bool
	DataQuality    types.DataQuality
	DataIssues     []string
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) metrics() telemetry.MetricPublisher {
	if s.Metrics != nil {
		return s.Metrics
	}
	return telemetry.NoopPublisher{}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) coords() (float64, float64) {
	if s.Lat == 0 && s.Lon == 0 {
		return defaultLat, defaultLon
	}
	return s.Lat, s.Lon
}

func (s *Service) workers() int {
	if s.ScoreWorkers > 0 {
		return s.ScoreWorkers
	}
	return defaultScoreWorkers
}

// applyTraceGuard downgrades a refused full trace to minimal.
func (s *Service) applyTraceGuard(requested types.TraceLevel) types.TraceLevel {
	if requested == types.TraceFull && !s.AllowTraceFull {
		return types.TraceMinimal
	}
	return requested
}

// Run executes one decision run and optionally archives it.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	started := time.Now()
	now := s.now().In(s.Solunar.Location())

	applied := s.applyTraceGuard(opts.TraceLevel)

	in, err := s.gatherInputs(ctx, now, opts, applied)
	if err != nil {
		return nil, err
	}

	doc, err := s.score(ctx, in)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Document:       doc,
		SpotsProcessed: len(doc.Spots),
		DataQuality:    doc.DaySummary.DataQuality,
		DataIssues:     doc.DaySummary.DataIssues,
	}

	if opts.Archive {
		written, err := s.archive(ctx, doc, opts.Region)
		if err != nil {
			return result, err
		}
		result.ArchiveWritten = written
	}

	s.publishRunMetrics(ctx, doc, time.Since(started))

	s.logger().InfoContext(ctx, "decision_generated",
		"run_id", doc.Meta.RunID,
		"date", doc.Date,
		"region", string(opts.Region),
		"spots", len(doc.Spots),
		"data_quality", string(doc.DaySummary.DataQuality),
		"no_go", doc.NoGo.Active,
		"trace_level", string(applied),
		"latency_ms", time.Since(started).Milliseconds(),
	)

	return result, nil
}

// Today serves the archived document for the current date when it is
// fresh and carries the trace level the caller may see; otherwise it
// computes (and archives) a new one.
func (s *Service) Today(ctx context.Context, requested types.TraceLevel) (*types.DecisionDocument, error) {
	now := s.now().In(s.Solunar.Location())
	date := now.Format("2006-01-02")
	applied := s.applyTraceGuard(requested)

	if s.Decisions != nil {
		doc, err := s.Decisions.GetByDate(ctx, date)
		if err == nil && s.servable(doc, applied) {
			return doc, nil
		}
		if err != nil && !types.IsNotFound(err) {
			s.logger().WarnContext(ctx, "archived decision unavailable, recomputing",
				"date", date,
				"error", err,
			)
		}
	}

	result, err := s.Run(ctx, RunOptions{
		TraceLevel: requested,
		Archive:    s.Decisions != nil,
	})
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

// GetByDate returns the archived document for a past date. No compute
// fallback: history only exists in the archive.
func (s *Service) GetByDate(ctx context.Context, date string) (*types.DecisionDocument, error) {
	if s.Decisions == nil {
		return nil, types.NewAppError(types.ErrCodeNotFoundDecision,
			"decision archive is not configured", nil)
	}
	return s.Decisions.GetByDate(ctx, date)
}

func (s *Service) servable(doc *types.DecisionDocument, applied types.TraceLevel) bool {
	if doc.Meta.TraceLevelApplied != applied {
		return false
	}
	return s.now().Sub(doc.Meta.GeneratedAt) < archiveFreshFor
}

// gatherInputs fetches weather and solunar data concurrently and
// assembles the read-only run input.
func (s *Service) gatherInputs(ctx context.Context, now time.Time, opts RunOptions, applied types.TraceLevel) (*engine.RunInput, error) {
	lat, lon := s.coords()

	var (
		weatherSnap *types.WeatherSnapshot
		solunarSnap types.SolunarSnapshot
		daylight    types.DaylightSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weatherSnap = s.Weather.Snapshot(gctx, lat, lon)
		return nil
	})
	g.Go(func() error {
		solunarSnap = s.Solunar.Snapshot(now)
		daylight = s.Solunar.Daylight(now)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if weatherSnap.DataQuality == types.DataQualityFallback {
		s.metrics().Count(ctx, types.MetricWeatherFallback, 1)
	}

	spots := s.selectSpots(opts.Region)
	if len(spots) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidRegion,
			fmt.Sprintf("no spots in region %q", opts.Region), nil)
	}

	return &engine.RunInput{
		Now:         now,
		Weather:     weatherSnap,
		Solunar:     &solunarSnap,
		Daylight:    &daylight,
		Spots:       spots,
		Rules:       s.Catalog.Rules(),
		Scoring:     s.Catalog.Scoring(),
		Seasonality: s.Catalog.Seasonality(),
		Reports:     s.gatherReports(ctx, spots),
		TraceLevel:  applied,
		Meta: types.DecisionMeta{
			RunID:               uuid.NewString(),
			GeneratedAt:         now.UTC(),
			Timezone:            s.Solunar.Location().String(),
			EngineVersion:       EngineVersion,
			RulesetVersion:      s.Catalog.RulesetVersion(),
			TraceLevelRequested: opts.TraceLevel,
			TraceLevelApplied:   applied,
			RulesetFingerprint:  s.Catalog.Fingerprint(),
		},
	}, nil
}

func (s *Service) selectSpots(region types.RegionID) []types.Spot {
	all := s.Catalog.Spots()
	if region == "" {
		return all
	}
	var out []types.Spot
	for _, spot := range all {
		if spot.Region == region {
			out = append(out, spot)
		}
	}
	return out
}

func (s *Service) gatherReports(ctx context.Context, spots []types.Spot) map[string]*types.ReportSignal {
	if s.Reports == nil {
		return nil
	}
	out := make(map[string]*types.ReportSignal, len(spots))
	for _, spot := range spots {
		sig, err := s.Reports.Signal(ctx, spot.ID)
		if err != nil {
			s.logger().WarnContext(ctx, "report signal unavailable",
				"spot_id", spot.ID,
				"error", err,
			)
			continue
		}
		if sig.RecentCount > 0 {
			copied := sig
			out[spot.ID] = &copied
		}
	}
	return out
}

// score runs per-spot scoring with bounded parallelism. Results land in
// index-addressed slots so the assembled document is deterministic
// regardless of scheduling.
func (s *Service) score(ctx context.Context, in *engine.RunInput) (*types.DecisionDocument, error) {
	waterMass := engine.ComputeWaterMass(in.Weather.WindCardinal, in.Weather.WindSpeedKmh, in.Scoring.WaterMassProxy)

	slots := make([]types.SpotScore, len(in.Spots))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i := range in.Spots {
		g.Go(func() error {
			slots[i] = engine.ComputeSpotScore(&in.Spots[i], in, waterMass)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return engine.AssembleDecision(in, slots), nil
}

// archive persists the run. Per-spot rows are written for every run;
// the daily document only for full (all-region) runs, since a partial
// run cannot represent the whole day.
func (s *Service) archive(ctx context.Context, doc *types.DecisionDocument, region types.RegionID) (bool, error) {
	written := false

	if s.Scores != nil {
		if err := s.Scores.UpsertBatch(ctx, doc.Date, doc.Spots); err != nil {
			s.metrics().Count(ctx, types.MetricArchiveFailure, 1)
			return false, fmt.Errorf("decision: archiving spot scores: %w", err)
		}
		written = true
	}

	if s.Decisions != nil && region == "" {
		if err := s.Decisions.Upsert(ctx, doc); err != nil {
			s.metrics().Count(ctx, types.MetricArchiveFailure, 1)
			return written, fmt.Errorf("decision: archiving decision document: %w", err)
		}
		written = true
	}

	return written, nil
}

func (s *Service) publishRunMetrics(ctx context.Context, doc *types.DecisionDocument, elapsed time.Duration) {
	quality := telemetry.Dim(types.DimDataQuality, string(doc.DaySummary.DataQuality))

	s.metrics().Duration(ctx, types.MetricDecisionLatency, elapsed, quality)
	s.metrics().Count(ctx, types.MetricDecisionGenerated, 1, quality)

	fired := 0
	for i := range doc.Spots {
		fired += len(doc.Spots[i].ActiveRules)
	}
	s.metrics().Count(ctx, types.MetricRulesFired, float64(fired))

	if doc.NoGo.Active {
		s.metrics().Count(ctx, types.MetricDecisionNoGo, 1)
	}
}
