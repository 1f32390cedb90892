package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jasonmurdy-collab/MarketPulse/internal/config"
	"github.com/jasonmurdy-collab/MarketPulse/internal/feeds"
	"github.com/jasonmurdy-collab/MarketPulse/internal/infrastructure"
	"github.com/jasonmurdy-collab/MarketPulse/internal/ingest"
	"github.com/jasonmurdy-collab/MarketPulse/internal/store"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// ReportListener is notified when a cycle finishes
type ReportListener func(domain.RunReport)

// IngestionService fetches every configured feed and publishes the
// normalized records into the market store.
type IngestionService struct {
	sources  *config.Sources
	fetcher  feeds.Fetcher
	builder  *ingest.Builder
	store    *store.MarketStore
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
	listener ReportListener

	running atomic.Bool
	mu      sync.RWMutex
	last    *domain.RunReport
}

// IngestionOption customizes an IngestionService
type IngestionOption func(*IngestionService)

// WithMetrics records fetch and publish metrics
func WithMetrics(m *infrastructure.BusinessMetrics) IngestionOption {
	return func(s *IngestionService) { s.metrics = m }
}

// WithTracer replaces the global tracer
func WithTracer(t trace.Tracer) IngestionOption {
	return func(s *IngestionService) { s.tracer = t }
}

// WithReportListener registers a callback for finished cycles
func WithReportListener(l ReportListener) IngestionOption {
	return func(s *IngestionService) { s.listener = l }
}

// WithAliases overrides the header alias table used by the record builders
func WithAliases(aliases ingest.AliasTable) IngestionOption {
	return func(s *IngestionService) { s.builder = ingest.NewBuilder(aliases, s.logger) }
}

// NewIngestionService creates the ingestion orchestrator
func NewIngestionService(sources *config.Sources, fetcher feeds.Fetcher, st *store.MarketStore, logger *slog.Logger, opts ...IngestionOption) *IngestionService {
	logger = infrastructure.WithComponent(logger, "ingestion_service")
	s := &IngestionService{
		sources: sources,
		fetcher: fetcher,
		store:   st,
		tracer:  otel.Tracer(infrastructure.InstrumentationName),
		logger:  logger,
		builder: ingest.NewBuilder(nil, logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports whether a cycle is in progress
func (s *IngestionService) Running() bool {
	return s.running.Load()
}

// LastReport returns the report of the most recent finished cycle
func (s *IngestionService) LastReport() (domain.RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domain.RunReport{}, false
	}
	return *s.last, true
}

// Start launches a cycle in the background. It returns ErrIngestionRunning
// when a cycle is already in progress.
func (s *IngestionService) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrIngestionRunning
	}
	go func() {
		defer s.running.Store(false)
		_, _ = s.run(ctx)
	}()
	return nil
}

// Run performs a full cycle and blocks until it finishes. Feed failures are
// reported in the RunReport; the returned error is non-nil only for
// pipeline level failures or when another cycle is running.
func (s *IngestionService) Run(ctx context.Context) (domain.RunReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.RunReport{}, ErrIngestionRunning
	}
	defer s.running.Store(false)
	return s.run(ctx)
}

// Schedule runs a cycle every interval until ctx is cancelled. Ticks that
// arrive while a cycle is still running are skipped.
func (s *IngestionService) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Start(ctx); err != nil {
				s.logger.InfoContext(ctx, "scheduled ingestion skipped", slog.String("reason", err.Error()))
			}
		}
	}
}

type sourceJob struct {
	region      domain.Region
	granularity domain.Granularity
	locator     string
}

type phaseResult struct {
	weekly  []domain.WeeklyRecord
	monthly []domain.MonthlyRecord
	reports []domain.SourceReport
}

type sourceResult struct {
	weekly  []domain.WeeklyRecord
	monthly []domain.MonthlyRecord
	report  domain.SourceReport
}

func (s *IngestionService) run(ctx context.Context) (report domain.RunReport, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := s.tracer.Start(ctx, "ingestion.run")
	defer span.End()

	report = domain.RunReport{
		TraceID:   infrastructure.GetTraceID(ctx),
		StartedAt: time.Now().UTC(),
	}
	phase := domain.PhasePriority

	defer func() {
		if r := recover(); r != nil {
			err = &PipelineError{Phase: phase, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			s.fail(ctx, &report, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		report.FinishedAt = time.Now().UTC()
		s.finish(ctx, report)
	}()

	s.logger.InfoContext(ctx, "ingestion started",
		slog.String("priority_region", string(s.sources.Priority)))
	s.store.Begin()

	priority, err := s.fetchPhase(ctx, phase, []domain.Region{s.sources.Priority})
	if err != nil {
		return report, err
	}
	report.Sources = append(report.Sources, priority.reports...)
	snap := s.store.ReplacePriority(priority.weekly, priority.monthly)
	s.metrics.RecordPublished(ctx, len(snap.Weekly), len(snap.Monthly))
	s.logger.InfoContext(ctx, "priority data published",
		slog.Int("weekly", len(priority.weekly)),
		slog.Int("monthly", len(priority.monthly)),
		slog.Bool("loading", snap.Loading))

	phase = domain.PhaseBackground
	background, err := s.fetchPhase(ctx, phase, s.sources.Background())
	if err != nil {
		return report, err
	}
	report.Sources = append(report.Sources, background.reports...)
	snap = s.store.AppendBackground(background.weekly, background.monthly)
	s.metrics.RecordPublished(ctx, len(snap.Weekly), len(snap.Monthly))

	report.Weekly = len(snap.Weekly)
	report.Monthly = len(snap.Monthly)
	s.logger.InfoContext(ctx, "ingestion complete",
		slog.Int("weekly", report.Weekly),
		slog.Int("monthly", report.Monthly),
		slog.Int("failed_sources", report.FailedSources()))
	return report, nil
}

// fetchPhase fetches the weekly and monthly feeds of regions concurrently
// and joins the results in region order, weekly feeds first.
func (s *IngestionService) fetchPhase(ctx context.Context, phase domain.Phase, regions []domain.Region) (phaseResult, error) {
	jobs := make([]sourceJob, 0, len(regions)*2)
	for _, g := range domain.Granularities() {
		for _, region := range regions {
			locator, err := s.sources.Locator(region, g)
			if err != nil {
				return phaseResult{}, &PipelineError{Phase: phase, Err: err}
			}
			jobs = append(jobs, sourceJob{region: region, granularity: g, locator: locator})
		}
	}

	results := make([]sourceResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = s.fetchSource(gctx, job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return phaseResult{}, &PipelineError{Phase: phase, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return phaseResult{}, &PipelineError{Phase: phase, Err: err}
	}

	var out phaseResult
	for _, r := range results {
		out.weekly = append(out.weekly, r.weekly...)
		out.monthly = append(out.monthly, r.monthly...)
		out.reports = append(out.reports, r.report)
	}
	return out, nil
}

// fetchSource is the per-feed guard: every error, including a panic, is
// logged and turned into an empty contribution.
func (s *IngestionService) fetchSource(ctx context.Context, job sourceJob) (result sourceResult) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ingestion.fetch_source", trace.WithAttributes(
		attribute.String("region", string(job.region)),
		attribute.String("granularity", string(job.granularity)),
	))
	defer span.End()

	result.report = domain.SourceReport{
		Region:      job.region,
		Granularity: job.granularity,
		Locator:     job.locator,
	}

	outcome := infrastructure.OutcomeSuccess
	defer func() {
		if r := recover(); r != nil {
			result = sourceResult{report: result.report}
			s.sourceFailed(ctx, &result.report, fmt.Errorf("panic: %v", r))
			outcome = infrastructure.OutcomeFailure
		}
		result.report.Duration = time.Since(start)
		if result.report.Failed() {
			span.SetStatus(codes.Error, result.report.Error)
		}
		s.metrics.RecordFeedFetch(ctx, string(job.region), string(job.granularity), outcome, result.report.Duration)
		s.metrics.RecordRowsDropped(ctx, string(job.region), string(job.granularity), result.report.Dropped)
	}()

	table, err := s.fetcher.Fetch(ctx, job.locator)
	if err != nil {
		outcome = infrastructure.OutcomeFailure
		if errors.Is(err, feeds.ErrEmptyFeed) {
			outcome = infrastructure.OutcomeEmpty
		}
		s.sourceFailed(ctx, &result.report, err)
		return result
	}

	var stats ingest.BuildStats
	switch job.granularity {
	case domain.GranularityWeekly:
		result.weekly, stats = s.builder.Weekly(table.Rows, job.region)
	case domain.GranularityMonthly:
		result.monthly, stats = s.builder.Monthly(table.Rows, job.region)
	}
	result.report.Rows = stats.Rows
	result.report.Records = stats.Built
	result.report.Dropped = stats.Dropped + table.Skipped

	if stats.Built == 0 {
		outcome = infrastructure.OutcomeEmpty
		s.sourceFailed(ctx, &result.report, ErrNoUsableRows)
		return result
	}

	s.logger.DebugContext(ctx, "feed normalized",
		slog.String("region", string(job.region)),
		slog.String("granularity", string(job.granularity)),
		slog.Int("records", stats.Built),
		slog.Int("dropped", result.report.Dropped))
	return result
}

func (s *IngestionService) sourceFailed(ctx context.Context, report *domain.SourceReport, err error) {
	srcErr := &SourceError{Region: report.Region, Granularity: report.Granularity, Locator: report.Locator, Err: err}
	report.Error = srcErr.Error()
	trace.SpanFromContext(ctx).RecordError(srcErr)
	infrastructure.WithError(s.logger, err).WarnContext(ctx, "feed failed",
		slog.String("region", string(report.Region)),
		slog.String("granularity", string(report.Granularity)))
}

func (s *IngestionService) fail(ctx context.Context, report *domain.RunReport, err error) {
	snap := s.store.Fail(DegradedMessage)
	report.Error = err.Error()
	report.Weekly = len(snap.Weekly)
	report.Monthly = len(snap.Monthly)
	infrastructure.WithError(s.logger, err).ErrorContext(ctx, "ingestion failed",
		slog.Int("weekly_retained", report.Weekly),
		slog.Int("monthly_retained", report.Monthly))
}

func (s *IngestionService) finish(ctx context.Context, report domain.RunReport) {
	result := "complete"
	if report.Error != "" {
		result = "failed"
	}
	s.metrics.RecordIngestionRun(ctx, result)

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	if s.listener != nil {
		s.listener(report)
	}
}
