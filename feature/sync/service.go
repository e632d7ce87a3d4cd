package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"price-sync/core/config"
	"price-sync/core/logger"
	"price-sync/core/reconcile"
	"price-sync/feature/promotions"
	"price-sync/feature/sources"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownSource is returned for a client name no source is registered under.
	ErrUnknownSource = errors.New("unknown source")
	// ErrUnsupportedJob is returned for a job the source does not support.
	ErrUnsupportedJob = errors.New("job not supported by source")
	// ErrRunInProgress is returned while the same source and job are running.
	ErrRunInProgress = errors.New("run already in progress")
)

// Catalog is the downstream store the runs write to.
type Catalog interface {
	reconcile.Store
	promotions.Clearer
}

// SourceLookup resolves sources by client name.
type SourceLookup interface {
	Get(name string) (reconcile.Source, bool)
	List() []sources.Info
}

// RunRecorder receives the summary of every partition run.
type RunRecorder interface {
	RunFinished(summary reconcile.RunSummary)
}

// ReportStore keeps run reports.
type ReportStore interface {
	StoreReport(ctx context.Context, source, job, runID string, report any) (string, error)
}

// Report is the outcome of one run across its partitions.
type Report struct {
	RunID      string                 `json:"run_id"`
	Source     string                 `json:"source"`
	Job        string                 `json:"job"`
	StartedAt  time.Time              `json:"started_at"`
	Elapsed    time.Duration          `json:"elapsed"`
	Success    bool                   `json:"success"`
	Partitions []reconcile.RunSummary `json:"partitions"`
	Errors     []string               `json:"errors,omitempty"`
	ArchiveKey string                 `json:"archive_key,omitempty"`
}

// Options wires the optional collaborators of a Service.
type Options struct {
	// Log configures the per-client log channels.
	Log logger.Config
	// Observers are notified of every batch.
	Observers []reconcile.Observer
	// Recorder receives partition summaries.
	Recorder RunRecorder
	// Reports keeps the final report of every run.
	Reports ReportStore
}

// Service runs sync jobs against the registered sources.
type Service struct {
	cfg     config.Sync
	sources SourceLookup
	catalog Catalog
	opts    Options
	logger  *zap.Logger

	mu      stdsync.Mutex
	running map[string]struct{}
}

// NewService creates the sync service.
func NewService(cfg config.Sync, lookup SourceLookup, catalog Catalog, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:     cfg,
		sources: lookup,
		catalog: catalog,
		opts:    opts,
		logger:  logger,
		running: make(map[string]struct{}),
	}
}

// Sources lists the registered sources.
func (s *Service) Sources() []sources.Info {
	return s.sources.List()
}

// Run executes job for source across all its partitions. Batch failures do
// not fail the run; they clear Report.Success. The error is reserved for
// setup failures: unknown source or job, a concurrent run, login, partition
// listing and cancellation.
func (s *Service) Run(ctx context.Context, source, job string) (*Report, error) {
	src, ok := s.sources.Get(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	if !reconcile.Supports(src, job) {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedJob, source, job)
	}

	key := source + "/" + job
	if !s.acquire(key) {
		return nil, fmt.Errorf("%w: %s", ErrRunInProgress, key)
	}
	defer s.release(key)

	report := &Report{
		RunID:     uuid.NewString(),
		Source:    source,
		Job:       job,
		StartedAt: time.Now(),
	}

	logs, err := logger.NewChannels(s.logger, s.opts.Log, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open log channels: %w", err)
	}
	defer logs.Close()

	app := logs.App.With(zap.String("run_id", report.RunID), zap.String("job", job))
	app.Info("Sync started")

	err = s.run(ctx, src, job, report, logs)
	report.Elapsed = time.Since(report.StartedAt)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		logs.Error.Error("Sync failed", zap.String("run_id", report.RunID), zap.String("job", job), zap.Error(err))
		return report, err
	}

	if s.opts.Reports != nil {
		if key, err := s.opts.Reports.StoreReport(ctx, source, job, report.RunID, report); err != nil {
			app.Warn("Failed to store run report", zap.Error(err))
		} else {
			report.ArchiveKey = key
		}
	}

	app.Info("Sync finished",
		zap.Bool("success", report.Success),
		zap.Int("partitions", len(report.Partitions)),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (s *Service) run(ctx context.Context, src reconcile.Source, job string, report *Report, logs *logger.Channels) error {
	if err := src.Login(ctx); err != nil {
		return fmt.Errorf("failed to login to %s: %w", src.Name(), err)
	}

	if job == reconcile.JobPromotions {
		if err := promotions.Reset(ctx, s.catalog, logs.App); err != nil {
			return fmt.Errorf("failed to reset print queue: %w", err)
		}
	}

	parts, err := src.Partitions(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to list partitions: %w", err)
	}

	summaries := make([]reconcile.RunSummary, len(parts))
	failures := make([]error, len(parts))

	var g errgroup.Group
	g.SetLimit(max(1, s.cfg.PartitionConcurrency))
	for i, part := range parts {
		g.Go(func() error {
			summaries[i], failures[i] = s.runPartition(ctx, src, job, report.RunID, part, logs)
			return nil
		})
	}
	_ = g.Wait()

	report.Partitions = summaries
	report.Success = true
	for i, sum := range summaries {
		if failures[i] != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", parts[i].Name, failures[i]))
			report.Success = false
		}
		if !sum.Clean() {
			report.Success = false
		}
	}
	return ctx.Err()
}

func (s *Service) runPartition(ctx context.Context, src reconcile.Source, job, runID string, part reconcile.Partition, logs *logger.Channels) (reconcile.RunSummary, error) {
	pipe, err := src.Pipeline(job, part)
	if err != nil {
		return reconcile.RunSummary{RunID: runID, Source: src.Name(), Job: job, Partition: part.Name}, err
	}
	if job == reconcile.JobPromotions && pipe.Projector == nil {
		pipe.Projector = promotions.NewProjector(s.cfg.Location(), logs.App)
	}

	engine := reconcile.NewEngine(reconcile.Config{
		RunID:     runID,
		Source:    src.Name(),
		Job:       job,
		Partition: part,
		Reader: reconcile.ReaderConfig{
			PageSize:    s.cfg.PageSize,
			MaxAttempts: s.cfg.MaxAttempts,
			Backoff:     s.cfg.RetryBackoff,
		},
		EnrichConcurrency: s.cfg.EnrichConcurrency,
		WriteChunkSize:    s.cfg.WriteChunkSize,
		UpdateProducts:    s.cfg.UpdateProducts,
	}, pipe, s.catalog, logs, s.opts.Observers...)

	summary, err := engine.Run(ctx)
	if s.opts.Recorder != nil {
		s.opts.Recorder.RunFinished(summary)
	}
	return summary, err
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[key]; busy {
		return false
	}
	s.running[key] = struct{}{}
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, key)
}
