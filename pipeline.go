package gridloader

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"golang.org/x/xerrors"
)

// Pipeline ingests the configured country × document type space for a time
// window into the warehouse. Per-task failures are recorded in the report;
// only a configuration error or an unreachable source fails the run.
type Pipeline interface {
	Run(ctx context.Context, start, end time.Time) (*Report, error)
}

const (
	defaultConcurrency = 4
	defaultRateLimit   = 2 // requests per second against the API
)

type pipeline struct {
	cfg      *Config
	source   Source
	loader   loader
	notifier Notifier
	limiter  *rate.Limiter

	concurrency   int
	rateLimit     float64
	prettyLogging bool
	logLevel      string

	logger zerolog.Logger
}

// New builds a Pipeline from a validated configuration. Defaults: the REST
// source against the transparency platform (archiving raw payloads when an
// archive bucket is configured), the BigQuery loader, and a Slack notifier
// when Slack credentials are present.
func New(ctx context.Context, cfg *Config, opts ...Option) (Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:         cfg,
		concurrency: defaultConcurrency,
		rateLimit:   defaultRateLimit,
		logLevel:    "info",
	}

	for _, o := range opts {
		if err := o.apply(p); err != nil {
			return nil, err
		}
	}

	logger, err := newLogger(p.prettyLogging, p.logLevel)
	if err != nil {
		return nil, err
	}
	p.logger = logger

	if p.limiter == nil {
		p.limiter = rate.NewLimiter(rate.Limit(p.rateLimit), 1)
	}

	if p.source == nil {
		var archiver Archiver
		if cfg.ArchiveBucket != "" {
			archiver, err = newGCSArchiver(ctx, cfg.ArchiveBucket)
			if err != nil {
				return nil, err
			}
		}
		p.source = newEntsoeSource(cfg.APIToken, archiver)
	}

	if p.loader == nil {
		ld, err := newBigQueryLoader(ctx, cfg.Project, cfg.Dataset)
		if err != nil {
			return nil, err
		}
		p.loader = ld
	}

	if p.notifier == nil && cfg.SlackToken != "" && cfg.SlackChannel != "" {
		p.notifier = &SlackNotifier{
			Token:    cfg.SlackToken,
			Channel:  cfg.SlackChannel,
			Username: "gridloader",
		}
	}

	return p, nil
}

func (p *pipeline) tasks(start, end time.Time) []Task {
	var tasks []Task
	for _, country := range p.cfg.Countries {
		for _, doc := range p.cfg.Documents {
			tasks = append(tasks, Task{
				Country:     country,
				Document:    doc.Type,
				PeriodStart: start,
				PeriodEnd:   end,
			})
		}
	}
	return tasks
}

func (p *pipeline) Run(ctx context.Context, start, end time.Time) (*Report, error) {
	runID := uuid.NewString()

	logger := p.logger.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)
	ctx = withRunStarted(ctx)

	tasks := p.tasks(start, end)
	logger.Info().Int("tasks", len(tasks)).
		Time("period_start", start).Time("period_end", end).
		Msg("ingestion run started")

	var (
		mu      sync.Mutex
		results []TaskResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, t := range tasks {
		t := t
		g.Go(func() error {
			// A limiter wait only fails on cancellation; that stops
			// scheduling but completed tasks keep their results.
			if err := p.limiter.Wait(gctx); err != nil {
				return err
			}

			res := p.runTask(gctx, t)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()

			return nil
		})
	}

	waitErr := g.Wait()

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i].Task, results[j].Task
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		return a.Document < b.Document
	})

	report := &Report{RunID: runID, Results: results}
	if started, ok := runStartedFrom(ctx); ok {
		report.StartedAt = started
		report.Duration = time.Since(started)
	}

	// The report goes out even when the run is fatal: a silent channel on
	// a fully failed run is the worst outcome for operators. Delivery is
	// detached from the run context so a cancelled run still notifies.
	if p.notifier != nil {
		if err := p.notifier.Notify(context.WithoutCancel(ctx), report); err != nil {
			logger.Warn().Err(err).Msg("failed to deliver report notification")
		}
	}

	if waitErr != nil {
		return report, xerrors.Errorf("run aborted: %w", waitErr)
	}

	if report.AllFailed() {
		return report, xerrors.Errorf("source unreachable: all %d tasks failed", len(results))
	}

	logger.Info().
		Int("loaded", report.Loaded()).Int("empty", report.Empty()).Int("failed", report.Failed()).
		Msg("ingestion run finished")

	return report, nil
}

func (p *pipeline) runTask(ctx context.Context, t Task) TaskResult {
	l := log.Ctx(ctx).With().
		Str("country", t.Country).Str("document", string(t.Document)).Logger()
	ctx = l.WithContext(ctx)

	table, err := TableFor(t.Document)
	if err != nil {
		return TaskResult{Task: t, Status: StatusFailed, Err: err}
	}

	frame, err := p.source.Fetch(ctx, t)
	if errors.Is(err, ErrNoData) {
		l.Info().Msg("no data published")
		return TaskResult{Task: t, Status: StatusEmpty}
	}
	if err != nil {
		l.Error().Err(err).Msg("fetch failed")
		return TaskResult{Task: t, Status: StatusFailed, Err: err}
	}
	if frame.Empty() {
		l.Info().Msg("empty frame")
		return TaskResult{Task: t, Status: StatusEmpty}
	}

	frame.Columns = CanonicalColumns(ctx, frame.Columns)
	records := frame.Records()
	Enrich(records, t.Country, t.Document, time.Now().UTC())

	if err := p.loader.load(ctx, table, records); err != nil {
		l.Error().Err(err).Msg("load failed")
		return TaskResult{Task: t, Status: StatusFailed, Err: err}
	}

	l.Info().Int("rows", len(records)).Str("table", table).Msg("loaded")
	return TaskResult{Task: t, Status: StatusLoaded, Rows: len(records)}
}
