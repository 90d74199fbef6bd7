// Package rescore keeps priority tiers current. Recency points decay as a
// report ages, so a tier computed at intake drifts stale on its own; the
// rescorer periodically sweeps the open reports and re-runs the scoring for
// each one, persisting only actual tier changes.
package rescore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/reliefops/go-disaster-response/internal/observability"
	"github.com/reliefops/go-disaster-response/internal/priority"
	"github.com/reliefops/go-disaster-response/internal/repository"
	"github.com/reliefops/go-disaster-response/internal/worker"
)

type Rescorer struct {
	interval   time.Duration
	workers    int
	bufferSize int
	repo       repository.ReportRepository
	classifier priority.WeatherClassifier
	metrics    *observability.Metrics
	clock      clockwork.Clock

	pool *worker.Pool
	wg   sync.WaitGroup
}

// Options sizes the sweep machinery.
type Options struct {
	Interval   time.Duration
	Workers    int
	BufferSize int
	// Clock defaults to the real clock; tests inject a fake.
	Clock clockwork.Clock
}

func New(repo repository.ReportRepository, classifier priority.WeatherClassifier, metrics *observability.Metrics, opts Options) *Rescorer {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 20
	}
	return &Rescorer{
		interval:   opts.Interval,
		workers:    opts.Workers,
		bufferSize: opts.BufferSize,
		repo:       repo,
		classifier: classifier,
		metrics:    metrics,
		clock:      opts.Clock,
	}
}

func (r *Rescorer) Start(ctx context.Context) {
	r.pool = worker.NewPool(r.workers, r.bufferSize, r.process)
	r.pool.Start(ctx)
	r.metrics.RescoreRunning.Set(1)

	r.wg.Add(1)
	go r.run(ctx)
}

func (r *Rescorer) run(ctx context.Context) {
	defer r.wg.Done()
	slog.Info("starting rescorer", "interval", r.interval)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	// Initial sweep so a restart does not wait a full interval.
	r.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("rescorer shutting down")
			return
		case <-ticker.Chan():
			r.sweep(ctx)
		}
	}
}

func (r *Rescorer) sweep(ctx context.Context) {
	reports, err := r.repo.List(ctx, repository.Filter{OpenOnly: true})
	if err != nil {
		slog.Error("rescore sweep failed to list open reports", "error", err)
		r.metrics.StoreFailures.WithLabelValues("rescore_list").Inc()
		return
	}

	for _, report := range reports {
		r.pool.Submit(worker.Task{Report: report})
	}

	r.metrics.RescoreCycles.Inc()
	slog.Debug("rescore sweep queued", "count", len(reports))
}

func (r *Rescorer) process(ctx context.Context, task worker.Task) error {
	report := task.Report

	res, err := priority.Score(ctx, &report, r.classifier)
	if err != nil {
		// A malformed stored timestamp cannot be fixed here; skip the
		// report rather than kill the sweep.
		slog.Warn("skipping unscoreable report", "id", report.ID, "error", err)
		return err
	}

	if res.Level == report.PriorityLevel {
		return nil
	}

	if err := r.repo.UpdatePriority(ctx, report.ID, res.Level); err != nil {
		slog.Error("error persisting rescored priority", "id", report.ID, "error", err)
		r.metrics.StoreFailures.WithLabelValues("rescore_priority").Inc()
		return err
	}

	r.metrics.RescoreChanges.Inc()
	r.metrics.PriorityScores.WithLabelValues(string(res.Level)).Inc()
	slog.Info("priority rescored", "id", report.ID,
		"from", report.PriorityLevel, "to", res.Level, "score", res.Score)
	return nil
}

// Stop waits for the sweep loop to exit, then drains the pool.
func (r *Rescorer) Stop() {
	r.wg.Wait()
	r.pool.Stop()
	r.metrics.RescoreRunning.Set(0)
	slog.Info("rescorer stopped")
}
