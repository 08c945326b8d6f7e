package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/obsidianstack/haproxy-statsd/internal/haproxy"
	"github.com/obsidianstack/haproxy-statsd/internal/reporter"
	"github.com/obsidianstack/haproxy-statsd/internal/statsd"
)

// DefaultInterval is used by Run when Interval is not positive.
const DefaultInterval = 5 * time.Second

// Fetcher retrieves the merged stats records for one polling cycle.
type Fetcher interface {
	Fetch(ctx context.Context, urls ...string) ([]haproxy.Record, error)
}

// Runner drives the polling cycles: fetch, report, log, wait.
type Runner struct {
	Fetcher        Fetcher
	Sink           statsd.Sink
	URLs           []string
	Namespace      string
	ExcludeProxies bool
	Interval       time.Duration
}

// RunOnce performs a single polling cycle and returns the number of gauges sent.
//
// A fetch failure ends the cycle before anything is reported. Send failures
// are logged; the cycle still counts as successful.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()

	records, err := r.Fetcher.Fetch(ctx, r.URLs...)
	if err != nil {
		return 0, fmt.Errorf("agent: %w", err)
	}

	count, err := reporter.Report(records, r.Sink, r.Namespace, r.ExcludeProxies)
	if err != nil {
		slog.Warn("some stats were not sent", "err", err)
	}

	slog.Info("reported stats",
		"count", count,
		"records", len(records),
		"duration", time.Since(start),
	)
	return count, nil
}

// Run performs a cycle immediately and then once per Interval until ctx is
// cancelled. A failed cycle is logged and retried on the next tick. Cycles
// run on this goroutine only, so they never overlap; a cycle that outlasts
// the interval delays the next one. A zero or negative Interval falls back to
// DefaultInterval.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("polling cycle failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) interval() time.Duration {
	if r.Interval <= 0 {
		return DefaultInterval
	}
	return r.Interval
}
