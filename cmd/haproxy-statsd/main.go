// Command haproxy-statsd reports HAProxy stats to statsd.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/obsidianstack/haproxy-statsd/internal/agent"
	"github.com/obsidianstack/haproxy-statsd/internal/config"
	"github.com/obsidianstack/haproxy-statsd/internal/haproxy"
	"github.com/obsidianstack/haproxy-statsd/internal/statsd"
)

type options struct {
	configPath     string
	once           bool
	excludeProxies bool
	dryRun         bool
	logLevel       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("haproxy-statsd failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "haproxy-statsd",
		Short: "Report haproxy stats to statsd",
		Long: `haproxy-statsd polls the CSV export of one or more HAProxy stats pages
and sends a fixed set of per-proxy counters to statsd as gauges named
<namespace>.<pxname>.<svname>.<field>.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Config file location")
	flags.BoolVarP(&opts.once, "once", "1", false, "Run once and exit")
	flags.BoolVar(&opts.excludeProxies, "excludeproxies", false, "Exclude proxies, ie only show BACKEND & FRONTEND stats")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print gauges to stdout instead of sending them")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts *options) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
	}
	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	namespace, err := cfg.Namespace()
	if err != nil {
		return err
	}
	slog.Info("haproxy-statsd starting",
		"config", opts.configPath,
		"urls", len(cfg.HAProxyURLs),
		"statsd", cfg.StatsdAddr(),
		"namespace", namespace,
		"interval", cfg.IntervalDuration(),
		"exclude_proxies", opts.excludeProxies,
		"dry_run", opts.dryRun,
	)

	var sink statsd.Sink
	if opts.dryRun {
		sink = statsd.NewTextSink(cmd.OutOrStdout())
	} else {
		client, err := statsd.Dial(cfg.StatsdAddr())
		if err != nil {
			return err
		}
		defer client.Close()
		sink = client
	}

	r := &agent.Runner{
		Fetcher: haproxy.New(haproxy.Options{
			Username:           cfg.HAProxyUser,
			Password:           cfg.HAProxyPassword,
			Timeout:            cfg.HAProxyTimeout,
			InsecureSkipVerify: cfg.HAProxyInsecureSkipVerify,
		}),
		Sink:           sink,
		URLs:           cfg.HAProxyURLs,
		Namespace:      namespace,
		ExcludeProxies: opts.excludeProxies,
		Interval:       cfg.IntervalDuration(),
	}

	if opts.once {
		_, err := r.RunOnce(ctx)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	}

	// The config is fixed for the life of the process; edits only get a warning.
	go func() {
		if err := config.Watch(ctx, opts.configPath, cfg, func(_ *config.Config, changed []string) {
			slog.Warn("config file changed, restart haproxy-statsd to apply it",
				"path", opts.configPath,
				"changed", changed,
			)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	r.Run(ctx)
	slog.Info("haproxy-statsd shutting down")
	return nil
}
