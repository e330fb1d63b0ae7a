package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/orbital-agent/lfu"
	lfuprom "github.com/orbital-agent/lfu/adapters/prometheus"
	"github.com/orbital-agent/lfu/internal/bench"
	"github.com/orbital-agent/lfu/internal/config"
)

var envFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "lfubench <command> [flags]",
		Short:             "Exercise an LFU cache under load",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional file with LFU_* variables")
	cmd.AddCommand(newRunCmd())

	return cmd
}

func newRunCmd() *cobra.Command {
	flags := config.Default()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a Zipf-distributed read-through workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			overlayFlags(cmd, &cfg, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cmd.OutOrStdout(), cfg)
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.Capacity, "capacity", flags.Capacity, "Cache capacity in entries (env LFU_CAPACITY)")
	f.IntVar(&flags.Keys, "keys", flags.Keys, "Size of the key space (env LFU_KEYS)")
	f.IntVar(&flags.Workers, "workers", flags.Workers, "Concurrent workers (env LFU_WORKERS)")
	f.IntVar(&flags.Ops, "ops", flags.Ops, "Total lookups across all workers (env LFU_OPS)")
	f.Float64Var(&flags.Skew, "skew", flags.Skew, "Zipf exponent, must be > 1 (env LFU_SKEW)")
	f.Int64Var(&flags.Seed, "seed", flags.Seed, "Random seed (env LFU_SEED)")
	f.StringVar(&flags.MetricsAddr, "metrics-addr", flags.MetricsAddr, "Serve /metrics on this address (env LFU_METRICS_ADDR)")
	f.DurationVar(&flags.Linger, "linger", flags.Linger, "Keep serving metrics this long after the run (env LFU_LINGER)")
	f.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "debug, info, warn or error (env LFU_LOG_LEVEL)")

	return cmd
}

// overlayFlags copies explicitly set flags over the env-derived config.
func overlayFlags(cmd *cobra.Command, cfg *config.Bench, flags config.Bench) {
	set := cmd.Flags().Changed
	if set("capacity") {
		cfg.Capacity = flags.Capacity
	}
	if set("keys") {
		cfg.Keys = flags.Keys
	}
	if set("workers") {
		cfg.Workers = flags.Workers
	}
	if set("ops") {
		cfg.Ops = flags.Ops
	}
	if set("skew") {
		cfg.Skew = flags.Skew
	}
	if set("seed") {
		cfg.Seed = flags.Seed
	}
	if set("metrics-addr") {
		cfg.MetricsAddr = flags.MetricsAddr
	}
	if set("linger") {
		cfg.Linger = flags.Linger
	}
	if set("log-level") {
		cfg.LogLevel = flags.LogLevel
	}
}

func run(ctx context.Context, out io.Writer, cfg config.Bench) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	reg := prometheus.NewRegistry()
	c, err := lfu.New[uint64, uint64](cfg.Capacity, nil,
		lfu.WithMetrics(lfuprom.NewRecorder(reg, "bench")),
		lfu.WithLogger(log),
	)
	if err != nil {
		return err
	}

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("serving metrics", slog.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", slog.Any("error", err))
			}
		}()
	}

	res, err := bench.Run(ctx, log, c, bench.Workload{
		Keys:    cfg.Keys,
		Workers: cfg.Workers,
		Ops:     cfg.Ops,
		Skew:    cfg.Skew,
		Seed:    cfg.Seed,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "ops=%d hits=%d misses=%d hit_ratio=%.4f evictions=%d entries=%d/%d elapsed=%s\n",
		res.Ops, res.Hits, res.Misses, res.HitRatio(), res.Evictions, res.Entries, c.Cap(), res.Elapsed)

	if srv == nil {
		return nil
	}
	if cfg.Linger > 0 {
		select {
		case <-time.After(cfg.Linger):
		case <-ctx.Done():
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
