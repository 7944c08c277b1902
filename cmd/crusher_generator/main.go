package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	config "github.com/pochkachaiki/millsim/internal/config/crusher_generator"
	"github.com/pochkachaiki/millsim/internal/crusher"
	"github.com/pochkachaiki/millsim/internal/dataset"
	"github.com/pochkachaiki/millsim/internal/metrics"
	"github.com/pochkachaiki/millsim/internal/random"
	"github.com/prometheus/client_golang/prometheus"
)

func setupLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func main() {
	logger := setupLogger()
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	seed := cfg.Seed
	if seed == 0 {
		seed = random.Seed()
	}
	slog.Info("starting crusher generator", "start_date", cfg.StartDate, "end_date", cfg.EndDate,
		"interval", cfg.Interval.String(), "crushers", cfg.Crushers, "seed", seed, "metrics_addr", cfg.MetricsAddr)

	m := metrics.NewGenerator(prometheus.DefaultRegisterer)
	metrics.Serve(cfg.MetricsAddr, prometheus.DefaultGatherer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ds, err := crusher.Generate(ctx, crusher.Options{
		Start:    cfg.Start(),
		End:      cfg.End(),
		Interval: cfg.Interval,
		Crushers: cfg.Crushers,
		Seed:     seed,
	})
	if err != nil {
		slog.Error("generate crusher dataset error", "err", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		slog.Error("create output dir error", "err", err)
		os.Exit(1)
	}
	if err := dataset.WriteFile(cfg.Path(), ds); err != nil {
		slog.Error("write crusher dataset error", "err", err)
		os.Exit(1)
	}
	m.FileWritten(cfg.OutputFile)
	for id, rows := range ds.RowsByCrusher() {
		m.UnitGenerated(strconv.Itoa(id), rows)
	}

	slog.Info("crusher generator stopped", "path", cfg.Path(), "rows", ds.Len())
}
