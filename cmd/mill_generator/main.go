package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	config "github.com/pochkachaiki/millsim/internal/config/mill_generator"
	"github.com/pochkachaiki/millsim/internal/dataset"
	"github.com/pochkachaiki/millsim/internal/metrics"
	"github.com/pochkachaiki/millsim/internal/mill"
	"github.com/pochkachaiki/millsim/internal/models/failure"
	"github.com/pochkachaiki/millsim/internal/queue"
	"github.com/pochkachaiki/millsim/internal/sender"
	"github.com/prometheus/client_golang/prometheus"
)

func setupLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func main() {
	logger := setupLogger()
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	slog.Info("starting mill generator", "start_date", cfg.StartDate, "duration_years", cfg.DurationYears,
		"units", cfg.Units, "seed", cfg.Seed, "output_dir", cfg.OutputDir, "metrics_addr", cfg.MetricsAddr)

	m := metrics.NewGenerator(prometheus.DefaultRegisterer)
	metrics.Serve(cfg.MetricsAddr, prometheus.DefaultGatherer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, cfg, m)
	stop()
	if err != nil {
		slog.Error("mill generator failed", "err", err)
		os.Exit(1)
	}

	slog.Info("mill generator stopped")
}

func run(ctx context.Context, cfg *config.Config, m *metrics.Generator) error {
	began := time.Now()

	g, err := mill.New(mill.Options{
		Start:         cfg.Start(),
		DurationYears: cfg.DurationYears,
		Seed:          cfg.Seed,
		Units:         cfg.Units,
		Workers:       cfg.Workers,
	}, m)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}
	if cfg.Seed == 0 {
		slog.Info("no seed configured, drew a random one", "seed", g.Seed())
	}

	res, err := g.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generate dataset: %w", err)
	}

	files, err := writeOutputs(cfg, res.Frame, m)
	if err != nil {
		return err
	}

	summary, err := dataset.Summarize(res.Frame)
	if err != nil {
		return fmt.Errorf("summarize dataset: %w", err)
	}
	summary.Log(slog.Default())
	m.ObserveDuration(time.Since(began).Seconds())

	runID := uuid.NewString()
	if err := publish(ctx, cfg, m, runID, res, files); err != nil {
		// The CSV files are already written; delivery problems do not fail the run.
		slog.Error("secondary outputs failed", "run_id", runID, "err", err)
	}
	slog.Info("dataset generated", "run_id", runID, "rows", res.Frame.Len(), "failures", len(res.Failures),
		"elapsed", time.Since(began).String())
	return nil
}

func writeOutputs(cfg *config.Config, frame *dataset.Frame, m *metrics.Generator) ([]string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	cm, err := dataset.ConditionMonitoringView(frame)
	if err != nil {
		return nil, fmt.Errorf("build condition monitoring view: %w", err)
	}
	po, err := dataset.ProcessOptimizationView(frame)
	if err != nil {
		return nil, fmt.Errorf("build process optimization view: %w", err)
	}

	outputs := []struct {
		name  string
		table dataset.Table
	}{
		{cfg.DatasetFile, frame},
		{cfg.ConditionMonitoringFile, cm},
		{cfg.ProcessOptimizationFile, po},
	}
	var files []string
	for _, out := range outputs {
		path := cfg.Path(out.name)
		if err := dataset.WriteFile(path, out.table); err != nil {
			return nil, err
		}
		m.FileWritten(out.name)
		slog.Info("file written", "path", path, "rows", out.table.Len(), "columns", len(out.table.Header()))
		files = append(files, path)
	}
	return files, nil
}

func publish(ctx context.Context, cfg *config.Config, m *metrics.Generator, runID string, res *mill.Result, files []string) error {
	var result *multierror.Error

	if cfg.RabbitURI != "" {
		n, err := publishFailures(ctx, cfg, runID, res.Failures)
		m.EventsPublished(n)
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			slog.Info("failure events published", "queue", cfg.QueueName, "events", n)
		}
	}

	if cfg.NotifyURL != "" {
		if err := sender.Send(ctx, cfg.NotifyURL, runSummary(runID, res, files)); err != nil {
			result = multierror.Append(result, fmt.Errorf("send run summary: %w", err))
		} else {
			slog.Info("run summary sent", "url", cfg.NotifyURL)
		}
	}

	return result.ErrorOrNil()
}

func publishFailures(ctx context.Context, cfg *config.Config, runID string, events []failure.Event) (int, error) {
	conn, err := queue.NewRabbitConnection(cfg.RabbitURI)
	if err != nil {
		return 0, fmt.Errorf("rabbitmq connect: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return 0, fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if err := queue.DeclareQueue(ch, cfg.QueueName); err != nil {
		return 0, fmt.Errorf("declare queue: %w", err)
	}
	return queue.PublishFailures(ctx, ch, cfg.QueueName, runID, events)
}

func runSummary(runID string, res *mill.Result, files []string) failure.RunSummary {
	byUnit := make(map[string]int, len(res.Units))
	for _, ev := range res.Failures {
		byUnit[ev.UnitID]++
	}
	return failure.RunSummary{
		RunID:       runID,
		Seed:        res.Seed,
		Start:       res.Start,
		End:         res.End,
		Units:       res.Units,
		Rows:        res.Frame.Len(),
		Columns:     len(res.Frame.Header()),
		Failures:    len(res.Failures),
		FailuresBy:  byUnit,
		Files:       files,
		GeneratedAt: time.Now().UTC(),
	}
}
