package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/pochkachaiki/millsim/internal/config/failure_recorder"
	"github.com/pochkachaiki/millsim/internal/handler"
	"github.com/pochkachaiki/millsim/internal/metrics"
	"github.com/pochkachaiki/millsim/internal/queue"
	"github.com/pochkachaiki/millsim/internal/recorder"
	"github.com/pochkachaiki/millsim/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

func setupLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func main() {
	logger := setupLogger()
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	slog.Info("starting failure recorder", "http_addr", cfg.HTTPAddr, "mongo_uri", cfg.MongoURI, "rabbit_uri", cfg.RabbitURI,
		"queue", cfg.QueueName, "cluster_count", cfg.ClusterCount, "cluster_window", cfg.ClusterWindow.String(),
		"metrics_addr", cfg.MetricsAddr)

	mongoClient, err := storage.NewMongoClient(cfg.MongoURI)
	if err != nil {
		slog.Error("mongo connect error", "err", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(context.Background())

	rabbitConn, err := queue.NewRabbitConnection(cfg.RabbitURI)
	if err != nil {
		slog.Error("rabbitmq connect error", "err", err)
		os.Exit(1)
	}
	defer rabbitConn.Close()

	rabbitCh, err := rabbitConn.Channel()
	if err != nil {
		slog.Error("rabbitmq channel error", "err", err)
		os.Exit(1)
	}
	defer rabbitCh.Close()

	if err := queue.DeclareQueue(rabbitCh, cfg.QueueName); err != nil {
		slog.Error("declare queue error", "err", err)
		os.Exit(1)
	}

	db := mongoClient.Database(cfg.DBName)
	m := metrics.NewRecorder(prometheus.DefaultRegisterer)
	metrics.Serve(cfg.MetricsAddr, prometheus.DefaultGatherer)

	rec := recorder.New(cfg, db.Collection(cfg.FailureCollection), db.Collection(cfg.AlertCollection), m)

	mux := http.NewServeMux()
	handler.New(db.Collection(cfg.RunCollection), m).Register(mux)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := rec.Run(ctx, rabbitCh, cfg.QueueName); err != nil {
			slog.Error("recorder stopped", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
	}

	slog.Info("failure recorder stopped")
}
