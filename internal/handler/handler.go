package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pochkachaiki/millsim/internal/metrics"
	"github.com/pochkachaiki/millsim/internal/models/failure"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const requestTimeout = 5 * time.Second

// RunStore is satisfied by *mongo.Collection.
type RunStore interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

type Handler struct {
	runs     RunStore
	metrics  *metrics.Recorder
	validate *validator.Validate
}

func New(runs RunStore, m *metrics.Recorder) *Handler {
	return &Handler{
		runs:     runs,
		metrics:  m,
		validate: validator.New(),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /runs", h.HandleRun)
	mux.HandleFunc("GET /runs/{id}", h.HandleGetRun)
}

func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var s failure.RunSummary
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		slog.Error("decode error", "err", err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(s); err != nil {
		slog.Error("validation error", "run_id", s.RunID, "err", err)
		http.Error(w, "invalid run summary", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, err := h.runs.InsertOne(ctx, s); err != nil {
		slog.Error("mongo insert error", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.metrics.RunReceived()
	slog.Info("run stored", "run_id", s.RunID, "rows", s.Rows, "failures", s.Failures)

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var s failure.RunSummary
	err := h.runs.FindOne(ctx, bson.M{"run_id": r.PathValue("id")}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("mongo find error", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s); err != nil {
		slog.Error("encode error", "err", err)
	}
}
