package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	config "github.com/pochkachaiki/millsim/internal/config/failure_recorder"
	"github.com/pochkachaiki/millsim/internal/metrics"
	"github.com/pochkachaiki/millsim/internal/models/failure"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AlertCritical = "critical"
	AlertCluster  = "cluster"

	storeTimeout = 5 * time.Second
)

var ErrInvalidEvent = errors.New("invalid failure event")

// Inserter is satisfied by *mongo.Collection.
type Inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// EventStore is satisfied by *mongo.Collection.
type EventStore interface {
	Inserter
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Consumer is the subset of *amqp.Channel used to read the failure queue.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Recorder struct {
	cfg       *config.Config
	eventColl EventStore
	alertColl Inserter
	metrics   *metrics.Recorder
	validate  *validator.Validate

	mu     sync.RWMutex
	recent map[string][]failure.Event
}

func New(cfg *config.Config, eventColl EventStore, alertColl Inserter, m *metrics.Recorder) *Recorder {
	return &Recorder{
		cfg:       cfg,
		eventColl: eventColl,
		alertColl: alertColl,
		metrics:   m,
		validate:  validator.New(),
		recent:    make(map[string][]failure.Event),
	}
}

func cacheKey(runID, unitID string) string {
	return runID + "/" + unitID
}

// updateCache keeps the latest ClusterCount events of the unit in
// failure-time order.
func (r *Recorder) updateCache(ev failure.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cacheKey(ev.RunID, ev.UnitID)
	events := append(r.recent[key], ev)
	sort.Slice(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })
	if len(events) > r.cfg.ClusterCount {
		events = events[len(events)-r.cfg.ClusterCount:]
	}
	r.recent[key] = events
}

func (r *Recorder) seedCache(runID, unitID string, events []failure.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent[cacheKey(runID, unitID)] = events
}

func (r *Recorder) recentEvents(runID, unitID string) []failure.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.recent[cacheKey(runID, unitID)]
	if len(events) < r.cfg.ClusterCount {
		return nil
	}
	return append([]failure.Event(nil), events...)
}

// Run consumes the failure queue until ctx is done or the delivery channel
// closes.
func (r *Recorder) Run(ctx context.Context, ch Consumer, queue string) error {
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := r.processMessage(ctx, msg.Body); err != nil {
				r.metrics.ProcessError()
				slog.Error("process message error", "err", err)
			}
			if err := msg.Ack(false); err != nil {
				slog.Error("ack error", "err", err)
			}
		}
	}
}

func (r *Recorder) processMessage(parentCtx context.Context, body []byte) error {
	var ev failure.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if err := r.validate.Struct(ev); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	ctx, cancel := context.WithTimeout(parentCtx, storeTimeout)
	defer cancel()

	if _, err := r.eventColl.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("insert failure event: %w", err)
	}
	r.metrics.EventConsumed(ev.Type)
	r.updateCache(ev)

	if ev.Severity == failure.SeverityCritical {
		if err := r.raise(ctx, AlertCritical, ev, bson.M{"reason": "critical " + string(ev.Type)}); err != nil {
			return err
		}
	}

	events := r.recentEvents(ev.RunID, ev.UnitID)
	if events == nil {
		var err error
		if events, err = r.loadRecent(ctx, ev.RunID, ev.UnitID); err != nil {
			return err
		}
		if len(events) < r.cfg.ClusterCount {
			return nil
		}
	}

	span := events[len(events)-1].Time.Sub(events[0].Time)
	if span <= r.cfg.ClusterWindow {
		return r.raise(ctx, AlertCluster, ev, bson.M{
			"reason":     fmt.Sprintf("%d failures within %s", len(events), span),
			"count":      len(events),
			"span_hours": span.Hours(),
		})
	}
	return nil
}

// loadRecent reads the latest ClusterCount events of the unit from the store
// when the cache does not hold enough of them.
func (r *Recorder) loadRecent(ctx context.Context, runID, unitID string) ([]failure.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "failure_time", Value: -1}}).SetLimit(int64(r.cfg.ClusterCount))
	cursor, err := r.eventColl.Find(ctx, bson.M{"run_id": runID, "unit_id": unitID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find recent events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []failure.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode recent events: %w", err)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })
	if len(events) >= r.cfg.ClusterCount {
		r.seedCache(runID, unitID, events)
	}
	return events, nil
}

func (r *Recorder) raise(ctx context.Context, kind string, ev failure.Event, extra bson.M) error {
	doc := bson.M{
		"type":         kind,
		"run_id":       ev.RunID,
		"unit_id":      ev.UnitID,
		"failure_time": ev.Time,
		"failure_type": ev.Type,
		"severity":     ev.Severity,
		"raised_at":    time.Now().UTC(),
	}
	for k, v := range extra {
		doc[k] = v
	}
	if _, err := r.alertColl.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s alert: %w", kind, err)
	}
	r.metrics.AlertRaised(kind)
	slog.Info(kind+" alert", "run_id", ev.RunID, "unit_id", ev.UnitID, "failure_type", ev.Type, "reason", doc["reason"])
	return nil
}
