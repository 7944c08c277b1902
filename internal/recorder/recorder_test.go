package recorder

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	config "github.com/pochkachaiki/millsim/internal/config/failure_recorder"
	"github.com/pochkachaiki/millsim/internal/metrics"
	"github.com/pochkachaiki/millsim/internal/models/failure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeEvents struct {
	docs      []failure.Event
	findCalls int
}

func (f *fakeEvents) InsertOne(_ context.Context, doc interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.docs = append(f.docs, doc.(failure.Event))
	return &mongo.InsertOneResult{}, nil
}

func (f *fakeEvents) Find(_ context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.findCalls++
	m := filter.(bson.M)
	var matched []failure.Event
	for _, ev := range f.docs {
		if ev.RunID == m["run_id"] && ev.UnitID == m["unit_id"] {
			matched = append(matched, ev)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Time.After(matched[j].Time) })
	if len(opts) > 0 && opts[0].Limit != nil && int64(len(matched)) > *opts[0].Limit {
		matched = matched[:*opts[0].Limit]
	}
	docs := make([]interface{}, len(matched))
	for i, ev := range matched {
		docs[i] = ev
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

type fakeAlerts struct {
	docs []bson.M
}

func (f *fakeAlerts) InsertOne(_ context.Context, doc interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.docs = append(f.docs, doc.(bson.M))
	return &mongo.InsertOneResult{}, nil
}

func (f *fakeAlerts) kinds() []string {
	var out []string
	for _, d := range f.docs {
		out = append(out, d["type"].(string))
	}
	return out
}

type fixture struct {
	rec    *Recorder
	events *fakeEvents
	alerts *fakeAlerts
	reg    *prometheus.Registry
}

func newFixture() *fixture {
	cfg := &config.Config{ClusterCount: 3, ClusterWindow: 90 * 24 * time.Hour}
	reg := prometheus.NewRegistry()
	f := &fixture{events: &fakeEvents{}, alerts: &fakeAlerts{}, reg: reg}
	f.rec = New(cfg, f.events, f.alerts, metrics.NewRecorder(reg))
	return f
}

var t0 = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

func body(t *testing.T, ev failure.Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func event(unit string, days int, sev failure.Severity) failure.Event {
	return failure.Event{
		RunID:    "run-1",
		UnitID:   unit,
		Time:     t0.Add(time.Duration(days) * 24 * time.Hour),
		Type:     failure.BearingInnerRace,
		Severity: sev,
	}
}

func TestCriticalAlert(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.rec.processMessage(context.Background(), body(t, event("M1", 0, failure.SeverityCritical))))
	require.NoError(t, f.rec.processMessage(context.Background(), body(t, event("M2", 0, failure.SeverityMinor))))

	assert.Len(t, f.events.docs, 2)
	assert.Equal(t, []string{AlertCritical}, f.alerts.kinds())
	assert.Equal(t, "M1", f.alerts.docs[0]["unit_id"])
}

func TestClusterAlertFromCache(t *testing.T) {
	f := newFixture()

	for _, days := range []int{0, 10, 20} {
		require.NoError(t, f.rec.processMessage(context.Background(), body(t, event("M3", days, failure.SeverityMinor))))
	}

	require.Equal(t, []string{AlertCluster}, f.alerts.kinds())
	assert.Equal(t, 3, f.alerts.docs[0]["count"])
	assert.Equal(t, 480.0, f.alerts.docs[0]["span_hours"])
	assert.Equal(t, 2, f.events.findCalls, "store is only queried while the cache is short")

	n, err := testutil.GatherAndCount(f.reg, "millsim_alerts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNoClusterAlertWhenSpread(t *testing.T) {
	f := newFixture()

	for _, days := range []int{0, 60, 120, 180} {
		require.NoError(t, f.rec.processMessage(context.Background(), body(t, event("M3", days, failure.SeverityModerate))))
	}
	assert.Empty(t, f.alerts.docs)
}

func TestClusterIsPerUnitAndRun(t *testing.T) {
	f := newFixture()

	other := event("M1", 5, failure.SeverityMinor)
	other.RunID = "run-0"
	for _, ev := range []failure.Event{event("M1", 0, 1), event("M2", 1, 1), other, event("M1", 2, 1)} {
		require.NoError(t, f.rec.processMessage(context.Background(), body(t, ev)))
	}
	assert.Empty(t, f.alerts.docs)
}

func TestClusterFallsBackToStore(t *testing.T) {
	f := newFixture()
	f.events.docs = []failure.Event{event("M4", 0, 1), event("M4", 30, 1)}

	require.NoError(t, f.rec.processMessage(context.Background(), body(t, event("M4", 45, failure.SeverityMinor))))
	require.Equal(t, []string{AlertCluster}, f.alerts.kinds())
	assert.Equal(t, 1, f.events.findCalls)

	// The store result seeds the cache.
	require.NoError(t, f.rec.processMessage(context.Background(), body(t, event("M4", 50, failure.SeverityMinor))))
	assert.Equal(t, 1, f.events.findCalls)
	assert.Len(t, f.alerts.docs, 2)
}

func TestInvalidEvents(t *testing.T) {
	f := newFixture()

	err := f.rec.processMessage(context.Background(), []byte("{not json"))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	bad := event("M1", 0, 5)
	err = f.rec.processMessage(context.Background(), body(t, bad))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	bad = event("", 0, 1)
	err = f.rec.processMessage(context.Background(), body(t, bad))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	assert.Empty(t, f.events.docs)
}

type ackCounter struct{ acks int }

func (a *ackCounter) Ack(uint64, bool) error { a.acks++; return nil }
func (a *ackCounter) Nack(uint64, bool, bool) error { return nil }
func (a *ackCounter) Reject(uint64, bool) error { return nil }

type fakeConsumer struct {
	deliveries chan amqp.Delivery
}

func (c *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return c.deliveries, nil
}

func TestRunAcksEveryMessage(t *testing.T) {
	f := newFixture()
	acker := &ackCounter{}
	c := &fakeConsumer{deliveries: make(chan amqp.Delivery, 3)}
	c.deliveries <- amqp.Delivery{Acknowledger: acker, Body: body(t, event("M1", 0, 3))}
	c.deliveries <- amqp.Delivery{Acknowledger: acker, Body: []byte("garbage")}
	c.deliveries <- amqp.Delivery{Acknowledger: acker, Body: body(t, event("M1", 1, 1))}
	close(c.deliveries)

	err := f.rec.Run(context.Background(), c, "failures")
	assert.ErrorContains(t, err, "closed")
	assert.Equal(t, 3, acker.acks)
	assert.Len(t, f.events.docs, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture()
	c := &fakeConsumer{deliveries: make(chan amqp.Delivery)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, f.rec.Run(ctx, c, "failures"))
}
