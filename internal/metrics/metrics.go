package metrics

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pochkachaiki/millsim/internal/models/failure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "millsim"

// Generator counts what the dataset generators produce. It satisfies
// mill.Observer.
type Generator struct {
	rows      *prometheus.CounterVec
	failures  *prometheus.CounterVec
	files     *prometheus.CounterVec
	published prometheus.Counter
	duration  prometheus.Gauge
}

func NewGenerator(reg prometheus.Registerer) *Generator {
	f := promauto.With(reg)
	return &Generator{
		rows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_generated_total",
			Help:      "Rows generated per unit.",
		}, []string{"unit_id"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_scheduled_total",
			Help:      "Failures scheduled per unit and failure type.",
		}, []string{"unit_id", "failure_type"}),
		files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_written_total",
			Help:      "CSV files written.",
		}, []string{"file"}),
		published: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failure_events_published_total",
			Help:      "Failure events published to the queue.",
		}),
		duration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time of the last generation run.",
		}),
	}
}

func (g *Generator) UnitGenerated(unitID string, rows int) {
	g.rows.WithLabelValues(unitID).Add(float64(rows))
}

func (g *Generator) FailureScheduled(unitID string, t failure.Type) {
	g.failures.WithLabelValues(unitID, string(t)).Inc()
}

func (g *Generator) FileWritten(name string) {
	g.files.WithLabelValues(name).Inc()
}

func (g *Generator) EventsPublished(n int) {
	g.published.Add(float64(n))
}

func (g *Generator) ObserveDuration(seconds float64) {
	g.duration.Set(seconds)
}

// Recorder counts what the failure recorder consumes and raises.
type Recorder struct {
	consumed *prometheus.CounterVec
	alerts   *prometheus.CounterVec
	runs     prometheus.Counter
	errors   prometheus.Counter
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		consumed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failure_events_consumed_total",
			Help:      "Failure events consumed from the queue.",
		}, []string{"failure_type"}),
		alerts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts raised by kind.",
		}, []string{"kind"}),
		runs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_received_total",
			Help:      "Run summaries stored.",
		}),
		errors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_errors_total",
			Help:      "Queue messages that failed processing.",
		}),
	}
}

func (r *Recorder) EventConsumed(t failure.Type) { r.consumed.WithLabelValues(string(t)).Inc() }
func (r *Recorder) AlertRaised(kind string) { r.alerts.WithLabelValues(kind).Inc() }
func (r *Recorder) RunReceived() { r.runs.Inc() }
func (r *Recorder) ProcessError() { r.errors.Inc() }

// Serve exposes g on addr under /metrics in the background. The returned
// server is nil when addr is empty.
func Serve(addr string, g prometheus.Gatherer) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "err", err)
		}
	}()
	return srv
}
