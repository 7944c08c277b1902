// Package crusher generates the synthetic cone-crusher dataset: half-hourly
// readings for a few crushers with randomly flagged failure alerts and the
// failures that follow them.
package crusher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/pochkachaiki/millsim/internal/dataset"
	"github.com/pochkachaiki/millsim/internal/random"
)

var ErrEmptyRange = errors.New("crusher date range is empty")

const (
	alertProbability = 0.035
	minLeadSamples   = 12
	maxLeadSamples   = 96
	hoursCycle       = 720
	startStopRate    = 0.005
)

var (
	failureTypes      = []string{"Mecánica", "Lubricación", "Eléctrica"}
	failureModes      = []string{"Desgaste", "Sobrecalentamiento", "Vibración"}
	failureComponents = []string{"Forros", "Bocina", "Cojinete", "Piñón", "Tanque de aceite"}
	failureSeverities = []int{1, 2, 3}

	affectedSystems = map[string]string{
		"Mecánica":    "Sistema mecánico",
		"Lubricación": "Sistema de lubricación",
		"Eléctrica":   "Sistema eléctrico",
	}
)

type Options struct {
	Start    time.Time
	End      time.Time // exclusive
	Interval time.Duration
	Crushers int
	Seed     uint64
}

// Record is one crusher reading. Empty strings and zero severity mean the
// field is not set for the row.
type Record struct {
	Timestamp time.Time
	CrusherID int
	Shift     string

	FeedRate        float64
	MotorCurrent    float64
	MotorPower      float64
	OilTemp         float64
	MotorTemp       float64
	MainShaftTemp   float64
	BushingTemp     float64
	VibBowl         float64
	VibMainShaft    float64
	VibMantle       float64
	VibPinion       float64
	MotorVoltage    float64
	PowerFactor     float64
	Abrasiveness    float64
	OreHardness     int
	OperatingHours  float64
	StartStopCycles int
	Alert7d         bool

	FailureType        string
	FailureMode        string
	FailureComponent   string
	Severity           int
	FailureOccurred    bool
	ConfirmedComponent string
	AffectedSystem     string
}

var Header = []string{
	"timestamp", "chancadora_id", "turno",
	"feed_rate_tph", "corriente_motor", "potencia_motor_kw",
	"temp_aceite", "temp_motor", "temp_eje_principal", "temp_bocina_conica",
	"vibracion_bowl", "vibracion_eje_principal", "vibracion_manto", "vibracion_pinion",
	"voltaje_motor", "factor_potencia", "abrasividad_ai", "dureza_mineral",
	"horas_operacion_acumuladas", "ciclos_arranque_parada", "falla_en_7d",
	"tipo_falla", "modo_falla", "componente_falla", "severidad_falla",
	"falla_ocurrida", "componente_falla_confirmado", "sistema_afectado",
}

type Dataset struct {
	Records []Record
}

func (d *Dataset) Header() []string { return Header }

func (d *Dataset) Len() int { return len(d.Records) }

// RowsByCrusher counts rows per crusher id.
func (d *Dataset) RowsByCrusher() map[int]int {
	out := make(map[int]int)
	for i := range d.Records {
		out[d.Records[i].CrusherID]++
	}
	return out
}

func (d *Dataset) Row(i int) []string {
	r := &d.Records[i]
	severity := ""
	if r.Severity > 0 {
		severity = strconv.Itoa(r.Severity)
	}
	occurred := "0"
	if r.FailureOccurred {
		occurred = "1"
	}
	alert := "0"
	if r.Alert7d {
		alert = "1"
	}
	return []string{
		dataset.FormatTime(r.Timestamp), strconv.Itoa(r.CrusherID), r.Shift,
		dataset.FormatFloat(r.FeedRate), dataset.FormatFloat(r.MotorCurrent), dataset.FormatFloat(r.MotorPower),
		dataset.FormatFloat(r.OilTemp), dataset.FormatFloat(r.MotorTemp), dataset.FormatFloat(r.MainShaftTemp), dataset.FormatFloat(r.BushingTemp),
		dataset.FormatFloat(r.VibBowl), dataset.FormatFloat(r.VibMainShaft), dataset.FormatFloat(r.VibMantle), dataset.FormatFloat(r.VibPinion),
		dataset.FormatFloat(r.MotorVoltage), dataset.FormatFloat(r.PowerFactor), dataset.FormatFloat(r.Abrasiveness), strconv.Itoa(r.OreHardness),
		dataset.FormatFloat(r.OperatingHours), strconv.Itoa(r.StartStopCycles), alert,
		r.FailureType, r.FailureMode, r.FailureComponent, severity,
		occurred, r.ConfirmedComponent, r.AffectedSystem,
	}
}

// Timestamps returns every Interval from start up to but excluding end.
func Timestamps(start, end time.Time, interval time.Duration) ([]time.Time, error) {
	if interval <= 0 || !start.Before(end) {
		return nil, ErrEmptyRange
	}
	n := int(end.Sub(start) / interval)
	if end.Sub(start)%interval != 0 {
		n++
	}
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * interval)
	}
	return ts, nil
}

func shift(hour int) string {
	if hour >= 6 && hour < 18 {
		return "Día"
	}
	return "Noche"
}

func clippedNormal(src *random.Source, mu, sigma, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, src.Normal(mu, sigma)))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Generate builds the crusher dataset. Each crusher uses its own random
// stream derived from the seed.
func Generate(ctx context.Context, opts Options) (*Dataset, error) {
	timestamps, err := Timestamps(opts.Start, opts.End, opts.Interval)
	if err != nil {
		return nil, err
	}
	if opts.Crushers <= 0 {
		return nil, fmt.Errorf("crusher count must be positive, got %d", opts.Crushers)
	}
	samplesPerHour := float64(time.Hour) / float64(opts.Interval)

	out := &Dataset{Records: make([]Record, 0, len(timestamps)*opts.Crushers)}
	for id := 1; id <= opts.Crushers; id++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := random.New(opts.Seed, uint64(id))
		records := generateCrusher(src, id, timestamps, samplesPerHour)
		alerts := applyFailures(src, records)
		slog.InfoContext(ctx, "crusher generated", "crusher_id", id, "rows", len(records), "alerts", alerts)
		out.Records = append(out.Records, records...)
	}
	return out, nil
}

func generateCrusher(src *random.Source, id int, timestamps []time.Time, samplesPerHour float64) []Record {
	records := make([]Record, len(timestamps))
	var cycles int
	for i, ts := range timestamps {
		cycles += src.Poisson(startStopRate)
		records[i] = Record{
			Timestamp:       ts,
			CrusherID:       id,
			Shift:           shift(ts.Hour()),
			FeedRate:        clippedNormal(src, 700, 50, 400, 1000),
			MotorCurrent:    clippedNormal(src, 220, 10, 180, 260),
			MotorPower:      clippedNormal(src, 280, 20, 180, 350),
			OilTemp:         clippedNormal(src, 55, 5, 40, 70),
			MotorTemp:       clippedNormal(src, 60, 7, 40, 80),
			MainShaftTemp:   clippedNormal(src, 60, 6, 45, 75),
			BushingTemp:     clippedNormal(src, 58, 6, 40, 75),
			VibBowl:         clippedNormal(src, 1.8, 0.4, 0.5, 4.5),
			VibMainShaft:    clippedNormal(src, 2.0, 0.5, 0.5, 5.0),
			VibMantle:       clippedNormal(src, 2.2, 0.6, 0.5, 5.5),
			VibPinion:       clippedNormal(src, 1.7, 0.3, 0.5, 4.0),
			MotorVoltage:    clippedNormal(src, 420, 10, 380, 460),
			PowerFactor:     round(src.Uniform(0.85, 1.0), 3),
			Abrasiveness:    round(src.Uniform(0.1, 0.6), 2),
			OreHardness:     src.IntRange(1, 6),
			OperatingHours:  math.Mod(float64(i)/samplesPerHour, hoursCycle),
			StartStopCycles: cycles,
			Alert7d:         src.Float64() < alertProbability,
		}
	}
	return records
}

// applyFailures fills the failure details of every alert row and marks where
// the failure actually happens, 12 to 95 samples later. It returns the number
// of alerts.
func applyFailures(src *random.Source, records []Record) int {
	n := len(records)
	var alerts int
	for i := range records {
		r := &records[i]
		if !r.Alert7d {
			continue
		}
		alerts++
		r.FailureType = failureTypes[src.IntRange(0, len(failureTypes))]
		r.FailureMode = failureModes[src.IntRange(0, len(failureModes))]
		r.FailureComponent = failureComponents[src.IntRange(0, len(failureComponents))]
		r.Severity = failureSeverities[src.IntRange(0, len(failureSeverities))]

		at := min(i+src.IntRange(minLeadSamples, maxLeadSamples), n-1)
		occurred := &records[at]
		occurred.FailureOccurred = true
		occurred.ConfirmedComponent = r.FailureComponent
		occurred.AffectedSystem = affectedSystems[r.FailureType]
	}
	return alerts
}
