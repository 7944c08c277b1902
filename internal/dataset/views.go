package dataset

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"
)

const shiftBucket = 8 * time.Hour

var ConditionMonitoringColumns = []string{
	"timestamp", "molino_id", "turno",
	"vibracion_cojinete_feed_h", "vibracion_cojinete_feed_v",
	"vibracion_cojinete_discharge_h", "vibracion_cojinete_discharge_v",
	"vibracion_shell_h", "vibracion_shell_v", "vibracion_pinion", "vibracion_gearbox",
	"temp_cojinete_feed", "temp_cojinete_discharge", "temp_aceite_lubricacion",
	"temp_motor_principal", "temp_gearbox",
	"corriente_motor", "potencia_activa", "voltaje_motor",
	"presion_aceite_principal", "flujo_aceite", "calidad_aceite_ppm",
	"horas_operacion_acumuladas", "velocidad_rotacion",
	"falla_en_7d", "falla_en_14d", "falla_en_30d", "tipo_falla", "severidad_falla", "dias_hasta_falla",
	"vibracion_trend_7d", "temperatura_trend_7d", "anomaly_score_vibration", "anomaly_score_electrical",
}

// ProcessOptimizationColumns are averaged per unit and 8-hour shift bucket.
var ProcessOptimizationColumns = []string{
	"feed_rate", "velocidad_rotacion", "velocidad_porcentaje_critica",
	"nivel_carga_bolas", "densidad_pulpa", "agua_adicionada", "presion_ciclones",
	"work_index_bond", "dureza_mineral", "humedad_mineral", "granulometria_feed_p80",
	"densidad_mineral", "contenido_arcillas", "abrasividad_ai",
	"consumo_energetico_especifico", "throughput_real", "eficiencia_molienda",
	"granulometria_producto_p80", "potencia_activa",
	"nivel_desgaste_liners", "carga_circulante", "eficiencia_clasificacion",
	"energia_trend_24h", "throughput_trend_24h", "ratio_p80_feed_producto",
	"potencia_especifica_neta", "eficiencia_energetica_teorica",
}

// ColumnView is a column slice of the frame.
type ColumnView struct {
	frame   *Frame
	columns []Column
}

func (f *Frame) Select(names []string) (*ColumnView, error) {
	cols := make([]Column, len(names))
	for i, name := range names {
		c, ok := ColumnByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		cols[i] = c
	}
	return &ColumnView{frame: f, columns: cols}, nil
}

func (v *ColumnView) Header() []string {
	names := make([]string, len(v.columns))
	for i, c := range v.columns {
		names[i] = c.Name
	}
	return names
}

func (v *ColumnView) Len() int { return v.frame.Len() }

func (v *ColumnView) Row(i int) []string {
	r := &v.frame.Records[i]
	row := make([]string, len(v.columns))
	for j, c := range v.columns {
		row[j] = c.Format(r)
	}
	return row
}

func ConditionMonitoringView(f *Frame) (*ColumnView, error) {
	return f.Select(ConditionMonitoringColumns)
}

type ShiftAggregate struct {
	UnitID    string
	Bucket    time.Time
	Means     []float64
	Timestamp time.Time
	Shift     string
}

// AggregateView holds per-unit, per-shift-bucket means.
type AggregateView struct {
	columns []string
	Rows    []ShiftAggregate
}

func (v *AggregateView) Header() []string {
	h := make([]string, 0, len(v.columns)+3)
	h = append(h, "molino_id")
	h = append(h, v.columns...)
	return append(h, "timestamp", "turno")
}

func (v *AggregateView) Len() int { return len(v.Rows) }

func (v *AggregateView) Row(i int) []string {
	a := v.Rows[i]
	row := make([]string, 0, len(a.Means)+3)
	row = append(row, a.UnitID)
	for _, m := range a.Means {
		row = append(row, FormatFloat(m))
	}
	return append(row, FormatTime(a.Timestamp), a.Shift)
}

// ProcessOptimizationView averages the process columns per unit over 8-hour
// buckets aligned to midnight UTC. NaN values are skipped; the first
// timestamp and shift label of each bucket are kept.
func ProcessOptimizationView(f *Frame) (*AggregateView, error) {
	cols := make([]Column, len(ProcessOptimizationColumns))
	for i, name := range ProcessOptimizationColumns {
		c, ok := ColumnByName(name)
		if !ok || c.ref == nil {
			return nil, fmt.Errorf("column %q cannot be averaged", name)
		}
		cols[i] = c
	}

	type key struct {
		unit   string
		bucket time.Time
	}
	type acc struct {
		first  *Record
		sums   []float64
		counts []int
	}
	groups := make(map[key]*acc)
	var keys []key

	for i := range f.Records {
		r := &f.Records[i]
		k := key{unit: r.UnitID, bucket: r.Timestamp.UTC().Truncate(shiftBucket)}
		a, ok := groups[k]
		if !ok {
			a = &acc{first: r, sums: make([]float64, len(cols)), counts: make([]int, len(cols))}
			groups[k] = a
			keys = append(keys, k)
		}
		for j, c := range cols {
			v, _ := c.Ref(r)
			if !math.IsNaN(*v) {
				a.sums[j] += *v
				a.counts[j]++
			}
		}
	}

	slices.SortFunc(keys, func(a, b key) int {
		if c := cmp.Compare(a.unit, b.unit); c != 0 {
			return c
		}
		return a.bucket.Compare(b.bucket)
	})

	view := &AggregateView{columns: ProcessOptimizationColumns, Rows: make([]ShiftAggregate, 0, len(keys))}
	for _, k := range keys {
		a := groups[k]
		means := make([]float64, len(cols))
		for j := range means {
			if a.counts[j] == 0 {
				means[j] = math.NaN()
				continue
			}
			means[j] = a.sums[j] / float64(a.counts[j])
		}
		view.Rows = append(view.Rows, ShiftAggregate{
			UnitID:    k.unit,
			Bucket:    k.bucket,
			Means:     means,
			Timestamp: a.first.Timestamp,
			Shift:     a.first.Shift,
		})
	}
	return view, nil
}
