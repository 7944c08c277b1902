package dataset

import (
	"math"
	"strconv"
	"time"
)

const TimestampLayout = "2006-01-02 15:04:05"

// Column maps a CSV column to a Record field. Float columns expose a pointer
// so generators can post-process them in place.
type Column struct {
	Name string
	// Derived columns are filled after all units are assembled.
	Derived bool

	format func(*Record) string
	ref    func(*Record) *float64
}

func (c Column) Format(r *Record) string { return c.format(r) }

// Ref returns the field behind a float column, or false for other kinds.
func (c Column) Ref(r *Record) (*float64, bool) {
	if c.ref == nil {
		return nil, false
	}
	return c.ref(r), true
}

func floatColumn(name string, ref func(*Record) *float64) Column {
	return Column{
		Name:   name,
		format: func(r *Record) string { return FormatFloat(*ref(r)) },
		ref:    ref,
	}
}

func derivedColumn(name string, ref func(*Record) *float64) Column {
	c := floatColumn(name, ref)
	c.Derived = true
	return c
}

func textColumn(name string, f func(*Record) string) Column {
	return Column{Name: name, format: f}
}

func intColumn(name string, f func(*Record) int) Column {
	return Column{Name: name, format: func(r *Record) string { return strconv.Itoa(f(r)) }}
}

func boolColumn(name string, f func(*Record) bool) Column {
	return Column{Name: name, format: func(r *Record) string { return FormatBool(f(r)) }}
}

// FormatFloat writes NaN as an empty field.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func FormatTime(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Columns is the mill dataset schema in output order.
var Columns = []Column{
	textColumn("timestamp", func(r *Record) string { return FormatTime(r.Timestamp) }),
	textColumn("molino_id", func(r *Record) string { return r.UnitID }),
	textColumn("turno", func(r *Record) string { return r.Shift }),

	floatColumn("feed_rate", func(r *Record) *float64 { return &r.FeedRate }),
	floatColumn("velocidad_rotacion", func(r *Record) *float64 { return &r.SpeedRPM }),
	floatColumn("velocidad_porcentaje_critica", func(r *Record) *float64 { return &r.SpeedPctCritical }),
	floatColumn("nivel_carga_bolas", func(r *Record) *float64 { return &r.BallCharge }),
	floatColumn("densidad_pulpa", func(r *Record) *float64 { return &r.PulpDensity }),
	floatColumn("agua_adicionada", func(r *Record) *float64 { return &r.WaterAdded }),
	floatColumn("presion_ciclones", func(r *Record) *float64 { return &r.CyclonePressure }),

	floatColumn("vibracion_cojinete_feed_h", func(r *Record) *float64 { return &r.VibFeedH }),
	floatColumn("vibracion_cojinete_feed_v", func(r *Record) *float64 { return &r.VibFeedV }),
	floatColumn("vibracion_cojinete_discharge_h", func(r *Record) *float64 { return &r.VibDischargeH }),
	floatColumn("vibracion_cojinete_discharge_v", func(r *Record) *float64 { return &r.VibDischargeV }),
	floatColumn("vibracion_shell_h", func(r *Record) *float64 { return &r.VibShellH }),
	floatColumn("vibracion_shell_v", func(r *Record) *float64 { return &r.VibShellV }),
	floatColumn("vibracion_pinion", func(r *Record) *float64 { return &r.VibPinion }),
	floatColumn("vibracion_gearbox", func(r *Record) *float64 { return &r.VibGearbox }),

	floatColumn("temp_cojinete_feed", func(r *Record) *float64 { return &r.TempBearingFeed }),
	floatColumn("temp_cojinete_discharge", func(r *Record) *float64 { return &r.TempBearingDischarge }),
	floatColumn("temp_aceite_lubricacion", func(r *Record) *float64 { return &r.TempLubeOil }),
	floatColumn("temp_motor_principal", func(r *Record) *float64 { return &r.TempMotor }),
	floatColumn("temp_gearbox", func(r *Record) *float64 { return &r.TempGearbox }),

	floatColumn("corriente_motor", func(r *Record) *float64 { return &r.MotorCurrent }),
	floatColumn("potencia_activa", func(r *Record) *float64 { return &r.ActivePower }),
	floatColumn("voltaje_motor", func(r *Record) *float64 { return &r.MotorVoltage }),
	floatColumn("factor_potencia", func(r *Record) *float64 { return &r.PowerFactor }),

	floatColumn("presion_aceite_principal", func(r *Record) *float64 { return &r.OilPressure }),
	floatColumn("flujo_aceite", func(r *Record) *float64 { return &r.OilFlow }),
	floatColumn("nivel_tanque_aceite", func(r *Record) *float64 { return &r.OilTankLevel }),
	floatColumn("calidad_aceite_ppm", func(r *Record) *float64 { return &r.OilQualityPPM }),

	floatColumn("consumo_energetico_especifico", func(r *Record) *float64 { return &r.SpecificEnergy }),
	floatColumn("throughput_real", func(r *Record) *float64 { return &r.Throughput }),
	floatColumn("eficiencia_molienda", func(r *Record) *float64 { return &r.GrindingEfficiency }),
	floatColumn("granulometria_producto_p80", func(r *Record) *float64 { return &r.ProductP80 }),

	floatColumn("nivel_desgaste_liners", func(r *Record) *float64 { return &r.LinerWear }),
	intColumn("horas_operacion_acumuladas", func(r *Record) int { return r.OperatingHours }),
	intColumn("ciclos_arranque_parada", func(r *Record) int { return r.StartStopCycles }),

	floatColumn("carga_circulante", func(r *Record) *float64 { return &r.CirculatingLoad }),
	floatColumn("eficiencia_clasificacion", func(r *Record) *float64 { return &r.ClassificationEfficiency }),

	floatColumn("work_index_bond", func(r *Record) *float64 { return &r.WorkIndex }),
	floatColumn("dureza_mineral", func(r *Record) *float64 { return &r.Hardness }),
	floatColumn("humedad_mineral", func(r *Record) *float64 { return &r.OreMoisture }),
	floatColumn("granulometria_feed_p80", func(r *Record) *float64 { return &r.FeedP80 }),
	floatColumn("densidad_mineral", func(r *Record) *float64 { return &r.OreDensity }),
	floatColumn("contenido_arcillas", func(r *Record) *float64 { return &r.ClayContent }),
	floatColumn("abrasividad_ai", func(r *Record) *float64 { return &r.Abrasiveness }),
	floatColumn("temperatura_ambiente", func(r *Record) *float64 { return &r.AmbientTemp }),
	floatColumn("humedad_relativa", func(r *Record) *float64 { return &r.RelativeHumidity }),

	boolColumn("falla_en_7d", func(r *Record) bool { return r.Failure7d }),
	boolColumn("falla_en_14d", func(r *Record) bool { return r.Failure14d }),
	boolColumn("falla_en_30d", func(r *Record) bool { return r.Failure30d }),
	textColumn("tipo_falla", func(r *Record) string { return r.FailureType }),
	intColumn("severidad_falla", func(r *Record) int { return r.Severity }),
	floatColumn("dias_hasta_falla", func(r *Record) *float64 { return &r.DaysToFailure }),

	derivedColumn("vibracion_trend_7d", func(r *Record) *float64 { return &r.VibrationTrend7d }),
	derivedColumn("temperatura_trend_7d", func(r *Record) *float64 { return &r.TemperatureTrend7d }),
	derivedColumn("energia_trend_24h", func(r *Record) *float64 { return &r.EnergyTrend24h }),
	derivedColumn("throughput_trend_24h", func(r *Record) *float64 { return &r.ThroughputTrend24h }),

	derivedColumn("ratio_p80_feed_producto", func(r *Record) *float64 { return &r.P80Ratio }),
	derivedColumn("potencia_especifica_neta", func(r *Record) *float64 { return &r.NetSpecificPower }),
	derivedColumn("eficiencia_energetica_teorica", func(r *Record) *float64 { return &r.TheoreticalEnergyEfficiency }),

	derivedColumn("anomaly_score_vibration", func(r *Record) *float64 { return &r.AnomalyVibration }),
	derivedColumn("anomaly_score_electrical", func(r *Record) *float64 { return &r.AnomalyElectrical }),
}

var columnIndex = func() map[string]int {
	idx := make(map[string]int, len(Columns))
	for i, c := range Columns {
		idx[c.Name] = i
	}
	return idx
}()

// ColumnByName looks up a schema column.
func ColumnByName(name string) (Column, bool) {
	i, ok := columnIndex[name]
	if !ok {
		return Column{}, false
	}
	return Columns[i], true
}

func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}
