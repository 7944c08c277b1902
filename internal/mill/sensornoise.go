package mill

import (
	"strings"
	"time"

	"github.com/pochkachaiki/millsim/internal/dataset"
	"github.com/pochkachaiki/millsim/internal/noise"
)

var (
	electricalColumns = []string{"corriente_motor", "potencia_activa", "voltaje_motor", "factor_potencia"}
	processColumns    = []string{"feed_rate", "densidad_pulpa", "presion_ciclones", "agua_adicionada"}
)

// sensorCategory maps a measured column to its noise category.
func sensorCategory(column string) (noise.Category, bool) {
	switch {
	case strings.Contains(column, "vibracion"):
		return noise.Vibration, true
	case strings.Contains(column, "temp"):
		return noise.Temperature, true
	}
	for _, c := range electricalColumns {
		if c == column {
			return noise.Electrical, true
		}
	}
	for _, c := range processColumns {
		if c == column {
			return noise.Process, true
		}
	}
	return "", false
}

// applySensorNoise adds sensor noise to every measured column and clips
// bounded columns back into range.
func (u *unitRun) applySensorNoise(records []dataset.Record) {
	ts := make([]time.Time, len(records))
	for i := range records {
		ts[i] = records[i].Timestamp
	}
	series := make([]float64, len(records))

	for _, col := range dataset.Columns {
		if col.Derived {
			continue
		}
		category, ok := sensorCategory(col.Name)
		if !ok {
			continue
		}
		if _, isFloat := col.Ref(&records[0]); !isFloat {
			continue
		}

		for i := range records {
			p, _ := col.Ref(&records[i])
			series[i] = *p
		}
		u.noise.Apply(series, category, ts)

		bound, bounded := Bounds[col.Name]
		for i := range records {
			p, _ := col.Ref(&records[i])
			*p = series[i]
			if bounded {
				*p = bound.Clip(*p)
			}
		}
	}
}
