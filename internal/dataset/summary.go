package dataset

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caio/go-tdigest/v4"
	"gonum.org/v1/gonum/stat"
)

var SummaryVariables = []string{
	"consumo_energetico_especifico", "throughput_real", "vibracion_cojinete_feed_h", "temp_cojinete_feed",
}

type VariableStats struct {
	Name string
	Mean float64
	Std  float64
	P50  float64
	P95  float64
}

type Summary struct {
	Rows    int
	Columns int
	First   time.Time
	Last    time.Time

	RowsByUnit map[string]int
	// WindowRows counts rows inside a 30-day failure window per unit and type.
	WindowRows map[string]map[string]int
	Rows7d     int
	Stats      []VariableStats
}

func Summarize(f *Frame) (Summary, error) {
	s := Summary{
		Rows:       f.Len(),
		Columns:    len(Columns),
		RowsByUnit: make(map[string]int),
		WindowRows: make(map[string]map[string]int),
	}
	for i := range f.Records {
		r := &f.Records[i]
		if s.First.IsZero() || r.Timestamp.Before(s.First) {
			s.First = r.Timestamp
		}
		if r.Timestamp.After(s.Last) {
			s.Last = r.Timestamp
		}
		s.RowsByUnit[r.UnitID]++
		if r.Failure30d {
			byType, ok := s.WindowRows[r.UnitID]
			if !ok {
				byType = make(map[string]int)
				s.WindowRows[r.UnitID] = byType
			}
			byType[r.FailureType]++
		}
		if r.Failure7d {
			s.Rows7d++
		}
	}

	for _, name := range SummaryVariables {
		vs, err := variableStats(f, name)
		if err != nil {
			return Summary{}, err
		}
		s.Stats = append(s.Stats, vs)
	}
	return s, nil
}

func variableStats(f *Frame, name string) (VariableStats, error) {
	c, ok := ColumnByName(name)
	if !ok || c.ref == nil {
		return VariableStats{}, fmt.Errorf("column %q has no numeric values", name)
	}
	td, err := tdigest.New()
	if err != nil {
		return VariableStats{}, fmt.Errorf("new digest: %w", err)
	}
	values := make([]float64, 0, f.Len())
	for i := range f.Records {
		v, _ := c.Ref(&f.Records[i])
		values = append(values, *v)
	}
	values = dropNaN(values)
	for _, v := range values {
		if err := td.Add(v); err != nil {
			return VariableStats{}, fmt.Errorf("digest %s: %w", name, err)
		}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return VariableStats{
		Name: name,
		Mean: mean,
		Std:  std,
		P50:  td.Quantile(0.5),
		P95:  td.Quantile(0.95),
	}, nil
}

// Log writes the summary as structured log lines.
func (s Summary) Log(logger *slog.Logger) {
	logger.Info("dataset summary",
		"rows", s.Rows, "columns", s.Columns,
		"first", FormatTime(s.First), "last", FormatTime(s.Last),
		"rows_in_7d_window", s.Rows7d)
	for unit, n := range s.RowsByUnit {
		logger.Info("unit rows", "unit_id", unit, "rows", n)
	}
	for unit, byType := range s.WindowRows {
		for typ, n := range byType {
			logger.Info("failure window rows", "unit_id", unit, "failure_type", typ, "rows", n)
		}
	}
	for _, v := range s.Stats {
		logger.Info("variable stats", "variable", v.Name, "mean", v.Mean, "std", v.Std, "p50", v.P50, "p95", v.P95)
	}
}
