package dataset

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectUnknownColumn(t *testing.T) {
	f := Assemble(unitRecords("M1", 2))
	_, err := f.Select([]string{"timestamp", "no_such_column"})
	assert.Error(t, err)
}

func TestConditionMonitoringView(t *testing.T) {
	f := Assemble(unitRecords("M1", 3))
	v, err := ConditionMonitoringView(f)
	require.NoError(t, err)
	assert.Equal(t, ConditionMonitoringColumns, v.Header())
	assert.Equal(t, 3, v.Len())
	row := v.Row(0)
	assert.Equal(t, "2023-01-01 00:00:00", row[0])
	assert.Equal(t, "M1", row[1])
}

func TestProcessOptimizationViewBuckets(t *testing.T) {
	f := Assemble(unitRecords("M1", 24), unitRecords("M2", 20))
	v, err := ProcessOptimizationView(f)
	require.NoError(t, err)

	// 24 hours -> 3 buckets for M1, 20 hours -> 3 buckets for M2.
	require.Equal(t, 6, v.Len())
	assert.Equal(t, "M1", v.Rows[0].UnitID)
	assert.Equal(t, "M2", v.Rows[3].UnitID)
	assert.Equal(t, t0, v.Rows[0].Timestamp)
	assert.Equal(t, t0.Add(shiftBucket), v.Rows[1].Timestamp)

	h := v.Header()
	assert.Equal(t, "molino_id", h[0])
	assert.Equal(t, "timestamp", h[len(h)-2])
	assert.Equal(t, "turno", h[len(h)-1])
	assert.Len(t, v.Row(0), len(h))

	// feed-bearing vibration is not in the view; throughput is constant.
	idx := -1
	for i, name := range ProcessOptimizationColumns {
		if name == "throughput_real" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	assert.InDelta(t, 300, v.Rows[0].Means[idx], 1e-12)
}

func TestProcessOptimizationViewSkipsNaN(t *testing.T) {
	f := Assemble(unitRecords("M1", 8))
	v, err := ProcessOptimizationView(f)
	require.NoError(t, err)
	require.Equal(t, 1, v.Len())
	for i, name := range ProcessOptimizationColumns {
		if name == "energia_trend_24h" {
			// Only hours 11+ have a trend value, none fall into the first bucket.
			assert.True(t, math.IsNaN(v.Rows[0].Means[i]))
		}
	}
}

func TestWriteFrame(t *testing.T) {
	f := Assemble(unitRecords("M1", 2))
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ColumnNames(), rows[0])
	for _, row := range rows[1:] {
		assert.Len(t, row, len(Columns))
	}
}

func TestWriteFileFormatsValues(t *testing.T) {
	recs := unitRecords("M3", 1)
	recs[0].Failure7d = true
	recs[0].FailureType = "liner_wear"
	recs[0].Severity = 2
	f := Assemble(recs)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteFile(path, f))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)

	get := func(name string) string {
		for i, h := range rows[0] {
			if h == name {
				return rows[1][i]
			}
		}
		t.Fatalf("column %s missing", name)
		return ""
	}
	assert.Equal(t, "True", get("falla_en_7d"))
	assert.Equal(t, "False", get("falla_en_30d"))
	assert.Equal(t, "liner_wear", get("tipo_falla"))
	assert.Equal(t, "2", get("severidad_falla"))
	assert.Equal(t, "", get("vibracion_trend_7d"))
	assert.Equal(t, "12500", get("granulometria_feed_p80"))
}

func TestSummarize(t *testing.T) {
	recs := unitRecords("M1", 10)
	for i := 5; i < 10; i++ {
		recs[i].Failure30d = true
		recs[i].FailureType = "bearing_feed"
	}
	recs[9].Failure7d = true
	f := Assemble(recs, unitRecords("M2", 10))

	s, err := Summarize(f)
	require.NoError(t, err)
	assert.Equal(t, 20, s.Rows)
	assert.Equal(t, len(Columns), s.Columns)
	assert.Equal(t, map[string]int{"M1": 10, "M2": 10}, s.RowsByUnit)
	assert.Equal(t, 5, s.WindowRows["M1"]["bearing_feed"])
	assert.Equal(t, 1, s.Rows7d)
	require.Len(t, s.Stats, len(SummaryVariables))
	for _, v := range s.Stats {
		if v.Name == "throughput_real" {
			assert.InDelta(t, 300, v.Mean, 1e-9)
			assert.InDelta(t, 0, v.Std, 1e-9)
			assert.InDelta(t, 300, v.P95, 1e-9)
		}
	}
	assert.Equal(t, t0, s.First)
}
