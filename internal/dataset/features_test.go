package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func unitRecords(unit string, n int) []Record {
	recs := make([]Record, n)
	for i := range recs {
		recs[i] = Record{
			Timestamp:      t0.Add(time.Duration(i) * time.Hour),
			UnitID:         unit,
			VibFeedH:       float64(i),
			VibDischargeH:  float64(i),
			MotorCurrent:   100 + float64(i%5),
			FeedP80:        12500,
			ProductP80:     125,
			ActivePower:    1500,
			Throughput:     300,
			WorkIndex:      14.5,
			SpecificEnergy: 13,
		}
	}
	return recs
}

func TestRollingMeanMinPeriods(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := RollingMean(values, 3, 2)
	assert.True(t, math.IsNaN(got[0]))
	assert.InDelta(t, 1.5, got[1], 1e-12)
	assert.InDelta(t, 2, got[2], 1e-12)
	assert.InDelta(t, 3, got[3], 1e-12)
	assert.InDelta(t, 4, got[4], 1e-12)
}

func TestRollingMeanSkipsNaN(t *testing.T) {
	values := []float64{1, math.NaN(), 3, math.NaN(), math.NaN()}
	got := RollingMean(values, 2, 1)
	assert.InDelta(t, 1, got[0], 1e-12)
	assert.InDelta(t, 1, got[1], 1e-12)
	assert.InDelta(t, 3, got[2], 1e-12)
	assert.InDelta(t, 3, got[3], 1e-12)
	assert.True(t, math.IsNaN(got[4]))
}

func TestAbsZScores(t *testing.T) {
	got := AbsZScores([]float64{1, 2, 3, math.NaN()})
	std := math.Sqrt(2.0 / 3.0)
	assert.InDelta(t, 1/std, got[0], 1e-12)
	assert.InDelta(t, 0, got[1], 1e-12)
	assert.InDelta(t, 1/std, got[2], 1e-12)
	assert.True(t, math.IsNaN(got[3]))
}

func TestAbsZScoresConstantInput(t *testing.T) {
	for _, v := range AbsZScores([]float64{4, 4, 4}) {
		assert.True(t, math.IsNaN(v))
	}
}

func TestAssembleSortsByTimestampThenUnit(t *testing.T) {
	f := Assemble(unitRecords("M2", 30), unitRecords("M1", 30))
	require.Equal(t, 60, f.Len())
	for i := 1; i < f.Len(); i++ {
		prev, cur := f.Records[i-1], f.Records[i]
		require.False(t, cur.Timestamp.Before(prev.Timestamp))
		if cur.Timestamp.Equal(prev.Timestamp) {
			require.Less(t, prev.UnitID, cur.UnitID)
		}
	}
	assert.Equal(t, "M1", f.Records[0].UnitID)
}

func TestAssembleDerivedFeaturesPerUnit(t *testing.T) {
	f := Assemble(unitRecords("M1", 30), unitRecords("M2", 30))
	_, groups := f.UnitIndices()
	require.Len(t, groups["M1"], 30)

	m1 := groups["M1"]
	// 7-day trend needs 24 samples.
	assert.True(t, math.IsNaN(f.Records[m1[22]].VibrationTrend7d))
	assert.InDelta(t, 11.5, f.Records[m1[23]].VibrationTrend7d, 1e-9)
	// 24-hour trend needs 12 samples.
	assert.True(t, math.IsNaN(f.Records[m1[10]].ThroughputTrend24h))
	assert.InDelta(t, 300, f.Records[m1[11]].ThroughputTrend24h, 1e-9)

	r := f.Records[m1[0]]
	assert.InDelta(t, 100, r.P80Ratio, 1e-12)
	assert.InDelta(t, 5, r.NetSpecificPower, 1e-12)
	assert.Greater(t, r.TheoreticalEnergyEfficiency, 0.0)
	assert.Greater(t, r.AnomalyVibration, 1.0)
	assert.False(t, math.IsNaN(r.AnomalyElectrical))
}
