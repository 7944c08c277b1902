package noise

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/pochkachaiki/millsim/internal/random"
)

func hourly(n int) []time.Time {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return ts
}

func constant(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestParamsForFallsBackToProcess(t *testing.T) {
	assert.Equal(t, params[Process], ParamsFor(Category("acoustic")))
	assert.Equal(t, 0.05, ParamsFor(Vibration).Base)
}

func TestApplyKeepsSignalCentered(t *testing.T) {
	const n = 5000
	m := New(random.New(11, 0))
	sig := constant(n, 100)
	m.Apply(sig, Electrical, hourly(n))

	mean, std := stat.MeanStdDev(sig, nil)
	// Seasonal term stays below 0.5% for electrical sensors.
	assert.InDelta(t, 100, mean, 1.0)
	assert.Greater(t, std, 1.0)
	assert.Less(t, std, 5.0)
}

func TestApplyIsDeterministicPerSeed(t *testing.T) {
	ts := hourly(100)
	a := constant(100, 3)
	b := constant(100, 3)
	New(random.New(9, 4)).Apply(a, Vibration, ts)
	New(random.New(9, 4)).Apply(b, Vibration, ts)
	require.Equal(t, a, b)
}

func TestApplyScalesWithCategory(t *testing.T) {
	const n = 5000
	ts := hourly(n)
	vib := constant(n, 1)
	elec := constant(n, 1)
	New(random.New(2, 2)).Apply(vib, Vibration, ts)
	New(random.New(2, 2)).Apply(elec, Electrical, ts)
	assert.Greater(t, stat.StdDev(vib, nil), stat.StdDev(elec, nil))
}
