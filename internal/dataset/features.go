package dataset

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pochkachaiki/millsim/internal/physics"
)

const (
	weekWindow     = 168
	weekMinPeriods = 24
	dayWindow      = 24
	dayMinPeriods  = 12
)

// Assemble concatenates per-unit records, orders them by timestamp and unit
// and fills the derived feature columns.
func Assemble(units ...[]Record) *Frame {
	var n int
	for _, u := range units {
		n += len(u)
	}
	records := make([]Record, 0, n)
	for _, u := range units {
		records = append(records, u...)
	}
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.UnitID, b.UnitID)
	})

	f := &Frame{Records: records}
	f.addDerivedFeatures()
	return f
}

// UnitIndices groups row indices by unit, preserving row order. Units are
// returned in first-seen order.
func (f *Frame) UnitIndices() ([]string, map[string][]int) {
	var order []string
	groups := make(map[string][]int)
	for i := range f.Records {
		id := f.Records[i].UnitID
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}
	return order, groups
}

func (f *Frame) addDerivedFeatures() {
	order, groups := f.UnitIndices()

	for _, id := range order {
		idx := groups[id]
		f.rolling(idx, func(r *Record) float64 { return r.VibFeedH }, weekWindow, weekMinPeriods,
			func(r *Record, v float64) { r.VibrationTrend7d = v })
		f.rolling(idx, func(r *Record) float64 { return r.TempBearingFeed }, weekWindow, weekMinPeriods,
			func(r *Record, v float64) { r.TemperatureTrend7d = v })
		f.rolling(idx, func(r *Record) float64 { return r.SpecificEnergy }, dayWindow, dayMinPeriods,
			func(r *Record, v float64) { r.EnergyTrend24h = v })
		f.rolling(idx, func(r *Record) float64 { return r.Throughput }, dayWindow, dayMinPeriods,
			func(r *Record, v float64) { r.ThroughputTrend24h = v })
	}

	for i := range f.Records {
		r := &f.Records[i]
		r.P80Ratio = r.FeedP80 / r.ProductP80
		r.NetSpecificPower = r.ActivePower / r.Throughput
		theoretical := physics.BondEnergy(r.WorkIndex, r.FeedP80, r.ProductP80)
		r.TheoreticalEnergyEfficiency = theoretical / r.SpecificEnergy
	}

	for _, id := range order {
		idx := groups[id]
		vib := make([]float64, len(idx))
		current := make([]float64, len(idx))
		for j, i := range idx {
			r := &f.Records[i]
			vib[j] = (r.VibFeedH + r.VibDischargeH) / 2
			current[j] = r.MotorCurrent
		}
		currentMean := NaNMean(current)
		for j := range current {
			current[j] /= currentMean
		}

		vibScores := AbsZScores(vib)
		elecScores := AbsZScores(current)
		for j, i := range idx {
			f.Records[i].AnomalyVibration = vibScores[j]
			f.Records[i].AnomalyElectrical = elecScores[j]
		}
	}
}

func (f *Frame) rolling(idx []int, get func(*Record) float64, window, minPeriods int, set func(*Record, float64)) {
	values := make([]float64, len(idx))
	for j, i := range idx {
		values[j] = get(&f.Records[i])
	}
	means := RollingMean(values, window, minPeriods)
	for j, i := range idx {
		set(&f.Records[i], means[j])
	}
}

// RollingMean is a trailing-window mean that ignores NaN values and yields
// NaN until at least minPeriods valid values are in the window.
func RollingMean(values []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	var count int
	for i, v := range values {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
		if i >= window {
			if old := values[i-window]; !math.IsNaN(old) {
				sum -= old
				count--
			}
		}
		if count >= minPeriods && count > 0 {
			out[i] = sum / float64(count)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// AbsZScores returns |x - mean| / σ with the population σ, omitting NaN
// values from the moments. Zero variance yields NaN scores.
func AbsZScores(values []float64) []float64 {
	valid := dropNaN(values)
	mean, variance := stat.PopMeanVariance(valid, nil)
	std := math.Sqrt(variance)

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs((v - mean) / std)
	}
	return out
}

func NaNMean(values []float64) float64 {
	valid := dropNaN(values)
	if len(valid) == 0 {
		return math.NaN()
	}
	return stat.Mean(valid, nil)
}

func dropNaN(values []float64) []float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	return valid
}
