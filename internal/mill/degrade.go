package mill

import (
	"sort"
	"time"

	"github.com/pochkachaiki/millsim/internal/dataset"
	"github.com/pochkachaiki/millsim/internal/degradation"
	"github.com/pochkachaiki/millsim/internal/models/failure"
)

// lookback is how far before a failure its precursors can appear.
const lookback = 720 * time.Hour

// window returns the index range [lo, hi) of timestamps strictly inside
// (at-lookback, at).
func window(ts []time.Time, at time.Time) (int, int) {
	from := at.Add(-lookback)
	lo := sort.Search(len(ts), func(i int) bool { return ts[i].After(from) })
	hi := sort.Search(len(ts), func(i int) bool { return !ts[i].Before(at) })
	return lo, hi
}

// degradeVibration returns the horizontal and vertical channels of a bearing
// vibration signal. Bearing failures drive both channels along the bearing
// growth curve inside their precursor window.
func (u *unitRun) degradeVibration(base []float64) ([]float64, []float64, error) {
	h := make([]float64, len(base))
	v := make([]float64, len(base))
	copy(h, base)
	for i := range v {
		v[i] = base[i] * u.src.Normal(0.95, 0.05)
	}

	ts := u.base.Timestamps
	for _, ev := range u.events {
		if !ev.Type.IsBearing() {
			continue
		}
		pattern, err := degradation.PatternFor(ev.Type)
		if err != nil {
			return nil, nil, err
		}
		precursor, err := u.degr.PrecursorHours(ev.Type)
		if err != nil {
			return nil, nil, err
		}
		lo, hi := window(ts, ev.Time)
		for i := lo; i < hi; i++ {
			htf := ev.Time.Sub(ts[i]).Hours()
			val := u.degr.Degrade(base[i], htf, precursor, pattern.Growth)
			h[i] = val
			v[i] = val * u.src.Normal(0.98, 0.03)
		}
	}
	return h, v, nil
}

// degradeTemperature ramps a bearing temperature by up to 2 °C ahead of any
// failure.
func (u *unitRun) degradeTemperature(temp []float64) {
	ts := u.base.Timestamps
	for _, ev := range u.events {
		lo, hi := window(ts, ev.Time)
		for i := lo; i < hi; i++ {
			htf := ev.Time.Sub(ts[i]).Hours()
			temp[i] += 2.0 * (1 - htf/lookback.Hours())
		}
	}
}

// degradeCurrent applies the motor-electrical growth curve to motor current.
func (u *unitRun) degradeCurrent(current []float64) error {
	ts := u.base.Timestamps
	for _, ev := range u.events {
		if ev.Type != failure.MotorElectrical {
			continue
		}
		pattern, err := degradation.PatternFor(ev.Type)
		if err != nil {
			return err
		}
		precursor, err := u.degr.PrecursorHours(ev.Type)
		if err != nil {
			return err
		}
		lo, hi := window(ts, ev.Time)
		for i := lo; i < hi; i++ {
			htf := ev.Time.Sub(ts[i]).Hours()
			if htf > precursor {
				continue
			}
			current[i] *= degradation.Multiplier(pattern.Growth, (precursor-htf)/precursor)
		}
	}
	return nil
}

// degradePower raises power draw ahead of liner failures as the liners wear
// through, reaching full wear at the failure.
func (u *unitRun) degradePower(power []float64) {
	ts := u.base.Timestamps
	for _, ev := range u.events {
		if ev.Type != failure.LinerWear {
			continue
		}
		lo, hi := window(ts, ev.Time)
		for i := lo; i < hi; i++ {
			progress := 1 - ev.Time.Sub(ts[i]).Hours()/lookback.Hours()
			power[i] = degradation.LinerWearEffect(power[i], progress*100)
		}
	}
}

// degradeLubeOil heats the lubrication oil ahead of lubrication failures. The
// oil is treated as ageing one full service year across the look-back window.
func (u *unitRun) degradeLubeOil(records []dataset.Record, oilQuality []float64) {
	const serviceHours = 8760.0
	ts := u.base.Timestamps
	for _, ev := range u.events {
		if ev.Type != failure.Lubrication {
			continue
		}
		lo, hi := window(ts, ev.Time)
		for i := lo; i < hi; i++ {
			progress := 1 - ev.Time.Sub(ts[i]).Hours()/lookback.Hours()
			records[i].TempLubeOil = degradation.LubricationDegradation(
				records[i].TempLubeOil, oilQuality[i], progress*serviceHours)
		}
	}
}
