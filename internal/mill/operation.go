package mill

import (
	"math"

	"github.com/pochkachaiki/millsim/internal/dataset"
	"github.com/pochkachaiki/millsim/internal/degradation"
	"github.com/pochkachaiki/millsim/internal/models/failure"
	"github.com/pochkachaiki/millsim/internal/noise"
	"github.com/pochkachaiki/millsim/internal/physics"
	"github.com/pochkachaiki/millsim/internal/random"
)

const (
	targetP80    = 125.0 // µm
	misalignment = 0.02
	baseFeedRate = 280.0 // t/h
)

// unitRun generates the series of one unit. It owns its random stream.
type unitRun struct {
	unit   UnitConfig
	base   *BaseConditions
	src    *random.Source
	degr   *degradation.Models
	noise  *noise.Models
	events []failure.Event
}

func newUnitRun(unit UnitConfig, base *BaseConditions, src *random.Source) *unitRun {
	return &unitRun{
		unit:  unit,
		base:  base,
		src:   src,
		degr:  degradation.New(src),
		noise: noise.New(src),
	}
}

func (u *unitRun) normals(mu, sigma float64) []float64 {
	out := make([]float64, u.base.Len())
	for i := range out {
		out[i] = u.src.Normal(mu, sigma)
	}
	return out
}

func (u *unitRun) uniforms(lo, hi float64) []float64 {
	out := make([]float64, u.base.Len())
	for i := range out {
		out[i] = u.src.Uniform(lo, hi)
	}
	return out
}

// shiftLabel splits the day into A (00:00-08:59), B (09:00-16:59) and
// C (17:00-23:59).
func shiftLabel(hour int) string {
	switch {
	case hour <= 8:
		return "A"
	case hour <= 16:
		return "B"
	default:
		return "C"
	}
}

// shiftFeedEffect is the operator bias on feed rate in t/h.
func shiftFeedEffect(hour int) float64 {
	switch {
	case hour < 8:
		return -10
	case hour < 16:
		return 5
	default:
		return 0
	}
}

// generate runs the whole per-unit pipeline: schedule, operation series,
// degradation, targets and sensor noise.
func (u *unitRun) generate() ([]dataset.Record, error) {
	b := u.base
	n := b.Len()
	u.events = Schedule(u.src, u.unit, b.Timestamps[0], b.Timestamps[n-1])

	feedRate := make([]float64, n)
	for i, ts := range b.Timestamps {
		feedRate[i] = feedRateBound.Clip(baseFeedRate + u.src.Normal(0, 20) + shiftFeedEffect(ts.Hour()))
	}
	speedPct := u.normals(76, 2)
	speedRPM := make([]float64, n)
	for i := range speedPct {
		speedPct[i] = speedPctBound.Clip(speedPct[i])
		speedRPM[i] = speedPct[i] * u.unit.CriticalSpeed / 100
	}
	ballCharge := u.normals(32, 1.5)
	for i := range ballCharge {
		ballCharge[i] = ballChargeBound.Clip(ballCharge[i])
	}
	pulpDensity := u.normals(72, 3)
	for i := range pulpDensity {
		pulpDensity[i] = pulpDensityBound.Clip(pulpDensity[i])
	}

	linerWear := u.uniforms(0, 80)
	efficiency := make([]float64, n)
	specificEnergy := make([]float64, n)
	power := make([]float64, n)
	bearingLoad := make([]float64, n)
	for i := 0; i < n; i++ {
		bond := physics.BondEnergy(b.WorkIndex[i], b.FeedP80[i], targetP80)
		efficiency[i] = physics.MillEfficiency(linerWear[i], ballCharge[i], speedPct[i]) * u.unit.EfficiencyFactor
		specificEnergy[i] = bond / efficiency[i]
		power[i] = specificEnergy[i] * feedRate[i]
	}
	u.degradePower(power)
	for i := 0; i < n; i++ {
		bearingLoad[i] = physics.BearingLoadFactor(power[i], speedRPM[i], misalignment)
	}

	cond := u.unit.Condition
	vibFeedBase := make([]float64, n)
	vibDischargeBase := make([]float64, n)
	vibShell := make([]float64, n)
	tempFeed := make([]float64, n)
	tempDischarge := make([]float64, n)
	tempMotor := make([]float64, n)
	current := make([]float64, n)
	for i := 0; i < n; i++ {
		vibFeedBase[i] = 3.5 * bearingLoad[i] * cond
		vibDischargeBase[i] = 4.0 * bearingLoad[i] * cond
		vibShell[i] = 5.0 * math.Sqrt(power[i]/2000) * cond

		tempFeed[i] = 45 + 15*(bearingLoad[i]-1) + b.AmbientTemp[i]*0.3
		tempDischarge[i] = 48 + 18*(bearingLoad[i]-1) + b.AmbientTemp[i]*0.3
		tempMotor[i] = 60 + 20*(power[i]/u.unit.MotorPowerRating-1)

		current[i] = power[i] / (u.unit.MotorPowerRating * 0.9) * 800
	}

	oilPressure := u.normals(2.5, 0.3)
	oilFlow := u.normals(120, 15)
	oilQuality := make([]float64, n)
	for i := range oilQuality {
		oilQuality[i] = oilQualityBound.Clip(100 - u.src.Exponential(2))
	}
	voltage := u.normals(4160, 20)
	powerFactor := u.normals(0.90, 0.02)

	vibFeedH, vibFeedV, err := u.degradeVibration(vibFeedBase)
	if err != nil {
		return nil, err
	}
	vibDischargeH, vibDischargeV, err := u.degradeVibration(vibDischargeBase)
	if err != nil {
		return nil, err
	}
	u.degradeTemperature(tempFeed)
	if err := u.degradeCurrent(current); err != nil {
		return nil, err
	}

	records := make([]dataset.Record, n)
	for i, ts := range b.Timestamps {
		records[i] = dataset.Record{
			Timestamp: ts,
			UnitID:    u.unit.ID,
			Shift:     shiftLabel(ts.Hour()),

			FeedRate:         feedRate[i],
			SpeedRPM:         speedRPM[i],
			SpeedPctCritical: speedPct[i],
			BallCharge:       ballCharge[i],
			PulpDensity:      pulpDensity[i],
			WaterAdded:       feedRate[i] * (100/pulpDensity[i] - 1) * 0.8,
			CyclonePressure:  u.src.Normal(95, 15),

			VibFeedH:      vibFeedH[i],
			VibFeedV:      vibFeedV[i],
			VibDischargeH: vibDischargeH[i],
			VibDischargeV: vibDischargeV[i],
			VibShellH:     vibShell[i] * u.src.Normal(1, 0.05),
			VibShellV:     vibShell[i] * u.src.Normal(1, 0.05),
			VibPinion:     vibShell[i] * 1.2 * u.src.Normal(1, 0.08),
			VibGearbox:    vibShell[i] * 0.8 * u.src.Normal(1, 0.06),

			TempBearingFeed:      tempFeed[i],
			TempBearingDischarge: tempDischarge[i],
			TempLubeOil:          u.src.Normal(55, 5),
			TempMotor:            tempMotor[i],
			TempGearbox:          u.src.Normal(58, 6),

			MotorCurrent: current[i],
			ActivePower:  power[i],
			MotorVoltage: voltage[i],
			PowerFactor:  powerFactor[i],

			OilPressure:   oilPressure[i],
			OilFlow:       oilFlow[i],
			OilTankLevel:  u.src.Uniform(40, 90),
			OilQualityPPM: (100 - oilQuality[i]) / 5,

			SpecificEnergy:     specificEnergy[i],
			Throughput:         feedRate[i] * u.src.Normal(0.95, 0.02),
			GrindingEfficiency: efficiency[i] * 100,
			ProductP80:         targetP80 * u.src.Normal(1, 0.08),

			LinerWear:       linerWear[i],
			OperatingHours:  i,
			StartStopCycles: u.src.Poisson(1),

			CirculatingLoad:          u.src.Normal(250, 50),
			ClassificationEfficiency: u.src.Normal(60, 8),

			WorkIndex:        b.WorkIndex[i],
			Hardness:         b.Hardness[i],
			OreMoisture:      b.OreMoisture[i],
			FeedP80:          b.FeedP80[i],
			OreDensity:       b.OreDensity[i],
			ClayContent:      b.ClayContent[i],
			Abrasiveness:     b.Abrasiveness[i],
			AmbientTemp:      b.AmbientTemp[i],
			RelativeHumidity: b.RelativeHumidity[i],
		}
	}

	u.degradeLubeOil(records, oilQuality)
	applyFailureTargets(records, u.events)
	u.applySensorNoise(records)
	return records, nil
}
