// Package physics holds the grinding correlations used to derive process and
// condition-monitoring signals from operating parameters. Invalid inputs
// propagate as NaN or Inf.
package physics

import "math"

const (
	BondConstant          = 10.0
	CriticalSpeedConstant = 42.3

	MillDiameter = 5.5 // m
	MillLength   = 7.0 // m

	baseEfficiency      = 0.82
	linerLossAtFullWear = 0.18
	optimalBallCharge   = 32.0
	optimalSpeedPct     = 76.0

	ratedBearingPower = 2000.0
	nominalMillSpeed  = 15.0
)

// CriticalSpeed returns the critical rotational speed in rpm for a mill of the
// given diameter in metres.
func CriticalSpeed(diameter float64) float64 {
	return CriticalSpeedConstant / math.Sqrt(diameter)
}

// BondEnergy returns the specific grinding energy in kWh/t from Bond's law.
// f80 and p80 are 80% passing sizes in µm.
func BondEnergy(workIndex, f80, p80 float64) float64 {
	return BondConstant * workIndex * (1/math.Sqrt(p80) - 1/math.Sqrt(f80))
}

// MillEfficiency combines liner wear (%), ball charge (% volume) and speed
// (% of critical) into a fractional grinding efficiency.
func MillEfficiency(linerWear, ballCharge, speedPctCritical float64) float64 {
	linerFactor := 1.0 - (linerWear/100)*linerLossAtFullWear
	ballFactor := 1.0 - 0.5*sq((ballCharge-optimalBallCharge)/optimalBallCharge)
	speedFactor := 1.0 - 0.3*sq((speedPctCritical-optimalSpeedPct)/optimalSpeedPct)
	return baseEfficiency * linerFactor * ballFactor * speedFactor
}

// BearingLoadFactor is the trunnion bearing load normalised to ~1.0 at rated
// power and nominal speed.
func BearingLoadFactor(powerDraw, millSpeed, misalignment float64) float64 {
	baseLoad := powerDraw / ratedBearingPower
	speedFactor := 1.0 + 0.3*sq(millSpeed/nominalMillSpeed-1.0)
	misalignmentFactor := 1.0 + misalignment*2.0
	return baseLoad * speedFactor * misalignmentFactor
}

func sq(x float64) float64 { return x * x }
