package mill

import (
	"errors"
	"fmt"

	"github.com/pochkachaiki/millsim/internal/physics"
)

var ErrUnknownUnit = errors.New("unknown mill unit")

// Tendency biases which failure types a unit is prone to.
type Tendency string

const (
	TendencyNormal      Tendency = "normal"
	TendencyBearings    Tendency = "bearings"
	TendencyLiners      Tendency = "liners"
	TendencyLubrication Tendency = "lubrication"
)

// UnitConfig is the static description of one ball mill.
type UnitConfig struct {
	ID               string
	AgeYears         int
	Condition        float64
	EfficiencyFactor float64
	Tendency         Tendency
	LinerCondition   float64

	MotorPowerRating float64 // kW
	Diameter         float64 // m
	Length           float64 // m
	CriticalSpeed    float64 // rpm
}

const motorPowerRating = 2000.0

var unitPresets = []UnitConfig{
	{ID: "M1", AgeYears: 8, Condition: 0.85, EfficiencyFactor: 0.98, Tendency: TendencyBearings, LinerCondition: 0.6},
	{ID: "M2", AgeYears: 6, Condition: 0.92, EfficiencyFactor: 1.02, Tendency: TendencyNormal, LinerCondition: 0.8},
	{ID: "M3", AgeYears: 10, Condition: 0.78, EfficiencyFactor: 0.94, Tendency: TendencyLiners, LinerCondition: 0.4},
	{ID: "M4", AgeYears: 5, Condition: 0.94, EfficiencyFactor: 1.01, Tendency: TendencyNormal, LinerCondition: 0.9},
	{ID: "M5", AgeYears: 9, Condition: 0.82, EfficiencyFactor: 0.96, Tendency: TendencyLubrication, LinerCondition: 0.7},
	{ID: "M6", AgeYears: 7, Condition: 0.88, EfficiencyFactor: 0.99, Tendency: TendencyNormal, LinerCondition: 0.75},
}

// DefaultUnitIDs lists every preset unit.
func DefaultUnitIDs() []string {
	ids := make([]string, len(unitPresets))
	for i, u := range unitPresets {
		ids[i] = u.ID
	}
	return ids
}

// Units returns the configurations for ids with the shared mill geometry
// filled in.
func Units(ids []string) ([]UnitConfig, error) {
	out := make([]UnitConfig, 0, len(ids))
	for _, id := range ids {
		u, ok := preset(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, id)
		}
		u.MotorPowerRating = motorPowerRating
		u.Diameter = physics.MillDiameter
		u.Length = physics.MillLength
		u.CriticalSpeed = physics.CriticalSpeed(physics.MillDiameter)
		out = append(out, u)
	}
	return out, nil
}

func preset(id string) (UnitConfig, bool) {
	for _, u := range unitPresets {
		if u.ID == id {
			return u, true
		}
	}
	return UnitConfig{}, false
}
