// Package degradation models how condition signals drift as a scheduled
// failure approaches.
package degradation

import (
	"errors"
	"fmt"
	"math"

	"github.com/pochkachaiki/millsim/internal/models/failure"
	"github.com/pochkachaiki/millsim/internal/random"
)

var ErrUnknownFailureType = errors.New("unknown failure type")

type Growth string

const (
	Exponential Growth = "exponential"
	Linear      Growth = "linear"
	Sudden      Growth = "sudden"
)

// suddenOnset is the fraction of the precursor window after which a sudden
// failure starts to show.
const suddenOnset = 0.8

type Pattern struct {
	TypicalLifeHours float64
	PrecursorDays    [2]float64
	Growth           Growth
}

var patterns = map[failure.Type]Pattern{
	failure.BearingOuterRace: {TypicalLifeHours: 15000, PrecursorDays: [2]float64{15, 45}, Growth: Exponential},
	failure.BearingInnerRace: {TypicalLifeHours: 12000, PrecursorDays: [2]float64{10, 30}, Growth: Exponential},
	failure.BearingFeed:      {TypicalLifeHours: 15000, PrecursorDays: [2]float64{15, 45}, Growth: Exponential},
	failure.BearingDischarge: {TypicalLifeHours: 12000, PrecursorDays: [2]float64{12, 35}, Growth: Exponential},
	failure.LinerWear:        {TypicalLifeHours: 6000, PrecursorDays: [2]float64{60, 180}, Growth: Linear},
	failure.MotorElectrical:  {TypicalLifeHours: 25000, PrecursorDays: [2]float64{7, 21}, Growth: Sudden},
	failure.Lubrication:      {TypicalLifeHours: 8760, PrecursorDays: [2]float64{30, 90}, Growth: Linear},
}

func PatternFor(t failure.Type) (Pattern, error) {
	p, ok := patterns[t]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %q", ErrUnknownFailureType, t)
	}
	return p, nil
}

// Multiplier maps progress through the precursor window (0 at its start,
// 1 at failure) to a signal multiplier.
func Multiplier(g Growth, progress float64) float64 {
	switch g {
	case Exponential:
		return 1.0 + 4.0*(math.Exp(3*progress)-1)/(math.Exp(3)-1)
	case Sudden:
		if progress < suddenOnset {
			return 1.0
		}
		return 1.0 + 3.0*(progress-suddenOnset)/(1-suddenOnset)
	default:
		return 1.0 + 2.0*progress
	}
}

// Models draws the random parts of the degradation curves.
type Models struct {
	src *random.Source
}

func New(src *random.Source) *Models {
	return &Models{src: src}
}

// PrecursorHours draws how long before the failure the signal starts to drift.
func (m *Models) PrecursorHours(t failure.Type) (float64, error) {
	p, err := PatternFor(t)
	if err != nil {
		return 0, err
	}
	return m.src.Uniform(p.PrecursorDays[0], p.PrecursorDays[1]) * 24, nil
}

// Degrade scales base for a row hoursToFailure before a failure of growth g
// whose precursor window is precursorHours long.
func (m *Models) Degrade(base, hoursToFailure, precursorHours float64, g Growth) float64 {
	if hoursToFailure > precursorHours {
		return base * m.src.Normal(1.0, 0.05)
	}
	progress := (precursorHours - hoursToFailure) / precursorHours
	return base * Multiplier(g, progress) * m.src.Normal(1.0, 0.1)
}

// BearingDegradation draws a fresh precursor window for t and degrades base.
func (m *Models) BearingDegradation(base, hoursToFailure float64, t failure.Type) (float64, error) {
	p, err := PatternFor(t)
	if err != nil {
		return 0, err
	}
	precursor := m.src.Uniform(p.PrecursorDays[0], p.PrecursorDays[1]) * 24
	return m.Degrade(base, hoursToFailure, precursor, p.Growth), nil
}

// LinerWearEffect raises power draw by up to 15% at full liner wear.
func LinerWearEffect(basePower, wearPct float64) float64 {
	return basePower * (1.0 + (wearPct/100)*0.15)
}

// LubricationDegradation raises a temperature as oil ages (normalised to one
// year) and as oil quality (0-100%) drops.
func LubricationDegradation(baseTemp, oilQuality, hoursSinceChange float64) float64 {
	oilDegradation := math.Min(hoursSinceChange/8760, 1.0)
	qualityFactor := (1.0 - oilQuality/100) * 2.0
	return baseTemp + 5.0*oilDegradation + 10.0*qualityFactor
}
