package mill

import (
	"time"

	"github.com/pochkachaiki/millsim/internal/models/failure"
	"github.com/pochkachaiki/millsim/internal/random"
)

const (
	// baseMTBF is the mean time between failures of a unit in perfect
	// condition, in hours.
	baseMTBF     = 4380.0
	weibullShape = 2.0

	minRecoveryDays = 7.0
	maxRecoveryDays = 30.0
)

var failureTypes = []failure.Type{
	failure.BearingFeed,
	failure.BearingDischarge,
	failure.LinerWear,
	failure.MotorElectrical,
	failure.Lubrication,
}

var baseFailureWeights = map[failure.Type]float64{
	failure.BearingFeed:      0.35,
	failure.BearingDischarge: 0.35,
	failure.LinerWear:        0.20,
	failure.MotorElectrical:  0.05,
	failure.Lubrication:      0.05,
}

var (
	bearingSeverity = []float64{0.1, 0.6, 0.3}
	linerSeverity   = []float64{0.3, 0.6, 0.1}
	otherSeverity   = []float64{0.5, 0.4, 0.1}
)

// FailureWeights returns normalised failure-type probabilities for a unit,
// in the order of failureTypes.
func FailureWeights(t Tendency) []float64 {
	w := make([]float64, len(failureTypes))
	var total float64
	for i, ft := range failureTypes {
		w[i] = baseFailureWeights[ft]
		switch {
		case t == TendencyBearings && ft.IsBearing():
			w[i] *= 1.5
		case t == TendencyLiners && ft == failure.LinerWear:
			w[i] *= 2.0
		case t == TendencyLubrication && ft == failure.Lubrication:
			w[i] *= 3.0
		}
		total += w[i]
	}
	for i := range w {
		w[i] /= total
	}
	return w
}

func severityWeights(t failure.Type) []float64 {
	switch {
	case t.IsBearing():
		return bearingSeverity
	case t == failure.LinerWear:
		return linerSeverity
	default:
		return otherSeverity
	}
}

// Schedule draws failure events for unit between start and end. Gaps are
// Weibull distributed with a mean scaled by the unit condition; after each
// failure the unit recovers for 7 to 30 days before the next gap starts.
func Schedule(src *random.Source, unit UnitConfig, start, end time.Time) []failure.Event {
	weights := FailureWeights(unit.Tendency)
	mtbf := baseMTBF * unit.Condition

	var events []failure.Event
	current := start
	for current.Before(end) {
		gap := src.Weibull(weibullShape) * mtbf
		at := current.Add(hours(gap))
		if !at.Before(end) {
			break
		}

		ft := failureTypes[src.Choice(weights)]
		severity := failure.Severity(src.Choice(severityWeights(ft)) + 1)
		events = append(events, failure.Event{
			UnitID:   unit.ID,
			Time:     at,
			Type:     ft,
			Severity: severity,
		})

		recovery := src.Uniform(minRecoveryDays, maxRecoveryDays) * 24
		current = at.Add(hours(recovery))
	}
	return events
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
