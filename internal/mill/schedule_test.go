package mill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pochkachaiki/millsim/internal/models/failure"
	"github.com/pochkachaiki/millsim/internal/random"
)

var start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func mustUnit(t *testing.T, id string) UnitConfig {
	t.Helper()
	units, err := Units([]string{id})
	require.NoError(t, err)
	return units[0]
}

func TestFailureWeightsNormalised(t *testing.T) {
	for _, tendency := range []Tendency{TendencyNormal, TendencyBearings, TendencyLiners, TendencyLubrication} {
		var sum float64
		for _, w := range FailureWeights(tendency) {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "tendency %s", tendency)
	}
}

func TestFailureWeightsFollowTendency(t *testing.T) {
	normal := FailureWeights(TendencyNormal)
	assert.InDelta(t, 0.35, normal[0], 1e-12)
	assert.Greater(t, FailureWeights(TendencyBearings)[0], normal[0])
	assert.Greater(t, FailureWeights(TendencyLiners)[2], normal[2])
	assert.InDelta(t, 0.15/1.1, FailureWeights(TendencyLubrication)[4], 1e-12)
}

func TestScheduleInvariants(t *testing.T) {
	unit := mustUnit(t, "M3")
	end := start.AddDate(2, 0, 0)
	events := Schedule(random.New(123, 1), unit, start, end)
	require.NotEmpty(t, events)

	for i, ev := range events {
		assert.Equal(t, "M3", ev.UnitID)
		assert.True(t, ev.Time.After(start))
		assert.True(t, ev.Time.Before(end))
		assert.GreaterOrEqual(t, int(ev.Severity), 1)
		assert.LessOrEqual(t, int(ev.Severity), 3)
		assert.Contains(t, failureTypes, ev.Type)
		if i > 0 {
			gap := ev.Time.Sub(events[i-1].Time)
			assert.GreaterOrEqual(t, gap, 7*24*time.Hour)
		}
	}
}

func TestScheduleMeanGapTracksCondition(t *testing.T) {
	end := start.AddDate(200, 0, 0)
	good := Schedule(random.New(1, 1), UnitConfig{ID: "x", Condition: 1.0}, start, end)
	poor := Schedule(random.New(1, 1), UnitConfig{ID: "x", Condition: 0.5}, start, end)
	assert.Greater(t, len(poor), len(good))
}

func TestScheduleEmptyWhenHorizonTooShort(t *testing.T) {
	events := Schedule(random.New(1, 1), mustUnit(t, "M1"), start, start.Add(time.Minute))
	// A Weibull gap of under a minute at MTBF ~3700 h is practically impossible.
	assert.Empty(t, events)
}

func TestSeverityWeightsByType(t *testing.T) {
	assert.Equal(t, bearingSeverity, severityWeights(failure.BearingFeed))
	assert.Equal(t, linerSeverity, severityWeights(failure.LinerWear))
	assert.Equal(t, otherSeverity, severityWeights(failure.MotorElectrical))
}
