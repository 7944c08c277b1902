package mill

import (
	"errors"
	"math"
	"time"

	"github.com/pochkachaiki/millsim/internal/random"
)

var ErrEmptyHorizon = errors.New("simulation horizon is empty")

const daysPerYear = 365.25

// Horizon returns hourly timestamps from start to start plus the given number
// of years (truncated to whole days), both ends included.
func Horizon(start time.Time, years float64) ([]time.Time, error) {
	days := int(years * daysPerYear)
	if days <= 0 {
		return nil, ErrEmptyHorizon
	}
	end := start.AddDate(0, 0, days)
	n := int(end.Sub(start)/time.Hour) + 1
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return ts, nil
}

// BaseConditions are the ore and ambient series shared by every unit.
type BaseConditions struct {
	Timestamps       []time.Time
	WorkIndex        []float64
	Hardness         []float64
	OreMoisture      []float64
	AmbientTemp      []float64
	RelativeHumidity []float64
	FeedP80          []float64
	OreDensity       []float64
	ClayContent      []float64
	Abrasiveness     []float64
}

func (b *BaseConditions) Len() int { return len(b.Timestamps) }

// GenerateBaseConditions draws the exogenous series once for the horizon.
func GenerateBaseConditions(src *random.Source, timestamps []time.Time) *BaseConditions {
	n := len(timestamps)
	b := &BaseConditions{
		Timestamps:       timestamps,
		WorkIndex:        make([]float64, n),
		Hardness:         make([]float64, n),
		OreMoisture:      make([]float64, n),
		AmbientTemp:      make([]float64, n),
		RelativeHumidity: make([]float64, n),
		FeedP80:          make([]float64, n),
		OreDensity:       make([]float64, n),
		ClayContent:      make([]float64, n),
		Abrasiveness:     make([]float64, n),
	}

	const hoursPerYear = 365 * 24
	for i := range b.WorkIndex {
		seasonal := 1.5 * math.Sin(2*math.Pi*float64(i)/hoursPerYear)
		b.WorkIndex[i] = workIndexBound.Clip(14.5 + src.Normal(0, 0.5) + seasonal)
	}
	for i, wi := range b.WorkIndex {
		b.Hardness[i] = hardnessBound.Clip(3.5 + 0.2*(wi-14.5) + src.Normal(0, 0.3))
	}
	for i, ts := range timestamps {
		b.OreMoisture[i] = moistureBound.Clip(8.0 + 3.0*math.Sin(yearPhase(ts)+math.Pi) + src.Normal(0, 1.0))
	}
	for i, ts := range timestamps {
		b.AmbientTemp[i] = 18 + 8*math.Sin(yearPhase(ts)) + src.Normal(0, 2)
	}
	for i, ts := range timestamps {
		b.RelativeHumidity[i] = 65 + 15*math.Sin(yearPhase(ts)+math.Pi/2) + src.Normal(0, 5)
	}
	for i := range b.FeedP80 {
		b.FeedP80[i] = feedP80Bound.Clip(12500 + src.Normal(0, 1000))
	}
	for i := range b.OreDensity {
		b.OreDensity[i] = src.Normal(3.2, 0.2)
	}
	for i := range b.ClayContent {
		b.ClayContent[i] = src.Uniform(0, 12)
	}
	for i := range b.Abrasiveness {
		b.Abrasiveness[i] = src.Uniform(0.15, 0.65)
	}
	return b
}

func yearPhase(ts time.Time) float64 {
	return 2 * math.Pi * float64(ts.YearDay()) / 365
}
