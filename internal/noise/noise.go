// Package noise injects industrial sensor noise into generated signals.
package noise

import (
	"math"
	"time"

	"github.com/pochkachaiki/millsim/internal/random"
)

type Category string

const (
	Vibration   Category = "vibration"
	Temperature Category = "temperature"
	Electrical  Category = "electrical"
	Process     Category = "process"
)

const (
	outlierProbability = 0.01
	outlierScale       = 5.0
)

// Params are relative standard deviations (fractions of the signal).
type Params struct {
	Base     float64
	Seasonal float64
	Random   float64
}

var params = map[Category]Params{
	Vibration:   {Base: 0.05, Seasonal: 0.02, Random: 0.03},
	Temperature: {Base: 0.02, Seasonal: 0.01, Random: 0.015},
	Electrical:  {Base: 0.01, Seasonal: 0.005, Random: 0.02},
	Process:     {Base: 0.03, Seasonal: 0.01, Random: 0.025},
}

// ParamsFor falls back to Process for unknown categories.
func ParamsFor(c Category) Params {
	if p, ok := params[c]; ok {
		return p
	}
	return params[Process]
}

type Models struct {
	src *random.Source
}

func New(src *random.Source) *Models {
	return &Models{src: src}
}

// Apply multiplies every sample by one plus the sum of base, seasonal,
// high-frequency and occasional outlier noise. signal is modified in place.
// timestamps must be the same length as signal.
func (m *Models) Apply(signal []float64, c Category, timestamps []time.Time) {
	p := ParamsFor(c)
	for i := range signal {
		base := m.src.Normal(0, p.Base)
		seasonal := p.Seasonal * math.Sin(2*math.Pi*float64(timestamps[i].YearDay())/365)
		high := m.src.Normal(0, p.Random)
		var outlier float64
		if m.src.Float64() < outlierProbability {
			outlier = m.src.Normal(0, p.Base*outlierScale)
		}
		signal[i] *= 1 + base + seasonal + high + outlier
	}
}
