package random

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source draws from the distributions used by the generators. A Source is not
// safe for concurrent use; give every goroutine its own stream.
type Source struct {
	rng *rand.Rand
}

// New returns a PCG-backed source. Sources with the same seed and stream
// produce the same sequence.
func New(seed, stream uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, stream))}
}

func (s *Source) Normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.rng}.Rand()
}

func (s *Source) Uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: s.rng}.Rand()
}

// Weibull draws with shape k and scale 1.
func (s *Source) Weibull(k float64) float64 {
	return distuv.Weibull{K: k, Lambda: 1, Src: s.rng}.Rand()
}

// Exponential draws with the given mean (scale), not rate.
func (s *Source) Exponential(mean float64) float64 {
	return distuv.Exponential{Rate: 1 / mean, Src: s.rng}.Rand()
}

func (s *Source) Poisson(lambda float64) int {
	return int(distuv.Poisson{Lambda: lambda, Src: s.rng}.Rand())
}

// Choice returns an index drawn with probability proportional to weights.
func (s *Source) Choice(weights []float64) int {
	return int(distuv.NewCategorical(weights, s.rng).Rand())
}

// IntRange returns an int in [lo, hi).
func (s *Source) IntRange(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo)
}

func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Seed returns a fresh random seed for unseeded runs.
func Seed() uint64 {
	return rand.Uint64()
}
