// Random variate sources for interarrival gaps and service durations.
// Each source is a tagged variant behind the Sampler interface rather than
// a string-dispatched branch, so the engine is independent of how a
// duration was produced.

package sim

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DistKind selects a variate family for a Sampler.
type DistKind string

const (
	// DistDeterministic always returns the configured mean.
	DistDeterministic DistKind = "deterministic"
	// DistExponential draws i.i.d. exponential variates with the configured mean.
	DistExponential DistKind = "exponential"
	// DistGammaByMoments draws Gamma variates matching the configured mean
	// and second moment exactly.
	DistGammaByMoments DistKind = "gamma"
	// DistTraceReplay consumes pre-recorded values in file order.
	DistTraceReplay DistKind = "trace"
)

// Sampler produces one duration per call. Draws are i.i.d. except for
// trace replay, which consumes its values in order, without replacement.
type Sampler interface {
	Sample() (float64, error)
}

// DeterministicSampler always returns a fixed value.
type DeterministicSampler struct {
	value float64
}

func (s *DeterministicSampler) Sample() (float64, error) {
	return s.value, nil
}

// ExponentialSampler draws exponential variates at the configured rate.
type ExponentialSampler struct {
	dist distuv.Exponential
}

// NewExponentialSampler builds a sampler with mean 1/rate.
func NewExponentialSampler(rate float64, src rand.Source) (*ExponentialSampler, error) {
	if rate <= 0 {
		return nil, configErrorf("exponential rate must be positive, got %g", rate)
	}
	return &ExponentialSampler{dist: distuv.Exponential{Rate: rate, Src: src}}, nil
}

func (s *ExponentialSampler) Sample() (float64, error) {
	return s.dist.Rand(), nil
}

// GammaSampler draws Gamma variates parameterized by their first two moments.
type GammaSampler struct {
	dist distuv.Gamma
}

// NewGammaByMoments builds a Gamma sampler whose mean and second moment
// match the arguments exactly. The second moment must exceed mean² for a
// valid Gamma fit; equality is the deterministic boundary and must be
// requested as DistDeterministic instead.
func NewGammaByMoments(mean, secondMoment float64, src rand.Source) (*GammaSampler, error) {
	if mean <= 0 {
		return nil, configErrorf("gamma mean must be positive, got %g", mean)
	}
	if secondMoment <= mean*mean {
		return nil, configErrorf("gamma second moment %g below minimum attainable %g", secondMoment, mean*mean)
	}
	// With k = m2/mean^2: shape = 1/(k-1), scale = (k-1)*mean.
	k := secondMoment / (mean * mean)
	shape := 1 / (k - 1)
	scale := (k - 1) * mean
	return &GammaSampler{dist: distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: src}}, nil
}

func (s *GammaSampler) Sample() (float64, error) {
	return s.dist.Rand(), nil
}

// TraceSampler replays pre-recorded durations in order, without replacement.
type TraceSampler struct {
	values []float64
	next   int
}

// NewTraceSampler wraps a finite sequence of positive durations.
func NewTraceSampler(values []float64) (*TraceSampler, error) {
	if len(values) == 0 {
		return nil, configErrorf("trace must contain at least one value")
	}
	for i, v := range values {
		if v < 0 {
			return nil, configErrorf("trace value %d is negative (%g)", i, v)
		}
	}
	return &TraceSampler{values: values}, nil
}

func (s *TraceSampler) Sample() (float64, error) {
	if s.next >= len(s.values) {
		return 0, &ExhaustedTraceError{Provided: len(s.values)}
	}
	v := s.values[s.next]
	s.next++
	return v, nil
}

// Remaining reports how many trace values are still unconsumed.
func (s *TraceSampler) Remaining() int {
	return len(s.values) - s.next
}

// NewServiceSampler builds the service-duration source for a class from the
// scenario convention: service rate mu (mean 1/mu) and dispersion k, where
// the second moment is k/mu². k == 1 is the deterministic special case and
// k == 2 the exponential one; any k > 1 is realized as a moment-matched
// Gamma. k < 1 is below the minimum attainable second moment.
func NewServiceSampler(kind DistKind, mu, k float64, src rand.Source) (Sampler, error) {
	if mu <= 0 {
		return nil, configErrorf("service rate must be positive, got %g", mu)
	}
	switch kind {
	case DistDeterministic:
		return &DeterministicSampler{value: 1 / mu}, nil
	case DistExponential:
		return NewExponentialSampler(mu, src)
	case DistGammaByMoments:
		if k < 1 {
			return nil, configErrorf("service dispersion k must be at least 1, got %g", k)
		}
		if k == 1 {
			// Second moment exactly 1/mu²: a point mass, not a Gamma.
			return &DeterministicSampler{value: 1 / mu}, nil
		}
		mean := 1 / mu
		return NewGammaByMoments(mean, k*mean*mean, src)
	default:
		return nil, configErrorf("unknown distribution kind %q", kind)
	}
}
