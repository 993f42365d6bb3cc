package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IncumbentMode selects how incumbent activity enters the system.
type IncumbentMode string

const (
	// IncumbentNone disables the incumbent tier entirely.
	IncumbentNone IncumbentMode = "none"
	// IncumbentPoisson generates incumbent arrivals as an independent
	// Poisson stream with its own service distribution.
	IncumbentPoisson IncumbentMode = "poisson"
	// IncumbentThinned classifies a fraction Theta of the single customer
	// stream as incumbents instead of running a separate stream.
	IncumbentThinned IncumbentMode = "thinned"
	// IncumbentTrace replays recorded breakdown gaps and hold durations.
	IncumbentTrace IncumbentMode = "trace"
)

// Scenario holds every fixed parameter of one simulation study. It is
// immutable during a run; replications copy nothing out of it except
// derived samplers.
type Scenario struct {
	// Customer stream.
	Lam  float64  `yaml:"lam"`  // arrival rate of customers
	Mu   float64  `yaml:"mu"`   // service rate, 1 over the first moment of service
	K    float64  `yaml:"k"`    // dispersion: second moment of service is K/Mu²
	Dist DistKind `yaml:"dist"` // service distribution kind
	Phi  float64  `yaml:"phi"`  // fraction choosing the priority class

	// Incumbent tier.
	Incumbent IncumbentMode `yaml:"incumbent"`
	LamIn     float64       `yaml:"lam_in"`  // incumbent arrival (breakdown) rate
	MuIn      float64       `yaml:"mu_in"`   // incumbent service (repair) rate
	KIn       float64       `yaml:"k_in"`    // incumbent dispersion
	DistIn    DistKind      `yaml:"dist_in"` // incumbent service distribution kind
	Theta     float64       `yaml:"theta"`   // incumbent fraction for the thinned mode

	// Trace-driven breakdowns (IncumbentTrace): parallel sequences of
	// inter-breakdown gaps and hold durations, consumed strictly in order.
	BreakdownGaps  []float64 `yaml:"-"`
	BreakdownHolds []float64 `yaml:"-"`

	// Engine parameters.
	Capacity   int     `yaml:"capacity"`   // concurrent service slots
	SimTime    float64 `yaml:"sim_time"`   // horizon; in-flight work past it is discarded
	Frac       float64 `yaml:"frac"`       // warm-up fraction of SimTime
	Iterations int     `yaml:"iterations"` // independent replications per estimate
	Alpha      float64 `yaml:"alpha"`      // CI is 100*(1-Alpha) percent
	Workers    int     `yaml:"workers"`    // replication fan-out; 0 = GOMAXPROCS
}

// Rho returns the customer traffic load Lam/Mu.
func (sc *Scenario) Rho() float64 {
	return sc.Lam / sc.Mu
}

// RhoIn returns the incumbent load. In trace mode the rates are the
// empirical reciprocals of the trace means.
func (sc *Scenario) RhoIn() float64 {
	lamIn, muIn := sc.incumbentRates()
	if muIn == 0 {
		return 0
	}
	return lamIn / muIn
}

func (sc *Scenario) incumbentRates() (lamIn, muIn float64) {
	switch sc.Incumbent {
	case IncumbentPoisson:
		return sc.LamIn, sc.MuIn
	case IncumbentThinned:
		return sc.Theta * sc.Lam, sc.MuIn
	case IncumbentTrace:
		if len(sc.BreakdownGaps) == 0 || len(sc.BreakdownHolds) == 0 {
			return 0, 0
		}
		return 1 / mean(sc.BreakdownGaps), 1 / mean(sc.BreakdownHolds)
	default:
		return 0, 0
	}
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// EffectiveMu returns the customer service rate discounted for time the
// server spends held by the incumbent (cf. Eq. 9, IEEE 6776591).
func (sc *Scenario) EffectiveMu() float64 {
	lamIn, muIn := sc.incumbentRates()
	if muIn == 0 {
		return sc.Mu
	}
	return sc.Mu / (1 + lamIn/muIn)
}

// Validate rejects scenarios the engine cannot honestly simulate. All
// violations are ConfigurationErrors; nothing is silently clamped.
func (sc *Scenario) Validate() error {
	if sc.Lam <= 0 || sc.Mu <= 0 {
		return configErrorf("customer rates must be positive (lam=%g, mu=%g)", sc.Lam, sc.Mu)
	}
	if sc.Dist == DistGammaByMoments && sc.K < 1 {
		return configErrorf("customer dispersion k must be at least 1, got %g", sc.K)
	}
	if sc.Phi < 0 || sc.Phi > 1 {
		return configErrorf("phi must lie in [0,1], got %g", sc.Phi)
	}
	switch sc.Incumbent {
	case IncumbentNone:
	case IncumbentPoisson:
		if sc.LamIn <= 0 || sc.MuIn <= 0 {
			return configErrorf("incumbent rates must be positive (lam_in=%g, mu_in=%g)", sc.LamIn, sc.MuIn)
		}
		if sc.DistIn == DistGammaByMoments && sc.KIn < 1 {
			return configErrorf("incumbent dispersion k_in must be at least 1, got %g", sc.KIn)
		}
	case IncumbentThinned:
		if sc.Theta < 0 || sc.Theta > 1 {
			return configErrorf("theta must lie in [0,1], got %g", sc.Theta)
		}
		if sc.MuIn <= 0 {
			return configErrorf("incumbent service rate must be positive, got %g", sc.MuIn)
		}
	case IncumbentTrace:
		if len(sc.BreakdownGaps) == 0 || len(sc.BreakdownHolds) == 0 {
			return configErrorf("trace mode requires non-empty gap and hold traces")
		}
		if len(sc.BreakdownGaps) != len(sc.BreakdownHolds) {
			return configErrorf("gap trace has %d values but hold trace has %d",
				len(sc.BreakdownGaps), len(sc.BreakdownHolds))
		}
	default:
		return configErrorf("unknown incumbent mode %q", sc.Incumbent)
	}
	if sc.Lam >= sc.EffectiveMu()*float64(max(sc.Capacity, 1)) {
		return configErrorf("unstable system: lam=%g must be less than effective mu=%g",
			sc.Lam, sc.EffectiveMu()*float64(max(sc.Capacity, 1)))
	}
	if sc.Capacity < 1 {
		return configErrorf("capacity must be at least 1, got %d", sc.Capacity)
	}
	if sc.SimTime <= 0 {
		return configErrorf("sim_time must be positive, got %g", sc.SimTime)
	}
	if sc.Frac < 0 || sc.Frac >= 1 {
		return configErrorf("warm-up fraction must lie in [0,1), got %g", sc.Frac)
	}
	if sc.Iterations < 1 {
		return configErrorf("iterations must be at least 1, got %d", sc.Iterations)
	}
	if sc.Alpha <= 0 || sc.Alpha > 1 {
		return configErrorf("alpha must lie in (0,1], got %g", sc.Alpha)
	}
	return nil
}

// LoadScenario reads a YAML scenario file. Fields absent from the file keep
// their zero values; callers apply defaults before Validate.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return &sc, nil
}
