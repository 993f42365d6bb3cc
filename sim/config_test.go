package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validScenario returns a small stable scenario the validation and engine
// tests perturb.
func validScenario() *Scenario {
	return &Scenario{
		Lam:        0.4,
		Mu:         1.0,
		K:          2.0,
		Dist:       DistExponential,
		Phi:        0.5,
		Incumbent:  IncumbentNone,
		Capacity:   1,
		SimTime:    1000,
		Frac:       0.05,
		Iterations: 2,
		Alpha:      0.05,
		Workers:    1,
	}
}

func TestScenarioValidate_AcceptsBase(t *testing.T) {
	assert.NoError(t, validScenario().Validate())
}

func TestScenarioValidate_RejectsBadParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"zero arrival rate", func(sc *Scenario) { sc.Lam = 0 }},
		{"negative service rate", func(sc *Scenario) { sc.Mu = -1 }},
		{"gamma dispersion below one", func(sc *Scenario) { sc.Dist = DistGammaByMoments; sc.K = 0.5 }},
		{"phi above one", func(sc *Scenario) { sc.Phi = 1.5 }},
		{"phi negative", func(sc *Scenario) { sc.Phi = -0.1 }},
		{"unknown incumbent mode", func(sc *Scenario) { sc.Incumbent = "satellite" }},
		{"poisson incumbent without rates", func(sc *Scenario) { sc.Incumbent = IncumbentPoisson }},
		{"thinned theta above one", func(sc *Scenario) { sc.Incumbent = IncumbentThinned; sc.Theta = 2; sc.MuIn = 1 }},
		{"trace without traces", func(sc *Scenario) { sc.Incumbent = IncumbentTrace }},
		{"trace length mismatch", func(sc *Scenario) {
			sc.Incumbent = IncumbentTrace
			sc.BreakdownGaps = []float64{100, 100}
			sc.BreakdownHolds = []float64{1}
		}},
		{"unstable load", func(sc *Scenario) { sc.Lam = 1.2 }},
		{"zero capacity", func(sc *Scenario) { sc.Capacity = 0 }},
		{"zero horizon", func(sc *Scenario) { sc.SimTime = 0 }},
		{"warm-up fraction one", func(sc *Scenario) { sc.Frac = 1 }},
		{"zero iterations", func(sc *Scenario) { sc.Iterations = 0 }},
		{"alpha above one", func(sc *Scenario) { sc.Alpha = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := validScenario()
			tc.mutate(sc)
			err := sc.Validate()
			var cfgErr *ConfigurationError
			require.Error(t, err)
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestScenario_UnstableUnderIncumbentLoad(t *testing.T) {
	// GIVEN a customer load feasible alone but not once the incumbent holds
	// the channel half the time
	sc := validScenario()
	sc.Lam = 0.6
	sc.Incumbent = IncumbentPoisson
	sc.LamIn = 1.0
	sc.MuIn = 1.0
	sc.KIn = 1.0
	sc.DistIn = DistDeterministic

	// THEN the effective service rate halves and validation rejects it
	assert.InDelta(t, 0.5, sc.EffectiveMu(), 1e-12)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, sc.Validate(), &cfgErr)
}

func TestScenario_TraceModeRatesFromTraceMeans(t *testing.T) {
	sc := validScenario()
	sc.Incumbent = IncumbentTrace
	sc.BreakdownGaps = []float64{100, 300} // mean gap 200
	sc.BreakdownHolds = []float64{10, 30}  // mean hold 20

	assert.InDelta(t, 0.1, sc.RhoIn(), 1e-12)
	assert.NoError(t, sc.Validate())
}

func TestLoadScenario_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	body := []byte(`
lam: 0.0627845
mu: 0.627845
k: 3.90054
dist: gamma
phi: 0.25
incumbent: poisson
lam_in: 0.00163492
mu_in: 0.0326984
k_in: 1.85499
dist_in: gamma
capacity: 1
sim_time: 500000
frac: 0.05
iterations: 30
alpha: 0.05
`)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0627845, sc.Lam)
	assert.Equal(t, DistGammaByMoments, sc.Dist)
	assert.Equal(t, IncumbentPoisson, sc.Incumbent)
	assert.Equal(t, 30, sc.Iterations)
	assert.NoError(t, sc.Validate())
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
