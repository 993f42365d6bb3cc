package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLearnConfig() LearnConfig {
	return LearnConfig{
		Variant: CostWaitFee,
		Rounds:  5,
		Step:    0.3,
		Fee:     0.5,
	}
}

func TestLearnConfigValidate(t *testing.T) {
	cfg := testLearnConfig()
	assert.NoError(t, cfg.Validate())

	cases := []struct {
		name   string
		mutate func(*LearnConfig)
	}{
		{"zero step", func(c *LearnConfig) { c.Step = 0 }},
		{"step above one", func(c *LearnConfig) { c.Step = 1.5 }},
		{"zero rounds", func(c *LearnConfig) { c.Rounds = 0 }},
		{"negative tolerance", func(c *LearnConfig) { c.Tolerance = -1 }},
		{"unknown variant", func(c *LearnConfig) { c.Variant = "regret" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testLearnConfig()
			tc.mutate(&c)
			var cfgErr *ConfigurationError
			assert.ErrorAs(t, c.Validate(), &cfgErr)
		})
	}
}

func TestBeliefUpdate_MovesTowardCheaperTier(t *testing.T) {
	// Priority strictly cheaper: phi climbs by step*(1-phi).
	b := BeliefState{Phi: 0.4}
	b.Update(1.0, 2.0, 0.5, 0)
	assert.InDelta(t, 0.7, b.Phi, 1e-12)

	// General strictly cheaper: phi shrinks by step*phi.
	b = BeliefState{Phi: 0.4}
	b.Update(2.0, 1.0, 0.5, 0)
	assert.InDelta(t, 0.2, b.Phi, 1e-12)
}

func TestBeliefUpdate_TieLeavesBeliefUnchanged(t *testing.T) {
	b := BeliefState{Phi: 0.4}
	b.Update(1.0, 1.0, 0.5, 0)
	assert.Equal(t, 0.4, b.Phi)

	// A gap inside the tolerance band is still a tie.
	b.Update(1.0, 1.05, 0.5, 0.1)
	assert.Equal(t, 0.4, b.Phi)
}

func TestBeliefUpdate_StaysInUnitInterval(t *testing.T) {
	b := BeliefState{Phi: 1.0}
	b.Update(0.0, 10.0, 1.0, 0)
	assert.Equal(t, 1.0, b.Phi)

	b = BeliefState{Phi: 0.0}
	b.Update(10.0, 0.0, 1.0, 0)
	assert.Equal(t, 0.0, b.Phi)

	// The damped form can never overshoot either boundary.
	b = BeliefState{Phi: 0.9}
	b.Update(0.0, 10.0, 1.0, 0)
	assert.Equal(t, 1.0, b.Phi)
}

func TestRunDynamicLearning_ConvergesMonotonically(t *testing.T) {
	// GIVEN a free priority tier, which is always the cheaper choice
	sc := validScenario()
	sc.Phi = 0.1
	sc.SimTime = 2000
	cfg := testLearnConfig()
	cfg.Fee = 0
	cfg.Rounds = 10

	trajectory, err := RunDynamicLearning(sc, cfg, NewSimulationKey(21))
	require.NoError(t, err)
	require.Len(t, trajectory, cfg.Rounds)

	// THEN the belief climbs toward 1 and never retreats
	for i := 1; i < len(trajectory); i++ {
		assert.Greater(t, trajectory[i].Phi, trajectory[i-1].Phi)
	}
	assert.Greater(t, trajectory[len(trajectory)-1].Phi, 0.9)

	// AND every record carries the expectation its epoch chased
	for _, rec := range trajectory {
		assert.Greater(t, rec.PriorityExpected, 0.0)
		assert.Greater(t, rec.GeneralExpected, rec.PriorityExpected)
	}
}

func TestRunLearning_TrajectoryShape(t *testing.T) {
	sc := validScenario()
	sc.Phi = 0.5
	sc.SimTime = 1000
	sc.Iterations = 3
	cfg := testLearnConfig()
	cfg.Rounds = 3

	trajectory, err := RunLearning(sc, cfg, NewSimulationKey(8))
	require.NoError(t, err)

	// The trajectory opens with the initial belief and adds one record per
	// epoch, each belief kept inside the unit interval.
	require.Len(t, trajectory, cfg.Rounds+1)
	assert.Equal(t, 0.5, trajectory[0].Phi)
	for _, rec := range trajectory {
		assert.GreaterOrEqual(t, rec.Phi, 0.0)
		assert.LessOrEqual(t, rec.Phi, 1.0)
	}
}

func TestRunLearning_SingleReplicationHasZeroHalfWidth(t *testing.T) {
	sc := validScenario()
	sc.SimTime = 1000
	sc.Iterations = 1
	cfg := testLearnConfig()
	cfg.Rounds = 2

	trajectory, err := RunLearning(sc, cfg, NewSimulationKey(9))
	require.NoError(t, err)
	for _, rec := range trajectory {
		assert.Equal(t, 0.0, rec.PhiHalfWidth)
	}
}

func TestTierCosts_EmptyTierUsesAnalyticFallback(t *testing.T) {
	// GIVEN a replication where nobody joined priority
	sc := validScenario()
	cfg := testLearnConfig()
	sum := summaryWith(
		[NumClasses]float64{0, 0, 3.0},
		[NumClasses]float64{0, 0, 100},
		[NumClasses]float64{0, 0, 0},
	)

	costP, costG := cfg.tierCosts(sc, 0.0, sum)

	// THEN the priority cost is the near-boundary expectation plus the fee,
	// and the general cost reflects the realized wait
	_, expPri, _ := expectedWaits(sc, 1e-3)
	assert.InDelta(t, expPri+cfg.Fee, costP, 1e-12)
	assert.InDelta(t, 3.0, costG, 1e-12)
}

func TestTierCosts_FallbackOffsetIsPerVariant(t *testing.T) {
	// GIVEN an empty priority tier under each cost variant
	sc := validScenario()
	sum := summaryWith(
		[NumClasses]float64{0, 0, 3.0},
		[NumClasses]float64{0, 0, 100},
		[NumClasses]float64{0, 0, 0},
	)

	// THEN the wait-fee variant evaluates the boundary at 1e-3 and the
	// wait-preemption variant at 1e-5
	feeCfg := testLearnConfig()
	feeCfg.Fee = 0
	costP, _ := feeCfg.tierCosts(sc, 0.0, sum)
	_, expFee, _ := expectedWaits(sc, 1e-3)
	assert.InDelta(t, expFee, costP, 1e-12)

	preemptCfg := testLearnConfig()
	preemptCfg.Variant = CostWaitPreemption
	preemptCfg.Fee = 0
	preemptCfg.PreemptCost = 0
	costP, _ = preemptCfg.tierCosts(sc, 0.0, sum)
	_, expPreempt, _ := expectedWaits(sc, 1e-5)
	assert.InDelta(t, expPreempt, costP, 1e-12)
	assert.NotEqual(t, expFee, expPreempt)
}

func TestTierCosts_WaitPreemptionVariant(t *testing.T) {
	sc := validScenario()
	cfg := testLearnConfig()
	cfg.Variant = CostWaitPreemption
	cfg.PreemptCost = 2.0
	cfg.Fee = 0.25
	sum := summaryWith(
		[NumClasses]float64{0, 1.0, 3.0},
		[NumClasses]float64{0, 50, 50},
		[NumClasses]float64{0, 0.1, 0.4},
	)

	costP, costG := cfg.tierCosts(sc, 0.5, sum)
	assert.InDelta(t, 1.0+2.0*0.1+0.25, costP, 1e-12)
	assert.InDelta(t, 3.0+2.0*0.4, costG, 1e-12)
}
