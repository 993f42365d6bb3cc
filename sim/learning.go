// The strategic learning loop: a damped best-response dynamic over the
// belief phi, the fraction of customers buying priority access. Each epoch
// simulates the market at the current belief, compares per-tier costs, and
// nudges phi toward the cheaper tier. The two cost definitions of the
// source studies are preserved as distinct variants, not merged.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// CostVariant selects how a tier's cost of service is assembled.
type CostVariant string

const (
	// CostWaitFee prices priority as wait plus the preemption exposure
	// Vp*rho terms plus the join fee.
	CostWaitFee CostVariant = "wait-fee"
	// CostWaitPreemption prices each tier as wait plus a per-preemption
	// penalty on its realized mean preemption count, plus the join fee on
	// the priority side.
	CostWaitPreemption CostVariant = "wait-preemption"
)

// LearnConfig parameterizes the learning loop.
type LearnConfig struct {
	Variant      CostVariant `yaml:"variant"`
	Rounds       int         `yaml:"rounds"`
	Step         float64     `yaml:"step"`          // damped best-response step, in (0,1]
	Fee          float64     `yaml:"fee"`           // cost to join the priority tier
	PreemptValue float64     `yaml:"preempt_value"` // Vp, exposure price (wait-fee variant)
	PreemptCost  float64     `yaml:"preempt_cost"`  // Cp, per-preemption penalty (wait-preemption variant)
	Tolerance    float64     `yaml:"tolerance"`     // cost-equality tolerance; ties leave phi unchanged
}

// Validate rejects loop parameters outside the contract.
func (cfg *LearnConfig) Validate() error {
	if cfg.Step <= 0 || cfg.Step > 1 {
		return configErrorf("learning step must lie in (0,1], got %g", cfg.Step)
	}
	if cfg.Rounds < 1 {
		return configErrorf("rounds must be at least 1, got %d", cfg.Rounds)
	}
	if cfg.Tolerance < 0 {
		return configErrorf("tolerance must be non-negative, got %g", cfg.Tolerance)
	}
	switch cfg.Variant {
	case CostWaitFee, CostWaitPreemption:
		return nil
	default:
		return configErrorf("unknown cost variant %q", cfg.Variant)
	}
}

// BeliefState is the one piece of state shared across epochs. It is
// mutated exactly once per epoch, after every replication of the epoch has
// completed.
type BeliefState struct {
	Phi float64
}

// Update applies the damped best-response step: move toward 1 when
// priority is strictly cheaper, toward 0 when general is, and stay put on
// a tie within tolerance. This is not a gradient method; step only
// controls convergence speed.
func (b *BeliefState) Update(costPriority, costGeneral, step, tolerance float64) {
	switch {
	case costPriority < costGeneral-tolerance:
		b.Phi = math.Min(b.Phi+step*(1-b.Phi), 1)
	case costGeneral < costPriority-tolerance:
		b.Phi = math.Max(b.Phi-step*b.Phi, 0)
	}
}

// EpochRecord is one row of the learning trajectory. The replicated runner
// fills Phi and PhiHalfWidth; the dynamic runner fills the wait columns.
type EpochRecord struct {
	Phi              float64
	PhiHalfWidth     float64
	IncumbentWait    float64
	PriorityWait     float64
	PriorityExpected float64
	GeneralWait      float64
	GeneralExpected  float64
}

// fallbackPhi stands in for an empty tier when realized means are
// undefined; the analytic expectation is evaluated just off the boundary,
// at a per-variant offset.
func (cfg *LearnConfig) fallbackPhi() float64 {
	if cfg.Variant == CostWaitPreemption {
		return 1e-5
	}
	return 1e-3
}

// tierCosts assembles the per-tier costs for one replication under the
// configured variant, substituting analytic expectations for tiers that
// produced no observations.
func (cfg *LearnConfig) tierCosts(sc *Scenario, phi float64, sum ReplicationSummary) (costPriority, costGeneral float64) {
	lamIn, _ := sc.incumbentRates()
	rho, rhoIn := sc.Rho(), sc.RhoIn()
	eps := cfg.fallbackPhi()

	pri, gen := sum.Classes[ClassPriority], sum.Classes[ClassGeneral]
	waitP, preemptP := pri.MeanWait, pri.MeanPreempt
	if pri.Count == 0 {
		_, waitP, _ = expectedWaits(sc, eps)
		preemptP = lamIn / sc.Mu
	}
	waitG, preemptG := gen.MeanWait, gen.MeanPreempt
	if gen.Count == 0 {
		_, _, waitG = expectedWaits(sc, 1-eps)
		preemptG = (lamIn + (1-eps)*sc.Lam) / sc.Mu
	}

	switch cfg.Variant {
	case CostWaitPreemption:
		costPriority = waitP + cfg.PreemptCost*preemptP + cfg.Fee
		costGeneral = waitG + cfg.PreemptCost*preemptG
	default: // CostWaitFee
		costPriority = waitP + cfg.PreemptValue*rhoIn + cfg.Fee
		costGeneral = waitG + cfg.PreemptValue*(rhoIn+phi*rho)
	}
	return costPriority, costGeneral
}

// RunLearning plays the replicated belief game: each epoch runs
// sc.Iterations independent replications at the current phi, every
// replication proposes its own updated belief, and the epoch adopts the
// mean proposal with a confidence half-width over the proposals. The
// trajectory opens with the initial belief and carries one record per
// epoch; any replication failure aborts the whole trajectory.
func RunLearning(sc *Scenario, cfg LearnConfig, key SimulationKey) ([]EpochRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	belief := BeliefState{Phi: sc.Phi}
	trajectory := []EpochRecord{{Phi: belief.Phi}}
	for round := 0; round < cfg.Rounds; round++ {
		logrus.Infof("round %d, phi %.4f", round, belief.Phi)
		epochSc := *sc
		epochSc.Phi = belief.Phi
		summaries, err := replicationSummaries(&epochSc, key, round*sc.Iterations)
		if err != nil {
			return nil, err
		}

		proposals := make([]float64, len(summaries))
		for k, sum := range summaries {
			proposal := belief
			costP, costG := cfg.tierCosts(&epochSc, belief.Phi, sum)
			proposal.Update(costP, costG, cfg.Step, cfg.Tolerance)
			proposals[k] = proposal.Phi
		}
		belief.Phi = stat.Mean(proposals, nil)
		trajectory = append(trajectory, EpochRecord{
			Phi:          belief.Phi,
			PhiHalfWidth: halfWidth(proposals, sc.Alpha),
		})
	}
	return trajectory, nil
}

// RunDynamicLearning plays the single-run belief game: one replication per
// epoch, with the update driven by the analytic expected costs at the
// epoch's belief. Each record reports the belief the epoch ran under,
// realized per-tier waits, and the matching expectations, so the realized
// trajectory can be read against the theory it chases.
func RunDynamicLearning(sc *Scenario, cfg LearnConfig, key SimulationKey) ([]EpochRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	belief := BeliefState{Phi: sc.Phi}
	trajectory := make([]EpochRecord, 0, cfg.Rounds)
	for round := 0; round < cfg.Rounds; round++ {
		logrus.Infof("round %d, phi %.4f", round, belief.Phi)
		epochSc := *sc
		epochSc.Phi = belief.Phi
		sum, err := RunReplication(&epochSc, key.ForReplication(round))
		if err != nil {
			return nil, err
		}

		_, expPri, expGen := expectedWaits(&epochSc, belief.Phi)
		record := EpochRecord{
			Phi:              belief.Phi,
			IncumbentWait:    sum.Classes[ClassIncumbent].MeanWait,
			PriorityWait:     sum.Classes[ClassPriority].MeanWait,
			PriorityExpected: expPri,
			GeneralWait:      sum.Classes[ClassGeneral].MeanWait,
			GeneralExpected:  expGen,
		}
		trajectory = append(trajectory, record)
		belief.Update(expPri+cfg.Fee, expGen, cfg.Step, cfg.Tolerance)
	}
	return trajectory, nil
}
