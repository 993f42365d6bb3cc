// Statistics collection: per-replication accumulators for post-warm-up
// observations, replication summaries, and cross-replication aggregation
// into means with normal-approximation confidence half-widths.

package sim

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ClassAccumulator keeps the running sums for one priority tier within a
// single replication.
type ClassAccumulator struct {
	Count      int64
	WaitSum    float64
	PreemptSum float64
	AreaSum    float64 // time-weighted population, for the mean number in system
}

// ReplicationStats accumulates post-warm-up observations for one
// replication. Replications never share an accumulator.
type ReplicationStats struct {
	perClass []ClassAccumulator
	measured float64 // observation window length, horizon minus warm-up
}

// NewReplicationStats creates an accumulator covering numClasses tiers.
func NewReplicationStats(numClasses int) *ReplicationStats {
	return &ReplicationStats{perClass: make([]ClassAccumulator, numClasses)}
}

// Record appends one departed customer's observations to its tier.
func (s *ReplicationStats) Record(class Class, wait float64, preemptions int) {
	acc := &s.perClass[class]
	acc.Count++
	acc.WaitSum += wait
	acc.PreemptSum += float64(preemptions)
}

// AddArea accumulates one tier's population integrated over a time slice.
func (s *ReplicationStats) AddArea(class Class, area float64) {
	s.perClass[class].AreaSum += area
}

// SetMeasuredTime fixes the observation window the population areas are
// averaged over.
func (s *ReplicationStats) SetMeasuredTime(d float64) {
	s.measured = d
}

// ClassSummary is one tier's replication-level scalar outcomes.
type ClassSummary struct {
	Count       float64 // observed departures past warm-up
	MeanWait    float64 // mean system time; 0 when Count == 0
	MeanNumber  float64 // time-average number in system over the window
	MeanPreempt float64 // mean preemptions per departure; 0 when Count == 0
}

// ReplicationSummary reduces one replication to one scalar per tier per
// metric. Tiers with zero observations report zero means; callers that
// need a value there substitute the analytic expectation.
type ReplicationSummary struct {
	Classes []ClassSummary
}

// FinalizeReplication produces the per-tier replication means.
func (s *ReplicationStats) FinalizeReplication() ReplicationSummary {
	out := ReplicationSummary{Classes: make([]ClassSummary, len(s.perClass))}
	for i, acc := range s.perClass {
		cs := ClassSummary{Count: float64(acc.Count)}
		if acc.Count > 0 {
			cs.MeanWait = acc.WaitSum / float64(acc.Count)
			cs.MeanPreempt = acc.PreemptSum / float64(acc.Count)
		}
		if s.measured > 0 {
			cs.MeanNumber = acc.AreaSum / s.measured
		}
		out.Classes[i] = cs
	}
	return out
}

// WelfareSummary carries the market-level outcomes of one replication.
type WelfareSummary struct {
	CostDiff       float64 // general mean wait minus priority mean wait
	Revenue        float64 // lam * phi * CostDiff
	SocialCustomer float64 // customer-weighted mean wait, priority + general
	SocialAll      float64 // all-tier weighted mean wait
}

// Welfare derives the market outcomes from a replication's means.
func (r ReplicationSummary) Welfare(lam, phi float64) WelfareSummary {
	inc, pri, gen := r.Classes[ClassIncumbent], r.Classes[ClassPriority], r.Classes[ClassGeneral]
	w := WelfareSummary{
		CostDiff: gen.MeanWait - pri.MeanWait,
	}
	w.Revenue = lam * phi * w.CostDiff
	if cust := pri.Count + gen.Count; cust > 0 {
		w.SocialCustomer = (pri.Count*pri.MeanWait + gen.Count*gen.MeanWait) / cust
	}
	if all := inc.Count + pri.Count + gen.Count; all > 0 {
		w.SocialAll = (inc.Count*inc.MeanWait + pri.Count*pri.MeanWait + gen.Count*gen.MeanWait) / all
	}
	return w
}

// ClassEstimate is the aggregated mean and confidence half-width for every
// collected metric of one tier, across replications.
type ClassEstimate struct {
	MeanWait         float64
	WaitHalfWidth    float64
	MeanNumber       float64
	NumberHalfWidth  float64
	MeanPreempt      float64
	PreemptHalfWidth float64
}

// WelfareEstimate aggregates the welfare outcomes across replications.
type WelfareEstimate struct {
	MeanCost          float64
	CostHalfWidth     float64
	MeanRevenue       float64
	RevenueHalfWidth  float64
	MeanSocialAll     float64
	SocialHalfWidth   float64
	MeanSocialCust    float64
	SocialCustHW      float64
}

// zQuantile returns z(1-alpha/2) for the normal-approximation interval.
func zQuantile(alpha float64) float64 {
	return distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - alpha/2)
}

// halfWidth computes z * s / sqrt(n) over per-replication values. With a
// single replication the half-width is undefined and reported as exactly
// zero, never as a spurious interval.
func halfWidth(values []float64, alpha float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}
	return zQuantile(alpha) * stat.StdDev(values, nil) / math.Sqrt(float64(n))
}

// Aggregate combines per-replication summaries into per-tier estimates.
func Aggregate(summaries []ReplicationSummary, alpha float64) []ClassEstimate {
	if len(summaries) == 0 {
		return nil
	}
	numClasses := len(summaries[0].Classes)
	out := make([]ClassEstimate, numClasses)
	for class := 0; class < numClasses; class++ {
		waits := make([]float64, len(summaries))
		numbers := make([]float64, len(summaries))
		preempts := make([]float64, len(summaries))
		for i, s := range summaries {
			waits[i] = s.Classes[class].MeanWait
			numbers[i] = s.Classes[class].MeanNumber
			preempts[i] = s.Classes[class].MeanPreempt
		}
		out[class] = ClassEstimate{
			MeanWait:         stat.Mean(waits, nil),
			WaitHalfWidth:    halfWidth(waits, alpha),
			MeanNumber:       stat.Mean(numbers, nil),
			NumberHalfWidth:  halfWidth(numbers, alpha),
			MeanPreempt:      stat.Mean(preempts, nil),
			PreemptHalfWidth: halfWidth(preempts, alpha),
		}
	}
	return out
}

// AggregateWelfare combines per-replication welfare outcomes.
func AggregateWelfare(summaries []ReplicationSummary, lam, phi, alpha float64) WelfareEstimate {
	costs := make([]float64, len(summaries))
	revenues := make([]float64, len(summaries))
	socialAll := make([]float64, len(summaries))
	socialCust := make([]float64, len(summaries))
	for i, s := range summaries {
		w := s.Welfare(lam, phi)
		costs[i] = w.CostDiff
		revenues[i] = w.Revenue
		socialAll[i] = w.SocialAll
		socialCust[i] = w.SocialCustomer
	}
	return WelfareEstimate{
		MeanCost:         stat.Mean(costs, nil),
		CostHalfWidth:    halfWidth(costs, alpha),
		MeanRevenue:      stat.Mean(revenues, nil),
		RevenueHalfWidth: halfWidth(revenues, alpha),
		MeanSocialAll:    stat.Mean(socialAll, nil),
		SocialHalfWidth:  halfWidth(socialAll, alpha),
		MeanSocialCust:   stat.Mean(socialCust, nil),
		SocialCustHW:     halfWidth(socialCust, alpha),
	}
}
