package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryWith(waits, counts, preempts [NumClasses]float64) ReplicationSummary {
	out := ReplicationSummary{Classes: make([]ClassSummary, NumClasses)}
	for i := 0; i < NumClasses; i++ {
		out.Classes[i] = ClassSummary{
			Count:       counts[i],
			MeanWait:    waits[i],
			MeanNumber:  counts[i] / 100,
			MeanPreempt: preempts[i],
		}
	}
	return out
}

func TestReplicationStats_Finalize(t *testing.T) {
	s := NewReplicationStats(NumClasses)
	s.Record(ClassPriority, 2.0, 0)
	s.Record(ClassPriority, 4.0, 2)
	s.Record(ClassGeneral, 10.0, 1)

	sum := s.FinalizeReplication()
	assert.Equal(t, 0.0, sum.Classes[ClassIncumbent].Count)
	assert.Equal(t, 0.0, sum.Classes[ClassIncumbent].MeanWait)
	assert.Equal(t, 2.0, sum.Classes[ClassPriority].Count)
	assert.Equal(t, 3.0, sum.Classes[ClassPriority].MeanWait)
	assert.Equal(t, 1.0, sum.Classes[ClassPriority].MeanPreempt)
	assert.Equal(t, 10.0, sum.Classes[ClassGeneral].MeanWait)
}

func TestReplicationStats_MeanNumberFromArea(t *testing.T) {
	// GIVEN a population integral of 50 over a 25-unit window
	s := NewReplicationStats(NumClasses)
	s.AddArea(ClassGeneral, 50)
	s.SetMeasuredTime(25)

	sum := s.FinalizeReplication()
	assert.Equal(t, 2.0, sum.Classes[ClassGeneral].MeanNumber)
	assert.Equal(t, 0.0, sum.Classes[ClassPriority].MeanNumber)
}

func TestHalfWidth_SingleReplicationIsExactlyZero(t *testing.T) {
	// A single replication carries no dispersion information; the interval
	// must be exactly zero, not NaN and not a spurious width.
	assert.Equal(t, 0.0, halfWidth([]float64{3.7}, 0.05))
	assert.Equal(t, 0.0, halfWidth(nil, 0.05))
}

func TestHalfWidth_MatchesNormalApproximation(t *testing.T) {
	// GIVEN four values with sample standard deviation 2 about mean 5
	values := []float64{3, 7, 3, 7}
	sd := math.Sqrt((4 + 4 + 4 + 4) / 3.0)

	// THEN the 95 percent half-width is z(0.975) * s / sqrt(n)
	got := halfWidth(values, 0.05)
	want := 1.9599639845400545 * sd / 2
	assert.InDelta(t, want, got, 1e-9)
}

func TestAggregate_DegenerateWithOneReplication(t *testing.T) {
	sum := summaryWith(
		[NumClasses]float64{0, 1.5, 4.0},
		[NumClasses]float64{0, 100, 300},
		[NumClasses]float64{0, 0.1, 0.8},
	)
	est := Aggregate([]ReplicationSummary{sum}, 0.05)
	require.Len(t, est, NumClasses)
	for class := 0; class < NumClasses; class++ {
		assert.Equal(t, 0.0, est[class].WaitHalfWidth)
		assert.Equal(t, 0.0, est[class].NumberHalfWidth)
		assert.Equal(t, 0.0, est[class].PreemptHalfWidth)
	}
	assert.Equal(t, 1.5, est[ClassPriority].MeanWait)
	assert.Equal(t, 3.0, est[ClassGeneral].MeanNumber)
}

func TestAggregate_MeansAcrossReplications(t *testing.T) {
	a := summaryWith([NumClasses]float64{0, 2, 6}, [NumClasses]float64{0, 10, 30}, [NumClasses]float64{0, 0, 1})
	b := summaryWith([NumClasses]float64{0, 4, 10}, [NumClasses]float64{0, 20, 50}, [NumClasses]float64{0, 0, 3})

	est := Aggregate([]ReplicationSummary{a, b}, 0.05)
	assert.Equal(t, 3.0, est[ClassPriority].MeanWait)
	assert.Equal(t, 8.0, est[ClassGeneral].MeanWait)
	assert.Equal(t, 0.4, est[ClassGeneral].MeanNumber)
	assert.Equal(t, 2.0, est[ClassGeneral].MeanPreempt)
	assert.Greater(t, est[ClassGeneral].WaitHalfWidth, 0.0)
}

func TestWelfare_DerivedOutcomes(t *testing.T) {
	// GIVEN a replication with cheaper priority service
	sum := summaryWith(
		[NumClasses]float64{5, 2, 6},
		[NumClasses]float64{10, 30, 60},
		[NumClasses]float64{0, 0, 0},
	)

	// WHEN deriving the market outcomes at lam = 0.5, phi = 0.4
	w := sum.Welfare(0.5, 0.4)

	// THEN the revenue prices the wait gap over the priority flow
	assert.InDelta(t, 4.0, w.CostDiff, 1e-12)
	assert.InDelta(t, 0.5*0.4*4.0, w.Revenue, 1e-12)
	assert.InDelta(t, (30*2.0+60*6.0)/90, w.SocialCustomer, 1e-12)
	assert.InDelta(t, (10*5.0+30*2.0+60*6.0)/100, w.SocialAll, 1e-12)
}

func TestWelfare_EmptySystemIsZero(t *testing.T) {
	w := summaryWith([NumClasses]float64{}, [NumClasses]float64{}, [NumClasses]float64{}).Welfare(0.5, 0.5)
	assert.Equal(t, 0.0, w.SocialCustomer)
	assert.Equal(t, 0.0, w.SocialAll)
}
