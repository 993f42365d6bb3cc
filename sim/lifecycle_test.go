package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_WarmupDepartureDiscarded(t *testing.T) {
	// GIVEN a tracker with the warm-up cutoff at t = 100
	stats := NewReplicationStats(NumClasses)
	tr := NewTracker(100, stats)

	// WHEN one customer departs before the cutoff and one after
	early := tr.OnArrival(ClassGeneral, 10, 5)
	tr.OnDepart(early, 50)
	late := tr.OnArrival(ClassGeneral, 90, 5)
	tr.OnDepart(late, 110)

	// THEN only the post-cutoff departure is counted, but both leave the
	// live set
	sum := stats.FinalizeReplication()
	assert.Equal(t, 1.0, sum.Classes[ClassGeneral].Count)
	assert.Equal(t, 20.0, sum.Classes[ClassGeneral].MeanWait)
	assert.Equal(t, 0, tr.LiveCount())
	assert.Equal(t, StateDeparted, early.State)
}

func TestTracker_PreemptCreditsWork(t *testing.T) {
	tr := NewTracker(0, NewReplicationStats(NumClasses))
	c := tr.OnArrival(ClassGeneral, 0, 10)
	assert.Equal(t, 10.0, c.Remaining())

	tr.OnPreempt(c, 4)
	assert.Equal(t, 4.0, c.ServiceReceived)
	assert.Equal(t, 6.0, c.Remaining())
	assert.Equal(t, 1, c.Preemptions)
	assert.Equal(t, StateWaiting, c.State)

	tr.OnPreempt(c, 2.5)
	assert.Equal(t, 3.5, c.Remaining())
	assert.Equal(t, 2, c.Preemptions)
}

func TestTracker_PopulationIntegral(t *testing.T) {
	// GIVEN two overlapping sojourns: [0,10] and [4,6]
	stats := NewReplicationStats(NumClasses)
	tr := NewTracker(0, stats)
	a := tr.OnArrival(ClassGeneral, 0, 1)
	b := tr.OnArrival(ClassGeneral, 4, 1)
	tr.OnDepart(b, 6)
	tr.OnDepart(a, 10)
	tr.FlushTo(20)
	stats.SetMeasuredTime(20)

	// THEN the time-average population is (10 + 2) / 20
	sum := stats.FinalizeReplication()
	assert.InDelta(t, 0.6, sum.Classes[ClassGeneral].MeanNumber, 1e-12)
}

func TestTracker_PopulationIntegralSkipsWarmup(t *testing.T) {
	// GIVEN one customer present for [0,10] with the cutoff at t = 5
	stats := NewReplicationStats(NumClasses)
	tr := NewTracker(5, stats)
	c := tr.OnArrival(ClassPriority, 0, 1)
	tr.OnDepart(c, 10)
	tr.FlushTo(15)
	stats.SetMeasuredTime(10)

	// THEN only the post-cutoff half of the sojourn is integrated
	sum := stats.FinalizeReplication()
	assert.InDelta(t, 0.5, sum.Classes[ClassPriority].MeanNumber, 1e-12)
}

func TestTracker_IDsAreUniqueAndLiveCountTracks(t *testing.T) {
	tr := NewTracker(0, NewReplicationStats(NumClasses))
	a := tr.OnArrival(ClassPriority, 0, 1)
	b := tr.OnArrival(ClassGeneral, 0, 1)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, tr.LiveCount())
	tr.OnDepart(a, 1)
	assert.Equal(t, 1, tr.LiveCount())
}
