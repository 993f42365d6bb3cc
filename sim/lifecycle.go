// Tracks every live customer from arrival to departure and converts
// finished records into statistics past the warm-up cutoff.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Tracker creates, follows, and finalizes per-customer records. A customer
// exists in the tracker exactly from its arrival event to its departure;
// departures leave no dangling references.
type Tracker struct {
	warmup float64
	live   map[int64]*Customer
	counts [NumClasses]int // live population per tier, for the area integral
	lastT  float64
	nextID int64
	stats  *ReplicationStats
}

// NewTracker creates a Tracker feeding the given accumulator. Departures
// before the warm-up cutoff are discarded to avoid steady-state bias.
func NewTracker(warmup float64, stats *ReplicationStats) *Tracker {
	return &Tracker{
		warmup: warmup,
		live:   make(map[int64]*Customer),
		stats:  stats,
	}
}

// advance integrates the per-tier population up to now, clipped to the
// post-warm-up window. Population changes only at arrivals and departures,
// so the integral is exact.
func (t *Tracker) advance(now float64) {
	if now > t.warmup {
		from := math.Max(t.lastT, t.warmup)
		if dt := now - from; dt > 0 {
			for class, n := range t.counts {
				if n > 0 {
					t.stats.AddArea(Class(class), float64(n)*dt)
				}
			}
		}
	}
	t.lastT = now
}

// FlushTo closes the population integral at the end of a run.
func (t *Tracker) FlushTo(now float64) {
	t.advance(now)
}

// OnArrival creates and registers a new customer. The required service
// duration is fixed here, at creation, and never resampled.
func (t *Tracker) OnArrival(class Class, now, requiredService float64) *Customer {
	t.advance(now)
	t.counts[class]++
	t.nextID++
	c := &Customer{
		ID:              t.nextID,
		Class:           class,
		ArrivalTime:     now,
		RequiredService: requiredService,
		State:           StateWaiting,
	}
	t.live[c.ID] = c
	return c
}

// OnPreempt credits the interrupted service interval and counts the
// preemption. No work is lost; the customer resumes with its remaining
// service intact.
func (t *Tracker) OnPreempt(c *Customer, elapsed float64) {
	c.ServiceReceived += elapsed
	c.Preemptions++
	c.State = StateWaiting
}

// OnDepart finalizes the record: total system wait is departure minus
// arrival. The observation reaches the accumulator only past the warm-up
// cutoff, and the customer leaves all live tracking either way.
func (t *Tracker) OnDepart(c *Customer, now float64) {
	t.advance(now)
	t.counts[c.Class]--
	c.DepartureTime = now
	c.State = StateDeparted
	delete(t.live, c.ID)
	if now >= t.warmup {
		t.stats.Record(c.Class, now-c.ArrivalTime, c.Preemptions)
	} else {
		logrus.Debugf("[t %.4f] customer %d departed before warm-up cutoff, discarded", now, c.ID)
	}
}

// LiveCount returns how many customers are currently tracked. Entities
// still live when the horizon is reached are discarded without being
// counted.
func (t *Tracker) LiveCount() int {
	return len(t.live)
}
