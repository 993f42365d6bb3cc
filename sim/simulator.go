// sim/simulator.go
package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object holding the logical clock, the system state,
// and the event loop for one replication. It is strictly single-goroutine;
// replications run in parallel by owning independent Simulators.
type Simulator struct {
	Clock   float64
	Horizon float64

	events  *EventHeap
	queues  [NumClasses]*ClassQueue
	server  *ServerState
	tracker *Tracker
	stats   *ReplicationStats

	customers  *customerGenerator
	incumbents *incumbentGenerator
	breakdowns *breakdownGenerator

	scenario *Scenario
	rng      *PartitionedRNG

	nextEventID uint64
}

// NewSimulator wires one replication: fresh queues, server, tracker,
// statistics, and independently seeded variate sources.
func NewSimulator(sc *Scenario, key SimulationKey) (*Simulator, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		Horizon:  sc.SimTime,
		events:   NewEventHeap(),
		server:   NewServerState(sc.Capacity),
		stats:    NewReplicationStats(NumClasses),
		scenario: sc,
		rng:      NewPartitionedRNG(key),
	}
	for class := range s.queues {
		s.queues[class] = NewClassQueue(Class(class))
	}
	s.tracker = NewTracker(sc.Frac*sc.SimTime, s.stats)

	var err error
	if s.customers, err = newCustomerGenerator(sc, s.rng); err != nil {
		return nil, err
	}
	switch sc.Incumbent {
	case IncumbentPoisson:
		if s.incumbents, err = newIncumbentGenerator(sc, s.rng); err != nil {
			return nil, err
		}
	case IncumbentTrace:
		if s.breakdowns, err = newBreakdownGenerator(sc); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Stats exposes the replication accumulator, for finalization after Run.
func (sim *Simulator) Stats() *ReplicationStats {
	return sim.stats
}

// Schedule pushes an event into the time-ordered queue. Event IDs are
// assigned by newBaseEvent, in creation order, for deterministic ties.
func (sim *Simulator) Schedule(ev Event) {
	sim.events.Schedule(ev)
}

func (sim *Simulator) newBaseEvent(ts float64, kind EventKind, class Class) BaseEvent {
	sim.nextEventID++
	return BaseEvent{timestamp: ts, eventID: sim.nextEventID, kind: kind, class: class}
}

// Run drives the event loop until the clock would pass the horizon or the
// queue drains. Customers still in the system at the horizon are discarded
// without being counted.
func (sim *Simulator) Run() error {
	if err := sim.customers.scheduleNext(sim, 0); err != nil {
		return err
	}
	if sim.incumbents != nil {
		if err := sim.incumbents.scheduleNext(sim, 0); err != nil {
			return err
		}
	}
	if sim.breakdowns != nil {
		if err := sim.breakdowns.scheduleNext(sim, 0); err != nil {
			return err
		}
	}

	for sim.events.Len() > 0 {
		ev := sim.events.PopNext()
		if ev.Timestamp() > sim.Horizon {
			break
		}
		sim.Clock = ev.Timestamp()
		logrus.Debugf("[t %012.4f] executing %s", sim.Clock, ev.Kind())
		if err := ev.Execute(sim); err != nil {
			return err
		}
	}
	sim.Clock = math.Min(sim.Clock, sim.Horizon)
	sim.tracker.FlushTo(sim.Horizon)
	sim.stats.SetMeasuredTime(sim.Horizon - sim.tracker.warmup)
	logrus.Debugf("[t %012.4f] replication ended, %d customers in flight discarded",
		sim.Clock, sim.tracker.LiveCount())
	return nil
}

// admit registers an arrival into its class line and re-resolves who holds
// the server.
func (sim *Simulator) admit(c *Customer, now float64) error {
	sim.queues[c.Class].Enqueue(c)
	return sim.dispatch(now)
}

// highestWaiting returns the front of the highest-priority non-empty line.
func (sim *Simulator) highestWaiting() *Customer {
	for _, q := range sim.queues {
		if c := q.Peek(); c != nil {
			return c
		}
	}
	return nil
}

// dispatch enforces the preemptive-resume invariant at the current instant:
// the occupant set is always the highest-priority ready work. Free slots are
// filled in strict priority order, FIFO within class; when full, the lowest
// priority occupant is preempted for any strictly higher-priority waiter.
func (sim *Simulator) dispatch(now float64) error {
	for {
		next := sim.highestWaiting()
		if next == nil {
			return nil
		}
		if sim.server.HasCapacity() {
			sim.queues[next.Class].Dequeue()
			if err := sim.startService(next, now); err != nil {
				return err
			}
			continue
		}
		victim := sim.server.LowestPriorityOccupant()
		if victim == nil || next.Class >= victim.Class {
			return nil
		}
		if err := sim.preempt(victim, now); err != nil {
			return err
		}
	}
}

// startService seats a customer and schedules its completion for the
// remaining service. A new sequence number supersedes any completion event
// left over from an earlier service interval.
func (sim *Simulator) startService(c *Customer, now float64) error {
	if err := sim.server.Add(c); err != nil {
		return err
	}
	c.State = StateInService
	c.serviceStart = now
	c.completionSeq++
	done := now + c.Remaining()
	if c.Breakdown {
		sim.Schedule(&BreakdownEndEvent{
			BaseEvent: sim.newBaseEvent(done, EventKindBreakdownEnd, c.Class),
			Customer:  c,
			seq:       c.completionSeq,
		})
	} else {
		sim.Schedule(&ServiceCompletionEvent{
			BaseEvent: sim.newBaseEvent(done, EventKindServiceCompletion, c.Class),
			Customer:  c,
			seq:       c.completionSeq,
		})
	}
	return nil
}

// preempt interrupts the victim's service with zero delay. Work already
// delivered is credited, the pending completion is superseded, and the
// victim resumes later from the front of its own class line.
func (sim *Simulator) preempt(victim *Customer, now float64) error {
	if victim.State != StateInService {
		return consistencyErrorf("preempting customer %d which is not in service", victim.ID)
	}
	if err := sim.server.Remove(victim); err != nil {
		return err
	}
	elapsed := now - victim.serviceStart
	sim.tracker.OnPreempt(victim, elapsed)
	victim.completionSeq++
	sim.queues[victim.Class].PrependFront(victim)
	logrus.Debugf("[t %012.4f] customer %d (class %d) preempted with %.4f remaining",
		now, victim.ID, victim.Class, victim.Remaining())
	return nil
}

// completeService finalizes a departure. A live completion firing for a
// customer not in service is a scheduling bug, not a recoverable condition.
func (sim *Simulator) completeService(c *Customer, now float64) error {
	if !sim.server.Contains(c) {
		return consistencyErrorf("completion fired for customer %d which is not in service", c.ID)
	}
	delivered := c.ServiceReceived + (now - c.serviceStart)
	if math.Abs(delivered-c.RequiredService) > 1e-9*(1+c.RequiredService) {
		return consistencyErrorf("customer %d completed with %.12f of %.12f service delivered",
			c.ID, delivered, c.RequiredService)
	}
	c.ServiceReceived = c.RequiredService
	if err := sim.server.Remove(c); err != nil {
		return err
	}
	sim.tracker.OnDepart(c, now)
	logrus.Debugf("[t %012.4f] customer %d (class %d) departed after %d preemptions",
		now, c.ID, c.Class, c.Preemptions)
	if c.Breakdown && sim.breakdowns != nil {
		if err := sim.breakdowns.scheduleNext(sim, now); err != nil {
			return err
		}
	}
	return sim.dispatch(now)
}
