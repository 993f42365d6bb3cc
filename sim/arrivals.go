// Arrival generators: the Poisson customer stream (with the phi draw that
// splits it into priority and general tiers), the Poisson incumbent stream,
// and the trace-driven breakdown chain. Each generator keeps exactly one
// arrival pending and schedules its successor while executing it.

package sim

import (
	"golang.org/x/exp/rand"
)

// arrivalGenerator is the behavior behind a CustomerArrivalEvent.
type arrivalGenerator interface {
	onArrival(sim *Simulator, ev *CustomerArrivalEvent) error
}

// === Customer stream ===

// customerGenerator produces the commercial stream. Each arrival rolls the
// class draw: with the thinned incumbent mode a theta-fraction becomes
// incumbent traffic, and the rest joins priority with probability phi.
type customerGenerator struct {
	interarrival Sampler
	service      Sampler
	serviceIn    Sampler // thinned-mode incumbent service; nil otherwise
	choice       *rand.Rand
	phi          float64
	theta        float64
}

func newCustomerGenerator(sc *Scenario, rng *PartitionedRNG) (*customerGenerator, error) {
	inter, err := NewExponentialSampler(sc.Lam, rng.ForSubsystem(SubsystemInterarrival))
	if err != nil {
		return nil, err
	}
	service, err := NewServiceSampler(sc.Dist, sc.Mu, sc.K, rng.ForSubsystem(SubsystemService))
	if err != nil {
		return nil, err
	}
	g := &customerGenerator{
		interarrival: inter,
		service:      service,
		choice:       rng.ForSubsystem(SubsystemClassChoice),
		phi:          sc.Phi,
	}
	if sc.Incumbent == IncumbentThinned {
		g.theta = sc.Theta
		g.serviceIn, err = NewServiceSampler(sc.DistIn, sc.MuIn, sc.KIn, rng.ForSubsystem(SubsystemIncumbent))
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

// scheduleNext samples the next interarrival gap and the arriving class,
// and books the arrival. The class is fixed at scheduling time so that
// equal-timestamp arrivals order deterministically by tier.
func (g *customerGenerator) scheduleNext(sim *Simulator, now float64) error {
	gap, err := g.interarrival.Sample()
	if err != nil {
		return err
	}
	class := g.drawClass()
	sim.Schedule(&CustomerArrivalEvent{
		BaseEvent: sim.newBaseEvent(now+gap, EventKindCustomerArrival, class),
		generator: g,
	})
	return nil
}

// drawClass rolls the tier membership. The draw uses 1-U so the boundaries
// are exact: phi == 1 always selects priority and phi == 0 never does.
func (g *customerGenerator) drawClass() Class {
	if g.theta > 0 && g.choice.Float64() < g.theta {
		return ClassIncumbent
	}
	if 1-g.choice.Float64() <= g.phi {
		return ClassPriority
	}
	return ClassGeneral
}

func (g *customerGenerator) onArrival(sim *Simulator, ev *CustomerArrivalEvent) error {
	serviceSampler := g.service
	if ev.tieClass() == ClassIncumbent {
		serviceSampler = g.serviceIn
	}
	required, err := serviceSampler.Sample()
	if err != nil {
		return err
	}
	c := sim.tracker.OnArrival(ev.tieClass(), ev.Timestamp(), required)
	if err := sim.admit(c, ev.Timestamp()); err != nil {
		return err
	}
	return g.scheduleNext(sim, ev.Timestamp())
}

// === Poisson incumbent stream ===

// incumbentGenerator produces the independent incumbent stream of the full
// active-sharing model: Poisson arrivals, own service distribution, always
// class 0.
type incumbentGenerator struct {
	interarrival Sampler
	service      Sampler
}

func newIncumbentGenerator(sc *Scenario, rng *PartitionedRNG) (*incumbentGenerator, error) {
	inter, err := NewExponentialSampler(sc.LamIn, rng.ForSubsystem(SubsystemIncumbent))
	if err != nil {
		return nil, err
	}
	service, err := NewServiceSampler(sc.DistIn, sc.MuIn, sc.KIn, rng.ForSubsystem(SubsystemIncumbent))
	if err != nil {
		return nil, err
	}
	return &incumbentGenerator{interarrival: inter, service: service}, nil
}

func (g *incumbentGenerator) scheduleNext(sim *Simulator, now float64) error {
	gap, err := g.interarrival.Sample()
	if err != nil {
		return err
	}
	sim.Schedule(&CustomerArrivalEvent{
		BaseEvent: sim.newBaseEvent(now+gap, EventKindCustomerArrival, ClassIncumbent),
		generator: g,
	})
	return nil
}

func (g *incumbentGenerator) onArrival(sim *Simulator, ev *CustomerArrivalEvent) error {
	required, err := g.service.Sample()
	if err != nil {
		return err
	}
	c := sim.tracker.OnArrival(ClassIncumbent, ev.Timestamp(), required)
	if err := sim.admit(c, ev.Timestamp()); err != nil {
		return err
	}
	return g.scheduleNext(sim, ev.Timestamp())
}

// === Trace-driven breakdown chain ===

// breakdownGenerator replays recorded incumbent activity: the next outage
// begins one recorded gap after the previous hold releases the server, and
// occupies it for the recorded duration. Gaps and holds are consumed
// strictly in order; requesting more than the trace provides fails the
// replication with an ExhaustedTraceError.
type breakdownGenerator struct {
	gaps  *TraceSampler
	holds *TraceSampler
}

func newBreakdownGenerator(sc *Scenario) (*breakdownGenerator, error) {
	gaps, err := NewTraceSampler(sc.BreakdownGaps)
	if err != nil {
		return nil, err
	}
	holds, err := NewTraceSampler(sc.BreakdownHolds)
	if err != nil {
		return nil, err
	}
	return &breakdownGenerator{gaps: gaps, holds: holds}, nil
}

// scheduleNext books the next BreakdownStart one recorded gap from now.
// Called once at the start of the run and again at each BreakdownEnd.
func (g *breakdownGenerator) scheduleNext(sim *Simulator, now float64) error {
	gap, err := g.gaps.Sample()
	if err != nil {
		return err
	}
	sim.Schedule(&BreakdownStartEvent{
		BaseEvent: sim.newBaseEvent(now+gap, EventKindBreakdownStart, ClassIncumbent),
		generator: g,
	})
	return nil
}

// onBreakdownStart seizes the channel as an infinite-priority arrival whose
// hold time is the next recorded duration.
func (g *breakdownGenerator) onBreakdownStart(sim *Simulator, now float64) error {
	hold, err := g.holds.Sample()
	if err != nil {
		return err
	}
	c := sim.tracker.OnArrival(ClassIncumbent, now, hold)
	c.Breakdown = true
	return sim.admit(c, now)
}
