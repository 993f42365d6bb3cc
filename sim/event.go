package sim

import "github.com/sirupsen/logrus"

// EventKind discriminates the four event types driving the engine.
type EventKind int

const (
	EventKindBreakdownStart EventKind = iota
	EventKindBreakdownEnd
	EventKindCustomerArrival
	EventKindServiceCompletion
)

// eventKindPriority breaks timestamp ties: breakdown events first, then
// arrivals, then completions. Arrivals at equal timestamps are further
// ordered by class (higher-priority class first) and finally by event ID,
// keeping preemption semantics deterministic.
var eventKindPriority = map[EventKind]int{
	EventKindBreakdownStart:    0,
	EventKindBreakdownEnd:      1,
	EventKindCustomerArrival:   2,
	EventKindServiceCompletion: 3,
}

func (k EventKind) String() string {
	switch k {
	case EventKindBreakdownStart:
		return "BreakdownStart"
	case EventKindBreakdownEnd:
		return "BreakdownEnd"
	case EventKindCustomerArrival:
		return "CustomerArrival"
	case EventKindServiceCompletion:
		return "ServiceCompletion"
	}
	return "Unknown"
}

// Event defines the interface for all simulation events. Each event has a
// timestamp, a stable per-run ID for deterministic tie-breaking, a kind,
// and an Execute method that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	EventID() uint64
	Kind() EventKind
	// tieClass orders equal-timestamp events of the same kind; arrivals
	// report their class, other kinds report 0.
	tieClass() Class
	Execute(sim *Simulator) error
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	timestamp float64
	eventID   uint64
	kind      EventKind
	class     Class
}

func (e *BaseEvent) Timestamp() float64 { return e.timestamp }
func (e *BaseEvent) EventID() uint64    { return e.eventID }
func (e *BaseEvent) Kind() EventKind    { return e.kind }
func (e *BaseEvent) tieClass() Class    { return e.class }

// CustomerArrivalEvent represents the arrival of one customer. Executing it
// registers the customer, offers it to the server, and schedules the next
// arrival from the owning generator.
type CustomerArrivalEvent struct {
	BaseEvent
	generator arrivalGenerator
}

func (e *CustomerArrivalEvent) Execute(sim *Simulator) error {
	return e.generator.onArrival(sim, e)
}

// ServiceCompletionEvent fires when a customer's current service interval
// would finish. It is superseded (and silently dropped) when the customer
// was preempted after it was scheduled.
type ServiceCompletionEvent struct {
	BaseEvent
	Customer *Customer
	seq      uint64
}

func (e *ServiceCompletionEvent) Execute(sim *Simulator) error {
	if e.seq != e.Customer.completionSeq {
		// Superseded by a preemption; the rescheduled completion governs.
		logrus.Debugf("[t %.4f] stale completion for customer %d dropped", e.timestamp, e.Customer.ID)
		return nil
	}
	return sim.completeService(e.Customer, e.timestamp)
}

// BreakdownStartEvent is the trace-driven incumbent seizing the channel:
// an infinite-priority arrival whose hold time came from the trace.
type BreakdownStartEvent struct {
	BaseEvent
	generator *breakdownGenerator
}

func (e *BreakdownStartEvent) Execute(sim *Simulator) error {
	return e.generator.onBreakdownStart(sim, e.timestamp)
}

// BreakdownEndEvent is the completion of a trace-driven incumbent hold.
// It releases the server and chains the next BreakdownStart from the trace.
type BreakdownEndEvent struct {
	BaseEvent
	Customer *Customer
	seq      uint64
}

func (e *BreakdownEndEvent) Execute(sim *Simulator) error {
	if e.seq != e.Customer.completionSeq {
		return consistencyErrorf("breakdown end superseded for incumbent %d; incumbents are never preempted", e.Customer.ID)
	}
	return sim.completeService(e.Customer, e.timestamp)
}
