// Defines the Customer entity that models one arriving unit of work, and
// its lifecycle through the preemptive-resume server.

package sim

import "fmt"

// Class is an ordered priority tier; lower index means higher priority.
type Class int

// Tiers of the spectrum-sharing model. Class 0 is the incumbent so the
// event and queue orderings sort naturally, mirroring the access hierarchy.
const (
	ClassIncumbent Class = 0
	ClassPriority  Class = 1
	ClassGeneral   Class = 2

	// NumClasses is the number of tiers in the fixed topology. The
	// incumbent line simply stays empty when no incumbent is modeled.
	NumClasses = 3
)

// CustomerState tracks where a customer currently lives.
type CustomerState string

const (
	StateWaiting   CustomerState = "waiting"
	StateInService CustomerState = "in_service"
	StateDeparted  CustomerState = "departed"
)

// Customer models a single unit of work. Required service is sampled once
// at arrival and never resampled; ServiceReceived only grows, only while
// the customer occupies the server, and the customer departs exactly when
// it reaches RequiredService.
type Customer struct {
	ID    int64
	Class Class

	ArrivalTime     float64
	RequiredService float64
	ServiceReceived float64
	Preemptions     int
	DepartureTime   float64

	State CustomerState

	// Breakdown marks trace-driven incumbent occupancy so its completion is
	// typed BreakdownEnd and chains the next BreakdownStart.
	Breakdown bool

	// serviceStart is the clock value of the current service interval;
	// valid only while State == StateInService.
	serviceStart float64

	// completionSeq invalidates completion events scheduled for earlier
	// service intervals. A completion fires only if its sequence matches.
	completionSeq uint64
}

// Remaining returns the service still owed to the customer.
func (c *Customer) Remaining() float64 {
	return c.RequiredService - c.ServiceReceived
}

func (c *Customer) String() string {
	return fmt.Sprintf("Customer(ID: %d, Class: %d, State: %s, Arrival: %.4f, Remaining: %.4f)",
		c.ID, c.Class, c.State, c.ArrivalTime, c.Remaining())
}
