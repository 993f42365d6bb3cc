// Server occupancy for the preemptive-resume discipline. The server holds
// at most Capacity concurrent customers; the occupant set is always the
// highest-priority ready work, and the lowest-priority occupant is the one
// displaced when a strictly higher-priority customer needs the channel.

package sim

// ServerState tracks the customers currently in service.
type ServerState struct {
	capacity  int
	occupants []*Customer
}

// NewServerState creates an idle server with the given capacity.
func NewServerState(capacity int) *ServerState {
	return &ServerState{capacity: capacity}
}

// Capacity returns the configured number of concurrent service slots.
func (s *ServerState) Capacity() int {
	return s.capacity
}

// InService returns the number of occupied slots.
func (s *ServerState) InService() int {
	return len(s.occupants)
}

// HasCapacity reports whether a free slot remains.
func (s *ServerState) HasCapacity() bool {
	return len(s.occupants) < s.capacity
}

// Idle reports whether no customer is in service.
func (s *ServerState) Idle() bool {
	return len(s.occupants) == 0
}

// Contains reports whether the customer currently occupies a slot.
func (s *ServerState) Contains(c *Customer) bool {
	for _, o := range s.occupants {
		if o == c {
			return true
		}
	}
	return false
}

// Occupants returns the in-service customers. Callers must not mutate the
// returned slice.
func (s *ServerState) Occupants() []*Customer {
	return s.occupants
}

// LowestPriorityOccupant returns the preemption victim candidate: the
// occupant with the largest class index, ties broken toward the most
// recently started service interval. Returns nil when idle.
func (s *ServerState) LowestPriorityOccupant() *Customer {
	var victim *Customer
	for _, o := range s.occupants {
		if victim == nil || o.Class > victim.Class ||
			(o.Class == victim.Class && o.serviceStart > victim.serviceStart) {
			victim = o
		}
	}
	return victim
}

// Add seats a customer. The caller guarantees a free slot exists.
func (s *ServerState) Add(c *Customer) error {
	if !s.HasCapacity() {
		return consistencyErrorf("seating customer %d with all %d slots occupied", c.ID, s.capacity)
	}
	s.occupants = append(s.occupants, c)
	return nil
}

// Remove unseats a customer.
func (s *ServerState) Remove(c *Customer) error {
	for i, o := range s.occupants {
		if o == c {
			s.occupants = append(s.occupants[:i], s.occupants[i+1:]...)
			return nil
		}
	}
	return consistencyErrorf("removing customer %d which is not in service", c.ID)
}
