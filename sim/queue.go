// Implements the per-class waiting lines. Customers are enqueued on arrival
// and served in arrival order within their class; a preempted customer goes
// back to the front of its own line so resumed work is never overtaken by
// a class peer.

package sim

import (
	"fmt"
	"strings"
)

// ClassQueue is the FIFO waiting line for one priority tier. A customer in
// the line is never the one in service and vice versa.
type ClassQueue struct {
	class Class
	queue []*Customer
}

// NewClassQueue creates an empty line for the given tier.
func NewClassQueue(class Class) *ClassQueue {
	return &ClassQueue{class: class}
}

// Enqueue adds a customer to the back of the line.
func (q *ClassQueue) Enqueue(c *Customer) {
	q.queue = append(q.queue, c)
}

// PrependFront inserts a customer at the front of the line. Used for
// preemption: work already received is preserved and the customer resumes
// ahead of every class peer.
func (q *ClassQueue) PrependFront(c *Customer) {
	if c == nil {
		panic("PrependFront: customer must not be nil")
	}
	q.queue = append([]*Customer{c}, q.queue...)
}

// Dequeue removes and returns the customer at the front of the line.
// Returns nil if the line is empty.
func (q *ClassQueue) Dequeue() *Customer {
	if len(q.queue) == 0 {
		return nil
	}
	c := q.queue[0]
	q.queue = q.queue[1:]
	return c
}

// Peek returns the front customer without removing it, or nil.
func (q *ClassQueue) Peek() *Customer {
	if len(q.queue) == 0 {
		return nil
	}
	return q.queue[0]
}

// Len returns the number of customers waiting in the line.
func (q *ClassQueue) Len() int {
	return len(q.queue)
}

func (q *ClassQueue) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "class %d: [", q.class)
	for i, c := range q.queue {
		sb.WriteString(c.String())
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
