// Package sim provides the discrete-event engine behind the spectrum-sharing
// market studies: a multi-class, preemptive-resume M/G/1 queue with optional
// incumbent breakdowns, replication-based confidence intervals, and the
// belief-update game played on top of the simulated costs.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - customer.go: the Customer lifecycle (waiting → in service → departed)
//   - event.go: the four event types and their deterministic tie-breaking
//   - simulator.go: the event loop, dispatch, preemption, and completion
//
// # Architecture
//
// One Simulator is one replication: it owns its event heap, class queues,
// server state, variate sources, and statistics, and runs on a single
// goroutine. Parallelism exists only across replications (replication.go)
// and across learning epochs (learning.go); the belief phi is the sole
// state shared between epochs and is updated once per epoch.
//
// Variate sources are tagged variants behind the Sampler interface
// (variate.go): deterministic, exponential, moment-matched Gamma, or trace
// replay. Statistics are per-replication accumulators reduced to summaries
// and aggregated across replications with a normal-approximation interval
// (stats.go); analytic.go carries the closed-form expectations the engine
// is validated against.
package sim
