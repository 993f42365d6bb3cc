// Runs the independent replications behind one estimate. Each replication
// owns every piece of mutable state, so they fan out across workers freely;
// the only cross-replication artifacts are the finished summaries.

package sim

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// StudyResult is the aggregated outcome of a replication set at one
// parameter point.
type StudyResult struct {
	Phi          float64
	PerClass     []ClassEstimate
	Welfare      WelfareEstimate
	Replications []ReplicationSummary
}

// RunReplication executes a single replication and reduces it to its
// summary. All taxonomy errors are fatal to the replication and propagate.
func RunReplication(sc *Scenario, key SimulationKey) (ReplicationSummary, error) {
	s, err := NewSimulator(sc, key)
	if err != nil {
		return ReplicationSummary{}, err
	}
	if err := s.Run(); err != nil {
		return ReplicationSummary{}, err
	}
	return s.Stats().FinalizeReplication(), nil
}

// replicationSummaries fans sc.Iterations replications out across workers.
// The key offset keeps replication streams disjoint across learning epochs.
func replicationSummaries(sc *Scenario, key SimulationKey, offset int) ([]ReplicationSummary, error) {
	workers := sc.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > sc.Iterations {
		workers = sc.Iterations
	}

	summaries := make([]ReplicationSummary, sc.Iterations)
	errs := make([]error, sc.Iterations)
	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range next {
				logrus.Infof("phi %.3f, replication %d", sc.Phi, r)
				summaries[r], errs[r] = RunReplication(sc, key.ForReplication(offset+r))
			}
		}()
	}
	for r := 0; r < sc.Iterations; r++ {
		next <- r
	}
	close(next)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

// RunReplications executes sc.Iterations independent replications, in
// parallel across workers, and aggregates them into confidence-bounded
// estimates. The first error aborts the whole set; replications are cheap
// to re-run fresh with a corrected configuration.
func RunReplications(sc *Scenario, key SimulationKey) (*StudyResult, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	summaries, err := replicationSummaries(sc, key, 0)
	if err != nil {
		return nil, err
	}
	return &StudyResult{
		Phi:          sc.Phi,
		PerClass:     Aggregate(summaries, sc.Alpha),
		Welfare:      AggregateWelfare(summaries, sc.Lam, sc.Phi, sc.Alpha),
		Replications: summaries,
	}, nil
}
