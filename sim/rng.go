package sim

import (
	"fmt"
	"hash/fnv"

	"golang.org/x/exp/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical scenario MUST
// produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// ForReplication derives the key for replication r so that independent
// replications draw from disjoint, reproducible streams.
func (k SimulationKey) ForReplication(r int) SimulationKey {
	return SimulationKey(int64(k) ^ fnv1a64(fmt.Sprintf("replication_%d", r)))
}

// === Subsystem Constants ===

const (
	// SubsystemInterarrival is the RNG stream for customer interarrival gaps.
	SubsystemInterarrival = "interarrival"

	// SubsystemService is the RNG stream for customer service durations.
	SubsystemService = "service"

	// SubsystemClassChoice is the RNG stream for the priority-vs-general draw.
	SubsystemClassChoice = "class_choice"

	// SubsystemIncumbent is the RNG stream for incumbent arrivals and holds.
	SubsystemIncumbent = "incumbent"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation: masterSeed XOR fnv1a64(subsystemName). Sources come from
// golang.org/x/exp/rand so they can feed gonum/stat/distuv directly.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine;
// each replication owns its own PartitionedRNG.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derived := uint64(int64(p.key) ^ fnv1a64(name))
	rng := rand.New(rand.NewSource(derived))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
