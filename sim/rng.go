package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey, configuration, and command
// sequence MUST produce bit-for-bit identical tag histories.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

const (
	// SubsystemOrchestrator is the RNG stream for the orchestrator's
	// inspection/packing scrap decisions.
	SubsystemOrchestrator = "orchestrator"

	// SubsystemFlow is the RNG stream for the flow engine's yield
	// decisions.
	SubsystemFlow = "flow"

	// SubsystemInspection is the RNG stream for the inspection
	// machine's internal reject decisions.
	SubsystemInspection = "inspection"
)

// PartitionedRNG provides deterministically seeded RNG streams, one per
// subsystem. Each stream is owned by exactly one component and consumed
// in a globally ordered fashion inside the tick; call sites never carry
// their own seeds. Derivation: masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: none. The core is single-threaded by contract.
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

// ForSubsystem returns the deterministically seeded RNG for the named
// subsystem. The same name always returns the same *rand.Rand instance.
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	fmt.Fprint(h, s)
	return int64(h.Sum64())
}
