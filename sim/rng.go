// Deterministic random streams: one *rand.Rand per pipeline part, all derived from one seed.

package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey is the seed of a reproducible run. Pipelines built from equal
// keys and equal stage specs produce identical request traces.
type SimulationKey int64

// NewSimulationKey wraps a CLI or scenario seed.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// ForReplica derives the key of the replica-th independent replication.
// Distinct replica indices give distinct keys, none equal to k itself.
func (k SimulationKey) ForReplica(replica int) SimulationKey {
	return k.mix(fmt.Sprintf("replica_%d", replica))
}

func (k SimulationKey) mix(label string) SimulationKey {
	h := fnv.New64a()
	h.Write([]byte(label))
	return k ^ SimulationKey(h.Sum64())
}

// SubsystemArrival names the inter-arrival stream. It is seeded with the key
// itself so a single-stream run matches rand.New(rand.NewSource(seed)).
const SubsystemArrival = "arrival"

// SubsystemStage names the service-time stream of the stage at position idx (head = 0).
func SubsystemStage(idx int) string {
	return fmt.Sprintf("stage_%d", idx)
}

// PartitionedRNG hands out one lazily created stream per subsystem name.
// Drawing from one stream never shifts another, so adding a stage leaves the
// arrival sequence untouched. Not safe for concurrent use.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, streams: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the stream for name, creating it on first use.
// Later calls with the same name return the same instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	seed := p.key
	if name != SubsystemArrival {
		seed = p.key.mix(name)
	}
	rng := rand.New(rand.NewSource(int64(seed)))
	p.streams[name] = rng
	return rng
}

// Key returns the key the streams derive from.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}
