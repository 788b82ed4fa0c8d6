package crowd

import "fmt"

// AgentStore holds per-agent state in fixed-capacity, index-addressed
// buffers. Capacity is set once at construction and never changes;
// slots are recycled through the active flags. Inactive slots keep
// their last values until reused; consumers must skip them.
type AgentStore struct {
	capacity int

	pos    []Vec3
	vel    []Vec3
	acc    []Vec3 // scratch, overwritten every tick
	active []bool
}

// NewAgentStore allocates a store with the given slot count.
// Panics if capacity < 1: the population floor is one agent, so a
// smaller store is a misconfiguration, not a runtime condition.
func NewAgentStore(capacity int) *AgentStore {
	if capacity < 1 {
		panic(fmt.Sprintf("crowd: store capacity must be at least 1, got %d", capacity))
	}
	return &AgentStore{
		capacity: capacity,
		pos:      make([]Vec3, capacity),
		vel:      make([]Vec3, capacity),
		acc:      make([]Vec3, capacity),
		active:   make([]bool, capacity),
	}
}

// Capacity returns the fixed slot count.
func (s *AgentStore) Capacity() int {
	return s.capacity
}

// Active reports whether slot i holds a live agent. Indexing past
// capacity panics, as on any accessor here: that is a caller bug.
func (s *AgentStore) Active(i int) bool {
	return s.active[i]
}

// Position returns the position of slot i.
func (s *AgentStore) Position(i int) Vec3 {
	return s.pos[i]
}

// Velocity returns the velocity of slot i.
func (s *AgentStore) Velocity(i int) Vec3 {
	return s.vel[i]
}

// Acceleration returns the acceleration computed for slot i on the
// most recent tick.
func (s *AgentStore) Acceleration(i int) Vec3 {
	return s.acc[i]
}

// activate marks slot i live, overwriting whatever the previous
// occupant left behind.
func (s *AgentStore) activate(i int, pos Vec3) {
	s.pos[i] = pos
	s.vel[i] = Vec3{}
	s.acc[i] = Vec3{}
	s.active[i] = true
}

// deactivate frees slot i. Numeric fields are left stale; an inactive
// slot is unobservable and activate overwrites it on reuse.
func (s *AgentStore) deactivate(i int) {
	s.active[i] = false
}
