// Package crowd implements a leader-following flocking simulation over
// fixed-capacity agent buffers. Each tick reads a snapshot of the
// whole population, computes steering and integration for every agent
// in parallel, and applies the results in one pass, so sequential and
// parallel execution produce identical state. Population size changes
// through grow/shrink/multiply operations that clamp to [1, max size]
// and notify registered listeners.
package crowd

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/veldt-labs/throng/telemetry"
)

// Options configures a new Crowd.
type Options struct {
	// Capacity is the fixed slot count of the agent store. Must be at
	// least 1; New panics otherwise.
	Capacity int

	// MaxSize is the population ceiling. Zero or out-of-range values
	// fall back to Capacity.
	MaxSize int

	// InitialSize is the starting population, clamped to [1, MaxSize].
	InitialSize int

	// SpawnRadius is the placement spread around the leader for newly
	// activated agents. Values <= 0 fall back to 1.
	SpawnRadius float32

	// Seed drives spawn placement. The same seed and call sequence
	// reproduce the same simulation.
	Seed int64

	// Leader is the initial leader position.
	Leader Vec3

	// Params are the steering parameters. Adjustable later through
	// SetParams.
	Params SteerParams

	// Perf receives tick timing. Nil allocates a collector with the
	// default window.
	Perf *telemetry.PerfCollector
}

// Crowd owns the agent store and drives it tick by tick. Methods are
// not safe for concurrent use: the caller serializes ticks, population
// changes and parameter updates, and Crowd panics when that contract
// is broken.
type Crowd struct {
	store *AgentStore
	step  *stepState
	rng   *rand.Rand
	seed  int64

	params       SteerParams
	leader       Vec3
	attractor    Vec3
	attractorSet bool
	spawnRadius  float32

	maxSize int
	size    int
	ticks   int32

	ticking   atomic.Bool
	listeners []func(PopulationChange)

	perf *telemetry.PerfCollector
}

// New builds a crowd and spawns its initial population near the
// leader. Panics if Capacity < 1.
func New(opts Options) *Crowd {
	store := NewAgentStore(opts.Capacity)

	maxSize := opts.MaxSize
	if maxSize <= 0 || maxSize > store.capacity {
		maxSize = store.capacity
	}

	spawnRadius := opts.SpawnRadius
	if spawnRadius <= 0 {
		spawnRadius = 1
	}

	perf := opts.Perf
	if perf == nil {
		perf = telemetry.NewPerfCollector(0)
	}

	c := &Crowd{
		store:       store,
		step:        newStepState(),
		rng:         rand.New(rand.NewSource(opts.Seed)),
		seed:        opts.Seed,
		params:      opts.Params,
		leader:      opts.Leader,
		spawnRadius: spawnRadius,
		maxSize:     maxSize,
		perf:        perf,
	}

	initial := opts.InitialSize
	if initial < 1 {
		initial = 1
	}
	if initial > maxSize {
		initial = maxSize
	}
	c.grow(initial, CauseGrow)

	return c
}

// Close stops the worker pool. The crowd must not be ticked after.
func (c *Crowd) Close() {
	c.step.stopWorkers()
}

// SetLeaderPosition updates the position the crowd follows. Called by
// the owning loop before each tick, or whenever the leader moves.
func (c *Crowd) SetLeaderPosition(pos Vec3) {
	c.assertIdle("SetLeaderPosition")
	c.leader = pos
}

// SetAttractor sets the secondary target agents seek while close to
// the leader. Until it is set, agents near the leader keep seeking the
// leader itself.
func (c *Crowd) SetAttractor(pos Vec3) {
	c.assertIdle("SetAttractor")
	c.attractor = pos
	c.attractorSet = true
}

// SetParams replaces the steering parameters for subsequent ticks.
func (c *Crowd) SetParams(p SteerParams) {
	c.assertIdle("SetParams")
	c.params = p
}

// Params returns the current steering parameters.
func (c *Crowd) Params() SteerParams {
	return c.params
}

// Size returns the active population.
func (c *Crowd) Size() int {
	return c.size
}

// MaxSize returns the population ceiling.
func (c *Crowd) MaxSize() int {
	return c.maxSize
}

// Capacity returns the agent store's fixed slot count.
func (c *Crowd) Capacity() int {
	return c.store.capacity
}

// Ticks returns the number of completed ticks.
func (c *Crowd) Ticks() int32 {
	return c.ticks
}

// Perf returns the crowd's performance collector.
func (c *Crowd) Perf() *telemetry.PerfCollector {
	return c.perf
}

// Centroid returns the mean position of the active population, or the
// zero vector for an empty store.
func (c *Crowd) Centroid() Vec3 {
	var sum Vec3
	n := 0
	for i, active := range c.store.active {
		if !active {
			continue
		}
		sum = sum.Add(c.store.pos[i])
		n++
	}
	if n == 0 {
		return Vec3{}
	}
	return sum.Scale(1 / float32(n))
}

// Tick advances the simulation by dt seconds: snapshot the active
// agents, compute steering and integration against that snapshot, and
// apply the results. Ticks are strictly sequential; Tick panics if
// reentered.
func (c *Crowd) Tick(dt float32) {
	if !c.ticking.CompareAndSwap(false, true) {
		panic("crowd: Tick reentered; ticks must run one at a time")
	}
	defer c.ticking.Store(false)

	c.perf.StartTick()
	defer c.perf.EndTick()

	st := c.step
	st.params = c.params
	st.leader = c.leader
	st.attractor = c.attractor
	if !c.attractorSet {
		st.attractor = c.leader
	}

	// Phase A: snapshot active agents in slot order.
	c.perf.StartPhase(telemetry.PhaseSnapshot)
	st.snapshots = st.snapshots[:0]
	for i, active := range c.store.active {
		if !active {
			continue
		}
		st.snapshots = append(st.snapshots, agentSnapshot{
			Slot: i,
			Pos:  c.store.pos[i],
			Vel:  c.store.vel[i],
		})
	}

	n := len(st.snapshots)
	if n == 0 {
		c.ticks++
		return
	}

	if cap(st.intents) < n {
		st.intents = make([]intent, n)
	}
	st.intents = st.intents[:n]

	// Phase B: compute, parallel only when the handoff pays for itself.
	c.perf.StartPhase(telemetry.PhaseSteer)
	if n < parallelThreshold {
		st.computeChunk(0, n, dt)
	} else {
		st.computeParallel(n, dt)
	}

	// Phase C: apply intents single-threaded.
	c.perf.StartPhase(telemetry.PhaseApply)
	for i := range st.intents {
		in := &st.intents[i]
		c.store.acc[in.Slot] = in.Acc
		c.store.vel[in.Slot] = in.Vel
		c.store.pos[in.Slot] = in.Pos
	}

	c.ticks++
}

// Snapshot captures the full crowd state for persistence or replay.
func (c *Crowd) Snapshot() *telemetry.Snapshot {
	s := &telemetry.Snapshot{
		Version:      telemetry.SnapshotVersion,
		RNGSeed:      c.seed,
		Tick:         c.ticks,
		Capacity:     c.store.capacity,
		MaxSize:      c.maxSize,
		Leader:       vec3Array(c.leader),
		Attractor:    vec3Array(c.attractor),
		HasAttractor: c.attractorSet,
		Params: telemetry.SnapshotParams{
			Speed:            c.params.Speed,
			SeparationRadius: c.params.SeparationRadius,
			AlignmentRadius:  c.params.AlignmentRadius,
			CohesionRadius:   c.params.CohesionRadius,
			SeparationWeight: c.params.SeparationWeight,
			AlignmentWeight:  c.params.AlignmentWeight,
			CohesionWeight:   c.params.CohesionWeight,
			SeekSwitch:       c.params.SeekSwitch,
		},
	}

	for i, active := range c.store.active {
		if !active {
			continue
		}
		s.Agents = append(s.Agents, telemetry.AgentState{
			Slot: i,
			Pos:  vec3Array(c.store.pos[i]),
			Vel:  vec3Array(c.store.vel[i]),
		})
	}

	return s
}

// Restore replaces the crowd state with a previously captured
// snapshot. Spawn randomness restarts from the snapshot's recorded
// seed. The snapshot is validated before any state changes: unknown
// versions, empty or oversized populations, out-of-range slots and
// repeated slots are rejected.
func (c *Crowd) Restore(s *telemetry.Snapshot) error {
	c.assertIdle("Restore")

	if s.Version != telemetry.SnapshotVersion {
		return fmt.Errorf("snapshot version %d not supported (want %d)", s.Version, telemetry.SnapshotVersion)
	}
	if len(s.Agents) == 0 {
		return fmt.Errorf("snapshot holds no agents")
	}

	maxSize := s.MaxSize
	if maxSize <= 0 || maxSize > c.store.capacity {
		maxSize = c.store.capacity
	}
	if len(s.Agents) > maxSize {
		return fmt.Errorf("snapshot holds %d agents, max size is %d", len(s.Agents), maxSize)
	}

	seen := make([]bool, c.store.capacity)
	for _, a := range s.Agents {
		if a.Slot < 0 || a.Slot >= c.store.capacity {
			return fmt.Errorf("snapshot slot %d outside store capacity %d", a.Slot, c.store.capacity)
		}
		if seen[a.Slot] {
			return fmt.Errorf("snapshot slot %d appears twice", a.Slot)
		}
		seen[a.Slot] = true
	}

	for i := range c.store.active {
		c.store.active[i] = false
	}
	for _, a := range s.Agents {
		c.store.activate(a.Slot, arrayVec3(a.Pos))
		c.store.vel[a.Slot] = arrayVec3(a.Vel)
	}

	c.size = len(s.Agents)
	c.maxSize = maxSize
	c.ticks = s.Tick
	c.leader = arrayVec3(s.Leader)
	c.attractor = arrayVec3(s.Attractor)
	c.attractorSet = s.HasAttractor
	c.params = SteerParams{
		Speed:            s.Params.Speed,
		SeparationRadius: s.Params.SeparationRadius,
		AlignmentRadius:  s.Params.AlignmentRadius,
		CohesionRadius:   s.Params.CohesionRadius,
		SeparationWeight: s.Params.SeparationWeight,
		AlignmentWeight:  s.Params.AlignmentWeight,
		CohesionWeight:   s.Params.CohesionWeight,
		SeekSwitch:       s.Params.SeekSwitch,
	}
	c.seed = s.RNGSeed
	c.rng = rand.New(rand.NewSource(s.RNGSeed))

	return nil
}

func (c *Crowd) assertIdle(op string) {
	if c.ticking.Load() {
		panic("crowd: " + op + " called during Tick; state changes must land between ticks")
	}
}

func vec3Array(v Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func arrayVec3(a [3]float32) Vec3 {
	return Vec3{X: a[0], Y: a[1], Z: a[2]}
}
