package crowd

import "math"

// ChangeCause identifies which operation produced a population change.
type ChangeCause string

const (
	CauseGrow     ChangeCause = "grow"
	CauseShrink   ChangeCause = "shrink"
	CauseMultiply ChangeCause = "multiply"
)

// PopulationChange is delivered to listeners after every actual size
// change, synchronously and between ticks.
type PopulationChange struct {
	Old   int
	New   int
	Cause ChangeCause
}

// OnPopulationChanged registers a listener for size changes. Listeners
// run synchronously on the goroutine that mutated the population, in
// registration order.
func (c *Crowd) OnPopulationChanged(fn func(PopulationChange)) {
	c.listeners = append(c.listeners, fn)
}

// Grow activates agents until the population reaches target or the
// ceiling, whichever is lower. New agents spawn at a random offset
// near the leader with zero velocity. Returns the achieved size;
// a target at or below the current size is a no-op.
func (c *Crowd) Grow(target int) int {
	c.assertIdle("Grow")
	return c.grow(target, CauseGrow)
}

// Shrink deactivates agents until the population drops to target,
// highest slots first so the outcome is deterministic. The floor is
// one agent. Returns the achieved size; a target at or above the
// current size is a no-op.
func (c *Crowd) Shrink(target int) int {
	c.assertIdle("Shrink")
	return c.shrink(target, CauseShrink)
}

// SetSize grows or shrinks the population to n, clamped to
// [1, max size]. Requesting the current size is a no-op and emits no
// notification.
func (c *Crowd) SetSize(n int) int {
	c.assertIdle("SetSize")
	return c.setSize(n, CauseGrow, CauseShrink)
}

// Multiply scales the population by factor, rounding to the nearest
// whole agent and clamping to [1, max size]. Factors that would empty
// the crowd clamp to one: a crowd of zero is not a valid state. A NaN
// factor is a no-op.
func (c *Crowd) Multiply(factor float64) int {
	c.assertIdle("Multiply")
	scaled := math.Round(float64(c.size) * factor)
	if math.IsNaN(scaled) {
		return c.size
	}
	// Clamp before converting. A float beyond int range has no
	// defined conversion.
	if scaled > float64(c.maxSize) {
		scaled = float64(c.maxSize)
	}
	if scaled < 1 {
		scaled = 1
	}
	return c.setSize(int(scaled), CauseMultiply, CauseMultiply)
}

func (c *Crowd) setSize(n int, growCause, shrinkCause ChangeCause) int {
	if n < 1 {
		n = 1
	}
	if n > c.maxSize {
		n = c.maxSize
	}
	switch {
	case n > c.size:
		return c.grow(n, growCause)
	case n < c.size:
		return c.shrink(n, shrinkCause)
	}
	return c.size
}

func (c *Crowd) grow(target int, cause ChangeCause) int {
	if target > c.maxSize {
		target = c.maxSize
	}
	if target <= c.size {
		return c.size
	}

	old := c.size
	for i := 0; i < c.store.capacity && c.size < target; i++ {
		if c.store.active[i] {
			continue
		}
		c.store.activate(i, c.spawnPos())
		c.size++
	}

	c.notify(old, c.size, cause)
	return c.size
}

func (c *Crowd) shrink(target int, cause ChangeCause) int {
	if target < 1 {
		target = 1
	}
	if target >= c.size {
		return c.size
	}

	old := c.size
	for i := c.store.capacity - 1; i >= 0 && c.size > target; i-- {
		if !c.store.active[i] {
			continue
		}
		c.store.deactivate(i)
		c.size--
	}

	c.notify(old, c.size, cause)
	return c.size
}

// spawnPos picks a placement near the leader for a newly activated
// agent.
func (c *Crowd) spawnPos() Vec3 {
	r := c.spawnRadius
	off := Vec3{
		X: (c.rng.Float32()*2 - 1) * r,
		Y: (c.rng.Float32()*2 - 1) * r,
		Z: (c.rng.Float32()*2 - 1) * r,
	}
	return c.leader.Add(off)
}

func (c *Crowd) notify(old, size int, cause ChangeCause) {
	change := PopulationChange{Old: old, New: size, Cause: cause}
	for _, fn := range c.listeners {
		fn(change)
	}
}
