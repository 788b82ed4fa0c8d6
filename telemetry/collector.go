package telemetry

// Collector accumulates population events within tick windows and
// produces WindowStats. It holds no reference to the simulation; the
// owning loop feeds it change deltas and flushes it on window
// boundaries.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	// Event counters for the current window
	grows      int
	shrinks    int
	multiplies int
	spawned    int
	despawned  int
}

// NewCollector creates a stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
// dt: seconds per tick, for tick-to-time conversion.
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// RecordGrow records one grow operation that activated the given
// number of agents.
func (c *Collector) RecordGrow(agents int) {
	c.grows++
	c.spawned += agents
}

// RecordShrink records one shrink operation that deactivated the given
// number of agents.
func (c *Collector) RecordShrink(agents int) {
	c.shrinks++
	c.despawned += agents
}

// RecordMultiply records one multiply operation and its size delta.
func (c *Collector) RecordMultiply(oldSize, newSize int) {
	c.multiplies++
	if newSize > oldSize {
		c.spawned += newSize - oldSize
	} else {
		c.despawned += oldSize - newSize
	}
}

// ShouldFlush returns true once enough ticks have passed to close the
// window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// HasPending reports whether any ticks have elapsed since the last
// flush. A run flushes its trailing partial window on exit when this
// is true.
func (c *Collector) HasPending(currentTick int32) bool {
	return currentTick > c.windowStartTick
}

// Flush produces a WindowStats and resets the counters for the next
// window. The caller provides the population size and centroid at the
// window end.
func (c *Collector) Flush(currentTick int32, size int, cx, cy, cz float64) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Size:      size,
		CentroidX: cx,
		CentroidY: cy,
		CentroidZ: cz,

		Grows:      c.grows,
		Shrinks:    c.shrinks,
		Multiplies: c.multiplies,
		Spawned:    c.spawned,
		Despawned:  c.despawned,
	}

	c.windowStartTick = currentTick
	c.grows = 0
	c.shrinks = 0
	c.multiplies = 0
	c.spawned = 0
	c.despawned = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
