package telemetry

import (
	"math"
	"testing"
)

func TestCollector_WindowBoundary(t *testing.T) {
	// 1 second windows at dt=0.125 -> 8 ticks per window
	// (dt is a power of two, so the tick count is exact)
	c := NewCollector(1.0, 0.125)

	if c.WindowDurationTicks() != 8 {
		t.Fatalf("expected 8 ticks per window, got %d", c.WindowDurationTicks())
	}

	if c.ShouldFlush(5) {
		t.Error("should not flush mid-window")
	}

	if !c.ShouldFlush(8) {
		t.Error("should flush at window boundary")
	}

	if !c.ShouldFlush(15) {
		t.Error("should flush past window boundary")
	}
}

func TestCollector_MinimumWindow(t *testing.T) {
	// Window shorter than one tick still flushes every tick
	c := NewCollector(0.001, 0.125)

	if c.WindowDurationTicks() != 1 {
		t.Errorf("expected minimum window of 1 tick, got %d", c.WindowDurationTicks())
	}
}

func TestCollector_FlushAggregates(t *testing.T) {
	c := NewCollector(1.0, 0.125)

	c.RecordGrow(5)
	c.RecordGrow(3)
	c.RecordShrink(2)
	c.RecordMultiply(10, 30)
	c.RecordMultiply(30, 3)

	stats := c.Flush(10, 42, 1.5, 0, -2.5)

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 10 {
		t.Errorf("expected window [0,10], got [%d,%d]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if math.Abs(stats.SimTimeSec-1.25) > 1e-9 {
		t.Errorf("expected sim time 1.25s, got %v", stats.SimTimeSec)
	}
	if stats.Size != 42 {
		t.Errorf("expected size 42, got %d", stats.Size)
	}
	if stats.CentroidX != 1.5 || stats.CentroidZ != -2.5 {
		t.Errorf("expected centroid (1.5, 0, -2.5), got (%v, %v, %v)",
			stats.CentroidX, stats.CentroidY, stats.CentroidZ)
	}

	if stats.Grows != 2 {
		t.Errorf("expected 2 grows, got %d", stats.Grows)
	}
	if stats.Shrinks != 1 {
		t.Errorf("expected 1 shrink, got %d", stats.Shrinks)
	}
	if stats.Multiplies != 2 {
		t.Errorf("expected 2 multiplies, got %d", stats.Multiplies)
	}

	// 5+3 grown plus 20 from the upward multiply
	if stats.Spawned != 28 {
		t.Errorf("expected 28 spawned, got %d", stats.Spawned)
	}
	// 2 shrunk plus 27 from the downward multiply
	if stats.Despawned != 29 {
		t.Errorf("expected 29 despawned, got %d", stats.Despawned)
	}
}

func TestCollector_FlushResetsCounters(t *testing.T) {
	c := NewCollector(1.0, 0.125)

	c.RecordGrow(5)
	c.RecordShrink(2)
	c.Flush(10, 3, 0, 0, 0)

	// Second window starts clean
	stats := c.Flush(20, 3, 0, 0, 0)

	if stats.WindowStartTick != 10 {
		t.Errorf("expected second window to start at tick 10, got %d", stats.WindowStartTick)
	}
	if stats.Grows != 0 || stats.Shrinks != 0 || stats.Spawned != 0 || stats.Despawned != 0 {
		t.Errorf("expected counters reset after flush, got %+v", stats)
	}

	if c.ShouldFlush(25) {
		t.Error("should not flush 5 ticks into the new window")
	}
}

func TestCollector_HasPending(t *testing.T) {
	c := NewCollector(1.0, 0.125) // 8 ticks per window

	if c.HasPending(0) {
		t.Error("expected no pending ticks before the first tick")
	}
	if !c.HasPending(5) {
		t.Error("expected pending ticks mid-window")
	}

	c.Flush(8, 10, 0, 0, 0)

	if c.HasPending(8) {
		t.Error("expected no pending ticks right after a flush")
	}
	if !c.HasPending(9) {
		t.Error("expected pending ticks one tick after a flush")
	}
}
