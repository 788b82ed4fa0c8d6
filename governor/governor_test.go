package governor

import (
	"testing"
	"time"
)

type fakePopulation struct {
	size    int
	shrinks []int
}

func (f *fakePopulation) Size() int { return f.size }

func (f *fakePopulation) Shrink(target int) int {
	f.shrinks = append(f.shrinks, target)
	if target < 1 {
		target = 1
	}
	if target < f.size {
		f.size = target
	}
	return f.size
}

func TestGovernor_ShedsUnderLoad(t *testing.T) {
	pop := &fakePopulation{size: 200}
	g := New(pop, Config{
		MinFPS:     60,
		ShedFactor: 0.8,
		FloorSize:  50,
		Interval:   time.Second,
	})

	// A second's worth of 30fps frames trips one evaluation
	for i := 0; i < 31; i++ {
		g.Observe(time.Second / 30)
	}

	if len(pop.shrinks) != 1 {
		t.Fatalf("expected exactly 1 shed, got %d", len(pop.shrinks))
	}
	if pop.shrinks[0] != 160 {
		t.Errorf("expected shed target 160 (200 * 0.8), got %d", pop.shrinks[0])
	}
	if pop.size != 160 {
		t.Errorf("expected population 160 after shed, got %d", pop.size)
	}
	if g.ShedCount() != 1 {
		t.Errorf("expected shed count 1, got %d", g.ShedCount())
	}
}

func TestGovernor_NoShedWhenHealthy(t *testing.T) {
	pop := &fakePopulation{size: 200}
	g := New(pop, Config{
		MinFPS:    60,
		FloorSize: 50,
		Interval:  time.Second,
	})

	// 120fps frames: comfortably above the minimum
	for i := 0; i < 130; i++ {
		g.Observe(time.Second / 120)
	}

	if len(pop.shrinks) != 0 {
		t.Errorf("expected no sheds at 120fps, got %d", len(pop.shrinks))
	}
}

func TestGovernor_WindowRearms(t *testing.T) {
	pop := &fakePopulation{size: 200}
	g := New(pop, Config{
		MinFPS:     60,
		ShedFactor: 0.8,
		FloorSize:  50,
		Interval:   time.Second,
	})

	// Slow window: shed once
	for i := 0; i < 31; i++ {
		g.Observe(time.Second / 30)
	}
	// Fast window: no shed
	for i := 0; i < 130; i++ {
		g.Observe(time.Second / 120)
	}
	// Slow again: second shed
	for i := 0; i < 31; i++ {
		g.Observe(time.Second / 30)
	}

	if g.ShedCount() != 2 {
		t.Errorf("expected 2 sheds across separate slow windows, got %d", g.ShedCount())
	}
	if pop.size != 128 {
		t.Errorf("expected population 128 after two sheds (200 -> 160 -> 128), got %d", pop.size)
	}
}

func TestGovernor_FloorHolds(t *testing.T) {
	pop := &fakePopulation{size: 50}
	g := New(pop, Config{
		MinFPS:     60,
		ShedFactor: 0.8,
		FloorSize:  50,
		Interval:   time.Second,
	})

	for i := 0; i < 31; i++ {
		g.Observe(time.Second / 30)
	}

	if len(pop.shrinks) != 0 {
		t.Errorf("expected no sheds at the floor, got %d", len(pop.shrinks))
	}
}

func TestGovernor_ShedClampsToFloor(t *testing.T) {
	pop := &fakePopulation{size: 60}
	g := New(pop, Config{
		MinFPS:     60,
		ShedFactor: 0.5,
		FloorSize:  50,
		Interval:   time.Second,
	})

	for i := 0; i < 31; i++ {
		g.Observe(time.Second / 30)
	}

	// 60 * 0.5 = 30 would undershoot the floor
	if len(pop.shrinks) != 1 || pop.shrinks[0] != 50 {
		t.Errorf("expected one shed clamped to floor 50, got %v", pop.shrinks)
	}
}

func TestGovernor_DisabledByZeroMinFPS(t *testing.T) {
	pop := &fakePopulation{size: 200}
	g := New(pop, Config{
		MinFPS:   0,
		Interval: time.Second,
	})

	for i := 0; i < 100; i++ {
		g.Observe(time.Second) // 1fps, catastrophically slow
	}

	if len(pop.shrinks) != 0 {
		t.Errorf("expected disabled governor to never shed, got %d sheds", len(pop.shrinks))
	}
}
