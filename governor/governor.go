// Package governor sheds crowd population when the host cannot sustain
// the target frame rate.
package governor

import (
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Population is the slice of the crowd the governor controls.
type Population interface {
	Size() int
	Shrink(target int) int
}

// Config holds governor tuning.
type Config struct {
	MinFPS     float64       // Shed when mean FPS over a window drops below this (<=0 disables)
	ShedFactor float64       // New size = round(size * this) on shed
	FloorSize  int           // Never shed below this many agents
	Interval   time.Duration // Evaluation window length
}

// Governor watches frame durations and shrinks the population when the
// mean frame rate over an interval falls below the configured minimum.
// It only ever shrinks; recovering frame budget does not grow the crowd
// back.
type Governor struct {
	pop Population
	cfg Config

	frames  []float64 // frame durations in seconds for the current window
	elapsed time.Duration
	sheds   int
}

// New creates a governor bound to pop.
func New(pop Population, cfg Config) *Governor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.ShedFactor <= 0 || cfg.ShedFactor >= 1 {
		cfg.ShedFactor = 0.8
	}
	return &Governor{
		pop:    pop,
		cfg:    cfg,
		frames: make([]float64, 0, 256),
	}
}

// Observe records one frame's wall-clock duration. Once a full interval
// has accumulated the window is evaluated and cleared.
func (g *Governor) Observe(frame time.Duration) {
	if g.cfg.MinFPS <= 0 {
		return
	}

	g.frames = append(g.frames, frame.Seconds())
	g.elapsed += frame

	if g.elapsed < g.cfg.Interval {
		return
	}
	g.evaluate()
	g.frames = g.frames[:0]
	g.elapsed = 0
}

func (g *Governor) evaluate() {
	if len(g.frames) == 0 {
		return
	}

	mean := stat.Mean(g.frames, nil)
	if mean <= 0 {
		return
	}
	fps := 1 / mean
	if fps >= g.cfg.MinFPS {
		return
	}

	size := g.pop.Size()
	if size <= g.cfg.FloorSize {
		return
	}

	target := int(math.Round(float64(size) * g.cfg.ShedFactor))
	if target < g.cfg.FloorSize {
		target = g.cfg.FloorSize
	}

	g.pop.Shrink(target)
	g.sheds++

	slog.Info("governor shed",
		"fps", fps,
		"min_fps", g.cfg.MinFPS,
		"old_size", size,
		"new_size", g.pop.Size(),
	)
}

// ShedCount returns how many times the governor has shed population.
func (g *Governor) ShedCount() int {
	return g.sheds
}
