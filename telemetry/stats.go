package telemetry

import "log/slog"

// WindowStats holds aggregated population statistics for a tick window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Size      int     `csv:"size"`
	CentroidX float64 `csv:"centroid_x"`
	CentroidY float64 `csv:"centroid_y"`
	CentroidZ float64 `csv:"centroid_z"`

	// Size-change operations during the window
	Grows      int `csv:"grows"`
	Shrinks    int `csv:"shrinks"`
	Multiplies int `csv:"multiplies"`

	// Agents activated and deactivated during the window
	Spawned   int `csv:"spawned"`
	Despawned int `csv:"despawned"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("size", s.Size),
		slog.Float64("centroid_x", s.CentroidX),
		slog.Float64("centroid_y", s.CentroidY),
		slog.Float64("centroid_z", s.CentroidZ),
		slog.Int("grows", s.Grows),
		slog.Int("shrinks", s.Shrinks),
		slog.Int("multiplies", s.Multiplies),
		slog.Int("spawned", s.Spawned),
		slog.Int("despawned", s.Despawned),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"size", s.Size,
		"centroid_x", s.CentroidX,
		"centroid_y", s.CentroidY,
		"centroid_z", s.CentroidZ,
		"grows", s.Grows,
		"shrinks", s.Shrinks,
		"multiplies", s.Multiplies,
		"spawned", s.Spawned,
		"despawned", s.Despawned,
	)
}
