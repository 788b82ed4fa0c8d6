package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete crowd state for resume or replay.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Tick     int32 `json:"tick"`
	Capacity int   `json:"capacity"`
	MaxSize  int   `json:"max_size"`

	Leader       [3]float32 `json:"leader"`
	Attractor    [3]float32 `json:"attractor"`
	HasAttractor bool       `json:"has_attractor"`

	Params SnapshotParams `json:"params"`

	Agents []AgentState `json:"agents"`
}

// SnapshotParams records the steering parameters in effect when the
// snapshot was taken.
type SnapshotParams struct {
	Speed            float32 `json:"speed"`
	SeparationRadius float32 `json:"separation_radius"`
	AlignmentRadius  float32 `json:"alignment_radius"`
	CohesionRadius   float32 `json:"cohesion_radius"`
	SeparationWeight float32 `json:"separation_weight"`
	AlignmentWeight  float32 `json:"alignment_weight"`
	CohesionWeight   float32 `json:"cohesion_weight"`
	SeekSwitch       float32 `json:"seek_switch"`
}

// AgentState holds one agent's slot and motion state.
type AgentState struct {
	Slot int        `json:"slot"`
	Pos  [3]float32 `json:"pos"`
	Vel  [3]float32 `json:"vel"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d.json", snapshot.Tick)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
