package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/sph2d/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the particle state needed to resume a run.
type Snapshot struct {
	Version int    `json:"version"`
	RNGSeed int64  `json:"rng_seed"`
	Mode    string `json:"mode"`

	Scale          float32    `json:"scale"`
	ContainerLower [2]float32 `json:"container_lower"`
	ContainerUpper [2]float32 `json:"container_upper"`

	Tick     int32  `json:"tick"`
	EmitStep uint64 `json:"emit_step"`

	Particles []ParticleState `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParticleState is the persisted form of one particle. Derived fields
// (pressure, acceleration, block) are recomputed on the next step.
type ParticleState struct {
	X       float32 `json:"x"`
	Y       float32 `json:"y"`
	VelX    float32 `json:"vel_x"`
	VelY    float32 `json:"vel_y"`
	Density float32 `json:"density"`
}

// CaptureParticles converts live particles to their persisted form.
func CaptureParticles(particles []components.Particle) []ParticleState {
	out := make([]ParticleState, len(particles))
	for i := range particles {
		p := &particles[i]
		out[i] = ParticleState{
			X:       p.Position.X,
			Y:       p.Position.Y,
			VelX:    p.Velocity.X,
			VelY:    p.Velocity.Y,
			Density: p.Density,
		}
	}
	return out
}

// Particle converts the persisted state back to a particle.
func (s ParticleState) Particle() components.Particle {
	return components.Particle{
		Position: components.Vec2{X: s.X, Y: s.Y},
		Velocity: components.Vec2{X: s.VelX, Y: s.VelY},
		Density:  s.Density,
	}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.Marshal(snapshot)
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
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
