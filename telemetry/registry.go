package telemetry

// PhaseInfo describes one timed phase of a simulation step.
type PhaseInfo struct {
	ID           string // Identifier used by PerfCollector
	Name         string // Display name
	Description  string // What the phase does
	FountainOnly bool   // Only timed in fountain mode
}

// PhaseRegistry holds phase metadata in step order. It keeps the perf
// collector, CSV columns and UI panels naming phases the same way.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with every step phase.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{
		byID: make(map[string]PhaseInfo),
	}
	reg.Register(PhaseInfo{ID: PhaseEmit, Name: "Emit", Description: "Injects particles at emitters", FountainOnly: true})
	reg.Register(PhaseInfo{ID: PhaseReindex, Name: "Reindex", Description: "Sorts particles into grid blocks"})
	reg.Register(PhaseInfo{ID: PhaseSolve, Name: "Solve", Description: "Density, pressure, forces and integration"})
	reg.Register(PhaseInfo{ID: PhaseCull, Name: "Cull", Description: "Removes drained and escaped particles", FountainOnly: true})
	reg.Register(PhaseInfo{ID: PhaseTelemetry, Name: "Telemetry", Description: "Flushes stats windows and bookmarks"})
	return reg
}

// Register adds a phase to the registry.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	r.phases = append(r.phases, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *PhaseRegistry) Get(id string) (PhaseInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// ForMode returns the phases timed in the given mode.
func (r *PhaseRegistry) ForMode(fountain bool) []PhaseInfo {
	var result []PhaseInfo
	for _, info := range r.phases {
		if info.FountainOnly && !fountain {
			continue
		}
		result = append(result, info)
	}
	return result
}

// IDs returns all phase IDs in registration order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}
