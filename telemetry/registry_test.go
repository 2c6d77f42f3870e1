package telemetry

import "testing"

func TestPhaseRegistry(t *testing.T) {
	reg := NewPhaseRegistry()

	want := []string{PhaseEmit, PhaseReindex, PhaseSolve, PhaseCull, PhaseTelemetry}
	ids := reg.IDs()
	if len(ids) != len(want) {
		t.Fatalf("IDs = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	if got := reg.GetName(PhaseSolve); got != "Solve" {
		t.Errorf("GetName(solve) = %q", got)
	}
	if got := reg.GetName("unknown"); got != "unknown" {
		t.Errorf("GetName(unknown) = %q, want fallback to ID", got)
	}
	if _, ok := reg.Get("unknown"); ok {
		t.Error("Get(unknown) should miss")
	}
}

func TestPhaseRegistryForMode(t *testing.T) {
	reg := NewPhaseRegistry()

	static := reg.ForMode(false)
	for _, p := range static {
		if p.ID == PhaseEmit || p.ID == PhaseCull {
			t.Errorf("static mode includes fountain phase %q", p.ID)
		}
	}
	if len(static) != 3 {
		t.Errorf("static phases = %d, want 3", len(static))
	}
	if len(reg.ForMode(true)) != 5 {
		t.Errorf("fountain phases = %d, want 5", len(reg.ForMode(true)))
	}
}
