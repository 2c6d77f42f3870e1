package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/sph2d/components"
	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/systems"
	"github.com/pthm-cable/sph2d/telemetry"
)

func loadConfig(t *testing.T, fountain bool) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.SetFountain(fountain)
	return cfg
}

func newTestSimulation(t *testing.T, fountain bool, opts Options) *Simulation {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	sim, err := NewSimulation(loadConfig(t, fountain), opts)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	t.Cleanup(func() { sim.Close() })
	return sim
}

func TestNewSimulationNilConfig(t *testing.T) {
	_, err := NewSimulation(nil, Options{})
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestStaticFill(t *testing.T) {
	sim := newTestSimulation(t, false, Options{})

	if sim.Mode() != ModeStatic {
		t.Errorf("mode = %v, want static", sim.Mode())
	}
	if sim.State() != StateFilled {
		t.Errorf("state = %v, want filled", sim.State())
	}
	if got := sim.Len(); got != 6561 {
		t.Errorf("particles = %d, want 6561", got)
	}
	if sim.Tick() != 0 {
		t.Errorf("tick = %d, want 0", sim.Tick())
	}
}

func TestStaticStepKeepsCount(t *testing.T) {
	sim := newTestSimulation(t, false, Options{})
	n := sim.Len()

	for range 3 {
		sim.Step()
	}

	if sim.Len() != n {
		t.Errorf("particles = %d, want %d", sim.Len(), n)
	}
	if sim.Tick() != 3 {
		t.Errorf("tick = %d, want 3", sim.Tick())
	}
	if sim.State() != StateStepping {
		t.Errorf("state = %v, want stepping", sim.State())
	}

	lo, hi := sim.Bounds()
	for i, p := range sim.Particles() {
		if p.Position.X < lo.X || p.Position.X > hi.X || p.Position.Y < lo.Y || p.Position.Y > hi.Y {
			t.Fatalf("particle %d at %v outside container", i, p.Position)
		}
	}
}

func TestFountainEmits(t *testing.T) {
	sim := newTestSimulation(t, true, Options{})

	if sim.Mode() != ModeFountain {
		t.Fatalf("mode = %v, want fountain", sim.Mode())
	}
	if sim.Len() != 0 {
		t.Errorf("initial particles = %d, want 0", sim.Len())
	}

	for range 10 {
		sim.Step()
	}

	n := sim.Len()
	if n == 0 {
		t.Fatal("fountain emitted no particles")
	}
	if n > sim.cfg.Fountain.MaxParticles {
		t.Errorf("particles = %d exceeds ceiling %d", n, sim.cfg.Fountain.MaxParticles)
	}
}

func TestFountainCeiling(t *testing.T) {
	cfg := loadConfig(t, true)
	cfg.Fountain.MaxParticles = 20
	sim, err := NewSimulation(cfg, Options{Seed: 1})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	defer sim.Close()

	for range 10 {
		sim.Step()
		if sim.Len() > 20 {
			t.Fatalf("particles = %d, want <= 20", sim.Len())
		}
	}
}

func TestFountainDeterministic(t *testing.T) {
	a := newTestSimulation(t, true, Options{Seed: 7})
	b := newTestSimulation(t, true, Options{Seed: 7})

	for range 5 {
		a.Step()
		b.Step()
	}

	pa, pb := a.Particles(), b.Particles()
	if len(pa) != len(pb) {
		t.Fatalf("len %d != %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i].Position != pb[i].Position {
			t.Fatalf("particle %d: %v != %v", i, pa[i].Position, pb[i].Position)
		}
	}
}

func TestFrame(t *testing.T) {
	tests := []struct {
		name     string
		fountain bool
		extra    int
	}{
		{"static", false, 0},
		{"fountain", true, systems.DrainMarkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulation(t, tt.fountain, Options{})
			sim.Step()

			f := sim.Frame()
			if got, want := f.Len(), sim.Len()+tt.extra; got != want {
				t.Errorf("frame len = %d, want %d", got, want)
			}
			if f.Scale != sim.Scale() {
				t.Errorf("frame scale = %v, want %v", f.Scale, sim.Scale())
			}
		})
	}
}

func TestResetRebuilds(t *testing.T) {
	sim := newTestSimulation(t, false, Options{})
	for range 2 {
		sim.Step()
	}

	if err := sim.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if sim.Tick() != 0 {
		t.Errorf("tick = %d, want 0", sim.Tick())
	}
	if sim.State() != StateFilled {
		t.Errorf("state = %v, want filled", sim.State())
	}
	if sim.Len() != 6561 {
		t.Errorf("particles = %d, want 6561", sim.Len())
	}
}

func TestSetMode(t *testing.T) {
	sim := newTestSimulation(t, false, Options{})

	if err := sim.SetMode(ModeFountain); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if sim.Mode() != ModeFountain {
		t.Errorf("mode = %v, want fountain", sim.Mode())
	}
	if sim.Len() != 0 {
		t.Errorf("particles = %d, want 0 after switching to fountain", sim.Len())
	}

	if err := sim.SetMode(ModeStatic); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if sim.Len() != 6561 {
		t.Errorf("particles = %d, want 6561 after switching back", sim.Len())
	}
}

func TestSetViscosity(t *testing.T) {
	sim := newTestSimulation(t, false, Options{})
	sim.SetViscosity(0.5)
	if got := sim.Params().Viscosity; got != 0.5 {
		t.Errorf("viscosity = %v, want 0.5", got)
	}
	if got := sim.solver.Params().Viscosity; got != 0.5 {
		t.Errorf("solver viscosity = %v, want 0.5", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	sim, err := NewSimulation(loadConfig(t, false), Options{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	if err := sim.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := sim.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if sim.State() != StateIdle {
		t.Errorf("state = %v, want idle", sim.State())
	}
	if sim.Len() != 0 || sim.Particles() != nil {
		t.Error("closed simulation still exposes particles")
	}
	if err := sim.Reset(); !errors.Is(err, ErrClosed) {
		t.Errorf("Reset after Close = %v, want ErrClosed", err)
	}
	if err := sim.SetMode(ModeFountain); !errors.Is(err, ErrClosed) {
		t.Errorf("SetMode after Close = %v, want ErrClosed", err)
	}

	// Must not panic
	sim.Step()
	sim.SetViscosity(1)
	_ = sim.Frame()
}

func TestTelemetryOutput(t *testing.T) {
	dir := t.TempDir()
	var windows []telemetry.WindowStats
	sim, err := NewSimulation(loadConfig(t, true), Options{
		Seed:           3,
		OutputDir:      dir,
		StatsWindowSec: 0.0032,
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	for range 8 {
		sim.Step()
	}
	if err := sim.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(windows) == 0 {
		t.Fatal("no stats windows flushed")
	}
	emitted := 0
	for _, w := range windows {
		emitted += w.Emitted
	}
	if emitted == 0 {
		t.Error("windows report no emitted particles")
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("read telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(windows)+1 {
		t.Errorf("telemetry.csv has %d lines, want %d", len(lines), len(windows)+1)
	}
	if !strings.HasPrefix(lines[0], "window_end,") {
		t.Errorf("header = %q", lines[0])
	}

	for _, name := range []string{"config.yaml", "perf.csv", "bookmarks.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	sim := newTestSimulation(t, true, Options{Seed: 9})
	for range 6 {
		sim.Step()
	}

	path, err := telemetry.SaveSnapshot(sim.Snapshot(nil), t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	want := sim.Particles()
	wantPos := make([]float32, 0, 2*len(want))
	for _, p := range want {
		wantPos = append(wantPos, p.Position.X, p.Position.Y)
	}
	wantStep := sim.fountain.Step()

	if err := sim.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := sim.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if sim.Tick() != 6 {
		t.Errorf("tick = %d, want 6", sim.Tick())
	}
	if sim.fountain.Step() != wantStep {
		t.Errorf("emit step = %d, want %d", sim.fountain.Step(), wantStep)
	}
	got := sim.Particles()
	if len(got) != len(want) {
		t.Fatalf("particles = %d, want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.Position.X != wantPos[2*i] || p.Position.Y != wantPos[2*i+1] {
			t.Fatalf("particle %d at %v, want (%v, %v)", i, p.Position, wantPos[2*i], wantPos[2*i+1])
		}
		if p.BlockID >= sim.ps.BlockCount() {
			t.Fatalf("particle %d has BlockID %d after restore", i, p.BlockID)
		}
	}

	// Stepping after restore must work
	sim.Step()
}

func TestRestoreModeMismatch(t *testing.T) {
	fountain := newTestSimulation(t, true, Options{})
	fountain.Step()
	snap := fountain.Snapshot(nil)

	static := newTestSimulation(t, false, Options{})
	if err := static.Restore(snap); err == nil {
		t.Error("expected error restoring a fountain snapshot into static mode")
	}
}

func TestRestoreContainerMismatch(t *testing.T) {
	sim := newTestSimulation(t, false, Options{})
	sim.Step()

	tests := []struct {
		name string
		edit func(*telemetry.Snapshot)
	}{
		{"lower", func(s *telemetry.Snapshot) { s.ContainerLower[0] -= 0.5 }},
		{"upper", func(s *telemetry.Snapshot) { s.ContainerUpper[1] += 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := sim.Snapshot(nil)
			tt.edit(snap)
			if err := sim.Restore(snap); err == nil {
				t.Error("expected error restoring a snapshot from a different container")
			}
		})
	}

	if err := sim.Restore(sim.Snapshot(nil)); err != nil {
		t.Errorf("Restore with matching container: %v", err)
	}
}

func TestFountainAdvancesBeforeEmitting(t *testing.T) {
	sim := newTestSimulation(t, true, Options{Seed: 4})
	if got := sim.fountain.Step(); got != 0 {
		t.Fatalf("emission step before stepping = %d, want 0", got)
	}

	sim.Step()
	if got := sim.Snapshot(nil).EmitStep; got != 1 {
		t.Errorf("emission step after one Step = %d, want 1", got)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		give fmtStringer
		want string
	}{
		{ModeStatic, "static"},
		{ModeFountain, "fountain"},
		{Mode(9), "Mode(9)"},
		{StateIdle, "idle"},
		{StateFilled, "filled"},
		{StateStepping, "stepping"},
	}
	for _, tt := range tests {
		if got := tt.give.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

type fmtStringer interface{ String() string }

func TestNearestAndSimTime(t *testing.T) {
	sim := newTestSimulation(t, false, Options{})

	i, ok := sim.Nearest(sim.Particles()[0].Position, sim.Params().SupportRadius)
	if !ok {
		t.Fatal("expected a particle at its own position")
	}
	if sim.Particles()[i].Position != sim.Particles()[0].Position {
		t.Errorf("nearest = %v, want %v", sim.Particles()[i].Position, sim.Particles()[0].Position)
	}

	sim.Step()
	sim.Step()
	want := 2 * float64(sim.Params().DT)
	if got := sim.SimTime(); got != want {
		t.Errorf("SimTime = %v, want %v", got, want)
	}

	sim.Close()
	if _, ok := sim.Nearest(components.Vec2{}, 1); ok {
		t.Error("closed simulation returned a particle")
	}
}
