// Package telemetry provides flow statistics, bookmarking, performance
// tracking, snapshots and CSV output for the fluid simulation.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Particle count at window end
	Particles int `csv:"particles"`

	// Lifecycle events during window
	Emitted int `csv:"emitted"`
	Drained int `csv:"drained"`
	Killed  int `csv:"killed"`

	// Solver health during window
	Healed           int     `csv:"healed"`
	FallbackSteps    int     `csv:"fallback_steps"`
	PairsPerParticle float64 `csv:"pairs_per_particle"`

	// Density distribution (sampled at window end)
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`
	DensityMax  float64 `csv:"density_max"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	KineticEnergy float64 `csv:"kinetic_energy"`
}

// Distribution summarizes a sample of values.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
}

// Quantile returns the empirical p-quantile of a sorted slice.
// p is clamped to [0, 1]. Returns 0 if the slice is empty.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean, std, percentiles and max of values.
// values is sorted in place.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sort.Float64s(values)

	var d Distribution
	if len(values) > 1 {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	} else {
		d.Mean = values[0]
	}
	d.P10 = Quantile(values, 0.10)
	d.P50 = Quantile(values, 0.50)
	d.P90 = Quantile(values, 0.90)
	d.Max = floats.Max(values)
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("emitted", s.Emitted),
		slog.Int("drained", s.Drained),
		slog.Int("killed", s.Killed),
		slog.Int("healed", s.Healed),
		slog.Int("fallback_steps", s.FallbackSteps),
		slog.Float64("pairs_per_particle", s.PairsPerParticle),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p10", s.DensityP10),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("density_max", s.DensityMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"emitted", s.Emitted,
		"drained", s.Drained,
		"killed", s.Killed,
		"healed", s.Healed,
		"fallback_steps", s.FallbackSteps,
		"pairs_per_particle", s.PairsPerParticle,
		"density_mean", s.DensityMean,
		"density_p10", s.DensityP10,
		"density_p90", s.DensityP90,
		"density_max", s.DensityMax,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"speed_max", s.SpeedMax,
		"kinetic_energy", s.KineticEnergy,
	)
}
