package game

import (
	"log/slog"

	"github.com/pthm-cable/sph2d/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.ps.Particles(), s.params.ParticleMass())
	perfStats := s.perfCollector.Stats()

	if s.opts.StatsCallback != nil {
		s.opts.StatsCallback(stats)
	}

	if s.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick, stats.Particles); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.opts.LogStats {
			bm.LogBookmark()
		}
		if err := s.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		s.saveSnapshot(&bm)
	}
}

// saveSnapshot writes a snapshot to the snapshot directory, or under the
// output directory when only that is set.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	var (
		path string
		err  error
	)
	switch {
	case s.opts.SnapshotDir != "":
		path, err = telemetry.SaveSnapshot(s.Snapshot(bookmark), s.opts.SnapshotDir)
	case s.outputManager != nil:
		path, err = s.outputManager.WriteSnapshot(s.Snapshot(bookmark))
	default:
		return
	}
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", s.tick)
}
