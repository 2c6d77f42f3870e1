package game

import "github.com/pthm-cable/sph2d/telemetry"

// Step advances the simulation by one DT. The static mode runs Substep
// reindex-and-solve passes; the fountain mode runs emit, reindex, solve and
// cull per sub-step. The grid is always reindexed on return.
func (s *Simulation) Step() {
	if s.ps == nil {
		return
	}

	s.perfCollector.StartTick()
	switch s.mode {
	case ModeFountain:
		s.stepFountain()
	default:
		s.stepStatic()
	}
	s.tick++
	s.state = StateStepping

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.perfCollector.EndTick()
}

func (s *Simulation) substeps() int {
	return max(1, s.params.Substep)
}

func (s *Simulation) stepStatic() {
	for range s.substeps() {
		s.perfCollector.StartPhase(telemetry.PhaseReindex)
		s.ps.UpdateBlockInfo()

		s.perfCollector.StartPhase(telemetry.PhaseSolve)
		st := s.solver.Solve()
		s.collector.RecordSolve(st.Pairs, st.Healed, st.Fallback)
	}
}

func (s *Simulation) stepFountain() {
	// The emission phase moves before the first batch of the frame
	s.fountain.Advance()
	for range s.substeps() {
		s.perfCollector.StartPhase(telemetry.PhaseEmit)
		s.collector.RecordEmitted(s.fountain.Emit(s.ps))

		s.perfCollector.StartPhase(telemetry.PhaseReindex)
		s.ps.UpdateBlockInfo()

		s.perfCollector.StartPhase(telemetry.PhaseSolve)
		st := s.solver.Solve()
		s.collector.RecordSolve(st.Pairs, st.Healed, st.Fallback)

		s.perfCollector.StartPhase(telemetry.PhaseCull)
		c := s.fountain.Cull(s.ps)
		s.collector.RecordCull(c.Drained, c.Killed)
	}

	// Culling leaves block ranges stale
	s.perfCollector.StartPhase(telemetry.PhaseReindex)
	s.ps.UpdateBlockInfo()
}
