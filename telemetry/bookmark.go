package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCeilingReached   BookmarkType = "ceiling_reached"
	BookmarkCompressionSpike BookmarkType = "compression_spike"
	BookmarkSteadyFlow       BookmarkType = "steady_flow"
	BookmarkSettled          BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the flow.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	ceiling int // particle ceiling; 0 disables the check

	// State tracking
	atCeiling     bool
	steadyWindows int
	calmWindows   int
}

// NewBookmarkDetector creates a detector with the given history size.
// ceiling is the emission particle limit, or 0 when there is none.
func NewBookmarkDetector(historySize, ceiling int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady-state detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		ceiling:     ceiling,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkCeiling(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCompressionSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSteadyFlow(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkCeiling(stats WindowStats) *Bookmark {
	if bd.ceiling <= 0 {
		return nil
	}
	reached := stats.Particles >= bd.ceiling
	// Trigger on the rising edge only
	defer func() { bd.atCeiling = reached }()
	if !reached || bd.atCeiling {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkCeilingReached,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Particle count %d reached ceiling %d", stats.Particles, bd.ceiling),
	}
}

func (bd *BookmarkDetector) checkCompressionSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.DensityMax
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.DensityMax > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkCompressionSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Max density %.1f is %.1fx average (%.1f)", stats.DensityMax, stats.DensityMax/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteadyFlow(stats WindowStats) *Bookmark {
	removed := stats.Drained + stats.Killed
	if stats.Emitted == 0 || removed == 0 {
		bd.steadyWindows = 0
		return nil
	}

	// Inflow and outflow within 10%
	diff := float64(stats.Emitted-removed) / float64(stats.Emitted)
	if diff < -0.1 || diff > 0.1 {
		bd.steadyWindows = 0
		return nil
	}

	bd.steadyWindows++
	if bd.steadyWindows == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSteadyFlow,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Inflow %d balances outflow %d with %d particles over 5+ windows", stats.Emitted, removed, stats.Particles),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Particles == 0 || stats.Emitted > 0 || stats.SpeedP90 > 0.05 {
		bd.calmWindows = 0
		return nil
	}

	bd.calmWindows++
	if bd.calmWindows == 5 {
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Fluid settled: p90 speed %.3f over 5+ windows", stats.SpeedP90),
		}
	}
	return nil
}
