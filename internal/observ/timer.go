package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

// Stage records the duration of one step of a command and how many items
// (tokens, files) it handled.
type Stage struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Items uint64
	Note  string
	done  bool
}

// Timer tracks stages of a run. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	origin time.Time
	stages []Stage
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{origin: time.Now(), stages: make([]Stage, 0, 8)}
}

// Begin starts a new stage and returns its index.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages = append(t.stages, Stage{Name: name, Start: time.Now()})
	return len(t.stages) - 1
}

// Add bumps the item counter of a running stage.
func (t *Timer) Add(idx int, items uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.stages) {
		return
	}
	t.stages[idx].Items += items
}

// End finishes a stage by its index. Ending twice keeps the first duration.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.stages) {
		return
	}
	s := &t.stages[idx]
	if s.done {
		return
	}
	s.Dur = time.Since(s.Start)
	s.Note = note
	s.done = true
}

// Track begins a stage and returns a func that ends it with the item count.
func (t *Timer) Track(name string) func(items uint64, note string) {
	idx := t.Begin(name)
	return func(items uint64, note string) {
		t.Add(idx, items)
		t.End(idx, note)
	}
}

// StageReport is the serializable form of a stage.
type StageReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Items      uint64  `json:"items,omitempty"`
	PerSecond  float64 `json:"per_second,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates all finished stages.
type Report struct {
	TotalMS float64       `json:"total_ms"` // сумма длительностей стадий
	WallMS  float64       `json:"wall_ms"`  // от NewTimer до Report
	Stages  []StageReport `json:"stages"`
}

// Report snapshots the finished stages; running ones are skipped.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := Report{
		WallMS: durationToMillis(time.Since(t.origin)),
		Stages: make([]StageReport, 0, len(t.stages)),
	}
	var total time.Duration
	for _, s := range t.stages {
		if !s.done {
			continue
		}
		total += s.Dur
		sr := StageReport{
			Name:       s.Name,
			DurationMS: durationToMillis(s.Dur),
			Items:      s.Items,
			Note:       s.Note,
		}
		if s.Items > 0 && s.Dur > 0 {
			sr.PerSecond = float64(s.Items) / s.Dur.Seconds()
		}
		report.Stages = append(report.Stages, sr)
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Summary returns a human-readable table of the finished stages.
func (t *Timer) Summary() string {
	report := t.Report()
	nameWidth := runewidth.StringWidth("total")
	for _, s := range report.Stages {
		nameWidth = max(nameWidth, runewidth.StringWidth(s.Name))
	}

	var b strings.Builder
	b.WriteString("timings:\n")
	for _, s := range report.Stages {
		fmt.Fprintf(&b, "  %s %9.2f ms", runewidth.FillRight(s.Name, nameWidth), s.DurationMS)
		if s.Items > 0 {
			fmt.Fprintf(&b, "  %d items", s.Items)
			if s.PerSecond > 0 {
				fmt.Fprintf(&b, " (%.0f/s)", s.PerSecond)
			}
		}
		if s.Note != "" {
			b.WriteString("  // " + s.Note)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  %s %9.2f ms\n", runewidth.FillRight("total", nameWidth), report.TotalMS)
	return b.String()
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
