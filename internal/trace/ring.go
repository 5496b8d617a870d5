package trace

import (
	"fmt"
	"io"
	"sync"
)

// DefaultRingSize is the ring capacity used when none is configured.
const DefaultRingSize = 4096

// RingTracer remembers the most recent events of a run so that a failed
// scan can be explained after the fact without streaming every step.
type RingTracer struct {
	mu      sync.RWMutex
	slots   []Event
	written uint64 // всего принято событий; слот = written % len(slots)
	level   Level
}

// NewRingTracer returns a ring holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{slots: make([]Event, capacity), level: level}
}

// RingOf returns the ring behind t, looking through a MultiTracer.
func RingOf(t Tracer) *RingTracer {
	switch t := t.(type) {
	case *RingTracer:
		return t
	case *MultiTracer:
		return t.Ring()
	default:
		return nil
	}
}

// Emit stores ev, overwriting the oldest event once the ring is full.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Kind, ev.Scope) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.slots[t.written%uint64(len(t.slots))] = stored
	t.written++
	t.mu.Unlock()
}

// Len returns how many events are currently held.
func (t *RingTracer) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int(min(t.written, uint64(len(t.slots))))
}

// Dropped returns how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n := uint64(len(t.slots)); t.written > n {
		return t.written - n
	}
	return 0
}

// Snapshot returns the held events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	size := uint64(len(t.slots))
	held := min(t.written, size)
	out := make([]Event, 0, held)
	for i := t.written - held; i < t.written; i++ {
		out = append(out, t.slots[i%size])
	}
	return out
}

// Errors returns the held error events, oldest first.
func (t *RingTracer) Errors() []Event {
	var out []Event
	for _, ev := range t.Snapshot() {
		if ev.Kind == KindError {
			out = append(out, ev)
		}
	}
	return out
}

// Dump writes the held events to w. Text dumps start with a note when older
// events were lost; NDJSON stays one event per line.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	if dropped := t.Dropped(); dropped > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "... %d earlier trace events dropped\n", dropped); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

// Flush has nothing to do: events live in memory.
func (t *RingTracer) Flush() error { return nil }

// Close has nothing to release.
func (t *RingTracer) Close() error { return nil }

// Level returns the configured level.
func (t *RingTracer) Level() Level { return t.level }

// Enabled reports whether the ring accepts events at all.
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
