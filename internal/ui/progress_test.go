package ui

import (
	"strings"
	"testing"

	"statescan/internal/driver"
)

func TestProgressModelAppliesEvents(t *testing.T) {
	events := make(chan driver.Event)
	model := NewProgressModel("tokenize", []string{"a.txt", "b.txt"}, events).(*progressModel)

	model.Update(eventMsg{File: "a.txt", Status: driver.StatusWorking})
	if got := model.percent(); got != 0.25 {
		t.Fatalf("expected 0.25 after one file started, got %v", got)
	}
	model.Update(eventMsg{File: "a.txt", Status: driver.StatusDone, Tokens: 7})
	model.Update(eventMsg{File: "b.txt", Status: driver.StatusError})
	// события после завершения файла игнорируются
	model.Update(eventMsg{File: "a.txt", Status: driver.StatusWorking})
	model.Update(eventMsg{File: "unknown.txt", Status: driver.StatusDone, Tokens: 100})

	if model.finished != 2 || model.tokens != 7 {
		t.Fatalf("unexpected counters: finished=%d tokens=%d", model.finished, model.tokens)
	}
	if model.items[0].status != driver.StatusDone {
		t.Fatalf("late event overwrote a finished file: %v", model.items[0].status)
	}
	if got := model.percent(); got != 1 {
		t.Fatalf("expected full progress, got %v", got)
	}

	model.Update(doneMsg{})
	view := model.View()
	if !strings.Contains(view, "done: tokenize (2/2 files, 7 tokens)") {
		t.Fatalf("unexpected header:\n%s", view)
	}
	if !strings.Contains(view, "7 tok") || !strings.Contains(view, "error") {
		t.Fatalf("unexpected file lines:\n%s", view)
	}
}

func TestProgressModelListensUntilClosed(t *testing.T) {
	events := make(chan driver.Event, 1)
	model := NewProgressModel("x", []string{"a.txt"}, events).(*progressModel)

	events <- driver.Event{File: "a.txt", Status: driver.StatusCached}
	if msg, ok := model.listenForEvent()().(eventMsg); !ok || msg.Status != driver.StatusCached {
		t.Fatalf("expected cached event, got %#v", msg)
	}
	close(events)
	if _, ok := model.listenForEvent()().(doneMsg); !ok {
		t.Fatalf("expected doneMsg after close")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate changed a short value: %q", got)
	}
	if got := truncate("a/very/long/path.txt", 10); got != "a/very/..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncate("日本語テキスト", 6); got != "日..." {
		t.Fatalf("wide characters must be measured by cell width, got %q", got)
	}
}
