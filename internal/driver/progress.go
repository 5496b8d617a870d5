package driver

import "time"

// Status captures the progress state of one file.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being scanned.
	StatusWorking Status = "scanning"
	// StatusCached indicates the tokens came from the disk cache.
	StatusCached Status = "cached"
	// StatusDone indicates the scan finished cleanly.
	StatusDone Status = "done"
	// StatusError indicates the file could not be loaded or the scan failed.
	StatusError Status = "error"
)

// Finished reports whether no further events follow for the file.
func (s Status) Finished() bool {
	return s == StatusCached || s == StatusDone || s == StatusError
}

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Status  Status
	Tokens  int
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several workers at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// OnEvent implements ProgressSink.
func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

// OnEvent implements ProgressSink.
func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func notify(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
