package scanner

// DefaultBuffer is the token channel capacity used when Options.Buffer is 0.
const DefaultBuffer = 64

// Options tunes an engine.
type Options struct {
	// Buffer is the capacity of the token channel; 0 means DefaultBuffer,
	// a negative value means unbuffered.
	Buffer int
	// MaxPending caps the number of characters consumed since the last
	// emission; 0 means no cap.
	MaxPending int
	// Name labels the scan in traces (usually the file path).
	Name string
}

func (o Options) withDefaults() Options {
	switch {
	case o.Buffer == 0:
		o.Buffer = DefaultBuffer
	case o.Buffer < 0:
		o.Buffer = 0
	}
	if o.MaxPending < 0 {
		o.MaxPending = 0
	}
	if o.Name == "" {
		o.Name = "scan"
	}
	return o
}
