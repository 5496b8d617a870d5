package source

import "sync"

// Shared serializes access to a Source so that several scanners can pull
// from the same input. Every Next call is atomic with respect to the others.
//
// A scanner always reads through a Shared; with a single scanner the lock is
// never contended.
type Shared struct {
	mu  sync.Mutex
	src Source
}

// Share wraps src. Sharing an already shared source returns it unchanged.
func Share(src Source) *Shared {
	if s, ok := src.(*Shared); ok {
		return s
	}
	return &Shared{src: src}
}

// Next implements Source.
func (s *Shared) Next() (rune, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Next()
}
