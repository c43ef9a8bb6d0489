package engine

import (
	"image"
	"sync/atomic"
)

// State is the lifecycle state of a cache slot.
type State int32

const (
	StateEmpty State = iota
	StateComputing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateComputing:
		return "computing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// slot is the write-once cache cell of one level. img is stored before state
// becomes Ready, and err before state becomes Failed.
type slot struct {
	state atomic.Int32
	img   atomic.Pointer[image.NRGBA]
	err   atomic.Pointer[error]
}

func (s *slot) load() State {
	return State(s.state.Load())
}

// claim moves the slot from the given state to Computing.
func (s *slot) claim(from State) bool {
	return s.state.CompareAndSwap(int32(from), int32(StateComputing))
}

func (s *slot) publish(img *image.NRGBA) {
	s.img.Store(img)
	s.err.Store(nil)
	s.state.Store(int32(StateReady))
}

func (s *slot) fail(err error) {
	s.err.Store(&err)
	s.state.Store(int32(StateFailed))
}

func (s *slot) lastError() error {
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}
