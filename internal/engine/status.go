package engine

// LevelStatus is the state of one cache slot.
type LevelStatus struct {
	Level     int    `json:"level"`
	BlockSize int    `json:"block_size"`
	State     State  `json:"state"`
	Error     string `json:"error,omitempty"`
}

// Status is a point-in-time view of a session.
type Status struct {
	Plan      Plan          `json:"plan"`
	Selection int           `json:"selection"`
	Strategy  Strategy      `json:"strategy"`
	Computed  int64         `json:"computed"`
	Failed    int64         `json:"failed"`
	Ready     int           `json:"ready"`
	Done      bool          `json:"done"`
	Levels    []LevelStatus `json:"levels"`
}

// Status collects the current state of every slot. The snapshot is not
// atomic across slots; workers may advance while it is being taken.
func (e *Engine) Status() Status {
	st := Status{
		Plan:      e.plan,
		Selection: e.Selection(),
		Strategy:  e.opts.Strategy,
		Computed:  e.computed.Load(),
		Failed:    e.failed.Load(),
		Levels:    make([]LevelStatus, len(e.slots)),
	}

	for level := range e.slots {
		s := &e.slots[level]
		ls := LevelStatus{
			Level:     level,
			BlockSize: e.plan.BlockSize(level),
			State:     s.load(),
		}
		if ls.State == StateReady {
			st.Ready++
		}
		if ls.State == StateFailed {
			if err := s.lastError(); err != nil {
				ls.Error = err.Error()
			}
		}
		st.Levels[level] = ls
	}

	select {
	case <-e.done:
		st.Done = true
	default:
	}

	return st
}
