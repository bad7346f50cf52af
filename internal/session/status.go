package session

import (
	"fmt"
	"strconv"

	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

// MixIcon is shown when more than one sound is audible.
const MixIcon = "🎧"

// Status is the floating player line.
type Status struct {
	// Visible is false when nothing is audible.
	Visible bool
	Title   string
	Icon    string
	Count   int
	Timer   string
}

// String renders the status on one line, e.g. "🎧 Mix Active (3) · 14:59".
func (st Status) String() string {
	if !st.Visible {
		return "Nothing playing · " + st.Timer
	}
	return fmt.Sprintf("%s %s · %s", st.Icon, st.Title, st.Timer)
}

// Status returns the floating player line for the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	st := Status{Timer: s.timer.Display()}
	audible := s.audibleLocked()
	st.Count = len(audible)

	switch {
	case st.Count == 0:
		return st
	case st.Count > 1:
		st.Title = fmt.Sprintf("Mix Active (%d)", st.Count)
		st.Icon = MixIcon
	default:
		st.Title, st.Icon = "Sound Playing", "🎵"
		if sound, ok := s.catalogue.Get(audible[0]); ok {
			st.Title, st.Icon = sound.Title, sound.Icon
		}
	}
	st.Visible = true
	return st
}

func formatPercent(w float64) string {
	return strconv.Itoa(model.Percent(w)) + "%"
}
