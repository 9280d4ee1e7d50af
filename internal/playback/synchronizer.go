// Package playback keeps a tutorial's active step in step with video time.
package playback

import (
	"fmt"
	"math"
	"sync"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/timecode"
)

const (
	// AutoSwitchTolerance is how close playback must be to a step's
	// timestamp for Observe to switch to it.
	AutoSwitchTolerance = 2.0
	// ActiveDisplayTolerance is how close playback must be for IsActive to
	// report a step that is not the current one.
	ActiveDisplayTolerance = 3.0
)

// Player is the media element being driven.
type Player interface {
	Seek(seconds float64)
	Play()
}

type cue struct {
	number  int
	seconds float64
}

// Synchronizer tracks the active step. Player calls happen outside the
// internal lock, so a player may call back into Observe.
type Synchronizer struct {
	player Player
	cues   []cue

	mu       sync.Mutex
	active   int // step number, 0 if there are no steps
	explicit bool
	current  float64
}

// New builds a synchronizer for steps, in the order given. The first step
// starts active.
func New(player Player, steps []domain.StepSnapshot) (*Synchronizer, error) {
	cues := make([]cue, 0, len(steps))
	for _, s := range steps {
		sec, err := timecode.Parse(s.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", s.StepNumber, err)
		}
		cues = append(cues, cue{number: s.StepNumber, seconds: float64(sec)})
	}
	ps := &Synchronizer{player: player, cues: cues}
	if len(cues) > 0 {
		ps.active = cues[0].number
	}
	return ps, nil
}

func (s *Synchronizer) find(number int) (cue, bool) {
	for _, c := range s.cues {
		if c.number == number {
			return c, true
		}
	}
	return cue{}, false
}

// Select seeks to step number's timestamp, starts playback and marks the
// step explicitly active. Selecting the same step again seeks again.
func (s *Synchronizer) Select(number int) error {
	c, ok := s.find(number)
	if !ok {
		return fmt.Errorf("no step %d", number)
	}

	s.mu.Lock()
	s.active = c.number
	s.explicit = true
	s.current = c.seconds
	s.mu.Unlock()

	if s.player != nil {
		s.player.Seek(c.seconds)
		s.player.Play()
	}
	return nil
}

// Observe records a playback time sample. The first step in order within
// AutoSwitchTolerance becomes active if it is not already. It never seeks.
// It returns the active step number and whether it changed.
func (s *Synchronizer) Observe(seconds float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if math.IsNaN(seconds) {
		return s.active, false
	}
	s.current = seconds

	for _, c := range s.cues {
		if math.Abs(seconds-c.seconds) < AutoSwitchTolerance {
			if c.number == s.active {
				return s.active, false
			}
			s.active = c.number
			s.explicit = false
			return s.active, true
		}
	}
	return s.active, false
}

// IsActive reports whether step number should be shown as active: it is the
// current step, or playback is within ActiveDisplayTolerance of it.
func (s *Synchronizer) IsActive(number int) bool {
	c, ok := s.find(number)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.number == s.active || math.Abs(s.current-c.seconds) < ActiveDisplayTolerance
}

// Active returns the active step number and whether the user chose it.
func (s *Synchronizer) Active() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.explicit
}

// Position returns the last observed playback time in seconds.
func (s *Synchronizer) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
