// Package clock supplies the wall-clock time used for every timestamp the
// engines record.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

// Stepping returns start, then advances by step on every call
type Stepping struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewStepping creates a clock whose first reading is start
func NewStepping(start time.Time, step time.Duration) *Stepping {
	return &Stepping{next: start, step: step}
}

func (s *Stepping) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.next
	s.next = s.next.Add(s.step)
	return now
}

// Advance moves the next reading forward by d
func (s *Stepping) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = s.next.Add(d)
}
