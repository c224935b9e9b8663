package app

import (
	"sync"
	"time"

	"proximity.onebusaway.org/internal/proximity"
)

// Status is what the monitor loop publishes for the healthcheck. The loop
// writes it, HTTP handlers read it.
type Status struct {
	mu          sync.RWMutex
	lifetimes   int
	evaluated   bool
	distance    float64
	tier        proximity.Tier
	evaluatedAt time.Time
}

// StatusSnapshot is a consistent copy of Status.
type StatusSnapshot struct {
	Lifetimes   int
	Evaluated   bool
	Distance    float64
	Tier        proximity.Tier
	EvaluatedAt time.Time
}

// NewStatus returns a Status with no lifetime started and nothing
// evaluated, which the healthcheck reports as unavailable.
func NewStatus() *Status {
	return &Status{}
}

func (s *Status) lifetimeStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lifetimes++
}

func (s *Status) recordEvaluation(distance float64, tier proximity.Tier, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluated = true
	s.distance = distance
	s.tier = tier
	s.evaluatedAt = at
}

// Snapshot returns the current status.
func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatusSnapshot{
		Lifetimes:   s.lifetimes,
		Evaluated:   s.evaluated,
		Distance:    s.distance,
		Tier:        s.tier,
		EvaluatedAt: s.evaluatedAt,
	}
}
