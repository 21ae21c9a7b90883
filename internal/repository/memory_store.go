package repository

import (
	"context"
	"sync"
	"time"

	"SentiPulse/internal/domain/models"
	"SentiPulse/internal/domain/repository"
)

// MemoryStore implements Store with in-process slices. Single-writer is the
// expected usage (one aggregation cycle at a time), but all operations take
// the lock so API reads stay consistent with in-flight appends.
type MemoryStore struct {
	mu         sync.RWMutex
	readings   []*models.Reading
	aggregates []*models.AggregateSnapshot
	alerts     []*models.Alert

	readingSeq   int64
	aggregateSeq int64
	alertSeq     int64

	readingsCap   int
	aggregatesCap int
	alertsCap     int
}

// NewMemoryStore creates an in-memory store with the given collection caps.
func NewMemoryStore(readingsCap, aggregatesCap, alertsCap int) repository.Store {
	return &MemoryStore{
		readingsCap:   readingsCap,
		aggregatesCap: aggregatesCap,
		alertsCap:     alertsCap,
	}
}

func (s *MemoryStore) AppendReading(_ context.Context, r *models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readingSeq++
	r.ID = s.readingSeq
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	cp := *r
	s.readings = append(s.readings, &cp)
	if len(s.readings) > s.readingsCap {
		s.readings = s.readings[len(s.readings)-s.readingsCap:]
	}
	return nil
}

func (s *MemoryStore) AppendAggregate(_ context.Context, a *models.AggregateSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aggregateSeq++
	a.ID = s.aggregateSeq
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}

	cp := *a
	s.aggregates = append(s.aggregates, &cp)
	if len(s.aggregates) > s.aggregatesCap {
		s.aggregates = s.aggregates[len(s.aggregates)-s.aggregatesCap:]
	}
	return nil
}

func (s *MemoryStore) AppendAlert(_ context.Context, a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alertSeq++
	a.ID = s.alertSeq
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	a.Acknowledged = false

	cp := *a
	s.alerts = append(s.alerts, &cp)
	if len(s.alerts) > s.alertsCap {
		s.alerts = s.alerts[len(s.alerts)-s.alertsCap:]
	}
	return nil
}

func (s *MemoryStore) LatestAggregate(_ context.Context) (*models.AggregateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.aggregates) == 0 {
		return nil, nil
	}
	cp := *s.aggregates[len(s.aggregates)-1]
	return &cp, nil
}

func (s *MemoryStore) AggregatesSince(_ context.Context, d time.Duration) ([]*models.AggregateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-d)
	out := make([]*models.AggregateSnapshot, 0)
	for _, a := range s.aggregates {
		if a.Timestamp.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) ActiveAlerts(_ context.Context) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Alert, 0)
	for _, a := range s.alerts {
		if !a.Acknowledged {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) AcknowledgeAlert(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Unknown id is a no-op, not an error.
	for _, a := range s.alerts {
		if a.ID == id {
			a.Acknowledged = true
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Health(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// NumReadings returns the current reading count. Used by tests.
func (s *MemoryStore) NumReadings() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

// OldestReading returns the oldest retained reading, or nil. Used by tests.
func (s *MemoryStore) OldestReading() *models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.readings) == 0 {
		return nil
	}
	cp := *s.readings[0]
	return &cp
}
