package repository

import (
	"context"
	"time"

	"SentiPulse/internal/domain/models"
)

// SourceAdapter fetches and normalizes sentiment from one social source.
// Fetch returns zero or more tallies; a tally with Total == 0 contributes
// nothing to the cycle.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) ([]*models.Tally, error)
}

// Store owns the three bounded collections. Appends assign sequential ids
// and truncate FIFO immediately, so a reader never observes a collection
// over its cap.
type Store interface {
	AppendReading(ctx context.Context, r *models.Reading) error
	AppendAggregate(ctx context.Context, s *models.AggregateSnapshot) error
	AppendAlert(ctx context.Context, a *models.Alert) error
	LatestAggregate(ctx context.Context) (*models.AggregateSnapshot, error)
	AggregatesSince(ctx context.Context, d time.Duration) ([]*models.AggregateSnapshot, error)
	ActiveAlerts(ctx context.Context) ([]*models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id int64) error
	Health(ctx context.Context) error
	Close() error
}

// Archive keeps an append-only long-term copy of readings and snapshots
// beyond the store's rolling window. Best-effort; cycle never fails on it.
type Archive interface {
	ArchiveReading(ctx context.Context, r *models.Reading) error
	ArchiveAggregate(ctx context.Context, s *models.AggregateSnapshot) error
	Close() error
}

// AlertSink publishes fired alerts to downstream consumers.
type AlertSink interface {
	PublishAlert(ctx context.Context, a *models.Alert) error
	Close() error
}

type Metrics interface {
	RecordCycle(result string, seconds float64)
	RecordPosts(source string, count int)
	RecordAdapterError(source string)
	RecordSentiment(bullishPct, bearishPct, neutralPct float64)
	RecordAlert(alertType string)
	RecordStoreError(op string)
}
