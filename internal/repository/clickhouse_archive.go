package repository

import (
	"context"
	"database/sql"
	"fmt"

	"SentiPulse/internal/domain/models"
	"SentiPulse/internal/domain/repository"
)

// ClickHouseArchive implements Archive on ClickHouse. The rolling-window
// store stays authoritative; this keeps an append-only copy of readings and
// aggregate snapshots for long-range analysis.
type ClickHouseArchive struct {
	db             *sql.DB
	readingsTable  string
	aggregateTable string
}

// NewClickHouseArchive creates a ClickHouse archive over an existing pool.
func NewClickHouseArchive(db *sql.DB, readingsTable, aggregateTable string) repository.Archive {
	return &ClickHouseArchive{
		db:             db,
		readingsTable:  readingsTable,
		aggregateTable: aggregateTable,
	}
}

// ArchiveSchema returns idempotent DDL for the archive tables.
func ArchiveSchema(database, readingsTable, aggregateTable string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id Int64, ts DateTime, source String, ticker String,
			bullish_count Int32, bearish_count Int32, neutral_count Int32, total_posts Int32,
			bullish_pct Float64, bearish_pct Float64, neutral_pct Float64
		) ENGINE=MergeTree ORDER BY (source, ts)`, readingsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id Int64, ts DateTime,
			bullish_pct Float64, bearish_pct Float64, neutral_pct Float64,
			total_posts Int32, extreme_signal String
		) ENGINE=MergeTree ORDER BY ts`, aggregateTable),
	}
}

func (a *ClickHouseArchive) ArchiveReading(ctx context.Context, r *models.Reading) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(id, ts, source, ticker, bullish_count, bearish_count, neutral_count, total_posts, bullish_pct, bearish_pct, neutral_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, a.readingsTable)
	_, err := a.db.ExecContext(ctx, q,
		r.ID, r.Timestamp, r.Source, r.Ticker,
		r.Bullish, r.Bearish, r.Neutral, r.Total,
		r.BullishPct, r.BearishPct, r.NeutralPct,
	)
	return err
}

func (a *ClickHouseArchive) ArchiveAggregate(ctx context.Context, s *models.AggregateSnapshot) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(id, ts, bullish_pct, bearish_pct, neutral_pct, total_posts, extreme_signal)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, a.aggregateTable)
	_, err := a.db.ExecContext(ctx, q,
		s.ID, s.Timestamp,
		s.BullishPct, s.BearishPct, s.NeutralPct,
		s.TotalPosts, string(s.ExtremeSignal),
	)
	return err
}

func (a *ClickHouseArchive) Close() error {
	return nil // pool managed by pkg/clickhouse client
}
