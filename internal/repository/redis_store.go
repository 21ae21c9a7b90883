package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"SentiPulse/internal/domain/models"
	"SentiPulse/internal/domain/repository"
)

// RedisStore implements Store on Redis lists. RPUSH plus LTRIM keeps each
// collection FIFO-bounded on every append; INCR sequence keys give per
// collection monotonic ids that survive restarts.
type RedisStore struct {
	client *redis.Client
	prefix string

	readingsCap   int
	aggregatesCap int
	alertsCap     int
}

// RedisStoreConfig holds Redis store configuration.
type RedisStoreConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	Prefix       string
	PoolSize     int
	MinIdleConns int
	PoolTimeout  time.Duration
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(cfg *RedisStoreConfig, readingsCap, aggregatesCap, alertsCap int) (repository.Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6379
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "sentipulse"
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{
		client:        client,
		prefix:        cfg.Prefix,
		readingsCap:   readingsCap,
		aggregatesCap: aggregatesCap,
		alertsCap:     alertsCap,
	}, nil
}

// Persisted record shapes. Kept separate from domain models so the wire
// format stays stable.

type readingRecord struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	Ticker     string    `json:"ticker"`
	Bullish    int       `json:"bullish_count"`
	Bearish    int       `json:"bearish_count"`
	Neutral    int       `json:"neutral_count"`
	Total      int       `json:"total_posts"`
	BullishPct float64   `json:"bullish_pct"`
	BearishPct float64   `json:"bearish_pct"`
	NeutralPct float64   `json:"neutral_pct"`
}

type aggregateRecord struct {
	ID            int64         `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	BullishPct    float64       `json:"bullish_pct"`
	BearishPct    float64       `json:"bearish_pct"`
	NeutralPct    float64       `json:"neutral_pct"`
	TotalPosts    int           `json:"total_posts"`
	ExtremeSignal models.Signal `json:"extreme_signal,omitempty"`
}

type alertRecord struct {
	ID           int64         `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	AlertType    models.Signal `json:"alert_type"`
	SentimentPct float64       `json:"sentiment_pct"`
	Message      string        `json:"message"`
	Acknowledged bool          `json:"acknowledged"`
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *RedisStore) appendBounded(ctx context.Context, key string, payload []byte, bound int) error {
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-bound), -1)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) AppendReading(ctx context.Context, r *models.Reading) error {
	id, err := s.client.Incr(ctx, s.key("seq:readings")).Result()
	if err != nil {
		return fmt.Errorf("reading seq: %w", err)
	}
	r.ID = id
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	b, err := json.Marshal(&readingRecord{
		ID: r.ID, Timestamp: r.Timestamp, Source: r.Source, Ticker: r.Ticker,
		Bullish: r.Bullish, Bearish: r.Bearish, Neutral: r.Neutral, Total: r.Total,
		BullishPct: r.BullishPct, BearishPct: r.BearishPct, NeutralPct: r.NeutralPct,
	})
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	return s.appendBounded(ctx, s.key("readings"), b, s.readingsCap)
}

func (s *RedisStore) AppendAggregate(ctx context.Context, a *models.AggregateSnapshot) error {
	id, err := s.client.Incr(ctx, s.key("seq:aggregates")).Result()
	if err != nil {
		return fmt.Errorf("aggregate seq: %w", err)
	}
	a.ID = id
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}

	b, err := json.Marshal(&aggregateRecord{
		ID: a.ID, Timestamp: a.Timestamp,
		BullishPct: a.BullishPct, BearishPct: a.BearishPct, NeutralPct: a.NeutralPct,
		TotalPosts: a.TotalPosts, ExtremeSignal: a.ExtremeSignal,
	})
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}
	return s.appendBounded(ctx, s.key("aggregates"), b, s.aggregatesCap)
}

func (s *RedisStore) AppendAlert(ctx context.Context, a *models.Alert) error {
	id, err := s.client.Incr(ctx, s.key("seq:alerts")).Result()
	if err != nil {
		return fmt.Errorf("alert seq: %w", err)
	}
	a.ID = id
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	a.Acknowledged = false

	b, err := json.Marshal(&alertRecord{
		ID: a.ID, Timestamp: a.Timestamp, AlertType: a.AlertType,
		SentimentPct: a.SentimentPct, Message: a.Message, Acknowledged: false,
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	return s.appendBounded(ctx, s.key("alerts"), b, s.alertsCap)
}

func (s *RedisStore) LatestAggregate(ctx context.Context) (*models.AggregateSnapshot, error) {
	raw, err := s.client.LIndex(ctx, s.key("aggregates"), -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("latest aggregate: %w", err)
	}

	var rec aggregateRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal aggregate: %w", err)
	}
	return rec.toModel(), nil
}

func (s *RedisStore) AggregatesSince(ctx context.Context, d time.Duration) ([]*models.AggregateSnapshot, error) {
	rows, err := s.client.LRange(ctx, s.key("aggregates"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("aggregates range: %w", err)
	}

	cutoff := time.Now().Add(-d)
	out := make([]*models.AggregateSnapshot, 0, len(rows))
	for _, raw := range rows {
		var rec aggregateRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		if rec.Timestamp.After(cutoff) {
			out = append(out, rec.toModel())
		}
	}
	return out, nil
}

func (s *RedisStore) ActiveAlerts(ctx context.Context) ([]*models.Alert, error) {
	rows, err := s.client.LRange(ctx, s.key("alerts"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("alerts range: %w", err)
	}

	out := make([]*models.Alert, 0, len(rows))
	for _, raw := range rows {
		var rec alertRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		if !rec.Acknowledged {
			out = append(out, rec.toModel())
		}
	}
	return out, nil
}

func (s *RedisStore) AcknowledgeAlert(ctx context.Context, id int64) error {
	// Single-writer assumption: the list cannot be trimmed between the
	// range and the LSET below.
	rows, err := s.client.LRange(ctx, s.key("alerts"), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("alerts range: %w", err)
	}

	for i, raw := range rows {
		var rec alertRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		if rec.ID != id {
			continue
		}
		rec.Acknowledged = true
		b, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("marshal alert: %w", err)
		}
		if err := s.client.LSet(ctx, s.key("alerts"), int64(i), b).Err(); err != nil {
			return fmt.Errorf("ack alert: %w", err)
		}
		return nil
	}
	// Unknown id is a no-op, not an error.
	return nil
}

func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (r *aggregateRecord) toModel() *models.AggregateSnapshot {
	return &models.AggregateSnapshot{
		ID:            r.ID,
		Timestamp:     r.Timestamp,
		BullishPct:    r.BullishPct,
		BearishPct:    r.BearishPct,
		NeutralPct:    r.NeutralPct,
		TotalPosts:    r.TotalPosts,
		ExtremeSignal: r.ExtremeSignal,
	}
}

func (r *alertRecord) toModel() *models.Alert {
	return &models.Alert{
		ID:           r.ID,
		Timestamp:    r.Timestamp,
		AlertType:    r.AlertType,
		SentimentPct: r.SentimentPct,
		Message:      r.Message,
		Acknowledged: r.Acknowledged,
	}
}
