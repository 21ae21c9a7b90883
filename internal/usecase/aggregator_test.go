package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"SentiPulse/internal/domain/models"
	drepo "SentiPulse/internal/domain/repository"
	irepo "SentiPulse/internal/repository"
	applogger "SentiPulse/pkg/logger"
)

type fakeAdapter struct {
	name    string
	tallies []*models.Tally
	err     error
	calls   int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(_ context.Context) ([]*models.Tally, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tallies, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordCycle(string, float64)           {}
func (noopMetrics) RecordPosts(string, int)               {}
func (noopMetrics) RecordAdapterError(string)             {}
func (noopMetrics) RecordSentiment(float64, float64, float64) {}
func (noopMetrics) RecordAlert(string)                    {}
func (noopMetrics) RecordStoreError(string)               {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTally(source, ticker string, bullish, bearish, neutral int) *models.Tally {
	tally := &models.Tally{Source: source, Ticker: ticker, Bullish: bullish, Bearish: bearish, Neutral: neutral}
	tally.FinalizeCounts()
	return tally
}

func buildAggregator(store *irepo.MemoryStore, logger *applogger.Logger, dedup bool, adapters ...*fakeAdapter) *SentimentAggregator {
	srcs := make([]drepo.SourceAdapter, len(adapters))
	for i, a := range adapters {
		srcs[i] = a
	}
	return NewSentimentAggregator(srcs, store, nil, nil, noopMetrics{}, logger, time.Second, 0, dedup)
}

func TestAggregateExtremeBullish(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	agg := buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "stocktwits", tallies: []*models.Tally{newTally("stocktwits", "SPY", 95, 3, 2)}},
	)

	res, err := agg.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if res == nil {
		t.Fatalf("expected result")
	}
	if res.ExtremeSignal != models.SignalExtremeBullish {
		t.Fatalf("expected EXTREME_BULLISH, got %q", res.ExtremeSignal)
	}
	if res.BullishPct != 95 {
		t.Fatalf("expected 95%% bullish, got %v", res.BullishPct)
	}

	alerts, err := store.ActiveAlerts(ctx)
	if err != nil {
		t.Fatalf("active alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(alerts))
	}
	if alerts[0].AlertType != models.SignalExtremeBullish || alerts[0].SentimentPct != 95 {
		t.Fatalf("unexpected alert %+v", alerts[0])
	}

	snap, err := store.LatestAggregate(ctx)
	if err != nil {
		t.Fatalf("latest aggregate: %v", err)
	}
	if snap == nil || snap.ExtremeSignal != models.SignalExtremeBullish || snap.TotalPosts != 100 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestAggregateExtremeBearishMessage(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	agg := buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "reddit", tallies: []*models.Tally{newTally("reddit", "ALL", 2, 95, 3)}},
	)

	if _, err := agg.Aggregate(ctx); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	alerts, _ := store.ActiveAlerts(ctx)
	if len(alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(alerts))
	}
	if alerts[0].AlertType != models.SignalExtremeBearish {
		t.Fatalf("expected EXTREME_BEARISH, got %q", alerts[0].AlertType)
	}
	if !strings.Contains(alerts[0].Message, "bearish") || !strings.Contains(alerts[0].Message, "buying") {
		t.Fatalf("unexpected message %q", alerts[0].Message)
	}
}

func TestThresholdBoundaries(t *testing.T) {
	ctx := context.Background()

	// Exactly 90.0% is extreme (inclusive).
	store := newMemStore(t)
	agg := buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "stocktwits", tallies: []*models.Tally{newTally("stocktwits", "SPY", 90, 10, 0)}},
	)
	res, err := agg.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if res.ExtremeSignal != models.SignalExtremeBullish {
		t.Fatalf("90.0%% must be EXTREME_BULLISH, got %q", res.ExtremeSignal)
	}

	// 89.9% is high, not extreme, and fires no alert.
	store = newMemStore(t)
	agg = buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "stocktwits", tallies: []*models.Tally{newTally("stocktwits", "SPY", 899, 101, 0)}},
	)
	res, err = agg.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if res.ExtremeSignal != models.SignalHighBullish {
		t.Fatalf("89.9%% must be HIGH_BULLISH, got %q", res.ExtremeSignal)
	}
	alerts, _ := store.ActiveAlerts(ctx)
	if len(alerts) != 0 {
		t.Fatalf("high band must not alert, got %d alerts", len(alerts))
	}
}

func TestNeutralBand(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	agg := buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "stocktwits", tallies: []*models.Tally{newTally("stocktwits", "SPY", 50, 30, 20)}},
	)
	res, err := agg.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if res.ExtremeSignal != models.SignalNone {
		t.Fatalf("expected no signal, got %q", res.ExtremeSignal)
	}
}

func TestZeroSourceCycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	agg := buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "stocktwits"},
		&fakeAdapter{name: "reddit", err: errors.New("reddit down")},
	)

	res, err := agg.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil result on zero-data cycle, got %+v", res)
	}
	if store.NumReadings() != 0 {
		t.Fatalf("zero-data cycle must not persist readings")
	}
	snap, _ := store.LatestAggregate(ctx)
	if snap != nil {
		t.Fatalf("zero-data cycle must not persist a snapshot")
	}
}

func TestAdapterFailureDoesNotAbortCycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	agg := buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "stocktwits", err: errors.New("api 429")},
		&fakeAdapter{name: "reddit", tallies: []*models.Tally{newTally("reddit", "ALL", 10, 5, 5)}},
	)

	res, err := agg.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if res == nil {
		t.Fatalf("expected result from surviving source")
	}
	if len(res.Sources) != 1 || res.Sources[0] != "reddit" {
		t.Fatalf("expected sources [reddit], got %v", res.Sources)
	}
	if store.NumReadings() != 1 {
		t.Fatalf("expected one reading, got %d", store.NumReadings())
	}
}

func TestWeightedAggregation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	agg := buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "stocktwits", tallies: []*models.Tally{
			newTally("stocktwits", "SPY", 80, 20, 0),
			newTally("stocktwits", "QQQ", 40, 40, 20),
		}},
		&fakeAdapter{name: "reddit", tallies: []*models.Tally{newTally("reddit", "ALL", 10, 0, 0)}},
	)

	res, err := agg.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if res.TotalPosts != 210 {
		t.Fatalf("expected 210 total posts, got %d", res.TotalPosts)
	}
	wantBullish := float64(130) / 210 * 100
	if math.Abs(res.BullishPct-wantBullish) > 1e-9 {
		t.Fatalf("expected %.4f%% bullish, got %.4f", wantBullish, res.BullishPct)
	}
	sum := res.BullishPct + res.BearishPct + res.NeutralPct
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("percentages must sum to 100, got %v", sum)
	}
	if store.NumReadings() != 3 {
		t.Fatalf("expected 3 readings (one per tally), got %d", store.NumReadings())
	}
}

func TestRepeatAlertsWithoutDedup(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	agg := buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "stocktwits", tallies: []*models.Tally{newTally("stocktwits", "SPY", 95, 3, 2)}},
	)

	for i := 0; i < 2; i++ {
		if _, err := agg.Aggregate(ctx); err != nil {
			t.Fatalf("aggregate %d: %v", i, err)
		}
	}
	alerts, _ := store.ActiveAlerts(ctx)
	if len(alerts) != 2 {
		t.Fatalf("without dedup every extreme cycle alerts, got %d", len(alerts))
	}
}

func TestDedupSuppressesRepeatUntilAcknowledged(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	agg := buildAggregator(store, testLogger(t), true,
		&fakeAdapter{name: "stocktwits", tallies: []*models.Tally{newTally("stocktwits", "SPY", 95, 3, 2)}},
	)

	for i := 0; i < 2; i++ {
		if _, err := agg.Aggregate(ctx); err != nil {
			t.Fatalf("aggregate %d: %v", i, err)
		}
	}
	alerts, _ := store.ActiveAlerts(ctx)
	if len(alerts) != 1 {
		t.Fatalf("dedup must suppress the repeat, got %d alerts", len(alerts))
	}

	if err := store.AcknowledgeAlert(ctx, alerts[0].ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if _, err := agg.Aggregate(ctx); err != nil {
		t.Fatalf("aggregate after ack: %v", err)
	}
	alerts, _ = store.ActiveAlerts(ctx)
	if len(alerts) != 1 {
		t.Fatalf("acknowledged condition persisting must re-alert, got %d", len(alerts))
	}
}

func TestEmptyTallySkipped(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	empty := &models.Tally{Source: "stocktwits", Ticker: "SPX"}
	empty.FinalizeCounts()
	agg := buildAggregator(store, testLogger(t), false,
		&fakeAdapter{name: "stocktwits", tallies: []*models.Tally{empty}},
	)

	res, err := agg.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if res != nil {
		t.Fatalf("all-empty tallies must yield a nil result")
	}
	if store.NumReadings() != 0 {
		t.Fatalf("empty tallies must not be persisted")
	}
}

func newMemStore(t *testing.T) *irepo.MemoryStore {
	t.Helper()
	return irepo.NewMemoryStore(1000, 500, 100).(*irepo.MemoryStore)
}
