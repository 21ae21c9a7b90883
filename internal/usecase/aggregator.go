package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SentiPulse/internal/domain/models"
	drepo "SentiPulse/internal/domain/repository"
	applogger "SentiPulse/pkg/logger"
)

// SentimentAggregator runs one full collection cycle: pull tallies from every
// configured source, persist per-source readings, combine them into a
// volume-weighted aggregate, and raise alerts on extremes.
//
// Cycles are serialized by an internal mutex, so a manual refresh arriving
// while a scheduled cycle is in flight queues behind it instead of running
// concurrently against the store.
type SentimentAggregator struct {
	mu sync.Mutex

	adapters []drepo.SourceAdapter
	store    drepo.Store
	archive  drepo.Archive // optional
	sink     drepo.AlertSink
	metrics  drepo.Metrics
	logger   *applogger.Logger

	adapterTimeout time.Duration
	adapterDelay   time.Duration
	dedupAlerts    bool
}

// NewSentimentAggregator creates the cycle engine. Archive and sink may be
// nil; they are best-effort extras.
func NewSentimentAggregator(
	adapters []drepo.SourceAdapter,
	store drepo.Store,
	archive drepo.Archive,
	sink drepo.AlertSink,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	adapterTimeout time.Duration,
	adapterDelay time.Duration,
	dedupAlerts bool,
) *SentimentAggregator {
	return &SentimentAggregator{
		adapters:       adapters,
		store:          store,
		archive:        archive,
		sink:           sink,
		metrics:        metrics,
		logger:         logger,
		adapterTimeout: adapterTimeout,
		adapterDelay:   adapterDelay,
		dedupAlerts:    dedupAlerts,
	}
}

// Aggregate runs one cycle. It returns (nil, nil) when no source produced
// data; adapter failures never abort the cycle, store failures do.
func (a *SentimentAggregator) Aggregate(ctx context.Context) (*models.AggregateResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	now := time.Now()

	collected := a.collect(ctx, now)
	if len(collected) == 0 {
		a.logger.Info("no sentiment data collected this cycle")
		a.metrics.RecordCycle("empty", time.Since(start).Seconds())
		return nil, nil
	}

	var totalBullish, totalBearish, totalNeutral, totalPosts int
	sources := make([]string, 0, len(collected))
	seen := make(map[string]bool)
	for _, t := range collected {
		totalBullish += t.Bullish
		totalBearish += t.Bearish
		totalNeutral += t.Neutral
		totalPosts += t.Total
		if !seen[t.Source] {
			seen[t.Source] = true
			sources = append(sources, t.Source)
		}
	}

	var bullishPct, bearishPct, neutralPct float64
	if totalPosts > 0 {
		bullishPct = float64(totalBullish) / float64(totalPosts) * 100
		bearishPct = float64(totalBearish) / float64(totalPosts) * 100
		neutralPct = float64(totalNeutral) / float64(totalPosts) * 100
	}

	signal := models.ClassifySignal(bullishPct, bearishPct)
	if signal.IsExtreme() {
		if err := a.fireAlert(ctx, signal, bullishPct, bearishPct, now); err != nil {
			a.metrics.RecordStoreError("append_alert")
			return nil, fmt.Errorf("append alert: %w", err)
		}
	}

	snapshot := &models.AggregateSnapshot{
		Timestamp:     now,
		BullishPct:    bullishPct,
		BearishPct:    bearishPct,
		NeutralPct:    neutralPct,
		TotalPosts:    totalPosts,
		ExtremeSignal: signal,
	}
	if err := a.store.AppendAggregate(ctx, snapshot); err != nil {
		a.metrics.RecordStoreError("append_aggregate")
		return nil, fmt.Errorf("append aggregate: %w", err)
	}
	if a.archive != nil {
		if err := a.archive.ArchiveAggregate(ctx, snapshot); err != nil {
			a.logger.Warn("archive aggregate failed", applogger.Error(err))
		}
	}

	a.metrics.RecordSentiment(bullishPct, bearishPct, neutralPct)
	a.metrics.RecordCycle("ok", time.Since(start).Seconds())
	a.logger.Info("aggregate computed",
		applogger.Float64("bullish_pct", bullishPct),
		applogger.Float64("bearish_pct", bearishPct),
		applogger.Int("total_posts", totalPosts),
		applogger.String("signal", string(signal)),
		applogger.Strings("sources", sources),
	)

	return &models.AggregateResult{
		BullishPct:    bullishPct,
		BearishPct:    bearishPct,
		NeutralPct:    neutralPct,
		TotalPosts:    totalPosts,
		ExtremeSignal: signal,
		Sources:       sources,
	}, nil
}

// collect pulls tallies from every adapter and persists one reading per
// non-empty tally. Adapter errors skip that source for the cycle.
func (a *SentimentAggregator) collect(ctx context.Context, now time.Time) []*models.Tally {
	collected := make([]*models.Tally, 0, len(a.adapters))

	for i, adapter := range a.adapters {
		if i > 0 && a.adapterDelay > 0 {
			select {
			case <-ctx.Done():
				return collected
			case <-time.After(a.adapterDelay):
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, a.adapterTimeout)
		tallies, err := adapter.Fetch(fetchCtx)
		cancel()
		if err != nil {
			a.metrics.RecordAdapterError(adapter.Name())
			a.logger.Warn("source adapter failed",
				applogger.String("source", adapter.Name()),
				applogger.Error(err),
			)
			continue
		}

		for _, tally := range tallies {
			if tally == nil || tally.Total == 0 {
				continue
			}

			reading := &models.Reading{Timestamp: now, Tally: *tally}
			if err := a.store.AppendReading(ctx, reading); err != nil {
				a.metrics.RecordStoreError("append_reading")
				a.logger.Error("append reading failed",
					applogger.String("source", tally.Source),
					applogger.Error(err),
				)
				continue
			}
			if a.archive != nil {
				if err := a.archive.ArchiveReading(ctx, reading); err != nil {
					a.logger.Warn("archive reading failed", applogger.Error(err))
				}
			}

			a.metrics.RecordPosts(tally.Source, tally.Total)
			collected = append(collected, tally)
			a.logger.Debug("reading stored",
				applogger.String("source", tally.Source),
				applogger.String("ticker", tally.Ticker),
				applogger.Float64("bullish_pct", tally.BullishPct),
				applogger.Int("total", tally.Total),
			)
		}
	}

	return collected
}

// fireAlert appends a contrarian alert for an extreme signal and publishes
// it to the sink when configured. With dedup enabled, an unacknowledged
// alert of the same type suppresses a new row.
func (a *SentimentAggregator) fireAlert(ctx context.Context, signal models.Signal, bullishPct, bearishPct float64, now time.Time) error {
	if a.dedupAlerts {
		active, err := a.store.ActiveAlerts(ctx)
		if err != nil {
			return fmt.Errorf("active alerts: %w", err)
		}
		for _, al := range active {
			if al.AlertType == signal {
				a.logger.Debug("alert suppressed, unacknowledged duplicate exists",
					applogger.String("type", string(signal)),
				)
				return nil
			}
		}
	}

	alert := &models.Alert{Timestamp: now, AlertType: signal}
	switch signal {
	case models.SignalExtremeBullish:
		alert.SentimentPct = bullishPct
		alert.Message = fmt.Sprintf("CONTRARIAN ALERT: Retail is %.1f%% bullish. Consider fading.", bullishPct)
	case models.SignalExtremeBearish:
		alert.SentimentPct = bearishPct
		alert.Message = fmt.Sprintf("CONTRARIAN ALERT: Retail is %.1f%% bearish. Consider buying.", bearishPct)
	}

	if err := a.store.AppendAlert(ctx, alert); err != nil {
		return err
	}
	a.metrics.RecordAlert(string(signal))
	a.logger.Warn("extreme sentiment alert",
		applogger.String("type", string(signal)),
		applogger.Float64("pct", alert.SentimentPct),
	)

	if a.sink != nil {
		if err := a.sink.PublishAlert(ctx, alert); err != nil {
			a.logger.Warn("alert sink publish failed", applogger.Error(err))
		}
	}
	return nil
}
