package models

import "time"

// Sentiment is the classification of a single post.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Signal is the aggregate-level sentiment band for one cycle.
// Empty string means no signal.
type Signal string

const (
	SignalExtremeBullish Signal = "EXTREME_BULLISH"
	SignalExtremeBearish Signal = "EXTREME_BEARISH"
	SignalHighBullish    Signal = "HIGH_BULLISH"
	SignalHighBearish    Signal = "HIGH_BEARISH"
	SignalNone           Signal = ""
)

// Tally holds one source's raw sentiment counts for a cycle.
// Ticker is "ALL" for sources that aggregate across tickers.
type Tally struct {
	Source     string
	Ticker     string
	Bullish    int
	Bearish    int
	Neutral    int
	Total      int
	BullishPct float64
	BearishPct float64
	NeutralPct float64
}

// FinalizeCounts sets Total and the percentage fields from the raw counts.
// All percentages are zero when the tally is empty.
func (t *Tally) FinalizeCounts() {
	t.Total = t.Bullish + t.Bearish + t.Neutral
	if t.Total == 0 {
		t.BullishPct, t.BearishPct, t.NeutralPct = 0, 0, 0
		return
	}
	tot := float64(t.Total)
	t.BullishPct = float64(t.Bullish) / tot * 100
	t.BearishPct = float64(t.Bearish) / tot * 100
	t.NeutralPct = float64(t.Neutral) / tot * 100
}

// Reading is a persisted Tally. ID is assigned by the store.
type Reading struct {
	ID        int64
	Timestamp time.Time
	Tally
}

// AggregateSnapshot is the cycle-wide weighted combination of all readings
// collected in one cycle. Never recomputed after the cycle.
type AggregateSnapshot struct {
	ID            int64
	Timestamp     time.Time
	BullishPct    float64
	BearishPct    float64
	NeutralPct    float64
	TotalPosts    int
	ExtremeSignal Signal
}

// Alert records a threshold crossing. Acknowledged only ever flips
// false to true.
type Alert struct {
	ID           int64
	Timestamp    time.Time
	AlertType    Signal
	SentimentPct float64
	Message      string
	Acknowledged bool
}

// AggregateResult is what one aggregation cycle returns to its caller.
type AggregateResult struct {
	BullishPct    float64
	BearishPct    float64
	NeutralPct    float64
	TotalPosts    int
	ExtremeSignal Signal
	Sources       []string
}

// Thresholds for aggregate signal bands, inclusive.
const (
	ExtremeThresholdPct = 90.0
	HighThresholdPct    = 75.0
)

// ClassifySignal maps aggregate percentages to a signal band.
// Checked in fixed order; extreme bands win over high bands.
func ClassifySignal(bullishPct, bearishPct float64) Signal {
	switch {
	case bullishPct >= ExtremeThresholdPct:
		return SignalExtremeBullish
	case bearishPct >= ExtremeThresholdPct:
		return SignalExtremeBearish
	case bullishPct >= HighThresholdPct:
		return SignalHighBullish
	case bearishPct >= HighThresholdPct:
		return SignalHighBearish
	default:
		return SignalNone
	}
}

// IsExtreme reports whether the signal should raise an alert.
func (s Signal) IsExtreme() bool {
	return s == SignalExtremeBullish || s == SignalExtremeBearish
}
