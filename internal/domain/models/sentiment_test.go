package models

import "testing"

func TestClassifySignalBands(t *testing.T) {
	cases := []struct {
		name     string
		bullish  float64
		bearish  float64
		expected Signal
	}{
		{"extreme bullish at threshold", 90.0, 10.0, SignalExtremeBullish},
		{"extreme bullish above", 95.5, 2.0, SignalExtremeBullish},
		{"extreme bearish at threshold", 5.0, 90.0, SignalExtremeBearish},
		{"high bullish at threshold", 75.0, 20.0, SignalHighBullish},
		{"high bullish just below extreme", 89.9, 10.1, SignalHighBullish},
		{"high bearish", 10.0, 80.0, SignalHighBearish},
		{"no signal just below high", 74.9, 20.0, SignalNone},
		{"no signal balanced", 50.0, 50.0, SignalNone},
		{"extreme bullish beats bearish check", 90.0, 90.0, SignalExtremeBullish},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifySignal(tc.bullish, tc.bearish); got != tc.expected {
				t.Fatalf("ClassifySignal(%v, %v) = %q, want %q", tc.bullish, tc.bearish, got, tc.expected)
			}
		})
	}
}

func TestSignalIsExtreme(t *testing.T) {
	if !SignalExtremeBullish.IsExtreme() || !SignalExtremeBearish.IsExtreme() {
		t.Fatalf("extreme signals must report extreme")
	}
	if SignalHighBullish.IsExtreme() || SignalHighBearish.IsExtreme() || SignalNone.IsExtreme() {
		t.Fatalf("high and empty signals must not report extreme")
	}
}

func TestFinalizeCounts(t *testing.T) {
	tally := &Tally{Source: "stocktwits", Ticker: "SPY", Bullish: 3, Bearish: 1, Neutral: 1}
	tally.FinalizeCounts()
	if tally.Total != 5 {
		t.Fatalf("expected total 5, got %d", tally.Total)
	}
	if tally.BullishPct != 60 || tally.BearishPct != 20 || tally.NeutralPct != 20 {
		t.Fatalf("unexpected percentages %+v", tally)
	}

	empty := &Tally{}
	empty.FinalizeCounts()
	if empty.Total != 0 || empty.BullishPct != 0 || empty.BearishPct != 0 || empty.NeutralPct != 0 {
		t.Fatalf("empty tally must zero everything, got %+v", empty)
	}
}
