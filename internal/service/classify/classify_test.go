package classify

import (
	"testing"

	"SentiPulse/internal/domain/models"
)

func TestClassifyBullish(t *testing.T) {
	got := Classify("SPY to the moon, loading calls, breakout incoming")
	if got != models.SentimentBullish {
		t.Fatalf("expected bullish, got %s", got)
	}
}

func TestClassifyBearish(t *testing.T) {
	got := Classify("market about to crash, buying puts and going short")
	if got != models.SentimentBearish {
		t.Fatalf("expected bearish, got %s", got)
	}
}

func TestClassifyNoKeywordsIsNeutral(t *testing.T) {
	got := Classify("the market might go up or down")
	if got != models.SentimentNeutral {
		t.Fatalf("expected neutral, got %s", got)
	}
}

func TestClassifyTieIsNeutral(t *testing.T) {
	// one bullish hit (calls) and one bearish hit (puts)
	got := Classify("holding calls and puts into Friday")
	if got != models.SentimentNeutral {
		t.Fatalf("expected neutral on tie, got %s", got)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	if Classify("BULLISH BREAKOUT") != models.SentimentBullish {
		t.Fatalf("expected case-insensitive bullish match")
	}
}

func TestClassifyDeterministic(t *testing.T) {
	const text = "green candles, rocket mode, higher highs"
	first := Classify(text)
	for i := 0; i < 10; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
}

func TestClassifyEmptyText(t *testing.T) {
	if Classify("") != models.SentimentNeutral {
		t.Fatalf("expected neutral on empty text")
	}
}
