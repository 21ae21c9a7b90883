package classify

import (
	"strings"

	"SentiPulse/internal/domain/models"
)

// Keyword lists tuned for retail trading chatter. Matching is substring
// based, so "bull" also hits "bullish"; both lists count independently.
var (
	bullishKeywords = []string{
		"bullish", "bull", "long", "calls", "buy", "moon", "pump", "rip",
		"green", "rocket", "ath", "breakout", "higher", "uppies",
	}
	bearishKeywords = []string{
		"bearish", "bear", "short", "puts", "sell", "dump", "crash", "red",
		"drill", "tank", "drop", "lower", "downies", "fade",
	}
)

// Classify maps a text snippet to a sentiment by keyword count comparison.
// Pure function; ties (including zero hits on both sides) are neutral.
func Classify(text string) models.Sentiment {
	lower := strings.ToLower(text)

	var bullish, bearish int
	for _, kw := range bullishKeywords {
		if strings.Contains(lower, kw) {
			bullish++
		}
	}
	for _, kw := range bearishKeywords {
		if strings.Contains(lower, kw) {
			bearish++
		}
	}

	switch {
	case bullish > bearish:
		return models.SentimentBullish
	case bearish > bullish:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}
