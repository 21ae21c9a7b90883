package birdcli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"SentiPulse/internal/domain/models"
	drepo "SentiPulse/internal/domain/repository"
	"SentiPulse/internal/service/classify"
	applogger "SentiPulse/pkg/logger"
)

// Client implements a SourceAdapter over the bird CLI Twitter/X search tool.
// The process invocation stays inside this package; the aggregator only sees
// the normal adapter contract.
type Client struct {
	logger  *applogger.Logger
	command string
	terms   []string
	limit   int
	timeout time.Duration
	delay   time.Duration
}

// New creates a new bird CLI SourceAdapter.
func New(logger *applogger.Logger, command string, terms []string, limit int, timeout, delay time.Duration) drepo.SourceAdapter {
	return &Client{
		logger:  logger,
		command: command,
		terms:   terms,
		limit:   limit,
		timeout: timeout,
		delay:   delay,
	}
}

func (c *Client) Name() string { return "twitter" }

type tweet struct {
	Text     string `json:"text"`
	FullText string `json:"full_text"`
}

// Fetch runs one bird search per term and classifies the returned tweets
// into one combined tally. When the CLI credentials are absent the adapter
// reports itself unavailable rather than erroring the cycle.
func (c *Client) Fetch(ctx context.Context) ([]*models.Tally, error) {
	if os.Getenv("AUTH_TOKEN") == "" || os.Getenv("CT0") == "" {
		c.logger.Debug("twitter adapter skipped, AUTH_TOKEN/CT0 not set")
		return nil, nil
	}

	tally := &models.Tally{Source: c.Name(), Ticker: "ALL"}

	for i, term := range c.terms {
		if i > 0 && c.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay):
			}
		}

		tweets, err := c.search(ctx, term)
		if err != nil {
			c.logger.Warn("twitter search failed",
				applogger.String("term", term),
				applogger.Error(err),
			)
			continue
		}

		for _, tw := range tweets {
			text := tw.Text
			if text == "" {
				text = tw.FullText
			}
			if len(text) < 5 {
				continue
			}
			switch classify.Classify(text) {
			case models.SentimentBullish:
				tally.Bullish++
			case models.SentimentBearish:
				tally.Bearish++
			default:
				tally.Neutral++
			}
		}
	}

	tally.FinalizeCounts()
	if tally.Total == 0 {
		return nil, nil
	}
	return []*models.Tally{tally}, nil
}

func (c *Client) search(ctx context.Context, term string) ([]tweet, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.command, "search", term, "--limit", strconv.Itoa(c.limit))
	cmd.Env = os.Environ()

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", c.command, err)
	}
	return parseTweets(out), nil
}

// parseTweets accepts either a JSON array or line-delimited JSON. Lines that
// fail to parse are treated as bare text.
func parseTweets(out []byte) []tweet {
	var tweets []tweet
	if err := json.Unmarshal(out, &tweets); err == nil {
		return tweets
	}

	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		var tw tweet
		if err := json.Unmarshal([]byte(line), &tw); err != nil {
			tw = tweet{Text: line}
		}
		tweets = append(tweets, tw)
	}
	return tweets
}
