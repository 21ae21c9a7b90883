package stocktwits

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"SentiPulse/internal/domain/models"
	drepo "SentiPulse/internal/domain/repository"
	xhttp "SentiPulse/pkg/http"
	applogger "SentiPulse/pkg/logger"
)

const userAgent = "SentiPulse-Aggregator/1.0"

// Client implements a SourceAdapter backed by the StockTwits symbol stream
// API. StockTwits carries native per-message sentiment tags, so no keyword
// classification is needed.
type Client struct {
	httpc   *xhttp.Client
	logger  *applogger.Logger
	baseURL string
	tickers []string
	limit   int
	delay   time.Duration
}

// New creates a new StockTwits SourceAdapter.
func New(logger *applogger.Logger, baseURL string, tickers []string, limit int, delay time.Duration, timeout time.Duration) drepo.SourceAdapter {
	return &Client{
		httpc:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:  logger,
		baseURL: baseURL,
		tickers: tickers,
		limit:   limit,
		delay:   delay,
	}
}

func (c *Client) Name() string { return "stocktwits" }

type streamMessage struct {
	Entities struct {
		Sentiment *struct {
			Basic string `json:"basic"`
		} `json:"sentiment"`
	} `json:"entities"`
}

type streamResponse struct {
	Messages []streamMessage `json:"messages"`
}

// Fetch returns one tally per ticker. A ticker whose request fails or whose
// stream is empty is skipped; the others still count.
func (c *Client) Fetch(ctx context.Context) ([]*models.Tally, error) {
	tallies := make([]*models.Tally, 0, len(c.tickers))

	for i, ticker := range c.tickers {
		if i > 0 && c.delay > 0 {
			select {
			case <-ctx.Done():
				return tallies, ctx.Err()
			case <-time.After(c.delay):
			}
		}

		tally, err := c.fetchTicker(ctx, ticker)
		if err != nil {
			c.logger.Warn("stocktwits ticker fetch failed",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
			continue
		}
		if tally.Total == 0 {
			continue
		}
		tallies = append(tallies, tally)
	}

	return tallies, nil
}

func (c *Client) fetchTicker(ctx context.Context, ticker string) (*models.Tally, error) {
	var resp streamResponse
	err := c.httpc.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/streams/symbol/%s.json", c.baseURL, ticker),
		Headers: map[string]string{"User-Agent": userAgent},
		QueryParams: map[string][]string{
			"filter": {"all"},
			"limit":  {strconv.Itoa(c.limit)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("stream %s: %w", ticker, err)
	}

	tally := &models.Tally{Source: c.Name(), Ticker: ticker}
	for _, msg := range resp.Messages {
		if msg.Entities.Sentiment != nil {
			switch msg.Entities.Sentiment.Basic {
			case "Bullish":
				tally.Bullish++
			case "Bearish":
				tally.Bearish++
			default:
				tally.Neutral++
			}
		} else {
			tally.Neutral++
		}
	}
	tally.FinalizeCounts()
	return tally, nil
}
