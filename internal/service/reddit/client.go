package reddit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"SentiPulse/internal/domain/models"
	drepo "SentiPulse/internal/domain/repository"
	"SentiPulse/internal/service/classify"
	xhttp "SentiPulse/pkg/http"
	applogger "SentiPulse/pkg/logger"
)

const userAgent = "SentiPulse-Bot/1.0"

// Client implements a SourceAdapter over Reddit's public hot listings.
// Reddit has no native sentiment, so matched posts go through the keyword
// classifier.
type Client struct {
	httpc       *xhttp.Client
	logger      *applogger.Logger
	baseURL     string
	subreddits  []string
	searchTerms []string
	limit       int
	delay       time.Duration
}

// New creates a new Reddit SourceAdapter.
func New(logger *applogger.Logger, baseURL string, subreddits, searchTerms []string, limit int, delay time.Duration, timeout time.Duration) drepo.SourceAdapter {
	terms := make([]string, len(searchTerms))
	for i, t := range searchTerms {
		terms[i] = strings.ToLower(t)
	}
	return &Client{
		httpc:       xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:      logger,
		baseURL:     baseURL,
		subreddits:  subreddits,
		searchTerms: terms,
		limit:       limit,
		delay:       delay,
	}
}

func (c *Client) Name() string { return "reddit" }

type listingPost struct {
	Data struct {
		Title    string `json:"title"`
		Selftext string `json:"selftext"`
	} `json:"data"`
}

type listingResponse struct {
	Data struct {
		Children []listingPost `json:"children"`
	} `json:"data"`
}

// Fetch scans each configured subreddit's hot listing, keeps posts that
// mention a search term, and classifies them into one combined tally.
// Per-subreddit failures are logged and skipped.
func (c *Client) Fetch(ctx context.Context) ([]*models.Tally, error) {
	tally := &models.Tally{Source: c.Name(), Ticker: "ALL"}

	for i, sub := range c.subreddits {
		if i > 0 && c.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay):
			}
		}

		if err := c.scanSubreddit(ctx, sub, tally); err != nil {
			c.logger.Warn("reddit subreddit fetch failed",
				applogger.String("subreddit", sub),
				applogger.Error(err),
			)
		}
	}

	tally.FinalizeCounts()
	if tally.Total == 0 {
		return nil, nil
	}
	return []*models.Tally{tally}, nil
}

func (c *Client) scanSubreddit(ctx context.Context, sub string, tally *models.Tally) error {
	var resp listingResponse
	err := c.httpc.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/r/%s/hot.json", c.baseURL, sub),
		Headers: map[string]string{"User-Agent": userAgent},
		QueryParams: map[string][]string{
			"limit": {strconv.Itoa(c.limit)},
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("hot listing r/%s: %w", sub, err)
	}

	for _, post := range resp.Data.Children {
		combined := post.Data.Title + " " + post.Data.Selftext
		if !c.mentionsTicker(combined) {
			continue
		}
		switch classify.Classify(combined) {
		case models.SentimentBullish:
			tally.Bullish++
		case models.SentimentBearish:
			tally.Bearish++
		default:
			tally.Neutral++
		}
	}
	return nil
}

func (c *Client) mentionsTicker(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range c.searchTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
