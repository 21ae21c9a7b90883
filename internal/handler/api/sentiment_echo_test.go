package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "SentiPulse/internal/domain/models"
	domrepo "SentiPulse/internal/domain/repository"
	internalrepo "SentiPulse/internal/repository"
	"SentiPulse/internal/usecase"
	xhttp "SentiPulse/pkg/http"
	xlogger "SentiPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubAdapter struct {
	tallies []*models.Tally
}

func (s *stubAdapter) Name() string { return "stocktwits" }

func (s *stubAdapter) Fetch(_ context.Context) ([]*models.Tally, error) {
	return s.tallies, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordCycle(string, float64)               {}
func (stubMetrics) RecordPosts(string, int)                   {}
func (stubMetrics) RecordAdapterError(string)                 {}
func (stubMetrics) RecordSentiment(float64, float64, float64) {}
func (stubMetrics) RecordAlert(string)                        {}
func (stubMetrics) RecordStoreError(string)                   {}

func newTestHandler(t *testing.T, tallies ...*models.Tally) (*SentimentEchoHandler, domrepo.Store, *echo.Echo) {
	t.Helper()
	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	store := internalrepo.NewMemoryStore(1000, 500, 100)
	agg := usecase.NewSentimentAggregator(
		[]domrepo.SourceAdapter{&stubAdapter{tallies: tallies}},
		store, nil, nil, stubMetrics{}, logger, time.Second, 0, false,
	)
	h := NewSentimentEchoHandler(logger, agg, store)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, store, e
}

func doRequest(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v (%s)", err, envelope.Data)
	}
}

func TestCurrentBeforeFirstCycle(t *testing.T) {
	_, _, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/sentiment/current")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res models.CurrentSentimentResponse
	decodeData(t, rec, &res)
	if res.BullishPct != 50 || res.BearishPct != 50 || res.TotalPosts != 0 {
		t.Fatalf("expected flat neutral default, got %+v", res)
	}
	if res.Message == "" {
		t.Fatalf("expected explanatory message before first cycle")
	}
}

func TestCurrentReturnsLatestSnapshot(t *testing.T) {
	_, store, e := newTestHandler(t)
	err := store.AppendAggregate(context.Background(), &models.AggregateSnapshot{
		Timestamp:  time.Now().UTC(),
		BullishPct: 77.5, BearishPct: 12.5, NeutralPct: 10, TotalPosts: 40,
		ExtremeSignal: models.SignalHighBullish,
	})
	if err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	rec := doRequest(e, http.MethodGet, "/api/sentiment/current")
	var res models.CurrentSentimentResponse
	decodeData(t, rec, &res)
	if res.BullishPct != 77.5 || res.TotalPosts != 40 || res.ExtremeSignal != models.SignalHighBullish {
		t.Fatalf("unexpected snapshot %+v", res)
	}
}

func TestHistoryValidatesHours(t *testing.T) {
	_, _, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/sentiment/history?hours=999")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for hours out of range, got %d", rec.Code)
	}
}

func TestHistoryReturnsWindow(t *testing.T) {
	_, store, e := newTestHandler(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, age := range []time.Duration{48 * time.Hour, 2 * time.Hour, time.Hour} {
		err := store.AppendAggregate(ctx, &models.AggregateSnapshot{
			Timestamp: now.Add(-age), BullishPct: 60, BearishPct: 40, TotalPosts: 10,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := doRequest(e, http.MethodGet, "/api/sentiment/history?hours=24")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []*models.HistoryEntryResponse
	decodeData(t, rec, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected the 2 snapshots inside the window, got %d", len(entries))
	}
	if !entries[0].Timestamp.Before(entries[1].Timestamp) {
		t.Fatalf("history must be oldest first")
	}
}

func TestAckAlert(t *testing.T) {
	_, store, e := newTestHandler(t)
	ctx := context.Background()
	err := store.AppendAlert(ctx, &models.Alert{
		Timestamp: time.Now().UTC(), AlertType: models.SignalExtremeBullish,
		SentimentPct: 92, Message: "CONTRARIAN ALERT",
	})
	if err != nil {
		t.Fatalf("seed alert: %v", err)
	}
	alerts, _ := store.ActiveAlerts(ctx)
	if len(alerts) != 1 {
		t.Fatalf("expected one active alert")
	}

	rec := doRequest(e, http.MethodPost, fmt.Sprintf("/api/alerts/%d/ack", alerts[0].ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	alerts, _ = store.ActiveAlerts(ctx)
	if len(alerts) != 0 {
		t.Fatalf("acknowledged alert must leave the active list")
	}

	// Unknown id is a no-op, not an error.
	rec = doRequest(e, http.MethodPost, "/api/alerts/424242/ack")
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown id must be a 200 no-op, got %d", rec.Code)
	}
}

func TestRefreshRunsCycle(t *testing.T) {
	tally := &models.Tally{Source: "stocktwits", Ticker: "SPY", Bullish: 6, Bearish: 3, Neutral: 1}
	tally.FinalizeCounts()
	_, store, e := newTestHandler(t, tally)

	rec := doRequest(e, http.MethodPost, "/api/sentiment/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var res models.RefreshResponse
	decodeData(t, rec, &res)
	if res.TotalPosts != 10 || res.BullishPct != 60 {
		t.Fatalf("unexpected refresh result %+v", res)
	}

	snap, _ := store.LatestAggregate(context.Background())
	if snap == nil || snap.TotalPosts != 10 {
		t.Fatalf("refresh must persist the snapshot")
	}
}

func TestStatus(t *testing.T) {
	_, store, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/status")
	var res models.StatusResponse
	decodeData(t, rec, &res)
	if res.Status != "running" {
		t.Fatalf("expected running, got %q", res.Status)
	}
	if res.LastUpdate != nil {
		t.Fatalf("no cycle yet, lastUpdate must be null")
	}

	ts := time.Now().UTC().Truncate(time.Second)
	_ = store.AppendAggregate(context.Background(), &models.AggregateSnapshot{Timestamp: ts, TotalPosts: 1})
	rec = doRequest(e, http.MethodGet, "/api/status")
	decodeData(t, rec, &res)
	if res.LastUpdate == nil || !res.LastUpdate.Equal(ts) {
		t.Fatalf("lastUpdate must reflect the latest snapshot, got %v", res.LastUpdate)
	}
}

func TestMessagesMentionContrarianPlay(t *testing.T) {
	tally := &models.Tally{Source: "stocktwits", Ticker: "SPY", Bullish: 95, Bearish: 3, Neutral: 2}
	tally.FinalizeCounts()
	_, store, e := newTestHandler(t, tally)

	if rec := doRequest(e, http.MethodPost, "/api/sentiment/refresh"); rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d", rec.Code)
	}
	alerts, _ := store.ActiveAlerts(context.Background())
	if len(alerts) != 1 {
		t.Fatalf("expected extreme cycle to alert")
	}
	if !strings.Contains(alerts[0].Message, "Consider fading") {
		t.Fatalf("unexpected alert message %q", alerts[0].Message)
	}

	rec := doRequest(e, http.MethodGet, "/api/alerts")
	var out []*models.AlertResponse
	decodeData(t, rec, &out)
	if len(out) != 1 || out[0].Acknowledged {
		t.Fatalf("alerts endpoint must list the unacknowledged alert, got %+v", out)
	}
}

var _ xhttp.Handler = (*SentimentEchoHandler)(nil)
