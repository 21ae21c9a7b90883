package api

import (
	"fmt"
	"net/http"
	"time"

	models "SentiPulse/internal/domain/models"
	domrepo "SentiPulse/internal/domain/repository"
	icache "SentiPulse/internal/service/cache"
	"SentiPulse/internal/service/ratelimit"
	"SentiPulse/internal/usecase"
	xhttp "SentiPulse/pkg/http"
	xlogger "SentiPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SentimentEchoHandler exposes the sentiment API over Echo.
type SentimentEchoHandler struct {
	logger  *xlogger.Logger
	agg     *usecase.SentimentAggregator
	store   domrepo.Store
	cache   icache.Cache
	rl      *ratelimit.Limiter
	started time.Time
}

func NewSentimentEchoHandler(logger *xlogger.Logger, agg *usecase.SentimentAggregator, store domrepo.Store) *SentimentEchoHandler {
	return &SentimentEchoHandler{
		logger:  logger,
		agg:     agg,
		store:   store,
		cache:   icache.NewTTLCache(),
		rl:      ratelimit.New(),
		started: time.Now(),
	}
}

func (h *SentimentEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/sentiment/current", h.Current)
	g.GET("/sentiment/history", h.History)
	g.POST("/sentiment/refresh", h.Refresh)
	g.GET("/alerts", h.Alerts)
	g.POST("/alerts/:id/ack", h.AckAlert)
	g.GET("/status", h.Status)
}

// Current returns the latest aggregate snapshot. Before the first completed
// cycle it reports a flat neutral market rather than an error.
func (h *SentimentEchoHandler) Current(c echo.Context) error {
	snap, err := h.store.LatestAggregate(c.Request().Context())
	if err != nil {
		h.logger.Error("current sentiment store error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if snap == nil {
		return xhttp.SuccessResponse(c, &models.CurrentSentimentResponse{
			BullishPct: 50,
			BearishPct: 50,
			NeutralPct: 0,
			Timestamp:  time.Now().UTC(),
			Message:    "No data collected yet",
		})
	}
	return xhttp.SuccessResponse(c, &models.CurrentSentimentResponse{
		BullishPct:    snap.BullishPct,
		BearishPct:    snap.BearishPct,
		NeutralPct:    snap.NeutralPct,
		TotalPosts:    snap.TotalPosts,
		ExtremeSignal: snap.ExtremeSignal,
		Timestamp:     snap.Timestamp,
	})
}

// History returns aggregate snapshots from the last N hours, oldest first.
func (h *SentimentEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := fmt.Sprintf("history:%d", req.Hours)
	if v, ok := h.cache.Get(cacheKey); ok {
		if entries, ok2 := v.([]*models.HistoryEntryResponse); ok2 {
			return xhttp.SuccessResponse(c, entries)
		}
	}

	snaps, err := h.store.AggregatesSince(c.Request().Context(), time.Duration(req.Hours)*time.Hour)
	if err != nil {
		h.logger.Error("history store error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	entries := make([]*models.HistoryEntryResponse, 0, len(snaps))
	for _, s := range snaps {
		entries = append(entries, &models.HistoryEntryResponse{
			Timestamp:     s.Timestamp,
			BullishPct:    s.BullishPct,
			BearishPct:    s.BearishPct,
			NeutralPct:    s.NeutralPct,
			TotalPosts:    s.TotalPosts,
			ExtremeSignal: s.ExtremeSignal,
		})
	}
	h.cache.Set(cacheKey, entries, 30*time.Second)
	return xhttp.SuccessResponse(c, entries)
}

// Refresh runs one collection cycle synchronously and returns its result.
// Rate limited per client since every call fans out to the upstream sources.
func (h *SentimentEchoHandler) Refresh(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":refresh", 2, 0.2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(
			"rate_limited", "", "refresh rate limited, try again shortly", http.StatusTooManyRequests))
	}

	res, err := h.agg.Aggregate(c.Request().Context())
	if err != nil {
		h.logger.Error("manual refresh failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if res == nil {
		return xhttp.SuccessResponse(c, &models.RefreshResponse{Sources: []string{}})
	}
	return xhttp.SuccessResponse(c, &models.RefreshResponse{
		BullishPct:    res.BullishPct,
		BearishPct:    res.BearishPct,
		NeutralPct:    res.NeutralPct,
		TotalPosts:    res.TotalPosts,
		ExtremeSignal: res.ExtremeSignal,
		Sources:       res.Sources,
	})
}

// Alerts returns unacknowledged alerts, oldest first.
func (h *SentimentEchoHandler) Alerts(c echo.Context) error {
	alerts, err := h.store.ActiveAlerts(c.Request().Context())
	if err != nil {
		h.logger.Error("alerts store error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	out := make([]*models.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, &models.AlertResponse{
			ID:           a.ID,
			Timestamp:    a.Timestamp,
			AlertType:    a.AlertType,
			SentimentPct: a.SentimentPct,
			Message:      a.Message,
			Acknowledged: a.Acknowledged,
		})
	}
	return xhttp.SuccessResponse(c, out)
}

// AckAlert acknowledges one alert. Unknown ids are a no-op; acknowledging is
// one-way and idempotent, so the response is the same either way.
func (h *SentimentEchoHandler) AckAlert(c echo.Context) error {
	req := &models.AckAlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.store.AcknowledgeAlert(c.Request().Context(), req.ID); err != nil {
		h.logger.Error("acknowledge alert failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]any{"id": req.ID, "acknowledged": true})
}

// Status reports liveness, the timestamp of the last completed cycle, and
// process uptime.
func (h *SentimentEchoHandler) Status(c echo.Context) error {
	var lastUpdate *time.Time
	snap, err := h.store.LatestAggregate(c.Request().Context())
	if err != nil {
		h.logger.Warn("status latest aggregate error", xlogger.Error(err))
	} else if snap != nil {
		lastUpdate = &snap.Timestamp
	}
	return xhttp.SuccessResponse(c, &models.StatusResponse{
		Status:     "running",
		LastUpdate: lastUpdate,
		UptimeSec:  time.Since(h.started).Seconds(),
	})
}
