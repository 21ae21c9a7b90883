package models

import "time"

// Requests and responses for the sentiment HTTP endpoints. Defined in domain
// for consistency and reuse.

type HistoryRequest struct {
	Hours int `query:"hours" json:"hours" default:"24" validate:"gte=1,lte=168"`
}

type AckAlertRequest struct {
	ID int64 `param:"id" json:"id" validate:"required,gt=0"`
}

// CurrentSentimentResponse mirrors the latest snapshot, or the neutral
// default when no cycle has completed yet.
type CurrentSentimentResponse struct {
	BullishPct    float64   `json:"bullishPct"`
	BearishPct    float64   `json:"bearishPct"`
	NeutralPct    float64   `json:"neutralPct"`
	TotalPosts    int       `json:"totalPosts"`
	ExtremeSignal Signal    `json:"extremeSignal,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Message       string    `json:"message,omitempty"`
}

type HistoryEntryResponse struct {
	Timestamp     time.Time `json:"timestamp"`
	BullishPct    float64   `json:"bullishPct"`
	BearishPct    float64   `json:"bearishPct"`
	NeutralPct    float64   `json:"neutralPct"`
	TotalPosts    int       `json:"totalPosts"`
	ExtremeSignal Signal    `json:"extremeSignal,omitempty"`
}

type AlertResponse struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	AlertType    Signal    `json:"alertType"`
	SentimentPct float64   `json:"sentimentPct"`
	Message      string    `json:"message"`
	Acknowledged bool      `json:"acknowledged"`
}

type RefreshResponse struct {
	BullishPct    float64  `json:"bullishPct"`
	BearishPct    float64  `json:"bearishPct"`
	NeutralPct    float64  `json:"neutralPct"`
	TotalPosts    int      `json:"totalPosts"`
	ExtremeSignal Signal   `json:"extremeSignal,omitempty"`
	Sources       []string `json:"sources"`
}

type StatusResponse struct {
	Status     string     `json:"status"`
	LastUpdate *time.Time `json:"lastUpdate"`
	UptimeSec  float64    `json:"uptime"`
}
