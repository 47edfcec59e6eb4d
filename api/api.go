package api

import (
	"encoding/json"
	"fmt"
	"time"

	"skywatch/timefmt"
)

const (
	HealthEndpoint  = "/health"
	ReportsEndpoint = "/reports"
)

// Suggested event types, the backend accepts any short label.
var EventTypes = []string{"meteor", "satellite", "flash", "unknown"}

type Report struct {
	ID          int64     `json:"id"`
	EventType   string    `json:"event_type"`
	Description *string   `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	ObservedAt  Timestamp `json:"observed_at"`
	CreatedAt   Timestamp `json:"created_at"`
}

// HasDescription reports whether the report carries a non-empty description.
func (r *Report) HasDescription() bool {
	return r.Description != nil && *r.Description != ""
}

// ReportArgs is the body of POST /reports.
type ReportArgs struct {
	EventType   string    `json:"event_type"`
	Description *string   `json:"description"` // null when empty
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	ObservedAt  Timestamp `json:"observed_at"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Timestamp is an instant sent as ISO-8601 UTC. The backend may answer with
// naive datetimes (no zone suffix); those are read as UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// MarshalJSON always emits an instant. The zero time is a valid
// observation (0001-01-01T00:00) and is sent as such.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(timefmt.ISO(ts.Time))
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", *s)
}
