// Package view declares the surfaces the report controller drives: a view
// for the list, markers, status line and form, a map that can be
// recentered, and a device geolocator.
package view

import (
	"context"
	"errors"
	"time"

	"skywatch/geo"
)

// View is implemented by every rendering surface. Render calls fully
// replace what was shown before.
type View interface {
	RenderList(entries []ListEntry)
	RenderMarkers(markers []Marker)
	SetStatus(text string)
	ReadForm() Form
	WriteCoordinates(lat, lon string)
	WriteObservedAt(value string)
	ClearDescription()
}

type Map interface {
	SetView(center geo.Point, zoom int)
}

// Form holds the raw field values as typed by the user.
type Form struct {
	EventType   string `json:"event_type"`
	Description string `json:"description"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	ObservedAt  string `json:"observed_at"` // YYYY-MM-DDTHH:MM, UTC
}

type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
}

type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters, zero when unknown
}

var ErrGeolocationUnsupported = errors.New("geolocation is not supported")

// Geolocator returns a one-shot position fix.
type Geolocator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)
}
