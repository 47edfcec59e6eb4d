// Package geolocate provides device position sources for the report form.
package geolocate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"skywatch/geo"
	"skywatch/view"

	"github.com/apex/log"
)

// ErrUnavailable means no position source is configured.
var ErrUnavailable = fmt.Errorf("no position source configured: %w", view.ErrGeolocationUnsupported)

// Static always answers the same position, e.g. one given on the command
// line for a fixed observation site.
type Static struct {
	Position view.Position
}

func (s Static) CurrentPosition(ctx context.Context, _ view.PositionOptions) (view.Position, error) {
	if err := ctx.Err(); err != nil {
		return view.Position{}, err
	}
	return s.Position, nil
}

// IPLocator estimates the position from the public IP address using a JSON
// lookup service. Accuracy is city level at best, so HighAccuracy requests
// are served with the same estimate.
type IPLocator struct {
	url    string
	client *http.Client
}

func NewIPLocator(url string, client *http.Client) *IPLocator {
	if client == nil {
		client = &http.Client{}
	}
	return &IPLocator{url: url, client: client}
}

// ipLookup covers the field names of the common providers
// (ipapi.co: latitude/longitude, ip-api.com: lat/lon).
type ipLookup struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

func (l *IPLocator) CurrentPosition(ctx context.Context, opts view.PositionOptions) (view.Position, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return view.Position{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "skywatch/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return view.Position{}, fmt.Errorf("failed to call geolocation service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return view.Position{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return view.Position{}, fmt.Errorf("geolocation service returned status %d", resp.StatusCode)
	}

	var lk ipLookup
	if err := json.Unmarshal(body, &lk); err != nil {
		return view.Position{}, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if lk.Error || strings.EqualFold(lk.Status, "fail") {
		return view.Position{}, fmt.Errorf("geolocation lookup failed: %s%s", lk.Reason, lk.Message)
	}

	lat, lon := lk.Latitude, lk.Longitude
	if lat == nil || lon == nil {
		lat, lon = lk.Lat, lk.Lon
	}
	if lat == nil || lon == nil {
		return view.Position{}, errors.New("geolocation response has no coordinates")
	}
	if !geo.IsFinite(*lat) || !geo.IsFinite(*lon) {
		return view.Position{}, geo.ErrNotFinite
	}
	log.WithFields(log.Fields{"lat": *lat, "lon": *lon}).Debug("ip geolocation")
	return view.Position{Latitude: *lat, Longitude: *lon}, nil
}

// FromConfig picks the position source: a static site wins over an IP
// lookup URL. A nil result means geolocation is unavailable.
func FromConfig(lookupURL string, static *view.Position) view.Geolocator {
	switch {
	case static != nil:
		return Static{Position: *static}
	case lookupURL != "":
		return NewIPLocator(lookupURL, nil)
	}
	return nil
}
