// Package controller implements the report workflow: loading reports into
// the list and marker layer, acquiring the device location and submitting
// new observations. It only talks to abstract views so any surface (the
// terminal, the preview server, tests) can drive it.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"skywatch/api"
	"skywatch/geo"
	"skywatch/reports"
	"skywatch/timefmt"
	"skywatch/view"

	"github.com/apex/log"
)

const (
	DefaultLoadLimit  = 200
	DefaultListLimit  = 20
	DefaultGeoTimeout = 10 * time.Second

	FocusZoom    = 9
	LocationZoom = 10
)

var (
	ErrLoad               = errors.New("could not load reports")
	ErrInvalidCoordinates = errors.New("invalid latitude or longitude")
	ErrInvalidObservedAt  = errors.New("invalid observation time")
	ErrSubmit             = errors.New("could not submit report")
	ErrNoSuchEntry        = errors.New("no such list entry")
)

// Backend is the part of the reports client the session needs.
type Backend interface {
	ListReports(ctx context.Context, limit int) ([]api.Report, error)
	CreateReport(ctx context.Context, args api.ReportArgs) (*api.Report, error)
}

type Options struct {
	LoadLimit  int
	ListLimit  int
	GeoTimeout time.Duration
	Locator    view.Geolocator // nil when the device has no geolocation
	Now        func() time.Time
}

// Session is the client context of one page session: it owns the handles
// to the view, the map and the backend, and remembers the last fetched
// reports so list entries can be focused.
type Session struct {
	view    view.View
	mapView view.Map
	backend Backend
	locator view.Geolocator

	loadLimit  int
	listLimit  int
	geoTimeout time.Duration
	now        func() time.Time

	mu      sync.Mutex
	reports []api.Report
}

func New(v view.View, m view.Map, backend Backend, opts Options) *Session {
	s := &Session{
		view:       v,
		mapView:    m,
		backend:    backend,
		locator:    opts.Locator,
		loadLimit:  opts.LoadLimit,
		listLimit:  opts.ListLimit,
		geoTimeout: opts.GeoTimeout,
		now:        opts.Now,
	}
	if s.loadLimit <= 0 {
		s.loadLimit = DefaultLoadLimit
	}
	if s.listLimit <= 0 {
		s.listLimit = DefaultListLimit
	}
	if s.geoTimeout <= 0 {
		s.geoTimeout = DefaultGeoTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Init pre-fills the observation time with now and performs the initial
// load. A failed load leaves the session usable.
func (s *Session) Init(ctx context.Context) error {
	s.view.WriteObservedAt(timefmt.FormatInput(s.now()))
	if err := s.LoadReports(ctx); err != nil {
		s.view.SetStatus(StatusBackendDown)
		return err
	}
	return nil
}

// Refresh reloads the reports on user request.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.LoadReports(ctx); err != nil {
		s.view.SetStatus(StatusRefreshFailed)
		return err
	}
	return nil
}

// LoadReports fetches the most recent reports and replaces the list and
// the marker layer. Nothing is touched unless the whole response was read
// and decoded.
func (s *Session) LoadReports(ctx context.Context) error {
	s.view.SetStatus("")
	fetched, err := s.backend.ListReports(ctx, s.loadLimit)
	if err != nil {
		log.WithError(err).Warn("Failed to load reports")
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = fetched

	n := len(fetched)
	if n > s.listLimit {
		n = s.listLimit
	}
	entries := make([]view.ListEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, view.NewListEntry(i, fetched[i]))
	}
	s.view.RenderList(entries)

	markers := make([]view.Marker, 0, len(fetched))
	for _, r := range fetched {
		markers = append(markers, view.NewMarker(r))
	}
	s.view.RenderMarkers(markers)

	log.Infof("Loaded %d reports, listing %d", len(fetched), n)
	return nil
}

// Reports returns the reports of the last successful load.
func (s *Session) Reports() []api.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Report(nil), s.reports...)
}

// Focus recenters the map on a list entry.
func (s *Session) Focus(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.reports) || index >= s.listLimit {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoSuchEntry, index)
	}
	r := s.reports[index]
	s.mu.Unlock()

	s.mapView.SetView(geo.Point{Lat: r.Latitude, Lon: r.Longitude}, FocusZoom)
	return nil
}

// AcquireLocation asks the geolocator for a one-shot high accuracy fix and
// writes it into the form. Failures only change the status line, manual
// entry stays possible.
func (s *Session) AcquireLocation(ctx context.Context) error {
	s.view.SetStatus(StatusLocating)
	if s.locator == nil {
		s.view.SetStatus(StatusGeoUnsupported)
		return view.ErrGeolocationUnsupported
	}

	ctx, cancel := context.WithTimeout(ctx, s.geoTimeout)
	defer cancel()
	pos, err := s.locator.CurrentPosition(ctx, view.PositionOptions{
		HighAccuracy: true,
		Timeout:      s.geoTimeout,
	})
	if err != nil {
		log.WithError(err).Warn("Geolocation failed")
		if errors.Is(err, view.ErrGeolocationUnsupported) {
			s.view.SetStatus(StatusGeoUnsupported)
		} else {
			s.view.SetStatus(StatusLocationFailed)
		}
		return err
	}

	s.view.WriteCoordinates(geo.Fixed(pos.Latitude, geo.FormPlaces), geo.Fixed(pos.Longitude, geo.FormPlaces))
	s.view.SetStatus(StatusLocationAdded)
	s.mapView.SetView(geo.Point{Lat: pos.Latitude, Lon: pos.Longitude}, LocationZoom)
	return nil
}

// Submit validates the form, sends the new report and reloads the list and
// markers on success.
func (s *Session) Submit(ctx context.Context) error {
	args, err := s.readArgs()
	if err != nil {
		return err
	}

	s.view.SetStatus(StatusSubmitting)
	if _, err := s.backend.CreateReport(ctx, args); err != nil {
		msg, ok := reports.ResponseBody(err)
		if !ok {
			msg = err.Error()
		}
		log.WithError(err).Error("Failed to submit report")
		s.view.SetStatus(StatusSubmitFailed + msg)
		return fmt.Errorf("%w: %w", ErrSubmit, err)
	}

	s.view.SetStatus(StatusSaved)
	s.view.ClearDescription()
	if err := s.LoadReports(ctx); err != nil {
		s.view.SetStatus(StatusSavedNoRefresh)
		return nil
	}
	s.view.SetStatus(StatusDone)
	return nil
}

// readArgs builds the create payload from the form. Validation failures
// are reported on the status line before any network call.
func (s *Session) readArgs() (api.ReportArgs, error) {
	form := s.view.ReadForm()

	lat, latErr := geo.ParseCoordinate(form.Latitude)
	lon, lonErr := geo.ParseCoordinate(form.Longitude)
	if latErr != nil || lonErr != nil {
		s.view.SetStatus(StatusInvalidCoordinates)
		return api.ReportArgs{}, fmt.Errorf("%w: %w", ErrInvalidCoordinates, errors.Join(latErr, lonErr))
	}

	observed, err := timefmt.ParseInput(form.ObservedAt)
	if err != nil {
		s.view.SetStatus(StatusInvalidObservedAt)
		return api.ReportArgs{}, fmt.Errorf("%w: %w", ErrInvalidObservedAt, err)
	}
	at := s.now()
	if observed != nil {
		at = *observed
	}

	args := api.ReportArgs{
		EventType:  form.EventType,
		Latitude:   lat,
		Longitude:  lon,
		ObservedAt: api.NewTimestamp(at),
	}
	if desc := strings.TrimSpace(form.Description); desc != "" {
		args.Description = &desc
	}
	return args, nil
}
