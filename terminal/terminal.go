// Package terminal renders the report workflow on a terminal: the list as
// a table on stdout, status lines through the logger, and the marker layer
// as a GeoJSON file any map tool can open.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"skywatch/geo"
	"skywatch/view"

	"github.com/apex/log"
	"github.com/olekukonko/tablewriter"
)

type Terminal struct {
	out         io.Writer
	markersFile string

	mu      sync.Mutex
	form    view.Form
	status  string
	markers []view.Marker
	center  *geo.Point
	zoom    int
}

// New creates a terminal view. An empty markersFile disables the GeoJSON
// output.
func New(out io.Writer, markersFile string) *Terminal {
	return &Terminal{out: out, markersFile: markersFile}
}

// Fill copies the non-empty fields of f into the form, the way a user
// types over pre-filled inputs.
func (t *Terminal) Fill(f view.Form) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f.EventType != "" {
		t.form.EventType = f.EventType
	}
	if f.Description != "" {
		t.form.Description = f.Description
	}
	if f.Latitude != "" {
		t.form.Latitude = f.Latitude
	}
	if f.Longitude != "" {
		t.form.Longitude = f.Longitude
	}
	if f.ObservedAt != "" {
		t.form.ObservedAt = f.ObservedAt
	}
}

func (t *Terminal) RenderList(entries []view.ListEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(t.out, "No reports yet.")
		return
	}
	table := tablewriter.NewWriter(t.out)
	table.SetHeader([]string{"#", "Type", "Observed (UTC)", "Where", "Description"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, e := range entries {
		table.Append([]string{fmt.Sprint(e.Index), e.Tag, e.When, e.Where, e.Description})
	}
	table.Render()
}

func (t *Terminal) RenderMarkers(markers []view.Marker) {
	t.mu.Lock()
	t.markers = markers
	t.mu.Unlock()

	if t.markersFile == "" {
		return
	}
	if err := WriteCollection(t.markersFile, MarkersCollection(markers)); err != nil {
		log.WithError(err).Errorf("Failed to write markers to %s", t.markersFile)
		return
	}
	log.Infof("Wrote %d markers to %s", len(markers), t.markersFile)
}

func (t *Terminal) SetStatus(text string) {
	t.mu.Lock()
	t.status = text
	t.mu.Unlock()
	if text == "" {
		return
	}
	log.Info(text)
}

func (t *Terminal) ReadForm() view.Form {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.form
}

func (t *Terminal) WriteCoordinates(lat, lon string) {
	t.mu.Lock()
	t.form.Latitude, t.form.Longitude = lat, lon
	t.mu.Unlock()
	fmt.Fprintf(t.out, "latitude=%s longitude=%s\n", lat, lon)
}

func (t *Terminal) WriteObservedAt(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.form.ObservedAt = value
}

func (t *Terminal) ClearDescription() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.form.Description = ""
}

func (t *Terminal) SetView(center geo.Point, zoom int) {
	t.mu.Lock()
	t.center, t.zoom = &center, zoom
	t.mu.Unlock()
	log.Infof("Map centered on %s at zoom %d", center, zoom)
}

// Status returns the current status line.
func (t *Terminal) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Markers returns the current marker layer.
func (t *Terminal) Markers() []view.Marker {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.markers
}

// Center returns the last map view, if any.
func (t *Terminal) Center() (geo.Point, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.center == nil {
		return geo.Point{}, 0, false
	}
	return *t.center, t.zoom, true
}

// PopupText indents a marker popup for printing below a list.
func PopupText(m view.Marker) string {
	return "  " + strings.ReplaceAll(m.Popup, "\n", "\n  ")
}
