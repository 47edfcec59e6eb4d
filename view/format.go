package view

import (
	"fmt"
	"strings"

	"skywatch/api"
	"skywatch/geo"
	"skywatch/timefmt"
)

// ListEntry is one row of the recent reports list.
type ListEntry struct {
	Index       int        `json:"index"`
	Tag         string     `json:"tag"`
	When        string     `json:"when"`
	Where       string     `json:"where"`
	Description string     `json:"description,omitempty"`
	Report      api.Report `json:"report"`
}

type Marker struct {
	Position geo.Point  `json:"position"`
	Popup    string     `json:"popup"`
	Report   api.Report `json:"report"`
}

func NewListEntry(index int, r api.Report) ListEntry {
	e := ListEntry{
		Index:  index,
		Tag:    r.EventType,
		When:   timefmt.Display(r.ObservedAt.Time),
		Where:  position(r).String(),
		Report: r,
	}
	if r.HasDescription() {
		e.Description = *r.Description
	}
	return e
}

func NewMarker(r api.Report) Marker {
	return Marker{
		Position: position(r),
		Popup:    Popup(r),
		Report:   r,
	}
}

// Popup is the plain text shown when a marker is opened: upper-cased
// type, description when present, time and coordinates.
func Popup(r api.Report) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(r.EventType))
	b.WriteString("\n")
	if r.HasDescription() {
		b.WriteString(*r.Description)
		b.WriteString("\n")
	}
	b.WriteString(timefmt.Display(r.ObservedAt.Time))
	b.WriteString("\n")
	fmt.Fprintf(&b, "(%s)", position(r))
	return b.String()
}

func position(r api.Report) geo.Point {
	return geo.Point{Lat: r.Latitude, Lon: r.Longitude}
}
