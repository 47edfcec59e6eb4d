package webview

import (
	"sync"

	"skywatch/geo"
	"skywatch/view"
)

// MapView is the last requested map position.
type MapView struct {
	Center geo.Point `json:"center"`
	Zoom   int       `json:"zoom"`
}

// State is everything the page shows.
type State struct {
	List    []view.ListEntry `json:"list"`
	Markers []view.Marker    `json:"markers"`
	Status  string           `json:"status"`
	Map     *MapView         `json:"map,omitempty"`
	Form    view.Form        `json:"form"`
}

// Message types pushed over the websocket.
const (
	MessageList    = "list"
	MessageMarkers = "markers"
	MessageStatus  = "status"
	MessageMap     = "map"
	MessageForm    = "form"
)

// WebView keeps the page state in memory and publishes every change to
// the connected pages.
type WebView struct {
	hub *Hub

	mu    sync.RWMutex
	state State
}

func NewWebView(hub *Hub, initial MapView) *WebView {
	return &WebView{
		hub: hub,
		state: State{
			List:    []view.ListEntry{},
			Markers: []view.Marker{},
			Map:     &initial,
		},
	}
}

// Snapshot returns a copy of the current state.
func (w *WebView) Snapshot() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := w.state
	s.List = append([]view.ListEntry(nil), w.state.List...)
	s.Markers = append([]view.Marker(nil), w.state.Markers...)
	if w.state.Map != nil {
		m := *w.state.Map
		s.Map = &m
	}
	return s
}

// SetForm replaces the form with the values currently shown on the page.
func (w *WebView) SetForm(f view.Form) {
	w.mu.Lock()
	w.state.Form = f
	w.mu.Unlock()
}

func (w *WebView) RenderList(entries []view.ListEntry) {
	if entries == nil {
		entries = []view.ListEntry{}
	}
	w.mu.Lock()
	w.state.List = entries
	w.mu.Unlock()
	w.hub.Publish(MessageList, entries)
}

func (w *WebView) RenderMarkers(markers []view.Marker) {
	if markers == nil {
		markers = []view.Marker{}
	}
	w.mu.Lock()
	w.state.Markers = markers
	w.mu.Unlock()
	w.hub.Publish(MessageMarkers, markers)
}

func (w *WebView) SetStatus(text string) {
	w.mu.Lock()
	w.state.Status = text
	w.mu.Unlock()
	w.hub.Publish(MessageStatus, text)
}

func (w *WebView) ReadForm() view.Form {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.Form
}

func (w *WebView) WriteCoordinates(lat, lon string) {
	w.mu.Lock()
	w.state.Form.Latitude, w.state.Form.Longitude = lat, lon
	f := w.state.Form
	w.mu.Unlock()
	w.hub.Publish(MessageForm, f)
}

func (w *WebView) WriteObservedAt(value string) {
	w.mu.Lock()
	w.state.Form.ObservedAt = value
	f := w.state.Form
	w.mu.Unlock()
	w.hub.Publish(MessageForm, f)
}

func (w *WebView) ClearDescription() {
	w.mu.Lock()
	w.state.Form.Description = ""
	f := w.state.Form
	w.mu.Unlock()
	w.hub.Publish(MessageForm, f)
}

func (w *WebView) SetView(center geo.Point, zoom int) {
	mv := MapView{Center: center, Zoom: zoom}
	w.mu.Lock()
	w.state.Map = &mv
	w.mu.Unlock()
	w.hub.Publish(MessageMap, mv)
}
