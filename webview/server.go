// Package webview serves a local map page driven by the report controller.
// The page renders whatever state the controller writes and receives every
// change over a websocket.
package webview

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"skywatch/controller"
	"skywatch/geo"
	"skywatch/view"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	EndPointIndex    = "/"
	EndPointHealth   = "/health"
	EndPointState    = "/api/state"
	EndPointClusters = "/api/clusters"
	EndPointRefresh  = "/api/refresh"
	EndPointLocate   = "/api/locate"
	EndPointSubmit   = "/api/submit"
	EndPointFocus    = "/api/focus/:index"
	EndPointWS       = "/ws"
)

//go:embed static/index.html
var indexHTML []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Server struct {
	session *controller.Session
	view    *WebView
	hub     *Hub
	router  *gin.Engine

	// submitMu keeps the submitted form in place until Submit has read it.
	submitMu sync.Mutex
}

func NewServer(session *controller.Session, wv *WebView, hub *Hub) *Server {
	s := &Server{session: session, view: wv, hub: hub}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
		AllowOrigins: []string{"*"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET(EndPointIndex, s.Index)
	router.GET(EndPointHealth, s.Health)
	router.GET(EndPointState, s.State)
	router.GET(EndPointClusters, s.Clusters)
	router.POST(EndPointRefresh, s.Refresh)
	router.POST(EndPointLocate, s.Locate)
	router.POST(EndPointSubmit, s.Submit)
	router.POST(EndPointFocus, s.Focus)
	router.GET(EndPointWS, s.Listen)

	s.router = router
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	errc := make(chan error, 1)
	go func() {
		log.Infof("Serving the map preview on %s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) Health(c *gin.Context) {
	clients, sent := s.hub.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"connected_clients": clients,
		"sent_messages":     sent,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) State(c *gin.Context) {
	c.JSON(http.StatusOK, s.view.Snapshot())
}

func (s *Server) Clusters(c *gin.Context) {
	markers := s.view.Snapshot().Markers
	points := make([]geo.Point, 0, len(markers))
	for _, m := range markers {
		points = append(points, m.Position)
	}
	c.JSON(http.StatusOK, geo.ClusterPoints(points))
}

func (s *Server) Refresh(c *gin.Context) {
	err := s.session.Refresh(c.Request.Context())
	s.respond(c, err)
}

func (s *Server) Locate(c *gin.Context) {
	err := s.session.AcquireLocation(c.Request.Context())
	s.respond(c, err)
}

func (s *Server) Submit(c *gin.Context) {
	var f view.Form
	if err := c.ShouldBindJSON(&f); err != nil {
		log.Errorf("Failed to read the submitted form: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}
	s.submitMu.Lock()
	s.view.SetForm(f)
	err := s.session.Submit(c.Request.Context())
	s.submitMu.Unlock()
	s.respond(c, err)
}

func (s *Server) Focus(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.String(http.StatusBadRequest, "Bad list index.")
		return
	}
	s.respond(c, s.session.Focus(idx))
}

func (s *Server) Listen(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	client := NewClient(s.hub, conn)
	if !s.hub.Add(client) {
		conn.Close()
		return
	}
	go client.WritePump()
	go client.ReadPump()
}

// respond answers with the page state; the status code tells the page
// which kind of failure the action ended in.
func (s *Server) respond(c *gin.Context, err error) {
	c.JSON(statusFor(err), s.view.Snapshot())
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, controller.ErrInvalidCoordinates),
		errors.Is(err, controller.ErrInvalidObservedAt):
		return http.StatusUnprocessableEntity
	case errors.Is(err, controller.ErrNoSuchEntry):
		return http.StatusNotFound
	case errors.Is(err, view.ErrGeolocationUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, controller.ErrLoad), errors.Is(err, controller.ErrSubmit):
		return http.StatusBadGateway
	}
	return http.StatusServiceUnavailable
}
