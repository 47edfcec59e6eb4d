package main

import (
	"fmt"
	"os"

	"skywatch/api"
	"skywatch/geo"
	"skywatch/terminal"
	"skywatch/view"
	"skywatch/webview"

	"github.com/apex/log"
	"github.com/urfave/cli/v2"
)

// fail turns the status line of a failed action into the exit message.
func fail(term *terminal.Terminal, err error) error {
	if status := term.Status(); status != "" {
		return cli.Exit(status, 1)
	}
	return cli.Exit(err.Error(), 1)
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "show the most recent reports and write the marker layer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "markers", Usage: "GeoJSON output file, empty disables it"},
			&cli.BoolFlag{Name: "popups", Usage: "print every marker popup"},
		},
		Action: func(c *cli.Context) error {
			out := cfg.MarkersFile
			if c.IsSet("markers") {
				out = c.String("markers")
			}
			term := terminal.New(os.Stdout, out)
			session := newSession(term, term)
			if err := session.Init(c.Context); err != nil {
				return fail(term, err)
			}
			if c.Bool("popups") {
				for _, m := range term.Markers() {
					fmt.Println(terminal.PopupText(m))
				}
			}
			return nil
		},
	}
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "report a new observation",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Value: api.EventTypes[0], Usage: "event type, e.g. meteor, satellite, flash, unknown"},
			&cli.StringFlag{Name: "description", Usage: "free text"},
			&cli.StringFlag{Name: "lat", Usage: "latitude in decimal degrees"},
			&cli.StringFlag{Name: "lon", Usage: "longitude in decimal degrees"},
			&cli.StringFlag{Name: "observed-at", Usage: "UTC time as YYYY-MM-DDTHH:MM, defaults to now"},
			&cli.BoolFlag{Name: "locate", Usage: "fill latitude and longitude from the device location"},
			&cli.StringFlag{Name: "markers", Usage: "GeoJSON output file, empty disables it"},
		},
		Action: func(c *cli.Context) error {
			out := cfg.MarkersFile
			if c.IsSet("markers") {
				out = c.String("markers")
			}
			term := terminal.New(os.Stdout, out)
			session := newSession(term, term)
			if err := session.Init(c.Context); err != nil {
				log.WithError(err).Warn("Initial load failed, submitting anyway")
			}
			if c.Bool("locate") {
				if err := session.AcquireLocation(c.Context); err != nil {
					log.WithError(err).Warn("Location lookup failed")
				}
			}
			term.Fill(view.Form{
				EventType:   c.String("type"),
				Description: c.String("description"),
				Latitude:    c.String("lat"),
				Longitude:   c.String("lon"),
				ObservedAt:  c.String("observed-at"),
			})
			if err := session.Submit(c.Context); err != nil {
				return fail(term, err)
			}
			return nil
		},
	}
}

func locateCommand() *cli.Command {
	return &cli.Command{
		Name:  "locate",
		Usage: "print the device location as the form would receive it",
		Action: func(c *cli.Context) error {
			term := terminal.New(os.Stdout, "")
			session := newSession(term, term)
			if err := session.AcquireLocation(c.Context); err != nil {
				return fail(term, err)
			}
			return nil
		},
	}
}

func markersCommand() *cli.Command {
	return &cli.Command{
		Name:  "markers",
		Usage: "write the marker layer as GeoJSON, optionally clustered",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "GeoJSON output file"},
			&cli.BoolFlag{Name: "cluster", Usage: "aggregate dense markers on S2 cells"},
		},
		Action: func(c *cli.Context) error {
			out := cfg.MarkersFile
			if c.IsSet("out") {
				out = c.String("out")
			}
			if !c.Bool("cluster") {
				term := terminal.New(os.Stdout, out)
				if err := newSession(term, term).LoadReports(c.Context); err != nil {
					return fail(term, err)
				}
				return nil
			}

			term := terminal.New(os.Stdout, "")
			if err := newSession(term, term).LoadReports(c.Context); err != nil {
				return fail(term, err)
			}
			markers := term.Markers()
			points := make([]geo.Point, 0, len(markers))
			for _, m := range markers {
				points = append(points, m.Position)
			}
			clusters := geo.ClusterPoints(points)
			if err := terminal.WriteCollection(out, terminal.ClustersCollection(clusters)); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			log.Infof("Wrote %d clusters for %d markers to %s", len(clusters), len(markers), out)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve a local map page driven by the backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address"},
		},
		Action: func(c *cli.Context) error {
			addr := cfg.Addr
			if c.IsSet("addr") {
				addr = c.String("addr")
			}
			hub := webview.NewHub()
			go hub.Run()
			defer hub.Stop()

			wv := webview.NewWebView(hub, webview.MapView{Center: geo.Point{Lat: -32.0, Lon: 26.0}, Zoom: 5})
			session := newSession(wv, wv)
			if err := session.Init(c.Context); err != nil {
				log.WithError(err).Warn("Initial load failed")
			}
			return webview.NewServer(session, wv, hub).Run(c.Context, addr)
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check that the backend is up",
		Action: func(c *cli.Context) error {
			if err := newBackend().Health(c.Context); err != nil {
				return cli.Exit(fmt.Sprintf("backend %s is not healthy: %v", cfg.APIBase, err), 1)
			}
			log.Infof("Backend %s is healthy", cfg.APIBase)
			return nil
		},
	}
}
