// skywatch submits sky observations to a SkyWatch backend and shows the
// reported ones, either on the terminal or on a local map page.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"skywatch/common"
	"skywatch/config"
	"skywatch/controller"
	"skywatch/geolocate"
	"skywatch/reports"
	"skywatch/view"

	"github.com/apex/log"
	"github.com/urfave/cli/v2"
)

var (
	cfg       *config.Config
	logCloser io.Closer
)

func main() {
	app := &cli.App{
		Name:   "skywatch",
		Usage:  "report and browse sky observations",
		Flags:  globalFlags(),
		Before: setup,
		After: func(c *cli.Context) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			listCommand(),
			submitCommand(),
			locateCommand(),
			markersCommand(),
			serveCommand(),
			healthCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "api-base", Usage: "base URL of the reports backend"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: "log-file", Usage: "write logs to a rotated file instead of stderr"},
		&cli.StringFlag{Name: "geolocation-url", Usage: "IP geolocation JSON endpoint used by --locate"},
		&cli.IntFlag{Name: "retries", Usage: "attempts per load request (1 disables retrying)"},
	}
}

// setup loads the configuration and lets global flags override it.
func setup(c *cli.Context) error {
	cfg = config.Load()
	if c.IsSet("api-base") {
		cfg.APIBase = c.String("api-base")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.IsSet("geolocation-url") {
		cfg.GeolocationURL = c.String("geolocation-url")
	}
	if c.IsSet("retries") {
		cfg.RetryAttempts = c.Int("retries")
	}
	logCloser = common.SetupLogging(cfg.LogLevel, cfg.LogFile)
	log.WithField("api_base", cfg.APIBase).Debug("configuration loaded")
	return nil
}

func newBackend() *reports.Client {
	return reports.New(cfg.APIBase,
		reports.WithTimeout(cfg.RequestTimeout),
		reports.WithRetry(reports.RetryPolicy{Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}),
		reports.WithRateLimit(cfg.RateLimit, 1),
	)
}

func newSession(v view.View, m view.Map) *controller.Session {
	return controller.New(v, m, newBackend(), controller.Options{
		LoadLimit:  cfg.LoadLimit,
		ListLimit:  cfg.ListLimit,
		GeoTimeout: cfg.GeoTimeout,
		Locator:    geolocate.FromConfig(cfg.GeolocationURL, cfg.StaticPosition),
	})
}
