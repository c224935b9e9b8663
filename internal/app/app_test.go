package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"proximity.onebusaway.org/internal/config"
	"proximity.onebusaway.org/internal/page/pagetest"
)

const (
	busJSON        = `{"Latitude":43.7395222,"Longitude":-79.4443416,"Heading":"E","HeadingDegrees":74.0,"Time":"2026-01-06T08:59:49","Speed":15.998398780822754}`
	farStopsJSON   = `[{"X":625727.5,"Y":4842863.9,"Longitude":-79.43893765643179,"Latitude":43.728150882692312}]`
	closeStopJSON  = `[{"Latitude":43.7368222,"Longitude":-79.4443416}]`
	closerStopJSON = `[{"Latitude":43.7386222,"Longitude":-79.4443416}]`
)

func newTestApplication(t *testing.T, monitor config.MonitorConfig) *Application {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.NewConfig(4000, "testing", monitor)
	return New(cfg, logger, &http.Client{Timeout: time.Second}, "test-version")
}

// fastMonitor is the default configuration with timings short enough to run
// real page lifetimes in tests.
func fastMonitor() config.MonitorConfig {
	m := config.DefaultMonitorConfig()
	m.Proximity.CloseFlashIntervalMs = 5
	m.Proximity.CloserFlashIntervalMs = 2
	m.Proximity.ReloadDelayMs = 30
	return m
}

func newTrackingPage(monitor config.MonitorConfig, stops string) *pagetest.Document {
	return pagetest.NewDocument(map[string]string{
		monitor.Fields.BusLocation:   busJSON,
		monitor.Fields.StopLocations: stops,
		monitor.Layout.Anchor:        "",
		monitor.Layout.FlashTarget:   "",
	})
}

func withTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
