package app

import (
	"log/slog"
	"net/http"

	"proximity.onebusaway.org/internal/config"
	"proximity.onebusaway.org/internal/notify"
)

// Application wires the configuration service, the monitor status shared with
// the HTTP handlers, the logger and the application version together.
type Application struct {
	ConfigService *config.ConfigService
	Status        *Status
	Logger        *slog.Logger
	Version       string

	// Notifier overrides the webhook built from the monitor configuration.
	Notifier notify.Notifier

	// approaching is owned by the monitor loop.
	approaching bool
}

// New creates and wires all dependencies for the Application.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, version string) *Application {
	return &Application{
		ConfigService: config.NewConfigService(logger, client, cfg),
		Status:        NewStatus(),
		Logger:        logger,
		Version:       version,
	}
}
