package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"proximity.onebusaway.org/internal/config"
	"proximity.onebusaway.org/internal/geo"
	"proximity.onebusaway.org/internal/metrics"
	"proximity.onebusaway.org/internal/notify"
	"proximity.onebusaway.org/internal/page"
	"proximity.onebusaway.org/internal/position"
	"proximity.onebusaway.org/internal/proximity"
	"proximity.onebusaway.org/internal/report"
)

// Navigator opens a URL in the tab backing the document.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Run drives page lifetimes back to back until ctx is cancelled or a
// lifetime fails. Each lifetime reads the configuration afresh, so a
// refreshed configuration applies from the next reload on. The tab is
// (re)navigated whenever the configured page URL differs from the one it
// shows.
//
// Run returns nil on cancellation.
func (app *Application) Run(ctx context.Context, doc page.Document, nav Navigator) error {
	var current string
	for {
		if ctx.Err() != nil {
			return nil
		}
		monitor := app.ConfigService.Config.GetMonitor()

		if nav != nil && monitor.PageURL != current {
			if err := nav.Navigate(ctx, monitor.PageURL); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%w: %w", page.ErrNavigationFailed, err)
			}
			current = monitor.PageURL
		}

		if err := app.RunLifetime(ctx, doc, monitor); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// RunLifetime evaluates the page once and runs the resulting timers until
// the page is reloaded. It returns nil after the reload, the failure of a
// startup step or a timer task otherwise.
func (app *Application) RunLifetime(ctx context.Context, doc page.Document, monitor config.MonitorConfig) error {
	id := uuid.NewString()
	logger := app.Logger.With("lifetime_id", id)

	loop := page.NewLoop(ctx)
	defer loop.Close()

	if _, err := app.startLifetime(ctx, doc, loop, monitor, id, logger); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		reason := startupFailureReason(err)
		metrics.StartupFailures.WithLabelValues(reason).Inc()
		report.ReportErrorWithSentryOptions(err, report.LifetimeOptions(id, monitor.PageURL, sentry.LevelError))
		logger.Error("Page lifetime failed to start", "reason", reason, "error", err)
		return err
	}

	if err := loop.Run(); err != nil {
		if ctx.Err() == nil {
			report.ReportErrorWithSentryOptions(err, report.LifetimeOptions(id, monitor.PageURL, sentry.LevelFatal))
			logger.Error("Page lifetime aborted", "error", err)
		}
		return err
	}

	logger.Debug("Page lifetime ended")
	return nil
}

// startLifetime is the startup sequence of a page lifetime: extract both
// positions, measure the distance and hand it to the feedback controller.
// Nothing is written to the page and no timer is registered unless every
// read succeeds.
func (app *Application) startLifetime(ctx context.Context, doc page.Document, sched page.Scheduler, monitor config.MonitorConfig, id string, logger *slog.Logger) (proximity.Tier, error) {
	app.Status.lifetimeStarted()

	extractor := position.NewExtractor(doc, monitor.PositionFields(), logger)
	bus, stop, err := extractor.Extract(ctx)
	if err != nil {
		return proximity.Far, err
	}

	distance := geo.Distance(stop, bus)
	logger.Debug("Measured distance", "bus", bus, "stop", stop, "distance_m", distance)

	controller := proximity.NewController(doc, sched, monitor.Settings(), monitor.PageLayout(), logger)
	tier, err := controller.Start(ctx, distance)
	if err != nil {
		return proximity.Far, err
	}

	app.Status.recordEvaluation(distance, tier, time.Now())
	app.announceApproach(ctx, monitor, id, distance, tier, logger)
	return tier, nil
}

// announceApproach notifies the rider once when the bus enters the close
// radius. It stays quiet while the bus remains close and re-arms once a
// lifetime evaluates to Far. A failed notification is logged and reported,
// never fatal to the lifetime.
func (app *Application) announceApproach(ctx context.Context, monitor config.MonitorConfig, id string, distance float64, tier proximity.Tier, logger *slog.Logger) {
	if tier == proximity.Far {
		app.approaching = false
		return
	}
	if app.approaching {
		return
	}
	app.approaching = true

	notifier := app.notifier(monitor)
	if notifier == nil {
		return
	}

	n := notify.Notification{
		Title:          monitor.Notify.Title,
		Message:        fmt.Sprintf("Bus is within %s of your stop!", proximity.FormatDistance(monitor.Proximity.CloseDistanceMeters)),
		DistanceMeters: distance,
		Tier:           tier.String(),
		LifetimeID:     id,
		Time:           time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := notifier.Notify(ctx, n); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		report.ReportErrorWithSentryOptions(err, report.LifetimeOptions(id, monitor.PageURL, sentry.LevelWarning))
		logger.Warn("Failed to send approach notification", "error", err)
		return
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
	logger.Info("Sent approach notification", "tier", tier.String(), "distance_m", distance)
}

const notifyTimeout = 5 * time.Second

func (app *Application) notifier(monitor config.MonitorConfig) notify.Notifier {
	if app.Notifier != nil {
		return app.Notifier
	}
	if monitor.Notify.WebhookURL == "" {
		return nil
	}
	return notify.NewWebhook(app.ConfigService.Client, monitor.Notify.WebhookURL)
}

func startupFailureReason(err error) string {
	var decodeErr *position.DecodeError
	switch {
	case errors.Is(err, page.ErrElementNotFound):
		return "element_not_found"
	case errors.As(err, &decodeErr):
		return "decode_error"
	case errors.Is(err, position.ErrNoStopsFound):
		return "no_stops"
	default:
		return "other"
	}
}
