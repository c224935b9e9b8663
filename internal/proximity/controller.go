package proximity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"proximity.onebusaway.org/internal/metrics"
	"proximity.onebusaway.org/internal/page"
)

// Settings are the thresholds and timings of the feedback state machine.
type Settings struct {
	CloseDistance       float64
	CloserDistance      float64
	CloseFlashInterval  time.Duration
	CloserFlashInterval time.Duration
	ReloadDelay         time.Duration
	CloseColor          string
	CloserColor         string
	StyleProperty       string
}

// Layout says where the label goes and which element flashes. It changes
// whenever the tracking page changes its markup, so it is always injected.
type Layout struct {
	Anchor      string
	Placement   page.Placement
	FlashTarget string
	LabelID     string
	LabelTag    string
}

// Controller turns one distance into a label, an optional flashing task and
// a reload task.
type Controller struct {
	Doc       page.Document
	Scheduler page.Scheduler
	Settings  Settings
	Layout    Layout
	Logger    *slog.Logger
}

// NewController creates a Controller.
func NewController(doc page.Document, scheduler page.Scheduler, settings Settings, layout Layout, logger *slog.Logger) *Controller {
	return &Controller{
		Doc:       doc,
		Scheduler: scheduler,
		Settings:  settings,
		Layout:    layout,
		Logger:    logger,
	}
}

// Start evaluates distance once and registers the resulting tasks.
//
// Both the anchor and the flash target are looked up, and the target's
// style handle captured, before anything is written, so a missing element
// leaves the page untouched and registers no task. The flashing task reuses
// that one handle for its whole lifetime. On success exactly one reload task
// and, for Close and Closer, one flashing task have been registered.
func (c *Controller) Start(ctx context.Context, distance float64) (Tier, error) {
	anchor, err := c.Doc.Query(ctx, c.Layout.Anchor)
	if err != nil {
		return Far, fmt.Errorf("label anchor: %w", err)
	}
	target, err := c.Doc.Query(ctx, c.Layout.FlashTarget)
	if err != nil {
		return Far, fmt.Errorf("flash target: %w", err)
	}
	style, err := target.Style(ctx)
	if err != nil {
		return Far, fmt.Errorf("flash target style: %w", err)
	}

	label := page.Node{Tag: c.labelTag(), ID: c.Layout.LabelID, Text: LabelText(distance)}
	if err := anchor.Insert(ctx, c.Layout.Placement, label); err != nil {
		return Far, fmt.Errorf("insert distance label: %w", err)
	}

	tier := Classify(distance, c.Settings.CloseDistance, c.Settings.CloserDistance)
	metrics.BusStopDistance.Set(distance)
	metrics.ProximityTier.Set(float64(tier))

	if interval, color, ok := c.flashFor(tier); ok {
		f := newFlasher(style, c.Settings.StyleProperty, color)
		c.Scheduler.Every(interval, f.tick)
		c.Logger.Info("Bus approaching, flashing map", "distance_m", distance, "tier", tier.String(), "interval", interval)
	} else {
		c.Logger.Info("Bus far from stop", "distance_m", distance, "tier", tier.String())
	}

	c.Scheduler.After(c.Settings.ReloadDelay, c.reload)
	return tier, nil
}

func (c *Controller) flashFor(tier Tier) (time.Duration, string, bool) {
	switch tier {
	case Close:
		return c.Settings.CloseFlashInterval, c.Settings.CloseColor, true
	case Closer:
		return c.Settings.CloserFlashInterval, c.Settings.CloserColor, true
	}
	return 0, "", false
}

func (c *Controller) reload(ctx context.Context) error {
	if err := c.Doc.Reload(ctx); err != nil {
		return page.Fatal("reload", fmt.Errorf("%w: %w", page.ErrNavigationFailed, err))
	}
	metrics.PageReloads.Inc()
	c.Logger.Info("Page reloaded")
	return page.ErrUnloaded
}

func (c *Controller) labelTag() string {
	if c.Layout.LabelTag == "" {
		return "span"
	}
	return c.Layout.LabelTag
}
