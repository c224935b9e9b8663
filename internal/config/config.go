package config

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"proximity.onebusaway.org/internal/browser"
	"proximity.onebusaway.org/internal/page"
	"proximity.onebusaway.org/internal/position"
	"proximity.onebusaway.org/internal/proximity"
)

// Defaults used when the configuration document leaves a value out.
const (
	DefaultCloseDistanceMeters   = 500.0
	DefaultCloserDistanceMeters  = 200.0
	DefaultCloseFlashIntervalMs  = 1000
	DefaultCloserFlashIntervalMs = 400
	DefaultReloadDelayMs         = 60000
	DefaultCloseColor            = "orange"
	DefaultCloserColor           = "red"
	DefaultStyleProperty         = "border-color"

	DefaultPageURL               = "https://tstg.mybusplanner.ca/Subscriptions/WheresMyBus"
	DefaultLoginURL              = "https://tstg.mybusplanner.ca/Login?LoginType=Subscriber"
	DefaultBusLocationSelector   = "input#MainContent_NestContent_hfBusLocation"
	DefaultStopLocationsSelector = "input#MainContent_NestContent_hfBusStopLocations"
	DefaultAnchorSelector        = "#MainContent_NestContent_lblRoute"
	DefaultFlashTargetSelector   = "#map"
	DefaultLabelID               = "bus-proximity-distance"

	DefaultBrowserTimeoutMs = 30000

	DefaultNotificationTitle = "BusPlanner"
)

// Config holds all the configuration settings for our application.
type Config struct {
	Port    int
	Env     string
	Mu      sync.RWMutex
	Monitor MonitorConfig
}

// NewConfig creates a new instance of a Config struct.
func NewConfig(port int, env string, monitor MonitorConfig) *Config {
	return &Config{
		Port:    port,
		Env:     env,
		Monitor: monitor,
	}
}

// UpdateConfig safely replaces the monitor configuration. Running page
// lifetimes keep the snapshot they started with.
func (cfg *Config) UpdateConfig(monitor MonitorConfig) {
	cfg.Mu.Lock()
	defer cfg.Mu.Unlock()
	cfg.Monitor = monitor
}

// GetMonitor safely returns a copy of the monitor configuration.
func (cfg *Config) GetMonitor() MonitorConfig {
	cfg.Mu.RLock()
	defer cfg.Mu.RUnlock()
	return cfg.Monitor
}

// MonitorConfig is the JSON configuration document.
type MonitorConfig struct {
	PageURL   string          `json:"page_url"`
	Login     LoginConfig     `json:"login"`
	Fields    FieldsConfig    `json:"fields"`
	Layout    LayoutConfig    `json:"layout"`
	Proximity ProximityConfig `json:"proximity"`
	Browser   BrowserConfig   `json:"browser"`
	Notify    NotifyConfig    `json:"notify"`
}

// LoginConfig locates the login form the browser fills in before the
// first page load. The username and password come from the environment,
// never from the configuration document.
type LoginConfig struct {
	URL              string `json:"url"`
	UsernameSelector string `json:"username_selector"`
	PasswordSelector string `json:"password_selector"`
	SubmitSelector   string `json:"submit_selector"`
}

// FieldsConfig names the hidden fields that carry the bus position and
// the stop list as JSON.
type FieldsConfig struct {
	BusLocation   string `json:"bus_location"`
	StopLocations string `json:"stop_locations"`
}

// LayoutConfig decides where the distance label goes and which element
// flashes. Placement is one of the insertAdjacentElement positions.
type LayoutConfig struct {
	Anchor      string `json:"anchor"`
	Placement   string `json:"placement"`
	FlashTarget string `json:"flash_target"`
	LabelID     string `json:"label_id"`
}

// ProximityConfig holds the distance thresholds in meters and the flash
// cadence in milliseconds. The closer tier must be both nearer and faster
// than the close tier.
type ProximityConfig struct {
	CloseDistanceMeters   float64 `json:"close_distance_meters"`
	CloserDistanceMeters  float64 `json:"closer_distance_meters"`
	CloseFlashIntervalMs  int     `json:"close_flash_interval_ms"`
	CloserFlashIntervalMs int     `json:"closer_flash_interval_ms"`
	ReloadDelayMs         int     `json:"reload_delay_ms"`
	CloseColor            string  `json:"close_color"`
	CloserColor           string  `json:"closer_color"`
	StyleProperty         string  `json:"style_property"`
}

// BrowserConfig controls the Chrome instance chromedp launches.
type BrowserConfig struct {
	Headless  bool   `json:"headless"`
	ExecPath  string `json:"exec_path"`
	UserAgent string `json:"user_agent"`
	TimeoutMs int    `json:"timeout_ms"`
}

// NotifyConfig configures the "bus approaching" notification. With no
// webhook URL no notification is sent.
type NotifyConfig struct {
	WebhookURL string `json:"webhook_url"`
	Title      string `json:"title"`
}

// DefaultMonitorConfig returns the configuration used for any value a
// configuration document does not set.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PageURL: DefaultPageURL,
		Login: LoginConfig{
			URL:              DefaultLoginURL,
			UsernameSelector: `input[name="ctl00$MainContent$glogin$lLogin$UserName"]`,
			PasswordSelector: `input[name="ctl00$MainContent$glogin$lLogin$Password"]`,
			SubmitSelector:   `input[type="submit"]`,
		},
		Fields: FieldsConfig{
			BusLocation:   DefaultBusLocationSelector,
			StopLocations: DefaultStopLocationsSelector,
		},
		Layout: LayoutConfig{
			Anchor:      DefaultAnchorSelector,
			Placement:   string(page.AfterEnd),
			FlashTarget: DefaultFlashTargetSelector,
			LabelID:     DefaultLabelID,
		},
		Proximity: ProximityConfig{
			CloseDistanceMeters:   DefaultCloseDistanceMeters,
			CloserDistanceMeters:  DefaultCloserDistanceMeters,
			CloseFlashIntervalMs:  DefaultCloseFlashIntervalMs,
			CloserFlashIntervalMs: DefaultCloserFlashIntervalMs,
			ReloadDelayMs:         DefaultReloadDelayMs,
			CloseColor:            DefaultCloseColor,
			CloserColor:           DefaultCloserColor,
			StyleProperty:         DefaultStyleProperty,
		},
		Browser: BrowserConfig{
			Headless:  true,
			TimeoutMs: DefaultBrowserTimeoutMs,
		},
		Notify: NotifyConfig{
			Title: DefaultNotificationTitle,
		},
	}
}

// Validate checks that the configuration can drive a page lifetime.
func (m MonitorConfig) Validate() error {
	var errs []string

	if m.PageURL == "" {
		errs = append(errs, "page_url is required")
	}
	if m.Fields.BusLocation == "" {
		errs = append(errs, "fields.bus_location is required")
	}
	if m.Fields.StopLocations == "" {
		errs = append(errs, "fields.stop_locations is required")
	}
	if m.Layout.Anchor == "" {
		errs = append(errs, "layout.anchor is required")
	}
	if m.Layout.FlashTarget == "" {
		errs = append(errs, "layout.flash_target is required")
	}
	if _, err := page.ParsePlacement(m.Layout.Placement); err != nil {
		errs = append(errs, "layout.placement: "+err.Error())
	}

	p := m.Proximity
	if p.CloserDistanceMeters <= 0 {
		errs = append(errs, fmt.Sprintf("proximity.closer_distance_meters must be positive, got %v", p.CloserDistanceMeters))
	}
	if p.CloserDistanceMeters >= p.CloseDistanceMeters {
		errs = append(errs, fmt.Sprintf("proximity.closer_distance_meters (%v) must be less than proximity.close_distance_meters (%v)", p.CloserDistanceMeters, p.CloseDistanceMeters))
	}
	if p.CloseFlashIntervalMs <= 0 || p.CloserFlashIntervalMs <= 0 {
		errs = append(errs, "proximity flash intervals must be positive")
	} else if p.CloserFlashIntervalMs >= p.CloseFlashIntervalMs {
		errs = append(errs, fmt.Sprintf("proximity.closer_flash_interval_ms (%d) must be less than proximity.close_flash_interval_ms (%d)", p.CloserFlashIntervalMs, p.CloseFlashIntervalMs))
	}
	// An empty value would make every "on" phase a removal.
	if strings.TrimSpace(p.CloseColor) == "" {
		errs = append(errs, "proximity.close_color is required")
	}
	if strings.TrimSpace(p.CloserColor) == "" {
		errs = append(errs, "proximity.closer_color is required")
	}
	if p.ReloadDelayMs <= 0 {
		errs = append(errs, "proximity.reload_delay_ms must be positive")
	}
	if p.StyleProperty == "" {
		errs = append(errs, "proximity.style_property is required")
	}
	if m.Browser.TimeoutMs <= 0 {
		errs = append(errs, "browser.timeout_ms must be positive")
	}
	if m.Notify.WebhookURL != "" {
		u, err := url.Parse(m.Notify.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, "notify.webhook_url must be an absolute http(s) URL")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Settings converts the proximity section for the feedback controller.
func (m MonitorConfig) Settings() proximity.Settings {
	p := m.Proximity
	return proximity.Settings{
		CloseDistance:       p.CloseDistanceMeters,
		CloserDistance:      p.CloserDistanceMeters,
		CloseFlashInterval:  time.Duration(p.CloseFlashIntervalMs) * time.Millisecond,
		CloserFlashInterval: time.Duration(p.CloserFlashIntervalMs) * time.Millisecond,
		ReloadDelay:         time.Duration(p.ReloadDelayMs) * time.Millisecond,
		CloseColor:          p.CloseColor,
		CloserColor:         p.CloserColor,
		StyleProperty:       p.StyleProperty,
	}
}

// PageLayout converts the layout section for the feedback controller.
// The placement must already have been validated.
func (m MonitorConfig) PageLayout() proximity.Layout {
	return proximity.Layout{
		Anchor:      m.Layout.Anchor,
		Placement:   page.Placement(m.Layout.Placement),
		FlashTarget: m.Layout.FlashTarget,
		LabelID:     m.Layout.LabelID,
	}
}

// PositionFields converts the fields section for the extractor.
func (m MonitorConfig) PositionFields() position.Fields {
	return position.Fields{
		BusLocation:   m.Fields.BusLocation,
		StopLocations: m.Fields.StopLocations,
	}
}

// BrowserOptions converts the browser section for the chromedp session.
func (m MonitorConfig) BrowserOptions() browser.Options {
	return browser.Options{
		Headless:  m.Browser.Headless,
		ExecPath:  m.Browser.ExecPath,
		UserAgent: m.Browser.UserAgent,
		Timeout:   time.Duration(m.Browser.TimeoutMs) * time.Millisecond,
	}
}

// LoginForm converts the login section for the chromedp session.
func (m MonitorConfig) LoginForm() browser.LoginForm {
	return browser.LoginForm{
		URL:              m.Login.URL,
		UsernameSelector: m.Login.UsernameSelector,
		PasswordSelector: m.Login.PasswordSelector,
		SubmitSelector:   m.Login.SubmitSelector,
	}
}
