package config

import (
	"strings"
	"sync"
	"testing"
	"time"

	"proximity.onebusaway.org/internal/page"
)

func TestDefaultMonitorConfigIsValid(t *testing.T) {
	if err := DefaultMonitorConfig().Validate(); err != nil {
		t.Fatalf("Default configuration failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *MonitorConfig)
		wantErr string
	}{
		{
			name:    "missing page URL",
			mutate:  func(m *MonitorConfig) { m.PageURL = "" },
			wantErr: "page_url is required",
		},
		{
			name:    "missing bus field",
			mutate:  func(m *MonitorConfig) { m.Fields.BusLocation = "" },
			wantErr: "fields.bus_location is required",
		},
		{
			name:    "missing stop field",
			mutate:  func(m *MonitorConfig) { m.Fields.StopLocations = "" },
			wantErr: "fields.stop_locations is required",
		},
		{
			name:    "unknown placement",
			mutate:  func(m *MonitorConfig) { m.Layout.Placement = "below" },
			wantErr: "layout.placement",
		},
		{
			name: "closer not less than close",
			mutate: func(m *MonitorConfig) {
				m.Proximity.CloseDistanceMeters = 200
				m.Proximity.CloserDistanceMeters = 200
			},
			wantErr: "must be less than",
		},
		{
			name:    "non-positive closer distance",
			mutate:  func(m *MonitorConfig) { m.Proximity.CloserDistanceMeters = 0 },
			wantErr: "must be positive",
		},
		{
			name:    "zero flash interval",
			mutate:  func(m *MonitorConfig) { m.Proximity.CloserFlashIntervalMs = 0 },
			wantErr: "flash intervals must be positive",
		},
		{
			name: "closer flashes slower than close",
			mutate: func(m *MonitorConfig) {
				m.Proximity.CloseFlashIntervalMs = 200
				m.Proximity.CloserFlashIntervalMs = 2000
			},
			wantErr: "closer_flash_interval_ms (2000) must be less than",
		},
		{
			name: "closer flashes as fast as close",
			mutate: func(m *MonitorConfig) {
				m.Proximity.CloseFlashIntervalMs = 400
				m.Proximity.CloserFlashIntervalMs = 400
			},
			wantErr: "closer_flash_interval_ms (400) must be less than",
		},
		{
			name:    "empty close color",
			mutate:  func(m *MonitorConfig) { m.Proximity.CloseColor = "" },
			wantErr: "proximity.close_color is required",
		},
		{
			name:    "blank closer color",
			mutate:  func(m *MonitorConfig) { m.Proximity.CloserColor = "  " },
			wantErr: "proximity.closer_color is required",
		},
		{
			name:    "zero reload delay",
			mutate:  func(m *MonitorConfig) { m.Proximity.ReloadDelayMs = 0 },
			wantErr: "reload_delay_ms must be positive",
		},
		{
			name:    "relative webhook URL",
			mutate:  func(m *MonitorConfig) { m.Notify.WebhookURL = "/hooks/bus" },
			wantErr: "notify.webhook_url must be an absolute http(s) URL",
		},
		{
			name:    "non-http webhook URL",
			mutate:  func(m *MonitorConfig) { m.Notify.WebhookURL = "mailto:rider@example.com" },
			wantErr: "notify.webhook_url",
		},
		{
			name:    "zero browser timeout",
			mutate:  func(m *MonitorConfig) { m.Browser.TimeoutMs = -1 },
			wantErr: "browser.timeout_ms must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMonitorConfig()
			tt.mutate(&m)
			err := m.Validate()
			if err == nil {
				t.Fatalf("Expected validation error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateAcceptsWebhook(t *testing.T) {
	m := DefaultMonitorConfig()
	m.Notify.WebhookURL = "https://ntfy.example.com/bus"
	if err := m.Validate(); err != nil {
		t.Errorf("Expected a valid webhook URL to pass, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	m := DefaultMonitorConfig()
	m.PageURL = ""
	m.Layout.Anchor = ""
	m.Proximity.StyleProperty = ""

	err := m.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"page_url", "layout.anchor", "proximity.style_property"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %q, got %v", want, err)
		}
	}
}

func TestConverters(t *testing.T) {
	m := DefaultMonitorConfig()

	settings := m.Settings()
	if settings.CloseDistance != 500 || settings.CloserDistance != 200 {
		t.Errorf("Unexpected thresholds: %+v", settings)
	}
	if settings.CloseFlashInterval != time.Second || settings.CloserFlashInterval != 400*time.Millisecond {
		t.Errorf("Unexpected flash intervals: %v, %v", settings.CloseFlashInterval, settings.CloserFlashInterval)
	}
	if settings.ReloadDelay != time.Minute {
		t.Errorf("Expected reload delay of one minute, got %v", settings.ReloadDelay)
	}

	layout := m.PageLayout()
	if layout.Placement != page.AfterEnd || layout.Anchor != DefaultAnchorSelector {
		t.Errorf("Unexpected layout: %+v", layout)
	}

	fields := m.PositionFields()
	if fields.BusLocation != DefaultBusLocationSelector || fields.StopLocations != DefaultStopLocationsSelector {
		t.Errorf("Unexpected fields: %+v", fields)
	}

	opts := m.BrowserOptions()
	if !opts.Headless || opts.Timeout != 30*time.Second {
		t.Errorf("Unexpected browser options: %+v", opts)
	}

	form := m.LoginForm()
	if form.URL != DefaultLoginURL || form.SubmitSelector == "" {
		t.Errorf("Unexpected login form: %+v", form)
	}
}

func TestConfigConcurrentAccess(t *testing.T) {
	cfg := NewConfig(4000, "testing", DefaultMonitorConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			m := DefaultMonitorConfig()
			m.Proximity.ReloadDelayMs = 1000 * (i + 1)
			cfg.UpdateConfig(m)
		}(i)
		go func() {
			defer wg.Done()
			_ = cfg.GetMonitor()
		}()
	}
	wg.Wait()

	if cfg.GetMonitor().Proximity.ReloadDelayMs <= 0 {
		t.Error("Expected a positive reload delay after concurrent updates")
	}
}
