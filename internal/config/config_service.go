package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"proximity.onebusaway.org/internal/report"
	"proximity.onebusaway.org/internal/utils"
)

// defaultMaxRetries bounds remote config fetches.
const defaultMaxRetries = 3

// ConfigService holds dependencies and provides config operations.
type ConfigService struct {
	Logger *slog.Logger
	Client *http.Client
	Config *Config
}

// NewConfigService creates a new ConfigService instance with the provided logger and HTTP client.
func NewConfigService(logger *slog.Logger, client *http.Client, config *Config) *ConfigService {
	return &ConfigService{
		Logger: logger,
		Client: client,
		Config: config,
	}
}

// RefreshConfig polls the remote configuration every interval until ctx is
// canceled. It blocks, so callers run it in its own goroutine.
func (cs *ConfigService) RefreshConfig(ctx context.Context, url, authUser, authPass string, interval time.Duration) {
	refreshConfig(ctx, cs.Client, url, authUser, authPass, cs.Config, cs.Logger, interval, defaultMaxRetries)
}

// exported helper functions

// LoadConfigFromFile loads and validates the monitor configuration from a file.
func LoadConfigFromFile(filePath string) (MonitorConfig, error) {
	monitor, err := loadConfigFromFile(filePath)
	if err != nil {
		err := fmt.Errorf("failed to load config from file %s: %w", filePath, err)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("file_path", filePath),
			Level: sentry.LevelError,
		})
		return MonitorConfig{}, err
	}
	return monitor, nil
}

// LoadConfigFromURL loads and validates the monitor configuration from a URL.
func LoadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string) (MonitorConfig, error) {
	monitor, err := loadConfigFromURL(ctx, client, url, authUser, authPass, defaultMaxRetries)
	if err != nil {
		err := fmt.Errorf("failed to load config from URL %s: %w", utils.SafeURLString(url), err)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("config_url", utils.SafeURLString(url)),
			Level: sentry.LevelError,
		})
		return MonitorConfig{}, err
	}
	return monitor, nil
}
