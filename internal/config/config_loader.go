package config

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"proximity.onebusaway.org/internal/report"
	"proximity.onebusaway.org/internal/utils"
)

// ValidateConfigFlags ensures that at most one configuration source is
// specified: either a config file "--config-file" or a remote config URL
// "--config-url". Specifying neither is allowed; the built-in defaults are
// used in that case.
//
// Returns an error if more than one input method is specified.
func ValidateConfigFlags(configFile, configURL *string) error {
	if (*configFile != "" && *configURL != "") || (*configFile != "" && len(flag.Args()) > 0) || (*configURL != "" && len(flag.Args()) > 0) {
		return fmt.Errorf("only one of --config-file or --config-url can be specified")
	}
	return nil
}

// parseMonitorConfig overlays a JSON configuration document on the defaults
// and validates the result.
func parseMonitorConfig(data []byte) (MonitorConfig, error) {
	monitor := DefaultMonitorConfig()
	if err := json.Unmarshal(data, &monitor); err != nil {
		return MonitorConfig{}, fmt.Errorf("failed to unmarshal JSON: %v", err)
	}
	if err := monitor.Validate(); err != nil {
		return MonitorConfig{}, err
	}
	return monitor, nil
}

// refreshConfig periodically fetches configuration from a remote URL and
// replaces the monitor configuration. The new values apply from the next
// page lifetime on.
//
// Errors during fetch or parse are logged and reported to Sentry, but the loop continues.
//
// The routine stops gracefully when the context is canceled.
func refreshConfig(ctx context.Context, client *http.Client, configURL, configAuthUser, configAuthPass string, cfg *Config, logger *slog.Logger, interval time.Duration, maxRetries int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping config refresh routine")
			return
		case <-ticker.C:
			monitor, err := loadConfigFromURL(ctx, client, configURL, configAuthUser, configAuthPass, maxRetries)
			if err != nil {
				report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
					Tags:  utils.MakeMap("config_url", utils.SafeURLString(configURL)),
					Level: sentry.LevelError,
				})
				logger.Error("Failed to refresh remote config", "error", err)
				continue
			}
			cfg.UpdateConfig(monitor)
			logger.Info("Successfully refreshed monitor configuration")
		}
	}
}

// loadConfigFromFile reads a JSON configuration file from disk.
//
// This function is used when the application is configured to load its
// configuration from a static file using the --config-file flag.
func loadConfigFromFile(filePath string) (MonitorConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return MonitorConfig{}, fmt.Errorf("failed to read config file: %v", err)
	}
	return parseMonitorConfig(data)
}

// loadConfigFromURL fetches a JSON configuration from a remote HTTP(S) endpoint,
// using the provided client and optional basic authentication.
func loadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) (MonitorConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return MonitorConfig{}, fmt.Errorf("failed to create request: %v", err)
	}

	if authUser != "" && authPass != "" {
		req.SetBasicAuth(authUser, authPass)
	}

	resp, err := DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return MonitorConfig{}, fmt.Errorf("failed to fetch remote config: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return MonitorConfig{}, fmt.Errorf("remote config returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return MonitorConfig{}, fmt.Errorf("failed to read remote config: %v", err)
	}

	return parseMonitorConfig(data)
}
