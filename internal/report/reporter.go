package report

import (
	"os"
	"runtime"

	"github.com/getsentry/sentry-go"
)

// ConfigureScope tags every event of this process with the deployment and
// the host it runs on.
func ConfigureScope(env, version string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(map[string]string{
			"env":         env,
			"app_version": version,
			"go_version":  runtime.Version(),
			"goos":        runtime.GOOS,
			"goarch":      runtime.GOARCH,
		})
		scope.SetContext("host_info", sentry.Context{
			"hostname": hostname(),
		})
	})
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

// ReportError sends err to Sentry at the given level, sentry.LevelError if
// none is given. A nil error is ignored.
func ReportError(err error, levels ...sentry.Level) {
	level := sentry.LevelError
	if len(levels) > 0 {
		level = levels[0]
	}
	ReportErrorWithSentryOptions(err, SentryReportOptions{Level: level})
}

// SentryReportOptions carries the per-event tags, extra context and level.
type SentryReportOptions struct {
	ExtraContext map[string]interface{}
	Tags         map[string]string
	Level        sentry.Level
}

// ReportErrorWithSentryOptions sends err to Sentry in a scope of its own so
// the tags do not leak into later events. A nil error is ignored.
func ReportErrorWithSentryOptions(err error, opts SentryReportOptions) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if opts.ExtraContext != nil {
			scope.SetContext("extra", opts.ExtraContext)
		}
		scope.SetTags(opts.Tags)
		if opts.Level != "" {
			scope.SetLevel(opts.Level)
		}
		sentry.CaptureException(err)
	})
}

// LifetimeOptions tags a report with the page lifetime it happened in.
func LifetimeOptions(lifetimeID, pageURL string, level sentry.Level) SentryReportOptions {
	return SentryReportOptions{
		Tags: map[string]string{
			"lifetime_id": lifetimeID,
			"page_url":    pageURL,
		},
		Level: level,
	}
}
