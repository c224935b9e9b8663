package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"proximity.onebusaway.org/internal/app"
	"proximity.onebusaway.org/internal/browser"
	"proximity.onebusaway.org/internal/config"
	"proximity.onebusaway.org/internal/report"
)

const version = "1.0.0"

func main() {
	var (
		port int
		env  string
	)
	flag.IntVar(&port, "port", 4000, "Status server port")
	flag.StringVar(&env, "env", "development", "Environment (development|staging|production)")

	var (
		configFile = flag.String("config-file", "", "Path to a local JSON configuration file")
		configURL  = flag.String("config-url", "", "URL to a remote JSON configuration file")
	)

	flag.Parse()

	if err := config.ValidateConfigFlags(configFile, configURL); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	// A missing .env file is fine: the variables may come from the environment.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := report.SetupSentry(env, version); err != nil {
		logger.Error("Failed to initialize Sentry", "error", err)
		os.Exit(1)
	}
	report.ConfigureScope(env, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, logger, port, env, *configFile, *configURL)
	stop()

	if err != nil {
		report.FlushSentry()
		logger.Error(err.Error())
		os.Exit(1)
	}
	report.FlushSentry()
	logger.Info("Monitor stopped")
}

// run loads the configuration, starts the status server and the browser,
// and drives page lifetimes until ctx is cancelled or one of them fails.
func run(ctx context.Context, logger *slog.Logger, port int, env, configFile, configURL string) error {
	configAuthUser := os.Getenv("CONFIG_AUTH_USER")
	configAuthPass := os.Getenv("CONFIG_AUTH_PASS")

	client := app.NewPooledClient()

	monitor := config.DefaultMonitorConfig()
	var err error
	switch {
	case configFile != "":
		monitor, err = config.LoadConfigFromFile(configFile)
	case configURL != "":
		monitor, err = config.LoadConfigFromURL(ctx, client, configURL, configAuthUser, configAuthPass)
	default:
		logger.Info("No configuration provided, using defaults")
	}
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	cfg := config.NewConfig(port, env, monitor)
	application := app.New(cfg, logger, client, version)

	// If a remote URL is specified, refresh the configuration every minute.
	if configURL != "" {
		go application.ConfigService.RefreshConfig(ctx, configURL, configAuthUser, configAuthPass, time.Minute)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report.ReportError(err, sentry.LevelError)
			logger.Error("Status server stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	session, err := browser.NewSession(ctx, monitor.BrowserOptions(), logger)
	if err != nil {
		report.ReportError(err, sentry.LevelFatal)
		return err
	}
	defer session.Close()

	if creds, ok := credentialsFromEnv(); ok {
		if err := session.Login(ctx, creds, monitor.LoginForm()); err != nil {
			report.ReportError(err, sentry.LevelFatal)
			return err
		}
	}

	// Page lifetime failures are reported by the monitor itself.
	return application.Run(ctx, session.Doc, session)
}

// credentialsFromEnv returns the tracking site credentials from BUS_USERNAME
// and BUS_PASSWORD. Both must be set for a login to happen.
func credentialsFromEnv() (browser.Credentials, bool) {
	creds := browser.Credentials{
		Username: os.Getenv("BUS_USERNAME"),
		Password: os.Getenv("BUS_PASSWORD"),
	}
	return creds, creds.Username != "" && creds.Password != ""
}
