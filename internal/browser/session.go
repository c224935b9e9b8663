package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// Options configures the Chrome instance.
type Options struct {
	Headless  bool
	ExecPath  string
	UserAgent string
	// Timeout bounds every single DevTools round trip.
	Timeout time.Duration
}

// Credentials for the tracking site.
type Credentials struct {
	Username string
	Password string
}

// LoginForm locates the login form on the tracking site.
type LoginForm struct {
	URL              string
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string
}

// Session owns a Chrome process and the tab the monitor works in.
type Session struct {
	Doc *Document

	logger *slog.Logger
	cancel func()
}

// NewSession starts Chrome and opens a tab. The browser is shut down when
// ctx is cancelled or Close is called.
func NewSession(ctx context.Context, opts Options, logger *slog.Logger) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tab, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
	}))

	// The first Run starts the browser.
	if err := chromedp.Run(tab); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		Doc:    NewDocument(tab, opts.Timeout),
		logger: logger,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
	}, nil
}

// Close shuts down the tab and the browser.
func (s *Session) Close() {
	s.cancel()
}

// Navigate opens url in the tab and waits for the body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Info("Opening tracking page", "url", url)
	if err := s.Doc.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// Login signs in to the tracking site through its login form.
func (s *Session) Login(ctx context.Context, creds Credentials, form LoginForm) error {
	s.logger.Info("Signing in", "url", form.URL, "user", creds.Username)
	err := s.Doc.run(ctx,
		chromedp.Navigate(form.URL),
		chromedp.WaitVisible(form.UsernameSelector, chromedp.ByQuery),
		chromedp.SendKeys(form.UsernameSelector, creds.Username, chromedp.ByQuery),
		chromedp.SendKeys(form.PasswordSelector, creds.Password, chromedp.ByQuery),
		chromedp.Click(form.SubmitSelector, chromedp.ByQuery),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to sign in at %s: %w", form.URL, err)
	}
	return nil
}
