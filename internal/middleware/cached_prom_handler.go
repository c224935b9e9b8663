package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// CachedPromHandler serves a Prometheus text exposition that is regathered
// every ttl instead of on every scrape.
//
// Purpose:
//   - The monitor exposes a handful of gauges and counters, but the default
//     gatherer also carries the Go runtime and process collectors.
//   - Reading /proc for the process collector on every scrape competes with
//     Chrome for CPU on the small hosts the monitor runs on.
//   - Serving one precomputed exposition keeps scrape cost flat no matter
//     how many scrapers poll it.
//
// Trade-off:
//   - Values can be up to ttl old. The distance and tier gauges only change
//     once per page lifetime, so a ttl below the reload delay loses nothing.
type CachedPromHandler struct {
	mu    sync.RWMutex  // Guards cache
	cache []byte        // Last successful exposition
	ttl   time.Duration // Refresh interval
	h     http.Handler  // promhttp handler doing the actual gather
}

// NewCachedPromHandler creates a CachedPromHandler.
//
// Parameters:
//   - ctx: stops the background refresh when canceled.
//   - gatherer: usually prometheus.DefaultGatherer, where promauto registers
//     the monitor metrics.
//   - ttl: refresh interval, no longer than the scrape interval.
//
// The exposition is gathered once before returning so the first scrape is
// already served from the cache.
func NewCachedPromHandler(ctx context.Context, gatherer prometheus.Gatherer, ttl time.Duration) *CachedPromHandler {
	c := &CachedPromHandler{
		ttl: ttl,
		h:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}

	c.refresh()
	go c.refreshLoop(ctx)
	return c
}

func (c *CachedPromHandler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh()
		}
	}
}

func (c *CachedPromHandler) refresh() {
	rec := &responseRecorder{header: http.Header{}}
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	c.h.ServeHTTP(rec, req)
	if rec.status != 0 && rec.status != http.StatusOK {
		return
	}

	c.mu.Lock()
	c.cache = rec.buf.Bytes()
	c.mu.Unlock()
}

// ServeHTTP writes the cached exposition, falling back to a live gather
// when nothing has been cached yet.
func (c *CachedPromHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	cached := c.cache
	c.mu.RUnlock()

	if len(cached) == 0 {
		c.h.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = w.Write(cached)
}

// responseRecorder captures promhttp output into memory.
type responseRecorder struct {
	buf    bytes.Buffer
	header http.Header
	status int
}

func (rr *responseRecorder) Write(b []byte) (int, error) { return rr.buf.Write(b) }
func (rr *responseRecorder) Header() http.Header         { return rr.header }
func (rr *responseRecorder) WriteHeader(statusCode int)  { rr.status = statusCode }
