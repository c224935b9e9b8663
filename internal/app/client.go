package app

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"proximity.onebusaway.org/internal/metrics"
	"proximity.onebusaway.org/internal/utils"
)

// latencyTrackingRoundTripper wraps another RoundTripper to record the
// latency of each outgoing request in metrics.OutgoingLatency.
//
// Purpose:
//   - Time the remote configuration fetches and approach webhooks, the only
//     HTTP calls the monitor makes outside the browser.
//   - Label each observation by URL, method and status. The status is
//     "error" when no response arrived.
//
// The URL label goes through utils.SafeURL first. Configuration URLs often
// carry credentials or tokens in user info or the query string, and those
// must never reach a metric label.
type latencyTrackingRoundTripper struct {
	// next performs the request.
	next http.RoundTripper
}

// RoundTrip implements http.RoundTripper. The observation is recorded whether
// or not the request succeeded.
func (rt *latencyTrackingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	duration := time.Since(start).Seconds()

	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	metrics.OutgoingLatency.WithLabelValues(
		utils.SafeURL(req.URL),
		req.Method,
		status,
	).Observe(duration)

	return resp, err
}

// NewPooledClient returns the instrumented HTTP client used for remote
// configuration fetches and approach notifications.
//
// Configuration rationale:
//
//   - MaxIdleConns: 10, MaxIdleConnsPerHost: 2
//     The monitor talks to at most two hosts, the config server and the
//     notification webhook, one request at a time.
//
//   - IdleConnTimeout: 90s
//     Refreshes happen about once a minute, so the idle connection is still
//     there for the next fetch.
//
//   - Dial and TLS handshake timeouts: 5s
//     Fail fast on an unreachable host. DoWithBackoff retries on top.
//
//   - Client timeout: 10s
//     Caps the whole request including reading the body.
func NewPooledClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{
		Transport: &latencyTrackingRoundTripper{next: transport},
		Timeout:   10 * time.Second,
	}
}
