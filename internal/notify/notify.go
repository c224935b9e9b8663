// Package notify tells the rider that the bus is approaching their stop.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Notification is a single "bus approaching" alert.
type Notification struct {
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	DistanceMeters float64   `json:"distance_meters"`
	Tier           string    `json:"tier"`
	LifetimeID     string    `json:"lifetime_id"`
	Time           time.Time `json:"time"`
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Webhook posts each notification as a JSON document to a URL. It suits
// push gateways such as ntfy, Gotify or a chat incoming webhook, which all
// accept a JSON POST.
type Webhook struct {
	Client *http.Client
	URL    string
}

// NewWebhook creates a Webhook that sends through client.
func NewWebhook(client *http.Client, url string) *Webhook {
	return &Webhook{Client: client, URL: url}
}

// Notify implements Notifier. Any non-2xx response is an error; there is no
// retry, the next approach produces a new notification.
func (w *Webhook) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification webhook returned status: %d", resp.StatusCode)
	}
	return nil
}
