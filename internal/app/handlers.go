package app

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus is the JSON body of /v1/healthcheck.
//
// The monitor is ready once a page lifetime has evaluated a distance.
// LastDistance, LastTier and LastEvaluated are omitted until then.
type HealthStatus struct {
	Status        string     `json:"status"`
	Environment   string     `json:"environment"`
	Version       string     `json:"version"`
	Lifetimes     int        `json:"lifetimes"`
	LastDistance  *float64   `json:"last_distance_meters,omitempty"`
	LastTier      string     `json:"last_tier,omitempty"`
	LastEvaluated *time.Time `json:"last_evaluated,omitempty"`
	Ready         bool       `json:"ready"`
}

// healthcheckHandler responds with HTTP 200 once the monitor is ready and
// with HTTP 503 before that.
func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	snap := app.Status.Snapshot()

	status := HealthStatus{
		Status:      "available",
		Environment: app.ConfigService.Config.Env,
		Version:     app.Version,
		Lifetimes:   snap.Lifetimes,
		Ready:       snap.Evaluated,
	}
	if snap.Evaluated {
		distance := snap.Distance
		at := snap.EvaluatedAt
		status.LastDistance = &distance
		status.LastTier = snap.Tier.String()
		status.LastEvaluated = &at
	}

	w.Header().Set("Content-Type", "application/json")
	if !status.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		app.Logger.Error("Failed to encode healthcheck response", "error", err)
	}
}
