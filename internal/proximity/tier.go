package proximity

import (
	"fmt"
	"math"
)

// Tier classifies a distance into an alert level.
type Tier int

const (
	// Far is any distance at or beyond the close threshold. No flashing.
	Far Tier = iota
	// Close is below the close threshold and at or beyond the closer threshold.
	Close
	// Closer is below the closer threshold.
	Closer
)

func (t Tier) String() string {
	switch t {
	case Far:
		return "far"
	case Close:
		return "close"
	case Closer:
		return "closer"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Classify returns the tier for distance given the close and closer
// thresholds in meters (closer < close). A threshold is an exclusive lower
// bound for the nearer tier: a distance exactly at the close threshold is
// Far, exactly at the closer threshold is Close.
func Classify(distance, close, closer float64) Tier {
	switch {
	case math.IsNaN(distance) || distance >= close:
		return Far
	case distance >= closer:
		return Close
	default:
		return Closer
	}
}

// FormatDistance renders a distance for the label: whole meters below one
// kilometer, kilometers with one decimal otherwise.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d meters", int(meters))
	}
	return fmt.Sprintf("%.1f kilometers", meters/1000)
}

// LabelText is the full text of the injected distance label.
func LabelText(meters float64) string {
	return "Distance: " + FormatDistance(meters)
}
