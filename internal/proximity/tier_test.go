package proximity

import (
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	const close, closer = 500.0, 200.0

	tests := []struct {
		name     string
		distance float64
		want     Tier
	}{
		{"Well beyond close", 5000, Far},
		{"Exactly at close threshold", close, Far},
		{"Just inside close", math.Nextafter(close, 0), Close},
		{"Between thresholds", 350, Close},
		{"Exactly at closer threshold", closer, Close},
		{"Just inside closer", math.Nextafter(closer, 0), Closer},
		{"At the stop", 0, Closer},
		{"NaN never flashes", math.NaN(), Far},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.distance, close, closer); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.distance, got, tt.want)
			}
		})
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{0, "0 meters"},
		{999, "999 meters"},
		{999.9, "999 meters"},
		{1000, "1.0 kilometers"},
		{1500, "1.5 kilometers"},
		{12345, "12.3 kilometers"},
	}

	for _, tt := range tests {
		if got := FormatDistance(tt.meters); got != tt.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", tt.meters, got, tt.want)
		}
	}

	if got := LabelText(1500); got != "Distance: 1.5 kilometers" {
		t.Errorf("LabelText(1500) = %q", got)
	}
}
