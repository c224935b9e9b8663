package models

// Position is a single geographic point as published by the tracking page.
//
// The page renders positions as JSON with capitalised field names
// ("Latitude", "Longitude"). Other fields (heading, speed, projected X/Y)
// are ignored by the decoders in the position package.
type Position struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

// NewPosition returns a Position for the given latitude and longitude in degrees.
func NewPosition(lat, lon float64) Position {
	return Position{Latitude: lat, Longitude: lon}
}
