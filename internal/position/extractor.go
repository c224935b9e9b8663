package position

import (
	"context"
	"fmt"
	"log/slog"

	"proximity.onebusaway.org/internal/geo"
	"proximity.onebusaway.org/internal/models"
	"proximity.onebusaway.org/internal/page"
)

// Fields locates the two hidden inputs the tracking page renders its data into.
type Fields struct {
	BusLocation   string
	StopLocations string
}

// Extractor reads the bus and stop positions from the host document.
// It never writes to the document.
type Extractor struct {
	Doc    page.Document
	Fields Fields
	Logger *slog.Logger
}

// NewExtractor creates an Extractor for the given document and fields.
func NewExtractor(doc page.Document, fields Fields, logger *slog.Logger) *Extractor {
	return &Extractor{
		Doc:    doc,
		Fields: fields,
		Logger: logger,
	}
}

// Extract returns the current bus position and the first stop position.
//
// Only the first stop is used; any further stops are accepted and ignored.
func (e *Extractor) Extract(ctx context.Context) (bus models.Position, stop models.Position, err error) {
	bus, err = e.BusPosition(ctx)
	if err != nil {
		return models.Position{}, models.Position{}, err
	}

	stops, err := e.StopPositions(ctx)
	if err != nil {
		return models.Position{}, models.Position{}, err
	}
	if len(stops) == 0 {
		return models.Position{}, models.Position{}, fmt.Errorf("%s: %w", e.Fields.StopLocations, ErrNoStopsFound)
	}
	if len(stops) > 1 {
		e.Logger.Debug("Ignoring additional stops", "stops", len(stops), "ignored", len(stops)-1)
	}
	stop = stops[0]

	e.warnIfInvalid("bus", bus)
	e.warnIfInvalid("stop", stop)

	return bus, stop, nil
}

// BusPosition reads and decodes the bus location field.
func (e *Extractor) BusPosition(ctx context.Context) (models.Position, error) {
	raw, err := e.readField(ctx, e.Fields.BusLocation)
	if err != nil {
		return models.Position{}, err
	}
	p, err := DecodePosition(raw)
	if err != nil {
		return models.Position{}, fmt.Errorf("%s: %w", e.Fields.BusLocation, err)
	}
	return p, nil
}

// StopPositions reads and decodes the stop locations field.
func (e *Extractor) StopPositions(ctx context.Context) ([]models.Position, error) {
	raw, err := e.readField(ctx, e.Fields.StopLocations)
	if err != nil {
		return nil, err
	}
	stops, err := DecodePositions(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Fields.StopLocations, err)
	}
	return stops, nil
}

func (e *Extractor) readField(ctx context.Context, selector string) (string, error) {
	el, err := e.Doc.Query(ctx, selector)
	if err != nil {
		return "", err
	}
	raw, err := el.Value(ctx)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", selector, err)
	}
	return raw, nil
}

// The feed is trusted to publish valid coordinates, so an invalid one is only
// logged.
func (e *Extractor) warnIfInvalid(kind string, p models.Position) {
	if !geo.IsValidPosition(p) {
		e.Logger.Warn("Position outside valid coordinate range", "kind", kind, "lat", p.Latitude, "lon", p.Longitude)
	}
}
