package position

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
	"proximity.onebusaway.org/internal/models"
)

// ErrNoStopsFound is returned when the stop list decodes to an empty array.
var ErrNoStopsFound = errors.New("no stops found")

// DecodeErrorKind classifies why a field value could not be decoded.
type DecodeErrorKind string

const (
	// KindSyntax means the value is not well-formed JSON.
	KindSyntax DecodeErrorKind = "syntax"
	// KindShape means the JSON is well-formed but is not an object (or array of objects).
	KindShape DecodeErrorKind = "shape"
	// KindMissingField means a required coordinate field is absent.
	KindMissingField DecodeErrorKind = "missing_field"
	// KindWrongType means a coordinate field is present but is not a number.
	KindWrongType DecodeErrorKind = "wrong_type"
)

// DecodeError is returned when a field value is present but does not match
// the expected coordinate shape.
type DecodeError struct {
	Kind DecodeErrorKind
	// Path locates the offending value inside the document, e.g. "1.Latitude".
	Path   string
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode position: %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("decode position: %s at %s: %s", e.Kind, e.Path, e.Detail)
}

// DecodePosition decodes a single JSON object carrying Latitude and Longitude.
// Field names are case-sensitive and any other field is ignored.
func DecodePosition(raw string) (models.Position, error) {
	if !gjson.Valid(raw) {
		return models.Position{}, &DecodeError{Kind: KindSyntax, Detail: "invalid JSON"}
	}
	return positionFromResult(gjson.Parse(raw), "")
}

// DecodePositions decodes a JSON array of position objects. An empty array is
// not an error here; callers decide whether they need at least one element.
func DecodePositions(raw string) ([]models.Position, error) {
	if !gjson.Valid(raw) {
		return nil, &DecodeError{Kind: KindSyntax, Detail: "invalid JSON"}
	}

	result := gjson.Parse(raw)
	if !result.IsArray() {
		return nil, &DecodeError{Kind: KindShape, Detail: fmt.Sprintf("expected array, got %s", describe(result))}
	}

	elements := result.Array()
	positions := make([]models.Position, 0, len(elements))
	for i, element := range elements {
		p, err := positionFromResult(element, fmt.Sprintf("%d", i))
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}

func positionFromResult(result gjson.Result, path string) (models.Position, error) {
	if !result.IsObject() {
		return models.Position{}, &DecodeError{Kind: KindShape, Path: path, Detail: fmt.Sprintf("expected object, got %s", describe(result))}
	}

	lat, err := numberField(result, path, "Latitude")
	if err != nil {
		return models.Position{}, err
	}
	lon, err := numberField(result, path, "Longitude")
	if err != nil {
		return models.Position{}, err
	}
	return models.NewPosition(lat, lon), nil
}

func numberField(obj gjson.Result, path, name string) (float64, error) {
	fieldPath := name
	if path != "" {
		fieldPath = path + "." + name
	}

	field := obj.Get(name)
	if !field.Exists() {
		return 0, &DecodeError{Kind: KindMissingField, Path: fieldPath, Detail: "field is required"}
	}
	if field.Type != gjson.Number {
		return 0, &DecodeError{Kind: KindWrongType, Path: fieldPath, Detail: fmt.Sprintf("expected number, got %s", describe(field))}
	}
	v := field.Float()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &DecodeError{Kind: KindWrongType, Path: fieldPath, Detail: fmt.Sprintf("number %s is out of range", field.Raw)}
	}
	return v, nil
}

func describe(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	}
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	}
	return "unknown"
}
