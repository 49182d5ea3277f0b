// Package features turns a prediction request body into the ordered feature
// vector the scaler and classifier were fitted with.
//
// Validation policy: all five fields are required, unknown fields are ignored,
// JSON numbers and numeric strings are accepted, everything else is rejected.
package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gayabelajar-api/internal/common"
)

// ErrNotObject is returned when the body is not a single JSON object.
var ErrNotObject = errors.New(common.ErrMsgNotJSONObject)

// FieldError reports a required field that is missing or not numeric.
type FieldError struct {
	Field   string
	Missing bool
}

func (e *FieldError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing required field: %s", e.Field)
	}
	return fmt.Sprintf("field %s must be numeric", e.Field)
}

// Vector holds one observation in common.FeatureOrder.
type Vector [common.NumFeatures]float64

// Slice returns a copy of the vector as a slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, len(v))
	copy(out, v[:])
	return out
}

// Map returns the vector keyed by feature name.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v))
	for i, name := range common.FeatureOrder {
		m[name] = v[i]
	}
	return m
}

// Decode parses a request body and extracts the feature vector.
func Decode(body []byte) (Vector, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Vector{}, ErrNotObject
	}
	// Reject trailing values such as `{} {}`.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Vector{}, ErrNotObject
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Vector{}, ErrNotObject
	}
	return FromMap(obj)
}

// FromMap extracts the five features from an already decoded JSON object.
func FromMap(obj map[string]any) (Vector, error) {
	var v Vector
	for i, name := range common.FeatureOrder {
		val, ok := obj[name]
		if !ok {
			return Vector{}, &FieldError{Field: name, Missing: true}
		}
		f, ok := toFloat(val)
		if !ok {
			return Vector{}, &FieldError{Field: name}
		}
		v[i] = f
	}
	return v, nil
}

func toFloat(val any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch t := val.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
