package epw

import (
	"encoding/json"
	"strconv"
)

// Reading is a measurement that may be absent, in the manner of
// sql.NullFloat64. The zero value is a missing reading.
type Reading struct {
	Value float64
	Valid bool
}

// Present wraps a valid measurement.
func Present(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// Ptr returns nil for a missing reading.
func (r Reading) Ptr() *float64 {
	if !r.Valid {
		return nil
	}
	v := r.Value
	return &v
}

func (r Reading) String() string {
	if !r.Valid {
		return "missing"
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// MarshalJSON encodes a missing reading as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Reading) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Reading{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Present(v)
	return nil
}
