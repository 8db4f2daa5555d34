package togi

import (
	"encoding/json"
	"math"
)

// nullableFloats is the wire codec for the params and values sequences of
// an evaluation. JSON has no literal for NaN or the infinities, so every
// non-finite entry is encoded as null, and null decodes back to NaN.
type nullableFloats []float64

func (v nullableFloats) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(v))
	for i := range v {
		if f := v[i]; !math.IsNaN(f) && !math.IsInf(f, 0) {
			out[i] = &v[i]
		}
	}
	return json.Marshal(out)
}

func (v *nullableFloats) UnmarshalJSON(data []byte) error {
	// Null is a no-op so callers can tell an absent sequence from an
	// empty one.
	if string(data) == "null" {
		return nil
	}
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(nullableFloats, len(raw))
	for i, f := range raw {
		if f == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *f
		}
	}
	*v = out
	return nil
}
