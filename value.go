package togi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Direction states whether smaller or larger observed values are better.
type Direction string

const (
	DirectionMinimize Direction = "MINIMIZE"
	DirectionMaximize Direction = "MAXIMIZE"
)

// UnmarshalJSON rejects directions other than MINIMIZE and MAXIMIZE.
func (d *Direction) UnmarshalJSON(data []byte) error {
	v, err := parseEnum(data, "direction", DirectionMinimize, DirectionMaximize)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Better returns whichever of x and y is preferable under the direction.
// A NaN operand is never preferred; the result is NaN only when both
// operands are NaN.
func (d Direction) Better(x, y float64) float64 {
	if math.IsNaN(x) {
		return y
	}
	if math.IsNaN(y) {
		return x
	}
	if d == DirectionMaximize {
		return math.Max(x, y)
	}
	return math.Min(x, y)
}

// IsMinimize reports whether the direction is MINIMIZE.
func (d Direction) IsMinimize() bool { return d == DirectionMinimize }

// IsMaximize reports whether the direction is MAXIMIZE.
func (d Direction) IsMaximize() bool { return d == DirectionMaximize }

// ValueRange bounds the values an objective is expected to take. The
// default range is open on both ends: Min is negative infinity and Max is
// positive infinity.
type ValueRange struct {
	Min float64
	Max float64
}

// Unbounded returns the default value range, open on both ends.
func Unbounded() ValueRange {
	return ValueRange{Min: math.Inf(-1), Max: math.Inf(1)}
}

// IsUnbounded reports whether both ends of the range are open.
func (r ValueRange) IsUnbounded() bool {
	return math.IsInf(r.Min, -1) && math.IsInf(r.Max, 1)
}

// valueRangeWire carries only the finite bounds. JSON numbers cannot
// represent infinities, so an open bound travels as an absent key and
// decoding restores the open-ended default.
type valueRangeWire struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r ValueRange) MarshalJSON() ([]byte, error) {
	var w valueRangeWire
	if !math.IsInf(r.Min, 0) && !math.IsNaN(r.Min) {
		w.Min = &r.Min
	}
	if !math.IsInf(r.Max, 0) && !math.IsNaN(r.Max) {
		w.Max = &r.Max
	}
	return json.Marshal(w)
}

// UnmarshalJSON fills absent bounds with the open-ended defaults.
func (r *ValueRange) UnmarshalJSON(data []byte) error {
	var w valueRangeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Unbounded()
	if w.Min != nil {
		r.Min = *w.Min
	}
	if w.Max != nil {
		r.Max = *w.Max
	}
	return nil
}

// ValueDef declares one objective of a study: its name, the range its
// values are expected to fall in, and which direction is better. The range
// key is omitted entirely from the wire object when fully unbounded.
//
// Note that the zero ValueRange bounds values to [0, 0]; use NewValueDef
// or Unbounded for an open-ended range.
type ValueDef struct {
	Name      string
	Range     ValueRange
	Direction Direction
}

// NewValueDef returns a value declaration with an unbounded range.
func NewValueDef(name string, d Direction) ValueDef {
	return ValueDef{Name: name, Range: Unbounded(), Direction: d}
}

type valueWire struct {
	Name      *string     `json:"name"`
	Range     *ValueRange `json:"range,omitempty"`
	Direction *Direction  `json:"direction"`
}

func (v ValueDef) MarshalJSON() ([]byte, error) {
	w := valueWire{Name: &v.Name, Direction: &v.Direction}
	if !v.Range.IsUnbounded() {
		w.Range = &v.Range
	}
	return json.Marshal(w)
}

func (v *ValueDef) UnmarshalJSON(data []byte) error {
	var w valueWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Name == nil {
		return errors.New(`value: "name" is required`)
	}
	if w.Direction == nil {
		return fmt.Errorf(`value %q: "direction" is required`, *w.Name)
	}
	r := Unbounded()
	if w.Range != nil {
		r = *w.Range
	}
	*v = ValueDef{Name: *w.Name, Range: r, Direction: *w.Direction}
	return nil
}
