package togi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Scale states how a numerical range is meant to be explored.
type Scale string

const (
	ScaleLinear Scale = "LINEAR"
	ScaleLog    Scale = "LOG"
)

// UnmarshalJSON rejects scales other than LINEAR and LOG.
func (s *Scale) UnmarshalJSON(data []byte) error {
	v, err := parseEnum(data, "scale", ScaleLinear, ScaleLog)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// RangeKind discriminates the two shapes of a parameter range.
type RangeKind string

const (
	RangeNumerical   RangeKind = "numerical"
	RangeCategorical RangeKind = "categorical"
)

// UnmarshalJSON rejects kinds other than numerical and categorical.
func (k *RangeKind) UnmarshalJSON(data []byte) error {
	v, err := parseEnum(data, "range kind", RangeNumerical, RangeCategorical)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParamRange describes the set of values a parameter may take: either a
// numerical interval or a finite set of categorical choices. Construct one
// with Continuous, LogContinuous, Discrete, or Categorical; the accessors
// give a uniform numeric view over both shapes.
type ParamRange struct {
	kind    RangeKind
	min     float64
	max     float64
	step    *float64
	scale   Scale
	choices []string
}

// Continuous returns a numerical range over [min, max] on a linear scale.
func Continuous(min, max float64) ParamRange {
	return ParamRange{kind: RangeNumerical, min: min, max: max, scale: ScaleLinear}
}

// LogContinuous returns a numerical range over [min, max] explored on a
// logarithmic scale.
func LogContinuous(min, max float64) ParamRange {
	return ParamRange{kind: RangeNumerical, min: min, max: max, scale: ScaleLog}
}

// Discrete returns a numerical range over [min, max] that advances in step
// increments.
func Discrete(min, max, step float64) ParamRange {
	return ParamRange{kind: RangeNumerical, min: min, max: max, step: &step, scale: ScaleLinear}
}

// Categorical returns a range over a fixed set of choices.
func Categorical(choices ...string) ParamRange {
	if choices == nil {
		choices = []string{}
	}
	return ParamRange{kind: RangeCategorical, choices: choices}
}

// Kind reports which shape of range this is.
func (r ParamRange) Kind() RangeKind { return r.kind }

// Min returns the lower bound of the range. Categorical ranges report 0.
func (r ParamRange) Min() float64 {
	if r.kind == RangeCategorical {
		return 0
	}
	return r.min
}

// Max returns the upper bound of the range. Categorical ranges report the
// number of choices.
func (r ParamRange) Max() float64 {
	if r.kind == RangeCategorical {
		return float64(len(r.choices))
	}
	return r.max
}

// Scale reports how the range is explored. Categorical ranges are LINEAR.
func (r ParamRange) Scale() Scale {
	if r.kind == RangeNumerical {
		return r.scale
	}
	return ScaleLinear
}

// Step returns the increment of a discrete numerical range and whether one
// is set.
func (r ParamRange) Step() (float64, bool) {
	if r.step == nil {
		return 0, false
	}
	return *r.step, true
}

// Choices returns the choice list of a categorical range, nil otherwise.
func (r ParamRange) Choices() []string { return r.choices }

// ParamDef declares one tunable parameter of a study. On the wire the range
// payload is flattened into the same object as the name:
//
//	{"name":"lr","type":"numerical","min":0.00001,"max":1,"scale":"LOG"}
//	{"name":"opt","type":"categorical","choices":["adam","sgd"]}
//
// step is omitted when unset and scale is omitted when LINEAR.
type ParamDef struct {
	Name  string
	Range ParamRange
}

// ContinuousParam declares a linear numerical parameter.
func ContinuousParam(name string, min, max float64) ParamDef {
	return ParamDef{Name: name, Range: Continuous(min, max)}
}

// LogContinuousParam declares a log-scale numerical parameter.
func LogContinuousParam(name string, min, max float64) ParamDef {
	return ParamDef{Name: name, Range: LogContinuous(min, max)}
}

// DiscreteParam declares a stepped numerical parameter.
func DiscreteParam(name string, min, max, step float64) ParamDef {
	return ParamDef{Name: name, Range: Discrete(min, max, step)}
}

// CategoricalParam declares a categorical parameter.
func CategoricalParam(name string, choices ...string) ParamDef {
	return ParamDef{Name: name, Range: Categorical(choices...)}
}

// paramWire is the flattened wire object shared by both range shapes.
// Pointer fields let decoding distinguish absent from zero.
type paramWire struct {
	Name    *string    `json:"name"`
	Kind    *RangeKind `json:"type"`
	Min     *float64   `json:"min,omitempty"`
	Max     *float64   `json:"max,omitempty"`
	Step    *float64   `json:"step,omitempty"`
	Scale   *Scale     `json:"scale,omitempty"`
	Choices *[]string  `json:"choices,omitempty"`
}

func (p ParamDef) MarshalJSON() ([]byte, error) {
	kind := p.Range.kind
	w := paramWire{Name: &p.Name, Kind: &kind}
	switch kind {
	case RangeNumerical:
		w.Min = &p.Range.min
		w.Max = &p.Range.max
		w.Step = p.Range.step
		if p.Range.scale == ScaleLog {
			sc := ScaleLog
			w.Scale = &sc
		}
	case RangeCategorical:
		choices := p.Range.choices
		if choices == nil {
			choices = []string{}
		}
		w.Choices = &choices
	default:
		return nil, fmt.Errorf("param %q: range has no kind", p.Name)
	}
	return json.Marshal(w)
}

func (p *ParamDef) UnmarshalJSON(data []byte) error {
	var w paramWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Name == nil {
		return errors.New(`param: "name" is required`)
	}
	if w.Kind == nil {
		return fmt.Errorf(`param %q: "type" is required`, *w.Name)
	}
	switch *w.Kind {
	case RangeNumerical:
		if w.Min == nil || w.Max == nil {
			return fmt.Errorf(`param %q: a numerical range requires "min" and "max"`, *w.Name)
		}
		r := ParamRange{kind: RangeNumerical, min: *w.Min, max: *w.Max, step: w.Step, scale: ScaleLinear}
		if w.Scale != nil {
			r.scale = *w.Scale
		}
		*p = ParamDef{Name: *w.Name, Range: r}
	case RangeCategorical:
		if w.Choices == nil {
			return fmt.Errorf(`param %q: a categorical range requires "choices"`, *w.Name)
		}
		*p = ParamDef{Name: *w.Name, Range: ParamRange{kind: RangeCategorical, choices: *w.Choices}}
	}
	return nil
}
