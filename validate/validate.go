// Package validate checks study logs for domain inconsistencies the schema
// deliberately does not enforce: duplicate declaration names, inverted or
// non-finite bounds, sequences longer than their declarations, and illegal
// trial state transitions. Everything here is optional; the codec in
// package togi accepts any structurally well-formed record.
package validate

import (
	"fmt"
	"math"

	"github.com/ashita-ai/togi"
)

// Study checks a study record's declarations: a non-empty id, unique names
// per section, ordered finite numerical bounds, positive steps, and at
// least one choice per categorical range.
func Study(s *togi.StudyRecord) error {
	if s.ID == "" {
		return fmt.Errorf("study id is required")
	}
	seen := make(map[string]struct{}, len(s.Spans))
	for i, d := range s.Spans {
		if d.Name == "" {
			return fmt.Errorf("spans[%d]: name is required", i)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("spans[%d]: duplicate span name %q", i, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	seen = make(map[string]struct{}, len(s.Params))
	for i, p := range s.Params {
		if p.Name == "" {
			return fmt.Errorf("params[%d]: name is required", i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("params[%d]: duplicate param name %q", i, p.Name)
		}
		seen[p.Name] = struct{}{}
		if err := paramRange(p.Range); err != nil {
			return fmt.Errorf("params[%d] %q: %w", i, p.Name, err)
		}
	}
	seen = make(map[string]struct{}, len(s.Values))
	for i, v := range s.Values {
		if v.Name == "" {
			return fmt.Errorf("values[%d]: name is required", i)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("values[%d]: duplicate value name %q", i, v.Name)
		}
		seen[v.Name] = struct{}{}
		if err := valueDef(v); err != nil {
			return fmt.Errorf("values[%d] %q: %w", i, v.Name, err)
		}
	}
	return nil
}

func paramRange(r togi.ParamRange) error {
	switch r.Kind() {
	case togi.RangeNumerical:
		lo, hi := r.Min(), r.Max()
		if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsNaN(hi) || math.IsInf(hi, 0) {
			return fmt.Errorf("numerical bounds must be finite")
		}
		if lo > hi {
			return fmt.Errorf("min %v exceeds max %v", lo, hi)
		}
		if step, ok := r.Step(); ok && !(step > 0) {
			return fmt.Errorf("step must be positive, got %v", step)
		}
	case togi.RangeCategorical:
		choices := r.Choices()
		if len(choices) == 0 {
			return fmt.Errorf("categorical range requires at least one choice")
		}
		seen := make(map[string]struct{}, len(choices))
		for i, c := range choices {
			if _, dup := seen[c]; dup {
				return fmt.Errorf("choices[%d]: duplicate choice %q", i, c)
			}
			seen[c] = struct{}{}
		}
	default:
		return fmt.Errorf("range has no kind")
	}
	return nil
}

func valueDef(v togi.ValueDef) error {
	switch v.Direction {
	case togi.DirectionMinimize, togi.DirectionMaximize:
	default:
		return fmt.Errorf("unknown direction %q", string(v.Direction))
	}
	if math.IsNaN(v.Range.Min) || math.IsNaN(v.Range.Max) {
		return fmt.Errorf("range bounds must not be NaN")
	}
	if v.Range.Min > v.Range.Max {
		return fmt.Errorf("range min %v exceeds max %v", v.Range.Min, v.Range.Max)
	}
	return nil
}

// Eval checks an evaluation against the study it reports on. Sequences
// shorter than the study's declarations are fine (the tail is simply not
// reported yet); longer ones have no slot to land in and are rejected.
func Eval(e *togi.EvalRecord, s *togi.StudyRecord) error {
	if e.Study != s.ID {
		return fmt.Errorf("eval references study %q, not %q", e.Study, s.ID)
	}
	switch e.State {
	case togi.EvalStateComplete, togi.EvalStateInterim, togi.EvalStateFailed, togi.EvalStateInfeasible:
	default:
		return fmt.Errorf("unknown eval state %q", string(e.State))
	}
	if len(e.Spans) > len(s.Spans) {
		return fmt.Errorf("eval has %d spans, study declares %d", len(e.Spans), len(s.Spans))
	}
	if len(e.Params) > len(s.Params) {
		return fmt.Errorf("eval has %d params, study declares %d", len(e.Params), len(s.Params))
	}
	if len(e.Values) > len(s.Values) {
		return fmt.Errorf("eval has %d values, study declares %d", len(e.Values), len(s.Values))
	}
	for i, sp := range e.Spans {
		if math.IsNaN(sp.Start) || math.IsInf(sp.Start, 0) || math.IsNaN(sp.End) || math.IsInf(sp.End, 0) {
			return fmt.Errorf("spans[%d] %q: bounds must be finite", i, s.Spans[i].Name)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("spans[%d] %q: end %v precedes start %v", i, s.Spans[i].Name, sp.End, sp.Start)
		}
	}
	return nil
}

type trialKey struct {
	study string
	trial uint32
}

// Log checks cross-record rules over a whole log, fed one record at a time
// in log order: studies are declared once and before any eval that
// references them, and a terminal trial never reports again with a
// different state.
type Log struct {
	studies map[string]*togi.StudyRecord
	trials  map[trialKey]togi.EvalState
}

// NewLog returns an empty log checker.
func NewLog() *Log {
	return &Log{
		studies: make(map[string]*togi.StudyRecord),
		trials:  make(map[trialKey]togi.EvalState),
	}
}

// Observe checks rec against everything seen so far and records it.
func (l *Log) Observe(rec togi.Record) error {
	switch r := rec.(type) {
	case *togi.StudyRecord:
		if err := Study(r); err != nil {
			return err
		}
		if _, dup := l.studies[r.ID]; dup {
			return fmt.Errorf("study %q declared twice", r.ID)
		}
		l.studies[r.ID] = r
	case *togi.EvalRecord:
		s, ok := l.studies[r.Study]
		if !ok {
			return fmt.Errorf("eval references undeclared study %q", r.Study)
		}
		if err := Eval(r, s); err != nil {
			return err
		}
		k := trialKey{study: r.Study, trial: r.Trial}
		if prev, ok := l.trials[k]; ok && prev.IsTerminal() && prev != r.State {
			return fmt.Errorf("trial %d of study %q already ended %s, cannot report %s",
				r.Trial, r.Study, string(prev), string(r.State))
		}
		l.trials[k] = r.State
	default:
		return fmt.Errorf("unsupported record type %q", string(rec.RecordType()))
	}
	return nil
}
