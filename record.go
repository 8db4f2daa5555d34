package togi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StudyRecord declares a study: its identity, free-form attributes, and the
// ordered span, parameter, and value declarations that evaluations report
// against. A study is written once at the head of a log; evaluations refer
// back to it by ID.
type StudyRecord struct {
	ID     string
	Attrs  map[string]string
	Spans  []SpanDef
	Params []ParamDef
	Values []ValueDef
}

// RecordType returns RecordTypeStudy.
func (*StudyRecord) RecordType() RecordType { return RecordTypeStudy }

// studyWire is the tagged wire object for a study. Pointer and slice
// fields let decoding distinguish absent fields from zero values.
type studyWire struct {
	Type   *RecordType       `json:"type"`
	ID     *string           `json:"id"`
	Attrs  map[string]string `json:"attrs"`
	Spans  []SpanDef         `json:"spans"`
	Params []ParamDef        `json:"params"`
	Values []ValueDef        `json:"values"`
}

func (s StudyRecord) MarshalJSON() ([]byte, error) {
	t := RecordTypeStudy
	w := studyWire{
		Type:   &t,
		ID:     &s.ID,
		Attrs:  s.Attrs,
		Spans:  s.Spans,
		Params: s.Params,
		Values: s.Values,
	}
	if w.Attrs == nil {
		w.Attrs = map[string]string{}
	}
	if w.Spans == nil {
		w.Spans = []SpanDef{}
	}
	if w.Params == nil {
		w.Params = []ParamDef{}
	}
	if w.Values == nil {
		w.Values = []ValueDef{}
	}
	return json.Marshal(w)
}

func (s *StudyRecord) UnmarshalJSON(data []byte) error {
	var w studyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == nil {
		return errors.New(`study record: "type" is required`)
	}
	if *w.Type != RecordTypeStudy {
		return fmt.Errorf("record type %q is not %q", *w.Type, RecordTypeStudy)
	}
	if w.ID == nil {
		return errors.New(`study record: "id" is required`)
	}
	if w.Spans == nil {
		return errors.New(`study record: "spans" is required`)
	}
	if w.Params == nil {
		return errors.New(`study record: "params" is required`)
	}
	if w.Values == nil {
		return errors.New(`study record: "values" is required`)
	}
	attrs := w.Attrs
	if attrs == nil {
		attrs = map[string]string{}
	}
	*s = StudyRecord{
		ID:     *w.ID,
		Attrs:  attrs,
		Spans:  w.Spans,
		Params: w.Params,
		Values: w.Values,
	}
	return nil
}

// EvalState is the lifecycle state an evaluation reports.
type EvalState string

const (
	EvalStateComplete   EvalState = "COMPLETE"
	EvalStateInterim    EvalState = "INTERIM"
	EvalStateFailed     EvalState = "FAILED"
	EvalStateInfeasible EvalState = "INFEASIBLE"
)

// UnmarshalJSON rejects states outside the four known values.
func (s *EvalState) UnmarshalJSON(data []byte) error {
	v, err := parseEnum(data, "eval state", EvalStateComplete, EvalStateInterim, EvalStateFailed, EvalStateInfeasible)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// IsComplete reports whether the evaluation finished normally.
func (s EvalState) IsComplete() bool { return s == EvalStateComplete }

// IsInterim reports whether the evaluation is a mid-trial progress report.
func (s EvalState) IsInterim() bool { return s == EvalStateInterim }

// IsFailed reports whether the evaluation failed.
func (s EvalState) IsFailed() bool { return s == EvalStateFailed }

// IsInfeasible reports whether the parameters were rejected as infeasible.
func (s EvalState) IsInfeasible() bool { return s == EvalStateInfeasible }

// IsTerminal reports whether the state ends the trial. Every state except
// INTERIM is terminal; a terminal trial must not report again with a
// different state.
func (s EvalState) IsTerminal() bool { return s != EvalStateInterim }

// EvalRecord reports one evaluation of a trial. Spans, Params, and Values
// align positionally with the declarations of the study named by Study.
// NaN in Params or Values means "not reported".
type EvalRecord struct {
	Study  string
	Trial  uint32
	State  EvalState
	Spans  []Span
	Params []float64
	Values []float64
}

// RecordType returns RecordTypeEval.
func (*EvalRecord) RecordType() RecordType { return RecordTypeEval }

type evalWire struct {
	Type   *RecordType    `json:"type"`
	Study  *string        `json:"study"`
	Trial  *uint32        `json:"trial"`
	State  *EvalState     `json:"state"`
	Spans  []Span         `json:"spans"`
	Params nullableFloats `json:"params"`
	Values nullableFloats `json:"values"`
}

func (e EvalRecord) MarshalJSON() ([]byte, error) {
	t := RecordTypeEval
	w := evalWire{
		Type:   &t,
		Study:  &e.Study,
		Trial:  &e.Trial,
		State:  &e.State,
		Spans:  e.Spans,
		Params: nullableFloats(e.Params),
		Values: nullableFloats(e.Values),
	}
	if w.Spans == nil {
		w.Spans = []Span{}
	}
	return json.Marshal(w)
}

func (e *EvalRecord) UnmarshalJSON(data []byte) error {
	var w evalWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == nil {
		return errors.New(`eval record: "type" is required`)
	}
	if *w.Type != RecordTypeEval {
		return fmt.Errorf("record type %q is not %q", *w.Type, RecordTypeEval)
	}
	if w.Study == nil {
		return errors.New(`eval record: "study" is required`)
	}
	if w.Trial == nil {
		return errors.New(`eval record: "trial" is required`)
	}
	if w.State == nil {
		return errors.New(`eval record: "state" is required`)
	}
	if w.Spans == nil {
		return errors.New(`eval record: "spans" is required`)
	}
	if w.Params == nil {
		return errors.New(`eval record: "params" is required`)
	}
	if w.Values == nil {
		return errors.New(`eval record: "values" is required`)
	}
	*e = EvalRecord{
		Study:  *w.Study,
		Trial:  *w.Trial,
		State:  *w.State,
		Spans:  w.Spans,
		Params: []float64(w.Params),
		Values: []float64(w.Values),
	}
	return nil
}
