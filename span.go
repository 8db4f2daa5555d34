package togi

import (
	"encoding/json"
	"errors"
	"time"
)

// Span is a closed interval of wall-clock time, expressed in seconds since
// the Unix epoch. End at or after Start is expected but not enforced.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewSpan converts a start and end time into a span of epoch seconds.
func NewSpan(start, end time.Time) Span {
	return Span{Start: epochSeconds(start), End: epochSeconds(end)}
}

// Duration returns End minus Start. Negative when End precedes Start.
func (s Span) Duration() time.Duration {
	return time.Duration((s.End - s.Start) * float64(time.Second))
}

// UnmarshalJSON requires both bounds to be present.
func (s *Span) UnmarshalJSON(data []byte) error {
	var w struct {
		Start *float64 `json:"start"`
		End   *float64 `json:"end"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Start == nil {
		return errors.New(`span: "start" is required`)
	}
	if w.End == nil {
		return errors.New(`span: "end" is required`)
	}
	*s = Span{Start: *w.Start, End: *w.End}
	return nil
}

// SpanDef declares a named span slot in a study. Evaluations report their
// measured spans positionally: EvalRecord.Spans[i] fills the slot declared
// by StudyRecord.Spans[i].
type SpanDef struct {
	Name string `json:"name"`
}

// UnmarshalJSON requires the name to be present.
func (d *SpanDef) UnmarshalJSON(data []byte) error {
	var w struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Name == nil {
		return errors.New(`span declaration: "name" is required`)
	}
	d.Name = *w.Name
	return nil
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
