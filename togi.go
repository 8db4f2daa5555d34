// Package togi defines the wire schema for hyperparameter-optimization
// study logs: the study descriptor with its span, parameter, and value
// declarations, and the per-trial evaluation records that report against it.
//
// Records travel as single JSON objects carrying a "type" discriminator and
// are stored one per line in an append-only log; package recordio provides
// the line framing. The schema captures structure only. Cross-record rules
// such as name uniqueness, positional alignment, and state transitions are
// checked by package validate, never here.
package togi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RecordType discriminates the two record shapes on the wire.
type RecordType string

const (
	RecordTypeStudy RecordType = "study"
	RecordTypeEval  RecordType = "eval"
)

// UnmarshalJSON rejects discriminators other than "study" and "eval".
func (t *RecordType) UnmarshalJSON(data []byte) error {
	v, err := parseEnum(data, "record type", RecordTypeStudy, RecordTypeEval)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Record is the unit of exchange in a study log: either a *StudyRecord
// describing a study or an *EvalRecord reporting one trial evaluation.
type Record interface {
	// RecordType reports the wire discriminator of the record.
	RecordType() RecordType
}

// Encode serializes a record as one JSON object with the "type"
// discriminator first and a deterministic field order. The output contains
// no newlines, so it can be framed one record per line.
func Encode(r Record) ([]byte, error) {
	if r == nil {
		return nil, errors.New("cannot encode a nil record")
	}
	return json.Marshal(r)
}

// Decode parses a single JSON record. The object must carry a known "type"
// discriminator and every required field of that record shape; anything
// else fails with a *DecodeError. Fields the schema does not know are
// ignored.
func Decode(data []byte) (Record, error) {
	var head struct {
		Type RecordType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, &DecodeError{Err: err}
	}
	switch head.Type {
	case RecordTypeStudy:
		var s StudyRecord
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, &DecodeError{Err: err}
		}
		return &s, nil
	case RecordTypeEval:
		var e EvalRecord
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, &DecodeError{Err: err}
		}
		return &e, nil
	default:
		// RecordType.UnmarshalJSON rejects unknown and null values, so an
		// empty discriminator here means the field was absent.
		return nil, &DecodeError{Err: errors.New(`missing "type" field`)}
	}
}

// NewStudyID returns a random identifier suitable for StudyRecord.ID.
func NewStudyID() string {
	return uuid.NewString()
}

// parseEnum decodes a JSON string into an enum value, rejecting anything
// not in the allowed set.
func parseEnum[T ~string](data []byte, kind string, allowed ...T) (T, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("%s: %w", kind, err)
	}
	for _, a := range allowed {
		if T(s) == a {
			return T(s), nil
		}
	}
	return "", fmt.Errorf("unknown %s %q", kind, s)
}
