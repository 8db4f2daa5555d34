package togi_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/togi"
)

func sampleStudy() togi.StudyRecord {
	return togi.StudyRecord{
		ID:    "study-7c9e",
		Attrs: map[string]string{"objective": "tune resnet", "owner": "ml-platform"},
		Spans: []togi.SpanDef{{Name: "train"}, {Name: "eval"}},
		Params: []togi.ParamDef{
			togi.LogContinuousParam("lr", 0.00001, 1.0),
			togi.DiscreteParam("layers", 1, 8, 1),
			togi.CategoricalParam("optimizer", "adam", "sgd", "rmsprop"),
		},
		Values: []togi.ValueDef{
			togi.NewValueDef("loss", togi.DirectionMinimize),
			{Name: "accuracy", Range: togi.ValueRange{Min: 0, Max: 1}, Direction: togi.DirectionMaximize},
		},
	}
}

func sampleEval() togi.EvalRecord {
	return togi.EvalRecord{
		Study:  "study-7c9e",
		Trial:  3,
		State:  togi.EvalStateComplete,
		Spans:  []togi.Span{{Start: 1700000000, End: 1700000120.5}, {Start: 1700000120.5, End: 1700000130}},
		Params: []float64{0.003, 4, 1},
		Values: []float64{0.21, 0.93},
	}
}

// requireSameFloats compares float sequences treating NaN at the same
// index as equal.
func requireSameFloats(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			require.True(t, math.IsNaN(got[i]), "index %d should be NaN", i)
			continue
		}
		require.Equal(t, want[i], got[i], "index %d", i)
	}
}

// ---- Round trips ---------------------------------------------------------

func TestStudyRecord_RoundTrip(t *testing.T) {
	want := sampleStudy()

	data, err := togi.Encode(&want)
	require.NoError(t, err)

	rec, err := togi.Decode(data)
	require.NoError(t, err)
	got, ok := rec.(*togi.StudyRecord)
	require.True(t, ok, "expected *StudyRecord, got %T", rec)
	require.Equal(t, want, *got)
}

func TestEvalRecord_RoundTrip(t *testing.T) {
	want := sampleEval()

	data, err := togi.Encode(&want)
	require.NoError(t, err)

	rec, err := togi.Decode(data)
	require.NoError(t, err)
	got, ok := rec.(*togi.EvalRecord)
	require.True(t, ok, "expected *EvalRecord, got %T", rec)
	require.Equal(t, want, *got)
}

func TestEvalRecord_RoundTripPreservesNaN(t *testing.T) {
	want := sampleEval()
	want.State = togi.EvalStateInterim
	want.Params = []float64{0.003, math.NaN(), 1}
	want.Values = []float64{math.NaN(), 0.5}

	data, err := togi.Encode(&want)
	require.NoError(t, err)

	rec, err := togi.Decode(data)
	require.NoError(t, err)
	got, ok := rec.(*togi.EvalRecord)
	require.True(t, ok)
	requireSameFloats(t, want.Params, got.Params)
	requireSameFloats(t, want.Values, got.Values)
}

func TestRecord_ReencodeIsByteIdentical(t *testing.T) {
	study := sampleStudy()
	eval := sampleEval()
	eval.Values = []float64{math.NaN(), 0.93}

	for _, rec := range []togi.Record{&study, &eval} {
		first, err := togi.Encode(rec)
		require.NoError(t, err)

		decoded, err := togi.Decode(first)
		require.NoError(t, err)

		second, err := togi.Encode(decoded)
		require.NoError(t, err)
		require.Equal(t, string(first), string(second))
	}
}

// ---- Wire shape ----------------------------------------------------------

func TestStudyRecord_WireShape(t *testing.T) {
	s := togi.StudyRecord{
		ID:     "s1",
		Spans:  []togi.SpanDef{{Name: "train"}},
		Params: []togi.ParamDef{togi.ContinuousParam("dropout", 0, 0.5)},
		Values: []togi.ValueDef{togi.NewValueDef("loss", togi.DirectionMinimize)},
	}

	data, err := togi.Encode(&s)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), `{"type":"study"`),
		"discriminator should come first, got %s", data)
	assert.JSONEq(t, `{
		"type": "study",
		"id": "s1",
		"attrs": {},
		"spans": [{"name": "train"}],
		"params": [{"name": "dropout", "type": "numerical", "min": 0, "max": 0.5}],
		"values": [{"name": "loss", "direction": "MINIMIZE"}]
	}`, string(data))
}

func TestEvalRecord_WireShape(t *testing.T) {
	e := togi.EvalRecord{
		Study:  "s1",
		Trial:  0,
		State:  togi.EvalStateFailed,
		Params: []float64{0.1},
		Values: []float64{math.NaN()},
	}

	data, err := togi.Encode(&e)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), `{"type":"eval"`),
		"discriminator should come first, got %s", data)
	assert.JSONEq(t, `{
		"type": "eval",
		"study": "s1",
		"trial": 0,
		"state": "FAILED",
		"spans": [],
		"params": [0.1],
		"values": [null]
	}`, string(data))
}

func TestEvalRecord_EncodesNonFiniteAsNull(t *testing.T) {
	e := sampleEval()
	e.Params = []float64{1.0, math.NaN(), 2.5}
	e.Values = []float64{math.Inf(1), math.Inf(-1)}

	data, err := togi.Encode(&e)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"params":[1,null,2.5]`)
	assert.Contains(t, string(data), `"values":[null,null]`)
}

func TestEvalRecord_DecodesNullAsNaN(t *testing.T) {
	data := []byte(`{"type":"eval","study":"s1","trial":1,"state":"INTERIM",` +
		`"spans":[],"params":[null,null],"values":[0.4]}`)

	rec, err := togi.Decode(data)
	require.NoError(t, err)
	got, ok := rec.(*togi.EvalRecord)
	require.True(t, ok)
	require.Len(t, got.Params, 2)
	assert.True(t, math.IsNaN(got.Params[0]))
	assert.True(t, math.IsNaN(got.Params[1]))
	assert.Equal(t, []float64{0.4}, got.Values)
}

func TestEncode_NormalizesNilCollections(t *testing.T) {
	data, err := togi.Encode(&togi.StudyRecord{ID: "bare"})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "study",
		"id": "bare",
		"attrs": {},
		"spans": [],
		"params": [],
		"values": []
	}`, string(data))
}

func TestEncode_RejectsNilRecord(t *testing.T) {
	_, err := togi.Encode(nil)
	require.Error(t, err)
}

// ---- Decode strictness ---------------------------------------------------

func TestDecode_RejectsUnknownType(t *testing.T) {
	_, err := togi.Decode([]byte(`{"type":"model","id":"x"}`))
	require.Error(t, err)
	assert.True(t, togi.IsDecodeError(err))
	assert.Contains(t, err.Error(), "unknown record type")
}

func TestDecode_RejectsMissingType(t *testing.T) {
	_, err := togi.Decode([]byte(`{"id":"x","spans":[],"params":[],"values":[]}`))
	require.Error(t, err)
	assert.True(t, togi.IsDecodeError(err))
	assert.Contains(t, err.Error(), `missing "type"`)
}

func TestDecode_RejectsMalformedJSON(t *testing.T) {
	_, err := togi.Decode([]byte(`{"type":"study"`))
	require.Error(t, err)
	assert.True(t, togi.IsDecodeError(err))
}

func TestDecode_RejectsMissingRequiredStudyFields(t *testing.T) {
	// No values section.
	_, err := togi.Decode([]byte(`{"type":"study","id":"x","spans":[],"params":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"values" is required`)

	// Null counts as missing.
	_, err = togi.Decode([]byte(`{"type":"study","id":null,"spans":[],"params":[],"values":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"id" is required`)
}

func TestDecode_RejectsMissingRequiredEvalFields(t *testing.T) {
	_, err := togi.Decode([]byte(`{"type":"eval","study":"s1","state":"COMPLETE",` +
		`"spans":[],"params":[],"values":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"trial" is required`)

	_, err = togi.Decode([]byte(`{"type":"eval","study":"s1","trial":0,"state":"COMPLETE",` +
		`"spans":[],"params":null,"values":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"params" is required`)
}

func TestDecode_RejectsWrongFieldTypes(t *testing.T) {
	// Negative trial numbers do not fit uint32.
	_, err := togi.Decode([]byte(`{"type":"eval","study":"s1","trial":-1,"state":"COMPLETE",` +
		`"spans":[],"params":[],"values":[]}`))
	require.Error(t, err)
	assert.True(t, togi.IsDecodeError(err))

	// Fractional trial numbers are not integers.
	_, err = togi.Decode([]byte(`{"type":"eval","study":"s1","trial":1.5,"state":"COMPLETE",` +
		`"spans":[],"params":[],"values":[]}`))
	require.Error(t, err)

	// A string is not a float sequence.
	_, err = togi.Decode([]byte(`{"type":"eval","study":"s1","trial":1,"state":"COMPLETE",` +
		`"spans":[],"params":"abc","values":[]}`))
	require.Error(t, err)
}

func TestDecode_RejectsMismatchedTag(t *testing.T) {
	var s togi.StudyRecord
	err := s.UnmarshalJSON([]byte(`{"type":"eval","study":"s1","trial":1,"state":"COMPLETE",` +
		`"spans":[],"params":[],"values":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"eval" is not "study"`)
}

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	rec, err := togi.Decode([]byte(`{"type":"study","id":"x","comment":"hand-edited",` +
		`"spans":[],"params":[],"values":[]}`))
	require.NoError(t, err)
	assert.Equal(t, togi.RecordTypeStudy, rec.RecordType())
}

func TestDecode_DefaultsAttrsToEmpty(t *testing.T) {
	rec, err := togi.Decode([]byte(`{"type":"study","id":"x","spans":[],"params":[],"values":[]}`))
	require.NoError(t, err)
	got, ok := rec.(*togi.StudyRecord)
	require.True(t, ok)
	require.NotNil(t, got.Attrs)
	assert.Empty(t, got.Attrs)
}

// ---- EvalState -----------------------------------------------------------

func TestEvalState_Predicates(t *testing.T) {
	cases := []struct {
		state    togi.EvalState
		terminal bool
	}{
		{togi.EvalStateComplete, true},
		{togi.EvalStateInterim, false},
		{togi.EvalStateFailed, true},
		{togi.EvalStateInfeasible, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.terminal, tc.state.IsTerminal(), "state %s", tc.state)
	}

	assert.True(t, togi.EvalStateComplete.IsComplete())
	assert.True(t, togi.EvalStateInterim.IsInterim())
	assert.True(t, togi.EvalStateFailed.IsFailed())
	assert.True(t, togi.EvalStateInfeasible.IsInfeasible())
	assert.False(t, togi.EvalStateComplete.IsInterim())
}

func TestEvalState_RejectsUnknown(t *testing.T) {
	_, err := togi.Decode([]byte(`{"type":"eval","study":"s1","trial":1,"state":"RUNNING",` +
		`"spans":[],"params":[],"values":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown eval state "RUNNING"`)
}

// ---- Record identity -----------------------------------------------------

func TestRecordType_OfBothShapes(t *testing.T) {
	study := sampleStudy()
	eval := sampleEval()
	assert.Equal(t, togi.RecordTypeStudy, study.RecordType())
	assert.Equal(t, togi.RecordTypeEval, eval.RecordType())
}

func TestNewStudyID_Unique(t *testing.T) {
	a := togi.NewStudyID()
	b := togi.NewStudyID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
