package sanejson

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Value {
	obj := NewObject()
	obj.ObjectSet("a", NewInt64(1))
	arr := NewArray()
	arr.ArrayAdd(NewBool(true))
	arr.ArrayAdd(NewNull())
	obj.ObjectSet("b", arr)
	return obj
}

func TestEncodeFlags(t *testing.T) {
	v := sampleTree()
	defer v.Release()

	tests := []struct {
		name   string
		flags  Flag
		result string
	}{
		{name: "plain", flags: 0, result: `{"a":1,"b":[true,null]}`},
		{name: "spaced", flags: Spaced, result: `{ "a": 1, "b": [ true, null ] }`},
		{name: "pretty", flags: Pretty, result: "{\n  \"a\":1,\n  \"b\":[\n    true,\n    null\n  ]\n}"},
		{name: "pretty tab", flags: Pretty | PrettyTab, result: "{\n\t\"a\":1,\n\t\"b\":[\n\t\ttrue,\n\t\tnull\n\t]\n}"},
	}

	for _, test := range tests {
		assert.Equal(t, test.result, v.EncodeString(test.flags), test.name)
	}
}

func TestEncodeEmptyContainers(t *testing.T) {
	obj := NewObject()
	defer obj.Release()
	arr := NewArray()
	defer arr.Release()

	assert.Equal(t, `{}`, obj.EncodeString(0))
	assert.Equal(t, `[]`, arr.EncodeString(0))
	assert.Equal(t, `{ }`, obj.EncodeString(Spaced))
	assert.Equal(t, `[ ]`, arr.EncodeString(Spaced))
	assert.Equal(t, "{\n}", obj.EncodeString(Pretty))
	assert.Equal(t, "[\n]", arr.EncodeString(Pretty))
}

func TestEncodeEscapes(t *testing.T) {
	tests := []struct {
		s      string
		result string
	}{
		{s: "plain", result: `"plain"`},
		{s: `a"b`, result: `"a\"b"`},
		{s: `a\b`, result: `"a\\b"`},
		{s: "a/b", result: `"a\/b"`},
		{s: "\b\f\n\r\t", result: `"\b\f\n\r\t"`},
		{s: "\x01\x1f", result: `"\u0001\u001f"`},
		// an embedded NUL escapes instead of truncating the string
		{s: " \x00 ", result: `" \u0000 "`},
		{s: "héllo 😀", result: `"héllo 😀"`},
	}

	for _, test := range tests {
		v := NewString(test.s)
		assert.Equal(t, test.result, v.EncodeString(0))
		v.Release()
	}
}

func TestEncodeDoubles(t *testing.T) {
	tests := []struct {
		val    *Value
		flags  Flag
		result string
	}{
		{val: NewDouble(1.5), result: "1.5"},
		{val: NewDouble(100), result: "100"},
		{val: NewDouble(1e21), result: "1e+21"},
		{val: NewDouble(math.NaN()), result: "NaN"},
		{val: NewDouble(math.Inf(1)), result: "Infinity"},
		{val: NewDouble(math.Inf(-1)), result: "-Infinity"},
		// preserved source text wins over re-formatting
		{val: NewDoubleSource(1.5, "1.50"), result: "1.50"},
		{val: NewDoubleSource(1.5, "1.50"), flags: NoZero, result: "1.5"},
		{val: NewDoubleSource(1, "1.00"), flags: NoZero, result: "1.0"},
		{val: NewDoubleSource(100, "100"), flags: NoZero, result: "100"},
		{val: NewDoubleSource(1e2, "1.00e2"), flags: NoZero, result: "1.00e2"},
	}

	for _, test := range tests {
		assert.Equal(t, test.result, test.val.EncodeString(test.flags))
		test.val.Release()
	}
}

func TestEncodeNumericFidelity(t *testing.T) {
	v, err := Parse(`[1.50, 0.1, 9223372036854775808, 2E-3]`)
	require.NoError(t, err)
	defer v.Release()

	assert.Equal(t, `[1.50,0.1,9223372036854775808,2E-3]`, v.EncodeString(0))
	assert.Equal(t, `[1.5,0.1,9223372036854775808,2E-3]`, v.EncodeString(NoZero))
}

func TestEncodeNil(t *testing.T) {
	var v *Value
	assert.Equal(t, "null", v.EncodeString(0))

	arr := NewArray()
	defer arr.Release()
	arr.ArrayPutIdx(1, NewInt64(7))
	assert.Equal(t, `[null,7]`, arr.EncodeString(0), "padding slots serialize as null")
}

type countingSink struct {
	bytes.Buffer
	writes int
}

func (s *countingSink) Write(p []byte) (int, error) {
	s.writes++
	return s.Buffer.Write(p)
}

func TestWriteTo(t *testing.T) {
	v := sampleTree()
	defer v.Release()

	var buf bytes.Buffer
	n, err := v.WriteTo(&buf, Spaced)
	require.NoError(t, err)
	assert.Equal(t, v.EncodeString(Spaced), buf.String())
	assert.Equal(t, int64(buf.Len()), n)

	var nilVal *Value
	buf.Reset()
	n, err = nilVal.WriteTo(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "null", buf.String())
	assert.Equal(t, int64(4), n)
}

func TestWriteToStreamsLargeDocs(t *testing.T) {
	arr := NewArray()
	defer arr.Release()
	for i := 0; i < 300; i++ {
		arr.ArrayAdd(NewString(strings.Repeat("x", 20)))
	}

	sink := &countingSink{}
	n, err := arr.WriteTo(sink, 0)
	require.NoError(t, err)
	assert.Equal(t, arr.EncodeString(0), sink.String())
	assert.Equal(t, int64(sink.Len()), n)
	assert.GreaterOrEqual(t, sink.writes, 2, "large output must flush in chunks")
}

func TestEncodeCustomSerializer(t *testing.T) {
	v := NewObject()
	defer v.Release()

	inner := NewDouble(0.1 + 0.2)
	inner.SetSerializer(func(v *Value, userdata any, flags Flag, depth int) []byte {
		return []byte("0.3")
	}, nil, nil)
	v.ObjectSet("sum", inner)

	assert.Equal(t, `{"sum":0.3}`, v.EncodeString(0))
}

func TestEncodeRoundTrip(t *testing.T) {
	docs := []string{
		`{"a":1,"b":[true,null,{"c":"d"}],"e":-0.25}`,
		`["\u0000","\/","line\nbreak","😀"]`,
		`{"nested":{"deep":{"deeper":[[[42]]]}}}`,
		`[1.50,1e300,-9223372036854775808]`,
	}

	for _, doc := range docs {
		v1, err := Parse(doc)
		require.NoError(t, err, doc)

		for _, flags := range []Flag{0, Spaced, Pretty, Pretty | PrettyTab} {
			v2, err := Parse(v1.EncodeString(flags))
			require.NoError(t, err, "re-parse of %s with flags %b", doc, flags)
			assert.Empty(t, cmp.Diff(v1, v2, cmp.Comparer(Equal)), "round trip of %s with flags %b", doc, flags)
			v2.Release()
		}
		v1.Release()
	}
}
