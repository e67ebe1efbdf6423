package core

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) Value {
	t.Helper()
	v, err := ParseJSON([]byte(raw))
	require.NoError(t, err)
	return v
}

func TestValue_Truthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null, false},
		{"zero", Int(0), false},
		{"nonzero", Int(7), true},
		{"negative", Int(-1), true},
		{"empty string", Str(""), false},
		{"string", Str("x"), true},
		{"json object", JSON(map[string]any{}), true},
		{"json array", JSON([]any{}), true},
		{"json false", JSON(false), true},
		{"json null", JSON(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Truthy())
		})
	}
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "hello", Str("hello").Text())
	assert.Equal(t, "42", Int(42).Text())
	assert.Equal(t, "-3", Int(-3).Text())
	assert.Equal(t, "", Null.Text())
	assert.Equal(t, "", mustParse(t, `{"a": 1}`).Text(), "structured values are not directly printable")
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		l, r Value
		want bool
	}{
		{"null null", Null, Null, true},
		{"null int", Null, Int(0), false},
		{"int int same", Int(3), Int(3), true},
		{"int int diff", Int(3), Int(4), false},
		{"string string same", Str("a"), Str("a"), true},
		{"string string diff", Str("a"), Str("b"), false},
		{"int string", Int(1), Str("1"), false},
		{"json json same", mustParse(t, `{"a": [1, 2]}`), mustParse(t, `{"a": [1, 2]}`), true},
		{"json json diff", mustParse(t, `{"a": [1, 2]}`), mustParse(t, `{"a": [1, 3]}`), false},
		{"json string", mustParse(t, `"a"`), Str("a"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.l.Equal(tt.r))
			assert.Equal(t, tt.want, tt.r.Equal(tt.l), "equality must be symmetric")
		})
	}
}

func TestValue_Unwrap(t *testing.T) {
	assert.Equal(t, Int(5), mustParse(t, `5`).Unwrap())
	assert.Equal(t, Str("s"), mustParse(t, `"s"`).Unwrap())
	assert.Equal(t, KindJSON, mustParse(t, `1.5`).Unwrap().Kind(), "non-integral numbers stay opaque")
	assert.Equal(t, KindJSON, mustParse(t, `[1]`).Unwrap().Kind())
	assert.Equal(t, KindJSON, mustParse(t, `true`).Unwrap().Kind())
	assert.Equal(t, Int(3), Int(3).Unwrap(), "non-json values pass through")
}

func TestValue_ObjectArray(t *testing.T) {
	obj, ok := mustParse(t, `{"a": 1}`).Object()
	require.True(t, ok)
	assert.Contains(t, obj, "a")

	_, ok = mustParse(t, `[1]`).Object()
	assert.False(t, ok)

	arr, ok := mustParse(t, `[1, 2]`).Array()
	require.True(t, ok)
	assert.Len(t, arr, 2)

	_, ok = Str("x").Array()
	assert.False(t, ok)
}

func TestMemberNames_Sorted(t *testing.T) {
	obj, ok := mustParse(t, `{"b": 1, "a": 2, "c": 3}`).Object()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, MemberNames(obj))
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"int", 7, Int(7)},
		{"int64", int64(-9), Int(-9)},
		{"uint32", uint32(8), Int(8)},
		{"string", "s", Str("s")},
		{"nil", nil, Null},
		{"value passthrough", Int(2), Int(2)},
		{"time", time.Date(2025, 1, 25, 13, 45, 0, 0, time.UTC), Str("2025-01-25 13:45:00")},
		{"number", json.Number("12"), Int(12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := From(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrom_JSONInputs(t *testing.T) {
	v, err := From([]byte(`{"ids": [1, 2]}`))
	require.NoError(t, err)
	_, ok := v.Object()
	assert.True(t, ok)

	v, err = From(json.RawMessage(`[1, 2, 3]`))
	require.NoError(t, err)
	arr, ok := v.Array()
	require.True(t, ok)
	assert.Len(t, arr, 3)

	// Trees decoded elsewhere normalize so numbers become json.Number.
	v, err = From(map[string]any{"n": float64(3)})
	require.NoError(t, err)
	obj, ok := v.Object()
	require.True(t, ok)
	assert.Equal(t, json.Number("3"), obj["n"])
}

func TestFrom_Unsupported(t *testing.T) {
	_, err := From(3.14)
	assert.Error(t, err)

	_, err = From(true)
	assert.Error(t, err)

	_, err = From(struct{}{})
	assert.Error(t, err)
}

func TestNewParams(t *testing.T) {
	p, err := NewParams(map[string]any{
		"id":   1,
		"name": "bob",
		"gone": nil,
	})
	require.NoError(t, err)

	assert.Equal(t, Int(1), p.Get("id"))
	assert.Equal(t, Str("bob"), p.Get("name"))
	assert.False(t, p.Has("gone"), "nil entries are omitted, not stored as Null")
	assert.Equal(t, Null, p.Get("gone"))

	_, err = NewParams(map[string]any{"bad": 1.5})
	assert.Error(t, err)
}

func TestParams_SetSkipsNull(t *testing.T) {
	p := Params{}
	p.Set("a", Int(1))
	p.Set("b", Null)

	assert.True(t, p.Has("a"))
	assert.False(t, p.Has("b"))
}

func TestParams_Clone(t *testing.T) {
	p := Params{"a": Int(1)}
	q := p.Clone()
	q.Set("a", Int(2))
	q.Set("b", Str("x"))

	assert.Equal(t, Int(1), p.Get("a"), "clone writes must not leak into the original")
	assert.False(t, p.Has("b"))

	var empty Params
	assert.NotNil(t, empty.Clone(), "cloning a nil bag yields a writable bag")
}
