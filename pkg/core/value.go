// Package core provides the runtime value domain shared by the lexer,
// parser, evaluator, and engine. A Value is one of four variants: Null,
// Integer, String, or Json. Json values hold opaque decoded JSON trees
// (map[string]any, []any, json.Number, string, bool, nil) and are only
// inspected through the accessors defined here.
package core

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindString
	KindJSON
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindInt:    "integer",
	KindString: "string",
	KindJSON:   "json",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a single runtime value of the template language.
// The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	s    string
	j    any
}

// Null denotes absence: a missing parameter or a failed member/index lookup.
var Null = Value{}

// Int returns an integer Value.
func Int(n int64) Value {
	return Value{kind: KindInt, i: n}
}

// Str returns a string Value.
func Str(s string) Value {
	return Value{kind: KindString, s: s}
}

// JSON wraps an already-decoded JSON tree as an opaque Value.
// Numbers inside the tree must be json.Number for equality to behave;
// use ParseJSON or Normalize for trees from other decoders.
func JSON(v any) Value {
	return Value{kind: KindJSON, j: v}
}

// ParseJSON decodes raw JSON into an opaque Json Value. Numbers are kept
// as json.Number so integer leaves survive without float rounding.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Null, fmt.Errorf("invalid json value: %w", err)
	}
	return JSON(v), nil
}

// Kind returns the variant of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int64 returns the integer payload. Valid only for KindInt.
func (v Value) Int64() int64 { return v.i }

// Text returns the string projection used when a value is appended to
// rendered output: strings verbatim, integers in decimal, Null and Json
// contribute nothing.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	default:
		return ""
	}
}

// Raw returns the decoded JSON tree. Valid only for KindJSON.
func (v Value) Raw() any { return v.j }

// Truthy reports the value's truth: Null, Integer(0), and String("") are
// falsy; everything else, including any Json, is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindInt:
		return v.i != 0
	case KindString:
		return v.s != ""
	default:
		return true
	}
}

// Equal compares two values. Same-variant values compare value-wise
// (integers numerically, strings byte-wise, Json structurally).
// Null equals only Null; differing non-null variants are unequal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindString:
		return v.s == o.s
	default:
		return reflect.DeepEqual(v.j, o.j)
	}
}

// Object returns the value as a JSON object, if it is one.
func (v Value) Object() (map[string]any, bool) {
	if v.kind != KindJSON {
		return nil, false
	}
	obj, ok := v.j.(map[string]any)
	return obj, ok
}

// Array returns the value as a JSON array, if it is one.
func (v Value) Array() ([]any, bool) {
	if v.kind != KindJSON {
		return nil, false
	}
	arr, ok := v.j.([]any)
	return arr, ok
}

// Unwrap converts a Json value holding a bare JSON integer or string into
// the corresponding Integer or String Value. Everything else is returned
// unchanged.
func (v Value) Unwrap() Value {
	if v.kind != KindJSON {
		return v
	}
	return FromJSON(v.j)
}

// FromJSON wraps a decoded JSON fragment as a Value, unwrapping primitive
// leaves: JSON strings become String, integral JSON numbers become Integer,
// everything else stays an opaque Json value.
func FromJSON(v any) Value {
	switch x := v.(type) {
	case string:
		return Str(x)
	case json.Number:
		if n, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return Int(n)
		}
	}
	return JSON(v)
}

// MemberNames returns the keys of a JSON object in sorted order. The
// iteration order of object-valued for loops is unspecified by the template
// language but deterministic for a given input; sorting is what makes it so.
func MemberNames(obj map[string]any) []string {
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// timeFormat is how time-typed parameters render into SQL text.
const timeFormat = "2006-01-02 15:04:05"

// From converts a caller-supplied Go value into a template Value.
// Integers map to Integer, strings to String, time.Time to its SQL text
// form, raw JSON bytes are decoded, and decoded map/slice trees are
// normalized into opaque Json values. nil yields Null.
func From(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return x, nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(int64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case string:
		return Str(x), nil
	case time.Time:
		return Str(x.Format(timeFormat)), nil
	case json.RawMessage:
		return ParseJSON(x)
	case []byte:
		return ParseJSON(x)
	case json.Number:
		return FromJSON(x), nil
	case map[string]any, []any:
		return Normalize(x)
	}
	return Null, fmt.Errorf("unsupported parameter type %T", v)
}

// Normalize re-decodes a JSON-shaped Go value so its numbers are
// json.Number throughout. Needed when a tree was produced by a decoder
// configured without UseNumber.
func Normalize(v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Null, fmt.Errorf("unsupported parameter value: %w", err)
	}
	return ParseJSON(data)
}

// Params is a parameter bag: names mapped to non-null values. Absence of a
// parameter is expressed by omission, never by storing Null.
type Params map[string]Value

// NewParams builds a parameter bag from Go values via From. Entries that
// convert to Null are omitted.
func NewParams(kv map[string]any) (Params, error) {
	p := make(Params, len(kv))
	for name, raw := range kv {
		v, err := From(raw)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}
		if !v.IsNull() {
			p[name] = v
		}
	}
	return p, nil
}

// Set stores a value under name unless it is Null.
func (p Params) Set(name string, v Value) {
	if !v.IsNull() {
		p[name] = v
	}
}

// Get looks up name, returning Null when absent.
func (p Params) Get(name string) Value {
	if v, ok := p[name]; ok {
		return v
	}
	return Null
}

// Has reports whether name is present in the bag.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Clone returns a shallow copy of the bag. Loop bodies render against a
// clone so the outer environment is never mutated.
func (p Params) Clone() Params {
	out := make(Params, len(p)+2)
	for name, v := range p {
		out[name] = v
	}
	return out
}
