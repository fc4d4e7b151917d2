// Package wire converts drained records into the ordered, typed field tuples
// handed to the statistics daemon.
//
// Key design constraints:
//   - Field order matches the atom schema: dimensions first, then measures
//   - Values are a sealed set of primitive types; arrays are repeated int32
//   - No floats; durations are rounded to buckets and sent as whole units
package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is a sealed interface over the primitive field types.
// Only Int32, Int64, Bool, String and Int32Array implement it.
type Value interface {
	wireValue()
	// Type returns the schema type name of the value.
	Type() string
	String() string
}

type Int32 int32

func (Int32) wireValue() {}
func (Int32) Type() string { return "int32" }
func (v Int32) String() string { return strconv.FormatInt(int64(v), 10) }

type Int64 int64

func (Int64) wireValue() {}
func (Int64) Type() string { return "int64" }
func (v Int64) String() string { return strconv.FormatInt(int64(v), 10) }

type Bool bool

func (Bool) wireValue() {}
func (Bool) Type() string { return "bool" }
func (v Bool) String() string { return strconv.FormatBool(bool(v)) }

type String string

func (String) wireValue() {}
func (String) Type() string { return "string" }
func (v String) String() string { return strconv.Quote(string(v)) }

// Int32Array is transmitted as a repeated int32 field.
type Int32Array []int32

func (Int32Array) wireValue() {}
func (Int32Array) Type() string { return "int32[]" }

func (v Int32Array) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatInt(int64(x), 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// MarshalJSON always emits an array, never null.
func (v Int32Array) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int32(v))
}

// Field is one named, typed slot of an event.
type Field struct {
	Name  string
	Value Value
}

// F is a shorthand for Field.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

type fieldJSON struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value Value  `json:"value"`
}

func (f Field) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return nil, fmt.Errorf("field %q: nil value", f.Name)
	}
	return json.Marshal(fieldJSON{Name: f.Name, Type: f.Value.Type(), Value: f.Value})
}

// UnmarshalJSON restores a field written by MarshalJSON, using the type tag
// to pick the concrete Value.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string          `json:"name"`
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	v, err := decodeValue(raw.Type, raw.Value)
	if err != nil {
		return fmt.Errorf("field %q: %w", raw.Name, err)
	}
	f.Name, f.Value = raw.Name, v
	return nil
}

func decodeValue(typ string, data json.RawMessage) (Value, error) {
	switch typ {
	case "int32":
		var n Int32
		err := json.Unmarshal(data, &n)
		return n, err
	case "int64":
		var n Int64
		err := json.Unmarshal(data, &n)
		return n, err
	case "bool":
		var b Bool
		err := json.Unmarshal(data, &b)
		return b, err
	case "string":
		var s String
		err := json.Unmarshal(data, &s)
		return s, err
	case "int32[]":
		var a []int32
		err := json.Unmarshal(data, &a)
		return Int32Array(a), err
	}
	return nil, fmt.Errorf("unknown type %q", typ)
}
