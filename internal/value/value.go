// Package value defines the canonical, order-preserving document value every
// format adapter produces.
package value

import (
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one key/value entry of an Object.
type Field struct {
	Key   string
	Value Value
}

// Value is a tagged union. Only the member matching Kind is meaningful.
// Values are treated as immutable once built.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Items  []Value
	Fields []Field
}

func NewNull() Value              { return Value{Kind: Null} }
func NewBool(b bool) Value        { return Value{Kind: Bool, Bool: b} }
func NewNumber(n float64) Value   { return Value{Kind: Number, Number: n} }
func NewString(s string) Value    { return Value{Kind: String, Str: s} }
func NewArray(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: Array, Items: items}
}

// NewObject builds an Object from fields, collapsing duplicate keys with
// last-write-wins semantics.
func NewObject(fields ...Field) Value {
	b := NewObjectBuilder(len(fields))
	for _, f := range fields {
		b.Set(f.Key, f.Value)
	}
	return b.Build()
}

// IsComposite reports whether v is an Array or an Object.
func (v Value) IsComposite() bool {
	return v.Kind == Array || v.Kind == Object
}

// Len returns the number of direct children of a composite, 0 otherwise.
func (v Value) Len() int {
	switch v.Kind {
	case Array:
		return len(v.Items)
	case Object:
		return len(v.Fields)
	default:
		return 0
	}
}

// Get returns the value stored under key in an Object.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != Object {
		return Value{}, false
	}
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Index returns the i-th element of an Array.
func (v Value) Index(i int) (Value, bool) {
	if v.Kind != Array || i < 0 || i >= len(v.Items) {
		return Value{}, false
	}
	return v.Items[i], true
}

// Text renders a primitive as plain text. Strings are returned unquoted.
// Composites render as an empty string.
func (v Value) Text() string {
	switch v.Kind {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.Bool)
	case Number:
		return FormatNumber(v.Number)
	case String:
		return v.Str
	default:
		return ""
	}
}

// FormatNumber renders integral values without exponent or fraction and
// everything else in the shortest round-tripping form.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "+Inf"
	case math.IsInf(n, -1):
		return "-Inf"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
}

// Interface converts v into plain Go values: nil, bool, float64, string,
// []any and map[string]any. Key order is lost.
func (v Value) Interface() any {
	switch v.Kind {
	case Bool:
		return v.Bool
	case Number:
		return v.Number
	case String:
		return v.Str
	case Array:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Key] = f.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// ObjectBuilder accumulates fields in insertion order. Setting a key twice
// keeps the first position and the last value.
type ObjectBuilder struct {
	fields []Field
	index  map[string]int
}

func NewObjectBuilder(capacity int) *ObjectBuilder {
	return &ObjectBuilder{
		fields: make([]Field, 0, capacity),
		index:  make(map[string]int, capacity),
	}
}

// Set stores val under key.
func (b *ObjectBuilder) Set(key string, val Value) {
	if i, ok := b.index[key]; ok {
		b.fields[i].Value = val
		return
	}
	b.index[key] = len(b.fields)
	b.fields = append(b.fields, Field{Key: key, Value: val})
}

// Lookup returns the value currently stored under key.
func (b *ObjectBuilder) Lookup(key string) (Value, bool) {
	i, ok := b.index[key]
	if !ok {
		return Value{}, false
	}
	return b.fields[i].Value, true
}

func (b *ObjectBuilder) Len() int { return len(b.fields) }

// Build returns the Object. The builder must not be reused afterwards.
func (b *ObjectBuilder) Build() Value {
	return Value{Kind: Object, Fields: b.fields}
}
