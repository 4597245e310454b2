package docstore

import (
	"fmt"
	"strings"
	"time"
)

// Kind es la etiqueta de tipo de un valor de campo.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindInteger
	KindTimestamp
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindTimestamp:
		return "timestamp"
	case KindArray:
		return "array"
	default:
		return "null"
	}
}

// Value es un valor de campo etiquetado (string/boolean/integer/timestamp/array/null).
// El zero value es null.
type Value struct {
	kind Kind
	s    string
	b    bool
	i    int64
	t    time.Time
	arr  []Value
}

func String(s string) Value   { return Value{kind: KindString, s: s} }
func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func Integer(i int64) Value   { return Value{kind: KindInteger, i: i} }
func Null() Value             { return Value{} }
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: append([]Value(nil), vs...)} }

func Timestamp(t time.Time) Value {
	return Value{kind: KindTimestamp, t: t.UTC()}
}

// TimestampPtr devuelve null si t es nil.
func TimestampPtr(t *time.Time) Value {
	if t == nil {
		return Null()
	}
	return Timestamp(*t)
}

func Strings(ss []string) Value {
	vs := make([]Value, 0, len(ss))
	for _, s := range ss {
		vs = append(vs, String(s))
	}
	return Array(vs...)
}

func Integers(is []int64) Value {
	vs := make([]Value, 0, len(is))
	for _, i := range is {
		vs = append(vs, Integer(i))
	}
	return Array(vs...)
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) Str() string     { return v.s }
func (v Value) Boolean() bool   { return v.b }
func (v Value) Int() int64      { return v.i }
func (v Value) Time() time.Time { return v.t }
func (v Value) Items() []Value  { return v.arr }

func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("String(%q)", v.s)
	case KindBool:
		return fmt.Sprintf("Bool(%t)", v.b)
	case KindInteger:
		return fmt.Sprintf("Integer(%d)", v.i)
	case KindTimestamp:
		return fmt.Sprintf("Timestamp(%s)", v.t.Format(time.RFC3339Nano))
	case KindArray:
		parts := make([]string, 0, len(v.arr))
		for _, it := range v.arr {
			parts = append(parts, it.GoString())
		}
		return "Array(" + strings.Join(parts, ", ") + ")"
	default:
		return "Null()"
	}
}

// Equal compara por tipo y contenido.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindInteger:
		return v.i == o.i
	case KindTimestamp:
		return v.t.Equal(o.t)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
