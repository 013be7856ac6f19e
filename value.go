package patmatch

import (
	"fmt"
	"sort"
	"strings"
)

// ValueKind classifies runtime values. Values mirror shapes: scalars inhabit
// primitive domains (stored as domain ordinals), the rest are composites.
type ValueKind uint8

const (
	ValScalar ValueKind = iota
	ValTuple
	ValRecord
	ValVariant
)

// Value is an immutable runtime value consumed by the Match Evaluator. The
// engine never constructs values itself outside of tests; the host runtime
// supplies them already conforming to a declared shape.
type Value struct {
	Kind    ValueKind
	Scalar  int64             // ValScalar: domain ordinal
	Elems   []*Value          // ValTuple
	Fields  map[string]*Value // ValRecord
	Tag     string            // ValVariant: runtime discriminant
	Payload *Value            // ValVariant: nil when the variant has no payload
}

// ScalarValue wraps a domain ordinal.
func ScalarValue(v int64) *Value { return &Value{Kind: ValScalar, Scalar: v} }

// BoolValue wraps a boolean as its ordinal (false=0, true=1).
func BoolValue(b bool) *Value {
	if b {
		return ScalarValue(1)
	}
	return ScalarValue(0)
}

// CharValue wraps a code point.
func CharValue(r rune) *Value { return ScalarValue(int64(r)) }

// TupleValue builds a tuple value.
func TupleValue(elems ...*Value) *Value { return &Value{Kind: ValTuple, Elems: elems} }

// RecordValue builds a record value.
func RecordValue(fields map[string]*Value) *Value { return &Value{Kind: ValRecord, Fields: fields} }

// VariantValue builds a sum value; payload may be nil.
func VariantValue(tag string, payload *Value) *Value {
	return &Value{Kind: ValVariant, Tag: tag, Payload: payload}
}

// String renders the value in source-like form. Record fields are sorted by
// name since runtime records carry no declaration order.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case ValScalar:
		return fmt.Sprintf("%d", v.Scalar)
	case ValTuple:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case ValRecord:
		names := make([]string, 0, len(v.Fields))
		for n := range v.Fields {
			names = append(names, n)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = n + ": " + v.Fields[n].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ValVariant:
		if v.Payload == nil {
			return v.Tag
		}
		return v.Tag + "(" + v.Payload.String() + ")"
	default:
		return "<invalid>"
	}
}
