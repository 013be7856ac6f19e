package patmatch

import (
	"fmt"
	"sort"
	"strings"
)

// PatternKind discriminates the closed set of pattern forms. Keeping the set
// closed and enumerable is what makes exhaustiveness analysis over the
// pattern language itself tractable.
type PatternKind uint8

const (
	PatWildcard PatternKind = iota
	PatBinding
	PatLiteral
	PatRange
	PatOr
	PatTuple
	PatRecord
	PatVariant
)

func (k PatternKind) String() string {
	switch k {
	case PatWildcard:
		return "wildcard"
	case PatBinding:
		return "binding"
	case PatLiteral:
		return "literal"
	case PatRange:
		return "range"
	case PatOr:
		return "or"
	case PatTuple:
		return "tuple"
	case PatRecord:
		return "record"
	case PatVariant:
		return "variant"
	default:
		return "unknown"
	}
}

// NoRest marks a tuple pattern without a rest position.
const NoRest = -1

// FieldPattern pairs a record field name with its sub-pattern.
type FieldPattern struct {
	Name    string
	Pattern *Pattern
}

// Pattern is an immutable, kind-tagged pattern tree. Exactly the fields
// selected by Kind are meaningful. Construct patterns through the functions
// below; the fallible constructors perform the construction-time checks
// (empty ranges, inconsistent or-bindings) so the checker and evaluator can
// assume well-formed input.
type Pattern struct {
	Kind PatternKind

	// PatBinding
	Name string
	Sub  *Pattern // optional

	// PatLiteral
	Value int64 // domain ordinal

	// PatRange
	Lo, Hi    int64
	Inclusive bool

	// PatOr
	Alts []*Pattern

	// PatTuple
	Elems   []*Pattern
	RestPos int // NoRest when absent

	// PatRecord
	Fields  []FieldPattern
	HasRest bool

	// PatVariant
	Tag     string
	Payload *Pattern // optional
}

// Wildcard matches any value and binds nothing.
func Wildcard() *Pattern { return &Pattern{Kind: PatWildcard, RestPos: NoRest} }

// Bind binds name to the whole matched value in addition to whatever sub
// binds. sub may be nil, in which case the binding is irrefutable.
func Bind(name string, sub *Pattern) *Pattern {
	return &Pattern{Kind: PatBinding, Name: name, Sub: sub, RestPos: NoRest}
}

// Lit matches one primitive value, given as its domain ordinal.
func Lit(v int64) *Pattern { return &Pattern{Kind: PatLiteral, Value: v, RestPos: NoRest} }

// BoolLit matches a boolean literal.
func BoolLit(b bool) *Pattern {
	if b {
		return Lit(1)
	}
	return Lit(0)
}

// CharLit matches a character literal.
func CharLit(r rune) *Pattern { return Lit(int64(r)) }

// Range matches lo <= v <= hi when inclusive, else lo <= v < hi. An empty
// span is rejected here so ranges reaching the checker are always inhabited.
func Range(lo, hi int64, inclusive bool) (*Pattern, error) {
	if inclusive && lo > hi {
		return nil, &EmptyRangeError{Lo: lo, Hi: hi, Inclusive: true}
	}
	if !inclusive && lo >= hi {
		return nil, &EmptyRangeError{Lo: lo, Hi: hi, Inclusive: false}
	}
	return &Pattern{Kind: PatRange, Lo: lo, Hi: hi, Inclusive: inclusive, RestPos: NoRest}, nil
}

// MustRange is Range for statically known bounds; it panics on an empty span.
func MustRange(lo, hi int64, inclusive bool) *Pattern {
	p, err := Range(lo, hi, inclusive)
	if err != nil {
		panic(err)
	}
	return p
}

// Or tries alternatives left to right and matches on the first success.
// Every alternative must bind the identical name set.
func Or(alts ...*Pattern) (*Pattern, error) {
	if len(alts) == 0 {
		return nil, fmt.Errorf("or-pattern needs at least one alternative")
	}
	want := BoundNames(alts[0])
	for i, alt := range alts[1:] {
		got := BoundNames(alt)
		if !equalNames(want, got) {
			return nil, &InconsistentOrBindingsError{Want: want, Got: got, Alt: i + 1}
		}
	}
	return &Pattern{Kind: PatOr, Alts: alts, RestPos: NoRest}, nil
}

// TupleOf destructures a tuple, one sub-pattern per element.
func TupleOf(elems ...*Pattern) *Pattern {
	return &Pattern{Kind: PatTuple, Elems: elems, RestPos: NoRest}
}

// TupleRest destructures a tuple with a rest marker at restPos: elements
// before restPos match the tuple's prefix, elements from restPos on match
// its suffix, and the rest marker spans whatever remains in between.
func TupleRest(restPos int, elems ...*Pattern) *Pattern {
	return &Pattern{Kind: PatTuple, Elems: elems, RestPos: restPos}
}

// RecordOf destructures a record by field name. With hasRest false, every
// declared field must be named (checked by Validate).
func RecordOf(hasRest bool, fields ...FieldPattern) *Pattern {
	return &Pattern{Kind: PatRecord, Fields: fields, HasRest: hasRest, RestPos: NoRest}
}

// FieldPat builds one record field pattern.
func FieldPat(name string, p *Pattern) FieldPattern { return FieldPattern{Name: name, Pattern: p} }

// VariantOf matches one tagged alternative of a sum. payload may be nil for
// payload-free variants.
func VariantOf(tag string, payload *Pattern) *Pattern {
	return &Pattern{Kind: PatVariant, Tag: tag, Payload: payload, RestPos: NoRest}
}

// BoundNames returns the sorted set of names the pattern binds. For
// or-patterns the alternatives bind identical sets by construction, so the
// first alternative is representative.
func BoundNames(p *Pattern) []string {
	set := make(map[string]bool)
	collectNames(p, set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectNames(p *Pattern, set map[string]bool) {
	if p == nil {
		return
	}
	switch p.Kind {
	case PatBinding:
		set[p.Name] = true
		collectNames(p.Sub, set)
	case PatOr:
		if len(p.Alts) > 0 {
			collectNames(p.Alts[0], set)
		}
	case PatTuple:
		for _, e := range p.Elems {
			collectNames(e, set)
		}
	case PatRecord:
		for _, f := range p.Fields {
			collectNames(f.Pattern, set)
		}
	case PatVariant:
		collectNames(p.Payload, set)
	}
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the pattern in source-like form, for diagnostics.
func (p *Pattern) String() string {
	if p == nil {
		return "_"
	}
	switch p.Kind {
	case PatWildcard:
		return "_"
	case PatBinding:
		if p.Sub == nil {
			return p.Name
		}
		return p.Name + " @ " + p.Sub.String()
	case PatLiteral:
		return fmt.Sprintf("%d", p.Value)
	case PatRange:
		op := "..<"
		if p.Inclusive {
			op = "..="
		}
		return fmt.Sprintf("%d%s%d", p.Lo, op, p.Hi)
	case PatOr:
		parts := make([]string, len(p.Alts))
		for i, a := range p.Alts {
			parts[i] = a.String()
		}
		return strings.Join(parts, " | ")
	case PatTuple:
		parts := make([]string, 0, len(p.Elems)+1)
		for i, e := range p.Elems {
			if i == p.RestPos {
				parts = append(parts, "..")
			}
			parts = append(parts, e.String())
		}
		if p.RestPos == len(p.Elems) {
			parts = append(parts, "..")
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case PatRecord:
		parts := make([]string, 0, len(p.Fields)+1)
		for _, f := range p.Fields {
			parts = append(parts, f.Name+": "+f.Pattern.String())
		}
		if p.HasRest {
			parts = append(parts, "..")
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case PatVariant:
		if p.Payload == nil {
			return p.Tag
		}
		return p.Tag + "(" + p.Payload.String() + ")"
	default:
		return "<invalid>"
	}
}
