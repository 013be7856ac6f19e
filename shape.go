package patmatch

import (
	"fmt"
	"unicode"
)

// ShapeID is an arena handle for a shape. Recursive ADTs (a list variant
// holding its own type) are handle cycles in the arena, never infinite values.
type ShapeID int

// NoShape marks an absent payload shape.
const NoShape ShapeID = -1

// ShapeKind classifies the structure of an ADT.
type ShapeKind uint8

const (
	ShapePrimitive ShapeKind = iota
	ShapeTuple
	ShapeRecord
	ShapeSum
)

func (k ShapeKind) String() string {
	switch k {
	case ShapePrimitive:
		return "primitive"
	case ShapeTuple:
		return "tuple"
	case ShapeRecord:
		return "record"
	case ShapeSum:
		return "sum"
	default:
		return "unknown"
	}
}

// DomainKind selects the rendering and equality rules for a primitive domain.
// All primitive domains are totally ordered discrete sets represented as an
// inclusive interval of int64 ordinals: booleans are [0,1], characters are
// Unicode code points.
type DomainKind uint8

const (
	DomainBool DomainKind = iota
	DomainInt
	DomainChar
)

// Domain is the value domain of a primitive shape.
type Domain struct {
	Kind DomainKind
	Min  int64
	Max  int64
}

// BoolDomain is the two-point boolean domain (false < true).
func BoolDomain() Domain { return Domain{Kind: DomainBool, Min: 0, Max: 1} }

// IntDomain is a bounded integer domain [min, max].
func IntDomain(min, max int64) Domain { return Domain{Kind: DomainInt, Min: min, Max: max} }

// CharDomain is the Unicode code point domain.
func CharDomain() Domain { return Domain{Kind: DomainChar, Min: 0, Max: int64(unicode.MaxRune)} }

// Contains reports whether ordinal v lies in the domain.
func (d Domain) Contains(v int64) bool { return v >= d.Min && v <= d.Max }

// Singleton reports whether the domain has exactly one inhabitant.
func (d Domain) Singleton() bool { return d.Min == d.Max }

// FormatScalar renders a domain ordinal the way a user would write it.
func (d Domain) FormatScalar(v int64) string {
	switch d.Kind {
	case DomainBool:
		if v == 0 {
			return "false"
		}
		return "true"
	case DomainChar:
		return fmt.Sprintf("%q", rune(v))
	default:
		return fmt.Sprintf("%d", v)
	}
}

// Field is one named component of a record shape. Declaration order is kept
// for display and witness generation; coverage ignores it.
type Field struct {
	Name  string
	Shape ShapeID
}

// Variant is one tagged alternative of a sum shape. Payload is NoShape when
// the variant carries no payload.
type Variant struct {
	Tag     string
	Payload ShapeID
}

// Shape describes one ADT's structure. Exactly the fields selected by Kind
// are meaningful.
type Shape struct {
	Kind     ShapeKind
	Name     string
	Domain   Domain    // ShapePrimitive
	Elements []ShapeID // ShapeTuple
	Fields   []Field   // ShapeRecord
	Variants []Variant // ShapeSum
}

// VariantIndex returns the declaration index of tag, or -1.
func (s *Shape) VariantIndex(tag string) int {
	for i, v := range s.Variants {
		if v.Tag == tag {
			return i
		}
	}
	return -1
}

// FieldIndex returns the declaration index of name, or -1.
func (s *Shape) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Registry is an immutable arena of shapes, safe for concurrent read-only
// access from any number of analyses. Build one per compilation unit via
// RegistryBuilder.
type Registry struct {
	shapes []Shape
	byName map[string]ShapeID
}

// Lookup returns the shape for id, or UnknownTypeError.
func (r *Registry) Lookup(id ShapeID) (*Shape, error) {
	if id < 0 || int(id) >= len(r.shapes) {
		return nil, &UnknownTypeError{ID: id}
	}
	return &r.shapes[id], nil
}

// LookupName resolves a declared shape by display name.
func (r *Registry) LookupName(name string) (ShapeID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Len returns the number of declared shapes.
func (r *Registry) Len() int { return len(r.shapes) }

// RegistryBuilder accumulates shape definitions and freezes them into a
// Registry. Declare reserves a handle so recursive definitions can reference
// themselves before they are defined.
type RegistryBuilder struct {
	shapes  []Shape
	byName  map[string]ShapeID
	defined []bool
}

// NewRegistryBuilder creates an empty builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{byName: make(map[string]ShapeID)}
}

// Declare reserves a handle for name without defining it. Declaring the same
// name twice returns the original handle.
func (b *RegistryBuilder) Declare(name string) ShapeID {
	if id, ok := b.byName[name]; ok {
		return id
	}
	id := ShapeID(len(b.shapes))
	b.shapes = append(b.shapes, Shape{Name: name})
	b.defined = append(b.defined, false)
	b.byName[name] = id
	return id
}

func (b *RegistryBuilder) define(name string, s Shape) ShapeID {
	id := b.Declare(name)
	s.Name = name
	b.shapes[id] = s
	b.defined[id] = true
	return id
}

// Primitive declares and defines a primitive shape.
func (b *RegistryBuilder) Primitive(name string, d Domain) ShapeID {
	return b.define(name, Shape{Kind: ShapePrimitive, Domain: d})
}

// Tuple declares and defines a tuple shape.
func (b *RegistryBuilder) Tuple(name string, elems ...ShapeID) ShapeID {
	return b.define(name, Shape{Kind: ShapeTuple, Elements: elems})
}

// Record declares and defines a record shape. Field order is the declaration
// order used for display and witnesses.
func (b *RegistryBuilder) Record(name string, fields ...Field) ShapeID {
	return b.define(name, Shape{Kind: ShapeRecord, Fields: fields})
}

// Sum declares and defines a sum shape. Variant order is the declaration
// order used for witness generation.
func (b *RegistryBuilder) Sum(name string, variants ...Variant) ShapeID {
	return b.define(name, Shape{Kind: ShapeSum, Variants: variants})
}

// DefineSum completes a previously Declared handle as a sum shape. This is
// how recursive sums (List = Nil | Cons(int, List)) are built.
func (b *RegistryBuilder) DefineSum(id ShapeID, variants ...Variant) {
	b.shapes[id] = Shape{Kind: ShapeSum, Name: b.shapes[id].Name, Variants: variants}
	b.defined[id] = true
}

// DefineTuple completes a previously Declared handle as a tuple shape.
func (b *RegistryBuilder) DefineTuple(id ShapeID, elems ...ShapeID) {
	b.shapes[id] = Shape{Kind: ShapeTuple, Name: b.shapes[id].Name, Elements: elems}
	b.defined[id] = true
}

// DefineRecord completes a previously Declared handle as a record shape.
func (b *RegistryBuilder) DefineRecord(id ShapeID, fields ...Field) {
	b.shapes[id] = Shape{Kind: ShapeRecord, Name: b.shapes[id].Name, Fields: fields}
	b.defined[id] = true
}

// Build freezes the builder into an immutable Registry. Every Declared handle
// must have been defined, and every referenced handle must be in range.
func (b *RegistryBuilder) Build() (*Registry, error) {
	for id, ok := range b.defined {
		if !ok {
			return nil, fmt.Errorf("shape %q declared but never defined", b.shapes[id].Name)
		}
	}
	for i := range b.shapes {
		if err := b.checkRefs(&b.shapes[i]); err != nil {
			return nil, fmt.Errorf("shape %q: %w", b.shapes[i].Name, err)
		}
	}
	shapes := make([]Shape, len(b.shapes))
	copy(shapes, b.shapes)
	byName := make(map[string]ShapeID, len(b.byName))
	for k, v := range b.byName {
		byName[k] = v
	}
	return &Registry{shapes: shapes, byName: byName}, nil
}

func (b *RegistryBuilder) checkRefs(s *Shape) error {
	check := func(id ShapeID) error {
		if id == NoShape {
			return nil
		}
		if id < 0 || int(id) >= len(b.shapes) {
			return &UnknownTypeError{ID: id}
		}
		return nil
	}
	switch s.Kind {
	case ShapePrimitive:
		if s.Domain.Min > s.Domain.Max {
			return fmt.Errorf("empty primitive domain [%d, %d]", s.Domain.Min, s.Domain.Max)
		}
	case ShapeTuple:
		for _, e := range s.Elements {
			if err := check(e); err != nil {
				return err
			}
		}
	case ShapeRecord:
		seen := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			if seen[f.Name] {
				return fmt.Errorf("duplicate field %q", f.Name)
			}
			seen[f.Name] = true
			if err := check(f.Shape); err != nil {
				return err
			}
		}
	case ShapeSum:
		if len(s.Variants) == 0 {
			return fmt.Errorf("sum shape needs at least one variant")
		}
		seen := make(map[string]bool, len(s.Variants))
		for _, v := range s.Variants {
			if seen[v.Tag] {
				return fmt.Errorf("duplicate variant tag %q", v.Tag)
			}
			seen[v.Tag] = true
			if err := check(v.Payload); err != nil {
				return err
			}
		}
	}
	return nil
}
