// Package suite loads declarative match-analysis suites: ADT shape
// declarations plus match expressions, in YAML or imported from JSON Schema.
// It is the bridge between tooling input and the engine, used by the
// matchcheck CLI and by tests.
package suite

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/speakeasy-api/patmatch"
	"github.com/speakeasy-api/patmatch/checkexec"
)

// Suite is a loaded set of shapes and the match expressions to analyze
// against them.
type Suite struct {
	Registry *patmatch.Registry
	Matches  []MatchCase
	Bindings []BindingCase
}

// MatchCase is one match expression: a scrutinee shape and its ordered arms.
type MatchCase struct {
	Name          string
	Scrutinee     patmatch.ShapeID
	ScrutineeName string
	Arms          []patmatch.Arm
}

// BindingCase is one irrefutable-context destructuring to check.
type BindingCase struct {
	Name      string
	Shape     patmatch.ShapeID
	ShapeName string
	Pattern   *patmatch.Pattern
}

// Outcome pairs a case name with its analysis result.
type Outcome struct {
	Name     string
	Result   *checkexec.CheckResult // match cases
	Findings []checkexec.Finding    // binding cases
	Err      error
}

// Run analyzes every case in the suite, in declaration order.
func (s *Suite) Run(ctx context.Context, opts checkexec.CheckOptions) []Outcome {
	out := make([]Outcome, 0, len(s.Matches)+len(s.Bindings))
	for _, m := range s.Matches {
		res, err := checkexec.Check(ctx, s.Registry, m.Scrutinee, m.Arms, opts)
		out = append(out, Outcome{Name: m.Name, Result: res, Err: err})
	}
	for _, b := range s.Bindings {
		fs, err := checkexec.CheckBinding(s.Registry, b.Shape, b.Pattern)
		out = append(out, Outcome{Name: b.Name, Findings: fs, Err: err})
	}
	return out
}

// ----------------------------------------------------------------------------
// YAML document model
// ----------------------------------------------------------------------------

type document struct {
	Shapes   []shapeDecl   `yaml:"shapes"`
	Matches  []matchDecl   `yaml:"matches"`
	Bindings []bindingDecl `yaml:"bindings"`
}

type shapeDecl struct {
	Name      string        `yaml:"name"`
	Primitive *primDecl     `yaml:"primitive"`
	Tuple     []string      `yaml:"tuple"`
	Record    []fieldDecl   `yaml:"record"`
	Sum       []variantDecl `yaml:"sum"`
}

type primDecl struct {
	Kind string `yaml:"kind"` // bool, int, char
	Min  *int64 `yaml:"min"`
	Max  *int64 `yaml:"max"`
}

type fieldDecl struct {
	Name  string `yaml:"name"`
	Shape string `yaml:"shape"`
}

type variantDecl struct {
	Tag     string `yaml:"tag"`
	Payload string `yaml:"payload"` // shape name, empty for payload-free variants
}

type matchDecl struct {
	Name      string    `yaml:"name"`
	Scrutinee string    `yaml:"scrutinee"`
	Arms      []armDecl `yaml:"arms"`
}

type armDecl struct {
	Pattern *patternDecl `yaml:"pattern"`
	Guard   string       `yaml:"guard"` // opaque guard handle; presence is all the checker sees
	Body    int          `yaml:"body"`
}

type bindingDecl struct {
	Name    string       `yaml:"name"`
	Shape   string       `yaml:"shape"`
	Pattern *patternDecl `yaml:"pattern"`
}

// patternDecl mirrors the pattern language one form per key.
type patternDecl struct {
	Wildcard bool         `yaml:"wildcard"`
	Bind     *bindPatDecl `yaml:"bind"`
	// A value (not pointer) Node: yaml.v3 v3.0.1 cannot decode a scalar
	// into a *yaml.Node field (go-yaml/yaml#708); absence is IsZero.
	Lit     yaml.Node       `yaml:"lit"`
	Range   *rangePatDecl   `yaml:"range"`
	Or      []*patternDecl  `yaml:"or"`
	Tuple   *tuplePatDecl   `yaml:"tuple"`
	Record  *recordPatDecl  `yaml:"record"`
	Variant *variantPatDecl `yaml:"variant"`
}

type bindPatDecl struct {
	Name string       `yaml:"name"`
	Of   *patternDecl `yaml:"of"`
}

type rangePatDecl struct {
	Lo        int64 `yaml:"lo"`
	Hi        int64 `yaml:"hi"`
	Exclusive bool  `yaml:"exclusive"`
}

type tuplePatDecl struct {
	Elems []*patternDecl `yaml:"elems"`
	Rest  *int           `yaml:"rest"`
}

type recordPatDecl struct {
	Fields map[string]*patternDecl `yaml:"fields"`
	Rest   bool                    `yaml:"rest"`
}

type variantPatDecl struct {
	Tag     string       `yaml:"tag"`
	Payload *patternDecl `yaml:"payload"`
}

// ----------------------------------------------------------------------------
// Loading
// ----------------------------------------------------------------------------

// LoadFile reads a YAML suite document from a file.
func LoadFile(path string) (*Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open suite: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a YAML suite document.
func Load(r io.Reader) (*Suite, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode suite document: %w", err)
	}
	return build(&doc)
}

func build(doc *document) (*Suite, error) {
	b := patmatch.NewRegistryBuilder()

	// Declare first so shapes can reference each other in any order,
	// including themselves.
	for _, sd := range doc.Shapes {
		if sd.Name == "" {
			return nil, fmt.Errorf("shape declaration without a name")
		}
		b.Declare(sd.Name)
	}
	for _, sd := range doc.Shapes {
		if err := defineShape(b, sd); err != nil {
			return nil, fmt.Errorf("shape %q: %w", sd.Name, err)
		}
	}
	reg, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}

	s := &Suite{Registry: reg}
	for _, md := range doc.Matches {
		id, ok := reg.LookupName(md.Scrutinee)
		if !ok {
			return nil, fmt.Errorf("match %q: unknown scrutinee shape %q", md.Name, md.Scrutinee)
		}
		mc := MatchCase{Name: md.Name, Scrutinee: id, ScrutineeName: md.Scrutinee}
		for i, ad := range md.Arms {
			p, err := buildPattern(ad.Pattern)
			if err != nil {
				return nil, fmt.Errorf("match %q arm %d: %w", md.Name, i, err)
			}
			arm := patmatch.Arm{Pattern: p, Body: ad.Body}
			if ad.Guard != "" {
				arm.Guard = &patmatch.Guard{ID: ad.Guard}
			}
			mc.Arms = append(mc.Arms, arm)
		}
		s.Matches = append(s.Matches, mc)
	}
	for _, bd := range doc.Bindings {
		id, ok := reg.LookupName(bd.Shape)
		if !ok {
			return nil, fmt.Errorf("binding %q: unknown shape %q", bd.Name, bd.Shape)
		}
		p, err := buildPattern(bd.Pattern)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", bd.Name, err)
		}
		s.Bindings = append(s.Bindings, BindingCase{Name: bd.Name, Shape: id, ShapeName: bd.Shape, Pattern: p})
	}
	return s, nil
}

func defineShape(b *patmatch.RegistryBuilder, sd shapeDecl) error {
	id := b.Declare(sd.Name)
	switch {
	case sd.Primitive != nil:
		d, err := buildDomain(sd.Primitive)
		if err != nil {
			return err
		}
		b.Primitive(sd.Name, d)
	case sd.Tuple != nil:
		elems := make([]patmatch.ShapeID, len(sd.Tuple))
		for i, name := range sd.Tuple {
			elems[i] = b.Declare(name)
		}
		b.DefineTuple(id, elems...)
	case sd.Record != nil:
		fields := make([]patmatch.Field, len(sd.Record))
		for i, fd := range sd.Record {
			fields[i] = patmatch.Field{Name: fd.Name, Shape: b.Declare(fd.Shape)}
		}
		b.DefineRecord(id, fields...)
	case sd.Sum != nil:
		variants := make([]patmatch.Variant, len(sd.Sum))
		for i, vd := range sd.Sum {
			payload := patmatch.NoShape
			if vd.Payload != "" {
				payload = b.Declare(vd.Payload)
			}
			variants[i] = patmatch.Variant{Tag: vd.Tag, Payload: payload}
		}
		b.DefineSum(id, variants...)
	default:
		return fmt.Errorf("declaration needs one of primitive, tuple, record, sum")
	}
	return nil
}

func buildDomain(pd *primDecl) (patmatch.Domain, error) {
	switch pd.Kind {
	case "bool":
		return patmatch.BoolDomain(), nil
	case "char":
		return patmatch.CharDomain(), nil
	case "int":
		if pd.Min == nil || pd.Max == nil {
			return patmatch.Domain{}, fmt.Errorf("int domain needs explicit min and max bounds")
		}
		return patmatch.IntDomain(*pd.Min, *pd.Max), nil
	default:
		return patmatch.Domain{}, fmt.Errorf("unknown primitive kind %q", pd.Kind)
	}
}

func buildPattern(pd *patternDecl) (*patmatch.Pattern, error) {
	if pd == nil {
		return nil, fmt.Errorf("missing pattern")
	}
	switch {
	case pd.Wildcard:
		return patmatch.Wildcard(), nil

	case pd.Bind != nil:
		var sub *patmatch.Pattern
		if pd.Bind.Of != nil {
			var err error
			sub, err = buildPattern(pd.Bind.Of)
			if err != nil {
				return nil, err
			}
		}
		return patmatch.Bind(pd.Bind.Name, sub), nil

	case !pd.Lit.IsZero():
		v, err := litOrdinal(&pd.Lit)
		if err != nil {
			return nil, err
		}
		return patmatch.Lit(v), nil

	case pd.Range != nil:
		return patmatch.Range(pd.Range.Lo, pd.Range.Hi, !pd.Range.Exclusive)

	case pd.Or != nil:
		alts := make([]*patmatch.Pattern, len(pd.Or))
		for i, ad := range pd.Or {
			p, err := buildPattern(ad)
			if err != nil {
				return nil, err
			}
			alts[i] = p
		}
		return patmatch.Or(alts...)

	case pd.Tuple != nil:
		elems := make([]*patmatch.Pattern, len(pd.Tuple.Elems))
		for i, ed := range pd.Tuple.Elems {
			p, err := buildPattern(ed)
			if err != nil {
				return nil, err
			}
			elems[i] = p
		}
		if pd.Tuple.Rest != nil {
			return patmatch.TupleRest(*pd.Tuple.Rest, elems...), nil
		}
		return patmatch.TupleOf(elems...), nil

	case pd.Record != nil:
		fields := make([]patmatch.FieldPattern, 0, len(pd.Record.Fields))
		for name, fd := range pd.Record.Fields {
			p, err := buildPattern(fd)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			fields = append(fields, patmatch.FieldPat(name, p))
		}
		return patmatch.RecordOf(pd.Record.Rest, fields...), nil

	case pd.Variant != nil:
		var payload *patmatch.Pattern
		if pd.Variant.Payload != nil {
			var err error
			payload, err = buildPattern(pd.Variant.Payload)
			if err != nil {
				return nil, err
			}
		}
		return patmatch.VariantOf(pd.Variant.Tag, payload), nil

	default:
		return nil, fmt.Errorf("pattern declaration needs exactly one form")
	}
}

// litOrdinal interprets a YAML scalar as a domain ordinal: booleans map to
// 0/1, integers to themselves, one-rune strings to the code point.
func litOrdinal(n *yaml.Node) (int64, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("literal must be a YAML scalar, got %v", n.Kind)
	}
	switch n.Tag {
	case "!!bool":
		if n.Value == "true" {
			return 1, nil
		}
		return 0, nil
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad integer literal %q: %w", n.Value, err)
		}
		return v, nil
	case "!!str":
		runes := []rune(n.Value)
		if len(runes) != 1 {
			return 0, fmt.Errorf("character literal %q must be exactly one rune", n.Value)
		}
		return int64(runes[0]), nil
	default:
		return 0, fmt.Errorf("unsupported literal tag %s", n.Tag)
	}
}
