package checkexec

import (
	"fmt"
	"strings"

	"github.com/speakeasy-api/patmatch"
	"gopkg.in/yaml.v3"
)

// WitnessKind classifies synthesized counterexamples.
type WitnessKind uint8

const (
	WitAny     WitnessKind = iota // any value of the position's shape
	WitScalar                     // one concrete primitive value
	WitSpan                       // an uncovered sub-range of a primitive domain
	WitTuple
	WitRecord
	WitVariant
)

// WitnessField is one named component of a record witness, in field
// declaration order.
type WitnessField struct {
	Name    string
	Witness *Witness
}

// Witness is a concrete or minimal-symbolic value demonstrating
// non-exhaustiveness. Witnesses are synthesized in a fixed order (variant
// declaration order, then field declaration order, then ascending domain
// order) so identical input always yields identical diagnostics.
type Witness struct {
	Kind WitnessKind

	// WitScalar / WitSpan
	Dom    patmatch.Domain
	Lo, Hi int64 // WitScalar uses Lo only

	// WitTuple
	Elems []*Witness

	// WitRecord
	TypeName string
	Fields   []WitnessField

	// WitVariant
	Tag     string
	Payload *Witness // nil for payload-free variants
}

func anyWitness() *Witness { return &Witness{Kind: WitAny} }

func scalarWitness(d patmatch.Domain, v int64) *Witness {
	return &Witness{Kind: WitScalar, Dom: d, Lo: v}
}

func spanWitness(d patmatch.Domain, lo, hi int64) *Witness {
	if lo == hi {
		return scalarWitness(d, lo)
	}
	return &Witness{Kind: WitSpan, Dom: d, Lo: lo, Hi: hi}
}

// String renders the witness in source-like form: `Blue`, `(false, true)`,
// `Point{x: 0, y: _}`, `11..=100`.
func (w *Witness) String() string {
	if w == nil {
		return "_"
	}
	switch w.Kind {
	case WitAny:
		return "_"
	case WitScalar:
		return w.Dom.FormatScalar(w.Lo)
	case WitSpan:
		return fmt.Sprintf("%s..=%s", w.Dom.FormatScalar(w.Lo), w.Dom.FormatScalar(w.Hi))
	case WitTuple:
		parts := make([]string, len(w.Elems))
		for i, e := range w.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case WitRecord:
		parts := make([]string, len(w.Fields))
		for i, f := range w.Fields {
			parts[i] = f.Name + ": " + f.Witness.String()
		}
		body := "{" + strings.Join(parts, ", ") + "}"
		if w.TypeName != "" {
			return w.TypeName + body
		}
		return body
	case WitVariant:
		if w.Payload == nil {
			return w.Tag
		}
		return w.Tag + "(" + w.Payload.String() + ")"
	default:
		return "<invalid>"
	}
}

// ToYAML renders the witness as a YAML node for tooling output. Scalars keep
// their domain typing (!!bool, !!int, !!str), composites become sequences and
// mappings, symbolic positions become the string "_".
func (w *Witness) ToYAML() *yaml.Node {
	if w == nil {
		return strNode("_")
	}
	switch w.Kind {
	case WitAny:
		return strNode("_")
	case WitScalar:
		return scalarNode(w.Dom, w.Lo)
	case WitSpan:
		return strNode(w.String())
	case WitTuple:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range w.Elems {
			n.Content = append(n.Content, e.ToYAML())
		}
		return n
	case WitRecord:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range w.Fields {
			n.Content = append(n.Content, strNode(f.Name), f.Witness.ToYAML())
		}
		return n
	case WitVariant:
		if w.Payload == nil {
			return strNode(w.Tag)
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		n.Content = append(n.Content, strNode(w.Tag), w.Payload.ToYAML())
		return n
	default:
		return strNode("<invalid>")
	}
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func scalarNode(d patmatch.Domain, v int64) *yaml.Node {
	switch d.Kind {
	case patmatch.DomainBool:
		val := "false"
		if v != 0 {
			val = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: val}
	case patmatch.DomainChar:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(rune(v))}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", v)}
	}
}
