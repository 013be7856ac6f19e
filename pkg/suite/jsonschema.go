package suite

import (
	"fmt"
	"math"
	"strconv"

	"github.com/speakeasy-api/openapi/jsonschema/oas3"
	"gopkg.in/yaml.v3"

	"github.com/speakeasy-api/patmatch"
)

// JSON Schema import: maps the structural core of a schema onto ADT shapes
// so match expressions can be checked against types sourced from OpenAPI
// documents. The mapping is intentionally narrow: only constructs with an
// exact ADT counterpart are accepted.
//
//	boolean                  → Primitive bool
//	integer (+min/max)       → Primitive int
//	string + enum            → Sum of payload-free variants
//	object + properties      → Record (optional properties wrap in an
//	                           Option-style Sum of None | Some)
//	array + prefixItems      → Tuple
//	oneOf / anyOf            → Sum, one variant per branch
//
// Anything else (open strings, unbounded arrays, additionalProperties maps)
// has no finite ADT shape and is rejected rather than approximated.

// Default bounds for integer schemas carrying no explicit minimum/maximum
// facets.
const (
	defaultIntMin = math.MinInt32
	defaultIntMax = math.MaxInt32
)

// ImportSchema registers name for the given JSON Schema and returns its
// shape handle. Nested schemas register under dotted names (Pet.tag).
func ImportSchema(b *patmatch.RegistryBuilder, name string, s *oas3.Schema) (patmatch.ShapeID, error) {
	if s == nil {
		return patmatch.NoShape, fmt.Errorf("nil schema for %q", name)
	}

	if len(s.OneOf) > 0 {
		return importUnion(b, name, s.OneOf)
	}
	if len(s.AnyOf) > 0 {
		return importUnion(b, name, s.AnyOf)
	}

	switch schemaType(s) {
	case string(oas3.SchemaTypeBoolean):
		return b.Primitive(name, patmatch.BoolDomain()), nil

	case string(oas3.SchemaTypeInteger):
		min, max := int64(defaultIntMin), int64(defaultIntMax)
		if s.Minimum != nil {
			min = int64(*s.Minimum)
		}
		if s.Maximum != nil {
			max = int64(*s.Maximum)
		}
		if min > max {
			return patmatch.NoShape, fmt.Errorf("%q: integer bounds [%d, %d] are empty", name, min, max)
		}
		return b.Primitive(name, patmatch.IntDomain(min, max)), nil

	case string(oas3.SchemaTypeString):
		if len(s.Enum) == 0 {
			return patmatch.NoShape, fmt.Errorf("%q: open string type has no finite shape; only string enums import", name)
		}
		variants := make([]patmatch.Variant, 0, len(s.Enum))
		for _, n := range s.Enum {
			tag, err := enumTag(n)
			if err != nil {
				return patmatch.NoShape, fmt.Errorf("%q: %w", name, err)
			}
			variants = append(variants, patmatch.Variant{Tag: tag, Payload: patmatch.NoShape})
		}
		return b.Sum(name, variants...), nil

	case string(oas3.SchemaTypeObject):
		return importObject(b, name, s)

	case string(oas3.SchemaTypeArray):
		if len(s.PrefixItems) == 0 {
			return patmatch.NoShape, fmt.Errorf("%q: only fixed-arity arrays (prefixItems) import as tuples", name)
		}
		elems := make([]patmatch.ShapeID, 0, len(s.PrefixItems))
		for i, item := range s.PrefixItems {
			if item == nil || item.Left == nil {
				return patmatch.NoShape, fmt.Errorf("%q: prefixItems[%d] is not an inline schema", name, i)
			}
			id, err := ImportSchema(b, name+"."+strconv.Itoa(i), item.Left)
			if err != nil {
				return patmatch.NoShape, err
			}
			elems = append(elems, id)
		}
		return b.Tuple(name, elems...), nil

	default:
		return patmatch.NoShape, fmt.Errorf("%q: schema type %q has no ADT shape", name, schemaType(s))
	}
}

func importObject(b *patmatch.RegistryBuilder, name string, s *oas3.Schema) (patmatch.ShapeID, error) {
	if s.Properties == nil {
		return patmatch.NoShape, fmt.Errorf("%q: object without properties has no finite shape", name)
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}

	var fields []patmatch.Field
	for propName, prop := range s.Properties.All() {
		if prop == nil || prop.Left == nil {
			return patmatch.NoShape, fmt.Errorf("%q: property %q is not an inline schema", name, propName)
		}
		id, err := ImportSchema(b, name+"."+propName, prop.Left)
		if err != nil {
			return patmatch.NoShape, err
		}
		if !required[propName] {
			// Optional properties become an Option-style sum so absence is
			// a matchable case rather than a silent hole.
			id = b.Sum(name+"."+propName+"?",
				patmatch.Variant{Tag: "None", Payload: patmatch.NoShape},
				patmatch.Variant{Tag: "Some", Payload: id},
			)
		}
		fields = append(fields, patmatch.Field{Name: propName, Shape: id})
	}
	return b.Record(name, fields...), nil
}

func importUnion(b *patmatch.RegistryBuilder, name string, branches []*oas3.JSONSchema[oas3.Referenceable]) (patmatch.ShapeID, error) {
	variants := make([]patmatch.Variant, 0, len(branches))
	seen := make(map[string]bool, len(branches))
	for i, br := range branches {
		if br == nil || br.Left == nil {
			return patmatch.NoShape, fmt.Errorf("%q: union branch %d is not an inline schema", name, i)
		}
		tag, payload, err := importBranch(b, name, i, br.Left)
		if err != nil {
			return patmatch.NoShape, err
		}
		if seen[tag] {
			return patmatch.NoShape, fmt.Errorf("%q: union branches collide on tag %q", name, tag)
		}
		seen[tag] = true
		variants = append(variants, patmatch.Variant{Tag: tag, Payload: payload})
	}
	return b.Sum(name, variants...), nil
}

// importBranch derives a variant from one union branch. A const string
// branch becomes a payload-free variant named by its value; anything else
// gets a positional tag and imports its payload shape.
func importBranch(b *patmatch.RegistryBuilder, name string, i int, s *oas3.Schema) (string, patmatch.ShapeID, error) {
	if s.Const != nil {
		tag, err := enumTag(s.Const)
		if err != nil {
			return "", patmatch.NoShape, fmt.Errorf("%q branch %d: %w", name, i, err)
		}
		return tag, patmatch.NoShape, nil
	}
	if schemaType(s) == string(oas3.SchemaTypeString) && len(s.Enum) == 1 {
		tag, err := enumTag(s.Enum[0])
		if err != nil {
			return "", patmatch.NoShape, fmt.Errorf("%q branch %d: %w", name, i, err)
		}
		return tag, patmatch.NoShape, nil
	}
	tag := "Alt" + strconv.Itoa(i)
	id, err := ImportSchema(b, name+"."+tag, s)
	if err != nil {
		return "", patmatch.NoShape, err
	}
	return tag, id, nil
}

// schemaType returns the single declared type, or "" for none/multiple.
func schemaType(s *oas3.Schema) string {
	types := s.GetType()
	if len(types) != 1 {
		return ""
	}
	return string(types[0])
}

func enumTag(n *yaml.Node) (string, error) {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!str" {
		return "", fmt.Errorf("enum value must be a string scalar")
	}
	if n.Value == "" {
		return "", fmt.Errorf("enum value must be non-empty")
	}
	return n.Value, nil
}
