package patmatch

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks that a pattern structurally matches the shape it will be
// evaluated against. Every mismatch in the tree is reported, aggregated into
// one error, so a caller sees all defects of a pattern in a single pass.
// Validation is the precondition for both the static checker and the runtime
// evaluator: patterns that pass never make either one panic.
func Validate(reg *Registry, shape ShapeID, p *Pattern) error {
	s, err := reg.Lookup(shape)
	if err != nil {
		return err
	}
	return validate(reg, s, p)
}

func validate(reg *Registry, s *Shape, p *Pattern) error {
	if p == nil {
		return &TypeMismatchError{Shape: s.Name, Reason: "nil pattern"}
	}
	switch p.Kind {
	case PatWildcard:
		return nil

	case PatBinding:
		if p.Sub == nil {
			return nil
		}
		return validate(reg, s, p.Sub)

	case PatLiteral:
		if s.Kind != ShapePrimitive {
			return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("literal pattern against %s shape", s.Kind)}
		}
		if !s.Domain.Contains(p.Value) {
			return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("literal %s outside domain [%d, %d]",
				s.Domain.FormatScalar(p.Value), s.Domain.Min, s.Domain.Max)}
		}
		return nil

	case PatRange:
		if s.Kind != ShapePrimitive {
			return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("range pattern against %s shape", s.Kind)}
		}
		lo, hi := p.Lo, p.Hi
		if !p.Inclusive {
			hi--
		}
		// Hand-built patterns may bypass the Range constructor.
		if lo > hi {
			return &EmptyRangeError{Lo: p.Lo, Hi: p.Hi, Inclusive: p.Inclusive}
		}
		if lo < s.Domain.Min || hi > s.Domain.Max {
			return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("range %s exceeds domain [%d, %d]",
				p.String(), s.Domain.Min, s.Domain.Max)}
		}
		return nil

	case PatOr:
		var errs error
		if len(p.Alts) == 0 {
			return &TypeMismatchError{Shape: s.Name, Reason: "or-pattern with no alternatives"}
		}
		// Hand-built patterns may bypass the Or constructor.
		want := BoundNames(p.Alts[0])
		for i, alt := range p.Alts {
			if err := validate(reg, s, alt); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("alternative %d: %w", i, err))
			}
			if i > 0 {
				if got := BoundNames(alt); !equalNames(want, got) {
					errs = multierr.Append(errs, &InconsistentOrBindingsError{Want: want, Got: got, Alt: i})
				}
			}
		}
		return errs

	case PatTuple:
		if s.Kind != ShapeTuple {
			return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("tuple pattern against %s shape", s.Kind)}
		}
		arity := len(s.Elements)
		if p.RestPos == NoRest {
			if len(p.Elems) != arity {
				return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("tuple pattern has %d elements, shape has arity %d (no rest marker)", len(p.Elems), arity)}
			}
		} else {
			if p.RestPos < 0 || p.RestPos > len(p.Elems) {
				return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("rest position %d out of range for %d explicit elements", p.RestPos, len(p.Elems))}
			}
			if len(p.Elems) > arity {
				return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("tuple pattern has %d explicit elements, shape has arity %d", len(p.Elems), arity)}
			}
		}
		var errs error
		for i, idx := range tupleElementIndices(p, arity) {
			es, err := reg.Lookup(s.Elements[idx])
			if err != nil {
				return err
			}
			if err := validate(reg, es, p.Elems[i]); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("element %d: %w", idx, err))
			}
		}
		return errs

	case PatRecord:
		if s.Kind != ShapeRecord {
			return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("record pattern against %s shape", s.Kind)}
		}
		var errs error
		seen := make(map[string]bool, len(p.Fields))
		for _, fp := range p.Fields {
			if seen[fp.Name] {
				errs = multierr.Append(errs, &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("field %q matched twice", fp.Name)})
				continue
			}
			seen[fp.Name] = true
			idx := s.FieldIndex(fp.Name)
			if idx < 0 {
				errs = multierr.Append(errs, &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("no field %q declared", fp.Name)})
				continue
			}
			fs, err := reg.Lookup(s.Fields[idx].Shape)
			if err != nil {
				return err
			}
			if err := validate(reg, fs, fp.Pattern); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("field %q: %w", fp.Name, err))
			}
		}
		if !p.HasRest {
			// Local completeness rule: without a rest marker every declared
			// field must be named. Independent from global exhaustiveness.
			for _, f := range s.Fields {
				if !seen[f.Name] {
					errs = multierr.Append(errs, &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("field %q not covered and no rest marker", f.Name)})
				}
			}
		}
		return errs

	case PatVariant:
		if s.Kind != ShapeSum {
			return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("variant pattern against %s shape", s.Kind)}
		}
		idx := s.VariantIndex(p.Tag)
		if idx < 0 {
			return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("no variant %q declared", p.Tag)}
		}
		v := s.Variants[idx]
		if v.Payload == NoShape {
			if p.Payload != nil {
				return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("variant %q carries no payload but the pattern has one", p.Tag)}
			}
			return nil
		}
		if p.Payload == nil {
			return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("variant %q carries a payload but the pattern has none", p.Tag)}
		}
		ps, err := reg.Lookup(v.Payload)
		if err != nil {
			return err
		}
		if err := validate(reg, ps, p.Payload); err != nil {
			return fmt.Errorf("variant %q payload: %w", p.Tag, err)
		}
		return nil

	default:
		return &TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("unknown pattern kind %d", p.Kind)}
	}
}

// tupleElementIndices maps each explicit element of a tuple pattern to the
// shape element index it covers, accounting for a rest marker: elements
// before the rest cover the prefix, elements at or after it cover the suffix.
func tupleElementIndices(p *Pattern, arity int) []int {
	idxs := make([]int, len(p.Elems))
	if p.RestPos == NoRest {
		for i := range idxs {
			idxs[i] = i
		}
		return idxs
	}
	for i := 0; i < p.RestPos; i++ {
		idxs[i] = i
	}
	suffix := len(p.Elems) - p.RestPos
	for i := 0; i < suffix; i++ {
		idxs[p.RestPos+i] = arity - suffix + i
	}
	return idxs
}
