package patmatch

// Irrefutable reports whether the pattern matches every value of the shape.
// Positions requiring unconditional binding (direct destructuring outside a
// conditional dispatch) must receive an irrefutable pattern; the checker
// surfaces violations as RefutablePatternInIrrefutableContext findings.
//
// The pattern is assumed to have passed Validate for the same shape.
func Irrefutable(reg *Registry, shape ShapeID, p *Pattern) bool {
	s, err := reg.Lookup(shape)
	if err != nil {
		return false
	}
	return irrefutable(reg, s, p)
}

func irrefutable(reg *Registry, s *Shape, p *Pattern) bool {
	if p == nil {
		return true
	}
	switch p.Kind {
	case PatWildcard:
		return true

	case PatBinding:
		return p.Sub == nil || irrefutable(reg, s, p.Sub)

	case PatLiteral:
		// Only a one-inhabitant domain makes a literal irrefutable.
		return s.Kind == ShapePrimitive && s.Domain.Singleton()

	case PatRange:
		if s.Kind != ShapePrimitive {
			return false
		}
		hi := p.Hi
		if !p.Inclusive {
			hi--
		}
		return p.Lo <= s.Domain.Min && hi >= s.Domain.Max

	case PatOr:
		// Permitted but pointless: a single irrefutable alternative would
		// suffice. The checker flags the redundancy separately.
		for _, alt := range p.Alts {
			if !irrefutable(reg, s, alt) {
				return false
			}
		}
		return true

	case PatTuple:
		if s.Kind != ShapeTuple {
			return false
		}
		for i, idx := range tupleElementIndices(p, len(s.Elements)) {
			es, err := reg.Lookup(s.Elements[idx])
			if err != nil || !irrefutable(reg, es, p.Elems[i]) {
				return false
			}
		}
		return true

	case PatRecord:
		if s.Kind != ShapeRecord {
			return false
		}
		for _, fp := range p.Fields {
			idx := s.FieldIndex(fp.Name)
			if idx < 0 {
				return false
			}
			fs, err := reg.Lookup(s.Fields[idx].Shape)
			if err != nil || !irrefutable(reg, fs, fp.Pattern) {
				return false
			}
		}
		return true

	case PatVariant:
		// Irrefutable only when the sum has a single variant.
		if s.Kind != ShapeSum || len(s.Variants) != 1 || s.Variants[0].Tag != p.Tag {
			return false
		}
		v := s.Variants[0]
		if v.Payload == NoShape {
			return p.Payload == nil
		}
		ps, err := reg.Lookup(v.Payload)
		if err != nil {
			return false
		}
		return irrefutable(reg, ps, p.Payload)

	default:
		return false
	}
}
