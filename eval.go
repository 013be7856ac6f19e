package patmatch

// Bindings maps names bound by a successful match to the values they
// captured.
type Bindings map[string]*Value

// Guard is an opaque boolean predicate attached to an arm. The static
// checker only records its presence; Pred is called exclusively by the
// runtime dispatch in Select, with the arm's bindings. Pred may be nil when
// a host performs static analysis only.
type Guard struct {
	ID   string
	Pred func(Bindings) bool
}

// Arm is one ordered alternative of a match expression. Order is
// semantically significant: dispatch is first-match-wins.
type Arm struct {
	Pattern *Pattern
	Guard   *Guard // optional
	Body    int    // opaque body reference for the host code generator
}

// Match attempts to match value against pattern. On success it returns the
// bindings the pattern produced. Matching is purely structural and has no
// error path: given a pattern that passed Validate and a value conforming to
// the declared shape, it always terminates with a verdict.
func Match(p *Pattern, v *Value) (Bindings, bool) {
	b := make(Bindings)
	if !match(p, v, b) {
		return nil, false
	}
	return b, true
}

func match(p *Pattern, v *Value, b Bindings) bool {
	if p == nil {
		return true
	}
	switch p.Kind {
	case PatWildcard:
		return true

	case PatBinding:
		if p.Sub != nil && !match(p.Sub, v, b) {
			return false
		}
		b[p.Name] = v
		return true

	case PatLiteral:
		return v.Kind == ValScalar && v.Scalar == p.Value

	case PatRange:
		if v.Kind != ValScalar {
			return false
		}
		if v.Scalar < p.Lo {
			return false
		}
		if p.Inclusive {
			return v.Scalar <= p.Hi
		}
		return v.Scalar < p.Hi

	case PatOr:
		for _, alt := range p.Alts {
			// Trial bindings: a failed alternative must not leak bindings.
			trial := make(Bindings)
			if match(alt, v, trial) {
				for k, val := range trial {
					b[k] = val
				}
				return true
			}
		}
		return false

	case PatTuple:
		if v.Kind != ValTuple {
			return false
		}
		idxs := tupleElementIndices(p, len(v.Elems))
		for i, idx := range idxs {
			if idx < 0 || idx >= len(v.Elems) {
				return false
			}
			if !match(p.Elems[i], v.Elems[idx], b) {
				return false
			}
		}
		return true

	case PatRecord:
		if v.Kind != ValRecord {
			return false
		}
		for _, fp := range p.Fields {
			fv, ok := v.Fields[fp.Name]
			if !ok {
				return false
			}
			if !match(fp.Pattern, fv, b) {
				return false
			}
		}
		return true

	case PatVariant:
		if v.Kind != ValVariant || v.Tag != p.Tag {
			return false
		}
		if p.Payload == nil {
			return true
		}
		return match(p.Payload, v.Payload, b)

	default:
		return false
	}
}

// Select dispatches value over the ordered arm list, first-match-wins. An
// arm is selected when its pattern matches and its guard (if any) accepts
// the bindings. It returns the selected arm index and the bindings, or
// ok=false when no arm matched.
func Select(arms []Arm, v *Value) (index int, b Bindings, ok bool) {
	for i, arm := range arms {
		bound, matched := Match(arm.Pattern, v)
		if !matched {
			continue
		}
		if arm.Guard != nil && arm.Guard.Pred != nil && !arm.Guard.Pred(bound) {
			continue
		}
		return i, bound, true
	}
	return -1, nil, false
}

// MustMatch destructures value with a pattern in an irrefutable position
// (a plain binding, not a conditional dispatch). A failure means the caller
// violated the irrefutability precondition and is reported as an error, not
// a verdict.
func MustMatch(p *Pattern, v *Value) (Bindings, error) {
	b, ok := Match(p, v)
	if !ok {
		return nil, &NotMatchedError{Pattern: p.String()}
	}
	return b, nil
}
