package checkexec

import (
	"github.com/speakeasy-api/patmatch"
)

// The usefulness algorithm works on a matrix of pattern row vectors over a
// vector of column shapes. Each specialization step consumes the first
// column and replaces it with the chosen constructor's sub-columns.

// interval is an inclusive primitive coverage interval in domain ordinals.
type interval struct {
	lo, hi int64
}

func (iv interval) contains(other interval) bool {
	return iv.lo <= other.lo && iv.hi >= other.hi
}

// headInterval maps a normalized primitive head pattern to its coverage
// interval. Wildcards cover the whole domain; exclusive ranges are
// normalized to inclusive bounds (construction already rejected empty ones).
func headInterval(p *patmatch.Pattern, d patmatch.Domain) interval {
	switch p.Kind {
	case patmatch.PatLiteral:
		return interval{lo: p.Value, hi: p.Value}
	case patmatch.PatRange:
		hi := p.Hi
		if !p.Inclusive {
			hi--
		}
		return interval{lo: maxInt64(p.Lo, d.Min), hi: minInt64(hi, d.Max)}
	default:
		return interval{lo: d.Min, hi: d.Max}
	}
}

// expandRows rewrites each row so its head is a plain constructor or
// wildcard: bindings are unwrapped and or-patterns fan out into one row per
// alternative. Row order is preserved, which keeps diagnostics deterministic.
func expandRows(rows [][]*patmatch.Pattern) [][]*patmatch.Pattern {
	out := make([][]*patmatch.Pattern, 0, len(rows))
	for _, r := range rows {
		out = appendExpanded(out, r)
	}
	return out
}

func appendExpanded(out [][]*patmatch.Pattern, r []*patmatch.Pattern) [][]*patmatch.Pattern {
	head := r[0]
	if head == nil {
		head = patmatch.Wildcard()
	}
	switch head.Kind {
	case patmatch.PatBinding:
		sub := head.Sub
		if sub == nil {
			sub = patmatch.Wildcard()
		}
		return appendExpanded(out, replaceHead(r, sub))
	case patmatch.PatOr:
		for _, alt := range head.Alts {
			out = appendExpanded(out, replaceHead(r, alt))
		}
		return out
	default:
		if r[0] == nil {
			r = replaceHead(r, head)
		}
		return append(out, r)
	}
}

func replaceHead(r []*patmatch.Pattern, head *patmatch.Pattern) []*patmatch.Pattern {
	nr := make([]*patmatch.Pattern, len(r))
	nr[0] = head
	copy(nr[1:], r[1:])
	return nr
}

// popHead drops the first column of a row.
func popHead(r []*patmatch.Pattern) []*patmatch.Pattern {
	return r[1:]
}

// pushCols prepends sub-column patterns in place of a consumed head.
func pushCols(sub []*patmatch.Pattern, rest []*patmatch.Pattern) []*patmatch.Pattern {
	nr := make([]*patmatch.Pattern, 0, len(sub)+len(rest))
	nr = append(nr, sub...)
	return append(nr, rest...)
}

// tupleSubpatterns expands a tuple head to the shape's full arity, filling
// the rest marker's span with wildcards. The head must have passed Validate.
func tupleSubpatterns(p *patmatch.Pattern, arity int) []*patmatch.Pattern {
	if p.Kind != patmatch.PatTuple {
		return wildcards(arity)
	}
	out := make([]*patmatch.Pattern, arity)
	for i := range out {
		out[i] = patmatch.Wildcard()
	}
	if p.RestPos == patmatch.NoRest {
		copy(out, p.Elems)
		return out
	}
	copy(out, p.Elems[:p.RestPos])
	suffix := p.Elems[p.RestPos:]
	copy(out[arity-len(suffix):], suffix)
	return out
}

// recordSubpatterns expands a record head into the shape's field declaration
// order, wildcarding fields the pattern leaves to its rest marker.
func recordSubpatterns(p *patmatch.Pattern, s *patmatch.Shape) []*patmatch.Pattern {
	out := wildcards(len(s.Fields))
	if p.Kind != patmatch.PatRecord {
		return out
	}
	for _, fp := range p.Fields {
		if idx := s.FieldIndex(fp.Name); idx >= 0 {
			out[idx] = fp.Pattern
		}
	}
	return out
}

// variantSubpatterns yields the payload column (if any) for a variant head.
func variantSubpatterns(p *patmatch.Pattern, hasPayload bool) []*patmatch.Pattern {
	if !hasPayload {
		return nil
	}
	if p.Kind == patmatch.PatVariant && p.Payload != nil {
		return []*patmatch.Pattern{p.Payload}
	}
	return []*patmatch.Pattern{patmatch.Wildcard()}
}

func wildcards(n int) []*patmatch.Pattern {
	out := make([]*patmatch.Pattern, n)
	for i := range out {
		out[i] = patmatch.Wildcard()
	}
	return out
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
