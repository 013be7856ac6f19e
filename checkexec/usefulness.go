package checkexec

import (
	"fmt"
	"sort"

	"github.com/speakeasy-api/patmatch"
)

// checker holds the transient state of one analysis call. It is built per
// Check invocation and discarded with it; nothing here outlives the call.
type checker struct {
	reg    *patmatch.Registry
	opts   CheckOptions
	log    Logger
	budget int
}

// useful computes the witness vectors matched by the query vector q but by
// no row of the matrix. An empty result means q is not useful relative to
// the rows. max bounds how many witness vectors are synthesized; recursion
// stops splitting once the bound is met.
//
// This is the specialization step of matrix-based usefulness checking: the
// first column is consumed by grouping rows on their behavior at that
// position, then the check recurses on the reduced arity.
func (c *checker) useful(rows [][]*patmatch.Pattern, shapes []patmatch.ShapeID, q []*patmatch.Pattern, depth, max int) ([][]*Witness, error) {
	if max <= 0 {
		return nil, nil
	}
	c.budget--
	if c.budget < 0 {
		return nil, fmt.Errorf("node budget %d exhausted: %w", c.opts.NodeBudget, ErrAnalysisTooComplex)
	}
	if depth > c.opts.MaxDepth {
		return nil, fmt.Errorf("nesting depth %d exceeded: %w", c.opts.MaxDepth, ErrAnalysisTooComplex)
	}

	// Zero columns left: q covers exactly one point of the (empty) product,
	// which is uncovered iff no row survived specialization.
	if len(q) == 0 {
		if len(rows) == 0 {
			return [][]*Witness{{}}, nil
		}
		return nil, nil
	}

	head := q[0]
	if head == nil {
		head = patmatch.Wildcard()
	}
	switch head.Kind {
	case patmatch.PatBinding:
		sub := head.Sub
		if sub == nil {
			sub = patmatch.Wildcard()
		}
		return c.useful(rows, shapes, replaceHead(q, sub), depth, max)
	case patmatch.PatOr:
		// The whole query is useful if any alternative is.
		var acc [][]*Witness
		for _, alt := range head.Alts {
			ws, err := c.useful(rows, shapes, replaceHead(q, alt), depth, max-len(acc))
			if err != nil {
				return nil, err
			}
			acc = append(acc, ws...)
			if len(acc) >= max {
				break
			}
		}
		return acc, nil
	}

	s, err := c.reg.Lookup(shapes[0])
	if err != nil {
		return nil, err
	}
	rows = expandRows(rows)

	switch s.Kind {
	case patmatch.ShapePrimitive:
		return c.usefulPrimitive(rows, shapes, q, head, s, depth, max)
	case patmatch.ShapeSum:
		return c.usefulSum(rows, shapes, q, head, s, depth, max)
	case patmatch.ShapeTuple:
		return c.usefulTuple(rows, shapes, q, head, s, depth, max)
	case patmatch.ShapeRecord:
		return c.usefulRecord(rows, shapes, q, head, s, depth, max)
	default:
		return nil, fmt.Errorf("shape %q has unknown kind %d", s.Name, s.Kind)
	}
}

// usefulPrimitive splits the query's interval at every boundary introduced
// by a row, yielding segments each row either fully covers or misses. Each
// segment is then an independent sub-check; uncovered segments surface as
// scalar or sub-range witnesses in ascending domain order.
func (c *checker) usefulPrimitive(rows [][]*patmatch.Pattern, shapes []patmatch.ShapeID, q []*patmatch.Pattern, head *patmatch.Pattern, s *patmatch.Shape, depth, max int) ([][]*Witness, error) {
	qiv := headInterval(head, s.Domain)

	// Segment start points: the query's own low bound plus every row bound
	// falling inside the query interval.
	starts := []int64{qiv.lo}
	for _, r := range rows {
		riv := headInterval(r[0], s.Domain)
		if riv.lo > qiv.lo && riv.lo <= qiv.hi {
			starts = append(starts, riv.lo)
		}
		if riv.hi >= qiv.lo && riv.hi < qiv.hi {
			starts = append(starts, riv.hi+1)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	starts = dedupeInt64(starts)

	var acc [][]*Witness
	for i, lo := range starts {
		hi := qiv.hi
		if i+1 < len(starts) {
			hi = starts[i+1] - 1
		}
		seg := interval{lo: lo, hi: hi}

		var subRows [][]*patmatch.Pattern
		for _, r := range rows {
			if headInterval(r[0], s.Domain).contains(seg) {
				subRows = append(subRows, popHead(r))
			}
		}
		ws, err := c.useful(subRows, shapes[1:], q[1:], depth+1, max-len(acc))
		if err != nil {
			return nil, err
		}
		wit := spanWitness(s.Domain, seg.lo, seg.hi)
		if seg.lo == s.Domain.Min && seg.hi == s.Domain.Max {
			// A segment spanning the whole domain means no row constrained
			// this column; keep the witness symbolic like the other kinds do.
			wit = anyWitness()
		}
		for _, w := range ws {
			acc = append(acc, prepend(wit, w))
		}
		if len(acc) >= max {
			break
		}
	}
	return acc, nil
}

// usefulSum case-splits on the discriminant. A concrete variant head
// specializes to that tag alone; a wildcard head tries every declared
// variant in declaration order unless no row constrains the column at all,
// in which case the column is skipped symbolically.
func (c *checker) usefulSum(rows [][]*patmatch.Pattern, shapes []patmatch.ShapeID, q []*patmatch.Pattern, head *patmatch.Pattern, s *patmatch.Shape, depth, max int) ([][]*Witness, error) {
	if head.Kind == patmatch.PatVariant {
		idx := s.VariantIndex(head.Tag)
		if idx < 0 {
			return nil, &patmatch.TypeMismatchError{Shape: s.Name, Reason: fmt.Sprintf("no variant %q declared", head.Tag)}
		}
		return c.usefulSumVariant(rows, shapes, q, head, s, idx, depth, max)
	}

	anyVariantHead := false
	for _, r := range rows {
		if r[0].Kind == patmatch.PatVariant {
			anyVariantHead = true
			break
		}
	}
	if !anyVariantHead {
		// Column unconstrained: every row head is a wildcard here.
		subRows := make([][]*patmatch.Pattern, len(rows))
		for i, r := range rows {
			subRows[i] = popHead(r)
		}
		ws, err := c.useful(subRows, shapes[1:], q[1:], depth+1, max)
		if err != nil {
			return nil, err
		}
		return prependAll(anyWitness(), ws), nil
	}

	var acc [][]*Witness
	for idx := range s.Variants {
		ws, err := c.usefulSumVariant(rows, shapes, q, patmatch.Wildcard(), s, idx, depth, max-len(acc))
		if err != nil {
			return nil, err
		}
		acc = append(acc, ws...)
		if len(acc) >= max {
			break
		}
	}
	return acc, nil
}

func (c *checker) usefulSumVariant(rows [][]*patmatch.Pattern, shapes []patmatch.ShapeID, q []*patmatch.Pattern, head *patmatch.Pattern, s *patmatch.Shape, idx, depth, max int) ([][]*Witness, error) {
	v := s.Variants[idx]
	hasPayload := v.Payload != patmatch.NoShape

	var subRows [][]*patmatch.Pattern
	for _, r := range rows {
		switch r[0].Kind {
		case patmatch.PatVariant:
			if r[0].Tag == v.Tag {
				subRows = append(subRows, pushCols(variantSubpatterns(r[0], hasPayload), popHead(r)))
			}
		default: // wildcard head covers every variant
			subRows = append(subRows, pushCols(variantSubpatterns(r[0], hasPayload), popHead(r)))
		}
	}

	subShapes := shapes[1:]
	if hasPayload {
		subShapes = append([]patmatch.ShapeID{v.Payload}, shapes[1:]...)
	}
	subQ := pushCols(variantSubpatterns(head, hasPayload), q[1:])

	ws, err := c.useful(subRows, subShapes, subQ, depth+1, max)
	if err != nil {
		return nil, err
	}

	k := 0
	if hasPayload {
		k = 1
	}
	return wrapVectors(ws, k, func(sub []*Witness) *Witness {
		w := &Witness{Kind: WitVariant, Tag: v.Tag}
		if len(sub) == 1 {
			w.Payload = sub[0]
		}
		return w
	}), nil
}

func (c *checker) usefulTuple(rows [][]*patmatch.Pattern, shapes []patmatch.ShapeID, q []*patmatch.Pattern, head *patmatch.Pattern, s *patmatch.Shape, depth, max int) ([][]*Witness, error) {
	arity := len(s.Elements)

	if head.Kind != patmatch.PatTuple {
		constrained := false
		for _, r := range rows {
			if r[0].Kind == patmatch.PatTuple {
				constrained = true
				break
			}
		}
		if !constrained {
			subRows := make([][]*patmatch.Pattern, len(rows))
			for i, r := range rows {
				subRows[i] = popHead(r)
			}
			ws, err := c.useful(subRows, shapes[1:], q[1:], depth+1, max)
			if err != nil {
				return nil, err
			}
			return prependAll(anyWitness(), ws), nil
		}
	}

	var subRows [][]*patmatch.Pattern
	for _, r := range rows {
		subRows = append(subRows, pushCols(tupleSubpatterns(r[0], arity), popHead(r)))
	}
	subShapes := append(append([]patmatch.ShapeID{}, s.Elements...), shapes[1:]...)
	subQ := pushCols(tupleSubpatterns(head, arity), q[1:])

	ws, err := c.useful(subRows, subShapes, subQ, depth+1, max)
	if err != nil {
		return nil, err
	}
	return wrapVectors(ws, arity, func(sub []*Witness) *Witness {
		return &Witness{Kind: WitTuple, Elems: sub}
	}), nil
}

func (c *checker) usefulRecord(rows [][]*patmatch.Pattern, shapes []patmatch.ShapeID, q []*patmatch.Pattern, head *patmatch.Pattern, s *patmatch.Shape, depth, max int) ([][]*Witness, error) {
	if head.Kind != patmatch.PatRecord {
		constrained := false
		for _, r := range rows {
			if r[0].Kind == patmatch.PatRecord {
				constrained = true
				break
			}
		}
		if !constrained {
			subRows := make([][]*patmatch.Pattern, len(rows))
			for i, r := range rows {
				subRows[i] = popHead(r)
			}
			ws, err := c.useful(subRows, shapes[1:], q[1:], depth+1, max)
			if err != nil {
				return nil, err
			}
			return prependAll(anyWitness(), ws), nil
		}
	}

	var subRows [][]*patmatch.Pattern
	for _, r := range rows {
		subRows = append(subRows, pushCols(recordSubpatterns(r[0], s), popHead(r)))
	}
	fieldShapes := make([]patmatch.ShapeID, len(s.Fields))
	for i, f := range s.Fields {
		fieldShapes[i] = f.Shape
	}
	subShapes := append(fieldShapes, shapes[1:]...)
	subQ := pushCols(recordSubpatterns(head, s), q[1:])

	ws, err := c.useful(subRows, subShapes, subQ, depth+1, max)
	if err != nil {
		return nil, err
	}
	fields := s.Fields
	name := s.Name
	return wrapVectors(ws, len(fields), func(sub []*Witness) *Witness {
		w := &Witness{Kind: WitRecord, TypeName: name}
		for i, f := range fields {
			w.Fields = append(w.Fields, WitnessField{Name: f.Name, Witness: sub[i]})
		}
		return w
	}), nil
}

// wrapVectors folds the first k entries of each witness vector back into a
// single constructor witness, undoing one specialization step.
func wrapVectors(vecs [][]*Witness, k int, wrap func([]*Witness) *Witness) [][]*Witness {
	out := make([][]*Witness, 0, len(vecs))
	for _, v := range vecs {
		out = append(out, prepend(wrap(v[:k]), v[k:]))
	}
	return out
}

func prepend(w *Witness, rest []*Witness) []*Witness {
	nv := make([]*Witness, 0, len(rest)+1)
	nv = append(nv, w)
	return append(nv, rest...)
}

func prependAll(w *Witness, vecs [][]*Witness) [][]*Witness {
	out := make([][]*Witness, 0, len(vecs))
	for _, v := range vecs {
		out = append(out, prepend(w, v))
	}
	return out
}

func dedupeInt64(xs []int64) []int64 {
	out := xs[:0]
	for i, x := range xs {
		if i == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
