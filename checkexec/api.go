package checkexec

import (
	"context"
	"errors"
	"fmt"

	"github.com/speakeasy-api/patmatch"
)

// ErrAnalysisTooComplex reports that one match expression exceeded the
// configured resource ceilings (arm count, nesting depth, or node budget).
// The analysis of that expression is aborted outright; witnesses are never
// silently truncated into a partial report.
var ErrAnalysisTooComplex = errors.New("analysis too complex")

// Check analyzes one match expression: an ordered arm list dispatching over
// a value of the scrutinee shape.
//
// Structural defects (TypeMismatch, EmptyRangePattern,
// InconsistentOrBindings) are fatal to the affected arm only: the arm is
// excluded and analysis continues, so one pass surfaces every finding.
// Guarded arms are checked for reachability as if unguarded, but contribute
// zero coverage to later arms and to exhaustiveness, since their guard may
// reject at runtime.
//
// Example:
//
//	res, err := checkexec.Check(ctx, reg, colorID, arms)
//	if err != nil {
//	    // resource ceiling or unknown scrutinee, not a finding
//	}
//	for _, f := range res.Findings {
//	    fmt.Println(f)
//	}
func Check(ctx context.Context, reg *patmatch.Registry, scrutinee patmatch.ShapeID, arms []patmatch.Arm, opts ...CheckOptions) (*CheckResult, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0].withDefaults()
	}
	logger := opt.Logger
	if logger == nil {
		logger = NewLogger(ParseLogLevel(opt.LogLevel), opt.TimestampLayout, nil)
	}

	if _, err := reg.Lookup(scrutinee); err != nil {
		return nil, err
	}
	if len(arms) > opt.MaxArms {
		return nil, fmt.Errorf("%d arms exceed the limit of %d: %w", len(arms), opt.MaxArms, ErrAnalysisTooComplex)
	}

	c := &checker{reg: reg, opts: opt, log: logger, budget: opt.NodeBudget}
	res := &CheckResult{
		Reachable:   make([]bool, len(arms)),
		Bindings:    make([][]string, len(arms)),
		Fingerprint: fingerprints.FingerprintArms(arms),
	}
	shapes := []patmatch.ShapeID{scrutinee}

	// Structural validation. Invalid arms are reported and excluded.
	valid := make([]bool, len(arms))
	for i, arm := range arms {
		res.Bindings[i] = patmatch.BoundNames(arm.Pattern)
		if err := patmatch.Validate(reg, scrutinee, arm.Pattern); err != nil {
			res.Findings = append(res.Findings, structuralFinding(i, err))
			continue
		}
		valid[i] = true
	}

	// Reachability, arm by arm. covered accumulates the rows that count
	// toward coverage: only unguarded arms join it.
	var covered [][]*patmatch.Pattern
	for i, arm := range arms {
		if !valid[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		alts := topLevelAlternatives(arm.Pattern)
		armRows := make([][]*patmatch.Pattern, 0, len(alts))
		armUseful := false
		for j, alt := range alts {
			matrix := append(append([][]*patmatch.Pattern{}, covered...), armRows...)
			ws, err := c.useful(matrix, shapes, []*patmatch.Pattern{alt}, 0, 1)
			if err != nil {
				return nil, fmt.Errorf("arm %d: %w", i, err)
			}
			if len(ws) > 0 {
				armUseful = true
			} else if len(alts) > 1 {
				res.Findings = append(res.Findings, Finding{
					Kind:     FindingRedundantOrAlternative,
					ArmIndex: i,
					AltIndex: j,
				})
			}
			// Earlier alternatives shadow later ones within the same arm
			// regardless of the guard: both run under the same predicate.
			armRows = append(armRows, []*patmatch.Pattern{alt})
		}

		res.Reachable[i] = armUseful
		if !armUseful {
			res.Findings = append(res.Findings, Finding{Kind: FindingUnreachableArm, ArmIndex: i, AltIndex: -1})
		}
		if arm.Guard == nil {
			covered = append(covered, armRows...)
		}
		logger.With(map[string]any{"arm": i, "reachable": armUseful, "guarded": arm.Guard != nil}).
			Debugf("arm %d: %s", i, arm.Pattern)
	}

	// Exhaustiveness: is the wildcard still useful against everything the
	// unguarded arms cover?
	ws, err := c.useful(covered, shapes, []*patmatch.Pattern{patmatch.Wildcard()}, 0, opt.MaxWitnesses)
	if err != nil {
		return nil, err
	}
	if len(ws) == 0 {
		res.Exhaustive = true
	} else {
		res.Findings = append(res.Findings, Finding{
			Kind:      FindingNonExhaustive,
			ArmIndex:  -1,
			AltIndex:  -1,
			Witnesses: dedupeWitnesses(ws, opt.MaxWitnesses),
		})
	}

	logger.With(map[string]any{"arms": len(arms), "exhaustive": res.Exhaustive, "findings": len(res.Findings), "fingerprint": res.Fingerprint}).
		Infof("match analysis complete")
	return res, nil
}

// CheckBinding enforces the irrefutable-context rule for direct
// destructuring positions (outside conditional dispatch): the pattern must
// match every value of the shape. Violations are findings, not errors; a
// refutable pattern in a binding position is a static precondition
// violation of the host language, not a failure of the analysis itself.
//
// An or-pattern is permitted here, but one alternative already suffices to
// bind: alternatives shadowed by earlier ones are flagged redundant the
// same way they would be inside a match arm.
func CheckBinding(reg *patmatch.Registry, shape patmatch.ShapeID, p *patmatch.Pattern) ([]Finding, error) {
	if _, err := reg.Lookup(shape); err != nil {
		return nil, err
	}
	if err := patmatch.Validate(reg, shape, p); err != nil {
		return []Finding{structuralFinding(-1, err)}, nil
	}
	var findings []Finding
	if !patmatch.Irrefutable(reg, shape, p) {
		findings = append(findings, Finding{
			Kind:     FindingRefutablePattern,
			ArmIndex: -1,
			AltIndex: -1,
			Err:      fmt.Errorf("pattern %s can fail to match a value of its shape", p),
		})
	}
	if p.Kind == patmatch.PatOr {
		opts := DefaultOptions()
		c := &checker{reg: reg, opts: opts, log: NewNoopLogger(), budget: opts.NodeBudget}
		shapes := []patmatch.ShapeID{shape}
		var rows [][]*patmatch.Pattern
		for j, alt := range p.Alts {
			ws, err := c.useful(rows, shapes, []*patmatch.Pattern{alt}, 0, 1)
			if err != nil {
				return nil, err
			}
			if len(ws) == 0 {
				findings = append(findings, Finding{
					Kind:     FindingRedundantOrAlternative,
					ArmIndex: -1,
					AltIndex: j,
				})
			}
			rows = append(rows, []*patmatch.Pattern{alt})
		}
	}
	return findings, nil
}

// structuralFinding classifies a construction/validation error into its
// finding kind. multierr aggregates keep the first classifiable cause.
func structuralFinding(armIndex int, err error) Finding {
	kind := FindingTypeMismatch
	var emptyRange *patmatch.EmptyRangeError
	var orBindings *patmatch.InconsistentOrBindingsError
	switch {
	case errors.As(err, &emptyRange):
		kind = FindingEmptyRange
	case errors.As(err, &orBindings):
		kind = FindingInconsistentOrBindings
	}
	return Finding{Kind: kind, ArmIndex: armIndex, AltIndex: -1, Err: err}
}

// topLevelAlternatives splits a top-level or-pattern into its alternatives
// so each can carry its own reachability diagnostic.
func topLevelAlternatives(p *patmatch.Pattern) []*patmatch.Pattern {
	if p != nil && p.Kind == patmatch.PatOr {
		return p.Alts
	}
	return []*patmatch.Pattern{p}
}

// dedupeWitnesses drops duplicate witnesses while keeping synthesis order,
// then applies the cap. Witness vectors here always have a single column:
// the scrutinee itself.
func dedupeWitnesses(vecs [][]*Witness, max int) []*Witness {
	seen := make(map[string]bool, len(vecs))
	out := make([]*Witness, 0, len(vecs))
	for _, v := range vecs {
		if len(v) != 1 {
			continue
		}
		key := canonicalWitness(v[0])
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v[0])
		if len(out) >= max {
			break
		}
	}
	return out
}
