package checkexec

import (
	"fmt"
	"strings"
)

// FindingKind enumerates everything the checker can report. Structural kinds
// reject one pattern outright; static-semantic kinds are collected so a
// single pass surfaces every finding; none of them abort the analysis run.
type FindingKind uint8

const (
	// Static-semantic findings
	FindingNonExhaustive FindingKind = iota
	FindingUnreachableArm
	FindingRedundantOrAlternative
	FindingRefutablePattern

	// Structural findings (surfaced from construction/validation)
	FindingTypeMismatch
	FindingEmptyRange
	FindingInconsistentOrBindings
)

func (k FindingKind) String() string {
	switch k {
	case FindingNonExhaustive:
		return "NonExhaustive"
	case FindingUnreachableArm:
		return "UnreachableArm"
	case FindingRedundantOrAlternative:
		return "RedundantOrAlternative"
	case FindingRefutablePattern:
		return "RefutablePatternInIrrefutableContext"
	case FindingTypeMismatch:
		return "TypeMismatch"
	case FindingEmptyRange:
		return "EmptyRangePattern"
	case FindingInconsistentOrBindings:
		return "InconsistentOrBindings"
	default:
		return "Unknown"
	}
}

// Severity is the checker's default classification; the whole-compilation
// caller decides the final policy (e.g. promoting warnings in strict mode).
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Finding is one structured analysis result. Fields beyond Kind are
// populated per kind: ArmIndex for arm-scoped findings, AltIndex for
// or-alternative findings, Witnesses for NonExhaustive, Err for structural
// findings carrying the underlying construction/validation error.
type Finding struct {
	Kind      FindingKind
	ArmIndex  int        // -1 when not arm-scoped
	AltIndex  int        // -1 when not alternative-scoped
	Witnesses []*Witness // NonExhaustive only
	Err       error      // structural findings only
}

// Severity returns the default severity for the finding's kind.
func (f Finding) Severity() Severity {
	switch f.Kind {
	case FindingUnreachableArm, FindingRedundantOrAlternative:
		return SeverityWarning
	default:
		return SeverityError
	}
}

func (f Finding) String() string {
	switch f.Kind {
	case FindingNonExhaustive:
		parts := make([]string, len(f.Witnesses))
		for i, w := range f.Witnesses {
			parts[i] = w.String()
		}
		return fmt.Sprintf("NonExhaustive: uncovered %s", strings.Join(parts, ", "))
	case FindingUnreachableArm:
		return fmt.Sprintf("UnreachableArm: arm %d can never match", f.ArmIndex)
	case FindingRedundantOrAlternative:
		return fmt.Sprintf("RedundantOrAlternative: arm %d alternative %d is already covered", f.ArmIndex, f.AltIndex)
	case FindingRefutablePattern:
		return fmt.Sprintf("RefutablePatternInIrrefutableContext: %v", f.Err)
	case FindingTypeMismatch, FindingEmptyRange, FindingInconsistentOrBindings:
		if f.ArmIndex >= 0 {
			return fmt.Sprintf("%s: arm %d: %v", f.Kind, f.ArmIndex, f.Err)
		}
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	default:
		return "Unknown finding"
	}
}

// CheckResult is the full outcome of analyzing one match expression.
type CheckResult struct {
	// Findings in deterministic order: structural findings in arm order,
	// then per-arm reachability findings, then exhaustiveness.
	Findings []Finding

	// Reachable has one flag per input arm. Arms with structural findings
	// are excluded from analysis and reported unreachable=false.
	Reachable []bool

	// Exhaustive reports whether every value of the scrutinee shape is
	// covered by some unguarded arm.
	Exhaustive bool

	// Bindings names, per arm, the variables the arm's pattern binds
	// (sorted). Together with the evaluator's Match contract this is the
	// extraction interface a code generator consumes.
	Bindings [][]string

	// Fingerprint is a stable hash of the analyzed arm list (pattern
	// structure plus guard presence). Equal fingerprints yield identical
	// diagnostics, so callers memoize analysis results on it.
	Fingerprint string
}

// HasErrors reports whether any finding defaults to error severity.
func (r *CheckResult) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity() == SeverityError {
			return true
		}
	}
	return false
}

// String summarizes the result for debugging.
func (r *CheckResult) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("CheckResult{exhaustive: %t, findings: %d}", r.Exhaustive, len(r.Findings))
}
