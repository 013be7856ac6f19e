package patmatch

import (
	"fmt"
	"strings"
)

// Structural errors reject a single pattern at construction or validation
// time. They are fatal to that pattern only, never to a whole analysis run.

// UnknownTypeError reports a registry lookup for an undeclared shape.
type UnknownTypeError struct {
	ID ShapeID
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type: shape #%d is not declared in the registry", e.ID)
}

// TypeMismatchError reports a pattern that does not structurally match the
// shape it is checked against.
type TypeMismatchError struct {
	Shape  string // display name of the offending shape
	Reason string
}

func (e *TypeMismatchError) Error() string {
	if e.Shape == "" {
		return "type mismatch: " + e.Reason
	}
	return fmt.Sprintf("type mismatch against %s: %s", e.Shape, e.Reason)
}

// EmptyRangeError reports a range pattern that can match no value.
// Ranges are only well-formed over ordered primitive domains, so emptiness
// is decidable at construction time.
type EmptyRangeError struct {
	Lo, Hi    int64
	Inclusive bool
}

func (e *EmptyRangeError) Error() string {
	op := "..<"
	if e.Inclusive {
		op = "..="
	}
	return fmt.Sprintf("empty range pattern %d%s%d matches no value", e.Lo, op, e.Hi)
}

// InconsistentOrBindingsError reports an or-pattern whose alternatives bind
// different variable sets. Only one branch executes at runtime, but any branch
// may supply the bindings used by the arm body, so the sets must be identical.
type InconsistentOrBindingsError struct {
	Want []string // names bound by the first alternative
	Got  []string // names bound by the offending alternative
	Alt  int      // index of the offending alternative
}

func (e *InconsistentOrBindingsError) Error() string {
	return fmt.Sprintf("or-pattern alternative %d binds {%s}, but earlier alternatives bind {%s}",
		e.Alt, strings.Join(e.Got, ", "), strings.Join(e.Want, ", "))
}

// NotMatchedError reports a failed irrefutable destructuring. Reaching it
// means the caller violated the precondition that the pattern is irrefutable
// for the value's shape (an upstream type-checking bug).
type NotMatchedError struct {
	Pattern string
}

func (e *NotMatchedError) Error() string {
	return fmt.Sprintf("value does not match pattern %s in irrefutable position", e.Pattern)
}
