package checkexec

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/speakeasy-api/patmatch"
)

func TestCheck_MissingVariantIsWitnessed(t *testing.T) {
	reg, color := colorRegistry(t)

	res, err := Check(context.Background(), reg, color, arms(
		patmatch.VariantOf("Red", nil),
		patmatch.VariantOf("Green", nil),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if res.Exhaustive {
		t.Fatal("two of three variants must not be exhaustive")
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding")
	}
	if diff := cmp.Diff([]string{"Blue"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_WildcardMakesExhaustive(t *testing.T) {
	reg, color := colorRegistry(t)

	res, err := Check(context.Background(), reg, color, arms(
		patmatch.VariantOf("Red", nil),
		patmatch.Wildcard(),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !res.Exhaustive {
		t.Error("wildcard-terminated arm list must be exhaustive")
	}
	if len(res.Findings) != 0 {
		t.Errorf("unexpected findings: %v", res.Findings)
	}
	if diff := cmp.Diff([]bool{true, true}, res.Reachable); diff != "" {
		t.Errorf("reachability mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_AdjacentRangesCoverDomain(t *testing.T) {
	reg, pct := percentRegistry(t)

	res, err := Check(context.Background(), reg, pct, arms(
		patmatch.MustRange(0, 10, true),
		patmatch.MustRange(11, 50, false),
		patmatch.MustRange(50, 100, true),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !res.Exhaustive {
		t.Error("adjacent ranges spanning [0,100] must be exhaustive")
	}
	if diff := cmp.Diff([]bool{true, true, true}, res.Reachable); diff != "" {
		t.Errorf("reachability mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_RangesWithWildcardFallback(t *testing.T) {
	reg, pct := percentRegistry(t)

	res, err := Check(context.Background(), reg, pct, arms(
		patmatch.MustRange(1, 5, true),
		patmatch.MustRange(6, 10, true),
		patmatch.Wildcard(),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !res.Exhaustive || len(res.Findings) != 0 {
		t.Errorf("expected clean result, got %v", res.Findings)
	}
	if diff := cmp.Diff([]bool{true, true, true}, res.Reachable); diff != "" {
		t.Errorf("reachability mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_TupleCoveredThroughWildcardElement(t *testing.T) {
	reg, pair := boolPairRegistry(t)

	res, err := Check(context.Background(), reg, pair, arms(
		patmatch.TupleOf(patmatch.BoolLit(true), patmatch.BoolLit(true)),
		patmatch.TupleOf(patmatch.BoolLit(true), patmatch.BoolLit(false)),
		patmatch.TupleOf(patmatch.BoolLit(false), patmatch.Wildcard()),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !res.Exhaustive {
		t.Errorf("(false, _) closes the remaining cases: %v", res.Findings)
	}
	if diff := cmp.Diff([]bool{true, true, true}, res.Reachable); diff != "" {
		t.Errorf("reachability mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_RangeGapIsWitnessedAsSpan(t *testing.T) {
	reg, pct := percentRegistry(t)

	res, err := Check(context.Background(), reg, pct, arms(
		patmatch.MustRange(0, 10, true),
		patmatch.MustRange(20, 100, true),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding for the gap")
	}
	if diff := cmp.Diff([]string{"11..=19"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_SinglePointGap(t *testing.T) {
	reg, pct := percentRegistry(t)

	res, err := Check(context.Background(), reg, pct, arms(
		patmatch.MustRange(0, 49, true),
		patmatch.MustRange(51, 100, true),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding")
	}
	// A one-point gap collapses to a scalar witness, not a span.
	if diff := cmp.Diff([]string{"50"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_TupleWitness(t *testing.T) {
	reg, pair := boolPairRegistry(t)

	res, err := Check(context.Background(), reg, pair, arms(
		patmatch.TupleOf(patmatch.BoolLit(false), patmatch.Wildcard()),
		patmatch.TupleOf(patmatch.Wildcard(), patmatch.BoolLit(true)),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding")
	}
	if diff := cmp.Diff([]string{"(true, false)"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_RecordWitnessUsesDeclarationOrder(t *testing.T) {
	b := patmatch.NewRegistryBuilder()
	i4 := b.Primitive("i4", patmatch.IntDomain(0, 3))
	point := b.Record("Point",
		patmatch.Field{Name: "x", Shape: i4},
		patmatch.Field{Name: "y", Shape: i4},
	)
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := Check(context.Background(), reg, point, arms(
		patmatch.RecordOf(true, patmatch.FieldPat("x", patmatch.Lit(0))),
		patmatch.RecordOf(true, patmatch.FieldPat("y", patmatch.Lit(0))),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding")
	}
	if diff := cmp.Diff([]string{"Point{x: 1..=3, y: 1..=3}"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_PayloadConstraintLeaksIntoWitness(t *testing.T) {
	reg, option := optionRegistry(t)

	res, err := Check(context.Background(), reg, option, arms(
		patmatch.VariantOf("None", nil),
		patmatch.VariantOf("Some", patmatch.MustRange(0, 127, true)),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding for negative payloads")
	}
	if diff := cmp.Diff([]string{"Some(-128..=-1)"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_WitnessCapIsHonored(t *testing.T) {
	b := patmatch.NewRegistryBuilder()
	id := b.Sum("Compass",
		patmatch.Variant{Tag: "North"},
		patmatch.Variant{Tag: "East"},
		patmatch.Variant{Tag: "South"},
		patmatch.Variant{Tag: "West"},
	)
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	opts := quietOptions()
	opts.MaxWitnesses = 2
	res, err := Check(context.Background(), reg, id, arms(
		patmatch.VariantOf("South", nil),
	), opts)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding")
	}
	// Declaration order, cut at the cap.
	if diff := cmp.Diff([]string{"North", "East"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_EmptyArmListOnSumScrutinee(t *testing.T) {
	reg, color := colorRegistry(t)

	res, err := Check(context.Background(), reg, color, nil, quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if res.Exhaustive {
		t.Error("no arms cannot be exhaustive over an inhabited shape")
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding")
	}
	// No arm constrains the scrutinee, so the witness stays symbolic.
	if diff := cmp.Diff([]string{"_"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_UnconstrainedPrimitiveStaysSymbolic(t *testing.T) {
	reg, pct := percentRegistry(t)

	// No arm constrains the scrutinee at all, so the witness must stay the
	// symbolic placeholder rather than spelling out the whole domain.
	res, err := Check(context.Background(), reg, pct, nil, quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding")
	}
	if diff := cmp.Diff([]string{"_"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_UnconstrainedTupleElementStaysSymbolic(t *testing.T) {
	reg, pair := boolPairRegistry(t)

	// The second element is never constrained by any row, so only the
	// first element is made concrete in the witness.
	res, err := Check(context.Background(), reg, pair, arms(
		patmatch.TupleOf(patmatch.BoolLit(true), patmatch.Wildcard()),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	f := findKind(res, FindingNonExhaustive)
	if f == nil {
		t.Fatal("expected a NonExhaustive finding")
	}
	if diff := cmp.Diff([]string{"(false, _)"}, witnessStrings(*f)); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_UnknownScrutinee(t *testing.T) {
	reg, _ := colorRegistry(t)
	if _, err := Check(context.Background(), reg, patmatch.ShapeID(99), nil, quietOptions()); err == nil {
		t.Fatal("expected an error for an undeclared scrutinee shape")
	}
}
