package checkexec

import (
	"context"
	"errors"
	"testing"

	"github.com/speakeasy-api/patmatch"
)

func TestCheck_ArmCountCeiling(t *testing.T) {
	reg, pct := percentRegistry(t)

	opts := quietOptions()
	opts.MaxArms = 1
	_, err := Check(context.Background(), reg, pct, arms(
		patmatch.Lit(0),
		patmatch.Wildcard(),
	), opts)
	if !errors.Is(err, ErrAnalysisTooComplex) {
		t.Fatalf("expected ErrAnalysisTooComplex, got %v", err)
	}
}

func TestCheck_NodeBudgetExhaustion(t *testing.T) {
	reg, color := colorRegistry(t)

	opts := quietOptions()
	opts.NodeBudget = 1
	_, err := Check(context.Background(), reg, color, arms(
		patmatch.VariantOf("Red", nil),
		patmatch.Wildcard(),
	), opts)
	if !errors.Is(err, ErrAnalysisTooComplex) {
		t.Fatalf("expected ErrAnalysisTooComplex, got %v", err)
	}
}

func TestCheck_DepthCeiling(t *testing.T) {
	b := patmatch.NewRegistryBuilder()
	boolID := b.Primitive("bool", patmatch.BoolDomain())
	inner := b.Tuple("Inner", boolID, boolID)
	outer := b.Tuple("Outer", inner, boolID)
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	opts := quietOptions()
	opts.MaxDepth = 1
	_, err = Check(context.Background(), reg, outer, arms(
		patmatch.TupleOf(
			patmatch.TupleOf(patmatch.BoolLit(true), patmatch.Wildcard()),
			patmatch.Wildcard(),
		),
	), opts)
	if !errors.Is(err, ErrAnalysisTooComplex) {
		t.Fatalf("expected ErrAnalysisTooComplex, got %v", err)
	}
}

func TestCheck_CanceledContext(t *testing.T) {
	reg, color := colorRegistry(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Check(ctx, reg, color, arms(patmatch.Wildcard()), quietOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCheck_DefaultBudgetsHandleRealisticMatches(t *testing.T) {
	// A realistically sized match over nested sums completes well inside
	// the default ceilings.
	b := patmatch.NewRegistryBuilder()
	i8 := b.Primitive("i8", patmatch.IntDomain(-128, 127))
	option := b.Sum("Option",
		patmatch.Variant{Tag: "None", Payload: patmatch.NoShape},
		patmatch.Variant{Tag: "Some", Payload: i8},
	)
	pair := b.Tuple("Pair", option, option)
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := Check(context.Background(), reg, pair, arms(
		patmatch.TupleOf(patmatch.VariantOf("None", nil), patmatch.VariantOf("None", nil)),
		patmatch.TupleOf(patmatch.VariantOf("Some", patmatch.Bind("a", nil)), patmatch.Wildcard()),
		patmatch.TupleOf(patmatch.Wildcard(), patmatch.VariantOf("Some", patmatch.Bind("b", nil))),
	), quietOptions())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !res.Exhaustive {
		t.Errorf("expected exhaustive: %v", res.Findings)
	}
}
