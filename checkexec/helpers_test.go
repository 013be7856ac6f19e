package checkexec

import (
	"testing"

	"github.com/speakeasy-api/patmatch"
)

// Shared fixtures for the analysis tests.

func colorRegistry(t *testing.T) (*patmatch.Registry, patmatch.ShapeID) {
	t.Helper()
	b := patmatch.NewRegistryBuilder()
	id := b.Sum("Color",
		patmatch.Variant{Tag: "Red", Payload: patmatch.NoShape},
		patmatch.Variant{Tag: "Green", Payload: patmatch.NoShape},
		patmatch.Variant{Tag: "Blue", Payload: patmatch.NoShape},
	)
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return reg, id
}

func optionRegistry(t *testing.T) (*patmatch.Registry, patmatch.ShapeID) {
	t.Helper()
	b := patmatch.NewRegistryBuilder()
	i8 := b.Primitive("i8", patmatch.IntDomain(-128, 127))
	id := b.Sum("Option",
		patmatch.Variant{Tag: "None", Payload: patmatch.NoShape},
		patmatch.Variant{Tag: "Some", Payload: i8},
	)
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return reg, id
}

func percentRegistry(t *testing.T) (*patmatch.Registry, patmatch.ShapeID) {
	t.Helper()
	b := patmatch.NewRegistryBuilder()
	id := b.Primitive("percent", patmatch.IntDomain(0, 100))
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return reg, id
}

func boolPairRegistry(t *testing.T) (*patmatch.Registry, patmatch.ShapeID) {
	t.Helper()
	b := patmatch.NewRegistryBuilder()
	boolID := b.Primitive("bool", patmatch.BoolDomain())
	id := b.Tuple("Pair", boolID, boolID)
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return reg, id
}

func arms(ps ...*patmatch.Pattern) []patmatch.Arm {
	out := make([]patmatch.Arm, len(ps))
	for i, p := range ps {
		out[i] = patmatch.Arm{Pattern: p, Body: i}
	}
	return out
}

// quietOptions silences analysis logging in tests.
func quietOptions() CheckOptions {
	o := DefaultOptions()
	o.Logger = NewNoopLogger()
	return o
}

func witnessStrings(f Finding) []string {
	out := make([]string, len(f.Witnesses))
	for i, w := range f.Witnesses {
		out[i] = w.String()
	}
	return out
}

// findKind returns the first finding of the given kind, or nil.
func findKind(res *CheckResult, kind FindingKind) *Finding {
	for i := range res.Findings {
		if res.Findings[i].Kind == kind {
			return &res.Findings[i]
		}
	}
	return nil
}
