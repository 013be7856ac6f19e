package suite

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/speakeasy-api/patmatch/checkexec"
)

const colorSuite = `
shapes:
  - name: Color
    sum:
      - tag: Red
      - tag: Green
      - tag: Blue
matches:
  - name: traffic
    scrutinee: Color
    arms:
      - pattern: {variant: {tag: Red}}
        body: 0
      - pattern: {variant: {tag: Green}}
        body: 1
`

func TestLoad_SumAndMatch(t *testing.T) {
	s, err := Load(strings.NewReader(colorSuite))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Matches) != 1 || s.Matches[0].Name != "traffic" {
		t.Fatalf("unexpected matches: %+v", s.Matches)
	}

	outs := s.Run(context.Background(), quiet())
	if len(outs) != 1 {
		t.Fatalf("expected one outcome, got %d", len(outs))
	}
	out := outs[0]
	if out.Err != nil {
		t.Fatalf("analysis failed: %v", out.Err)
	}
	if out.Result.Exhaustive {
		t.Error("Blue is uncovered; suite must be non-exhaustive")
	}
	var witnesses []string
	for _, f := range out.Result.Findings {
		if f.Kind == checkexec.FindingNonExhaustive {
			for _, w := range f.Witnesses {
				witnesses = append(witnesses, w.String())
			}
		}
	}
	if diff := cmp.Diff([]string{"Blue"}, witnesses); diff != "" {
		t.Errorf("witness mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PrimitivesAndPatternForms(t *testing.T) {
	doc := `
shapes:
  - name: percent
    primitive: {kind: int, min: 0, max: 100}
matches:
  - name: grades
    scrutinee: percent
    arms:
      - pattern: {range: {lo: 0, hi: 50, exclusive: true}}
        body: 0
      - pattern: {or: [{lit: 50}, {range: {lo: 51, hi: 100}}]}
        body: 1
`
	s, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	outs := s.Run(context.Background(), quiet())
	if outs[0].Err != nil {
		t.Fatalf("analysis failed: %v", outs[0].Err)
	}
	if !outs[0].Result.Exhaustive {
		t.Errorf("expected exhaustive coverage of [0,100]: %v", outs[0].Result.Findings)
	}
}

func TestLoad_RecursiveShapes(t *testing.T) {
	doc := `
shapes:
  - name: i8
    primitive: {kind: int, min: -128, max: 127}
  - name: ConsCell
    tuple: [i8, List]
  - name: List
    sum:
      - tag: Nil
      - {tag: Cons, payload: ConsCell}
matches:
  - name: heads
    scrutinee: List
    arms:
      - pattern: {variant: {tag: Nil}}
        body: 0
      - pattern: {variant: {tag: Cons, payload: {tuple: {elems: [{bind: {name: head}}, {wildcard: true}]}}}}
        body: 1
`
	s, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	outs := s.Run(context.Background(), quiet())
	if outs[0].Err != nil {
		t.Fatalf("analysis failed: %v", outs[0].Err)
	}
	if !outs[0].Result.Exhaustive {
		t.Errorf("Nil|Cons(_, _) covers every list: %v", outs[0].Result.Findings)
	}
	if diff := cmp.Diff([][]string{{}, {"head"}}, outs[0].Result.Bindings); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_GuardsAreOpaque(t *testing.T) {
	doc := `
shapes:
  - name: flag
    primitive: {kind: bool}
matches:
  - name: guarded
    scrutinee: flag
    arms:
      - pattern: {wildcard: true}
        guard: is_ready
        body: 0
`
	s, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	arm := s.Matches[0].Arms[0]
	if arm.Guard == nil || arm.Guard.ID != "is_ready" {
		t.Fatalf("guard handle not carried: %+v", arm.Guard)
	}

	outs := s.Run(context.Background(), quiet())
	if outs[0].Result.Exhaustive {
		t.Error("a guarded wildcard alone must not be exhaustive")
	}
}

func TestLoad_Bindings(t *testing.T) {
	doc := `
shapes:
  - name: flag
    primitive: {kind: bool}
  - name: Pair
    tuple: [flag, flag]
bindings:
  - name: destructure
    shape: Pair
    pattern: {tuple: {elems: [{bind: {name: a}}, {bind: {name: b}}]}}
  - name: refutable
    shape: Pair
    pattern: {tuple: {elems: [{lit: true}, {bind: {name: b}}]}}
`
	s, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	outs := s.Run(context.Background(), quiet())
	if len(outs) != 2 {
		t.Fatalf("expected two outcomes, got %d", len(outs))
	}
	if len(outs[0].Findings) != 0 {
		t.Errorf("irrefutable destructuring flagged: %v", outs[0].Findings)
	}
	if len(outs[1].Findings) != 1 || outs[1].Findings[0].Kind != checkexec.FindingRefutablePattern {
		t.Errorf("expected a refutable-pattern finding, got %v", outs[1].Findings)
	}
}

func TestLoad_CharLiterals(t *testing.T) {
	doc := `
shapes:
  - name: letter
    primitive: {kind: char}
matches:
  - name: vowels
    scrutinee: letter
    arms:
      - pattern: {or: [{lit: a}, {lit: e}, {lit: i}, {lit: o}, {lit: u}]}
        body: 0
      - pattern: {wildcard: true}
        body: 1
`
	s, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	outs := s.Run(context.Background(), quiet())
	if outs[0].Err != nil {
		t.Fatalf("analysis failed: %v", outs[0].Err)
	}
	if !outs[0].Result.Exhaustive {
		t.Errorf("wildcard fallback must be exhaustive: %v", outs[0].Result.Findings)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown scrutinee": `
shapes:
  - name: flag
    primitive: {kind: bool}
matches:
  - name: m
    scrutinee: nope
    arms: []
`,
		"unknown field": `
shapes:
  - name: flag
    primitive: {kind: bool}
    bogus: true
`,
		"int without bounds": `
shapes:
  - name: n
    primitive: {kind: int}
`,
		"nameless shape": `
shapes:
  - primitive: {kind: bool}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(doc)); err == nil {
				t.Error("expected load to fail")
			}
		})
	}
}

func quiet() checkexec.CheckOptions {
	o := checkexec.DefaultOptions()
	o.Logger = checkexec.NewNoopLogger()
	return o
}
