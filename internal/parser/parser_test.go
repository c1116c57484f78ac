package parser

import (
	"strings"
	"testing"

	"github.com/eug-vs/lambo/internal/build"
	"github.com/eug-vs/lambo/internal/env"
	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/reducer"
	"github.com/eug-vs/lambo/internal/term"
)

// evalNum parses src, reduces it to Whnf, and returns the resulting Num.
func evalNum(t *testing.T, src string) uint64 {
	t.Helper()
	tree, err := Parse(src, "test.lambo")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	h := heap.New()
	e := env.New()
	r := reducer.New(h, e)
	root := build.Load(h, tree)
	v, err := r.Whnf(root, e.Empty())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	n := h.Get(v)
	if n.Kind != heap.KNum {
		t.Fatalf("expected Num, got %+v", n)
	}
	return n.Num
}

func TestParseIdentityLambda(t *testing.T) {
	tree, err := Parse(`\x. x`, "test.lambo")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if tree.Kind != term.Lambda {
		t.Fatalf("expected Lambda, got %v", tree.Kind)
	}
	if tree.Body.Kind != term.Var || tree.Body.Depth != 1 {
		t.Fatalf("expected Var(1) body, got %+v", tree.Body)
	}
}

// TestParseNAryLambdaDepths covers the convention that the last-written
// parameter is the innermost binder (depth 1): in "\x y. x", y is innermost
// so a reference to x (the outer, first-written parameter) is depth 2.
func TestParseNAryLambdaDepths(t *testing.T) {
	tree, err := Parse(`\x y. x`, "test.lambo")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	outer := tree
	if outer.Kind != term.Lambda {
		t.Fatalf("expected outer Lambda, got %v", outer.Kind)
	}
	inner := outer.Body
	if inner.Kind != term.Lambda {
		t.Fatalf("expected inner Lambda, got %v", inner.Kind)
	}
	v := inner.Body
	if v.Kind != term.Var || v.Depth != 2 {
		t.Fatalf("expected Var(2) referring to x, got %+v", v)
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// 2 + 3 * 4 should parse as 2 + (3 * 4) = 14, not (2+3)*4.
	got := evalNum(t, "2 + 3 * 4")
	if got != 14 {
		t.Fatalf("expected 14, got %d", got)
	}
}

func TestParseLetIsNonRecursiveSugar(t *testing.T) {
	// let x 5 in x + x == (\x. x + x) 5 == 10.
	got := evalNum(t, "let x 5 in x + x")
	if got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestParseWithSameAsLet(t *testing.T) {
	got := evalNum(t, "with x 7 in x + x")
	if got != 14 {
		t.Fatalf("expected 14, got %d", got)
	}
}

// TestParsePipeDesugarsToReverseApplication covers "a | b == App(b, a)":
// "5 | modulo 3" builds modulo 3 5, and modulo's first argument is the
// divisor, so this computes 5 modulo 3 = 2.
func TestParsePipeDesugarsToReverseApplication(t *testing.T) {
	got := evalNum(t, "5 | modulo 3")
	if got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestParseApplicationIsLeftAssociativeAndTighterThanOperators(t *testing.T) {
	// (\x y. x) 1 2 applies both arguments before any operator would bind.
	got := evalNum(t, `(\x y. x) 1 2`)
	if got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestParseStringLiteralBuildsBytes(t *testing.T) {
	tree, err := Parse(`"hi"`, "test.lambo")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if tree.Kind != term.Bytes || string(tree.Bytes) != "hi" {
		t.Fatalf("expected Bytes(\"hi\"), got %+v", tree)
	}
}

func TestParseUnboundVariableIsAnError(t *testing.T) {
	_, err := Parse("x", "test.lambo")
	if err == nil {
		t.Fatalf("expected an unbound variable error")
	}
	if !strings.Contains(err.Error(), "unbound variable") {
		t.Fatalf("expected unbound variable message, got %v", err)
	}
}

func TestParsePrimitiveNameResolvesDirectly(t *testing.T) {
	tree, err := Parse("modulo", "test.lambo")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if tree.Kind != term.Prim || tree.PrimName != "modulo" {
		t.Fatalf("expected Prim(modulo), got %+v", tree)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	got := evalNum(t, "(2 + 3) * 4")
	if got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
}

func TestParseNestedLetScoping(t *testing.T) {
	// the inner let's x shadows the outer one within its own body only.
	got := evalNum(t, "let x 1 in (let x 2 in x) + x")
	if got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}
