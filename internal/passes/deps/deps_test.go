package deps

import (
	"testing"

	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/passes/lower"
	"github.com/langrust/grust-sub004/internal/passes/resolve"
	"github.com/langrust/grust-sub004/internal/passes/typing"
	"github.com/langrust/grust-sub004/internal/typ"
)

func compile(t *testing.T, file *ast.File) (*hir.File, *ident.Table) {
	t.Helper()

	var errs diag.Errors
	table := resolve.Pass1(file, &errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected resolve errors: %v", errs.List())
	}

	typing.Pass2(file, table, &errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected type errors: %v", errs.List())
	}

	hf := lower.Pass3(file, table)

	return hf, table
}

func TestPass4_DirectSignalCallHasZeroWeightEdge(t *testing.T) {
	file := &ast.File{
		Nodes: []ast.Node{
			{
				Name:    "n",
				Inputs:  []ast.SignalDecl{{Name: "x", Type: typ.Int()}},
				Outputs: []ast.SignalDecl{{Name: "y", Type: typ.Int()}},
				Equations: []ast.Equation{
					{Name: "y", Expression: ast.StreamExpression{Kind: ast.StreamIdentifier, Name: "x"}},
				},
			},
		},
	}

	hf, table := compile(t, file)

	var errs diag.Errors
	Pass4(hf, table, &errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected deps errors: %v", errs.List())
	}

	n := &hf.Nodes[0]
	g := n.Graph.Get()
	edges := g.Neighbors(n.Outputs[0].ID)
	if len(edges) != 1 || edges[0].To != n.Inputs[0].ID || edges[0].Weight != 0 {
		t.Fatalf("expected one zero-weight edge y->x, got %+v", edges)
	}
}

func TestPass4_FollowedByBumpsWeight(t *testing.T) {
	file := &ast.File{
		Nodes: []ast.Node{
			{
				Name:    "n",
				Inputs:  []ast.SignalDecl{{Name: "x", Type: typ.Int()}},
				Outputs: []ast.SignalDecl{{Name: "y", Type: typ.Int()}},
				Equations: []ast.Equation{
					{
						Name: "y",
						Expression: ast.StreamExpression{
							Kind:       ast.StreamFollowedBy,
							Initial:    typ.ConstantInt(0),
							InitialRaw: &ast.Expression{Kind: ast.ExprConstant, Constant: typ.ConstantInt(0)},
							Delayed:    &ast.StreamExpression{Kind: ast.StreamIdentifier, Name: "x"},
						},
					},
				},
			},
		},
	}

	hf, table := compile(t, file)

	var errs diag.Errors
	Pass4(hf, table, &errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected deps errors: %v", errs.List())
	}

	n := &hf.Nodes[0]
	edges := n.Graph.Get().Neighbors(n.Outputs[0].ID)
	if len(edges) != 1 || edges[0].Weight != 1 {
		t.Fatalf("expected weight 1 edge from the unit delay, got %+v", edges)
	}
}

func TestPass4_ZeroWeightCycleRaisesCausalityLoop(t *testing.T) {
	file := &ast.File{
		Nodes: []ast.Node{
			{
				Name:    "n",
				Outputs: []ast.SignalDecl{{Name: "a", Type: typ.Int()}},
				Locals:  []ast.SignalDecl{{Name: "b", Type: typ.Int()}},
				Equations: []ast.Equation{
					{Name: "a", Expression: ast.StreamExpression{Kind: ast.StreamIdentifier, Name: "b"}},
					{Name: "b", Expression: ast.StreamExpression{Kind: ast.StreamIdentifier, Name: "a"}},
				},
			},
		},
	}

	hf, table := compile(t, file)

	var errs diag.Errors
	Pass4(hf, table, &errs)

	found := false
	for _, e := range errs.List() {
		if e.Kind == diag.KindCausalityLoop {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CausalityLoop error, got %v", errs.List())
	}
}

func TestPass4_NodeApplicationContributesCalleeTransitiveDelay(t *testing.T) {
	file := &ast.File{
		Nodes: []ast.Node{
			{
				Name:    "delay1",
				Inputs:  []ast.SignalDecl{{Name: "a", Type: typ.Int()}},
				Outputs: []ast.SignalDecl{{Name: "b", Type: typ.Int()}},
				Equations: []ast.Equation{
					{
						Name: "b",
						Expression: ast.StreamExpression{
							Kind:       ast.StreamFollowedBy,
							Initial:    typ.ConstantInt(0),
							InitialRaw: &ast.Expression{Kind: ast.ExprConstant, Constant: typ.ConstantInt(0)},
							Delayed:    &ast.StreamExpression{Kind: ast.StreamIdentifier, Name: "a"},
						},
					},
				},
			},
			{
				Name:    "caller",
				Inputs:  []ast.SignalDecl{{Name: "x", Type: typ.Int()}},
				Outputs: []ast.SignalDecl{{Name: "y", Type: typ.Int()}},
				Equations: []ast.Equation{
					{
						Name: "y",
						Expression: ast.StreamExpression{
							Kind:      ast.StreamNodeApplication,
							Node:      "delay1",
							Output:    "b",
							Arguments: []ast.StreamExpression{{Kind: ast.StreamIdentifier, Name: "x"}},
						},
					},
				},
			},
		},
	}

	hf, table := compile(t, file)

	var errs diag.Errors
	Pass4(hf, table, &errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected deps errors: %v", errs.List())
	}

	caller := &hf.Nodes[1]
	edges := caller.Graph.Get().Neighbors(caller.Outputs[0].ID)
	if len(edges) != 1 || edges[0].To != caller.Inputs[0].ID || edges[0].Weight != 1 {
		t.Fatalf("expected y to depend on x with weight 1 through the callee's delay, got %+v", edges)
	}
}
