package unitary

import (
	"testing"

	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/passes/deps"
	"github.com/langrust/grust-sub004/internal/passes/lower"
	"github.com/langrust/grust-sub004/internal/passes/resolve"
	"github.com/langrust/grust-sub004/internal/passes/typing"
	"github.com/langrust/grust-sub004/internal/typ"
)

func identExpr(name string) ast.StreamExpression {
	return ast.StreamExpression{Kind: ast.StreamIdentifier, Name: name}
}

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

	deps.Pass4(hf, table, &errs)
	if errs.HasErrors() {
		t.Fatalf("unexpected deps errors: %v", errs.List())
	}

	return hf, table
}

// node n(x, y) { out o1 = x; out o2 = y; } -- o1 depends only on x, o2 only
// on y, mirroring spec.md's scenario E input-usage specialization.
func scenarioEFile() *ast.File {
	return &ast.File{
		Nodes: []ast.Node{
			{
				Name: "n",
				Inputs: []ast.SignalDecl{
					{Name: "x", Type: typ.Int()},
					{Name: "y", Type: typ.Int()},
				},
				Outputs: []ast.SignalDecl{
					{Name: "o1", Type: typ.Int()},
					{Name: "o2", Type: typ.Int()},
				},
				Equations: []ast.Equation{
					{Name: "o1", Expression: identExpr("x")},
					{Name: "o2", Expression: identExpr("y")},
				},
			},
			{
				Name:    "caller",
				Inputs:  []ast.SignalDecl{{Name: "a", Type: typ.Int()}, {Name: "b", Type: typ.Int()}},
				Outputs: []ast.SignalDecl{{Name: "r", Type: typ.Int()}},
				Equations: []ast.Equation{
					{
						Name: "r",
						Expression: ast.StreamExpression{
							Kind:      ast.StreamNodeApplication,
							Node:      "n",
							Output:    "o2",
							Arguments: []ast.StreamExpression{identExpr("a"), identExpr("b")},
						},
					},
				},
			},
		},
	}
}

func TestPass5_SynthesizesOneUnitaryNodePerOutput(t *testing.T) {
	file := scenarioEFile()
	hf, _ := compile(t, file)

	Pass5(hf, hf.Table)

	units := hf.UnitaryNodesOf(hf.Nodes[0].Name)
	if len(units) != 2 {
		t.Fatalf("expected 2 unitary nodes for n, got %d", len(units))
	}
}

func TestPass5_UnitaryNodeInputsAreRestrictedToReachable(t *testing.T) {
	file := scenarioEFile()
	hf, _ := compile(t, file)

	Pass5(hf, hf.Table)

	units := hf.UnitaryNodesOf(hf.Nodes[0].Name)
	n := &hf.Nodes[0]

	for _, u := range units {
		if u.Output.ID == n.Outputs[0].ID {
			if len(u.Inputs) != 1 || u.Inputs[0].ID != n.Inputs[0].ID {
				t.Fatalf("o1's unitary node should keep only x, got %+v", u.Inputs)
			}
		}
		if u.Output.ID == n.Outputs[1].ID {
			if len(u.Inputs) != 1 || u.Inputs[0].ID != n.Inputs[1].ID {
				t.Fatalf("o2's unitary node should keep only y, got %+v", u.Inputs)
			}
		}
	}
}

func TestPass5_CallSiteNarrowsToUnitaryNodeApplication(t *testing.T) {
	file := scenarioEFile()
	hf, _ := compile(t, file)

	Pass5(hf, hf.Table)

	caller := hf.UnitaryNodesOf(hf.Nodes[1].Name)
	if len(caller) != 1 {
		t.Fatalf("expected 1 unitary node for caller, got %d", len(caller))
	}

	var call *hir.StreamExpression
	for i := range caller[0].Equations {
		if caller[0].Equations[i].Expression.Kind == hir.StreamUnitaryNodeApplication {
			call = &caller[0].Equations[i].Expression
		}
	}
	if call == nil {
		t.Fatalf("expected a StreamUnitaryNodeApplication in caller's unitary node equations")
	}
	if len(call.Arguments) != 1 {
		t.Fatalf("expected the call to be narrowed to 1 argument (only y/o2's input), got %d", len(call.Arguments))
	}
	if call.Arguments[0].Signal != hf.Nodes[1].Inputs[1].ID {
		t.Fatalf("expected the surviving argument to be caller's second input (b), got %+v", call.Arguments[0])
	}
	if call.Output != ident.Invalid {
		t.Fatalf("expected Output to be cleared on a UnitaryNodeApplication")
	}
}

func TestPass5_NoNodeApplicationSurvives(t *testing.T) {
	file := scenarioEFile()
	hf, _ := compile(t, file)

	Pass5(hf, hf.Table)

	for _, u := range hf.UnitaryNodes {
		for _, eq := range u.Equations {
			if eq.Expression.Kind == hir.StreamNodeApplication {
				t.Fatalf("invariant I4 violated: a StreamNodeApplication survived S5")
			}
		}
	}
}
