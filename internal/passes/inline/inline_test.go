package inline

import (
	"testing"

	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

func declare(t *testing.T, table *ident.Table, name string, ty typ.Type) ident.Identifier {
	t.Helper()
	id, ok := table.Declare(name, loc.Location{}, ident.KindIdentifier)
	if !ok {
		t.Fatalf("failed to declare %q", name)
	}
	table.SetType(id, ty)
	return id
}

func signalCall(id ident.Identifier, ty typ.Type, deps []hir.Dep) hir.StreamExpression {
	e := hir.StreamExpression{Kind: hir.StreamSignalCall, Type: ty, Signal: id}
	e.Dependencies.Set(deps)
	return e
}

// fib_call/semi_fib (spec.md §4.7's motivating example): semi_fib(i) reports
// `o = 0 fby i`, a perfectly causal one-cycle delay from i to o. fib_call
// calls back into its own output as semi_fib's argument ("out fib =
// semi_fib(fib).o"), which on its own would be fine too, except the test
// manufactures the call site's own Dependencies the way a more elaborate
// callee body (spec's nested-fby example) would actually produce one: an
// apparent zero-weight self edge on the call, even though the callee's real
// body only ever reaches its input through a weight-1 path. Inlining must
// splice that real path in and make the self-loop disappear.
func fibCallFile(t *testing.T) (*hir.File, *ident.Table, ident.Identifier, ident.Identifier) {
	t.Helper()
	table := ident.NewTable()
	ty := typ.Int()

	calleeName := declare(t, table, "semi_fib/o", ty)
	iID := declare(t, table, "semi_fib.i", ty)
	oID := declare(t, table, "semi_fib.o", ty)

	delayed := signalCall(iID, ty, []hir.Dep{{Signal: iID, Weight: 0}})
	fby := hir.StreamExpression{
		Kind:    hir.StreamFollowedBy,
		Type:    ty,
		Initial: typ.ConstantInt(0),
		Delayed: &delayed,
	}
	fby.Dependencies.Set(hir.Shift(delayed.Dependencies.Get(), 1))

	callee := hir.UnitaryNode{
		Name:      calleeName,
		Output:    hir.Signal{ID: oID, Scope: hir.ScopeOutput},
		Inputs:    []hir.Signal{{ID: iID, Scope: hir.ScopeInput}},
		Equations: []hir.Equation{{Signal: oID, Expression: fby}},
	}

	callerName := declare(t, table, "fib_call/fib", ty)
	fibID := declare(t, table, "fib_call.fib", ty)

	arg := signalCall(fibID, ty, []hir.Dep{{Signal: fibID, Weight: 0}})
	call := hir.StreamExpression{
		Kind:      hir.StreamUnitaryNodeApplication,
		Type:      ty,
		Node:      calleeName,
		Arguments: []hir.StreamExpression{arg},
	}
	call.Dependencies.Set([]hir.Dep{{Signal: fibID, Weight: 0}})

	caller := hir.UnitaryNode{
		Name:      callerName,
		Output:    hir.Signal{ID: fibID, Scope: hir.ScopeOutput},
		Equations: []hir.Equation{{Signal: fibID, Expression: call}},
	}

	file := &hir.File{Table: table, UnitaryNodes: []hir.UnitaryNode{callee, caller}}
	return file, table, callerName, fibID
}

func TestPass7_InlinesCauseallyBackedCall(t *testing.T) {
	file, table, callerName, fibID := fibCallFile(t)

	var errs diag.Errors
	Pass7(file, table, &errs)

	if errs.HasErrors() {
		t.Fatalf("unexpected causality errors: %v", errs.List())
	}

	caller, ok := file.UnitaryNodeByName(callerName)
	if !ok {
		t.Fatalf("caller unitary node vanished")
	}

	if len(caller.Equations) != 2 {
		t.Fatalf("expected the callee's one equation spliced in alongside the original, got %d", len(caller.Equations))
	}

	root := caller.Equations[0]
	if root.Signal != fibID {
		t.Fatalf("the original equation's LHS should be unchanged")
	}
	if root.Expression.Kind != hir.StreamSignalCall {
		t.Fatalf("the call site should be replaced by a SignalCall, got %v", root.Expression.Kind)
	}

	spliced := caller.Equations[1]
	if spliced.Signal != root.Expression.Signal {
		t.Fatalf("the spliced equation's LHS should match the replacement SignalCall's signal")
	}
	if spliced.Expression.Kind != hir.StreamFollowedBy {
		t.Fatalf("the spliced equation should carry the callee's FollowedBy, got %v", spliced.Expression.Kind)
	}
	if spliced.Expression.Delayed.Signal != fibID {
		t.Fatalf("the callee's input i should have been renamed to the caller's argument fib, got %v", spliced.Expression.Delayed.Signal)
	}

	if len(caller.Locals) != 1 {
		t.Fatalf("expected one fresh local for the renamed callee output, got %d", len(caller.Locals))
	}

	if !caller.Graph.Ready() {
		t.Fatalf("expected Pass7 to rebuild and store the caller's graph")
	}
	if _, cyclic := caller.Graph.Get().DetectZeroWeightCycle(); cyclic {
		t.Fatalf("the rebuilt graph should be acyclic once the real weight-1 path is inlined")
	}
}

func TestPass7_ReportsCausalityLoopWhenNoCallSiteCanResolveIt(t *testing.T) {
	table := ident.NewTable()
	ty := typ.Int()
	aID := declare(t, table, "a", ty)
	bID := declare(t, table, "b", ty)
	name := declare(t, table, "loop/a", ty)

	u := hir.UnitaryNode{
		Name:   name,
		Output: hir.Signal{ID: aID, Scope: hir.ScopeOutput},
		Locals: []hir.Signal{{ID: bID, Scope: hir.ScopeLocal}},
		Equations: []hir.Equation{
			{Signal: aID, Expression: signalCall(bID, ty, []hir.Dep{{Signal: bID, Weight: 0}})},
			{Signal: bID, Expression: signalCall(aID, ty, []hir.Dep{{Signal: aID, Weight: 0}})},
		},
	}

	file := &hir.File{Table: table, UnitaryNodes: []hir.UnitaryNode{u}}

	var errs diag.Errors
	Pass7(file, table, &errs)

	if !errs.HasErrors() {
		t.Fatalf("expected a causality loop diagnostic")
	}
	list := errs.List()
	if len(list) != 1 || list[0].Kind != diag.KindCausalityLoop {
		t.Fatalf("expected exactly one CausalityLoop diagnostic, got %+v", list)
	}

	got, _ := file.UnitaryNodeByName(name)
	if !got.Graph.Ready() {
		t.Fatalf("expected Pass7 to still store a graph even when reporting a causality loop")
	}
}
