package schedule

import (
	"testing"

	"github.com/langrust/grust-sub004/internal/ast"
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

// `out y = x + 1; x = in + 1` is declared backwards (y's producer comes
// after it); Pass9 must reorder x's equation ahead of y's.
func TestPass9_OrdersProducerBeforeConsumer(t *testing.T) {
	table := ident.NewTable()
	ty := typ.Int()

	inID := declare(t, table, "in", ty)
	xID := declare(t, table, "x", ty)
	yID := declare(t, table, "y", ty)

	u := hir.UnitaryNode{
		Output: hir.Signal{ID: yID, Scope: hir.ScopeOutput},
		Inputs: []hir.Signal{{ID: inID, Scope: hir.ScopeInput}},
		Locals: []hir.Signal{{ID: xID, Scope: hir.ScopeLocal}},
		Equations: []hir.Equation{
			{Signal: yID, Expression: signalCall(xID, ty, []hir.Dep{{Signal: xID, Weight: 0}})},
			{Signal: xID, Expression: signalCall(inID, ty, []hir.Dep{{Signal: inID, Weight: 0}})},
		},
	}
	file := &hir.File{Table: table, UnitaryNodes: []hir.UnitaryNode{u}}

	var errs diag.Errors
	Pass9(file, table, &errs)

	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.List())
	}

	got := file.UnitaryNodes[0].Equations
	if len(got) != 2 {
		t.Fatalf("expected both equations to survive, got %d", len(got))
	}
	if got[0].Signal != xID {
		t.Fatalf("expected x's equation scheduled first, got signal %v first", got[0].Signal)
	}
	if got[1].Signal != yID {
		t.Fatalf("expected y's equation scheduled second, got signal %v second", got[1].Signal)
	}
}

// A dependency on an input carries no local equation to order against, so a
// single-equation scope is left alone. (Several equations whose dependencies
// are all external are still reordered, by descending identifier.)
func TestPass9_LeavesEquationsWithNoLocalDependencyUntouched(t *testing.T) {
	table := ident.NewTable()
	ty := typ.Int()

	inID := declare(t, table, "in", ty)
	outID := declare(t, table, "out", ty)

	u := hir.UnitaryNode{
		Output:    hir.Signal{ID: outID, Scope: hir.ScopeOutput},
		Inputs:    []hir.Signal{{ID: inID, Scope: hir.ScopeInput}},
		Equations: []hir.Equation{{Signal: outID, Expression: signalCall(inID, ty, []hir.Dep{{Signal: inID, Weight: 0}})}},
	}
	file := &hir.File{Table: table, UnitaryNodes: []hir.UnitaryNode{u}}

	var errs diag.Errors
	Pass9(file, table, &errs)

	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.List())
	}
	if file.UnitaryNodes[0].Equations[0].Signal != outID {
		t.Fatalf("single-equation scope should be left alone")
	}
}

// Two co-scoped equations with a genuine zero-weight cycle between them
// (neither reachable through a delay) cannot be scheduled at all.
func TestPass9_ReportsCausalityLoopOnCoScopedCycle(t *testing.T) {
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
	Pass9(file, table, &errs)

	if !errs.HasErrors() {
		t.Fatalf("expected a causality loop diagnostic")
	}
	list := errs.List()
	if len(list) != 1 || list[0].Kind != diag.KindCausalityLoop {
		t.Fatalf("expected exactly one CausalityLoop diagnostic, got %+v", list)
	}
}

// A FollowedBy already turned into a StreamMemory read by S8 depends on a
// buffer id that has no equation of its own in scope, so it imposes no
// ordering constraint even though it names a signal-shaped identifier.
func TestPass9_MemoryReadIsNotTreatedAsCoScoped(t *testing.T) {
	table := ident.NewTable()
	ty := typ.Int()

	memKey := declare(t, table, "memx_1", ty)
	xID := declare(t, table, "x", ty)
	yID := declare(t, table, "y", ty)

	memRead := hir.StreamExpression{Kind: hir.StreamMemory, Type: ty, Key: memKey}
	memRead.Dependencies.Set([]hir.Dep{{Signal: memKey, Weight: 0}})

	u := hir.UnitaryNode{
		Output: hir.Signal{ID: yID, Scope: hir.ScopeOutput},
		Locals: []hir.Signal{{ID: xID, Scope: hir.ScopeLocal}},
		Equations: []hir.Equation{
			{Signal: yID, Expression: signalCall(xID, ty, []hir.Dep{{Signal: xID, Weight: 0}})},
			{Signal: xID, Expression: memRead},
		},
	}
	file := &hir.File{Table: table, UnitaryNodes: []hir.UnitaryNode{u}}

	var errs diag.Errors
	Pass9(file, table, &errs)

	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.List())
	}
	got := file.UnitaryNodes[0].Equations
	if got[0].Signal != xID || got[1].Signal != yID {
		t.Fatalf("expected x then y, got %v then %v", got[0].Signal, got[1].Signal)
	}
}

// A Match arm's own locally-scoped equations are scheduled independently of
// the outer unitary node's backbone.
func TestPass9_SchedulesMatchArmScopeIndependently(t *testing.T) {
	table := ident.NewTable()
	ty := typ.Int()

	optID := declare(t, table, "opt", ty)
	pID := declare(t, table, "p", ty)
	qID := declare(t, table, "q", ty)
	outID := declare(t, table, "out", ty)

	scrutinee := signalCall(optID, ty, []hir.Dep{{Signal: optID, Weight: 0}})
	body := signalCall(qID, ty, []hir.Dep{{Signal: qID, Weight: 0}})

	match := hir.StreamExpression{
		Kind:      hir.StreamMatch,
		Type:      ty,
		Scrutinee: &scrutinee,
		Arms: []hir.MatchArm{
			{
				Pattern: hir.Pattern{Kind: ast.PatternWildcard, Type: ty},
				Equations: []hir.Equation{
					{Signal: qID, Expression: signalCall(pID, ty, []hir.Dep{{Signal: pID, Weight: 0}})},
					{Signal: pID, Expression: signalCall(optID, ty, []hir.Dep{{Signal: optID, Weight: 0}})},
				},
				Body: body,
			},
		},
	}
	match.Dependencies.Set([]hir.Dep{{Signal: optID, Weight: 0}})

	u := hir.UnitaryNode{
		Output:    hir.Signal{ID: outID, Scope: hir.ScopeOutput},
		Inputs:    []hir.Signal{{ID: optID, Scope: hir.ScopeInput}},
		Equations: []hir.Equation{{Signal: outID, Expression: match}},
	}
	file := &hir.File{Table: table, UnitaryNodes: []hir.UnitaryNode{u}}

	var errs diag.Errors
	Pass9(file, table, &errs)

	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.List())
	}

	arm := file.UnitaryNodes[0].Equations[0].Expression.Arms[0]
	if arm.Equations[0].Signal != pID {
		t.Fatalf("expected p's equation scheduled first within the arm, got %v", arm.Equations[0].Signal)
	}
	if arm.Equations[1].Signal != qID {
		t.Fatalf("expected q's equation scheduled second within the arm, got %v", arm.Equations[1].Signal)
	}
}

// ScheduleOrder flattens only the unitary nodes sourced from the designated
// component, in synthesis order.
func TestPass9_PopulatesScheduleOrderFromComponentOnly(t *testing.T) {
	table := ident.NewTable()
	ty := typ.Int()

	compName := declare(t, table, "main/o", ty)
	otherName := declare(t, table, "helper/o", ty)
	inID := declare(t, table, "in", ty)
	oID := declare(t, table, "o", ty)
	helperOutID := declare(t, table, "helper.o", ty)

	other := hir.UnitaryNode{
		Name:       otherName,
		SourceNode: otherName,
		Output:     hir.Signal{ID: helperOutID, Scope: hir.ScopeOutput},
		Equations:  []hir.Equation{{Signal: helperOutID, Expression: signalCall(inID, ty, nil)}},
	}
	comp := hir.UnitaryNode{
		Name:       compName,
		SourceNode: compName,
		Output:     hir.Signal{ID: oID, Scope: hir.ScopeOutput},
		Inputs:     []hir.Signal{{ID: inID, Scope: hir.ScopeInput}},
		Equations:  []hir.Equation{{Signal: oID, Expression: signalCall(inID, ty, []hir.Dep{{Signal: inID, Weight: 0}})}},
	}

	componentNode := hir.Node{Name: compName}
	file := &hir.File{
		Table:        table,
		UnitaryNodes: []hir.UnitaryNode{other, comp},
		Component:    &componentNode,
	}

	var errs diag.Errors
	Pass9(file, table, &errs)

	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.List())
	}
	if len(file.ScheduleOrder) != 1 || file.ScheduleOrder[0] != oID {
		t.Fatalf("expected ScheduleOrder to contain only the component's own signal, got %v", file.ScheduleOrder)
	}
}
