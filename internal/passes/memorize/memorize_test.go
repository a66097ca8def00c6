package memorize

import (
	"testing"

	"github.com/langrust/grust-sub004/internal/ast"
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

// An equation `x = s + (0 fby v)` files the delay away as a buffer named
// after x and leaves the rest of the expression, including its own
// already-computed Dependencies, untouched.
func TestPass8_ExtractsFollowedByIntoBuffer(t *testing.T) {
	table := ident.NewTable()
	ty := typ.Int()

	plusID := declare(t, table, "+", typ.Type{Kind: typ.Unresolved})
	sID := declare(t, table, "s", ty)
	vID := declare(t, table, "v", ty)
	xID := declare(t, table, "x", ty)

	delayed := signalCall(vID, ty, []hir.Dep{{Signal: vID, Weight: 0}})
	fby := hir.StreamExpression{Kind: hir.StreamFollowedBy, Type: ty, Initial: typ.ConstantInt(0), Delayed: &delayed}
	fby.Dependencies.Set(hir.Shift(delayed.Dependencies.Get(), 1))

	sCall := signalCall(sID, ty, []hir.Dep{{Signal: sID, Weight: 0}})
	sum := hir.StreamExpression{
		Kind:     hir.StreamMapApplication,
		Type:     ty,
		Function: plusID,
		Inputs:   []hir.StreamExpression{sCall, fby},
	}
	sum.Dependencies.Set(hir.Union(sCall.Dependencies.Get(), fby.Dependencies.Get()))

	u := hir.UnitaryNode{
		Output:    hir.Signal{ID: xID, Scope: hir.ScopeOutput},
		Inputs:    []hir.Signal{{ID: sID, Scope: hir.ScopeInput}, {ID: vID, Scope: hir.ScopeInput}},
		Equations: []hir.Equation{{Signal: xID, Expression: sum}},
	}
	file := &hir.File{Table: table, UnitaryNodes: []hir.UnitaryNode{u}}

	Pass8(file, table)

	got := &file.UnitaryNodes[0]
	if len(got.Memory.Buffers) != 1 {
		t.Fatalf("expected exactly one buffer, got %d", len(got.Memory.Buffers))
	}
	buf := got.Memory.Buffers[0]
	if !buf.Type.Equal(ty) {
		t.Fatalf("buffer should carry the delay's own type")
	}
	if buf.Initial != typ.ConstantInt(0) {
		t.Fatalf("buffer should carry the delay's initial constant, got %v", buf.Initial)
	}

	rhs := got.Equations[0].Expression
	if rhs.Dependencies.Get() == nil || len(rhs.Dependencies.Get()) != 2 {
		t.Fatalf("the equation's own dependencies should survive untouched")
	}

	replaced := rhs.Inputs[1]
	if replaced.Kind != hir.StreamMemory {
		t.Fatalf("the FollowedBy should become a StreamMemory read, got %v", replaced.Kind)
	}
	if replaced.Key != buf.Key {
		t.Fatalf("the replacement's Key should match the registered buffer")
	}
	if deps := replaced.Dependencies.Get(); len(deps) != 1 || deps[0].Signal != buf.Key || deps[0].Weight != 0 {
		t.Fatalf("the replacement should depend on its own buffer with weight 0, got %v", deps)
	}

	if rhs.Inputs[0].Kind != hir.StreamSignalCall || rhs.Inputs[0].Signal != sID {
		t.Fatalf("the untouched input should be left alone")
	}
}

// A call site keeps its shape but gains a memory slot for the callee's own
// state.
func TestPass8_AssignsCalledNodeMemoryKey(t *testing.T) {
	table := ident.NewTable()
	ty := typ.Int()

	calleeName := declare(t, table, "my_node/o", ty)
	sID := declare(t, table, "s", ty)
	argID := declare(t, table, "arg", ty)
	outID := declare(t, table, "out", ty)

	arg := signalCall(argID, ty, []hir.Dep{{Signal: argID, Weight: 0}})
	call := hir.StreamExpression{
		Kind: hir.StreamUnitaryNodeApplication, Type: ty, Node: calleeName, Arguments: []hir.StreamExpression{arg},
	}
	call.Dependencies.Set([]hir.Dep{{Signal: argID, Weight: 0}})

	u := hir.UnitaryNode{
		Output:    hir.Signal{ID: outID, Scope: hir.ScopeOutput},
		Inputs:    []hir.Signal{{ID: sID, Scope: hir.ScopeInput}},
		Locals:    []hir.Signal{{ID: argID, Scope: hir.ScopeLocal}},
		Equations: []hir.Equation{{Signal: outID, Expression: call}},
	}
	file := &hir.File{Table: table, UnitaryNodes: []hir.UnitaryNode{u}}

	Pass8(file, table)

	got := &file.UnitaryNodes[0]
	if len(got.Memory.CalledNodes) != 1 {
		t.Fatalf("expected exactly one called-node slot, got %d", len(got.Memory.CalledNodes))
	}
	cn := got.Memory.CalledNodes[0]
	if cn.Unitary != calleeName {
		t.Fatalf("expected the called-node slot to reference the callee, got %v", cn.Unitary)
	}

	rewritten := got.Equations[0].Expression
	if rewritten.Kind != hir.StreamUnitaryNodeApplication {
		t.Fatalf("UnitaryNodeApplication should be left in place, got %v", rewritten.Kind)
	}
	if rewritten.MemoryKey == nil || *rewritten.MemoryKey != cn.Key {
		t.Fatalf("expected the call site's MemoryKey to match the registered slot")
	}
	if len(rewritten.Arguments) != 1 || rewritten.Arguments[0].Kind != hir.StreamSignalCall || rewritten.Arguments[0].Signal != argID {
		t.Fatalf("the argument should be untouched")
	}
}

// A FollowedBy hoisted into a Match arm's own local equations is memorized
// exactly like a top-level one, named after that local equation's own
// signal rather than the outer Match's.
func TestPass8_RecursesIntoMatchArmEquations(t *testing.T) {
	table := ident.NewTable()
	ty := typ.Int()

	optID := declare(t, table, "opt", ty)
	localID := declare(t, table, "y", ty)
	outID := declare(t, table, "out", ty)

	delayed := signalCall(optID, ty, []hir.Dep{{Signal: optID, Weight: 0}})
	fby := hir.StreamExpression{Kind: hir.StreamFollowedBy, Type: ty, Initial: typ.ConstantInt(1), Delayed: &delayed}
	fby.Dependencies.Set(hir.Shift(delayed.Dependencies.Get(), 1))

	scrutinee := signalCall(optID, ty, []hir.Dep{{Signal: optID, Weight: 0}})
	body := signalCall(localID, ty, []hir.Dep{{Signal: localID, Weight: 0}})

	match := hir.StreamExpression{
		Kind:      hir.StreamMatch,
		Type:      ty,
		Scrutinee: &scrutinee,
		Arms: []hir.MatchArm{
			{
				Pattern:   hir.Pattern{Kind: ast.PatternWildcard, Type: ty},
				Equations: []hir.Equation{{Signal: localID, Expression: fby}},
				Body:      body,
			},
		},
	}
	match.Dependencies.Set([]hir.Dep{{Signal: optID, Weight: 1}})

	u := hir.UnitaryNode{
		Output:    hir.Signal{ID: outID, Scope: hir.ScopeOutput},
		Inputs:    []hir.Signal{{ID: optID, Scope: hir.ScopeInput}},
		Locals:    []hir.Signal{{ID: localID, Scope: hir.ScopeLocal}},
		Equations: []hir.Equation{{Signal: outID, Expression: match}},
	}
	file := &hir.File{Table: table, UnitaryNodes: []hir.UnitaryNode{u}}

	Pass8(file, table)

	got := &file.UnitaryNodes[0]
	if len(got.Memory.Buffers) != 1 {
		t.Fatalf("expected exactly one buffer from the arm-local equation, got %d", len(got.Memory.Buffers))
	}

	armEq := got.Equations[0].Expression.Arms[0].Equations[0]
	if armEq.Expression.Kind != hir.StreamMemory {
		t.Fatalf("the arm-local FollowedBy should become a StreamMemory read, got %v", armEq.Expression.Kind)
	}
	if armEq.Expression.Key != got.Memory.Buffers[0].Key {
		t.Fatalf("the arm-local replacement should reference the registered buffer")
	}
}
