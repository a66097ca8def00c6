// Package lower implements S3 (spec.md §4.3): a mechanical rewrite of the
// typed, resolved AST into HIR — names become identifiers, optional type
// slots become concrete types, every stream expression gains an empty
// Dependencies cell for S4 to fill in.
//
// Every exported entry point panics if it is handed an AST node whose Type
// slot is nil: by construction, nothing reaches S3 without first passing S2
// cleanly (spec.md §4.3's stated precondition), so a nil Type here means a
// caller skipped S2, not a condition this pass should recover from.
package lower

import (
	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/typ"
)

type lowerer struct {
	table *ident.Table
}

// Pass3 lowers every node in file into its HIR counterpart. The returned
// hir.File has no UnitaryNodes yet (S5's job) and no Graph set on any Node
// (S4's job).
func Pass3(file *ast.File, table *ident.Table) *hir.File {
	l := &lowerer{table: table}

	out := &hir.File{Table: table, Location: file.Location}
	out.Nodes = make([]hir.Node, len(file.Nodes))
	for i := range file.Nodes {
		out.Nodes[i] = l.lowerNode(&file.Nodes[i])
	}

	if file.Component != nil {
		for i := range out.Nodes {
			if out.Nodes[i].Name == file.Component.Resolved {
				out.Component = &out.Nodes[i]

				break
			}
		}
	}

	return out
}

func (l *lowerer) lowerNode(n *ast.Node) hir.Node {
	return hir.Node{
		Name:        n.Resolved,
		IsComponent: n.IsComponent,
		Inputs:      l.lowerSignals(n.Inputs, hir.ScopeInput),
		Outputs:     l.lowerSignals(n.Outputs, hir.ScopeOutput),
		Locals:      l.lowerSignals(n.Locals, hir.ScopeLocal),
		Equations:   l.lowerEquations(n.Equations),
		Location:    n.Location,
	}
}

func (l *lowerer) lowerSignals(decls []ast.SignalDecl, scope hir.SignalScope) []hir.Signal {
	out := make([]hir.Signal, len(decls))
	for i, d := range decls {
		out[i] = hir.Signal{ID: d.Resolved, Scope: scope}
	}

	return out
}

func (l *lowerer) lowerEquations(eqs []ast.Equation) []hir.Equation {
	out := make([]hir.Equation, len(eqs))
	for i := range eqs {
		out[i] = hir.Equation{
			Signal:     eqs[i].Resolved,
			Expression: l.lowerStream(&eqs[i].Expression),
			Location:   eqs[i].Location,
		}
	}

	return out
}

// mustType returns *t or panics, enforcing S3's "untyped input panics"
// precondition (spec.md §4.3).
func mustType(t *typ.Type) typ.Type {
	if t == nil {
		panic("lower: untyped AST node reached S3 (S2 must run first)")
	}

	return *t
}

func (l *lowerer) lowerStream(e *ast.StreamExpression) hir.StreamExpression {
	ty := mustType(e.Type)

	switch e.Kind {
	case ast.StreamConstant:
		return hir.StreamExpression{Kind: hir.StreamConstant, Location: e.Location, Type: ty, Constant: e.Constant}
	case ast.StreamIdentifier:
		return hir.StreamExpression{Kind: hir.StreamSignalCall, Location: e.Location, Type: ty, Signal: e.Resolved}
	case ast.StreamFollowedBy:
		return hir.StreamExpression{
			Kind: hir.StreamFollowedBy, Location: e.Location, Type: ty,
			Initial: e.Initial, Delayed: l.lowerStreamPtr(e.Delayed),
		}
	case ast.StreamMapApplication:
		fn, params, body := l.lowerFuncRef(e.Function)

		return hir.StreamExpression{
			Kind: hir.StreamMapApplication, Location: e.Location, Type: ty,
			Function: fn, Params: params, Body: body,
			Inputs: l.lowerStreamList(e.Inputs),
		}
	case ast.StreamNodeApplication:
		return hir.StreamExpression{
			Kind: hir.StreamNodeApplication, Location: e.Location, Type: ty,
			Node: e.ResolvedNode, Output: e.ResolvedOutput,
			Arguments: l.lowerStreamList(e.Arguments),
		}
	case ast.StreamStructure:
		return hir.StreamExpression{
			Kind: hir.StreamStructure, Location: e.Location, Type: ty,
			StructType: e.ResolvedStruct, Fields: l.lowerStreamFields(e.Fields),
		}
	case ast.StreamArray, ast.StreamTuple:
		kind := hir.StreamArray
		if e.Kind == ast.StreamTuple {
			kind = hir.StreamTuple
		}

		return hir.StreamExpression{Kind: kind, Location: e.Location, Type: ty, Elements: l.lowerStreamList(e.Elements)}
	case ast.StreamMatch:
		return hir.StreamExpression{
			Kind: hir.StreamMatch, Location: e.Location, Type: ty,
			Scrutinee: l.lowerStreamPtr(e.Scrutinee), Arms: l.lowerArms(e.Arms, mustType(e.Scrutinee.Type)),
		}
	case ast.StreamWhen:
		return hir.StreamExpression{
			Kind: hir.StreamWhen, Location: e.Location, Type: ty,
			BindID: e.ResolvedBind, Option: l.lowerStreamPtr(e.Option),
			Present: l.lowerStreamPtr(e.Present), Default: l.lowerStreamPtr(e.Default),
		}
	case ast.StreamFieldAccess:
		return hir.StreamExpression{
			Kind: hir.StreamFieldAccess, Location: e.Location, Type: ty,
			Base: l.lowerStreamPtr(e.Base), FieldID: e.ResolvedField,
		}
	case ast.StreamTupleElementAccess:
		return hir.StreamExpression{
			Kind: hir.StreamTupleElementAccess, Location: e.Location, Type: ty,
			Base: l.lowerStreamPtr(e.Base), Index: e.Index,
		}
	case ast.StreamFold:
		fn, params, body := l.lowerFuncRef(e.Combine)

		return hir.StreamExpression{
			Kind: hir.StreamFold, Location: e.Location, Type: ty,
			Array: l.lowerStreamPtr(e.Array), Init: l.lowerStreamPtr(e.Init),
			Combine: fn, CombineParams: params, CombineBody: body,
		}
	case ast.StreamSort:
		fn, params, body := l.lowerFuncRef(e.Comparator)

		return hir.StreamExpression{
			Kind: hir.StreamSort, Location: e.Location, Type: ty,
			Array: l.lowerStreamPtr(e.Array),
			Comparator: fn, ComparatorParams: params, ComparatorBody: body,
		}
	case ast.StreamZip:
		return hir.StreamExpression{Kind: hir.StreamZip, Location: e.Location, Type: ty, Arrays: l.lowerStreamList(e.Arrays)}
	default:
		panic("lower: unknown StreamKind")
	}
}

func (l *lowerer) lowerStreamPtr(e *ast.StreamExpression) *hir.StreamExpression {
	if e == nil {
		return nil
	}
	out := l.lowerStream(e)

	return &out
}

func (l *lowerer) lowerStreamList(es []ast.StreamExpression) []hir.StreamExpression {
	out := make([]hir.StreamExpression, len(es))
	for i := range es {
		out[i] = l.lowerStream(&es[i])
	}

	return out
}

func (l *lowerer) lowerStreamFields(fs []ast.StreamField) []hir.StreamField {
	out := make([]hir.StreamField, len(fs))
	for i := range fs {
		out[i] = hir.StreamField{FieldID: fs[i].Resolved, Location: fs[i].Location, Expression: l.lowerStream(&fs[i].Expression)}
	}

	return out
}

func (l *lowerer) lowerArms(arms []ast.MatchArm, scrutinee typ.Type) []hir.MatchArm {
	out := make([]hir.MatchArm, len(arms))
	for i := range arms {
		out[i] = hir.MatchArm{
			Pattern:  l.lowerPattern(&arms[i].Pattern, scrutinee),
			Guard:    l.lowerStreamPtr(arms[i].Guard),
			Body:     l.lowerStream(&arms[i].Body),
			Location: arms[i].Location,
		}
	}

	return out
}

// lowerFuncRef splits a pure-expression function reference into either a
// resolved Function identifier or an inline abstraction's params/body,
// matching the two StreamMapApplication/Fold/Sort shapes spec.md allows for
// "a named Function reference or an inline abstraction" (§4.2 Map rule).
func (l *lowerer) lowerFuncRef(e *ast.Expression) (ident.Identifier, []ast.Param, *ast.Expression) {
	switch e.Kind {
	case ast.ExprIdentifier:
		return e.Resolved, nil, nil
	case ast.ExprAbstraction:
		return ident.Invalid, e.Params, e.Body
	default:
		panic("lower: function reference must be a named identifier or an inline abstraction")
	}
}

func (l *lowerer) lowerPattern(p *ast.Pattern, want typ.Type) hir.Pattern {
	switch p.Kind {
	case ast.PatternLiteral:
		return hir.Pattern{Kind: p.Kind, Location: p.Location, Type: p.Constant.Type(), Constant: p.Constant}
	case ast.PatternWildcard:
		return hir.Pattern{Kind: p.Kind, Location: p.Location, Type: want}
	case ast.PatternBind:
		return hir.Pattern{Kind: p.Kind, Location: p.Location, Type: want, BindID: p.Resolved}
	case ast.PatternStruct:
		return l.lowerStructPattern(p, want)
	case ast.PatternEnum:
		name := p.EnumName
		if p.Resolved != ident.Invalid {
			name = l.table.Symbol(p.Resolved).Name
		}

		return hir.Pattern{
			Kind: p.Kind, Location: p.Location, Type: typ.Enum(name),
			EnumType: p.Resolved, EnumElement: p.Name,
		}
	case ast.PatternTuple:
		elems := make([]hir.Pattern, len(p.Elements))
		for i := range p.Elements {
			elemWant := typ.Type{Kind: typ.Unresolved}
			if want.Kind == typ.TupleKind && i < len(want.Components) {
				elemWant = want.Components[i]
			}
			elems[i] = l.lowerPattern(&p.Elements[i], elemWant)
		}

		return hir.Pattern{Kind: p.Kind, Location: p.Location, Type: want, Elements: elems}
	default:
		panic("lower: unknown PatternKind")
	}
}

func (l *lowerer) lowerStructPattern(p *ast.Pattern, want typ.Type) hir.Pattern {
	name := p.StructName
	if p.Resolved != ident.Invalid {
		name = l.table.Symbol(p.Resolved).Name
	}

	fields := make([]hir.PatternField, len(p.Fields))
	for i := range p.Fields {
		f := &p.Fields[i]
		fieldTy := typ.Type{Kind: typ.Unresolved}
		if f.Resolved != ident.Invalid {
			if sym := l.table.Symbol(f.Resolved); sym.Type != nil {
				fieldTy = *sym.Type
			}
		}
		fields[i] = hir.PatternField{FieldID: f.Resolved, Pattern: l.lowerPattern(&f.Pattern, fieldTy)}
	}

	return hir.Pattern{Kind: p.Kind, Location: p.Location, Type: typ.Struct(name), StructType: p.Resolved, Fields: fields}
}
