// Package typing implements S2 (spec.md §4.2): infer and check the type of
// every expression in a resolved AST, filling in the Type slots S1 left nil
// and accumulating diagnostics for every rule violation.
//
// Checker mirrors a single stateful object threading an accumulating error
// sink through recursive type methods — the shape standard Go type checkers
// use (enriched from tmc-mirror-go.tools/go/types/check.go's `checker`
// struct, consulted only for that idiom; this package is not a port of it).
package typing

import (
	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/typ"
)

// Pass2 type-checks every function and node body in file, using the symbol
// table S1 built. It mutates file's AST in place, filling every Type slot.
func Pass2(file *ast.File, table *ident.Table, errs *diag.Errors) {
	c := &Checker{table: table, errs: errs}

	for i := range file.Functions {
		c.checkFunction(&file.Functions[i])
	}
	for i := range file.Nodes {
		c.checkNode(&file.Nodes[i])
	}
}

// Checker is the stateful type checker. currentSignals is swapped in per
// node: it distinguishes a plain expression variable (a function parameter)
// from a signal reference, which FollowedBy's constancy check needs to tell
// apart (spec.md §4.2 FollowedBy: "Non-constant leaf constructs... fail").
type Checker struct {
	table          *ident.Table
	errs           *diag.Errors
	currentSignals map[ident.Identifier]bool
}

func (c *Checker) checkFunction(fn *ast.Function) {
	if fn.Resolved == ident.Invalid {
		return
	}
	c.currentSignals = nil

	inputs := make([]typ.Type, len(fn.Params))
	for i, p := range fn.Params {
		inputs[i] = p.Type
	}
	bodyTy := c.typeExpr(&fn.Body)
	c.table.SetType(fn.Resolved, typ.Abstract(inputs, bodyTy))
}

func (c *Checker) checkNode(n *ast.Node) {
	if n.Resolved == ident.Invalid {
		return
	}

	// S1 closes the node's name scope once header resolution is done, so
	// every reference inside the body is already captured as a Resolved
	// identifier — except IsSyntacticallyConstant's isFreeSignal callback,
	// which FollowedBy's initializer check still drives by name (it walks
	// raw Expression nodes that predate S1's Resolved fields by
	// construction). Reopening the name scope here, bound to the same
	// identifiers header resolution already allocated, lets that one
	// by-name lookup keep working during S2.
	c.currentSignals = make(map[ident.Identifier]bool)
	c.table.Local()
	for _, s := range n.Inputs {
		c.bindSignal(s)
	}
	for _, s := range n.Outputs {
		c.bindSignal(s)
	}
	for _, s := range n.Locals {
		c.bindSignal(s)
	}

	for i := range n.Equations {
		eq := &n.Equations[i]
		got := c.typeStream(&eq.Expression)
		if eq.Resolved == ident.Invalid {
			continue
		}
		want := c.table.Symbol(eq.Resolved).Type
		if want != nil && !want.Equal(got) {
			c.errs.Add(diag.TypeMismatch(*want, got, eq.Location))
		}
	}
	c.table.Global()
}

func (c *Checker) bindSignal(s ast.SignalDecl) {
	if s.Resolved == ident.Invalid {
		return
	}
	c.currentSignals[s.Resolved] = true
	c.table.Bind(s.Name, s.Resolved)
}

// isFreeSignal reports whether name, resolved in the current scope, names a
// signal of the node currently being checked (as opposed to a function
// parameter or another function/operator name).
func (c *Checker) isFreeSignal(name string) bool {
	if c.currentSignals == nil {
		return false
	}
	id, ok := c.table.Resolve(name)
	if !ok {
		return false
	}

	return c.currentSignals[id]
}

func (c *Checker) typeExpr(e *ast.Expression) typ.Type {
	var ty typ.Type

	switch e.Kind {
	case ast.ExprConstant:
		ty = e.Constant.Type()
	case ast.ExprIdentifier:
		ty = c.typeIdentifier(e.Resolved)
	case ast.ExprUnaryOp:
		ty = c.typeUnary(e)
	case ast.ExprBinaryOp:
		ty = c.typeBinary(e)
	case ast.ExprIf:
		ty = c.typeIf(e)
	case ast.ExprApplication:
		ty = c.typeApplication(e)
	case ast.ExprStructure:
		ty = c.typeExprStructure(e)
	case ast.ExprArray:
		ty = c.typeExprArray(e)
	case ast.ExprTuple:
		components := make([]typ.Type, len(e.Elements))
		for i := range e.Elements {
			components[i] = c.typeExpr(&e.Elements[i])
		}
		ty = typ.Tup(components...)
	case ast.ExprFieldAccess:
		ty = c.typeExprFieldAccess(e)
	case ast.ExprTupleElementAccess:
		ty = c.typeExprTupleElementAccess(e)
	case ast.ExprEnumLiteral:
		ty = typ.Enum(e.EnumName)
	case ast.ExprAbstraction:
		inputs := make([]typ.Type, len(e.Params))
		for i, p := range e.Params {
			inputs[i] = p.Type
		}
		bodyTy := c.typeExpr(e.Body)
		ty = typ.Abstract(inputs, bodyTy)
	default:
		ty = typ.Type{Kind: typ.Unresolved}
	}

	e.Type = &ty

	return ty
}

func (c *Checker) typeIdentifier(id ident.Identifier) typ.Type {
	if id == ident.Invalid {
		return typ.Type{Kind: typ.Unresolved}
	}
	sym := c.table.Symbol(id)
	if sym.Type == nil {
		// Forward reference to a function not yet type-checked in
		// declaration order; treated as unresolved rather than panicking,
		// since S1 already validated the name exists.
		return typ.Type{Kind: typ.Unresolved}
	}

	return *sym.Type
}

func (c *Checker) typeUnary(e *ast.Expression) typ.Type {
	operand := c.typeExpr(&e.Operands[0])
	switch e.Unary {
	case ast.OpNot:
		if operand.Kind != typ.Boolean {
			c.errs.Add(diag.TypeMismatch(typ.Bool(), operand, e.Location))
		}

		return typ.Bool()
	default: // OpNeg
		if operand.Kind != typ.Integer && operand.Kind != typ.Float {
			c.errs.Add(diag.TypeMismatch(typ.Int(), operand, e.Location))
		}

		return operand
	}
}

func (c *Checker) typeBinary(e *ast.Expression) typ.Type {
	left := c.typeExpr(&e.Operands[0])
	right := c.typeExpr(&e.Operands[1])

	switch e.Binary {
	case ast.OpAnd, ast.OpOr:
		if left.Kind != typ.Boolean {
			c.errs.Add(diag.TypeMismatch(typ.Bool(), left, e.Location))
		}
		if right.Kind != typ.Boolean {
			c.errs.Add(diag.TypeMismatch(typ.Bool(), right, e.Location))
		}

		return typ.Bool()
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if !left.Equal(right) {
			c.errs.Add(diag.TypeMismatch(left, right, e.Location))
		}

		return typ.Bool()
	default: // arithmetic
		if !left.Equal(right) {
			c.errs.Add(diag.TypeMismatch(left, right, e.Location))
		}

		return left
	}
}

func (c *Checker) typeIf(e *ast.Expression) typ.Type {
	cond := c.typeExpr(e.Condition)
	if cond.Kind != typ.Boolean {
		c.errs.Add(diag.TypeMismatch(typ.Bool(), cond, e.Condition.Location))
	}
	thenTy := c.typeExpr(e.Then)
	elseTy := c.typeExpr(e.Else)
	if !thenTy.Equal(elseTy) {
		c.errs.Add(diag.TypeMismatch(thenTy, elseTy, e.Else.Location))
	}

	return thenTy
}

func (c *Checker) typeApplication(e *ast.Expression) typ.Type {
	fnTy := c.typeExpr(e.Function)
	if fnTy.Kind != typ.AbstractKind {
		c.errs.Add(diag.ExpectInput(e.Location))

		for i := range e.Arguments {
			c.typeExpr(&e.Arguments[i])
		}

		return typ.Type{Kind: typ.Unresolved}
	}

	if len(fnTy.Inputs) != len(e.Arguments) {
		c.errs.Add(diag.IncompatibleInputsNumber(len(fnTy.Inputs), len(e.Arguments), e.Location))
	}

	n := len(fnTy.Inputs)
	if len(e.Arguments) < n {
		n = len(e.Arguments)
	}
	for i := 0; i < n; i++ {
		argTy := c.typeExpr(&e.Arguments[i])
		if !fnTy.Inputs[i].Equal(argTy) {
			c.errs.Add(diag.TypeMismatch(fnTy.Inputs[i], argTy, e.Arguments[i].Location))
		}
	}
	for i := n; i < len(e.Arguments); i++ {
		c.typeExpr(&e.Arguments[i])
	}

	return *fnTy.Output
}

func (c *Checker) typeExprStructure(e *ast.Expression) typ.Type {
	ty := typ.Struct(e.StructName)
	if e.ResolvedStruct == ident.Invalid {
		for i := range e.StructFields {
			c.typeExpr(&e.StructFields[i].Expression)
		}

		return ty
	}

	seen := make(map[ident.Identifier]bool, len(e.StructFields))
	for i := range e.StructFields {
		f := &e.StructFields[i]
		gotTy := c.typeExpr(&f.Expression)
		if f.Resolved == ident.Invalid {
			continue
		}
		seen[f.Resolved] = true
		wantTy := c.table.Symbol(f.Resolved).Type
		if wantTy != nil && !wantTy.Equal(gotTy) {
			c.errs.Add(diag.TypeMismatch(*wantTy, gotTy, f.Location))
		}
	}

	structInfo := c.table.Symbol(e.ResolvedStruct).Struct
	for _, fieldID := range structInfo.Fields {
		if !seen[fieldID] {
			c.errs.Add(diag.MissingField(e.StructName, c.table.Symbol(fieldID).Name, e.Location))
		}
	}

	return ty
}

func (c *Checker) typeExprArray(e *ast.Expression) typ.Type {
	if len(e.Elements) == 0 {
		return typ.Arr(typ.Type{Kind: typ.Unresolved}, 0)
	}

	elemTy := c.typeExpr(&e.Elements[0])
	for i := 1; i < len(e.Elements); i++ {
		got := c.typeExpr(&e.Elements[i])
		if !elemTy.Equal(got) {
			c.errs.Add(diag.TypeMismatch(elemTy, got, e.Elements[i].Location))
		}
	}

	return typ.Arr(elemTy, len(e.Elements))
}

func (c *Checker) typeExprFieldAccess(e *ast.Expression) typ.Type {
	baseTy := c.typeExpr(e.Base)
	if baseTy.Kind != typ.StructureKind {
		c.errs.Add(diag.ExpectStructure(e.Location))

		return typ.Type{Kind: typ.Unresolved}
	}

	structID, ok := c.table.Resolve(baseTy.Name)
	if !ok {
		return typ.Type{Kind: typ.Unresolved}
	}

	fieldID, fieldTy, found := c.lookupField(structID, e.Field)
	if !found {
		c.errs.Add(diag.UnknownField(baseTy.Name, e.Field, e.Location))

		return typ.Type{Kind: typ.Unresolved}
	}
	e.ResolvedField = fieldID

	return fieldTy
}

func (c *Checker) typeExprTupleElementAccess(e *ast.Expression) typ.Type {
	baseTy := c.typeExpr(e.Base)
	if baseTy.Kind != typ.TupleKind {
		c.errs.Add(diag.ExpectTuple(e.Location))

		return typ.Type{Kind: typ.Unresolved}
	}
	if e.Index < 0 || e.Index >= len(baseTy.Components) {
		c.errs.Add(diag.IndexOutOfBounds(e.Index, len(baseTy.Components), e.Location))

		return typ.Type{Kind: typ.Unresolved}
	}

	return baseTy.Components[e.Index]
}

// lookupField finds the field named name among structID's declared fields,
// returning its identifier and type.
func (c *Checker) lookupField(structID ident.Identifier, name string) (ident.Identifier, typ.Type, bool) {
	info := c.table.Symbol(structID).Struct
	if info == nil {
		return ident.Invalid, typ.Type{}, false
	}
	for _, fieldID := range info.Fields {
		sym := c.table.Symbol(fieldID)
		if sym.Name == name {
			ty := typ.Type{Kind: typ.Unresolved}
			if sym.Type != nil {
				ty = *sym.Type
			}

			return fieldID, ty, true
		}
	}

	return ident.Invalid, typ.Type{}, false
}
