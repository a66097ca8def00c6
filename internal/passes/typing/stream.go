package typing

import (
	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/typ"
)

// typeStream types a node-equation stream expression, mirroring typeExpr's
// per-kind dispatch but over the larger grammar that includes fby, node
// applications, match, when, fold, sort, and zip (spec.md §4.2).
func (c *Checker) typeStream(e *ast.StreamExpression) typ.Type {
	var ty typ.Type

	switch e.Kind {
	case ast.StreamConstant:
		ty = e.Constant.Type()
	case ast.StreamIdentifier:
		ty = c.typeIdentifier(e.Resolved)
	case ast.StreamFollowedBy:
		ty = c.typeFollowedBy(e)
	case ast.StreamMapApplication:
		ty = c.typeMapApplication(e)
	case ast.StreamNodeApplication:
		ty = c.typeNodeApplication(e)
	case ast.StreamStructure:
		ty = c.typeStreamStructure(e)
	case ast.StreamArray:
		ty = c.typeStreamArray(e)
	case ast.StreamTuple:
		components := make([]typ.Type, len(e.Elements))
		for i := range e.Elements {
			components[i] = c.typeStream(&e.Elements[i])
		}
		ty = typ.Tup(components...)
	case ast.StreamMatch:
		ty = c.typeMatch(e)
	case ast.StreamWhen:
		ty = c.typeWhen(e)
	case ast.StreamFieldAccess:
		ty = c.typeStreamFieldAccess(e)
	case ast.StreamTupleElementAccess:
		ty = c.typeStreamTupleElementAccess(e)
	case ast.StreamFold:
		ty = c.typeFold(e)
	case ast.StreamSort:
		ty = c.typeSort(e)
	case ast.StreamZip:
		ty = c.typeZip(e)
	default:
		ty = typ.Type{Kind: typ.Unresolved}
	}

	e.Type = &ty

	return ty
}

func (c *Checker) typeFollowedBy(e *ast.StreamExpression) typ.Type {
	initTy := e.Initial.Type()
	if e.InitialRaw != nil {
		if !e.InitialRaw.IsSyntacticallyConstant(c.isFreeSignal) {
			c.errs.Add(diag.ExpectConstant(e.InitialRaw.Location))
		}
		rawTy := c.typeExpr(e.InitialRaw)
		if !initTy.Equal(rawTy) {
			c.errs.Add(diag.TypeMismatch(initTy, rawTy, e.InitialRaw.Location))
		}
	}

	delayedTy := c.typeStream(e.Delayed)
	if !initTy.Equal(delayedTy) {
		c.errs.Add(diag.TypeMismatch(initTy, delayedTy, e.Location))
	}

	return initTy
}

func (c *Checker) typeMapApplication(e *ast.StreamExpression) typ.Type {
	fnTy := c.typeExpr(e.Function)

	elemTypes := make([]typ.Type, len(e.Inputs))
	size := -1
	for i := range e.Inputs {
		it := c.typeStream(&e.Inputs[i])
		if it.Kind != typ.ArrayKind {
			c.errs.Add(diag.ExpectArray(e.Inputs[i].Location))

			continue
		}
		elemTypes[i] = *it.Elem
		if size == -1 {
			size = it.Size
		} else if size != it.Size {
			c.errs.Add(diag.IncompatibleLength(size, it.Size, e.Inputs[i].Location))
		}
	}

	if fnTy.Kind != typ.AbstractKind {
		c.errs.Add(diag.ExpectInput(e.Location))

		return typ.Type{Kind: typ.Unresolved}
	}

	if len(fnTy.Inputs) != len(e.Inputs) {
		c.errs.Add(diag.IncompatibleInputsNumber(len(fnTy.Inputs), len(e.Inputs), e.Location))
	}

	n := len(fnTy.Inputs)
	if len(elemTypes) < n {
		n = len(elemTypes)
	}
	for i := 0; i < n; i++ {
		if !fnTy.Inputs[i].Equal(elemTypes[i]) {
			c.errs.Add(diag.TypeMismatch(fnTy.Inputs[i], elemTypes[i], e.Inputs[i].Location))
		}
	}

	if size == -1 {
		size = 0
	}

	return typ.Arr(*fnTy.Output, size)
}

func (c *Checker) typeNodeApplication(e *ast.StreamExpression) typ.Type {
	for i := range e.Arguments {
		c.typeStream(&e.Arguments[i])
	}

	if e.ResolvedNode == ident.Invalid {
		return typ.Type{Kind: typ.Unresolved}
	}

	info := c.table.Symbol(e.ResolvedNode).Node
	if len(info.Inputs) != len(e.Arguments) {
		c.errs.Add(diag.IncompatibleInputsNumber(len(info.Inputs), len(e.Arguments), e.Location))
	}

	n := len(info.Inputs)
	if len(e.Arguments) < n {
		n = len(e.Arguments)
	}
	for i := 0; i < n; i++ {
		argTy := c.typeStream(&e.Arguments[i])
		want := c.table.Symbol(info.Inputs[i]).Type
		if want != nil && !want.Equal(argTy) {
			c.errs.Add(diag.TypeMismatch(*want, argTy, e.Arguments[i].Location))
		}
	}

	if e.ResolvedOutput == ident.Invalid {
		return typ.Type{Kind: typ.Unresolved}
	}

	outTy := c.table.Symbol(e.ResolvedOutput).Type
	if outTy == nil {
		return typ.Type{Kind: typ.Unresolved}
	}

	return *outTy
}

func (c *Checker) typeStreamStructure(e *ast.StreamExpression) typ.Type {
	ty := typ.Struct(e.StructName)
	if e.ResolvedStruct == ident.Invalid {
		for i := range e.Fields {
			c.typeStream(&e.Fields[i].Expression)
		}

		return ty
	}

	seen := make(map[ident.Identifier]bool, len(e.Fields))
	for i := range e.Fields {
		f := &e.Fields[i]
		gotTy := c.typeStream(&f.Expression)
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

func (c *Checker) typeStreamArray(e *ast.StreamExpression) typ.Type {
	if len(e.Elements) == 0 {
		return typ.Arr(typ.Type{Kind: typ.Unresolved}, 0)
	}

	elemTy := c.typeStream(&e.Elements[0])
	for i := 1; i < len(e.Elements); i++ {
		got := c.typeStream(&e.Elements[i])
		if !elemTy.Equal(got) {
			c.errs.Add(diag.TypeMismatch(elemTy, got, e.Elements[i].Location))
		}
	}

	return typ.Arr(elemTy, len(e.Elements))
}

func (c *Checker) typeMatch(e *ast.StreamExpression) typ.Type {
	scrutineeTy := c.typeStream(e.Scrutinee)

	var resultTy typ.Type
	haveResult := false

	for i := range e.Arms {
		arm := &e.Arms[i]
		c.table.Local()
		c.checkPattern(&arm.Pattern, scrutineeTy)
		if arm.Guard != nil {
			guardTy := c.typeStream(arm.Guard)
			if guardTy.Kind != typ.Boolean {
				c.errs.Add(diag.TypeMismatch(typ.Bool(), guardTy, arm.Guard.Location))
			}
		}
		bodyTy := c.typeStream(&arm.Body)
		c.table.Global()

		if !haveResult {
			resultTy = bodyTy
			haveResult = true
		} else if !resultTy.Equal(bodyTy) {
			c.errs.Add(diag.TypeMismatch(resultTy, bodyTy, arm.Location))
		}
	}

	if !haveResult {
		return typ.Type{Kind: typ.Unresolved}
	}

	return resultTy
}

func (c *Checker) typeWhen(e *ast.StreamExpression) typ.Type {
	optTy := c.typeStream(e.Option)
	if optTy.Kind != typ.OptionKind {
		c.errs.Add(diag.ExpectOption(e.Location))

		c.typeStream(e.Present)
		c.typeStream(e.Default)

		return typ.Type{Kind: typ.Unresolved}
	}

	if e.ResolvedBind != ident.Invalid {
		c.table.SetType(e.ResolvedBind, *optTy.Elem)
	}

	presentTy := c.typeStream(e.Present)
	defaultTy := c.typeStream(e.Default)
	if !presentTy.Equal(defaultTy) {
		c.errs.Add(diag.TypeMismatch(presentTy, defaultTy, e.Location))
	}

	return presentTy
}

func (c *Checker) typeStreamFieldAccess(e *ast.StreamExpression) typ.Type {
	baseTy := c.typeStream(e.Base)
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

func (c *Checker) typeStreamTupleElementAccess(e *ast.StreamExpression) typ.Type {
	baseTy := c.typeStream(e.Base)
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

func (c *Checker) typeFold(e *ast.StreamExpression) typ.Type {
	arrTy := c.typeStream(e.Array)
	initTy := c.typeStream(e.Init)
	combineTy := c.typeExpr(e.Combine)

	if arrTy.Kind != typ.ArrayKind {
		c.errs.Add(diag.ExpectArray(e.Array.Location))

		return initTy
	}
	elemTy := *arrTy.Elem

	if combineTy.Kind != typ.AbstractKind || len(combineTy.Inputs) != 2 {
		c.errs.Add(diag.IncompatibleInputsNumber(2, len(combineTy.Inputs), e.Combine.Location))

		return initTy
	}

	if !combineTy.Inputs[0].Equal(initTy) {
		c.errs.Add(diag.TypeMismatch(combineTy.Inputs[0], initTy, e.Init.Location))
	}
	if !combineTy.Inputs[1].Equal(elemTy) {
		c.errs.Add(diag.TypeMismatch(combineTy.Inputs[1], elemTy, e.Array.Location))
	}
	if !combineTy.Output.Equal(initTy) {
		c.errs.Add(diag.TypeMismatch(initTy, *combineTy.Output, e.Combine.Location))
	}

	return initTy
}

func (c *Checker) typeSort(e *ast.StreamExpression) typ.Type {
	arrTy := c.typeStream(e.Array)
	cmpTy := c.typeExpr(e.Comparator)

	if arrTy.Kind != typ.ArrayKind {
		c.errs.Add(diag.ExpectArray(e.Array.Location))

		return arrTy
	}
	elemTy := *arrTy.Elem

	if cmpTy.Kind != typ.AbstractKind || len(cmpTy.Inputs) != 2 {
		c.errs.Add(diag.IncompatibleInputsNumber(2, len(cmpTy.Inputs), e.Comparator.Location))

		return arrTy
	}

	if !cmpTy.Inputs[0].Equal(elemTy) || !cmpTy.Inputs[1].Equal(elemTy) {
		c.errs.Add(diag.TypeMismatch(elemTy, cmpTy.Inputs[0], e.Comparator.Location))
	}
	if cmpTy.Output.Kind != typ.Integer {
		c.errs.Add(diag.TypeMismatch(typ.Int(), *cmpTy.Output, e.Comparator.Location))
	}

	return arrTy
}

func (c *Checker) typeZip(e *ast.StreamExpression) typ.Type {
	if len(e.Arrays) == 0 {
		c.errs.Add(diag.ExpectInput(e.Location))

		return typ.Type{Kind: typ.Unresolved}
	}

	elemTypes := make([]typ.Type, len(e.Arrays))
	size := -1
	for i := range e.Arrays {
		it := c.typeStream(&e.Arrays[i])
		if it.Kind != typ.ArrayKind {
			c.errs.Add(diag.ExpectArray(e.Arrays[i].Location))

			continue
		}
		elemTypes[i] = *it.Elem
		if size == -1 {
			size = it.Size
		} else if size != it.Size {
			c.errs.Add(diag.IncompatibleLength(size, it.Size, e.Arrays[i].Location))
		}
	}
	if size == -1 {
		size = 0
	}

	if len(elemTypes) == 1 {
		return typ.Arr(elemTypes[0], size)
	}

	return typ.Arr(typ.Tup(elemTypes...), size)
}
