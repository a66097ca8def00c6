package resolve

import (
	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
)

// ResolveBodies is S1's second sub-pass (spec.md §4.1 step 2): for each
// function and node body, open a local scope, declare binders in order, and
// resolve every reference within. typedefs is the lookup ResolveTypedefs
// returned, used to validate struct-literal and pattern field names.
func ResolveBodies(file *ast.File, table *ident.Table, typedefs map[ident.Identifier]*ast.Typedef, errs *diag.Errors) {
	r := &resolver{table: table, typedefs: typedefs, errs: errs}

	for i := range file.Functions {
		r.resolveFunction(&file.Functions[i])
	}

	// Headers resolve before any equation body, across every node: a
	// NodeApplication may call a node declared later in the file, and by
	// then that callee's output identifiers must already be known.
	for i := range file.Nodes {
		r.resolveNodeHeader(&file.Nodes[i])
	}
	for i := range file.Nodes {
		r.resolveNodeEquations(&file.Nodes[i])
	}
}

type resolver struct {
	table    *ident.Table
	typedefs map[ident.Identifier]*ast.Typedef
	errs     *diag.Errors
}

func (r *resolver) resolveFunction(fn *ast.Function) {
	r.table.Local()
	for i := range fn.Params {
		p := &fn.Params[i]
		id, ok := r.table.Declare(p.Name, fn.Location, ident.KindIdentifier)
		if !ok {
			r.errs.Add(diag.DuplicateBinding(p.Name, fn.Location))

			continue
		}
		p.Resolved = id
		r.table.SetType(id, p.Type)
		resolveTypeRefs(p.Type, fn.Location, r.table, r.errs)
	}
	r.resolveExpr(&fn.Body)
	r.table.Global()
}

// resolveNodeHeader declares a node's inputs, outputs, and locals in a
// scope that is opened and immediately closed again: the identifiers it
// allocates are retained on the NodeInfo and on each SignalDecl, but the
// scope itself does not stay open across node boundaries (spec.md §4.1 step
// 2's "insert inputs, then outputs, then locals" happens once per node, not
// once for the whole file).
func (r *resolver) resolveNodeHeader(n *ast.Node) {
	if n.Resolved == ident.Invalid {
		return
	}
	info := r.table.Symbol(n.Resolved).Node

	r.table.Local()
	for i := range n.Inputs {
		s := &n.Inputs[i]
		id, ok := r.table.Declare(s.Name, s.Location, ident.KindIdentifier)
		if !ok {
			r.errs.Add(diag.DuplicateBinding(s.Name, s.Location))

			continue
		}
		s.Resolved = id
		r.table.SetType(id, s.Type)
		resolveTypeRefs(s.Type, s.Location, r.table, r.errs)
		info.Inputs = append(info.Inputs, id)
	}
	for i := range n.Outputs {
		s := &n.Outputs[i]
		id, ok := r.table.Declare(s.Name, s.Location, ident.KindIdentifier)
		if !ok {
			r.errs.Add(diag.DuplicateBinding(s.Name, s.Location))

			continue
		}
		s.Resolved = id
		r.table.SetType(id, s.Type)
		resolveTypeRefs(s.Type, s.Location, r.table, r.errs)
		info.Outputs[s.Name] = id
	}
	for i := range n.Locals {
		s := &n.Locals[i]
		id, ok := r.table.Declare(s.Name, s.Location, ident.KindIdentifier)
		if !ok {
			r.errs.Add(diag.DuplicateBinding(s.Name, s.Location))

			continue
		}
		s.Resolved = id
		r.table.SetType(id, s.Type)
		resolveTypeRefs(s.Type, s.Location, r.table, r.errs)
		info.Locals[s.Name] = id
	}
	r.table.Global()
}

// resolveNodeEquations reopens a scope around the identifiers
// resolveNodeHeader already allocated (via Bind, not Declare, so no fresh
// identifiers are minted) and resolves every equation and reference within.
func (r *resolver) resolveNodeEquations(n *ast.Node) {
	if n.Resolved == ident.Invalid {
		return
	}
	info := r.table.Symbol(n.Resolved).Node

	r.table.Local()
	for i := range n.Inputs {
		if n.Inputs[i].Resolved != ident.Invalid {
			r.table.Bind(n.Inputs[i].Name, n.Inputs[i].Resolved)
		}
	}
	for i := range n.Outputs {
		if n.Outputs[i].Resolved != ident.Invalid {
			r.table.Bind(n.Outputs[i].Name, n.Outputs[i].Resolved)
		}
	}
	for i := range n.Locals {
		if n.Locals[i].Resolved != ident.Invalid {
			r.table.Bind(n.Locals[i].Name, n.Locals[i].Resolved)
		}
	}

	for i := range n.Equations {
		eq := &n.Equations[i]
		id, ok := r.table.Resolve(eq.Name)
		if !ok {
			r.errs.Add(diag.UnknownSignal(eq.Name, eq.Location))
		} else if r.isInput(info, id) {
			r.errs.Add(diag.UnknownSignal(eq.Name, eq.Location))
		} else {
			eq.Resolved = id
		}
		r.resolveStream(&eq.Expression)
	}

	r.table.Global()
}

func (r *resolver) isInput(info *ident.NodeInfo, id ident.Identifier) bool {
	for _, in := range info.Inputs {
		if in == id {
			return true
		}
	}

	return false
}

func (r *resolver) resolveStream(e *ast.StreamExpression) {
	switch e.Kind {
	case ast.StreamConstant:
	case ast.StreamIdentifier:
		id, ok := r.table.Resolve(e.Name)
		if !ok {
			r.errs.Add(diag.UnknownSignal(e.Name, e.Location))

			return
		}
		e.Resolved = id
	case ast.StreamFollowedBy:
		if e.InitialRaw != nil {
			r.resolveExpr(e.InitialRaw)
		}
		if e.Delayed != nil {
			r.resolveStream(e.Delayed)
		}
	case ast.StreamMapApplication:
		if e.Function != nil {
			r.resolveExpr(e.Function)
		}
		for i := range e.Inputs {
			r.resolveStream(&e.Inputs[i])
		}
	case ast.StreamNodeApplication:
		nodeID, ok := r.table.Resolve(e.Node)
		if !ok || r.table.Symbol(nodeID).Kind != ident.KindNode {
			r.errs.Add(diag.UnknownElement(e.Node, e.Location))
		} else {
			e.ResolvedNode = nodeID
			info := r.table.Symbol(nodeID).Node
			if info.IsComponent {
				r.errs.Add(diag.ComponentCall(e.Node, e.Location))
			}
			outID, ok := info.Outputs[e.Output]
			if !ok {
				r.errs.Add(diag.UnknownOutputSignal(e.Node, e.Output, e.Location))
			} else {
				e.ResolvedOutput = outID
			}
		}
		for i := range e.Arguments {
			r.resolveStream(&e.Arguments[i])
		}
	case ast.StreamStructure:
		td := r.resolveStructName(e.StructName, e.Location)
		if td != nil {
			e.ResolvedStruct = td.Resolved
			for i := range e.Fields {
				f := &e.Fields[i]
				if id, ok := fieldByName(td, f.Name); ok {
					f.Resolved = id
				} else {
					r.errs.Add(diag.UnknownField(e.StructName, f.Name, f.Location))
				}
				r.resolveStream(&f.Expression)
			}

			return
		}
		for i := range e.Fields {
			r.resolveStream(&e.Fields[i].Expression)
		}
	case ast.StreamArray, ast.StreamTuple:
		for i := range e.Elements {
			r.resolveStream(&e.Elements[i])
		}
	case ast.StreamMatch:
		if e.Scrutinee != nil {
			r.resolveStream(e.Scrutinee)
		}
		for i := range e.Arms {
			arm := &e.Arms[i]
			r.table.Local()
			r.resolvePattern(&arm.Pattern)
			if arm.Guard != nil {
				r.resolveStream(arm.Guard)
			}
			r.resolveStream(&arm.Body)
			r.table.Global()
		}
	case ast.StreamWhen:
		if e.Option != nil {
			r.resolveStream(e.Option)
		}
		r.table.Local()
		id, ok := r.table.Declare(e.BindName, e.Location, ident.KindIdentifier)
		if !ok {
			r.errs.Add(diag.DuplicateBinding(e.BindName, e.Location))
		} else {
			e.ResolvedBind = id
		}
		if e.Present != nil {
			r.resolveStream(e.Present)
		}
		r.table.Global()
		if e.Default != nil {
			r.resolveStream(e.Default)
		}
	case ast.StreamFieldAccess:
		if e.Base != nil {
			r.resolveStream(e.Base)
		}
	case ast.StreamTupleElementAccess:
		if e.Base != nil {
			r.resolveStream(e.Base)
		}
	case ast.StreamFold:
		if e.Array != nil {
			r.resolveStream(e.Array)
		}
		if e.Init != nil {
			r.resolveStream(e.Init)
		}
		if e.Combine != nil {
			r.resolveExpr(e.Combine)
		}
	case ast.StreamSort:
		if e.Array != nil {
			r.resolveStream(e.Array)
		}
		if e.Comparator != nil {
			r.resolveExpr(e.Comparator)
		}
	case ast.StreamZip:
		for i := range e.Arrays {
			r.resolveStream(&e.Arrays[i])
		}
	}
}

func (r *resolver) resolveExpr(e *ast.Expression) {
	switch e.Kind {
	case ast.ExprConstant:
	case ast.ExprIdentifier:
		id, ok := r.table.Resolve(e.Name)
		if !ok {
			r.errs.Add(diag.UnknownElement(e.Name, e.Location))

			return
		}
		e.Resolved = id
	case ast.ExprUnaryOp, ast.ExprBinaryOp:
		for i := range e.Operands {
			r.resolveExpr(&e.Operands[i])
		}
	case ast.ExprIf:
		if e.Condition != nil {
			r.resolveExpr(e.Condition)
		}
		if e.Then != nil {
			r.resolveExpr(e.Then)
		}
		if e.Else != nil {
			r.resolveExpr(e.Else)
		}
	case ast.ExprApplication:
		if e.Function != nil {
			r.resolveExpr(e.Function)
		}
		for i := range e.Arguments {
			r.resolveExpr(&e.Arguments[i])
		}
	case ast.ExprStructure:
		td := r.resolveStructName(e.StructName, e.Location)
		if td != nil {
			e.ResolvedStruct = td.Resolved
			for i := range e.StructFields {
				f := &e.StructFields[i]
				if id, ok := fieldByName(td, f.Name); ok {
					f.Resolved = id
				} else {
					r.errs.Add(diag.UnknownField(e.StructName, f.Name, f.Location))
				}
				r.resolveExpr(&f.Expression)
			}

			return
		}
		for i := range e.StructFields {
			r.resolveExpr(&e.StructFields[i].Expression)
		}
	case ast.ExprArray, ast.ExprTuple:
		for i := range e.Elements {
			r.resolveExpr(&e.Elements[i])
		}
	case ast.ExprFieldAccess:
		if e.Base != nil {
			r.resolveExpr(e.Base)
		}
	case ast.ExprTupleElementAccess:
		if e.Base != nil {
			r.resolveExpr(e.Base)
		}
	case ast.ExprEnumLiteral:
		id, ok := r.table.Resolve(e.EnumName)
		if !ok || r.table.Symbol(id).Kind != ident.KindEnumType {
			r.errs.Add(diag.UnknownEnumeration(e.EnumName, e.Location))

			return
		}
		e.ResolvedEnum = id
		found := false
		for _, elemID := range r.table.Symbol(id).Enum.Elements {
			if r.table.Symbol(elemID).Name == e.EnumElement {
				found = true

				break
			}
		}
		if !found {
			r.errs.Add(diag.UnknownElement(e.EnumElement, e.Location))
		}
	case ast.ExprAbstraction:
		r.table.Local()
		for i := range e.Params {
			p := &e.Params[i]
			id, ok := r.table.Declare(p.Name, e.Location, ident.KindIdentifier)
			if !ok {
				r.errs.Add(diag.DuplicateBinding(p.Name, e.Location))

				continue
			}
			p.Resolved = id
			r.table.SetType(id, p.Type)
		}
		if e.Body != nil {
			r.resolveExpr(e.Body)
		}
		r.table.Global()
	}
}

func (r *resolver) resolvePattern(p *ast.Pattern) {
	switch p.Kind {
	case ast.PatternLiteral, ast.PatternWildcard:
	case ast.PatternBind:
		id, ok := r.table.Declare(p.Name, p.Location, ident.KindIdentifier)
		if !ok {
			r.errs.Add(diag.DuplicateBinding(p.Name, p.Location))

			return
		}
		p.Resolved = id
	case ast.PatternStruct:
		td := r.resolveStructName(p.StructName, p.Location)
		if td != nil {
			p.Resolved = td.Resolved
			for i := range p.Fields {
				f := &p.Fields[i]
				if id, ok := fieldByName(td, f.Name); ok {
					f.Resolved = id
				} else {
					r.errs.Add(diag.UnknownField(p.StructName, f.Name, p.Location))
				}
				r.resolvePattern(&f.Pattern)
			}

			return
		}
		for i := range p.Fields {
			r.resolvePattern(&p.Fields[i].Pattern)
		}
	case ast.PatternEnum:
		id, ok := r.table.Resolve(p.EnumName)
		if !ok || r.table.Symbol(id).Kind != ident.KindEnumType {
			r.errs.Add(diag.UnknownEnumeration(p.EnumName, p.Location))

			return
		}
		p.Resolved = id
		found := false
		for _, elemID := range r.table.Symbol(id).Enum.Elements {
			if r.table.Symbol(elemID).Name == p.Name {
				found = true

				break
			}
		}
		if !found {
			r.errs.Add(diag.UnknownElement(p.Name, p.Location))
		}
	case ast.PatternTuple:
		for i := range p.Elements {
			r.resolvePattern(&p.Elements[i])
		}
	}
}

// resolveStructName resolves name to a struct typedef and returns it, or
// nil (having already recorded an UnknownElement) if it does not resolve to
// a struct type.
func (r *resolver) resolveStructName(name string, at loc.Location) *ast.Typedef {
	id, ok := r.table.Resolve(name)
	if !ok || r.table.Symbol(id).Kind != ident.KindStructType {
		r.errs.Add(diag.UnknownElement(name, at))

		return nil
	}

	return r.typedefs[id]
}

func fieldByName(td *ast.Typedef, name string) (ident.Identifier, bool) {
	for _, f := range td.Fields {
		if f.Name == name {
			return f.Resolved, true
		}
	}

	return ident.Invalid, false
}
