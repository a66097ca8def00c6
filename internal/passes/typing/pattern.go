package typing

import (
	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/typ"
)

// checkPattern unifies p against scrutinee, per spec.md §4.2 Match ("each arm
// pattern must unify with the scrutinee type"), assigning scrutinee's type
// (or a sub-part of it) to every binder S1 resolved.
func (c *Checker) checkPattern(p *ast.Pattern, scrutinee typ.Type) {
	switch p.Kind {
	case ast.PatternWildcard:
		return
	case ast.PatternLiteral:
		litTy := p.Constant.Type()
		if !litTy.Equal(scrutinee) {
			c.errs.Add(diag.TypeMismatch(scrutinee, litTy, p.Location))
		}
	case ast.PatternBind:
		if p.Resolved != ident.Invalid {
			c.table.SetType(p.Resolved, scrutinee)
		}
	case ast.PatternStruct:
		c.checkStructPattern(p, scrutinee)
	case ast.PatternEnum:
		if scrutinee.Kind != typ.EnumerationKind {
			c.errs.Add(diag.TypeMismatch(scrutinee, typ.Enum(p.EnumName), p.Location))
		}
	case ast.PatternTuple:
		if scrutinee.Kind != typ.TupleKind {
			c.errs.Add(diag.ExpectTuple(p.Location))

			return
		}
		if len(scrutinee.Components) != len(p.Elements) {
			c.errs.Add(diag.IncompatibleLength(len(scrutinee.Components), len(p.Elements), p.Location))

			return
		}
		for i := range p.Elements {
			c.checkPattern(&p.Elements[i], scrutinee.Components[i])
		}
	}
}

func (c *Checker) checkStructPattern(p *ast.Pattern, scrutinee typ.Type) {
	if scrutinee.Kind != typ.StructureKind {
		c.errs.Add(diag.ExpectStructure(p.Location))

		return
	}

	if p.Resolved == ident.Invalid {
		for i := range p.Fields {
			c.checkPattern(&p.Fields[i].Pattern, typ.Type{Kind: typ.Unresolved})
		}

		return
	}

	seen := make(map[ident.Identifier]bool, len(p.Fields))
	for i := range p.Fields {
		f := &p.Fields[i]
		if f.Resolved == ident.Invalid {
			c.checkPattern(&f.Pattern, typ.Type{Kind: typ.Unresolved})

			continue
		}
		seen[f.Resolved] = true
		fieldTy := typ.Type{Kind: typ.Unresolved}
		if sym := c.table.Symbol(f.Resolved); sym.Type != nil {
			fieldTy = *sym.Type
		}
		c.checkPattern(&f.Pattern, fieldTy)
	}

	structInfo := c.table.Symbol(p.Resolved).Struct
	for _, fieldID := range structInfo.Fields {
		if !seen[fieldID] {
			c.errs.Add(diag.MissingField(p.StructName, c.table.Symbol(fieldID).Name, p.Location))
		}
	}
}
