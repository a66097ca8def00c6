// Package resolve implements S1, the symbol pass (spec.md §4.1): walk the
// AST, allocate an identifier for every declaration, resolve every
// reference, and accumulate diagnostics for anything that fails to resolve.
//
// It is split into the two sub-passes spec.md itself describes rather than
// one monolithic walk: ResolveTypedefs handles top-level declarations (so
// types may reference later-declared types), ResolveBodies handles node and
// function bodies, which is the only part of the tree with nested scopes.
package resolve

import (
	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// Pass1 runs ResolveTypedefs then ResolveBodies over file, returning the
// populated symbol table. Callers check errs.Termination() afterward; this
// function never aborts early, matching spec.md §4.10's accumulation model.
func Pass1(file *ast.File, errs *diag.Errors) *ident.Table {
	table := ident.NewTable()
	typedefs := ResolveTypedefs(file, table, errs)
	ResolveBodies(file, table, typedefs, errs)

	return table
}

// ResolveTypedefs is S1's first sub-pass (spec.md §4.1 step 1): insert all
// struct, enum, and array type names into the global scope, then fill in
// their bodies, then insert function and node names as placeholders. It
// returns a lookup from resolved type identifier to the originating
// *ast.Typedef, which ResolveBodies needs to validate struct-literal field
// names against.
func ResolveTypedefs(file *ast.File, table *ident.Table, errs *diag.Errors) map[ident.Identifier]*ast.Typedef {
	byID := make(map[ident.Identifier]*ast.Typedef, len(file.Typedefs))

	for i := range file.Typedefs {
		td := &file.Typedefs[i]
		kind := ident.KindStructType
		switch td.Kind {
		case ast.TypedefEnum:
			kind = ident.KindEnumType
		case ast.TypedefArrayAlias:
			kind = ident.KindArrayType
		}

		id, ok := table.Declare(td.Name, td.Location, kind)
		if !ok {
			errs.Add(diag.DuplicateBinding(td.Name, td.Location))

			continue
		}
		td.Resolved = id
		byID[id] = td
	}

	for i := range file.Typedefs {
		td := &file.Typedefs[i]
		if td.Resolved == ident.Invalid {
			continue
		}

		switch td.Kind {
		case ast.TypedefStruct:
			resolveStructFields(td, table, errs)
		case ast.TypedefEnum:
			resolveEnumElements(td, table, errs)
		case ast.TypedefArrayAlias:
			table.Symbol(td.Resolved).Array = &ident.ArrayInfo{Element: td.Element, Size: td.Size}
			resolveTypeRefs(td.Element, td.Location, table, errs)
		}
	}

	for i := range file.Functions {
		fn := &file.Functions[i]
		id, ok := table.Declare(fn.Name, fn.Location, ident.KindFunction)
		if !ok {
			errs.Add(diag.DuplicateBinding(fn.Name, fn.Location))

			continue
		}
		fn.Resolved = id
	}

	for i := range file.Nodes {
		n := &file.Nodes[i]
		id, ok := table.Declare(n.Name, n.Location, ident.KindNode)
		if !ok {
			errs.Add(diag.DuplicateBinding(n.Name, n.Location))

			continue
		}
		n.Resolved = id
		table.Symbol(id).Node = &ident.NodeInfo{
			IsComponent: n.IsComponent,
			Outputs:     make(map[string]ident.Identifier),
			Locals:      make(map[string]ident.Identifier),
		}
	}

	return byID
}

func resolveStructFields(td *ast.Typedef, table *ident.Table, errs *diag.Errors) {
	table.Local()
	var fields []ident.Identifier
	for i := range td.Fields {
		f := &td.Fields[i]
		id, ok := table.Declare(f.Name, f.Location, ident.KindIdentifier)
		if !ok {
			errs.Add(diag.DuplicateBinding(f.Name, f.Location))

			continue
		}
		f.Resolved = id
		table.SetType(id, f.Type)
		fields = append(fields, id)
	}
	table.Global()

	table.Symbol(td.Resolved).Struct = &ident.StructInfo{Fields: fields}

	for i := range td.Fields {
		resolveTypeRefs(td.Fields[i].Type, td.Fields[i].Location, table, errs)
	}
}

func resolveEnumElements(td *ast.Typedef, table *ident.Table, errs *diag.Errors) {
	table.Local()
	var elements []ident.Identifier
	resolved := make([]ident.Identifier, len(td.Elements))
	for i, name := range td.Elements {
		id, ok := table.Declare(name, td.Location, ident.KindEnumElement)
		if !ok {
			errs.Add(diag.DuplicateBinding(name, td.Location))

			continue
		}
		table.Symbol(id).EnumElement = &ident.EnumElementInfo{Parent: td.Resolved}
		elements = append(elements, id)
		resolved[i] = id
	}
	table.Global()

	td.ResolvedElements = resolved
	table.Symbol(td.Resolved).Enum = &ident.EnumInfo{Elements: elements}
}

// resolveTypeRefs walks ty looking for Structure/Enumeration names and
// checks that each resolves to a typedef of the matching kind, emitting
// UnknownElement otherwise. typ.Type carries only textual names (it sits
// below ident in the dependency graph), so this existence check is the only
// place those names are validated.
func resolveTypeRefs(ty typ.Type, at loc.Location, table *ident.Table, errs *diag.Errors) {
	switch ty.Kind {
	case typ.StructureKind:
		id, ok := table.Resolve(ty.Name)
		if !ok || table.Symbol(id).Kind != ident.KindStructType {
			errs.Add(diag.UnknownElement(ty.Name, at))
		}
	case typ.EnumerationKind:
		id, ok := table.Resolve(ty.Name)
		if !ok || table.Symbol(id).Kind != ident.KindEnumType {
			errs.Add(diag.UnknownElement(ty.Name, at))
		}
	case typ.OptionKind, typ.ArrayKind:
		resolveTypeRefs(*ty.Elem, at, table, errs)
	case typ.TupleKind:
		for _, c := range ty.Components {
			resolveTypeRefs(c, at, table, errs)
		}
	case typ.AbstractKind:
		for _, in := range ty.Inputs {
			resolveTypeRefs(in, at, table, errs)
		}
		resolveTypeRefs(*ty.Output, at, table, errs)
	}
}
