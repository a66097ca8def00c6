// Package typ defines the compiler's type and constant values (spec.md §3
// "Type", "Constant"). It sits below ident in the dependency order (errors,
// location, interned names) -> (types, patterns, constants) -> (symbol
// table) -> ..., so it imports nothing from this module.
package typ

import (
	"fmt"
	"math"
	"strings"
)

// Kind tags the variant a Type value holds. Array, Option, Tuple, Structure,
// Enumeration, and Abstract carry extra payload in the fields below them;
// the rest are carried by Kind alone.
type Kind int

const (
	Integer Kind = iota
	Float
	Boolean
	Unit
	OptionKind
	TupleKind
	ArrayKind
	StructureKind
	EnumerationKind
	AbstractKind
	// Unresolved is a placeholder allowed only during S2 and must be erased
	// (resolved to a concrete Kind) before S3 (spec.md §3 "Type").
	Unresolved
)

// Type is a tagged union over the type grammar of spec.md §3. Structure and
// Enumeration carry the declaring identifier's textual name rather than an
// ident.Identifier, because typ sits below the ident package in the
// dependency graph and must not import it; passes that need the resolved
// identifier look it up in the symbol table by that name.
type Type struct {
	Kind Kind

	// Option, Array element type.
	Elem *Type
	// Array size; meaningful only for ArrayKind.
	Size int
	// Tuple component types; meaningful only for TupleKind.
	Components []Type
	// Structure/Enumeration declared name; meaningful only for those kinds.
	Name string
	// Abstract function signature; meaningful only for AbstractKind.
	Inputs []Type
	Output *Type
	// Unresolved placeholder name, carried only pre-S3.
	Placeholder string
}

// Convenience constructors mirror the constants spec.md §3 names literally.

func Int() Type  { return Type{Kind: Integer} }
func Flt() Type  { return Type{Kind: Float} }
func Bool() Type { return Type{Kind: Boolean} }
func Unt() Type  { return Type{Kind: Unit} }

func Opt(elem Type) Type {
	return Type{Kind: OptionKind, Elem: &elem}
}

func Tup(components ...Type) Type {
	return Type{Kind: TupleKind, Components: components}
}

func Arr(elem Type, size int) Type {
	return Type{Kind: ArrayKind, Elem: &elem, Size: size}
}

func Struct(name string) Type {
	return Type{Kind: StructureKind, Name: name}
}

func Enum(name string) Type {
	return Type{Kind: EnumerationKind, Name: name}
}

func Abstract(inputs []Type, output Type) Type {
	return Type{Kind: AbstractKind, Inputs: inputs, Output: &output}
}

func UnresolvedName(name string) Type {
	return Type{Kind: Unresolved, Placeholder: name}
}

// IsUnresolved reports whether t is the S2-only placeholder variant.
func (t Type) IsUnresolved() bool {
	return t.Kind == Unresolved
}

// Equal reports structural equality. Two Structure/Enumeration types are
// equal iff their declared names match (this compiler has no structural
// record types, only nominal ones, per spec.md's "Structure literal requires
// S to be a struct typedef").
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}

	switch t.Kind {
	case Integer, Float, Boolean, Unit, Unresolved:
		return true
	case OptionKind:
		return t.Elem.Equal(*other.Elem)
	case ArrayKind:
		return t.Size == other.Size && t.Elem.Equal(*other.Elem)
	case TupleKind:
		if len(t.Components) != len(other.Components) {
			return false
		}
		for i := range t.Components {
			if !t.Components[i].Equal(other.Components[i]) {
				return false
			}
		}

		return true
	case StructureKind, EnumerationKind:
		return t.Name == other.Name
	case AbstractKind:
		if len(t.Inputs) != len(other.Inputs) {
			return false
		}
		for i := range t.Inputs {
			if !t.Inputs[i].Equal(other.Inputs[i]) {
				return false
			}
		}

		return t.Output.Equal(*other.Output)
	default:
		return false
	}
}

// String renders a type for diagnostics. Kept deliberately simple: this is
// not a pretty-printer for codegen, just enough for Error() messages and
// test failure output.
func (t Type) String() string {
	switch t.Kind {
	case Integer:
		return "int"
	case Float:
		return "float"
	case Boolean:
		return "bool"
	case Unit:
		return "unit"
	case OptionKind:
		return fmt.Sprintf("%s?", t.Elem)
	case ArrayKind:
		return fmt.Sprintf("[%s;%d]", t.Elem, t.Size)
	case TupleKind:
		parts := make([]string, len(t.Components))
		for i, c := range t.Components {
			parts[i] = c.String()
		}

		return "(" + strings.Join(parts, ", ") + ")"
	case StructureKind:
		return t.Name
	case EnumerationKind:
		return t.Name
	case AbstractKind:
		parts := make([]string, len(t.Inputs))
		for i, c := range t.Inputs {
			parts[i] = c.String()
		}

		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Output)
	case Unresolved:
		return fmt.Sprintf("<unresolved %s>", t.Placeholder)
	default:
		return "<invalid type>"
	}
}

// ConstKind tags the variant a Constant value holds.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstEnumElement
	ConstUnit
)

// Constant is a compile-time value: spec.md §3 "Constant". Float equality is
// bit-exact (binary32), per spec.md's explicit requirement, so NaN constants
// compare equal to themselves and -0/+0 compare unequal, matching IEEE-754
// bit patterns rather than IEEE-754 comparison semantics.
type Constant struct {
	Kind ConstKind

	IntValue   int64
	FloatValue float32
	BoolValue  bool
	// EnumType/EnumElement name the declaring enum and the chosen element.
	EnumType    string
	EnumElement string
}

func ConstantInt(v int64) Constant     { return Constant{Kind: ConstInt, IntValue: v} }
func ConstantFloat(v float32) Constant { return Constant{Kind: ConstFloat, FloatValue: v} }
func ConstantBool(v bool) Constant     { return Constant{Kind: ConstBool, BoolValue: v} }
func ConstantUnit() Constant           { return Constant{Kind: ConstUnit} }
func ConstantEnum(enumType, element string) Constant {
	return Constant{Kind: ConstEnumElement, EnumType: enumType, EnumElement: element}
}

// Type returns the Type of c. EnumElement constants need the declaring
// enum's name, which c already carries.
func (c Constant) Type() Type {
	switch c.Kind {
	case ConstInt:
		return Int()
	case ConstFloat:
		return Flt()
	case ConstBool:
		return Bool()
	case ConstEnumElement:
		return Enum(c.EnumType)
	case ConstUnit:
		return Unt()
	default:
		return Type{}
	}
}

// Equal compares constants bit-exactly for floats, matching spec.md §3
// ("equality is bit-exact").
func (c Constant) Equal(other Constant) bool {
	if c.Kind != other.Kind {
		return false
	}

	switch c.Kind {
	case ConstInt:
		return c.IntValue == other.IntValue
	case ConstFloat:
		return math.Float32bits(c.FloatValue) == math.Float32bits(other.FloatValue)
	case ConstBool:
		return c.BoolValue == other.BoolValue
	case ConstEnumElement:
		return c.EnumType == other.EnumType && c.EnumElement == other.EnumElement
	case ConstUnit:
		return true
	default:
		return false
	}
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.IntValue)
	case ConstFloat:
		return fmt.Sprintf("%g", c.FloatValue)
	case ConstBool:
		return fmt.Sprintf("%t", c.BoolValue)
	case ConstEnumElement:
		return fmt.Sprintf("%s::%s", c.EnumType, c.EnumElement)
	case ConstUnit:
		return "()"
	default:
		return "<invalid constant>"
	}
}
