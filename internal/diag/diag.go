// Package diag implements the compiler's accumulating diagnostic model:
// every pass appends to a shared *Errors sink instead of aborting on the
// first problem, and only returns the ErrTermination sentinel once that sink
// is non-empty (see spec.md §4.10, §7). This mirrors the teacher library's
// habit of declaring sentinel errors once and checking them with errors.Is
// (github.com/katalvlaran/lvlath core.ErrVertexNotFound, dfs.ErrCycleDetected),
// generalized here from a single static error to a parameterized, tagged,
// list-accumulating variant.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// ErrTermination is returned by a pass once its error sink is non-empty. It
// carries no payload itself — the payload lives in the *Errors value the
// pass was given, which the caller already holds.
var ErrTermination = errors.New("diag: pass terminated with accumulated errors")

// Kind tags the taxonomy of diagnostics this compiler can raise, matching
// spec.md §6 verbatim plus DuplicateBinding, which §4.1 requires in prose but
// §6's list omits.
type Kind int

const (
	KindUnknownElement Kind = iota
	KindUnknownField
	KindMissingField
	KindUnknownSignal
	KindUnknownEnumeration
	KindUnknownOutputSignal
	KindComponentCall
	KindExpectStructure
	KindExpectArray
	KindExpectTuple
	KindExpectOption
	KindExpectInput
	KindExpectConstant
	KindIncompatibleInputsNumber
	KindIncompatibleLength
	KindIndexOutOfBounds
	KindCausalityLoop
	KindTypeMismatch
	KindDuplicateBinding
)

// Error is a single diagnostic: a tag, a location, and whichever of the
// generic payload fields that tag uses. Only the fields documented for a
// given Kind are meaningful; the zero value of the rest is ignored by
// Error().
type Error struct {
	Kind     Kind
	Location loc.Location

	// Name is the unresolved/offending identifier, field, or signal name.
	Name string
	// Owner is the struct, enum, or node name the Name is relative to
	// (e.g. the struct for MissingField/UnknownField, the node for
	// UnknownOutputSignal).
	Owner string

	Expected int
	Given    int

	ExpectedType typ.Type
	GivenType    typ.Type

	// Chain is the offending signal cycle, root-to-root, for CausalityLoop.
	Chain []string
}

// Error renders a human-readable (if terse) message. A real CLI is expected
// to format diagnostics itself using the structured fields and Location;
// this is the fallback used by tests and by Errors.Error().
func (e Error) Error() string {
	switch e.Kind {
	case KindUnknownElement:
		return fmt.Sprintf("%s: unknown element %q", e.Location, e.Name)
	case KindUnknownField:
		return fmt.Sprintf("%s: unknown field %q on %q", e.Location, e.Name, e.Owner)
	case KindMissingField:
		return fmt.Sprintf("%s: missing field %q on %q", e.Location, e.Name, e.Owner)
	case KindUnknownSignal:
		return fmt.Sprintf("%s: unknown signal %q", e.Location, e.Name)
	case KindUnknownEnumeration:
		return fmt.Sprintf("%s: unknown enumeration %q", e.Location, e.Name)
	case KindUnknownOutputSignal:
		return fmt.Sprintf("%s: node %q has no output %q", e.Location, e.Owner, e.Name)
	case KindComponentCall:
		return fmt.Sprintf("%s: %q is a component and cannot be called", e.Location, e.Name)
	case KindExpectStructure:
		return fmt.Sprintf("%s: expected a structure type", e.Location)
	case KindExpectArray:
		return fmt.Sprintf("%s: expected an array type", e.Location)
	case KindExpectTuple:
		return fmt.Sprintf("%s: expected a tuple type", e.Location)
	case KindExpectOption:
		return fmt.Sprintf("%s: expected an option type", e.Location)
	case KindExpectInput:
		return fmt.Sprintf("%s: expected at least one input", e.Location)
	case KindExpectConstant:
		return fmt.Sprintf("%s: expected a constant expression", e.Location)
	case KindIncompatibleInputsNumber:
		return fmt.Sprintf("%s: expected %d inputs, got %d", e.Location, e.Expected, e.Given)
	case KindIncompatibleLength:
		return fmt.Sprintf("%s: expected length %d, got %d", e.Location, e.Expected, e.Given)
	case KindIndexOutOfBounds:
		return fmt.Sprintf("%s: index %d out of bounds (length %d)", e.Location, e.Given, e.Expected)
	case KindCausalityLoop:
		return fmt.Sprintf("%s: causality loop %s", e.Location, strings.Join(e.Chain, " -> "))
	case KindTypeMismatch:
		return fmt.Sprintf("%s: type mismatch: expected %s, got %s", e.Location, e.ExpectedType, e.GivenType)
	case KindDuplicateBinding:
		return fmt.Sprintf("%s: %q is already bound in this scope", e.Location, e.Name)
	default:
		return fmt.Sprintf("%s: unknown diagnostic", e.Location)
	}
}

// Constructors — one per tag, matching spec.md §6's list of tagged variants.

func UnknownElement(name string, at loc.Location) Error {
	return Error{Kind: KindUnknownElement, Name: name, Location: at}
}

func UnknownField(owner, field string, at loc.Location) Error {
	return Error{Kind: KindUnknownField, Owner: owner, Name: field, Location: at}
}

func MissingField(owner, field string, at loc.Location) Error {
	return Error{Kind: KindMissingField, Owner: owner, Name: field, Location: at}
}

func UnknownSignal(name string, at loc.Location) Error {
	return Error{Kind: KindUnknownSignal, Name: name, Location: at}
}

func UnknownEnumeration(name string, at loc.Location) Error {
	return Error{Kind: KindUnknownEnumeration, Name: name, Location: at}
}

func UnknownOutputSignal(node, output string, at loc.Location) Error {
	return Error{Kind: KindUnknownOutputSignal, Owner: node, Name: output, Location: at}
}

func ComponentCall(name string, at loc.Location) Error {
	return Error{Kind: KindComponentCall, Name: name, Location: at}
}

func ExpectStructure(at loc.Location) Error { return Error{Kind: KindExpectStructure, Location: at} }
func ExpectArray(at loc.Location) Error     { return Error{Kind: KindExpectArray, Location: at} }
func ExpectTuple(at loc.Location) Error     { return Error{Kind: KindExpectTuple, Location: at} }
func ExpectOption(at loc.Location) Error    { return Error{Kind: KindExpectOption, Location: at} }
func ExpectInput(at loc.Location) Error     { return Error{Kind: KindExpectInput, Location: at} }
func ExpectConstant(at loc.Location) Error  { return Error{Kind: KindExpectConstant, Location: at} }

func IncompatibleInputsNumber(expected, given int, at loc.Location) Error {
	return Error{Kind: KindIncompatibleInputsNumber, Expected: expected, Given: given, Location: at}
}

func IncompatibleLength(expected, given int, at loc.Location) Error {
	return Error{Kind: KindIncompatibleLength, Expected: expected, Given: given, Location: at}
}

func IndexOutOfBounds(index, length int, at loc.Location) Error {
	return Error{Kind: KindIndexOutOfBounds, Given: index, Expected: length, Location: at}
}

func CausalityLoop(chain []string, at loc.Location) Error {
	return Error{Kind: KindCausalityLoop, Chain: chain, Location: at}
}

func TypeMismatch(expected, given typ.Type, at loc.Location) Error {
	return Error{Kind: KindTypeMismatch, ExpectedType: expected, GivenType: given, Location: at}
}

func DuplicateBinding(name string, at loc.Location) Error {
	return Error{Kind: KindDuplicateBinding, Name: name, Location: at}
}

// Errors is the accumulator every pass threads through its traversal. It is
// intentionally a named type rather than a bare []Error, matching the
// teacher's preference for documented, purpose-built types over raw
// collections (e.g. core.Graph wrapping map[string]*Vertex).
type Errors struct {
	list []Error
}

// Add appends err to the sink. Never fails, never panics: accumulation is
// the whole point (spec.md §4.10).
func (e *Errors) Add(err Error) {
	e.list = append(e.list, err)
}

// HasErrors reports whether anything has been accumulated so far.
func (e *Errors) HasErrors() bool {
	return len(e.list) > 0
}

// List returns the accumulated diagnostics in the order they were added.
// The returned slice is owned by the caller; mutating it does not affect e.
func (e *Errors) List() []Error {
	out := make([]Error, len(e.list))
	copy(out, e.list)

	return out
}

// Limit truncates the accumulated diagnostics to the first n, discarding
// the rest. A non-positive n is a no-op.
func (e *Errors) Limit(n int) {
	if n > 0 && len(e.list) > n {
		e.list = e.list[:n]
	}
}

// Termination returns ErrTermination if the sink is non-empty, nil
// otherwise. Passes call this at their single return point rather than
// aborting mid-traversal (spec.md §4.10).
func (e *Errors) Termination() error {
	if e.HasErrors() {
		return ErrTermination
	}

	return nil
}

// Error implements the error interface so a non-empty *Errors can itself be
// returned as the error half of compile's Result, satisfying spec.md §6's
// "compile(ast_file) → Result<File, ErrorList>" contract without a second
// wrapper type.
func (e *Errors) Error() string {
	if len(e.list) == 0 {
		return "diag: no errors"
	}
	parts := make([]string, len(e.list))
	for i, err := range e.list {
		parts[i] = err.Error()
	}

	return strings.Join(parts, "\n")
}
