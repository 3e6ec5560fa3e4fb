package ilerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cottand/variance/frontend/ast"
)

// EnableDebugErrorPrinting makes FormatWithCode include a stacktrace for
// every error printed. Set from the CLI's --debug-stack flag.
var EnableDebugErrorPrinting = false

// EnableDebugFullStacktrace, when EnableDebugErrorPrinting is also set,
// prints the full captured stack instead of just its first frame.
var EnableDebugFullStacktrace = false

type ErrCode int

const (
	None ErrCode = iota
	DeclaredCovariant
	DeclaredContravariant
	ContravariantThis
	StaticPropertyTypeGenericParam
)

// Secondary is one rendered frame of a reason chain: a position and the
// message to show there, per spec.md §4.2/§6.
type Secondary struct {
	Pos     ast.Positioner
	Message string
}

// VarianceError is the shared shape of every diagnostic the checker
// produces. The primary position (embedded Positioner) and Code fully
// classify the diagnostic; Secondaries carries the rendered reason chain
// (§4.2) that explains it.
type VarianceError interface {
	Error() string
	Code() ErrCode
	ast.Positioner
	Secondaries() []Secondary

	withStack([]byte) VarianceError
	getStack() []byte
}

func FormatWithCode(e VarianceError) string {
	if EnableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !EnableDebugFullStacktrace {
			lines := strings.Split(stack, "\n")
			if len(lines) > 6 {
				stack = lines[6]
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// New attaches a debug stacktrace to err, mirroring the surrounding
// typechecker's convention of tagging every error at its construction site.
func New[E VarianceError](err E) VarianceError {
	return err.withStack(debug.Stack())
}

var (
	_ VarianceError = DeclaredCovariantViolated{}
	_ VarianceError = DeclaredContravariantViolated{}
	_ VarianceError = ContravariantThisUsed{}
	_ VarianceError = StaticPropertyTypeGenericParamUsed{}
)

// DeclaredCovariantViolated is spec.md §7's "declared-covariant violated":
// a covariant-declared parameter used contravariantly or invariantly. The
// embedded Positioner is the declaration site (primary position); Chain
// renders the offending use's reason stack (secondary positions).
type DeclaredCovariantViolated struct {
	ast.Positioner
	TypeName string
	Chain    []Secondary
	stack    []byte
}

func (e DeclaredCovariantViolated) Error() string {
	return fmt.Sprintf("%s is declared covariant, but used in a contravariant or invariant position", e.TypeName)
}
func (e DeclaredCovariantViolated) Code() ErrCode            { return DeclaredCovariant }
func (e DeclaredCovariantViolated) Secondaries() []Secondary { return e.Chain }
func (e DeclaredCovariantViolated) getStack() []byte         { return e.stack }
func (e DeclaredCovariantViolated) withStack(stack []byte) VarianceError {
	e.stack = stack
	return e
}

// DeclaredContravariantViolated is the symmetric case: a
// contravariant-declared parameter used covariantly or invariantly.
type DeclaredContravariantViolated struct {
	ast.Positioner
	TypeName string
	Chain    []Secondary
	stack    []byte
}

func (e DeclaredContravariantViolated) Error() string {
	return fmt.Sprintf("%s is declared contravariant, but used in a covariant or invariant position", e.TypeName)
}
func (e DeclaredContravariantViolated) Code() ErrCode            { return DeclaredContravariant }
func (e DeclaredContravariantViolated) Secondaries() []Secondary { return e.Chain }
func (e DeclaredContravariantViolated) getStack() []byte         { return e.stack }
func (e DeclaredContravariantViolated) withStack(stack []byte) VarianceError {
	e.stack = stack
	return e
}

// ContravariantThisUsed is spec.md §7's "contravariant this": `this` used
// contravariantly within a non-final class that has co/contravariant
// tparams. Final classes are exempt.
type ContravariantThisUsed struct {
	ast.Positioner
	ClassName string
	stack     []byte
}

func (e ContravariantThisUsed) Error() string {
	return fmt.Sprintf("this is used in a contravariant position, which is unsound in non-final class %s", e.ClassName)
}
func (e ContravariantThisUsed) Code() ErrCode            { return ContravariantThis }
func (e ContravariantThisUsed) Secondaries() []Secondary { return nil }
func (e ContravariantThisUsed) getStack() []byte         { return e.stack }
func (e ContravariantThisUsed) withStack(stack []byte) VarianceError {
	e.stack = stack
	return e
}

// StaticPropertyTypeGenericParamUsed is spec.md §7's "generic in static
// property": a generic parameter appears in the type of a static property
// outside a trait.
type StaticPropertyTypeGenericParamUsed struct {
	ast.Positioner
	PropertyName string
	TypeName     string
	stack        []byte
}

func (e StaticPropertyTypeGenericParamUsed) Error() string {
	return fmt.Sprintf("static property %s cannot mention type parameter %s", e.PropertyName, e.TypeName)
}
func (e StaticPropertyTypeGenericParamUsed) Code() ErrCode            { return StaticPropertyTypeGenericParam }
func (e StaticPropertyTypeGenericParamUsed) Secondaries() []Secondary { return nil }
func (e StaticPropertyTypeGenericParamUsed) getStack() []byte         { return e.stack }
func (e StaticPropertyTypeGenericParamUsed) withStack(stack []byte) VarianceError {
	e.stack = stack
	return e
}
