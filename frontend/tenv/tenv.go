// Package tenv defines the collaborator boundary the variance checker
// consumes: a read-only typing environment giving, for any class or
// typedef name, its declared type parameters, members, and body. The
// checker never constructs a tenv itself — that is the surrounding
// typechecker's job (name resolution, decl loading); tenv only names the
// shape of what it is handed.
package tenv

import (
	"github.com/cottand/variance/frontend/ast"
)

// Visibility is a class member's declared visibility.
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Private
)

// DeclaredVariance is the source-level annotation written on a generic
// parameter: `+T`, `-T`, or plain `T` (invariant).
type DeclaredVariance uint8

const (
	AnnotCovariant DeclaredVariance = iota
	AnnotContravariant
	AnnotInvariant
)

// Tparam is a declared generic parameter of a class or typedef.
type Tparam struct {
	Name     string
	Variance DeclaredVariance
	Pos      ast.Positioner
}

// ClassKind distinguishes the three kinds of nominal type-with-members.
type ClassKind uint8

const (
	KindClass ClassKind = iota
	KindInterface
	KindTrait
)

// Method is a class method as seen by the checker: its signature (as a
// function type), visibility, and finality. The Type is fetched lazily
// since most callers of a ClassInfo never need every method's type
// (e.g. a caller only interested in tparams).
type Method struct {
	Name       string
	Visibility Visibility
	Final      bool
	Static     bool
	Pos        ast.Positioner
	Type       func() *ast.Fn
}

// Property is a class property as seen by the checker.
type Property struct {
	Name       string
	Visibility Visibility
	Static     bool
	Pos        ast.Positioner
	Type       func() ast.Type
}

// ClassInfo is the read-only view of a class, interface or trait declaration.
type ClassInfo struct {
	Name       string
	Kind       ClassKind
	Final      bool
	Pos        ast.Positioner
	Tparams    []Tparam
	Properties []Property
	Methods    []Method
}

// TypedefInfo is the read-only view of a type-alias declaration.
type TypedefInfo struct {
	Name    string
	Pos     ast.Positioner
	Tparams []Tparam
	Body    ast.Type
}

// Decl is whatever lookup_class_or_typedef found for a name, or neither.
type Decl struct {
	Class   *ClassInfo
	Typedef *TypedefInfo
}

// Found reports whether the lookup found anything at all.
func (d Decl) Found() bool { return d.Class != nil || d.Typedef != nil }

// TypingEnv is the read-only accessor spec.md §6 calls "tenv": the
// surrounding typechecker's decl table, projected down to what the
// variance checker needs.
type TypingEnv interface {
	LookupClassOrTypedef(name string) Decl
}
