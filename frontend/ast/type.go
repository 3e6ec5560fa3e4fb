package ast

// Type is the already-resolved type representation the variance checker
// consumes. It is produced by an external collaborator (name resolution and
// the surrounding typechecker's decl loader) — this package only carries the
// closed grammar's data shapes, never how they were built.
type Type interface {
	Positioner
	typeNode()
}

var (
	_ Type = (*Atomic)(nil)
	_ Type = (*Option)(nil)
	_ Type = (*Like)(nil)
	_ Type = (*Access)(nil)
	_ Type = (*Union)(nil)
	_ Type = (*Intersection)(nil)
	_ Type = (*Tuple)(nil)
	_ Type = (*Darray)(nil)
	_ Type = (*Varray)(nil)
	_ Type = (*VarrayOrDarray)(nil)
	_ Type = (*Shape)(nil)
	_ Type = (*Generic)(nil)
	_ Type = (*Apply)(nil)
	_ Type = (*Fn)(nil)
	_ Type = (*This)(nil)
)

func (*Atomic) typeNode()        {}
func (*Option) typeNode()        {}
func (*Like) typeNode()          {}
func (*Access) typeNode()        {}
func (*Union) typeNode()         {}
func (*Intersection) typeNode()  {}
func (*Tuple) typeNode()         {}
func (*Darray) typeNode()        {}
func (*Varray) typeNode()        {}
func (*VarrayOrDarray) typeNode() {}
func (*Shape) typeNode()         {}
func (*Generic) typeNode()       {}
func (*Apply) typeNode()         {}
func (*Fn) typeNode()            {}
func (*This) typeNode()          {}

// AtomicKind enumerates the type constructors that carry no obligation on
// any generic parameter they might mention (they mention none, by
// definition).
type AtomicKind uint8

const (
	_ AtomicKind = iota
	KindAny
	KindErrorType
	KindMixed
	KindNonnull
	KindDynamic
	KindVarKind
	KindPrimitive
)

// Atomic is any/error/mixed/nonnull/dynamic/var/prim: a leaf type with no
// sub-structure and no obligation.
type Atomic struct {
	Range
	Kind AtomicKind
	// Name holds the primitive's spelling when Kind == KindPrimitive (e.g. "int", "string", "bool").
	Name string
}

// Option is `?T`.
type Option struct {
	Range
	Inner Type
}

// Like is `~T` (Hack's "like type").
type Like struct {
	Range
	Inner Type
}

// Access is a type-constant access `T::TC`.
type Access struct {
	Range
	Inner    Type
	MemberName string
}

// Union is `T1 | T2 | ...`.
type Union struct {
	Range
	Members []Type
}

// Intersection is `T1 & T2 & ...`.
type Intersection struct {
	Range
	Members []Type
}

// Tuple is `(T1, T2, ...)`.
type Tuple struct {
	Range
	Elements []Type
}

// Darray is `darray<K, V>`.
type Darray struct {
	Range
	Key   Type
	Value Type
}

// Varray is `varray<T>`.
type Varray struct {
	Range
	Element Type
}

// VarrayOrDarray is the legacy `varray_or_darray<K, V>`.
type VarrayOrDarray struct {
	Range
	Key   Type
	Value Type
}

// ShapeField is one field of a Shape.
type ShapeField struct {
	Name     string
	Optional bool
	Type     Type
}

// Shape is `shape('a' => T1, ?'b' => T2, ...)`.
type Shape struct {
	Range
	Fields []ShapeField
}

// Generic is a bare occurrence of a name that resolves to an in-scope
// generic parameter, e.g. `T` or (per the higher-kinded open question)
// `T<U>`. Targs is only ever non-empty when the surrounding language
// supports higher-kinded generic parameters, which it does not yet: see
// DESIGN.md's Open Question decision.
type Generic struct {
	Range
	Name  string
	Targs []Type
}

// Apply is a named nominal type applied to type arguments, `N<t1, ..., tk>`.
// A bare `N` with no arguments is represented with an empty Args slice.
type Apply struct {
	Range
	Name string
	Args []Type
}

// ParamMode is the calling convention of a function-type parameter.
type ParamMode uint8

const (
	ModeNormal ParamMode = iota
	ModeInout
)

// Param is one parameter of a Fn type.
type Param struct {
	Mode ParamMode
	Type Type
}

// ConstraintKind is the relation named by a tparam bound or a where-clause.
type ConstraintKind uint8

const (
	ConstraintAs ConstraintKind = iota
	ConstraintSuper
	ConstraintEq
)

// TparamConstraint is one `as`/`super`/`=` bound on a function-local tparam.
type TparamConstraint struct {
	Kind ConstraintKind
	Type Type
}

// DeclaredVariance is the source-level annotation written on a
// function-local generic parameter: `+T`, `-T`, or plain `T` (invariant).
// It mirrors tenv.DeclaredVariance (a class/typedef tparam's own
// annotation), kept as a distinct type here since ast cannot import tenv
// without a cycle.
type DeclaredVariance uint8

const (
	VarianceCovariant DeclaredVariance = iota
	VarianceContravariant
	VarianceInvariant
)

// FnTparam is a function-local generic parameter declaration.
type FnTparam struct {
	Range
	Name        string
	Variance    DeclaredVariance
	Constraints []TparamConstraint
}

// WhereConstraint is one `where L <kind> R` clause on a function signature.
type WhereConstraint struct {
	Left  Type
	Kind  ConstraintKind
	Right Type
}

// Fn is a first-class function type,
// `fn(p1, ..., pn[, ...variadic]): ret where tparams, whereClauses`.
type Fn struct {
	Range
	Params    []Param
	Variadic  *Param // nil when the function is not variadic
	Return    Type
	Tparams   []FnTparam
	Where     []WhereConstraint
}

// This is the `this` type.
type This struct {
	Range
}
