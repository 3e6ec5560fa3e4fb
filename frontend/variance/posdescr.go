package variance

import "fmt"

// PosKind is the closed enumeration of syntactic roles that can induce a
// polarity, per spec.md §3's "position descriptor".
type PosKind uint8

const (
	KindTypedefBody PosKind = iota
	KindInstanceMember
	KindTparamDeclSite
	KindFnParameter
	KindFnReturn
	KindInoutParameter
	KindTypeArgument
	KindMethodBoundAs
	KindMethodBoundSuper
	KindMethodBoundEq
	KindWhereAsLeft
	KindWhereAsRight
	KindWhereSuperLeft
	KindWhereSuperRight
	KindWhereEqLeft
	KindWhereEqRight
)

// PosDescr names the syntactic role that induced a polarity. TypeArgument
// carries the outer class/typedef name it is an argument of, per spec.md §3.
type PosDescr struct {
	Kind      PosKind
	OuterName string
}

// Message renders the fixed, 1:1 message for a position descriptor. These
// strings are reproduced verbatim by every implementer of this checker for
// test comparability, per spec.md §4.2.
func (d PosDescr) Message() string {
	switch d.Kind {
	case KindTypedefBody:
		return "aliased types are covariant"
	case KindInstanceMember:
		return "class and interface members are invariant"
	case KindTparamDeclSite:
		return "this is the declaration of the type parameter"
	case KindFnParameter:
		return "function parameters are contravariant"
	case KindFnReturn:
		return "function returns are covariant"
	case KindInoutParameter:
		return "inout parameters are invariant"
	case KindTypeArgument:
		return fmt.Sprintf("this is a type argument to %s", d.OuterName)
	case KindMethodBoundAs:
		return "`as` bounds on a type parameter are contravariant"
	case KindMethodBoundSuper:
		return "`super` bounds on a type parameter are covariant"
	case KindMethodBoundEq:
		return "`=` bounds on a type parameter are invariant"
	case KindWhereAsLeft:
		return "the left side of a `where _ as _` clause is covariant"
	case KindWhereAsRight:
		return "the right side of a `where _ as _` clause is contravariant"
	case KindWhereSuperLeft:
		return "the left side of a `where _ super _` clause is contravariant"
	case KindWhereSuperRight:
		return "the right side of a `where _ super _` clause is covariant"
	case KindWhereEqLeft:
		return "the left side of a `where _ = _` clause is invariant"
	case KindWhereEqRight:
		return "the right side of a `where _ = _` clause is invariant"
	default:
		panic("unreachable: unknown PosKind")
	}
}
