package variance

import "github.com/cottand/variance/frontend/ast"

// typeOfFn implements spec.md §4.4's function-type case.
func (c *checker) typeOfFn(env Environment, current Variance, use *freeUse, fn *ast.Fn) {
	tparamNames := make([]string, len(fn.Tparams))
	for i, tp := range fn.Tparams {
		tparamNames[i] = tp.Name
	}
	localEnv := env.Without(tparamNames...)

	// Free occurrences of this function's own tparams are collected
	// separately at each nesting level, so that a tparam declared by an
	// enclosing function still gets credit for an occurrence nested inside
	// this one (§4.7).
	fnUse := newFreeUse(use)

	for _, p := range fn.Params {
		c.typeOfParam(localEnv, current, fnUse, p)
	}
	if fn.Variadic != nil {
		c.typeOfParam(localEnv, current, fnUse, *fn.Variadic)
	}

	for _, tp := range fn.Tparams {
		for _, con := range tp.Constraints {
			descr := constraintDescr(con.Kind)
			pr := PosReason{Pos: con.Type, Descr: descr}
			v := InitialFromAnnotation(pr, constraintTag(con.Kind))
			c.typeOf(localEnv, v, fnUse, con.Type)
		}
	}

	for _, w := range fn.Where {
		lDescr, rDescr, lTag, rTag := whereDescr(w.Kind)
		lpr := PosReason{Pos: w.Left, Descr: lDescr}
		rpr := PosReason{Pos: w.Right, Descr: rDescr}
		c.typeOf(localEnv, InitialFromAnnotation(lpr, lTag), fnUse, w.Left)
		c.typeOf(localEnv, InitialFromAnnotation(rpr, rTag), fnUse, w.Right)
	}

	returnPr := PosReason{Pos: fn.Return, Descr: PosDescr{Kind: KindFnReturn}}
	c.typeOf(localEnv, composeReturn(returnPr, current), fnUse, fn.Return)

	c.propagateBounds(localEnv, fn, fnUse)
}

// typeOfParam traverses one parameter per §4.4: a normal parameter flips the
// ambient polarity (function parameters are contravariant); an `inout`
// parameter is checked fresh under Inv regardless of the ambient polarity,
// since it is both read and written.
func (c *checker) typeOfParam(env Environment, current Variance, use *freeUse, p ast.Param) {
	if p.Mode == ast.ModeInout {
		pr := PosReason{Pos: p.Type, Descr: PosDescr{Kind: KindInoutParameter}}
		c.typeOf(env, InitialFromAnnotation(pr, Inv), use, p.Type)
		return
	}
	pr := PosReason{Pos: p.Type, Descr: PosDescr{Kind: KindFnParameter}}
	c.typeOf(env, Flip(pr, current), use, p.Type)
}

// composeReturn prepends a covariant Rfun_return frame to current, except
// that an Inv or Bivariant current passes through unchanged: the return
// position never sharpens an already-maximal or an absent obligation.
func composeReturn(pr PosReason, current Variance) Variance {
	switch current.shape {
	case shapeCov:
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Cov}
		return CovOf(current.covStack.Push(r))
	case shapeContra:
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Contra}
		return ContraOf(current.contraStack.Push(r))
	default:
		return current
	}
}

func constraintDescr(kind ast.ConstraintKind) PosDescr {
	switch kind {
	case ast.ConstraintAs:
		return PosDescr{Kind: KindMethodBoundAs}
	case ast.ConstraintSuper:
		return PosDescr{Kind: KindMethodBoundSuper}
	default:
		return PosDescr{Kind: KindMethodBoundEq}
	}
}

func constraintTag(kind ast.ConstraintKind) PolTag {
	switch kind {
	case ast.ConstraintAs:
		return Contra
	case ast.ConstraintSuper:
		return Cov
	default:
		return Inv
	}
}

// whereDescr returns the (left descriptor, right descriptor, left tag,
// right tag) for a where-clause of the given kind, per spec.md §4.6.
func whereDescr(kind ast.ConstraintKind) (left, right PosDescr, leftTag, rightTag PolTag) {
	switch kind {
	case ast.ConstraintAs:
		return PosDescr{Kind: KindWhereAsLeft}, PosDescr{Kind: KindWhereAsRight}, Cov, Contra
	case ast.ConstraintSuper:
		return PosDescr{Kind: KindWhereSuperLeft}, PosDescr{Kind: KindWhereSuperRight}, Contra, Cov
	default:
		return PosDescr{Kind: KindWhereEqLeft}, PosDescr{Kind: KindWhereEqRight}, Inv, Inv
	}
}
