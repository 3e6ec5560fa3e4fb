// Package variance implements the declaration-site variance checker's
// structural traversal: a polarity-flipping walk of the type grammar that
// composes variance across nested constructors and reports every use of a
// generic parameter inconsistent with its declared variance.
package variance

import (
	"github.com/cottand/variance/frontend/ast"
	"github.com/cottand/variance/frontend/ilerr"
	"github.com/cottand/variance/frontend/tenv"
	"github.com/cottand/variance/internal/log"
)

var logger = log.DefaultLogger.With("section", "variance.traverse")

// checker holds the state threaded through a single check_class/check_typedef
// invocation: the optional enclosing class (for the `this` rule), the
// nominal oracle, and the accumulating error sink. It carries no other
// mutable state — the traversal itself is otherwise a pure function of
// (env, current, ty).
type checker struct {
	root   *tenv.ClassInfo
	oracle NominalOracle
	acc    *ilerr.Errors
}

// freeUse records, per generic name, whether it was observed covariantly
// and/or contravariantly within the immediate signature of some function
// type — the bookkeeping spec.md §4.7's bound-propagation pass consumes.
// Recording walks the whole parent chain so an outer function's tparam
// still gets credit for an occurrence nested inside an inner function type
// (spec.md §2's "collecting free occurrences ... from a function's
// parameters, return, and constraints").
type freeUse struct {
	parent *freeUse
	cov    map[string]Variance
	contra map[string]Variance
}

func newFreeUse(parent *freeUse) *freeUse {
	return &freeUse{parent: parent, cov: map[string]Variance{}, contra: map[string]Variance{}}
}

func (f *freeUse) record(name string, observed Variance) {
	tag, ok := observed.Tag()
	if !ok {
		return
	}
	for cur := f; cur != nil; cur = cur.parent {
		switch tag {
		case Cov:
			cur.cov[name] = observed
		case Contra:
			cur.contra[name] = observed
		case Inv:
			cur.cov[name] = CovOf(observed.covStack)
			cur.contra[name] = ContraOf(observed.contraStack)
		}
	}
}

// typeOf is the structural traversal of spec.md §4.4, `type_(root, currentPolarity, env, ty)`.
// use records free occurrences of function-local tparams for §4.7's
// propagation pass; it is nil outside of a function type's immediate signature.
func (c *checker) typeOf(env Environment, current Variance, use *freeUse, ty ast.Type) {
	switch t := ty.(type) {
	case *ast.Atomic:
		// no obligation

	case *ast.This:
		c.checkThis(current, t)

	case *ast.Option:
		c.typeOf(env, current, use, t.Inner)
	case *ast.Like:
		c.typeOf(env, current, use, t.Inner)
	case *ast.Access:
		c.typeOf(env, current, use, t.Inner)

	case *ast.Union:
		for _, m := range t.Members {
			c.typeOf(env, current, use, m)
		}
	case *ast.Intersection:
		for _, m := range t.Members {
			c.typeOf(env, current, use, m)
		}
	case *ast.Tuple:
		for _, m := range t.Elements {
			c.typeOf(env, current, use, m)
		}
	case *ast.Darray:
		c.typeOf(env, current, use, t.Key)
		c.typeOf(env, current, use, t.Value)
	case *ast.Varray:
		c.typeOf(env, current, use, t.Element)
	case *ast.VarrayOrDarray:
		c.typeOf(env, current, use, t.Key)
		c.typeOf(env, current, use, t.Value)
	case *ast.Shape:
		for _, f := range t.Fields {
			c.typeOf(env, current, use, f.Type)
		}

	case *ast.Generic:
		c.typeOfGeneric(env, current, use, t)

	case *ast.Apply:
		c.typeOfApply(env, current, use, t)

	case *ast.Fn:
		c.typeOfFn(env, current, use, t)

	default:
		panic("unreachable: unknown ast.Type case")
	}
}

// checkThis implements spec.md §4.4's `this` rule. `this` is bivariant
// except that, in a contravariant position within a non-final class with at
// least one co/contravariant tparam, its use is unsound (a subclass could
// narrow the type and the override would no longer be a valid subtype), and
// so is reported.
//
// Note: spec.md §4.4's own prose says the check fires when "root is final",
// but its worked scenario (§8, scenario 7) demonstrates the check firing on
// a non-final class; the two are contradictory, and this implementation
// follows the worked scenario (final classes cannot be subclassed further,
// so a contravariant `this` there is sound) — see DESIGN.md.
func (c *checker) checkThis(current Variance, pos ast.Positioner) {
	if c.root == nil || c.root.Final {
		return
	}
	tag, ok := current.Tag()
	if !ok || tag != Contra {
		return
	}
	hasVariantTparam := false
	for _, tp := range c.root.Tparams {
		if tp.Variance == tenv.AnnotCovariant || tp.Variance == tenv.AnnotContravariant {
			hasVariantTparam = true
			break
		}
	}
	if !hasVariantTparam {
		return
	}
	c.acc = c.acc.With(ilerr.New(ilerr.ContravariantThisUsed{
		Positioner: pos,
		ClassName:  c.root.Name,
	}))
}

func (c *checker) typeOfGeneric(env Environment, current Variance, use *freeUse, g *ast.Generic) {
	// Position refinement (§4.4): point the head reason at this exact
	// occurrence rather than wherever the enclosing type started.
	refined := current
	switch current.shape {
	case shapeCov:
		refined = CovOf(current.covStack.WithRefinedHeadPosition(g))
	case shapeContra:
		refined = ContraOf(current.contraStack.WithRefinedHeadPosition(g))
	case shapeInv:
		refined = InvOf(current.covStack.WithRefinedHeadPosition(g), current.contraStack.WithRefinedHeadPosition(g))
	}
	if use != nil {
		use.record(g.Name, refined)
	}
	if err := CheckUse(env, g.Name, refined); err != nil {
		logger.Debug("use-site violation", "name", g.Name, "err", ilerr.FormatWithCode(err))
		c.acc = c.acc.With(err)
	}
	// Type arguments to a bare generic parameter are not descended into:
	// the language does not support higher-kinded variance here yet, per
	// the Design Notes' Open Question.
}

func (c *checker) typeOfApply(env Environment, current Variance, use *freeUse, a *ast.Apply) {
	declared := c.oracle.DeclaredVariances(a.Name)
	n := len(declared)
	if len(a.Args) < n {
		n = len(a.Args)
	}
	for i := 0; i < n; i++ {
		arg := a.Args[i]
		pr := PosReason{Pos: arg, Descr: PosDescr{Kind: KindTypeArgument, OuterName: a.Name}}
		next := ComposeTag(pr, current, declared[i])
		c.typeOf(env, next, use, arg)
	}
}
