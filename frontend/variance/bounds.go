package variance

import "github.com/cottand/variance/frontend/ast"

// propagateBounds is spec.md §4.7's tparam-bound propagation pass: after a
// function type's params, return and constraints have been traversed
// (populating fu with each of fn's own tparams' observed free-use polarity),
// re-traverse the relevant bounds of each such tparam so that a class
// tparam reachable only through a method tparam's bound still gets checked.
func (c *checker) propagateBounds(env Environment, fn *ast.Fn, fu *freeUse) {
	for _, tp := range fn.Tparams {
		if v, ok := fu.cov[tp.Name]; ok {
			for _, b := range lowerBounds(fn, tp.Name) {
				c.typeOf(env, v, nil, b)
			}
		}
		if v, ok := fu.contra[tp.Name]; ok {
			pr := PosReason{Pos: tp, Descr: PosDescr{Kind: KindTparamDeclSite}}
			flipped := Flip(pr, v)
			for _, b := range upperBounds(fn, tp.Name) {
				c.typeOf(env, flipped, nil, b)
			}
		}
	}
}

// lowerBounds collects everything that constrains name from below: its
// `super`/`=` bounds, and any where-clause of shape `L as name` or
// `name super R`.
func lowerBounds(fn *ast.Fn, name string) []ast.Type {
	var out []ast.Type
	for _, tp := range fn.Tparams {
		if tp.Name != name {
			continue
		}
		for _, con := range tp.Constraints {
			if con.Kind == ast.ConstraintSuper || con.Kind == ast.ConstraintEq {
				out = append(out, con.Type)
			}
		}
	}
	for _, w := range fn.Where {
		switch {
		case w.Kind == ast.ConstraintAs && isGenericNamed(w.Right, name):
			out = append(out, w.Left)
		case w.Kind == ast.ConstraintSuper && isGenericNamed(w.Left, name):
			out = append(out, w.Right)
		}
	}
	return out
}

// upperBounds collects everything that constrains name from above: its
// `as`/`=` bounds, and any where-clause of shape `name as R` or
// `L super name`.
func upperBounds(fn *ast.Fn, name string) []ast.Type {
	var out []ast.Type
	for _, tp := range fn.Tparams {
		if tp.Name != name {
			continue
		}
		for _, con := range tp.Constraints {
			if con.Kind == ast.ConstraintAs || con.Kind == ast.ConstraintEq {
				out = append(out, con.Type)
			}
		}
	}
	for _, w := range fn.Where {
		switch {
		case w.Kind == ast.ConstraintAs && isGenericNamed(w.Left, name):
			out = append(out, w.Right)
		case w.Kind == ast.ConstraintSuper && isGenericNamed(w.Right, name):
			out = append(out, w.Left)
		}
	}
	return out
}

func isGenericNamed(t ast.Type, name string) bool {
	g, ok := t.(*ast.Generic)
	return ok && g.Name == name
}
