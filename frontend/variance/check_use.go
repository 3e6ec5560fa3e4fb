package variance

import (
	"slices"

	"github.com/cottand/variance/frontend/ast"
	"github.com/cottand/variance/frontend/ilerr"
	"github.com/cottand/variance/util"
)

// stack returns whichever proof stack backs v's tag: the covariant proof
// for a Cov variance, the contravariant proof for Contra, and (arbitrarily,
// both are populated) the covariant proof for Inv.
func (v Variance) stack() ReasonStack {
	switch v.shape {
	case shapeContra:
		return v.contraStack
	default:
		return v.covStack
	}
}

func toSecondaries(frames []Frame) []ilerr.Secondary {
	if frames == nil {
		return nil
	}
	toSecondary := func(f Frame) ilerr.Secondary {
		return ilerr.Secondary{Pos: f.Pos, Message: f.Message}
	}
	return slices.Collect(util.MapIter(slices.Values(frames), toSecondary))
}

// CheckUse is spec.md §4.5's use-site check: it compares the declared
// variance of name (from env) against the observed variance v of this
// particular use, and returns a diagnostic if they are incompatible, or nil
// if the use is sound. Bivariant on either side is always accepted.
func CheckUse(env Environment, name string, v Variance) ilerr.VarianceError {
	declared := env.Lookup(name)

	declaredTag, declaredOk := declared.Tag()
	observedTag, observedOk := v.Tag()
	if !declaredOk || !observedOk {
		return nil
	}

	switch declaredTag {
	case Inv:
		return nil
	case Cov:
		if observedTag == Cov {
			return nil
		}
		return ilerr.New(ilerr.DeclaredCovariantViolated{
			Positioner: headPositioner(declared.stack()),
			TypeName:   name,
			Chain:      toSecondaries(RenderChain(v.stack())),
		})
	default: // Contra
		if observedTag == Contra {
			return nil
		}
		return ilerr.New(ilerr.DeclaredContravariantViolated{
			Positioner: headPositioner(declared.stack()),
			TypeName:   name,
			Chain:      toSecondaries(RenderChain(v.stack())),
		})
	}
}

// headPositioner returns a reason stack's innermost position, or an empty
// Range if the stack is empty (which never happens for a Cov/Contra stack
// per spec.md §3's non-emptiness invariant).
func headPositioner(s ReasonStack) ast.Positioner {
	r, ok := s.Head()
	if !ok {
		return ast.Range{}
	}
	return r.Pos
}
