package variance

// varShape is the internal discriminator for Variance's four shapes
// (spec.md §3): covariant, contravariant, invariant, or bivariant (absent).
type varShape uint8

const (
	shapeBivariant varShape = iota
	shapeCov
	shapeContra
	shapeInv
)

// Variance is the inferred variance of a single use of a generic parameter:
// a tagged union with four shapes. Cov/Contra carry one proof stack; Inv
// carries both (it was observed in both polarities); Bivariant carries
// none. The zero value is Bivariant.
type Variance struct {
	shape       varShape
	covStack    ReasonStack
	contraStack ReasonStack
}

// Bivariant is the absence of a variance constraint: a parameter that did
// not appear, or one that is out of scope (e.g. a method's own tparam seen
// from outside the method).
func Bivariant() Variance { return Variance{shape: shapeBivariant} }

// CovOf builds a covariant Variance with the given (non-empty) proof stack.
func CovOf(stack ReasonStack) Variance { return Variance{shape: shapeCov, covStack: stack} }

// ContraOf builds a contravariant Variance with the given (non-empty) proof stack.
func ContraOf(stack ReasonStack) Variance { return Variance{shape: shapeContra, contraStack: stack} }

// InvOf builds an invariant Variance, retaining both proofs.
func InvOf(cov, contra ReasonStack) Variance {
	return Variance{shape: shapeInv, covStack: cov, contraStack: contra}
}

// IsBivariant reports whether v carries no constraint.
func (v Variance) IsBivariant() bool { return v.shape == shapeBivariant }

// Tag returns v's polarity tag, or ok=false when v is Bivariant.
func (v Variance) Tag() (tag PolTag, ok bool) {
	switch v.shape {
	case shapeCov:
		return Cov, true
	case shapeContra:
		return Contra, true
	case shapeInv:
		return Inv, true
	default:
		return 0, false
	}
}

// CovStack returns the covariant proof (valid for Cov and Inv shapes).
func (v Variance) CovStack() ReasonStack { return v.covStack }

// ContraStack returns the contravariant proof (valid for Contra and Inv shapes).
func (v Variance) ContraStack() ReasonStack { return v.contraStack }

// Flip negates v and records the flip via pr, per spec.md §4.1:
//
//	Cov(s)     -> Contra(reason :: s)
//	Contra(s)  -> Cov(reason :: s)
//	Inv(_,_)   -> unchanged (already maximally constrained)
//	Bivariant  -> Bivariant
func Flip(pr PosReason, v Variance) Variance {
	switch v.shape {
	case shapeCov:
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Contra}
		return ContraOf(v.covStack.Push(r))
	case shapeContra:
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Cov}
		return CovOf(v.contraStack.Push(r))
	default:
		return v
	}
}

// InitialFromAnnotation constructs a fresh Variance from a declared source
// annotation, per spec.md §4.1.
func InitialFromAnnotation(pr PosReason, declared PolTag) Variance {
	switch declared {
	case Cov:
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Cov}
		return CovOf(SingleReason(r))
	case Contra:
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Contra}
		return ContraOf(SingleReason(r))
	default:
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Inv}
		return InvOf(SingleReason(r), SingleReason(r))
	}
}

// Compose composes the current polarity `from` with the declared polarity
// `to` of an outer parameter slot, per spec.md §4.1's table. `to`'s stack
// is intentionally discarded — only its tag matters, and when it is
// Bivariant the composition is neutral (spec.md §8's "Bivariant neutrality"
// property): composing against a slot nothing constrains imposes nothing.
func Compose(pr PosReason, from Variance, to Variance) Variance {
	toTag, ok := to.Tag()
	if !ok {
		return from
	}
	return ComposeTag(pr, from, toTag)
}

// ComposeTag is Compose specialized to a plain declared tag, which is what
// the nominal oracle actually returns (declared variances are never
// Bivariant — every generic parameter carries an explicit annotation, per
// spec.md §1's non-goals) and is the entry point the type traversal uses
// directly.
func ComposeTag(pr PosReason, from Variance, to PolTag) Variance {
	// Inv absorbs in composition: once a variance becomes Inv, further
	// composition yields Inv (spec.md §3's invariant, §8's absorption property).
	if from.shape == shapeInv {
		return from
	}
	if from.shape == shapeBivariant {
		return InitialFromAnnotation(pr, to)
	}
	if to == Inv {
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Inv}
		return InvOf(SingleReason(r), SingleReason(r))
	}
	if to == Contra {
		return Flip(pr, from)
	}
	// to == Cov: from's tag is preserved, extending from's own stack with a
	// same-tagged frame (this composed position is still exactly as
	// constrained as the outer context was).
	switch from.shape {
	case shapeCov:
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Cov}
		return CovOf(from.covStack.Push(r))
	default: // shapeContra
		r := Reason{Pos: pr.Pos, Descr: pr.Descr, Tag: Contra}
		return ContraOf(from.contraStack.Push(r))
	}
}
