package variance

import "github.com/cottand/variance/frontend/tenv"

// AwaitableName is the canonical, fully-qualified name of the built-in
// awaitable type. It is defined in a prelude whose declaration may not be
// available to the surrounding typechecker, so its variance is hard-coded
// here rather than looked up, per spec.md §4.3 and the Design Notes'
// "Awaitable special case".
const AwaitableName = "HH\\Awaitable"

// NominalOracle is the single query the traversal needs per occurrence of a
// named class or typedef: its declared variance vector, in parameter
// order. Unknown names return an empty vector; the traversal then zips
// against the type-argument list as short-as-shorter to tolerate arity
// mismatch gracefully, leaving the arity error itself to the surrounding
// typechecker (spec.md §4.3).
//
// Declared variances are returned as plain PolTag values rather than full
// Variance values: every generic parameter carries an explicit declared
// annotation (spec.md §1's non-goals), so the declared side is never
// Bivariant, and Compose only ever consults the tag of the declaring
// slot (its stack is discarded, per spec.md §4.1).
type NominalOracle interface {
	DeclaredVariances(name string) []PolTag
}

// WithAwaitable wraps an oracle so that AwaitableName always resolves to a
// single covariant parameter, regardless of what (if anything) inner
// reports for it.
func WithAwaitable(inner NominalOracle) NominalOracle {
	return awaitableOracle{inner: inner}
}

type awaitableOracle struct {
	inner NominalOracle
}

func (o awaitableOracle) DeclaredVariances(name string) []PolTag {
	if name == AwaitableName {
		return []PolTag{Cov}
	}
	return o.inner.DeclaredVariances(name)
}

// TenvOracle is the "projection over tenv" collaborator spec.md §6
// describes: it answers DeclaredVariances purely by looking the name up in
// a TypingEnv and reading off its tparams' declared annotations. Unknown
// names, or names that resolve to something other than a class or typedef,
// yield an empty vector.
type TenvOracle struct {
	Env tenv.TypingEnv
}

func (o TenvOracle) DeclaredVariances(name string) []PolTag {
	decl := o.Env.LookupClassOrTypedef(name)
	var tparams []tenv.Tparam
	switch {
	case decl.Class != nil:
		tparams = decl.Class.Tparams
	case decl.Typedef != nil:
		tparams = decl.Typedef.Tparams
	default:
		return nil
	}
	out := make([]PolTag, len(tparams))
	for i, tp := range tparams {
		out[i] = declaredTag(tp.Variance)
	}
	return out
}
