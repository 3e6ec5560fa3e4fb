package variance

import (
	"sort"

	"github.com/cottand/variance/frontend/ast"
	"github.com/cottand/variance/frontend/ilerr"
	"github.com/cottand/variance/frontend/tenv"
	"github.com/cottand/variance/internal/log"
	"github.com/xtgo/set"
)

var entryLogger = log.DefaultLogger.With("section", "variance")

// environmentFromTparams builds the generic environment spec.md §4.8 uses as
// the starting point for both entry points: each tparam's declared
// annotation becomes a one-frame Variance rooted at its declaration site.
func environmentFromTparams(tparams []tenv.Tparam) Environment {
	byName := make(map[string]Variance, len(tparams))
	for _, tp := range tparams {
		pr := PosReason{Pos: tp.Pos, Descr: PosDescr{Kind: KindTparamDeclSite}}
		byName[tp.Name] = InitialFromAnnotation(pr, declaredTag(tp.Variance))
	}
	return NewEnvironment(byName)
}

func declaredTag(v tenv.DeclaredVariance) PolTag {
	switch v {
	case tenv.AnnotCovariant:
		return Cov
	case tenv.AnnotContravariant:
		return Contra
	default:
		return Inv
	}
}

// CheckTypedef is spec.md §4.8's typedef entry point: the aliased body is
// traversed under a single covariant frame, since an alias's body is always
// in covariant (read-only) position relative to its own name.
func CheckTypedef(oracle NominalOracle, td *tenv.TypedefInfo) *ilerr.Errors {
	entryLogger.Debug("checking typedef", "name", td.Name)
	env := environmentFromTparams(td.Tparams)
	c := &checker{root: nil, oracle: WithAwaitable(oracle)}
	pr := PosReason{Pos: td.Pos, Descr: PosDescr{Kind: KindTypedefBody}}
	c.typeOf(env, InitialFromAnnotation(pr, Cov), nil, td.Body)
	return c.acc
}

// CheckClass is spec.md §4.8's class entry point. parents holds the already
// resolved types named in this class's `extends`/`implements`/`use` clauses.
func CheckClass(oracle NominalOracle, class *tenv.ClassInfo, parents []ast.Type) *ilerr.Errors {
	entryLogger.Debug("checking class", "name", class.Name, "kind", class.Kind)
	env := environmentFromTparams(class.Tparams)
	c := &checker{root: class, oracle: WithAwaitable(oracle)}

	for _, p := range parents {
		c.typeOf(env, Bivariant(), nil, p)
	}

	for _, prop := range class.Properties {
		c.checkProperty(env, class, prop)
	}

	for _, m := range class.Methods {
		c.checkMethod(env, class, m)
	}

	return c.acc
}

func (c *checker) checkProperty(env Environment, class *tenv.ClassInfo, prop tenv.Property) {
	if prop.Static {
		if class.Kind == tenv.KindTrait {
			return
		}
		c.checkStaticPropertyType(env, prop)
		return
	}
	if prop.Visibility == tenv.Private {
		return
	}
	pr := PosReason{Pos: prop.Pos, Descr: PosDescr{Kind: KindInstanceMember}}
	c.typeOf(env, InitialFromAnnotation(pr, Inv), nil, prop.Type())
}

// genericsByName sorts *ast.Generic occurrences by name (via sort.Sort) so
// set.Uniq can dedup them; a property mentioning the same class tparam twice should only be
// reported once, in a stable order, per spec.md §8's determinism property.
type genericsByName []*ast.Generic

func (g genericsByName) Len() int           { return len(g) }
func (g genericsByName) Less(i, j int) bool { return g[i].Name < g[j].Name }
func (g genericsByName) Swap(i, j int)      { g[i], g[j] = g[j], g[i] }

// checkStaticPropertyType implements §4.8's static-property rule: rather
// than traverse for variance, every class tparam that occurs anywhere in the
// property's type is itself an error, reported once per tparam name, in name
// order.
func (c *checker) checkStaticPropertyType(env Environment, prop tenv.Property) {
	var found []*ast.Generic
	collectGenerics(prop.Type(), &found)

	var inScope genericsByName
	for _, g := range found {
		if env.Has(g.Name) {
			inScope = append(inScope, g)
		}
	}
	sort.Sort(inScope)
	inScope = inScope[:set.Uniq(inScope)]

	for _, g := range inScope {
		c.acc = c.acc.With(ilerr.New(ilerr.StaticPropertyTypeGenericParamUsed{
			Positioner:   g,
			PropertyName: prop.Name,
			TypeName:     g.Name,
		}))
	}
}

func (c *checker) checkMethod(env Environment, class *tenv.ClassInfo, m tenv.Method) {
	if m.Visibility == tenv.Private {
		return
	}
	if m.Final {
		return
	}
	if m.Static && class.Final {
		return
	}
	c.typeOf(env, CovOf(ReasonStack{}), nil, m.Type())
}

func collectGenerics(ty ast.Type, out *[]*ast.Generic) {
	switch t := ty.(type) {
	case *ast.Atomic, *ast.This:
	case *ast.Option:
		collectGenerics(t.Inner, out)
	case *ast.Like:
		collectGenerics(t.Inner, out)
	case *ast.Access:
		collectGenerics(t.Inner, out)
	case *ast.Union:
		for _, m := range t.Members {
			collectGenerics(m, out)
		}
	case *ast.Intersection:
		for _, m := range t.Members {
			collectGenerics(m, out)
		}
	case *ast.Tuple:
		for _, m := range t.Elements {
			collectGenerics(m, out)
		}
	case *ast.Darray:
		collectGenerics(t.Key, out)
		collectGenerics(t.Value, out)
	case *ast.Varray:
		collectGenerics(t.Element, out)
	case *ast.VarrayOrDarray:
		collectGenerics(t.Key, out)
		collectGenerics(t.Value, out)
	case *ast.Shape:
		for _, f := range t.Fields {
			collectGenerics(f.Type, out)
		}
	case *ast.Generic:
		*out = append(*out, t)
	case *ast.Apply:
		for _, a := range t.Args {
			collectGenerics(a, out)
		}
	case *ast.Fn:
		for _, p := range t.Params {
			collectGenerics(p.Type, out)
		}
		if t.Variadic != nil {
			collectGenerics(t.Variadic.Type, out)
		}
		collectGenerics(t.Return, out)
		for _, tp := range t.Tparams {
			for _, con := range tp.Constraints {
				collectGenerics(con.Type, out)
			}
		}
		for _, w := range t.Where {
			collectGenerics(w.Left, out)
			collectGenerics(w.Right, out)
		}
	default:
		panic("unreachable: unknown ast.Type case")
	}
}
