package variance

import (
	"go/token"
	"testing"

	"github.com/cottand/variance/frontend/ast"
	"github.com/cottand/variance/frontend/ilerr"
	"github.com/cottand/variance/frontend/tenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyOracle declares no nominal types; scenarios that need one build a
// small map-backed oracle inline.
type emptyOracle struct{}

func (emptyOracle) DeclaredVariances(string) []PolTag { return nil }

type mapOracle map[string][]PolTag

func (o mapOracle) DeclaredVariances(name string) []PolTag { return o[name] }

func p() ast.Range {
	return ast.Range{PosStart: token.Pos(1), PosEnd: token.Pos(1)}
}

func generic(name string) ast.Type { return &ast.Generic{Range: p(), Name: name} }

func tparam(name string, v tenv.DeclaredVariance) tenv.Tparam {
	return tenv.Tparam{Name: name, Variance: v, Pos: p()}
}

func soleErrorCode(t *testing.T, errs *ilerr.Errors) ilerr.ErrCode {
	t.Helper()
	require.True(t, errs.HasError())
	require.Len(t, errs.Errors(), 1)
	return errs.Errors()[0].Code()
}

// Scenario 1: class C<+T> { function f(): T {} } -> PASS.
func TestScenario1_CovariantReturnOfCovariantTparam(t *testing.T) {
	fn := &ast.Fn{Range: p(), Return: generic("T")}
	class := &tenv.ClassInfo{
		Name:    "C",
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.False(t, errs.HasError())
}

// Scenario 2: class C<+T> { function f(T $x): void {} } -> FAIL(declared_covariant).
func TestScenario2_CovariantTparamUsedAsParameter(t *testing.T) {
	fn := &ast.Fn{
		Range:  p(),
		Params: []ast.Param{{Mode: ast.ModeNormal, Type: generic("T")}},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name:    "C",
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.Equal(t, ilerr.DeclaredCovariant, soleErrorCode(t, errs))
}

// Scenario 3: class C<-T> { function f(): T {} } -> FAIL(declared_contravariant).
func TestScenario3_ContravariantTparamUsedAsReturn(t *testing.T) {
	fn := &ast.Fn{Range: p(), Return: generic("T")}
	class := &tenv.ClassInfo{
		Name:    "C",
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotContravariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.Equal(t, ilerr.DeclaredContravariant, soleErrorCode(t, errs))
}

// Scenario 4: class C<+T> { function f(inout T $x): void {} } -> FAIL(declared_covariant).
func TestScenario4_InoutParameterIsInvariant(t *testing.T) {
	fn := &ast.Fn{
		Range:  p(),
		Params: []ast.Param{{Mode: ast.ModeInout, Type: generic("T")}},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name:    "C",
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.Equal(t, ilerr.DeclaredCovariant, soleErrorCode(t, errs))
}

// Scenario 5: typedef A<+T> = (T, T); -> PASS.
func TestScenario5_TypedefTupleBodyIsCovariant(t *testing.T) {
	td := &tenv.TypedefInfo{
		Name:    "A",
		Pos:     p(),
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Body:    &ast.Tuple{Range: p(), Elements: []ast.Type{generic("T"), generic("T")}},
	}
	errs := CheckTypedef(emptyOracle{}, td)
	assert.False(t, errs.HasError())
}

// Scenario 6: given Box<-T>, class C<+T> { function f(Box<T> $x): void {} } -> PASS.
func TestScenario6_ContravariantParameterOfContravariantNominalIsCovariant(t *testing.T) {
	oracle := mapOracle{"Box": {Contra}}
	fn := &ast.Fn{
		Range:  p(),
		Params: []ast.Param{{Mode: ast.ModeNormal, Type: &ast.Apply{Range: p(), Name: "Box", Args: []ast.Type{generic("T")}}}},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name:    "C",
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(oracle, class, nil)
	assert.False(t, errs.HasError())
}

// Scenario 7 (adapted, see traverse.go's checkThis doc comment): `this` used
// directly as a parameter of a non-final class with a covariant tparam ->
// FAIL(contravariant_this).
func TestScenario7_ContravariantThisInNonFinalClass(t *testing.T) {
	fn := &ast.Fn{
		Range:  p(),
		Params: []ast.Param{{Mode: ast.ModeNormal, Type: &ast.This{Range: p()}}},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name:    "C",
		Final:   false,
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.Equal(t, ilerr.ContravariantThis, soleErrorCode(t, errs))
}

func TestScenario7_ContravariantThisExemptInFinalClass(t *testing.T) {
	fn := &ast.Fn{
		Range:  p(),
		Params: []ast.Param{{Mode: ast.ModeNormal, Type: &ast.This{Range: p()}}},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name:    "C",
		Final:   true,
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.False(t, errs.HasError())
}

// Scenario 8: a static property untouched by a generic passes; one that
// mentions it fails.
func TestScenario8_StaticPropertyMustNotMentionGeneric(t *testing.T) {
	class := &tenv.ClassInfo{
		Name:    "C",
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Properties: []tenv.Property{{
			Name:   "x",
			Static: true,
			Pos:    p(),
			Type:   func() ast.Type { return &ast.Atomic{Range: p(), Kind: ast.KindPrimitive, Name: "int"} },
		}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.False(t, errs.HasError())

	class.Properties[0].Type = func() ast.Type { return generic("T") }
	errs = CheckClass(emptyOracle{}, class, nil)
	assert.Equal(t, ilerr.StaticPropertyTypeGenericParam, soleErrorCode(t, errs))
}

func TestPrivatePropertyAndMethodAreExempt(t *testing.T) {
	fn := &ast.Fn{
		Range:  p(),
		Params: []ast.Param{{Mode: ast.ModeNormal, Type: generic("T")}},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name:    "C",
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Properties: []tenv.Property{{
			Name:       "p",
			Visibility: tenv.Private,
			Pos:        p(),
			Type:       func() ast.Type { return generic("T") },
		}},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Private, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.False(t, errs.HasError())
}

func TestFinalInstanceMethodIsExempt(t *testing.T) {
	fn := &ast.Fn{
		Range:  p(),
		Params: []ast.Param{{Mode: ast.ModeNormal, Type: generic("T")}},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name:    "C",
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Final: true, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.False(t, errs.HasError())
}

func TestStaticMethodOfFinalClassIsExempt(t *testing.T) {
	fn := &ast.Fn{
		Range:  p(),
		Params: []ast.Param{{Mode: ast.ModeNormal, Type: generic("T")}},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name:    "C",
		Final:   true,
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Static: true, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.False(t, errs.HasError())
}

func TestStaticMethodOfNonFinalClassIsChecked(t *testing.T) {
	fn := &ast.Fn{
		Range:  p(),
		Params: []ast.Param{{Mode: ast.ModeNormal, Type: generic("T")}},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name:    "C",
		Final:   false,
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Static: true, Type: func() *ast.Fn { return fn }}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.Equal(t, ilerr.DeclaredCovariant, soleErrorCode(t, errs))
}

func TestTraitStaticPropertyIsExempt(t *testing.T) {
	class := &tenv.ClassInfo{
		Name:    "C",
		Kind:    tenv.KindTrait,
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotCovariant)},
		Properties: []tenv.Property{{
			Name:   "x",
			Static: true,
			Pos:    p(),
			Type:   func() ast.Type { return generic("T") },
		}},
	}
	errs := CheckClass(emptyOracle{}, class, nil)
	assert.False(t, errs.HasError())
}

// A parent clause is traversed starting from a fresh Bivariant variance
// (entry.go's CheckClass), not skipped altogether: a type argument's slot
// still composes with the parent's own declared variance, and a mismatch
// against the enclosing class's tparam is still reported.
func TestParentClauseStartsBivariantButStillChecksComposedUse(t *testing.T) {
	class := &tenv.ClassInfo{
		Name:    "C",
		Tparams: []tenv.Tparam{tparam("T", tenv.AnnotContravariant)},
	}
	parents := []ast.Type{&ast.Apply{Range: p(), Name: "Iface", Args: []ast.Type{generic("T")}}}
	errs := CheckClass(mapOracle{"Iface": {Contra}}, class, parents)
	assert.False(t, errs.HasError())

	errs = CheckClass(mapOracle{"Iface": {Cov}}, class, parents)
	assert.Equal(t, ilerr.DeclaredContravariant, soleErrorCode(t, errs))
}

func TestDeterministicErrorOrder(t *testing.T) {
	fn := &ast.Fn{
		Range: p(),
		Params: []ast.Param{
			{Mode: ast.ModeNormal, Type: generic("T")},
			{Mode: ast.ModeNormal, Type: generic("U")},
		},
		Return: &ast.Atomic{Range: p(), Kind: ast.KindAny},
	}
	class := &tenv.ClassInfo{
		Name: "C",
		Tparams: []tenv.Tparam{
			tparam("T", tenv.AnnotCovariant),
			tparam("U", tenv.AnnotCovariant),
		},
		Methods: []tenv.Method{{Name: "f", Visibility: tenv.Public, Type: func() *ast.Fn { return fn }}},
	}
	first := CheckClass(emptyOracle{}, class, nil)
	second := CheckClass(emptyOracle{}, class, nil)
	require.Len(t, first.Errors(), 2)
	require.Len(t, second.Errors(), 2)
	for i := range first.Errors() {
		assert.Equal(t, first.Errors()[i].Code(), second.Errors()[i].Code())
	}
}
