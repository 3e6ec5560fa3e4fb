// Package fixture loads a YAML description of classes and typedefs into the
// checker's own ast/tenv types, so the CLI has something to point the
// checker at without a real decl-loading pipeline behind it.
package fixture

import (
	"go/token"
	"strings"

	"github.com/cottand/variance/frontend/ast"
	"github.com/cottand/variance/frontend/tenv"
	"github.com/cottand/variance/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the root of a fixture YAML document.
type File struct {
	Classes  []yamlClass   `yaml:"classes"`
	Typedefs []yamlTypedef `yaml:"typedefs"`
}

type yamlTparam struct {
	Name     string `yaml:"name"`
	Variance string `yaml:"variance"` // covariant|contravariant|invariant
}

type yamlClass struct {
	Name       string           `yaml:"name"`
	Kind       string           `yaml:"kind"` // class|interface|trait
	Final      bool             `yaml:"final"`
	Tparams    []yamlTparam     `yaml:"tparams"`
	Parents    []yamlType       `yaml:"parents"`
	Properties []yamlProperty   `yaml:"properties"`
	Methods    []yamlMethod     `yaml:"methods"`
}

type yamlProperty struct {
	Name       string   `yaml:"name"`
	Visibility string   `yaml:"visibility"` // public|protected|private
	Static     bool     `yaml:"static"`
	Type       yamlType `yaml:"type"`
}

type yamlMethod struct {
	Name       string   `yaml:"name"`
	Visibility string   `yaml:"visibility"`
	Final      bool     `yaml:"final"`
	Static     bool     `yaml:"static"`
	Type       yamlType `yaml:"type"` // must be a `fn` node
}

type yamlTypedef struct {
	Name    string       `yaml:"name"`
	Tparams []yamlTparam `yaml:"tparams"`
	Body    yamlType     `yaml:"body"`
}

// yamlType is a recursive, tagged-union YAML encoding of ast.Type: exactly
// one field should be set per node, naming which constructor it is.
type yamlType struct {
	Atomic         string            `yaml:"atomic,omitempty"` // any|error|mixed|nonnull|dynamic|var|prim:<name>
	Option         *yamlType         `yaml:"option,omitempty"`
	Like           *yamlType         `yaml:"like,omitempty"`
	Access         *yamlAccess       `yaml:"access,omitempty"`
	Union          []yamlType        `yaml:"union,omitempty"`
	Intersection   []yamlType        `yaml:"intersection,omitempty"`
	Tuple          []yamlType        `yaml:"tuple,omitempty"`
	Darray         *yamlKV           `yaml:"darray,omitempty"`
	Varray         *yamlType         `yaml:"varray,omitempty"`
	VarrayOrDarray *yamlKV           `yaml:"varrayOrDarray,omitempty"`
	Shape          []yamlShapeField  `yaml:"shape,omitempty"`
	Generic        string            `yaml:"generic,omitempty"`
	Apply          *yamlApply        `yaml:"apply,omitempty"`
	Fn             *yamlFn           `yaml:"fn,omitempty"`
	This           bool              `yaml:"this,omitempty"`
}

type yamlAccess struct {
	Inner  yamlType `yaml:"inner"`
	Member string   `yaml:"member"`
}

type yamlKV struct {
	Key   yamlType `yaml:"key"`
	Value yamlType `yaml:"value"`
}

type yamlShapeField struct {
	Name     string   `yaml:"name"`
	Optional bool     `yaml:"optional"`
	Type     yamlType `yaml:"type"`
}

type yamlApply struct {
	Name string     `yaml:"name"`
	Args []yamlType `yaml:"args"`
}

type yamlParam struct {
	Mode string   `yaml:"mode"` // normal|inout
	Type yamlType `yaml:"type"`
}

type yamlConstraint struct {
	Kind string   `yaml:"kind"` // as|super|eq
	Type yamlType `yaml:"type"`
}

type yamlFnTparam struct {
	Name        string           `yaml:"name"`
	Variance    string           `yaml:"variance"` // covariant|contravariant|invariant
	Constraints []yamlConstraint `yaml:"constraints"`
}

type yamlWhere struct {
	Left  yamlType `yaml:"left"`
	Kind  string   `yaml:"kind"`
	Right yamlType `yaml:"right"`
}

type yamlFn struct {
	Params   []yamlParam    `yaml:"params"`
	Variadic *yamlParam     `yaml:"variadic"`
	Return   yamlType       `yaml:"return"`
	Tparams  []yamlFnTparam `yaml:"tparams"`
	Where    []yamlWhere    `yaml:"where"`
}

// Load parses a fixture document and converts it into decl tables ready to
// back a tenv.MockEnv, plus the class/typedef handles the checker's entry
// points take directly.
func Load(data []byte) (classes []*tenv.ClassInfo, classParents map[string][]ast.Type, typedefs []*tenv.TypedefInfo, err error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, nil, errors.Wrap(err, "parsing fixture")
	}
	b := &builder{}
	classParents = map[string][]ast.Type{}
	for _, yc := range f.Classes {
		if err := checkUniqueTparams(yc.Tparams); err != nil {
			return nil, nil, nil, errors.Wrapf(err, "class %s", yc.Name)
		}
		c, parents := b.convertClass(yc)
		classes = append(classes, c)
		classParents[c.Name] = parents
	}
	for _, yt := range f.Typedefs {
		if err := checkUniqueTparams(yt.Tparams); err != nil {
			return nil, nil, nil, errors.Wrapf(err, "typedef %s", yt.Name)
		}
		typedefs = append(typedefs, b.convertTypedef(yt))
	}
	return classes, classParents, typedefs, nil
}

// checkUniqueTparams rejects a fixture that declares the same tparam name
// twice, which would silently shadow one of the declared variances in the
// resulting Environment.
func checkUniqueTparams(tparams []yamlTparam) error {
	seen := util.NewEmptySet[string]()
	for _, tp := range tparams {
		if seen.Contains(tp.Name) {
			return errors.Errorf("duplicate tparam name %q", tp.Name)
		}
		seen.Add(tp.Name)
	}
	return nil
}

// builder hands out strictly increasing synthetic positions, so every node
// in a fixture renders at a distinct (fake) source location even though the
// fixture format carries no real ones.
type builder struct {
	next token.Pos
}

func (b *builder) pos() ast.Range {
	b.next++
	return ast.Range{PosStart: b.next, PosEnd: b.next}
}

func (b *builder) convertClass(yc yamlClass) (*tenv.ClassInfo, []ast.Type) {
	info := &tenv.ClassInfo{
		Name:  yc.Name,
		Kind:  classKind(yc.Kind),
		Final: yc.Final,
		Pos:   b.pos(),
	}
	for _, tp := range yc.Tparams {
		info.Tparams = append(info.Tparams, tenv.Tparam{
			Name:     tp.Name,
			Variance: variance(tp.Variance),
			Pos:      b.pos(),
		})
	}
	for _, p := range yc.Properties {
		p := p
		info.Properties = append(info.Properties, tenv.Property{
			Name:       p.Name,
			Visibility: visibility(p.Visibility),
			Static:     p.Static,
			Pos:        b.pos(),
			Type:       func() ast.Type { return b.convertType(p.Type) },
		})
	}
	for _, m := range yc.Methods {
		m := m
		info.Methods = append(info.Methods, tenv.Method{
			Name:       m.Name,
			Visibility: visibility(m.Visibility),
			Final:      m.Final,
			Static:     m.Static,
			Pos:        b.pos(),
			Type:       func() *ast.Fn { return b.convertType(m.Type).(*ast.Fn) },
		})
	}
	var parents []ast.Type
	for _, p := range yc.Parents {
		parents = append(parents, b.convertType(p))
	}
	return info, parents
}

func (b *builder) convertTypedef(yt yamlTypedef) *tenv.TypedefInfo {
	info := &tenv.TypedefInfo{
		Name: yt.Name,
		Pos:  b.pos(),
		Body: b.convertType(yt.Body),
	}
	for _, tp := range yt.Tparams {
		info.Tparams = append(info.Tparams, tenv.Tparam{
			Name:     tp.Name,
			Variance: variance(tp.Variance),
			Pos:      b.pos(),
		})
	}
	return info
}

func classKind(s string) tenv.ClassKind {
	switch s {
	case "interface":
		return tenv.KindInterface
	case "trait":
		return tenv.KindTrait
	default:
		return tenv.KindClass
	}
}

func visibility(s string) tenv.Visibility {
	switch s {
	case "protected":
		return tenv.Protected
	case "private":
		return tenv.Private
	default:
		return tenv.Public
	}
}

func variance(s string) tenv.DeclaredVariance {
	switch s {
	case "covariant":
		return tenv.AnnotCovariant
	case "contravariant":
		return tenv.AnnotContravariant
	default:
		return tenv.AnnotInvariant
	}
}

func fnVariance(s string) ast.DeclaredVariance {
	switch s {
	case "covariant":
		return ast.VarianceCovariant
	case "contravariant":
		return ast.VarianceContravariant
	default:
		return ast.VarianceInvariant
	}
}

func constraintKind(s string) ast.ConstraintKind {
	switch s {
	case "super":
		return ast.ConstraintSuper
	case "eq":
		return ast.ConstraintEq
	default:
		return ast.ConstraintAs
	}
}

func (b *builder) convertType(y yamlType) ast.Type {
	rng := b.pos()
	switch {
	case y.Atomic != "":
		return &ast.Atomic{Range: rng, Kind: atomicKind(y.Atomic), Name: strings.TrimPrefix(y.Atomic, "prim:")}
	case y.Option != nil:
		return &ast.Option{Range: rng, Inner: b.convertType(*y.Option)}
	case y.Like != nil:
		return &ast.Like{Range: rng, Inner: b.convertType(*y.Like)}
	case y.Access != nil:
		return &ast.Access{Range: rng, Inner: b.convertType(y.Access.Inner), MemberName: y.Access.Member}
	case len(y.Union) > 0:
		return &ast.Union{Range: rng, Members: b.convertTypes(y.Union)}
	case len(y.Intersection) > 0:
		return &ast.Intersection{Range: rng, Members: b.convertTypes(y.Intersection)}
	case len(y.Tuple) > 0:
		return &ast.Tuple{Range: rng, Elements: b.convertTypes(y.Tuple)}
	case y.Darray != nil:
		return &ast.Darray{Range: rng, Key: b.convertType(y.Darray.Key), Value: b.convertType(y.Darray.Value)}
	case y.Varray != nil:
		return &ast.Varray{Range: rng, Element: b.convertType(*y.Varray)}
	case y.VarrayOrDarray != nil:
		return &ast.VarrayOrDarray{Range: rng, Key: b.convertType(y.VarrayOrDarray.Key), Value: b.convertType(y.VarrayOrDarray.Value)}
	case len(y.Shape) > 0:
		fields := make([]ast.ShapeField, len(y.Shape))
		for i, f := range y.Shape {
			fields[i] = ast.ShapeField{Name: f.Name, Optional: f.Optional, Type: b.convertType(f.Type)}
		}
		return &ast.Shape{Range: rng, Fields: fields}
	case y.Generic != "":
		return &ast.Generic{Range: rng, Name: y.Generic}
	case y.Apply != nil:
		return &ast.Apply{Range: rng, Name: y.Apply.Name, Args: b.convertTypes(y.Apply.Args)}
	case y.Fn != nil:
		return b.convertFn(rng, *y.Fn)
	case y.This:
		return &ast.This{Range: rng}
	default:
		return &ast.Atomic{Range: rng, Kind: ast.KindAny}
	}
}

func (b *builder) convertTypes(ys []yamlType) []ast.Type {
	out := make([]ast.Type, len(ys))
	for i, y := range ys {
		out[i] = b.convertType(y)
	}
	return out
}

func (b *builder) convertFn(rng ast.Range, y yamlFn) *ast.Fn {
	fn := &ast.Fn{Range: rng, Return: b.convertType(y.Return)}
	for _, p := range y.Params {
		fn.Params = append(fn.Params, ast.Param{Mode: paramMode(p.Mode), Type: b.convertType(p.Type)})
	}
	if y.Variadic != nil {
		v := ast.Param{Mode: paramMode(y.Variadic.Mode), Type: b.convertType(y.Variadic.Type)}
		fn.Variadic = &v
	}
	for _, tp := range y.Tparams {
		ftp := ast.FnTparam{Range: b.pos(), Name: tp.Name, Variance: fnVariance(tp.Variance)}
		for _, con := range tp.Constraints {
			ftp.Constraints = append(ftp.Constraints, ast.TparamConstraint{
				Kind: constraintKind(con.Kind),
				Type: b.convertType(con.Type),
			})
		}
		fn.Tparams = append(fn.Tparams, ftp)
	}
	for _, w := range y.Where {
		fn.Where = append(fn.Where, ast.WhereConstraint{
			Left:  b.convertType(w.Left),
			Kind:  constraintKind(w.Kind),
			Right: b.convertType(w.Right),
		})
	}
	return fn
}

func paramMode(s string) ast.ParamMode {
	if s == "inout" {
		return ast.ModeInout
	}
	return ast.ModeNormal
}

func atomicKind(name string) ast.AtomicKind {
	switch name {
	case "any":
		return ast.KindAny
	case "error":
		return ast.KindErrorType
	case "mixed":
		return ast.KindMixed
	case "nonnull":
		return ast.KindNonnull
	case "dynamic":
		return ast.KindDynamic
	case "var":
		return ast.KindVarKind
	default:
		return ast.KindPrimitive
	}
}
