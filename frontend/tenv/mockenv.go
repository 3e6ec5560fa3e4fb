package tenv

import (
	"github.com/benbjohnson/immutable"
)

// MockEnv is an in-memory TypingEnv backed by a persistent map, grounded on
// the same benbjohnson/immutable usage the surrounding typechecker favours
// for read-only name tables. It exists for tests and for the CLI's fixture
// loader, which both need a cheap, fully-formed TypingEnv without a real
// decl-loading pipeline behind it.
type MockEnv struct {
	decls *immutable.Map[string, Decl]
}

// NewMockEnv builds a MockEnv from a name -> Decl table.
func NewMockEnv(decls map[string]Decl) MockEnv {
	b := immutable.NewMapBuilder[string, Decl](immutable.NewHasher(""))
	for name, d := range decls {
		b.Set(name, d)
	}
	return MockEnv{decls: b.Map()}
}

func (e MockEnv) LookupClassOrTypedef(name string) Decl {
	d, ok := e.decls.Get(name)
	if !ok {
		return Decl{}
	}
	return d
}

var _ TypingEnv = MockEnv{}
