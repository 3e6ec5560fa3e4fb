package variance

import "github.com/hashicorp/go-set/v3"

// Environment is a finite mapping from generic parameter names, unique
// within a scope, to their declared Variance. Insertion order is
// irrelevant; per the Design Notes, an association-list-sized map is
// adequate since scopes realistically carry at most a handful of tparams.
type Environment struct {
	byName map[string]Variance
}

// NewEnvironment builds an Environment from a name -> declared Variance map.
func NewEnvironment(declared map[string]Variance) Environment {
	byName := make(map[string]Variance, len(declared))
	for name, v := range declared {
		byName[name] = v
	}
	return Environment{byName: byName}
}

// Lookup returns name's declared Variance, or Bivariant if name is not in
// scope (e.g. it names a method-local tparam from outside that method).
func (e Environment) Lookup(name string) Variance {
	v, ok := e.byName[name]
	if !ok {
		return Bivariant()
	}
	return v
}

// Has reports whether name is declared in this environment.
func (e Environment) Has(name string) bool {
	_, ok := e.byName[name]
	return ok
}

// Without returns a new Environment with the given names removed, used by
// the function-type case to unbind method-local tparams for the scope of
// that function (spec.md §4.4's function-type case, step 1).
func (e Environment) Without(names ...string) Environment {
	if len(names) == 0 {
		return e
	}
	remove := set.From(names)
	byName := make(map[string]Variance, len(e.byName))
	for name, v := range e.byName {
		if remove.Contains(name) {
			continue
		}
		byName[name] = v
	}
	return Environment{byName: byName}
}

// With returns a new Environment with additional name -> declared Variance
// entries merged in (existing names are overwritten).
func (e Environment) With(additions map[string]Variance) Environment {
	byName := make(map[string]Variance, len(e.byName)+len(additions))
	for name, v := range e.byName {
		byName[name] = v
	}
	for name, v := range additions {
		byName[name] = v
	}
	return Environment{byName: byName}
}
