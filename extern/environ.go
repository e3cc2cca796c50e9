// Package extern defines the narrow interfaces an executor, an
// expander, or a pattern matcher plug into once an AST produced by
// shsyntax.dev/shsyntax/syntax is handed off for evaluation. This
// repository never executes, expands, or globs anything itself;
// extern only gives those external collaborators a concrete shape to
// target, the way mvdan.cc/sh/v3/expand.Environ, mvdan.cc/sh/v3/interp's
// handler funcs, and mvdan.cc/sh/v3/pattern.Regexp do in
// mvdan.cc/sh/v3. The types here are interfaces, interface-adjacent
// func types, and the plain data types they exchange (Variable,
// ValueKind); the package imports only the standard library, the same
// way mvdan.cc/sh/v3/expand.Environ itself has nothing beyond stdlib.
package extern

// ValueKind classifies what Variable.Str/List/Map holds, mirroring
// mvdan.cc/sh/v3/expand.ValueKind.
type ValueKind int

const (
	Unset ValueKind = iota
	String
	Indexed
	Associative
	NameRef
)

// Variable is a read-only view of one shell variable, modeled on
// mvdan.cc/sh/v3/expand.Variable.
type Variable struct {
	Set      bool
	Local    bool
	Exported bool
	ReadOnly bool

	Kind ValueKind

	Str  string
	List []string
	Map  map[string]string
}

// Environ is the read-only variable environment an expander consults
// while evaluating the parameter expansions this core only parses,
// e.g. BracedParam and RawParam (syntax.BracedParam, syntax.RawParam).
// Modeled on mvdan.cc/sh/v3/expand.Environ.
type Environ interface {
	// Get retrieves a variable by name; check Variable.Set to tell an
	// unset variable from one set to the empty string.
	Get(name string) Variable

	// Each calls f once per currently set variable, stopping early if f
	// returns false.
	Each(f func(name string, vr Variable) bool)
}
