// Package native implements interpreters.Interpreter for resolvers
// and guards written as plain Go functions rather than script text.
//
// It exists mostly to give native Go callbacks a home in the same
// Source/Compile pipeline that scripted (goja) resolvers use, the way
// sheens' core.FuncAction sits behind the same Action interface as a
// compiled ActionSource.
package native

import (
	"context"

	"github.com/Comcast/convoengine/interpreters"
)

func init() {
	interpreters.DefaultInterpreters["native"] = New()
}

// Registry maps a name to a Go resolver function. Author code
// registers its callbacks here, then refers to them by name from an
// interpreters.Source{Interpreter: "native", Code: name}, which is
// how a YAML-authored script (which cannot embed a Go closure) points
// at Go logic supplied by the hosting binary.
type Registry struct {
	funcs map[string]interpreters.Resolver
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{funcs: map[string]interpreters.Resolver{}}
}

// Register adds a named Go resolver.
func (r *Registry) Register(name string, fn interpreters.Resolver) {
	r.funcs[name] = fn
}

// Compile looks up the named resolver; there is nothing to compile.
func (r *Registry) Compile(ctx context.Context, source string) (interface{}, error) {
	fn, have := r.funcs[source]
	if !have {
		return nil, interpreters.ErrNotFound
	}
	return fn, nil
}

// Exec runs the resolver looked up during Compile.
func (r *Registry) Exec(ctx context.Context, env interpreters.Env, source string, compiled interface{}) (bool, error) {
	fn, ok := compiled.(interpreters.Resolver)
	if !ok {
		fn2, have := r.funcs[source]
		if !have {
			return false, interpreters.ErrNotFound
		}
		fn = fn2
	}
	return fn(ctx, env)
}
