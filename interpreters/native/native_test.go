package native

import (
	"context"
	"testing"

	"github.com/Comcast/convoengine/interpreters"
)

type fakeEnv struct {
	said   []string
	goals  map[string]bool
	values map[string]string
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{goals: map[string]bool{}, values: map[string]string{}}
}

func (e *fakeEnv) Say(v interface{}, quick bool) {
	if s, ok := v.(string); ok {
		e.said = append(e.said, s)
	}
}
func (e *fakeEnv) Prompt(v interface{})     {}
func (e *fakeEnv) Ask(v interface{})        {}
func (e *fakeEnv) Get(ref string) (string, bool) {
	v, ok := e.values[ref]
	return v, ok
}
func (e *fakeEnv) Set(ref string, val string) { e.values[ref] = val }
func (e *fakeEnv) AddGoal(key string)         { e.goals[key] = true }
func (e *fakeEnv) ClearGoal(key string)       { delete(e.goals, key) }
func (e *fakeEnv) HasGoal(key string) bool    { return e.goals[key] }

func TestNativeRegistryResolve(t *testing.T) {
	reg := New()
	reg.Register("hello", func(ctx context.Context, env interpreters.Env) (bool, error) {
		env.Say("Hi", true)
		return true, nil
	})

	src := &interpreters.Source{Interpreter: "native", Code: "hello"}
	resolver, err := src.Compile(context.Background(), map[string]interpreters.Interpreter{"native": reg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := newFakeEnv()
	ok, err := resolver(context.Background(), env)
	if err != nil || !ok {
		t.Fatalf("expected resolved=true, nil error, got %v %v", ok, err)
	}
	if len(env.said) != 1 || env.said[0] != "Hi" {
		t.Errorf("expected Say to have been called, got %v", env.said)
	}
}
