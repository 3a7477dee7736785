package goja

import (
	"context"
	"testing"
)

type fakeEnv struct {
	values map[string]string
	goals  map[string]bool
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{values: map[string]string{}, goals: map[string]bool{}}
}

func (e *fakeEnv) Say(v interface{}, quick bool) {}
func (e *fakeEnv) Prompt(v interface{})          {}
func (e *fakeEnv) Ask(v interface{})             {}
func (e *fakeEnv) Get(ref string) (string, bool) {
	v, ok := e.values[ref]
	return v, ok
}
func (e *fakeEnv) Set(ref string, val string) { e.values[ref] = val }
func (e *fakeEnv) AddGoal(key string)         { e.goals[key] = true }
func (e *fakeEnv) ClearGoal(key string)       { delete(e.goals, key) }
func (e *fakeEnv) HasGoal(key string) bool    { return e.goals[key] }

func TestExecSetsAndResolves(t *testing.T) {
	in := NewInterpreter()
	src := `set("airline", get("[[airline]]")); true`
	compiled, err := in.Compile(context.Background(), src)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	env := newFakeEnv()
	env.values["[[airline]]"] = "Delta"

	ok, err := in.Exec(context.Background(), env, src, compiled)
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if !ok {
		t.Error("expected resolved=true")
	}
	if env.values["airline"] != "Delta" {
		t.Errorf("expected airline set to Delta, got %v", env.values)
	}
}

func TestExecUndefinedMeansResolved(t *testing.T) {
	in := NewInterpreter()
	src := `addGoal("bloodSugar")`
	compiled, err := in.Compile(context.Background(), src)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	env := newFakeEnv()
	ok, err := in.Exec(context.Background(), env, src, compiled)
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if !ok {
		t.Error("expected undefined return to mean resolved")
	}
	if !env.goals["bloodSugar"] {
		t.Error("expected bloodSugar goal to have been added")
	}
}

func TestExecFalseMeansNotResolved(t *testing.T) {
	in := NewInterpreter()
	src := `false`
	compiled, _ := in.Compile(context.Background(), src)
	env := newFakeEnv()
	ok, err := in.Exec(context.Background(), env, src, compiled)
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	if ok {
		t.Error("expected false return to mean not resolved")
	}
}
