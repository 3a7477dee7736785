/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package goja implements interpreters.Interpreter using Goja, a Go
// implementation of ECMAScript 5.1+, so a goal resolver or intent
// guard can be authored as a small JavaScript snippet instead of a
// compiled-in Go function. This is the same role sheens'
// interpreters/goja package plays for machine-node actions, adapted
// here to the Env (say/prompt/ask/get/set/goal-stack) surface a
// resolver actually needs.
//
// See https://github.com/dop251/goja.
package goja

import (
	"context"
	"errors"
	"time"

	"github.com/Comcast/convoengine/interpreters"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

func init() {
	interpreters.DefaultInterpreters["goja"] = NewInterpreter()
}

// InterruptedMessage is the string value of Interrupted.
var InterruptedMessage = "RuntimeError: timeout"

// Interrupted is returned by Exec if execution is interrupted by the
// Timeout.
var Interrupted = errors.New(InterruptedMessage)

// Interpreter implements interpreters.Interpreter using Goja.
type Interpreter struct {
	// Timeout bounds how long a script may run before it is
	// interrupted. Zero means no timeout.
	Timeout time.Duration
}

// NewInterpreter creates a goja Interpreter with a conservative
// default timeout.
func NewInterpreter() *Interpreter {
	return &Interpreter{Timeout: 500 * time.Millisecond}
}

// Compile parses source into a reusable *goja.Program.
func (in *Interpreter) Compile(ctx context.Context, source string) (interface{}, error) {
	return goja.Compile("resolver", source, false)
}

// Exec runs compiled source in a fresh VM, wiring env's methods in as
// globals, and normalizes the script's return value to (bool, error).
//
// A script returns "true" or nothing to mean "resolved" (remove this
// goal frame), matching the Env/Resolver contract used everywhere
// else in this module; returning "false" means "not resolved yet".
func (in *Interpreter) Exec(ctx context.Context, env interpreters.Env, source string, compiled interface{}) (bool, error) {
	prog, ok := compiled.(*goja.Program)
	if !ok {
		p, err := goja.Compile("resolver", source, false)
		if err != nil {
			return false, err
		}
		prog = p
	}

	vm := goja.New()
	if err := bindEnv(vm, env); err != nil {
		return false, err
	}

	if in.Timeout > 0 {
		timer := time.AfterFunc(in.Timeout, func() {
			vm.Interrupt(InterruptedMessage)
		})
		defer timer.Stop()
	}

	v, err := vm.RunProgram(prog)
	if err != nil {
		if ie, is := err.(*goja.InterruptedError); is {
			_ = ie
			return false, Interrupted
		}
		return false, err
	}

	if goja.IsUndefined(v) || v == nil {
		return true, nil
	}
	return v.ToBoolean(), nil
}

// bindEnv exposes env's operations as globals in vm: say, prompt,
// ask, get, set, addGoal, clearGoal, hasGoal, plus a cron(expr)
// helper (via github.com/gorhill/cronexpr) that returns the next fire
// time in RFC3339, useful for scripts that want to compute a re-ask
// deadline.
func bindEnv(vm *goja.Runtime, env interpreters.Env) error {
	set := func(name string, v interface{}) error {
		return vm.Set(name, v)
	}
	if err := set("say", func(v interface{}, quick bool) { env.Say(v, quick) }); err != nil {
		return err
	}
	if err := set("prompt", func(v interface{}) { env.Prompt(v) }); err != nil {
		return err
	}
	if err := set("ask", func(v interface{}) { env.Ask(v) }); err != nil {
		return err
	}
	if err := set("get", func(ref string) interface{} {
		v, ok := env.Get(ref)
		if !ok {
			return goja.Undefined()
		}
		return v
	}); err != nil {
		return err
	}
	if err := set("set", func(ref string, val string) { env.Set(ref, val) }); err != nil {
		return err
	}
	if err := set("addGoal", func(key string) { env.AddGoal(key) }); err != nil {
		return err
	}
	if err := set("clearGoal", func(key string) { env.ClearGoal(key) }); err != nil {
		return err
	}
	if err := set("hasGoal", func(key string) bool { return env.HasGoal(key) }); err != nil {
		return err
	}
	if err := set("cron", func(expr string) (string, error) {
		c, err := cronexpr.Parse(expr)
		if err != nil {
			return "", err
		}
		return c.Next(time.Now()).Format(time.RFC3339), nil
	}); err != nil {
		return err
	}
	return nil
}
