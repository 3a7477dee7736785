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

// Package interpreters generalizes sheens' core.Interpreter /
// core.ActionSource pattern from compiling machine-node actions to
// compiling scripted goal resolvers and intent guards.
//
// A GoalDef or IntentDef can give its logic either as a native Go
// function (the "native" interpreter, always available) or as source
// text for a registered scripting Interpreter (for example "goja" for
// ECMAScript). Both shapes compile down to the same Resolver
// signature, matching spec.md's collapse of heterogeneous resolver
// returns into a single async-style abstraction.
package interpreters

import (
	"context"
	"errors"
)

// ErrNotFound occurs when a Source names an interpreter that hasn't
// been registered.
var ErrNotFound = errors.New("interpreter not found")

// DefaultInterpreters holds the process-wide registered interpreters,
// keyed by name. Scripting packages (e.g. interpreters/goja) add
// themselves here via an init() function, mirroring
// core.DefaultInterpreters in the teacher.
var DefaultInterpreters = map[string]Interpreter{}

// Env is what a compiled script can observe and mutate during
// execution: the subset of the turn's Response facade needed to
// resolve a goal or evaluate a guard. Defined here (not in package
// convo) to avoid an import cycle between convo and interpreters.
type Env interface {
	Say(v interface{}, quick bool)
	Prompt(v interface{})
	Ask(v interface{})
	Get(ref string) (string, bool)
	Set(ref string, val string)
	AddGoal(key string)
	ClearGoal(key string)
	HasGoal(key string) bool
}

// Interpreter can compile source text once and execute it many times
// against an Env.
type Interpreter interface {
	// Compile turns source into an opaque compiled representation.
	Compile(ctx context.Context, source string) (interface{}, error)

	// Exec runs compiled source against env. The returned bool is the
	// resolver's "should this goal frame be removed" signal (true or
	// an un-set return value both mean "resolved", per spec.md §3
	// invariant 4).
	Exec(ctx context.Context, env Env, source string, compiled interface{}) (bool, error)
}

// Source names a registered Interpreter and gives it source text to
// compile, mirroring core.ActionSource.
type Source struct {
	Interpreter string
	Code        string
}

// Resolver is the signature every compiled resolver (native or
// scripted) is normalized to.
type Resolver func(ctx context.Context, env Env) (bool, error)

// Compile resolves a Source against the given interpreter table
// (DefaultInterpreters if nil) into a Resolver.
func (s *Source) Compile(ctx context.Context, interpreters map[string]Interpreter) (Resolver, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}
	interp, have := interpreters[s.Interpreter]
	if !have {
		return nil, ErrNotFound
	}
	compiled, err := interp.Compile(ctx, s.Code)
	if err != nil {
		return nil, err
	}
	code := s.Code
	return func(ctx context.Context, env Env) (bool, error) {
		return interp.Exec(ctx, env, code, compiled)
	}, nil
}
