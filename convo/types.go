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

// Package convo is the conversation engine proper: the goal stack,
// intent-dispatch logic, slot/parameter resolution, output
// composition, and the lazy intent-registration compile step that
// turns an author's script into a platform-ready intent table.
package convo

import (
	"context"

	"github.com/Comcast/convoengine/interpreters"
)

// GoalResolver resolves a resolver-shaped GoalDef. Returning true
// (which is also what a scripted resolver's undefined return becomes)
// removes the goal frame it was invoked for; returning false leaves
// the frame in place for a later turn.
type GoalResolver = interpreters.Resolver

// IntentResolver runs an author's logic for a matched intent. Unlike
// a GoalResolver it has no frame to remove; its only means of
// affecting the stack are Response.AddGoal/ClearGoal.
type IntentResolver func(ctx context.Context, r *Response) error

// IntentDef is `{ name?, goal?, expecting, resolve }` (spec.md §3):
// an utterance-triggered callback, optionally scoped to a goal.
type IntentDef struct {
	// Name is author-supplied or auto-generated at RegisterIntents
	// time (alphabetic, digit-free).
	Name string

	// Goal scopes this intent: when several IntentDefs share an
	// utterance, the one whose Goal is nearest the top of the goal
	// stack is chosen. An intent that alone owns its utterances runs
	// whether or not Goal is on the stack.
	Goal string

	// Expecting is the list of author-written utterance templates.
	Expecting []string

	// Resolve is the native Go callback. Exactly one of Resolve or
	// ResolveSource should be set.
	Resolve IntentResolver

	// ResolveSource, if set, is compiled via a registered scripting
	// Interpreter instead of using a native Go callback.
	ResolveSource *interpreters.Source

	// Doc is documentation for generated-docs tooling.
	Doc string

	compiledResolve interpreters.Resolver
}

// GoalDef is `{ key, resolve?, prompt?, ask?, respondTo? }`
// (spec.md §3). Exactly one shape is valid: a resolver goal (Resolve
// or ResolveSource set, no Prompt/Ask) or a query goal (Prompt or Ask
// set, with an optional nested RespondTo).
type GoalDef struct {
	Key string

	// Resolve, for a resolver goal. Exactly one of Resolve or
	// ResolveSource should be set when this is a resolver goal.
	Resolve GoalResolver

	// ResolveSource, if set, is compiled via a registered scripting
	// Interpreter instead of using a native Go callback.
	ResolveSource *interpreters.Source

	// Prompt/Ask, for a query goal. Ask takes priority if both are
	// set on the same frame visit.
	Prompt []string
	Ask    []string

	// RespondTo holds nested intent definitions that are desugared
	// into top-level IntentDefs with Goal set to Key, at DefineGoal
	// time.
	RespondTo []IntentDef

	Doc string

	compiledResolve interpreters.Resolver
}

// IsResolver reports whether this GoalDef is shaped as a resolver
// goal.
func (g *GoalDef) IsResolver() bool {
	return g.Resolve != nil || g.ResolveSource != nil
}

// IsQuery reports whether this GoalDef is shaped as a query goal.
func (g *GoalDef) IsQuery() bool {
	return len(g.Prompt) > 0 || len(g.Ask) > 0
}
