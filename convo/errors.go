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

package convo

// These are the author-facing registration errors from spec.md §7.
// DuplicateGoalKey and AmbiguousGoalShape are returned by DefineGoal,
// UnresolvableCustomEnum by RegisterIntents; everything
// else the engine encounters at dispatch time degrades gracefully
// (a DispatchWarning is logged, the turn continues).

// DuplicateGoalKey occurs when two GoalDefs are registered under the
// same Key.
type DuplicateGoalKey struct {
	Key string
}

func (e *DuplicateGoalKey) Error() string {
	return `duplicate goal key "` + e.Key + `"`
}

// AmbiguousGoalShape occurs when a GoalDef sets both a resolver
// (Resolve/ResolveSource) and a query shape (Prompt/Ask), or sets
// neither.
type AmbiguousGoalShape struct {
	Key string
}

func (e *AmbiguousGoalShape) Error() string {
	return `goal "` + e.Key + `" must be exactly one of a resolver or a query, not both or neither`
}

// UnresolvableCustomEnum occurs when a slot type is declared
// CustomEnum but carries no Values.
type UnresolvableCustomEnum struct {
	SlotName string
}

func (e *UnresolvableCustomEnum) Error() string {
	return `custom-enum slot type "` + e.SlotName + `" has no values`
}

// NotCompiled occurs when an intent is processed or Launch is called
// on an Engine before RegisterIntents has completed.
type NotCompiled struct{}

func (e *NotCompiled) Error() string {
	return "engine used before RegisterIntents"
}

// UnknownGoalFrame is a DispatchWarning: a frame on the stack names a
// goal that isn't registered. The loop logs this and breaks rather
// than crashing the turn.
type UnknownGoalFrame struct {
	Key string
}

func (e *UnknownGoalFrame) Error() string {
	return `unknown goal frame "` + e.Key + `"`
}
