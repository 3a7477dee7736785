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

import (
	"context"
	"strings"

	"github.com/Comcast/convoengine/goalstack"
	"github.com/Comcast/convoengine/output"
	"github.com/Comcast/convoengine/platform"
	"github.com/Comcast/convoengine/store"
)

// Response is the per-turn object passed to author callbacks
// (spec.md §4.5): session get/set, goal management, say/prompt/ask,
// and persistent-store access.
//
// Response implements interpreters.Env so a scripted (e.g. goja)
// resolver sees exactly the same surface a native Go callback does.
type Response struct {
	ctx     context.Context
	req     platform.Request
	session platform.Session
	stack   *goalstack.Stack
	out     *output.Manager
	pstore  store.Store

	records map[string]*store.Record

	// goalStateChanged, when set by AddGoal/ClearGoal, tells the
	// goal loop to reset its cursor to 0 so newly-pushed goals are
	// considered next.
	goalStateChanged bool
}

func newResponse(ctx context.Context, req platform.Request, session platform.Session, pstore store.Store) *Response {
	r := &Response{
		ctx:     ctx,
		req:     req,
		session: session,
		stack:   goalstack.New(session),
		pstore:  pstore,
		records: map[string]*store.Record{},
	}
	r.out = output.New(r.lookupForSay)
	return r
}

// lookupForSay resolves a bare "{{var}}" reference (the var name with
// braces already stripped) for say/prompt/ask interpolation: session
// first, then, if the name is dotted, a persistent-record field.
func (r *Response) lookupForSay(ref string) (string, bool) {
	if v, ok := r.session.Get(ref); ok {
		return v, true
	}
	if name, field := splitRecordRef(ref); field != "" {
		if rec, have := r.records[name]; have {
			return rec.Get(field)
		}
	}
	return "", false
}

// Say queues a statement fragment. v is a string or []string (a list
// picks one alternative uniformly at random); quick suppresses the
// inter-fragment pause.
func (r *Response) Say(v interface{}, quick bool) {
	r.out.Say(v, quick)
}

// Prompt queues a question fragment worth output.PromptWeight toward
// the per-turn "asked" counter.
func (r *Response) Prompt(v interface{}) {
	r.out.Prompt(v)
}

// Ask queues a question fragment worth output.AskWeight toward the
// per-turn "asked" counter.
func (r *Response) Ask(v interface{}) {
	r.out.Ask(v)
}

// Get resolves a reference in one of the three namespaces spec.md
// §4.5 describes:
//
//	{{name}}        session variable
//	[[name]]        current-request slot (read-only alias into session)
//	<<record.field>> persistent-record field on a previously-loaded record
func (r *Response) Get(ref string) (string, bool) {
	switch {
	case strings.HasPrefix(ref, "{{") && strings.HasSuffix(ref, "}}"):
		return r.session.Get(strings.TrimSuffix(strings.TrimPrefix(ref, "{{"), "}}"))
	case strings.HasPrefix(ref, "[[") && strings.HasSuffix(ref, "]]"):
		return r.session.Get(slotSessionKey(strings.TrimSuffix(strings.TrimPrefix(ref, "[["), "]]")))
	case strings.HasPrefix(ref, "<<") && strings.HasSuffix(ref, ">>"):
		name, field := splitRecordRef(strings.TrimSuffix(strings.TrimPrefix(ref, "<<"), ">>"))
		rec, have := r.records[name]
		if !have {
			return "", false
		}
		return rec.Get(field)
	default:
		// Bare names are treated as session variables, matching
		// output.Manager's "{{var}}" interpolation, which resolves
		// the inner name against the session via lookupForSay.
		return r.session.Get(ref)
	}
}

// Set writes a reference in one of the same three namespaces Get
// reads. [[slot]] refs are a read-only alias and Set on one is a
// no-op.
func (r *Response) Set(ref string, val string) {
	switch {
	case strings.HasPrefix(ref, "{{") && strings.HasSuffix(ref, "}}"):
		r.session.Set(strings.TrimSuffix(strings.TrimPrefix(ref, "{{"), "}}"), val)
	case strings.HasPrefix(ref, "[[") && strings.HasSuffix(ref, "]]"):
		// read-only alias; ignore
	case strings.HasPrefix(ref, "<<") && strings.HasSuffix(ref, ">>"):
		name, field := splitRecordRef(strings.TrimSuffix(strings.TrimPrefix(ref, "<<"), ">>"))
		rec, have := r.records[name]
		if !have {
			rec = &store.Record{Name: name}
			r.records[name] = rec
		}
		rec.Set(field, val)
	default:
		r.session.Set(ref, val)
	}
}

func splitRecordRef(s string) (record string, field string) {
	idx := strings.Index(s, ".")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx+1:]
}

func slotSessionKey(name string) string {
	return "slot:" + name
}

// Load fetches a record from the persistent store and keeps it
// available for subsequent <<record.field>> Get/Set calls.
func (r *Response) Load(record, keyField, keyValue, where string) (*store.Record, error) {
	rec, err := r.pstore.Load(r.ctx, record, keyField, keyValue, where)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &store.Record{Name: record}
	}
	rec.KeyField, rec.KeyValue = keyField, keyValue
	r.records[record] = rec
	return rec, nil
}

// StoreRecord upserts a record previously Load-ed or built via Set.
func (r *Response) StoreRecord(record string) error {
	rec, have := r.records[record]
	if !have {
		rec = &store.Record{Name: record}
	}
	return r.pstore.Store(r.ctx, rec)
}

// AddGoal pushes a new goal frame and marks the goal state changed so
// the loop considers it next.
func (r *Response) AddGoal(key string) {
	r.stack.Append(key)
	r.goalStateChanged = true
}

// ClearGoal removes the innermost frame for key and marks the goal
// state changed.
func (r *Response) ClearGoal(key string) {
	r.stack.Remove(key)
	r.goalStateChanged = true
}

// HasGoal reports whether key is anywhere on the stack.
func (r *Response) HasGoal(key string) bool {
	return r.stack.Contains(key)
}

// GoalFilled checks whether slotRef is non-empty; if it is empty, it
// queues childKey onto the stack and returns false (signalling to the
// caller that its dependency is not yet met). Otherwise it returns
// true without side effects.
func (r *Response) GoalFilled(childKey string, slotRef string) bool {
	if v, ok := r.Get(slotRef); ok && v != "" {
		return true
	}
	r.AddGoal(childKey)
	return false
}

// EndSession requests that the session close at the end of this turn.
func (r *Response) EndSession() {
	r.out.EndSession = true
}

// Session exposes the raw session, for adapters/tools that need
// direct access beyond Get/Set.
func (r *Response) Session() platform.Session {
	return r.session
}

// Stack exposes the goal stack directly, for tooling (e.g. a dev
// console) that wants to display it.
func (r *Response) Stack() *goalstack.Stack {
	return r.stack
}
