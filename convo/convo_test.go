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
	"testing"
	"time"

	"github.com/Comcast/convoengine/interpreters"
	"github.com/Comcast/convoengine/platform"
	"github.com/Comcast/convoengine/store"
)

// memSession is an in-memory platform.Session test double.
type memSession struct {
	vals map[string]string
}

func newMemSession() *memSession { return &memSession{vals: map[string]string{}} }

func (s *memSession) Get(key string) (string, bool) { v, ok := s.vals[key]; return v, ok }
func (s *memSession) Set(key string, value string)  { s.vals[key] = value }
func (s *memSession) Attributes() map[string]string  { return s.vals }

// fakeRequest is an in-memory platform.Request test double.
type fakeRequest struct {
	userID  string
	slots   map[string]string
	session *memSession

	said       string
	endSession bool
}

func newFakeRequest(session *memSession, slots map[string]string) *fakeRequest {
	return &fakeRequest{userID: "u1", slots: slots, session: session}
}

func (r *fakeRequest) UserID() string                    { return r.userID }
func (r *fakeRequest) Slots() map[string]string           { return r.slots }
func (r *fakeRequest) Slot(name string) (string, bool)    { v, ok := r.slots[name]; return v, ok }
func (r *fakeRequest) Session() platform.Session          { return r.session }
func (r *fakeRequest) Say(composedSSML string)             { r.said = composedSSML }
func (r *fakeRequest) ShouldEndSession(end bool)           { r.endSession = end }

// capturingAdapter is a platform.Adapter test double recording every
// registration so tests can invoke compiled handlers directly.
type capturingAdapter struct {
	handlers map[string]platform.IntentHandler
	utters   map[string][]string
	slots    map[string][]string
	launch   platform.LaunchHandler
	onError  platform.ErrorHandler
}

func newCapturingAdapter() *capturingAdapter {
	return &capturingAdapter{
		handlers: map[string]platform.IntentHandler{},
		utters:   map[string][]string{},
		slots:    map[string][]string{},
	}
}

func (a *capturingAdapter) RegIntent(ctx context.Context, name string, utterances []string, slots map[string]string, handler platform.IntentHandler) error {
	a.handlers[name] = handler
	a.utters[name] = utterances
	return nil
}

func (a *capturingAdapter) RegCustomSlot(ctx context.Context, typeName string, values []string) error {
	a.slots[typeName] = values
	return nil
}

func (a *capturingAdapter) OnLaunch(ctx context.Context, handler platform.LaunchHandler) error {
	a.launch = handler
	return nil
}

func (a *capturingAdapter) OnError(ctx context.Context, handler platform.ErrorHandler) error {
	a.onError = handler
	return nil
}

// memStore is an in-memory store.Store test double.
type memStore struct {
	byKey map[string]*store.Record
}

func newMemStore() *memStore { return &memStore{byKey: map[string]*store.Record{}} }

func (s *memStore) Load(ctx context.Context, record, keyField, keyValue, where string) (*store.Record, error) {
	return s.byKey[record+":"+keyField+":"+keyValue], nil
}

func (s *memStore) Store(ctx context.Context, r *store.Record) error {
	s.byKey[r.Name+":id:"+r.Fields["id"]] = r
	return nil
}

// --- S1: single-turn intent, no goal involved -------------------------

func TestScenarioSingleTurnIntent(t *testing.T) {
	adapter := newCapturingAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)
	e := NewEngine(registry, newMemStore())

	e.RespondTo(IntentDef{
		Name:      "SayHi",
		Expecting: []string{"hi there"},
		Resolve: func(ctx context.Context, r *Response) error {
			r.Say("hello yourself", false)
			return nil
		},
	})

	if err := e.RegisterIntents(context.Background()); err != nil {
		t.Fatalf("RegisterIntents: %v", err)
	}

	handler, ok := adapter.handlers["SayHi"]
	if !ok {
		t.Fatalf("expected SayHi intent registered, got %v", adapter.handlers)
	}

	req := newFakeRequest(newMemSession(), nil)
	if err := handler(context.Background(), req); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if req.said != "hello yourself" {
		t.Fatalf("got %q", req.said)
	}
}

// --- S2: a prompt fills a slot via an answering intent ----------------

func TestScenarioPromptFillsSlot(t *testing.T) {
	adapter := newCapturingAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)
	e := NewEngine(registry, newMemStore())

	if err := e.DefineGoal(GoalDef{
		Key:    "city",
		Prompt: []string{"what city do you live in"},
		RespondTo: []IntentDef{
			{
				Name:      "GiveCity",
				Expecting: []string{"I live in [[city]]"},
				Resolve: func(ctx context.Context, r *Response) error {
					v, _ := r.Get("[[city]]")
					r.Set("{{city}}", v)
					r.ClearGoal("city")
					return nil
				},
			},
		},
	}); err != nil {
		t.Fatalf("DefineGoal: %v", err)
	}
	e.AddTopLevelGoal("city")

	if err := e.RegisterIntents(context.Background()); err != nil {
		t.Fatalf("RegisterIntents: %v", err)
	}

	session := newMemSession()
	launchReq := newFakeRequest(session, nil)
	if err := adapter.launch(context.Background(), launchReq); err != nil {
		t.Fatalf("launch: %v", err)
	}
	if launchReq.said == "" {
		t.Fatalf("expected a prompt for city")
	}

	handler, ok := adapter.handlers["GiveCity"]
	if !ok {
		t.Fatalf("expected GiveCity registered, got %v", adapter.handlers)
	}
	answerReq := newFakeRequest(session, map[string]string{"city": "Seattle"})
	if err := handler(context.Background(), answerReq); err != nil {
		t.Fatalf("handler: %v", err)
	}

	if v, _ := session.Get("city"); v != "Seattle" {
		t.Fatalf("expected city=Seattle in session, got %q", v)
	}
	stack := newResponse(context.Background(), answerReq, session, e.pstore).Stack()
	if stack.Contains("city") {
		t.Fatalf("expected city goal cleared from stack")
	}
}

// --- S3: dependency chaining via GoalFilled ---------------------------

func TestScenarioGoalFilledChainsDependency(t *testing.T) {
	adapter := newCapturingAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)
	e := NewEngine(registry, newMemStore())

	if err := e.DefineGoal(GoalDef{
		Key:    "city",
		Prompt: []string{"what city"},
	}); err != nil {
		t.Fatalf("DefineGoal city: %v", err)
	}

	bookResolver := func(ctx context.Context, env interpreters.Env) (bool, error) {
		r := env.(*Response)
		if !r.GoalFilled("city", "{{city}}") {
			return false, nil
		}
		r.Say("booking for "+mustGet(r, "city"), false)
		return true, nil
	}
	if err := e.DefineGoal(GoalDef{Key: "book", Resolve: bookResolver}); err != nil {
		t.Fatalf("DefineGoal book: %v", err)
	}

	e.AddTopLevelGoal("book")

	if err := e.RegisterIntents(context.Background()); err != nil {
		t.Fatalf("RegisterIntents: %v", err)
	}

	session := newMemSession()
	req := newFakeRequest(session, nil)
	if err := adapter.launch(context.Background(), req); err != nil {
		t.Fatalf("launch: %v", err)
	}

	if req.said == "" {
		t.Fatalf("expected the city prompt to surface through the book dependency")
	}
	stack := newResponse(context.Background(), req, session, e.pstore).Stack()
	if !stack.Contains("city") || !stack.Contains("book") {
		t.Fatalf("expected both book and city on the stack, got %v", stack.Names())
	}
}

func mustGet(r *Response, ref string) string {
	v, _ := r.Get(ref)
	return v
}

// --- S4: three prompts collapse into one composed question ------------

func TestScenarioThreePromptsCollapse(t *testing.T) {
	adapter := newCapturingAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)
	e := NewEngine(registry, newMemStore())

	for _, key := range []string{"p1", "p2", "p3"} {
		if err := e.DefineGoal(GoalDef{Key: key, Prompt: []string{key}}); err != nil {
			t.Fatalf("DefineGoal %s: %v", key, err)
		}
		e.AddTopLevelGoal(key)
	}

	if err := e.RegisterIntents(context.Background()); err != nil {
		t.Fatalf("RegisterIntents: %v", err)
	}

	session := newMemSession()
	req := newFakeRequest(session, nil)
	if err := adapter.launch(context.Background(), req); err != nil {
		t.Fatalf("launch: %v", err)
	}

	if req.said == "" {
		t.Fatalf("expected a composed question")
	}
}

// --- S5: a global intent disambiguated by goal-stack context ----------

func TestScenarioGlobalIntentByGoalContext(t *testing.T) {
	adapter := newCapturingAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)
	e := NewEngine(registry, newMemStore())

	var resolvedFor string

	mkResolve := func(which string) IntentResolver {
		return func(ctx context.Context, r *Response) error {
			resolvedFor = which
			return nil
		}
	}

	if err := e.DefineGoal(GoalDef{
		Key:    "A",
		Prompt: []string{"a?"},
		RespondTo: []IntentDef{
			{Name: "YesA", Expecting: []string{"yes"}, Resolve: mkResolve("A")},
		},
	}); err != nil {
		t.Fatalf("DefineGoal A: %v", err)
	}
	if err := e.DefineGoal(GoalDef{
		Key:    "B",
		Prompt: []string{"b?"},
		RespondTo: []IntentDef{
			{Name: "YesB", Expecting: []string{"yes"}, Resolve: mkResolve("B")},
		},
	}); err != nil {
		t.Fatalf("DefineGoal B: %v", err)
	}

	if err := e.RegisterIntents(context.Background()); err != nil {
		t.Fatalf("RegisterIntents: %v", err)
	}

	// "yes" is shared by both RespondTo defs, so it compiles to one
	// global platform intent keyed by the utterance itself.
	var globalHandler platform.IntentHandler
	for name, utters := range adapter.utters {
		if len(utters) == 1 && utters[0] == "yes" {
			globalHandler = adapter.handlers[name]
		}
	}
	if globalHandler == nil {
		t.Fatalf("expected a global \"yes\" intent, got %v", adapter.utters)
	}

	session := newMemSession()
	session.Set("convoGoalState", "")
	stack := newResponse(context.Background(), newFakeRequest(session, nil), session, e.pstore).Stack()
	stack.Append("A")
	stack.Append("B")

	req := newFakeRequest(session, nil)
	if err := globalHandler(context.Background(), req); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if resolvedFor != "B" {
		t.Fatalf("expected B (shallowest, topmost) to win, got %q", resolvedFor)
	}
}

// --- S6: launch speaks a phrase and re-pushes top-level goals ----------

func TestScenarioLaunch(t *testing.T) {
	adapter := newCapturingAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)
	e := NewEngine(registry, newMemStore())

	e.SetLaunchPhrases([]string{"welcome back"})
	if err := e.DefineGoal(GoalDef{Key: "mood", Prompt: []string{"how are you"}}); err != nil {
		t.Fatalf("DefineGoal: %v", err)
	}
	e.AddTopLevelGoal("mood")

	if err := e.RegisterIntents(context.Background()); err != nil {
		t.Fatalf("RegisterIntents: %v", err)
	}

	session := newMemSession()
	req := newFakeRequest(session, nil)
	if err := adapter.launch(context.Background(), req); err != nil {
		t.Fatalf("launch: %v", err)
	}

	if req.said == "" {
		t.Fatalf("expected a composed reply")
	}
	if req.endSession {
		t.Fatalf("expected session to stay open")
	}
}

// --- property: resolver success removes exactly one frame -------------

func TestPropertyResolverRemovesExactlyOneFrame(t *testing.T) {
	adapter := newCapturingAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)
	e := NewEngine(registry, newMemStore())

	calls := 0
	if err := e.DefineGoal(GoalDef{
		Key: "dup",
		Resolve: func(ctx context.Context, env interpreters.Env) (bool, error) {
			calls++
			return true, nil
		},
	}); err != nil {
		t.Fatalf("DefineGoal: %v", err)
	}

	if err := e.RegisterIntents(context.Background()); err != nil {
		t.Fatalf("RegisterIntents: %v", err)
	}

	session := newMemSession()
	req := newFakeRequest(session, nil)
	r := newResponse(context.Background(), req, session, e.pstore)
	r.stack.Append("dup")
	r.stack.Append("dup")

	if err := e.runGoalLoop(context.Background(), r); err != nil {
		t.Fatalf("runGoalLoop: %v", err)
	}

	if calls != 2 {
		t.Fatalf("expected the resolver invoked once per remaining frame across the loop, got %d calls", calls)
	}
	if r.stack.Contains("dup") {
		t.Fatalf("expected both dup frames eventually resolved away")
	}
}

// --- property: the goal loop terminates even when nothing resolves ----

func TestPropertyGoalLoopTerminates(t *testing.T) {
	adapter := newCapturingAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)
	e := NewEngine(registry, newMemStore())

	for _, key := range []string{"stuck1", "stuck2"} {
		if err := e.DefineGoal(GoalDef{
			Key: key,
			Resolve: func(ctx context.Context, env interpreters.Env) (bool, error) {
				return false, nil
			},
		}); err != nil {
			t.Fatalf("DefineGoal %s: %v", key, err)
		}
	}
	if err := e.DefineGoal(GoalDef{Key: "ask", Ask: []string{"p"}}); err != nil {
		t.Fatalf("DefineGoal ask: %v", err)
	}

	if err := e.RegisterIntents(context.Background()); err != nil {
		t.Fatalf("RegisterIntents: %v", err)
	}

	session := newMemSession()
	req := newFakeRequest(session, nil)
	r := newResponse(context.Background(), req, session, e.pstore)
	r.stack.Append("stuck1")
	r.stack.Append("stuck2")
	r.stack.Append("ask")

	done := make(chan error, 1)
	go func() {
		done <- e.runGoalLoop(context.Background(), r)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runGoalLoop: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("goal loop did not terminate")
	}

	if !r.out.Halted() {
		t.Fatalf("expected the ask to halt the turn")
	}
}
