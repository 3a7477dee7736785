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

	"github.com/Comcast/convoengine/interpreters"
	"github.com/Comcast/convoengine/platform"
	"github.com/Comcast/convoengine/script"
	"github.com/Comcast/convoengine/store"
	"github.com/Comcast/convoengine/util"
)

// Logging is a clumsy switch affecting what Logf does: set true to
// see DispatchWarnings and registration diagnostics on stderr.
var Logging = false

// Logf calls util.Logf if Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	util.Logging = true
	util.Logf(format, args...)
}

// Engine is the ConversationEngine (spec.md §4.7): the registration
// surface authors call (DefineGoal, RespondTo, AddInputTypes,
// AddPhraseEquivalents), and, after RegisterIntents, the compiled
// intent table InputManager dispatches against.
type Engine struct {
	registry *platform.Registry
	pstore   store.Store

	inputTypes map[string]script.SlotType
	phraseSets []script.PhraseEquivalentSet

	goals    map[string]*GoalDef
	goalOrd  []string
	allIntents []*IntentDef

	launchPhrases []string
	closeRequests []string
	spokenRate    string
	topLevelGoals []string

	interpreters map[string]interpreters.Interpreter

	// intentsByName is built at RegisterIntents: each registered
	// platform intent name maps to the candidate IntentDefs sharing
	// it (len 1 for a local intent, >1 for a global one).
	intentsByName map[string][]*IntentDef

	compiled bool
}

// NewEngine creates an Engine that registers compiled intents with
// registry and resolves persistent records against pstore.
func NewEngine(registry *platform.Registry, pstore store.Store) *Engine {
	return &Engine{
		registry:      registry,
		pstore:        pstore,
		inputTypes:    map[string]script.SlotType{},
		goals:         map[string]*GoalDef{},
		intentsByName: map[string][]*IntentDef{},
		interpreters:  interpreters.DefaultInterpreters,
	}
}

func (e *Engine) assertMutable() {
	if e.compiled {
		panic("convo.Engine: registration call after RegisterIntents")
	}
}

// AddInputTypes accumulates slot types; idempotent per key (last
// write wins).
func (e *Engine) AddInputTypes(types map[string]script.SlotType) {
	e.assertMutable()
	for name, st := range types {
		st.Name = name
		e.inputTypes[name] = st
	}
}

// AddPhraseEquivalents appends lowercased equivalence sets.
func (e *Engine) AddPhraseEquivalents(sets ...script.PhraseEquivalentSet) {
	e.assertMutable()
	for _, set := range sets {
		lowered := make(script.PhraseEquivalentSet, len(set))
		for i, s := range set {
			lowered[i] = strings.ToLower(s)
		}
		e.phraseSets = append(e.phraseSets, lowered)
	}
}

// RespondTo indexes def under every utterance in def.Expecting. An
// utterance shared across multiple defs becomes a global intent at
// compile time.
func (e *Engine) RespondTo(def IntentDef) *IntentDef {
	e.assertMutable()
	d := def
	e.allIntents = append(e.allIntents, &d)
	return &d
}

// DefineGoal registers a goal. Nested RespondTo entries are desugared
// into top-level IntentDefs with Goal set to the enclosing key.
func (e *Engine) DefineGoal(def GoalDef) error {
	e.assertMutable()

	if def.IsResolver() == def.IsQuery() {
		return &AmbiguousGoalShape{Key: def.Key}
	}
	if _, dup := e.goals[def.Key]; dup {
		return &DuplicateGoalKey{Key: def.Key}
	}

	g := def
	for _, child := range def.RespondTo {
		c := child
		c.Goal = def.Key
		e.allIntents = append(e.allIntents, &c)
	}
	g.RespondTo = nil

	e.goals[def.Key] = &g
	e.goalOrd = append(e.goalOrd, def.Key)
	return nil
}

// AddTopLevelGoal appends a goal key the engine may re-push on
// launch.
func (e *Engine) AddTopLevelGoal(key string) {
	e.assertMutable()
	e.topLevelGoals = append(e.topLevelGoals, key)
}

// SetLaunchPhrases sets the phrases Launch picks from uniformly at
// random.
func (e *Engine) SetLaunchPhrases(phrases []string) {
	e.assertMutable()
	e.launchPhrases = phrases
}

// SetCloseRequests sets the utterances that request the session
// close; host adapters can consult this list, the core engine does
// not interpret it further.
func (e *Engine) SetCloseRequests(requests []string) {
	e.assertMutable()
	e.closeRequests = requests
}

// SetSpokenRate sets the SSML prosody rate wrapped around every
// composed reply.
func (e *Engine) SetSpokenRate(rate string) {
	e.assertMutable()
	e.spokenRate = rate
}

// SetPersistentStore overrides the persistent-record backend.
func (e *Engine) SetPersistentStore(s store.Store) {
	e.assertMutable()
	e.pstore = s
}

// CloseRequests returns the configured close-request utterances.
func (e *Engine) CloseRequests() []string {
	return e.closeRequests
}

// LoadScript registers every goal/intent declared in an
// author-written YAML script (see package script), wiring named
// native resolvers through nativeResolvers.
func (e *Engine) LoadScript(s *script.AuthorScript, nativeResolvers map[string]GoalResolver) error {
	e.assertMutable()

	types := map[string]script.SlotType{}
	for name, doc := range s.InputTypes {
		types[name] = doc.SlotType(name)
	}
	e.AddInputTypes(types)

	sets := make([]script.PhraseEquivalentSet, len(s.PhraseEquivalents))
	for i, set := range s.PhraseEquivalents {
		sets[i] = script.PhraseEquivalentSet(set)
	}
	e.AddPhraseEquivalents(sets...)

	if len(s.LaunchPhrases) > 0 {
		e.SetLaunchPhrases(s.LaunchPhrases)
	}
	if len(s.CloseRequests) > 0 {
		e.SetCloseRequests(s.CloseRequests)
	}
	if s.SpokenRate != "" {
		e.SetSpokenRate(s.SpokenRate)
	}
	for _, k := range s.TopLevelGoals {
		e.AddTopLevelGoal(k)
	}

	for _, gd := range s.Goals {
		def := GoalDef{Key: gd.Key, Prompt: gd.Prompt, Ask: gd.Ask, Doc: gd.Doc}
		if fn, have := nativeResolvers[gd.Key]; have {
			def.Resolve = fn
		}
		for _, rd := range gd.RespondTo {
			def.RespondTo = append(def.RespondTo, intentDocToDef(rd, nativeResolvers))
		}
		if err := e.DefineGoal(def); err != nil {
			return err
		}
	}
	for _, id := range s.Intents {
		e.RespondTo(intentDocToDef(id, nativeResolvers))
	}
	return nil
}

func intentDocToDef(id script.IntentDoc, nativeResolvers map[string]GoalResolver) IntentDef {
	def := IntentDef{Name: id.Name, Goal: id.Goal, Expecting: id.Expecting, Doc: id.Doc}
	if fn, have := nativeResolvers[id.Name]; have {
		goalFn := fn
		def.Resolve = func(ctx context.Context, r *Response) error {
			_, err := goalFn(ctx, r)
			return err
		}
	}
	return def
}
