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
	"regexp"
	"strings"

	"github.com/Comcast/convoengine/goalstack"
	"github.com/Comcast/convoengine/platform"
	"github.com/Comcast/convoengine/script"
)

// RegisterIntents is the lazy compile step (spec.md §4.7): it
// validates slot-type declarations, compiles every scripted resolver
// once, expands and groups utterances into local intents (owned by
// exactly one IntentDef) and global intents (shared across several,
// disambiguated at dispatch time by goal-stack context), and fans the
// resulting platform-ready intent table out to every attached adapter.
//
// Calling any registration method after RegisterIntents panics; the
// table is frozen from this point on.
func (e *Engine) RegisterIntents(ctx context.Context) error {
	e.assertMutable()

	for name, st := range e.inputTypes {
		if st.Kind == script.CustomEnum && len(st.Values) == 0 {
			return &UnresolvableCustomEnum{SlotName: name}
		}
	}
	for _, st := range e.inputTypes {
		if st.Kind == script.CustomEnum {
			if err := e.registry.RegCustomSlot(ctx, st.PlatformType, st.Values); err != nil {
				return err
			}
		}
	}

	if err := e.compileResolvers(ctx); err != nil {
		return err
	}

	type parsedDef struct {
		def    *IntentDef
		result script.Result
	}

	parsed := make([]parsedDef, len(e.allIntents))
	owners := map[string][]*IntentDef{}

	for i, def := range e.allIntents {
		res := script.Parse(def.Expecting, e.inputTypes, e.phraseSets)
		seen := map[string]bool{}
		unique := res.Utterances[:0:0]
		for _, u := range res.Utterances {
			if seen[u] {
				continue
			}
			seen[u] = true
			unique = append(unique, u)
			owners[u] = append(owners[u], def)
		}
		res.Utterances = unique
		parsed[i] = parsedDef{def: def, result: res}
	}

	usedNames := map[string]bool{}
	for _, def := range e.allIntents {
		if def.Name != "" {
			usedNames[def.Name] = true
		}
	}

	local := map[*IntentDef][]string{}
	global := map[string][]*IntentDef{}
	for u, ds := range owners {
		if len(ds) == 1 {
			local[ds[0]] = append(local[ds[0]], u)
		} else {
			global[u] = ds
		}
	}

	for _, pd := range parsed {
		def := pd.def
		utterances := local[def]
		if len(utterances) == 0 {
			// Every utterance this def contributed turned out to be
			// shared with another def; it is registered entirely as
			// part of one or more global intents below.
			continue
		}
		if def.Name == "" {
			def.Name = autoName(utterances[0], usedNames)
			usedNames[def.Name] = true
		}
		e.intentsByName[def.Name] = []*IntentDef{def}
		if err := e.registry.RegIntent(ctx, def.Name, utterances, pd.result.Slots, e.localHandler(def)); err != nil {
			return err
		}
	}

	for u, ds := range global {
		name := autoName(u, usedNames)
		usedNames[name] = true
		e.intentsByName[name] = ds
		slots := script.Parse([]string{u}, e.inputTypes, nil).Slots
		if err := e.registry.RegIntent(ctx, name, []string{u}, slots, e.globalHandler(ds)); err != nil {
			return err
		}
	}

	if err := e.registry.OnLaunch(ctx, func(ctx context.Context, req platform.Request) error {
		return e.Launch(ctx, req)
	}); err != nil {
		return err
	}
	if err := e.registry.OnError(ctx, func(ctx context.Context, req platform.Request, cause error) {
		Logf("convo: dispatch error: %v", cause)
	}); err != nil {
		return err
	}

	e.compiled = true
	return nil
}

func (e *Engine) compileResolvers(ctx context.Context) error {
	for _, def := range e.allIntents {
		if def.Resolve == nil && def.ResolveSource != nil {
			resolver, err := def.ResolveSource.Compile(ctx, e.interpreters)
			if err != nil {
				return err
			}
			def.compiledResolve = resolver
		}
	}
	for _, key := range e.goalOrd {
		g := e.goals[key]
		if g.Resolve == nil && g.ResolveSource != nil {
			resolver, err := g.ResolveSource.Compile(ctx, e.interpreters)
			if err != nil {
				return err
			}
			g.compiledResolve = resolver
		}
	}
	return nil
}

var nameWord = regexp.MustCompile(`[A-Za-z]+`)

// autoName derives a digit-free, collision-checked platform intent
// name from an utterance's words, titlecased and concatenated (e.g.
// "book a flight" -> "BookAFlight"), appending letter suffixes on
// collision so names stay purely alphabetic for adapters that forbid
// digits in intent identifiers.
func autoName(utterance string, used map[string]bool) string {
	words := nameWord.FindAllString(utterance, -1)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		if len(w) > 1 {
			b.WriteString(strings.ToLower(w[1:]))
		}
	}
	base := b.String()
	if base == "" {
		base = "Intent"
	}
	name := base
	suffix := []byte("A")
	for used[name] {
		name = base + string(suffix)
		suffix = nextSuffix(suffix)
	}
	return name
}

// nextSuffix increments a letters-only suffix (A, B, ..., Z, AA, AB, ...).
func nextSuffix(s []byte) []byte {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] < 'Z' {
			s[i]++
			return s
		}
		s[i] = 'A'
	}
	return append([]byte{'A'}, s...)
}

func (e *Engine) localHandler(def *IntentDef) platform.IntentHandler {
	return func(ctx context.Context, req platform.Request) error {
		return e.processIntent(ctx, req, def)
	}
}

func (e *Engine) globalHandler(owners []*IntentDef) platform.IntentHandler {
	return func(ctx context.Context, req platform.Request) error {
		def := e.selectByGoalStack(req.Session(), owners)
		if def == nil {
			Logf("convo: no goal-stack match among %d global intent owners, using first-registered", len(owners))
			def = owners[0]
		}
		return e.processIntent(ctx, req, def)
	}
}

// selectByGoalStack disambiguates a global intent among its candidate
// owners by walking the goal stack top-down (shallowest frame first)
// and returning the first owner scoped to a goal found on the stack.
// An owner with no Goal set is an unscoped fallback, preferred over
// the caller's first-registered-wins default but below any
// goal-stack match. Returns nil if nothing matches at all.
func (e *Engine) selectByGoalStack(session platform.Session, owners []*IntentDef) *IntentDef {
	names := goalstack.New(session).Names()
	for i := len(names) - 1; i >= 0; i-- {
		for _, def := range owners {
			if def.Goal == names[i] {
				return def
			}
		}
	}
	for _, def := range owners {
		if def.Goal == "" {
			return def
		}
	}
	return nil
}

// processIntent builds a turn's Response, runs the matched intent's
// resolver, drives the goal-resolution loop to a stopping point, and
// writes the composed reply back to the platform request.
func (e *Engine) processIntent(ctx context.Context, req platform.Request, def *IntentDef) error {
	if !e.compiled {
		return &NotCompiled{}
	}

	session := req.Session()
	r := newResponse(ctx, req, session, e.pstore)
	r.out.SpokenRate = e.spokenRate

	for name, val := range req.Slots() {
		session.Set(slotSessionKey(name), val)
	}

	var err error
	switch {
	case def.Resolve != nil:
		err = def.Resolve(ctx, r)
	case def.compiledResolve != nil:
		_, err = def.compiledResolve(ctx, r)
	}
	if err != nil {
		return err
	}

	if err := e.runGoalLoop(ctx, r); err != nil {
		return err
	}

	req.Say(r.out.Compose())
	req.ShouldEndSession(!r.out.KeepSessionOpen())
	return nil
}

// Launch handles a session start with no matched intent: it speaks
// one launch phrase (chosen uniformly at random), pushes any
// top-level goals not already on the stack, and runs the goal loop.
func (e *Engine) Launch(ctx context.Context, req platform.Request) error {
	if !e.compiled {
		return &NotCompiled{}
	}

	session := req.Session()
	r := newResponse(ctx, req, session, e.pstore)
	r.out.SpokenRate = e.spokenRate

	if len(e.launchPhrases) > 0 {
		r.Say(e.launchPhrases, false)
	}
	for _, key := range e.topLevelGoals {
		if !r.stack.Contains(key) {
			r.AddGoal(key)
		}
	}

	if err := e.runGoalLoop(ctx, r); err != nil {
		return err
	}

	req.Say(r.out.Compose())
	req.ShouldEndSession(!r.out.KeepSessionOpen())
	return nil
}

// runGoalLoop is the fixpoint loop from spec.md §4.6: it walks goal
// frames from the top of the stack down, resolving resolver goals
// (removing their frame on success) and emitting the first prompt/ask
// for an unqueried query goal. Any mutation of the stack
// (AddGoal/ClearGoal/a successful resolve/a first query) resets the
// cursor to the top so a newly relevant frame is considered next; the
// loop halts as soon as a full question has been asked this turn.
func (e *Engine) runGoalLoop(ctx context.Context, r *Response) error {
	cursor := 0
	for {
		frame := r.stack.Top(cursor)
		if frame == nil {
			return nil
		}

		goal, ok := e.goals[frame.Key]
		if !ok {
			Logf("convo: %v", &UnknownGoalFrame{Key: frame.Key})
			return nil
		}

		r.goalStateChanged = false

		switch {
		case goal.IsResolver():
			resolved, err := e.execGoalResolver(ctx, goal, r)
			if err != nil {
				return err
			}
			if resolved {
				r.stack.Remove(goal.Key)
				r.goalStateChanged = true
			}
		case !frame.Queried:
			if len(goal.Ask) > 0 {
				r.Ask(goal.Ask)
			} else {
				r.Prompt(goal.Prompt)
			}
			r.stack.UpdateAt(cursor, goalstack.Frame{Key: frame.Key, Queried: true})
			r.goalStateChanged = true
		}

		if r.out.Halted() {
			return nil
		}

		if r.goalStateChanged {
			cursor = 0
		} else {
			cursor++
		}
	}
}

func (e *Engine) execGoalResolver(ctx context.Context, g *GoalDef, r *Response) (bool, error) {
	if g.Resolve != nil {
		return g.Resolve(ctx, r)
	}
	if g.compiledResolve != nil {
		return g.compiledResolve(ctx, r)
	}
	return false, nil
}
