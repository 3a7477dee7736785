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

// Package output accumulates say/prompt/ask fragments over one turn
// and composes them into a single spoken reply.
package output

import (
	"math/rand"
	"strings"
	"time"
)

// Pause is the SSML pause inserted between sequential say fragments
// and before the first ask/prompt fragment.
const Pause = `<break time="500ms"/>`

// PromptWeight is how much a single prompt contributes to the
// "asked" counter; three prompts equal one full question.
const PromptWeight = 0.34

// AskWeight is how much a single ask contributes to the "asked"
// counter.
const AskWeight = 1.0

// Lookup resolves "{{var}}" interpolation references against a
// session or persistent-record store.
type Lookup func(ref string) (string, bool)

// Manager accumulates fragments for one turn.
type Manager struct {
	sayBuffer []string
	askBuffer []string

	// Asked accumulates +1 per Ask, +PromptWeight per Prompt.  Once
	// it reaches 1 the goal loop halts for this turn.
	Asked float64

	// SpokenRate, if non-empty, wraps the whole composition in a
	// <prosody rate="..."> tag.
	SpokenRate string

	// EndSession, when true, tells the platform not to keep the
	// session open after this turn.
	EndSession bool

	// Rand supplies uniform selection among alternative fragments.
	// Tests should inject a deterministic source.
	Rand *rand.Rand

	lookup Lookup
}

// New creates an empty Manager. lookup resolves "{{var}}" references;
// it may be nil, in which case interpolation is left untouched.
func New(lookup Lookup) *Manager {
	return &Manager{lookup: lookup, Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// pickAndInterpolate chooses uniformly among alternatives (if more
// than one) and substitutes every "{{var}}" using the Manager's
// lookup.
func (m *Manager) pickAndInterpolate(alts []string) string {
	if len(alts) == 0 {
		return ""
	}
	choice := alts[0]
	if len(alts) > 1 {
		choice = alts[m.Rand.Intn(len(alts))]
	}
	return m.interpolate(choice)
}

func (m *Manager) interpolate(s string) string {
	if m.lookup == nil || !strings.Contains(s, "{{") {
		return s
	}
	var out strings.Builder
	rest := s
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			out.WriteString(rest)
			break
		}
		end += start
		out.WriteString(rest[:start])
		ref := rest[start+2 : end]
		if v, ok := m.lookup(ref); ok {
			out.WriteString(v)
		} else {
			out.WriteString(rest[start : end+2])
		}
		rest = rest[end+2:]
	}
	return out.String()
}

func asList(v interface{}) []string {
	switch vv := v.(type) {
	case string:
		return []string{vv}
	case []string:
		return vv
	default:
		return nil
	}
}

// Say adds a statement fragment. Sequential Say calls are joined with
// a pause unless quick is true.
func (m *Manager) Say(v interface{}, quick bool) {
	frag := m.pickAndInterpolate(asList(v))
	if frag == "" {
		return
	}
	if len(m.sayBuffer) > 0 && !quick {
		m.sayBuffer = append(m.sayBuffer, Pause)
	}
	m.sayBuffer = append(m.sayBuffer, frag)
}

// Prompt adds a question fragment that counts PromptWeight toward
// Asked.
func (m *Manager) Prompt(v interface{}) {
	frag := m.pickAndInterpolate(asList(v))
	if frag == "" {
		return
	}
	m.askBuffer = append(m.askBuffer, frag)
	m.Asked += PromptWeight
}

// Ask adds a question fragment that counts AskWeight toward Asked.
func (m *Manager) Ask(v interface{}) {
	frag := m.pickAndInterpolate(asList(v))
	if frag == "" {
		return
	}
	m.askBuffer = append(m.askBuffer, frag)
	m.Asked += AskWeight
}

// Halted reports whether the goal loop should stop because a
// question has been asked this turn.
func (m *Manager) Halted() bool {
	return m.Asked >= 1
}

// composeAsk joins the ask buffer: a leading pause, fragments joined
// with ", " except the last, which is joined with " or ".
func composeAsk(frags []string) string {
	if len(frags) == 0 {
		return ""
	}
	if len(frags) == 1 {
		return Pause + " " + frags[0]
	}
	body := strings.Join(frags[:len(frags)-1], ", ") + " or " + frags[len(frags)-1]
	return Pause + " " + body
}

// Compose concatenates the say buffer and the composed ask buffer,
// wraps the result in a <prosody> tag if SpokenRate is set, and
// normalizes " & " to " and ".
//
// An empty composition is valid: it means no speech is emitted, but
// the turn still closes cleanly.
func (m *Manager) Compose() string {
	var parts []string
	if len(m.sayBuffer) > 0 {
		parts = append(parts, strings.Join(m.sayBuffer, " "))
	}
	if ask := composeAsk(m.askBuffer); ask != "" {
		parts = append(parts, ask)
	}
	out := strings.Join(parts, " ")
	out = strings.ReplaceAll(out, " & ", " and ")
	if out != "" && m.SpokenRate != "" {
		out = `<prosody rate="` + m.SpokenRate + `">` + out + `</prosody>`
	}
	return out
}

// KeepSessionOpen reports whether the session should stay open after
// this turn: true unless the author explicitly requested close.
func (m *Manager) KeepSessionOpen() bool {
	return !m.EndSession
}
