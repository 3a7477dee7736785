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

// Package script transforms author-written utterance templates into
// platform-ready training utterances and extracts their slot
// declarations.
//
// The transforms are stateless and applied left to right; the
// output sequence is a pure function of the input, matching the
// determinism requirement of the engine (randomness lives only in
// package output).
package script

import (
	"regexp"
	"strings"
)

// SlotKind distinguishes the three flavors of SlotType.
type SlotKind int

const (
	BuiltIn SlotKind = iota
	CustomEnum
	FreeText
)

// SlotType is a named type for parameters extracted from user speech.
type SlotType struct {
	Name string
	Kind SlotKind

	// PlatformType is the platform's type code, used for BuiltIn
	// slots and to name the registered type for CustomEnum slots.
	PlatformType string

	// Values is the finite value set for a CustomEnum slot.
	Values []string

	// Samples is the set of sample values used to train a FreeText
	// slot.
	Samples []string
}

// PhraseEquivalentSet is a set of strings that are mutually
// interchangeable inside utterance templates. Matching is
// case-insensitive.
type PhraseEquivalentSet []string

// Result is the outcome of parsing one utterance list.
type Result struct {
	// Utterances is the expanded, platform-ready utterance list.
	Utterances []string

	// Slots maps slot name to resolved platform-type code.
	Slots map[string]string

	// Warnings records unknown-slot-name and similar recoverable
	// problems encountered along the way.
	Warnings []string
}

var punctuation = regexp.MustCompile(`[,?]`)
var digitRun = regexp.MustCompile(`\d+`)
var slotRef = regexp.MustCompile(`\[\[([A-Za-z0-9_]+)\]\]`)
var slotExtract = regexp.MustCompile(`\|([A-Za-z0-9_]+)\}`)

// stripPunctuation removes ',' and '?' from an utterance.
func stripPunctuation(s string) string {
	return punctuation.ReplaceAllString(s, "")
}

// spellNumbers replaces bare digit runs with their spoken-English
// equivalent.
func spellNumbers(s string) string {
	return digitRun.ReplaceAllStringFunc(s, spellDigitRun)
}

// rewriteSlots replaces "[[name]]" with "{sampleVals|name}" using the
// given slot type table. Unknown slot names produce a warning and
// default to free-text ("-").
func rewriteSlots(s string, types map[string]SlotType, warn *[]string) string {
	return slotRef.ReplaceAllStringFunc(s, func(m string) string {
		name := slotRef.FindStringSubmatch(m)[1]
		st, ok := types[name]
		if !ok {
			*warn = append(*warn, "unknown slot name, defaulting to free-text: "+name)
			return "{-|" + name + "}"
		}
		switch st.Kind {
		case FreeText:
			if len(st.Samples) == 0 {
				return "{-|" + name + "}"
			}
			return "{" + strings.Join(st.Samples, "|") + "|" + name + "}"
		default:
			return "{-|" + name + "}"
		}
	})
}

// expandPhrases expands every equivalent set against each original
// (un-expanded) utterance: one pass, since every set's substitutions
// are derived from the base utterance, not from another set's
// generated variants. This is what makes expansion order-independent
// (property 6): each set contributes its variants of u independently
// of the others.
func expandPhrases(utterances []string, sets []PhraseEquivalentSet) []string {
	var acc []string
	for _, u := range utterances {
		acc = append(acc, u)
		lower := strings.ToLower(u)
		for _, set := range sets {
			for _, phrase := range set {
				idx := strings.Index(lower, strings.ToLower(phrase))
				if idx < 0 {
					continue
				}
				for _, alt := range set {
					if alt == phrase {
						continue
					}
					replaced := u[:idx] + alt + u[idx+len(phrase):]
					acc = append(acc, replaced)
				}
			}
		}
	}
	return acc
}

// extractSlots scans utterances for "|name}" segments and resolves
// each name to its platform-type code.
func extractSlots(utterances []string, types map[string]SlotType, warn *[]string) map[string]string {
	slots := map[string]string{}
	for _, u := range utterances {
		for _, m := range slotExtract.FindAllStringSubmatch(u, -1) {
			name := m[1]
			if _, have := slots[name]; have {
				continue
			}
			st, ok := types[name]
			if !ok {
				slots[name] = "FREE_TEXT"
				continue
			}
			switch st.Kind {
			case BuiltIn:
				slots[name] = st.PlatformType
			case CustomEnum:
				slots[name] = st.PlatformType
			default:
				slots[name] = "FREE_TEXT"
			}
		}
	}
	return slots
}

// Parse runs the full left-to-right transform pipeline over
// utterances: punctuation strip, number spelling, slot rewrite,
// phrase-equivalent expansion, then slot extraction.
func Parse(utterances []string, types map[string]SlotType, equivSets []PhraseEquivalentSet) Result {
	var warnings []string

	stage := make([]string, len(utterances))
	for i, u := range utterances {
		u = stripPunctuation(u)
		u = spellNumbers(u)
		u = rewriteSlots(u, types, &warnings)
		stage[i] = u
	}

	expanded := expandPhrases(stage, equivSets)
	slots := extractSlots(expanded, types, &warnings)

	return Result{
		Utterances: expanded,
		Slots:      slots,
		Warnings:   warnings,
	}
}
