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

// Package shortjson implements the compact "ShortJSON" encoding used
// to keep a goal stack inside a single stringly-typed session slot.
//
// A frame list is rendered as a single string, frames separated by
// ';' and a frame's key separated from its boolean flags by ':'.
// Only true flags are emitted.  "airline:queried" means frame key
// "airline" with flag "queried" set true; every other flag is false.
package shortjson

import (
	"regexp"
	"strings"
)

// Obj is one decoded frame: a key plus the set of flags that are true.
type Obj struct {
	Key   string
	Flags []string
}

// HasFlag reports whether the given flag is set on this frame.
func (o Obj) HasFlag(flag string) bool {
	for _, f := range o.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

var keyPattern = regexp.MustCompile(`^[A-Za-z]+$`)
var flagPattern = regexp.MustCompile(`^[a-z]+$`)

// ArrToSJN encodes a frame list as a ShortJSON string.
func ArrToSJN(objs []Obj) string {
	parts := make([]string, 0, len(objs))
	for _, o := range objs {
		seg := o.Key
		for _, f := range o.Flags {
			seg += ":" + f
		}
		parts = append(parts, seg)
	}
	return strings.Join(parts, ";")
}

// SjnToArr decodes a ShortJSON string back into a frame list.
//
// Empty input decodes to an empty (non-nil) list.
func SjnToArr(s string) []Obj {
	if s == "" {
		return []Obj{}
	}
	runs := strings.Split(s, ";")
	acc := make([]Obj, 0, len(runs))
	for _, run := range runs {
		if run == "" {
			continue
		}
		parts := strings.Split(run, ":")
		o := Obj{Key: parts[0]}
		if len(parts) > 1 {
			o.Flags = append([]string{}, parts[1:]...)
		}
		acc = append(acc, o)
	}
	return acc
}

// ArrObjToArr converts a list of flag maps (key -> bool) into the Obj
// representation, preserving only the true flags, in the order given
// by flagOrder for each object's flags.
func ArrObjToArr(objs []map[string]interface{}, keyField string, flagOrder []string) []Obj {
	acc := make([]Obj, 0, len(objs))
	for _, m := range objs {
		o := Obj{}
		if k, ok := m[keyField].(string); ok {
			o.Key = k
		}
		for _, f := range flagOrder {
			if v, ok := m[f]; ok {
				if b, ok := v.(bool); ok && b {
					o.Flags = append(o.Flags, f)
				}
			}
		}
		acc = append(acc, o)
	}
	return acc
}

// ArrToArrObj converts the Obj representation back into generic flag
// maps under keyField, with each flag in flagOrder set true or false.
func ArrToArrObj(objs []Obj, keyField string, flagOrder []string) []map[string]interface{} {
	acc := make([]map[string]interface{}, 0, len(objs))
	for _, o := range objs {
		m := map[string]interface{}{keyField: o.Key}
		for _, f := range flagOrder {
			m[f] = o.HasFlag(f)
		}
		acc = append(acc, m)
	}
	return acc
}

// Push appends a new frame with the given key and flags to the encoded
// string, returning the updated encoding.
func Push(s string, key string, flags ...string) string {
	objs := SjnToArr(s)
	objs = append(objs, Obj{Key: key, Flags: flags})
	return ArrToSJN(objs)
}

// keyBoundary builds a \bkey\b-style regexp for one key, matching the
// key together with any trailing ":flag" runs up to the next ';' or
// end of string.
func keyBoundary(key string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\b(:[a-z]+)*`)
}

// Contains reports whether key appears anywhere in the encoded stack.
func Contains(s string, key string) bool {
	return keyBoundary(key).MatchString(s)
}

// Remove removes the first "key(:flag)*" run matching key, collapsing
// adjacent separators left behind by the removal.
func Remove(s string, key string) string {
	objs := SjnToArr(s)
	for i, o := range objs {
		if o.Key == key {
			objs = append(objs[:i], objs[i+1:]...)
			return ArrToSJN(objs)
		}
	}
	return s
}

// ValidKey reports whether k is a legal ShortJSON key (ASCII letters only).
func ValidKey(k string) bool {
	return keyPattern.MatchString(k)
}

// ValidFlag reports whether f is a legal ShortJSON flag name.
func ValidFlag(f string) bool {
	return flagPattern.MatchString(f)
}
