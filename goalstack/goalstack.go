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

// Package goalstack implements the LIFO of goal frames that rides
// along in one session slot, ShortJSON-encoded, across turns.
package goalstack

import "github.com/Comcast/convoengine/shortjson"

// SessionKey is the reserved session key under which the encoded
// stack lives.
const SessionKey = "convoGoalState"

// Frame is a runtime instance of a goal on the stack.
type Frame struct {
	Key     string
	Queried bool
}

func frameToObj(f Frame) shortjson.Obj {
	var flags []string
	if f.Queried {
		flags = []string{"queried"}
	}
	return shortjson.Obj{Key: f.Key, Flags: flags}
}

func objToFrame(o shortjson.Obj) Frame {
	return Frame{Key: o.Key, Queried: o.HasFlag("queried")}
}

// Session is the minimal interface GoalStack needs from the
// platform-supplied per-turn key/value store.
type Session interface {
	Get(key string) (string, bool)
	Set(key string, value string)
}

// Stack manages the ShortJSON-encoded frame list living in a Session.
type Stack struct {
	session Session
}

// New returns a Stack backed by the given session.
func New(session Session) *Stack {
	return &Stack{session: session}
}

func (s *Stack) raw() string {
	v, _ := s.session.Get(SessionKey)
	return v
}

// Frames returns the current frame list, top (most recent) last.
func (s *Stack) Frames() []Frame {
	objs := shortjson.SjnToArr(s.raw())
	acc := make([]Frame, len(objs))
	for i, o := range objs {
		acc[i] = objToFrame(o)
	}
	return acc
}

// Names returns just the keys of Frames(), in the same order.
func (s *Stack) Names() []string {
	fs := s.Frames()
	acc := make([]string, len(fs))
	for i, f := range fs {
		acc[i] = f.Key
	}
	return acc
}

// Set overwrites the whole frame list and persists it.
func (s *Stack) Set(frames []Frame) {
	objs := make([]shortjson.Obj, len(frames))
	for i, f := range frames {
		objs[i] = frameToObj(f)
	}
	s.session.Set(SessionKey, shortjson.ArrToSJN(objs))
}

// Append pushes a new, unqueried frame for key onto the top of the
// stack.
func (s *Stack) Append(key string) {
	frames := s.Frames()
	frames = append(frames, Frame{Key: key})
	s.Set(frames)
}

// Remove removes the first matching frame in encoded order, i.e. the
// deepest (innermost) occurrence of key, furthest from the top.
func (s *Stack) Remove(key string) {
	s.session.Set(SessionKey, shortjson.Remove(s.raw(), key))
}

// Contains reports whether any frame has the given key.
func (s *Stack) Contains(key string) bool {
	return shortjson.Contains(s.raw(), key)
}

// Top returns the frame at the given depth from the top (depth 0 is
// the most recently added frame), or nil if the stack is shallower
// than depth.
func (s *Stack) Top(depth int) *Frame {
	frames := s.Frames()
	idx := len(frames) - 1 - depth
	if idx < 0 || idx >= len(frames) {
		return nil
	}
	f := frames[idx]
	return &f
}

// UpdateAt overwrites the frame at the given depth from the top.
func (s *Stack) UpdateAt(depth int, frame Frame) {
	frames := s.Frames()
	idx := len(frames) - 1 - depth
	if idx < 0 || idx >= len(frames) {
		return
	}
	frames[idx] = frame
	s.Set(frames)
}
