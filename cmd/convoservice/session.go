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

package main

import (
	"sync"

	"github.com/Comcast/convoengine/platform"
)

// sessionStore keeps one httpSession alive per conversation id for
// the lifetime of the process. A real deployment would persist this
// in the same backend as PersistentRecords; for the dev/demo service
// an in-memory map is enough.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*httpSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[string]*httpSession{}}
}

func (s *sessionStore) get(id string) *httpSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, have := s.sessions[id]
	if !have {
		sess = &httpSession{vals: map[string]string{}}
		s.sessions[id] = sess
	}
	return sess
}

// httpSession is the simplest possible platform.Session: an
// in-memory map guarded by a mutex, keyed by the webhook's session id.
type httpSession struct {
	mu   sync.Mutex
	vals map[string]string
}

func (s *httpSession) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vals[key]
	return v, ok
}

func (s *httpSession) Set(key string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = value
}

func (s *httpSession) Attributes() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]string, len(s.vals))
	for k, v := range s.vals {
		cp[k] = v
	}
	return cp
}

// httpRequest adapts one inbound /dispatch webhook call to
// platform.Request.
type httpRequest struct {
	userID  string
	slots   map[string]string
	session platform.Session

	said string
	end  bool
}

func (r *httpRequest) UserID() string                 { return r.userID }
func (r *httpRequest) Slots() map[string]string        { return r.slots }
func (r *httpRequest) Slot(name string) (string, bool) { v, ok := r.slots[name]; return v, ok }
func (r *httpRequest) Session() platform.Session       { return r.session }
func (r *httpRequest) Say(composedSSML string)         { r.said = composedSSML }
func (r *httpRequest) ShouldEndSession(end bool)       { r.end = end }
