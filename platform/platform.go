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

// Package platform defines the abstract boundary between the
// conversation engine core and concrete voice-platform adapters
// (spec.md §6), plus PlatformRegistry, which fans registration calls
// out to one or more such adapters.
//
// Concrete adapters (how a webhook body is parsed, how audio comes
// back) are deliberately out of core scope; this package only
// describes the shape an adapter must have.
package platform

import "context"

// Session is the platform-supplied per-turn key/value scope that
// survives between turns within a conversation.
type Session interface {
	Get(key string) (string, bool)
	Set(key string, value string)
	Attributes() map[string]string
}

// Request exposes one inbound turn to the engine: the matched
// intent's slot values, the session, and the means to reply.
type Request interface {
	UserID() string
	Slots() map[string]string
	Slot(name string) (string, bool)
	Session() Session
	Say(composedSSML string)
	ShouldEndSession(end bool)
}

// IntentHandler is invoked by an Adapter when it has matched an
// inbound utterance to a registered intent name.
type IntentHandler func(ctx context.Context, req Request) error

// LaunchHandler is invoked when a session starts with no matched
// intent (the user invoked the voice app without a specific request).
type LaunchHandler func(ctx context.Context, req Request) error

// ErrorHandler is invoked when an IntentHandler or LaunchHandler
// returns an error the adapter can't otherwise recover from.
type ErrorHandler func(ctx context.Context, req Request, cause error)

// Adapter is the contract a concrete voice-platform integration must
// satisfy (spec.md §6): register platform-ready intents and custom
// slot types, and receive launch/error callbacks.
type Adapter interface {
	RegIntent(ctx context.Context, name string, utterances []string, slots map[string]string, handler IntentHandler) error
	RegCustomSlot(ctx context.Context, typeName string, values []string) error
	OnLaunch(ctx context.Context, handler LaunchHandler) error
	OnError(ctx context.Context, handler ErrorHandler) error
}

// Registry fans registration calls out to every attached Adapter, so
// one compiled intent table can serve several platforms (e.g. two
// different smart-speaker assistants) at once.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add attaches an Adapter; registrations made after Add are fanned
// out to it too (registrations made before Add are not retroactively
// replayed — attach adapters before calling RegisterIntents).
func (r *Registry) Add(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Adapters returns the attached adapters, in attachment order.
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// RegIntent fans an intent registration out to every attached adapter.
func (r *Registry) RegIntent(ctx context.Context, name string, utterances []string, slots map[string]string, handler IntentHandler) error {
	for _, a := range r.adapters {
		if err := a.RegIntent(ctx, name, utterances, slots, handler); err != nil {
			return err
		}
	}
	return nil
}

// RegCustomSlot fans a custom-enum slot-type registration out to
// every attached adapter.
func (r *Registry) RegCustomSlot(ctx context.Context, typeName string, values []string) error {
	for _, a := range r.adapters {
		if err := a.RegCustomSlot(ctx, typeName, values); err != nil {
			return err
		}
	}
	return nil
}

// OnLaunch fans a launch-handler registration out to every attached
// adapter.
func (r *Registry) OnLaunch(ctx context.Context, handler LaunchHandler) error {
	for _, a := range r.adapters {
		if err := a.OnLaunch(ctx, handler); err != nil {
			return err
		}
	}
	return nil
}

// OnError fans an error-handler registration out to every attached
// adapter.
func (r *Registry) OnError(ctx context.Context, handler ErrorHandler) error {
	for _, a := range r.adapters {
		if err := a.OnError(ctx, handler); err != nil {
			return err
		}
	}
	return nil
}
