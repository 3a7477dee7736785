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
	"context"
	"sync"

	"github.com/Comcast/convoengine/platform"
)

// webhookAdapter is a minimal platform.Adapter: it keeps the
// registered handlers in memory and dispatches to them by name when
// /dispatch receives a JSON body naming an intent directly, standing
// in for whatever concrete webhook-signature-verification adapter a
// real voice platform integration would supply.
type webhookAdapter struct {
	mu         sync.Mutex
	intents    map[string]platform.IntentHandler
	utterances map[string][]string
	slots      map[string][]string
	launch     platform.LaunchHandler
	onError    platform.ErrorHandler
}

func newWebhookAdapter() *webhookAdapter {
	return &webhookAdapter{
		intents:    map[string]platform.IntentHandler{},
		utterances: map[string][]string{},
		slots:      map[string][]string{},
	}
}

func (a *webhookAdapter) RegIntent(ctx context.Context, name string, utterances []string, slots map[string]string, handler platform.IntentHandler) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.intents[name] = handler
	a.utterances[name] = utterances
	return nil
}

// Catalog returns a snapshot of every registered intent name mapped
// to its platform-ready utterances, for the /intents debug endpoint.
func (a *webhookAdapter) Catalog() map[string][]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := make(map[string][]string, len(a.utterances))
	for k, v := range a.utterances {
		cp[k] = v
	}
	return cp
}

func (a *webhookAdapter) RegCustomSlot(ctx context.Context, typeName string, values []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slots[typeName] = values
	return nil
}

func (a *webhookAdapter) OnLaunch(ctx context.Context, handler platform.LaunchHandler) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.launch = handler
	return nil
}

func (a *webhookAdapter) OnError(ctx context.Context, handler platform.ErrorHandler) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onError = handler
	return nil
}

func (a *webhookAdapter) handler(name string) (platform.IntentHandler, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.intents[name]
	return h, ok
}

func (a *webhookAdapter) reportError(ctx context.Context, req platform.Request, cause error) {
	a.mu.Lock()
	h := a.onError
	a.mu.Unlock()
	if h != nil {
		h(ctx, req, cause)
	}
}
