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

// Command convospec compiles an author's YAML script against the
// engine's RegisterIntents step without standing up any platform
// adapter, and prints the resulting intent table as JSON. Useful as a
// CI lint step: a script that fails to compile here would fail to
// compile in any real deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/Comcast/convoengine/convo"
	"github.com/Comcast/convoengine/platform"
	"github.com/Comcast/convoengine/script"
	"github.com/Comcast/convoengine/store"
)

// recordingAdapter is a platform.Adapter that only records the
// registration calls RegisterIntents makes, for printing.
type recordingAdapter struct {
	Intents map[string][]string `json:"intents"`
	Slots   map[string][]string `json:"slots"`
}

func newRecordingAdapter() *recordingAdapter {
	return &recordingAdapter{Intents: map[string][]string{}, Slots: map[string][]string{}}
}

func (a *recordingAdapter) RegIntent(ctx context.Context, name string, utterances []string, slots map[string]string, handler platform.IntentHandler) error {
	a.Intents[name] = utterances
	return nil
}
func (a *recordingAdapter) RegCustomSlot(ctx context.Context, typeName string, values []string) error {
	a.Slots[typeName] = values
	return nil
}
func (a *recordingAdapter) OnLaunch(ctx context.Context, handler platform.LaunchHandler) error { return nil }
func (a *recordingAdapter) OnError(ctx context.Context, handler platform.ErrorHandler) error   { return nil }

func main() {
	scriptFile := flag.String("script", "", "author YAML script to compile")
	flag.Parse()

	if *scriptFile == "" {
		log.Fatal("convospec: -script is required")
	}

	s, err := script.LoadFile(*scriptFile)
	if err != nil {
		log.Fatalf("convospec: %v", err)
	}

	adapter := newRecordingAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)

	engine := convo.NewEngine(registry, store.Noop{})
	if err := engine.LoadScript(s, nil); err != nil {
		log.Fatalf("convospec: loading script: %v", err)
	}
	if err := engine.RegisterIntents(context.Background()); err != nil {
		log.Fatalf("convospec: compile error: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(adapter); err != nil {
		log.Fatalf("convospec: %v", err)
	}
}
