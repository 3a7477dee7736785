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

// Command convoshell is a local, in-process REPL for exercising an
// author's YAML script one line at a time: type one of the
// platform-ready utterances compiled from "expecting" (as /intents
// lists them), and convoshell dispatches it and prints what the
// engine says back. Follows the bufio.Scanner REPL
// shape of sheens' cmd/mqshell, minus any broker.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/Comcast/convoengine/convo"
	"github.com/Comcast/convoengine/platform"
	"github.com/Comcast/convoengine/script"
	"github.com/Comcast/convoengine/store"
	"github.com/Comcast/convoengine/store/bolt"
)

// shellAdapter matches typed input against the canonical utterances
// registered at compile time; there is no NLU here, so the line must
// match one of the platform-ready utterances exactly (case-insensitive).
type shellAdapter struct {
	mu      sync.Mutex
	byUtter map[string]platform.IntentHandler
	names   []string
	launch  platform.LaunchHandler
}

func newShellAdapter() *shellAdapter {
	return &shellAdapter{byUtter: map[string]platform.IntentHandler{}}
}

func (a *shellAdapter) RegIntent(ctx context.Context, name string, utterances []string, slots map[string]string, handler platform.IntentHandler) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.names = append(a.names, name)
	for _, u := range utterances {
		a.byUtter[strings.ToLower(u)] = handler
	}
	return nil
}

func (a *shellAdapter) RegCustomSlot(ctx context.Context, typeName string, values []string) error {
	return nil
}

func (a *shellAdapter) OnLaunch(ctx context.Context, handler platform.LaunchHandler) error {
	a.launch = handler
	return nil
}

func (a *shellAdapter) OnError(ctx context.Context, handler platform.ErrorHandler) error {
	return nil
}

func (a *shellAdapter) match(line string) (platform.IntentHandler, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.byUtter[strings.ToLower(strings.TrimSpace(line))]
	return h, ok
}

type shellSession struct {
	vals map[string]string
}

func (s *shellSession) Get(key string) (string, bool) { v, ok := s.vals[key]; return v, ok }
func (s *shellSession) Set(key string, value string)  { s.vals[key] = value }
func (s *shellSession) Attributes() map[string]string  { return s.vals }

type shellRequest struct {
	session platform.Session
}

func (r *shellRequest) UserID() string                 { return "shell" }
func (r *shellRequest) Slots() map[string]string        { return nil }
func (r *shellRequest) Slot(name string) (string, bool) { return "", false }
func (r *shellRequest) Session() platform.Session       { return r.session }
func (r *shellRequest) Say(composedSSML string)         { fmt.Println(composedSSML) }
func (r *shellRequest) ShouldEndSession(end bool) {
	if end {
		fmt.Println("[session ended]")
	}
}

func main() {
	scriptFile := flag.String("script", "", "author YAML script to load")
	dbFile := flag.String("db", "", "optional bbolt file for persistent records")
	flag.Parse()

	if *scriptFile == "" {
		log.Fatal("convoshell: -script is required")
	}

	var pstore store.Store = store.Noop{}
	if *dbFile != "" {
		b := bolt.New(*dbFile)
		if err := b.Open(); err != nil {
			log.Fatalf("convoshell: %v", err)
		}
		defer b.Close()
		pstore = b
	}

	adapter := newShellAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)

	engine := convo.NewEngine(registry, pstore)

	s, err := script.LoadFile(*scriptFile)
	if err != nil {
		log.Fatalf("convoshell: %v", err)
	}
	if err := engine.LoadScript(s, nil); err != nil {
		log.Fatalf("convoshell: %v", err)
	}
	if err := engine.RegisterIntents(context.Background()); err != nil {
		log.Fatalf("convoshell: %v", err)
	}

	session := &shellSession{vals: map[string]string{}}
	ctx := context.Background()

	fmt.Println("convoshell: type /launch to start, /intents to list utterances, /quit to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		switch {
		case line == "/quit":
			return
		case line == "/intents":
			for _, u := range sortedKeys(adapter.byUtter) {
				fmt.Println(" ", u)
			}
		case line == "/launch":
			if adapter.launch == nil {
				fmt.Println("no launch handler registered")
				continue
			}
			if err := adapter.launch(ctx, &shellRequest{session: session}); err != nil {
				fmt.Println("error:", err)
			}
		default:
			handler, ok := adapter.match(line)
			if !ok {
				fmt.Println("(no matching intent; try /intents)")
				continue
			}
			if err := handler(ctx, &shellRequest{session: session}); err != nil {
				fmt.Println("error:", err)
			}
		}
	}
}

func sortedKeys(m map[string]platform.IntentHandler) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
