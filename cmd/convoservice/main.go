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

// Command convoservice runs a conversation engine behind a plain HTTP
// webhook, with a websocket console for watching dispatch events live
// while a script is under development.
//
// It is a development harness, not a platform adapter: a production
// deployment talks to a real voice platform's own webhook contract,
// which is out of scope here (see SPEC_FULL.md).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Comcast/convoengine/convo"
	"github.com/Comcast/convoengine/platform"
	"github.com/Comcast/convoengine/script"
	"github.com/Comcast/convoengine/store/bolt"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		scriptFile = flag.String("script", "", "author YAML script to load")
		dbFile     = flag.String("db", "convoservice.db", "bbolt file for persistent records")
		healthURL  = flag.String("health-url", "", "optional URL to poll and report over the console")
		healthFreq = flag.Duration("health-interval", 30*time.Second, "health poll interval")
	)
	flag.Parse()

	if *scriptFile == "" {
		log.Fatal("convoservice: -script is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pstore := bolt.New(*dbFile)
	if err := pstore.Open(); err != nil {
		log.Fatalf("convoservice: opening %s: %v", *dbFile, err)
	}
	defer pstore.Close()

	adapter := newWebhookAdapter()
	registry := platform.NewRegistry()
	registry.Add(adapter)

	engine := convo.NewEngine(registry, pstore)

	s, err := script.LoadFile(*scriptFile)
	if err != nil {
		log.Fatalf("convoservice: loading %s: %v", *scriptFile, err)
	}
	if err := engine.LoadScript(s, nil); err != nil {
		log.Fatalf("convoservice: loading script into engine: %v", err)
	}
	if err := engine.RegisterIntents(ctx); err != nil {
		log.Fatalf("convoservice: RegisterIntents: %v", err)
	}

	sessions := newSessionStore()
	out := newConsole()
	go out.run(ctx)
	go pollHealth(ctx, *healthURL, *healthFreq, out)

	mux := http.NewServeMux()
	mux.HandleFunc("/intents", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(adapter.Catalog())
	})
	mux.HandleFunc("/dispatch", dispatchHandler(ctx, adapter, sessions, out))
	mux.HandleFunc("/launch", launchHandler(ctx, adapter, sessions, out))
	mux.Handle("/console", out)

	log.Printf("convoservice: listening on %s (script %s, db %s)", *addr, *scriptFile, *dbFile)
	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("convoservice: %v", err)
	}
}

type dispatchBody struct {
	SessionID string            `json:"sessionId"`
	Intent    string            `json:"intent"`
	Slots     map[string]string `json:"slots"`
}

func dispatchHandler(ctx context.Context, adapter *webhookAdapter, sessions *sessionStore, out *console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body dispatchBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handler, ok := adapter.handler(body.Intent)
		if !ok {
			http.Error(w, "unknown intent: "+body.Intent, http.StatusNotFound)
			return
		}

		req := &httpRequest{
			userID:  body.SessionID,
			slots:   body.Slots,
			session: sessions.get(body.SessionID),
		}
		if err := handler(r.Context(), req); err != nil {
			adapter.reportError(ctx, req, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		out.publish(map[string]interface{}{
			"type":      "dispatch",
			"sessionId": body.SessionID,
			"intent":    body.Intent,
			"said":      req.said,
			"endSession": req.end,
		})
		json.NewEncoder(w).Encode(map[string]interface{}{"said": req.said, "endSession": req.end})
	}
}

func launchHandler(ctx context.Context, adapter *webhookAdapter, sessions *sessionStore, out *console) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if adapter.launch == nil {
			http.Error(w, "no launch handler registered", http.StatusInternalServerError)
			return
		}

		req := &httpRequest{userID: body.SessionID, session: sessions.get(body.SessionID)}
		if err := adapter.launch(r.Context(), req); err != nil {
			adapter.reportError(ctx, req, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		out.publish(map[string]interface{}{
			"type":      "launch",
			"sessionId": body.SessionID,
			"said":      req.said,
		})
		json.NewEncoder(w).Encode(map[string]interface{}{"said": req.said, "endSession": req.end})
	}
}
