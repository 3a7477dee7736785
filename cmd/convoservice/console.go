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
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// console fans out dispatch events (one per /dispatch or /launch
// call) to every attached websocket client, so a developer can watch
// a conversation's goal stack and composed replies live while
// exercising a script. Modeled on sheens' Service.WebSocketService:
// a single ops channel broadcast to a sync.Map of per-connection
// outboxes.
type console struct {
	ops   chan interface{}
	conns sync.Map
}

func newConsole() *console {
	c := &console{ops: make(chan interface{}, 1024)}
	return c
}

func (c *console) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case x := <-c.ops:
			c.conns.Range(func(k, v interface{}) bool {
				out := v.(chan interface{})
				select {
				case out <- x:
				default:
					log.Printf("convoservice console: dropping event for slow client %v", k)
				}
				return true
			})
		}
	}
}

func (c *console) publish(event interface{}) {
	select {
	case c.ops <- event:
	default:
		log.Printf("convoservice console: ops channel full, dropping event")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (c *console) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("convoservice console: upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id := conn.RemoteAddr().String()
	out := make(chan interface{}, 32)
	c.conns.Store(id, out)
	defer c.conns.Delete(id)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case x, ok := <-out:
			if !ok {
				return
			}
			bs, err := json.Marshal(x)
			if err != nil {
				log.Printf("convoservice console: marshal error: %v", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, bs); err != nil {
				log.Printf("convoservice console: write error: %v", err)
				return
			}
		}
	}
}
