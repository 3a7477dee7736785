/* Copyright 2019 Comcast Cable Communications Management, LLC
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

package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTAdapter implements Adapter by publishing registration calls as
// JSON messages on an MQTT broker and dispatching inbound requests
// received on a subscribed topic back into the engine, mirroring the
// bus-based machine I/O of sheens' sio/siomq: the conversation engine
// can live in one process while the platform webhook handler that
// actually talks to the voice assistant lives in another, bridged by
// the broker.
//
// Topic layout, rooted at Prefix (default "convoengine"):
//
//	<prefix>/register/intent    published once per RegIntent call
//	<prefix>/register/slot      published once per RegCustomSlot call
//	<prefix>/dispatch           subscribed: inbound turns arrive here
//
// The adapter publishes no replies itself: a composed reply goes to
// the Say method of whatever Request the requestOf function returned.
type MQTTAdapter struct {
	Client mqtt.Client
	Prefix string
	QoS    byte

	mu        sync.Mutex
	handlers  map[string]IntentHandler
	launch    LaunchHandler
	onError   ErrorHandler
	requestOf func(json.RawMessage) (Request, error)
}

// mqttRegIntentMsg is the wire shape published for RegIntent.
type mqttRegIntentMsg struct {
	Name       string            `json:"name"`
	Utterances []string          `json:"utterances"`
	Slots      map[string]string `json:"slots,omitempty"`
}

// mqttRegSlotMsg is the wire shape published for RegCustomSlot.
type mqttRegSlotMsg struct {
	TypeName string   `json:"typeName"`
	Values   []string `json:"values"`
}

// mqttDispatchMsg is the wire shape expected on the dispatch topic.
type mqttDispatchMsg struct {
	Intent string            `json:"intent"` // "" means launch
	UserID string            `json:"userId"`
	Slots  map[string]string `json:"slots"`
}

// NewMQTTAdapter creates an adapter over an already-connected paho
// client. requestOf turns one decoded dispatch message into a
// platform.Request backed by whatever Session store the caller's
// process uses; this stays a caller-supplied function because Session
// persistence is explicitly a host concern, not a core one.
func NewMQTTAdapter(client mqtt.Client, prefix string, requestOf func(mqttDispatch json.RawMessage) (Request, error)) *MQTTAdapter {
	if prefix == "" {
		prefix = "convoengine"
	}
	return &MQTTAdapter{
		Client:    client,
		Prefix:    prefix,
		QoS:       1,
		handlers:  map[string]IntentHandler{},
		requestOf: requestOf,
	}
}

func (a *MQTTAdapter) topic(suffix string) string {
	return a.Prefix + "/" + suffix
}

// RegIntent publishes the intent's utterances/slots to the registry
// topic and remembers the handler for later dispatch.
func (a *MQTTAdapter) RegIntent(ctx context.Context, name string, utterances []string, slots map[string]string, handler IntentHandler) error {
	a.mu.Lock()
	a.handlers[name] = handler
	a.mu.Unlock()

	bs, err := json.Marshal(mqttRegIntentMsg{Name: name, Utterances: utterances, Slots: slots})
	if err != nil {
		return err
	}
	return a.publish(a.topic("register/intent"), bs)
}

// RegCustomSlot publishes the custom slot's values to the registry
// topic.
func (a *MQTTAdapter) RegCustomSlot(ctx context.Context, typeName string, values []string) error {
	bs, err := json.Marshal(mqttRegSlotMsg{TypeName: typeName, Values: values})
	if err != nil {
		return err
	}
	return a.publish(a.topic("register/slot"), bs)
}

// OnLaunch remembers the launch handler and subscribes to the
// dispatch topic (again on every call).
func (a *MQTTAdapter) OnLaunch(ctx context.Context, handler LaunchHandler) error {
	a.mu.Lock()
	a.launch = handler
	a.mu.Unlock()
	return a.ensureSubscribed()
}

// OnError remembers the error handler.
func (a *MQTTAdapter) OnError(ctx context.Context, handler ErrorHandler) error {
	a.mu.Lock()
	a.onError = handler
	a.mu.Unlock()
	return nil
}

func (a *MQTTAdapter) publish(topic string, payload []byte) error {
	tok := a.Client.Publish(topic, a.QoS, false, payload)
	if !tok.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt publish to %q timed out", topic)
	}
	return tok.Error()
}

func (a *MQTTAdapter) ensureSubscribed() error {
	tok := a.Client.Subscribe(a.topic("dispatch"), a.QoS, a.onMessage)
	if !tok.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt subscribe to %q timed out", a.topic("dispatch"))
	}
	return tok.Error()
}

func (a *MQTTAdapter) onMessage(client mqtt.Client, msg mqtt.Message) {
	ctx := context.Background()

	var dm mqttDispatchMsg
	if err := json.Unmarshal(msg.Payload(), &dm); err != nil {
		return
	}

	req, err := a.requestOf(msg.Payload())
	if err != nil {
		a.reportError(ctx, nil, err)
		return
	}

	a.mu.Lock()
	handler, have := a.handlers[dm.Intent]
	launch := a.launch
	a.mu.Unlock()

	var runErr error
	switch {
	case dm.Intent == "" && launch != nil:
		runErr = launch(ctx, req)
	case have:
		runErr = handler(ctx, req)
	default:
		return
	}
	if runErr != nil {
		a.reportError(ctx, req, runErr)
	}
}

func (a *MQTTAdapter) reportError(ctx context.Context, req Request, err error) {
	a.mu.Lock()
	onError := a.onError
	a.mu.Unlock()
	if onError != nil {
		onError(ctx, req, err)
	}
}
