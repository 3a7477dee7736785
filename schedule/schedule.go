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

// Package schedule periodically re-pushes a top-level goal onto a
// session's goal stack on a cron schedule, for author scripts that
// want a goal to resurface on its own (a daily check-in, a weekly
// reminder) rather than only at session launch.
package schedule

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
)

// Pusher is the minimal surface schedule needs from a session: enough
// to add a goal frame. convo.Response satisfies this directly.
type Pusher interface {
	AddGoal(key string)
}

// Entry is one scheduled re-push: goal fires on Expr, a standard
// five-field cron expression (github.com/gorhill/cronexpr syntax).
type Entry struct {
	Goal string
	Expr string

	schedule *cronexpr.Expression
}

// Schedule runs a fixed set of Entries against sessions supplied by
// Sessions, waking each Entry at its next cron fire time and calling
// AddGoal on every session Sessions returns.
type Schedule struct {
	entries  []Entry
	Sessions func() []Pusher
}

// New parses every entry's cron expression up front, so a malformed
// schedule fails at construction rather than silently never firing.
func New(entries []Entry, sessions func() []Pusher) (*Schedule, error) {
	parsed := make([]Entry, len(entries))
	for i, e := range entries {
		expr, err := cronexpr.Parse(e.Expr)
		if err != nil {
			return nil, err
		}
		e.schedule = expr
		parsed[i] = e
	}
	return &Schedule{entries: parsed, Sessions: sessions}, nil
}

// Run blocks, waking each entry at its next scheduled time and
// re-pushing its goal onto every current session, until ctx is done.
func (s *Schedule) Run(ctx context.Context) {
	timers := make([]*time.Timer, len(s.entries))
	now := time.Now()
	for i, e := range s.entries {
		timers[i] = time.NewTimer(time.Until(e.schedule.Next(now)))
	}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		for i, e := range s.entries {
			select {
			case <-ctx.Done():
				return
			case fired := <-timers[i].C:
				s.fire(e)
				timers[i].Reset(time.Until(e.schedule.Next(fired)))
			default:
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (s *Schedule) fire(e Entry) {
	sessions := s.Sessions()
	log.Printf("schedule: re-pushing goal %q to %d session(s)", e.Goal, len(sessions))
	for _, sess := range sessions {
		sess.AddGoal(e.Goal)
	}
}
