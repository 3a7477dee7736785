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

// Package store defines the opaque persistent-record backend
// interface spec.md §3/§6 describes, and holds the PersistentRecord
// value shape authors load/store through the Response facade.
package store

import "context"

// Record is an author-declared tabular object with named fields,
// loaded from or written to a Store.
//
// KeyField/KeyValue carry the key a Load was looked up by (or, for a
// record that was never Loaded, the key a Store later settled on).
// A Store implementation should prefer them over re-deriving a key,
// so a record Load-ed by one field round-trips back under that same
// field on a subsequent Store.
type Record struct {
	Name   string
	Fields map[string]string

	KeyField string
	KeyValue string
}

// Get reads one field, reporting whether it was present.
func (r *Record) Get(field string) (string, bool) {
	if r == nil || r.Fields == nil {
		return "", false
	}
	v, ok := r.Fields[field]
	return v, ok
}

// Set writes one field.
func (r *Record) Set(field string, value string) {
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	r.Fields[field] = value
}

// Store is the opaque key/value/table backend persistent records are
// kept in. where is an opaque string forwarded verbatim to the
// backend (spec.md §6); core code never interprets it.
type Store interface {
	// Load fetches one record by a key field/value pair, optionally
	// narrowed by an opaque where clause.
	Load(ctx context.Context, record string, keyField string, keyValue string, where string) (*Record, error)

	// Store upserts a record.
	Store(ctx context.Context, record *Record) error
}

// Noop is a Store that never persists anything; Load always reports
// not-found and Store always succeeds without writing. Useful for
// scripts or tools that declare persistent records but don't need a
// real backend wired up (a lint pass, a REPL without -db set).
type Noop struct{}

func (Noop) Load(ctx context.Context, record, keyField, keyValue, where string) (*Record, error) {
	return nil, nil
}

func (Noop) Store(ctx context.Context, record *Record) error {
	return nil
}
