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

// Package bolt implements store.Store against a local bbolt database:
// one bucket per record name, one key per keyField:keyValue pair,
// JSON-encoded fields as the value. Grounded on sheens'
// cmd/mservice/storage/bolt and cmd/mcrew/storage.go, which persist
// machine/crew state the same way (one bucket per crew id).
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Comcast/convoengine/store"

	"go.etcd.io/bbolt"
)

// Store persists store.Record values in a local bbolt file.
type Store struct {
	Debug bool

	filename string
	db       *bbolt.DB
}

// New creates a Store backed by filename. Call Open before use.
func New(filename string) *Store {
	return &Store{filename: filename}
}

// Open opens (creating if necessary) the underlying bbolt file.
func (s *Store) Open() error {
	db, err := bbolt.Open(s.filename, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Close closes the underlying bbolt file.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("bolt.Store "+format, args...)
	}
}

func recordKey(keyField, keyValue string) []byte {
	return []byte(keyField + ":" + keyValue)
}

// Load fetches one record. where is accepted for interface
// compatibility but is not interpreted by this simple backend: a
// production backend with real query support would forward it to a
// WHERE clause or equivalent filter.
func (s *Store) Load(ctx context.Context, record string, keyField string, keyValue string, where string) (*store.Record, error) {
	s.logf("Load %s %s=%s", record, keyField, keyValue)

	var fields map[string]string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(record))
		if b == nil {
			return nil
		}
		bs := b.Get(recordKey(keyField, keyValue))
		if bs == nil {
			return nil
		}
		return json.Unmarshal(bs, &fields)
	})
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, nil
	}
	return &store.Record{Name: record, Fields: fields, KeyField: keyField, KeyValue: keyValue}, nil
}

// Store upserts r. A record Load-ed through this package (or through
// Response.Load) carries the keyField/keyValue it was looked up by in
// r.KeyField/r.KeyValue; Store reuses that key so the record
// round-trips back under the same key it was fetched with, rather
// than guessing a new one.
//
// For a record that was never Loaded, Store falls back to the "id"
// field if present, else the record's sole field if it has exactly
// one. Callers with multiple fields and no "id" must set KeyField
// themselves.
func (s *Store) Store(ctx context.Context, r *store.Record) error {
	s.logf("Store %s %v", r.Name, r.Fields)

	keyField, keyValue := r.KeyField, r.KeyValue
	if keyField == "" {
		keyField, keyValue = "id", r.Fields["id"]
		if keyValue == "" && len(r.Fields) == 1 {
			for k, v := range r.Fields {
				keyField, keyValue = k, v
			}
		}
	}
	if keyValue == "" {
		return fmt.Errorf("bolt: record %q has no usable key field", r.Name)
	}
	r.KeyField, r.KeyValue = keyField, keyValue

	bs, err := json.Marshal(r.Fields)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(r.Name))
		if err != nil {
			return err
		}
		return b.Put(recordKey(keyField, keyValue), bs)
	})
}
