// Copyright 2026 The nxdb Authors
// This file is part of nxdb.
//
// nxdb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// nxdb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with nxdb. If not, see <http://www.gnu.org/licenses/>.

package symtab

import (
	"encoding/binary"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"
)

var (
	namesBucket      = []byte("names")      // localName -> symbol(u16 be)
	namesRevBucket   = []byte("names_rev")   // symbol(u16 be) -> localName
	nsBucket         = []byte("namespaces")  // uri -> nsSymbol(u16 be)
	nsRevBucket      = []byte("namespaces_rev")
	countersBucket   = []byte("counters")
	nameCounterKey   = []byte("name")
	nsCounterKey     = []byte("namespace")
)

// Store is a durable Table. Symbols survive process restart because they
// live in a bbolt file separate from (but alongside) the structural
// index's own OrderedStore file - the structural index's keys only ever
// reference symbols by number, so the two stores can be opened, backed
// up, and restored independently as long as they are restored together.
type Store struct {
	db *bolt.DB
	mu sync.Mutex // serializes symbol allocation; reads go through bolt.View unlocked
}

// OpenStore opens (creating if necessary) a durable symbol table at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("symtab: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{namesBucket, namesRevBucket, nsBucket, nsRevBucket, countersBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("symtab: init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) GetSymbol(localName string) (uint16, error) {
	return s.intern(namesBucket, namesRevBucket, nameCounterKey, localName)
}

func (s *Store) GetNsSymbol(uri string) (uint16, error) {
	if uri == "" {
		return NoSymbol, nil
	}
	return s.intern(nsBucket, nsRevBucket, nsCounterKey, uri)
}

func (s *Store) intern(fwd, rev, counterKey []byte, text string) (uint16, error) {
	key := []byte(text)

	var existing uint16
	found := false
	if err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(fwd).Get(key)
		if v != nil {
			existing = binary.BigEndian.Uint16(v)
			found = true
		}
		return nil
	}); err != nil {
		return NoSymbol, err
	}
	if found {
		return existing, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var sym uint16
	err := s.db.Update(func(tx *bolt.Tx) error {
		fb := tx.Bucket(fwd)
		if v := fb.Get(key); v != nil {
			sym = binary.BigEndian.Uint16(v)
			return nil
		}
		cb := tx.Bucket(countersBucket)
		next := uint16(1)
		if v := cb.Get(counterKey); v != nil {
			cur := binary.BigEndian.Uint16(v)
			if cur == ^uint16(0) {
				return ErrSymbolSpaceExhausted
			}
			next = cur + 1
		}
		sym = next
		var symBuf [2]byte
		binary.BigEndian.PutUint16(symBuf[:], sym)
		if err := cb.Put(counterKey, symBuf[:]); err != nil {
			return err
		}
		if err := fb.Put(key, symBuf[:]); err != nil {
			return err
		}
		return tx.Bucket(rev).Put(symBuf[:], key)
	})
	if err != nil {
		return NoSymbol, err
	}
	return sym, nil
}

func (s *Store) GetName(sym uint16) (string, bool) {
	return s.reverse(namesRevBucket, sym)
}

func (s *Store) GetNamespace(nsSym uint16) (string, bool) {
	return s.reverse(nsRevBucket, nsSym)
}

func (s *Store) reverse(bucket []byte, sym uint16) (string, bool) {
	if sym == NoSymbol {
		return "", false
	}
	var symBuf [2]byte
	binary.BigEndian.PutUint16(symBuf[:], sym)
	var out string
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(symBuf[:])
		if v != nil {
			out = string(v)
			found = true
		}
		return nil
	})
	return out, found
}
