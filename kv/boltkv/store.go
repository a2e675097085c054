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

// Package boltkv implements kv.OrderedStore on top of go.etcd.io/bbolt. It
// is the pure-Go backend: no cgo, single file, used by the test suite and
// by embedders that cannot take a libmdbx dependency. Production
// deployments should prefer kv/mdbxkv.
package boltkv

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/nxdb/structidx/internal/xlog"
	"github.com/nxdb/structidx/kv"
)

var bucketName = []byte("structidx")

// Store is a kv.OrderedStore backed by a single bbolt bucket in a single
// bbolt database file.
type Store struct {
	db   *bolt.DB
	lock kv.RWLock
}

// Open opens (creating if necessary) a bbolt-backed ordered store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltkv: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("boltkv: create bucket: %w", err)
	}
	return &Store{db: db, lock: kv.NewMutexRWLock()}, nil
}

func (s *Store) Lock() kv.RWLock { return s.lock }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) PointGet(key []byte) (uint64, error) {
	var value uint64
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		v := b.Get(key)
		if v == nil {
			return nil
		}
		found = true
		value = binary.BigEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, kv.ErrNotFound
	}
	return value, nil
}

func (s *Store) Insert(key []byte, value uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, buf[:])
	})
}

func (s *Store) DeleteOne(key []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	})
}

func (s *Store) DeleteRange(from, to []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		c := b.Cursor()
		var keys [][]byte
		for k, _ := c.Seek(from); k != nil && lessThan(k, to); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) RangeScan(ctx context.Context, from, to []byte, fn kv.ScanFunc) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		c := b.Cursor()
		for k, v := c.Seek(from); k != nil && lessThan(k, to); k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				xlog.Warn("boltkv scan terminated by context", "err", err)
				return nil
			}
			value := binary.BigEndian.Uint64(v)
			more, err := fn(append([]byte(nil), k...), value)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		return nil
	})
}

func lessThan(a, b []byte) bool {
	if b == nil {
		return true
	}
	return bytes.Compare(a, b) < 0
}
