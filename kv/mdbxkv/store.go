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

// Package mdbxkv implements kv.OrderedStore on top of libmdbx via
// github.com/erigontech/mdbx-go, the same engine the teacher's own
// erigon-lib/kv uses for chain data. This is the production backend: a
// single writer, many concurrent readers, and native cursor range scans
// over a B+-tree ordered by raw key bytes - exactly the semantics
// kv.OrderedStore's contract assumes.
package mdbxkv

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/nxdb/structidx/internal/xlog"
	"github.com/nxdb/structidx/kv"
)

const tableName = "structidx"

// Store is a kv.OrderedStore backed by a single libmdbx environment and
// database (DBI).
type Store struct {
	env  *mdbx.Env
	dbi  mdbx.DBI
	lock kv.RWLock
}

// Options configures the underlying libmdbx environment.
type Options struct {
	// MaxSizeBytes bounds how large the memory-mapped data file may grow.
	// Zero selects a conservative default.
	MaxSizeBytes int64
}

// Open creates or opens a libmdbx-backed ordered store rooted at path.
func Open(path string, opts Options) (*Store, error) {
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("mdbxkv: new env: %w", err)
	}
	if err := env.SetOption(mdbx.OptMaxDB, 1); err != nil {
		return nil, fmt.Errorf("mdbxkv: set max dbs: %w", err)
	}
	maxSize := opts.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = 64 << 30 // 64 GiB address space reservation; mdbx grows lazily.
	}
	if err := env.SetGeometry(-1, -1, int(maxSize), -1, -1, -1); err != nil {
		return nil, fmt.Errorf("mdbxkv: set geometry: %w", err)
	}
	if err := env.Open(path, mdbx.NoSubdir|mdbx.Coalesce|mdbx.LifoReclaim, 0o664); err != nil {
		return nil, fmt.Errorf("mdbxkv: open %s: %w", path, err)
	}

	var dbi mdbx.DBI
	if err := env.Update(func(txn *mdbx.Txn) error {
		var err error
		dbi, err = txn.OpenDBI(tableName, mdbx.Create, nil, nil)
		return err
	}); err != nil {
		env.Close()
		return nil, fmt.Errorf("mdbxkv: open dbi: %w", err)
	}

	return &Store{env: env, dbi: dbi, lock: kv.NewMutexRWLock()}, nil
}

func (s *Store) Lock() kv.RWLock { return s.lock }

func (s *Store) Close() error {
	s.env.Close()
	return nil
}

func (s *Store) PointGet(key []byte) (uint64, error) {
	var value uint64
	err := s.env.View(func(txn *mdbx.Txn) error {
		v, err := txn.Get(s.dbi, key)
		if mdbx.IsNotFound(err) {
			return kv.ErrNotFound
		}
		if err != nil {
			return err
		}
		value = binary.BigEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (s *Store) Insert(key []byte, value uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return s.env.Update(func(txn *mdbx.Txn) error {
		return txn.Put(s.dbi, key, buf[:], 0)
	})
}

func (s *Store) DeleteOne(key []byte) error {
	return s.env.Update(func(txn *mdbx.Txn) error {
		err := txn.Del(s.dbi, key, nil)
		if mdbx.IsNotFound(err) {
			return nil
		}
		return err
	})
}

func (s *Store) DeleteRange(from, to []byte) error {
	return s.env.Update(func(txn *mdbx.Txn) error {
		cur, err := txn.OpenCursor(s.dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		var keys [][]byte
		k, _, err := cur.Get(from, nil, mdbx.SetRange)
		for ; err == nil && keyLess(k, to); k, _, err = cur.Get(nil, nil, mdbx.Next) {
			keys = append(keys, append([]byte(nil), k...))
		}
		if err != nil && !mdbx.IsNotFound(err) {
			return err
		}
		for _, k := range keys {
			if err := txn.Del(s.dbi, k, nil); err != nil && !mdbx.IsNotFound(err) {
				return err
			}
		}
		return nil
	})
}

func (s *Store) RangeScan(ctx context.Context, from, to []byte, fn kv.ScanFunc) error {
	return s.env.View(func(txn *mdbx.Txn) error {
		cur, err := txn.OpenCursor(s.dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		k, v, err := cur.Get(from, nil, mdbx.SetRange)
		for ; err == nil && keyLess(k, to); k, v, err = cur.Get(nil, nil, mdbx.Next) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				xlog.Warn("mdbxkv scan terminated by context", "err", ctxErr)
				return nil
			}
			value := binary.BigEndian.Uint64(v)
			more, cbErr := fn(append([]byte(nil), k...), value)
			if cbErr != nil {
				return cbErr
			}
			if !more {
				return nil
			}
		}
		if err != nil && !mdbx.IsNotFound(err) {
			return err
		}
		return nil
	})
}

func keyLess(k, to []byte) bool {
	if to == nil {
		return true
	}
	if k == nil {
		return false
	}
	for i := 0; i < len(k) && i < len(to); i++ {
		if k[i] != to[i] {
			return k[i] < to[i]
		}
	}
	return len(k) < len(to)
}
