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

// Package kv defines the ordered byte-key-to-uint64-value store contract
// the structural index is built on, plus the read/write lock discipline
// callers must follow around it. Concrete backends live in kv/mdbxkv
// (libmdbx, production) and kv/boltkv (bbolt, embeddable/test).
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by PointGet when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// ScanFunc is invoked once per key in ascending order during a RangeScan.
// Returning more=false stops the scan early without error; returning a
// non-nil err aborts the scan and propagates err to the RangeScan caller.
// Implementations must treat the key slice as valid only for the duration
// of the call - copy it before retaining it past the callback.
type ScanFunc func(key []byte, value uint64) (more bool, err error)

// OrderedStore is a persistent, ordered byte-key to uint64-value map with
// range scans. All of its methods may block on lock acquisition; none of
// them may be called while already holding the lock returned by Lock() for
// the same goroutine's own unrelated purposes (the lock is not reentrant
// across independent operations, only across a single logical scan/batch).
type OrderedStore interface {
	// RangeScan visits every key in [from, to) in ascending order. It
	// checks ctx between invocations of fn, never mid-callback; once ctx
	// is cancelled the scan stops and returns nil, leaving the caller
	// with whatever fn had accumulated so far.
	RangeScan(ctx context.Context, from, to []byte, fn ScanFunc) error

	// PointGet returns the value stored at key, or ErrNotFound.
	PointGet(key []byte) (value uint64, err error)

	// Insert writes key->value, overwriting any existing value. Must be
	// idempotent: inserting the same (key, value) twice is a no-op the
	// second time.
	Insert(key []byte, value uint64) error

	// DeleteOne removes a single key. Deleting an absent key is not an error.
	DeleteOne(key []byte) error

	// DeleteRange removes every key in [from, to).
	DeleteRange(from, to []byte) error

	// Lock returns the read/write lock guarding this store.
	Lock() RWLock

	// Close releases resources held by the backend.
	Close() error
}

// RWLock is the read/write lock every OrderedStore exposes. Acquisition
// may block; release must always be called, typically via defer on the
// returned func. Implementations must not be held across any external
// callback (selectors, stream-listener continuations) - callers are
// responsible for releasing before invoking user code.
type RWLock interface {
	AcquireRead(ctx context.Context) (release func(), err error)
	AcquireWrite(ctx context.Context) (release func(), err error)
}
