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

package kv

import (
	"context"
	"sync"
)

// mutexRWLock adapts a sync.RWMutex to the RWLock contract, adding context
// cancellation around acquisition. Both mdbxkv and boltkv use this: the
// underlying engines already serialize their own writer transactions, but
// neither gives callers a way to hold a single lock across a whole
// logical batch or scan spanning multiple engine transactions, which is
// what the index's locking discipline (spec ยง5) requires.
type mutexRWLock struct {
	mu sync.RWMutex
}

// NewMutexRWLock returns an RWLock backed by an in-process sync.RWMutex.
func NewMutexRWLock() RWLock {
	return &mutexRWLock{}
}

func (l *mutexRWLock) AcquireRead(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		l.mu.RLock()
		close(done)
	}()
	select {
	case <-done:
		return l.mu.RUnlock, nil
	case <-ctx.Done():
		// The goroutine above will still acquire the lock eventually and
		// immediately release nothing; to avoid leaking a held lock we
		// wait for it in the background and release right away.
		go func() { <-done; l.mu.RUnlock() }()
		return nil, ctx.Err()
	}
}

func (l *mutexRWLock) AcquireWrite(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		l.mu.Lock()
		close(done)
	}()
	select {
	case <-done:
		return l.mu.Unlock, nil
	case <-ctx.Done():
		go func() { <-done; l.mu.Unlock() }()
		return nil, ctx.Err()
	}
}
