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

package structidx

// Mode is the document pipeline's current intent for a Worker's bound
// document, mirroring the state the pipeline's own setDocument(doc, mode)
// call carries. It selects what Flush does with the pending buffer.
type Mode int

const (
	// ModeUnknown is the zero value: no pipeline intent has been set yet.
	// SetDocument refuses to enqueue anything while a Worker is in this
	// mode - that always indicates a caller that forgot to call SetMode.
	ModeUnknown Mode = iota

	// ModeStore is the ordinary ingest mode: pending nodes are inserted,
	// and each (qname, docId) group gets its doc-key inventory entry
	// created (value 0) if one doesn't already exist.
	ModeStore

	// ModeRemoveAllNodes means the whole document is being dropped.
	// Pending is irrelevant in this mode; Flush calls RemoveDocument
	// directly instead of draining pending.
	ModeRemoveAllNodes

	// ModeRemoveSomeNodes means pending nodes name entries to delete
	// rather than insert. Doc-keys are left untouched: a partial removal
	// cannot prove that no node of that qname survives.
	ModeRemoveSomeNodes
)

func (m Mode) String() string {
	switch m {
	case ModeStore:
		return "store"
	case ModeRemoveAllNodes:
		return "remove-all"
	case ModeRemoveSomeNodes:
		return "remove-some"
	default:
		return "unknown"
	}
}

// DefaultFlushThreshold bounds the in-memory pending buffer before an
// automatic flush, so a very large document's ingest can't grow the
// buffer unboundedly. This is an ambient ingest-performance concern,
// orthogonal to Mode.
const DefaultFlushThreshold = 100_000

// Options configures an Index and the Workers it creates.
type Options struct {
	Mode           Mode
	FlushThreshold int
}

// Option mutates an Options value being built up by NewOptions.
type Option func(*Options)

// WithMode sets a Worker's initial pipeline mode; default is ModeStore.
// Worker.SetMode changes it later in the Worker's lifetime.
func WithMode(m Mode) Option {
	return func(o *Options) { o.Mode = m }
}

// WithFlushThreshold overrides DefaultFlushThreshold. A threshold <= 0
// disables automatic flushing; callers must call Flush themselves.
func WithFlushThreshold(n int) Option {
	return func(o *Options) { o.FlushThreshold = n }
}

// NewOptions builds an Options value, applying opts over sensible defaults.
func NewOptions(opts ...Option) Options {
	o := Options{
		Mode:           ModeStore,
		FlushThreshold: DefaultFlushThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
