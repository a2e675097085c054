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

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/google/btree"

	"github.com/nxdb/structidx/internal/xlog"
	"github.com/nxdb/structidx/keycodec"
	"github.com/nxdb/structidx/kv"
)

// pendingOp is one buffered node, keyed by its full encoded name-key so
// that btree ordering reproduces the store's own key order and a later
// write to the same key collapses the earlier one (last write wins). What
// an op means on Flush - insert or delete - is decided by the Worker's
// current Mode, not by the op itself.
type pendingOp struct {
	key     []byte
	address uint64
	units   int
}

func pendingLess(a, b pendingOp) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// Worker is the single-document ingest and query surface over an Index. A
// Worker is bound to exactly one document for its whole lifetime; feeding
// it a NodeProxy for a different document panics with documentMismatchError,
// since that always indicates a caller bug rather than a recoverable state.
//
// A Worker is not safe for concurrent use by multiple goroutines; callers
// needing concurrent ingest create one Worker per document and let the
// Index's OrderedStore lock serialize their Flush calls against readers.
type Worker struct {
	idx    *Index
	doc    uint32
	mode   Mode
	thresh int

	mu      sync.Mutex
	pending *btree.BTreeG[pendingOp]
}

func newWorker(idx *Index, doc Document, opts Options) *Worker {
	return &Worker{
		idx:     idx,
		doc:     doc.DocId(),
		mode:    opts.Mode,
		thresh:  opts.FlushThreshold,
		pending: btree.NewG(32, pendingLess),
	}
}

// DocId returns the document this worker is bound to.
func (w *Worker) DocId() uint32 { return w.doc }

// SetMode changes the worker's current pipeline intent, mirroring the
// document pipeline's own setDocument(doc, mode) transitions. It does not
// touch any already-buffered pending ops; callers that change mode
// mid-document should Flush first.
func (w *Worker) SetMode(m Mode) { w.mode = m }

func (w *Worker) checkDoc(docID uint32) {
	if docID != w.doc {
		panic(documentMismatchError{want: w.doc, got: docID})
	}
}

func qnameOf(p NodeProxy) keycodec.IndexType {
	if p.Kind == KindAttribute {
		return keycodec.Attribute
	}
	return keycodec.Element
}

// StreamListener returns a Listener adapter that turns a SAX-style parse
// callback sequence into calls on this Worker, maintaining the ancestor
// stack needed to assign each node its NodeId.
func (w *Worker) StreamListener() *Listener {
	return &Listener{w: w}
}

// SetDocument enqueues a single node, described by proxy, into the pending
// buffer. It is the low-level entry point Listener drives; direct callers
// (e.g. a bulk loader that already knows every node's NodeId) may call it
// themselves. Valid only while the worker is in ModeStore or
// ModeRemoveSomeNodes - per spec, the pipeline only streams startElement/
// attribute callbacks in those two modes.
func (w *Worker) SetDocument(proxy NodeProxy) error {
	w.checkDoc(proxy.DocID)

	if w.mode != ModeStore && w.mode != ModeRemoveSomeNodes {
		return fmt.Errorf("structidx: SetDocument called in mode %s (want store or remove-some)", w.mode)
	}

	typ := qnameOf(proxy)
	qn, err := keycodec.Intern(w.idx.symbols, typ, proxy.LocalName, proxy.Namespace)
	if err != nil {
		return fmt.Errorf("structidx: intern %s: %w", proxy.LocalName, err)
	}

	var address uint64
	if w.mode == ModeStore {
		address = w.idx.nextAddress()
	}
	key := keycodec.EncodeNameKey(typ, qn, proxy.DocID, proxy.ID)
	op := pendingOp{key: key, address: address, units: proxy.ID.Units()}

	w.mu.Lock()
	w.pending.ReplaceOrInsert(op)
	n := w.pending.Len()
	w.mu.Unlock()

	if w.thresh > 0 && n >= w.thresh {
		return w.Flush(context.Background())
	}
	return nil
}

// RemoveDocument removes every node this worker has indexed for its
// document, both buffered and already flushed.
func (w *Worker) RemoveDocument(ctx context.Context) error {
	w.mu.Lock()
	w.pending.Clear(false)
	w.mu.Unlock()

	release, err := w.idx.store.Lock().AcquireWrite(ctx)
	if err != nil {
		return fmt.Errorf("structidx: acquire write lock: %w", err)
	}
	defer release()

	from := keycodec.EncodeDocKeyPrefix(w.doc)
	to := keycodec.EncodeDocKeyPrefix(w.doc + 1)

	var docKeys [][]byte
	err = w.idx.store.RangeScan(ctx, from, to, func(key []byte, _ uint64) (bool, error) {
		docKeys = append(docKeys, append([]byte(nil), key...))
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("structidx: scan doc-keys for %d: %w", w.doc, err)
	}

	for _, dk := range docKeys {
		typ, qn, docID, err := keycodec.ReadQName(dk)
		if err != nil {
			return err
		}
		nameFrom := keycodec.EncodeNameKeyPrefix(typ, qn, docID)
		nameTo := keycodec.EncodeNameKeyPrefix(typ, qn, docID+1)
		if err := w.idx.store.DeleteRange(nameFrom, nameTo); err != nil {
			return fmt.Errorf("structidx: delete name-keys for doc %d: %w", docID, err)
		}
	}
	if err := w.idx.store.DeleteRange(from, to); err != nil {
		return fmt.Errorf("structidx: delete doc-keys for doc %d: %w", w.doc, err)
	}

	xlog.Named("structidx").Infow("removed document", "docId", w.doc, "qnames", len(docKeys))
	return nil
}

// Flush dispatches on the worker's current Mode, per spec §4.4.1:
// ModeStore drains pending as inserts, ModeRemoveSomeNodes drains pending
// as deletes, ModeRemoveAllNodes ignores pending and removes the whole
// document. Pending is always cleared, regardless of outcome.
func (w *Worker) Flush(ctx context.Context) error {
	w.mu.Lock()
	ops := make([]pendingOp, 0, w.pending.Len())
	w.pending.Ascend(func(op pendingOp) bool {
		ops = append(ops, op)
		return true
	})
	w.pending.Clear(false)
	w.mu.Unlock()

	switch w.mode {
	case ModeStore:
		if len(ops) == 0 {
			return nil
		}
		if err := w.flushStore(ctx, ops); err != nil {
			return err
		}
		xlog.Named("structidx").Infow("flushed pending inserts", "docId", w.doc, "count", len(ops))
		return nil
	case ModeRemoveSomeNodes:
		if len(ops) == 0 {
			return nil
		}
		if err := w.flushRemoveSome(ctx, ops); err != nil {
			return err
		}
		xlog.Named("structidx").Infow("flushed pending deletes", "docId", w.doc, "count", len(ops))
		return nil
	case ModeRemoveAllNodes:
		return w.RemoveDocument(ctx)
	default:
		return fmt.Errorf("structidx: flush called with mode %s", w.mode)
	}
}

// flushStore applies ops (sorted by key, hence grouped by (type, sym,
// nsSym, docId)) per spec §4.4.2: insert every node of a group, then probe
// the group's doc-key once and insert it with value 0 if absent.
func (w *Worker) flushStore(ctx context.Context, ops []pendingOp) error {
	release, err := w.idx.store.Lock().AcquireWrite(ctx)
	if err != nil {
		return fmt.Errorf("structidx: acquire write lock: %w", err)
	}
	defer release()

	store := w.idx.store
	i := 0
	for i < len(ops) {
		dk := docKeyForNameKey(ops[i].key)
		j := i + 1
		for j < len(ops) && bytes.Equal(docKeyForNameKey(ops[j].key), dk) {
			j++
		}
		for _, op := range ops[i:j] {
			value := keycodec.EncodeValue(op.address, op.units)
			if err := store.Insert(op.key, value); err != nil {
				return fmt.Errorf("structidx: insert name-key: %w", err)
			}
		}
		if _, err := store.PointGet(dk); err != nil {
			if err != kv.ErrNotFound {
				return fmt.Errorf("structidx: read doc-key: %w", err)
			}
			if err := store.Insert(dk, 0); err != nil {
				return fmt.Errorf("structidx: insert doc-key: %w", err)
			}
		}
		i = j
	}
	return nil
}

// flushRemoveSome applies ops as deletions per spec §4.4.3. Doc-keys are
// never touched here: a partial removal cannot prove that no node of a
// qname survives.
func (w *Worker) flushRemoveSome(ctx context.Context, ops []pendingOp) error {
	release, err := w.idx.store.Lock().AcquireWrite(ctx)
	if err != nil {
		return fmt.Errorf("structidx: acquire write lock: %w", err)
	}
	defer release()

	for _, op := range ops {
		if err := w.idx.store.DeleteOne(op.key); err != nil {
			return fmt.Errorf("structidx: delete name-key: %w", err)
		}
	}
	return nil
}

// docKeyForNameKey rebuilds the doc-key that inventories a name-key,
// without needing the QName struct threaded separately through pendingOp.
func docKeyForNameKey(nameKey []byte) []byte {
	docID, _ := keycodec.ReadDocId(nameKey)
	typ := keycodec.IndexType(nameKey[0])
	qn := keycodec.QName{
		Type:  typ,
		Sym:   beUint16(nameKey[1:3]),
		NsSym: beUint16(nameKey[3:5]),
	}
	return keycodec.EncodeDocKey(typ, docID, qn)
}

func beUint16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }

// FindElementsByQName returns every node of kind typ named (localName,
// namespace), across the documents named in sel (or every document the
// index currently knows about when sel is nil or names none), in document
// order within each document.
func (w *Worker) FindElementsByQName(ctx context.Context, typ IndexKind, localName, namespace string, sel *Selector) (NodeSet, error) {
	return w.idx.findElements(ctx, typ, localName, namespace, sel)
}

// FindDescendantsByQName returns every node of kind typ named (localName,
// namespace) reachable from sel.Context along axis; when sel or
// sel.Context is nil for a document, every node of that name in that
// document is a candidate (descendant-of-document-root).
func (w *Worker) FindDescendantsByQName(ctx context.Context, typ IndexKind, localName, namespace string, axis Axis, sel *Selector) (NodeSet, error) {
	return w.idx.findDescendants(ctx, typ, localName, namespace, axis, sel)
}

// FindAncestorsByQName returns every node of kind typ named (localName,
// namespace) reachable from sel.Context along axis. For each context node
// the matches come nearest ancestor first; documents are visited in no
// defined order.
func (w *Worker) FindAncestorsByQName(ctx context.Context, typ IndexKind, localName, namespace string, axis Axis, sel *Selector) (NodeSet, error) {
	return w.idx.findAncestors(ctx, typ, localName, namespace, axis, sel)
}
