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

// Package structidx implements the structural index: a persistent map from
// (element or attribute qualified name) to the set of nodes bearing that
// name, queried along the self, descendant, and ancestor axes. It never
// indexes node values or text content - that is a different index's job.
package structidx

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/nxdb/structidx/internal/xlog"
	"github.com/nxdb/structidx/keycodec"
	"github.com/nxdb/structidx/kv"
	"github.com/nxdb/structidx/nodeid"
	"github.com/nxdb/structidx/symtab"
)

// Index owns the shared backing store and symbol table for a collection of
// documents, and mints one Worker per document for ingest and querying.
// An Index is safe for concurrent use: all store access goes through the
// OrderedStore's own RWLock, and NewWorker never mutates shared state.
type Index struct {
	store   kv.OrderedStore
	symbols symtab.Table
	opts    Options
	addr    atomic.Uint64
}

// New builds an Index over an already-open store and symbol table. The
// caller owns the lifetime of both and must Close them after the Index is
// no longer in use.
func New(store kv.OrderedStore, symbols symtab.Table, opts ...Option) *Index {
	return &Index{
		store:   store,
		symbols: symbols,
		opts:    NewOptions(opts...),
	}
}

// nextAddress mints a synthetic, monotonically increasing internal address
// to piggyback alongside a node's NodeId in its stored value. Real
// deployments would source this from the page/slot address the node's
// actual content lives at; this index has no content store of its own, so
// it hands out a plain counter instead and documents the substitution.
func (idx *Index) nextAddress() uint64 {
	return idx.addr.Add(1) - 1
}

// NewWorker returns a Worker bound to doc, using idx's options unless
// overridden.
func (idx *Index) NewWorker(doc Document, opts ...Option) *Worker {
	o := idx.opts
	for _, opt := range opts {
		opt(&o)
	}
	return newWorker(idx, doc, o)
}

// RemoveCollection drops every indexed node for the given documents. It is
// the bulk counterpart to Worker.RemoveDocument, used when a whole
// collection of documents is deleted at once.
func (idx *Index) RemoveCollection(ctx context.Context, docIDs []uint32) error {
	for _, id := range docIDs {
		w := idx.NewWorker(DocOf(id))
		if err := w.RemoveDocument(ctx); err != nil {
			return fmt.Errorf("structidx: remove document %d: %w", id, err)
		}
	}
	xlog.Named("structidx").Infow("removed collection", "documents", len(docIDs))
	return nil
}

// knownDocIDs enumerates every document id with at least one doc-key, i.e.
// every document the index currently knows anything about. It acquires
// and releases its own read lock, so callers must invoke it before taking
// their own lock rather than while already holding one.
func (idx *Index) knownDocIDs(ctx context.Context) ([]uint32, error) {
	release, err := idx.store.Lock().AcquireRead(ctx)
	if err != nil {
		return nil, fmt.Errorf("structidx: acquire read lock: %w", err)
	}
	defer release()

	from, to := keycodec.DocKeyRegionBounds()
	seen := make(map[uint32]struct{})
	var out []uint32
	err = idx.store.RangeScan(ctx, from, to, func(key []byte, _ uint64) (bool, error) {
		_, _, docID, err := keycodec.ReadQName(key)
		if err != nil {
			return false, err
		}
		if _, ok := seen[docID]; !ok {
			seen[docID] = struct{}{}
			out = append(out, docID)
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("structidx: enumerate known documents: %w", err)
	}
	return out, nil
}

// resolveDocIDs returns the documents a query should consider: the
// selector's explicit set when it named one, otherwise every document the
// index currently knows about (spec's "empty means all documents").
func (idx *Index) resolveDocIDs(ctx context.Context, sel *Selector) ([]uint32, error) {
	if ids, ok := sel.explicitDocIDs(); ok {
		return ids, nil
	}
	return idx.knownDocIDs(ctx)
}

// docRange is a maximal contiguous run of document ids, end inclusive.
type docRange struct{ start, end uint32 }

// coalesceDocRanges sorts ids and merges adjacent runs (docId == prev+1)
// into maximal contiguous ranges, per spec's findElementsByQName step 1:
// batches loaded with consecutive ids collapse N point-range scans into
// one wider scan.
func coalesceDocRanges(ids []uint32) []docRange {
	if len(ids) == 0 {
		return nil
	}
	sorted := append([]uint32(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var ranges []docRange
	start, prev := sorted[0], sorted[0]
	for _, id := range sorted[1:] {
		switch {
		case id == prev:
			continue // duplicate id in the selector
		case id == prev+1:
			prev = id
		default:
			ranges = append(ranges, docRange{start, prev})
			start, prev = id, id
		}
	}
	return append(ranges, docRange{start, prev})
}

// findElements implements findElementsByQName (spec §4.4.5): coalesce the
// docId set into maximal contiguous ranges, scan each range once, and keep
// only hits whose docId was actually in the requested set.
func (idx *Index) findElements(ctx context.Context, kind IndexKind, localName, namespace string, sel *Selector) (NodeSet, error) {
	typ := keycodec.Element
	if kind == KindAttribute {
		typ = keycodec.Attribute
	}
	qn, err := keycodec.Intern(idx.symbols, typ, localName, namespace)
	if err != nil {
		return NodeSet{}, fmt.Errorf("structidx: resolve qname: %w", err)
	}

	docIDs, err := idx.resolveDocIDs(ctx, sel)
	if err != nil {
		return NodeSet{}, err
	}
	wanted := make(map[uint32]struct{}, len(docIDs))
	for _, id := range docIDs {
		wanted[id] = struct{}{}
	}

	release, err := idx.store.Lock().AcquireRead(ctx)
	if err != nil {
		return NodeSet{}, fmt.Errorf("structidx: acquire read lock: %w", err)
	}
	defer release()

	var out NodeSet
	for _, r := range coalesceDocRanges(docIDs) {
		from := keycodec.EncodeNameKeyPrefix(typ, qn, r.start)
		to := keycodec.EncodeNameKeyPrefix(typ, qn, r.end+1)
		err := idx.store.RangeScan(ctx, from, to, func(key []byte, value uint64) (bool, error) {
			id, err := keycodec.ReadNodeId(key, value)
			if err != nil {
				return false, err
			}
			docID, err := keycodec.ReadDocId(key)
			if err != nil {
				return false, err
			}
			if _, ok := wanted[docID]; !ok {
				return true, nil
			}
			out.Edges = append(out.Edges, ContextEdge{Matched: NodeProxy{
				DocID:     docID,
				ID:        id,
				Kind:      kind,
				LocalName: localName,
				Namespace: namespace,
			}})
			return true, nil
		})
		if err != nil {
			return NodeSet{}, fmt.Errorf("structidx: scan docId range [%d,%d]: %w", r.start, r.end, err)
		}
	}
	return out, nil
}

// descendantRange computes the scan range rooted at ctxNode per spec
// §4.4.6: the whole document when ctxNode is the document root, else the
// half-open range bounded by ctxNode and its next sibling.
func descendantRange(typ keycodec.IndexType, qn keycodec.QName, docID uint32, ctxNode nodeid.Id) (from, to []byte) {
	if ctxNode.IsDocumentNode() {
		return keycodec.EncodeNameKeyPrefix(typ, qn, docID), keycodec.EncodeNameKeyPrefix(typ, qn, docID+1)
	}
	return keycodec.EncodeNameKey(typ, qn, docID, ctxNode), keycodec.EncodeNameKey(typ, qn, docID, ctxNode.NextSibling())
}

// descendantAxisAccept applies the per-hit axis filter of spec §4.4.6.
func descendantAxisAccept(axis Axis, hit, ctxNode nodeid.Id) bool {
	switch axis {
	case AxisDescendantSelf, AxisDescendantAttribute:
		return true
	case AxisChild, AxisAttribute:
		return hit.ComputeRelation(ctxNode) == nodeid.IsChild
	case AxisDescendant:
		rel := hit.ComputeRelation(ctxNode)
		return rel == nodeid.IsChild || rel == nodeid.IsDescendant
	default:
		return false
	}
}

// findDescendants implements findDescendantsByQName (spec §4.4.6). Each
// context node (the "ancestor set") gets its own scan range; hits are
// filtered by axis before being added to the result. A document with no
// context nodes named for it is treated as rooted at DOCUMENT_NODE, i.e.
// every node of the name in that document is a candidate.
func (idx *Index) findDescendants(ctx context.Context, kind IndexKind, localName, namespace string, axis Axis, sel *Selector) (NodeSet, error) {
	typ := keycodec.Element
	if kind == KindAttribute {
		typ = keycodec.Attribute
	}
	qn, err := keycodec.Intern(idx.symbols, typ, localName, namespace)
	if err != nil {
		return NodeSet{}, fmt.Errorf("structidx: resolve qname: %w", err)
	}

	docIDs, err := idx.resolveDocIDs(ctx, sel)
	if err != nil {
		return NodeSet{}, err
	}

	release, err := idx.store.Lock().AcquireRead(ctx)
	if err != nil {
		return NodeSet{}, fmt.Errorf("structidx: acquire read lock: %w", err)
	}
	defer release()

	var out NodeSet
	for _, docID := range docIDs {
		ctxNodes, restricted := sel.contextFor(docID)
		if !restricted {
			ctxNodes = []nodeid.Id{nodeid.DocumentNode}
		}
		for _, cn := range ctxNodes {
			from, to := descendantRange(typ, qn, docID, cn)
			err := idx.store.RangeScan(ctx, from, to, func(key []byte, value uint64) (bool, error) {
				id, err := keycodec.ReadNodeId(key, value)
				if err != nil {
					return false, err
				}
				if !descendantAxisAccept(axis, id, cn) {
					return true, nil
				}
				out.Edges = append(out.Edges, ContextEdge{
					Context: cn,
					Matched: NodeProxy{
						DocID:     docID,
						ID:        id,
						Kind:      kind,
						LocalName: localName,
						Namespace: namespace,
					},
				})
				return true, nil
			})
			if err != nil {
				return NodeSet{}, fmt.Errorf("structidx: scan doc %d: %w", docID, err)
			}
		}
	}
	return out, nil
}

// findAncestors implements findAncestorsByQName (spec §4.4.7): walks each
// descendant's ancestor chain, point-probing the store for a name-key at
// each candidate NodeId, since ancestors-by-name cannot be expressed as a
// single contiguous range scan the way descendants can. SELF/PARENT stop
// after one candidate; SELF/ANCESTOR_SELF seed the walk at the descendant
// itself rather than its parent.
func (idx *Index) findAncestors(ctx context.Context, kind IndexKind, localName, namespace string, axis Axis, sel *Selector) (NodeSet, error) {
	typ := keycodec.Element
	if kind == KindAttribute {
		typ = keycodec.Attribute
	}
	qn, err := keycodec.Intern(idx.symbols, typ, localName, namespace)
	if err != nil {
		return NodeSet{}, fmt.Errorf("structidx: resolve qname: %w", err)
	}

	release, err := idx.store.Lock().AcquireRead(ctx)
	if err != nil {
		return NodeSet{}, fmt.Errorf("structidx: acquire read lock: %w", err)
	}
	defer release()

	stopAfterFirst := axis == AxisSelf || axis == AxisParent
	seedSelf := axis == AxisSelf || axis == AxisAncestorSelf

	var out NodeSet
	for docID, descendants := range sel.contextMap() {
		if ctx.Err() != nil {
			return out, nil
		}
		for _, desc := range descendants {
			var candidate nodeid.Id
			if seedSelf {
				candidate = desc
			} else if desc.IsDocumentNode() {
				continue
			} else {
				candidate = desc.ParentId()
			}

			for !candidate.IsDocumentNode() {
				key := keycodec.EncodeNameKey(typ, qn, docID, candidate)
				_, err := idx.store.PointGet(key)
				switch {
				case err == nil:
					out.Edges = append(out.Edges, ContextEdge{
						Context: desc,
						Matched: NodeProxy{
							DocID:     docID,
							ID:        candidate,
							Kind:      kind,
							LocalName: localName,
							Namespace: namespace,
						},
					})
				case err != kv.ErrNotFound:
					return out, fmt.Errorf("structidx: point-get ancestor: %w", err)
				}
				if stopAfterFirst {
					break
				}
				candidate = candidate.ParentId()
			}
		}
	}
	return out, nil
}

func (s *Selector) contextMap() map[uint32][]nodeid.Id {
	if s == nil || s.Context == nil {
		return nil
	}
	return s.Context
}
