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

import "github.com/nxdb/structidx/nodeid"

// Document identifies the owning document a Worker is bound to. The index
// never reads document content; it only needs a stable numeric identity to
// scope keys and to guard against cross-document proxy misuse.
type Document interface {
	DocId() uint32
}

// docRef is the trivial Document used internally and by callers who have
// nothing richer to hand the worker.
type docRef uint32

func (d docRef) DocId() uint32 { return uint32(d) }

// DocOf wraps a raw document id as a Document.
func DocOf(id uint32) Document { return docRef(id) }

// NodeProxy is the minimal view of an indexed node the index needs: its
// identity within the document, and the qualified name under which it is
// addressed. Attribute nodes and element nodes both satisfy this; the Kind
// field tells the worker which key family to use.
type NodeProxy struct {
	DocID     uint32
	ID        nodeid.Id
	Kind      IndexKind
	LocalName string
	Namespace string
}

// IndexKind distinguishes element and attribute nodes at the proxy level,
// mirroring keycodec.IndexType without importing it into the public API.
type IndexKind uint8

const (
	KindElement IndexKind = iota
	KindAttribute
)

// ContextEdge pairs a context node (the node the query was evaluated
// relative to) with a matched node, for callers that need to correlate
// results back to the node that produced them (e.g. predicate evaluation
// over a context sequence). The structural Find* methods populate Context
// only when the caller supplies a non-nil context set; otherwise it is the
// zero Id.
type ContextEdge struct {
	Context nodeid.Id
	Matched NodeProxy
}
