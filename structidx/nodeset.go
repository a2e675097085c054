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

// NodeSet is the result of a structural query: every matched node, each
// paired with the context node it was reached from, in the order the query
// produced them (see each Find* method). Entries do not carry the nodes'
// internal store addresses. A NodeSet is a plain value - callers own it
// outright and may retain it past the scan that built it.
type NodeSet struct {
	Edges []ContextEdge
}

// Len reports the number of matched nodes.
func (s NodeSet) Len() int { return len(s.Edges) }

// IDs returns the matched node identifiers in result order.
func (s NodeSet) IDs() []nodeid.Id {
	out := make([]nodeid.Id, len(s.Edges))
	for i, e := range s.Edges {
		out[i] = e.Matched.ID
	}
	return out
}

// Selector narrows a structural scan to a subset of candidate documents or
// context nodes. A nil Selector means "every document, every context".
type Selector struct {
	// DocIDs restricts the scan to these documents. Empty or nil means
	// every document currently known to the index - the index discovers
	// that set itself by enumerating the doc-key region, since a
	// Selector carries no such enumeration.
	DocIDs []uint32

	// Context restricts descendant/ancestor scans to those rooted at (or
	// leading to) one of these nodes, keyed by the owning document id.
	// For descendant scans a nil map means unrestricted; ancestor scans
	// walk only from the nodes listed here, so a nil map yields no matches.
	Context map[uint32][]nodeid.Id
}

// explicitDocIDs returns the selector's DocIDs and whether it named any:
// ok is false when the caller must fall back to enumerating every known
// document (a nil Selector, or one with an empty DocIDs).
func (s *Selector) explicitDocIDs() (ids []uint32, ok bool) {
	if s == nil || len(s.DocIDs) == 0 {
		return nil, false
	}
	return s.DocIDs, true
}

func (s *Selector) contextFor(docID uint32) ([]nodeid.Id, bool) {
	if s == nil || s.Context == nil {
		return nil, false
	}
	ctx, ok := s.Context[docID]
	return ctx, ok
}
