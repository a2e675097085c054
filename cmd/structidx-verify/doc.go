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

package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/nxdb/structidx"
)

// syntheticNode is one generated element, flattened in document order with
// its nesting depth so replay can drive StartElement/EndElement correctly.
type syntheticNode struct {
	name  string
	depth int
}

// syntheticDocument is a generated tree plus its total node count; the
// per-name brute-force counts are derived from nodes directly, so
// verification never has to trust the index it is checking.
type syntheticDocument struct {
	nodes []syntheticNode
	count int
}

var elementNames = []string{"a", "b", "c", "d", "e", "leaf", "branch", "root"}

// generateDocument builds a random, well-formed nesting of elements with
// roughly n total nodes, using rng for all choices so a fixed seed
// reproduces the same document.
func generateDocument(rng *rand.Rand, n int) (*syntheticDocument, error) {
	if n <= 0 {
		return nil, fmt.Errorf("nodes must be positive, got %d", n)
	}
	doc := &syntheticDocument{}
	depth := 0
	maxDepth := 12

	for doc.count < n {
		// The first node is the single root at depth 0; every later node
		// nests beneath it. Randomly nest deeper, stay, or pop back up,
		// biased toward staying near the current depth so the tree doesn't
		// degenerate into a single long chain or a single flat level.
		switch {
		case doc.count == 0:
		case depth < maxDepth && rng.Intn(3) == 0:
			depth++
		case depth > 1 && rng.Intn(4) == 0:
			depth--
		}
		if doc.count > 0 && depth == 0 {
			depth = 1
		}
		name := elementNames[rng.Intn(len(elementNames))]
		doc.nodes = append(doc.nodes, syntheticNode{name: name, depth: depth})
		doc.count++
	}
	return doc, nil
}

// distinctNames returns every element name that appears in the document.
func (d *syntheticDocument) distinctNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range d.nodes {
		if !seen[n.name] {
			seen[n.name] = true
			out = append(out, n.name)
		}
	}
	return out
}

// bruteForceElements returns, for each node named `name`, a placeholder
// entry - the count is what matters for cross-checking the index's result
// length, since synthetic nodes carry no other distinguishing content.
func (d *syntheticDocument) bruteForceElements(name string) []struct{} {
	var out []struct{}
	for _, n := range d.nodes {
		if n.name == name {
			out = append(out, struct{}{})
		}
	}
	return out
}

// replay drives w's Listener through doc's flattened node sequence,
// opening and closing elements as depth rises and falls between
// consecutive nodes.
func replay(w *structidx.Worker, doc *syntheticDocument) error {
	l := w.StreamListener()
	depth := 0

	for _, n := range doc.nodes {
		for depth > n.depth {
			l.EndElement()
			depth--
		}
		if _, err := l.StartElement(n.name, ""); err != nil {
			return fmt.Errorf("start %s at depth %d: %w", n.name, n.depth, err)
		}
		depth = n.depth + 1
	}
	for depth > 0 {
		l.EndElement()
		depth--
	}
	return w.Flush(context.Background())
}
