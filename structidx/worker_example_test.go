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

package structidx_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nxdb/structidx"
	"github.com/nxdb/structidx/kv/boltkv"
	"github.com/nxdb/structidx/nodeid"
	"github.com/nxdb/structidx/symtab"
)

func newTestIndex(t *testing.T) (*structidx.Index, func()) {
	t.Helper()
	dir := t.TempDir()

	store, err := boltkv.Open(filepath.Join(dir, "idx.db"))
	require.NoError(t, err)

	symPath := filepath.Join(dir, "sym.db")
	symStore, err := symtab.OpenStore(symPath)
	require.NoError(t, err)

	idx := structidx.New(store, symStore, structidx.WithMode(structidx.ModeStore))
	return idx, func() {
		require.NoError(t, store.Close())
		require.NoError(t, symStore.Close())
	}
}

// buildCatalog indexes a small "bookstore" document and flushes it:
//
//	<catalog>
//	  <book><title/><author/></book>
//	  <book><title/></book>
//	</catalog>
func buildCatalog(t *testing.T, w *structidx.Worker) {
	t.Helper()
	l := w.StreamListener()

	_, err := l.StartElement("catalog", "")
	require.NoError(t, err)

	_, err = l.StartElement("book", "")
	require.NoError(t, err)
	_, err = l.StartElement("title", "")
	require.NoError(t, err)
	l.EndElement() // title
	_, err = l.StartElement("author", "")
	require.NoError(t, err)
	l.EndElement() // author
	l.EndElement() // book

	_, err = l.StartElement("book", "")
	require.NoError(t, err)
	_, err = l.StartElement("title", "")
	require.NoError(t, err)
	l.EndElement() // title
	l.EndElement() // book

	l.EndElement() // catalog

	require.NoError(t, w.Flush(context.Background()))
}

// Scenario: findElementsByQName returns every <book> in document order.
func TestFindElementsByQNameReturnsAllMatches(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	w := idx.NewWorker(structidx.DocOf(1))
	buildCatalog(t, w)

	set, err := w.FindElementsByQName(context.Background(), structidx.KindElement, "book", "", nil)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
}

// Scenario: findDescendantsByQName restricted to the first <book> only
// sees that book's own title, not the second book's.
func TestFindDescendantsByQNameRespectsContext(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	w := idx.NewWorker(structidx.DocOf(1))
	l := w.StreamListener()

	_, err := l.StartElement("catalog", "")
	require.NoError(t, err)

	firstBookID, err := l.StartElement("book", "")
	require.NoError(t, err)
	_, err = l.StartElement("title", "")
	require.NoError(t, err)
	l.EndElement()
	l.EndElement() // first book

	_, err = l.StartElement("book", "")
	require.NoError(t, err)
	_, err = l.StartElement("title", "")
	require.NoError(t, err)
	l.EndElement()
	l.EndElement() // second book

	l.EndElement() // catalog

	require.NoError(t, w.Flush(context.Background()))

	sel := &structidx.Selector{
		Context: map[uint32][]nodeid.Id{1: {firstBookID}},
	}
	set, err := w.FindDescendantsByQName(context.Background(), structidx.KindElement, "title", "", structidx.AxisDescendant, sel)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
}

// Scenario: findDescendantsByQName on the CHILD axis only accepts direct
// children, not deeper descendants.
func TestFindDescendantsByQNameChildAxisExcludesGrandchildren(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	w := idx.NewWorker(structidx.DocOf(1))
	l := w.StreamListener()

	catalogID, err := l.StartElement("catalog", "")
	require.NoError(t, err)
	_, err = l.StartElement("book", "")
	require.NoError(t, err)
	_, err = l.StartElement("title", "")
	require.NoError(t, err)
	l.EndElement() // title
	l.EndElement() // book
	l.EndElement() // catalog

	require.NoError(t, w.Flush(context.Background()))

	sel := &structidx.Selector{Context: map[uint32][]nodeid.Id{1: {catalogID}}}

	childSet, err := w.FindDescendantsByQName(context.Background(), structidx.KindElement, "title", "", structidx.AxisChild, sel)
	require.NoError(t, err)
	require.Equal(t, 0, childSet.Len(), "title is a grandchild of catalog, not a child")

	descSet, err := w.FindDescendantsByQName(context.Background(), structidx.KindElement, "title", "", structidx.AxisDescendant, sel)
	require.NoError(t, err)
	require.Equal(t, 1, descSet.Len())
}

// Scenario: findAncestorsByQName from a <title> finds its owning <book>
// but not the sibling <book>, and never the <catalog> root (which isn't a
// <book>).
func TestFindAncestorsByQNameWalksToRoot(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	w := idx.NewWorker(structidx.DocOf(1))
	l := w.StreamListener()

	_, err := l.StartElement("catalog", "")
	require.NoError(t, err)

	_, err = l.StartElement("book", "")
	require.NoError(t, err)
	titleID, err := l.StartElement("title", "")
	require.NoError(t, err)
	l.EndElement() // title
	l.EndElement() // book

	_, err = l.StartElement("book", "")
	require.NoError(t, err)
	_, err = l.StartElement("title", "")
	require.NoError(t, err)
	l.EndElement()
	l.EndElement()

	l.EndElement() // catalog

	require.NoError(t, w.Flush(context.Background()))

	sel := &structidx.Selector{
		Context: map[uint32][]nodeid.Id{1: {titleID}},
	}
	set, err := w.FindAncestorsByQName(context.Background(), structidx.KindElement, "book", "", structidx.AxisAncestor, sel)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	set, err = w.FindAncestorsByQName(context.Background(), structidx.KindElement, "catalog", "", structidx.AxisAncestor, sel)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
}

// Scenario: findAncestorsByQName on the PARENT axis stops at the immediate
// parent, never reaching the grandparent <catalog>.
func TestFindAncestorsByQNameParentAxisStopsAtOneHop(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	w := idx.NewWorker(structidx.DocOf(1))
	l := w.StreamListener()

	_, err := l.StartElement("catalog", "")
	require.NoError(t, err)
	_, err = l.StartElement("book", "")
	require.NoError(t, err)
	titleID, err := l.StartElement("title", "")
	require.NoError(t, err)
	l.EndElement() // title
	l.EndElement() // book
	l.EndElement() // catalog

	require.NoError(t, w.Flush(context.Background()))

	sel := &structidx.Selector{Context: map[uint32][]nodeid.Id{1: {titleID}}}

	parentSet, err := w.FindAncestorsByQName(context.Background(), structidx.KindElement, "catalog", "", structidx.AxisParent, sel)
	require.NoError(t, err)
	require.Equal(t, 0, parentSet.Len(), "catalog is a grandparent of title, not its parent")

	ancestorSet, err := w.FindAncestorsByQName(context.Background(), structidx.KindElement, "catalog", "", structidx.AxisAncestor, sel)
	require.NoError(t, err)
	require.Equal(t, 1, ancestorSet.Len())
}

// Scenario: removing a document clears all four of its indexed names.
func TestRemoveDocumentClearsEverything(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	w := idx.NewWorker(structidx.DocOf(1))
	buildCatalog(t, w)

	require.NoError(t, w.RemoveDocument(context.Background()))

	set, err := w.FindElementsByQName(context.Background(), structidx.KindElement, "book", "", nil)
	require.NoError(t, err)
	require.Equal(t, 0, set.Len())
}

// Scenario: pending writes only become visible to readers after Flush.
func TestPendingWritesRequireFlush(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	w := idx.NewWorker(structidx.DocOf(7), structidx.WithMode(structidx.ModeStore))
	l := w.StreamListener()
	_, err := l.StartElement("catalog", "")
	require.NoError(t, err)
	_, err = l.StartElement("book", "")
	require.NoError(t, err)
	l.EndElement()
	_, err = l.StartElement("book", "")
	require.NoError(t, err)
	l.EndElement()
	l.EndElement()

	set, err := w.FindElementsByQName(context.Background(), structidx.KindElement, "book", "", nil)
	require.NoError(t, err)
	require.Equal(t, 0, set.Len(), "unflushed writes must not be visible")

	require.NoError(t, w.Flush(context.Background()))

	set, err = w.FindElementsByQName(context.Background(), structidx.KindElement, "book", "", nil)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
}

// Scenario: ModeRemoveSomeNodes deletes only the buffered nodes, leaving
// the document's doc-key inventory (and its other nodes) intact.
func TestRemoveSomeNodesDeletesOnlyBufferedNodes(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	w := idx.NewWorker(structidx.DocOf(3))
	buildCatalog(t, w)

	set, err := w.FindElementsByQName(context.Background(), structidx.KindElement, "book", "", nil)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	// Re-feed the first <book> at its own NodeId [1,1]; a fresh Listener
	// would number its first element [1] instead.
	w.SetMode(structidx.ModeRemoveSomeNodes)
	err = w.SetDocument(structidx.NodeProxy{
		DocID:     3,
		ID:        nodeid.New(1, 1),
		Kind:      structidx.KindElement,
		LocalName: "book",
	})
	require.NoError(t, err)
	require.NoError(t, w.Flush(context.Background()))

	set, err = w.FindElementsByQName(context.Background(), structidx.KindElement, "book", "", nil)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len(), "only the re-streamed book node should be removed")
}

// Scenario: SetDocument rejects calls made while the worker is in
// ModeUnknown, the zero value of a worker with no mode set explicitly.
func TestSetDocumentRejectsUnknownMode(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	w := idx.NewWorker(structidx.DocOf(9), structidx.WithMode(structidx.ModeUnknown))
	_, err := w.StreamListener().StartElement("catalog", "")
	require.Error(t, err)
}

// Scenario: findElementsByQName restricted to a selector of document ids
// only sees matches from those documents.
func TestFindElementsByQNameRespectsDocSelector(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	buildCatalog(t, idx.NewWorker(structidx.DocOf(1)))
	buildCatalog(t, idx.NewWorker(structidx.DocOf(2)))

	sel := &structidx.Selector{DocIDs: []uint32{2}}
	w := idx.NewWorker(structidx.DocOf(2))
	set, err := w.FindElementsByQName(context.Background(), structidx.KindElement, "book", "", sel)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	for _, e := range set.Edges {
		require.Equal(t, uint32(2), e.Matched.DocID)
	}
}

// Scenario: a nil selector falls back to enumerating every document the
// index currently knows about, not zero documents.
func TestFindElementsByQNameNilSelectorScansAllKnownDocuments(t *testing.T) {
	idx, cleanup := newTestIndex(t)
	defer cleanup()

	buildCatalog(t, idx.NewWorker(structidx.DocOf(1)))
	buildCatalog(t, idx.NewWorker(structidx.DocOf(2)))

	w := idx.NewWorker(structidx.DocOf(1))
	set, err := w.FindElementsByQName(context.Background(), structidx.KindElement, "book", "", nil)
	require.NoError(t, err)
	require.Equal(t, 4, set.Len())
}
