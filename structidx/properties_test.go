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
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/nxdb/structidx"
	"github.com/nxdb/structidx/kv/boltkv"
	"github.com/nxdb/structidx/symtab"
)

// P1/P2: a flat sequence of N sibling elements under one root, all sharing
// one name, is found in full by FindElementsByQName, regardless of N.
func TestPropertyFlatSiblingsAllFound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 200).Draw(t, "n")

		dir := t.TempDir()
		store, err := boltkv.Open(filepath.Join(dir, "idx.db"))
		require.NoError(t, err)
		defer store.Close()
		symStore, err := symtab.OpenStore(filepath.Join(dir, "sym.db"))
		require.NoError(t, err)
		defer symStore.Close()

		idx := structidx.New(store, symStore, structidx.WithMode(structidx.ModeStore))
		w := idx.NewWorker(structidx.DocOf(1))
		l := w.StreamListener()

		_, err = l.StartElement("root", "")
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			_, err := l.StartElement("item", "")
			require.NoError(t, err)
			l.EndElement()
		}
		l.EndElement()
		require.NoError(t, w.Flush(context.Background()))

		set, err := w.FindElementsByQName(context.Background(), structidx.KindElement, "item", "", nil)
		require.NoError(t, err)
		require.Equal(t, n, set.Len())
	})
}

// P4: within one document, results from FindElementsByQName come back in
// strictly ascending document order (sibling position order, since all
// matches here are siblings at the same level).
func TestPropertyResultsAreInDocumentOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 50).Draw(t, "n")

		dir := t.TempDir()
		store, err := boltkv.Open(filepath.Join(dir, "idx.db"))
		require.NoError(t, err)
		defer store.Close()
		symStore, err := symtab.OpenStore(filepath.Join(dir, "sym.db"))
		require.NoError(t, err)
		defer symStore.Close()

		idx := structidx.New(store, symStore, structidx.WithMode(structidx.ModeStore))
		w := idx.NewWorker(structidx.DocOf(1))
		l := w.StreamListener()

		_, err = l.StartElement("root", "")
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			_, err := l.StartElement("item", "")
			require.NoError(t, err)
			l.EndElement()
		}
		l.EndElement()
		require.NoError(t, w.Flush(context.Background()))

		set, err := w.FindElementsByQName(context.Background(), structidx.KindElement, "item", "", nil)
		require.NoError(t, err)
		require.Equal(t, n, set.Len())

		resultIDs := set.IDs()
		for i := 1; i < len(resultIDs); i++ {
			require.True(t, bytes.Compare(resultIDs[i-1].Encode(), resultIDs[i].Encode()) < 0,
				"result %d (%s) must sort before result %d (%s)", i-1, resultIDs[i-1], i, resultIDs[i])
		}
	})
}

// R2: removing a document is idempotent and leaves no trace behind for a
// second, unrelated document sharing the same qnames.
func TestPropertyRemoveDocumentIsIsolated(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")

		dir := t.TempDir()
		store, err := boltkv.Open(filepath.Join(dir, "idx.db"))
		require.NoError(t, err)
		defer store.Close()
		symStore, err := symtab.OpenStore(filepath.Join(dir, "sym.db"))
		require.NoError(t, err)
		defer symStore.Close()

		idx := structidx.New(store, symStore, structidx.WithMode(structidx.ModeStore))

		for _, doc := range []uint32{1, 2} {
			w := idx.NewWorker(structidx.DocOf(doc))
			l := w.StreamListener()
			_, err := l.StartElement("root", "")
			require.NoError(t, err)
			for i := 0; i < n; i++ {
				_, err := l.StartElement("item", "")
				require.NoError(t, err)
				l.EndElement()
			}
			l.EndElement()
			require.NoError(t, w.Flush(context.Background()))
		}

		w1 := idx.NewWorker(structidx.DocOf(1))
		require.NoError(t, w1.RemoveDocument(context.Background()))
		require.NoError(t, w1.RemoveDocument(context.Background())) // idempotent

		set, err := w1.FindElementsByQName(context.Background(), structidx.KindElement, "item", "", &structidx.Selector{DocIDs: []uint32{1, 2}})
		require.NoError(t, err)
		require.Equal(t, n, set.Len())
		for _, e := range set.Edges {
			require.Equal(t, uint32(2), e.Matched.DocID)
		}
	})
}
