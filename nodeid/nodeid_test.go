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

package nodeid

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.SliceOfN(rapid.Uint32Range(1, 4000), 1, 8).Draw(t, "levels")
		id := New(n...)
		buf := make([]byte, id.Size())
		id.Serialize(buf, 0)
		got, err := FromSerialized(id.Units(), buf, 0)
		require.NoError(t, err)
		require.True(t, id.Equal(got), "round trip mismatch: %v != %v", id, got)
	})
}

// R1: encode(decode(x)) == x on the node-id field.
func TestEncodeDecodeIdentity(t *testing.T) {
	id := New(1, 2, 1)
	enc := id.Encode()
	got, err := FromSerialized(id.Units(), enc, 0)
	require.NoError(t, err)
	require.True(t, id.Equal(got))
}

// P4 (nodeid half): for any ancestor A and descendant D, serialize(A) <
// serialize(D) < serialize(A.NextSibling()).
func TestAncestorDescendantOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ancestorLevels := rapid.SliceOfN(rapid.Uint32Range(1, 100), 1, 4).Draw(t, "ancestor")
		extra := rapid.SliceOfN(rapid.Uint32Range(1, 100), 1, 4).Draw(t, "extra")
		ancestor := New(ancestorLevels...)
		descendant := New(append(append([]uint32{}, ancestorLevels...), extra...)...)

		aBytes := ancestor.Encode()
		dBytes := descendant.Encode()
		nextBytes := ancestor.NextSibling().Encode()

		require.True(t, bytes.Compare(aBytes, dBytes) < 0, "ancestor bytes must sort before descendant bytes")
		require.True(t, bytes.Compare(dBytes, nextBytes) < 0, "descendant bytes must sort before ancestor.NextSibling bytes")
	})
}

func TestSiblingOrdering(t *testing.T) {
	a := New(1, 2)
	b := New(1, 3)
	require.True(t, bytes.Compare(a.Encode(), b.Encode()) < 0)
	require.Equal(t, IsSibling, a.ComputeRelation(b))
}

func TestComputeRelation(t *testing.T) {
	root := New(1)
	child := New(1, 2)
	grandchild := New(1, 2, 1)
	other := New(2)

	require.Equal(t, Self, root.ComputeRelation(root))
	require.Equal(t, IsChild, child.ComputeRelation(root))
	require.Equal(t, IsDescendant, grandchild.ComputeRelation(root))
	require.Equal(t, IsParent, root.ComputeRelation(child))
	require.Equal(t, IsAncestor, root.ComputeRelation(grandchild))
	require.Equal(t, IsSibling, root.ComputeRelation(other))
}

func TestParentIdOfDirectChildIsDocumentNode(t *testing.T) {
	child := New(5)
	require.True(t, child.ParentId().IsDocumentNode())
}

func TestNextSiblingIsTrueSiblingWhenOneExists(t *testing.T) {
	n := New(1, 4)
	sibling := New(1, 5)
	require.True(t, n.NextSibling().Equal(sibling))
}
