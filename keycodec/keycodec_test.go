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

package keycodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/nxdb/structidx/nodeid"
	"github.com/nxdb/structidx/symtab"
)

// R1: encode then decode (type, qname, docId, nodeId) is the identity.
func TestNameKeyRoundTrip(t *testing.T) {
	table := symtab.NewMemory()
	qn, err := Intern(table, Element, "book", "")
	require.NoError(t, err)

	id := nodeid.New(1, 2)
	docID := uint32(42)
	key := EncodeNameKey(Element, qn, docID, id)

	gotDocID, err := ReadDocId(key)
	require.NoError(t, err)
	require.Equal(t, docID, gotDocID)

	value := EncodeValue(0x100, id.Units())
	gotID, err := ReadNodeId(key, value)
	require.NoError(t, err)
	require.True(t, id.Equal(gotID))
}

func TestDocKeyRoundTrip(t *testing.T) {
	table := symtab.NewMemory()
	qn, err := Intern(table, Attribute, "id", "urn:example")
	require.NoError(t, err)

	key := EncodeDocKey(Attribute, 7, qn)
	require.Len(t, key, DocKeyLen)

	typ, gotQN, docID, err := ReadQName(key)
	require.NoError(t, err)
	require.Equal(t, Attribute, typ)
	require.Equal(t, qn, gotQN)
	require.Equal(t, uint32(7), docID)
}

// P3: the encoded value's piggybacked bits reconstruct Units() exactly,
// for a range of realistic node depths.
func TestValueRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		levels := rapid.SliceOfN(rapid.Uint32Range(1, 500), 1, 10).Draw(t, "levels")
		id := nodeid.New(levels...)
		addr := rapid.Uint64Range(0, 0x00FFFFFFFFFFFFFF).Draw(t, "addr")

		value := EncodeValue(addr, id.Units())
		keyLen := NameKeyLen + id.Size()

		gotAddr, gotUnits := DecodeValue(value, keyLen)
		require.Equal(t, addr, gotAddr)
		require.Equal(t, id.Units(), gotUnits)
	})
}

// The key prefix used as a scan lower bound must be an exact prefix of
// every full name-key for the same (type, qname, docId).
func TestNameKeyPrefixIsAPrefix(t *testing.T) {
	table := symtab.NewMemory()
	qn, err := Intern(table, Element, "book", "")
	require.NoError(t, err)

	prefix := EncodeNameKeyPrefix(Element, qn, 42)
	full := EncodeNameKey(Element, qn, 42, nodeid.New(3))
	require.True(t, bytes.HasPrefix(full, prefix))
	require.Len(t, prefix, NameKeyLen)
}

// Doc-keys and name-keys must occupy disjoint key regions.
func TestKeyRegionsDisjoint(t *testing.T) {
	table := symtab.NewMemory()
	qn, err := Intern(table, Element, "book", "")
	require.NoError(t, err)

	nameKey := EncodeNameKey(Element, qn, 1, nodeid.New(1))
	docKey := EncodeDocKey(Element, 1, qn)
	require.NotEqual(t, nameKey[0], docKey[0])
	require.Less(t, nameKey[0], DocKeyPrefix)
}
