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

// Package keycodec packs and unpacks the two key families the structural
// index stores: name-keys (one per indexed node) and doc-keys (a
// per-document, per-qname inventory). Every numeric field is big-endian so
// that lexicographic byte order equals numeric order equals document
// order - range scans depend on this.
package keycodec

import (
	"encoding/binary"
	"fmt"

	"github.com/nxdb/structidx/nodeid"
	"github.com/nxdb/structidx/symtab"
)

// IndexType distinguishes the two kinds of indexed nodes. Values double as
// the leading byte of a name-key, which is why ELEMENT and ATTRIBUTE must
// stay below DocKeyPrefix.
type IndexType uint8

const (
	Element   IndexType = 0x00
	Attribute IndexType = 0x01
)

// DocKeyPrefix is the leading byte of every doc-key, chosen to sit above
// both IndexType values so doc-keys occupy their own key region.
const DocKeyPrefix byte = 0x02

// NameKeyLen is the fixed-prefix length of a name-key before the
// variable-length serialized NodeId suffix.
const NameKeyLen = 9

// DocKeyLen is the fixed, total length of a doc-key.
const DocKeyLen = 10

// QName is an interned qualified name: a (type, local-name symbol,
// namespace symbol) triple. Equality is exactly this triple.
type QName struct {
	Type  IndexType
	Sym   uint16
	NsSym uint16
}

// Intern resolves a (type, localName, namespaceURI) triple into a QName,
// allocating new symbols on first sight.
func Intern(table symtab.Table, typ IndexType, localName, namespaceURI string) (QName, error) {
	sym, err := table.GetSymbol(localName)
	if err != nil {
		return QName{}, fmt.Errorf("keycodec: intern local name %q: %w", localName, err)
	}
	nsSym, err := table.GetNsSymbol(namespaceURI)
	if err != nil {
		return QName{}, fmt.Errorf("keycodec: intern namespace %q: %w", namespaceURI, err)
	}
	return QName{Type: typ, Sym: sym, NsSym: nsSym}, nil
}

// EncodeNameKeyPrefix returns the 9-byte inclusive lower bound of every
// name-key for (type, qname, docId): [type][sym be][nsSym be][docId be].
func EncodeNameKeyPrefix(typ IndexType, qn QName, docID uint32) []byte {
	buf := make([]byte, NameKeyLen)
	writeNameKeyPrefix(buf, typ, qn, docID)
	return buf
}

func writeNameKeyPrefix(buf []byte, typ IndexType, qn QName, docID uint32) {
	buf[0] = byte(typ)
	binary.BigEndian.PutUint16(buf[1:3], qn.Sym)
	binary.BigEndian.PutUint16(buf[3:5], qn.NsSym)
	binary.BigEndian.PutUint32(buf[5:9], docID)
}

// EncodeNameKey returns the full name-key for a single node.
func EncodeNameKey(typ IndexType, qn QName, docID uint32, id nodeid.Id) []byte {
	buf := make([]byte, NameKeyLen+id.Size())
	writeNameKeyPrefix(buf, typ, qn, docID)
	id.Serialize(buf, NameKeyLen)
	return buf
}

// EncodeDocKeyPrefix returns the 5-byte inclusive lower bound of every
// doc-key for docId: [0x02][docId be].
func EncodeDocKeyPrefix(docID uint32) []byte {
	buf := make([]byte, 5)
	buf[0] = DocKeyPrefix
	binary.BigEndian.PutUint32(buf[1:5], docID)
	return buf
}

// DocKeyRegionBounds returns the inclusive/exclusive bounds of the entire
// doc-key region, spanning every document and qname, for callers that need
// to enumerate every document the index currently knows about.
func DocKeyRegionBounds() (from, to []byte) {
	return []byte{DocKeyPrefix}, []byte{DocKeyPrefix + 1}
}

// EncodeDocKey returns the full 10-byte doc-key for (docId, type, qname).
func EncodeDocKey(typ IndexType, docID uint32, qn QName) []byte {
	buf := make([]byte, DocKeyLen)
	buf[0] = DocKeyPrefix
	binary.BigEndian.PutUint32(buf[1:5], docID)
	buf[5] = byte(typ)
	binary.BigEndian.PutUint16(buf[6:8], qn.Sym)
	binary.BigEndian.PutUint16(buf[8:10], qn.NsSym)
	return buf
}

// ReadDocId extracts the docId field from a name-key (bytes 5..9).
func ReadDocId(key []byte) (uint32, error) {
	if len(key) < NameKeyLen {
		return 0, fmt.Errorf("keycodec: name-key too short: %d bytes", len(key))
	}
	return binary.BigEndian.Uint32(key[5:9]), nil
}

// ReadQName extracts (type, qname, docId) from a doc-key.
func ReadQName(docKey []byte) (IndexType, QName, uint32, error) {
	if len(docKey) != DocKeyLen || docKey[0] != DocKeyPrefix {
		return 0, QName{}, 0, fmt.Errorf("keycodec: not a doc-key: % x", docKey)
	}
	docID := binary.BigEndian.Uint32(docKey[1:5])
	typ := IndexType(docKey[5])
	sym := binary.BigEndian.Uint16(docKey[6:8])
	nsSym := binary.BigEndian.Uint16(docKey[8:10])
	return typ, QName{Type: typ, Sym: sym, NsSym: nsSym}, docID, nil
}

// EncodeValue packs an internal address and a NodeId's bit-unit count into
// the store's 64-bit value: low 56 bits the address, the high byte (bits
// 56-63) the (units mod 8) piggyback, stored as 0 when units is an exact
// multiple of 8 (see DecodeValue).
func EncodeValue(address uint64, units int) uint64 {
	extra := units % 8
	return (address & 0x00FFFFFFFFFFFFFF) | (uint64(extra) << 56)
}

// DecodeValue recovers the internal address and the NodeId's total bit
// count given the stored value and the length of the name-key it came
// from (keyLen, including the 9-byte fixed prefix).
func DecodeValue(value uint64, keyLen int) (address uint64, units int) {
	address = value & 0x00FFFFFFFFFFFFFF
	bits := int((value >> 56) & 0xFF)
	if bits == 0 {
		bits = 8
	}
	nodeIDBytes := keyLen - NameKeyLen
	units = 8*(nodeIDBytes-1) + bits
	return address, units
}

// ReadNodeId reconstructs the NodeId encoded in a name-key's suffix, given
// the raw store value recovered alongside it.
func ReadNodeId(key []byte, value uint64) (nodeid.Id, error) {
	if len(key) <= NameKeyLen {
		return nodeid.Id{}, fmt.Errorf("keycodec: name-key has no nodeId suffix: %d bytes", len(key))
	}
	_, units := DecodeValue(value, len(key))
	return nodeid.FromSerialized(units, key, NameKeyLen)
}
