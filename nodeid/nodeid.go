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

// Package nodeid implements the hierarchical, order-preserving node
// identifier used throughout the structural index. A NodeId encodes the
// path of sibling positions from the document root down to a node; its
// serialized byte form sorts in document order and puts every descendant
// of a node inside the half-open byte range [serialize(n), serialize(n.NextSibling())).
//
// Each level of the path is packed into a self-terminating run of 4-bit
// digits: digits 0-14 end a level, digit 15 (0xF) means "carry into the
// next digit group". This is a prefix-free, strictly monotonic code, so
// concatenating levels and comparing the result as a big-endian byte
// string reproduces both sibling order within a level and ancestor/
// descendant order across levels - the property the whole index depends
// on for range scans to mean what they claim to mean.
package nodeid

import (
	"fmt"

	"github.com/nxdb/structidx/erigon-lib/common/math"
)

// Id is the hierarchical node identifier. The zero value is DocumentNode.
type Id struct {
	levels []uint32
}

// DocumentNode is the distinguished identifier of the document root.
var DocumentNode = Id{}

// Relation is the result of comparing two node identifiers.
type Relation int

const (
	Unrelated Relation = iota
	Self
	IsChild
	IsDescendant
	IsParent
	IsAncestor
	IsSibling
)

func (r Relation) String() string {
	switch r {
	case Self:
		return "SELF"
	case IsChild:
		return "IS_CHILD"
	case IsDescendant:
		return "IS_DESCENDANT"
	case IsParent:
		return "IS_PARENT"
	case IsAncestor:
		return "IS_ANCESTOR"
	case IsSibling:
		return "IS_SIBLING"
	default:
		return "UNRELATED"
	}
}

// New builds a node identifier from a path of 1-based sibling positions,
// one per level below the document root. An empty path is DocumentNode.
func New(levels ...uint32) Id {
	if len(levels) == 0 {
		return DocumentNode
	}
	cp := make([]uint32, len(levels))
	copy(cp, levels)
	return Id{levels: cp}
}

// IsDocumentNode reports whether n is the document-root sentinel.
func (n Id) IsDocumentNode() bool { return len(n.levels) == 0 }

// Levels returns the path of sibling positions, root-to-node. Callers must
// not mutate the returned slice.
func (n Id) Levels() []uint32 { return n.levels }

func (n Id) Equal(other Id) bool {
	if len(n.levels) != len(other.levels) {
		return false
	}
	for i, v := range n.levels {
		if other.levels[i] != v {
			return false
		}
	}
	return true
}

func (n Id) String() string {
	if n.IsDocumentNode() {
		return "DOCUMENT_NODE"
	}
	return fmt.Sprintf("%v", n.levels)
}

// nibbles expands the path into its packed 4-bit digit sequence.
func (n Id) nibbles() []byte {
	out := make([]byte, 0, len(n.levels)*2)
	for _, lvl := range n.levels {
		v := lvl
		for v > 14 {
			out = append(out, 0xF)
			v -= 15
		}
		out = append(out, byte(v))
	}
	return out
}

// Units returns the number of significant bits in the serialized form.
func (n Id) Units() int { return len(n.nibbles()) * 4 }

// Size returns the number of whole bytes Serialize needs.
func (n Id) Size() int { return math.CeilDiv(len(n.nibbles()), 2) }

// Serialize packs n into buf[offset:offset+n.Size()] and returns the
// number of bytes written. Unused low bits of the final byte are zero.
func (n Id) Serialize(buf []byte, offset int) int {
	nb := n.nibbles()
	size := math.CeilDiv(len(nb), 2)
	for i := 0; i < size; i++ {
		hi := nb[i*2]
		var lo byte
		if i*2+1 < len(nb) {
			lo = nb[i*2+1]
		}
		buf[offset+i] = hi<<4 | lo
	}
	return size
}

// Encode is a convenience wrapper around Serialize that allocates its own
// buffer.
func (n Id) Encode() []byte {
	buf := make([]byte, n.Size())
	n.Serialize(buf, 0)
	return buf
}

// FromSerialized reconstructs a node identifier from a packed bit range.
// units must be a multiple of 4 (our digit groups are always whole
// nibbles) and data[offset:] must hold at least ceil(units/8) bytes.
func FromSerialized(units int, data []byte, offset int) (Id, error) {
	if units == 0 {
		return DocumentNode, nil
	}
	if units%4 != 0 {
		return Id{}, fmt.Errorf("nodeid: units %d is not a multiple of 4", units)
	}
	nibCount := units / 4
	need := math.CeilDiv(nibCount, 2)
	if offset < 0 || offset+need > len(data) {
		return Id{}, fmt.Errorf("nodeid: serialized range [%d:%d] out of bounds (len=%d)", offset, offset+need, len(data))
	}
	var levels []uint32
	var escapes uint32
	for i := 0; i < nibCount; i++ {
		b := data[offset+i/2]
		var nb byte
		if i%2 == 0 {
			nb = b >> 4
		} else {
			nb = b & 0x0F
		}
		if nb == 0xF {
			escapes++
			continue
		}
		levels = append(levels, escapes*15+uint32(nb))
		escapes = 0
	}
	return Id{levels: levels}, nil
}

// ParentId returns the identifier of the direct parent, or DocumentNode if
// n is a direct child of the document root. Calling ParentId on
// DocumentNode itself is a programming error.
func (n Id) ParentId() Id {
	if len(n.levels) == 0 {
		panic("nodeid: ParentId of DocumentNode")
	}
	if len(n.levels) == 1 {
		return DocumentNode
	}
	return Id{levels: append([]uint32(nil), n.levels[:len(n.levels)-1]...)}
}

// NextSibling returns the smallest identifier strictly greater than every
// descendant of n. When n has a true next sibling, NextSibling returns
// exactly that sibling's identifier; otherwise it returns a well-ordered
// placeholder that is still safe to use as an exclusive range bound.
// Calling NextSibling on DocumentNode is a programming error.
func (n Id) NextSibling() Id {
	if len(n.levels) == 0 {
		panic("nodeid: NextSibling of DocumentNode")
	}
	out := append([]uint32(nil), n.levels...)
	out[len(out)-1]++
	return Id{levels: out}
}

func isPrefix(prefix, full []uint32) bool {
	if len(prefix) > len(full) {
		return false
	}
	for i, v := range prefix {
		if full[i] != v {
			return false
		}
	}
	return true
}

// ComputeRelation classifies n's relation to other, from n's point of
// view: n.ComputeRelation(other) == IsChild means n is a child of other.
func (n Id) ComputeRelation(other Id) Relation {
	if n.Equal(other) {
		return Self
	}
	if isPrefix(other.levels, n.levels) {
		if len(n.levels) == len(other.levels)+1 {
			return IsChild
		}
		return IsDescendant
	}
	if isPrefix(n.levels, other.levels) {
		if len(other.levels) == len(n.levels)+1 {
			return IsParent
		}
		return IsAncestor
	}
	if len(n.levels) == len(other.levels) && len(n.levels) > 0 {
		if isPrefix(n.levels[:len(n.levels)-1], other.levels[:len(other.levels)-1]) &&
			len(n.levels[:len(n.levels)-1]) == len(other.levels[:len(other.levels)-1]) {
			return IsSibling
		}
	}
	return Unrelated
}
