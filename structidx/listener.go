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

// Listener drives a Worker from a depth-first parse event sequence
// (StartElement/Attribute/EndElement), assigning each element a NodeId from
// its position among its siblings and pushing a new level onto the
// ancestor stack for its children. Attributes share their owning element's
// NodeId plus one trailing level for their position among that element's
// children; attributes and child elements draw from the same sibling
// counter, matching how the structural index addresses them as ordinary
// indexed nodes rather than element properties.
//
// A Listener is single-use: construct one per document parse via
// Worker.StreamListener, drive it start-to-end, and discard it.
type Listener struct {
	w  *Worker
	// stack holds the sibling-position path down to the current open
	// element; stack[len(stack)-1] is that element's own position.
	stack []uint32
	// childCount tracks, per open level, how many children have been
	// assigned so far, so the next one gets the next sibling position.
	childCount []uint32
}

// StartElement assigns localName/namespace the next sibling NodeId under
// the current open element (or at the document root if none is open), logs
// it into the worker, and descends the ancestor stack so subsequent
// children are addressed beneath it.
func (l *Listener) StartElement(localName, namespace string) (nodeid.Id, error) {
	id := l.nextChildID()
	l.stack = append(l.stack, id.Levels()[len(id.Levels())-1])
	l.childCount = append(l.childCount, 0)

	if err := l.w.SetDocument(NodeProxy{
		DocID:     l.w.doc,
		ID:        id,
		Kind:      KindElement,
		LocalName: localName,
		Namespace: namespace,
	}); err != nil {
		return nodeid.Id{}, err
	}
	return id, nil
}

// Attribute assigns localName/namespace the next sibling NodeId under the
// current open element and indexes it as an attribute node.
func (l *Listener) Attribute(localName, namespace string) (nodeid.Id, error) {
	id := l.nextChildID()

	if err := l.w.SetDocument(NodeProxy{
		DocID:     l.w.doc,
		ID:        id,
		Kind:      KindAttribute,
		LocalName: localName,
		Namespace: namespace,
	}); err != nil {
		return nodeid.Id{}, err
	}
	return id, nil
}

// EndElement closes the current open element, popping the ancestor stack
// so the next sibling at the parent's level gets the right position.
func (l *Listener) EndElement() {
	if len(l.stack) == 0 {
		panic("structidx: EndElement with no open element")
	}
	l.stack = l.stack[:len(l.stack)-1]
	l.childCount = l.childCount[:len(l.childCount)-1]
}

// nextChildID assigns and returns the NodeId for the next child of the
// currently open element (or the first child of the document root),
// bumping that level's sibling counter. StartElement additionally pushes a
// new stack level afterward for its own children; Attribute does not.
func (l *Listener) nextChildID() nodeid.Id {
	var next uint32
	if len(l.childCount) > 0 {
		l.childCount[len(l.childCount)-1]++
		next = l.childCount[len(l.childCount)-1]
	} else {
		next = 1
	}
	levels := make([]uint32, len(l.stack)+1)
	copy(levels, l.stack)
	levels[len(levels)-1] = next
	return nodeid.New(levels...)
}
