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

// Axis is an XPath axis. Only the values branching inside
// FindDescendantsByQName and FindAncestorsByQName affect index behavior;
// the rest exist so callers can pass through whatever axis they were
// actually evaluating without a translation layer.
type Axis int

const (
	AxisSelf Axis = iota
	AxisParent
	AxisChild
	AxisAttribute
	AxisDescendant
	AxisDescendantSelf
	AxisDescendantAttribute
	AxisAncestor
	AxisAncestorSelf
)

func (a Axis) String() string {
	switch a {
	case AxisSelf:
		return "self"
	case AxisParent:
		return "parent"
	case AxisChild:
		return "child"
	case AxisAttribute:
		return "attribute"
	case AxisDescendant:
		return "descendant"
	case AxisDescendantSelf:
		return "descendant-or-self"
	case AxisDescendantAttribute:
		return "descendant-attribute"
	case AxisAncestor:
		return "ancestor"
	case AxisAncestorSelf:
		return "ancestor-or-self"
	default:
		return "unknown-axis"
	}
}
