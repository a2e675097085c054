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

import "context"

// MatchElementsByQName always fails with ErrNoMatchListener: the
// structural index has no match listener and never will. It exists only
// so callers migrating from a value-matching index get a clear, typed
// error at the call site instead of a missing method or a silent false.
func (w *Worker) MatchElementsByQName(_ context.Context, _ IndexKind, _, _ string, _ *Selector) (NodeSet, error) {
	return NodeSet{}, ErrNoMatchListener
}

// MatchDescendantsByQName always fails with ErrNoMatchListener. See
// MatchElementsByQName.
func (w *Worker) MatchDescendantsByQName(_ context.Context, _ IndexKind, _, _ string, _ Axis, _ *Selector) (NodeSet, error) {
	return NodeSet{}, ErrNoMatchListener
}
