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

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatchListener marks the value-matching entry points as
	// deliberately unimplemented: this index only answers structural
	// (path) queries. It never participates in text/value matching.
	ErrNoMatchListener = errors.New("structidx: structural index has no match listener")

	// ErrScanTerminated names a scan cut short by context cancellation.
	// The public Find* methods do not return it: a scan whose context is
	// cancelled mid-flight ends early and its partial NodeSet is returned
	// with a nil error.
	ErrScanTerminated = errors.New("structidx: scan terminated")
)

// documentMismatchError is a programming-error panic value: the worker's
// current document does not match the document embedded in an incoming
// proxy or operation. Unlike the sentinel errors above, this is never
// returned - it is raised with panic, per the spec's error-handling design
// (invariant violations on ingest are not caught inside the index).
type documentMismatchError struct {
	want, got uint32
}

func (e documentMismatchError) Error() string {
	return fmt.Sprintf("structidx: worker bound to document %d but got proxy for document %d", e.want, e.got)
}
