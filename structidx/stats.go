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

// WorkerStats reports a worker's in-memory buffering state, useful for
// callers deciding whether to force a Flush (e.g. before a checkpoint).
type WorkerStats struct {
	DocId     uint32
	Mode      Mode
	Pending   int
	Threshold int
}

// Stats returns a snapshot of w's current buffering state.
func (w *Worker) Stats() WorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WorkerStats{
		DocId:     w.doc,
		Mode:      w.mode,
		Pending:   w.pending.Len(),
		Threshold: w.thresh,
	}
}
