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
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nxdb/structidx/internal/xlog"
)

// reindexProgressInterval matches the cadence the original snapshot-sync
// loop polled its downloader at; a full reindex is the closest thing this
// package has to that long-running, want-to-see-it-moving operation.
const reindexProgressInterval = 8 * time.Second

// NodeSource yields the nodes of a single document to be (re-)indexed, in
// document order. A Reindexer calls Next repeatedly until it returns
// ok=false; err stops the reindex immediately.
type NodeSource interface {
	Next() (proxy NodeProxy, ok bool, err error)
}

// Reindexer bulk-loads one or more documents into an Index, logging
// periodic progress the way a long-running sync job would rather than
// staying silent until it either finishes or hangs.
type Reindexer struct {
	idx *Index
	log *zap.SugaredLogger
}

func NewReindexer(idx *Index) *Reindexer {
	return &Reindexer{idx: idx, log: xlog.Named("structidx.reindex")}
}

// ReindexDocument drains src into a single Worker for doc, flushing in
// Options-sized batches and logging progress every reindexProgressInterval
// until src is exhausted.
func (r *Reindexer) ReindexDocument(ctx context.Context, doc Document, src NodeSource, opts ...Option) error {
	w := r.idx.NewWorker(doc, opts...)

	ticker := time.NewTicker(reindexProgressInterval)
	defer ticker.Stop()

	var count int
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("structidx: reindex document %d: %w", doc.DocId(), ctx.Err())
		case <-ticker.C:
			r.log.Infow("reindex in progress", "docId", doc.DocId(), "nodes", count, "elapsed", time.Since(start).String())
		default:
		}

		proxy, ok, err := src.Next()
		if err != nil {
			return fmt.Errorf("structidx: reindex document %d: read node: %w", doc.DocId(), err)
		}
		if !ok {
			break
		}
		if err := w.SetDocument(proxy); err != nil {
			return fmt.Errorf("structidx: reindex document %d: index node: %w", doc.DocId(), err)
		}
		count++
	}

	if err := w.Flush(ctx); err != nil {
		return fmt.Errorf("structidx: reindex document %d: final flush: %w", doc.DocId(), err)
	}
	r.log.Infow("reindex complete", "docId", doc.DocId(), "nodes", count, "elapsed", time.Since(start).String())
	return nil
}
