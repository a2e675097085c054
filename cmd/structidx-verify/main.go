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

// Command structidx-verify builds a synthetic document, indexes it into a
// throwaway store, and checks that FindElementsByQName returns, for every
// element name in the document, as many nodes as a brute-force in-memory
// count. The descendant and ancestor queries are not checked. It is
// meant as an offline smoke test against a real backend (bolt or mdbx)
// before rolling out a build, not as a substitute for the package's own
// test suite.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/nxdb/structidx"
	"github.com/nxdb/structidx/internal/xlog"
	"github.com/nxdb/structidx/kv"
	"github.com/nxdb/structidx/kv/boltkv"
	"github.com/nxdb/structidx/kv/mdbxkv"
	"github.com/nxdb/structidx/symtab"
)

func main() {
	app := &cli.App{
		Name:  "structidx-verify",
		Usage: "index a synthetic document and cross-check structural query results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "backend", Value: "bolt", Usage: "storage backend: bolt or mdbx"},
			&cli.StringFlag{Name: "datadir", Value: "", Usage: "directory to hold the scratch store; defaults to a temp dir"},
			&cli.IntFlag{Name: "nodes", Value: 5000, Usage: "approximate number of elements to generate"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "PRNG seed for the synthetic document"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		xlog.Error("structidx-verify failed", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	dir := c.String("datadir")
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "structidx-verify-")
		if err != nil {
			return fmt.Errorf("make scratch dir: %w", err)
		}
		defer os.RemoveAll(dir)
	}

	store, closeStore, err := openStore(c.String("backend"), dir)
	if err != nil {
		return err
	}
	defer closeStore()

	symStore, err := symtab.OpenStore(filepath.Join(dir, "symbols.db"))
	if err != nil {
		return fmt.Errorf("open symbol table: %w", err)
	}
	defer symStore.Close()

	idx := structidx.New(store, symStore, structidx.WithMode(structidx.ModeStore))
	w := idx.NewWorker(structidx.DocOf(1))

	doc, err := generateDocument(rand.New(rand.NewSource(c.Int64("seed"))), c.Int("nodes"))
	if err != nil {
		return fmt.Errorf("generate document: %w", err)
	}

	if err := replay(w, doc); err != nil {
		return fmt.Errorf("replay document: %w", err)
	}

	ctx := context.Background()
	for _, qname := range doc.distinctNames() {
		want := doc.bruteForceElements(qname)
		got, err := w.FindElementsByQName(ctx, structidx.KindElement, qname, "", nil)
		if err != nil {
			return fmt.Errorf("findElementsByQName(%s): %w", qname, err)
		}
		if got.Len() != len(want) {
			return fmt.Errorf("findElementsByQName(%s): got %d, want %d", qname, got.Len(), len(want))
		}
	}

	xlog.Info("structidx-verify OK", "backend", c.String("backend"), "nodes", doc.count, "names", len(doc.distinctNames()))
	return nil
}

func openStore(backend, dir string) (kv.OrderedStore, func(), error) {
	switch backend {
	case "mdbx":
		s, err := mdbxkv.Open(filepath.Join(dir, "structidx.mdbx"), mdbxkv.Options{})
		if err != nil {
			return nil, nil, fmt.Errorf("open mdbx store: %w", err)
		}
		return s, func() { s.Close() }, nil
	case "bolt", "":
		s, err := boltkv.Open(filepath.Join(dir, "structidx.bolt"))
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt store: %w", err)
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}
