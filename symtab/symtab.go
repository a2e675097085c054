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

// Package symtab interns qualified-name components (local names and
// namespace URIs) into fixed-width 16-bit symbols. Symbols are assigned
// monotonically starting at 1; 0 (NoSymbol) is reserved and never handed
// out. The table is append-only: once assigned, a symbol must never be
// reused for a different string, because every key the structural index
// stores embeds symbols directly. A reimplementation that garbage-collects
// symbols would have to rewrite the whole index.
package symtab

import "errors"

// NoSymbol is the reserved zero value. GetSymbol never returns it on
// success; GetNsSymbol returns it for the empty namespace URI.
const NoSymbol uint16 = 0

// ErrSymbolSpaceExhausted is returned once more than 2^16-1 distinct
// local-names or namespace URIs have been interned. Recovering from this
// is out of scope for the table; callers see it as an ordinary error.
var ErrSymbolSpaceExhausted = errors.New("symtab: symbol space exhausted")

// Table is the bidirectional interner the structural index depends on.
type Table interface {
	GetSymbol(localName string) (uint16, error)
	GetNsSymbol(uri string) (uint16, error)
	GetName(sym uint16) (string, bool)
	GetNamespace(nsSym uint16) (string, bool)
}
