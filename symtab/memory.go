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

package symtab

import "sync"

// Memory is a process-local, non-durable Table, used by the keycodec tests;
// production deployments durable-ify symbols with Store instead.
type Memory struct {
	mu sync.RWMutex

	names  map[string]uint16
	byName []string // index i holds the name for symbol i+1

	namespaces  map[string]uint16
	byNamespace []string
}

// NewMemory returns an empty, ready to use in-memory symbol table.
func NewMemory() *Memory {
	return &Memory{
		names:      make(map[string]uint16),
		namespaces: make(map[string]uint16),
	}
}

func (m *Memory) GetSymbol(localName string) (uint16, error) {
	m.mu.RLock()
	if sym, ok := m.names[localName]; ok {
		m.mu.RUnlock()
		return sym, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if sym, ok := m.names[localName]; ok {
		return sym, nil
	}
	if len(m.byName) >= int(^uint16(0)) {
		return NoSymbol, ErrSymbolSpaceExhausted
	}
	m.byName = append(m.byName, localName)
	sym := uint16(len(m.byName))
	m.names[localName] = sym
	return sym, nil
}

func (m *Memory) GetNsSymbol(uri string) (uint16, error) {
	if uri == "" {
		return NoSymbol, nil
	}
	m.mu.RLock()
	if sym, ok := m.namespaces[uri]; ok {
		m.mu.RUnlock()
		return sym, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if sym, ok := m.namespaces[uri]; ok {
		return sym, nil
	}
	if len(m.byNamespace) >= int(^uint16(0)) {
		return NoSymbol, ErrSymbolSpaceExhausted
	}
	m.byNamespace = append(m.byNamespace, uri)
	sym := uint16(len(m.byNamespace))
	m.namespaces[uri] = sym
	return sym, nil
}

func (m *Memory) GetName(sym uint16) (string, bool) {
	if sym == NoSymbol {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := int(sym) - 1
	if idx < 0 || idx >= len(m.byName) {
		return "", false
	}
	return m.byName[idx], true
}

func (m *Memory) GetNamespace(nsSym uint16) (string, bool) {
	if nsSym == NoSymbol {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := int(nsSym) - 1
	if idx < 0 || idx >= len(m.byNamespace) {
		return "", false
	}
	return m.byNamespace[idx], true
}
