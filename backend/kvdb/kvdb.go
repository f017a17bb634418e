// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
package kvdb

import (
	"fmt"

	"github.com/Fantom-foundation/vtree/backend"
)

// Backend names a key-value store implementation.
type Backend string

const (
	LevelDbBackend Backend = "leveldb"
	PebbleBackend  Backend = "pebble"
)

// Backends lists all supported backends.
var Backends = []Backend{LevelDbBackend, PebbleBackend}

// ParseBackend converts a backend name into a Backend.
func ParseBackend(name string) (Backend, error) {
	for _, cur := range Backends {
		if string(cur) == name {
			return cur, nil
		}
	}
	return "", fmt.Errorf("unknown database backend %q, supported: %v", name, Backends)
}

// Open opens or creates a database of the given backend in the given directory.
func Open(kind Backend, path string) (backend.Database, error) {
	switch kind {
	case LevelDbBackend:
		return OpenLevelDb(path, nil)
	case PebbleBackend:
		return OpenPebbleDb(path)
	}
	return nil, fmt.Errorf("unknown database backend %q", kind)
}

// OpenInMemory creates a new, empty in-memory database of the given backend.
func OpenInMemory(kind Backend) (backend.Database, error) {
	switch kind {
	case LevelDbBackend:
		return NewMemoryLevelDb()
	case PebbleBackend:
		return NewMemoryPebbleDb()
	}
	return nil, fmt.Errorf("unknown database backend %q", kind)
}
