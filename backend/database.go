// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
package backend

import (
	"github.com/Fantom-foundation/vtree/common"
)

//go:generate mockgen -source database.go -destination database_mocks.go -package backend

// TableSpace divide key-value storage into spaces by adding a prefix to the key.
type TableSpace byte

const (
	// NodeKey is a tablespace for versioned tree nodes.
	NodeKey TableSpace = 'N'
	// StaleKeyKey is a tablespace for records of nodes superseded by a later version.
	StaleKeyKey TableSpace = 'S'
	// ManifestKey is a tablespace holding the tree manifest.
	ManifestKey TableSpace = 'M'
	// RepairDataKey is a tablespace holding the progress of the stale keys repair.
	RepairDataKey TableSpace = 'R'
	// PrunerDataKey is a tablespace holding the progress of the pruner.
	PrunerDataKey TableSpace = 'P'
)

// ErrNotFound is returned by Database.Get if the requested key is absent.
const ErrNotFound = common.ConstError("key not found")

// Database is a minimal ordered key-value store abstraction shared by all
// persistent backends. Implementations must support concurrent reads while
// batches are written.
type Database interface {
	Reader

	// NewBatch creates a batch collecting updates to be applied atomically.
	NewBatch() Batch

	// Close releases all resources held by the database.
	Close() error
}

// Reader covers the read-only operations of a Database.
type Reader interface {
	// Get returns the value stored for the given key or ErrNotFound. The
	// returned slice is owned by the caller.
	Get(key []byte) ([]byte, error)

	// Has returns true if the database contains the given key.
	Has(key []byte) (bool, error)

	// NewIterator returns an iterator over all keys with the given prefix
	// that are greater or equal to prefix+start, in ascending order. The
	// iterator must be released after use.
	NewIterator(prefix []byte, start []byte) Iterator
}

// Iterator iterates over a range of key-value pairs in ascending key order.
// Slices returned by Key and Value are only valid until the next call to Next.
type Iterator interface {
	// Next moves the iterator to the next pair and reports whether it exists.
	Next() bool
	Key() []byte
	Value() []byte
	// Error returns any accumulated error. Exhausting all pairs is not an error.
	Error() error
	Release()
}

// Batch collects updates that are applied atomically by Write. Deleting a
// key that is not present is a no-op.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	// Len returns the number of updates collected so far.
	Len() int
	// Write applies all collected updates atomically.
	Write() error
	// Reset drops all collected updates so the batch can be reused.
	Reset()
}

// ToDBKey prefixes the given key with the table space.
func ToDBKey(t TableSpace, key []byte) []byte {
	res := make([]byte, 0, len(key)+1)
	res = append(res, byte(t))
	return append(res, key...)
}
