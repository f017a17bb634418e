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
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/Fantom-foundation/vtree/backend"
)

// PebbleDb is a backend.Database implementation based on Pebble.
type PebbleDb struct {
	db *pebble.DB
}

// OpenPebbleDb opens or creates a Pebble database in the given directory.
func OpenPebbleDb(path string) (*PebbleDb, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleDb{db: db}, nil
}

// NewMemoryPebbleDb creates a Pebble database on an in-memory file system.
func NewMemoryPebbleDb() (*PebbleDb, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, err
	}
	return &PebbleDb{db: db}, nil
}

func (p *PebbleDb) Get(key []byte) ([]byte, error) {
	value, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	res := make([]byte, len(value))
	copy(res, value)
	return res, closer.Close()
}

func (p *PebbleDb) Has(key []byte) (bool, error) {
	_, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func (p *PebbleDb) NewIterator(prefix []byte, start []byte) backend.Iterator {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: concat(prefix, start),
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return &failedIterator{err: err}
	}
	return &pebbleIterator{iter: iter}
}

func (p *PebbleDb) NewBatch() backend.Batch {
	return &pebbleBatch{batch: p.db.NewBatch()}
}

func (p *PebbleDb) Close() error {
	return p.db.Close()
}

// upperBound returns the smallest key greater than all keys with the given
// prefix, or nil if there is no such key.
func upperBound(prefix []byte) []byte {
	limit := make([]byte, len(prefix))
	copy(limit, prefix)
	for i := len(limit) - 1; i >= 0; i-- {
		if limit[i] < 0xff {
			limit[i]++
			return limit[:i+1]
		}
	}
	return nil
}

type pebbleIterator struct {
	iter     *pebble.Iterator
	started  bool
	released bool
}

func (i *pebbleIterator) Next() bool {
	if i.released {
		return false
	}
	if !i.started {
		i.started = true
		return i.iter.First()
	}
	return i.iter.Next()
}

func (i *pebbleIterator) Key() []byte {
	return i.iter.Key()
}

func (i *pebbleIterator) Value() []byte {
	return i.iter.Value()
}

func (i *pebbleIterator) Error() error {
	return i.iter.Error()
}

func (i *pebbleIterator) Release() {
	if !i.released {
		i.iter.Close()
		i.released = true
	}
}

type failedIterator struct {
	err error
}

func (i *failedIterator) Next() bool    { return false }
func (i *failedIterator) Key() []byte   { return nil }
func (i *failedIterator) Value() []byte { return nil }
func (i *failedIterator) Error() error  { return i.err }
func (i *failedIterator) Release()      {}

type pebbleBatch struct {
	batch *pebble.Batch
}

func (b *pebbleBatch) Put(key, value []byte) {
	// Errors are only reported for batches that were already committed.
	_ = b.batch.Set(key, value, nil)
}

func (b *pebbleBatch) Delete(key []byte) {
	_ = b.batch.Delete(key, nil)
}

func (b *pebbleBatch) Len() int {
	return int(b.batch.Count())
}

func (b *pebbleBatch) Write() error {
	return b.batch.Commit(pebble.NoSync)
}

func (b *pebbleBatch) Reset() {
	b.batch.Reset()
}
