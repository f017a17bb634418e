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

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Fantom-foundation/vtree/backend"
)

// LevelDb is a backend.Database implementation based on LevelDB.
type LevelDb struct {
	db *leveldb.DB
}

// OpenLevelDb opens or creates a LevelDB database in the given directory.
func OpenLevelDb(path string, options *opt.Options) (*LevelDb, error) {
	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, err
	}
	return &LevelDb{db: db}, nil
}

// NewMemoryLevelDb creates a LevelDB database kept entirely in memory.
func NewMemoryLevelDb() (*LevelDb, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDb{db: db}, nil
}

func (l *LevelDb) Get(key []byte) ([]byte, error) {
	res, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, backend.ErrNotFound
	}
	return res, err
}

func (l *LevelDb) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *LevelDb) NewIterator(prefix []byte, start []byte) backend.Iterator {
	keyRange := util.BytesPrefix(prefix)
	keyRange.Start = concat(prefix, start)
	// LevelDB iterators already provide the required interface.
	return l.db.NewIterator(keyRange, nil)
}

func (l *LevelDb) NewBatch() backend.Batch {
	return &levelDbBatch{db: l.db}
}

func (l *LevelDb) Close() error {
	return l.db.Close()
}

type levelDbBatch struct {
	db    *leveldb.DB
	batch leveldb.Batch
}

func (b *levelDbBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *levelDbBatch) Delete(key []byte) {
	b.batch.Delete(key)
}

func (b *levelDbBatch) Len() int {
	return b.batch.Len()
}

func (b *levelDbBatch) Write() error {
	return b.db.Write(&b.batch, nil)
}

func (b *levelDbBatch) Reset() {
	b.batch.Reset()
}

func concat(a, b []byte) []byte {
	res := make([]byte, 0, len(a)+len(b))
	res = append(res, a...)
	return append(res, b...)
}
