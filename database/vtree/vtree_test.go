// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
package vtree

import (
	"fmt"
	"testing"

	"github.com/Fantom-foundation/vtree/backend"
	"github.com/Fantom-foundation/vtree/backend/kvdb"
	"github.com/Fantom-foundation/vtree/common"
)

// runForEachBackend runs the given test on a fresh in-memory database of
// every supported backend.
func runForEachBackend(t *testing.T, test func(t *testing.T, db *NodeDatabase)) {
	t.Helper()
	for _, kind := range kvdb.Backends {
		t.Run(string(kind), func(t *testing.T) {
			store, err := kvdb.OpenInMemory(kind)
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			db := NewNodeDatabase(store)
			t.Cleanup(func() {
				if err := db.Close(); err != nil {
					t.Errorf("failed to close database: %v", err)
				}
			})
			test(t, db)
		})
	}
}

func extend(t *testing.T, tree *MerkleTree, entries ...TreeEntry) TreeUpdateOutput {
	t.Helper()
	res, err := tree.Extend(entries)
	if err != nil {
		t.Fatalf("failed to extend tree: %v", err)
	}
	return res
}

func entry(key common.Key, leafIndex uint64, valueHash common.Hash) TreeEntry {
	return TreeEntry{Key: key, LeafIndex: leafIndex, ValueHash: valueHash}
}

func repeatedKey(b byte) common.Key {
	var res common.Key
	for i := range res {
		res[i] = b
	}
	return res
}

func repeatedHash(b byte) common.Hash {
	return common.Hash(repeatedKey(b))
}

// setupTreeWithBogusStaleKeys creates a tree with two versions where
// version 1 was truncated without removing its stale keys and re-created
// afterwards, as done by old releases. Version 0 contains the keys 0..99,
// the truncated version 1 modified key 0, the re-created version 1 adds a
// single unrelated key.
func setupTreeWithBogusStaleKeys(t *testing.T, db *NodeDatabase) *MerkleTree {
	t.Helper()
	tree := NewMerkleTree(db)
	entries := make([]TreeEntry, 0, 100)
	for i := uint64(0); i < 100; i++ {
		entries = append(entries, entry(common.KeyFromUint64(i), i+1, common.Hash{}))
	}
	extend(t, tree, entries...)
	extend(t, tree, entry(common.KeyFromUint64(0), 1, repeatedHash(0xaa)))

	if err := truncateRecentVersionsIncorrectly(db, 1); err != nil {
		t.Fatalf("failed to truncate tree: %v", err)
	}
	extend(t, tree, entry(repeatedKey(0xaa), 101, common.Hash{}))
	return tree
}

// truncateRecentVersionsIncorrectly reproduces the truncation of old
// releases, which only updated the manifest and kept the nodes and stale
// keys of removed versions.
func truncateRecentVersionsIncorrectly(db *NodeDatabase, retainedVersionCount uint64) error {
	manifest, found, err := db.Manifest()
	if err != nil {
		return err
	}
	if !found || manifest.VersionCount <= retainedVersionCount {
		return fmt.Errorf("cannot truncate %d versions to %d", manifest.VersionCount, retainedVersionCount)
	}
	batch := db.db.NewBatch()
	if err := putValue(batch, backend.ManifestKey, &Manifest{VersionCount: retainedVersionCount}); err != nil {
		return err
	}
	return batch.Write()
}
