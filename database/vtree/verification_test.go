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
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/Fantom-foundation/vtree/common"
)

func createTestTree(t *testing.T, db *NodeDatabase) *MerkleTree {
	t.Helper()
	tree := NewMerkleTree(db)
	for i := uint64(0); i < 10; i++ {
		extend(t, tree,
			entry(common.KeyFromUint64(i), i, repeatedHash(byte(i))),
			entry(common.Key{byte(i << 4)}, 100+i, repeatedHash(byte(i))),
		)
	}
	return tree
}

func overwriteNode(t *testing.T, db *NodeDatabase, key NodeKey, node Node) {
	t.Helper()
	data, err := EncodeNode(node)
	if err != nil {
		t.Fatalf("failed to encode node: %v", err)
	}
	batch := db.db.NewBatch()
	batch.Put(nodeDbKey(key), data)
	if err := batch.Write(); err != nil {
		t.Fatalf("failed to write node: %v", err)
	}
}

func TestVerification_ValidTreePassesVerification(t *testing.T) {
	runForEachBackend(t, func(t *testing.T, db *NodeDatabase) {
		tree := createTestTree(t, db)
		for version := uint64(0); version < 10; version++ {
			if err := tree.VerifyConsistency(version, NilVerificationObserver{}); err != nil {
				t.Errorf("unexpected error in version %d: %v", version, err)
			}
		}
	})
}

func TestVerification_VerificationObserverIsKeptUpdatedOnEvents(t *testing.T) {
	runForEachBackend(t, func(t *testing.T, db *NodeDatabase) {
		tree := createTestTree(t, db)

		ctrl := gomock.NewController(t)
		observer := NewMockVerificationObserver(ctrl)
		gomock.InOrder(
			observer.EXPECT().StartVerification(),
			observer.EXPECT().Progress(gomock.Any()).MinTimes(1),
			observer.EXPECT().EndVerification(nil),
		)

		if err := tree.VerifyConsistency(5, observer); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestVerification_ObserverReceivesFailure(t *testing.T) {
	runForEachBackend(t, func(t *testing.T, db *NodeDatabase) {
		tree := createTestTree(t, db)

		ctrl := gomock.NewController(t)
		observer := NewMockVerificationObserver(ctrl)
		gomock.InOrder(
			observer.EXPECT().StartVerification(),
			observer.EXPECT().EndVerification(gomock.Any()).Do(func(err error) {
				if err == nil {
					t.Errorf("observer should receive the verification failure")
				}
			}),
		)

		if err := tree.VerifyConsistency(10, observer); err == nil {
			t.Errorf("verifying missing version should fail")
		}
	})
}

func TestVerification_MissingNodeIsDetected(t *testing.T) {
	runForEachBackend(t, func(t *testing.T, db *NodeDatabase) {
		tree := createTestTree(t, db)
		batch := db.db.NewBatch()
		batch.Delete(nodeDbKey(NodeKey{Version: 9, Nibbles: path(9)}))
		if err := batch.Write(); err != nil {
			t.Fatalf("failed to delete node: %v", err)
		}
		if err := tree.VerifyConsistency(9, nil); !errors.Is(err, ErrMissingNode) {
			t.Errorf("missing node not detected, got %v", err)
		}
		if err := tree.VerifyConsistency(8, nil); err != nil {
			t.Errorf("unexpected error in unaffected version: %v", err)
		}
	})
}

func TestVerification_CorruptedNodesAreDetected(t *testing.T) {
	tests := map[string]func(t *testing.T, db *NodeDatabase){
		"modified leaf": func(t *testing.T, db *NodeDatabase) {
			overwriteNode(t, db, NodeKey{Version: 9, Nibbles: path(9)}, &LeafNode{
				Key:       common.Key{0x90},
				LeafIndex: 1000,
			})
		},
		"misplaced leaf": func(t *testing.T, db *NodeDatabase) {
			root := &InternalNode{}
			leaf := &LeafNode{Key: common.Key{0x50}}
			root.SetChild(9, ChildRef{Version: 9, Hash: leaf.Hash(), IsLeaf: true})
			overwriteNode(t, db, RootKey(9), root)
			overwriteNode(t, db, NodeKey{Version: 9, Nibbles: path(9)}, leaf)
		},
		"leaf root": func(t *testing.T, db *NodeDatabase) {
			overwriteNode(t, db, RootKey(9), &LeafNode{})
		},
		"unexpected node type": func(t *testing.T, db *NodeDatabase) {
			root := &InternalNode{}
			child := &InternalNode{}
			root.SetChild(9, ChildRef{Version: 9, Hash: child.Hash(), IsLeaf: true})
			overwriteNode(t, db, RootKey(9), root)
			overwriteNode(t, db, NodeKey{Version: 9, Nibbles: path(9)}, child)
		},
		"child newer than parent": func(t *testing.T, db *NodeDatabase) {
			root := &InternalNode{}
			leaf := &LeafNode{Key: common.Key{0x90}}
			root.SetChild(9, ChildRef{Version: 10, Hash: leaf.Hash(), IsLeaf: true})
			overwriteNode(t, db, RootKey(9), root)
			overwriteNode(t, db, NodeKey{Version: 10, Nibbles: path(9)}, leaf)
		},
	}

	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			runForEachBackend(t, func(t *testing.T, db *NodeDatabase) {
				tree := createTestTree(t, db)
				corrupt(t, db)
				if err := tree.VerifyConsistency(9, nil); !errors.Is(err, ErrInconsistentTree) {
					t.Errorf("corruption not detected, got %v", err)
				}
			})
		})
	}
}
