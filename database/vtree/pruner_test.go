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

func TestMerkleTreePruner_PrunesStaleNodes(t *testing.T) {
	runForEachBackend(t, func(t *testing.T, db *NodeDatabase) {
		tree := NewMerkleTree(db)
		for i := uint64(0); i < 5; i++ {
			extend(t, tree, entry(common.KeyFromUint64(i), i, common.Hash{}))
		}

		pruner := NewMerkleTreePruner(db)
		stats, pruned, err := pruner.PruneUpTo(3)
		if err != nil || !pruned {
			t.Fatalf("failed to prune, pruned %t, err %v", pruned, err)
		}
		if stats.TargetVersion != 3 || stats.PrunedKeys == 0 {
			t.Errorf("unexpected stats: %+v", stats)
		}
		for version := uint64(3); version < 5; version++ {
			if err := tree.VerifyConsistency(version, nil); err != nil {
				t.Errorf("version %d is inconsistent after pruning: %v", version, err)
			}
		}
		if err := tree.VerifyConsistency(0, nil); !errors.Is(err, ErrMissingNode) {
			t.Errorf("pruned version should be incomplete, got %v", err)
		}

		if _, pruned, err := pruner.PruneUpTo(2); err != nil || pruned {
			t.Errorf("pruning an already pruned range should be a no-op, pruned %t, err %v", pruned, err)
		}
	})
}

func TestMerkleTreePruner_PruningBeyondLatestVersionFails(t *testing.T) {
	runForEachBackend(t, func(t *testing.T, db *NodeDatabase) {
		pruner := NewMerkleTreePruner(db)
		if _, _, err := pruner.PruneUpTo(0); err == nil {
			t.Errorf("pruning an empty tree should fail")
		}
		extend(t, NewMerkleTree(db))
		if _, _, err := pruner.PruneUpTo(1); err == nil {
			t.Errorf("pruning beyond the latest version should fail")
		}
		if _, pruned, err := pruner.PruneUpTo(0); err != nil || !pruned {
			t.Errorf("failed to prune latest version, pruned %t, err %v", pruned, err)
		}
	})
}

func TestMerkleTreePruner_DatabaseErrorsArePropagated(t *testing.T) {
	injectedErr := errors.New("injected error")
	ctrl := gomock.NewController(t)
	db := NewMockPruneDatabase(ctrl)
	db.EXPECT().Manifest().Return(Manifest{VersionCount: 10}, true, nil)
	db.EXPECT().PrunerData().Return(PrunerData{LastPrunedVersion: 2}, true, nil)
	db.EXPECT().PruneStaleKeys(uint64(5)).Return(PruningStats{}, injectedErr)

	if _, _, err := NewMerkleTreePruner(db).PruneUpTo(5); !errors.Is(err, injectedErr) {
		t.Errorf("unexpected error: %v", err)
	}
}
