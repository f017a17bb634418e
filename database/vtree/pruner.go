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

	"github.com/ethereum/go-ethereum/log"
)

// MerkleTreePruner deletes nodes that are no longer needed by any retained
// version, as indicated by stale key records. Stale key records are trusted
// as they are, so bogus records must be removed by the stale keys repair
// task before pruning the versions they belong to.
type MerkleTreePruner struct {
	db PruneDatabase
}

// NewMerkleTreePruner creates a pruner operating on the given database.
func NewMerkleTreePruner(db PruneDatabase) *MerkleTreePruner {
	return &MerkleTreePruner{db: db}
}

// PruneUpTo deletes all nodes that became stale in versions up to and
// including the given target. Afterwards, only versions starting at target
// can be read. The boolean result is false if the tree was already pruned
// up to the target.
func (p *MerkleTreePruner) PruneUpTo(target uint64) (PruningStats, bool, error) {
	manifest, _, err := p.db.Manifest()
	if err != nil {
		return PruningStats{}, false, err
	}
	latest, found := manifest.LatestVersion()
	if !found || target > latest {
		return PruningStats{}, false, fmt.Errorf("cannot prune up to version %d, latest version is %d (tree has %d versions)", target, latest, manifest.VersionCount)
	}

	pruned, found, err := p.db.PrunerData()
	if err != nil {
		return PruningStats{}, false, err
	}
	if found && pruned.LastPrunedVersion >= target {
		log.Debug("Tree already pruned", "target", target, "pruned", pruned.LastPrunedVersion)
		return PruningStats{TargetVersion: target}, false, nil
	}

	stats, err := p.db.PruneStaleKeys(target)
	if err != nil {
		return stats, false, fmt.Errorf("failed to prune stale keys up to version %d; %w", target, err)
	}
	log.Info("Pruned tree", "target", target, "keys", stats.PrunedKeys)
	return stats, true, nil
}
