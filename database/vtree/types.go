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

	"github.com/Fantom-foundation/vtree/common"
)

// NodeKey identifies a node of the tree by the version it was written in and
// its path from the root.
type NodeKey struct {
	Version uint64
	Nibbles Nibbles
}

// RootKey returns the key of the root node of the given version.
func RootKey(version uint64) NodeKey {
	return NodeKey{Version: version, Nibbles: EmptyNibbles()}
}

func (k NodeKey) String() string {
	return fmt.Sprintf("%d:%v", k.Version, k.Nibbles)
}

// StaleNodeKey records that the node identified by Key was superseded by a
// node written in version StaleSince. Once all versions before StaleSince
// are pruned, the node is no longer needed.
type StaleNodeKey struct {
	Key        NodeKey
	StaleSince uint64
}

func (k StaleNodeKey) String() string {
	return fmt.Sprintf("%v(stale since %d)", k.Key, k.StaleSince)
}

// Manifest summarizes the state of a tree.
type Manifest struct {
	// VersionCount is the number of committed versions. The latest version
	// is VersionCount-1 if VersionCount > 0.
	VersionCount uint64
}

// LatestVersion returns the most recently committed version, if any.
func (m Manifest) LatestVersion() (uint64, bool) {
	if m.VersionCount == 0 {
		return 0, false
	}
	return m.VersionCount - 1, true
}

// StaleKeysRepairData is the persisted progress of the stale keys repair.
type StaleKeysRepairData struct {
	// NextVersion is the first version not checked yet.
	NextVersion uint64
}

// PrunerData is the persisted progress of the pruner.
type PrunerData struct {
	// LastPrunedVersion is the version up to which stale nodes got deleted.
	LastPrunedVersion uint64
}

// VersionKeySets classifies the paths of nodes written in a single version.
// The two sets are disjoint.
type VersionKeySets struct {
	// ValidKeys are paths of nodes written in the version that are part of
	// the tree of that version.
	ValidKeys map[Nibbles]struct{}
	// UnreachableKeys are paths of nodes stored for the version that are not
	// reachable from its root, e.g. left over by a truncated version.
	UnreachableKeys map[Nibbles]struct{}
}

func newVersionKeySets() VersionKeySets {
	return VersionKeySets{
		ValidKeys:       map[Nibbles]struct{}{},
		UnreachableKeys: map[Nibbles]struct{}{},
	}
}

// TreeEntry is a leaf update applied to the tree.
type TreeEntry struct {
	Key       common.Key
	LeafIndex uint64
	ValueHash common.Hash
}

// TreeUpdateOutput summarizes the result of extending the tree.
type TreeUpdateOutput struct {
	Version   uint64
	RootHash  common.Hash
	StaleKeys int
}
