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

	"github.com/Fantom-foundation/vtree/common"
)

// MerkleTree is a versioned 16-ary Merkle tree. Leaves are placed at the
// shortest path distinguishing their key from all other keys; internal nodes
// reference their children by version and hash.
//
// Each call to Extend produces a new version. Nodes modified in a version are
// written under that version, leaving nodes of earlier versions untouched, so
// all committed versions remain readable until pruned.
type MerkleTree struct {
	db Database
}

// NewMerkleTree creates a tree backed by the given database.
func NewMerkleTree(db Database) *MerkleTree {
	return &MerkleTree{db: db}
}

// LatestVersion returns the most recently committed version, if any.
func (t *MerkleTree) LatestVersion() (uint64, bool, error) {
	manifest, _, err := t.db.Manifest()
	if err != nil {
		return 0, false, err
	}
	version, found := manifest.LatestVersion()
	return version, found, nil
}

// Extend applies the given entries on top of the latest version, creating a
// new version. Entries with keys already present in the tree replace the
// existing value.
func (t *MerkleTree) Extend(entries []TreeEntry) (TreeUpdateOutput, error) {
	manifest, _, err := t.db.Manifest()
	if err != nil {
		return TreeUpdateOutput{}, err
	}

	updater, err := newTreeUpdater(t.db, manifest)
	if err != nil {
		return TreeUpdateOutput{}, err
	}
	for _, entry := range entries {
		if err := updater.insert(entry); err != nil {
			return TreeUpdateOutput{}, fmt.Errorf("failed to insert key %v; %w", entry.Key, err)
		}
	}
	rootHash := updater.finalize(EmptyNibbles())

	patch := updater.patch()
	if err := t.db.ApplyPatch(patch); err != nil {
		return TreeUpdateOutput{}, fmt.Errorf("failed to persist version %d; %w", patch.Version, err)
	}
	log.Debug("Extended tree", "version", patch.Version, "entries", len(entries), "nodes", len(patch.Nodes), "stale", len(patch.StaleKeys), "root", rootHash)
	return TreeUpdateOutput{
		Version:   patch.Version,
		RootHash:  rootHash,
		StaleKeys: len(patch.StaleKeys),
	}, nil
}

// RootHash returns the root hash of the given version.
func (t *MerkleTree) RootHash(version uint64) (common.Hash, error) {
	if err := t.checkVersion(version); err != nil {
		return common.Hash{}, err
	}
	root, err := t.db.TreeNode(RootKey(version))
	if err != nil {
		return common.Hash{}, err
	}
	return root.Hash(), nil
}

// Get looks up the leaf of the given key in the given version. The boolean
// result is false if the key is not present in that version.
func (t *MerkleTree) Get(version uint64, key common.Key) (TreeEntry, bool, error) {
	if err := t.checkVersion(version); err != nil {
		return TreeEntry{}, false, err
	}
	node, err := t.db.TreeNode(RootKey(version))
	if err != nil {
		return TreeEntry{}, false, err
	}
	path := EmptyNibbles()
	for {
		switch n := node.(type) {
		case *LeafNode:
			if n.Key != key {
				return TreeEntry{}, false, nil
			}
			return TreeEntry{Key: n.Key, LeafIndex: n.LeafIndex, ValueHash: n.ValueHash}, true, nil
		case *InternalNode:
			nibble := key.Nibble(path.Len())
			ref, present := n.Child(nibble)
			if !present {
				return TreeEntry{}, false, nil
			}
			path = path.Push(nibble)
			node, err = t.db.TreeNode(NodeKey{Version: ref.Version, Nibbles: path})
			if err != nil {
				return TreeEntry{}, false, err
			}
		default:
			return TreeEntry{}, false, fmt.Errorf("unsupported node type %T", node)
		}
	}
}

// TruncateRecentVersions removes all versions starting at the given version
// count. Nodes and stale keys of the removed versions are deleted as well,
// and the stale keys repair progress is reset to the retained range.
func (t *MerkleTree) TruncateRecentVersions(retainedVersionCount uint64) error {
	return t.db.Truncate(retainedVersionCount)
}

func (t *MerkleTree) checkVersion(version uint64) error {
	manifest, _, err := t.db.Manifest()
	if err != nil {
		return err
	}
	if version >= manifest.VersionCount {
		return fmt.Errorf("version %d does not exist, tree has %d versions", version, manifest.VersionCount)
	}
	return nil
}

// treeUpdater collects the nodes modified while creating a new version.
type treeUpdater struct {
	db       Database
	manifest Manifest
	version  uint64
	// nodes modified in the new version, indexed by their path
	nodes map[Nibbles]Node
	// nodes of earlier versions superseded by the new version
	stale map[NodeKey]struct{}
}

func newTreeUpdater(db Database, manifest Manifest) (*treeUpdater, error) {
	res := &treeUpdater{
		db:       db,
		manifest: manifest,
		version:  manifest.VersionCount,
		nodes:    map[Nibbles]Node{},
		stale:    map[NodeKey]struct{}{},
	}
	// The root is rewritten in every version, even if no entries are added.
	if previous, found := manifest.LatestVersion(); found {
		if _, err := res.loadForUpdate(EmptyNibbles(), ChildRef{Version: previous}); err != nil {
			return nil, err
		}
	} else {
		res.nodes[EmptyNibbles()] = &InternalNode{}
	}
	return res, nil
}

// loadForUpdate returns a modifiable version of the referenced node. Nodes
// of earlier versions are copied and recorded as stale.
func (u *treeUpdater) loadForUpdate(path Nibbles, ref ChildRef) (Node, error) {
	if ref.Version == u.version {
		if node, found := u.nodes[path]; found {
			return node, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingNode, NodeKey{Version: ref.Version, Nibbles: path})
	}
	key := NodeKey{Version: ref.Version, Nibbles: path}
	node, err := u.db.TreeNode(key)
	if err != nil {
		return nil, err
	}
	node = node.Clone()
	u.stale[key] = struct{}{}
	u.nodes[path] = node
	return node, nil
}

func (u *treeUpdater) insert(entry TreeEntry) error {
	path := EmptyNibbles()
	node, ok := u.nodes[path].(*InternalNode)
	if !ok {
		return fmt.Errorf("root of version %d is not an internal node", u.version)
	}
	for {
		nibble := entry.Key.Nibble(path.Len())
		childPath := path.Push(nibble)
		ref, present := node.Child(nibble)
		if !present {
			u.nodes[childPath] = newLeaf(entry)
			node.SetChild(nibble, ChildRef{Version: u.version, IsLeaf: true})
			return nil
		}

		child, err := u.loadForUpdate(childPath, ref)
		if err != nil {
			return err
		}
		switch c := child.(type) {
		case *LeafNode:
			if c.Key == entry.Key {
				c.ValueHash = entry.ValueHash
				c.LeafIndex = entry.LeafIndex
				node.SetChild(nibble, ChildRef{Version: u.version, IsLeaf: true})
				return nil
			}
			node.SetChild(nibble, ChildRef{Version: u.version})
			u.split(childPath, c, entry)
			return nil
		case *InternalNode:
			node.SetChild(nibble, ChildRef{Version: u.version})
			node, path = c, childPath
		default:
			return fmt.Errorf("unsupported node type %T", child)
		}
	}
}

// split replaces the leaf at the given path by a chain of internal nodes
// covering the common prefix of the existing and the new key, followed by
// the two leaves.
func (u *treeUpdater) split(path Nibbles, existing *LeafNode, entry TreeEntry) {
	parent := &InternalNode{}
	u.nodes[path] = parent
	for pos := path.Len(); ; pos++ {
		a, b := existing.Key.Nibble(pos), entry.Key.Nibble(pos)
		if a != b {
			u.nodes[path.Push(a)] = existing
			parent.SetChild(a, ChildRef{Version: u.version, IsLeaf: true})
			u.nodes[path.Push(b)] = newLeaf(entry)
			parent.SetChild(b, ChildRef{Version: u.version, IsLeaf: true})
			return
		}
		next := &InternalNode{}
		parent.SetChild(a, ChildRef{Version: u.version})
		path = path.Push(a)
		u.nodes[path] = next
		parent = next
	}
}

// finalize computes the hashes of all modified nodes in the subtree rooted
// at the given path and updates the child references accordingly.
func (u *treeUpdater) finalize(path Nibbles) common.Hash {
	node := u.nodes[path]
	if internal, ok := node.(*InternalNode); ok {
		internal.ForEachChild(func(nibble byte, ref ChildRef) {
			if ref.Version != u.version {
				return
			}
			ref.Hash = u.finalize(path.Push(nibble))
			internal.SetChild(nibble, ref)
		})
	}
	return node.Hash()
}

func (u *treeUpdater) patch() *PatchSet {
	staleKeys := make([]NodeKey, 0, len(u.stale))
	for key := range u.stale {
		staleKeys = append(staleKeys, key)
	}
	return &PatchSet{
		Manifest:  Manifest{VersionCount: u.version + 1},
		Version:   u.version,
		Nodes:     u.nodes,
		StaleKeys: staleKeys,
	}
}

func newLeaf(entry TreeEntry) *LeafNode {
	return &LeafNode{
		Key:       entry.Key,
		ValueHash: entry.ValueHash,
		LeafIndex: entry.LeafIndex,
	}
}
