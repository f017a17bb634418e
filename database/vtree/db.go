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
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Fantom-foundation/vtree/backend"
	"github.com/Fantom-foundation/vtree/common"
)

//go:generate mockgen -source db.go -destination db_mocks.go -package vtree

const (
	// ErrMissingNode is reported if a node referenced by the tree is not in the database.
	ErrMissingNode = common.ConstError("missing tree node")
	// ErrTruncatingPrunedVersion is reported when truncating the tree below the pruned range.
	ErrTruncatingPrunedVersion = common.ConstError("cannot truncate pruned versions")
)

// Database is the storage interface required by a MerkleTree.
type Database interface {
	// Manifest returns the tree manifest, if the tree has one.
	Manifest() (Manifest, bool, error)

	// TreeNode loads the node with the given key. ErrMissingNode is reported
	// if the node does not exist.
	TreeNode(key NodeKey) (Node, error)

	// ApplyPatch atomically persists a new version of the tree.
	ApplyPatch(patch *PatchSet) error

	// Truncate atomically removes all versions starting at the given one.
	Truncate(retainedVersionCount uint64) error
}

// PruneDatabase is the storage interface required by the pruner.
type PruneDatabase interface {
	Manifest() (Manifest, bool, error)

	// PrunerData returns the progress of the pruner, if it ever ran.
	PrunerData() (PrunerData, bool, error)

	// PruneStaleKeys atomically deletes all nodes that became stale in a
	// version up to and including the given one, together with their stale
	// key records, and records the given version as pruned.
	PruneStaleKeys(upToVersion uint64) (PruningStats, error)
}

// StaleKeysRepairDatabase is the storage interface required by the stale
// keys repair task.
type StaleKeysRepairDatabase interface {
	Manifest() (Manifest, bool, error)

	// AllKeysForVersion classifies the paths of all nodes stored for the
	// given version into those reachable from the version's root and those
	// that are not.
	AllKeysForVersion(version uint64) (VersionKeySets, error)

	// StaleKeys returns the keys of all nodes that became stale in the given version.
	StaleKeys(version uint64) ([]NodeKey, error)

	// MinStaleKeyVersion returns the smallest version any stale key became
	// stale in, if there are stale keys at all.
	MinStaleKeyVersion() (uint64, bool, error)

	// StaleKeysRepairData returns the persisted repair progress, if any.
	StaleKeysRepairData() (StaleKeysRepairData, bool, error)

	// RepairStaleKeys atomically removes the given stale key records and
	// persists the given repair progress. Removing absent records is a no-op.
	RepairStaleKeys(data StaleKeysRepairData, removedKeys []StaleNodeKey) error
}

// PatchSet summarizes all changes introduced by a new version of the tree.
type PatchSet struct {
	Manifest Manifest
	// Version is the version all Nodes are written in and StaleKeys became stale in.
	Version   uint64
	Nodes     map[Nibbles]Node
	StaleKeys []NodeKey
}

// PruningStats summarizes the work done by a single pruning run.
type PruningStats struct {
	TargetVersion uint64
	// PrunedKeys is the number of deleted nodes, each with its stale key record.
	PrunedKeys int
}

// NodeDatabase implements all storage interfaces of this package on top of
// a key-value store.
type NodeDatabase struct {
	db backend.Database
}

// NewNodeDatabase wraps the given key-value store. The store is owned by
// the resulting instance and released by Close.
func NewNodeDatabase(db backend.Database) *NodeDatabase {
	return &NodeDatabase{db: db}
}

// Close releases the underlying key-value store.
func (d *NodeDatabase) Close() error {
	return d.db.Close()
}

func (d *NodeDatabase) Manifest() (Manifest, bool, error) {
	var res Manifest
	found, err := d.getValue(backend.ManifestKey, &res)
	return res, found, err
}

func (d *NodeDatabase) StaleKeysRepairData() (StaleKeysRepairData, bool, error) {
	var res StaleKeysRepairData
	found, err := d.getValue(backend.RepairDataKey, &res)
	return res, found, err
}

func (d *NodeDatabase) PrunerData() (PrunerData, bool, error) {
	var res PrunerData
	found, err := d.getValue(backend.PrunerDataKey, &res)
	return res, found, err
}

func (d *NodeDatabase) getValue(table backend.TableSpace, value any) (bool, error) {
	data, err := d.db.Get(backend.ToDBKey(table, nil))
	if errors.Is(err, backend.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(data, value); err != nil {
		return false, fmt.Errorf("failed to decode %c record; %w", table, err)
	}
	return true, nil
}

func putValue(batch backend.Batch, table backend.TableSpace, value any) error {
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	batch.Put(backend.ToDBKey(table, nil), data)
	return nil
}

func (d *NodeDatabase) TreeNode(key NodeKey) (Node, error) {
	data, err := d.db.Get(nodeDbKey(key))
	if errors.Is(err, backend.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrMissingNode, key)
	}
	if err != nil {
		return nil, err
	}
	node, err := DecodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode node %v; %w", key, err)
	}
	return node, nil
}

func (d *NodeDatabase) ApplyPatch(patch *PatchSet) error {
	batch := d.db.NewBatch()
	for path, node := range patch.Nodes {
		data, err := EncodeNode(node)
		if err != nil {
			return fmt.Errorf("failed to encode node %v; %w", path, err)
		}
		batch.Put(nodeDbKey(NodeKey{Version: patch.Version, Nibbles: path}), data)
	}
	for _, key := range patch.StaleKeys {
		batch.Put(staleDbKey(StaleNodeKey{Key: key, StaleSince: patch.Version}), nil)
	}
	if err := putValue(batch, backend.ManifestKey, &patch.Manifest); err != nil {
		return err
	}
	return batch.Write()
}

func (d *NodeDatabase) StaleKeys(version uint64) ([]NodeKey, error) {
	var res []NodeKey
	iter := d.db.NewIterator(versionPrefix(backend.StaleKeyKey, version), nil)
	defer iter.Release()
	for iter.Next() {
		key, err := decodeStaleDbKey(iter.Key())
		if err != nil {
			return nil, err
		}
		res = append(res, key.Key)
	}
	return res, iter.Error()
}

func (d *NodeDatabase) MinStaleKeyVersion() (uint64, bool, error) {
	iter := d.db.NewIterator([]byte{byte(backend.StaleKeyKey)}, nil)
	defer iter.Release()
	if !iter.Next() {
		return 0, false, iter.Error()
	}
	key, err := decodeStaleDbKey(iter.Key())
	if err != nil {
		return 0, false, err
	}
	return key.StaleSince, true, nil
}

func (d *NodeDatabase) AllKeysForVersion(version uint64) (VersionKeySets, error) {
	res := newVersionKeySets()

	root, err := d.TreeNode(RootKey(version))
	if err != nil && !errors.Is(err, ErrMissingNode) {
		return res, err
	}
	if err == nil {
		if err := d.collectValidKeys(version, EmptyNibbles(), root, res.ValidKeys); err != nil {
			return res, err
		}
	}

	iter := d.db.NewIterator(versionPrefix(backend.NodeKey, version), nil)
	defer iter.Release()
	for iter.Next() {
		key, err := decodeNodeDbKey(iter.Key())
		if err != nil {
			return res, err
		}
		if _, valid := res.ValidKeys[key.Nibbles]; !valid {
			res.UnreachableKeys[key.Nibbles] = struct{}{}
		}
	}
	return res, iter.Error()
}

// collectValidKeys adds the paths of all nodes of the given version in the
// subtree rooted by the given node. Children of older versions are skipped
// since their subtrees can not contain nodes of a newer version.
func (d *NodeDatabase) collectValidKeys(version uint64, path Nibbles, node Node, res map[Nibbles]struct{}) error {
	res[path] = struct{}{}
	internal, ok := node.(*InternalNode)
	if !ok {
		return nil
	}
	var err error
	internal.ForEachChild(func(nibble byte, ref ChildRef) {
		if err != nil || ref.Version != version {
			return
		}
		childPath := path.Push(nibble)
		var child Node
		child, err = d.TreeNode(NodeKey{Version: version, Nibbles: childPath})
		if err == nil {
			err = d.collectValidKeys(version, childPath, child, res)
		}
	})
	return err
}

func (d *NodeDatabase) RepairStaleKeys(data StaleKeysRepairData, removedKeys []StaleNodeKey) error {
	batch := d.db.NewBatch()
	for _, key := range removedKeys {
		batch.Delete(staleDbKey(key))
	}
	if err := putValue(batch, backend.RepairDataKey, &data); err != nil {
		return err
	}
	return batch.Write()
}

func (d *NodeDatabase) Truncate(retainedVersionCount uint64) error {
	manifest, found, err := d.Manifest()
	if err != nil {
		return err
	}
	if !found || manifest.VersionCount <= retainedVersionCount {
		return nil
	}
	pruned, found, err := d.PrunerData()
	if err != nil {
		return err
	}
	if found && retainedVersionCount <= pruned.LastPrunedVersion {
		return fmt.Errorf("%w: retaining %d versions, pruned up to version %d", ErrTruncatingPrunedVersion, retainedVersionCount, pruned.LastPrunedVersion)
	}

	batch := d.db.NewBatch()
	for _, table := range []backend.TableSpace{backend.NodeKey, backend.StaleKeyKey} {
		if err := d.deleteFromVersion(batch, table, retainedVersionCount); err != nil {
			return err
		}
	}

	repairData, found, err := d.StaleKeysRepairData()
	if err != nil {
		return err
	}
	if found && repairData.NextVersion > retainedVersionCount {
		repairData.NextVersion = retainedVersionCount
		if err := putValue(batch, backend.RepairDataKey, &repairData); err != nil {
			return err
		}
	}

	manifest.VersionCount = retainedVersionCount
	if err := putValue(batch, backend.ManifestKey, &manifest); err != nil {
		return err
	}
	return batch.Write()
}

// deleteFromVersion adds deletions of all keys of the given table associated
// to the given version or any later version to the batch.
func (d *NodeDatabase) deleteFromVersion(batch backend.Batch, table backend.TableSpace, version uint64) error {
	iter := d.db.NewIterator([]byte{byte(table)}, versionStart(version))
	defer iter.Release()
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	return iter.Error()
}

func (d *NodeDatabase) PruneStaleKeys(upToVersion uint64) (PruningStats, error) {
	stats := PruningStats{TargetVersion: upToVersion}
	batch := d.db.NewBatch()

	iter := d.db.NewIterator([]byte{byte(backend.StaleKeyKey)}, nil)
	defer iter.Release()
	for iter.Next() {
		key, err := decodeStaleDbKey(iter.Key())
		if err != nil {
			return stats, err
		}
		if key.StaleSince > upToVersion {
			break
		}
		batch.Delete(nodeDbKey(key.Key))
		batch.Delete(staleDbKey(key))
		stats.PrunedKeys++
	}
	if err := iter.Error(); err != nil {
		return stats, err
	}

	if err := putValue(batch, backend.PrunerDataKey, &PrunerData{LastPrunedVersion: upToVersion}); err != nil {
		return stats, err
	}
	return stats, batch.Write()
}
