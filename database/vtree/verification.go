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

	"github.com/Fantom-foundation/vtree/common"
)

//go:generate mockgen -source verification.go -destination verification_mocks.go -package vtree

// VerificationObserver is a listener interface for tracking the progress of
// the verification of a tree version. It can, for instance, be implemented by
// a user interface to keep the user updated on current activities.
type VerificationObserver interface {
	StartVerification()
	Progress(msg string)
	EndVerification(res error)
}

// NilVerificationObserver is a trivial implementation of the observer
// interface above which ignores all reported events.
type NilVerificationObserver struct{}

func (NilVerificationObserver) StartVerification()        {}
func (NilVerificationObserver) Progress(msg string)       {}
func (NilVerificationObserver) EndVerification(res error) {}

// ErrInconsistentTree is reported if a tree version violates a structural invariant.
const ErrInconsistentTree = common.ConstError("inconsistent tree")

// VerifyConsistency checks that all nodes of the given version are present
// in the database, that all hashes recorded in child references match the
// hashes of the referenced nodes, and that all leaves are located on a
// prefix of their key.
func (t *MerkleTree) VerifyConsistency(version uint64, observer VerificationObserver) (res error) {
	if observer == nil {
		observer = NilVerificationObserver{}
	}
	observer.StartVerification()
	defer func() {
		observer.EndVerification(res)
	}()

	if err := t.checkVersion(version); err != nil {
		return err
	}
	observer.Progress(fmt.Sprintf("Checking nodes of version %d ...", version))

	root, err := t.db.TreeNode(RootKey(version))
	if err != nil {
		return err
	}
	if _, ok := root.(*InternalNode); !ok {
		return fmt.Errorf("%w: root of version %d is a %T", ErrInconsistentTree, version, root)
	}

	stats := &verificationStats{}
	if err := t.verifyNode(RootKey(version), root, stats); err != nil {
		return err
	}
	observer.Progress(fmt.Sprintf("Checked %d internal nodes and %d leaves", stats.internal, stats.leaves))
	return nil
}

type verificationStats struct {
	internal, leaves int
}

func (t *MerkleTree) verifyNode(key NodeKey, node Node, stats *verificationStats) error {
	switch n := node.(type) {
	case *LeafNode:
		stats.leaves++
		if !key.Nibbles.IsPrefixOf(n.Key) {
			return fmt.Errorf("%w: leaf with key %v stored at %v", ErrInconsistentTree, n.Key, key)
		}
		return nil
	case *InternalNode:
		stats.internal++
	default:
		return fmt.Errorf("%w: unsupported node type %T", ErrInconsistentTree, node)
	}

	internal := node.(*InternalNode)
	var errs []error
	internal.ForEachChild(func(nibble byte, ref ChildRef) {
		if len(errs) > 0 {
			return
		}
		childKey := NodeKey{Version: ref.Version, Nibbles: key.Nibbles.Push(nibble)}
		if ref.Version > key.Version {
			errs = append(errs, fmt.Errorf("%w: child %v is newer than its parent %v", ErrInconsistentTree, childKey, key))
			return
		}
		child, err := t.db.TreeNode(childKey)
		if err != nil {
			errs = append(errs, err)
			return
		}
		if _, isLeaf := child.(*LeafNode); isLeaf != ref.IsLeaf {
			errs = append(errs, fmt.Errorf("%w: node %v has unexpected type %T", ErrInconsistentTree, childKey, child))
			return
		}
		if got := child.Hash(); got != ref.Hash {
			errs = append(errs, fmt.Errorf("%w: hash mismatch of node %v, expected %v, got %v", ErrInconsistentTree, childKey, ref.Hash, got))
			return
		}
		if err := t.verifyNode(childKey, child, stats); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
