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
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Fantom-foundation/vtree/common"
)

// Node is a node of a versioned tree, either an InternalNode or a LeafNode.
type Node interface {
	// Hash computes the hash of the node. For internal nodes, the hashes of
	// children are taken from the child references.
	Hash() common.Hash

	// Clone creates a deep copy of the node that can be modified without
	// affecting this node.
	Clone() Node
}

// ChildRef is the reference of an internal node to one of its children. The
// child is stored under NodeKey{Version, parentPath + nibble}.
type ChildRef struct {
	Version uint64
	Hash    common.Hash
	IsLeaf  bool
}

// InternalNode is a node with up to 16 children, one per nibble.
type InternalNode struct {
	children [16]ChildRef
	present  uint16 // bit mask of present children
}

// Child returns the reference to the child at the given nibble, if present.
func (n *InternalNode) Child(nibble byte) (ChildRef, bool) {
	if n.present&(1<<nibble) == 0 {
		return ChildRef{}, false
	}
	return n.children[nibble], true
}

// SetChild updates the reference to the child at the given nibble.
func (n *InternalNode) SetChild(nibble byte, ref ChildRef) {
	n.children[nibble] = ref
	n.present |= 1 << nibble
}

// ChildCount returns the number of present children.
func (n *InternalNode) ChildCount() int {
	count := 0
	for i := 0; i < 16; i++ {
		if n.present&(1<<i) != 0 {
			count++
		}
	}
	return count
}

// ForEachChild calls the given function for all present children in nibble order.
func (n *InternalNode) ForEachChild(visit func(nibble byte, ref ChildRef)) {
	for i := byte(0); i < 16; i++ {
		if ref, present := n.Child(i); present {
			visit(i, ref)
		}
	}
}

func (n *InternalNode) Hash() common.Hash {
	data := make([]byte, 0, 16*(1+len(common.Hash{})))
	n.ForEachChild(func(nibble byte, ref ChildRef) {
		data = append(data, nibble)
		data = append(data, ref.Hash[:]...)
	})
	return common.Keccak256(data)
}

func (n *InternalNode) Clone() Node {
	res := *n
	return &res
}

// LeafNode holds a single key of the tree.
type LeafNode struct {
	Key       common.Key
	ValueHash common.Hash
	LeafIndex uint64
}

func (n *LeafNode) Hash() common.Hash {
	var index [8]byte
	binary.BigEndian.PutUint64(index[:], n.LeafIndex)
	return common.Keccak256(n.Key[:], n.ValueHash[:], index[:])
}

func (n *LeafNode) Clone() Node {
	res := *n
	return &res
}

const (
	internalNodeTag = byte(0)
	leafNodeTag     = byte(1)
)

type encodedChild struct {
	Nibble  uint8
	Version uint64
	Hash    common.Hash
	IsLeaf  bool
}

type encodedInternalNode struct {
	Children []encodedChild
}

type encodedLeafNode struct {
	Key       common.Key
	ValueHash common.Hash
	LeafIndex uint64
}

// EncodeNode serializes a node as a type tag followed by its RLP encoding.
func EncodeNode(node Node) ([]byte, error) {
	var tag byte
	var payload any
	switch n := node.(type) {
	case *InternalNode:
		encoded := encodedInternalNode{Children: make([]encodedChild, 0, n.ChildCount())}
		n.ForEachChild(func(nibble byte, ref ChildRef) {
			encoded.Children = append(encoded.Children, encodedChild{
				Nibble:  nibble,
				Version: ref.Version,
				Hash:    ref.Hash,
				IsLeaf:  ref.IsLeaf,
			})
		})
		tag, payload = internalNodeTag, &encoded
	case *LeafNode:
		tag, payload = leafNodeTag, &encodedLeafNode{
			Key:       n.Key,
			ValueHash: n.ValueHash,
			LeafIndex: n.LeafIndex,
		}
	default:
		return nil, fmt.Errorf("unsupported node type %T", node)
	}
	data, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, err
	}
	return append([]byte{tag}, data...), nil
}

// DecodeNode is the inverse of EncodeNode.
func DecodeNode(data []byte) (Node, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty node encoding")
	}
	switch data[0] {
	case internalNodeTag:
		var encoded encodedInternalNode
		if err := rlp.DecodeBytes(data[1:], &encoded); err != nil {
			return nil, fmt.Errorf("invalid internal node encoding; %w", err)
		}
		res := &InternalNode{}
		for _, child := range encoded.Children {
			if child.Nibble >= 16 {
				return nil, fmt.Errorf("invalid child nibble %d", child.Nibble)
			}
			if _, present := res.Child(child.Nibble); present {
				return nil, fmt.Errorf("duplicate child nibble %d", child.Nibble)
			}
			res.SetChild(child.Nibble, ChildRef{
				Version: child.Version,
				Hash:    child.Hash,
				IsLeaf:  child.IsLeaf,
			})
		}
		return res, nil
	case leafNodeTag:
		var encoded encodedLeafNode
		if err := rlp.DecodeBytes(data[1:], &encoded); err != nil {
			return nil, fmt.Errorf("invalid leaf node encoding; %w", err)
		}
		return &LeafNode{
			Key:       encoded.Key,
			ValueHash: encoded.ValueHash,
			LeafIndex: encoded.LeafIndex,
		}, nil
	}
	return nil, fmt.Errorf("unknown node tag %d", data[0])
}
