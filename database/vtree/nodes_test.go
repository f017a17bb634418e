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
	"testing"

	"github.com/Fantom-foundation/vtree/common"
)

func TestInternalNode_ChildrenCanBeSetAndRetrieved(t *testing.T) {
	node := &InternalNode{}
	if node.ChildCount() != 0 {
		t.Fatalf("new node should have no children")
	}
	if _, present := node.Child(3); present {
		t.Errorf("child of empty node should not be present")
	}
	ref := ChildRef{Version: 7, Hash: repeatedHash(1), IsLeaf: true}
	node.SetChild(3, ref)
	node.SetChild(0xf, ChildRef{})
	if got, present := node.Child(3); !present || got != ref {
		t.Errorf("unexpected child, wanted %v, got %v (present %t)", ref, got, present)
	}
	if want, got := 2, node.ChildCount(); want != got {
		t.Errorf("unexpected child count, wanted %d, got %d", want, got)
	}

	var visited []byte
	node.ForEachChild(func(nibble byte, _ ChildRef) {
		visited = append(visited, nibble)
	})
	if len(visited) != 2 || visited[0] != 3 || visited[1] != 0xf {
		t.Errorf("unexpected visit order: %v", visited)
	}
}

func TestInternalNode_CloneIsIndependent(t *testing.T) {
	node := &InternalNode{}
	node.SetChild(1, ChildRef{Version: 1})
	clone := node.Clone().(*InternalNode)
	clone.SetChild(2, ChildRef{Version: 2})
	if node.ChildCount() != 1 {
		t.Errorf("modifying clone changed original node")
	}
	if node.Hash() == clone.Hash() {
		t.Errorf("nodes with different children should have different hashes")
	}
}

func TestNodes_HashDependsOnContent(t *testing.T) {
	leaf := &LeafNode{Key: common.KeyFromUint64(1), ValueHash: repeatedHash(2), LeafIndex: 3}
	variants := []Node{
		&LeafNode{Key: common.KeyFromUint64(2), ValueHash: repeatedHash(2), LeafIndex: 3},
		&LeafNode{Key: common.KeyFromUint64(1), ValueHash: repeatedHash(3), LeafIndex: 3},
		&LeafNode{Key: common.KeyFromUint64(1), ValueHash: repeatedHash(2), LeafIndex: 4},
	}
	for _, variant := range variants {
		if leaf.Hash() == variant.Hash() {
			t.Errorf("%v and %v should have different hashes", leaf, variant)
		}
	}
	if leaf.Hash() != leaf.Clone().Hash() {
		t.Errorf("clone should have the same hash")
	}

	a, b := &InternalNode{}, &InternalNode{}
	a.SetChild(1, ChildRef{Hash: repeatedHash(1)})
	b.SetChild(2, ChildRef{Hash: repeatedHash(1)})
	if a.Hash() == b.Hash() {
		t.Errorf("children at different positions should produce different hashes")
	}
	b = &InternalNode{}
	b.SetChild(1, ChildRef{Version: 5, Hash: repeatedHash(1), IsLeaf: true})
	if a.Hash() != b.Hash() {
		t.Errorf("hash should only depend on child hashes")
	}
}

func TestNodes_EncodingCanBeDecoded(t *testing.T) {
	internal := &InternalNode{}
	internal.SetChild(0, ChildRef{Version: 1, Hash: repeatedHash(1), IsLeaf: true})
	internal.SetChild(9, ChildRef{Version: 1 << 50, Hash: repeatedHash(2)})
	nodes := []Node{
		&InternalNode{},
		internal,
		&LeafNode{},
		&LeafNode{Key: repeatedKey(0xaa), ValueHash: repeatedHash(0xbb), LeafIndex: 101},
	}
	for _, want := range nodes {
		data, err := EncodeNode(want)
		if err != nil {
			t.Fatalf("failed to encode %v: %v", want, err)
		}
		got, err := DecodeNode(data)
		if err != nil {
			t.Fatalf("failed to decode %v: %v", want, err)
		}
		if want.Hash() != got.Hash() {
			t.Errorf("decoded node differs, wanted %v, got %v", want, got)
		}
		if _, isLeaf := want.(*LeafNode); isLeaf {
			if *want.(*LeafNode) != *got.(*LeafNode) {
				t.Errorf("decoded leaf differs, wanted %v, got %v", want, got)
			}
		} else if *want.(*InternalNode) != *got.(*InternalNode) {
			t.Errorf("decoded internal node differs, wanted %v, got %v", want, got)
		}
	}
}

func TestNodes_InvalidEncodingsAreRejected(t *testing.T) {
	invalid := [][]byte{
		nil,
		{2},
		{internalNodeTag, 0xff},
		{leafNodeTag},
	}
	for _, data := range invalid {
		if _, err := DecodeNode(data); err == nil {
			t.Errorf("invalid encoding %x should be rejected", data)
		}
	}
}
