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
	"bytes"
	"slices"
	"testing"

	"github.com/Fantom-foundation/vtree/backend"
)

func TestKeys_NodeKeysCanBeDecoded(t *testing.T) {
	keys := []NodeKey{
		RootKey(0),
		RootKey(1 << 40),
		{Version: 12, Nibbles: path(1, 2, 3)},
		{Version: 12, Nibbles: path(1, 2, 3, 4)},
	}
	for _, want := range keys {
		encoded := nodeDbKey(want)
		if encoded[0] != byte(backend.NodeKey) {
			t.Errorf("node key %v is not in node table space: %x", want, encoded)
		}
		got, err := decodeNodeDbKey(encoded)
		if err != nil {
			t.Fatalf("failed to decode %x: %v", encoded, err)
		}
		if want != got {
			t.Errorf("unexpected key, wanted %v, got %v", want, got)
		}
	}
}

func TestKeys_StaleKeysCanBeDecoded(t *testing.T) {
	keys := []StaleNodeKey{
		{Key: RootKey(0), StaleSince: 1},
		{Key: NodeKey{Version: 3, Nibbles: path(0xa, 0xb)}, StaleSince: 7},
	}
	for _, want := range keys {
		got, err := decodeStaleDbKey(staleDbKey(want))
		if err != nil {
			t.Fatalf("failed to decode %v: %v", want, err)
		}
		if want != got {
			t.Errorf("unexpected key, wanted %v, got %v", want, got)
		}
	}
}

func TestKeys_InvalidKeysAreRejected(t *testing.T) {
	stale := staleDbKey(StaleNodeKey{Key: RootKey(1), StaleSince: 2})
	node := nodeDbKey(NodeKey{Version: 1, Nibbles: path(1, 2, 3)})
	invalid := [][]byte{
		nil,
		{byte(backend.NodeKey)},
		stale,
		node[:len(node)-1],
	}
	for _, key := range invalid {
		if _, err := decodeNodeDbKey(key); err == nil {
			t.Errorf("invalid node key %x should be rejected", key)
		}
	}
	if _, err := decodeStaleDbKey(node); err == nil {
		t.Errorf("node key should not be accepted as stale key")
	}
}

func TestKeys_StaleKeysAreOrderedByStaleVersion(t *testing.T) {
	keys := []StaleNodeKey{
		{Key: NodeKey{Version: 5, Nibbles: path(1)}, StaleSince: 6},
		{Key: RootKey(0), StaleSince: 1},
		{Key: RootKey(1), StaleSince: 256},
		{Key: NodeKey{Version: 0, Nibbles: path(2)}, StaleSince: 1},
	}
	encoded := make([][]byte, 0, len(keys))
	for _, key := range keys {
		encoded = append(encoded, staleDbKey(key))
	}
	slices.SortFunc(encoded, bytes.Compare)

	var versions []uint64
	for _, data := range encoded {
		key, err := decodeStaleDbKey(data)
		if err != nil {
			t.Fatalf("failed to decode key: %v", err)
		}
		versions = append(versions, key.StaleSince)
	}
	if want := []uint64{1, 1, 6, 256}; !slices.Equal(want, versions) {
		t.Errorf("unexpected order, wanted %v, got %v", want, versions)
	}
}

func TestKeys_VersionPrefixMatchesKeysOfVersion(t *testing.T) {
	prefix := versionPrefix(backend.StaleKeyKey, 5)
	if !bytes.HasPrefix(staleDbKey(StaleNodeKey{Key: RootKey(4), StaleSince: 5}), prefix) {
		t.Errorf("stale key of version 5 should match prefix")
	}
	if bytes.HasPrefix(staleDbKey(StaleNodeKey{Key: RootKey(5), StaleSince: 6}), prefix) {
		t.Errorf("stale key of version 6 should not match prefix")
	}
	if !bytes.HasPrefix(nodeDbKey(RootKey(5)), versionPrefix(backend.NodeKey, 5)) {
		t.Errorf("node of version 5 should match prefix")
	}
	if want, got := prefix[1:], versionStart(5); !bytes.Equal(want, got) {
		t.Errorf("unexpected version start, wanted %x, got %x", want, got)
	}
}
