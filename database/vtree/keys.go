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

	"github.com/Fantom-foundation/vtree/backend"
)

const versionSize = 8 // version number size (uint64)

// nodeKeyPayloadSize is the maximum size of an encoded NodeKey without the
// table space, consisting of
// * the version in big-endian order, so nodes are grouped by version
// * the number of nibbles of the path
// * the packed nibbles
const nodeKeyPayloadSize = versionSize + 1 + MaxNibbles/2

func appendVersion(dst []byte, version uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, version)
}

func appendNodeKey(dst []byte, key NodeKey) []byte {
	dst = appendVersion(dst, key.Version)
	dst = append(dst, byte(key.Nibbles.Len()))
	return append(dst, key.Nibbles.Packed()...)
}

func decodeNodeKeyPayload(data []byte) (NodeKey, error) {
	if len(data) < versionSize+1 {
		return NodeKey{}, fmt.Errorf("node key too short: %x", data)
	}
	version := binary.BigEndian.Uint64(data)
	nibbles, err := NibblesFromPacked(int(data[versionSize]), data[versionSize+1:])
	if err != nil {
		return NodeKey{}, fmt.Errorf("invalid node key %x; %w", data, err)
	}
	return NodeKey{Version: version, Nibbles: nibbles}, nil
}

// nodeDbKey is the database key of a node, the node key prefixed by the
// node table space.
func nodeDbKey(key NodeKey) []byte {
	res := make([]byte, 0, 1+nodeKeyPayloadSize)
	res = append(res, byte(backend.NodeKey))
	return appendNodeKey(res, key)
}

// decodeNodeDbKey is the inverse of nodeDbKey.
func decodeNodeDbKey(data []byte) (NodeKey, error) {
	if len(data) == 0 || data[0] != byte(backend.NodeKey) {
		return NodeKey{}, fmt.Errorf("not a node key: %x", data)
	}
	return decodeNodeKeyPayload(data[1:])
}

// staleDbKey is the database key of a stale node record, consisting of
// * the stale key table space
// * the version the node became stale in, so records are grouped by it
// * the node key of the stale node
func staleDbKey(key StaleNodeKey) []byte {
	res := make([]byte, 0, 1+versionSize+nodeKeyPayloadSize)
	res = append(res, byte(backend.StaleKeyKey))
	res = appendVersion(res, key.StaleSince)
	return appendNodeKey(res, key.Key)
}

// decodeStaleDbKey is the inverse of staleDbKey.
func decodeStaleDbKey(data []byte) (StaleNodeKey, error) {
	if len(data) < 1+versionSize || data[0] != byte(backend.StaleKeyKey) {
		return StaleNodeKey{}, fmt.Errorf("not a stale key: %x", data)
	}
	key, err := decodeNodeKeyPayload(data[1+versionSize:])
	if err != nil {
		return StaleNodeKey{}, err
	}
	return StaleNodeKey{
		Key:        key,
		StaleSince: binary.BigEndian.Uint64(data[1:]),
	}, nil
}

// versionPrefix returns the prefix of all keys of the given table space
// associated to the given version.
func versionPrefix(table backend.TableSpace, version uint64) []byte {
	res := make([]byte, 0, 1+versionSize)
	res = append(res, byte(table))
	return appendVersion(res, version)
}

// versionStart returns the iteration start of versionPrefix relative to
// the table space prefix.
func versionStart(version uint64) []byte {
	return appendVersion(nil, version)
}
