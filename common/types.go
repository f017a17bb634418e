// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"encoding/hex"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// KeySize is the size of a tree key in bytes.
const KeySize = 32

// Hash is a 256-bit digest as used for value hashes and node hashes.
type Hash = gethcommon.Hash

// Key is a 256-bit identifier of a leaf in a versioned tree. Keys are stored
// in big-endian order, so the first nibble of a key is the high nibble of its
// first byte.
type Key [KeySize]byte

// KeyFromUint64 creates a key holding the given integer.
func KeyFromUint64(value uint64) Key {
	return KeyFromUint256(uint256.NewInt(value))
}

// KeyFromUint256 creates a key from a 256-bit integer.
func KeyFromUint256(value *uint256.Int) Key {
	return Key(value.Bytes32())
}

// ToUint256 interprets the key as a big-endian 256-bit integer.
func (k Key) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(k[:])
}

// Nibble returns the 4-bit value at the given position of the key. Position 0
// is the most significant nibble.
func (k Key) Nibble(pos int) byte {
	b := k[pos/2]
	if pos%2 == 0 {
		return b >> 4
	}
	return b & 0xF
}

func (k Key) String() string {
	return "0x" + hex.EncodeToString(k[:])
}

// ConstError is an error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}
