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
	"fmt"
	"strings"

	"github.com/Fantom-foundation/vtree/common"
)

// MaxNibbles is the maximum length of a node path, which is the number of
// nibbles in a key.
const MaxNibbles = 2 * common.KeySize

// Nibbles is a path from the root of a tree to one of its nodes, encoded as
// a sequence of 4-bit values. Unlike slices, Nibbles are comparable and can
// be used as map keys.
type Nibbles struct {
	// Nibbles packed in high/low order, unused nibbles are zero.
	packed [common.KeySize]byte
	// The number of nibbles on the path, limited to MaxNibbles.
	length uint8
}

// EmptyNibbles returns the path addressing the root of a tree.
func EmptyNibbles() Nibbles {
	return Nibbles{}
}

// NibblesFromKey returns the prefix of the given length of the key's path.
func NibblesFromKey(key common.Key, length int) Nibbles {
	if length < 0 || length > MaxNibbles {
		panic(fmt.Sprintf("invalid nibble count %d, must be in [0,%d]", length, MaxNibbles))
	}
	res := Nibbles{length: uint8(length)}
	copy(res.packed[:], key[:(length+1)/2])
	if length%2 == 1 {
		res.packed[length/2] &= 0xF0
	}
	return res
}

// NibblesFromPacked restores a path from its packed representation as
// produced by Packed.
func NibblesFromPacked(length int, packed []byte) (Nibbles, error) {
	if length < 0 || length > MaxNibbles {
		return Nibbles{}, fmt.Errorf("invalid nibble count %d", length)
	}
	if len(packed) != (length+1)/2 {
		return Nibbles{}, fmt.Errorf("invalid packed nibbles size %d for %d nibbles", len(packed), length)
	}
	if length%2 == 1 && packed[len(packed)-1]&0x0F != 0 {
		return Nibbles{}, fmt.Errorf("non-zero padding in packed nibbles %x", packed)
	}
	res := Nibbles{length: uint8(length)}
	copy(res.packed[:], packed)
	return res, nil
}

// Len returns the number of nibbles on the path.
func (n Nibbles) Len() int {
	return int(n.length)
}

// Get returns the nibble at the given position.
func (n Nibbles) Get(pos int) byte {
	if pos < 0 || pos >= int(n.length) {
		panic(fmt.Sprintf("nibble position %d out of range [0,%d)", pos, n.length))
	}
	b := n.packed[pos/2]
	if pos%2 == 0 {
		return b >> 4
	}
	return b & 0xF
}

// Push returns the path extended by the given nibble.
func (n Nibbles) Push(nibble byte) Nibbles {
	if n.length >= MaxNibbles {
		panic("cannot extend a path of maximum length")
	}
	res := n
	if res.length%2 == 0 {
		res.packed[res.length/2] = (nibble & 0xF) << 4
	} else {
		res.packed[res.length/2] |= nibble & 0xF
	}
	res.length++
	return res
}

// IsPrefixOf determines whether this path leads towards the given key.
func (n Nibbles) IsPrefixOf(key common.Key) bool {
	return NibblesFromKey(key, n.Len()) == n
}

// Packed returns the nibbles packed into bytes, high nibble first. For odd
// lengths, the last byte is padded with a zero nibble.
func (n Nibbles) Packed() []byte {
	return n.packed[:(n.length+1)/2]
}

// Compare orders paths lexicographically by nibbles.
func (n Nibbles) Compare(o Nibbles) int {
	if res := bytes.Compare(n.packed[:], o.packed[:]); res != 0 {
		return res
	}
	return int(n.length) - int(o.length)
}

func (n Nibbles) String() string {
	var builder strings.Builder
	builder.WriteRune('[')
	for i := 0; i < n.Len(); i++ {
		builder.WriteByte("0123456789abcdef"[n.Get(i)])
	}
	builder.WriteRune(']')
	return builder.String()
}
