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

func TestNibbles_EmptyPathHasNoNibbles(t *testing.T) {
	empty := EmptyNibbles()
	if empty.Len() != 0 {
		t.Errorf("unexpected length of empty path: %d", empty.Len())
	}
	if want, got := "[]", empty.String(); want != got {
		t.Errorf("unexpected print, wanted %s, got %s", want, got)
	}
	if len(empty.Packed()) != 0 {
		t.Errorf("unexpected packed form of empty path: %x", empty.Packed())
	}
}

func TestNibbles_PushAppendsNibbles(t *testing.T) {
	path := EmptyNibbles()
	for i := 0; i < MaxNibbles; i++ {
		next := path.Push(byte(i % 16))
		if path.Len() != i {
			t.Fatalf("push modified original path")
		}
		path = next
		if path.Len() != i+1 {
			t.Fatalf("unexpected length, wanted %d, got %d", i+1, path.Len())
		}
		for j := 0; j <= i; j++ {
			if want, got := byte(j%16), path.Get(j); want != got {
				t.Fatalf("unexpected nibble at %d, wanted %d, got %d", j, want, got)
			}
		}
	}
}

func TestNibbles_PushBeyondMaximumLengthPanics(t *testing.T) {
	path := NibblesFromKey(common.Key{}, MaxNibbles)
	defer func() {
		if recover() == nil {
			t.Errorf("extending a full path should panic")
		}
	}()
	path.Push(1)
}

func TestNibbles_FromKeyMatchesPushedNibbles(t *testing.T) {
	key := common.Key{0x12, 0x34, 0x56}
	for length := 0; length <= 6; length++ {
		want := EmptyNibbles()
		for i := 0; i < length; i++ {
			want = want.Push(key.Nibble(i))
		}
		if got := NibblesFromKey(key, length); want != got {
			t.Errorf("unexpected path of length %d, wanted %v, got %v", length, want, got)
		}
		if !want.IsPrefixOf(key) {
			t.Errorf("%v should be a prefix of %v", want, key)
		}
	}
	if want, got := "[1234]", NibblesFromKey(key, 4).String(); want != got {
		t.Errorf("unexpected print, wanted %s, got %s", want, got)
	}
}

func TestNibbles_IsPrefixOfDetectsDifferentPaths(t *testing.T) {
	key := common.Key{0x12, 0x34}
	tests := []struct {
		path Nibbles
		want bool
	}{
		{path(), true},
		{path(1), true},
		{path(1, 2, 3), true},
		{path(2), false},
		{path(1, 3), false},
		{path(1, 2, 3, 5), false},
	}
	for _, test := range tests {
		if got := test.path.IsPrefixOf(key); test.want != got {
			t.Errorf("unexpected result for %v, wanted %t, got %t", test.path, test.want, got)
		}
	}
}

func TestNibbles_PackedFormCanBeRestored(t *testing.T) {
	paths := []Nibbles{
		path(),
		path(0),
		path(0xf),
		path(1, 2),
		path(1, 2, 3),
		NibblesFromKey(common.KeyFromUint64(12345), MaxNibbles),
	}
	for _, want := range paths {
		got, err := NibblesFromPacked(want.Len(), want.Packed())
		if err != nil {
			t.Fatalf("failed to restore %v: %v", want, err)
		}
		if want != got {
			t.Errorf("unexpected path, wanted %v, got %v", want, got)
		}
	}
}

func TestNibbles_InvalidPackedFormsAreRejected(t *testing.T) {
	tests := map[string]struct {
		length int
		packed []byte
	}{
		"negative length":  {-1, nil},
		"too long":         {MaxNibbles + 1, make([]byte, 33)},
		"missing byte":     {3, []byte{0x12}},
		"extra byte":       {2, []byte{0x12, 0x30}},
		"non-zero padding": {3, []byte{0x12, 0x34}},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NibblesFromPacked(test.length, test.packed); err == nil {
				t.Errorf("invalid packed nibbles should be rejected")
			}
		})
	}
}

func TestNibbles_CompareOrdersLexicographically(t *testing.T) {
	ordered := []Nibbles{
		path(),
		path(0),
		path(0, 0),
		path(0, 1),
		path(1),
		path(1, 0),
		path(0xf),
	}
	for i, a := range ordered {
		for j, b := range ordered {
			got := a.Compare(b)
			switch {
			case i < j && got >= 0:
				t.Errorf("%v should be less than %v", a, b)
			case i == j && got != 0:
				t.Errorf("%v should be equal to itself", a)
			case i > j && got <= 0:
				t.Errorf("%v should be greater than %v", a, b)
			}
		}
	}
}
