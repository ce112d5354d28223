// bitvector_test.go -- test suite for bitvector
//
// (c) Sudhi Herle 2018
//
// License GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package shard

import (
	"testing"
)

func TestBitVectorBasic(t *testing.T) {
	assert := newAsserter(t)

	bv := newBitVector(100)
	assert(bv.Size() == 128, "exp 128 bits, saw %d", bv.Size())

	for i := uint64(0); i < 100; i += 3 {
		bv.Set(i)
	}

	for i := uint64(0); i < 100; i++ {
		if i%3 == 0 {
			assert(bv.IsSet(i), "bit %d not set", i)
		} else {
			assert(!bv.IsSet(i), "bit %d set", i)
		}
	}

	bv.Reset()
	for i := uint64(0); i < 100; i++ {
		assert(!bv.IsSet(i), "bit %d survived reset", i)
	}
}

func TestBitVectorMerge(t *testing.T) {
	assert := newAsserter(t)

	a := newBitVector(64)
	b := newBitVector(64)

	a.Set(1)
	a.Set(33)
	b.Set(2)
	b.Set(63)

	a.Merge(b)
	for _, i := range []uint64{1, 2, 33, 63} {
		assert(a.IsSet(i), "bit %d lost in merge", i)
	}
	assert(!a.IsSet(0), "bit 0 appeared in merge")
	assert(!b.IsSet(1), "merge modified the source")
}
