// chd_test.go -- test suite for chd
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
	"bytes"
	"errors"
	"testing"
)

func TestCHDSimple(t *testing.T) {
	assert := newAsserter(t)

	c := newChdBuilder()
	keys := make([][]byte, 0, len(keyw))
	for _, s := range keyw {
		k := sha256Key(s)
		keys = append(keys, k)
		c.Add(k)
	}

	lookup, err := c.Freeze()
	assert(err == nil, "freeze: %s", err)

	nkeys := uint64(lookup.Len())
	assert(nkeys == uint64(len(keys)), "MPH is not minimal; exp %d, saw %d", len(keys), nkeys)

	kmap := make(map[uint64][]byte)
	for _, k := range keys {
		j := lookup.Find(k)
		assert(j < nkeys, "key %x mapping %d out-of-bounds", k, j)

		x, ok := kmap[j]
		assert(!ok, "slot %d already taken by key %x", j, x)
		kmap[j] = k
	}
}

func TestCHDLarge(t *testing.T) {
	assert := newAsserter(t)

	n := 10000
	c := newChdBuilder()
	keys := make([][]byte, n)
	for i := 0; i < n; i++ {
		keys[i] = testKey(0x1234, i)
		c.Add(keys[i])
	}

	lookup, err := c.Freeze()
	assert(err == nil, "freeze: %s", err)
	assert(lookup.Len() == n, "MPH is not minimal; exp %d, saw %d", n, lookup.Len())

	seen := newBitVector(uint64(n))
	for i, k := range keys {
		j := lookup.Find(k)
		assert(j < uint64(n), "key %d mapping %d out-of-bounds", i, j)
		assert(!seen.IsSet(j), "slot %d assigned twice", j)
		seen.Set(j)
	}
}

func TestCHDDuplicate(t *testing.T) {
	assert := newAsserter(t)

	c := newChdBuilder()
	k := sha256Key("twice")
	c.Add(k)
	c.Add(k)
	for _, s := range keyw {
		c.Add(sha256Key(s))
	}

	_, err := c.Freeze()
	assert(err != nil, "freeze succeeded over duplicate keys")
	assert(errors.Is(err, ErrMPHFail), "exp ErrMPHFail, saw %s", err)
}

func TestCHDMarshal(t *testing.T) {
	assert := newAsserter(t)

	b := newChdBuilder()
	keys := make([][]byte, len(keyw))
	for i, s := range keyw {
		keys[i] = sha256Key(s)
		b.Add(keys[i])
	}

	c, err := b.Freeze()
	assert(err == nil, "freeze failed: %s", err)

	var buf bytes.Buffer

	nw, err := c.MarshalBinary(&buf)
	assert(err == nil, "marshal failed: %s", err)
	assert(nw == buf.Len(), "marshal count %d, wrote %d", nw, buf.Len())

	mp, err := newChd(buf.Bytes())
	assert(err == nil, "unmarshal failed: %s", err)
	assert(mp.Len() == c.Len(), "unmarshal len; exp %d, saw %d", c.Len(), mp.Len())

	for i, k := range keys {
		x := c.Find(k)
		y := mp.Find(k)
		assert(x == y, "key %d <%x>: %d vs. %d", i, k, x, y)
	}
}

func TestCHDMarshalTruncated(t *testing.T) {
	assert := newAsserter(t)

	b := newChdBuilder()
	for _, s := range keyw {
		b.Add(sha256Key(s))
	}

	c, err := b.Freeze()
	assert(err == nil, "freeze failed: %s", err)

	var buf bytes.Buffer

	_, err = c.MarshalBinary(&buf)
	assert(err == nil, "marshal failed: %s", err)

	bs := buf.Bytes()
	_, err = newChd(bs[:_chdHeaderSize-1])
	assert(err != nil, "unmarshal of truncated header succeeded")

	_, err = newChd(bs[:len(bs)-1])
	assert(err != nil, "unmarshal of truncated seeds succeeded")
}
