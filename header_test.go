// header_test.go -- test suite for the header codec
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
	"encoding/binary"
	"errors"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	h := header{
		version:  _Version,
		nobjects: 3,
		objpos:   _ObjectsPos,
		objsize:  2025,
		idxpos:   _ObjectsPos + 2025,
		idxsize:  24,
		hashpos:  _ObjectsPos + 2025 + 24,
	}

	var b [_HdrLen]byte
	h.marshal(b[:])

	// every field lands big-endian at its fixed spot
	assert(binary.BigEndian.Uint64(b[0:8]) == _Version, "version encoding")
	assert(binary.BigEndian.Uint64(b[8:16]) == 3, "nobjects encoding")

	var g header
	err := g.unmarshal(b[:])
	assert(err == nil, "unmarshal: %s", err)
	assert(g == h, "roundtrip mismatch:\n%+v\n%+v", g, h)

	err = g.check(int64(g.hashpos) + _chdHeaderSize)
	assert(err == nil, "check: %s", err)
}

func TestHeaderBadVersion(t *testing.T) {
	assert := newAsserter(t)

	h := header{version: _Version + 1}

	var b [_HdrLen]byte
	h.marshal(b[:])

	var g header
	err := g.unmarshal(b[:])
	assert(errors.Is(err, ErrBadVersion), "exp ErrBadVersion, saw %s", err)
}

func TestHeaderBadAlgebra(t *testing.T) {
	assert := newAsserter(t)

	good := header{
		version:  _Version,
		nobjects: 2,
		objpos:   _ObjectsPos,
		objsize:  100,
		idxpos:   _ObjectsPos + 100,
		idxsize:  16,
		hashpos:  _ObjectsPos + 100 + 16,
	}
	sz := int64(good.hashpos) + _chdHeaderSize

	assert(good.check(sz) == nil, "good header rejected")

	bad := good
	bad.objpos++
	assert(bad.check(sz) != nil, "bad objpos accepted")

	bad = good
	bad.idxpos += 8
	assert(bad.check(sz) != nil, "bad idxpos accepted")

	bad = good
	bad.idxsize = 8
	assert(bad.check(sz) != nil, "bad idxsize accepted")

	bad = good
	bad.hashpos += 8
	assert(bad.check(sz) != nil, "bad hashpos accepted")

	assert(good.check(sz-1) != nil, "truncated file accepted")
}
