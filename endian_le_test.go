// endian_le_test.go -- endian conversion tests (on LE machines)
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

//go:build 386 || amd64 || arm || arm64 || ppc64le || mipsle || mips64le
// +build 386 amd64 arm arm64 ppc64le mipsle mips64le

package shard

import (
	"encoding/binary"
	"testing"
)

func TestEndianLE(t *testing.T) {
	assert := newAsserter(t)

	v := uint64(0x0102030405060708)

	// on a LE host, toBEUint64 must produce the same bytes
	// binary.BigEndian writes
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w := binary.LittleEndian.Uint64(b[:])
	assert(toBEUint64(v) == w, "toBEUint64: exp %#x, saw %#x", w, toBEUint64(v))
	assert(toBEUint64(toBEUint64(v)) == v, "toBEUint64 is not an involution")

	assert(toLEUint16(0x1234) == 0x1234, "toLEUint16 not idempotent on LE")
	assert(toLEUint32(0x12345678) == 0x12345678, "toLEUint32 not idempotent on LE")
}
