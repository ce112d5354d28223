// header.go -- shard file magic and header codec
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
	"fmt"
)

// KeyLen is the fixed width of every key in a shard - sized for a
// SHA-256 digest. It is not stored in the file; writer and reader
// must agree on it.
const KeyLen = 32

const (
	_Magic    = "SHARD\x00"
	_MagicLen = len(_Magic)

	// 7 x u64, big-endian
	_HdrLen = 56

	_Version uint64 = 1

	// objects always start right after magic + header
	_ObjectsPos uint64 = uint64(_MagicLen + _HdrLen)
)

// The on-disk shard has the following general structure; every
// integer of the container (header, record sizes, offset table) is
// big-endian. The marshalled MPH has its own little-endian encoding:
//
//   - magic "SHARD\0" (6 bytes)
//   - 56 byte header: 7 x uint64
//      * version   currently 1
//      * nobjects  number of objects in the shard
//      * objpos    file offset of the objects region (= 62)
//      * objsize   total size of the objects region
//      * idxpos    file offset of the offset table (= objpos + objsize)
//      * idxsize   size of the offset table (= nobjects * 8)
//      * hashpos   file offset of the marshalled MPH (= idxpos + idxsize)
//   - objects region: nobjects records, each a uint64 size followed by
//     that many raw bytes
//   - offset table: nobjects uint64 file offsets; entry i is the record
//     offset of the key the MPH maps to slot i
//   - marshalled MPH, through EOF
//
// The offsets are derivable from nobjects and objsize; they are stored
// anyway so future versions can grow the header or add regions, and
// the reader verifies the algebra when it loads a shard.
type header struct {
	version  uint64
	nobjects uint64
	objpos   uint64
	objsize  uint64
	idxpos   uint64
	idxsize  uint64
	hashpos  uint64
}

// entry condition: b is at least _HdrLen bytes long.
func (h *header) marshal(b []byte) {
	be := binary.BigEndian

	be.PutUint64(b[0:8], h.version)
	be.PutUint64(b[8:16], h.nobjects)
	be.PutUint64(b[16:24], h.objpos)
	be.PutUint64(b[24:32], h.objsize)
	be.PutUint64(b[32:40], h.idxpos)
	be.PutUint64(b[40:48], h.idxsize)
	be.PutUint64(b[48:56], h.hashpos)
}

// entry condition: b is at least _HdrLen bytes long.
func (h *header) unmarshal(b []byte) error {
	be := binary.BigEndian

	h.version = be.Uint64(b[0:8])
	h.nobjects = be.Uint64(b[8:16])
	h.objpos = be.Uint64(b[16:24])
	h.objsize = be.Uint64(b[24:32])
	h.idxpos = be.Uint64(b[32:40])
	h.idxsize = be.Uint64(b[40:48])
	h.hashpos = be.Uint64(b[48:56])

	if h.version != _Version {
		return fmt.Errorf("version %d: %w", h.version, ErrBadVersion)
	}
	return nil
}

// check verifies the offset algebra of a loaded header against the
// actual file size 'sz'.
func (h *header) check(sz int64) error {
	switch {
	case h.objpos != _ObjectsPos:
		return fmt.Errorf("shard: objects region at %d, expected %d", h.objpos, _ObjectsPos)

	case h.idxpos < h.objpos || h.hashpos < h.idxpos:
		return fmt.Errorf("shard: regions out of order (%d, %d, %d)", h.objpos, h.idxpos, h.hashpos)

	case h.idxpos != h.objpos+h.objsize:
		return fmt.Errorf("shard: offset table at %d, expected %d", h.idxpos, h.objpos+h.objsize)

	case h.idxsize != h.nobjects*8:
		return fmt.Errorf("shard: offset table of %d bytes, expected %d", h.idxsize, h.nobjects*8)

	case h.hashpos != h.idxpos+h.idxsize:
		return fmt.Errorf("shard: hash table at %d, expected %d", h.hashpos, h.idxpos+h.idxsize)

	case h.hashpos+_chdHeaderSize > uint64(sz):
		return fmt.Errorf("shard: hash table past EOF (%d > %d): %w", h.hashpos, sz, ErrTooSmall)
	}
	return nil
}
