// reader.go -- shard lookups over a sealed file
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
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/golang-lru/arc/v2"
	"github.com/opencoff/go-mmap"
)

// Reader answers point lookups against a sealed shard built by a
// Writer. The offset table and the marshalled MPH are served from a
// read-only mapping of the file; object payloads are fetched with
// positioned reads on the reader's own descriptor and cached.
//
// A Reader is not safe for concurrent use; open one Reader per
// goroutine instead. Independent Readers on the same file are fine -
// each owns its descriptor and mapping.
type Reader struct {
	hdr header
	mph *chd

	cache *arc.ARCCache[string, []byte]

	// mapped offset table and objects region
	tbl  []byte
	objs []byte

	// original mmap slice
	mm *mmap.Mapping
	fd *os.File
	fn string
}

// NewReader opens the sealed shard in file 'fn' and prepares it for
// querying. A file without valid magic - including one whose Freeze()
// never completed - fails with ErrBadMagic. Objects are
// opportunistically cached after reading from disk; we retain upto
// 'cache' number of objects in memory (default 128).
func NewReader(fn string, cache int) (rd *Reader, err error) {
	fd, err := os.Open(fn)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			fd.Close()
		}
	}()

	if cache <= 0 {
		cache = 128
	}

	rd = &Reader{
		fd: fd,
		fn: fn,
	}

	st, err := fd.Stat()
	if err != nil {
		return nil, fmt.Errorf("%s: can't stat: %w", fn, err)
	}

	if st.Size() < int64(_ObjectsPos) {
		return nil, fmt.Errorf("%s: file too small or corrupted: %w", fn, ErrTooSmall)
	}

	var mb [_MagicLen]byte

	if _, err = readFull(fd, mb[:]); err != nil {
		return nil, fmt.Errorf("%s: can't read magic: %w", fn, err)
	}
	if !bytes.Equal(mb[:], []byte(_Magic)) {
		return nil, fmt.Errorf("%s: %w", fn, ErrBadMagic)
	}

	var hb [_HdrLen]byte

	if _, err = readFull(fd, hb[:]); err != nil {
		return nil, fmt.Errorf("%s: can't read header: %w", fn, err)
	}
	if err = rd.hdr.unmarshal(hb[:]); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	if err = rd.hdr.check(st.Size()); err != nil {
		return nil, err
	}

	rd.cache, err = arc.NewARC[string, []byte](cache)
	if err != nil {
		return nil, err
	}

	// Map the whole file read-only; the objects region and offset
	// table are random-accessed through the mapping, the MPH is
	// unmarshalled from it.
	mm := mmap.New(fd)

	mapping, err := mm.Map(st.Size(), 0, mmap.PROT_READ, mmap.F_READAHEAD)
	if err != nil {
		return nil, fmt.Errorf("%s: can't mmap %d bytes: %w", fn, st.Size(), err)
	}
	rd.mm = mapping

	bs := mapping.Bytes()
	rd.objs = bs[rd.hdr.objpos:rd.hdr.idxpos]
	rd.tbl = bs[rd.hdr.idxpos:rd.hdr.hashpos]

	mph, err := newChd(bs[rd.hdr.hashpos:])
	if err != nil {
		mapping.Unmap()
		return nil, fmt.Errorf("%s: can't unmarshal MPH index: %w", fn, err)
	}

	if uint64(mph.Len()) != rd.hdr.nobjects {
		mapping.Unmap()
		return nil, fmt.Errorf("%s: MPH over %d keys, header says %d", fn, mph.Len(), rd.hdr.nobjects)
	}

	rd.mph = mph
	return rd, nil
}

// Len returns the number of objects in the shard
func (rd *Reader) Len() int {
	return int(rd.hdr.nobjects)
}

// Close unmaps and closes the shard. The returned error is the file
// close status; everything else is released regardless.
func (rd *Reader) Close() error {
	if rd.fd == nil {
		return nil
	}

	rd.mm.Unmap()
	err := rd.fd.Close()
	rd.cache.Purge()
	rd.mph = nil
	rd.tbl = nil
	rd.objs = nil
	rd.fd = nil
	rd.fn = ""
	return err
}

// Lookup looks up 'key' and returns the stored object bytes.
// Returns false on any failure. See Find() for the membership
// caveat.
func (rd *Reader) Lookup(key []byte) ([]byte, bool) {
	v, err := rd.Find(key)
	if err != nil {
		return nil, false
	}

	return v, true
}

// Find looks up 'key' and returns the stored object bytes. The MPH
// maps ANY key to some valid slot: asking for a key that was never
// written returns the bytes of whatever object owns that slot.
// Content-addressed callers re-verify by hashing the result.
func (rd *Reader) Find(key []byte) ([]byte, error) {
	if v, ok := rd.cache.Get(string(key)); ok {
		return v, nil
	}

	sz, err := rd.FindSize(key)
	if err != nil {
		return nil, err
	}

	val := make([]byte, sz)
	if err = rd.ReadObject(val); err != nil {
		return nil, err
	}

	rd.cache.Add(string(key), val)
	return val, nil
}

// FindSize looks up 'key' and returns the size of its object. The
// file is left positioned at the first byte of the object: a
// subsequent ReadObject() with a buffer of exactly this size fetches
// the payload without an extra seek or copy. The membership caveat
// of Find() applies.
func (rd *Reader) FindSize(key []byte) (uint64, error) {
	if len(key) != KeyLen {
		return 0, ErrKeySize
	}
	if rd.hdr.nobjects == 0 {
		return 0, ErrNoKey
	}

	h := rd.mph.Find(key)
	off := binary.BigEndian.Uint64(rd.tbl[h*8 : h*8+8])

	if off < rd.hdr.objpos || off+8 > rd.hdr.idxpos {
		return 0, fmt.Errorf("%s: slot %d: record offset %d out of bounds", rd.fn, h, off)
	}

	if _, err := rd.fd.Seek(int64(off), 0); err != nil {
		return 0, fmt.Errorf("%s: %w", rd.fn, err)
	}

	sz, err := readUint64(rd.fd)
	if err != nil {
		return 0, fmt.Errorf("%s: record at %d: %w", rd.fn, off, err)
	}

	if sz > rd.hdr.idxpos-off-8 {
		return 0, fmt.Errorf("%s: record at %d: size %d overruns objects region", rd.fn, off, sz)
	}

	return sz, nil
}

// ReadObject reads len(buf) object bytes from the current file
// position. It must follow a successful FindSize().
func (rd *Reader) ReadObject(buf []byte) error {
	if _, err := readFull(rd.fd, buf); err != nil {
		return fmt.Errorf("%s: %w", rd.fn, err)
	}
	return nil
}

// IterFunc walks the objects region in write order and calls 'fp'
// with each record's file offset and payload. The payload aliases
// the mapping; copy it if it must outlive the Reader. If 'fp'
// returns non-nil, the iteration stops and the error is propagated
// to the caller.
func (rd *Reader) IterFunc(fp func(off uint64, val []byte) error) error {
	be := binary.BigEndian

	var off uint64
	for off < uint64(len(rd.objs)) {
		if off+8 > uint64(len(rd.objs)) {
			return fmt.Errorf("%s: truncated record header at %d", rd.fn, rd.hdr.objpos+off)
		}

		sz := be.Uint64(rd.objs[off : off+8])
		if sz > uint64(len(rd.objs))-off-8 {
			return fmt.Errorf("%s: record at %d overruns objects region", rd.fn, rd.hdr.objpos+off)
		}

		val := rd.objs[off+8 : off+8+sz]
		if err := fp(rd.hdr.objpos+off, val); err != nil {
			return err
		}
		off += 8 + sz
	}
	return nil
}

// Desc provides a human description of the shard
func (rd *Reader) Desc() string {
	var w strings.Builder

	fmt.Fprintf(&w, "shard: %d objects, %d bytes of objects at %#x, offset table at %#x\n",
		rd.hdr.nobjects, rd.hdr.objsize, rd.hdr.objpos, rd.hdr.idxpos)
	rd.mph.DumpMeta(&w)
	return w.String()
}

// DumpMeta dumps the shard metadata and the offset table to 'w'
func (rd *Reader) DumpMeta(w io.Writer) {
	fmt.Fprintf(w, "%s", rd.Desc())

	be := binary.BigEndian
	for i := uint64(0); i < rd.hdr.nobjects; i++ {
		off := be.Uint64(rd.tbl[i*8 : i*8+8])
		sz := be.Uint64(rd.objs[off-rd.hdr.objpos : off-rd.hdr.objpos+8])
		fmt.Fprintf(w, "  %3d: %d bytes at %#x\n", i, sz, off)
	}
}
