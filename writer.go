// writer.go -- shard construction on top of the CHD MPH
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
	"fmt"
	"os"
)

// writer state
type wstate int

const (
	_Aborted wstate = -1
	_Open    wstate = 0
	_Frozen  wstate = 1
)

// Writer builds a shard file. The number of objects is declared up
// front; Add() must then be called exactly that many times before
// Freeze() seals the file. Keys are opaque KeyLen-byte strings and
// are copied into an in-memory index; that index doubles as the key
// source for the MPH build, so the keys are never re-read from disk.
//
// The writer holds the file exclusively from creation to Freeze().
// It is not safe for concurrent use.
type Writer struct {
	fd  *os.File
	hdr header

	// staged (key, record offset) pairs, in write order
	index []idxEntry

	// running count of the current write offset within fd
	off uint64

	nmax  uint64
	fn    string
	state wstate
}

type idxEntry struct {
	key [KeyLen]byte
	off uint64
}

// NewWriter prepares file 'fn' to hold a shard of exactly 'nobjects'
// objects. The file is created (or truncated) in place; it holds no
// valid magic until Freeze() completes, so a crash at any point
// leaves a file that NewReader() rejects.
func NewWriter(fn string, nobjects uint64) (*Writer, error) {
	fd, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		fd:    fd,
		index: make([]idxEntry, 0, nobjects),
		off:   _ObjectsPos,
		nmax:  nobjects,
		fn:    fn,
	}

	w.hdr.version = _Version
	w.hdr.nobjects = nobjects
	w.hdr.objpos = _ObjectsPos

	// Leave space for magic + header; we will fill them in when we
	// are done Freezing.
	z := make([]byte, _ObjectsPos)
	if _, err := writeAll(fd, z); err != nil {
		fd.Close()
		return nil, fmt.Errorf("%s: %w", fn, err)
	}

	return w, nil
}

// Len returns the number of objects staged so far
func (w *Writer) Len() int {
	return len(w.index)
}

// Filename returns the name of the underlying shard file
func (w *Writer) Filename() string {
	return w.fn
}

// Add appends one object under 'key'. The key must be exactly KeyLen
// bytes. Duplicate keys are not detected here; they make the MPH
// build in Freeze() fail. The object bytes are written immediately;
// only the key and the record offset are kept in memory.
func (w *Writer) Add(key []byte, val []byte) error {
	if w.state != _Open {
		return ErrFrozen
	}
	if len(key) != KeyLen {
		return ErrKeySize
	}
	if uint64(len(w.index)) >= w.nmax {
		return ErrTooManyObjects
	}

	var e idxEntry

	copy(e.key[:], key)
	e.off = w.off

	if err := writeUint64(w.fd, uint64(len(val))); err != nil {
		return fmt.Errorf("%s: object %d: %w", w.fn, len(w.index), err)
	}
	if _, err := writeAll(w.fd, val); err != nil {
		return fmt.Errorf("%s: object %d: %w", w.fn, len(w.index), err)
	}

	w.off += 8 + uint64(len(val))
	w.index = append(w.index, e)
	return nil
}

// Freeze seals the shard: it builds the MPH over the staged keys,
// writes the offset table and the marshalled MPH after the objects
// region, then rewrites the header and finally the magic. The magic
// going in last is the crash guarantee - a file that fails anywhere
// in this sequence has no valid magic. The file is left on disk in
// that state; use Abort() to remove it instead.
func (w *Writer) Freeze() error {
	if w.state != _Open {
		return ErrFrozen
	}
	if uint64(len(w.index)) != w.nmax {
		return fmt.Errorf("%s: %d objects staged, %d declared", w.fn, len(w.index), w.nmax)
	}

	n := w.nmax
	w.hdr.objsize = w.off - w.hdr.objpos

	bb := newChdBuilder()
	for i := range w.index {
		bb.Add(w.index[i].key[:])
	}

	mp, err := bb.Freeze()
	if err != nil {
		return fmt.Errorf("%s: %w", w.fn, err)
	}

	// offset table: slot i gets the record offset of the key the
	// MPH maps there. A record offset is never 0, so 0 marks a
	// slot nothing mapped to - which must not happen.
	w.hdr.idxpos = w.off
	w.hdr.idxsize = n * 8

	tbl := make([]uint64, n)
	for i := range w.index {
		e := &w.index[i]
		h := mp.Find(e.key[:])
		if tbl[h] != 0 {
			return fmt.Errorf("%s: panic: MPH slot %d assigned twice", w.fn, h)
		}
		tbl[h] = toBEUint64(e.off)
	}

	if _, err := writeAll(w.fd, u64sToByteSlice(tbl)); err != nil {
		return fmt.Errorf("%s: offset table: %w", w.fn, err)
	}
	w.off += w.hdr.idxsize

	// marshalled MPH follows the offset table, through EOF
	w.hdr.hashpos = w.off

	nw, err := mp.MarshalBinary(w.fd)
	if err != nil {
		return fmt.Errorf("%s: MPH: %w", w.fn, err)
	}
	w.off += uint64(nw)

	// Now the header - and the magic only after it
	var hb [_HdrLen]byte

	w.hdr.marshal(hb[:])
	if _, err := w.fd.Seek(int64(_MagicLen), 0); err != nil {
		return fmt.Errorf("%s: %w", w.fn, err)
	}
	if _, err := writeAll(w.fd, hb[:]); err != nil {
		return fmt.Errorf("%s: header: %w", w.fn, err)
	}

	if _, err := w.fd.Seek(0, 0); err != nil {
		return fmt.Errorf("%s: %w", w.fn, err)
	}
	if _, err := writeAll(w.fd, []byte(_Magic)); err != nil {
		return fmt.Errorf("%s: magic: %w", w.fn, err)
	}

	if err := w.fd.Sync(); err != nil {
		return fmt.Errorf("%s: %w", w.fn, err)
	}

	w.state = _Frozen
	return nil
}

// Abort removes a shard under construction. Valid until Freeze()
// succeeds; a writer whose Freeze() failed can still be aborted to
// clean up the unsealed file.
func (w *Writer) Abort() error {
	if w.state != _Open {
		return ErrFrozen
	}

	if err := os.Remove(w.fd.Name()); err != nil {
		return err
	}

	if err := w.fd.Close(); err != nil {
		return err
	}
	w.state = _Aborted
	return nil
}

// Close releases the in-memory index and the file handle. Closing a
// writer that was never frozen leaves the unsealed (invalid) file on
// disk.
func (w *Writer) Close() error {
	if w.state == _Aborted {
		return nil
	}

	w.index = nil
	return w.fd.Close()
}
