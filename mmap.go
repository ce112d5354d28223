// mmap.go -- alias typed slices to byte slices and back
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package shard

import (
	"unsafe"
)

// The view functions below reinterpret a typed slice as its raw bytes.
// They are only used on slices we allocate ourselves; regions of a
// mapped shard are NOT viewed this way - nothing past the header is
// guaranteed to be word aligned (records have arbitrary lengths).

// uint16 slice to byte-slice
func u16sToByteSlice(v []uint16) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*2)
}

// uint32 slice to byte-slice
func u32sToByteSlice(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// uint64 slice to byte-slice
func u64sToByteSlice(v []uint64) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*8)
}
