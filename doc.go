// doc.go - top level documentation
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

// Package shard implements a write-once, read-many container for
// fixed-width-keyed binary objects. A shard is a single self-contained
// file: the objects are stored back to back, followed by an offset
// table indexed by a minimal perfect hash function (CHD) built over
// the keys. Any object can be fetched with O(1) disk accesses.
//
// Shards are meant for content-addressed archives - e.g. blobs keyed
// by their SHA-256 digest. The key width is the compile-time constant
// KeyLen; it is not stored in the file, so writer and reader must
// agree on it.
//
// A shard is built with a Writer: declare the object count up front,
// Add() exactly that many key/object pairs, then Freeze() to seal the
// file. Freeze writes the file magic last - a shard that crashed
// mid-seal has no valid magic and is rejected by NewReader().
//
// Lookups go through a Reader. The MPH maps any input key to some
// valid slot - it does NOT verify membership. Looking up a key that
// was never written returns bytes belonging to some other object;
// callers of content-addressed shards re-verify by hashing the
// returned bytes.
package shard
