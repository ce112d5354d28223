// errors.go - public errors exposed by shard
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
	"errors"
	"fmt"
)

func errShortWrite(who string, exp, saw int) error {
	return fmt.Errorf("%s: incomplete write; exp %d, saw %d", who, exp, saw)
}

var (
	// ErrShortRead is returned when the file yields fewer bytes than asked for.
	ErrShortRead = errors.New("short read")

	// ErrBadMagic is returned when the file does not start with the shard
	// magic. An unsealed or half-sealed shard fails the same way.
	ErrBadMagic = errors.New("bad or missing file magic")

	// ErrBadVersion is returned when the header version is not one this
	// package understands.
	ErrBadVersion = errors.New("unsupported shard version")

	// ErrFrozen is returned when Add() or Freeze() is called on a writer
	// that is already sealed or aborted.
	ErrFrozen = errors.New("shard already frozen")

	// ErrTooManyObjects is returned when Add() is called more times than
	// the object count declared at creation.
	ErrTooManyObjects = errors.New("object count exceeded")

	// ErrMPHFail is returned when the minimal perfect hash cannot be
	// built over the staged keys - duplicate keys are the usual cause.
	ErrMPHFail = errors.New("failed to build MPH")

	// ErrKeySize is returned when a key is not exactly KeyLen bytes.
	ErrKeySize = errors.New("key is not KeyLen bytes")

	// ErrNoKey is returned for lookups against a shard with no objects.
	ErrNoKey = errors.New("no such key")

	// ErrTooSmall is returned when a file or hash blob is too short to
	// hold what its metadata claims.
	ErrTooSmall = errors.New("not enough data to unmarshal")
)
