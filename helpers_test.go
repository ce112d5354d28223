// helpers_test.go - helper routines for tests
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
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"runtime"
	"testing"

	"github.com/opencoff/go-fasthash"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		if cond {
			return
		}

		_, file, line, ok := runtime.Caller(1)
		if !ok {
			file = "???"
			line = 0
		}

		s := fmt.Sprintf(msg, args...)
		t.Fatalf("%s: %d: Assertion failed: %s\n", file, line, s)
	}
}

// content address of 's' - the natural key for shard tests
func sha256Key(s string) []byte {
	h := sha256.Sum256([]byte(s))
	return h[:]
}

// deterministic KeyLen-byte key 'i' of a keyed sequence
func testKey(seed uint64, i int) []byte {
	var c [4]byte
	var k [KeyLen]byte

	binary.LittleEndian.PutUint32(c[:], uint32(i))
	for j := 0; j < KeyLen/8; j++ {
		v := fasthash.Hash64(seed+uint64(j), c[:])
		binary.BigEndian.PutUint64(k[j*8:], v)
	}
	return k[:]
}

// deterministic object of 1..1024 bytes derived from its key
func testVal(key []byte) []byte {
	n := 1 + int(fasthash.Hash64(0x6f626a73, key)%1024)
	v := make([]byte, n)
	for i := range v {
		v[i] = key[i%len(key)] ^ byte(i)
	}
	return v
}

var keyw = []string{
	"expectoration",
	"mizzenmastman",
	"stockfather",
	"pictorialness",
	"villainous",
	"unquality",
	"sized",
	"Tarahumari",
	"endocrinotherapy",
	"quicksandy",
	"heretics",
	"pediment",
	"spleen's",
	"Shepard's",
	"paralyzed",
	"megahertzes",
	"Richardson's",
	"mechanics's",
	"Springfield",
	"burlesques",
}
