// chd.go - minimal perfect hashing for fixed-width keys
//
// This is an implementation of CHD in http://cmph.sourceforge.net/papers/esa09.pdf -
// inspired by this https://gist.github.com/pervognsen/b21f6dd13f4bcb4ff2123f0d78fcfd17
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
	"io"
	"sort"

	"github.com/dchest/siphash"
)

const (
	// upper bound (exclusive) of the seeds we try per bucket before
	// giving up; seeds 1 .. _MaxSeed-1 are tried
	_MaxSeed uint32 = 1 << 20

	// average number of keys per bucket; each final slot holds one key
	_KeysPerBucket uint64 = 4
)

// chdBuilder creates a minimal PHF over a set of fixed-width keys
// using the Compress Hash Displace algorithm. The key slices are
// borrowed from the caller and must stay unchanged until Freeze()
// returns; the builder re-reads a bucket's keys on every seed attempt
// for that bucket.
type chdBuilder struct {
	keys [][]byte
	salt uint64
}

// newChdBuilder starts the construction of a minimal perfect hash.
// Keys are added with Add(); Freeze() turns them into a constant
// time lookup table mapping each key to a unique slot in [0, n).
func newChdBuilder() *chdBuilder {
	return &chdBuilder{
		keys: make([][]byte, 0, 1024),
		salt: rand64(),
	}
}

// Add a new key to the MPH builder
func (c *chdBuilder) Add(key []byte) {
	c.keys = append(c.keys, key)
}

type bucket struct {
	slot uint64
	keys [][]byte
}
type buckets []bucket

func (b buckets) Len() int {
	return len(b)
}

func (b buckets) Less(i, j int) bool {
	return len(b[i].keys) > len(b[j].keys)
}

func (b buckets) Swap(i, j int) {
	b[i], b[j] = b[j], b[i]
}

// hash key with a given displacement seed and return the result
// modulo 'sz'. Seed 0 is reserved for picking buckets; displacement
// seeds start at 1.
func sipSlot(seed uint32, key []byte, sz, salt uint64) uint64 {
	return siphash.Hash(salt, uint64(seed), key) % sz
}

// Freeze builds the lookup table. The table is minimal: exactly one
// slot per key. Duplicate keys make every seed of their bucket
// collide, so a duplicated key always fails the build.
func (c *chdBuilder) Freeze() (*chd, error) {
	n := uint64(len(c.keys))
	if n == 0 {
		return &chd{seed: newU8(nil), salt: c.salt}, nil
	}

	nb := (n + _KeysPerBucket - 1) / _KeysPerBucket
	buckets := make(buckets, nb)
	seeds := make([]uint32, nb)

	for i := range buckets {
		buckets[i].slot = uint64(i)
	}

	for _, key := range c.keys {
		j := sipSlot(0, key, nb, c.salt)
		b := &buckets[j]
		b.keys = append(b.keys, key)
	}

	occ := newBitVector(n)
	bOcc := newBitVector(n)

	// place buckets in decreasing order of occupancy-size
	sort.Sort(buckets)

	var maxseed uint32
	for i := range buckets {
		b := &buckets[i]
		if len(b.keys) == 0 {
			break
		}
		for s := uint32(1); s < _MaxSeed; s++ {
			bOcc.Reset()
			for _, key := range b.keys {
				h := sipSlot(s, key, n, c.salt)
				if occ.IsSet(h) || bOcc.IsSet(h) {
					goto nextSeed // try next seed
				}
				bOcc.Set(h)
			}
			occ.Merge(bOcc)
			seeds[b.slot] = s
			if s > maxseed {
				maxseed = s
			}
			goto nextBucket

		nextSeed:
		}

		return nil, fmt.Errorf("chd: no conflict-free seed for a bucket of %d keys after %d tries: %w",
			len(b.keys), _MaxSeed-1, ErrMPHFail)
	nextBucket:
	}

	chd := &chd{
		seed:  makeSeeds(seeds, maxseed),
		salt:  c.salt,
		nkeys: n,
	}

	return chd, nil
}

func makeSeeds(s []uint32, max uint32) seeder {
	switch {
	case max < 256:
		return newU8(s)

	case max < 65536:
		return newU16(s)

	default:
		return newU32(s)
	}
}

// chd represents a frozen minimal PHF for the given set of keys
type chd struct {
	seed  seeder
	salt  uint64
	nkeys uint64
}

// Len returns the number of keys the PHF was built over; the lookup
// range is exactly [0, Len()).
func (c *chd) Len() int {
	return int(c.nkeys)
}

// Find returns the slot for key 'k'. The return value is meaningful
// ONLY for keys in the original key set: any other input maps to
// some arbitrary (but in-range) slot.
func (c *chd) Find(k []byte) uint64 {
	nb := uint64(c.seed.length())
	if nb == 0 {
		return 0
	}
	j := sipSlot(0, k, nb, c.salt)
	return sipSlot(c.seed.seed(j), k, c.nkeys, c.salt)
}

func (c *chd) seedSize() byte {
	return c.seed.seedsize()
}

// To compress the seed table, we will use the interface below to abstract
// seed table of different sizes: 1, 2, 4
type seeder interface {
	// given a bucket index, return the seed at the index
	seed(uint64) uint32

	// marshal to writer 'w'
	marshal(w io.Writer) (int, error)

	// unmarshal from byte slice 'b'; 'b' may alias a mapped file
	// and is copied, never retained
	unmarshal(b []byte) error

	// size of each seed in bytes (1, 2, 4)
	seedsize() byte

	// # of seeds
	length() int
}

// ensure each of these types implement the seeder interface above.
var (
	_ seeder = &u8Seeder{}
	_ seeder = &u16Seeder{}
	_ seeder = &u32Seeder{}
)

// 8 bit seed
type u8Seeder struct {
	seeds []uint8
}

func newU8(v []uint32) seeder {
	bs := make([]byte, len(v))
	for i, a := range v {
		bs[i] = byte(a & 0xff)
	}

	return &u8Seeder{
		seeds: bs,
	}
}

func (u *u8Seeder) seed(v uint64) uint32 {
	return uint32(u.seeds[v])
}

func (u *u8Seeder) length() int {
	return len(u.seeds)
}

func (u *u8Seeder) seedsize() byte {
	return 1
}

func (u *u8Seeder) marshal(w io.Writer) (int, error) {
	return writeAll(w, u.seeds)
}

func (u *u8Seeder) unmarshal(b []byte) error {
	u.seeds = append([]byte(nil), b...)
	return nil
}

// 16 bit seed
type u16Seeder struct {
	seeds []uint16
}

func newU16(v []uint32) seeder {
	us := make([]uint16, len(v))
	for i, a := range v {
		us[i] = uint16(a & 0xffff)
	}

	return &u16Seeder{
		seeds: us,
	}
}

func (u *u16Seeder) seed(v uint64) uint32 {
	return uint32(u.seeds[v])
}

func (u *u16Seeder) length() int {
	return len(u.seeds)
}

func (u *u16Seeder) seedsize() byte {
	return 2
}

func (u *u16Seeder) marshal(w io.Writer) (int, error) {
	// seeds are little-endian on disk
	us := make([]uint16, len(u.seeds))
	for i, a := range u.seeds {
		us[i] = toLEUint16(a)
	}
	return writeAll(w, u16sToByteSlice(us))
}

func (u *u16Seeder) unmarshal(b []byte) error {
	if (len(b) % 2) != 0 {
		return fmt.Errorf("chd: partial seeds of size 2 (%d bytes)", len(b))
	}

	us := make([]uint16, len(b)/2)
	copy(u16sToByteSlice(us), b)
	for i, a := range us {
		us[i] = toLEUint16(a)
	}
	u.seeds = us
	return nil
}

// 32 bit seed
type u32Seeder struct {
	seeds []uint32
}

func newU32(v []uint32) seeder {
	return &u32Seeder{
		seeds: v,
	}
}

func (u *u32Seeder) seed(v uint64) uint32 {
	return u.seeds[v]
}

func (u *u32Seeder) length() int {
	return len(u.seeds)
}

func (u *u32Seeder) seedsize() byte {
	return 4
}

func (u *u32Seeder) marshal(w io.Writer) (int, error) {
	us := make([]uint32, len(u.seeds))
	for i, a := range u.seeds {
		us[i] = toLEUint32(a)
	}
	return writeAll(w, u32sToByteSlice(us))
}

func (u *u32Seeder) unmarshal(b []byte) error {
	if (len(b) % 4) != 0 {
		return fmt.Errorf("chd: partial seeds of size 4 (%d bytes)", len(b))
	}

	us := make([]uint32, len(b)/4)
	copy(u32sToByteSlice(us), b)
	for i, a := range us {
		us[i] = toLEUint32(a)
	}
	u.seeds = us
	return nil
}

// Dump CHD meta-data to io.Writer 'w'
func (c *chd) DumpMeta(w io.Writer) {
	fmt.Fprintf(w, "  CHD with %d-bit seeds over %d buckets <salt %#x>\n",
		c.seedSize()*8, c.seed.length(), c.salt)
}
