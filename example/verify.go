// verify.go -- 'verify' command implementation
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

package main

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/opencoff/go-shard"
	flag "github.com/opencoff/pflag"
)

type verifyCommand struct{}

func init() {
	m := verifyCommand{}
	registerCommand("verify", &m)
}

// Walk every object in the shard, re-derive its content digest and
// look the digest up again. For a shard built by 'make' this proves
// the index maps every key back to its own object.
func (m *verifyCommand) run(args []string, opt *Option) (err error) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.Usage = func() {
		fmt.Printf(`Usage: verify SHARD

where 'SHARD' is the name of a shard built by 'make'
`)
		fs.PrintDefaults()
		os.Exit(0)
	}

	err = fs.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	args = fs.Args()
	if len(args) < 1 {
		return fmt.Errorf("verify: insufficient args")
	}

	fn := args[0]
	rd, err := shard.NewReader(fn, 0)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	defer rd.Close()

	var n int
	err = rd.IterFunc(func(off uint64, val []byte) error {
		sum := sha256.Sum256(val)

		got, err := rd.Find(sum[:])
		if err != nil {
			return fmt.Errorf("object at %#x: %w", off, err)
		}
		if !bytes.Equal(got, val) {
			return fmt.Errorf("object at %#x: index maps %x elsewhere", off, sum)
		}

		opt.Printf("ok %x (%d bytes at %#x)\n", sum, len(val), off)
		n++
		return nil
	})
	if err != nil {
		return fmt.Errorf("verify: %s: %w", fn, err)
	}

	if n != rd.Len() {
		return fmt.Errorf("verify: %s: walked %d objects, header says %d", fn, n, rd.Len())
	}

	fmt.Printf("%s: %d objects OK\n", fn, n)
	return nil
}

// vim: ft=go:sw=4:ts=4:noexpandtab:tw=78:
