// get.go -- 'get' command implementation
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
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/opencoff/go-shard"
	flag "github.com/opencoff/pflag"
)

type getCommand struct{}

func init() {
	m := getCommand{}
	registerCommand("get", &m)
}

func (m *getCommand) run(args []string, opt *Option) (err error) {
	var out string

	fs := flag.NewFlagSet("get", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.StringVarP(&out, "output", "o", "", "Write the object to file `F` (default stdout)")
	fs.Usage = func() {
		fmt.Printf(`Usage: get [options] SHARD DIGEST

where:
   SHARD    is the name of the shard file
   DIGEST   is the hex SHA-256 content digest of the wanted object

The shard index maps any digest to some object; get re-hashes the
returned bytes and fails if they don't match DIGEST.

Options:
`)
		fs.PrintDefaults()
		os.Exit(0)
	}

	err = fs.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}

	args = fs.Args()
	if len(args) < 2 {
		return fmt.Errorf("get: insufficient args")
	}

	key, err := hex.DecodeString(args[1])
	if err != nil {
		return fmt.Errorf("get: bad digest: %w", err)
	}
	if len(key) != shard.KeyLen {
		return fmt.Errorf("get: digest must be %d hex bytes", shard.KeyLen)
	}

	rd, err := shard.NewReader(args[0], 0)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	defer rd.Close()

	val, err := rd.Find(key)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}

	sum := sha256.Sum256(val)
	if subtle.ConstantTimeCompare(sum[:], key) != 1 {
		return fmt.Errorf("get: %x: no such object", key)
	}

	w := os.Stdout
	if len(out) > 0 {
		w, err = os.Create(out)
		if err != nil {
			return fmt.Errorf("get: %w", err)
		}
		defer w.Close()
	}

	if _, err = w.Write(val); err != nil {
		return fmt.Errorf("get: %w", err)
	}
	return nil
}

// vim: ft=go:sw=4:ts=4:noexpandtab:tw=78:
