// make.go -- 'make' command implementation
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
	"fmt"
	"os"
	"time"

	"github.com/opencoff/go-shard"
	flag "github.com/opencoff/pflag"
)

type makeCommand struct{}

func init() {
	m := makeCommand{}
	registerCommand("make", &m)
}

func (m *makeCommand) run(args []string, opt *Option) (err error) {
	var wr *shard.Writer

	defer func(e *error) {
		if *e != nil && wr != nil {
			wr.Abort()
		}
	}(&err)

	fs := flag.NewFlagSet("make", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.Usage = func() {
		fmt.Printf(`Usage: make SHARD FILE...

where:
   SHARD   is the name of the output shard file
   FILE    is one or more input files; each is stored under the
           SHA-256 digest of its content

Options:
`)
		fs.PrintDefaults()
		os.Exit(0)
	}

	err = fs.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("make: %w", err)
	}

	args = fs.Args()
	if len(args) < 2 {
		return fmt.Errorf("make: insufficient args")
	}

	fn := args[0]
	files := args[1:]

	wr, err = shard.NewWriter(fn, uint64(len(files)))
	if err != nil {
		return fmt.Errorf("make: %w", err)
	}

	for _, f := range files {
		var b []byte

		b, err = os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("make: %w", err)
		}

		sum := sha256.Sum256(b)
		if err = wr.Add(sum[:], b); err != nil {
			return fmt.Errorf("make: %s: %w", f, err)
		}
		opt.Printf("+ %s: %x (%d bytes)\n", f, sum, len(b))
	}

	start := time.Now()
	if err = wr.Freeze(); err != nil {
		return fmt.Errorf("make: %w", err)
	}
	if err = wr.Close(); err != nil {
		return fmt.Errorf("make: %w", err)
	}

	delta := time.Now().Sub(start)
	fmt.Printf("%s: %d objects, sealed in %s\n", fn, len(files), delta)
	return nil
}

// vim: ft=go:sw=4:ts=4:noexpandtab:tw=78:
