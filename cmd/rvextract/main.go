// Command rvextract reads an rvasm object container, prints its
// environment block, and restores the archived source into a destination
// directory (§6 "Extractor CLI", §4.6).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gmofishsauce/rvasm/internal/container"
	"github.com/gmofishsauce/rvasm/internal/env"
)

func main() {
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: rvextract <object.bin> <dest-dir>\n")
		os.Exit(1)
	}

	if err := run(flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "rvextract: %v\n", err)
		os.Exit(1)
	}
}

func run(objectPath, destDir string) error {
	f, err := os.Open(objectPath)
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := container.ReadHeader(f)
	if err != nil {
		return err
	}

	blk, err := container.ReadEnv(f, h)
	if err != nil {
		return err
	}
	printEnv(blk)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	return container.ExtractSource(f, h, destDir)
}

func printEnv(b *env.Block) {
	fmt.Printf("user name:     %s\n", b.UserName)
	fmt.Printf("uuid (v1):     %s\n", b.UUID1)
	fmt.Printf("uuid (v4):     %s\n", b.UUID4)
	fmt.Printf("assembled:     %s\n", env.FormatTime(b.AssembleTime))
	fmt.Printf("source ctime:  %s\n", env.FormatTime(b.SourceCTime))
	fmt.Printf("source atime:  %s\n", env.FormatTime(b.SourceATime))
	fmt.Printf("source mtime:  %s\n", env.FormatTime(b.SourceMTime))
}
