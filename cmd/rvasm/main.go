// Command rvasm assembles a RISC-V RV32I/M source file into an object
// container (§6 "Assembler CLI").
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gmofishsauce/rvasm/internal/assemble"
	"github.com/gmofishsauce/rvasm/internal/container"
	"github.com/gmofishsauce/rvasm/internal/env"
	"github.com/gmofishsauce/rvasm/internal/symtab"
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: rvasm <source.s>\n")
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "rvasm: %v\n", err)
		os.Exit(1)
	}
}

func run(sourcePath string) error {
	outPath, err := objectPath(sourcePath)
	if err != nil {
		return err
	}

	lines, err := assemble.ReadLines(sourcePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourcePath, err)
	}

	w, err := container.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}

	blk, err := env.Build(sourcePath)
	if err != nil {
		w.Abort()
		return fmt.Errorf("building environment block: %w", err)
	}
	if err := w.WriteEnv(blk); err != nil {
		w.Abort()
		return err
	}

	code, table, err := assemble.Assemble(lines)
	if err != nil {
		w.Abort()
		return err
	}

	if err := w.WriteCode(code); err != nil {
		w.Abort()
		return err
	}
	if err := w.Finish(sourcePath); err != nil {
		w.Abort()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	printLabelTable(table)
	return nil
}

// objectPath validates the case-folded source extension and derives the
// ".bin" output path (§6).
func objectPath(sourcePath string) (string, error) {
	lower := strings.ToLower(sourcePath)
	var ext string
	switch {
	case strings.HasSuffix(lower, ".s"):
		ext = sourcePath[len(sourcePath)-2:]
	case strings.HasSuffix(lower, ".asm"):
		ext = sourcePath[len(sourcePath)-4:]
	default:
		return "", fmt.Errorf("%s: source file must have a .s or .asm extension", sourcePath)
	}
	return sourcePath[:len(sourcePath)-len(ext)] + ".bin", nil
}

func printLabelTable(table *symtab.Table) {
	for _, name := range table.SortedByAddress() {
		addr, _ := table.Lookup(name)
		fmt.Printf("%s = 0x%08x\n", name, addr)
	}
}
