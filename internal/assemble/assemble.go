// Package assemble wires the Line Classifier, Size & Padding Oracle,
// Symbol Table Builder, and Encoder into the two-pass driver described in
// §2 and §5: Pass 2 never starts unless Pass 1 completed without errors,
// and every error from either pass is reported before assembly aborts.
package assemble

import (
	"bufio"
	"fmt"
	"os"

	"github.com/gmofishsauce/rvasm/internal/encode"
	"github.com/gmofishsauce/rvasm/internal/symtab"
)

// ReadLines reads path one line at a time, matching the line-oriented
// semantics the rest of the assembler assumes (a line is a string with no
// trailing newline).
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Assemble runs both passes over lines. On a Pass 1 error, Pass 2 never
// runs. Every diagnostic from whichever pass failed is printed to stderr
// before Assemble returns a summary error; the caller is responsible for
// deleting any partial object file (§4.5, §7).
func Assemble(lines []string) (code []byte, table *symtab.Table, err error) {
	table, _, errs1 := symtab.Build(lines)
	if len(errs1) > 0 {
		reportAll(errs1)
		return nil, nil, fmt.Errorf("assembly failed with %d error(s) in pass 1", len(errs1))
	}

	code, errs2 := encode.Run(lines, table)
	if len(errs2) > 0 {
		reportAll(errs2)
		return nil, nil, fmt.Errorf("assembly failed with %d error(s) in pass 2", len(errs2))
	}

	return code, table, nil
}

func reportAll(msgs []string) {
	for _, m := range msgs {
		fmt.Fprintln(os.Stderr, m)
	}
}
