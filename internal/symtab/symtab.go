// Package symtab implements the Symbol Table Builder (Pass 1, §4.3): it
// walks every classified source line, advances a location counter by the
// padding and size the oracle reports, and binds each leading label to its
// post-padding, pre-body address.
package symtab

import (
	"fmt"
	"sort"

	"github.com/gmofishsauce/rvasm/internal/classify"
	"github.com/gmofishsauce/rvasm/internal/isa"
	"github.com/gmofishsauce/rvasm/internal/oracle"
)

// Table is the resolved label -> address map produced by Pass 1.
type Table struct {
	addrs map[string]uint32
}

func newTable() *Table {
	return &Table{addrs: make(map[string]uint32)}
}

// Lookup returns a label's bound address (case-sensitive, per §3).
func (t *Table) Lookup(name string) (uint32, bool) {
	a, ok := t.addrs[name]
	return a, ok
}

// Names returns every bound label name, in no particular order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.addrs))
	for n := range t.addrs {
		names = append(names, n)
	}
	return names
}

// Build runs Pass 1 over already-split source lines: it classifies each
// line, advances the location counter by the family's padding and size,
// and binds any leading label. It returns the resulting table, the final
// location counter, and the accumulated diagnostics (one per malformed or
// mis-labeled line). Classification errors and label errors do not stop
// the walk: every line is still accounted for in the byte count so that
// Pass 2, run independently, arrives at the same final counter (§8
// "two-pass consistency") whenever the input is otherwise well-formed.
func Build(lines []string) (*Table, uint32, []string) {
	t := newTable()
	var counter uint32
	var errs []string

	for i, raw := range lines {
		lineNo := i + 1
		line, err := classify.Classify(raw, lineNo)
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		if line.Family == classify.FamEmpty {
			continue
		}

		labelAddr, _, size := oracle.Measure(line, counter)

		if line.HasLabel {
			if err := bindLabel(t, line.Label, labelAddr, lineNo); err != nil {
				errs = append(errs, err.Error())
			}
		}

		counter += uint32(size)
	}

	return t, counter, errs
}

func bindLabel(t *Table, label string, addr uint32, lineNo int) error {
	if isa.IsReserved(label) {
		return fmt.Errorf("line %d: label %q is a reserved word", lineNo, label)
	}
	if _, dup := t.addrs[label]; dup {
		return fmt.Errorf("line %d: label %q already defined", lineNo, label)
	}
	t.addrs[label] = addr
	return nil
}

// SortedByAddress returns label names sorted by bound address, ties broken
// by name (the label-table printout format from the original tool, §6).
func (t *Table) SortedByAddress() []string {
	names := t.Names()
	sort.Slice(names, func(i, j int) bool {
		ai, aj := t.addrs[names[i]], t.addrs[names[j]]
		if ai != aj {
			return ai < aj
		}
		return names[i] < names[j]
	})
	return names
}
