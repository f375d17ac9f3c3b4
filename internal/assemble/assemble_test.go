package assemble

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestAssembleSimpleProgram(t *testing.T) {
	lines := []string{"start: addi x1, x0, 5"}
	code, table, err := Assemble(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(code) != 4 {
		t.Fatalf("code length = %d, want 4", len(code))
	}
	if got := binary.LittleEndian.Uint32(code); got != 0x00500093 {
		t.Errorf("word = 0x%08x, want 0x00500093", got)
	}
	if addr, ok := table.Lookup("start"); !ok || addr != 0 {
		t.Errorf("start = %d, ok=%v, want 0", addr, ok)
	}
}

func TestAssembleAbortsBeforePass2OnDuplicateLabel(t *testing.T) {
	// §8 scenario 7: duplicate label aborts with no Pass 2 output.
	lines := []string{"x: addi x1, x0, 0", "x: addi x2, x0, 0"}
	code, table, err := Assemble(lines)
	if err == nil {
		t.Fatalf("expected an error for a duplicate label")
	}
	if code != nil || table != nil {
		t.Errorf("code/table should be nil on Pass 1 failure, got code=%v table=%v", code, table)
	}
}

func TestReadLinesStripsTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.s")
	if err := os.WriteFile(path, []byte("addi x1, x0, 1\naddi x2, x0, 2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "addi x1, x0, 1" || lines[1] != "addi x2, x0, 2" {
		t.Errorf("lines = %#v", lines)
	}
}
