package oracle

import (
	"testing"

	"github.com/gmofishsauce/rvasm/internal/classify"
)

func mustClassify(t *testing.T, line string) *classify.Line {
	t.Helper()
	l, err := classify.Classify(line, 1)
	if err != nil {
		t.Fatalf("classify(%q): %v", line, err)
	}
	return l
}

func TestMeasureInstructions(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		l           uint32
		wantLabel   uint32
		wantPadding int
		wantSize    int
	}{
		{name: "aligned instruction", line: "addi x1, x0, 5", l: 0, wantLabel: 0, wantPadding: 0, wantSize: 4},
		{name: "unaligned instruction needs 2 bytes padding", line: "addi x1, x0, 5", l: 2, wantLabel: 4, wantPadding: 2, wantSize: 6},
		{name: "unaligned instruction needs 1 byte padding", line: "addi x1, x0, 5", l: 3, wantLabel: 4, wantPadding: 1, wantSize: 5},
		{name: "empty line", line: "   ", l: 7, wantLabel: 7, wantPadding: 0, wantSize: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := mustClassify(t, tt.line)
			label, pad, size := Measure(line, tt.l)
			if label != tt.wantLabel || pad != tt.wantPadding || size != tt.wantSize {
				t.Errorf("Measure() = (%d, %d, %d), want (%d, %d, %d)",
					label, pad, size, tt.wantLabel, tt.wantPadding, tt.wantSize)
			}
		})
	}
}

func TestMeasureDataDirectives(t *testing.T) {
	// §4.2 example 4: four .db bytes at 0..3, then .dw is already aligned
	// to 4, so no padding is needed.
	db := mustClassify(t, ".db 1,2,3,4")
	_, pad, size := Measure(db, 0)
	if pad != 0 || size != 4 {
		t.Fatalf(".db measure = (%d, %d), want (0, 4)", pad, size)
	}

	dw := mustClassify(t, ".dw 0x1234")
	_, pad, size = Measure(dw, 4)
	if pad != 0 || size != 2 {
		t.Fatalf(".dw measure at offset 4 = (%d, %d), want (0, 2)", pad, size)
	}

	// §4.2 example 5: one .db byte at 0, then .dd needs 3 padding bytes to
	// reach offset 4.
	dd := mustClassify(t, ".dd 0x11223344")
	label, pad, size := Measure(dd, 1)
	if label != 4 || pad != 3 || size != 7 {
		t.Fatalf(".dd measure at offset 1 = (%d, %d, %d), want (4, 3, 7)", label, pad, size)
	}
}

func TestMeasureCStr(t *testing.T) {
	line := mustClassify(t, `.cstr "AB"`)
	label, pad, size := Measure(line, 5)
	if label != 5 || pad != 0 || size != 3 {
		t.Fatalf(".cstr measure = (%d, %d, %d), want (5, 0, 3)", label, pad, size)
	}
}
