package classify

import "testing"

func TestClassifyFamilies(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantFam  Family
		wantErr  bool
		wantMn   string
		wantLbl  string
		hasLabel bool
	}{
		{name: "reg-reg add", line: "add x1, x2, x3", wantFam: FamRegRegArith, wantMn: "add"},
		{name: "reg-reg mul", line: "mul x1, x2, x3", wantFam: FamRegRegArith, wantMn: "mul"},
		{name: "reg-imm addi decimal", line: "addi x1, x0, -5", wantFam: FamRegImmArith, wantMn: "addi"},
		{name: "reg-imm addi hex", line: "addi x1, x0, 0xFF", wantFam: FamRegImmArith, wantMn: "addi"},
		{name: "reg-imm lo ref", line: "addi x1, x0, %lo(foo)", wantFam: FamRegImmArith, wantMn: "addi"},
		{name: "reg-imm lo hex", line: "addi x1, x0, %lo(0x1234)", wantFam: FamRegImmArith, wantMn: "addi"},
		{name: "shift slli", line: "slli x1, x1, 31", wantFam: FamRegImmShift, wantMn: "slli"},
		{name: "load lw", line: "lw x1, 4(x2)", wantFam: FamLoadStore, wantMn: "lw"},
		{name: "store sw", line: "sw x1, 4(x2)", wantFam: FamLoadStore, wantMn: "sw"},
		{name: "load-store lo hex rejected", line: "lw x1, %lo(0x1234)(x2)", wantErr: true},
		{name: "data-xfer lui decimal", line: "lui a0, 5", wantFam: FamDataXfer, wantMn: "lui"},
		{name: "data-xfer lui hi ref", line: "lui a0, %hi(foo)", wantFam: FamDataXfer, wantMn: "lui"},
		{name: "cond branch", line: "beq x1, x2, L", wantFam: FamCondBranch, wantMn: "beq"},
		{name: "jal", line: "jal x1, L", wantFam: FamJal, wantMn: "jal"},
		{name: "data dd", line: ".dd 1, 2, foo", wantFam: FamData, wantMn: ".dd"},
		{name: "data dw", line: ".dw 0x1234", wantFam: FamData, wantMn: ".dw"},
		{name: "data db", line: ".db 1,2,3,4", wantFam: FamData, wantMn: ".db"},
		{name: "cstr", line: `.cstr "AB"`, wantFam: FamCStr},
		{name: "label only", line: "start:", wantFam: FamLabelOnly, hasLabel: true, wantLbl: "start"},
		{name: "empty", line: "   ", wantFam: FamEmpty},
		{name: "comment only", line: "   # nothing here", wantFam: FamEmpty},
		{name: "labeled instruction", line: "start: addi x1, x0, 5", wantFam: FamRegImmArith, hasLabel: true, wantLbl: "start"},
		{name: "syntax error", line: "frobnicate x1, x2, x3, x4", wantErr: true},
		{name: "unknown mnemonic falls through to error", line: "bogus x1, x2, x3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Classify(tt.line, 1)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none (family %v)", line.Family)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if line.Family != tt.wantFam {
				t.Errorf("family = %v, want %v", line.Family, tt.wantFam)
			}
			if tt.wantMn != "" && line.Mnemonic != tt.wantMn {
				t.Errorf("mnemonic = %q, want %q", line.Mnemonic, tt.wantMn)
			}
			if line.HasLabel != tt.hasLabel {
				t.Errorf("hasLabel = %v, want %v", line.HasLabel, tt.hasLabel)
			}
			if tt.hasLabel && line.Label != tt.wantLbl {
				t.Errorf("label = %q, want %q", line.Label, tt.wantLbl)
			}
		})
	}
}

func TestMulIsNotRegImmShift(t *testing.T) {
	// "mul rd, rs1, rs2" shares no shape with reg-imm-shift (3 operands,
	// not 2 plus a number), so this only exercises family-fallthrough
	// ordering between reg-reg-arith and reg-imm-arith.
	line, err := Classify("mul x1, x2, x3", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Family != FamRegRegArith {
		t.Errorf("family = %v, want FamRegRegArith", line.Family)
	}
}

func TestCStrRejectsNonPrintable(t *testing.T) {
	_, err := Classify(".cstr \"AB\x01\"", 1)
	if err == nil {
		t.Fatalf("expected error for non-printable string byte")
	}
}

func TestEmptyCStr(t *testing.T) {
	line, err := Classify(`.cstr ""`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Str != "" {
		t.Errorf("str = %q, want empty", line.Str)
	}
}
