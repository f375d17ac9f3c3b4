// Package encode implements the Encoder (Pass 2, §4.4): it re-walks the
// classified source, resolves operands against the symbol table built by
// internal/symtab, performs every range check, and emits bit-exact
// little-endian RV32I/M machine words and data bytes.
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/gmofishsauce/rvasm/internal/classify"
	"github.com/gmofishsauce/rvasm/internal/isa"
	"github.com/gmofishsauce/rvasm/internal/symtab"
)

// Run performs Pass 2 over the same split source lines Pass 1 saw. It
// returns the assembled code+data bytes and any diagnostics. Diagnostics
// do not stop the walk: every line's worth of padding and body bytes
// (zeroed on error) is still appended, so the returned buffer's length
// matches the location counter Pass 1 computed whenever there are no
// errors (§8 "two-pass consistency").
func Run(lines []string, table *symtab.Table) (code []byte, errs []string) {
	var counter uint32
	for i, raw := range lines {
		lineNo := i + 1
		line, err := classify.Classify(raw, lineNo)
		if err != nil {
			// Already reported in Pass 1; Pass 2 does not re-report syntax
			// errors, but it must not advance the counter for a line that
			// never classified (mirrors Pass 1's "do not advance" rule).
			continue
		}
		if line.Family == classify.FamEmpty || line.Family == classify.FamLabelOnly {
			continue
		}

		b, lerrs := encodeLine(line, lineNo, counter, table)
		code = append(code, b...)
		errs = append(errs, lerrs...)
		counter += uint32(len(b))
	}
	return code, errs
}

func pad(counter uint32, unit int) int {
	if unit <= 1 {
		return 0
	}
	u := uint32(unit)
	return int((u - counter%u) % u)
}

func errf(lineNo int, format string, args ...any) string {
	return fmt.Sprintf("line %d: %s", lineNo, fmt.Sprintf(format, args...))
}

func encodeLine(line *classify.Line, lineNo int, counter uint32, table *symtab.Table) ([]byte, []string) {
	switch line.Family {
	case classify.FamRegRegArith, classify.FamRegImmArith, classify.FamRegImmShift,
		classify.FamLoadStore, classify.FamDataXfer, classify.FamCondBranch, classify.FamJal:
		p := pad(counter, 4)
		pc := counter + uint32(p)
		word, err := encodeInstruction(line, lineNo, pc, table)
		out := make([]byte, p+4)
		if err != nil {
			return out, []string{err.Error()}
		}
		binary.LittleEndian.PutUint32(out[p:], word)
		return out, nil

	case classify.FamData:
		return encodeData(line, lineNo, counter, table)

	case classify.FamCStr:
		out := make([]byte, len(line.Str)+1)
		copy(out, line.Str)
		return out, nil
	}
	return nil, nil
}

func encodeInstruction(line *classify.Line, lineNo int, pc uint32, table *symtab.Table) (uint32, error) {
	switch line.Family {
	case classify.FamRegRegArith:
		base := isa.RegRegArith[line.Mnemonic]
		rd, err := regNum(line.Rd)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		rs1, err := regNum(line.Rs1)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		rs2, err := regNum(line.Rs2)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		return base | uint32(rd)<<7 | uint32(rs1)<<15 | uint32(rs2)<<20, nil

	case classify.FamRegImmArith:
		base := isa.RegImmArith[line.Mnemonic]
		rd, err := regNum(line.Rd)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		rs1, err := regNum(line.Rs1)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		signed := isa.SignedImmArith[line.Mnemonic]
		imm, err := resolveImm12(line.Imm, table, signed)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		return base | uint32(rd)<<7 | uint32(rs1)<<15 | (imm&0xFFF)<<20, nil

	case classify.FamRegImmShift:
		base := isa.RegImmShift[line.Mnemonic]
		rd, err := regNum(line.Rd)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		rs1, err := regNum(line.Rs1)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		shamt, err := resolveShamt(line.Imm)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		return base | uint32(rd)<<7 | uint32(rs1)<<15 | (shamt&0x1F)<<20, nil

	case classify.FamLoadStore:
		_, isLoad := isa.Load[line.Mnemonic]
		rs1, err := regNum(line.Rs1)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		reg, err := regNum(line.Reg)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		imm, err := resolveImm12(line.Imm, table, true)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		if isLoad {
			base := isa.Load[line.Mnemonic]
			return base | uint32(reg)<<7 | uint32(rs1)<<15 | (imm&0xFFF)<<20, nil
		}
		base := isa.Store[line.Mnemonic]
		lo := imm & 0x1F
		hi := (imm >> 5) & 0x7F
		return base | lo<<7 | uint32(rs1)<<15 | uint32(reg)<<20 | hi<<25, nil

	case classify.FamDataXfer:
		base := isa.DataXfer[line.Mnemonic]
		rd, err := regNum(line.Rd)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		imm, err := resolveImm20(line.Imm, table)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		return base | uint32(rd)<<7 | imm, nil

	case classify.FamCondBranch:
		base := isa.CondBranch[line.Mnemonic]
		rs1, err := regNum(line.Rs1)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		rs2, err := regNum(line.Rs2)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		target, ok := table.Lookup(line.Dest)
		if !ok {
			return 0, lineErr(lineNo, fmt.Errorf("undefined label %q", line.Dest))
		}
		offset := int64(target) - int64(pc)
		if offset < -4096 || offset > 4094 || offset%2 != 0 {
			return 0, lineErr(lineNo, fmt.Errorf("branch target %s out of range (offset %d)", line.Dest, offset))
		}
		u := offset
		if u < 0 {
			u += 8192
		}
		uu := uint32(u)
		word := base
		word |= uint32(rs1) << 15
		word |= uint32(rs2) << 20
		word |= ((uu >> 12) & 1) << 31
		word |= ((uu >> 11) & 1) << 7
		word |= ((uu >> 5) & 0x3F) << 25
		word |= ((uu >> 1) & 0xF) << 8
		return word, nil

	case classify.FamJal:
		rd, err := regNum(line.Rd)
		if err != nil {
			return 0, lineErr(lineNo, err)
		}
		target, ok := table.Lookup(line.Dest)
		if !ok {
			return 0, lineErr(lineNo, fmt.Errorf("undefined label %q", line.Dest))
		}
		if target%2 != 0 {
			return 0, lineErr(lineNo, fmt.Errorf("jal target %s is not even", line.Dest))
		}
		if (target & 0xFFF00000) != (pc & 0xFFF00000) {
			return 0, lineErr(lineNo, fmt.Errorf("jal target %s is out of the current 1MiB page", line.Dest))
		}
		t := target & 0x1FFFFF
		word := isa.JalOpcode
		word |= uint32(rd) << 7
		word |= ((t >> 20) & 1) << 31
		word |= ((t >> 1) & 0x3FF) << 21
		word |= ((t >> 11) & 1) << 20
		word |= ((t >> 12) & 0xFF) << 12
		return word, nil
	}
	return 0, fmt.Errorf("line %d: internal: unhandled family", lineNo)
}

func lineErr(lineNo int, err error) error {
	return fmt.Errorf("line %d: %v", lineNo, err)
}

func regNum(name string) (int, error) {
	n, ok := isa.RegisterNumber(name)
	if !ok {
		return 0, fmt.Errorf("unknown register %q", name)
	}
	return n, nil
}

// resolveImm12 resolves a reg-imm-arith/load-store 12-bit immediate. signed
// selects the decimal-literal range check (§4.4): true for addi/slti/jalr
// and signed load/store offsets, false for andi/ori/xori/sltiu.
func resolveImm12(imm classify.Imm, table *symtab.Table, signed bool) (uint32, error) {
	switch imm.Kind {
	case classify.ImmDec:
		if signed {
			if imm.Dec < -2048 || imm.Dec > 2047 {
				return 0, fmt.Errorf("immediate %d out of range [-2048, 2047]", imm.Dec)
			}
		} else {
			if imm.Dec < 0 || imm.Dec > 4095 {
				return 0, fmt.Errorf("immediate %d out of range [0, 4095]", imm.Dec)
			}
		}
		return uint32(imm.Dec) & 0xFFF, nil
	case classify.ImmHex:
		if imm.Hex > 0xFFF {
			return 0, fmt.Errorf("hex immediate 0x%x out of range [0x000, 0xFFF]", imm.Hex)
		}
		return uint32(imm.Hex), nil
	case classify.ImmLoRef:
		addr, ok := table.Lookup(imm.Label)
		if !ok {
			return 0, fmt.Errorf("undefined label %q", imm.Label)
		}
		return addr & 0xFFF, nil
	case classify.ImmLoHex:
		return uint32(imm.Hex) & 0xFFF, nil
	}
	return 0, fmt.Errorf("internal: unexpected immediate kind")
}

func resolveShamt(imm classify.Imm) (uint32, error) {
	switch imm.Kind {
	case classify.ImmDec:
		if imm.Dec < 0 || imm.Dec > 31 {
			return 0, fmt.Errorf("shift amount %d out of range [0, 31]", imm.Dec)
		}
		return uint32(imm.Dec), nil
	case classify.ImmHex:
		if imm.Hex > 31 {
			return 0, fmt.Errorf("shift amount 0x%x out of range [0, 31]", imm.Hex)
		}
		return uint32(imm.Hex), nil
	}
	return 0, fmt.Errorf("internal: unexpected immediate kind")
}

// resolveImm20 resolves a data-xfer (lui/auipc) 20-bit immediate, already
// positioned into bits [31:12] of the returned word.
func resolveImm20(imm classify.Imm, table *symtab.Table) (uint32, error) {
	switch imm.Kind {
	case classify.ImmDec:
		if imm.Dec < 0 || imm.Dec > 1048575 {
			return 0, fmt.Errorf("immediate %d out of range [0, 1048575]", imm.Dec)
		}
		return uint32(imm.Dec) << 12, nil
	case classify.ImmHex:
		if imm.Hex > 0xFFFFF {
			return 0, fmt.Errorf("hex immediate 0x%x out of range [0x00000, 0xFFFFF]", imm.Hex)
		}
		return uint32(imm.Hex) << 12, nil
	case classify.ImmHiRef:
		addr, ok := table.Lookup(imm.Label)
		if !ok {
			return 0, fmt.Errorf("undefined label %q", imm.Label)
		}
		return addr & 0xFFFFF000, nil
	case classify.ImmHiHex:
		return uint32(imm.Hex) & 0xFFFFF000, nil
	}
	return 0, fmt.Errorf("internal: unexpected immediate kind")
}

// encodeData encodes a .dd/.dw/.db line: each item is individually padded
// to its unit size (only the first item can actually need padding, §4.2)
// and range-checked per §4.4's data directive table. Label references are
// only valid for .dd; .dw and .db reject them.
func encodeData(line *classify.Line, lineNo int, counter uint32, table *symtab.Table) ([]byte, []string) {
	unit := isa.Directives[line.Mnemonic]
	var out []byte
	var errs []string
	cur := counter

	for _, item := range line.Items {
		p := pad(cur, unit)
		out = append(out, make([]byte, p)...)
		cur += uint32(p)

		itemBytes, err := encodeDataItem(line.Mnemonic, unit, item, table)
		if err != nil {
			errs = append(errs, errf(lineNo, "%v", err))
			itemBytes = make([]byte, unit)
		}
		out = append(out, itemBytes...)
		cur += uint32(unit)
	}
	return out, errs
}

func encodeDataItem(mnemonic string, unit int, item classify.Imm, table *symtab.Table) ([]byte, error) {
	b := make([]byte, unit)
	switch mnemonic {
	case ".dd":
		switch item.Kind {
		case classify.ImmDec:
			if item.Dec < -(1<<31) || item.Dec > (1<<31)-1 {
				return nil, fmt.Errorf("decimal %d out of range for .dd", item.Dec)
			}
			binary.LittleEndian.PutUint32(b, uint32(item.Dec))
		case classify.ImmHex:
			if item.Hex > 0xFFFFFFFF {
				return nil, fmt.Errorf("hex 0x%x out of range for .dd", item.Hex)
			}
			binary.LittleEndian.PutUint32(b, uint32(item.Hex))
		case classify.ImmRef:
			addr, ok := table.Lookup(item.Label)
			if !ok {
				return nil, fmt.Errorf("undefined label %q", item.Label)
			}
			binary.LittleEndian.PutUint32(b, addr)
		}
	case ".dw":
		switch item.Kind {
		case classify.ImmDec:
			if item.Dec < -32768 || item.Dec > 32767 {
				return nil, fmt.Errorf("decimal %d out of range for .dw", item.Dec)
			}
			binary.LittleEndian.PutUint16(b, uint16(item.Dec))
		case classify.ImmHex:
			if item.Hex > 0xFFFF {
				return nil, fmt.Errorf("hex 0x%x out of range for .dw", item.Hex)
			}
			binary.LittleEndian.PutUint16(b, uint16(item.Hex))
		case classify.ImmRef:
			return nil, fmt.Errorf("label reference %q not allowed in .dw", item.Label)
		}
	case ".db":
		switch item.Kind {
		case classify.ImmDec:
			if item.Dec < -128 || item.Dec > 127 {
				return nil, fmt.Errorf("decimal %d out of range for .db", item.Dec)
			}
			b[0] = byte(item.Dec)
		case classify.ImmHex:
			if item.Hex > 0xFF {
				return nil, fmt.Errorf("hex 0x%x out of range for .db", item.Hex)
			}
			b[0] = byte(item.Hex)
		case classify.ImmRef:
			return nil, fmt.Errorf("label reference %q not allowed in .db", item.Label)
		}
	}
	return b, nil
}
