// Package isa holds the static RV32I/M instruction-set tables: register
// names and ABI aliases, per-family mnemonic-to-base-opcode maps, directive
// names, and the combined reserved-word set used to reject label and branch
// target names (§6, GLOSSARY).
package isa

import "strings"

// Registers maps a register name (case-insensitive) to its number 0..31,
// including every ABI alias. Both "s0" and "fp" map to register 8.
var Registers = map[string]int{
	"x0": 0, "x1": 1, "x2": 2, "x3": 3, "x4": 4, "x5": 5, "x6": 6, "x7": 7,
	"x8": 8, "x9": 9, "x10": 10, "x11": 11, "x12": 12, "x13": 13, "x14": 14, "x15": 15,
	"x16": 16, "x17": 17, "x18": 18, "x19": 19, "x20": 20, "x21": 21, "x22": 22, "x23": 23,
	"x24": 24, "x25": 25, "x26": 26, "x27": 27, "x28": 28, "x29": 29, "x30": 30, "x31": 31,

	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4, "t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9, "a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15,
	"a6": 16, "a7": 17, "s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"s8": 24, "s9": 25, "s10": 26, "s11": 27, "t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// RegisterNumber resolves a register name case-insensitively.
func RegisterNumber(name string) (int, bool) {
	n, ok := Registers[strings.ToLower(name)]
	return n, ok
}

const (
	opR  = 0b0110011
	opI  = 0b0010011
	opL  = 0b0000011
	opS  = 0b0100011
	opB  = 0b1100011
	opJ  = 0b1101111
	opJR = 0b1100111
	opLU = 0b0110111
	opAU = 0b0010111
)

func pack(funct7, funct3 uint32, op uint32) uint32 {
	return (funct7 << 25) | (funct3 << 12) | op
}

// RegRegArith holds the R-type base opcodes (RV32I arithmetic plus the M
// extension) for the "MN rd, rs1, rs2" family. mulhsu is encoded with
// funct3=010 per the RISC-V spec; the Python original this tool was
// distilled from used funct3=000 (colliding with mul), a bug flagged in the
// open questions and deliberately not reproduced here.
var RegRegArith = map[string]uint32{
	"add":  pack(0b0000000, 0b000, opR),
	"sub":  pack(0b0100000, 0b000, opR),
	"and":  pack(0b0000000, 0b111, opR),
	"or":   pack(0b0000000, 0b110, opR),
	"xor":  pack(0b0000000, 0b100, opR),
	"slt":  pack(0b0000000, 0b010, opR),
	"sltu": pack(0b0000000, 0b011, opR),
	"sll":  pack(0b0000000, 0b001, opR),
	"srl":  pack(0b0000000, 0b101, opR),
	"sra":  pack(0b0100000, 0b101, opR),

	"mul":    pack(0b0000001, 0b000, opR),
	"mulh":   pack(0b0000001, 0b001, opR),
	"mulhsu": pack(0b0000001, 0b010, opR),
	"mulhu":  pack(0b0000001, 0b011, opR),
	"div":    pack(0b0000001, 0b100, opR),
	"divu":   pack(0b0000001, 0b101, opR),
	"rem":    pack(0b0000001, 0b110, opR),
	"remu":   pack(0b0000001, 0b111, opR),
}

// RegImmArith holds the I-type base opcodes for "MN rd, rs1, imm12".
// Decimal-form range checks differ by mnemonic: addi/slti/jalr take a
// signed 12-bit immediate, andi/ori/xori/sltiu an unsigned one (§4.4).
var RegImmArith = map[string]uint32{
	"addi":  pack(0, 0b000, opI),
	"andi":  pack(0, 0b111, opI),
	"ori":   pack(0, 0b110, opI),
	"xori":  pack(0, 0b100, opI),
	"slti":  pack(0, 0b010, opI),
	"sltiu": pack(0, 0b011, opI),
	"jalr":  pack(0, 0b000, opJR),
}

// SignedImmArith is the set of reg-imm-arith mnemonics whose decimal
// immediate is range-checked as signed 12-bit ([-2048, 2047]).
var SignedImmArith = map[string]bool{"addi": true, "slti": true, "jalr": true}

// UnsignedImmArith is the set whose decimal immediate is range-checked as
// unsigned 12-bit ([0, 4095]).
var UnsignedImmArith = map[string]bool{"andi": true, "ori": true, "xori": true, "sltiu": true}

// RegImmShift holds the I-type shift opcodes for "MN rd, rs1, shamt".
var RegImmShift = map[string]uint32{
	"slli": pack(0b0000000, 0b001, opI),
	"srli": pack(0b0000000, 0b101, opI),
	"srai": pack(0b0100000, 0b101, opI),
}

// Load holds load-instruction base opcodes for "MN rd, imm12(rs1)".
var Load = map[string]uint32{
	"lb":  pack(0, 0b000, opL),
	"lh":  pack(0, 0b001, opL),
	"lw":  pack(0, 0b010, opL),
	"lbu": pack(0, 0b100, opL),
	"lhu": pack(0, 0b101, opL),
}

// Store holds store-instruction base opcodes for "MN rs2, imm12(rs1)".
var Store = map[string]uint32{
	"sb": pack(0, 0b000, opS),
	"sh": pack(0, 0b001, opS),
	"sw": pack(0, 0b010, opS),
}

// DataXfer holds the U-type base opcodes for "MN rd, imm20".
var DataXfer = map[string]uint32{
	"lui":   opLU,
	"auipc": opAU,
}

// CondBranch holds the B-type base opcodes for "MN rs1, rs2, label".
var CondBranch = map[string]uint32{
	"beq":  pack(0, 0b000, opB),
	"bne":  pack(0, 0b001, opB),
	"blt":  pack(0, 0b100, opB),
	"bge":  pack(0, 0b101, opB),
	"bltu": pack(0, 0b110, opB),
	"bgeu": pack(0, 0b111, opB),
}

// JalOpcode is the base J-type opcode for "jal rd, label".
const JalOpcode uint32 = opJ

// Directives lists the data/string pseudo-ops and their item unit size in
// bytes (0 for .cstr, which is variable-length and handled specially).
var Directives = map[string]int{
	".dd":   4,
	".dw":   2,
	".db":   1,
	".cstr": 0,
}

// reserved is the case-insensitively compared set of every register name,
// ABI alias, mnemonic, and directive (§6 "Reserved words").
var reserved map[string]bool

func init() {
	reserved = make(map[string]bool)
	add := func(tables ...map[string]uint32) {
		for _, t := range tables {
			for mn := range t {
				reserved[mn] = true
			}
		}
	}
	for r := range Registers {
		reserved[r] = true
	}
	add(RegRegArith, RegImmArith, RegImmShift, Load, Store, DataXfer, CondBranch)
	reserved["jal"] = true
	for d := range Directives {
		reserved[d] = true
	}
}

// IsReserved reports whether name (compared case-insensitively) is a
// register name, ABI alias, mnemonic, or directive.
func IsReserved(name string) bool {
	return reserved[strings.ToLower(name)]
}
