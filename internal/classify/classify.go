// Package classify implements the Line Classifier (§4.1 / §2 component 1):
// it recognizes which instruction family or directive a source line
// belongs to, extracting an optional leading label and the family's
// operand fields. It is shared, unmodified, by both the Symbol Table
// Builder (Pass 1) and the Encoder (Pass 2), so that both passes always
// agree on a line's family and size.
package classify

import (
	"fmt"
	"strings"

	"github.com/gmofishsauce/rvasm/internal/isa"
)

// Family identifies which of the §4.1 grammar families a line belongs to.
type Family int

const (
	FamRegRegArith Family = iota
	FamRegImmArith
	FamRegImmShift
	FamLoadStore
	FamDataXfer
	FamCondBranch
	FamJal
	FamData // .dd / .dw / .db
	FamCStr
	FamLabelOnly
	FamEmpty
)

// ImmKind identifies the syntactic shape of an immediate operand.
type ImmKind int

const (
	ImmDec   ImmKind = iota // signed decimal literal
	ImmHex                  // 0x... literal, used verbatim / unsigned
	ImmLoRef                // %lo(label)
	ImmLoHex                // %lo(0x...)
	ImmHiRef                // %hi(label)
	ImmHiHex                // %hi(0x...)
	ImmRef                  // bare label reference (data directive item)
)

// Imm is one immediate/data operand as produced by the classifier; range
// checking and resolution against the symbol table happen in the encoder,
// not here.
type Imm struct {
	Kind  ImmKind
	Dec   int64  // value for ImmDec
	Hex   uint64 // value for ImmHex / ImmLoHex / ImmHiHex
	Label string // label name for ImmLoRef / ImmHiRef / ImmRef
}

// Line is the classified form of one source line (§3 "Instruction record").
type Line struct {
	LineNo   int
	Raw      string
	HasLabel bool
	Label    string

	Family   Family
	Mnemonic string // lowercased

	Rd, Rs1, Rs2, Reg string // raw register operand text
	Imm               Imm    // for arith/shift/load-store/data-xfer forms
	Dest              string // branch/jal target label

	Items []Imm  // for FamData
	Str   string // decoded .cstr payload (no escapes, already validated printable)
}

// SyntaxError reports a line that matched no grammar family.
type SyntaxError struct {
	LineNo int
	Raw    string
	Detail string
}

func (e *SyntaxError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("syntax error: %s: %s", e.Detail, e.Raw)
	}
	return fmt.Sprintf("syntax error: %s", e.Raw)
}

// StripComment removes everything from the first '#' onward.
func StripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// Classify recognizes the family of one comment-stripped source line.
// Families are tried in the fixed order of §4.1's table; a line whose
// shape matches a family but whose mnemonic is not in that family's table
// falls through to the next family, because several families share an
// operand shape (e.g. reg-imm-arith and reg-imm-shift both look like
// "MN rd, rs1, <number>").
func Classify(raw string, lineNo int) (*Line, error) {
	stripped := StripComment(raw)
	if strings.TrimSpace(stripped) == "" {
		return &Line{LineNo: lineNo, Raw: raw, Family: FamEmpty}, nil
	}

	toks, err := tokenizeLine(stripped)
	if err != nil {
		return nil, &SyntaxError{LineNo: lineNo, Raw: raw, Detail: err.Error()}
	}

	// label-only: exactly IDENT COLON EOF, with nothing else on the line.
	if len(toks) == 3 && toks[0].Kind == TokIdent && toks[1].Kind == TokColon && toks[2].Kind == TokEOF {
		return &Line{LineNo: lineNo, Raw: raw, Family: FamLabelOnly, HasLabel: true, Label: toks[0].Text}, nil
	}

	label, hasLabel, body := splitLeadingLabel(toks)

	for _, m := range matchers {
		if line := m(body); line != nil {
			line.LineNo = lineNo
			line.Raw = raw
			line.HasLabel = hasLabel
			line.Label = label
			return line, nil
		}
	}
	return nil, &SyntaxError{LineNo: lineNo, Raw: raw}
}

// splitLeadingLabel strips an optional "IDENT COLON" prefix shared by every
// instruction/directive family (the beginning_pat of the original grammar).
func splitLeadingLabel(toks []Tok) (label string, has bool, body []Tok) {
	if len(toks) >= 2 && toks[0].Kind == TokIdent && toks[1].Kind == TokColon {
		return toks[0].Text, true, toks[2:]
	}
	return "", false, toks
}

var matchers = []func([]Tok) *Line{
	matchRegRegArith,
	matchRegImmArith,
	matchRegImmShift,
	matchLoadStore,
	matchDataXfer,
	matchCondBranch,
	matchJal,
	matchData,
	matchCStr,
}

func endsHere(toks []Tok, i int) bool {
	return i < len(toks) && toks[i].Kind == TokEOF && i == len(toks)-1
}

// matchRegRegArith: "MN rd, rs1, rs2"
func matchRegRegArith(t []Tok) *Line {
	if len(t) != 7 {
		return nil
	}
	if t[0].Kind != TokIdent || t[1].Kind != TokIdent || t[2].Kind != TokComma ||
		t[3].Kind != TokIdent || t[4].Kind != TokComma || t[5].Kind != TokIdent || t[6].Kind != TokEOF {
		return nil
	}
	mn := strings.ToLower(t[0].Text)
	if _, ok := isa.RegRegArith[mn]; !ok {
		return nil
	}
	return &Line{Family: FamRegRegArith, Mnemonic: mn, Rd: t[1].Text, Rs1: t[3].Text, Rs2: t[5].Text}
}

// matchImm12 parses a reg-imm-arith-style 12-bit immediate operand starting
// at t[i], returning the Imm and the index just past it, or ok=false.
// allowLoHex controls whether "%lo(0x...)" is accepted (load/store does not;
// §9's documented asymmetry).
func matchImm12(t []Tok, i int, allowLoHex bool) (Imm, int, bool) {
	if i >= len(t) {
		return Imm{}, i, false
	}
	if t[i].Kind == TokNumber {
		if t[i].Hex {
			return Imm{Kind: ImmHex, Hex: uint64(t[i].Dec)}, i + 1, true
		}
		return Imm{Kind: ImmDec, Dec: t[i].Dec}, i + 1, true
	}
	if t[i].Kind == TokPercent && i+3 < len(t) &&
		t[i+1].Kind == TokIdent && strings.ToLower(t[i+1].Text) == "lo" &&
		t[i+2].Kind == TokLParen {
		inner := t[i+3]
		if inner.Kind == TokIdent && i+4 < len(t) && t[i+4].Kind == TokRParen {
			return Imm{Kind: ImmLoRef, Label: inner.Text}, i + 5, true
		}
		if allowLoHex && inner.Kind == TokNumber && inner.Hex && i+4 < len(t) && t[i+4].Kind == TokRParen {
			return Imm{Kind: ImmLoHex, Hex: uint64(inner.Dec)}, i + 5, true
		}
	}
	return Imm{}, i, false
}

// matchImm20 parses a data-xfer-style 20-bit immediate ("%hi(...)" variant).
func matchImm20(t []Tok, i int) (Imm, int, bool) {
	if i >= len(t) {
		return Imm{}, i, false
	}
	if t[i].Kind == TokNumber {
		if t[i].Hex {
			return Imm{Kind: ImmHex, Hex: uint64(t[i].Dec)}, i + 1, true
		}
		return Imm{Kind: ImmDec, Dec: t[i].Dec}, i + 1, true
	}
	if t[i].Kind == TokPercent && i+4 < len(t) &&
		t[i+1].Kind == TokIdent && strings.ToLower(t[i+1].Text) == "hi" &&
		t[i+2].Kind == TokLParen {
		inner := t[i+3]
		if inner.Kind == TokIdent && t[i+4].Kind == TokRParen {
			return Imm{Kind: ImmHiRef, Label: inner.Text}, i + 5, true
		}
		if inner.Kind == TokNumber && inner.Hex && t[i+4].Kind == TokRParen {
			return Imm{Kind: ImmHiHex, Hex: uint64(inner.Dec)}, i + 5, true
		}
	}
	return Imm{}, i, false
}

// matchRegImmArith: "MN rd, rs1, imm12"
func matchRegImmArith(t []Tok) *Line {
	if len(t) < 6 {
		return nil
	}
	if t[0].Kind != TokIdent || t[1].Kind != TokIdent || t[2].Kind != TokComma ||
		t[3].Kind != TokIdent || t[4].Kind != TokComma {
		return nil
	}
	mn := strings.ToLower(t[0].Text)
	if _, ok := isa.RegImmArith[mn]; !ok {
		return nil
	}
	imm, next, ok := matchImm12(t, 5, true)
	if !ok || !endsHere(t, next) {
		return nil
	}
	return &Line{Family: FamRegImmArith, Mnemonic: mn, Rd: t[1].Text, Rs1: t[3].Text, Imm: imm}
}

// matchRegImmShift: "MN rd, rs1, shamt" — decimal or hex only, no %lo.
func matchRegImmShift(t []Tok) *Line {
	if len(t) != 7 {
		return nil
	}
	if t[0].Kind != TokIdent || t[1].Kind != TokIdent || t[2].Kind != TokComma ||
		t[3].Kind != TokIdent || t[4].Kind != TokComma || t[5].Kind != TokNumber || t[6].Kind != TokEOF {
		return nil
	}
	mn := strings.ToLower(t[0].Text)
	if _, ok := isa.RegImmShift[mn]; !ok {
		return nil
	}
	n := t[5]
	imm := Imm{Kind: ImmDec, Dec: n.Dec}
	if n.Hex {
		imm = Imm{Kind: ImmHex, Hex: uint64(n.Dec)}
	}
	return &Line{Family: FamRegImmShift, Mnemonic: mn, Rd: t[1].Text, Rs1: t[3].Text, Imm: imm}
}

// matchLoadStore: "MN reg, imm12(rs1)"
func matchLoadStore(t []Tok) *Line {
	if len(t) < 7 {
		return nil
	}
	if t[0].Kind != TokIdent || t[1].Kind != TokIdent || t[2].Kind != TokComma {
		return nil
	}
	mn := strings.ToLower(t[0].Text)
	_, isLoad := isa.Load[mn]
	_, isStore := isa.Store[mn]
	if !isLoad && !isStore {
		return nil
	}
	imm, next, ok := matchImm12(t, 3, false)
	if !ok {
		return nil
	}
	if next+2 >= len(t) {
		return nil
	}
	if t[next].Kind != TokLParen || t[next+1].Kind != TokIdent || t[next+2].Kind != TokRParen {
		return nil
	}
	if !endsHere(t, next+3) {
		return nil
	}
	return &Line{Family: FamLoadStore, Mnemonic: mn, Reg: t[1].Text, Imm: imm, Rs1: t[next+1].Text}
}

// matchDataXfer: "MN rd, imm20"
func matchDataXfer(t []Tok) *Line {
	if len(t) < 4 {
		return nil
	}
	if t[0].Kind != TokIdent || t[1].Kind != TokIdent || t[2].Kind != TokComma {
		return nil
	}
	mn := strings.ToLower(t[0].Text)
	if _, ok := isa.DataXfer[mn]; !ok {
		return nil
	}
	imm, next, ok := matchImm20(t, 3)
	if !ok || !endsHere(t, next) {
		return nil
	}
	return &Line{Family: FamDataXfer, Mnemonic: mn, Rd: t[1].Text, Imm: imm}
}

// matchCondBranch: "MN rs1, rs2, label"
func matchCondBranch(t []Tok) *Line {
	if len(t) != 7 {
		return nil
	}
	if t[0].Kind != TokIdent || t[1].Kind != TokIdent || t[2].Kind != TokComma ||
		t[3].Kind != TokIdent || t[4].Kind != TokComma || t[5].Kind != TokIdent || t[6].Kind != TokEOF {
		return nil
	}
	mn := strings.ToLower(t[0].Text)
	if _, ok := isa.CondBranch[mn]; !ok {
		return nil
	}
	return &Line{Family: FamCondBranch, Mnemonic: mn, Rs1: t[1].Text, Rs2: t[3].Text, Dest: t[5].Text}
}

// matchJal: "jal rd, label"
func matchJal(t []Tok) *Line {
	if len(t) != 5 {
		return nil
	}
	if t[0].Kind != TokIdent || strings.ToLower(t[0].Text) != "jal" {
		return nil
	}
	if t[1].Kind != TokIdent || t[2].Kind != TokComma || t[3].Kind != TokIdent || t[4].Kind != TokEOF {
		return nil
	}
	return &Line{Family: FamJal, Mnemonic: "jal", Rd: t[1].Text, Dest: t[3].Text}
}

// matchData: ".dd"/".dw"/".db", comma-separated list of {dec, hex, label}.
func matchData(t []Tok) *Line {
	if len(t) < 2 || t[0].Kind != TokDirective {
		return nil
	}
	dir := strings.ToLower(t[0].Text)
	if dir != ".dd" && dir != ".dw" && dir != ".db" {
		return nil
	}
	var items []Imm
	i := 1
	for {
		if i >= len(t) {
			return nil
		}
		switch t[i].Kind {
		case TokNumber:
			if t[i].Hex {
				items = append(items, Imm{Kind: ImmHex, Hex: uint64(t[i].Dec)})
			} else {
				items = append(items, Imm{Kind: ImmDec, Dec: t[i].Dec})
			}
			i++
		case TokIdent:
			items = append(items, Imm{Kind: ImmRef, Label: t[i].Text})
			i++
		default:
			return nil
		}
		if i < len(t) && t[i].Kind == TokComma {
			i++
			continue
		}
		break
	}
	if len(items) == 0 || !endsHere(t, i) {
		return nil
	}
	return &Line{Family: FamData, Mnemonic: dir, Items: items}
}

// matchCStr: ".cstr \"...\""
func matchCStr(t []Tok) *Line {
	if len(t) != 3 {
		return nil
	}
	if t[0].Kind != TokDirective || strings.ToLower(t[0].Text) != ".cstr" {
		return nil
	}
	if t[1].Kind != TokString || t[2].Kind != TokEOF {
		return nil
	}
	return &Line{Family: FamCStr, Mnemonic: ".cstr", Str: t[1].Text}
}
