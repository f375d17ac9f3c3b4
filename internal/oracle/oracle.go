// Package oracle implements the Size & Padding Oracle (§4.2 / §2 component
// 2): given a classified line and the current location counter, it reports
// the padding that precedes the line's body and the number of bytes the
// line will emit. It looks only at the counter's value mod the unit size;
// it never resolves symbols.
package oracle

import "github.com/gmofishsauce/rvasm/internal/classify"

// unitSize returns the alignment/item unit in bytes for a family: 4 for any
// instruction or .dd item, 2 for .dw, 1 for .db and .cstr (unaligned).
// label-only and empty lines have no unit (size 0, no padding) and are
// handled directly by Measure.
func unitSize(fam classify.Family, mnemonic string) int {
	switch fam {
	case classify.FamRegRegArith, classify.FamRegImmArith, classify.FamRegImmShift,
		classify.FamLoadStore, classify.FamDataXfer, classify.FamCondBranch, classify.FamJal:
		return 4
	case classify.FamData:
		switch mnemonic {
		case ".dd":
			return 4
		case ".dw":
			return 2
		case ".db":
			return 1
		}
	case classify.FamCStr:
		return 1
	}
	return 0
}

func pad(l uint32, unit int) int {
	if unit <= 1 {
		return 0
	}
	u := uint32(unit)
	return int((u - l%u) % u)
}

// Measure computes the label address a leading label on this line would
// bind to (the counter after the line's leading padding, before its body),
// the total padding bytes inserted across the whole line, and the total
// number of bytes the line emits, starting from location counter l.
//
// A line with several data items (a .dd/.dw/.db list) is measured item by
// item: only the first item can require padding, since once the counter is
// aligned to the item's unit size every subsequent same-size item stays
// aligned (§4.2, example 4).
func Measure(line *classify.Line, l uint32) (labelAddr uint32, totalPadding, totalSize int) {
	switch line.Family {
	case classify.FamEmpty, classify.FamLabelOnly:
		return l, 0, 0

	case classify.FamRegRegArith, classify.FamRegImmArith, classify.FamRegImmShift,
		classify.FamLoadStore, classify.FamDataXfer, classify.FamCondBranch, classify.FamJal:
		p := pad(l, 4)
		return l + uint32(p), p, p + 4

	case classify.FamCStr:
		// size = string length + 1 for the terminating NUL; unaligned.
		return l, 0, len(line.Str) + 1

	case classify.FamData:
		unit := unitSize(line.Family, line.Mnemonic)
		cur := l
		first := true
		for range line.Items {
			p := pad(cur, unit)
			if first {
				labelAddr = cur + uint32(p)
				first = false
			}
			totalPadding += p
			totalSize += p + unit
			cur += uint32(p + unit)
		}
		if len(line.Items) == 0 {
			labelAddr = l
		}
		return labelAddr, totalPadding, totalSize
	}
	return l, 0, 0
}
