package hwp

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

// Paragraph text is a sequence of UTF-16LE code units interleaved with HWP
// control characters below 0x20. Controls come in three shapes: character
// controls occupy one code unit, while inline and extended controls occupy
// eight code units (the control plus seven units of payload). Skipping by
// the control's declared width keeps the decoder aligned regardless of the
// payload content.
const controlUnits = 8

var wideControls = [32]bool{
	1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true,
	9: true, 11: true, 12: true, 14: true, 15: true, 16: true, 17: true,
	18: true, 19: true, 20: true, 21: true, 22: true, 23: true,
}

const (
	controlTab       = 0x09
	controlLineBreak = 0x0A
	controlParaBreak = 0x0D
)

// decodeParaText converts one paragraph-text record payload into text,
// splitting on paragraph-break controls. Surrogate pairs decode losslessly
// via utf16.Decode; unrepresentable or dangling units become the Unicode
// replacement character rather than being dropped silently.
func decodeParaText(data []byte) []string {
	var paragraphs []string
	var units []uint16

	flush := func() {
		text := strings.TrimRight(string(utf16.Decode(units)), "\n")
		if strings.TrimSpace(text) != "" {
			paragraphs = append(paragraphs, text)
		}
		units = units[:0]
	}

	for i := 0; i+2 <= len(data); {
		code := binary.LittleEndian.Uint16(data[i:])

		switch {
		case code == controlParaBreak:
			flush()
			i += 2
		case code == controlLineBreak:
			units = append(units, '\n')
			i += 2
		case code == controlTab:
			units = append(units, '\t')
			i += controlUnits * 2
		case code < 0x20 && wideControls[code]:
			i += controlUnits * 2
		case code < 0x20:
			i += 2
		default:
			units = append(units, code)
			i += 2
		}
	}

	flush()
	return paragraphs
}
