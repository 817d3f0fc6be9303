package pdftext

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// run is one text show operation positioned in text space.
type run struct {
	x, y float64
	seq  int
	text string
}

// lineTolerance is the vertical distance, in text-space units, within which
// runs are considered part of the same line.
const lineTolerance = 2.5

// tjSpaceThreshold is the TJ kerning adjustment (thousandths of text space)
// beyond which a gap is rendered as a space.
const tjSpaceThreshold = -100

// assembleText interprets a page content stream's text operators and
// reassembles the runs in reading order: lines grouped by y position, top to
// bottom, runs within a line left to right.
func assembleText(content []byte) string {
	runs := interpret(content)
	if len(runs) == 0 {
		return ""
	}

	lines := groupLines(runs)

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, r := range line {
			if j > 0 && needsSpace(line[j-1].text, r.text) {
				sb.WriteByte(' ')
			}
			sb.WriteString(r.text)
		}
	}

	return normalizeSpace(sb.String())
}

type textState struct {
	x, y         float64
	lineX, lineY float64
	leading      float64
}

// interpret walks the content stream tracking the text positioning operators
// that determine layout (Tm, Td, TD, TL, T*) and collecting every show
// operator's text with its position. Graphics state beyond text positioning
// is ignored.
func interpret(content []byte) []run {
	var (
		runs    []run
		state   textState
		numbers []float64
		str     string
		hasStr  bool
		array   []tjItem
		inArray bool
		seq     int
	)

	show := func(text string) {
		if text == "" {
			return
		}
		runs = append(runs, run{x: state.x, y: state.y, seq: seq, text: text})
		seq++
	}

	nextLine := func() {
		state.lineY -= state.leading
		state.x, state.y = state.lineX, state.lineY
	}

	clear := func() {
		numbers = numbers[:0]
		str, hasStr = "", false
	}

	tokens := newTokenizer(content)
	for {
		tok, ok := tokens.next()
		if !ok {
			break
		}

		switch tok.kind {
		case tokNumber:
			if inArray {
				array = append(array, tjItem{adjust: tok.number, isAdjust: true})
			} else {
				numbers = append(numbers, tok.number)
			}
		case tokString:
			if inArray {
				array = append(array, tjItem{text: tok.text})
			} else {
				str, hasStr = tok.text, true
			}
		case tokArrayStart:
			inArray = true
			array = array[:0]
		case tokArrayEnd:
			inArray = false
		case tokOperator:
			switch tok.text {
			case "BT":
				state = textState{}
			case "Tm":
				if len(numbers) >= 6 {
					state.lineX = numbers[len(numbers)-2]
					state.lineY = numbers[len(numbers)-1]
					state.x, state.y = state.lineX, state.lineY
				}
			case "Td", "TD":
				if len(numbers) >= 2 {
					tx := numbers[len(numbers)-2]
					ty := numbers[len(numbers)-1]
					state.lineX += tx
					state.lineY += ty
					state.x, state.y = state.lineX, state.lineY
					if tok.text == "TD" {
						state.leading = -ty
					}
				}
			case "TL":
				if len(numbers) >= 1 {
					state.leading = numbers[len(numbers)-1]
				}
			case "T*":
				nextLine()
			case "Tj":
				if hasStr {
					show(str)
				}
			case "'":
				nextLine()
				if hasStr {
					show(str)
				}
			case "\"":
				nextLine()
				if hasStr {
					show(str)
				}
			case "TJ":
				show(joinTJ(array))
				array = array[:0]
			}
			clear()
		}
	}

	return runs
}

type tjItem struct {
	text     string
	adjust   float64
	isAdjust bool
}

func joinTJ(items []tjItem) string {
	var sb strings.Builder
	for _, item := range items {
		if item.isAdjust {
			if item.adjust < tjSpaceThreshold {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.WriteString(item.text)
	}
	return sb.String()
}

// groupLines buckets runs into lines by y proximity, orders lines top to
// bottom, and orders runs within a line by x (stream order breaking ties).
func groupLines(runs []run) [][]run {
	sorted := make([]run, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].y > sorted[j].y })

	var lines [][]run
	for _, r := range sorted {
		if n := len(lines); n > 0 {
			last := lines[n-1]
			if math.Abs(last[0].y-r.y) <= lineTolerance {
				lines[n-1] = append(last, r)
				continue
			}
		}
		lines = append(lines, []run{r})
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			if line[i].x != line[j].x {
				return line[i].x < line[j].x
			}
			return line[i].seq < line[j].seq
		})
	}

	return lines
}

func needsSpace(prev, next string) bool {
	if prev == "" || next == "" {
		return false
	}
	return !strings.HasSuffix(prev, " ") && !strings.HasPrefix(next, " ")
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokArrayStart
	tokArrayEnd
	tokOperator
)

type token struct {
	kind   tokenKind
	number float64
	text   string
}

type tokenizer struct {
	data []byte
	pos  int
}

func newTokenizer(data []byte) *tokenizer {
	return &tokenizer{data: data}
}

func (t *tokenizer) next() (token, bool) {
	for t.pos < len(t.data) {
		c := t.data[t.pos]

		switch {
		case isWhitespace(c):
			t.pos++
		case c == '%':
			t.skipComment()
		case c == '(':
			return token{kind: tokString, text: t.literalString()}, true
		case c == '<':
			if t.pos+1 < len(t.data) && t.data[t.pos+1] == '<' {
				t.pos += 2
			} else {
				return token{kind: tokString, text: t.hexString()}, true
			}
		case c == '>':
			t.pos++
		case c == '[':
			t.pos++
			return token{kind: tokArrayStart}, true
		case c == ']':
			t.pos++
			return token{kind: tokArrayEnd}, true
		case c == '/':
			t.pos++
			t.regularToken()
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			text := t.regularToken()
			if n, err := strconv.ParseFloat(text, 64); err == nil {
				return token{kind: tokNumber, number: n}, true
			}
		default:
			if text := t.regularToken(); text != "" {
				return token{kind: tokOperator, text: text}, true
			}
			t.pos++
		}
	}
	return token{}, false
}

func (t *tokenizer) skipComment() {
	for t.pos < len(t.data) && t.data[t.pos] != '\n' && t.data[t.pos] != '\r' {
		t.pos++
	}
}

func (t *tokenizer) regularToken() string {
	start := t.pos
	for t.pos < len(t.data) && !isDelimiter(t.data[t.pos]) {
		t.pos++
	}
	return string(t.data[start:t.pos])
}

// literalString consumes a parenthesized string, honoring nested parens,
// backslash escapes, and octal codes.
func (t *tokenizer) literalString() string {
	t.pos++ // opening paren
	var out []byte
	depth := 1

	for t.pos < len(t.data) && depth > 0 {
		c := t.data[t.pos]
		switch c {
		case '\\':
			t.pos++
			if t.pos >= len(t.data) {
				break
			}
			out = append(out, t.unescape())
		case '(':
			depth++
			out = append(out, c)
			t.pos++
		case ')':
			depth--
			if depth > 0 {
				out = append(out, c)
			}
			t.pos++
		default:
			out = append(out, c)
			t.pos++
		}
	}

	return decodeStringBytes(out)
}

func (t *tokenizer) unescape() byte {
	c := t.data[t.pos]
	switch c {
	case 'n':
		t.pos++
		return '\n'
	case 'r':
		t.pos++
		return '\r'
	case 't':
		t.pos++
		return '\t'
	case 'b':
		t.pos++
		return '\b'
	case 'f':
		t.pos++
		return '\f'
	}

	if c >= '0' && c <= '7' {
		val := 0
		for range 3 {
			if t.pos >= len(t.data) || t.data[t.pos] < '0' || t.data[t.pos] > '7' {
				break
			}
			val = val*8 + int(t.data[t.pos]-'0')
			t.pos++
		}
		return byte(val)
	}

	t.pos++
	return c
}

func (t *tokenizer) hexString() string {
	t.pos++ // opening angle
	var digits []byte
	for t.pos < len(t.data) && t.data[t.pos] != '>' {
		c := t.data[t.pos]
		if isHexDigit(c) {
			digits = append(digits, c)
		}
		t.pos++
	}
	if t.pos < len(t.data) {
		t.pos++ // closing angle
	}

	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		out = append(out, hexValue(digits[i])<<4|hexValue(digits[i+1]))
	}
	return decodeStringBytes(out)
}

// decodeStringBytes maps raw string bytes to text: UTF-16BE when the BOM is
// present, UTF-8 when valid, byte-to-rune otherwise.
func decodeStringBytes(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		units := make([]uint16, 0, (len(raw)-2)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return string(utf16.Decode(units))
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	out := make([]rune, len(raw))
	for i, b := range raw {
		out[i] = rune(b)
	}
	return string(out)
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	return isWhitespace(c) || c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' || c == '/' || c == '%'
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
