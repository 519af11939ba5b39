package parser

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

// tokenKind classifies a lexical token of a PDF content stream.
type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokName
	tokArrayStart
	tokArrayEnd
	tokDictStart
	tokDictEnd
	tokOperator
)

type token struct {
	kind tokenKind
	num  float64
	str  []byte
	op   string
}

// contentLexer splits a decoded content stream into tokens.
type contentLexer struct {
	data []byte
	pos  int
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isPDFDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *contentLexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isPDFSpace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *contentLexer) next() (token, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return token{}, false
	}

	c := l.data[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokString, str: l.literalString()}, true
	case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
		l.pos += 2
		return token{kind: tokDictStart}, true
	case c == '>' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '>':
		l.pos += 2
		return token{kind: tokDictEnd}, true
	case c == '<':
		l.pos++
		return token{kind: tokString, str: l.hexString()}, true
	case c == '[':
		l.pos++
		return token{kind: tokArrayStart}, true
	case c == ']':
		l.pos++
		return token{kind: tokArrayEnd}, true
	case c == '/':
		l.pos++
		return token{kind: tokName, op: l.regular()}, true
	case isPDFDelim(c):
		// Stray delimiter such as '{', '}', ')' or a lone '>'.
		l.pos++
		return l.next()
	}

	word := l.regular()
	if n, err := strconv.ParseFloat(word, 64); err == nil {
		return token{kind: tokNumber, num: n}, true
	}
	return token{kind: tokOperator, op: word}, true
}

func (l *contentLexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isPDFDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literalString reads a (...) string; the opening paren is already consumed.
func (l *contentLexer) literalString() []byte {
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				// Line continuation; swallow an optional LF.
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						val = val*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// hexString reads a <...> string; the opening bracket is already consumed.
func (l *contentLexer) hexString() []byte {
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		c := l.data[l.pos]
		if !isPDFSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // '>'
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

// skipInlineImage advances past inline image data up to and including EI.
func (l *contentLexer) skipInlineImage() {
	if l.pos < len(l.data) && isPDFSpace(l.data[l.pos]) {
		l.pos++
	}
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' &&
			(l.pos == 0 || isPDFSpace(l.data[l.pos-1])) &&
			(l.pos+2 == len(l.data) || isPDFSpace(l.data[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// operand is a value on the interpreter stack.
type operand struct {
	num   float64
	str   []byte
	isStr bool
	arr   []operand
}

// textState tracks just enough of the text matrix to place line breaks.
type textState struct {
	out       strings.Builder
	lineY     float64
	leading   float64
	lastY     float64
	shown     bool
	wantSpace bool
}

// contentStreamText interprets the text operators of one page content stream
// and returns the shown text with a line break wherever the baseline moves.
func contentStreamText(data []byte) string {
	lx := &contentLexer{data: data}
	st := &textState{}

	var stack []operand
	var arrays [][]operand

	push := func(o operand) {
		if n := len(arrays); n > 0 {
			arrays[n-1] = append(arrays[n-1], o)
			return
		}
		stack = append(stack, o)
	}

	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokNumber:
			push(operand{num: tok.num})
		case tokString:
			push(operand{str: tok.str, isStr: true})
		case tokArrayStart:
			arrays = append(arrays, nil)
		case tokArrayEnd:
			if n := len(arrays); n > 0 {
				arr := arrays[n-1]
				arrays = arrays[:n-1]
				push(operand{arr: arr})
			}
		case tokName, tokDictStart, tokDictEnd:
			// Names and inline dictionaries carry no text.
		case tokOperator:
			if tok.op == "ID" {
				lx.skipInlineImage()
			} else {
				st.apply(tok.op, stack)
			}
			stack = stack[:0]
			arrays = arrays[:0]
		}
	}

	return strings.TrimSpace(st.out.String())
}

func nums(ops []operand, n int) ([]float64, bool) {
	if len(ops) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, o := range ops[len(ops)-n:] {
		if o.isStr || o.arr != nil {
			return nil, false
		}
		out[i] = o.num
	}
	return out, true
}

func lastString(ops []operand) ([]byte, bool) {
	if len(ops) == 0 || !ops[len(ops)-1].isStr {
		return nil, false
	}
	return ops[len(ops)-1].str, true
}

func (st *textState) apply(op string, ops []operand) {
	switch op {
	case "BT":
		st.lineY = 0
	case "TL":
		if v, ok := nums(ops, 1); ok {
			st.leading = v[0]
		}
	case "Td", "TD":
		v, ok := nums(ops, 2)
		if !ok {
			return
		}
		if op == "TD" {
			st.leading = -v[1]
		}
		st.lineY += v[1]
		if v[1] == 0 && v[0] != 0 {
			st.wantSpace = true
		}
	case "Tm":
		if v, ok := nums(ops, 6); ok {
			st.lineY = v[5]
		}
	case "T*":
		st.lineY -= st.leading
		st.newline()
	case "Tj":
		if s, ok := lastString(ops); ok {
			st.show(s)
		}
	case "'", "\"":
		st.lineY -= st.leading
		st.newline()
		if s, ok := lastString(ops); ok {
			st.show(s)
		}
	case "TJ":
		if len(ops) == 0 {
			return
		}
		for _, el := range ops[len(ops)-1].arr {
			if el.isStr {
				st.show(el.str)
			} else if el.num < -200 {
				// Large negative kerning is a word gap.
				st.wantSpace = true
			}
		}
	}
}

func (st *textState) newline() {
	if st.shown && !strings.HasSuffix(st.out.String(), "\n") {
		st.out.WriteByte('\n')
	}
	st.lastY = st.lineY
	st.wantSpace = false
}

func (st *textState) show(raw []byte) {
	s := decodePDFText(raw)
	if s == "" {
		return
	}
	if st.shown && math.Abs(st.lineY-st.lastY) > 0.5 {
		st.newline()
	}
	if st.wantSpace && st.out.Len() > 0 {
		cur := st.out.String()
		if !strings.HasSuffix(cur, " ") && !strings.HasSuffix(cur, "\n") && !strings.HasPrefix(s, " ") {
			st.out.WriteByte(' ')
		}
	}
	st.out.WriteString(s)
	st.shown = true
	st.lastY = st.lineY
	st.wantSpace = false
}

var utf16BOM = []byte{0xFE, 0xFF}

// decodePDFText decodes a shown string. UTF-16BE strings carry a BOM; all
// other strings are treated as single-byte WinAnsi text. Control characters
// are dropped.
func decodePDFText(raw []byte) string {
	var decoded string
	if bytes.HasPrefix(raw, utf16BOM) {
		b, err := xunicode.UTF16(xunicode.BigEndian, xunicode.ExpectBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		decoded = string(b)
	} else {
		b, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		decoded = string(b)
	}

	return strings.Map(func(r rune) rune {
		if r == '\t' || r == ' ' {
			return r
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, decoded)
}
