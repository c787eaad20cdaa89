package schema

import "strings"

const maxLiteralDepth = 8

// literal kinds produced by the parser; only some of them are reported as
// column types.
type literalKind int

const (
	litInvalid literalKind = iota
	litInt
	litFloat
	litBool
	litNone
	litString
	litList
)

// ParseLiteral recognises the literal forms used for type sniffing: signed
// integers (decimal, hex, octal, binary, with digit underscores), floats,
// True/False, and list literals whose elements are themselves literals. It
// reports the resulting tag, and false for anything else, including quoted
// strings and None.
func ParseLiteral(s string) (TypeTag, bool) {
	p := &literalParser{s: strings.TrimSpace(s)}
	if p.s == "" {
		return "", false
	}
	kind := p.value(0, true)
	p.skipSpace()
	if kind == litInvalid || p.pos != len(p.s) {
		return "", false
	}
	switch kind {
	case litInt:
		return TypeInteger, true
	case litFloat:
		return TypeFloat, true
	case litBool:
		return TypeBool, true
	case litList:
		return TypeList, true
	}
	return "", false
}

type literalParser struct {
	s   string
	pos int
}

func (p *literalParser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) value(depth int, top bool) literalKind {
	if depth > maxLiteralDepth {
		return litInvalid
	}
	if !top {
		p.skipSpace()
	}
	switch c := p.peek(); {
	case c == '[':
		return p.list(depth)
	case c == '\'' || c == '"':
		return p.quoted()
	case c == '+' || c == '-':
		p.pos++
		return p.number()
	case c >= '0' && c <= '9' || c == '.':
		return p.number()
	default:
		return p.keyword()
	}
}

func (p *literalParser) keyword() literalKind {
	for _, kw := range []struct {
		word string
		kind literalKind
	}{{"True", litBool}, {"False", litBool}, {"None", litNone}} {
		if strings.HasPrefix(p.s[p.pos:], kw.word) {
			end := p.pos + len(kw.word)
			if end < len(p.s) && isIdentByte(p.s[end]) {
				return litInvalid
			}
			p.pos = end
			return kw.kind
		}
	}
	return litInvalid
}

func (p *literalParser) list(depth int) literalKind {
	p.pos++ // '['
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return litList
	}
	for {
		if p.value(depth+1, false) == litInvalid {
			return litInvalid
		}
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == ']' {
				p.pos++
				return litList
			}
		case ']':
			p.pos++
			return litList
		default:
			return litInvalid
		}
	}
}

func (p *literalParser) quoted() literalKind {
	quote := p.s[p.pos]
	p.pos++
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '\\':
			p.pos += 2
		case c == '\n':
			return litInvalid
		case c == quote:
			p.pos++
			return litString
		default:
			p.pos++
		}
	}
	return litInvalid
}

// number lexes one numeric literal at p.pos. Complex literals are
// rejected.
func (p *literalParser) number() literalKind {
	start := p.pos
	rest := p.s[p.pos:]

	if len(rest) > 1 && rest[0] == '0' {
		switch rest[1] {
		case 'x', 'X':
			return p.radix(start+2, isHexDigit)
		case 'o', 'O':
			return p.radix(start+2, isOctDigit)
		case 'b', 'B':
			return p.radix(start+2, isBinDigit)
		}
	}

	intPart := p.digitPart()
	isFloat := false
	if p.peek() == '.' {
		p.pos++
		isFloat = true
		frac := p.digitPart()
		if intPart == "" && frac == "" {
			return litInvalid
		}
	} else if intPart == "" {
		return litInvalid
	}

	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if p.digitPart() == "" {
			return litInvalid
		}
		isFloat = true
	}

	if c := p.peek(); c == 'j' || c == 'J' || isIdentByte(c) {
		return litInvalid
	}
	if p.pos == start {
		return litInvalid
	}

	if !isFloat && !validDecimalInteger(intPart) {
		return litInvalid
	}
	if isFloat {
		return litFloat
	}
	return litInt
}

// digitPart consumes digit (["_"] digit)* and returns it with underscores
// removed, or "" when no digits are present or an underscore is misplaced.
func (p *literalParser) digitPart() string {
	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c >= '0' && c <= '9' {
			b.WriteByte(c)
			p.pos++
			continue
		}
		if c == '_' && b.Len() > 0 && p.pos+1 < len(p.s) && p.s[p.pos+1] >= '0' && p.s[p.pos+1] <= '9' {
			p.pos++
			continue
		}
		break
	}
	return b.String()
}

func (p *literalParser) radix(pos int, valid func(byte) bool) literalKind {
	p.pos = pos
	digits := 0
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if valid(c) {
			digits++
			p.pos++
			continue
		}
		if c == '_' && p.pos+1 < len(p.s) && valid(p.s[p.pos+1]) {
			p.pos++
			continue
		}
		break
	}
	if digits == 0 || isIdentByte(p.peek()) {
		return litInvalid
	}
	return litInt
}

// validDecimalInteger rejects non-zero integers with leading zeros so that
// codes such as the postcode 02134 stay strings.
func validDecimalInteger(digits string) bool {
	if len(digits) > 1 && digits[0] == '0' {
		return strings.Trim(digits, "0") == ""
	}
	return true
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isOctDigit(c byte) bool { return c >= '0' && c <= '7' }

func isBinDigit(c byte) bool { return c == '0' || c == '1' }

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
