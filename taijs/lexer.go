package taijs

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	src     string
	pos     int
	tokens  []Token
	newline bool
}

// Lex splits source into tokens. Comments are kept as tokens; the last token is EOF.
func Lex(source string) ([]Token, error) {
	l := &lexer{
		src: source,
	}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.tokens = append(l.tokens, Token{
				Kind:          TokenEOF,
				Start:         len(l.src),
				End:           len(l.src),
				NewlineBefore: true,
			})
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) errorf(offset int, format string, args ...any) error {
	return newLexError(l.src, offset, format, args...)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case r == '\n' || r == '\u2028' || r == '\u2029':
			l.newline = true
		case r == '\r' || unicode.IsSpace(r) || r == '\ufeff':
		default:
			return
		}
		l.pos += size
	}
}

func (l *lexer) emit(kind TokenKind, start int, value any) {
	l.tokens = append(l.tokens, Token{
		Kind:          kind,
		Text:          l.src[start:l.pos],
		Value:         value,
		Start:         start,
		End:           l.pos,
		NewlineBefore: l.newline,
	})
	if kind != TokenComment {
		l.newline = false
	}
}

func (l *lexer) next() error {
	start := l.pos
	c := l.src[l.pos]
	rest := l.src[l.pos:]

	switch {

	case strings.HasPrefix(rest, "//"):
		end := strings.IndexAny(rest, "\n\u2028\u2029")
		if end < 0 {
			end = len(rest)
		}
		l.pos += end
		l.emit(TokenComment, start, nil)
		return nil

	case strings.HasPrefix(rest, "/*"):
		end := strings.Index(rest[2:], "*/")
		if end < 0 {
			return l.errorf(start, "unterminated comment")
		}
		body := rest[:end+4]
		if strings.ContainsAny(body, "\n\u2028\u2029") {
			l.newline = true
		}
		l.pos += len(body)
		l.emit(TokenComment, start, nil)
		return nil

	case c == '"' || c == '\'':
		value, err := l.readString(c)
		if err != nil {
			return err
		}
		l.emit(TokenString, start, value)
		return nil

	case isDigit(c) || c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		value, err := l.readNumber()
		if err != nil {
			return err
		}
		l.emit(TokenNumber, start, value)
		return nil

	}

	if r, size := utf8.DecodeRuneInString(rest); isIdentStart(r) {
		l.pos += size
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r) {
				break
			}
			l.pos += size
		}
		if keywords[l.src[start:l.pos]] {
			l.emit(TokenKeyword, start, nil)
		} else {
			l.emit(TokenIdent, start, nil)
		}
		return nil
	}

	for _, punct := range punctuators {
		if strings.HasPrefix(rest, punct) {
			l.pos += len(punct)
			l.emit(TokenPunct, start, nil)
			return nil
		}
	}

	r, _ := utf8.DecodeRuneInString(rest)
	return l.errorf(start, "unexpected character %q", r)
}

func (l *lexer) readString(quote byte) (string, error) {
	start := l.pos
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(start, "unterminated string")
		}
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return b.String(), nil
		case '\n', '\r':
			return "", l.errorf(start, "unterminated string")
		case '\\':
			if err := l.readEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
}

func (l *lexer) readEscape(b *strings.Builder) error {
	start := l.pos
	l.pos++
	if l.pos >= len(l.src) {
		return l.errorf(start, "unterminated string")
	}
	c := l.src[l.pos]
	l.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case 'x':
		n, err := l.readHex(2)
		if err != nil {
			return err
		}
		b.WriteRune(rune(n))
	case 'u':
		n, err := l.readHex(4)
		if err != nil {
			return err
		}
		b.WriteRune(rune(n))
	case '\n':
		// line continuation
	case '\r':
		if l.pos < len(l.src) && l.src[l.pos] == '\n' {
			l.pos++
		}
	default:
		b.WriteByte(c)
	}
	return nil
}

func (l *lexer) readHex(digits int) (uint64, error) {
	if l.pos+digits > len(l.src) {
		return 0, l.errorf(l.pos, "invalid escape sequence")
	}
	n, err := strconv.ParseUint(l.src[l.pos:l.pos+digits], 16, 32)
	if err != nil {
		return 0, l.errorf(l.pos, "invalid escape sequence")
	}
	l.pos += digits
	return n, nil
}

func (l *lexer) readNumber() (float64, error) {
	start := l.pos
	if strings.HasPrefix(l.src[l.pos:], "0x") || strings.HasPrefix(l.src[l.pos:], "0X") {
		l.pos += 2
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
		n, err := strconv.ParseUint(l.src[start+2:l.pos], 16, 64)
		if err != nil {
			return 0, l.errorf(start, "invalid number %q", l.src[start:l.pos])
		}
		return float64(n), nil
	}

	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		digits := l.pos
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		if digits == l.pos {
			return 0, l.errorf(start, "invalid number %q", l.src[start:l.pos])
		}
	}
	if l.pos < len(l.src) {
		if r, _ := utf8.DecodeRuneInString(l.src[l.pos:]); isIdentStart(r) {
			return 0, l.errorf(l.pos, "identifier starts immediately after number")
		}
	}

	f, err := strconv.ParseFloat(l.src[start:l.pos], 64)
	if err != nil {
		return 0, l.errorf(start, "invalid number %q", l.src[start:l.pos])
	}
	return f, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
