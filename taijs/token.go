package taijs

import "fmt"

type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenComment
	TokenIdent
	TokenKeyword
	TokenNumber
	TokenString
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenComment:
		return "comment"
	case TokenIdent:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenPunct:
		return "punctuation"
	}
	return fmt.Sprintf("token(%d)", uint8(k))
}

type Token struct {
	Kind TokenKind
	// Text is the raw source text of the token.
	Text string
	// Value is the decoded literal: float64 for numbers, string for strings.
	Value any
	Start int
	End   int
	// NewlineBefore is set when a line break separates the token from the previous one.
	NewlineBefore bool
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

var keywords = map[string]bool{
	"var":      true,
	"function": true,
	"return":   true,
	"if":       true,
	"else":     true,
	"while":    true,
	"do":       true,
	"for":      true,
	"break":    true,
	"continue": true,
	"new":      true,
	"this":     true,
	"true":     true,
	"false":    true,
	"null":     true,
	"typeof":   true,
	"debugger": true,
}

// punctuators sorted longest first
var punctuators = []string{
	">>>=",
	"===", "!==", "**=", "<<=", ">>=", ">>>",
	"==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"**", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ";", ",", ".", "?", ":",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "~", "&", "|", "^",
}
