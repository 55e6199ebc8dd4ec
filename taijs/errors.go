package taijs

import (
	"fmt"
	"strings"
)

type LexError struct {
	Message string
	Offset  int
	Line    int
	Column  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Column, e.Message)
}

func newLexError(src string, offset int, format string, args ...any) *LexError {
	line, col := position(src, offset)
	return &LexError{
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
		Line:    line,
		Column:  col,
	}
}

type ParseError struct {
	Message string
	// Token is the index of the offending token.
	Token  int
	Offset int
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

type CompileError struct {
	Message string
	First   int
	Last    int
	Source  string
	Line    int
	Column  int
}

func (e *CompileError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("compile error at %d:%d: %s: %s", e.Line, e.Column, e.Message, e.Source)
	}
	return fmt.Sprintf("compile error at %d:%d: %s", e.Line, e.Column, e.Message)
}

func position(src string, offset int) (line int, column int) {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	prefix := src[:offset]
	line = strings.Count(prefix, "\n") + 1
	column = offset - strings.LastIndexByte(prefix, '\n')
	return
}
