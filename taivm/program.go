package taivm

import (
	"fmt"
	"strings"
)

// Span is a byte range [Start, End) in the source text.
type Span struct {
	Start int
	End   int
}

// Program is the immutable result of compilation.
// Functions[0] is the top level section.
type Program struct {
	Name      string
	Source    string
	Tokens    []Span
	Functions []*Function
}

// NewProgram builds a Program and links every function back to it.
func NewProgram(name string, source string, tokens []Span, functions []*Function) *Program {
	p := &Program{
		Name:      name,
		Source:    source,
		Tokens:    tokens,
		Functions: functions,
	}
	for _, fn := range functions {
		fn.Program = p
	}
	return p
}

func (p *Program) Main() *Function {
	return p.Functions[0]
}

// SourceOf returns the source text from the start of the first token to the end of the last token.
func (p *Program) SourceOf(r TokenRange) (string, bool) {
	if r.First < 0 || r.Last < r.First || r.Last >= len(p.Tokens) {
		return "", false
	}
	start := p.Tokens[r.First].Start
	end := p.Tokens[r.Last].End
	if start < 0 || end > len(p.Source) || start > end {
		return "", false
	}
	return p.Source[start:end], true
}

// Position converts a byte offset to 1-based line and column.
func (p *Program) Position(offset int) (line int, column int) {
	if offset > len(p.Source) {
		offset = len(p.Source)
	}
	prefix := p.Source[:offset]
	line = strings.Count(prefix, "\n") + 1
	column = offset - strings.LastIndexByte(prefix, '\n')
	return
}

// Verify checks that every instruction maps to valid tokens inside the source.
func (p *Program) Verify() error {
	for _, span := range p.Tokens {
		if span.Start < 0 || span.End < span.Start || span.End > len(p.Source) {
			return fmt.Errorf("token span out of source: %+v", span)
		}
	}
	for i, fn := range p.Functions {
		if fn.Index != i {
			return fmt.Errorf("function %s: index %d, want %d", fn.Name, fn.Index, i)
		}
		if len(fn.Ranges) != len(fn.Code) {
			return fmt.Errorf("function %s: %d ranges for %d instructions", fn.Name, len(fn.Ranges), len(fn.Code))
		}
		for ip, r := range fn.Ranges {
			if _, ok := p.SourceOf(r); !ok {
				return fmt.Errorf("function %s: instruction %d: bad token range %+v", fn.Name, ip, r)
			}
		}
		last := -1
		for _, mark := range fn.Statements {
			if mark.IP <= last || mark.IP >= len(fn.Code) {
				return fmt.Errorf("function %s: bad statement mark at %d", fn.Name, mark.IP)
			}
			if _, ok := p.SourceOf(mark.Range); !ok {
				return fmt.Errorf("function %s: statement %d: bad token range %+v", fn.Name, mark.IP, mark.Range)
			}
			last = mark.IP
		}
	}
	return nil
}
