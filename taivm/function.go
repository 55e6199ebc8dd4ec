package taivm

import "sort"

// TokenRange bounds, inclusively, the tokens that produced an instruction.
type TokenRange struct {
	First int
	Last  int
}

// StatementMark records the first instruction of a statement.
type StatementMark struct {
	IP    int
	Range TokenRange
}

type Function struct {
	Name       string
	Index      int
	NumParams  int
	ParamNames []string
	Locals     []string
	Code       []OpCode
	Ranges     []TokenRange
	Statements []StatementMark
	Constants  []any
	// Program is the compilation unit that owns this function's token ranges.
	Program *Program
}

// StatementAt reports the statement starting at ip.
func (f *Function) StatementAt(ip int) (StatementMark, bool) {
	i := sort.Search(len(f.Statements), func(i int) bool {
		return f.Statements[i].IP >= ip
	})
	if i < len(f.Statements) && f.Statements[i].IP == ip {
		return f.Statements[i], true
	}
	return StatementMark{}, false
}

func (f *Function) RangeAt(ip int) (TokenRange, bool) {
	if ip < 0 || ip >= len(f.Ranges) {
		return TokenRange{}, false
	}
	return f.Ranges[ip], true
}
