package taivm

import "fmt"

type OpCode uint32

const (
	OpLoadConst OpCode = iota + 8
	OpLoadUndefined
	OpLoadVar
	OpSetVar
	OpDefVar
	OpDeclareVar
	OpLoadGlobal
	OpSetGlobal
	OpLoadThis
	OpLoadCallee
	OpPop
	OpDup
	OpDup2
	OpInsertBelow
	OpJump
	OpJumpFalse
	OpJumpFalseKeep
	OpJumpTrueKeep
	OpCall
	OpCallMethod
	OpNew
	OpReturn
	OpMakeClosure
	OpMakeArray
	OpMakeObject
	OpGetIndex
	OpSetIndex
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpBitLsh
	OpBitRsh
	OpBitURsh
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpNeg
	OpPos
	OpNot
	OpTypeof
	OpTypeofGlobal
	OpEq
	OpNe
	OpStrictEq
	OpStrictNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpDebugger
)

func (o OpCode) With(arg int) OpCode {
	return o | (OpCode(arg) << 8)
}

func (o OpCode) Op() OpCode {
	return o & 0xff
}

func (o OpCode) Arg() int {
	return int(o >> 8)
}

// Offset decodes a signed jump offset.
func (o OpCode) Offset() int {
	return int(int32(o) >> 8)
}

// VarArg packs a constant index and an environment depth into one operand.
func VarArg(constIdx int, depth int) int {
	return constIdx | depth<<16
}

func splitVarArg(arg int) (constIdx int, depth int) {
	return arg & 0xffff, arg >> 16
}

var opNames = map[OpCode]string{
	OpLoadConst:     "LOAD_CONST",
	OpLoadUndefined: "LOAD_UNDEFINED",
	OpLoadVar:       "LOAD_VAR",
	OpSetVar:        "SET_VAR",
	OpDefVar:        "DEF_VAR",
	OpDeclareVar:    "DECLARE_VAR",
	OpLoadGlobal:    "LOAD_GLOBAL",
	OpSetGlobal:     "SET_GLOBAL",
	OpLoadThis:      "LOAD_THIS",
	OpLoadCallee:    "LOAD_CALLEE",
	OpPop:           "POP",
	OpDup:           "DUP",
	OpDup2:          "DUP2",
	OpInsertBelow:   "INSERT_BELOW",
	OpJump:          "JUMP",
	OpJumpFalse:     "JUMP_FALSE",
	OpJumpFalseKeep: "JUMP_FALSE_KEEP",
	OpJumpTrueKeep:  "JUMP_TRUE_KEEP",
	OpCall:          "CALL",
	OpCallMethod:    "CALL_METHOD",
	OpNew:           "NEW",
	OpReturn:        "RETURN",
	OpMakeClosure:   "MAKE_CLOSURE",
	OpMakeArray:     "MAKE_ARRAY",
	OpMakeObject:    "MAKE_OBJECT",
	OpGetIndex:      "GET_INDEX",
	OpSetIndex:      "SET_INDEX",
	OpBitAnd:        "BIT_AND",
	OpBitOr:         "BIT_OR",
	OpBitXor:        "BIT_XOR",
	OpBitNot:        "BIT_NOT",
	OpBitLsh:        "BIT_LSH",
	OpBitRsh:        "BIT_RSH",
	OpBitURsh:       "BIT_URSH",
	OpAdd:           "ADD",
	OpSub:           "SUB",
	OpMul:           "MUL",
	OpDiv:           "DIV",
	OpMod:           "MOD",
	OpPow:           "POW",
	OpNeg:           "NEG",
	OpPos:           "POS",
	OpNot:           "NOT",
	OpTypeof:        "TYPEOF",
	OpTypeofGlobal:  "TYPEOF_GLOBAL",
	OpEq:            "EQ",
	OpNe:            "NE",
	OpStrictEq:      "STRICT_EQ",
	OpStrictNe:      "STRICT_NE",
	OpLt:            "LT",
	OpLe:            "LE",
	OpGt:            "GT",
	OpGe:            "GE",
	OpDebugger:      "DEBUGGER",
}

func (o OpCode) String() string {
	if name, ok := opNames[o.Op()]; ok {
		return name
	}
	return fmt.Sprintf("OP_%d", uint32(o.Op()))
}
