package taivm

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

type UndefinedType struct{}

type NullType struct{}

var (
	Undefined UndefinedType
	Null      NullType
)

func (UndefinedType) String() string {
	return "undefined"
}

func (NullType) String() string {
	return "null"
}

type Kind uint8

const (
	KindInvalid Kind = iota
	KindUndefined
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	}
	return "invalid"
}

func KindOf(v any) Kind {
	switch v.(type) {
	case UndefinedType, nil:
		return KindUndefined
	case NullType:
		return KindNull
	case bool:
		return KindBool
	case float64, int, int64, int32, float32, uint, uint64, uint32:
		return KindNumber
	case string:
		return KindString
	case *Object:
		return KindObject
	case *Array:
		return KindArray
	case Callable:
		return KindFunction
	}
	return KindInvalid
}

// number normalizes host numeric representations.
func number(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case float32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	}
	return 0, false
}

func Truthy(v any) bool {
	switch v := v.(type) {
	case nil, UndefinedType, NullType:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}
	if f, ok := number(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// StrictEqual compares primitives by value and everything else by identity.
func StrictEqual(a, b any) bool {
	if a == nil {
		a = Undefined
	}
	if b == nil {
		b = Undefined
	}
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	switch a := a.(type) {
	case string:
		s, ok := b.(string)
		return ok && a == s
	case bool:
		x, ok := b.(bool)
		return ok && a == x
	case UndefinedType:
		_, ok := b.(UndefinedType)
		return ok
	case NullType:
		_, ok := b.(NullType)
		return ok
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Equal is StrictEqual except that undefined and null are equal to each other.
func Equal(a, b any) bool {
	if isNullish(a) && isNullish(b) {
		return true
	}
	return StrictEqual(a, b)
}

func isNullish(v any) bool {
	switch v.(type) {
	case nil, UndefinedType, NullType:
		return true
	}
	return false
}

func ToNumber(v any) float64 {
	if f, ok := number(v); ok {
		return f
	}
	switch v := v.(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case NullType:
		return 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			n, err := strconv.ParseUint(s[2:], 16, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
		switch s {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case *Array:
		switch len(v.Elements) {
		case 0:
			return 0
		case 1:
			return ToNumber(ToString(v.Elements[0]))
		}
	}
	return math.NaN()
}

func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// 1e+21 style, without zero padded exponents
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func ToString(v any) string {
	if f, ok := number(v); ok {
		return FormatNumber(f)
	}
	switch v := v.(type) {
	case nil, UndefinedType:
		return "undefined"
	case NullType:
		return "null"
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case *Array:
		var b strings.Builder
		for i, elem := range v.Elements {
			if i > 0 {
				b.WriteByte(',')
			}
			if isNullish(elem) {
				continue
			}
			b.WriteString(ToString(elem))
		}
		return b.String()
	case *Object:
		return "[object Object]"
	case interface{ String() string }:
		return v.String()
	}
	return "[object]"
}

// TypeOf implements the typeof operator.
func TypeOf(v any) string {
	switch KindOf(v) {
	case KindUndefined:
		return "undefined"
	case KindNull, KindObject, KindArray:
		return "object"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	}
	return "object"
}

// arrayIndex converts a property key to an array index.
func arrayIndex(key any) (int, bool) {
	if f, ok := number(key); ok {
		if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	if s, ok := key.(string); ok {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || strconv.Itoa(n) != s {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
