package taijs

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/dlclark/regexp2"
	"github.com/reusee/taijs/taivm"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

func registerString(vm *taivm.VM) {
	vm.Def("RegExp", native("RegExp", 1, func(vm *taivm.VM, args []any) (any, error) {
		source := taivm.ToString(args[0])
		flags := ""
		if f := arg(args, 1); f != taivm.Undefined {
			flags = taivm.ToString(f)
		}
		opts := regexp2.RegexOptions(regexp2.ECMAScript)
		for _, f := range flags {
			switch f {
			case 'i':
				opts |= regexp2.IgnoreCase
			case 'm':
				opts |= regexp2.Multiline
			case 'g':
			default:
				return nil, fmt.Errorf("invalid regular expression flag %q", f)
			}
		}
		re, err := regexp2.Compile(source, opts)
		if err != nil {
			return nil, fmt.Errorf("invalid regular expression /%s/: %w", source, err)
		}

		obj := taivm.NewObject()
		obj.Set("source", source)
		obj.Set("flags", flags)
		obj.Set("global", strings.Contains(flags, "g"))
		obj.Set("test", native("test", 1, func(vm *taivm.VM, args []any) (any, error) {
			return re.MatchString(taivm.ToString(args[0]))
		}))
		obj.Set("exec", native("exec", 1, func(vm *taivm.VM, args []any) (any, error) {
			return execRegexp(re, taivm.ToString(args[0]))
		}))
		obj.Internal = re
		return obj, nil
	}))

	pattern := func(v any) (*regexp2.Regexp, bool, bool) {
		obj, ok := v.(*taivm.Object)
		if !ok {
			return nil, false, false
		}
		re, ok := obj.Internal.(*regexp2.Regexp)
		if !ok {
			return nil, false, false
		}
		global, _ := obj.Get("global")
		return re, global == true, true
	}

	method := func(name string, numArgs int, fn func(vm *taivm.VM, s string, args []any) (any, error)) {
		vm.DefMethod(taivm.KindString, name, native(name, numArgs+1, func(vm *taivm.VM, args []any) (any, error) {
			return fn(vm, args[0].(string), args[1:])
		}))
	}

	method("charAt", 0, func(vm *taivm.VM, s string, args []any) (any, error) {
		runes := []rune(s)
		i := int(taivm.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(runes) {
			return "", nil
		}
		return string(runes[i]), nil
	})

	method("charCodeAt", 0, func(vm *taivm.VM, s string, args []any) (any, error) {
		units := utf16.Encode([]rune(s))
		i := int(taivm.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(units) {
			return math.NaN(), nil
		}
		return float64(units[i]), nil
	})

	method("indexOf", 1, func(vm *taivm.VM, s string, args []any) (any, error) {
		idx := strings.Index(s, taivm.ToString(args[0]))
		if idx < 0 {
			return -1.0, nil
		}
		return float64(len([]rune(s[:idx]))), nil
	})

	method("includes", 1, func(vm *taivm.VM, s string, args []any) (any, error) {
		return strings.Contains(s, taivm.ToString(args[0])), nil
	})

	method("startsWith", 1, func(vm *taivm.VM, s string, args []any) (any, error) {
		return strings.HasPrefix(s, taivm.ToString(args[0])), nil
	})

	method("endsWith", 1, func(vm *taivm.VM, s string, args []any) (any, error) {
		return strings.HasSuffix(s, taivm.ToString(args[0])), nil
	})

	method("substring", 1, func(vm *taivm.VM, s string, args []any) (any, error) {
		runes := []rune(s)
		clamp := func(v any, def int) int {
			if v == taivm.Undefined {
				return def
			}
			f := taivm.ToNumber(v)
			if math.IsNaN(f) || f < 0 {
				return 0
			}
			return int(math.Min(f, float64(len(runes))))
		}
		start := clamp(args[0], 0)
		end := clamp(arg(args, 1), len(runes))
		if start > end {
			start, end = end, start
		}
		return string(runes[start:end]), nil
	})

	method("slice", 0, func(vm *taivm.VM, s string, args []any) (any, error) {
		runes := []rune(s)
		start, end := sliceBounds(len(runes), arg(args, 0), arg(args, 1))
		return string(runes[start:end]), nil
	})

	method("trim", 0, func(vm *taivm.VM, s string, args []any) (any, error) {
		return strings.TrimSpace(s), nil
	})

	method("toUpperCase", 0, func(vm *taivm.VM, s string, args []any) (any, error) {
		return upper.String(s), nil
	})

	method("toLowerCase", 0, func(vm *taivm.VM, s string, args []any) (any, error) {
		return lower.String(s), nil
	})

	method("split", 0, func(vm *taivm.VM, s string, args []any) (any, error) {
		sep := arg(args, 0)
		if sep == taivm.Undefined {
			return taivm.NewArray(s), nil
		}
		var parts []string
		if re, _, ok := pattern(sep); ok {
			var err error
			parts, err = splitRegexp(re, s)
			if err != nil {
				return nil, err
			}
		} else {
			parts = strings.Split(s, taivm.ToString(sep))
			if s == "" && taivm.ToString(sep) != "" {
				parts = []string{""}
			}
		}
		elems := make([]any, len(parts))
		for i, p := range parts {
			elems[i] = p
		}
		return taivm.NewArray(elems...), nil
	})

	method("replace", 2, func(vm *taivm.VM, s string, args []any) (any, error) {
		repl := taivm.ToString(args[1])
		if re, global, ok := pattern(args[0]); ok {
			count := 1
			if global {
				count = -1
			}
			return re.Replace(s, repl, -1, count)
		}
		return strings.Replace(s, taivm.ToString(args[0]), repl, 1), nil
	})

	method("match", 1, func(vm *taivm.VM, s string, args []any) (any, error) {
		re, _, ok := pattern(args[0])
		if !ok {
			var err error
			re, err = regexp2.Compile(taivm.ToString(args[0]), regexp2.ECMAScript)
			if err != nil {
				return nil, err
			}
		}
		return execRegexp(re, s)
	})

	method("search", 1, func(vm *taivm.VM, s string, args []any) (any, error) {
		re, _, ok := pattern(args[0])
		if !ok {
			var err error
			re, err = regexp2.Compile(taivm.ToString(args[0]), regexp2.ECMAScript)
			if err != nil {
				return nil, err
			}
		}
		m, err := re.FindStringMatch(s)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return -1.0, nil
		}
		return float64(m.Index), nil
	})
}

// execRegexp returns the match and its groups, or null.
func execRegexp(re *regexp2.Regexp, s string) (any, error) {
	m, err := re.FindStringMatch(s)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return taivm.Null, nil
	}
	groups := m.Groups()
	elems := make([]any, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			elems[i] = taivm.Undefined
		} else {
			elems[i] = g.String()
		}
	}
	return taivm.NewArray(elems...), nil
}

func splitRegexp(re *regexp2.Regexp, s string) ([]string, error) {
	var parts []string
	runes := []rune(s)
	last := 0
	m, err := re.FindStringMatch(s)
	for m != nil && err == nil {
		if m.Length == 0 && m.Index >= len(runes) {
			break
		}
		if m.Length > 0 || m.Index > last {
			parts = append(parts, string(runes[last:m.Index]))
			last = m.Index + m.Length
		}
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	return append(parts, string(runes[last:])), nil
}
