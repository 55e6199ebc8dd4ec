package interop

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/reusee/taijs/taivm"
)

var ErrCyclic = errors.New("cyclic value")

// MarshalJSON encodes a script value. Object keys keep insertion order.
func MarshalJSON(v any) ([]byte, error) {
	return MarshalJSONIndent(v, "")
}

func MarshalJSONIndent(v any, indent string) ([]byte, error) {
	e := &jsonEncoder{
		indent: indent,
		seen:   make(map[any]bool),
	}
	if err := e.encode(v, 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type jsonEncoder struct {
	buf    bytes.Buffer
	indent string
	seen   map[any]bool
}

func (e *jsonEncoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	e.buf.WriteString(strings.Repeat(e.indent, depth))
}

// skipped reports values that are left out of objects and written as null in arrays.
func skipped(v any) bool {
	switch v.(type) {
	case taivm.UndefinedType, taivm.Callable, *taivm.Closure:
		return true
	}
	return false
}

func (e *jsonEncoder) encode(v any, depth int) error {
	switch v := v.(type) {

	case nil, taivm.NullType, taivm.UndefinedType:
		e.buf.WriteString("null")

	case bool:
		if v {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}

	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			e.buf.WriteString("null")
		} else {
			e.buf.WriteString(taivm.FormatNumber(v))
		}

	case string:
		bs, err := json.Marshal(v)
		if err != nil {
			return err
		}
		e.buf.Write(bs)

	case *taivm.Array:
		if e.seen[v] {
			return ErrCyclic
		}
		e.seen[v] = true
		defer delete(e.seen, v)
		if v.Len() == 0 {
			e.buf.WriteString("[]")
			return nil
		}
		e.buf.WriteByte('[')
		for i, elem := range v.Elements {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.newline(depth + 1)
			if skipped(elem) {
				elem = taivm.Null
			}
			if err := e.encode(elem, depth+1); err != nil {
				return err
			}
		}
		e.newline(depth)
		e.buf.WriteByte(']')

	case *taivm.Object:
		if e.seen[v] {
			return ErrCyclic
		}
		e.seen[v] = true
		defer delete(e.seen, v)
		e.buf.WriteByte('{')
		n := 0
		for _, key := range v.Keys {
			val, _ := v.Get(key)
			if skipped(val) {
				continue
			}
			if n > 0 {
				e.buf.WriteByte(',')
			}
			n++
			e.newline(depth + 1)
			if err := e.encode(key, depth+1); err != nil {
				return err
			}
			e.buf.WriteByte(':')
			if e.indent != "" {
				e.buf.WriteByte(' ')
			}
			if err := e.encode(val, depth+1); err != nil {
				return err
			}
		}
		if n > 0 {
			e.newline(depth)
		}
		e.buf.WriteByte('}')

	default:
		if n, ok := number(v); ok {
			return e.encode(n, depth)
		}
		return fmt.Errorf("cannot encode %T as JSON", v)

	}
	return nil
}

func number(v any) (float64, bool) {
	if taivm.KindOf(v) != taivm.KindNumber {
		return 0, false
	}
	return taivm.ToNumber(v), true
}

// UnmarshalJSON decodes JSON into script values. Object keys keep document order.
func UnmarshalJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok := tok.(type) {

	case json.Delim:
		switch tok {
		case '[':
			arr := taivm.NewArray()
			for dec.More() {
				elem, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				arr.Elements = append(arr.Elements, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := taivm.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", tok)

	case json.Number:
		return tok.Float64()

	case string:
		return tok, nil

	case bool:
		return tok, nil

	case nil:
		return taivm.Null, nil

	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}
