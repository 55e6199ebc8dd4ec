package interop

import (
	"fmt"
	"math"
	"strconv"

	"github.com/reusee/taijs/taivm"
	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes a script value as a YAML document. Object keys keep insertion order.
func MarshalYAML(v any) ([]byte, error) {
	node, err := ToYAMLNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func ToYAMLNode(v any) (*yaml.Node, error) {
	return toYAMLNode(v, make(map[any]bool))
}

func scalar(tag string, value string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   tag,
		Value: value,
	}
}

func toYAMLNode(v any, seen map[any]bool) (*yaml.Node, error) {
	switch v := v.(type) {

	case nil, taivm.NullType, taivm.UndefinedType:
		return scalar("!!null", "null"), nil

	case bool:
		return scalar("!!bool", strconv.FormatBool(v)), nil

	case float64:
		switch {
		case math.IsNaN(v):
			return scalar("!!float", ".nan"), nil
		case math.IsInf(v, 1):
			return scalar("!!float", ".inf"), nil
		case math.IsInf(v, -1):
			return scalar("!!float", "-.inf"), nil
		case v == math.Trunc(v) && math.Abs(v) < 1<<53:
			return scalar("!!int", strconv.FormatInt(int64(v), 10)), nil
		}
		return scalar("!!float", strconv.FormatFloat(v, 'g', -1, 64)), nil

	case string:
		return scalar("!!str", v), nil

	case *taivm.Array:
		if seen[v] {
			return nil, ErrCyclic
		}
		seen[v] = true
		defer delete(seen, v)
		node := &yaml.Node{
			Kind: yaml.SequenceNode,
			Tag:  "!!seq",
		}
		for _, elem := range v.Elements {
			if skipped(elem) {
				elem = taivm.Null
			}
			child, err := toYAMLNode(elem, seen)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	case *taivm.Object:
		if seen[v] {
			return nil, ErrCyclic
		}
		seen[v] = true
		defer delete(seen, v)
		node := &yaml.Node{
			Kind: yaml.MappingNode,
			Tag:  "!!map",
		}
		for _, key := range v.Keys {
			val, _ := v.Get(key)
			if skipped(val) {
				continue
			}
			child, err := toYAMLNode(val, seen)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalar("!!str", key), child)
		}
		return node, nil

	}

	if n, ok := number(v); ok {
		return toYAMLNode(n, seen)
	}
	return nil, fmt.Errorf("cannot encode %T as YAML", v)
}

// UnmarshalYAML decodes a YAML document into script values. Mapping keys keep document order.
func UnmarshalYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return FromYAMLNode(&doc)
}

func FromYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {

	case 0:
		return taivm.Undefined, nil

	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return taivm.Undefined, nil
		}
		return FromYAMLNode(node.Content[0])

	case yaml.AliasNode:
		return FromYAMLNode(node.Alias)

	case yaml.SequenceNode:
		arr := taivm.NewArray()
		for _, child := range node.Content {
			elem, err := FromYAMLNode(child)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, elem)
		}
		return arr, nil

	case yaml.MappingNode:
		obj := taivm.NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: %w", node.Content[i].Line, err)
			}
			val, err := FromYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		return obj, nil

	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return taivm.FromGo(v)

	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %v", node.Line, node.Kind)
}
