package interop

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/reusee/taijs/taivm"
)

// MarshalTOML encodes an object as a TOML document. Null values and functions are left out.
func MarshalTOML(v any) ([]byte, error) {
	obj, ok := v.(*taivm.Object)
	if !ok {
		return nil, fmt.Errorf("cannot encode %s as a TOML document", taivm.TypeOf(v))
	}
	if _, err := MarshalJSON(obj); err != nil {
		// rejects cycles before conversion
		return nil, err
	}
	return toml.Marshal(dropNulls(taivm.ToGo(obj)))
}

func dropNulls(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for key, val := range v {
			if _, ok := val.(taivm.Callable); ok || val == nil {
				delete(v, key)
				continue
			}
			v[key] = dropNulls(val)
		}
	case []any:
		for i, elem := range v {
			v[i] = dropNulls(elem)
		}
	}
	return v
}
