package configs

import (
	"fmt"
	"iter"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

type Loader struct {
	files    []string
	getRoots func() ([]rootInfo, error)
}

func NewLoader(filePaths []string, schemaSrc string) Loader {
	return Loader{
		files: filePaths,

		getRoots: sync.OnceValues(func() (ret []rootInfo, err error) {

			var schema cue.Value
			if schemaSrc != "" {
				ctx := cuecontext.New()
				schema = ctx.CompileString("close({" + schemaSrc + "})")
				if err := schema.Err(); err != nil {
					return nil, err
				}
			}

			for _, filePath := range filePaths {
				content, err := os.ReadFile(filePath)
				if err != nil {
					return nil, fmt.Errorf("read config: %w", err)
				}

				ctx := cuecontext.New()
				value := ctx.CompileBytes(
					content,
					cue.Filename(filePath),
				)
				if err = value.Err(); err != nil {
					return nil, err
				}

				if schema.Exists() {
					if err := schema.Unify(value).Validate(); err != nil {
						return nil, fmt.Errorf("validate %s: %w", filePath, err)
					}
				}

				ret = append(ret, rootInfo{
					value: value,
					path:  filePath,
				})
			}

			return
		}),
	}
}

// Files returns the config file paths, in lookup order.
func (l Loader) Files() []string {
	return l.files
}

type rootInfo struct {
	value cue.Value
	path  string
}

// lookup yields the files defining path, in lookup order.
func (l Loader) lookup(path string) iter.Seq2[rootInfo, error] {
	return func(yield func(rootInfo, error) bool) {
		roots, err := l.getRoots()
		if err != nil {
			yield(rootInfo{}, err)
			return
		}
		cuePath := cue.ParsePath(path)
		for _, info := range roots {
			value := info.value.LookupPath(cuePath)
			if value.Err() != nil || !value.Exists() {
				continue
			}
			if !yield(rootInfo{value: value, path: info.path}, nil) {
				return
			}
		}
	}
}

func (l Loader) IterCueValues(path string) iter.Seq2[*cue.Value, error] {
	return func(yield func(*cue.Value, error) bool) {
		for info, err := range l.lookup(path) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(&info.value, nil) {
				return
			}
		}
	}
}

func (l Loader) AssignFirst(path string, target any) error {
	for info, err := range l.lookup(path) {
		if err != nil {
			return err
		}
		if err := info.value.Decode(target); err != nil {
			return fmt.Errorf("decode %s in %s: %w", path, info.path, err)
		}
		return nil
	}
	return ErrValueNotFound
}

// Origin returns the file that First reads path from.
func (l Loader) Origin(path string) (string, bool) {
	for info, err := range l.lookup(path) {
		if err != nil {
			return "", false
		}
		return info.path, true
	}
	return "", false
}
