package configs

import (
	"errors"
	"fmt"
)

// First decodes the value at path from the first file defining it.
// A missing value yields the zero T; invalid files or values panic.
func First[T any](loader Loader, path string) T {
	var value T
	if err := loader.AssignFirst(path, &value); err != nil {
		if errors.Is(err, ErrValueNotFound) {
			return value
		}
		panic(fmt.Errorf("config %s: %w", path, err))
	}
	return value
}
