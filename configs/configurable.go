package configs

import "reflect"

// Configurable types can be set from a config script global named ConfigName.
type Configurable interface {
	ConfigName() string
}

var configurableType = reflect.TypeFor[Configurable]()
