package cmds

import (
	"fmt"
	"reflect"
	"strings"
)

type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	Aliases     []string
	// hidden commands are left out of the usage
	Hidden bool
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

func (c *Command) Hide() *Command {
	c.Hidden = true
	return c
}

// usageLine renders the names and description at depth.
func (c *Command) usageLine(name string, depth int) string {
	line := strings.Repeat("  ", depth) + strings.Join(append([]string{name}, c.Aliases...), ", ")
	if c.Description != "" {
		line = fmt.Sprintf("%-32s %s", line, c.Description)
	}
	return line
}

func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)

	if fnValue.Kind() != reflect.Func {
		panic(fmt.Errorf("must be function, got %T", fn))
	}

	fnType := fnValue.Type()
	if fnType.NumOut() > 1 ||
		fnType.NumOut() == 1 && fnType.Out(0) != errorType {
		panic(fmt.Errorf("must return nothing or an error, got %v", fnType))
	}

	command := &Command{
		Func: fnValue,
	}

	return command
}

func Sub(subs map[string]*Command) *Command {
	return &Command{
		Subs: subs,
	}
}
