package cmds

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/samber/lo"
)

func (p *Executor) PrintUsage() {
	p.WriteUsage(os.Stderr)
}

func (p *Executor) WriteUsage(w io.Writer) {
	fmt.Fprintf(w, "usage:\n")
	writeCommands(w, p.commands, 1)
}

func writeCommands(w io.Writer, commands map[string]*Command, depth int) {
	// aliases are listed with their command
	primary := lo.PickBy(commands, func(name string, command *Command) bool {
		return command != nil && !command.Hidden && !slices.Contains(command.Aliases, name)
	})
	names := lo.Keys(primary)
	slices.Sort(names)
	for _, name := range names {
		command := primary[name]
		fmt.Fprintln(w, command.usageLine(name, depth))
		if len(command.Subs) > 0 {
			writeCommands(w, command.Subs, depth+1)
		}
	}
}
