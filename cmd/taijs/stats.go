package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/reusee/taijs/taivm"
)

func printStats(vm *taivm.VM, compile time.Duration, total time.Duration) {
	var instructions, constants int
	for _, fn := range vm.Program.Functions {
		instructions += len(fn.Code)
		constants += len(fn.Constants)
	}
	fmt.Fprintf(os.Stderr, "source:       %s\n", humanize.Bytes(uint64(len(vm.Program.Source))))
	fmt.Fprintf(os.Stderr, "tokens:       %s\n", humanize.Comma(int64(len(vm.Program.Tokens))))
	fmt.Fprintf(os.Stderr, "sections:     %s\n", humanize.Comma(int64(len(vm.Program.Functions))))
	fmt.Fprintf(os.Stderr, "instructions: %s\n", humanize.Comma(int64(instructions)))
	fmt.Fprintf(os.Stderr, "constants:    %s\n", humanize.Comma(int64(constants)))
	fmt.Fprintf(os.Stderr, "globals:      %s\n", humanize.Comma(int64(len(vm.GlobalNames()))))
	fmt.Fprintf(os.Stderr, "compile:      %v\n", compile)
	fmt.Fprintf(os.Stderr, "total:        %v\n", total)
}
