package taivm

type Interrupt struct {
	Breakpoint bool
}

var (
	InterruptBreakpoint = &Interrupt{
		Breakpoint: true,
	}
)
