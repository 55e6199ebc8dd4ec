package taivm

// Frame saves the caller state of an active call.
type Frame struct {
	Fun      *Function
	ReturnIP int
	Env      *Env
	BaseSP   int
	This     any
	Callee   *Closure

	// flags of the call itself
	Construct bool
	Host      bool
}
