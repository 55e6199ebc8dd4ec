package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taijs/debugs"
	"github.com/reusee/taijs/taijs"
)

type Module struct {
	dscope.Module
	TaiJS  taijs.Module
	Debugs debugs.Module
}
