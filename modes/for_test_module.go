package modes

import (
	"testing"

	"github.com/reusee/dscope"
)

// ModuleForTest runs in development mode, sending script output to the test log.
type ModuleForTest struct {
	dscope.Module
	t *testing.T
}

func ForTest(t *testing.T) ModuleForTest {
	return ModuleForTest{
		t: t,
	}
}

func (m ModuleForTest) T() *testing.T {
	return m.t
}

func (m ModuleForTest) Mode() Mode {
	return ModeDevelopment
}

func (m ModuleForTest) ScriptOutput() ScriptOutput {
	return m.t.Output()
}
