package configs_test

import (
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taijs/configs"
	"github.com/reusee/taijs/taijs"
)

type testDepth int

var _ configs.Configurable = testDepth(0)

func (testDepth) ConfigName() string {
	return "MaxDepth"
}

type testTags []string

func (testTags) ConfigName() string {
	return "Tags"
}

type testMissing string

func (testMissing) ConfigName() string {
	return "Missing"
}

func TestScriptFork(t *testing.T) {
	scope := dscope.New(
		dscope.Provide(testDepth(1)),
		dscope.Provide(testTags(nil)),
		dscope.Provide(testMissing("default")),
	)

	vm, err := taijs.Init("config", `
		var MaxDepth = 42;
		var Tags = ["a"];
		Tags.push("b");
	`)
	if err != nil {
		t.Fatal(err)
	}

	scope, err = configs.ScriptFork(scope, vm)
	if err != nil {
		t.Fatal(err)
	}

	if d := dscope.Get[testDepth](scope); d != 42 {
		t.Fatalf("got %v", d)
	}
	if tags := dscope.Get[testTags](scope); len(tags) != 2 || tags[1] != "b" {
		t.Fatalf("got %v", tags)
	}
	if m := dscope.Get[testMissing](scope); m != "default" {
		t.Fatalf("got %v", m)
	}

	bad, err := taijs.Init("config", `var MaxDepth = "deep";`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := configs.ScriptFork(scope, bad); err == nil {
		t.Fatal("should error")
	}
}
