package config

import (
	"bytes"
	"testing"
)

func TestExitfWritesMessageAndExits(t *testing.T) {
	var out bytes.Buffer
	var code int
	prevWriter, prevExit := exitWriter, exitFunc
	exitWriter = &out
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() {
		exitWriter, exitFunc = prevWriter, prevExit
	})

	Exitf("parse flags: %s", "bad value")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got := out.String(); got != "parse flags: bad value\n" {
		t.Fatalf("output = %q", got)
	}
}
