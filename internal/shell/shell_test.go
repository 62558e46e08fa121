package shell

import (
	"context"
	"testing"
	"time"
)

func TestExecRun(t *testing.T) {
	e := NewExec(time.Second)
	if !e.Exists("sh") {
		t.Skip("sh not available")
	}

	res := e.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	if !res.Success || res.Stdout != "out\n" || res.Stderr != "err\n" {
		t.Errorf("unexpected result %+v", res)
	}

	res = e.Run(context.Background(), "sh", "-c", "exit 3")
	if res.Success || res.ExitCode != 3 || res.Err != nil {
		t.Errorf("non-zero exit: %+v", res)
	}
}

func TestExecTimeout(t *testing.T) {
	e := NewExec(50 * time.Millisecond)
	if !e.Exists("sleep") {
		t.Skip("sleep not available")
	}

	res := e.Run(context.Background(), "sleep", "5")
	if res.Success || res.Err == nil {
		t.Errorf("expected timeout, got %+v", res)
	}
}

func TestExecMissingBinary(t *testing.T) {
	e := NewExec(0)
	if e.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want default", e.Timeout)
	}
	if e.Exists("definitely-not-a-real-binary-safecrab") {
		t.Fatal("Exists reported a missing binary")
	}
	res := e.Run(context.Background(), "definitely-not-a-real-binary-safecrab")
	if res.Success || res.Err == nil {
		t.Errorf("expected start failure, got %+v", res)
	}
}
