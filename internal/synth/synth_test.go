package synth

import (
	"context"
	"os/exec"
	"reflect"
	"testing"
)

func TestBuildArgsSubstitutesPlaceholders(t *testing.T) {
	got := buildArgs("yosys-btor {design} --top {top}", "/tmp/design.v", "alu")
	want := []string{"yosys-btor", "/tmp/design.v", "--top", "alu"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buildArgs = %v, want %v", got, want)
	}
}

func TestBuildArgsEmptyTemplate(t *testing.T) {
	got := buildArgs("", "/tmp/design.v", "alu")
	if len(got) != 0 {
		t.Fatalf("buildArgs(\"\") = %v, want empty", got)
	}
}

func TestSynthesizeRunsTemplateAndCapturesStdout(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available on PATH")
	}
	a := &Adapter{Template: "echo synthesized {design} {top}"}
	out, err := a.Synthesize(context.Background(), "design.v", "top")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	want := "synthesized design.v top\n"
	if string(out) != want {
		t.Fatalf("stdout = %q, want %q", out, want)
	}
}

func TestSynthesizeReturnsErrorOnFailingCommand(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available on PATH")
	}
	a := &Adapter{Template: "false"}
	if _, err := a.Synthesize(context.Background(), "design.v", "top"); err == nil {
		t.Fatalf("expected error from failing command")
	}
}
