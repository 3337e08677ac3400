package main

import (
	"testing"

	"github.com/spf13/afero"
)

// counterDesign is a 4-bit register `out` with a low-active reset `rst_n`
// that clears it on the step after rst_n is 0, incrementing by 1 on every
// step while not in reset
// (spec.md §8 scenario 1's design, expressed directly as BTOR2).
const counterDesign = `
1 sort bitvec 1
2 sort bitvec 4
3 input 1 rst_n
4 state 2 out
5 zero 2
6 one 2
7 add 2 4 6
8 ite 2 3 7 5
9 init 2 4 5
10 next 2 4 8
`

// unconstrainedDesign has a state with no init line: its initial value is
// symbolically free (spec.md §8 scenario 5).
const unconstrainedDesign = `
1 sort bitvec 4
2 state 1 out
3 one 1
4 add 1 2 3
5 next 1 2 4
`

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestCounterReachesTwoWithinBound(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "design.btor2", counterDesign)
	writeFile(t, fs, "stim.txt", "[PROCESS]\nrst_n = 0\n#5\nrst_n = 1\n\n[PROPERTY]\nout == 2\n")

	code := run(fs, "design.btor2", "top", "stim.txt", 10, "", "", 0)
	if code != exitPropertyHit {
		t.Fatalf("exit code = %d, want %d (property hit)", code, exitPropertyHit)
	}
}

func TestCounterCannotReach15WithinBound(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "design.btor2", counterDesign)
	writeFile(t, fs, "stim.txt", "[PROCESS]\nrst_n = 0\n#5\nrst_n = 1\n\n[PROPERTY]\nout == 15\n")

	code := run(fs, "design.btor2", "top", "stim.txt", 5, "", "", 0)
	if code != exitBoundExhausted {
		t.Fatalf("exit code = %d, want %d (bound exhausted)", code, exitBoundExhausted)
	}
}

func TestUnconstrainedInitialStateCanHitAnyValue(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "design.btor2", unconstrainedDesign)
	writeFile(t, fs, "stim.txt", "[PROPERTY]\nout == 10\n")

	code := run(fs, "design.btor2", "top", "stim.txt", 1, "", "", 0)
	if code != exitPropertyHit {
		t.Fatalf("exit code = %d, want %d (property hit at step 0, free initial value)", code, exitPropertyHit)
	}
}

func TestUnknownPropertySignalIsUserError(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "design.btor2", counterDesign)
	writeFile(t, fs, "stim.txt", "[PROCESS]\nrst_n = 1\n\n[PROPERTY]\nnonexistent_signal == 2\n")

	code := run(fs, "design.btor2", "top", "stim.txt", 5, "", "", 0)
	if code != exitUserError {
		t.Fatalf("exit code = %d, want %d (unknown signal binding error)", code, exitUserError)
	}
}

func TestMissingDesignFileIsUserError(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "stim.txt", "[PROPERTY]\ntrue\n")

	code := run(fs, "missing.btor2", "top", "stim.txt", 5, "", "", 0)
	if code != exitUserError {
		t.Fatalf("exit code = %d, want %d (missing design file)", code, exitUserError)
	}
}

func TestMalformedBTOR2IsUserError(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "design.btor2", "1 bogusop foo\n")
	writeFile(t, fs, "stim.txt", "[PROPERTY]\ntrue\n")

	code := run(fs, "design.btor2", "top", "stim.txt", 5, "", "", 0)
	if code != exitUserError {
		t.Fatalf("exit code = %d, want %d (BTOR2 parse error)", code, exitUserError)
	}
}
