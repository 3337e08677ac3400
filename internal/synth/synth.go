// Package synth invokes an external HDL→BTOR2 synthesis tool as a
// caller-supplied command template (spec.md §2/§6 "Environment": "the
// external synthesis adapter is invoked via a caller-supplied command
// template"). No example repo in the pack wraps an external compiler
// invocation in a third-party library, so this is plain os/exec.
package synth

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Adapter runs Template, a shell-word command line containing the
// placeholders {design} and {top}, and returns its stdout as the BTOR2
// text to parse.
type Adapter struct {
	Template string
}

// Synthesize substitutes designPath and topModule into the template and
// runs it, returning stdout. A nonzero exit or launch failure is
// returned with stderr attached for diagnosis.
func (a *Adapter) Synthesize(ctx context.Context, designPath, topModule string) ([]byte, error) {
	args := buildArgs(a.Template, designPath, topModule)
	if len(args) == 0 {
		return nil, fmt.Errorf("synth: empty command template")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("synth: running %q: %w (stderr: %s)", a.Template, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// buildArgs substitutes placeholders and splits the result on
// whitespace. It does not support quoting within the template; command
// templates are operator-supplied configuration, not untrusted input.
func buildArgs(template, designPath, topModule string) []string {
	replaced := strings.NewReplacer("{design}", designPath, "{top}", topModule).Replace(template)
	return strings.Fields(replaced)
}
