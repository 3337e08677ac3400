// Command bmc runs bounded model checking over a BTOR2 design against a
// stimulus script (spec.md §6).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/cnfjlhj/btormc/internal/bmc"
	"github.com/cnfjlhj/btormc/internal/btor2"
	"github.com/cnfjlhj/btormc/internal/introspect"
	"github.com/cnfjlhj/btormc/internal/smt"
	"github.com/cnfjlhj/btormc/internal/smt/ginisat"
	"github.com/cnfjlhj/btormc/internal/stimulus"
	"github.com/cnfjlhj/btormc/internal/synth"
	"github.com/cnfjlhj/btormc/internal/trace"
)

// Exit codes per spec.md §6.
const (
	exitPropertyHit    = 0
	exitBoundExhausted = 1
	exitInconclusive   = 2
	exitUserError      = 3
	exitInternalError  = 4
)

func main() {
	kMax := flag.Int("k", bmc.DefaultKMax, "maximum unrolling bound")
	synthCmd := flag.String("synth-cmd", "", "command template to synthesize design.hdl into BTOR2 ({design}, {top} placeholders)")
	ctlQuery := flag.String("ctl-query", "", "CTL-style formula to evaluate against the counter-example trace on PropertyHit")
	timeout := flag.Duration("timeout", 0, "backend solve timeout per step (0 disables)")
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: bmc <design.hdl> <top_module> <stimulus.txt> [-k K_max]")
		os.Exit(exitUserError)
	}
	designPath, topModule, stimPath := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	fs := afero.NewOsFs()
	code := run(fs, designPath, topModule, stimPath, *kMax, *synthCmd, *ctlQuery, *timeout)
	os.Exit(code)
}

func run(fs afero.Fs, designPath, topModule, stimPath string, kMax int, synthCmd, ctlQuery string, timeout time.Duration) int {
	btorFile, err := loadDesign(fs, designPath, topModule, synthCmd)
	if err != nil {
		log.Printf("bmc: %v", err)
		return exitUserError
	}
	defer btorFile.Close()

	model, err := btor2.Parse(btorFile)
	if err != nil {
		log.Printf("bmc: parsing %s: %v", designPath, err)
		return exitUserError
	}

	stimFile, err := fs.Open(stimPath)
	if err != nil {
		log.Printf("bmc: opening %s: %v", stimPath, err)
		return exitUserError
	}
	defer stimFile.Close()

	stim, err := stimulus.Parse(stimFile)
	if err != nil {
		log.Printf("bmc: parsing %s: %v", stimPath, err)
		return exitUserError
	}

	backend := ginisat.New()
	if timeout > 0 {
		backend.SetTimeout(timeout)
	}
	defer backend.Close()

	engine := bmc.New(model, stim, backend, kMax)

	outcome, err := engine.Run(context.Background())
	if err != nil {
		var bindErr *bmc.BindingError
		if errors.As(err, &bindErr) {
			log.Printf("bmc: %v", err)
			return exitUserError
		}
		var backendErr *smt.BackendError
		if errors.As(err, &backendErr) {
			log.Printf("bmc: %v", err)
			return exitInternalError
		}
		log.Printf("bmc: %v", err)
		return exitInternalError
	}

	return report(outcome, ctlQuery)
}

// loadDesign returns the BTOR2 text for designPath, running it through the
// synthesis adapter first when synthCmd is set (spec.md §6 "Environment").
func loadDesign(fs afero.Fs, designPath, topModule, synthCmd string) (afero.File, error) {
	if synthCmd == "" {
		f, err := fs.Open(designPath)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", designPath, err)
		}
		return f, nil
	}

	adapter := &synth.Adapter{Template: synthCmd}
	out, err := adapter.Synthesize(context.Background(), designPath, topModule)
	if err != nil {
		return nil, fmt.Errorf("synthesizing %s: %w", designPath, err)
	}

	tmp, err := afero.TempFile(fs, "", "bmc-synth-*.btor2")
	if err != nil {
		return nil, fmt.Errorf("creating synthesis scratch file: %w", err)
	}
	if _, err := tmp.Write(out); err != nil {
		return nil, fmt.Errorf("writing synthesis scratch file: %w", err)
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewinding synthesis scratch file: %w", err)
	}
	return tmp, nil
}

func report(outcome bmc.RunOutcome, ctlQuery string) int {
	switch o := outcome.(type) {
	case bmc.PropertyHit:
		fmt.Print(o.Trace.Render())
		if ctlQuery != "" {
			runCTLQuery(o.Trace, ctlQuery)
		}
		return exitPropertyHit
	case bmc.BoundExhausted:
		fmt.Printf("bound exhausted at k_max=%d: property not observed\n", o.KMax)
		return exitBoundExhausted
	case bmc.Inconclusive:
		fmt.Printf("inconclusive at step %d: backend returned unknown\n", o.Step)
		return exitInconclusive
	case bmc.Cancelled:
		fmt.Printf("cancelled at step %d\n", o.Step)
		return exitInconclusive
	default:
		log.Printf("bmc: unrecognized outcome %T", outcome)
		return exitInternalError
	}
}

// runCTLQuery is diagnostic only: it never affects the exit code or the
// printed counter-example (SPEC_FULL.md §6).
func runCTLQuery(tr *trace.Trace, formula string) {
	eng, err := introspect.New()
	if err != nil {
		log.Printf("bmc: ctl-query: %v", err)
		return
	}
	if err := eng.LoadTrace(tr); err != nil {
		log.Printf("bmc: ctl-query: %v", err)
		return
	}
	ok, err := eng.Query(context.Background(), formula)
	if err != nil {
		log.Printf("bmc: ctl-query: %v", err)
		return
	}
	fmt.Printf("ctl-query %q: %t\n", formula, ok)
}
