package bmc

import "fmt"

// BindingError is raised at engine startup or step evaluation when the
// stimulus script names a signal the engine cannot bind: a property signal
// that resolves to neither a state, an input, nor a BTOR2 output
// expression, or a clock or drive name that resolves to neither a state
// nor an input (spec.md §7: "engine startup: script names an unknown
// signal").
type BindingError struct {
	Signal string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("bmc: unknown signal %q referenced by stimulus script", e.Signal)
}
