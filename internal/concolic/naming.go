// Package concolic holds the concolic execution state (spec.md §3.6):
// the concrete/symbolic stores, path constraint, version maps, and the
// Encoder/Evaluator pair that lower IR expressions against that state.
// The executor (internal/executor) drives instructions through it; the
// shadow engine (internal/shadow) extends it with dual old/new stores.
package concolic

import "fmt"

// FlattenedName joins an instance scope (the dotted path of function-block
// instance names from the root, spec.md §3.6) with a local variable or
// field-access name. An empty scope (the root program) contributes no
// prefix.
func FlattenedName(scope, local string) string {
	if scope == "" {
		return local
	}
	return scope + "." + local
}

// ContextualName formats spec.md §3.6's `<flattened_name>_<version>__<cycle>`.
func ContextualName(flattened string, version, cycle int) string {
	return fmt.Sprintf("%s_%d__%d", flattened, version, cycle)
}
