package concolic

import (
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
)

// Frame is one call-stack entry (spec.md §3.6): the callee CFG, its
// instance scope, and the label to resume at in the caller on return.
type Frame struct {
	CFG         string
	Scope       string
	ReturnLabel ir.Label
}

// Context owns exactly one State plus the cycle counter and call stack
// that State's Location doesn't capture on its own (spec.md §3.6). Global
// points to the whole-execution version counter: spec.md §9's open
// question records that the source keeps both a global and a per-state
// counter and expects them to agree after every instruction; Global is
// that shared counter, State.LocalVers is the per-state one, and
// CheckVersionsAgree enforces the invariant.
type Context struct {
	State  *State
	Cycle  int
	Stack  []Frame
	Global map[string]int
}

// NewRootContext builds the cycle-0 context: every flattened name starts
// at version 0 (spec.md §3.6's "Lifecycle"). Binding whole-program inputs
// to fresh symbolic constants and everything else to defaults is the
// caller's job (internal/executor.Bootstrap) since it requires walking the
// root interface.
func NewRootContext(rootCFG string) *Context {
	return &Context{
		State:  NewState(Location{CFG: rootCFG}),
		Cycle:  0,
		Stack:  []Frame{{CFG: rootCFG, Scope: "", ReturnLabel: ir.Label(-1)}},
		Global: map[string]int{},
	}
}

// Scope returns the instance scope of the currently active frame.
func (c *Context) Scope() string {
	if len(c.Stack) == 0 {
		return ""
	}
	return c.Stack[len(c.Stack)-1].Scope
}

// Push/Pop manage the call stack on Call/Exit dispatch (spec.md §4.5).
func (c *Context) Push(f Frame) { c.Stack = append(c.Stack, f) }
func (c *Context) Pop() (Frame, bool) {
	if len(c.Stack) == 0 {
		return Frame{}, false
	}
	top := c.Stack[len(c.Stack)-1]
	c.Stack = c.Stack[:len(c.Stack)-1]
	return top, true
}

// Clone deep-copies the context for a fork: a fresh State clone, an
// independent copy of the call stack, and an independent copy of the
// global version map (after the fork point the two contexts diverge
// independently, spec.md §5).
func (c *Context) Clone() *Context {
	stack := append([]Frame(nil), c.Stack...)
	global := make(map[string]int, len(c.Global))
	for k, v := range c.Global {
		global[k] = v
	}
	return &Context{
		State:  c.State.Clone(),
		Cycle:  c.Cycle,
		Stack:  stack,
		Global: global,
	}
}

// BumpVersion allocates the next version for flattened and records it as
// both the global and local current version. Every writer (Assignment,
// Havoc, cycle closure) goes through this so the two counters can never
// observably disagree at the point of the write.
func (c *Context) BumpVersion(flattened string) int {
	c.Global[flattened]++
	v := c.Global[flattened]
	c.State.LocalVers[flattened] = v
	return v
}

// Version returns the current local version of flattened, defaulting to 0
// for a name not yet written in this state (the root context's initial
// binding).
func (c *Context) Version(flattened string) int {
	return c.State.LocalVers[flattened]
}

// CheckVersionsAgree enforces spec.md §8 invariant 2 and §9's open
// question: for every flattened name the State has touched, its local
// version must not exceed (and, after a completed instruction, must
// equal) the global counter.
func (c *Context) CheckVersionsAgree() error {
	for name, local := range c.State.LocalVers {
		if global := c.Global[name]; local != global {
			return errors.InvalidIR("executor", "version mismatch for %q: local=%d global=%d", name, local, global)
		}
	}
	return nil
}
