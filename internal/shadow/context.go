// Package shadow implements spec.md §4.6's divergence engine: a unified
// old/new program is driven through the same CFGs the plain executor
// walks, but every If/While guard that transitively depends on a
// ChangeExpr is evaluated on both sides and compared before the primary
// context is allowed to advance.
//
// concolic.Context's ordinary Concrete/Symbolic stores already serve as
// the unified program's "new" valuations — that is the convention
// internal/concolic's own Encoder/Evaluator assume for a ChangeExpr in
// None/New mode. Context here only adds what is genuinely extra: the
// old-version mirror of any name whose own definition depended on a
// ChangeExpr, and the two path constraints the divergence algorithm
// threads independently of the base State's Path.
package shadow

import (
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/smt"
)

// Context wraps a concolic.Context with the old-side shadow stores
// spec.md §3.7 adds to State.
type Context struct {
	*concolic.Context
	OldConcrete map[string]smt.Value
	OldSymbolic map[string]*smt.Term
	OldPath     []*smt.Term
	NewPath     []*smt.Term
}

// NewRootContext builds the cycle-0 shadow context over rootCFG. The
// old-side stores start empty: before any ChangeExpr-bearing assignment
// runs, nothing has a recorded old value, and plain reads of
// ordinary names fall back to the shared (new) store (see
// Encoder/Evaluator's oldView).
func NewRootContext(rootCFG string) *Context {
	return &Context{
		Context:     concolic.NewRootContext(rootCFG),
		OldConcrete: map[string]smt.Value{},
		OldSymbolic: map[string]*smt.Term{},
	}
}

// Clone deep-copies c, including the old-side stores and both shadow path
// constraints, for an independent divergent fork (spec.md §5's no-aliasing
// rule extended to the shadow stores).
func (c *Context) Clone() *Context {
	old := make(map[string]smt.Value, len(c.OldConcrete))
	for k, v := range c.OldConcrete {
		old[k] = v
	}
	oldSym := make(map[string]*smt.Term, len(c.OldSymbolic))
	for k, v := range c.OldSymbolic {
		oldSym[k] = v
	}
	return &Context{
		Context:     c.Context.Clone(),
		OldConcrete: old,
		OldSymbolic: oldSym,
		OldPath:     append([]*smt.Term(nil), c.OldPath...),
		NewPath:     append([]*smt.Term(nil), c.NewPath...),
	}
}

// wrap attaches base as c's underlying concolic.Context, cloning c's
// shadow stores unless base already is c's own (the primary, mutated in
// place, needs no independent copy).
func (c *Context) wrap(base *concolic.Context) *Context {
	if base == nil {
		return nil
	}
	if base == c.Context {
		return c
	}
	clone := c.Clone()
	clone.Context = base
	return clone
}

// BindOld records cname's old-version valuation alongside whatever value
// the unified (new) assignment already bound under the same name.
func (c *Context) BindOld(cname string, concrete smt.Value, symbolic *smt.Term) {
	c.OldConcrete[cname] = concrete
	c.OldSymbolic[cname] = symbolic
}

// hasOld reports whether flattened's current version has a recorded
// old-side valuation distinct from the shared store.
func (c *Context) hasOld(flattened string) bool {
	ver := c.Version(flattened)
	cname := concolic.ContextualName(flattened, ver, c.Cycle)
	_, ok := c.OldSymbolic[cname]
	return ok
}

// oldView returns a concolic.Context whose Concrete/Symbolic stores have
// every recorded old-side valuation overlaid on top of the shared store,
// so a plain concolic.Encoder/Evaluator resolves an ordinary
// VariableAccess to its old value wherever one was recorded, and to the
// unchanged shared value everywhere else.
func (c *Context) oldView() *concolic.Context {
	view := c.Context.Clone()
	for k, v := range c.OldSymbolic {
		view.State.Symbolic[k] = v
	}
	for k, v := range c.OldConcrete {
		view.State.Concrete[k] = v
	}
	return view
}
