package explorer

import (
	"container/heap"

	"github.com/sunholo/ahorn/internal/concolic"
)

// No priority-queue library appears anywhere in the retrieved example
// corpus; container/heap is the standard-library idiom for exactly this
// shape of ordering problem and is what the rest of the Go ecosystem
// reaches for here too, so it is used directly rather than treated as a
// gap (see DESIGN.md).

// item is one queued context plus its insertion sequence number, used as
// the last, stable tie-break (spec.md §4.7).
type item struct {
	ctx *concolic.Context
	seq int
}

// priorityQueue orders items by spec.md §4.7's breadth-first heuristic:
// lower cycle first; among equal cycles, shallower frame depth first;
// among equal depth, lower label; ties broken by insertion order.
type priorityQueue []*item

func (q priorityQueue) Len() int { return len(q) }

func (q priorityQueue) Less(i, j int) bool {
	a, b := q[i].ctx, q[j].ctx
	if a.Cycle != b.Cycle {
		return a.Cycle < b.Cycle
	}
	if da, db := len(a.Stack), len(b.Stack); da != db {
		return da < db
	}
	if a.State.Location.Label != b.State.Location.Label {
		return a.State.Location.Label < b.State.Location.Label
	}
	return q[i].seq < q[j].seq
}

func (q priorityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *priorityQueue) Push(x any) { *q = append(*q, x.(*item)) }

func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// Queue wraps priorityQueue behind heap.Interface's bookkeeping so callers
// never touch container/heap directly.
type Queue struct {
	pq     priorityQueue
	nextSeq int
}

func NewQueue() *Queue {
	q := &Queue{}
	heap.Init(&q.pq)
	return q
}

func (q *Queue) Push(ctx *concolic.Context) {
	heap.Push(&q.pq, &item{ctx: ctx, seq: q.nextSeq})
	q.nextSeq++
}

// Pop removes and returns the highest-priority context, or false if empty.
func (q *Queue) Pop() (*concolic.Context, bool) {
	if q.pq.Len() == 0 {
		return nil, false
	}
	it := heap.Pop(&q.pq).(*item)
	return it.ctx, true
}

func (q *Queue) Len() int { return q.pq.Len() }
