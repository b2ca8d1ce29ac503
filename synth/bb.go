package synth

import (
	"fmt"
	"time"

	"github.com/nitta-corp/nitta/internal/obslog"
)

// BoundedAllThreads is the §4.G/§9 policy that expands the top TopK
// options per node to depth MaxDepth (a bounded branch-and-bound, grounded
// on tsp/bb.go's deterministic DFS with deterministic branching order and a
// soft deadline) and falls back to Greedy below that depth. The first
// complete node found by the depth-first, rank-ordered branching is
// returned; since ranked options are explored best-first and Greedy is used
// below the bound, a node with a unique completion is reached identically
// to Greedy and ObviousBinding (§8 property 8).
type BoundedAllThreads struct {
	TopK     int
	MaxDepth int
}

func (b BoundedAllThreads) Name() string { return "bounded-all-threads" }

func (b BoundedAllThreads) Run(start *Node, deadline time.Time, log *obslog.Logger) (Result, error) {
	topK := b.TopK
	if topK <= 0 {
		topK = 3
	}
	maxDepth := b.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 4
	}

	e := &bbSearch{topK: topK, maxDepth: maxDepth, deadline: deadline, log: log, deepest: start}
	found := e.search(start)
	switch {
	case found != nil:
		return Result{Node: found, Status: Complete, Expanded: e.steps}, nil
	case e.timedOut:
		return Result{Node: e.deepest, Status: InProgress, Expanded: e.steps, TimedOut: true}, ErrTimeout
	default:
		return Result{Node: e.deepest, Status: Dead, Expanded: e.steps}, fmt.Errorf("%w: depth %d", ErrDead, e.deepest.Depth)
	}
}

// bbSearch holds the bounded DFS's mutable state, mirroring tsp/bbEngine's
// shape: explicit fields instead of closures over named returns, a sparse
// deadline check, and deterministic branching via rank.
type bbSearch struct {
	topK     int
	maxDepth int
	deadline time.Time
	log      *obslog.Logger

	steps    int
	timedOut bool
	deepest  *Node
}

// deadlineCheck performs a rare deadline test (every 64 node events), as
// tsp/bb.go does every 4096: the per-node cost here (model Options/Apply)
// is far higher than a distance lookup, so a tighter cadence still keeps
// the check's own overhead negligible.
func (e *bbSearch) deadlineCheck() bool {
	e.steps++
	if e.deadline.IsZero() || e.steps&63 != 0 {
		return false
	}
	return time.Now().After(e.deadline)
}

func (e *bbSearch) search(n *Node) *Node {
	if n.Depth > e.deepest.Depth {
		e.deepest = n
	}
	if e.deadlineCheck() {
		e.timedOut = true
		return nil
	}
	status, opts := n.Classify()
	switch status {
	case Complete:
		return n
	case Dead:
		return nil
	}
	if n.Depth >= e.maxDepth {
		res, err := Greedy{}.Run(n, e.deadline, e.log)
		if res.Node != nil && res.Node.Depth > e.deepest.Depth {
			e.deepest = res.Node
		}
		if err == nil && res.Status == Complete {
			return res.Node
		}
		if res.TimedOut {
			e.timedOut = true
		}
		return nil
	}
	g := globalMetricsOf(opts)
	ranked := rank(g, opts)
	if len(ranked) > e.topK {
		ranked = ranked[:e.topK]
	}
	for _, o := range ranked {
		child, err := n.Child(o)
		if err != nil {
			continue
		}
		if found := e.search(child); found != nil {
			return found
		}
		if e.timedOut {
			return nil
		}
	}
	return nil
}
