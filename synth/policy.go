package synth

import (
	"fmt"
	"time"

	"github.com/nitta-corp/nitta/internal/obslog"
	"github.com/nitta-corp/nitta/problem"
)

// Result is what a Policy.Run call returns: the best node reached, its
// status, and an effort count: the decisions applied for Greedy and
// ObviousBinding, the search nodes visited for BoundedAllThreads.
type Result struct {
	Node     *Node
	Status   Status
	Expanded int
	TimedOut bool
}

// Policy is a synthesis search strategy (§4.G, §9 "open question"): given a
// starting node and a deadline, it explores decisions and returns the best
// node reached. §5 "Cancellation and timeout": on deadline, return the best
// complete node seen, or the deepest in-progress node if none is complete;
// timeouts never corrupt the tree because nodes are immutable.
type Policy interface {
	Name() string
	Run(start *Node, deadline time.Time, log *obslog.Logger) (Result, error)
}

// stepDeterministic applies the single top-ranked option at n, skipping any
// option whose Apply fails (a Bind-rejection or exhausted Repetition-limit,
// per §7, both of which the driver recovers from by trying the next-best
// option) until one succeeds or every option has been tried. It returns
// (nil, false) when every option at n failed to apply, which only a
// contract-violating model would produce (every enumerated option is, by
// construction, admissible) but is handled defensively rather than panicking.
func stepDeterministic(n *Node, opts []problem.Option, log *obslog.Logger) (*Node, bool) {
	g := globalMetricsOf(opts)
	for _, o := range rank(g, opts) {
		child, err := n.Child(o)
		if err != nil {
			if log != nil {
				log.Debug().Str("kind", string(o.Kind)).Err(err).Log("synth: option rejected, trying next")
			}
			continue
		}
		return child, true
	}
	return nil, false
}

// Greedy is the pure best-first policy of §4.G/§9: at every node, apply the
// single top-scoring option.
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (Greedy) Run(start *Node, deadline time.Time, log *obslog.Logger) (Result, error) {
	n := start
	best := start
	expanded := 0
	for {
		status, opts := n.Classify()
		if status == Complete {
			return Result{Node: n, Status: Complete, Expanded: expanded}, nil
		}
		if status == Dead {
			return Result{Node: best, Status: Dead, Expanded: expanded}, fmt.Errorf("%w: depth %d", ErrDead, n.Depth)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return Result{Node: n, Status: InProgress, Expanded: expanded, TimedOut: true}, ErrTimeout
		}
		child, ok := stepDeterministic(n, opts, log)
		if !ok {
			return Result{Node: n, Status: Dead, Expanded: expanded}, fmt.Errorf("%w: every option at depth %d failed to apply", ErrDead, n.Depth)
		}
		n = child
		best = n
		expanded++
	}
}

// ObviousBinding is the policy of §4.G/§9 that takes only bindings with
// exactly one alternative PU until none remain, then falls back to Greedy
// scoring for the rest: an "obvious" bind can never be wrong (no other PU
// could have hosted the function), so committing it first never forecloses
// a reachable completion, while letting the driver skip scoring work on a
// forced move.
type ObviousBinding struct{}

func (ObviousBinding) Name() string { return "obvious-binding" }

func (ObviousBinding) Run(start *Node, deadline time.Time, log *obslog.Logger) (Result, error) {
	n := start
	expanded := 0
	for {
		status, opts := n.Classify()
		if status == Complete {
			return Result{Node: n, Status: Complete, Expanded: expanded}, nil
		}
		if status == Dead {
			return Result{Node: n, Status: Dead, Expanded: expanded}, fmt.Errorf("%w: depth %d", ErrDead, n.Depth)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return Result{Node: n, Status: InProgress, Expanded: expanded, TimedOut: true}, ErrTimeout
		}
		obvious := obviousBind(opts)
		var (
			child *Node
			ok    bool
		)
		if obvious != nil {
			c, err := n.Child(*obvious)
			if err == nil {
				child, ok = c, true
			} else if log != nil {
				log.Debug().Str("kind", string(obvious.Kind)).Err(err).Log("synth: obvious bind rejected, falling back")
			}
		}
		if !ok {
			child, ok = stepDeterministic(n, opts, log)
		}
		if !ok {
			return Result{Node: n, Status: Dead, Expanded: expanded}, fmt.Errorf("%w: every option at depth %d failed to apply", ErrDead, n.Depth)
		}
		n = child
		expanded++
	}
}

// obviousBind returns the lowest-DecisionIndex Bind option with exactly one
// admissible PU, or nil if none exists.
func obviousBind(opts []problem.Option) *problem.Option {
	var best *problem.Option
	for i := range opts {
		o := opts[i]
		if o.Kind != problem.KindBind || o.Alternatives != 1 {
			continue
		}
		if best == nil || o.DecisionIndex < best.DecisionIndex {
			best = &o
		}
	}
	return best
}
