package synth

import "github.com/nitta-corp/nitta/problem"

// Model is the contract a search node's state satisfies: the uniform
// problem.Model surface (Options/Apply) plus the completion predicate every
// concrete model (package bus's Network, in this engine) exposes (§4.G).
type Model interface {
	problem.Model
	IsComplete() bool
}

// Node is one immutable snapshot in the synthesis tree (§4.G): a model
// state, the decision that produced it from its parent (nil at the root),
// and its depth. Nodes never mutate; every decision produces a new Node
// whose parent remains reachable, satisfying §5's "timeouts never corrupt
// the tree" and §9's "immutability + structural sharing".
type Node struct {
	Model  Model
	Parent *Node
	// Decision is the option applied to Parent.Model to reach this node's
	// Model; nil at the root.
	Decision *problem.Option
	Depth    int
}

// Status classifies a node per §4.G: Complete (no unbound functions, no
// endpoint options, every variable transferred), Dead (no options but not
// complete) or InProgress (otherwise).
type Status uint8

const (
	InProgress Status = iota
	Complete
	Dead
)

// Classify evaluates n's status by calling Options() and IsComplete() once
// each, per §4.G's definitions.
func (n *Node) Classify() (Status, []problem.Option) {
	if n.Model.IsComplete() {
		return Complete, nil
	}
	opts := n.Model.Options()
	if len(opts) == 0 {
		return Dead, nil
	}
	return InProgress, opts
}

// Root returns a fresh, depth-0 node wrapping the given starting model.
func Root(m Model) *Node {
	return &Node{Model: m}
}

// Child applies o to n.Model and returns the resulting node, or the error
// Apply returned (a Bind-rejection, Time-wrap, Option-violation or
// Repetition-limit per §7). The policies in this package treat every such
// error alike, Time-wrap and Option-violation included: they skip the
// option and try the next one; none of these errors stops the search.
func (n *Node) Child(o problem.Option) (*Node, error) {
	nm, err := n.Model.Apply(o)
	if err != nil {
		return nil, err
	}
	m, ok := nm.(Model)
	if !ok {
		// Apply is documented to return the same concrete type it was
		// called on; a mismatch here means a caller swapped model kinds
		// mid-search, which is a programming error, not a recoverable
		// synthesis outcome.
		panic("synth: Apply returned a model not satisfying synth.Model")
	}
	oc := o
	return &Node{Model: m, Parent: n, Decision: &oc, Depth: n.Depth + 1}, nil
}
