// Package problem defines the uniform option/decision surface of §4.F: a
// problem is a pair (options, decision). The bus network exports Bind,
// Dataflow, BreakLoop, OptimizeAccumulate and ResolveDeadlock; each sub-PU
// additionally exports Endpoint. The synthesis driver (package synth)
// treats every kind uniformly through this interface: collect options from
// every problem, score them, pick one, call its decision.
package problem

// Kind names the five bus-network problem kinds plus the per-PU Endpoint
// problem, matching §4.F's enumeration exactly.
type Kind string

const (
	KindBind               Kind = "Bind"
	KindDataflow           Kind = "Dataflow"
	KindBreakLoop          Kind = "BreakLoop"
	KindOptimizeAccumulate Kind = "OptimizeAccumulate"
	KindResolveDeadlock    Kind = "ResolveDeadlock"
	KindEndpoint           Kind = "Endpoint"
)

// Option is one offered choice of some Kind, carrying enough metric inputs
// for the synthesis driver's scoring formulas (§4.G) without requiring the
// driver to know the concrete option type. Detail holds the kind-specific
// payload (e.g. a bus.BindOption) that the matching Decision function
// expects back unchanged.
type Option struct {
	Kind Kind
	// DecisionIndex totally orders a node's children for deterministic
	// tie-breaking and concurrent-worker ordering (§5 "Ordering guarantees").
	DecisionIndex int
	Detail        any

	// Metric inputs shared across kinds; zero value means "not applicable"
	// for this option's kind.
	Critical      bool
	Alternatives  int
	WaveDepth     int
	NumOutputs    int
	PercentBound  float64
	Enablement    int
	Restlessness  int64
	WaitTime      int64
	RestrictedAt  bool
	AvailableOpts int
	LocksBroken   int
}

// Model is implemented by whatever carries the current synthesis state
// (package bus's Network, in this engine); Options collects every offered
// Option across all problem kinds and Apply commits one, returning the new
// Model. Both are pure functions of (model[, option]) -> model, per §4.F.
type Model interface {
	Options() []Option
	Apply(o Option) (Model, error)
}
