package synth

import "github.com/nitta-corp/nitta/problem"

// GlobalMetrics counts how many options of each broad family a node offers
// (§4.G "global metrics"): bindings, dataflow transfers and control-flow
// refactors (break-loop, optimize-accumulate, resolve-deadlock combined).
// Option scoring is a lexicographic priority over these counts and the
// specific, per-option-kind metrics computed by Score: in practice this
// engine folds both into one comparable integer (the "combine" function §9
// asks to keep separate from enumeration), since the specific formulas
// below already carry priority-sized constants (e.g. a dataflow node with
// ≥2 ready transfers always outscores every binding).
type GlobalMetrics struct {
	Bindings     int
	DataflowOpts int
	ControlFlow  int
}

// globalMetricsOf tallies o across its Kind.
func globalMetricsOf(opts []problem.Option) GlobalMetrics {
	var g GlobalMetrics
	for _, o := range opts {
		switch o.Kind {
		case problem.KindBind:
			g.Bindings++
		case problem.KindDataflow:
			g.DataflowOpts++
		case problem.KindBreakLoop, problem.KindOptimizeAccumulate, problem.KindResolveDeadlock:
			g.ControlFlow++
		}
	}
	return g
}

// Score computes the §4.G lexicographic priority score for o within a node
// whose other options are summarized by g, as a single comparable int64
// (combine(global, specific) -> integer, per §9's "Metrics as an open
// table" design note — kept as one function so policy experimentation only
// ever touches this file).
func Score(g GlobalMetrics, o problem.Option) int64 {
	switch o.Kind {
	case problem.KindBind:
		switch {
		case o.Critical:
			return 2000
		case o.Alternatives == 1:
			return 500
		default:
			return 200 + 10*int64(o.Enablement) - 2*o.Restlessness
		}
	case problem.KindDataflow:
		switch {
		case g.DataflowOpts >= 2:
			return 10000 + 200 - o.WaitTime
		case o.RestrictedAt:
			return 300
		default:
			return 200 - o.WaitTime
		}
	case problem.KindBreakLoop:
		return 150 + 100*int64(o.LocksBroken)
	case problem.KindOptimizeAccumulate:
		return 120 + 100*int64(o.LocksBroken)
	case problem.KindResolveDeadlock:
		// Deadlock recovery is only ever offered when every other problem
		// kind has nothing left to give (bus.Network.resolveDeadlockOptions
		// is reached last); it must outscore everything so the search
		// never starves with a live recovery on the table.
		return 5000 + 100*int64(o.LocksBroken)
	default:
		return 0
	}
}

// rank totally orders options by (Score desc, DecisionIndex asc), giving
// the engine's tie-break rule of §5 "Ordering guarantees": metric ties are
// broken by decision_index, and a node's children are totally ordered by
// decision_index.
func rank(g GlobalMetrics, opts []problem.Option) []problem.Option {
	ranked := append([]problem.Option(nil), opts...)
	scores := make([]int64, len(ranked))
	for i, o := range ranked {
		scores[i] = Score(g, o)
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && less(scores, ranked, j, j-1); j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

// less reports whether option i outranks option j: higher score first,
// lower DecisionIndex breaks ties.
func less(scores []int64, opts []problem.Option, i, j int) bool {
	if scores[i] != scores[j] {
		return scores[i] > scores[j]
	}
	return opts[i].DecisionIndex < opts[j].DecisionIndex
}
