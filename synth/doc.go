// Package synth implements the synthesis driver of §4.G: a tree of
// immutable model states connected by problem-surface decisions (package
// problem), explored by a metric-guided search policy until a state is
// complete (every function bound, every variable transferred) or dead (no
// options remain and no refactor can recover).
//
// Three policies are exposed, per §9's open question on which is canonical:
// Greedy (pure best-first), ObviousBinding (exhaust alternative=1 bindings
// first, then fall back to Greedy) and BoundedAllThreads (branch-and-bound
// over the top-k options per node to a fixed depth, greedy below), the last
// shaped on tsp/bb.go's deterministic branch-and-bound with a soft deadline
// (see DESIGN.md). All three are required to agree on the unique completion
// when one exists (§8 property 8, determinism).
package synth
