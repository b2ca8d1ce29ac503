package ir

import (
	"fmt"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

// Graph is the intermediate dataflow graph of §3/§4.B: a set of functions
// connected by the variables they produce and consume. Internally it is
// represented as a bipartite directed core.Graph (function vertices and
// variable vertices, edges function->output-variable and
// variable->consuming-function), which lets every structural question
// (producer uniqueness, instantaneous cycles, topological wave depth) be
// answered by the teacher's own dfs package instead of a bespoke traversal.
//
// Graph is immutable: every mutating operation (refactor, AddFunction)
// returns a new Graph built by cloning the underlying core.Graph, following
// the same Clone-on-write discipline as core.Graph.Clone itself (§9
// "Immutability + structural sharing").
type Graph struct {
	g     *core.Graph // bipartite function/variable graph
	funcs map[string]Function
	order []string // function IDs in insertion order, for determinism
}

func funcVertex(id string) string { return "f:" + id }
func varVertex(v Var) string      { return "v:" + v.Name }

// NewGraph returns an empty dataflow graph.
func NewGraph() *Graph {
	return &Graph{
		g:     core.NewGraph(core.WithDirected(true), core.WithMultiEdges()),
		funcs: map[string]Function{},
	}
}

// AddFunction returns a new Graph with the function registered under id.
// Returns ErrDuplicateProducer if any of its outputs already has a producer.
func (dg *Graph) AddFunction(id string, f Function) (*Graph, error) {
	for _, o := range f.Outputs() {
		if _, ok := dg.producerOf(o); ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProducer, o.Name)
		}
	}
	ng := dg.clone()
	fv := funcVertex(id)
	_ = ng.g.AddVertex(fv)
	for _, o := range f.Outputs() {
		ov := varVertex(o)
		_, _ = ng.g.AddEdge(fv, ov, 0)
	}
	if !f.BreaksEvaluationLoop() {
		for _, in := range f.Inputs() {
			iv := varVertex(in)
			_, _ = ng.g.AddEdge(iv, fv, 0)
		}
	}
	ng.funcs[id] = f
	ng.order = append(ng.order, id)
	return ng, nil
}

// clone deep-copies the graph's bookkeeping, sharing nothing mutable with
// the receiver, per §9's immutability requirement.
func (dg *Graph) clone() *Graph {
	ng := &Graph{
		g:     dg.g.Clone(),
		funcs: make(map[string]Function, len(dg.funcs)),
		order: append([]string(nil), dg.order...),
	}
	for k, v := range dg.funcs {
		ng.funcs[k] = v
	}
	return ng
}

// Function looks up a registered function by id.
func (dg *Graph) Function(id string) (Function, bool) {
	f, ok := dg.funcs[id]
	return f, ok
}

// Functions returns every function id in insertion order.
func (dg *Graph) Functions() []string {
	return append([]string(nil), dg.order...)
}

// producerOf returns the function id producing v, if any.
func (dg *Graph) producerOf(v Var) (string, bool) {
	for id, f := range dg.funcs {
		if f.Outputs().Contains(v) {
			return id, true
		}
	}
	return "", false
}

// ProducerOf is the exported form of producerOf, used by the bus network and
// the functional simulator to locate the function that emits a variable.
func (dg *Graph) ProducerOf(v Var) (string, bool) { return dg.producerOf(v) }

// ConsumersOf returns every function id that consumes v as an input.
func (dg *Graph) ConsumersOf(v Var) []string {
	var out []string
	for _, id := range dg.order {
		if dg.funcs[id].Inputs().Contains(v) {
			out = append(out, id)
		}
	}
	return out
}

// Validate checks the §3 invariant "every algorithm variable has exactly one
// producing function" for every variable the graph mentions as an input, and
// that the instantaneous (non-loop) dependency graph is acyclic, returning
// ErrNoProducer or ErrCycleDetected.
func (dg *Graph) Validate(algorithmInputs VarSet) error {
	for _, id := range dg.order {
		f := dg.funcs[id]
		for _, in := range f.Inputs() {
			if algorithmInputs.Contains(in) {
				continue
			}
			if _, ok := dg.producerOf(in); !ok {
				return fmt.Errorf("%w: %s", ErrNoProducer, in.Name)
			}
		}
	}
	found, _, err := dfs.DetectCycles(dg.g)
	if err != nil {
		return err
	}
	if found {
		return ErrCycleDetected
	}
	return nil
}

// WaveDepth returns, for every function id, its topological depth from the
// algorithm's inputs: a function none of whose inputs is produced by another
// function in the graph has depth 0; each consumer is max(producer depths)+1. This is the "wave depth
// from inputs" metric input the bus network's binding-option scoring uses
// (§4.E), computed via dfs.TopologicalSort over the bipartite graph.
func (dg *Graph) WaveDepth() (map[string]int, error) {
	order, err := dfs.TopologicalSort(dg.g)
	if err != nil {
		// A cycle here means an un-broken loop; callers should break it
		// before asking for wave depth.
		return nil, err
	}
	depth := make(map[string]int, len(dg.order))
	rank := make(map[string]int, len(order))
	for i, v := range order {
		rank[v] = i
	}
	for _, id := range dg.order {
		depth[id] = 0
	}
	// Process vertices in topological order, propagating max-parent depth.
	vdepth := make(map[string]int, len(order))
	for _, vtx := range order {
		best := -1
		for _, pred := range predecessors(dg.g, vtx) {
			if d, ok := vdepth[pred]; ok && d > best {
				best = d
			}
		}
		if len(vtx) > 2 && vtx[:2] == "f:" {
			vdepth[vtx] = best + 1
			depth[vtx[2:]] = best + 1
		} else {
			vdepth[vtx] = best
		}
	}
	return depth, nil
}

// predecessors returns every vertex with a directed edge into vtx.
func predecessors(g *core.Graph, vtx string) []string {
	var out []string
	for _, id := range g.Vertices() {
		nbrs, err := g.NeighborIDs(id)
		if err != nil {
			continue
		}
		for _, n := range nbrs {
			if n == vtx {
				out = append(out, id)
				break
			}
		}
	}
	return out
}
