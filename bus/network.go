package bus

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/problem"
	"github.com/nitta-corp/nitta/process"
	"github.com/nitta-corp/nitta/pu"
	"github.com/nitta-corp/nitta/value"
)

// BindOption is the Detail payload of a problem.Option{Kind: KindBind}.
type BindOption struct {
	FuncID string
	PUTag  string
}

// DataflowOption is the Detail payload of a problem.Option{Kind: KindDataflow}.
// It carries one Source transfer of a single variable to a single
// destination PU. The full spec allows a Source to fan out several
// variables to several destinations in one option; this engine enumerates
// the single-variable projection of that combinatorial space (documented
// in DESIGN.md) since every scenario in §8 only ever needs one variable in
// flight per transfer.
type DataflowOption struct {
	Var       ir.Var
	SrcTag    string
	DstTag    string
	Held      bool // true when no consumer exists; broadcast with no receiver
	StartTick int64
}

// BreakLoopOption names the bound loop function to refactor.
type BreakLoopOption struct {
	FuncID string
	PUTag  string
}

// ResolveDeadlockOption names the variables that must be pulled via a
// fresh reg before sending can proceed.
type ResolveDeadlockOption struct {
	Vars ir.VarSet
}

// Network is the bus-network model state of §4.E.
type Network struct {
	tag      string
	remains  map[string]ir.Function // function id -> function, bound to the network but not yet placed on a sub-PU
	binded   map[string][]string    // pu tag -> function ids placed there
	pus      map[string]pu.PU
	proc     *process.Record
	busWidth int
	ioSync   pu.SyncMode
	nextTick int64
	graph    *ir.Graph

	order       []string // pu tags, for deterministic iteration
	refactorLog []string // recent refactor fingerprints, for the repetition-limit guard (§4.G)
}

// NewNetwork constructs an empty bus network over the given dataflow
// graph and microarchitecture, with every function of the graph initially
// unbound (in remains).
func NewNetwork(tag string, g *ir.Graph, busWidth int, ioSync pu.SyncMode) *Network {
	n := &Network{
		tag:      tag,
		remains:  map[string]ir.Function{},
		binded:   map[string][]string{},
		pus:      map[string]pu.PU{},
		proc:     process.NewRecord(),
		busWidth: busWidth,
		ioSync:   ioSync,
		graph:    g,
	}
	for _, id := range g.Functions() {
		f, _ := g.Function(id)
		n.remains[id] = f
	}
	return n
}

// AddPU registers a sub-PU under its own tag.
func (n *Network) AddPU(p pu.PU) *Network {
	nn := n.clone()
	nn.pus[p.Tag()] = p
	nn.order = append(nn.order, p.Tag())
	return nn
}

// Tag reports the network's own PU tag (its identity as a sub-PU of a
// still-larger network, or simply a label at the top level).
func (n *Network) Tag() string { return n.tag }

// BusWidth reports the shared control bus's bit width, the unit the CLI's
// microcode dump serializes each tick's word against (§6).
func (n *Network) BusWidth() int { return n.busWidth }

// NextTick reports the tick the network has scheduled up to so far; the
// CLI's microcode dump walks every tick in [-1, NextTick()] (§6).
func (n *Network) NextTick() int64 { return n.nextTick }

func (n *Network) clone() *Network {
	nn := &Network{
		tag:         n.tag,
		remains:     make(map[string]ir.Function, len(n.remains)),
		binded:      make(map[string][]string, len(n.binded)),
		pus:         make(map[string]pu.PU, len(n.pus)),
		proc:        n.proc,
		busWidth:    n.busWidth,
		ioSync:      n.ioSync,
		nextTick:    n.nextTick,
		graph:       n.graph,
		order:       append([]string(nil), n.order...),
		refactorLog: append([]string(nil), n.refactorLog...),
	}
	for k, v := range n.remains {
		nn.remains[k] = v
	}
	for k, v := range n.binded {
		nn.binded[k] = append([]string(nil), v...)
	}
	for k, v := range n.pus {
		nn.pus[k] = v
	}
	return nn
}

// IsComplete reports whether no functions remain unbound, no PU offers an
// endpoint option, and every graph variable has been transferred (§4.G).
func (n *Network) IsComplete() bool {
	if len(n.remains) != 0 {
		return false
	}
	for _, tag := range n.order {
		if len(n.pus[tag].EndpointOptions()) != 0 {
			return false
		}
	}
	transferred := map[string]bool{}
	for _, v := range n.proc.TransferredVariables() {
		transferred[v] = true
	}
	for _, id := range n.graph.Functions() {
		f, _ := n.graph.Function(id)
		for _, o := range f.Outputs() {
			if !transferred[o.Name] {
				return false
			}
		}
	}
	return true
}

// Options implements problem.Model: it aggregates Bind, Dataflow,
// BreakLoop and ResolveDeadlock options (OptimizeAccumulate is offered
// explicitly by callers via TryOptimizeAccumulate rather than
// auto-detected) plus every sub-PU's Endpoint options,
// projected as Dataflow options once a destination is resolved.
func (n *Network) Options() []problem.Option {
	var opts []problem.Option
	idx := 0

	for _, id := range n.sortedRemains() {
		f := n.remains[id]
		for _, tag := range n.order {
			if _, err := n.pus[tag].TryBind(f, id); err != nil {
				continue
			}
			opts = append(opts, problem.Option{
				Kind: problem.KindBind, DecisionIndex: idx,
				Detail:       BindOption{FuncID: id, PUTag: tag},
				Critical:     f.MayCauseInternalLock(),
				Alternatives: n.countAlternatives(f, id),
				WaveDepth:    n.waveDepth(id),
				NumOutputs:   len(f.Outputs()),
			})
			idx++
		}
	}

	opts = append(opts, n.dataflowOptions(&idx)...)
	opts = append(opts, n.breakLoopOptions(&idx)...)
	if len(opts) == 0 {
		opts = append(opts, n.resolveDeadlockOptions(&idx)...)
	}

	return opts
}

// resolveDeadlockOptions is reached only once every other problem kind has
// nothing to offer (§7 "Deadlock-detected"): it looks for a cycle in the
// Lock graph every sub-PU currently exports and, when found, offers a single
// ResolveDeadlockOption carrying every locked variable on the cycle. Absent a
// cycle the node has no recovery and Options() legitimately returns empty,
// marking it dead per §4.G.
func (n *Network) resolveDeadlockOptions(idx *int) []problem.Option {
	cycle := n.lockCycle()
	if len(cycle) == 0 {
		return nil
	}
	return []problem.Option{{
		Kind: problem.KindResolveDeadlock, DecisionIndex: *idx,
		Detail:      ResolveDeadlockOption{Vars: cycle},
		LocksBroken: len(cycle),
	}}
	// idx is intentionally left unincremented past this single option: a
	// deadlock recovery is always the sole option offered at this point.
}

// lockCycle returns the variables participating in a cycle of the directed
// "locked is lockBy" graph aggregated across every sub-PU's Locks(), or nil
// if the graph is acyclic. Two PUs mutually waiting on each other's output
// (§3 "Lock") show up as a 2-cycle here; longer chains are also detected.
// The graph is built as a core.Graph and walked with dfs.DetectCycles, the
// same pairing ir.Graph.Validate uses for instantaneous-dependency cycles,
// rather than a second hand-rolled traversal.
func (n *Network) lockCycle() ir.VarSet {
	named := map[string]ir.Var{}
	g := core.NewGraph(core.WithDirected(true))
	for _, tag := range n.order {
		for _, l := range n.pus[tag].Locks() {
			_ = g.AddVertex(l.LockedVar.Name)
			_ = g.AddVertex(l.LockBy.Name)
			_, _ = g.AddEdge(l.LockedVar.Name, l.LockBy.Name, 0)
			named[l.LockedVar.Name] = l.LockedVar
			named[l.LockBy.Name] = l.LockBy
		}
	}
	found, cycles, err := dfs.DetectCycles(g)
	if err != nil || !found {
		return nil
	}
	out := make(ir.VarSet, 0, len(cycles[0]))
	for _, name := range cycles[0] {
		out = append(out, named[name])
	}
	return out
}

// TryOptimizeAccumulate offers the OptimizeAccumulate refactor explicitly
// (§4.E): unlike Bind/Dataflow/BreakLoop, which Options() enumerates
// automatically, a caller (typically the synthesis driver inspecting
// candidate add/sub chains it has already located) asks for this one by
// name, since recognizing a profitable chain is a heuristic search in its
// own right rather than a structural option enumeration.
func (n *Network) TryOptimizeAccumulate(chain []string) (problem.Option, error) {
	if len(chain) == 0 {
		return problem.Option{}, fmt.Errorf("%w: empty chain", ErrOptionViolation)
	}
	var tag string
	for _, id := range chain {
		found := ""
		for t, ids := range n.binded {
			for _, bid := range ids {
				if bid == id {
					found = t
				}
			}
		}
		if found == "" || (tag != "" && found != tag) {
			return problem.Option{}, fmt.Errorf("%w: %v", ErrNotAccumulateChain, chain)
		}
		tag = found
	}
	return problem.Option{
		Kind:   problem.KindOptimizeAccumulate,
		Detail: OptimizeAccumulateOption{Chain: append([]string(nil), chain...), PUTag: tag},
	}, nil
}

// OptimizeAccumulateOption names the add/sub chain to collapse and the PU
// tag it is currently bound to.
type OptimizeAccumulateOption struct {
	Chain []string
	PUTag string
}

func (n *Network) sortedRemains() []string {
	ids := make([]string, 0, len(n.remains))
	for id := range n.remains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (n *Network) countAlternatives(f ir.Function, id string) int {
	count := 0
	for _, tag := range n.order {
		if _, err := n.pus[tag].TryBind(f, id); err == nil {
			count++
		}
	}
	return count
}

func (n *Network) waveDepth(id string) int {
	depth, err := n.graph.WaveDepth()
	if err != nil {
		return 0
	}
	return depth[id]
}

// dataflowOptions scans every sub-PU's Source endpoint options and, for
// each transferred variable, every other sub-PU's matching Target option,
// producing one single-variable DataflowOption per (source, var,
// destination) triple, plus a held option when no consumer currently
// wants the variable.
func (n *Network) dataflowOptions(idx *int) []problem.Option {
	var opts []problem.Option
	for _, srcTag := range n.order {
		for _, so := range n.pus[srcTag].EndpointOptions() {
			if so.Role != pu.Source {
				continue
			}
			for _, v := range so.Vars {
				start := n.earliestStart(so.At)
				matched := false
				for _, dstTag := range n.order {
					if dstTag == srcTag {
						continue
					}
					for _, to := range n.pus[dstTag].EndpointOptions() {
						if to.Role != pu.Target || !containsVar(to.Vars, v) {
							continue
						}
						start2 := n.earliestStart(to.At)
						if start2 > start {
							start = start2
						}
						opts = append(opts, problem.Option{
							Kind: problem.KindDataflow, DecisionIndex: *idx,
							Detail:       DataflowOption{Var: v, SrcTag: srcTag, DstTag: dstTag, StartTick: start},
							WaitTime:     start - n.nextTick,
							AvailableOpts: len(so.Vars),
						})
						*idx++
						matched = true
					}
				}
				if !matched {
					opts = append(opts, problem.Option{
						Kind: problem.KindDataflow, DecisionIndex: *idx,
						Detail:   DataflowOption{Var: v, SrcTag: srcTag, Held: true, StartTick: start},
						WaitTime: start - n.nextTick,
					})
					*idx++
				}
			}
		}
	}
	return opts
}

func (n *Network) earliestStart(c value.Constraint) int64 {
	start := n.nextTick
	if c.Available.Inf > start {
		start = c.Available.Inf
	}
	return start
}

func containsVar(vs ir.VarSet, v ir.Var) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}

func (n *Network) breakLoopOptions(idx *int) []problem.Option {
	var opts []problem.Option
	for tag, ids := range n.binded {
		for _, id := range ids {
			f, ok := n.graph.Function(id)
			if !ok || f.Tag() != ir.TagLoop {
				continue
			}
			opts = append(opts, problem.Option{
				Kind: problem.KindBreakLoop, DecisionIndex: *idx,
				Detail: BreakLoopOption{FuncID: id, PUTag: tag},
			})
			*idx++
		}
	}
	return opts
}

// Apply implements problem.Model by dispatching to the decision matching
// o.Kind.
func (n *Network) Apply(o problem.Option) (problem.Model, error) {
	switch o.Kind {
	case problem.KindBind:
		return n.applyBind(o.Detail.(BindOption))
	case problem.KindDataflow:
		return n.applyDataflow(o.Detail.(DataflowOption))
	case problem.KindBreakLoop:
		return n.applyBreakLoop(o.Detail.(BreakLoopOption))
	case problem.KindResolveDeadlock:
		return n.applyResolveDeadlock(o.Detail.(ResolveDeadlockOption))
	case problem.KindOptimizeAccumulate:
		return n.applyOptimizeAccumulate(o.Detail.(OptimizeAccumulateOption))
	default:
		return nil, fmt.Errorf("%w: %s", ErrOptionViolation, o.Kind)
	}
}

func (n *Network) applyBind(o BindOption) (*Network, error) {
	f, ok := n.remains[o.FuncID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, o.FuncID)
	}
	target, ok := n.pus[o.PUTag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPU, o.PUTag)
	}
	np, err := target.TryBind(f, o.FuncID)
	if err != nil {
		return nil, err
	}
	nn := n.clone()
	delete(nn.remains, o.FuncID)
	nn.binded[o.PUTag] = append(nn.binded[o.PUTag], o.FuncID)
	nn.pus[o.PUTag] = np
	nn.proc, _ = nn.proc.AddStep(value.Point(nn.nextTick), process.KindCAD, fmt.Sprintf("bind %s to %s", o.FuncID, o.PUTag), nil)
	return nn, nil
}

func (n *Network) applyDataflow(o DataflowOption) (*Network, error) {
	if o.StartTick < n.nextTick {
		return nil, fmt.Errorf("%w", ErrTimeWrap)
	}
	srcPU, ok := n.pus[o.SrcTag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPU, o.SrcTag)
	}
	nn := n.clone()
	np, err := srcPU.EndpointDecision(pu.EndpointDecision{Role: pu.Source, Vars: ir.VarSet{o.Var}, Start: o.StartTick})
	if err != nil {
		return nil, err
	}
	nn.pus[o.SrcTag] = np

	srcEnd := o.StartTick
	if !o.Held {
		dstPU, ok := nn.pus[o.DstTag]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPU, o.DstTag)
		}
		ndst, err := dstPU.EndpointDecision(pu.EndpointDecision{Role: pu.Target, Vars: ir.VarSet{o.Var}, Start: o.StartTick})
		if err != nil {
			return nil, err
		}
		nn.pus[o.DstTag] = ndst
		nn.proc, _ = nn.proc.AddStep(value.Interval{Inf: o.StartTick, Sup: srcEnd},
			process.KindTransport, fmt.Sprintf("Transport(%s, %s, %s)", o.Var.Name, o.SrcTag, o.DstTag),
			process.TransportPayload{Var: o.Var.Name, SrcTag: o.SrcTag, DstTag: o.DstTag})
	} else {
		nn.proc, _ = nn.proc.AddStep(value.Interval{Inf: o.StartTick, Sup: srcEnd},
			process.KindTransport, fmt.Sprintf("Transport(%s, %s, <held>)", o.Var.Name, o.SrcTag),
			process.TransportPayload{Var: o.Var.Name, SrcTag: o.SrcTag})
	}
	nn.nextTick = o.StartTick + 1
	return nn, nil
}

func (n *Network) applyBreakLoop(o BreakLoopOption) (*Network, error) {
	d, ng, err := ir.BreakLoop(n.graph, o.FuncID)
	if err != nil {
		return nil, err
	}
	fp := "breakloop:" + o.FuncID
	if n.repeated(fp) {
		return nil, fmt.Errorf("%w: %s", ErrRepetitionLimit, o.FuncID)
	}
	nn := n.clone()
	nn.graph = ng
	nn.refactorLog = append(nn.refactorLog, fp)
	nn.binded[o.PUTag] = replaceID(nn.binded[o.PUTag], o.FuncID, o.FuncID+"#begin", o.FuncID+"#end")
	_ = d
	return nn, nil
}

// applyResolveDeadlock inserts, for each locked variable v, a fresh reg
// function v -> v#resolved (§4.E "deadlock refactor") into the graph and
// into the unbound functions. The original consumers of v are not rewired:
// they keep reading v, and no PU binding list is patched.
func (n *Network) applyResolveDeadlock(o ResolveDeadlockOption) (*Network, error) {
	if len(o.Vars) == 0 {
		return nil, fmt.Errorf("%w: empty variable set", ErrOptionViolation)
	}
	ng := n.graph
	nn := n.clone()
	for _, v := range o.Vars {
		nv := ir.NewVar(v.Name + "#resolved")
		reg := ir.NewReg(v, ir.VarSet{nv})
		id := "resolve_deadlock#" + v.Name
		var err error
		ng, err = ng.AddFunction(id, reg)
		if err != nil {
			return nil, err
		}
		nn.remains[id] = reg
	}
	nn.graph = ng
	return nn, nil
}

// applyOptimizeAccumulate collapses o.Chain into a single accumulate
// function (§4.B) and replaces the chain's ids in the PU's binding list
// with the single new id, mirroring applyBreakLoop's substitution.
func (n *Network) applyOptimizeAccumulate(o OptimizeAccumulateOption) (*Network, error) {
	d, ng, err := ir.OptimizeAccumulate(n.graph, o.Chain)
	if err != nil {
		return nil, err
	}
	fp := "optacc:" + o.Chain[0]
	if n.repeated(fp) {
		return nil, fmt.Errorf("%w: %s", ErrRepetitionLimit, o.Chain[0])
	}
	nn := n.clone()
	nn.graph = ng
	nn.refactorLog = append(nn.refactorLog, fp)
	accID := o.Chain[0] + "#acc"
	ids := nn.binded[o.PUTag]
	for _, old := range o.Chain {
		ids = replaceID(ids, old, accID)
	}
	// replaceID above substitutes accID once per chain member; collapse the
	// resulting duplicates down to a single occurrence.
	seen := false
	deduped := ids[:0]
	for _, id := range ids {
		if id == accID {
			if seen {
				continue
			}
			seen = true
		}
		deduped = append(deduped, id)
	}
	nn.binded[o.PUTag] = deduped
	_ = d
	return nn, nil
}

func (n *Network) repeated(fingerprint string) bool {
	const bufferRepetitionLimit = 2
	count := 0
	for _, f := range n.refactorLog {
		if f == fingerprint {
			count++
		}
	}
	return count >= bufferRepetitionLimit
}

func replaceID(ids []string, old string, news ...string) []string {
	out := make([]string, 0, len(ids)+len(news))
	for _, id := range ids {
		if id == old {
			out = append(out, news...)
			continue
		}
		out = append(out, id)
	}
	return out
}

// MicrocodeAt computes the network-wide microcode word at tick t by
// merging every sub-PU's MicrocodeAt, projected through its own port
// namespace (tag-prefixed keys already keep ports disjoint across PUs in
// this engine). A genuine conflict — two PUs claiming the same key with
// different values — is a contract violation (§4.D "Microcode merging").
func (n *Network) MicrocodeAt(t int64) (pu.MicrocodeWord, error) {
	merged := pu.MicrocodeWord{}
	for _, tag := range n.order {
		for k, v := range n.pus[tag].MicrocodeAt(t) {
			if existing, ok := merged[k]; ok && existing.Raw() != v.Raw() {
				return nil, fmt.Errorf("%w: %s at tick %d", ErrMicrocodeConflict, k, t)
			}
			merged[k] = v
		}
	}
	return merged, nil
}

// AggregatedProcess builds the final process of §4.E: every sub-PU's
// process nested under its tag, with transport-to-endpoint and
// function-to-transport vertical relations added.
func (n *Network) AggregatedProcess() *process.Record {
	agg := process.NewRecord()
	idFor := map[string]int{} // "tag#stepID" -> new id
	transportsByVar := map[string][]int{}

	for _, s := range n.proc.Steps() {
		var id int
		agg, id = agg.AddStep(s.Time, s.Kind, s.Desc, s.Payload)
		if s.Kind == process.KindTransport {
			if tp, ok := s.Payload.(process.TransportPayload); ok {
				transportsByVar[tp.Var] = append(transportsByVar[tp.Var], id)
			}
		}
	}

	for _, tag := range n.order {
		for _, s := range n.pus[tag].Process().Steps() {
			var id int
			agg, id = agg.Nest(tag, s.Time, s.Kind, s.Desc, s.Payload)
			idFor[fmt.Sprintf("%s#%d", tag, s.ID)] = id
			if s.Kind == process.KindEndpoint {
				for varName, tids := range transportsByVar {
					if containsDescVar(s.Desc, varName) {
						for _, tid := range tids {
							agg, _ = agg.AddRelation(tid, id)
						}
					}
				}
			}
			if s.Kind == process.KindFunction {
				for _, id2 := range n.graph.Functions() {
					f, _ := n.graph.Function(id2)
					if f.String() != s.Desc {
						continue
					}
					for _, o := range f.Outputs() {
						for _, tid := range transportsByVar[o.Name] {
							agg, _ = agg.AddRelation(tid, id)
						}
					}
				}
			}
		}
	}
	return agg
}

func containsDescVar(desc, varName string) bool {
	// EndpointOption descriptions render as e.g. "Source([c])" or
	// "Target(c)"; a simple substring check is enough to associate an
	// endpoint step with the variable its transport carries.
	return len(varName) > 0 && (contains(desc, "("+varName+")") || contains(desc, " "+varName) || contains(desc, "["+varName+"]"))
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
