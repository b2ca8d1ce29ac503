package pu

import (
	"fmt"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/process"
	"github.com/nitta-corp/nitta/value"
)

// Divider models the pipelined division PU of §4.D: a division started at
// tick s produces its quotient/remainder endpoint no earlier than
// s+depth+latency, and is flagged rotten if that deadline passes without
// the output being taken.
type Divider struct {
	tag       string
	depth     int64
	latency   int64
	deadline  int64 // ticks after which an un-retired division is rotten
	remains   []funcEntry
	current   *funcEntry
	inputsIn  int
	proc      *process.Record
}

// NewDivider constructs a divider named tag with the given pipeline depth,
// latency and rotten-deadline (in ticks past the earliest legal output).
func NewDivider(tag string, depth, latency, deadline int64) *Divider {
	return &Divider{tag: tag, depth: depth, latency: latency, deadline: deadline, proc: process.NewRecord()}
}

func (p *Divider) Tag() string { return p.tag }

func (p *Divider) clone() *Divider {
	np := &Divider{tag: p.tag, depth: p.depth, latency: p.latency, deadline: p.deadline,
		remains: append([]funcEntry(nil), p.remains...), inputsIn: p.inputsIn, proc: p.proc}
	if p.current != nil {
		cur := *p.current
		np.current = &cur
	}
	return np
}

func (p *Divider) TryBind(f ir.Function, id string) (PU, error) {
	if f.Tag() != ir.TagDiv {
		return nil, fmt.Errorf("%w: divider only hosts div", ErrBindRejected)
	}
	np := p.clone()
	np.remains = append(np.remains, funcEntry{id: id, fn: f})
	return np, nil
}

// earliestOutput is the first tick at which a division started at s may
// legally produce its endpoint.
func (p *Divider) earliestOutput(s int64) int64 { return s + p.depth + p.latency }

func (p *Divider) EndpointOptions() []EndpointOption {
	cur := p.current
	if cur == nil {
		if len(p.remains) == 0 {
			return nil
		}
		head := p.remains[0]
		cur = &head
	}
	ins := cur.fn.Inputs()
	if p.inputsIn < len(ins) {
		return []EndpointOption{{Role: Target, Vars: ir.VarSet{ins[p.inputsIn]},
			At: value.Constraint{Available: value.Unbounded(p.proc.Tick() + 1), Duration: value.Point(1)}}}
	}
	earliest := p.earliestOutput(cur.startTick)
	return []EndpointOption{{Role: Source, Vars: cur.fn.Outputs(),
		At: value.Constraint{Available: value.Unbounded(earliest), Duration: value.Point(1)}}}
}

func (p *Divider) EndpointDecision(d EndpointDecision) (PU, error) {
	np := p.clone()
	if np.current == nil {
		if len(np.remains) == 0 {
			return nil, fmt.Errorf("%w", ErrOptionViolation)
		}
		head := np.remains[0]
		head.startTick = d.Start
		np.current = &head
		np.remains = np.remains[1:]
		np.inputsIn = 0
	}
	at := value.Point(d.Start)
	switch d.Role {
	case Target:
		np.proc, _ = np.proc.AddStep(at, process.KindEndpoint, fmt.Sprintf("Target(%s)", d.Vars[0].Name), nil)
		np.inputsIn++
	case Source:
		earliest := np.earliestOutput(np.current.startTick)
		if d.Start < earliest {
			return nil, fmt.Errorf("%w", ErrOptionViolation)
		}
		if d.Start > earliest+np.deadline {
			return nil, fmt.Errorf("%w", ErrRotten)
		}
		np.proc, _ = np.proc.AddStep(at, process.KindEndpoint, fmt.Sprintf("Source(%v)", d.Vars), nil)
		np.proc, _ = np.proc.AddStep(value.Interval{Inf: np.current.startTick, Sup: d.Start}, process.KindFunction, np.current.fn.String(), nil)
		np.current = nil
		np.inputsIn = 0
	}
	return np, nil
}

func (p *Divider) Process() *process.Record { return p.proc }

func (p *Divider) MicrocodeAt(t int64) MicrocodeWord {
	w := MicrocodeWord{}
	busy := int64(0)
	if p.current != nil {
		busy = 1
	}
	w[p.tag+".busy"] = value.NewInt(1, false, busy)
	return w
}

func (p *Divider) Locks() []ir.Lock {
	// A division in flight locks its output behind the inputs that fed it,
	// per Function.MayCauseInternalLock: the pipeline enforces that the
	// quotient cannot be read before the dividend/divisor are both in.
	if p.current == nil || p.inputsIn >= len(p.current.fn.Inputs()) {
		return nil
	}
	outs := p.current.fn.Outputs()
	ins := p.current.fn.Inputs()
	if len(outs) == 0 || len(ins) == 0 {
		return nil
	}
	return []ir.Lock{{LockedVar: outs[0], LockBy: ins[len(ins)-1]}}
}
