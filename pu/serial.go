package pu

import (
	"fmt"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/process"
	"github.com/nitta-corp/nitta/value"
)

// SerialPU is the generic "at most one function in flight" engine of
// §4.D backing Accumulator, Multiplier and Shift: on bind the function
// enters remains; on first endpoint it becomes current and accumulates
// its inputs in declared order; on the last endpoint it retires as a
// covering Function step over [startTick, lastEndpointTick].
type SerialPU struct {
	tag       string
	accepts   ir.Tag
	remains   []funcEntry
	current   *funcEntry
	completed int
	proc      *process.Record
}

type funcEntry struct {
	id        string
	fn        ir.Function
	nextInput int
	startTick int64
}

// NewSerialPU constructs a serial engine named tag that only admits
// functions tagged accepts (ir.TagAdd/TagSub for an accumulator,
// ir.TagMul for a multiplier, ir.TagShiftL/TagShiftR for a shifter).
func NewSerialPU(tag string, accepts ir.Tag) *SerialPU {
	return &SerialPU{tag: tag, accepts: accepts, proc: process.NewRecord()}
}

func (p *SerialPU) Tag() string { return p.tag }

func (p *SerialPU) clone() *SerialPU {
	np := &SerialPU{
		tag:       p.tag,
		accepts:   p.accepts,
		remains:   append([]funcEntry(nil), p.remains...),
		completed: p.completed,
		proc:      p.proc,
	}
	if p.current != nil {
		cur := *p.current
		np.current = &cur
	}
	return np
}

func (p *SerialPU) TryBind(f ir.Function, id string) (PU, error) {
	if f.Tag() != p.accepts {
		return nil, fmt.Errorf("%w: %s does not host %s", ErrBindRejected, p.tag, f.Tag())
	}
	np := p.clone()
	np.remains = append(np.remains, funcEntry{id: id, fn: f})
	return np, nil
}

// EndpointOptions offers a Target for the next unconsumed input of the
// function currently in flight (or, when none is, of the head of remains,
// which EndpointDecision then promotes to current), then a Source for its
// outputs once every input is in.
func (p *SerialPU) EndpointOptions() []EndpointOption {
	cur := p.current
	if cur == nil {
		if len(p.remains) == 0 {
			return nil
		}
		head := p.remains[0]
		cur = &head
	}
	ins := cur.fn.Inputs()
	if cur.nextInput < len(ins) {
		return []EndpointOption{{
			Role: Target,
			Vars: ir.VarSet{ins[cur.nextInput]},
			At:   value.Constraint{Available: value.Unbounded(p.proc.Tick() + 1), Duration: value.Point(1)},
		}}
	}
	return []EndpointOption{{
		Role: Source,
		Vars: cur.fn.Outputs(),
		At:   value.Constraint{Available: value.Unbounded(p.proc.Tick() + 1), Duration: value.Point(1)},
	}}
}

func (p *SerialPU) EndpointDecision(d EndpointDecision) (PU, error) {
	np := p.clone()
	if np.current == nil {
		if len(np.remains) == 0 {
			return nil, fmt.Errorf("%w", ErrOptionViolation)
		}
		head := np.remains[0]
		head.startTick = d.Start
		np.current = &head
		np.remains = np.remains[1:]
	}
	at := value.Point(d.Start)
	switch d.Role {
	case Target:
		ins := np.current.fn.Inputs()
		if np.current.nextInput >= len(ins) || ins[np.current.nextInput] != d.Vars[0] {
			return nil, fmt.Errorf("%w", ErrOptionViolation)
		}
		np.proc, _ = np.proc.AddStep(at, process.KindEndpoint, fmt.Sprintf("Target(%s)", d.Vars[0].Name), nil)
		np.current.nextInput++
	case Source:
		if np.current.nextInput < len(np.current.fn.Inputs()) {
			return nil, fmt.Errorf("%w", ErrOptionViolation)
		}
		np.proc, _ = np.proc.AddStep(at, process.KindEndpoint, fmt.Sprintf("Source(%v)", d.Vars), nil)
		np.proc, _ = np.proc.AddStep(value.Interval{Inf: np.current.startTick, Sup: d.Start}, process.KindFunction, np.current.fn.String(), nil)
		np.completed++
		np.current = nil
	}
	return np, nil
}

func (p *SerialPU) Process() *process.Record { return p.proc }

func (p *SerialPU) MicrocodeAt(t int64) MicrocodeWord {
	w := MicrocodeWord{}
	busy := 0
	if len(p.proc.InstructionAt(t)) > 0 || len(p.proc.EndpointAt(t)) > 0 {
		busy = 1
	}
	w[p.tag+".busy"] = value.NewInt(1, false, int64(busy))
	return w
}

func (p *SerialPU) Locks() []ir.Lock { return nil }
