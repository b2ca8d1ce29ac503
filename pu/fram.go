package pu

import (
	"fmt"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/process"
	"github.com/nitta-corp/nitta/value"
)

type slotState uint8

const (
	slotFree slotState = iota
	slotReserved
	slotBlocked
)

type cell struct {
	addr      int64
	input     slotState
	current   slotState
	output    slotState
	initial   value.Value
	hasInit   bool
	lastWrite int64
}

// binding records which function currently occupies a cell slot and which
// endpoint roles it still owes, in commitment order.
type binding struct {
	funcID string
	fn     ir.Function
	cell   int
	slot   string // "input", "current" or "output"
	owed   []Role
}

// Fram is the framed-memory PU of §4.D: a fixed array of cells, each with
// input/current/output reservation slots.
type Fram struct {
	tag      string
	width    int
	cells    []cell
	bindings map[string]*binding
	proc     *process.Record
}

// NewFram constructs an n-cell Fram PU named tag, each cell holding
// values of the given bit width.
func NewFram(tag string, n, width int) *Fram {
	cells := make([]cell, n)
	for i := range cells {
		cells[i] = cell{addr: int64(i)}
	}
	return &Fram{tag: tag, width: width, cells: cells, bindings: map[string]*binding{}, proc: process.NewRecord()}
}

func (p *Fram) Tag() string { return p.tag }

func (p *Fram) clone() *Fram {
	np := &Fram{
		tag:      p.tag,
		width:    p.width,
		cells:    append([]cell(nil), p.cells...),
		bindings: make(map[string]*binding, len(p.bindings)),
		proc:     p.proc,
	}
	for k, v := range p.bindings {
		b := *v
		b.owed = append([]Role(nil), v.owed...)
		np.bindings[k] = &b
	}
	return np
}

// TryBind admits framInput, framOutput, reg, loop and constant functions
// per §4.D's concrete Fram rules.
func (p *Fram) TryBind(f ir.Function, id string) (PU, error) {
	np := p.clone()
	switch f.Tag() {
	case ir.TagFramInput:
		lit, _ := f.Literal()
		addr := int(lit.Int64())
		if addr < 0 || addr >= len(np.cells) || np.cells[addr].input != slotFree {
			return nil, fmt.Errorf("%w: framInput cell %d unavailable", ErrBindRejected, addr)
		}
		np.cells[addr].input = slotReserved
		np.bindings[id] = &binding{funcID: id, fn: f, cell: addr, slot: "input", owed: []Role{Source}}

	case ir.TagFramOutput:
		lit, _ := f.Literal()
		addr := int(lit.Int64())
		if addr < 0 || addr >= len(np.cells) || np.cells[addr].output != slotFree {
			return nil, fmt.Errorf("%w: framOutput cell %d unavailable", ErrBindRejected, addr)
		}
		np.cells[addr].output = slotReserved
		np.bindings[id] = &binding{funcID: id, fn: f, cell: addr, slot: "output", owed: []Role{Target}}

	case ir.TagReg:
		addr, ok := np.firstFreeRegCell()
		if !ok {
			return nil, fmt.Errorf("%w: no cell free for reg", ErrNoFreeCell)
		}
		np.cells[addr].current = slotReserved
		np.bindings[id] = &binding{funcID: id, fn: f, cell: addr, slot: "current", owed: []Role{Target, Source}}

	case ir.TagLoop:
		addr, ok := np.firstFreeLoopCell()
		if !ok {
			return nil, fmt.Errorf("%w: no cell free for loop", ErrNoFreeCell)
		}
		x0, _ := f.Literal()
		np.cells[addr].input = slotReserved
		np.cells[addr].output = slotReserved
		np.cells[addr].initial = x0
		np.cells[addr].hasInit = true
		np.bindings[id] = &binding{funcID: id, fn: f, cell: addr, slot: "input", owed: []Role{Source, Target}}

	case ir.TagConstant:
		addr, ok := np.firstFullyFreeCell()
		if !ok {
			return nil, fmt.Errorf("%w: no fully free cell for constant", ErrNoFreeCell)
		}
		x, _ := f.Literal()
		np.cells[addr].initial = x
		np.cells[addr].hasInit = true
		np.cells[addr].input = slotBlocked
		np.cells[addr].output = slotBlocked
		np.bindings[id] = &binding{funcID: id, fn: f, cell: addr, slot: "input", owed: []Role{Source}}

	default:
		return nil, fmt.Errorf("%w: fram does not host %s", ErrBindRejected, f.Tag())
	}
	return np, nil
}

func (p *Fram) firstFreeRegCell() (int, bool) {
	for i, c := range p.cells {
		if c.current == slotFree && c.output != slotBlocked {
			return i, true
		}
	}
	return 0, false
}

func (p *Fram) firstFreeLoopCell() (int, bool) {
	for i, c := range p.cells {
		if c.input == slotFree && c.output == slotFree {
			return i, true
		}
	}
	return 0, false
}

func (p *Fram) firstFullyFreeCell() (int, bool) {
	for i, c := range p.cells {
		if c.input == slotFree && c.output == slotFree && c.current == slotFree {
			return i, true
		}
	}
	return 0, false
}

// EndpointOptions offers, for every pending binding, its next owed role
// over an unbounded-from-now time window; the bus network's dataflow
// scoring narrows the actual start.
func (p *Fram) EndpointOptions() []EndpointOption {
	var out []EndpointOption
	for _, b := range p.bindings {
		if len(b.owed) == 0 {
			continue
		}
		role := b.owed[0]
		vs := b.fn.Outputs()
		if role == Target {
			vs = b.fn.Inputs()
		}
		out = append(out, EndpointOption{Role: role, Vars: vs, At: value.Constraint{
			Available: value.Unbounded(p.proc.Tick() + 1),
			Duration:  value.Point(1),
		}})
	}
	return out
}

// EndpointDecision commits the next owed role of whichever binding offers
// d's variables, emitting a Load/Save instruction step and, once every
// owed role is discharged, a covering Function step.
func (p *Fram) EndpointDecision(d EndpointDecision) (PU, error) {
	np := p.clone()
	var b *binding
	for _, cand := range np.bindings {
		if len(cand.owed) > 0 && cand.owed[0] == d.Role && sameVars(cand, d) {
			b = cand
			break
		}
	}
	if b == nil {
		return nil, fmt.Errorf("%w", ErrOptionViolation)
	}
	at := value.Point(d.Start)
	if d.Role == Source {
		np.cells[b.cell].lastWrite = 0
		np.proc, _ = np.proc.AddStep(at, process.KindInstruction, fmt.Sprintf("Load(%d)", b.cell), nil)
	} else {
		np.cells[b.cell].lastWrite = d.Start
		np.proc, _ = np.proc.AddStep(at, process.KindInstruction, fmt.Sprintf("Save(%d)", b.cell), nil)
	}
	np.proc, _ = np.proc.AddStep(at, process.KindEndpoint, fmt.Sprintf("%s(%v)", d.Role, d.Vars), nil)
	b.owed = b.owed[1:]
	if len(b.owed) == 0 {
		np.proc, _ = np.proc.AddStep(at, process.KindFunction, b.fn.String(), nil)
	}
	return np, nil
}

func sameVars(b *binding, d EndpointDecision) bool {
	vs := b.fn.Outputs()
	if d.Role == Target {
		vs = b.fn.Inputs()
	}
	if len(vs) == 0 || len(d.Vars) == 0 {
		return false
	}
	for _, v := range d.Vars {
		if !vs.Contains(v) {
			return false
		}
	}
	return true
}

func (p *Fram) Process() *process.Record { return p.proc }

func (p *Fram) MicrocodeAt(t int64) MicrocodeWord {
	w := MicrocodeWord{}
	for _, s := range p.proc.InstructionAt(t) {
		w[p.tag+".instr"] = value.NewInt(8, false, int64(len(s.Desc)))
	}
	return w
}

func (p *Fram) Locks() []ir.Lock { return nil }
