package pu

import (
	"fmt"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/process"
	"github.com/nitta-corp/nitta/value"
)

// SyncMode is one of the three IO synchronization modes of §6.
type SyncMode uint8

const (
	Sync SyncMode = iota
	Async
	OnBoard
)

// SPI is the half-duplex ring-buffer PU of §4.D: send/receive functions
// bind to it and their endpoints are scheduled in ring order.
type SPI struct {
	tag     string
	mode    SyncMode
	ring    int // ring buffer capacity
	pos     int
	remains []funcEntry
	proc    *process.Record
}

// NewSPI constructs an SPI PU named tag with the given ring buffer
// capacity and synchronization mode.
func NewSPI(tag string, ring int, mode SyncMode) *SPI {
	return &SPI{tag: tag, mode: mode, ring: ring, proc: process.NewRecord()}
}

func (p *SPI) Tag() string { return p.tag }

func (p *SPI) clone() *SPI {
	return &SPI{tag: p.tag, mode: p.mode, ring: p.ring, pos: p.pos,
		remains: append([]funcEntry(nil), p.remains...), proc: p.proc}
}

func (p *SPI) TryBind(f ir.Function, id string) (PU, error) {
	if f.Tag() != ir.TagSend && f.Tag() != ir.TagReceive {
		return nil, fmt.Errorf("%w: SPI only hosts send/receive", ErrBindRejected)
	}
	np := p.clone()
	np.remains = append(np.remains, funcEntry{id: id, fn: f})
	return np, nil
}

// EndpointOptions offers the next ring-order function's single endpoint:
// Target for a send's input, Source for a receive's output. In Sync mode
// the option's availability gates on the ready flag represented by the
// PU's own next tick; Async/OnBoard widen the window to admit drops.
func (p *SPI) EndpointOptions() []EndpointOption {
	if len(p.remains) == 0 {
		return nil
	}
	head := p.remains[0]
	from := p.proc.Tick() + 1
	if p.mode != Sync {
		from = 0
	}
	if head.fn.Tag() == ir.TagSend {
		return []EndpointOption{{Role: Target, Vars: head.fn.Inputs(), At: value.Constraint{Available: value.Unbounded(from), Duration: value.Point(1)}}}
	}
	return []EndpointOption{{Role: Source, Vars: head.fn.Outputs(), At: value.Constraint{Available: value.Unbounded(from), Duration: value.Point(1)}}}
}

func (p *SPI) EndpointDecision(d EndpointDecision) (PU, error) {
	if len(p.remains) == 0 {
		return nil, fmt.Errorf("%w", ErrOptionViolation)
	}
	np := p.clone()
	head := np.remains[0]
	np.remains = np.remains[1:]
	np.pos = (np.pos + 1) % maxInt(np.ring, 1)
	at := value.Point(d.Start)
	np.proc, _ = np.proc.AddStep(at, process.KindEndpoint, fmt.Sprintf("%s(%v)", d.Role, d.Vars), nil)
	np.proc, _ = np.proc.AddStep(at, process.KindFunction, head.fn.String(), nil)
	return np, nil
}

func (p *SPI) Process() *process.Record { return p.proc }

func (p *SPI) MicrocodeAt(t int64) MicrocodeWord {
	w := MicrocodeWord{}
	w[p.tag+".ring_pos"] = value.NewInt(16, false, int64(p.pos))
	return w
}

func (p *SPI) Locks() []ir.Lock { return nil }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
