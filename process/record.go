package process

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nitta-corp/nitta/value"
)

// Kind enumerates the step kinds named throughout §3/§4: CAD decisions,
// endpoint roles, instructions, covering Function steps and bus Transport
// steps. The set is open-ended in practice (callers may record any string)
// but these constants name the ones the spec itself calls out.
type Kind string

const (
	KindCAD         Kind = "CAD"
	KindEndpoint    Kind = "Endpoint"
	KindInstruction Kind = "Instruction"
	KindFunction    Kind = "Function"
	KindTransport   Kind = "Transport"
)

// Step is one entry of a process record: a time interval, a kind, a
// human-readable description and an optional structured payload (e.g. the
// transported variable and PU tags, for Transport steps).
type Step struct {
	ID      int
	Time    value.Interval
	Kind    Kind
	Desc    string
	Payload any
}

// Relation is a vertical "high depends on / covers low" edge between two
// step ids, per §4.C's add_relation and the bus network's aggregation
// rules (§4.E).
type Relation struct {
	High int
	Low  int
}

// TransportPayload is the Payload of a KindTransport step.
type TransportPayload struct {
	Var     string
	SrcTag  string
	DstTag  string
}

// Record is an immutable scheduling history: the append-only witness of
// every step a PU or the bus network has committed. Every mutator returns
// a new Record sharing no mutable state with its receiver.
type Record struct {
	steps     []Step
	relations []Relation
	tick      int64
	nextID    int
}

// NewRecord returns an empty process record with tick initialized to -1
// (the reset no-op tick named in §6 "Microcode dump").
func NewRecord() *Record {
	return &Record{tick: -1}
}

func (r *Record) clone() *Record {
	return &Record{
		steps:     append([]Step(nil), r.steps...),
		relations: append([]Relation(nil), r.relations...),
		tick:      r.tick,
		nextID:    r.nextID,
	}
}

// AddStep appends a step at the given time interval with the given kind,
// description and payload, returning the new record and the assigned id.
func (r *Record) AddStep(t value.Interval, kind Kind, desc string, payload any) (*Record, int) {
	nr := r.clone()
	id := nr.nextID
	nr.nextID++
	nr.steps = append(nr.steps, Step{ID: id, Time: t, Kind: kind, Desc: desc, Payload: payload})
	return nr, id
}

// AddRelation records that step highID depends on / covers step lowID.
// Returns ErrUnknownStep if either id was never assigned.
func (r *Record) AddRelation(highID, lowID int) (*Record, error) {
	if !r.hasStep(highID) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, highID)
	}
	if !r.hasStep(lowID) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, lowID)
	}
	nr := r.clone()
	nr.relations = append(nr.relations, Relation{High: highID, Low: lowID})
	return nr, nil
}

// UpdateTick advances the record's current tick. Returns ErrNonMonotoneTick
// if t is less than the current tick (§8 property 3).
func (r *Record) UpdateTick(t int64) (*Record, error) {
	if t < r.tick {
		return nil, fmt.Errorf("%w: %d < %d", ErrNonMonotoneTick, t, r.tick)
	}
	nr := r.clone()
	nr.tick = t
	return nr, nil
}

// Nest records a vertical relation from a freshly added inner step to the
// most recent step tagged with puTag's namespace, per §4.C's nest
// operation; it returns the id of the newly added inner step. Since a bare
// Record has no notion of "this PU's step namespace" on its own, nest here
// simply adds the inner step and, when a prior step already carries the
// same puTag in its Desc prefix, relates the new step under it — the bus
// network's aggregation pass (bus.Network.AggregatedProcess) performs the
// richer nesting described in §4.E using this primitive.
func (r *Record) Nest(puTag string, t value.Interval, kind Kind, desc string, payload any) (*Record, int) {
	nr, id := r.AddStep(t, kind, puTag+": "+desc, payload)
	prefix := puTag + ": "
	for i := len(r.steps) - 1; i >= 0; i-- {
		if strings.HasPrefix(r.steps[i].Desc, prefix) {
			nr.relations = append(nr.relations, Relation{High: r.steps[i].ID, Low: id})
			break
		}
	}
	return nr, id
}

// Tick returns the record's current tick.
func (r *Record) Tick() int64 { return r.tick }

// Steps returns every step in insertion order.
func (r *Record) Steps() []Step { return append([]Step(nil), r.steps...) }

// Relations returns every relation in insertion order.
func (r *Record) Relations() []Relation { return append([]Relation(nil), r.relations...) }

func (r *Record) hasStep(id int) bool {
	for _, s := range r.steps {
		if s.ID == id {
			return true
		}
	}
	return false
}

// WhatHappensAt returns every step whose time interval contains tick t.
func (r *Record) WhatHappensAt(t int64) []Step {
	var out []Step
	for _, s := range r.steps {
		if s.Time.Contains(t) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InstructionAt returns the instruction steps active at tick t.
func (r *Record) InstructionAt(t int64) []Step {
	return filterKindAt(r.WhatHappensAt(t), KindInstruction)
}

// EndpointAt returns the endpoint steps active at tick t.
func (r *Record) EndpointAt(t int64) []Step {
	return filterKindAt(r.WhatHappensAt(t), KindEndpoint)
}

func filterKindAt(steps []Step, kind Kind) []Step {
	var out []Step
	for _, s := range steps {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// TransferredVariables returns every variable named by a Transport step's
// payload, in step-id order, deduplicated.
func (r *Record) TransferredVariables() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range r.steps {
		if s.Kind != KindTransport {
			continue
		}
		tp, ok := s.Payload.(TransportPayload)
		if !ok {
			continue
		}
		if !seen[tp.Var] {
			seen[tp.Var] = true
			out = append(out, tp.Var)
		}
	}
	return out
}
