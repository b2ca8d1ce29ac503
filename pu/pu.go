package pu

import (
	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/process"
	"github.com/nitta-corp/nitta/value"
)

// Role distinguishes the two endpoint directions a PU offers: Target (the
// PU consumes a value arriving over the bus) and Source (the PU broadcasts
// a value it holds).
type Role uint8

const (
	Target Role = iota
	Source
)

func (r Role) String() string {
	if r == Source {
		return "Source"
	}
	return "Target"
}

// MicrocodeWord is the control-signal bundle effective at a tick, indexed
// by port name. A PU's defined no-op word has every port at its zero value.
type MicrocodeWord map[string]value.Value

// EndpointOption is one Target/Source role a PU currently offers, together
// with the variables it concerns and the time window within which the
// corresponding decision may be committed.
type EndpointOption struct {
	Role Role
	Vars ir.VarSet
	At   value.Constraint
}

// EndpointDecision commits one EndpointOption: Start is the tick at which
// the endpoint begins; the PU computes the covering interval from its own
// per-function duration model.
type EndpointDecision struct {
	Role  Role
	Vars  ir.VarSet
	Start int64
}

// PU is the uniform contract every processing unit satisfies (§4.D).
// TryBind and EndpointDecision return a new PU snapshot (never mutating
// the receiver) paired with an error, mirroring ir.Graph's clone-on-write
// discipline.
type PU interface {
	Tag() string
	TryBind(f ir.Function, id string) (PU, error)
	EndpointOptions() []EndpointOption
	EndpointDecision(d EndpointDecision) (PU, error)
	Process() *process.Record
	MicrocodeAt(t int64) MicrocodeWord
	Locks() []ir.Lock
}
