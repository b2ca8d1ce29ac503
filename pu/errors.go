// Package pu implements the processing-unit abstraction of §4.D: the
// uniform contract every PU satisfies (TryBind, EndpointOptions,
// EndpointDecision, Process, MicrocodeAt, Locks) plus the concrete PU
// models the spec calls out by name (Fram, a generic serial engine backing
// Accumulator/Multiplier/Shift, Divider, SPI).
package pu

import "errors"

var (
	// ErrBindRejected is returned by TryBind when the function cannot be
	// admitted by this PU (§7 "Bind-rejection").
	ErrBindRejected = errors.New("pu: bind rejected")
	// ErrOptionViolation is returned by EndpointDecision when the decision
	// does not lie within any currently offered option (§7 "Option-violation").
	ErrOptionViolation = errors.New("pu: decision not within any offered option")
	// ErrTimeWrap names §7's "Time-wrap" at PU level. No PU in this package
	// returns it; a transfer starting before the network's next tick is
	// reported by bus.ErrTimeWrap from the bus network.
	ErrTimeWrap = errors.New("pu: decision starts before next tick")
	ErrCellBusy = errors.New("pu: fram cell slot already reserved")
	ErrNoFreeCell = errors.New("pu: no admissible fram cell")
	ErrRotten    = errors.New("pu: divider deadline exceeded")
)
