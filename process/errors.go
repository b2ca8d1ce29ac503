// Package process implements the scheduling history record of §4.C: an
// append-only, immutable DAG of steps and relations that is the sole
// witness of what a PU (or the bus network) decided to do and when. Every
// mutating operation returns a new Record, following the same
// clone-before-mutate discipline as core.Graph.Clone (§9 "Immutability +
// structural sharing").
package process

import "errors"

var (
	// ErrUnknownStep is returned by a query or relation referencing a step
	// id the record never assigned.
	ErrUnknownStep = errors.New("process: unknown step id")
	// ErrNonMonotoneTick is returned by UpdateTick when t precedes the
	// record's current tick (§8 property 3, "monotone time").
	ErrNonMonotoneTick = errors.New("process: tick is not monotone")
)
