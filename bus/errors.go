// Package bus implements the bus network of §4.E: the container PU that
// hosts sub-PUs, owns the shared bus timeline, enumerates binding and
// dataflow options across them, applies the corresponding decisions, and
// aggregates every sub-PU's process into the final schedule.
package bus

import "errors"

var (
	ErrUnknownFunction = errors.New("bus: unknown function id")
	ErrUnknownPU       = errors.New("bus: unknown pu tag")
	ErrNoPUAccepts     = errors.New("bus: no pu admits this function")
	ErrTimeWrap        = errors.New("bus: decision starts before network.next_tick")
	ErrOptionViolation = errors.New("bus: decision does not match any offered option")
	ErrRepetitionLimit = errors.New("bus: refactor exceeds buffer-repetition limit")
	ErrMicrocodeConflict = errors.New("bus: conflicting microcode signal values at tick")
	// ErrNotAccumulateChain is returned by TryOptimizeAccumulate when the
	// named functions are not all currently bound to the same PU.
	ErrNotAccumulateChain = errors.New("bus: chain functions are not co-located")
)
