// Package ir implements the intermediate representation of §4.B: functions,
// variables, the dataflow graph that connects them, the refactorings that
// rewrite it (break-loop, optimize-accumulate), and the functional simulator
// that gives every function its pure cycle-by-cycle meaning.
package ir

import "errors"

// ErrUnknownFunction indicates an operation referenced a Var or Function not
// present in the Graph.
var ErrUnknownFunction = errors.New("ir: unknown function")

// ErrDuplicateProducer indicates a variable would gain a second producing
// function, violating §3 "exactly one producing function".
var ErrDuplicateProducer = errors.New("ir: variable already has a producer")

// ErrNoProducer indicates a variable is consumed but never produced by any
// function and is not declared as an algorithm input.
var ErrNoProducer = errors.New("ir: variable has no producer")

// ErrCycleDetected indicates the instantaneous (non-loop) dependency graph
// contains a cycle, which would deadlock the functional simulator.
var ErrCycleDetected = errors.New("ir: instantaneous dependency cycle")

// ErrNotALoop indicates BreakLoop was asked to split a function that is not
// tagged Loop.
var ErrNotALoop = errors.New("ir: not a loop function")

// ErrAccumulateChainInvalid indicates OptimizeAccumulate was given a set of
// functions that do not form a connected, single-consumer add/sub chain.
var ErrAccumulateChainInvalid = errors.New("ir: invalid accumulate chain")

// ErrSimulationFailure indicates the functional simulator could not produce
// a value for some variable on some cycle (§7 "Simulation-failure").
var ErrSimulationFailure = errors.New("ir: simulation failure")

// ErrEmptyQueue indicates a receive function was simulated against an empty
// external channel with drop-on-empty disabled.
var ErrEmptyQueue = errors.New("ir: receive on empty channel")
