// Package nitta is a CAD synthesis engine for data-flow algorithms onto
// heterogeneous processing-unit networks.
//
// An algorithm is expressed as an intermediate representation of pure
// functions over named variables (package ir). The engine explores, via
// branch-and-bound tree search (package synth), the space of legal PU
// bindings and dataflow transfers (packages pu, bus, problem) that realize
// the algorithm's dependency graph on a target microarchitecture, subject
// to timing constraints over the fixed-point/integer value algebra (package
// value) and the process history of each candidate (package process).
//
// Subpackages:
//
//	value/    — fixed-point and integer arithmetic, tagged clocks, intervals
//	ir/       — algorithm intermediate representation, refactors, simulator
//	process/  — immutable per-node scheduling history
//	pu/       — processing unit models (Fram, Accumulator, Multiplier, Divider, SPI)
//	bus/      — the PU network: binding, dataflow and deadlock-resolution decisions
//	problem/  — the uniform option/decision surface the search explores
//	synth/    — the branch-and-bound synthesis driver and its policies
//	internal/obslog    — structured logging facade used throughout
//	internal/scenarios — golden algorithm fixtures exercised by every policy
//	cmd/nitta — the command-line synthesis driver
//
//	go get github.com/nitta-corp/nitta
package nitta
