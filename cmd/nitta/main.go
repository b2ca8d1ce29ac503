// Command nitta drives the synthesis engine over one of the built-in
// golden scenarios (§8) and reports the resulting schedule, per the CLI
// surface of §6: `nitta <scenario> --type=<int|fxM.N> [--fsim] [--lsim]
// [-n=CYCLES] [--io-sync=sync|async|onboard] [-v]`.
//
// There is no algorithm front-end in this repository (§6: "the front-end
// produces this representation; the engine consumes it opaquely"), so
// <scenario> names one of the internal/scenarios fixtures (s1, s2, s3, s5,
// s6) rather than a path to a serialized algorithm file.
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/nitta-corp/nitta/bus"
	"github.com/nitta-corp/nitta/internal/obslog"
	"github.com/nitta-corp/nitta/internal/scenarios"
	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/process"
	"github.com/nitta-corp/nitta/pu"
	"github.com/nitta-corp/nitta/synth"
	"github.com/nitta-corp/nitta/value"
)

// ioSyncFlag adapts pu.SyncMode to flag.Value, giving --io-sync the typed
// enum treatment SPEC_FULL.md calls for (sync|async|onboard).
type ioSyncFlag struct{ mode *pu.SyncMode }

func (f ioSyncFlag) String() string {
	if f.mode == nil {
		return "sync"
	}
	switch *f.mode {
	case pu.Async:
		return "async"
	case pu.OnBoard:
		return "onboard"
	default:
		return "sync"
	}
}

func (f ioSyncFlag) Set(s string) error {
	switch strings.ToLower(s) {
	case "sync", "":
		*f.mode = pu.Sync
	case "async":
		*f.mode = pu.Async
	case "onboard":
		*f.mode = pu.OnBoard
	default:
		return fmt.Errorf("unknown --io-sync mode %q", s)
	}
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("nitta", flag.ContinueOnError)
	typeFlag := fs.String("type", "int", "value type: int or fxM.N")
	fsim := fs.Bool("fsim", false, "print a functional trace before synthesizing")
	lsim := fs.Bool("lsim", false, "print the logical (scheduled) trace after synthesizing")
	cycles := fs.Int("n", 5, "number of simulated cycles")
	verbose := fs.Bool("v", false, "verbose structured logging to stderr")
	policyName := fs.String("policy", "bounded-all-threads", "greedy, obvious-binding or bounded-all-threads")
	var ioSync pu.SyncMode
	fs.Var(ioSyncFlag{&ioSync}, "io-sync", "sync, async or onboard")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fatalf("usage: nitta <scenario> [flags]")
	}
	_ = *typeFlag // value-type selection only affects the front-end, out of scope here (§6)

	var log *obslog.Logger
	if *verbose {
		log = obslog.Default()
	}

	sc, err := buildScenario(fs.Arg(0), ioSync)
	if err != nil {
		fatalf("%s", err)
	}

	if *fsim {
		printFunctionalTrace(sc, *cycles)
	}
	if sc.Network == nil {
		return 0
	}

	p, err := selectPolicy(*policyName)
	if err != nil {
		fatalf("%s", err)
	}

	start := synth.Root(sc.Network)
	res, err := p.Run(start, time.Time{}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "synthesis did not complete: %s\n", err)
		return 1
	}

	final := res.Node.Model.(*bus.Network)
	printSchedule(final.AggregatedProcess())
	printMicrocodeDump(final)

	if *lsim {
		printTestbenchVectors(final)
	}

	return 0
}

func selectPolicy(name string) (synth.Policy, error) {
	switch name {
	case "greedy":
		return synth.Greedy{}, nil
	case "obvious-binding":
		return synth.ObviousBinding{}, nil
	case "bounded-all-threads", "":
		return synth.BoundedAllThreads{}, nil
	default:
		return nil, fmt.Errorf("unknown --policy %q", name)
	}
}

// scenario bundles the pieces buildScenario resolves for a named fixture:
// the dataflow graph fsim simulates directly, the bound network synth
// drives (nil for S3, which §8 only exercises functionally), and the
// variables worth printing in a functional trace.
type scenario struct {
	Graph     *ir.Graph
	Network   *bus.Network
	TraceVars ir.VarSet
}

// buildScenario resolves a built-in golden scenario name (§8) to its
// dataflow graph, bound network and trace variables. The io-sync mode is
// currently fixed per scenario at construction (tracked as an open
// question in DESIGN.md); ioSync is accepted for forward compatibility
// with a microarchitecture declaration that varies it per invocation.
func buildScenario(name string, _ pu.SyncMode) (scenario, error) {
	switch name {
	case "s1":
		return scenario{Graph: scenarios.Fibonacci(), Network: scenarios.FibonacciNetwork(), TraceVars: ir.VarSet{ir.NewVar("a1")}}, nil
	case "s2":
		return scenario{Graph: scenarios.FibonacciOverSPI(), Network: scenarios.FibonacciOverSPINetwork(), TraceVars: ir.VarSet{ir.NewVar("c_copy")}}, nil
	case "s3":
		g, temp := scenarios.Teacup()
		return scenario{Graph: g, TraceVars: ir.VarSet{temp}}, nil
	case "s5":
		return scenario{Graph: scenarios.BusExclusivity(), Network: scenarios.BusExclusivityNetwork(), TraceVars: ir.VarSet{ir.NewVar("sum")}}, nil
	case "s6":
		return scenario{Graph: scenarios.Deadlock(), Network: scenarios.DeadlockNetwork(), TraceVars: ir.VarSet{ir.NewVar("q")}}, nil
	default:
		return scenario{}, fmt.Errorf("unknown scenario %q (want s1, s2, s3, s5 or s6)", name)
	}
}

// printFunctionalTrace prints --fsim's header of traced variables followed
// by one tab-separated row per simulated cycle (§6).
func printFunctionalTrace(sc scenario, cycles int) {
	q := &ir.Queues{Inbound: map[ir.Var][]value.Value{}, Outbound: map[ir.Var][]value.Value{}}
	vals, err := ir.Simulate(sc.Graph, nil, nil, q, cycles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsim: %s\n", err)
		return
	}
	header := make([]string, len(sc.TraceVars))
	for i, v := range sc.TraceVars {
		header[i] = v.Name
	}
	fmt.Println(strings.Join(header, "\t"))
	for _, cycle := range vals {
		row := make([]string, len(sc.TraceVars))
		for i, v := range sc.TraceVars {
			row[i] = fmt.Sprintf("%.3f", cycle[v].Float64())
		}
		fmt.Println(strings.Join(row, "\t"))
	}
}

// printSchedule renders the ProcessRecord serialization of §6: for each
// step, id, start and end time, kind and description, tab-separated.
func printSchedule(rec *process.Record) {
	fmt.Println("id\tstart\tend\tkind\tdesc")
	for _, s := range rec.Steps() {
		fmt.Printf("%d\t%d\t%d\t%s\t%s\n", s.ID, s.Time.Inf, s.Time.Sup, s.Kind, s.Desc)
	}
}

// printMicrocodeDump serializes network.MicrocodeAt(t) for every tick in
// [-1, NextTick()] as a hexadecimal bit-string of width BusWidth (§6). Each
// port contributes one bit, set when its value is non-zero, packed MSB-first
// in sorted key order; a microarchitecture's
// exact port-to-bit-offset layout is a property of its declaration (§6)
// that this CLI does not otherwise model, so packing order is this
// engine's own convention rather than a hardware-verified layout.
func printMicrocodeDump(net *bus.Network) {
	fmt.Println("\nmicrocode:")
	for t := int64(-1); t <= net.NextTick(); t++ {
		word, err := net.MicrocodeAt(t)
		if err != nil {
			fmt.Printf("%d\t<error: %s>\n", t, err)
			continue
		}
		keys := make([]string, 0, len(word))
		for k := range word {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		packed := new(big.Int)
		for _, k := range keys {
			packed.Lsh(packed, 1)
			if word[k].Int64() != 0 {
				packed.Or(packed, big.NewInt(1))
			}
		}
		width := (net.BusWidth() + 3) / 4
		fmt.Printf("%d\t%0*x\n", t, width, packed)
	}
}

// printTestbenchVectors walks the aggregated process for Transport steps and
// prints, for each, its start tick and the transported variable with its
// source and destination PU tags. It prints no cycle number and no expected
// (simulated) value.
func printTestbenchVectors(net *bus.Network) {
	fmt.Println("\ntestbench vectors:")
	for _, s := range net.AggregatedProcess().Steps() {
		if s.Kind != process.KindTransport {
			continue
		}
		tp, _ := s.Payload.(process.TransportPayload)
		fmt.Printf("tick=%d\ttransport %s %s->%s\n", s.Time.Inf, tp.Var, tp.SrcTag, tp.DstTag)
	}
}
