package scenarios

import (
	"github.com/nitta-corp/nitta/bus"
	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/pu"
	"github.com/nitta-corp/nitta/value"
)

// fixWidth/fixFrac give every fixed-point literal in these fixtures the
// same fx24.32 representation spec.md §8 names: 24 integer bits, 32
// fractional bits, 56 bits total (NewFixed's width is the full two's
// complement payload, not the integer-bit count alone).
const (
	fixWidth = 56
	fixFrac  = 32
)

// Fix builds an fx24.32 literal from a float, per §8's scenario notation.
func Fix(f float64) value.Value { return value.FromFloat64(fixWidth, fixFrac, f) }

// Fibonacci builds S1's dataflow graph (spec.md §8): two loop registers
// feeding an adder. a1 and c are the two Fibonacci state variables;
// the functional simulation of the returned graph over 5 cycles emits
// a1 = 0,1,1,2,3.
func Fibonacci() *ir.Graph {
	a1, b1, b2, c := ir.NewVar("a1"), ir.NewVar("b1"), ir.NewVar("b2"), ir.NewVar("c")
	g := ir.NewGraph()
	g, _ = g.AddFunction("loop_a", ir.NewLoop(value.NewInt(32, true, 0), b2, ir.VarSet{a1}))
	g, _ = g.AddFunction("loop_b", ir.NewLoop(value.NewInt(32, true, 1), c, ir.VarSet{b1, b2}))
	g, _ = g.AddFunction("add_c", ir.NewAdd(ir.VarSet{a1, b1}, ir.VarSet{c}))
	return g
}

// FibonacciNetwork wires S1's graph onto the two-fram-bank-plus-accumulator
// microarchitecture named in §8.
func FibonacciNetwork() *bus.Network {
	g := Fibonacci()
	return bus.NewNetwork("s1", g, 32, pu.Sync).
		AddPU(pu.NewFram("framA", 4, 32)).
		AddPU(pu.NewFram("framB", 4, 32)).
		AddPU(pu.NewSerialPU("acc", ir.TagAdd))
}

// FibonacciOverSPI builds S2: S1's graph with the add also producing a copy
// of c (c_copy), which a send function emits through an SPI PU. The SPI word sequence emitted over 5 cycles is
// 1,2,3,5,8 (§8).
func FibonacciOverSPI() *ir.Graph {
	a1, b1, b2, c, cCopy := ir.NewVar("a1"), ir.NewVar("b1"), ir.NewVar("b2"), ir.NewVar("c"), ir.NewVar("c_copy")
	g := ir.NewGraph()
	g, _ = g.AddFunction("loop_a", ir.NewLoop(value.NewInt(32, true, 0), b2, ir.VarSet{a1}))
	g, _ = g.AddFunction("loop_b", ir.NewLoop(value.NewInt(32, true, 1), c, ir.VarSet{b1, b2}))
	g, _ = g.AddFunction("add_c", ir.NewAdd(ir.VarSet{a1, b1}, ir.VarSet{c, cCopy}))
	g, _ = g.AddFunction("send_c", ir.NewSend(cCopy))
	return g
}

// FibonacciOverSPINetwork wires S2's graph onto S1's microarchitecture plus
// an SPI PU, synchronous mode.
func FibonacciOverSPINetwork() *bus.Network {
	g := FibonacciOverSPI()
	return bus.NewNetwork("s2", g, 32, pu.Sync).
		AddPU(pu.NewFram("framA", 4, 32)).
		AddPU(pu.NewFram("framB", 4, 32)).
		AddPU(pu.NewSerialPU("acc", ir.TagAdd)).
		AddPU(pu.NewSPI("spi", 4, pu.Sync))
}

// Teacup builds S3's fixed-point Newton-cooling graph: dT = (T - A) * k,
// T[n+1] = T[n] - dT * dt, starting temperature 180, ambient 0, k=0.125,
// dt=0.125 (fx24.32), per §8. The feedback into temp_loop is next_temp, the
// result of subtracting the scaled delta from the current temperature.
// Feeding the delta straight back in (instead of subtracting it) collapses
// the trace toward zero within a couple of cycles rather than cooling
// gently toward ambient.
func Teacup() (*ir.Graph, ir.Var) {
	temp := ir.NewVar("temp_cup_1")
	ambient := ir.NewVar("ambient")
	diff := ir.NewVar("diff")
	delta := ir.NewVar("delta")
	scaled := ir.NewVar("scaled")
	nextTemp := ir.NewVar("next_temp")

	kConst, dtConst := ir.NewVar("k_const_v"), ir.NewVar("dt_const_v")

	g := ir.NewGraph()
	g, _ = g.AddFunction("temp_loop", ir.NewLoop(Fix(180), nextTemp, ir.VarSet{temp}))
	g, _ = g.AddFunction("ambient_const", ir.NewConstant(Fix(0), ir.VarSet{ambient}))
	g, _ = g.AddFunction("k_const", ir.NewConstant(Fix(0.125), ir.VarSet{kConst}))
	g, _ = g.AddFunction("dt_const", ir.NewConstant(Fix(0.125), ir.VarSet{dtConst}))
	g, _ = g.AddFunction("diff_sub", ir.NewSub(ir.VarSet{temp, ambient}, ir.VarSet{diff}))
	g, _ = g.AddFunction("delta_mul", ir.NewMul(ir.VarSet{diff, kConst}, ir.VarSet{delta}))
	g, _ = g.AddFunction("scaled_mul", ir.NewMul(ir.VarSet{delta, dtConst}, ir.VarSet{scaled}))
	g, _ = g.AddFunction("next_temp_sub", ir.NewSub(ir.VarSet{temp, scaled}, ir.VarSet{nextTemp}))
	return g, temp
}

// Patch builds S4's lone add function f = add(a,b,[c,d]), used directly
// against ir.Function.Patch and ir.Diff in §8's rendering assertions.
func Patch() ir.Function {
	a, b, c, d := ir.NewVar("a"), ir.NewVar("b"), ir.NewVar("c"), ir.NewVar("d")
	return ir.NewAdd(ir.VarSet{a, b}, ir.VarSet{c, d})
}

// BusExclusivity builds S5: two functions, each producing a variable ready
// for transfer in the same cycle from two distinct source PUs onto one
// shared destination, forcing the bus to serialize them into two disjoint
// Transport steps.
func BusExclusivity() *ir.Graph {
	x, y, sum := ir.NewVar("x"), ir.NewVar("y"), ir.NewVar("sum")
	g := ir.NewGraph()
	g, _ = g.AddFunction("x_in", ir.NewFramInput(0, ir.VarSet{x}))
	g, _ = g.AddFunction("y_in", ir.NewFramInput(1, ir.VarSet{y}))
	g, _ = g.AddFunction("sum_add", ir.NewAdd(ir.VarSet{x, y}, ir.VarSet{sum}))
	return g
}

// BusExclusivityNetwork wires S5's graph onto two independent fram banks
// (one source variable each) plus one shared accumulator.
func BusExclusivityNetwork() *bus.Network {
	g := BusExclusivity()
	return bus.NewNetwork("s5", g, 32, pu.Sync).
		AddPU(pu.NewFram("framX", 2, 32)).
		AddPU(pu.NewFram("framY", 2, 32)).
		AddPU(pu.NewSerialPU("acc", ir.TagAdd))
}

// Deadlock builds S6's graph: p = framInput(0), q = reg(p) and
// framOutput(0, q), a straight chain. The graph has no dependency cycle.
func Deadlock() *ir.Graph {
	p, q := ir.NewVar("p"), ir.NewVar("q")
	g := ir.NewGraph()
	g, _ = g.AddFunction("p_in", ir.NewFramInput(0, ir.VarSet{p}))
	g, _ = g.AddFunction("q_out", ir.NewFramOutput(0, q))
	g, _ = g.AddFunction("p_to_q", ir.NewReg(p, ir.VarSet{q}))
	return g
}

// DeadlockNetwork wires S6's graph onto a single fram bank. A Fram exports
// no locks, so no lock cycle forms on this network and it never offers a
// ResolveDeadlock option; bus.Network.Apply(problem.KindResolveDeadlock) is
// exercised directly in the bus package's own tests instead.
func DeadlockNetwork() *bus.Network {
	g := Deadlock()
	return bus.NewNetwork("s6", g, 32, pu.Sync).
		AddPU(pu.NewFram("fram", 2, 32))
}
