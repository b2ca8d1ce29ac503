package ir

import (
	"fmt"
	"strings"

	"github.com/nitta-corp/nitta/value"
)

// Valuation is the set of variable values live at a single simulated cycle.
type Valuation map[Var]value.Value

// Queues bundles the external input/output streams a functional simulation
// consumes and produces: receive() pulls the next element of Inbound (per
// §3, popping the head of the named queue keyed by the receive function's
// sole output) and send(in) appends in's value to Outbound.
type Queues struct {
	Inbound  map[Var][]value.Value
	Outbound map[Var][]value.Value
}

// loopState carries, across cycles, the previous-cycle value a loop or
// loopEnd function must expose this cycle.
type loopState struct {
	prev  map[string]value.Value
	ready map[string]bool
}

// Simulate runs the functional simulation of §8 property 5 for n cycles,
// returning the Valuation computed at each cycle. algInputs names the
// algorithm input variables and feed supplies their value at each cycle
// (a variable for which feed reports false is left unset that cycle). Functions are evaluated in
// an order consistent with the graph's instantaneous dependencies; loop and
// loopEnd read state left over from the previous cycle and so never block on
// same-cycle ordering.
func Simulate(g *Graph, algInputs VarSet, feed func(cycle int, v Var) (value.Value, bool), q *Queues, n int) ([]Valuation, error) {
	order, err := evalOrder(g)
	if err != nil {
		return nil, err
	}
	st := &loopState{prev: map[string]value.Value{}, ready: map[string]bool{}}
	out := make([]Valuation, 0, n)
	for cycle := 0; cycle < n; cycle++ {
		val := Valuation{}
		for _, v := range algInputs {
			if feed != nil {
				if x, ok := feed(cycle, v); ok {
					val[v] = x
				}
			}
		}
		// Pass 1: evaluate every function's outputs. loop/loopEnd emit their
		// stored previous-cycle state (or x0 on the first cycle) without
		// touching their own input yet, so a loop's feedback variable need
		// not already be live this cycle.
		for _, id := range order {
			f := g.funcs[id]
			if err := evalFunction(id, f, val, st, q); err != nil {
				return nil, fmt.Errorf("cycle %d, function %s: %w", cycle, id, err)
			}
		}
		// Pass 2: now that every producer has run, loop/loopEnd capture this
		// cycle's input value as next cycle's previous-cycle state.
		for _, id := range order {
			f := g.funcs[id]
			if f.Tag() != TagLoop && f.Tag() != TagLoopEnd {
				continue
			}
			x, ok := val[f.Inputs()[0]]
			if !ok {
				return nil, fmt.Errorf("cycle %d, function %s: %w: %s not produced", cycle, id, ErrSimulationFailure, f.Inputs()[0].Name)
			}
			pid := pairID(id)
			st.prev[pid] = x
			st.ready[pid] = true
		}
		out = append(out, val)
	}
	return out, nil
}

// evalOrder returns function ids ordered so that every non-loop-breaking
// function's inputs are already produced, using the bipartite topological
// sort; loop/loopEnd functions may appear anywhere since they only read
// previous-cycle state.
func evalOrder(g *Graph) ([]string, error) {
	depth, err := g.WaveDepth()
	if err != nil {
		return nil, err
	}
	order := append([]string(nil), g.order...)
	// Stable sort by wave depth; WaveDepth already reflects a valid
	// topological order so a stable sort over its insertion order preserves
	// determinism across equal-depth functions.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && depth[order[j-1]] > depth[order[j]]; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	return order, nil
}

func evalFunction(id string, f Function, val Valuation, st *loopState, q *Queues) error {
	in := func(i int) (value.Value, error) {
		vs := f.Inputs()
		if i >= len(vs) {
			return value.Value{}, fmt.Errorf("%w: missing input %d", ErrSimulationFailure, i)
		}
		x, ok := val[vs[i]]
		if !ok {
			return value.Value{}, fmt.Errorf("%w: %s not yet produced", ErrSimulationFailure, vs[i].Name)
		}
		return x, nil
	}
	setAll := func(x value.Value) {
		for _, o := range f.Outputs() {
			val[o] = x
		}
	}

	switch f.Tag() {
	case TagConstant:
		x, _ := f.Literal()
		setAll(x)

	case TagReg:
		x, err := in(0)
		if err != nil {
			return err
		}
		setAll(x)

	case TagAdd:
		return foldArith(f, val, setAll, func(acc, x value.Value) (value.Value, error) {
			return acc.Add(x, value.OverflowSaturate)
		})

	case TagSub:
		return foldArith(f, val, setAll, func(acc, x value.Value) (value.Value, error) {
			return acc.Sub(x, value.OverflowSaturate)
		})

	case TagMul:
		return foldArith(f, val, setAll, func(acc, x value.Value) (value.Value, error) {
			return acc.Mul(x, value.OverflowSaturate)
		})

	case TagAccumulate:
		vs := f.Inputs()
		if len(vs) == 0 {
			return fmt.Errorf("%w: accumulate with no inputs", ErrSimulationFailure)
		}
		acc, ok := val[vs[0]]
		if !ok {
			return fmt.Errorf("%w: %s not yet produced", ErrSimulationFailure, vs[0].Name)
		}
		for i := 1; i < len(vs); i++ {
			x, ok := val[vs[i]]
			if !ok {
				return fmt.Errorf("%w: %s not yet produced", ErrSimulationFailure, vs[i].Name)
			}
			sign := int8(1)
			if i < len(f.accSigns) {
				sign = f.accSigns[i]
			}
			var err error
			if sign < 0 {
				acc, err = acc.Sub(x, value.OverflowSaturate)
			} else {
				acc, err = acc.Add(x, value.OverflowSaturate)
			}
			if err != nil {
				return err
			}
		}
		setAll(acc)

	case TagDiv:
		dividend, err := in(0)
		if err != nil {
			return err
		}
		divisor, err := in(1)
		if err != nil {
			return err
		}
		q, r, err := dividend.DivMod(divisor, value.OverflowSaturate)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSimulationFailure, err)
		}
		outs := f.Outputs()
		if len(outs) > 0 {
			val[outs[0]] = q
		}
		if len(outs) > 1 {
			val[outs[1]] = r
		}

	case TagShiftL:
		x, err := in(0)
		if err != nil {
			return err
		}
		lit, _ := f.Literal()
		sh, err := x.ShiftLogicalLeft(int(lit.Int64()))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSimulationFailure, err)
		}
		setAll(sh)

	case TagShiftR:
		x, err := in(0)
		if err != nil {
			return err
		}
		lit, _ := f.Literal()
		sh, err := x.ShiftLogicalRight(int(lit.Int64()))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSimulationFailure, err)
		}
		setAll(sh)

	case TagLoop:
		x0, _ := f.Literal()
		if !st.ready[id] {
			setAll(x0)
		} else {
			setAll(st.prev[id])
		}

	case TagLoopBegin:
		x0, _ := f.Literal()
		pid := pairID(id)
		if !st.ready[pid] {
			setAll(x0)
		} else {
			setAll(st.prev[pid])
		}

	case TagLoopEnd:
		pid := pairID(id)
		if st.ready[pid] && len(f.Outputs()) > 0 {
			val[f.Outputs()[0]] = st.prev[pid]
		}

	case TagSend:
		x, err := in(0)
		if err != nil {
			return err
		}
		if q != nil && len(f.Inputs()) > 0 {
			v := f.Inputs()[0]
			q.Outbound[v] = append(q.Outbound[v], x)
		}

	case TagReceive:
		outs := f.Outputs()
		if len(outs) == 0 {
			return fmt.Errorf("%w: receive with no output", ErrSimulationFailure)
		}
		o := outs[0]
		if q == nil || len(q.Inbound[o]) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyQueue, o.Name)
		}
		x := q.Inbound[o][0]
		q.Inbound[o] = q.Inbound[o][1:]
		setAll(x)

	case TagFramInput:
		// Memory contents outside the simulated window are modeled as zero;
		// a full memory-backed simulation is out of scope (§1 Non-goals).
		lit, _ := f.Literal()
		setAll(value.NewInt(lit.Width(), false, 0))

	case TagFramOutput:
		if _, err := in(0); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: unhandled tag %s", ErrSimulationFailure, f.Tag())
	}
	return nil
}

// pairID maps a loopBegin/loopEnd function id produced by BreakLoop back to
// the shared state key the original loop function id would have used, so
// the two halves of a broken loop still exchange previous-cycle state. A
// plain (un-refactored) loop's id is its own pairID.
func pairID(id string) string {
	if strings.HasSuffix(id, "#begin") {
		return strings.TrimSuffix(id, "#begin")
	}
	if strings.HasSuffix(id, "#end") {
		return strings.TrimSuffix(id, "#end")
	}
	return id
}

func foldArith(f Function, val Valuation, setAll func(value.Value), op func(acc, x value.Value) (value.Value, error)) error {
	vs := f.Inputs()
	if len(vs) == 0 {
		return fmt.Errorf("%w: arithmetic function with no inputs", ErrSimulationFailure)
	}
	acc, ok := val[vs[0]]
	if !ok {
		return fmt.Errorf("%w: %s not yet produced", ErrSimulationFailure, vs[0].Name)
	}
	for i := 1; i < len(vs); i++ {
		x, ok := val[vs[i]]
		if !ok {
			return fmt.Errorf("%w: %s not yet produced", ErrSimulationFailure, vs[i].Name)
		}
		var err error
		acc, err = op(acc, x)
		if err != nil {
			return err
		}
	}
	setAll(acc)
	return nil
}
