package ir

import (
	"fmt"
)

// BreakLoop replaces the named loop(x0, in, outs...) function with the
// loopBegin(x0, outs...)/loopEnd(in, fb) pair of §3's refactor, introducing a
// fresh feedback variable fb as loopEnd's own output, distinct from
// loopBegin's outputs; both halves break the evaluation loop, so neither adds
// an instantaneous dependency within a cycle. The returned Diff
// renames nothing observable at the algorithm boundary: it exists purely so
// callers (the bus network, in particular) can patch any options or
// decisions that referenced the old loop function id.
func BreakLoop(g *Graph, loopFuncID string) (Diff, *Graph, error) {
	f, ok := g.Function(loopFuncID)
	if !ok {
		return Diff{}, nil, fmt.Errorf("%w: %s", ErrUnknownFunction, loopFuncID)
	}
	if f.Tag() != TagLoop {
		return Diff{}, nil, fmt.Errorf("%w: %s", ErrNotALoop, loopFuncID)
	}
	x0, _ := f.Literal()
	in := f.Inputs()[0]
	outs := f.Outputs()

	fb := NewVar(loopFuncID + "#fb")
	begin := newLoopBegin(x0, outs)
	end := newLoopEnd(in, fb)

	ng := g.clone()
	delete(ng.funcs, loopFuncID)
	ng.order = removeID(ng.order, loopFuncID)

	beginID := loopFuncID + "#begin"
	endID := loopFuncID + "#end"
	var err error
	var withBegin *Graph
	withBegin, err = ng.AddFunction(beginID, begin)
	if err != nil {
		return Diff{}, nil, err
	}
	final, err := withBegin.AddFunction(endID, end)
	if err != nil {
		return Diff{}, nil, err
	}
	return NewDiff(), final, nil
}

// OptimizeAccumulate collapses a chain of add/sub functions that share a
// single running accumulator into one accumulate function (§4.B), so that a
// serial adder/subtractor PU can retire the whole chain in one binding
// instead of one per pairwise operation. chain must name add/sub functions
// in evaluation order, where each function after the first consumes exactly
// one input that is an output of the previous function in the chain (its
// running total) plus exactly one fresh operand.
func OptimizeAccumulate(g *Graph, chain []string) (Diff, *Graph, error) {
	if len(chain) < 2 {
		return Diff{}, nil, fmt.Errorf("%w: chain too short", ErrAccumulateChainInvalid)
	}
	funcs := make([]Function, 0, len(chain))
	for _, id := range chain {
		f, ok := g.Function(id)
		if !ok {
			return Diff{}, nil, fmt.Errorf("%w: %s", ErrUnknownFunction, id)
		}
		if f.Tag() != TagAdd && f.Tag() != TagSub {
			return Diff{}, nil, fmt.Errorf("%w: %s is not add/sub", ErrAccumulateChainInvalid, id)
		}
		funcs = append(funcs, f)
	}

	// add(a, b, ...) contributes every input positively; sub(a, b, ...) = a -
	// b - ...  contributes its first input positively and the rest
	// negatively. After the first function in the chain, its running total
	// occupies input slot 0 of the next function and is elided from the
	// accumulate's own input list: the accumulate function carries only the
	// fresh operands introduced by each link.
	var inputs VarSet
	var signs []int8
	running := funcs[0].Outputs()
	for i, f := range funcs {
		if i > 0 && !hasRunningInput(f, running) {
			return Diff{}, nil, fmt.Errorf("%w: %s does not consume the running total", ErrAccumulateChainInvalid, chain[i])
		}
		for j, in := range f.Inputs() {
			if i > 0 && j == 0 {
				continue // this slot is the running total, not a fresh operand
			}
			sign := int8(1)
			if f.Tag() == TagSub && j > 0 {
				sign = -1
			}
			inputs = append(inputs, in)
			signs = append(signs, sign)
		}
		running = f.Outputs()
	}
	finalOutputs := funcs[len(funcs)-1].Outputs()
	acc := newAccumulate(inputs, signs, finalOutputs)

	ng := g.clone()
	for _, id := range chain {
		delete(ng.funcs, id)
		ng.order = removeID(ng.order, id)
	}
	accID := chain[0] + "#acc"
	final, err := ng.AddFunction(accID, acc)
	if err != nil {
		return Diff{}, nil, err
	}
	return NewDiff(), final, nil
}

func hasRunningInput(f Function, running VarSet) bool {
	if len(running) == 0 {
		return false
	}
	return f.Inputs().Contains(running[0])
}

func removeID(order []string, id string) []string {
	out := make([]string, 0, len(order))
	for _, o := range order {
		if o != id {
			out = append(out, o)
		}
	}
	return out
}
