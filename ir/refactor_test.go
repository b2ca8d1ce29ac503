package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/value"
)

func TestBreakLoop_ReplacesLoopWithBeginEnd(t *testing.T) {
	g := ir.NewGraph()
	g, err := g.AddFunction("f_loop", ir.NewLoop(value.NewInt(8, true, 0), ir.NewVar("fib_next"), ir.VarSet{ir.NewVar("fib")}))
	require.NoError(t, err)

	_, g2, err := ir.BreakLoop(g, "f_loop")
	require.NoError(t, err)

	_, stillThere := g2.Function("f_loop")
	assert.False(t, stillThere)

	begin, ok := g2.Function("f_loop#begin")
	require.True(t, ok)
	assert.Equal(t, ir.TagLoopBegin, begin.Tag())

	end, ok := g2.Function("f_loop#end")
	require.True(t, ok)
	assert.Equal(t, ir.TagLoopEnd, end.Tag())
	assert.True(t, end.BreaksEvaluationLoop())
}

func TestBreakLoop_RejectsNonLoop(t *testing.T) {
	g := ir.NewGraph()
	g, err := g.AddFunction("f_reg", ir.NewReg(ir.NewVar("x"), ir.VarSet{ir.NewVar("y")}))
	require.NoError(t, err)

	_, _, err = ir.BreakLoop(g, "f_reg")
	assert.ErrorIs(t, err, ir.ErrNotALoop)
}

func TestOptimizeAccumulate_CollapsesChain(t *testing.T) {
	a, b, c, total := ir.NewVar("a"), ir.NewVar("b"), ir.NewVar("c"), ir.NewVar("total")
	partial := ir.NewVar("partial")

	g := ir.NewGraph()
	g, err := g.AddFunction("f1", ir.NewAdd(ir.VarSet{a, b}, ir.VarSet{partial}))
	require.NoError(t, err)
	g, err = g.AddFunction("f2", ir.NewSub(ir.VarSet{partial, c}, ir.VarSet{total}))
	require.NoError(t, err)

	_, g2, err := ir.OptimizeAccumulate(g, []string{"f1", "f2"})
	require.NoError(t, err)

	_, ok := g2.Function("f1")
	assert.False(t, ok)
	_, ok = g2.Function("f2")
	assert.False(t, ok)

	acc, ok := g2.Function("f1#acc")
	require.True(t, ok)
	assert.Equal(t, ir.TagAccumulate, acc.Tag())
	assert.Equal(t, ir.VarSet{total}, acc.Outputs())
}

func TestOptimizeAccumulate_RejectsShortChain(t *testing.T) {
	g := ir.NewGraph()
	g, err := g.AddFunction("f1", ir.NewAdd(ir.VarSet{ir.NewVar("a"), ir.NewVar("b")}, ir.VarSet{ir.NewVar("c")}))
	require.NoError(t, err)
	_, _, err = ir.OptimizeAccumulate(g, []string{"f1"})
	assert.ErrorIs(t, err, ir.ErrAccumulateChainInvalid)
}
