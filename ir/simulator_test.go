package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/internal/scenarios"
	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/value"
)

// TestSimulate_S1Fibonacci reproduces §8 scenario S1: loop(0, b2, [a1]),
// loop(1, c, [b1, b2]), add(a1, b1, [c]) must emit a1 = 0,1,1,2,3 over five
// simulated cycles.
func TestSimulate_S1Fibonacci(t *testing.T) {
	a1, b1, b2, c := ir.NewVar("a1"), ir.NewVar("b1"), ir.NewVar("b2"), ir.NewVar("c")

	g := ir.NewGraph()
	var err error
	g, err = g.AddFunction("f_loop1", ir.NewLoop(value.NewInt(32, true, 0), b2, ir.VarSet{a1}))
	require.NoError(t, err)
	g, err = g.AddFunction("f_loop2", ir.NewLoop(value.NewInt(32, true, 1), c, ir.VarSet{b1, b2}))
	require.NoError(t, err)
	g, err = g.AddFunction("f_add", ir.NewAdd(ir.VarSet{a1, b1}, ir.VarSet{c}))
	require.NoError(t, err)

	require.NoError(t, g.Validate(nil))

	vals, err := ir.Simulate(g, nil, nil, nil, 5)
	require.NoError(t, err)
	require.Len(t, vals, 5)

	want := []int64{0, 1, 1, 2, 3}
	for i, w := range want {
		got, ok := vals[i][a1]
		require.True(t, ok, "cycle %d missing a1", i)
		assert.Equal(t, w, got.Int64(), "cycle %d", i)
	}
}

func TestSimulate_SendReceive(t *testing.T) {
	in := ir.NewVar("in")
	doubled := ir.NewVar("doubled")

	g := ir.NewGraph()
	var err error
	g, err = g.AddFunction("f_recv", ir.NewReceive(ir.VarSet{in}))
	require.NoError(t, err)
	g, err = g.AddFunction("f_mul", ir.NewMul(ir.VarSet{in, in}, ir.VarSet{doubled}))
	require.NoError(t, err)
	g, err = g.AddFunction("f_send", ir.NewSend(doubled))
	require.NoError(t, err)

	q := &ir.Queues{
		Inbound: map[ir.Var][]value.Value{
			in: {value.NewInt(32, false, 2), value.NewInt(32, false, 3)},
		},
		Outbound: map[ir.Var][]value.Value{},
	}

	vals, err := ir.Simulate(g, nil, nil, q, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), vals[0][doubled].Int64())
	assert.Equal(t, int64(9), vals[1][doubled].Int64())
	assert.Equal(t, []value.Value{value.NewInt(32, false, 4), value.NewInt(32, false, 9)}, q.Outbound[doubled])
}

// TestSimulate_S3TeacupCoolsGently reproduces §8 scenario S3: temp_cup_1
// must cool toward ambient by a small, strictly decreasing fraction each
// cycle, never collapsing toward the ambient value within a handful of
// cycles (the failure mode of feeding the scaled delta straight back into
// the loop instead of subtracting it from the previous temperature).
func TestSimulate_S3TeacupCoolsGently(t *testing.T) {
	g, temp := scenarios.Teacup()
	require.NoError(t, g.Validate(nil))

	vals, err := ir.Simulate(g, nil, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, vals, 10)

	temps := make([]float64, 10)
	for i, v := range vals {
		got, ok := v[temp]
		require.True(t, ok, "cycle %d missing %s", i, temp.Name)
		temps[i] = got.Float64()
	}

	// cycle 0 is the loop's x0 literal, untouched by the recurrence.
	assert.InDelta(t, 180.0, temps[0], 1e-6)
	// cycle 1 is exactly 180 * (1 - k*dt) = 180 * 0.984375, computed with
	// frac=32 precision well in excess of what this subtraction needs.
	assert.InDelta(t, 177.1875, temps[1], 1e-6)

	for i := 1; i < len(temps); i++ {
		assert.Less(t, temps[i], temps[i-1], "cycle %d did not cool relative to cycle %d", i, i-1)
	}
	// A gentle per-cycle cooling of ~0.98 * temp over 10 cycles stays well
	// above ambient; the topology bug this guards against collapses to
	// ~2.8 by the second cycle.
	assert.Greater(t, temps[len(temps)-1], 150.0)
}

func TestSimulate_ReceiveEmptyQueue(t *testing.T) {
	in := ir.NewVar("in")
	g := ir.NewGraph()
	g, err := g.AddFunction("f_recv", ir.NewReceive(ir.VarSet{in}))
	require.NoError(t, err)

	q := &ir.Queues{Inbound: map[ir.Var][]value.Value{}, Outbound: map[ir.Var][]value.Value{}}
	_, err = ir.Simulate(g, nil, nil, q, 1)
	assert.ErrorIs(t, err, ir.ErrEmptyQueue)
}
