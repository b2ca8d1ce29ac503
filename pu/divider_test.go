package pu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/pu"
)

func TestDivider_EarliestOutputRespectsPipeline(t *testing.T) {
	d := pu.NewDivider("div1", 2, 1, 5)
	dividend, divisor, q := ir.NewVar("dividend"), ir.NewVar("divisor"), ir.NewVar("q")
	f := ir.NewDiv(dividend, divisor, ir.VarSet{q})

	p, err := d.TryBind(f, "f_div")
	require.NoError(t, err)
	p, err = p.EndpointDecision(pu.EndpointDecision{Role: pu.Target, Vars: ir.VarSet{dividend}, Start: 0})
	require.NoError(t, err)
	p, err = p.EndpointDecision(pu.EndpointDecision{Role: pu.Target, Vars: ir.VarSet{divisor}, Start: 1})
	require.NoError(t, err)

	opts := p.EndpointOptions()
	require.Len(t, opts, 1)
	assert.Equal(t, int64(3), opts[0].At.Available.Inf) // start(0) + depth(2) + latency(1)

	_, err = p.EndpointDecision(pu.EndpointDecision{Role: pu.Source, Vars: ir.VarSet{q}, Start: 2})
	assert.ErrorIs(t, err, pu.ErrOptionViolation)

	np, err := p.EndpointDecision(pu.EndpointDecision{Role: pu.Source, Vars: ir.VarSet{q}, Start: 3})
	require.NoError(t, err)
	assert.NotNil(t, np)
}

func TestDivider_RottenPastDeadline(t *testing.T) {
	d := pu.NewDivider("div1", 1, 0, 2)
	dividend, divisor, q := ir.NewVar("dividend"), ir.NewVar("divisor"), ir.NewVar("q")
	f := ir.NewDiv(dividend, divisor, ir.VarSet{q})

	p, err := d.TryBind(f, "f_div")
	require.NoError(t, err)
	p, err = p.EndpointDecision(pu.EndpointDecision{Role: pu.Target, Vars: ir.VarSet{dividend}, Start: 0})
	require.NoError(t, err)
	p, err = p.EndpointDecision(pu.EndpointDecision{Role: pu.Target, Vars: ir.VarSet{divisor}, Start: 0})
	require.NoError(t, err)

	_, err = p.EndpointDecision(pu.EndpointDecision{Role: pu.Source, Vars: ir.VarSet{q}, Start: 10})
	assert.ErrorIs(t, err, pu.ErrRotten)
}
