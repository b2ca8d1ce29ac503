package pu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/pu"
)

func TestSerialPU_RejectsWrongTag(t *testing.T) {
	acc := pu.NewSerialPU("acc1", ir.TagAdd)
	mul := ir.NewMul(ir.VarSet{ir.NewVar("a"), ir.NewVar("b")}, ir.VarSet{ir.NewVar("c")})
	_, err := acc.TryBind(mul, "f_mul")
	assert.ErrorIs(t, err, pu.ErrBindRejected)
}

func TestSerialPU_FullCycle(t *testing.T) {
	acc := pu.NewSerialPU("acc1", ir.TagAdd)
	a, b, c := ir.NewVar("a"), ir.NewVar("b"), ir.NewVar("c")
	add := ir.NewAdd(ir.VarSet{a, b}, ir.VarSet{c})

	p, err := acc.TryBind(add, "f_add")
	require.NoError(t, err)

	opts := p.EndpointOptions()
	require.Len(t, opts, 1)
	assert.Equal(t, pu.Target, opts[0].Role)
	assert.Equal(t, a, opts[0].Vars[0])

	p, err = p.EndpointDecision(pu.EndpointDecision{Role: pu.Target, Vars: ir.VarSet{a}, Start: 0})
	require.NoError(t, err)

	opts = p.EndpointOptions()
	require.Len(t, opts, 1)
	assert.Equal(t, b, opts[0].Vars[0])

	p, err = p.EndpointDecision(pu.EndpointDecision{Role: pu.Target, Vars: ir.VarSet{b}, Start: 1})
	require.NoError(t, err)

	opts = p.EndpointOptions()
	require.Len(t, opts, 1)
	assert.Equal(t, pu.Source, opts[0].Role)

	p, err = p.EndpointDecision(pu.EndpointDecision{Role: pu.Source, Vars: ir.VarSet{c}, Start: 2})
	require.NoError(t, err)
	assert.Empty(t, p.EndpointOptions())
}
