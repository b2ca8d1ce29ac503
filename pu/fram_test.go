package pu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/pu"
	"github.com/nitta-corp/nitta/value"
)

func TestFram_BindConstant(t *testing.T) {
	f := pu.NewFram("fram1", 4, 32)
	c := ir.NewConstant(value.NewInt(32, false, 7), ir.VarSet{ir.NewVar("x")})
	np, err := f.TryBind(c, "f_const")
	require.NoError(t, err)
	assert.NotNil(t, np)
}

func TestFram_BindFramInput_CellUnavailable(t *testing.T) {
	f := pu.NewFram("fram1", 1, 32)
	in := ir.NewFramInput(5, ir.VarSet{ir.NewVar("x")})
	_, err := f.TryBind(in, "f_in")
	assert.ErrorIs(t, err, pu.ErrBindRejected)
}

func TestFram_EndpointLifecycle(t *testing.T) {
	f := pu.NewFram("fram1", 2, 32)
	c := ir.NewConstant(value.NewInt(32, false, 7), ir.VarSet{ir.NewVar("x")})
	np, err := f.TryBind(c, "f_const")
	require.NoError(t, err)

	opts := np.EndpointOptions()
	require.Len(t, opts, 1)
	assert.Equal(t, pu.Source, opts[0].Role)

	np2, err := np.EndpointDecision(pu.EndpointDecision{Role: pu.Source, Vars: opts[0].Vars, Start: 0})
	require.NoError(t, err)
	steps := np2.Process().Steps()
	assert.NotEmpty(t, steps)
}
