package pu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/pu"
)

func TestSPI_SendLifecycle(t *testing.T) {
	spi := pu.NewSPI("spi1", 4, pu.Sync)
	v := ir.NewVar("c")
	send := ir.NewSend(v)

	p, err := spi.TryBind(send, "f_send")
	require.NoError(t, err)

	opts := p.EndpointOptions()
	require.Len(t, opts, 1)
	assert.Equal(t, pu.Target, opts[0].Role)

	np, err := p.EndpointDecision(pu.EndpointDecision{Role: pu.Target, Vars: ir.VarSet{v}, Start: 0})
	require.NoError(t, err)
	assert.Empty(t, np.EndpointOptions())
}

func TestSPI_RejectsNonIOFunctions(t *testing.T) {
	spi := pu.NewSPI("spi1", 4, pu.Sync)
	add := ir.NewAdd(ir.VarSet{ir.NewVar("a"), ir.NewVar("b")}, ir.VarSet{ir.NewVar("c")})
	_, err := spi.TryBind(add, "f_add")
	assert.ErrorIs(t, err, pu.ErrBindRejected)
}
