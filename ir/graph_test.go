package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/value"
)

// buildChain constructs a = constant; b = reg(a); c = reg(b) — a straight
// three-deep wave in which every input is produced inside the graph, so it
// has no algorithm inputs.
func buildChain(t *testing.T) *ir.Graph {
	t.Helper()
	g := ir.NewGraph()
	var err error
	g, err = g.AddFunction("f_a", ir.NewConstant(value.NewInt(8, false, 1), ir.VarSet{ir.NewVar("a")}))
	require.NoError(t, err)
	g, err = g.AddFunction("f_b", ir.NewReg(ir.NewVar("a"), ir.VarSet{ir.NewVar("b")}))
	require.NoError(t, err)
	g, err = g.AddFunction("f_c", ir.NewReg(ir.NewVar("b"), ir.VarSet{ir.NewVar("c")}))
	require.NoError(t, err)
	return g
}

func TestGraph_AddFunction_DuplicateProducer(t *testing.T) {
	g := buildChain(t)
	_, err := g.AddFunction("f_dup", ir.NewConstant(value.NewInt(8, false, 2), ir.VarSet{ir.NewVar("a")}))
	assert.ErrorIs(t, err, ir.ErrDuplicateProducer)
}

func TestGraph_Validate_MissingProducer(t *testing.T) {
	g := ir.NewGraph()
	g, err := g.AddFunction("f_b", ir.NewReg(ir.NewVar("unbound"), ir.VarSet{ir.NewVar("b")}))
	require.NoError(t, err)
	err = g.Validate(nil)
	assert.ErrorIs(t, err, ir.ErrNoProducer)
}

func TestGraph_Validate_OK_AllInputsProduced(t *testing.T) {
	g := buildChain(t)
	assert.NoError(t, g.Validate(nil))
}

func TestGraph_WaveDepth(t *testing.T) {
	g := buildChain(t)
	depth, err := g.WaveDepth()
	require.NoError(t, err)
	assert.Equal(t, 0, depth["f_a"])
	assert.Equal(t, 1, depth["f_b"])
	assert.Equal(t, 2, depth["f_c"])
}

func TestGraph_ConsumersAndProducer(t *testing.T) {
	g := buildChain(t)
	id, ok := g.ProducerOf(ir.NewVar("b"))
	require.True(t, ok)
	assert.Equal(t, "f_b", id)
	assert.Equal(t, []string{"f_c"}, g.ConsumersOf(ir.NewVar("b")))
}

func TestGraph_Immutable(t *testing.T) {
	g1 := ir.NewGraph()
	g2, err := g1.AddFunction("f_a", ir.NewConstant(value.NewInt(8, false, 1), ir.VarSet{ir.NewVar("a")}))
	require.NoError(t, err)
	assert.Empty(t, g1.Functions())
	assert.Equal(t, []string{"f_a"}, g2.Functions())
}
