package bus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/bus"
	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/problem"
	"github.com/nitta-corp/nitta/pu"
)

func buildTransferGraph(t *testing.T) *ir.Graph {
	t.Helper()
	a := ir.NewVar("a")
	g := ir.NewGraph()
	g, err := g.AddFunction("f_in", ir.NewFramInput(0, ir.VarSet{a}))
	require.NoError(t, err)
	g, err = g.AddFunction("f_out", ir.NewFramOutput(0, a))
	require.NoError(t, err)
	return g
}

func findBind(opts []problem.Option, funcID, puTag string) (problem.Option, bool) {
	for _, o := range opts {
		if o.Kind != problem.KindBind {
			continue
		}
		d := o.Detail.(bus.BindOption)
		if d.FuncID == funcID && d.PUTag == puTag {
			return o, true
		}
	}
	return problem.Option{}, false
}

func findDataflow(opts []problem.Option, varName string) (problem.Option, bool) {
	for _, o := range opts {
		if o.Kind != problem.KindDataflow {
			continue
		}
		d := o.Detail.(bus.DataflowOption)
		if d.Var.Name == varName && !d.Held {
			return o, true
		}
	}
	return problem.Option{}, false
}

func TestNetwork_BindAndTransferAcrossFrams(t *testing.T) {
	g := buildTransferGraph(t)
	net := bus.NewNetwork("net", g, 8, pu.Sync).
		AddPU(pu.NewFram("framA", 4, 8)).
		AddPU(pu.NewFram("framB", 4, 8))

	var m problem.Model = net

	bindIn, ok := findBind(m.Options(), "f_in", "framA")
	require.True(t, ok)
	m, err := m.Apply(bindIn)
	require.NoError(t, err)

	bindOut, ok := findBind(m.Options(), "f_out", "framB")
	require.True(t, ok)
	m, err = m.Apply(bindOut)
	require.NoError(t, err)

	df, ok := findDataflow(m.Options(), "a")
	require.True(t, ok)
	detail := df.Detail.(bus.DataflowOption)
	assert.Equal(t, "framA", detail.SrcTag)
	assert.Equal(t, "framB", detail.DstTag)

	m, err = m.Apply(df)
	require.NoError(t, err)

	net2 := m.(*bus.Network)
	assert.True(t, net2.IsComplete())

	agg := net2.AggregatedProcess()
	assert.NotEmpty(t, agg.Steps())
}

func TestNetwork_ApplyUnknownKind(t *testing.T) {
	g := ir.NewGraph()
	net := bus.NewNetwork("net", g, 8, pu.Sync)
	_, err := net.Apply(problem.Option{Kind: problem.KindEndpoint})
	assert.ErrorIs(t, err, bus.ErrOptionViolation)
}

func TestNetwork_BindRejectsUnknownFunction(t *testing.T) {
	g := ir.NewGraph()
	net := bus.NewNetwork("net", g, 8, pu.Sync).AddPU(pu.NewFram("framA", 2, 8))
	_, err := net.Apply(problem.Option{Kind: problem.KindBind, Detail: bus.BindOption{FuncID: "nope", PUTag: "framA"}})
	assert.ErrorIs(t, err, bus.ErrUnknownFunction)
}

func TestNetwork_ResolveDeadlockInsertsRegs(t *testing.T) {
	g := buildTransferGraph(t)
	net := bus.NewNetwork("net", g, 8, pu.Sync)
	m, err := net.Apply(problem.Option{
		Kind:   problem.KindResolveDeadlock,
		Detail: bus.ResolveDeadlockOption{Vars: ir.VarSet{ir.NewVar("a")}},
	})
	require.NoError(t, err)
	opts := m.Options()
	_, ok := findBind(opts, "resolve_deadlock#a", "framA")
	// no PUs attached yet, so no bind options are offered; just confirm the
	// new producer function is now present among remains by checking Apply
	// doesn't error and Options() runs without panicking.
	assert.False(t, ok)
}
