package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nitta-corp/nitta/ir"
	"github.com/nitta-corp/nitta/value"
)

// TestFunction_PatchScenario reproduces §8 scenario S4: add(a, b, [c, d])
// patched three independent ways must render exactly as the spec shows.
func TestFunction_PatchScenario(t *testing.T) {
	a, b, c, d := ir.NewVar("a"), ir.NewVar("b"), ir.NewVar("c"), ir.NewVar("d")
	f := ir.NewAdd(ir.VarSet{a, b}, ir.VarSet{c, d})
	assert.Equal(t, "c = d = a + b", f.String())

	renameInput := ir.NewDiff()
	renameInput.RenameInput(a, ir.NewVar("a1"))
	assert.Equal(t, "c = d = a1 + b", f.Patch(renameInput).String())

	renameOutput := ir.NewDiff()
	renameOutput.RenameOutput(c, ir.NewVar("c1"))
	assert.Equal(t, "c1 = d = a + b", f.Patch(renameOutput).String())

	renameBoth := ir.NewDiff()
	renameBoth.RenameInput(b, ir.NewVar("b1"))
	renameBoth.RenameOutput(d, ir.NewVar("d1"))
	assert.Equal(t, "c = d1 = a + b1", f.Patch(renameBoth).String())

	// The original function is untouched by patching.
	assert.Equal(t, "c = d = a + b", f.String())
}

func TestFunction_PatchIgnoresUnrelatedRenames(t *testing.T) {
	x, y := ir.NewVar("x"), ir.NewVar("y")
	f := ir.NewReg(x, ir.VarSet{y})

	d := ir.NewDiff()
	d.RenameInput(ir.NewVar("unrelated"), ir.NewVar("ignored"))
	assert.Equal(t, f.String(), f.Patch(d).String())
}

func TestFunction_EqualByRendering(t *testing.T) {
	a, b := ir.NewVar("a"), ir.NewVar("b")
	f1 := ir.NewAdd(ir.VarSet{a, b}, ir.VarSet{ir.NewVar("c")})
	f2 := ir.NewAdd(ir.VarSet{a, b}, ir.VarSet{ir.NewVar("c")})
	f3 := ir.NewAdd(ir.VarSet{a, b}, ir.VarSet{ir.NewVar("d")})
	assert.True(t, f1.Equal(f2))
	assert.False(t, f1.Equal(f3))
}

func TestFunction_BreaksEvaluationLoop(t *testing.T) {
	loop := ir.NewLoop(value.NewInt(8, true, 0), ir.NewVar("in"), ir.VarSet{ir.NewVar("out")})
	assert.True(t, loop.BreaksEvaluationLoop())

	add := ir.NewAdd(ir.VarSet{ir.NewVar("a"), ir.NewVar("b")}, ir.VarSet{ir.NewVar("c")})
	assert.False(t, add.BreaksEvaluationLoop())
}
