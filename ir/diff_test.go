package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nitta-corp/nitta/ir"
)

func TestDiff_Empty(t *testing.T) {
	d := ir.NewDiff()
	assert.True(t, d.Empty())
	d.RenameInput(ir.NewVar("a"), ir.NewVar("b"))
	assert.False(t, d.Empty())
}

func TestDiff_ReverseRoundTrip(t *testing.T) {
	a, b := ir.NewVar("a"), ir.NewVar("b")
	f := ir.NewReg(a, ir.VarSet{b})

	d := ir.NewDiff()
	d.RenameInput(a, ir.NewVar("a1"))
	d.RenameOutput(b, ir.NewVar("b1"))

	patched := f.Patch(d)
	restored := patched.Patch(d.Reverse())
	assert.True(t, f.Equal(restored))
}
