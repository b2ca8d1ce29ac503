package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/value"
)

func TestInt_AddOverflowFlag(t *testing.T) {
	a := value.NewInt(8, true, 100)
	b := value.NewInt(8, true, 100)
	sum, err := a.Add(b, value.OverflowFlag)
	require.NoError(t, err)
	assert.True(t, sum.Attr().Overflow())
	assert.Equal(t, int64(-56), sum.Int64()) // 200 wraps to -56 in 8-bit two's complement
}

func TestInt_AddOverflowSaturate(t *testing.T) {
	a := value.NewInt(8, true, 100)
	b := value.NewInt(8, true, 100)
	sum, err := a.Add(b, value.OverflowSaturate)
	require.NoError(t, err)
	assert.True(t, sum.Attr().Overflow())
	assert.Equal(t, int64(127), sum.Int64())
}

func TestInt_WidthMismatch(t *testing.T) {
	a := value.NewInt(8, true, 1)
	b := value.NewInt(16, true, 1)
	_, err := a.Add(b, value.OverflowFlag)
	assert.ErrorIs(t, err, value.ErrWidthMismatch)
}

func TestFixed_MulShiftsByFrac(t *testing.T) {
	// fx24.8: 1.5 * 2.0 == 3.0
	a := value.FromFloat64(24, 8, 1.5)
	b := value.FromFloat64(24, 8, 2.0)
	prod, err := a.Mul(b, value.OverflowFlag)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, prod.Float64(), 1e-6)
}

func TestFixed_DivPreShiftsDividend(t *testing.T) {
	// fx24.8: 3.0 / 2.0 == 1.5
	a := value.FromFloat64(24, 8, 3.0)
	b := value.FromFloat64(24, 8, 2.0)
	q, _, err := a.DivMod(b, value.OverflowFlag)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, q.Float64(), 1e-6)
}

func TestFixed_MulWideFracDoesNotOverflow(t *testing.T) {
	// fx56.32: 180.0 * 0.125 == 22.5. The raw product of the two operands'
	// 32-bit-scaled payloads is ~4e20, far past int64 range, before the
	// right shift by frac brings it back down; it must not wrap.
	a := value.FromFloat64(56, 32, 180.0)
	b := value.FromFloat64(56, 32, 0.125)
	prod, err := a.Mul(b, value.OverflowFlag)
	require.NoError(t, err)
	assert.False(t, prod.Attr().Overflow())
	assert.InDelta(t, 22.5, prod.Float64(), 1e-9)
}

func TestFixed_DivWideFracDoesNotOverflow(t *testing.T) {
	// fx56.32: 180.0 / 0.125 == 1440.0. Pre-shifting the dividend left by
	// frac=32 bits overflows int64 immediately for a dividend this size.
	a := value.FromFloat64(56, 32, 180.0)
	b := value.FromFloat64(56, 32, 0.125)
	q, _, err := a.DivMod(b, value.OverflowFlag)
	require.NoError(t, err)
	assert.False(t, q.Attr().Overflow())
	assert.InDelta(t, 1440.0, q.Float64(), 1e-9)
}

func TestDivMod_ByZero(t *testing.T) {
	a := value.NewInt(8, true, 4)
	z := value.NewInt(8, true, 0)
	_, _, err := a.DivMod(z, value.OverflowFlag)
	assert.ErrorIs(t, err, value.ErrDivisionByZero)
}

func TestShiftLogicalLeft_OutOfRange(t *testing.T) {
	a := value.NewInt(8, true, 1)
	_, err := a.ShiftLogicalLeft(-1)
	assert.ErrorIs(t, err, value.ErrShiftAmount)
	_, err = a.ShiftLogicalLeft(9)
	assert.ErrorIs(t, err, value.ErrShiftAmount)
}

func TestShiftLogicalRight_DropsSignExtension(t *testing.T) {
	a := value.NewInt(8, true, -2) // 0b11111110
	shifted, err := a.ShiftLogicalRight(1)
	require.NoError(t, err)
	// logical shift treats the bit pattern as unsigned: 0b01111111 == 127
	assert.Equal(t, int64(127), shifted.Int64())
}

func TestDump_BigEndianTwosComplement(t *testing.T) {
	a := value.NewInt(16, true, -1)
	assert.Equal(t, []byte{0xFF, 0xFF}, a.Dump())

	b := value.NewInt(16, true, 1)
	assert.Equal(t, []byte{0x00, 0x01}, b.Dump())
}
