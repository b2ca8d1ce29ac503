package value

import "math/big"

// compatible reports whether two values share a representation compatible
// enough to combine: same Kind, same Width, and for KindFixed the same Frac.
func compatible(a, b Value) bool {
	if a.kind != b.kind || a.width != b.width {
		return false
	}
	if a.kind == KindFixed && a.frac != b.frac {
		return false
	}
	return true
}

// clampSigned saturates x into the signed range representable in `width`
// bits, raising AttrOverflow if clamping was necessary.
func clampSigned(x int64, width int) (int64, bool) {
	hi := (int64(1) << uint(width-1)) - 1
	lo := -(int64(1) << uint(width-1))
	if x > hi {
		return hi, true
	}
	if x < lo {
		return lo, true
	}
	return x, false
}

// clampUnsigned saturates x into the unsigned range representable in
// `width` bits, raising AttrOverflow if clamping was necessary.
func clampUnsigned(x int64, width int) (int64, bool) {
	hi := mask(width)
	if x > hi {
		return hi, true
	}
	if x < 0 {
		return 0, true
	}
	return x, false
}

// clampSignedBig is clampSigned generalized to a wide big.Int intermediate,
// for products and pre-shifted dividends that overflow int64 before
// truncation (§4.A's "full-width product").
func clampSignedBig(wide *big.Int, width int) (int64, bool) {
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width-1)), big.NewInt(1))
	lo := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(width-1)))
	switch {
	case wide.Cmp(hi) > 0:
		return hi.Int64(), true
	case wide.Cmp(lo) < 0:
		return lo.Int64(), true
	default:
		return wide.Int64(), false
	}
}

// clampUnsignedBig is clampUnsigned generalized to a wide big.Int intermediate.
func clampUnsignedBig(wide *big.Int, width int) (int64, bool) {
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	switch {
	case wide.Cmp(hi) > 0:
		return hi.Int64(), true
	case wide.Sign() < 0:
		return 0, true
	default:
		return wide.Int64(), false
	}
}

// finalizeWide is finalize generalized to a wide big.Int intermediate, used
// by Mul and DivMod where the true-precision result can exceed int64 (a
// fx24.32 product of two 56-bit operands needs up to 112 bits before its
// Frac-bit shift).
func finalizeWide(kind Kind, width, frac int, signed bool, wide *big.Int, mode OverflowMode) Value {
	var raw int64
	var overflowed bool
	switch mode {
	case OverflowSaturate:
		if signed {
			raw, overflowed = clampSignedBig(wide, width)
		} else {
			raw, overflowed = clampUnsignedBig(wide, width)
		}
	default: // OverflowFlag
		truncated := new(big.Int).And(wide, big.NewInt(mask(width)))
		raw = int64(truncated.Uint64())
		if signed {
			raw = signExtend(raw, width)
		}
		overflowed = big.NewInt(raw).Cmp(wide) != 0
	}
	v := Value{kind: kind, width: width, frac: frac, signed: signed, raw: raw}
	if overflowed {
		v.attr |= AttrOverflow
	}
	return v
}

// finalize applies the declared OverflowMode to a wide intermediate result
// `wide` (computed in excess precision) and returns the resulting Value.
func finalize(kind Kind, width, frac int, signed bool, wide int64, mode OverflowMode) Value {
	var raw int64
	var overflowed bool
	switch mode {
	case OverflowSaturate:
		if signed {
			raw, overflowed = clampSigned(wide, width)
		} else {
			raw, overflowed = clampUnsigned(wide, width)
		}
	default: // OverflowFlag
		raw = wide & mask(width)
		if signed {
			raw = signExtend(raw, width)
			overflowed = raw != wide
		} else {
			overflowed = raw != wide
		}
	}
	v := Value{kind: kind, width: width, frac: frac, signed: signed, raw: raw}
	if overflowed {
		v.attr |= AttrOverflow
	}
	return v
}

// Add returns a + b. Both operands must be compatible (ErrWidthMismatch
// otherwise). Overflow is handled per mode.
func (v Value) Add(o Value, mode OverflowMode) (Value, error) {
	if !compatible(v, o) {
		return Value{}, ErrWidthMismatch
	}
	wide := v.raw + o.raw
	return finalize(v.kind, v.width, v.frac, v.signed || o.signed, wide, mode), nil
}

// Sub returns v - o. Both operands must be compatible.
func (v Value) Sub(o Value, mode OverflowMode) (Value, error) {
	if !compatible(v, o) {
		return Value{}, ErrWidthMismatch
	}
	wide := v.raw - o.raw
	return finalize(v.kind, v.width, v.frac, v.signed || o.signed, wide, mode), nil
}

// Mul returns v * o. For KindFixed operands the full-width product is
// right-shifted by Frac bits before re-truncation, per §4.A: "multiplication
// therefore performs a right shift by N after a full-width product".
func (v Value) Mul(o Value, mode OverflowMode) (Value, error) {
	if !compatible(v, o) {
		return Value{}, ErrWidthMismatch
	}
	// The full-width product of two `width`-bit operands can need up to
	// 2*width bits before the Frac-bit shift, well past int64 for fx24.32's
	// 56-bit operands, so the product itself is computed in a big.Int.
	wide := new(big.Int).Mul(big.NewInt(v.raw), big.NewInt(o.raw))
	if v.kind == KindFixed && v.frac > 0 {
		wide.Rsh(wide, uint(v.frac))
	}
	return finalizeWide(v.kind, v.width, v.frac, v.signed || o.signed, wide, mode), nil
}

// DivMod returns (quotient, remainder) of integer division v / o. For
// KindFixed operands the dividend is pre-shifted left by Frac bits before
// the integer division, per §4.A: "division pre-shifts the dividend left
// by N". Returns ErrDivisionByZero if o is zero.
func (v Value) DivMod(o Value, mode OverflowMode) (q, r Value, err error) {
	if !compatible(v, o) {
		return Value{}, Value{}, ErrWidthMismatch
	}
	if o.raw == 0 {
		return Value{}, Value{}, ErrDivisionByZero
	}
	// The Frac-bit pre-shift of the dividend can itself overflow int64 (e.g.
	// fx24.32's frac=32 against a dividend already using half of int64's
	// range), so the shift and division both run on big.Int intermediates.
	dividend := big.NewInt(v.raw)
	if v.kind == KindFixed && v.frac > 0 {
		dividend.Lsh(dividend, uint(v.frac))
	}
	divisor := big.NewInt(o.raw)
	quot, rem := new(big.Int), new(big.Int)
	quot.QuoRem(dividend, divisor, rem)
	q = finalizeWide(v.kind, v.width, v.frac, v.signed || o.signed, quot, mode)
	r = finalizeWide(v.kind, v.width, v.frac, v.signed || o.signed, rem, mode)
	return q, r, nil
}

// ShiftLogicalLeft returns v logically shifted left by n bits. The vacated
// low bits are zero; bits shifted past the top are dropped (no overflow flag
// is raised — logical shifts are exact truncations by construction in the
// source hardware).
func (v Value) ShiftLogicalLeft(n int) (Value, error) {
	if n < 0 || n > v.width {
		return Value{}, ErrShiftAmount
	}
	raw := (v.raw << uint(n)) & mask(v.width)
	if v.signed {
		raw = signExtend(raw, v.width)
	}
	return Value{kind: v.kind, width: v.width, frac: v.frac, signed: v.signed, raw: raw}, nil
}

// ShiftLogicalRight returns v logically shifted right by n bits, treating
// the value as its unsigned bit pattern (no sign extension of the vacated
// high bits, matching a hardware logical, not arithmetic, shifter).
func (v Value) ShiftLogicalRight(n int) (Value, error) {
	if n < 0 || n > v.width {
		return Value{}, ErrShiftAmount
	}
	unsigned := v.raw & mask(v.width)
	raw := int64(uint64(unsigned) >> uint(n))
	if v.signed {
		raw = signExtend(raw, v.width)
	}
	return Value{kind: v.kind, width: v.width, frac: v.frac, signed: v.signed, raw: raw}, nil
}

// Dump serializes the value to a big-endian two's-complement bit dump of
// ceil(width/8) bytes, per §3 "serialization to a bit dump". Within this
// module only the value package's own tests call it.
func (v Value) Dump() []byte {
	nbytes := (v.width + 7) / 8
	buf := make([]byte, nbytes)
	bits := v.raw & mask(v.width)
	for i := nbytes - 1; i >= 0; i-- {
		buf[i] = byte(bits & 0xFF)
		bits >>= 8
	}
	return buf
}

// WithAttr returns a copy of v with additional attribute bits raised. The
// functional simulator does not use it: an empty receive there fails with
// ir.ErrEmptyQueue instead.
func (v Value) WithAttr(a Attr) Value {
	v.attr |= a
	return v
}
