package value

// Attr is a bit vector of value attributes, carried alongside every Value so
// that arithmetic failures (§3 "a numeric cell with an attribute bit vector")
// propagate without an error return on the hot simulation path.
type Attr uint8

const (
	// AttrOK indicates a value with no raised flags.
	AttrOK Attr = 0
	// AttrInvalid marks a value that could not be produced (e.g. a receive
	// on an empty channel with drop-on-empty disabled).
	AttrInvalid Attr = 1 << iota
	// AttrOverflow marks a value whose true arithmetic result did not fit
	// in the declared width and was saturated or flagged per OverflowMode.
	AttrOverflow
)

// Invalid reports whether AttrInvalid is set.
func (a Attr) Invalid() bool { return a&AttrInvalid != 0 }

// Overflow reports whether AttrOverflow is set.
func (a Attr) Overflow() bool { return a&AttrOverflow != 0 }

// OverflowMode selects how arithmetic handles a result that does not fit in
// the operand width. The PU contract (§4.A) declares which mode a given PU's
// arithmetic uses; it is never a global default.
type OverflowMode uint8

const (
	// OverflowFlag raises AttrOverflow and truncates to width (two's
	// complement wraparound), leaving the raw bits as hardware would.
	OverflowFlag OverflowMode = iota
	// OverflowSaturate clamps the result to the representable range and
	// raises AttrOverflow.
	OverflowSaturate
)

// Kind distinguishes the two concrete value representations named in §4.A.
type Kind uint8

const (
	// KindInt is a two's-complement integer, signed or unsigned.
	KindInt Kind = iota
	// KindFixed is a two's-complement signed binary fixed-point number with
	// a compile-time fractional-bit count.
	KindFixed
)

// Value is a numeric cell: a two's-complement integer or fixed-point number
// of a declared width, carrying Attr flags. The zero Value is not meaningful;
// always construct via NewInt or NewFixed.
type Value struct {
	kind   Kind
	width  int // total bit width, M
	frac   int // fractional bits, N (0 for KindInt)
	signed bool
	raw    int64 // two's-complement payload, sign-extended into int64
	attr   Attr
}

// Kind reports the value's representation.
func (v Value) Kind() Kind { return v.kind }

// Width reports the declared bit width M.
func (v Value) Width() int { return v.width }

// Frac reports the fractional-bit count N (0 for KindInt).
func (v Value) Frac() int { return v.frac }

// Signed reports whether the value is interpreted as signed.
func (v Value) Signed() bool { return v.signed }

// Attr returns the value's attribute bit vector.
func (v Value) Attr() Attr { return v.attr }

// Raw returns the raw two's-complement payload, already sign- or
// zero-extended to an int64 according to Signed.
func (v Value) Raw() int64 { return v.raw }

// mask returns the bitmask covering the low `width` bits.
func mask(width int) int64 {
	if width >= 64 {
		return -1
	}
	return (int64(1) << uint(width)) - 1
}

// signExtend reinterprets the low `width` bits of x as a signed integer.
func signExtend(x int64, width int) int64 {
	if width >= 64 {
		return x
	}
	m := mask(width)
	x &= m
	signBit := int64(1) << uint(width-1)
	if x&signBit != 0 {
		return x | ^m
	}
	return x
}

// NewInt constructs a KindInt value of the given width from a raw integer,
// truncating to width and, for signed values, sign-extending. Panics if
// width <= 0, mirroring the teacher's fail-fast option-constructor policy
// (construction-time validation, never inside arithmetic).
func NewInt(width int, signed bool, raw int64) Value {
	if width <= 0 {
		panic("value: NewInt(width<=0)")
	}
	v := Value{kind: KindInt, width: width, signed: signed, raw: raw & mask(width)}
	if signed {
		v.raw = signExtend(v.raw, width)
	}
	return v
}

// NewFixed constructs a KindFixed (fxWidth.frac) value from a raw
// two's-complement integer representing the already-scaled payload
// (i.e. raw == round(x * 2^frac)). Panics if width <= 0 or frac is negative
// or frac >= width.
func NewFixed(width, frac int, raw int64) Value {
	if width <= 0 {
		panic("value: NewFixed(width<=0)")
	}
	if frac < 0 || frac >= width {
		panic("value: NewFixed(frac out of range)")
	}
	return Value{kind: KindFixed, width: width, frac: frac, signed: true, raw: signExtend(raw, width)}
}

// FromFloat64 constructs a KindFixed value by rounding f*2^frac to the
// nearest integer. It is a test/tooling helper (functional-simulator inputs,
// golden-scenario literals); synthesis itself never performs floating point
// arithmetic, per the Non-goals of §1.
func FromFloat64(width, frac int, f float64) Value {
	scaled := f * float64(int64(1)<<uint(frac))
	r := int64(scaled)
	if scaled-float64(r) >= 0.5 {
		r++
	} else if scaled-float64(r) <= -0.5 {
		r--
	}
	return NewFixed(width, frac, r)
}

// Float64 reinterprets a KindFixed value as a float64 for printing and
// testbench comparison. For KindInt it returns the integer value verbatim.
func (v Value) Float64() float64 {
	if v.kind == KindFixed {
		return float64(v.raw) / float64(int64(1)<<uint(v.frac))
	}
	return float64(v.raw)
}

// Int64 returns the raw two's-complement payload sign/zero extended per
// Signed, with no fixed-point interpretation applied.
func (v Value) Int64() int64 { return v.raw }
