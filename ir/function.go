package ir

import (
	"strconv"
	"strings"

	"github.com/nitta-corp/nitta/value"
)

// Tag enumerates the closed function set of §3.
type Tag uint8

const (
	TagConstant Tag = iota
	TagReg
	TagAdd
	TagSub
	TagMul
	TagDiv
	TagShiftL
	TagShiftR
	TagLoop
	TagSend
	TagReceive
	TagFramInput
	TagFramOutput
	// TagLoopBegin and TagLoopEnd are the pseudo-functions a break-loop
	// refactor substitutes for a single TagLoop function (§3 Lifecycle).
	TagLoopBegin
	TagLoopEnd
	// TagAccumulate is the function an optimize-accumulate refactor
	// substitutes for a chain of add/sub functions (§4.B).
	TagAccumulate
)

// String names the tag the way the spec itself names functions.
func (t Tag) String() string {
	switch t {
	case TagConstant:
		return "constant"
	case TagReg:
		return "reg"
	case TagAdd:
		return "add"
	case TagSub:
		return "sub"
	case TagMul:
		return "mul"
	case TagDiv:
		return "div"
	case TagShiftL:
		return "shiftL"
	case TagShiftR:
		return "shiftR"
	case TagLoop:
		return "loop"
	case TagSend:
		return "send"
	case TagReceive:
		return "receive"
	case TagFramInput:
		return "framInput"
	case TagFramOutput:
		return "framOutput"
	case TagLoopBegin:
		return "loopBegin"
	case TagLoopEnd:
		return "loopEnd"
	case TagAccumulate:
		return "accumulate"
	default:
		return "unknown"
	}
}

// Function is a typed record over the closed tag set of §3. Construct via
// the NewXxx constructors below; Function is a value type and is always
// passed and returned by value so that Patch can return a new, independent
// Function without mutating the original (§9 "pure rewrite").
type Function struct {
	tag     Tag
	inputs  VarSet
	outputs VarSet
	lit     *value.Value // literal for constant/loop x0
	lit2    *value.Value // second literal slot, reserved for future tags
	// accSigns records the +/- sign for each input of an accumulate
	// function, in input order, so Simulate and String can render it.
	accSigns []int8
}

// NewAdd constructs add(inputs..., outputs...).
func NewAdd(inputs VarSet, outputs VarSet) Function {
	return Function{tag: TagAdd, inputs: inputs, outputs: outputs}
}

// NewSub constructs sub(a, b, outputs...) = a - b - ...
func NewSub(inputs VarSet, outputs VarSet) Function {
	return Function{tag: TagSub, inputs: inputs, outputs: outputs}
}

// NewMul constructs mul(inputs..., outputs...).
func NewMul(inputs VarSet, outputs VarSet) Function {
	return Function{tag: TagMul, inputs: inputs, outputs: outputs}
}

// NewDiv constructs div(dividend, divisor, outputs...) where outputs holds
// the quotient and, optionally, the remainder variable.
func NewDiv(dividend, divisor Var, outputs VarSet) Function {
	return Function{tag: TagDiv, inputs: VarSet{dividend, divisor}, outputs: outputs}
}

// NewShiftL constructs shiftL(in, outputs...) shifting by a literal amount.
func NewShiftL(in Var, amount int64, outputs VarSet) Function {
	lit := value.NewInt(8, false, amount)
	return Function{tag: TagShiftL, inputs: VarSet{in}, outputs: outputs, lit: &lit}
}

// NewShiftR constructs shiftR(in, outputs...) shifting by a literal amount.
func NewShiftR(in Var, amount int64, outputs VarSet) Function {
	lit := value.NewInt(8, false, amount)
	return Function{tag: TagShiftR, inputs: VarSet{in}, outputs: outputs, lit: &lit}
}

// NewConstant constructs constant(x, outputs...): x is a literal emitted on
// every cycle.
func NewConstant(x value.Value, outputs VarSet) Function {
	return Function{tag: TagConstant, outputs: outputs, lit: &x}
}

// NewReg constructs reg(in, outputs...): copies in to every output.
func NewReg(in Var, outputs VarSet) Function {
	return Function{tag: TagReg, inputs: VarSet{in}, outputs: outputs}
}

// NewLoop constructs loop(x0, in, outputs...): outputs hold x0 on the first
// simulated cycle and the previous cycle's value of in thereafter (§4.B).
func NewLoop(x0 value.Value, in Var, outputs VarSet) Function {
	return Function{tag: TagLoop, inputs: VarSet{in}, outputs: outputs, lit: &x0}
}

// NewSend constructs send(in): requires in's value and emits it externally.
func NewSend(in Var) Function {
	return Function{tag: TagSend, inputs: VarSet{in}}
}

// NewReceive constructs receive(outputs...): pulls from an external queue.
func NewReceive(outputs VarSet) Function {
	return Function{tag: TagReceive, outputs: outputs}
}

// NewFramInput constructs framInput(addr, outputs...).
func NewFramInput(addr int64, outputs VarSet) Function {
	lit := value.NewInt(32, false, addr)
	return Function{tag: TagFramInput, outputs: outputs, lit: &lit}
}

// NewFramOutput constructs framOutput(addr, in).
func NewFramOutput(addr int64, in Var) Function {
	lit := value.NewInt(32, false, addr)
	return Function{tag: TagFramOutput, inputs: VarSet{in}, lit: &lit}
}

// newLoopBegin/newLoopEnd/newAccumulate are internal constructors used only
// by the refactor engine (refactor.go); they are not part of the public
// algorithm-authoring surface because they only ever arise from a refactor.
func newLoopBegin(x0 value.Value, outputs VarSet) Function {
	return Function{tag: TagLoopBegin, outputs: outputs, lit: &x0}
}

func newLoopEnd(in Var, feedback Var) Function {
	return Function{tag: TagLoopEnd, inputs: VarSet{in}, outputs: VarSet{feedback}}
}

func newAccumulate(inputs VarSet, signs []int8, outputs VarSet) Function {
	return Function{tag: TagAccumulate, inputs: inputs, outputs: outputs, accSigns: signs}
}

// Tag reports the function's tag.
func (f Function) Tag() Tag { return f.tag }

// Inputs returns the function's input variables, in declared order.
func (f Function) Inputs() VarSet { return f.inputs }

// Outputs returns the function's output variables, in declared order.
func (f Function) Outputs() VarSet { return f.outputs }

// Literal returns the function's literal value, if it has one (constant,
// loop's x0, shift amounts, fram addresses).
func (f Function) Literal() (value.Value, bool) {
	if f.lit == nil {
		return value.Value{}, false
	}
	return *f.lit, true
}

// BreaksEvaluationLoop reports whether this function terminates a cyclic
// dependency by construction: a loop (and its loopEnd half after a
// break-loop refactor) reads the *previous* cycle's value, so it never
// participates in an instantaneous dependency cycle.
func (f Function) BreaksEvaluationLoop() bool {
	return f.tag == TagLoop || f.tag == TagLoopEnd
}

// MayCauseInternalLock reports whether this function's PU binding can
// export a Lock (§3): true for receive (blocks on external data) and for
// div (pipeline latency can force an ordering constraint on its output).
func (f Function) MayCauseInternalLock() bool {
	return f.tag == TagReceive || f.tag == TagDiv
}

// Equal reports structural equality by external presentation (§3): two
// functions are equal iff they print identically, so that otherwise
// structurally-identical functions bound to different variables (different
// positions in the algorithm) are correctly distinguished.
func (f Function) Equal(o Function) bool {
	return f.String() == o.String()
}

// Patch substitutes variables by the given Diff, renaming only input
// variables present in d.InputRenames and only output variables present in
// d.OutputRenames. Variables outside the function's own input/output sets
// are left untouched even if mentioned elsewhere in d, which is what lets a
// single Diff be applied uniformly across an entire dataflow graph and every
// sub-PU binding (§9).
func (f Function) Patch(d Diff) Function {
	nf := f
	nf.inputs = patchSet(f.inputs, d.InputRenames)
	nf.outputs = patchSet(f.outputs, d.OutputRenames)
	return nf
}

func patchSet(vs VarSet, renames map[Var]Var) VarSet {
	if len(vs) == 0 {
		return vs
	}
	out := make(VarSet, len(vs))
	for i, v := range vs {
		if nv, ok := renameVar(renames, v); ok {
			out[i] = nv
		} else {
			out[i] = v
		}
	}
	return out
}

// String renders the function in the spec's own notation: each output
// followed by " = ", then a tag-specific expression of the inputs.
// Add's rendering is exercised exactly by §8 scenario S4.
func (f Function) String() string {
	var b strings.Builder
	for _, o := range f.outputs {
		b.WriteString(o.Name)
		b.WriteString(" = ")
	}
	b.WriteString(f.exprString())
	return b.String()
}

func (f Function) exprString() string {
	names := make([]string, len(f.inputs))
	for i, v := range f.inputs {
		names[i] = v.Name
	}
	switch f.tag {
	case TagAdd:
		return strings.Join(names, " + ")
	case TagSub:
		return strings.Join(names, " - ")
	case TagMul:
		return strings.Join(names, " * ")
	case TagAccumulate:
		var b strings.Builder
		for i, n := range names {
			if i > 0 {
				if i < len(f.accSigns) && f.accSigns[i] < 0 {
					b.WriteString(" - ")
				} else {
					b.WriteString(" + ")
				}
			} else if i < len(f.accSigns) && f.accSigns[i] < 0 {
				b.WriteString("-")
			}
			b.WriteString(n)
		}
		return b.String()
	case TagDiv:
		if len(names) == 2 {
			return names[0] + " / " + names[1]
		}
	case TagShiftL:
		if len(names) == 1 {
			return names[0] + " << " + litString(f.lit)
		}
	case TagShiftR:
		if len(names) == 1 {
			return names[0] + " >> " + litString(f.lit)
		}
	case TagReg:
		if len(names) == 1 {
			return "reg(" + names[0] + ")"
		}
	case TagLoop:
		if len(names) == 1 {
			return "loop(" + litString(f.lit) + ", " + names[0] + ")"
		}
	case TagLoopBegin:
		return "loopBegin(" + litString(f.lit) + ")"
	case TagLoopEnd:
		if len(names) == 1 {
			return "loopEnd(" + names[0] + ")"
		}
	case TagConstant:
		return litString(f.lit)
	case TagSend:
		if len(names) == 1 {
			return "send(" + names[0] + ")"
		}
	case TagReceive:
		return "receive()"
	case TagFramInput:
		return "framIn(" + litString(f.lit) + ")"
	case TagFramOutput:
		if len(names) == 1 {
			return "framOut(" + litString(f.lit) + ", " + names[0] + ")"
		}
	}
	return f.tag.String() + "(" + strings.Join(names, ", ") + ")"
}

func litString(v *value.Value) string {
	if v == nil {
		return "?"
	}
	if v.Kind() == value.KindFixed {
		return trimFloat(v.Float64())
	}
	return trimFloat(float64(v.Int64()))
}

func trimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}
