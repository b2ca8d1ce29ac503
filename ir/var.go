package ir

// Var is an opaque variable identifier. Identity is by Name: two Var values
// with the same Name denote the same algorithm variable. Ordering (used to
// break ties deterministically in option scoring, per §9) is the natural
// lexicographic order of Name, which keeps the whole engine free of any
// hidden global counter and therefore trivially reproducible (§8 property 8).
type Var struct {
	Name string
}

// NewVar constructs a Var from a name. Panics on an empty name: a Var must
// always carry a printable representation, per §3.
func NewVar(name string) Var {
	if name == "" {
		panic("ir: NewVar(\"\")")
	}
	return Var{Name: name}
}

// String returns the variable's printable representation.
func (v Var) String() string { return v.Name }

// Less orders variables lexicographically by name, giving the engine a
// total, deterministic order wherever variable ordering matters (accumulate
// chain order, dataflow assignment tie-breaks).
func (v Var) Less(o Var) bool { return v.Name < o.Name }

// VarSet is a small ordered set of variables, used for Source endpoint roles
// (§3 "Source(vs)") and function input/output lists. Order is preserved as
// supplied; callers that need a canonical order call Sorted().
type VarSet []Var

// Contains reports whether v is a member of the set.
func (s VarSet) Contains(v Var) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Sorted returns a copy of s ordered by Var.Less.
func (s VarSet) Sorted() VarSet {
	out := make(VarSet, len(s))
	copy(out, s)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Less(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
