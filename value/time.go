package value

import "math"

// BoundedMax is the clock value serving as "no upper limit", per §4.A.
const BoundedMax int64 = math.MaxInt64

// Tag is an optional branch identifier carried alongside a clock value, to
// support (future) divergent control flow, per §9 "Time tags instead of
// per-branch clocks". The empty Tag means untagged.
type Tag string

// Time is a TaggedTime(tag, clock): an integer clock optionally annotated
// with a branch tag.
type Time struct {
	Tag   Tag
	Clock int64
}

// Untagged constructs a Time with no branch tag.
func Untagged(clock int64) Time { return Time{Clock: clock} }

// Tagged constructs a Time carrying the given branch tag.
func Tagged(tag Tag, clock int64) Time { return Time{Tag: tag, Clock: clock} }

// Add combines two Time values. Addition is defined when either side is
// untagged or both tags are equal; otherwise it is a contract violation
// (ErrTagMismatch), per §4.A.
func (t Time) Add(o Time) (Time, error) {
	tag := t.Tag
	switch {
	case t.Tag == "":
		tag = o.Tag
	case o.Tag == "" || o.Tag == t.Tag:
		tag = t.Tag
	default:
		return Time{}, ErrTagMismatch
	}
	return Time{Tag: tag, Clock: t.Clock + o.Clock}, nil
}

// Interval is a closed integer interval [Inf, Sup]. Width() = Sup-Inf+1. An
// Interval with Inf > Sup is empty.
type Interval struct {
	Inf, Sup int64
}

// Point returns the degenerate closed interval [t, t].
func Point(t int64) Interval { return Interval{Inf: t, Sup: t} }

// Unbounded returns the closed interval [from, BoundedMax].
func Unbounded(from int64) Interval { return Interval{Inf: from, Sup: BoundedMax} }

// Width returns Sup - Inf + 1, or 0 if the interval is empty.
func (iv Interval) Width() int64 {
	if iv.Sup < iv.Inf {
		return 0
	}
	return iv.Sup - iv.Inf + 1
}

// Empty reports whether the interval contains no points.
func (iv Interval) Empty() bool { return iv.Sup < iv.Inf }

// Contains reports whether t lies within the closed interval.
func (iv Interval) Contains(t int64) bool { return t >= iv.Inf && t <= iv.Sup }

// Intersect returns the closed intersection of iv and o. The result may be
// Empty.
func (iv Interval) Intersect(o Interval) Interval {
	lo := iv.Inf
	if o.Inf > lo {
		lo = o.Inf
	}
	hi := iv.Sup
	if o.Sup < hi {
		hi = o.Sup
	}
	return Interval{Inf: lo, Sup: hi}
}

// Constraint is a time constraint: an admissible start interval and an
// admissible duration interval, both closed, per §4.A.
type Constraint struct {
	Available Interval
	Duration  Interval
}

// Admits reports whether the closed interval [start, start+dur-1] satisfies
// this constraint: start >= Available.Inf, start+dur-1 <= Available.Sup, and
// Duration.Inf <= dur <= Duration.Sup.
func (c Constraint) Admits(start, dur int64) bool {
	if dur < c.Duration.Inf || dur > c.Duration.Sup {
		return false
	}
	if start < c.Available.Inf {
		return false
	}
	if start+dur-1 > c.Available.Sup {
		return false
	}
	return true
}

// EarliestStart returns the smallest start tick no earlier than `from` that
// this constraint could admit for some admissible duration, i.e.
// max(from, Available.Inf). It does not by itself guarantee a decision
// exists; callers must still call Admits with a concrete duration.
func (c Constraint) EarliestStart(from int64) int64 {
	if c.Available.Inf > from {
		return c.Available.Inf
	}
	return from
}
