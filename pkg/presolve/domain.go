// Package presolve implements the rule-driven rewriting engine of a
// presolver for a flat constraint-satisfaction/optimization model: a
// library of rewrite rules, a fixed-point driver, a variable-equivalence
// subsystem, cross-constraint recognition passes, and a terminal cleanup
// pass. See SPEC_FULL.md for the full specification this package
// implements.
package presolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Domain represents the admissible integer values of a variable. Every
// implementation is immutable: operations return a new Domain rather than
// mutating the receiver, which lets a Variable swap its domain field with a
// plain assignment and lets two variables share a Domain value safely.
//
// A Domain is expressed as either a single interval [lo, hi] (the common
// case for decision variables fresh from flattening, including variables
// whose bounds are one of the two infinity sentinels) or an explicit sorted
// set of values (after enough pruning, or when the domain was never
// convex to begin with, e.g. {1,2,3} \ {2}). Every operation picks
// whichever representation is tightest: an IntervalDomain that has a hole
// punched in it by RemoveValue becomes a ListDomain; a ListDomain that
// happens to cover every value in its own [Min,Max] collapses back to an
// IntervalDomain.
type Domain interface {
	// Min returns the smallest admissible value, or PositiveInfinity if the
	// domain is empty.
	Min() int64
	// Max returns the largest admissible value, or NegativeInfinity if the
	// domain is empty.
	Max() int64
	// IsEmpty reports whether the domain admits no values at all.
	IsEmpty() bool
	// HasOneValue reports whether the domain is a singleton (Min == Max).
	HasOneValue() bool
	// Value returns the sole admissible value. Behavior is undefined if
	// HasOneValue is false.
	Value() int64
	// Contains reports whether v is admissible.
	Contains(v int64) bool
	// Size returns the number of admissible values, saturating at
	// PositiveInfinity for unbounded or very wide domains.
	Size() int64
	// IntersectInterval returns the tightest Domain admitting only values
	// also within [lo, hi].
	IntersectInterval(lo, hi int64) Domain
	// IntersectList returns the tightest Domain admitting only values also
	// present in values.
	IntersectList(values []int64) Domain
	// RemoveValue returns a Domain with v excluded.
	RemoveValue(v int64) Domain
	// Intersect returns the tightest Domain admitting only values present
	// in both receivers.
	Intersect(other Domain) Domain
	// Equal reports whether two domains admit exactly the same values.
	Equal(other Domain) bool
	// ForEach calls f once per admissible value in ascending order.
	// Behavior is undefined (and almost certainly not what the caller
	// wants) if called on an unbounded interval domain; callers that may
	// be handed one should check Size() first.
	ForEach(f func(v int64))
	// String renders the domain for diagnostics and verbose logging.
	String() string
}

// listBitsetSpanLimit bounds how wide [min,max] may be before ListDomain
// falls back from a bitset.BitSet to a sorted []int64. Above this span a
// bitset would allocate more words than the explicit value count could
// possibly justify.
const listBitsetSpanLimit = 1 << 20

// IntervalDomain is a convex range of admissible integers, possibly
// unbounded on either side via the PositiveInfinity/NegativeInfinity
// sentinels.
type IntervalDomain struct {
	lo, hi int64
}

// NewIntervalDomain returns the Domain [lo, hi]. If hi < lo the result is
// the canonical empty domain (lo==PositiveInfinity, hi==NegativeInfinity).
func NewIntervalDomain(lo, hi int64) *IntervalDomain {
	if hi < lo {
		return &IntervalDomain{lo: PositiveInfinity, hi: NegativeInfinity}
	}
	return &IntervalDomain{lo: lo, hi: hi}
}

func (d *IntervalDomain) Min() int64 { return d.lo }
func (d *IntervalDomain) Max() int64 { return d.hi }

func (d *IntervalDomain) IsEmpty() bool { return d.hi < d.lo }

func (d *IntervalDomain) HasOneValue() bool { return !d.IsEmpty() && d.lo == d.hi }

func (d *IntervalDomain) Value() int64 { return d.lo }

func (d *IntervalDomain) Contains(v int64) bool {
	return !d.IsEmpty() && v >= d.lo && v <= d.hi
}

func (d *IntervalDomain) Size() int64 {
	if d.IsEmpty() {
		return 0
	}
	if isInfinite(d.lo) || isInfinite(d.hi) {
		return PositiveInfinity
	}
	return d.hi - d.lo + 1
}

func (d *IntervalDomain) IntersectInterval(lo, hi int64) Domain {
	newLo := d.lo
	if lo > newLo {
		newLo = lo
	}
	newHi := d.hi
	if hi < newHi {
		newHi = hi
	}
	return NewIntervalDomain(newLo, newHi)
}

func (d *IntervalDomain) IntersectList(values []int64) Domain {
	return newListDomain(values).IntersectInterval(d.lo, d.hi)
}

func (d *IntervalDomain) RemoveValue(v int64) Domain {
	if !d.Contains(v) {
		return d
	}
	switch {
	case v == d.lo && v == d.hi:
		return NewIntervalDomain(PositiveInfinity, NegativeInfinity)
	case v == d.lo:
		return NewIntervalDomain(d.lo+1, d.hi)
	case v == d.hi:
		return NewIntervalDomain(d.lo, d.hi-1)
	default:
		// Punching a hole in the middle of an interval forces the
		// explicit-set representation.
		values := make([]int64, 0, d.Size())
		d.ForEach(func(x int64) {
			if x != v {
				values = append(values, x)
			}
		})
		return newListDomain(values)
	}
}

func (d *IntervalDomain) Intersect(other Domain) Domain {
	switch o := other.(type) {
	case *IntervalDomain:
		return d.IntersectInterval(o.lo, o.hi)
	case *ListDomain:
		return o.IntersectInterval(d.lo, d.hi)
	default:
		return d.IntersectInterval(other.Min(), other.Max())
	}
}

func (d *IntervalDomain) Equal(other Domain) bool {
	if o, ok := other.(*IntervalDomain); ok {
		if d.IsEmpty() && o.IsEmpty() {
			return true
		}
		return d.lo == o.lo && d.hi == o.hi
	}
	return d.Size() == other.Size() && d.Min() == other.Min() && d.Max() == other.Max() && !isInfinite(d.Size())
}

func (d *IntervalDomain) ForEach(f func(v int64)) {
	for v := d.lo; v <= d.hi; v++ {
		f(v)
	}
}

func (d *IntervalDomain) String() string {
	if d.IsEmpty() {
		return "{}"
	}
	if d.HasOneValue() {
		return fmt.Sprintf("{%d}", d.lo)
	}
	return fmt.Sprintf("[%s..%s]", boundString(d.lo), boundString(d.hi))
}

func boundString(v int64) string {
	switch {
	case v >= PositiveInfinity:
		return "+inf"
	case v <= NegativeInfinity:
		return "-inf"
	default:
		return fmt.Sprintf("%d", v)
	}
}

// ListDomain is an explicit, non-convex set of admissible integers. It is
// backed by a *bitset.BitSet (offset to the set's own minimum) when the
// set's span is bounded enough to make a bitset cheaper than a sorted
// slice; otherwise it falls back to a sorted []int64. Either way it is
// immutable: every mutating-looking method returns a new ListDomain.
type ListDomain struct {
	min, max int64
	bits     *bitset.BitSet // nil when using the sparse fallback
	sparse   []int64        // nil when bits != nil; always sorted, deduped
}

// newListDomain builds the tightest ListDomain admitting exactly the
// distinct values given (order and duplicates are irrelevant).
func newListDomain(values []int64) *ListDomain {
	if len(values) == 0 {
		return &ListDomain{min: PositiveInfinity, max: NegativeInfinity}
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	deduped := sorted[:1]
	for _, v := range sorted[1:] {
		if v != deduped[len(deduped)-1] {
			deduped = append(deduped, v)
		}
	}
	min, max := deduped[0], deduped[len(deduped)-1]
	if span := max - min; span >= 0 && span < listBitsetSpanLimit {
		bs := bitset.New(uint(span) + 1)
		for _, v := range deduped {
			bs.Set(uint(v - min))
		}
		return &ListDomain{min: min, max: max, bits: bs}
	}
	return &ListDomain{min: min, max: max, sparse: deduped}
}

func (d *ListDomain) Min() int64 { return d.min }
func (d *ListDomain) Max() int64 { return d.max }

func (d *ListDomain) IsEmpty() bool { return d.max < d.min }

func (d *ListDomain) HasOneValue() bool { return !d.IsEmpty() && d.min == d.max }

func (d *ListDomain) Value() int64 { return d.min }

func (d *ListDomain) Contains(v int64) bool {
	if d.IsEmpty() || v < d.min || v > d.max {
		return false
	}
	if d.bits != nil {
		return d.bits.Test(uint(v - d.min))
	}
	i := sort.Search(len(d.sparse), func(i int) bool { return d.sparse[i] >= v })
	return i < len(d.sparse) && d.sparse[i] == v
}

func (d *ListDomain) Size() int64 {
	if d.IsEmpty() {
		return 0
	}
	if d.bits != nil {
		return int64(d.bits.Count())
	}
	return int64(len(d.sparse))
}

// values materializes the admissible values in ascending order. Used
// internally by operations that need to rebuild from scratch; callers that
// merely want to visit values should prefer ForEach.
func (d *ListDomain) values() []int64 {
	if d.IsEmpty() {
		return nil
	}
	if d.sparse != nil {
		return d.sparse
	}
	out := make([]int64, 0, d.bits.Count())
	for i, e := d.bits.NextSet(0); e; i, e = d.bits.NextSet(i + 1) {
		out = append(out, d.min+int64(i))
	}
	return out
}

func (d *ListDomain) ForEach(f func(v int64)) {
	if d.IsEmpty() {
		return
	}
	if d.sparse != nil {
		for _, v := range d.sparse {
			f(v)
		}
		return
	}
	for i, e := d.bits.NextSet(0); e; i, e = d.bits.NextSet(i + 1) {
		f(d.min + int64(i))
	}
}

func (d *ListDomain) IntersectInterval(lo, hi int64) Domain {
	if d.IsEmpty() || hi < lo {
		return emptyDomain()
	}
	out := make([]int64, 0, d.Size())
	d.ForEach(func(v int64) {
		if v >= lo && v <= hi {
			out = append(out, v)
		}
	})
	return compact(out)
}

func (d *ListDomain) IntersectList(values []int64) Domain {
	other := newListDomain(values)
	return d.Intersect(other)
}

func (d *ListDomain) RemoveValue(v int64) Domain {
	if !d.Contains(v) {
		return d
	}
	out := make([]int64, 0, d.Size()-1)
	d.ForEach(func(x int64) {
		if x != v {
			out = append(out, x)
		}
	})
	return compact(out)
}

func (d *ListDomain) Intersect(other Domain) Domain {
	if d.IsEmpty() {
		return d
	}
	lo, hi := other.Min(), other.Max()
	if lo > d.max || hi < d.min {
		return emptyDomain()
	}
	out := make([]int64, 0, d.Size())
	d.ForEach(func(v int64) {
		if other.Contains(v) {
			out = append(out, v)
		}
	})
	return compact(out)
}

func (d *ListDomain) Equal(other Domain) bool {
	if d.Size() != other.Size() || d.Min() != other.Min() || d.Max() != other.Max() {
		return false
	}
	equal := true
	d.ForEach(func(v int64) {
		if !other.Contains(v) {
			equal = false
		}
	})
	return equal
}

func (d *ListDomain) String() string {
	if d.IsEmpty() {
		return "{}"
	}
	vals := d.values()
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		if i >= 20 && len(vals) > 21 {
			fmt.Fprintf(&b, "...+%d more", len(vals)-i)
			break
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte('}')
	return b.String()
}

// compact returns the tightest Domain for the given distinct, already-
// filtered values: an IntervalDomain if they form a contiguous run, a
// ListDomain otherwise. Passing an empty slice yields the empty domain.
func compact(values []int64) Domain {
	if len(values) == 0 {
		return emptyDomain()
	}
	ld := newListDomain(values)
	if ld.Size() == ld.max-ld.min+1 {
		return NewIntervalDomain(ld.min, ld.max)
	}
	return ld
}

func emptyDomain() Domain {
	return NewIntervalDomain(PositiveInfinity, NegativeInfinity)
}

// NewListDomain is the exported constructor mirrored from newListDomain,
// returning the tightest Domain (possibly an IntervalDomain) admitting
// exactly the given values.
func NewListDomain(values []int64) Domain {
	return compact(values)
}
