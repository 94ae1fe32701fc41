package rcms

import (
	"sort"
	"sync"

	"github.com/grailbio/jst/variant"
)

// ReversedView is a non-owning, right-to-left view of a Store: the
// reference reads backwards and every breakpoint and alt sequence is
// mirrored through the reference length, so building the reverse
// sequence tree (spec.md §4.E) over it is just building a forward tree
// over this view. Per spec.md §3 C, the view holds a borrow of the
// store, never a copy: at construction it keeps only a pointer back to
// s and the catalog's reversed sort order (a slice of indices, not of
// variants); Source/At compute their results by mapping positions and
// reversing bytes through the reference length at access time, exactly
// the accessor contract spec.md §4.B prescribes for a reversed view.
type ReversedView struct {
	store *Store
	n     int
	// order holds indices into store.variants, permuted into the
	// reversed catalog's own composite-key order (reversing inverts
	// relative order, so the permutation is rarely the identity).
	order []int

	sourceOnce sync.Once
	sourceBuf  []byte
}

// Reversed returns the reversed view of s. Building it only sorts a
// slice of indices under the reversed composite key; no reference or
// alt bytes are copied until Source or At is actually called.
func (s *Store) Reversed() *ReversedView {
	refLen := len(s.reference)
	order := make([]int, len(s.variants))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return reversedLess(s.variants[order[i]], s.variants[order[j]], refLen)
	})
	return &ReversedView{store: s, n: s.n, order: order}
}

// reversedLess compares two forward variants under the composite key
// spec.md §3 C defines, as the reversed view (not the forward store)
// would order them: low/high mapped through refLen, and Alt compared
// byte-reversed rather than materializing the reversed Alt for both
// operands in full.
func reversedLess(a, b variant.Variant, refLen int) bool {
	aLow, aHigh := refLen-a.Breakpoint.High, refLen-a.Breakpoint.Low
	bLow, bHigh := refLen-b.Breakpoint.High, refLen-b.Breakpoint.Low
	if aLow != bLow {
		return aLow < bLow
	}
	if aHigh != bHigh {
		return aHigh > bHigh
	}
	if aLow == aHigh && len(a.Alt) != len(b.Alt) {
		return len(a.Alt) > len(b.Alt)
	}
	return reverseBytesCompare(a.Alt, b.Alt) < 0
}

// reverseBytesCompare compares a and b as if both were read back to
// front, without allocating either reversal.
func reverseBytesCompare(a, b []byte) int {
	la, lb := len(a), len(b)
	for i := 0; i < la && i < lb; i++ {
		x, y := a[la-1-i], b[lb-1-i]
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}

// Source returns the reversed reference sequence, materialized the
// first time it is requested and memoized for the life of the view
// (construction itself never allocates it).
func (rv *ReversedView) Source() []byte {
	rv.sourceOnce.Do(func() {
		rv.sourceBuf = reverseBytes(rv.store.reference)
	})
	return rv.sourceBuf
}

// Size returns N.
func (rv *ReversedView) Size() int { return rv.n }

// Len returns the number of variants in the reversed catalog.
func (rv *ReversedView) Len() int { return len(rv.order) }

// At returns the i'th variant of the reversed catalog, in reversed
// composite-key order. Breakpoint and Alt are computed from the
// borrowed forward variant at call time, per spec.md §4.B ("for the
// reversed view, accessors map positions through the reference
// length"); Coverage is the same borrowed pointer the forward store
// holds, never copied.
func (rv *ReversedView) At(i int) variant.Variant {
	v := rv.store.variants[rv.order[i]]
	refLen := len(rv.store.reference)
	low := refLen - v.Breakpoint.High
	high := refLen - v.Breakpoint.Low
	return variant.New(low, high, reverseBytes(v.Alt), v.Coverage)
}

// ToForwardPosition maps a position expressed against the reversed
// reference (of length n) back to the forward reference.
// ToForwardPosition and ToReversePosition form an involution:
// ToForwardPosition(n, ToReversePosition(n, p)) == p for every p.
func ToForwardPosition(n, revPos int) int { return n - revPos }

// ToReversePosition maps a forward-reference position to the
// corresponding position on the reversed reference of length n.
func ToReversePosition(n, fwdPos int) int { return n - fwdPos }

func reverseBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	r := make([]byte, len(b))
	for i, c := range b {
		r[len(b)-1-i] = c
	}
	return r
}
