// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package variant defines the positional-edit value types the
// compressed multi-sequence store (package rcms) catalogs: a
// Breakpoint locates an edit on the reference, and a Variant attaches
// an alt sequence and a member coverage to it. See spec.md §3 B.
package variant

import (
	"bytes"

	"github.com/grailbio/jst/coverage"
)

// Breakpoint is a half-open interval [Low, High) on the reference. A
// pure insertion has Low == High.
type Breakpoint struct {
	Low, High int
}

// NewBreakpoint normalizes High >= Low, per spec.md §4.B.
func NewBreakpoint(low, high int) Breakpoint {
	if high < low {
		high = low
	}
	return Breakpoint{Low: low, High: high}
}

// Span returns High - Low, the number of reference bases this
// breakpoint replaces.
func (b Breakpoint) Span() int { return b.High - b.Low }

// Kind classifies a Variant by its breakpoint span and alt length. It
// is derived, never stored, per spec.md §3 B.
type Kind uint8

const (
	// KindReplacement covers both multi-base replacements and
	// single-base substitutions: span > 0 and len(alt) > 0.
	KindReplacement Kind = iota
	// KindInsertion: span == 0 and len(alt) > 0.
	KindInsertion
	// KindDeletion: span > 0 and len(alt) == 0.
	KindDeletion
)

func (k Kind) String() string {
	switch k {
	case KindReplacement:
		return "replacement"
	case KindInsertion:
		return "insertion"
	case KindDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// Variant is a single catalogued difference from the reference: a
// breakpoint, the alt sequence that replaces it, and the set of
// members that carry it. Alt is owned by the enclosing store; Variant
// only ever holds a borrowed slice of it.
type Variant struct {
	Breakpoint Breakpoint
	Alt        []byte
	Coverage   *coverage.Set
}

// New constructs a Variant. low/high are normalized via NewBreakpoint.
func New(low, high int, alt []byte, cov *coverage.Set) Variant {
	return Variant{Breakpoint: NewBreakpoint(low, high), Alt: alt, Coverage: cov}
}

// Kind classifies the variant per the rules in spec.md §3 B.
func (v Variant) Kind() Kind {
	span := v.Breakpoint.Span()
	switch {
	case span > 0 && len(v.Alt) > 0:
		return KindReplacement
	case span == 0 && len(v.Alt) > 0:
		return KindInsertion
	default:
		return KindDeletion
	}
}

// DeltaLen returns the effective length change this variant introduces:
// len(Alt) - Span.
func (v Variant) DeltaLen() int {
	return len(v.Alt) - v.Breakpoint.Span()
}

// Less implements the composite sort key from spec.md §3 C / §4.C:
// (low, -high, lexicographic alt_sequence). At equal low, higher-high
// (larger span) variants sort first so deletions are considered before
// co-located insertions. Pure insertions at the same low sort by
// decreasing alt length; remaining ties are broken lexicographically
// on Alt.
func Less(a, b Variant) bool {
	if a.Breakpoint.Low != b.Breakpoint.Low {
		return a.Breakpoint.Low < b.Breakpoint.Low
	}
	if a.Breakpoint.High != b.Breakpoint.High {
		return a.Breakpoint.High > b.Breakpoint.High
	}
	if a.Breakpoint.Low == a.Breakpoint.High && len(a.Alt) != len(b.Alt) {
		return len(a.Alt) > len(b.Alt)
	}
	return bytes.Compare(a.Alt, b.Alt) < 0
}

// Overlaps reports whether a and b's breakpoints share any reference
// position. Pure insertions (Low==High) are treated as overlapping
// another breakpoint only if they fall strictly inside it; two
// co-located pure insertions at the same Low do not overlap each other
// under this definition, matching the co-located-insertion tie-break in
// spec.md §4.C (they are siblings, not conflicts).
func (a Variant) Overlaps(b Variant) bool {
	aLow, aHigh := a.Breakpoint.Low, a.Breakpoint.High
	bLow, bHigh := b.Breakpoint.Low, b.Breakpoint.High
	if aLow == aHigh && bLow == bHigh {
		return false
	}
	return aLow < bHigh && bLow < aHigh
}
