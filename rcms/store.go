// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package rcms implements the compressed multi-sequence store: a
// reference sequence plus a sorted catalog of variants, each carrying
// the set of members that exhibit it. See spec.md §3 C / §4.C.
package rcms

import (
	"sort"

	"github.com/biogo/store/interval"
	"github.com/pkg/errors"

	"github.com/grailbio/jst/variant"
)

// ErrStoreMalformed is returned when a store is loaded from a
// representation whose variant list is unsorted or otherwise
// inconsistent with the invariants this package maintains on write.
var ErrStoreMalformed = errors.New("rcms: store malformed")

// ErrCoverageConflict is returned by Insert when the candidate variant
// overlaps an already-catalogued variant and the two share at least
// one member.
var ErrCoverageConflict = errors.New("rcms: coverage conflict")

// Store is the generic compressed multi-sequence store: a reference
// sequence and a sort.Search-ordered catalog of variants, indexed by
// a biogo/store/interval.IntTree for O(log M) overlap queries on
// insert. Variants are kept in a single contiguous sorted slice
// (rather than a tree) because the reversed view (ReversedView) needs
// positional addressing into that slice, not tree-node addressing.
type Store struct {
	reference []byte
	n         int // member count (|coverage domain|)
	variants  []variant.Variant
	tree      interval.IntTree
	nextID    uintptr
}

// New returns an empty Store over the given reference sequence with
// an N-member coverage domain. The reference is borrowed, not copied.
func New(reference []byte, n int) *Store {
	return &Store{reference: reference, n: n}
}

// Source returns the reference sequence this store's variants are
// expressed against.
func (s *Store) Source() []byte { return s.reference }

// Size returns N, the number of members this store's variants can
// cover.
func (s *Store) Size() int { return s.n }

// Len returns the number of catalogued variants.
func (s *Store) Len() int { return len(s.variants) }

// At returns the i'th variant in sort order.
func (s *Store) At(i int) variant.Variant { return s.variants[i] }

// Variants returns the full sorted catalog. The returned slice is
// owned by the store and must not be mutated by the caller.
func (s *Store) Variants() []variant.Variant { return s.variants }

// variantInterval adapts a variant.Variant's breakpoint to
// interval.IntInterface so the conflict-detection tree can query by
// reference range. id is a monotonic counter, not a slice index: the
// sorted variants slice shifts on insertion, but tree entries must
// keep a stable identity once inserted.
type variantInterval struct {
	id uintptr
	v  variant.Variant
}

// Overlap mirrors variant.Variant.Overlaps: two pure insertions
// (Start==End on both sides) are siblings, not conflicts, matching
// the co-located-insertion tie-break in spec.md §4.C.
func (vi variantInterval) Overlap(b interval.IntRange) bool {
	low, high := vi.v.Breakpoint.Low, vi.v.Breakpoint.High
	if low == high && b.Start == b.End {
		return false
	}
	return low < b.End && b.Start < high
}

func (vi variantInterval) ID() uintptr { return vi.id }

func (vi variantInterval) Range() interval.IntRange {
	return interval.IntRange{Start: vi.v.Breakpoint.Low, End: vi.v.Breakpoint.High}
}

// Insert adds v to the catalog in its ordered position (§3 C / §4.C
// composite key), returning the resulting index. It fails with
// ErrCoverageConflict if v overlaps an existing variant and the two
// share a covered member; the insert is rejected in that case.
func (s *Store) Insert(v variant.Variant) (int, error) {
	query := variantInterval{v: v}
	for _, hit := range s.tree.Get(query) {
		existing := hit.(variantInterval).v
		shared := existing.Coverage.And(v.Coverage)
		if shared.Any() {
			return -1, errors.Wrapf(ErrCoverageConflict,
				"rcms: variant at [%d,%d) conflicts with existing [%d,%d)",
				v.Breakpoint.Low, v.Breakpoint.High, existing.Breakpoint.Low, existing.Breakpoint.High)
		}
	}

	idx := sort.Search(len(s.variants), func(i int) bool {
		return !variant.Less(s.variants[i], v)
	})
	s.variants = append(s.variants, variant.Variant{})
	copy(s.variants[idx+1:], s.variants[idx:])
	s.variants[idx] = v

	if err := s.tree.Insert(variantInterval{id: s.nextID, v: v}, true); err != nil {
		return -1, errors.Wrap(err, "rcms: interval tree insert")
	}
	s.nextID++
	s.tree.AdjustRanges()

	return idx, nil
}

// Validate checks the invariants a loaded store must hold: the
// variant slice is sorted by the composite key and every breakpoint
// satisfies low <= high. It is the load-time counterpart of the
// invariants Insert maintains incrementally.
func (s *Store) Validate() error {
	for i := 1; i < len(s.variants); i++ {
		if variant.Less(s.variants[i], s.variants[i-1]) {
			return errors.Wrapf(ErrStoreMalformed, "rcms: variant %d out of order", i)
		}
	}
	for i, v := range s.variants {
		if v.Breakpoint.Low > v.Breakpoint.High {
			return errors.Wrapf(ErrStoreMalformed, "rcms: variant %d has low > high", i)
		}
		if v.Coverage != nil && v.Coverage.Domain() != s.n {
			return errors.Wrapf(ErrStoreMalformed, "rcms: variant %d coverage domain %d != store %d", i, v.Coverage.Domain(), s.n)
		}
	}
	return nil
}
