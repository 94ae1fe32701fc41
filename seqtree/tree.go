// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package seqtree implements the sequence tree: the implicit trie of
// every member sequence a compressed multi-sequence store encodes,
// realized by branching at each catalogued variant rather than by
// materializing every member. See spec.md §4.E.
package seqtree

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/journal"
	"github.com/grailbio/jst/variant"
)

// Store is the view a Tree needs of its backing catalog: a reference
// sequence, a coverage domain size, and a sorted variant catalog. Any
// of rcms.Store, rcms.Composite, or rcms.ReversedView satisfy it
// structurally, so this package never imports rcms directly — the
// reverse tree (spec.md §4.E "Reverse tree") is simply a Tree built
// over an rcms.ReversedView.
type Store interface {
	Source() []byte
	Size() int
	Len() int
	At(i int) variant.Variant
}

// validator is implemented by stores that can check their own
// invariants before a Tree is built over them (rcms.Store). Stores
// that don't implement it (composites, views
// derived from an already-validated store) are trusted as-is.
type validator interface {
	Validate() error
}

// ErrStoreMalformed mirrors rcms.ErrStoreMalformed: a Tree refuses to
// be built over a store that fails its own Validate.
var ErrStoreMalformed = errors.New("seqtree: store malformed")

// Tree is the sequence tree over a Store. It holds no mutable state
// of its own; all traversal state lives in the Node values it
// produces.
type Tree struct {
	store Store
}

// New builds a Tree over store, rejecting a malformed store (spec.md
// §4.E "Failure") if the store exposes a Validate method.
func New(store Store) (*Tree, error) {
	if v, ok := store.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, errors.Wrap(err, "seqtree: refusing to build tree over malformed store")
		}
	}
	return &Tree{store: store}, nil
}

// Reference returns the tree's backing reference sequence.
func (t *Tree) Reference() []byte { return t.store.Source() }

// Size returns N, the coverage domain.
func (t *Tree) Size() int { return t.store.Size() }

// Root returns the tree's root node: full coverage, positioned before
// the first catalogued variant (or, with no variants, the single
// terminal node covering the whole reference).
func (t *Tree) Root() *Node {
	return &Node{
		tree:       t,
		variantIdx: 0,
		coverage:   coverage.Full(t.store.Size()),
		state:      OnReference,
	}
}

// nodeAtBreakend reconstructs the pure-reference node positioned
// immediately before candidate variant idx: the coverage that
// survives having taken next_ref at every variant before idx. Pure
// reference nodes never record a journal entry (their label is the
// untouched reference, materialized lazily), so this reconstruction
// needs no prevHigh/entries bookkeeping.
func (t *Tree) nodeAtBreakend(idx int) *Node {
	cov := coverage.Full(t.store.Size())
	for i := 0; i < idx && i < t.store.Len(); i++ {
		cov = cov.AndNot(t.store.At(i).Coverage)
	}
	return &Node{tree: t, variantIdx: idx, coverage: cov, state: OnReference}
}

// SeekReference returns the pure-reference node positioned at
// reference coordinate pos: every candidate variant whose low
// breakend precedes pos has already been stepped across via NextRef.
// It roots a verification subtree directly at a known reference
// position rather than replaying a Descriptor, the way the left
// extension tree of spec.md §4.H step 2 is rooted at "the
// reverse-mapped seed position" of a forward match.
//
// This assumes next_ref was taken at every earlier variant, which only
// holds when pos itself precedes every variant a real match could have
// crossed. A left extension root built from a forward seed's own
// position does not satisfy that: the seed's matched span can itself
// straddle a variant the seed took as an alternate edge, and that
// variant's mirrored breakend still lies before pos in the reverse
// tree's own ordering. Callers in that position should use
// SeekReferenceWithCoverage with the seed node's own coverage instead.
func (t *Tree) SeekReference(pos int) *Node {
	return t.SeekReferenceWithCoverage(pos, nil)
}

// SeekReferenceWithCoverage is SeekReference, but takes the node's
// coverage from cov instead of folding over every candidate variant
// before pos starting from full coverage. Pass nil to get
// SeekReference's own fold-from-Full behaviour.
//
// A caller rooting a left extension tree at a forward match's
// reverse-mapped position already knows the correct coverage at pos:
// the forward seed node's own Coverage(), which already accounts for
// every variant between pos and the seed correctly — including ones
// the matched member took as an alternate edge. Re-deriving coverage
// by folding AndNot over the reverse tree's own candidate variants
// would assume next_ref was taken at all of them, which is wrong
// whenever the match actually crossed one as an alternate.
func (t *Tree) SeekReferenceWithCoverage(pos int, cov *coverage.Set) *Node {
	idx := sort.Search(t.store.Len(), func(i int) bool {
		return t.store.At(i).Breakpoint.Low >= pos
	})
	if cov != nil {
		return &Node{tree: t, variantIdx: idx, coverage: cov, state: OnReference}
	}
	return t.nodeAtBreakend(idx)
}

// State is a node's position relative to the catalogued variants.
type State uint8

const (
	// OnReference: every edge taken so far has been next_ref.
	OnReference State = iota
	// OnAlternate: at least one next_alt has been taken.
	OnAlternate
	// Sink: terminal; no further branch exists.
	Sink
)

func (s State) String() string {
	switch s {
	case OnReference:
		return "OnReference"
	case OnAlternate:
		return "OnAlternate"
	case Sink:
		return "Sink"
	default:
		return "unknown"
	}
}

// Descriptor identifies a node by the (initial breakend, alt-path)
// pair spec.md §4.E's Seek describes. BreakendOnly descriptors name a
// pure-reference node; otherwise AltPath replays next_alt(true) /
// next_ref(false) from the initial alt node at BreakendIdx.
type Descriptor struct {
	BreakendIdx  int
	BreakendOnly bool
	AltPath      []bool
}

// journalFor rebuilds a Journal over this node's recorded entries.
// Pure-reference nodes (entries == nil) realize the untouched
// reference.
func journalFor(ref []byte, entries []journal.Entry) *journal.Journal {
	j := journal.New(ref)
	for _, e := range entries {
		// Entries were validated in non-decreasing order when first
		// recorded by NextAlt; replaying them here cannot fail.
		if err := j.RecordEdit(e.Low, e.High, e.Payload); err != nil {
			panic(err)
		}
	}
	return j
}
