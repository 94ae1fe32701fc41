package seqtree

import (
	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/journal"
)

// Node is one position in the sequence tree: a coverage set, a
// pointer at the next candidate variant, and the edit history
// (entries) that realizes this node's label over the reference.
//
// Two invariants hold across every NextRef/NextAlt step:
//   - coverage only ever shrinks (intersection or difference of the
//     parent's coverage with a variant's coverage);
//   - entries only ever grows, and only on next_alt.
type Node struct {
	tree       *Tree
	variantIdx int
	coverage   *coverage.Set
	state      State
	entries    []journal.Entry

	// initialBreakendIdx/path are seek bookkeeping (spec.md §4.E
	// Seek), populated only once state == OnAlternate.
	initialBreakendIdx int
	path               []bool
}

// Coverage returns the set of members whose sequence agrees with this
// node's label at this point in the tree.
func (n *Node) Coverage() *coverage.Set { return n.coverage }

// State reports n's position in the spec.md §4.E state machine: Sink
// once no further branch exists, else whichever of
// OnReference/OnAlternate the path taken to reach n last set.
func (n *Node) State() State {
	if n.IsTerminal() {
		return Sink
	}
	return n.state
}

// candidate returns the variant this node would branch on next, and
// whether one exists.
func (n *Node) candidate() (variantIdx int, ok bool) {
	if n.variantIdx >= n.tree.store.Len() {
		return 0, false
	}
	return n.variantIdx, true
}

// NextRef steps across the reference edge: the candidate variant at
// n's frontier is excluded from coverage, and the walk considers the
// next candidate without advancing the journal. Returns nil if there
// is no candidate left, or if excluding it leaves no covered member.
func (n *Node) NextRef() *Node {
	idx, ok := n.candidate()
	if !ok {
		return nil
	}
	v := n.tree.store.At(idx)
	newCov := n.coverage.AndNot(v.Coverage)
	if newCov.None() {
		return nil
	}
	child := &Node{
		tree:       n.tree,
		variantIdx: idx + 1,
		coverage:   newCov,
		state:      n.state, // next_ref never leaves OnReference, and never leaves OnAlternate
		entries:    n.entries,
	}
	if n.state == OnAlternate {
		child.initialBreakendIdx = n.initialBreakendIdx
		child.path = appendBit(n.path, false)
	}
	return child
}

// NextAlt steps across the alternate edge of the candidate variant at
// n's frontier: coverage narrows to members carrying it, the variant's
// edit is appended to the journal, and the frontier skips forward past
// any remaining candidate whose low lies inside the variant's span (so
// a deletion suppresses a co-located insertion on a shared member: the
// insertion's candidate slot is skipped, never offered as next_alt,
// because its low falls before the deletion's new high). Returns nil
// if there is no candidate left, or if narrowing coverage leaves no
// covered member.
func (n *Node) NextAlt() *Node {
	idx, ok := n.candidate()
	if !ok {
		return nil
	}
	v := n.tree.store.At(idx)
	newCov := n.coverage.And(v.Coverage)
	if newCov.None() {
		return nil
	}

	nextIdx := idx + 1
	for nextIdx < n.tree.store.Len() && n.tree.store.At(nextIdx).Breakpoint.Low < v.Breakpoint.High {
		nextIdx++
	}

	entries := make([]journal.Entry, len(n.entries)+1)
	copy(entries, n.entries)
	entries[len(n.entries)] = journal.Entry{Low: v.Breakpoint.Low, High: v.Breakpoint.High, Payload: v.Alt}

	child := &Node{
		tree:       n.tree,
		variantIdx: nextIdx,
		coverage:   newCov,
		state:      OnAlternate,
		entries:    entries,
	}
	if n.state == OnAlternate {
		child.initialBreakendIdx = n.initialBreakendIdx
		child.path = appendBit(n.path, true)
	} else {
		child.initialBreakendIdx = idx
		child.path = nil
	}
	return child
}

func appendBit(path []bool, bit bool) []bool {
	out := make([]bool, len(path)+1)
	copy(out, path)
	out[len(path)] = bit
	return out
}

// IsTerminal reports whether n is the sink: no next_ref or next_alt
// child exists, so its label runs to the end of the reference.
func (n *Node) IsTerminal() bool {
	return n.NextRef() == nil && n.NextAlt() == nil
}

// Label materializes n's full label: the whole member sequence from
// position 0 to the end of the reference, with n's recorded edits
// applied and the reference left untouched after them. Intended for
// tests and short labels; hot
// paths (the labelled adaptor) should use LabelCursor instead so that
// emitting the next character stays amortized O(1).
func (n *Node) Label() []byte {
	j := journalFor(n.tree.store.Source(), n.entries)
	return j.Materialize()
}

// LabelCursor returns a lazily-advancing cursor over n's label.
func (n *Node) LabelCursor() *journal.Cursor {
	j := journalFor(n.tree.store.Source(), n.entries)
	return j.Sequence()
}

// Position returns the Descriptor that Seek can use to reconstruct an
// equivalent node (spec.md §4.E Seek; round-trip property in §8.5).
func (n *Node) Position() Descriptor {
	if n.state != OnAlternate {
		return Descriptor{BreakendIdx: n.variantIdx, BreakendOnly: true}
	}
	path := make([]bool, len(n.path))
	copy(path, n.path)
	return Descriptor{BreakendIdx: n.initialBreakendIdx, AltPath: path}
}
