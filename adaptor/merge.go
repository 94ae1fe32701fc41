package adaptor

import (
	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/journal"
	"github.com/grailbio/jst/seqtree"
)

// mergeNode collapses redundant reference nodes with identical
// (boundary, coverage): a shared map, keyed by a fingerprint of the
// node's seek descriptor and its coverage's highwayhash fingerprint
// (coverage.Set.Fingerprint), records every (boundary, coverage) pair
// already produced anywhere in the tree. A child whose pair was
// already seen is reported as exhausted rather than re-walked, which
// is the mechanism spec.md §4.F credits with the "each context visited
// exactly once" guarantee (§8 property 2).
type mergeNode struct {
	inner CoreNode
	seen  map[uint64]struct{}
}

// Merge wraps root with duplicate-boundary suppression.
func Merge(root CoreNode) CoreNode {
	if root == nil {
		return nil
	}
	seen := make(map[uint64]struct{})
	m := mergeNode{inner: root, seen: seen}
	seen[m.key()] = struct{}{}
	return m
}

// key combines the node's seek position with its coverage fingerprint
// into a single dedup key. Of the position, the breakend index, the
// breakend-only flag and the alt path's length are mixed in; the alt
// path's individual bits are not. The position alone does not identify
// (boundary, coverage) across different branches that reach the same
// boundary by different alt-path histories, so the coverage
// fingerprint is mixed in rather than relied on implicitly.
func (m mergeNode) key() uint64 {
	pos := m.inner.Position()
	h := m.inner.Coverage().Fingerprint()
	h = h*1099511628211 ^ uint64(pos.BreakendIdx+1)
	if pos.BreakendOnly {
		h ^= 0x9e3779b97f4a7c15
	} else {
		h ^= uint64(len(pos.AltPath))<<1 ^ 0xc2b2ae3d27d4eb4f
	}
	return h
}

func (m mergeNode) step(next CoreNode) CoreNode {
	if next == nil {
		return nil
	}
	w := mergeNode{inner: next, seen: m.seen}
	key := w.key()
	if _, dup := m.seen[key]; dup {
		return nil
	}
	m.seen[key] = struct{}{}
	return w
}

func (m mergeNode) IsTerminal() bool { return m.inner.IsTerminal() }
func (m mergeNode) NextRef() CoreNode { return m.step(m.inner.NextRef()) }
func (m mergeNode) NextAlt() CoreNode { return m.step(m.inner.NextAlt()) }
func (m mergeNode) Coverage() *coverage.Set { return m.inner.Coverage() }
func (m mergeNode) Label() []byte { return m.inner.Label() }
func (m mergeNode) LabelCursor() *journal.Cursor { return m.inner.LabelCursor() }
func (m mergeNode) State() seqtree.State { return m.inner.State() }
func (m mergeNode) Position() seqtree.Descriptor { return m.inner.Position() }
