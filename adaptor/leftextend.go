package adaptor

import (
	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/journal"
	"github.com/grailbio/jst/seqtree"
)

// leftExtendNode widens the label visible at each node by exposing up
// to k characters of context from before the wrap point, on top of
// whatever the walk has advanced since then. Every CoreNode's Label()
// already returns the full root-to-node label, so "extending left" is
// just windowing that label to (consumed-since-wrap + k) characters
// instead of returning the whole thing.
type leftExtendNode struct {
	inner    CoreNode
	consumed int
	k        int
}

// LeftExtend wraps root so that Label() exposes up to k characters of
// additional left context beyond whatever root itself advertised.
func LeftExtend(root CoreNode, k int) CoreNode {
	if root == nil {
		return nil
	}
	return leftExtendNode{inner: root, consumed: 0, k: k}
}

func (l leftExtendNode) step(next CoreNode) CoreNode {
	if next == nil {
		return nil
	}
	delta := len(next.Label()) - len(l.inner.Label())
	return leftExtendNode{inner: next, consumed: l.consumed + delta, k: l.k}
}

func (l leftExtendNode) IsTerminal() bool  { return l.inner.IsTerminal() }
func (l leftExtendNode) NextRef() CoreNode { return l.step(l.inner.NextRef()) }
func (l leftExtendNode) NextAlt() CoreNode { return l.step(l.inner.NextAlt()) }
func (l leftExtendNode) Coverage() *coverage.Set { return l.inner.Coverage() }

// Label returns the trailing window of the full label spanning the
// walk since the wrap point plus up to k characters of left context.
func (l leftExtendNode) Label() []byte {
	full := l.inner.Label()
	window := l.consumed + l.k
	if window >= len(full) {
		return full
	}
	return full[len(full)-window:]
}

func (l leftExtendNode) LabelCursor() *journal.Cursor { return l.inner.LabelCursor() }
func (l leftExtendNode) State() seqtree.State         { return l.inner.State() }
func (l leftExtendNode) Position() seqtree.Descriptor { return l.inner.Position() }
