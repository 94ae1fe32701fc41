package adaptor

import (
	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/journal"
	"github.com/grailbio/jst/seqtree"
)

// trimNode bounds the label length reachable from its wrap point to k
// characters, the mechanism spec.md §4.F uses to cap seed length. It
// tracks consumed length as the delta between successive full labels
// rather than re-deriving a "boundary" from the underlying tree, so it
// works unchanged over any CoreNode, adapted or bare.
type trimNode struct {
	inner    CoreNode
	consumed int
	k        int
}

// Trim wraps root so that no more than k characters of label are ever
// produced by walking further from it; once the budget is exhausted
// the wrapped node reports itself as terminal even if the underlying
// tree has more to give. Trimmed boundaries advertise a synthetic high
// breakend via Remaining(): the underlying tree's own high breakend
// plus whatever budget is left.
func Trim(root CoreNode, k int) CoreNode {
	if root == nil {
		return nil
	}
	return trimNode{inner: root, consumed: 0, k: k}
}

// Remaining returns how much of the k-character budget is left.
func (t trimNode) Remaining() int { return t.k - t.consumed }

// Consumed returns how much of the k-character budget has been spent.
func (t trimNode) Consumed() int { return t.consumed }

func (t trimNode) IsTerminal() bool {
	if t.Remaining() <= 0 {
		return true
	}
	return t.inner.IsTerminal()
}

func (t trimNode) step(next CoreNode) CoreNode {
	if next == nil || t.Remaining() <= 0 {
		return nil
	}
	delta := len(next.Label()) - len(t.inner.Label())
	return trimNode{inner: next, consumed: t.consumed + delta, k: t.k}
}

func (t trimNode) NextRef() CoreNode { return t.step(t.inner.NextRef()) }
func (t trimNode) NextAlt() CoreNode { return t.step(t.inner.NextAlt()) }
func (t trimNode) Coverage() *coverage.Set { return t.inner.Coverage() }
func (t trimNode) Label() []byte { return t.inner.Label() }
func (t trimNode) LabelCursor() *journal.Cursor { return t.inner.LabelCursor() }
func (t trimNode) State() seqtree.State { return t.inner.State() }
func (t trimNode) Position() seqtree.Descriptor { return t.inner.Position() }
