package seqtree

import "github.com/pkg/errors"

// ErrSeekUnreachable is returned by Seek when a Descriptor does not
// correspond to any reachable node (e.g. it was produced against a
// different store).
var ErrSeekUnreachable = errors.New("seqtree: seek descriptor unreachable")

// Seek reconstructs the node identified by d in O(len(d.AltPath) +
// d.BreakendIdx): it locates the initial breakend by folding coverage
// over the variants preceding it, then — for an alt-path descriptor —
// takes the initial next_alt and replays each subsequent bit as
// next_alt (true) or next_ref (false). Round-trip property (spec.md
// §8.5): for every reachable node n, Seek(n.Position()) == n.
func (t *Tree) Seek(d Descriptor) (*Node, error) {
	base := t.nodeAtBreakend(d.BreakendIdx)
	if d.BreakendOnly {
		return base, nil
	}
	cur := base.NextAlt()
	if cur == nil {
		return nil, errors.Wrapf(ErrSeekUnreachable, "seqtree: no alternate edge at breakend %d", d.BreakendIdx)
	}
	for i, bit := range d.AltPath {
		var next *Node
		if bit {
			next = cur.NextAlt()
		} else {
			next = cur.NextRef()
		}
		if next == nil {
			return nil, errors.Wrapf(ErrSeekUnreachable, "seqtree: replay failed at bit %d", i)
		}
		cur = next
	}
	return cur, nil
}
