// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package adaptor implements the tree adaptor pipeline: each adaptor
// wraps a CoreNode and yields a new one with the same node contract
// but enriched behaviour, composing left to right. See spec.md §4.F.
//
// The C++ original realizes this through deep template inheritance;
// idiomatic Go has no equivalent, so every adaptor here is a small
// struct wrapping a CoreNode, and pipelines compose by nesting
// constructors (Merge(Seekable(Leaf(root)))) rather than by chained
// method calls on a builder. *seqtree.Node cannot implement CoreNode
// directly — Go has no covariant return types, so NextRef/NextAlt
// returning *seqtree.Node can't satisfy a method requiring CoreNode —
// Leaf is the thin conversion that bridges the two.
package adaptor

import (
	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/journal"
	"github.com/grailbio/jst/seqtree"
)

// CoreNode is the node contract every adaptor preserves: the same
// shape seqtree.Node exposes, so an adaptor pipeline is itself walkable
// exactly like the bare tree.
type CoreNode interface {
	IsTerminal() bool
	NextRef() CoreNode
	NextAlt() CoreNode
	Coverage() *coverage.Set
	Label() []byte
	LabelCursor() *journal.Cursor
	State() seqtree.State
	Position() seqtree.Descriptor
}

// leaf adapts a *seqtree.Node into a CoreNode; it is the leaf of every
// adaptor pipeline.
type leaf struct{ n *seqtree.Node }

// Leaf wraps n as a CoreNode, translating a nil *seqtree.Node into a
// true nil CoreNode (avoiding the typed-nil-interface trap: a
// leaf{n: nil} value boxed in a CoreNode would compare non-nil).
func Leaf(n *seqtree.Node) CoreNode {
	if n == nil {
		return nil
	}
	return leaf{n: n}
}

func (l leaf) IsTerminal() bool { return l.n.IsTerminal() }
func (l leaf) NextRef() CoreNode { return Leaf(l.n.NextRef()) }
func (l leaf) NextAlt() CoreNode { return Leaf(l.n.NextAlt()) }
func (l leaf) Coverage() *coverage.Set { return l.n.Coverage() }
func (l leaf) Label() []byte { return l.n.Label() }
func (l leaf) LabelCursor() *journal.Cursor { return l.n.LabelCursor() }
func (l leaf) State() seqtree.State { return l.n.State() }
func (l leaf) Position() seqtree.Descriptor { return l.n.Position() }

// Labelled is a pass-through: every CoreNode, including the bare Leaf,
// already exposes Label/LabelCursor with the amortized-O(1)-per-character
// cost spec.md §4.F requires, so there is nothing left for this
// adaptor to add. Kept as a named identity so pipelines can name the
// capability they depend on (Labelled(Leaf(root))) even though it
// compiles away to the same value.
func Labelled(n CoreNode) CoreNode { return n }

// Coloured is a pass-through for the same reason Labelled is: coverage
// propagation is already a Node-level guarantee (§4.E's next_ref/next_alt
// coverage rules), not something layered on afterward.
func Coloured(n CoreNode) CoreNode { return n }

// Prune is a pass-through: seqtree.Node.NextRef/NextAlt already never
// return a child whose coverage is empty (spec.md §4.E "Returns None
// when the resulting coverage is empty"), so every subtree reachable
// through CoreNode already satisfies prune's postcondition by
// construction. Kept as a named capability for pipeline readability.
func Prune(n CoreNode) CoreNode { return n }

// volatile marks a tree as single-pass: a lifetime contract only, with
// no runtime behaviour, per spec.md §4.F.
type volatile struct{ CoreNode }

// Volatile wraps n with the single-pass marker. Iterators over a
// Volatile tree must not be retained past the next traversal step;
// nothing in this package enforces that, matching the contract's "no
// runtime cost" requirement.
func Volatile(n CoreNode) CoreNode { return volatile{CoreNode: n} }
