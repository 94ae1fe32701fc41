// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package traversal implements the single-threaded, cooperative
// traversal driver: a dual stack of tree nodes and algorithm snapshots
// that walks an adaptor pipeline depth-first, alt-before-ref, with
// cancellation checked at every push/pop boundary. See spec.md §4.I, §5.
package traversal

import (
	"context"

	"github.com/grailbio/jst/adaptor"
)

// Snapshot is the per-branch algorithm state the driver carries
// alongside each tree node — the pigeonhole filter's rolling hash or
// the bidirectional verifier's (current_step, best_hit), per spec.md
// §4.G/§4.H. Fork is the driver's "push" hook: it must return an
// independent copy so that mutating the forked copy along an
// alternate branch never affects the original continuing down the
// reference branch. There is no explicit "pop" hook: the driver
// simply discards a frame's Snapshot when that frame is popped, which
// is sufficient because Fork is where all state worth restoring was
// captured.
type Snapshot interface {
	// Step processes node's label, invoking emit for every hit the
	// algorithm produces at this node.
	Step(node adaptor.CoreNode, emit func(interface{}))
	// Fork returns an independent copy of this Snapshot, for a newly
	// pushed alternate branch.
	Fork() Snapshot
}

// Driver walks root depth-first, alt-before-ref, running initial (and
// its forks) over every node visited.
type Driver struct {
	root    adaptor.CoreNode
	initial Snapshot
}

// New returns a Driver over root with initial algorithm state.
func New(root adaptor.CoreNode, initial Snapshot) *Driver {
	return &Driver{root: root, initial: initial}
}

type frame struct {
	node      adaptor.CoreNode
	snap      Snapshot
	exhausted bool
}

// Run walks the tree, invoking emit for every hit produced, until the
// tree is exhausted or ctx is cancelled. Partial results already
// delivered to emit remain valid on cancellation; no rollback is
// performed.
func (d *Driver) Run(ctx context.Context, emit func(interface{})) error {
	if d.root == nil {
		return nil
	}
	stack := []frame{{node: d.root, snap: d.initial}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		i := len(stack) - 1
		if stack[i].exhausted {
			stack = stack[:i]
			continue
		}

		stack[i].snap.Step(stack[i].node, emit)
		if stack[i].node.IsTerminal() {
			stack = stack[:i]
			continue
		}

		refChild := stack[i].node.NextRef()
		altChild := stack[i].node.NextAlt()

		switch {
		case refChild != nil:
			stack[i].node = refChild
		case altChild != nil:
			stack[i].exhausted = true
		default:
			stack = stack[:i]
		}

		if altChild != nil {
			stack = append(stack, frame{node: altChild, snap: stack[i].snap.Fork()})
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
