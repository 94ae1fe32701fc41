package search

import (
	"context"

	"github.com/grailbio/jst/adaptor"
	"github.com/grailbio/jst/traversal"
)

// myersState is Myers' (1999) bit-vector bounded edit-distance
// automaton, restricted to patterns of at most 64 characters so the
// whole state fits in a single machine word (spec.md §4.H calls for
// "Myers bit-parallel"; the multi-word generalization for longer
// patterns is not implemented). score tracks the edit
// distance between the full pattern and the text prefix consumed so
// far; bestScore is the minimum score observed at any prefix, which is
// the quantity spec.md §4.H's "best_hit" names.
type myersState struct {
	peq       [256]uint64
	m         int
	vp, vn    uint64
	score     int
	bestScore int
}

func newMyersState(pattern []byte) *myersState {
	m := len(pattern)
	s := &myersState{m: m, vp: ^uint64(0), score: m, bestScore: m}
	for i, c := range pattern {
		s.peq[c] |= uint64(1) << uint(i)
	}
	if m < 64 {
		mask := (uint64(1) << uint(m)) - 1
		s.vp &= mask
	}
	return s
}

func (s *myersState) step(c byte) {
	topBit := uint64(1) << uint(s.m-1)
	eq := s.peq[c]
	xv := eq | s.vn
	xh := (((eq & s.vp) + s.vp) ^ s.vp) | eq
	ph := s.vn | ^(xh | s.vp)
	mh := s.vp & xh
	switch {
	case ph&topBit != 0:
		s.score++
	case mh&topBit != 0:
		s.score--
	}
	ph = (ph << 1) | 1
	mh = mh << 1
	s.vp = mh | ^(xv | ph)
	s.vn = ph & xv
	if s.m < 64 {
		mask := (uint64(1) << uint(s.m)) - 1
		s.vp &= mask
		s.vn &= mask
	}
	if s.score < s.bestScore {
		s.bestScore = s.score
	}
}

func (s *myersState) clone() *myersState {
	c := *s
	return &c
}

// VerifyResult is what a VerifierState reports once its branch has
// consumed maxStep characters.
type VerifyResult struct {
	Errors int
	Node   adaptor.CoreNode
}

// VerifierState implements spec.md §4.H's per-branch state machine:
// (current_step, best_hit). It streams one extension tree's labels
// (right or left) against a fixed pattern and fires once the branch
// has consumed |pattern|+error_count characters.
//
// A node's Label() is always addressed from the absolute start of
// whichever tree root the extension was built over, not from the
// verification root itself — base is the offset into that addressing
// where pattern[0] aligns, so a seed rooted deep inside the forward
// (or reversed) tree verifies against the right slice of its label
// instead of assuming position 0. Feeding is bounded by the same
// settledPrefix boundary FilterState uses, for the identical reason:
// a node's label previews content a sibling alt edge downstream can
// still overwrite.
//
// When errorCount is zero the automaton is skipped in favour of
// ExactScan, the cheaper fast path spec.md §4.H's "error_count == 0
// admits a cheaper exact check" describes: bytes accumulate in buf
// until exactly len(pattern) have been seen, then a single scan
// decides the match.
type VerifierState struct {
	pattern []byte
	base    int
	fed     int
	maxStep int

	errorCount int
	myers      *myersState // nil on the exact fast path
	buf        []byte      // accumulates bytes for ExactScan when myers == nil

	fired bool
}

// NewVerifierState returns the initial verifier snapshot, to seed a
// traversal.Driver at an extension tree's root (spec.md §4.H step
// 1/2). base is the offset into a descendant node's Label() that
// pattern's first character aligns to.
func NewVerifierState(pattern []byte, errorCount, base int) *VerifierState {
	v := &VerifierState{
		pattern:    pattern,
		base:       base,
		maxStep:    len(pattern) + errorCount,
		errorCount: errorCount,
	}
	if errorCount == 0 {
		v.buf = make([]byte, 0, len(pattern))
	} else {
		v.myers = newMyersState(pattern)
	}
	return v
}

// Step implements traversal.Snapshot.
func (v *VerifierState) Step(node adaptor.CoreNode, emit func(interface{})) {
	if v.fired {
		return
	}
	label := node.Label()
	limit := v.base + v.maxStep
	if settled := settledPrefix(node, label); settled < limit {
		limit = settled
	}
	for v.base+v.fed < limit {
		c := label[v.base+v.fed]
		if v.myers != nil {
			v.myers.step(c)
		} else {
			v.buf = append(v.buf, c)
		}
		v.fed++
	}

	if v.fed < v.maxStep && !node.IsTerminal() {
		return
	}
	v.fired = true

	if v.myers != nil {
		if v.myers.bestScore <= v.errorCount {
			emit(VerifyResult{Errors: v.myers.bestScore, Node: node})
		}
		return
	}
	if len(v.pattern) == 0 || (len(v.buf) == len(v.pattern) && len(ExactScan(v.buf, v.pattern)) > 0) {
		emit(VerifyResult{Errors: 0, Node: node})
	}
}

// Fork implements traversal.Snapshot: the child inherits the parent's
// best_hit (myers.bestScore, or the accumulated exact-path buffer) by
// deep-copying it, exactly as spec.md §4.H's push rule requires.
func (v *VerifierState) Fork() traversal.Snapshot {
	w := &VerifierState{
		pattern:    v.pattern,
		base:       v.base,
		fed:        v.fed,
		maxStep:    v.maxStep,
		errorCount: v.errorCount,
		fired:      v.fired,
	}
	if v.myers != nil {
		w.myers = v.myers.clone()
	} else {
		w.buf = append([]byte(nil), v.buf...)
	}
	return w
}

// VerifyExtension runs the verifier over every branch of root,
// collecting one VerifyResult per branch that fires (spec.md §4.H
// steps 1/2, applied to either a right extension tree or a reversed
// left extension tree by the caller's choice of root and pattern).
// base is the offset into root's own Label() (and every descendant's)
// that pattern[0] aligns to; callers rooting the walk at a tree's own
// root, where the pattern should match starting at the very first
// character, pass base=0.
func VerifyExtension(root adaptor.CoreNode, pattern []byte, errorCount, base int) []VerifyResult {
	var out []VerifyResult
	d := traversal.New(root, NewVerifierState(pattern, errorCount, base))
	_ = d.Run(context.Background(), func(v interface{}) {
		out = append(out, v.(VerifyResult))
	})
	return out
}
