package search

import (
	"encoding/binary"

	farm "github.com/dgryski/go-farm"

	"github.com/grailbio/jst/adaptor"
	"github.com/grailbio/jst/traversal"
)

// maxShapeLength bounds q regardless of how large delta turns out to
// be (spec.md §4.G: "q = min(delta, 21)").
const maxShapeLength = 21

// minViableDelta is the floor below which the filter is considered
// unusable and is disabled rather than run with a degenerate shape.
const minViableDelta = 3

// Query is one haystack-independent search input.
type Query struct {
	ID  string
	Seq []byte
}

// seedEntry is one (query, offset) pair indexed under a q-gram hash.
type seedEntry struct {
	queryIndex int
	offset     int
}

// Index is the prepared q-gram index over a batch of queries, plus
// the per-query error budgets the verifier needs afterward.
type Index struct {
	queries     []Query
	errorCounts []int
	q           int
	delta       int
	disabled    bool
	table       map[uint64][]seedEntry
}

// Prepare builds the q-gram index per spec.md §4.G: per-query error
// budgets and stride are derived from errorRate, the shape length q is
// capped at maxShapeLength, and the filter disables itself (delta set
// past every query's length) rather than run with delta < minViableDelta.
func Prepare(queries []Query, errorRate float64) (*Index, error) {
	idx := &Index{queries: queries, table: make(map[uint64][]seedEntry)}
	idx.errorCounts = make([]int, len(queries))

	deltas := make([]int, len(queries))
	maxLen := 0
	minDelta := -1
	for i, query := range queries {
		if len(query.Seq) == 0 {
			return nil, ErrQueryEmpty
		}
		if len(query.Seq) > maxLen {
			maxLen = len(query.Seq)
		}
		ec := int(errorRate * float64(len(query.Seq)))
		idx.errorCounts[i] = ec
		d := len(query.Seq) / (ec + 1)
		deltas[i] = d
		if minDelta == -1 || d < minDelta {
			minDelta = d
		}
	}

	allViable := minDelta >= minViableDelta
	if allViable {
		idx.delta = minDelta
	} else {
		idx.delta = maxLen + 1
		idx.disabled = true
	}
	idx.q = idx.delta
	if idx.q > maxShapeLength {
		idx.q = maxShapeLength
	}

	if idx.disabled {
		return idx, nil
	}

	for i, query := range queries {
		if len(query.Seq) < idx.q {
			continue // spec.md §7 QueryTooShort: filter disabled for this query only
		}
		for offset := 0; offset+idx.q <= len(query.Seq); offset += idx.delta {
			h := mixHash(hashOf(query.Seq[offset : offset+idx.q]))
			idx.table[h] = append(idx.table[h], seedEntry{queryIndex: i, offset: offset})
		}
	}
	return idx, nil
}

// ShapeLength returns q, the length of an indexed q-gram.
func (idx *Index) ShapeLength() int { return idx.q }

// Disabled reports whether the filter is globally disabled because at
// least one query's stride fell below the viable minimum (3).
func (idx *Index) Disabled() bool { return idx.disabled }

// ErrorCount returns the error budget for query i.
func (idx *Index) ErrorCount(i int) int { return idx.errorCounts[i] }

func mixHash(h uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], h)
	return farm.Hash64WithSeed(buf[:], 0)
}

// SeedHit is a single q-gram match between a query and the haystack
// label stream, the unit the verifier consumes.
type SeedHit struct {
	QueryIndex  int
	QueryOffset int
	Node        adaptor.CoreNode
	// HaystackPos is the absolute, 0-indexed position — within
	// whichever member sequence the path to Node currently realizes —
	// of the last character of the matched q-gram window.
	HaystackPos int
}

// FilterState streams a tree's labels through the rolling hash and
// probes the q-gram index at every fully-formed window, implementing
// the traversal.Snapshot contract so it can run directly under the
// traversal driver. It only ever feeds each node's own incremental
// segment — the bytes that are settled at this node and were not
// already fed by an ancestor — matching spec.md §4.G's "maintain a
// rolling hash with suspension points at every node boundary".
//
// A node's label is the full preview of its member's sequence as if
// no further variant were taken from here on, so it is not safe to
// feed past the node's own next candidate variant: a sibling alt edge
// can still overwrite that suffix. settledPrefix finds the boundary
// by diffing this node's label against its own alt child's label
// (the two necessarily agree up to the candidate's position and
// diverge from there), and only that settled prefix is pushed through
// the rolling hash, so Fork's clone is always a valid starting point
// for whichever branch continues from it.
type FilterState struct {
	idx    *Index
	rh     *rollingHash
	fedLen int
}

// NewFilterState returns the initial filter snapshot for idx, to seed
// a traversal.Driver at the tree root.
func NewFilterState(idx *Index) *FilterState {
	return &FilterState{idx: idx, rh: newRollingHash(idx.q)}
}

// Step implements traversal.Snapshot.
func (f *FilterState) Step(node adaptor.CoreNode, emit func(interface{})) {
	if f.idx.disabled {
		return
	}
	label := node.Label()
	settled := settledPrefix(node, label)
	for i := f.fedLen; i < settled; i++ {
		ready := f.rh.push(label[i])
		if ready {
			h := mixHash(f.rh.value())
			for _, e := range f.idx.table[h] {
				emit(SeedHit{QueryIndex: e.queryIndex, QueryOffset: e.offset, Node: node, HaystackPos: i})
			}
		}
	}
	f.fedLen = settled
}

// Fork implements traversal.Snapshot.
func (f *FilterState) Fork() traversal.Snapshot {
	return &FilterState{idx: f.idx, rh: f.rh.clone(), fedLen: f.fedLen}
}

// settledPrefix returns the length of label's prefix that cannot be
// overwritten by any future decision rooted at node: everything up to
// (but not including) wherever node's alt child first diverges from
// it. A node with no alt candidate — including every terminal node —
// has nothing left to settle, so its whole label qualifies.
func settledPrefix(node adaptor.CoreNode, label []byte) int {
	alt := node.NextAlt()
	if alt == nil {
		return len(label)
	}
	return commonPrefixLen(label, alt.Label())
}

// commonPrefixLen returns the length of the longest common prefix of
// a and b.
func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
