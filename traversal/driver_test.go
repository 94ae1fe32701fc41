package traversal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/jst/adaptor"
	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/rcms"
	"github.com/grailbio/jst/seqtree"
	"github.com/grailbio/jst/variant"
)

func cov(n int, members ...int) *coverage.Set {
	s := coverage.New(n)
	for _, m := range members {
		s.SetBit(m, true)
	}
	return s
}

// labelRecorder is a minimal Snapshot: it emits every terminal node's
// label, and Fork just copies the (stateless) value.
type labelRecorder struct{}

func (labelRecorder) Step(node adaptor.CoreNode, emit func(interface{})) {
	if node.IsTerminal() {
		emit(string(node.Label()))
	}
}

func (labelRecorder) Fork() Snapshot { return labelRecorder{} }

func TestDriverVisitsEveryTerminalLabel(t *testing.T) {
	store := rcms.New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := store.Insert(variant.New(6, 7, []byte("T"), cov(2, 1)))
	require.NoError(t, err)
	tree, err := seqtree.New(store)
	require.NoError(t, err)

	var got []string
	d := New(adaptor.Leaf(tree.Root()), labelRecorder{})
	err = d.Run(context.Background(), func(v interface{}) { got = append(got, v.(string)) })
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"AAAACCCCGGGGTTTT", "AAAACCTCGGGGTTTT"}, got)
}

// countingSnapshot counts how many Step calls it has seen along its
// own branch, independent of sibling branches created via Fork.
type countingSnapshot struct {
	count *int
}

func newCountingSnapshot() *countingSnapshot {
	c := 0
	return &countingSnapshot{count: &c}
}

func (c *countingSnapshot) Step(node adaptor.CoreNode, emit func(interface{})) {
	*c.count++
	if node.IsTerminal() {
		emit(*c.count)
	}
}

func (c *countingSnapshot) Fork() Snapshot {
	n := *c.count
	return &countingSnapshot{count: &n}
}

func TestForkIsolatesBranchState(t *testing.T) {
	store := rcms.New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := store.Insert(variant.New(6, 7, []byte("T"), cov(2, 1)))
	require.NoError(t, err)
	tree, err := seqtree.New(store)
	require.NoError(t, err)

	var counts []int
	d := New(adaptor.Leaf(tree.Root()), newCountingSnapshot())
	err = d.Run(context.Background(), func(v interface{}) { counts = append(counts, v.(int)) })
	require.NoError(t, err)
	// Both branches are a single step deep from the root (root steps
	// once, then each terminal child steps once more) so both forked
	// counters should read 2, not accumulate across branches.
	require.Len(t, counts, 2)
	for _, c := range counts {
		require.Equal(t, 2, c)
	}
}

func TestCancellationStopsTraversal(t *testing.T) {
	store := rcms.New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := store.Insert(variant.New(6, 7, []byte("T"), cov(2, 1)))
	require.NoError(t, err)
	tree, err := seqtree.New(store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := New(adaptor.Leaf(tree.Root()), labelRecorder{})
	err = d.Run(ctx, func(v interface{}) {})
	require.Error(t, err)
}
