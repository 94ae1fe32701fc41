package seqtree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/rcms"
	"github.com/grailbio/jst/variant"
)

func cov(n int, members ...int) *coverage.Set {
	s := coverage.New(n)
	for _, m := range members {
		s.SetBit(m, true)
	}
	return s
}

// collectLabels walks every root-to-terminal path of the tree and
// returns (label, coverage) pairs, depth first, ref-before-alt.
func collectLabels(t *testing.T, root *Node) []struct {
	label string
	cov   *coverage.Set
} {
	var out []struct {
		label string
		cov   *coverage.Set
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsTerminal() {
			out = append(out, struct {
				label string
				cov   *coverage.Set
			}{string(n.Label()), n.Coverage()})
			return
		}
		if r := n.NextRef(); r != nil {
			walk(r)
		}
		if a := n.NextAlt(); a != nil {
			walk(a)
		}
	}
	walk(root)
	return out
}

func TestS1ExactOnReferenceOnly(t *testing.T) {
	store := rcms.New([]byte("AAAACCCCGGGGTTTT"), 1)
	tree, err := New(store)
	require.NoError(t, err)
	labels := collectLabels(t, tree.Root())
	require.Len(t, labels, 1)
	require.Equal(t, "AAAACCCCGGGGTTTT", labels[0].label)
	require.True(t, labels[0].cov.Test(0))
}

func TestS2ExactOnAlternatePath(t *testing.T) {
	store := rcms.New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := store.Insert(variant.New(6, 7, []byte("T"), cov(2, 1)))
	require.NoError(t, err)
	tree, err := New(store)
	require.NoError(t, err)
	labels := collectLabels(t, tree.Root())
	require.Len(t, labels, 2)

	var sawRef, sawAlt bool
	for _, l := range labels {
		switch {
		case l.label == "AAAACCCCGGGGTTTT" && l.cov.Test(0) && !l.cov.Test(1):
			sawRef = true
		case l.label == "AAAACCTCGGGGTTTT" && l.cov.Test(1) && !l.cov.Test(0):
			sawAlt = true
		}
	}
	require.True(t, sawRef, "expected reference-path label for member 0")
	require.True(t, sawAlt, "expected alternate-path label for member 1")
}

func TestS3BranchingDeletionHidesInsertion(t *testing.T) {
	store := rcms.New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := store.Insert(variant.New(4, 4, []byte("XXX"), cov(2, 1)))
	require.NoError(t, err)
	_, err = store.Insert(variant.New(4, 8, nil, cov(2, 0, 1)))
	require.NoError(t, err)

	tree, err := New(store)
	require.NoError(t, err)
	labels := collectLabels(t, tree.Root())

	for _, l := range labels {
		require.NotContains(t, l.label, "XXX", "deletion must suppress the co-located insertion on the shared member")
	}

	var sawMember0Deletion, sawMember1Deletion bool
	for _, l := range labels {
		if l.label == "AAAAGGGGTTTT" {
			if l.cov.Test(0) {
				sawMember0Deletion = true
			}
			if l.cov.Test(1) {
				sawMember1Deletion = true
			}
		}
	}
	require.True(t, sawMember0Deletion)
	require.True(t, sawMember1Deletion)
}

func TestSeekRoundTrip(t *testing.T) {
	store := rcms.New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := store.Insert(variant.New(4, 4, []byte("XXX"), cov(2, 1)))
	require.NoError(t, err)
	_, err = store.Insert(variant.New(4, 8, nil, cov(2, 0, 1)))
	require.NoError(t, err)
	tree, err := New(store)
	require.NoError(t, err)

	var nodes []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		nodes = append(nodes, n)
		if n.IsTerminal() {
			return
		}
		if r := n.NextRef(); r != nil {
			walk(r)
		}
		if a := n.NextAlt(); a != nil {
			walk(a)
		}
	}
	walk(tree.Root())

	for _, n := range nodes {
		d := n.Position()
		got, err := tree.Seek(d)
		require.NoError(t, err)
		require.Equal(t, n.Label(), got.Label())
		require.True(t, n.Coverage().Equals(got.Coverage()))
		require.Equal(t, n.State(), got.State())
	}
}

func TestEnumerationCompletenessNoVariants(t *testing.T) {
	store := rcms.New([]byte("AAAACCCC"), 3)
	tree, err := New(store)
	require.NoError(t, err)
	root := tree.Root()
	require.True(t, root.IsTerminal())
	require.Equal(t, "AAAACCCC", string(root.Label()))
	require.True(t, root.Coverage().All())
}

func TestReverseTreeIsIsomorphic(t *testing.T) {
	store := rcms.New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := store.Insert(variant.New(6, 7, []byte("T"), cov(2, 1)))
	require.NoError(t, err)

	forward, err := New(store)
	require.NoError(t, err)
	reverse, err := New(store.Reversed())
	require.NoError(t, err)

	fwdLabels := collectLabels(t, forward.Root())
	revLabels := collectLabels(t, reverse.Root())
	require.Len(t, revLabels, len(fwdLabels))
	require.Equal(t, "TTTTGGGGCTCCAAAA", revLabels[1].label)
}
