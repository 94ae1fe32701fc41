package variant

import (
	"sort"
	"testing"

	"github.com/grailbio/jst/coverage"
	"github.com/stretchr/testify/require"
)

func cov(n int, members ...int) *coverage.Set {
	s := coverage.New(n)
	for _, m := range members {
		s.SetBit(m, true)
	}
	return s
}

func TestKindDerivation(t *testing.T) {
	repl := New(10, 13, []byte("GGG"), cov(4, 0))
	require.Equal(t, KindReplacement, repl.Kind())

	ins := New(10, 10, []byte("AAT"), cov(4, 0))
	require.Equal(t, KindInsertion, ins.Kind())

	del := New(10, 14, nil, cov(4, 0))
	require.Equal(t, KindDeletion, del.Kind())
}

func TestBreakpointNormalizesInverted(t *testing.T) {
	b := NewBreakpoint(5, 2)
	require.Equal(t, 5, b.Low)
	require.Equal(t, 5, b.High)
	require.Equal(t, 0, b.Span())
}

func TestDeltaLen(t *testing.T) {
	repl := New(10, 12, []byte("AAAA"), cov(1, 0))
	require.Equal(t, 2, repl.DeltaLen())

	del := New(10, 13, nil, cov(1, 0))
	require.Equal(t, -3, del.DeltaLen())
}

func TestLessOrdersByLowThenHighDescThenAlt(t *testing.T) {
	a := New(5, 8, []byte("C"), cov(1, 0))   // low=5 high=8
	b := New(5, 6, []byte("A"), cov(1, 0))   // low=5 high=6 (smaller span, sorts later)
	c := New(5, 6, []byte("T"), cov(1, 0))   // low=5 high=6, alt T > A
	d := New(2, 9, []byte("G"), cov(1, 0))   // low=2, sorts first

	vs := []Variant{a, b, c, d}
	sort.Slice(vs, func(i, j int) bool { return Less(vs[i], vs[j]) })

	require.Equal(t, d, vs[0])
	require.Equal(t, a, vs[1])
	require.Equal(t, b, vs[2])
	require.Equal(t, c, vs[3])
}

func TestOverlapsDeletionAndInsertion(t *testing.T) {
	del := New(10, 14, nil, cov(2, 0))
	insInside := New(11, 11, []byte("A"), cov(2, 1))
	require.True(t, del.Overlaps(insInside))
	require.True(t, insInside.Overlaps(del))
}

func TestOverlapsCoLocatedInsertionsAreSiblings(t *testing.T) {
	insA := New(10, 10, []byte("A"), cov(2, 0))
	insB := New(10, 10, []byte("T"), cov(2, 1))
	require.False(t, insA.Overlaps(insB))
}

func TestOverlapsDisjointBreakpoints(t *testing.T) {
	a := New(10, 14, nil, cov(2, 0))
	b := New(20, 24, nil, cov(2, 0))
	require.False(t, a.Overlaps(b))
}

func TestOverlapsAdjacentNotOverlapping(t *testing.T) {
	a := New(10, 14, nil, cov(2, 0))
	b := New(14, 18, nil, cov(2, 0))
	require.False(t, a.Overlaps(b))
}
