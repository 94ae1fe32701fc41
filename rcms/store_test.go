package rcms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/variant"
)

func cov(n int, members ...int) *coverage.Set {
	s := coverage.New(n)
	for _, m := range members {
		s.SetBit(m, true)
	}
	return s
}

func TestInsertOrdersByCompositeKey(t *testing.T) {
	s := New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := s.Insert(variant.New(4, 8, []byte("TTTT"), cov(2, 0)))
	require.NoError(t, err)
	_, err = s.Insert(variant.New(0, 4, []byte("GG"), cov(2, 1)))
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	require.Equal(t, 0, s.At(0).Breakpoint.Low)
	require.Equal(t, 4, s.At(1).Breakpoint.Low)
}

func TestInsertRejectsOverlappingSharedMember(t *testing.T) {
	s := New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := s.Insert(variant.New(4, 8, []byte("TTTT"), cov(2, 0, 1)))
	require.NoError(t, err)
	_, err = s.Insert(variant.New(5, 7, []byte("GG"), cov(2, 1)))
	require.Error(t, err)
	require.Contains(t, err.Error(), "coverage conflict")
}

func TestInsertAllowsOverlappingDisjointMembers(t *testing.T) {
	s := New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := s.Insert(variant.New(4, 8, []byte("TTTT"), cov(2, 0)))
	require.NoError(t, err)
	_, err = s.Insert(variant.New(5, 7, []byte("GG"), cov(2, 1)))
	require.NoError(t, err)
}

func TestInsertAllowsCoLocatedInsertions(t *testing.T) {
	s := New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := s.Insert(variant.New(4, 4, []byte("A"), cov(2, 0)))
	require.NoError(t, err)
	_, err = s.Insert(variant.New(4, 4, []byte("TT"), cov(2, 1)))
	require.NoError(t, err)
}

func TestDeletionSortsBeforeCoLocatedInsertion(t *testing.T) {
	s := New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := s.Insert(variant.New(4, 4, []byte("XXX"), cov(2, 1)))
	require.NoError(t, err)
	_, err = s.Insert(variant.New(4, 8, nil, cov(2, 0, 1)))
	require.NoError(t, err)
	require.Equal(t, variant.KindDeletion, s.At(0).Kind())
	require.Equal(t, variant.KindInsertion, s.At(1).Kind())
}

func TestSNVStoreInsertAndConflict(t *testing.T) {
	s := NewSNVStore([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := s.Insert(5, 'T', cov(2, 0))
	require.NoError(t, err)
	_, err = s.Insert(5, 'G', cov(2, 0))
	require.Error(t, err)
	_, err = s.Insert(5, 'G', cov(2, 1))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	require.NoError(t, s.Validate())
}

func TestCompositeMergesInPositionOrder(t *testing.T) {
	g := New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := g.Insert(variant.New(10, 12, []byte("XX"), cov(2, 0)))
	require.NoError(t, err)
	s := NewSNVStore([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err = s.Insert(2, 'T', cov(2, 1))
	require.NoError(t, err)

	c := NewComposite(g, s)
	vs := c.Variants()
	require.Len(t, vs, 2)
	require.Equal(t, 2, vs[0].Breakpoint.Low)
	require.Equal(t, 10, vs[1].Breakpoint.Low)
}

func TestReversedViewInvolution(t *testing.T) {
	ref := []byte("AAAACCCCGGGGTTTT")
	n := len(ref)
	for _, p := range []int{0, 1, 8, 15, 16} {
		require.Equal(t, p, ToForwardPosition(n, ToReversePosition(n, p)))
		require.Equal(t, p, ToReversePosition(n, ToForwardPosition(n, p)))
	}
}

func TestReversedViewRemapsBreakpointsAndAlt(t *testing.T) {
	ref := []byte("AAAACCCCGGGGTTTT") // len 16
	s := New(ref, 2)
	_, err := s.Insert(variant.New(4, 8, []byte("AC"), cov(2, 0)))
	require.NoError(t, err)

	rv := s.Reversed()
	require.Equal(t, "TTTTGGGGCCCCAAAA", string(rv.Source()))
	require.Equal(t, 1, rv.Len())
	v := rv.At(0)
	require.Equal(t, 8, v.Breakpoint.Low)
	require.Equal(t, 12, v.Breakpoint.High)
	require.Equal(t, "CA", string(v.Alt))
}
