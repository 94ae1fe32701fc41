package journal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyJournalRealizesReference(t *testing.T) {
	j := New([]byte("AAAACCCCGGGG"))
	require.Equal(t, "AAAACCCCGGGG", string(j.Materialize()))
	require.Equal(t, 12, j.Length())
}

func TestRecordSubstitution(t *testing.T) {
	j := New([]byte("AAAACCCCGGGG"))
	require.NoError(t, j.RecordEdit(4, 5, []byte("T")))
	require.Equal(t, "AAAATCCCGGGG", string(j.Materialize()))
	require.Equal(t, 12, j.Length())
}

func TestRecordInsertion(t *testing.T) {
	j := New([]byte("AAAACCCCGGGG"))
	require.NoError(t, j.RecordEdit(4, 4, []byte("TT")))
	require.Equal(t, "AAAATTCCCCGGGG", string(j.Materialize()))
	require.Equal(t, 14, j.Length())
}

func TestRecordDeletion(t *testing.T) {
	j := New([]byte("AAAACCCCGGGG"))
	require.NoError(t, j.RecordEdit(4, 8, nil))
	require.Equal(t, "AAAAGGGG", string(j.Materialize()))
	require.Equal(t, 8, j.Length())
}

func TestMultipleEditsInOrder(t *testing.T) {
	j := New([]byte("AAAACCCCGGGGTTTT"))
	require.NoError(t, j.RecordEdit(4, 8, nil))
	require.NoError(t, j.RecordEdit(12, 12, []byte("XX")))
	require.Equal(t, "AAAAGGGGXXTTTT", string(j.Materialize()))
}

func TestOutOfOrderEditFails(t *testing.T) {
	j := New([]byte("AAAACCCCGGGG"))
	require.NoError(t, j.RecordEdit(6, 8, []byte("T")))
	err := j.RecordEdit(4, 5, []byte("A"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of order")
}

func TestOverflowingEditFails(t *testing.T) {
	j := New([]byte("AAAACCCCGGGG"))
	err := j.RecordEdit(10, 20, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds remaining suffix")
}

func TestCursorTakePartial(t *testing.T) {
	j := New([]byte("AAAACCCCGGGG"))
	require.NoError(t, j.RecordEdit(4, 4, []byte("TT")))
	c := j.Sequence()
	require.Equal(t, "AAAA", string(c.Take(4)))
	require.Equal(t, "TT", string(c.Take(2)))
	require.Equal(t, "CCCCGGGG", string(c.Take(100)))
}

func TestJournalSumProperty(t *testing.T) {
	// spec.md §8 property 7: concatenated entry length == realized sequence length.
	j := New([]byte("AAAACCCCGGGGTTTT"))
	require.NoError(t, j.RecordEdit(4, 8, []byte("XY")))
	require.NoError(t, j.RecordEdit(12, 12, []byte("Z")))
	require.Equal(t, len(j.Materialize()), j.Length())
}

func TestCursorSeekAgreesWithMaterialize(t *testing.T) {
	j := New([]byte("AAAACCCCGGGGTTTT"))
	require.NoError(t, j.RecordEdit(4, 8, []byte("XY")))
	require.NoError(t, j.RecordEdit(12, 12, []byte("Z")))
	want := j.Materialize()
	for pos := 0; pos < len(want); pos++ {
		c := j.Seek(pos)
		require.Equal(t, string(want[pos:]), string(c.Take(len(want)-pos)), "seek to %d", pos)
	}
}

func TestCursorSeekIntoGapAndPayload(t *testing.T) {
	j := New([]byte("AAAACCCCGGGG"))
	require.NoError(t, j.RecordEdit(4, 5, []byte("TT")))
	// "AAAA" + "TT" + "CCCGGGG" = AAAATTCCCGGGG
	full := string(j.Materialize())
	require.Equal(t, "AAAATTCCCGGGG", full)

	// Seek into the reference gap before the entry.
	require.Equal(t, "AATTCCCGGGG", string(j.Seek(2).Take(100)))
	// Seek to the exact start of the payload.
	require.Equal(t, "TTCCCGGGG", string(j.Seek(4).Take(100)))
	// Seek into the middle of the payload.
	require.Equal(t, "TCCCGGGG", string(j.Seek(5).Take(100)))
	// Seek into the reference tail after the entry.
	require.Equal(t, "CCGGGG", string(j.Seek(7).Take(100)))
}

func TestCursorSeekAtEnd(t *testing.T) {
	j := New([]byte("AAAACCCC"))
	require.NoError(t, j.RecordEdit(4, 8, []byte("TT")))
	c := j.Seek(j.Length())
	_, ok := c.Next()
	require.False(t, ok)
}
