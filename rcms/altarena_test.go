package rcms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/jst/variant"
)

func TestAltArenaConcatenatesInOrder(t *testing.T) {
	store := New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := store.Insert(variant.New(8, 8, []byte("GGG"), cov(2, 0)))
	require.NoError(t, err)
	_, err = store.Insert(variant.New(2, 3, []byte("X"), cov(2, 1)))
	require.NoError(t, err)
	require.Equal(t, "XGGG", string(store.AltArena()))
}

func TestCompressedAltArenaRoundTrips(t *testing.T) {
	store := New([]byte("AAAACCCCGGGGTTTT"), 2)
	_, err := store.Insert(variant.New(8, 8, []byte("GGGGGGGGGGGGGGGG"), cov(2, 0)))
	require.NoError(t, err)

	compressed := store.CompressedAltArena()
	got, err := DecompressAltArena(compressed)
	require.NoError(t, err)
	require.Equal(t, store.AltArena(), got)
}
