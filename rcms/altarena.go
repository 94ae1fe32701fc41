package rcms

import "github.com/golang/snappy"

// AltArena concatenates every catalogued variant's alt sequence, in
// Store.At order, into one contiguous buffer. It is the uncompressed
// form of what CompressedAltArena packs, for bulk consumers that want
// just the alt bytes (not the full breakpoint/coverage table) without
// walking Variants().
func (s *Store) AltArena() []byte {
	total := 0
	for _, v := range s.variants {
		total += len(v.Alt)
	}
	arena := make([]byte, 0, total)
	for _, v := range s.variants {
		arena = append(arena, v.Alt...)
	}
	return arena
}

// CompressedAltArena returns AltArena snappy-compressed, for stores
// with many long alt sequences where the arena dominates the store's
// on-disk size.
func (s *Store) CompressedAltArena() []byte {
	return snappy.Encode(nil, s.AltArena())
}

// DecompressAltArena reverses CompressedAltArena.
func DecompressAltArena(compressed []byte) ([]byte, error) {
	return snappy.Decode(nil, compressed)
}
