package coverage

import (
	"encoding/binary"

	"github.com/minio/highwayhash"
)

// fingerprintKey is a fixed, arbitrary 256-bit key. It does not need to
// be secret: Fingerprint is used to deduplicate (boundary, coverage)
// pairs inside a single process, never as a security boundary.
var fingerprintKey = [32]byte{
	0x4a, 0x53, 0x54, 0x20, 0x72, 0x63, 0x6d, 0x73,
	0x20, 0x63, 0x6f, 0x76, 0x65, 0x72, 0x61, 0x67,
	0x65, 0x20, 0x66, 0x69, 0x6e, 0x67, 0x65, 0x72,
	0x70, 0x72, 0x69, 0x6e, 0x74, 0x2e, 0x2e, 0x2e,
}

// Fingerprint returns a 64-bit digest of the set's membership, suitable
// as a map key for the merge adaptor's duplicate-node detection. Two
// Sets that are Equals always produce the same Fingerprint; collisions
// between unequal sets are possible and callers that require exactness
// must still confirm with Equals.
func (s *Set) Fingerprint() uint64 {
	h, err := highwayhash.New64(fingerprintKey[:])
	if err != nil {
		panic(err) // fingerprintKey is a fixed 32-byte literal; this can't fail.
	}
	buf := make([]byte, 8*len(s.words))
	for i, w := range s.words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	_, _ = h.Write(buf)
	return h.Sum64()
}
