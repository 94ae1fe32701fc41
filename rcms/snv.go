package rcms

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/grailbio/jst/coverage"
	"github.com/grailbio/jst/variant"
)

// SNVRecord is a single-base replacement packed without a per-variant
// alt-sequence allocation: just the reference position and the
// replacement base.
type SNVRecord struct {
	Position int
	Base     byte
	Coverage *coverage.Set
}

// SNVStore packs single-base replacements as (position, base) pairs,
// the auxiliary packing spec.md §4.C calls out by name. It trades the
// generality of Store's arbitrary alt_sequence arena for zero
// per-variant allocation in the common SNV case.
type SNVStore struct {
	reference []byte
	n         int
	records   []SNVRecord
}

// NewSNVStore returns an empty SNVStore over reference with an
// N-member coverage domain.
func NewSNVStore(reference []byte, n int) *SNVStore {
	return &SNVStore{reference: reference, n: n}
}

// Source returns the reference sequence.
func (s *SNVStore) Source() []byte { return s.reference }

// Size returns N.
func (s *SNVStore) Size() int { return s.n }

// Len returns the number of catalogued SNVs.
func (s *SNVStore) Len() int { return len(s.records) }

// At returns the i'th record in position order.
func (s *SNVStore) At(i int) SNVRecord { return s.records[i] }

// Insert adds a single-base replacement at position, rejecting it
// with ErrCoverageConflict if an existing record at the same position
// shares a member.
func (s *SNVStore) Insert(position int, base byte, cov *coverage.Set) (int, error) {
	idx := sort.Search(len(s.records), func(i int) bool { return s.records[i].Position >= position })
	for i := idx; i < len(s.records) && s.records[i].Position == position; i++ {
		if s.records[i].Coverage.And(cov).Any() {
			return -1, errors.Wrapf(ErrCoverageConflict, "rcms: snv at %d conflicts with existing entry", position)
		}
	}
	s.records = append(s.records, SNVRecord{})
	copy(s.records[idx+1:], s.records[idx:])
	s.records[idx] = SNVRecord{Position: position, Base: base, Coverage: cov}
	return idx, nil
}

// ToVariant materializes the i'th record as a variant.Variant, for
// callers that need a uniform representation (e.g. Composite).
func (s *SNVStore) ToVariant(i int) variant.Variant {
	r := s.records[i]
	return variant.New(r.Position, r.Position+1, []byte{r.Base}, r.Coverage)
}

// Validate checks position ordering and coverage domain consistency.
func (s *SNVStore) Validate() error {
	for i := 1; i < len(s.records); i++ {
		if s.records[i].Position < s.records[i-1].Position {
			return errors.Wrapf(ErrStoreMalformed, "rcms: snv record %d out of order", i)
		}
	}
	for i, r := range s.records {
		if r.Coverage != nil && r.Coverage.Domain() != s.n {
			return errors.Wrapf(ErrStoreMalformed, "rcms: snv record %d coverage domain %d != store %d", i, r.Coverage.Domain(), s.n)
		}
	}
	return nil
}
