package rcms

import (
	"github.com/grailbio/jst/variant"
)

// Composite exposes a Store and an SNVStore sharing one reference and
// coverage domain through a single unified iteration order, merged by
// the composite sort key (variant.Less), grounded on the original's
// variant_store_composite.hpp. It is non-owning: both underlying
// stores are still independently insertable.
type Composite struct {
	generic *Store
	snv     *SNVStore
}

// NewComposite pairs a generic Store and an SNVStore that share a
// reference and coverage domain.
func NewComposite(generic *Store, snv *SNVStore) *Composite {
	return &Composite{generic: generic, snv: snv}
}

// Size returns N, the shared coverage domain.
func (c *Composite) Size() int { return c.generic.Size() }

// Source returns the shared reference sequence.
func (c *Composite) Source() []byte { return c.generic.Source() }

// Len returns the total number of variants across both stores.
func (c *Composite) Len() int { return c.generic.Len() + c.snv.Len() }

// Variants returns the full merged catalog in composite-key order.
// This allocates the whole merged slice on every call; At calls it
// too, so iterating the result once is cheaper than repeated At calls.
func (c *Composite) Variants() []variant.Variant {
	out := make([]variant.Variant, 0, c.Len())
	gi, si := 0, 0
	for gi < c.generic.Len() || si < c.snv.Len() {
		switch {
		case gi >= c.generic.Len():
			out = append(out, c.snv.ToVariant(si))
			si++
		case si >= c.snv.Len():
			out = append(out, c.generic.At(gi))
			gi++
		case variant.Less(c.snv.ToVariant(si), c.generic.At(gi)):
			out = append(out, c.snv.ToVariant(si))
			si++
		default:
			out = append(out, c.generic.At(gi))
			gi++
		}
	}
	return out
}

// At returns the i'th variant in merged composite-key order. It is
// O(N) per call; Variants should be preferred when iterating the
// whole catalog.
func (c *Composite) At(i int) variant.Variant {
	return c.Variants()[i]
}
