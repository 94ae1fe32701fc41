// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package journal implements the journaled sequence: a sparse list of
// edits against a shared reference, lazily materialized into a member
// sequence without copying the reference. See spec.md §4.D.
package journal

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrJournalOrdering is returned when RecordEdit is called with a
// position earlier than the previous edit's end.
var ErrJournalOrdering = errors.New("journal: edit recorded out of order")

// ErrJournalOverflow is returned when an edit's span would run past
// the end of the reference sequence.
var ErrJournalOverflow = errors.New("journal: edit span exceeds remaining suffix")

// Entry is one recorded edit: the reference span [Low, High) it
// replaces, and the payload that replaces it. Payload may be empty
// (deletion), Low may equal High (insertion), or both may be
// non-trivial (replacement).
type Entry struct {
	Low, High int
	Payload   []byte
}

// Journal is a sparse edit list over a shared reference sequence. It
// never copies the reference; RecordEdit only appends an Entry, and
// Sequence() walks the reference and the entries together to
// materialize the member sequence on demand.
type Journal struct {
	reference []byte
	entries   []Entry
	lastHigh  int
	length    int
	// entryEnd[i] is the output-sequence position immediately after
	// entries[i]'s payload, i.e. the cumulative realized length once
	// entries[0..i] have been applied. Parallel to entries; lets Seek
	// binary-search for the entry straddling an arbitrary position
	// instead of replaying the journal byte by byte.
	entryEnd []int
}

// New returns an empty Journal over reference: with no entries
// recorded, its realized sequence is the reference itself.
func New(reference []byte) *Journal {
	return &Journal{reference: reference}
}

// RecordEdit appends an edit replacing reference[low:high) with
// payload. Edits must arrive in non-decreasing position order (low
// must be >= the previous edit's high); out-of-order edits fail with
// ErrJournalOrdering. high must not exceed len(reference); overflow
// fails with ErrJournalOverflow.
func (j *Journal) RecordEdit(low, high int, payload []byte) error {
	if low < j.lastHigh {
		return errors.Wrapf(ErrJournalOrdering, "journal: edit at %d precedes prior edit ending at %d", low, j.lastHigh)
	}
	if high > len(j.reference) {
		return errors.Wrapf(ErrJournalOverflow, "journal: edit high %d exceeds reference length %d", high, len(j.reference))
	}
	if high < low {
		high = low
	}
	gap := low - j.lastHigh
	j.length += gap + len(payload)
	j.entries = append(j.entries, Entry{Low: low, High: high, Payload: payload})
	j.entryEnd = append(j.entryEnd, j.length)
	j.lastHigh = high
	return nil
}

// Entries returns the recorded edit list, in the order they were
// appended. The returned slice is owned by the Journal.
func (j *Journal) Entries() []Entry { return j.entries }

// Length returns the length of the member sequence this journal
// realizes: spec.md §8 property 7, the sum of every gap between
// entries (and the reference tail after the last entry) plus every
// payload's length.
func (j *Journal) Length() int {
	return j.length + (len(j.reference) - j.lastHigh)
}

// Sequence returns a Cursor over the materialized member sequence,
// positioned at its start. Reading through the cursor never allocates
// beyond the cursor itself: it walks reference spans and entry
// payloads directly.
func (j *Journal) Sequence() *Cursor {
	return &Cursor{j: j}
}

// Seek returns a Cursor positioned at output offset pos, the realized
// sequence's pos'th byte. It locates the straddling entry with
// sort.Search over entryEnd rather than replaying from the start, so
// random-access reads cost O(log k) in the number of recorded edits
// rather than O(pos): spec.md §3 D / §4 D.
func (j *Journal) Seek(pos int) *Cursor {
	c := &Cursor{j: j}
	c.Seek(pos)
	return c
}

// Cursor streams the journal's realized sequence one byte at a time,
// the operation spec.md §4.D identifies as dominating cost ("lazily
// yielding the next k characters of the virtual sequence").
type Cursor struct {
	j          *Journal
	refPos     int
	entryIdx   int
	payloadOff int
	inPayload  bool
}

// Next returns the next byte of the realized sequence, and false once
// exhausted.
func (c *Cursor) Next() (byte, bool) {
	j := c.j
	for {
		if c.inPayload {
			e := j.entries[c.entryIdx]
			if c.payloadOff < len(e.Payload) {
				b := e.Payload[c.payloadOff]
				c.payloadOff++
				return b, true
			}
			c.refPos = e.High
			c.inPayload = false
			c.entryIdx++
			c.payloadOff = 0
			continue
		}
		limit := len(j.reference)
		if c.entryIdx < len(j.entries) {
			limit = j.entries[c.entryIdx].Low
		}
		if c.refPos < limit {
			b := j.reference[c.refPos]
			c.refPos++
			return b, true
		}
		if c.entryIdx < len(j.entries) {
			c.inPayload = true
			continue
		}
		return 0, false
	}
}

// Seek repositions c to output offset pos, so the next Next()/Take
// call reads starting from there. It binary-searches the journal's
// entryEnd boundaries for the entry (if any) straddling pos, giving
// O(log k) seeks instead of O(pos) replays.
func (c *Cursor) Seek(pos int) {
	j := c.j
	idx := sort.Search(len(j.entryEnd), func(i int) bool { return j.entryEnd[i] > pos })
	gapStart := 0
	if idx > 0 {
		gapStart = j.entryEnd[idx-1]
	}
	prevHigh := 0
	if idx > 0 {
		prevHigh = j.entries[idx-1].High
	}
	if idx == len(j.entries) {
		c.entryIdx = idx
		c.inPayload = false
		c.payloadOff = 0
		c.refPos = prevHigh + (pos - gapStart)
		return
	}
	e := j.entries[idx]
	payloadStart := gapStart + (e.Low - prevHigh)
	if pos < payloadStart {
		c.entryIdx = idx
		c.inPayload = false
		c.payloadOff = 0
		c.refPos = prevHigh + (pos - gapStart)
		return
	}
	c.entryIdx = idx
	c.inPayload = true
	c.payloadOff = pos - payloadStart
	c.refPos = e.High
}

// Take materializes the next up-to-k bytes of the sequence, for
// callers (e.g. the labelled adaptor) that want a contiguous label
// rather than a byte at a time.
func (c *Cursor) Take(k int) []byte {
	buf := make([]byte, 0, k)
	for i := 0; i < k; i++ {
		b, ok := c.Next()
		if !ok {
			break
		}
		buf = append(buf, b)
	}
	return buf
}

// Materialize realizes the journal's entire sequence into a single
// slice. Intended for tests and small sequences; hot paths should use
// Sequence()/Take instead.
func (j *Journal) Materialize() []byte {
	c := j.Sequence()
	return c.Take(j.Length())
}
