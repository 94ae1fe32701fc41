package search

import (
	"context"

	"github.com/grailbio/jst/adaptor"
	"github.com/grailbio/jst/config"
	"github.com/grailbio/jst/match"
	"github.com/grailbio/jst/rcms"
	"github.com/grailbio/jst/seqtree"
	"github.com/grailbio/jst/traversal"
)

// Pipeline ties the pigeonhole filter to the bidirectional verifier,
// the "data flow" spec.md §2 describes: a single forward tree drives
// the filter's label stream, and every seed hit it emits spawns a
// right-extension walk over that same forward tree plus a
// left-extension walk over the store's reversed view, combining the
// two error budgets before a match is reported (spec.md §4.H).
type Pipeline struct {
	store   *rcms.Store
	forward *seqtree.Tree
	reverse *seqtree.Tree
	cfg     config.Search
}

// NewPipeline validates cfg and builds the forward and reverse trees
// over store.
func NewPipeline(store *rcms.Store, cfg config.Search) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	forward, err := seqtree.New(store)
	if err != nil {
		return nil, err
	}
	reverse, err := seqtree.New(store.Reversed())
	if err != nil {
		return nil, err
	}
	return &Pipeline{store: store, forward: forward, reverse: reverse, cfg: cfg}, nil
}

// Search runs every query in queries against the pipeline's store,
// returning every qualifying match record (spec.md §6) in the order
// their seeds were produced. A query rejected by Prepare (empty) is
// reported as an error for the whole batch, matching spec.md §7's
// "recovered locally" disposition only for QueryTooShort, which
// Prepare already absorbs per-query by disabling the filter for it.
// Matches are found only through filter seeds: when the filter is
// disabled for the whole batch (Index.Disabled) Search returns no
// records, and a query too short to be indexed gets no records.
func (p *Pipeline) Search(queries []Query) ([]match.Record, error) {
	idx, err := Prepare(queries, p.cfg.ErrorRate)
	if err != nil {
		return nil, err
	}
	if idx.Disabled() {
		return nil, nil
	}

	var hits []SeedHit
	d := traversal.New(adaptor.Leaf(p.forward.Root()), NewFilterState(idx))
	if err := d.Run(context.Background(), func(v interface{}) {
		hits = append(hits, v.(SeedHit))
	}); err != nil {
		return nil, err
	}

	q := idx.ShapeLength()
	seen := make(map[[2]int]bool) // [queryIndex, matchStart], spec.md §4.H dedup rule
	var out []match.Record
	for _, hit := range hits {
		errorCount := idx.ErrorCount(hit.QueryIndex)
		matchStart := hit.HaystackPos - q + 1 - hit.QueryOffset
		if matchStart < 0 {
			continue // seed's own left context would run off the member's start
		}
		key := [2]int{hit.QueryIndex, matchStart}
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, p.verify(queries[hit.QueryIndex], hit, matchStart, errorCount, q)...)
	}
	return dedupRecords(out), nil
}

// verify runs the right- and left-extension verifiers for one seed
// hit and returns the match records the combined error budget admits
// (spec.md §4.H steps 1-3).
func (p *Pipeline) verify(query Query, hit SeedHit, matchStart, errorCount, q int) []match.Record {
	suffix := query.Seq[hit.QueryOffset+q:]
	rightRoot := adaptor.Trim(hit.Node, len(suffix)+errorCount)
	rightResults := VerifyExtension(rightRoot, suffix, errorCount, hit.HaystackPos+1)
	if len(rightResults) == 0 {
		return nil
	}

	// ContextSize bounds how far left of the seed the verifier is
	// willing to reach (spec.md §3 E invariant (iii) / §8 property 1),
	// threaded in directly as a cap on the reversed pattern rather than
	// through the left_extend adaptor: left_extend windows a node's own
	// already-materialized label to its trailing k characters, which
	// only helps when the caller wants less of a label it already has
	// in hand, not when it wants to stop the verifier from extending
	// further than k characters of *pattern* — that's a property of
	// how much of the query is offered, not of how a label is exposed.
	prefix := query.Seq[:hit.QueryOffset]
	if len(prefix) > p.cfg.ContextSize {
		prefix = prefix[len(prefix)-p.cfg.ContextSize:]
	}
	reversedPrefix := reverseQueryBytes(prefix)

	// SeekReferenceWithCoverage is rooted at the seed's own coverage,
	// not a fresh fold over the reverse tree's candidate variants: the
	// seed's matched span can itself straddle a variant it took as an
	// alternate edge, whose mirrored breakend lies before revPos in the
	// reverse tree's ordering, and a naive reseek would wrongly assume
	// next_ref was taken there (see seqtree.Tree.SeekReference).
	refLen := len(p.store.Source())
	revPos := rcms.ToReversePosition(refLen, matchStart)
	leftNode := p.reverse.SeekReferenceWithCoverage(revPos, hit.Node.Coverage())
	leftRoot := adaptor.Trim(adaptor.Leaf(leftNode), len(reversedPrefix)+errorCount)
	leftResults := VerifyExtension(leftRoot, reversedPrefix, errorCount, revPos)
	if len(leftResults) == 0 {
		return nil
	}

	var out []match.Record
	for _, right := range rightResults {
		for _, left := range leftResults {
			total := right.Errors + left.Errors
			if total > errorCount {
				continue
			}
			members := right.Node.Coverage().And(left.Node.Coverage())
			for m := 0; m < members.Domain(); m++ {
				if !members.Test(m) {
					continue
				}
				out = append(out, match.Record{
					QueryID:           query.ID,
					MemberID:          m,
					ReferencePosition: matchStart,
					ErrorCount:        total,
				})
			}
		}
	}
	return out
}

// dedupRecords collapses records that agree on (query, member,
// position) to the one with the fewest errors. Right and left
// extension trees are not merge-collapsed (spec.md §4.F's merge
// adaptor isn't wired into either), so distinct branch pairs can
// independently verify the same member at the same position; this is
// the downstream dedup spec.md §4.H explicitly allows ("Dedup may be
// performed downstream").
func dedupRecords(records []match.Record) []match.Record {
	if len(records) == 0 {
		return records
	}
	type key struct {
		query  string
		member int
		pos    int
	}
	best := make(map[key]int, len(records))
	order := make([]key, 0, len(records))
	for _, r := range records {
		k := key{r.QueryID, r.MemberID, r.ReferencePosition}
		if e, ok := best[k]; !ok {
			best[k] = r.ErrorCount
			order = append(order, k)
		} else if r.ErrorCount < e {
			best[k] = r.ErrorCount
		}
	}
	out := make([]match.Record, 0, len(order))
	for _, k := range order {
		out = append(out, match.Record{QueryID: k.query, MemberID: k.member, ReferencePosition: k.pos, ErrorCount: best[k]})
	}
	return out
}

// reverseQueryBytes returns b with its bytes in reverse order,
// mirroring rcms's own byte-reversal but kept local: search has no
// other reason to import rcms's internals, only its exported Store.
func reverseQueryBytes(b []byte) []byte {
	r := make([]byte, len(b))
	for i, c := range b {
		r[len(b)-1-i] = c
	}
	return r
}
