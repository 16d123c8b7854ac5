package retrieval

import (
	"sort"

	"github.com/poiesic/greenlight/core"
)

// FuseByMaxScore merges per-variant result sets into one deduplicated
// set. Hits sharing an id are collapsed to the single hit with the
// highest score; max-score dominance is the defined tie-break, not an
// average or rank combination. Output is ordered score-descending with
// id as a stable tie-break and never contains duplicate ids.
func FuseByMaxScore(batches ...[]*core.CandidateDoc) []*core.CandidateDoc {
	best := make(map[string]*core.CandidateDoc)
	order := make([]string, 0)

	for _, batch := range batches {
		for _, doc := range batch {
			if doc == nil {
				continue
			}
			existing, ok := best[doc.ID]
			if !ok {
				best[doc.ID] = doc
				order = append(order, doc.ID)
				continue
			}
			if doc.Score > existing.Score {
				best[doc.ID] = doc
			}
		}
	}

	fused := make([]*core.CandidateDoc, 0, len(order))
	for _, id := range order {
		fused = append(fused, best[id])
	}
	sortByScoreDesc(fused)
	return fused
}

// Diversify truncates a fused set to limit entries in score order.
// True marginal-relevance selection needs the document vectors, which
// are not carried through the candidate set; until they are, diversity
// reduces to score-sorted truncation. Guarantees no duplicate ids and
// a return count not exceeding limit.
func Diversify(docs []*core.CandidateDoc, limit int) []*core.CandidateDoc {
	if limit <= 0 {
		return nil
	}
	out := make([]*core.CandidateDoc, len(docs))
	copy(out, docs)
	sortByScoreDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortByScoreDesc(docs []*core.CandidateDoc) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ID < docs[j].ID
	})
}
