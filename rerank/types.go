package rerank

import "context"

// Result is one reranked document reference: the index into the input
// texts slice and the backend's relevance score.
type Result struct {
	Index int
	Score float32
}

// Reranker scores texts against a query and returns up to topN results
// ordered by descending score. Callers always supply raw text, never
// backend document objects, so backend identity stays invisible.
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string, topN int) ([]Result, error)
}

// FallbackResults produces identity-order results with synthetically
// decreasing scores (1.0 - i/len(texts)). Used whenever a backend is
// unavailable so downstream ordering logic keeps working.
func FallbackResults(texts []string, topN int) []Result {
	n := topN
	if n > len(texts) || n <= 0 {
		n = len(texts)
	}
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		results[i] = Result{
			Index: i,
			Score: 1.0 - float32(i)/float32(len(texts)),
		}
	}
	return results
}

func clampTopN(topN, count int) int {
	if topN <= 0 || topN > count {
		return count
	}
	return topN
}
