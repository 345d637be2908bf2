package retriever

import (
	"math"

	"github.com/rengrx/research-report-orchestrator/internal/corpus"
)

// BM25 parameters. k1 controls term-frequency saturation, b controls
// length normalization.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// posting records one document's occurrence data for a term.
type posting struct {
	ord  int // document ordinal
	freq int // term frequency in the document
}

// bm25Index is an in-memory inverted index over the corpus. Built once
// at construction, then read-only and safe for concurrent scoring.
type bm25Index struct {
	postings  map[string][]posting
	docLens   []float64 // token count per document ordinal
	avgDocLen float64
	numDocs   int
}

func newBM25Index(c *corpus.Corpus) *bm25Index {
	n := c.Len()
	idx := &bm25Index{
		postings: make(map[string][]posting),
		docLens:  make([]float64, n),
		numDocs:  n,
	}

	var totalLen float64
	for i := 0; i < n; i++ {
		tokens := Tokenize(c.Doc(i).Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		idx.docLens[i] = float64(len(tokens))
		totalLen += float64(len(tokens))
		for term, freq := range tf {
			idx.postings[term] = append(idx.postings[term], posting{ord: i, freq: freq})
		}
	}
	if n > 0 {
		idx.avgDocLen = totalLen / float64(n)
	}
	return idx
}

// score computes BM25 scores for the query tokens against every
// document. Documents with zero term overlap are absent from the result.
func (idx *bm25Index) score(queryTokens []string) map[int]float64 {
	scores := make(map[int]float64)
	if idx.numDocs == 0 || idx.avgDocLen == 0 {
		return scores
	}

	// Deduplicate query terms; repeating a term in the query does not
	// multiply its contribution.
	seen := make(map[string]struct{}, len(queryTokens))
	for _, term := range queryTokens {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		plist := idx.postings[term]
		if len(plist) == 0 {
			continue
		}
		df := float64(len(plist))
		idf := math.Log(1 + (float64(idx.numDocs)-df+0.5)/(df+0.5))

		for _, p := range plist {
			f := float64(p.freq)
			norm := f * (bm25K1 + 1) / (f + bm25K1*(1-bm25B+bm25B*idx.docLens[p.ord]/idx.avgDocLen))
			scores[p.ord] += idf * norm
		}
	}
	return scores
}
