// Package ranker fuses heterogeneous relevance signals into one
// composite score and produces a deterministic total order.
package ranker

import (
	"sort"

	"github.com/rengrx/research-report-orchestrator/internal/corpus"
	"github.com/rengrx/research-report-orchestrator/internal/retriever"
	"github.com/rengrx/research-report-orchestrator/pkg/types"
)

// lexicalBonus is the weight of the normalized BM25 score blended into
// the relevance signal when a vector similarity is present.
const lexicalBonus = 0.1

// Weights are the fusion weights applied to the four signals. They are
// validated at configuration load and must sum to 1.0.
type Weights struct {
	Lexical     float64 // blended relevance signal
	DocWeight   float64 // document trust/importance
	DocLength   float64 // normalized document length
	Credibility float64 // source credibility
}

// Ranker merges candidate hits across query variants into a ranked,
// truncated result list.
type Ranker struct {
	corpus  *corpus.Corpus
	weights Weights
}

// New creates a ranker over the corpus with the given weights.
func New(c *corpus.Corpus, w Weights) *Ranker {
	return &Ranker{corpus: c, weights: w}
}

// Rank fuses all candidate hits into scored results of length <= topK.
//
// The composite score is
//
//	w_lex*norm(relevance) + w_weight*doc.Weight +
//	w_length*norm(doc.Length) + w_cred*doc.Credibility
//
// where norm is min-max normalization over the current candidate set (a
// degenerate set with a single distinct value normalizes to 1.0), and
// relevance is the vector similarity blended with a small lexical bonus
// when a vector score is present, or the raw BM25 score otherwise.
// Candidates appearing under multiple variants keep their maximum
// composite score. Ties are broken by ascending document ordinal, so
// identical inputs always produce identical output.
func (r *Ranker) Rank(hits []retriever.Hit, topK int) []types.ScoredHit {
	if len(hits) == 0 || topK <= 0 {
		return []types.ScoredHit{}
	}

	relevance := r.relevanceSignals(hits)

	relNorm := newNormalizer(relevance)
	lenNorm := newNormalizer(candidateLengths(r.corpus, hits))

	// Merge by document: keep the best composite across variants.
	type best struct {
		hit       retriever.Hit
		composite float64
	}
	merged := make(map[int]best, len(hits))
	for i, h := range hits {
		doc := r.corpus.Doc(h.DocOrdinal)
		score := r.weights.Lexical*relNorm.normalize(relevance[i]) +
			r.weights.DocWeight*doc.Weight +
			r.weights.DocLength*lenNorm.normalize(float64(doc.Length)) +
			r.weights.Credibility*doc.Credibility
		score = clamp01(score)

		prev, ok := merged[h.DocOrdinal]
		if !ok || score > prev.composite {
			merged[h.DocOrdinal] = best{hit: h, composite: score}
		}
	}

	ordered := make([]best, 0, len(merged))
	for _, b := range merged {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].composite != ordered[j].composite {
			return ordered[i].composite > ordered[j].composite
		}
		return ordered[i].hit.DocOrdinal < ordered[j].hit.DocOrdinal
	})

	if topK > len(ordered) {
		topK = len(ordered)
	}
	results := make([]types.ScoredHit, topK)
	for i := 0; i < topK; i++ {
		b := ordered[i]
		doc := r.corpus.Doc(b.hit.DocOrdinal)
		results[i] = types.ScoredHit{
			DocumentID:     doc.Ordinal,
			SourceID:       doc.SourceID,
			Rank:           i + 1,
			LexicalScore:   b.hit.Lexical,
			VectorScore:    b.hit.Vector,
			CompositeScore: b.composite,
			Variant:        b.hit.Variant,
			Source:         doc.Breadcrumb,
			Content:        doc.Text,
		}
	}
	return results
}

// relevanceSignals computes the raw relevance signal per hit: the vector
// similarity plus a small bonus from the normalized BM25 score when a
// vector score is present, or the BM25 score alone otherwise.
func (r *Ranker) relevanceSignals(hits []retriever.Hit) []float64 {
	var maxLex float64
	for _, h := range hits {
		if h.Lexical > maxLex {
			maxLex = h.Lexical
		}
	}

	signals := make([]float64, len(hits))
	for i, h := range hits {
		if h.Vector != nil {
			bonus := 0.0
			if maxLex > 0 {
				bonus = lexicalBonus * (h.Lexical / maxLex)
			}
			signals[i] = *h.Vector + bonus
		} else {
			signals[i] = h.Lexical
		}
	}
	return signals
}

func candidateLengths(c *corpus.Corpus, hits []retriever.Hit) []float64 {
	lengths := make([]float64, len(hits))
	for i, h := range hits {
		lengths[i] = float64(c.Doc(h.DocOrdinal).Length)
	}
	return lengths
}

// normalizer maps raw signals into [0,1] relative to the min and max
// observed in the current candidate set.
type normalizer struct {
	min, max float64
}

func newNormalizer(values []float64) normalizer {
	n := normalizer{}
	if len(values) == 0 {
		return n
	}
	n.min, n.max = values[0], values[0]
	for _, v := range values[1:] {
		if v < n.min {
			n.min = v
		}
		if v > n.max {
			n.max = v
		}
	}
	return n
}

// normalize applies min-max normalization. A degenerate set with a
// single distinct value maps to 1.0 to avoid division by zero.
func (n normalizer) normalize(v float64) float64 {
	if n.max <= n.min {
		return 1.0
	}
	return (v - n.min) / (n.max - n.min)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
