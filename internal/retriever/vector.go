package retriever

import (
	"errors"
	"math"
	"sort"

	"github.com/rengrx/research-report-orchestrator/internal/corpus"
)

// ErrNoVocabulary is returned when the corpus yields no usable terms for
// the vector index.
var ErrNoVocabulary = errors.New("no tokens found in corpus for vector index")

// VectorIndex computes similarity scores between a tokenized query and
// every corpus document. Implementations may fail at runtime; the
// Retriever treats any error as a permanent capability degrade.
type VectorIndex interface {
	// Similarities returns per-ordinal similarity scores for documents
	// with nonzero similarity.
	Similarities(queryTokens []string) (map[int]float64, error)
}

// tfidfIndex is a TF-IDF vectorizer over the corpus with precomputed,
// L2-normalized sparse document vectors. Cosine similarity against a
// normalized query vector reduces to a sparse dot product.
type tfidfIndex struct {
	vocabulary map[string]int
	idf        []float64
	docVecs    []map[int]float64 // per document ordinal, term index -> weight
}

// newTFIDFIndex builds the vector index. Corpora with no usable tokens
// produce ErrNoVocabulary, the expected state of a minimally provisioned
// environment rather than a fault.
func newTFIDFIndex(c *corpus.Corpus) (*tfidfIndex, error) {
	n := c.Len()
	if n == 0 {
		return nil, ErrNoVocabulary
	}

	// Document frequencies over unique terms per document.
	df := make(map[string]int)
	docTokens := make([][]string, n)
	for i := 0; i < n; i++ {
		tokens := Tokenize(c.Doc(i).Text)
		docTokens[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, ErrNoVocabulary
	}

	// Stable vocabulary ordering keeps the index deterministic.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	idx := &tfidfIndex{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		docVecs:    make([]map[int]float64, n),
	}
	nf := float64(n)
	for i, term := range terms {
		idx.vocabulary[term] = i
		// Smoothed IDF
		idx.idf[i] = math.Log((1+nf)/(1+float64(df[term]))) + 1.0
	}

	for ord, tokens := range docTokens {
		idx.docVecs[ord] = idx.vectorize(tokens)
	}
	return idx, nil
}

// vectorize builds the L2-normalized TF-IDF vector for a token sequence.
func (idx *tfidfIndex) vectorize(tokens []string) map[int]float64 {
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokens {
		if term, ok := idx.vocabulary[tok]; ok {
			tf[term]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	vec := make(map[int]float64, len(tf))
	var norm float64
	for term, count := range tf {
		w := float64(count) / float64(total) * idx.idf[term]
		vec[term] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

// Similarities implements VectorIndex using cosine similarity.
func (idx *tfidfIndex) Similarities(queryTokens []string) (map[int]float64, error) {
	qvec := idx.vectorize(queryTokens)
	if len(qvec) == 0 {
		return map[int]float64{}, nil
	}

	sims := make(map[int]float64)
	for ord, dvec := range idx.docVecs {
		if len(dvec) == 0 {
			continue
		}
		// Both vectors are unit length, so the dot product is the
		// cosine similarity.
		var dot float64
		for term, qw := range qvec {
			if dw, ok := dvec[term]; ok {
				dot += qw * dw
			}
		}
		if dot > 0 {
			sims[ord] = dot
		}
	}
	return sims, nil
}
