package retriever

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rengrx/research-report-orchestrator/internal/corpus"
	"github.com/rengrx/research-report-orchestrator/internal/expander"
)

// Hit is one candidate document scored against a single query variant.
type Hit struct {
	DocOrdinal int
	Lexical    float64  // raw BM25 score, 0 when the doc entered via vector only
	Vector     *float64 // raw cosine similarity, nil when unavailable
	Variant    string   // query variant text that produced this hit
}

// Options configures retriever construction.
type Options struct {
	// EnableVector requests vector augmentation. The capability is still
	// probed at construction and may degrade at runtime.
	EnableVector bool
	// VectorIndex overrides the default TF-IDF index. Used by tests to
	// simulate backend failures.
	VectorIndex VectorIndex
}

// Retriever holds the immutable corpus and scores query variants against
// it. Lexical BM25 scoring is always available; vector augmentation is a
// capability that degrades permanently on the first failure.
type Retriever struct {
	corpus *corpus.Corpus
	index  *bm25Index
	vec    VectorIndex

	vectorCapable atomic.Bool
	degradeOnce   sync.Once

	log *zap.Logger
}

// New builds a retriever over the corpus. Absence of a usable vector
// index at construction is not an error: the retriever starts degraded
// and lexical scoring carries every query.
func New(c *corpus.Corpus, opts Options, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}

	r := &Retriever{
		corpus: c,
		index:  newBM25Index(c),
		log:    log,
	}

	if !opts.EnableVector {
		r.log.Info("vector scoring disabled by configuration, using lexical only")
		return r
	}

	if opts.VectorIndex != nil {
		r.vec = opts.VectorIndex
		r.vectorCapable.Store(true)
		return r
	}

	vec, err := buildVectorIndex(c)
	if err != nil {
		r.log.Info("vector index unavailable, using lexical scoring only", zap.Error(err))
		return r
	}
	r.vec = vec
	r.vectorCapable.Store(true)
	r.log.Info("vector index built",
		zap.Int("documents", c.Len()),
		zap.Int("vocabulary", len(vec.vocabulary)))
	return r
}

// buildVectorIndex constructs the TF-IDF index, converting panics into
// errors so a broken build can never escape the retriever boundary.
func buildVectorIndex(c *corpus.Corpus) (idx *tfidfIndex, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			idx = nil
			err = fmt.Errorf("vector index build panicked: %v", rec)
		}
	}()
	return newTFIDFIndex(c)
}

// VectorCapable reports whether vector augmentation is currently
// available. Once false it stays false for the process lifetime.
func (r *Retriever) VectorCapable() bool {
	return r.vectorCapable.Load()
}

// Score scores one query variant against the corpus. It returns the
// union of lexical candidates (zero term overlap excluded) and vector
// candidates. Vector failures degrade the capability and never fail the
// query.
func (r *Retriever) Score(ctx context.Context, variant expander.Variant) []Hit {
	if err := ctx.Err(); err != nil {
		return nil
	}

	queryTokens := Tokenize(variant.Text)
	lexical := r.index.score(queryTokens)

	var sims map[int]float64
	if r.vectorCapable.Load() {
		sims = r.similarities(queryTokens)
	}

	hits := make([]Hit, 0, len(lexical)+len(sims))
	for ord, score := range lexical {
		h := Hit{DocOrdinal: ord, Lexical: score, Variant: variant.Text}
		if sim, ok := sims[ord]; ok {
			s := sim
			h.Vector = &s
		}
		hits = append(hits, h)
	}
	// Vector-only candidates: no lexical overlap but nonzero similarity.
	for ord, sim := range sims {
		if _, ok := lexical[ord]; ok {
			continue
		}
		s := sim
		hits = append(hits, Hit{DocOrdinal: ord, Vector: &s, Variant: variant.Text})
	}
	return hits
}

// similarities invokes the vector index, absorbing errors and panics.
// Any failure permanently degrades the capability and the current query
// completes on lexical scores alone.
func (r *Retriever) similarities(queryTokens []string) (sims map[int]float64) {
	defer func() {
		if rec := recover(); rec != nil {
			sims = nil
			r.degrade(fmt.Errorf("vector similarity panicked: %v", rec))
		}
	}()

	sims, err := r.vec.Similarities(queryTokens)
	if err != nil {
		r.degrade(err)
		return nil
	}
	return sims
}

// degrade disables vector scoring for the remainder of the process. The
// advisory is logged exactly once.
func (r *Retriever) degrade(err error) {
	r.vectorCapable.Store(false)
	r.degradeOnce.Do(func() {
		r.log.Warn("vector scoring failed, permanently degrading to lexical-only retrieval",
			zap.Error(err))
	})
}
