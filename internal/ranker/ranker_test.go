package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rengrx/research-report-orchestrator/internal/corpus"
	"github.com/rengrx/research-report-orchestrator/internal/retriever"
)

var testWeights = Weights{
	Lexical:     0.55,
	DocWeight:   0.15,
	DocLength:   0.10,
	Credibility: 0.20,
}

func rankerCorpus() *corpus.Corpus {
	return corpus.New([]corpus.Document{
		{SourceID: "a#0", Source: "a.txt", Breadcrumb: "a.txt", Text: "现货市场价格机制研究报告", Weight: 1.0, Credibility: 0.7},
		{SourceID: "b#0", Source: "b.txt", Breadcrumb: "b.txt", Text: "光伏发电", Weight: 1.0, Credibility: 0.7},
		{SourceID: "c#0", Source: "c.txt", Breadcrumb: "c.txt", Text: "电网运行数据分析", Weight: 1.0, Credibility: 0.7},
	})
}

func lexHit(ord int, score float64) retriever.Hit {
	return retriever.Hit{DocOrdinal: ord, Lexical: score, Variant: "q"}
}

func TestRank(t *testing.T) {
	r := New(rankerCorpus(), testWeights)

	t.Run("orders by descending composite", func(t *testing.T) {
		hits := []retriever.Hit{lexHit(1, 3.0), lexHit(0, 8.5), lexHit(2, 5.0)}

		results := r.Rank(hits, 10)
		require.Len(t, results, 3)
		assert.Equal(t, 0, results[0].DocumentID)
		assert.Equal(t, 2, results[1].DocumentID)
		assert.Equal(t, 1, results[2].DocumentID)

		for i, res := range results {
			assert.Equal(t, i+1, res.Rank)
			assert.GreaterOrEqual(t, res.CompositeScore, 0.0)
			assert.LessOrEqual(t, res.CompositeScore, 1.0)
		}
		assert.Greater(t, results[0].CompositeScore, results[1].CompositeScore)
		assert.Greater(t, results[1].CompositeScore, results[2].CompositeScore)
	})

	t.Run("truncates to topK", func(t *testing.T) {
		hits := []retriever.Hit{lexHit(0, 3.0), lexHit(1, 2.0), lexHit(2, 1.0)}
		results := r.Rank(hits, 2)
		require.Len(t, results, 2)
		assert.Equal(t, 0, results[0].DocumentID)
	})

	t.Run("single candidate normalizes to full relevance", func(t *testing.T) {
		results := r.Rank([]retriever.Hit{lexHit(1, 0.3)}, 5)
		require.Len(t, results, 1)
		// All normalized signals are 1.0 for a singleton, so the
		// composite is the weight mass carried by the doc's own fields.
		expected := testWeights.Lexical + testWeights.DocWeight*1.0 +
			testWeights.DocLength + testWeights.Credibility*0.7
		assert.InDelta(t, expected, results[0].CompositeScore, 1e-9)
	})

	t.Run("same doc across variants keeps best composite", func(t *testing.T) {
		hits := []retriever.Hit{
			{DocOrdinal: 0, Lexical: 1.0, Variant: "original"},
			{DocOrdinal: 0, Lexical: 6.0, Variant: "synonym"},
			{DocOrdinal: 1, Lexical: 3.0, Variant: "original"},
		}
		results := r.Rank(hits, 10)
		require.Len(t, results, 2)
		assert.Equal(t, 0, results[0].DocumentID)
		assert.Equal(t, "synonym", results[0].Variant)
	})

	t.Run("ties broken by ascending ordinal", func(t *testing.T) {
		// Identical docs guarantee identical composites.
		c := corpus.New([]corpus.Document{
			{Text: "同样内容", Weight: 0.5, Credibility: 0.5},
			{Text: "同样内容", Weight: 0.5, Credibility: 0.5},
			{Text: "同样内容", Weight: 0.5, Credibility: 0.5},
		})
		rr := New(c, testWeights)

		hits := []retriever.Hit{lexHit(2, 1.0), lexHit(0, 1.0), lexHit(1, 1.0)}
		results := rr.Rank(hits, 10)
		require.Len(t, results, 3)
		assert.Equal(t, 0, results[0].DocumentID)
		assert.Equal(t, 1, results[1].DocumentID)
		assert.Equal(t, 2, results[2].DocumentID)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, r.Rank(nil, 5))
		assert.Empty(t, r.Rank([]retriever.Hit{lexHit(0, 1.0)}, 0))
	})

	t.Run("result carries document fields", func(t *testing.T) {
		results := r.Rank([]retriever.Hit{lexHit(0, 2.0)}, 1)
		require.Len(t, results, 1)
		assert.Equal(t, "a#0", results[0].SourceID)
		assert.Equal(t, "a.txt", results[0].Source)
		assert.Equal(t, "现货市场价格机制研究报告", results[0].Content)
		assert.Equal(t, 2.0, results[0].LexicalScore)
	})
}

func TestRelevanceSignals(t *testing.T) {
	r := New(rankerCorpus(), testWeights)

	t.Run("lexical only passes through", func(t *testing.T) {
		signals := r.relevanceSignals([]retriever.Hit{lexHit(0, 4.2), lexHit(1, 0.0)})
		assert.Equal(t, []float64{4.2, 0.0}, signals)
	})

	t.Run("vector present blends lexical bonus", func(t *testing.T) {
		v := 0.8
		hits := []retriever.Hit{
			{DocOrdinal: 0, Lexical: 10.0, Vector: &v},
			{DocOrdinal: 1, Lexical: 5.0},
		}
		signals := r.relevanceSignals(hits)
		// bonus = 0.1 * (10/10) on top of the similarity
		assert.InDelta(t, 0.9, signals[0], 1e-9)
		assert.Equal(t, 5.0, signals[1])
	})
}

func TestNormalizer(t *testing.T) {
	n := newNormalizer([]float64{2, 4, 6})
	assert.Equal(t, 0.0, n.normalize(2))
	assert.Equal(t, 0.5, n.normalize(4))
	assert.Equal(t, 1.0, n.normalize(6))

	degenerate := newNormalizer([]float64{3, 3, 3})
	assert.Equal(t, 1.0, degenerate.normalize(3))
}
