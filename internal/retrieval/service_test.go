package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rengrx/research-report-orchestrator/internal/cache"
	"github.com/rengrx/research-report-orchestrator/internal/corpus"
	"github.com/rengrx/research-report-orchestrator/internal/expander"
	"github.com/rengrx/research-report-orchestrator/internal/ranker"
	"github.com/rengrx/research-report-orchestrator/internal/retriever"
	"github.com/rengrx/research-report-orchestrator/pkg/types"
)

var serviceWeights = ranker.Weights{
	Lexical:     0.55,
	DocWeight:   0.15,
	DocLength:   0.10,
	Credibility: 0.20,
}

func serviceCorpus() *corpus.Corpus {
	return corpus.New([]corpus.Document{
		{SourceID: "a#0", Source: "a.txt", Breadcrumb: "a.txt", Text: "电力现货市场价格形成机制", Weight: 1.0, Credibility: 0.7},
		{SourceID: "b#0", Source: "b.txt", Breadcrumb: "b.txt", Text: "光伏发电装机容量增长情况", Weight: 1.0, Credibility: 0.7},
		{SourceID: "c#0", Source: "c.txt", Breadcrumb: "c.txt", Text: "现货交易规则与价格波动", Weight: 1.0, Credibility: 0.7},
	})
}

func newTestService(t *testing.T, withCache bool) *Service {
	t.Helper()
	c := serviceCorpus()

	var cm *cache.Manager
	if withCache {
		var err error
		cm, err = cache.NewManager(cache.Options{
			Dir:       t.TempDir(),
			MemoryTTL: 5 * time.Minute,
			DiskTTL:   time.Hour,
		}, nil)
		require.NoError(t, err)
	}

	return NewService(Deps{
		Retriever: retriever.New(c, retriever.Options{EnableVector: true}, nil),
		Ranker:    ranker.New(c, serviceWeights),
		Expander:  expander.New(expander.DefaultSynonyms()),
		Cache:     cm,
	}, Options{
		EnableExpansion: true,
		MaxVariants:     5,
		DefaultTopK:     6,
	})
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query is rejected", func(t *testing.T) {
		svc := newTestService(t, false)
		_, err := svc.Retrieve(ctx, "   ", 5)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("returns ranked hits within topK", func(t *testing.T) {
		svc := newTestService(t, false)
		result, err := svc.Retrieve(ctx, "电力现货价格", 2)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(result.Hits), 2)
		require.NotEmpty(t, result.Hits)
		assert.Equal(t, types.MethodLexicalVector, result.Method)
		assert.False(t, result.CacheHit)
		assert.NotEmpty(t, result.Context)

		for i, h := range result.Hits {
			assert.Equal(t, i+1, h.Rank)
			require.NoError(t, h.Validate())
		}
	})

	t.Run("non-positive topK uses the default", func(t *testing.T) {
		svc := newTestService(t, false)
		result, err := svc.Retrieve(ctx, "现货", 0)
		require.NoError(t, err)
		assert.Equal(t, 6, result.TopK)
	})

	t.Run("idempotent without cache", func(t *testing.T) {
		svc := newTestService(t, false)
		a, err := svc.Retrieve(ctx, "电力现货价格", 3)
		require.NoError(t, err)
		b, err := svc.Retrieve(ctx, "电力现货价格", 3)
		require.NoError(t, err)
		assert.Equal(t, a.Hits, b.Hits)
		assert.Equal(t, a.Context, b.Context)
	})

	t.Run("second call is a cache hit with identical hits", func(t *testing.T) {
		svc := newTestService(t, true)

		first, err := svc.Retrieve(ctx, "电力现货价格", 3)
		require.NoError(t, err)
		require.False(t, first.CacheHit)

		second, err := svc.Retrieve(ctx, "电力现货价格", 3)
		require.NoError(t, err)
		assert.True(t, second.CacheHit)
		assert.Equal(t, types.MethodCache, second.Method)
		assert.Equal(t, string(cache.TierMemory), second.CacheTier)
		assert.Equal(t, first.Hits, second.Hits)
		assert.Equal(t, first.Context, second.Context)
	})

	t.Run("normalized spellings share a cache entry", func(t *testing.T) {
		svc := newTestService(t, true)

		_, err := svc.Retrieve(ctx, "电力现货 价格", 3)
		require.NoError(t, err)
		second, err := svc.Retrieve(ctx, "  电力现货   价格 ", 3)
		require.NoError(t, err)
		assert.True(t, second.CacheHit)
	})

	t.Run("no results are not cached", func(t *testing.T) {
		svc := newTestService(t, true)

		first, err := svc.Retrieve(ctx, "毫无关联词汇", 3)
		require.NoError(t, err)
		assert.Empty(t, first.Hits)

		second, err := svc.Retrieve(ctx, "毫无关联词汇", 3)
		require.NoError(t, err)
		assert.False(t, second.CacheHit)
	})

	t.Run("cancelled context", func(t *testing.T) {
		svc := newTestService(t, false)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.Retrieve(cctx, "现货", 3)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFormatContext(t *testing.T) {
	t.Run("empty hits", func(t *testing.T) {
		assert.Equal(t, "", FormatContext(nil))
	})

	t.Run("renders rank, score, source and content", func(t *testing.T) {
		out := FormatContext([]types.ScoredHit{
			{Rank: 1, CompositeScore: 0.912, Source: "a.txt > 市场", Content: "内容一"},
			{Rank: 2, CompositeScore: 0.5, Source: "b.txt", Content: "内容二"},
		})
		assert.Contains(t, out, "--- Material 1 (score: 0.912) ---")
		assert.Contains(t, out, "[Source]: a.txt > 市场")
		assert.Contains(t, out, "[Content]: 内容一")
		assert.Contains(t, out, "--- Material 2 (score: 0.500) ---")
	})
}

func TestVariantsDisabledExpansion(t *testing.T) {
	c := serviceCorpus()
	svc := NewService(Deps{
		Retriever: retriever.New(c, retriever.Options{}, nil),
		Ranker:    ranker.New(c, serviceWeights),
		Expander:  expander.New(expander.DefaultSynonyms()),
	}, Options{EnableExpansion: false, MaxVariants: 5, DefaultTopK: 6})

	vs := svc.variants("  电力现货  ")
	require.Len(t, vs, 1)
	assert.Equal(t, "电力现货", vs[0].Text)
	assert.Equal(t, expander.MethodOriginal, vs[0].Method)
}
