// Package retrieval orchestrates the full retrieve operation: cache
// lookup, query expansion, per-variant scoring, rank fusion, cache
// write-through and analytics logging.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rengrx/research-report-orchestrator/internal/analytics"
	"github.com/rengrx/research-report-orchestrator/internal/cache"
	"github.com/rengrx/research-report-orchestrator/internal/expander"
	"github.com/rengrx/research-report-orchestrator/internal/ranker"
	"github.com/rengrx/research-report-orchestrator/internal/retriever"
	"github.com/rengrx/research-report-orchestrator/pkg/types"
)

// ErrEmptyQuery is returned when the query contains no content.
var ErrEmptyQuery = fmt.Errorf("query cannot be empty")

// Options configures the retrieval service.
type Options struct {
	EnableExpansion bool
	MaxVariants     int
	DefaultTopK     int
}

// Deps are the collaborators of the service. Cache and Analytics may be
// nil when the corresponding feature is disabled.
type Deps struct {
	Retriever *retriever.Retriever
	Ranker    *ranker.Ranker
	Expander  *expander.Expander
	Cache     *cache.Manager
	Analytics *analytics.Recorder
	Logger    *zap.Logger
}

// Service coordinates one retrieve operation per call. All collaborators
// are constructed once at startup and shared; the service itself is
// stateless and safe for concurrent use.
type Service struct {
	retr      *retriever.Retriever
	ranker    *ranker.Ranker
	expander  *expander.Expander
	cache     *cache.Manager
	analytics *analytics.Recorder
	opts      Options
	log       *zap.Logger
}

// cachedPayload is the serialized form of a ranked result stored in the
// cache.
type cachedPayload struct {
	Hits    []types.ScoredHit `json:"hits"`
	Context string            `json:"context"`
	Method  string            `json:"method"`
}

// NewService creates the retrieval service.
func NewService(deps Deps, opts Options) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.MaxVariants < 1 {
		opts.MaxVariants = 1
	}
	if opts.DefaultTopK < 1 {
		opts.DefaultTopK = 6
	}
	return &Service{
		retr:      deps.Retriever,
		ranker:    deps.Ranker,
		expander:  deps.Expander,
		cache:     deps.Cache,
		analytics: deps.Analytics,
		opts:      opts,
		log:       deps.Logger,
	}
}

// Retrieve runs the full retrieval flow for one query. Failures local
// to one signal source or one cache tier are absorbed inside the
// respective component; Retrieve only fails on an empty query or a
// cancelled context.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) (*types.RetrieveResult, error) {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = s.opts.DefaultTopK
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.Key(query, topK)

	if s.cache != nil {
		if payload, hit, tier := s.cache.Get(key); hit {
			var cached cachedPayload
			if err := json.Unmarshal(payload, &cached); err != nil {
				s.log.Warn("cached payload corrupted, recomputing", zap.Error(err))
			} else {
				result := &types.RetrieveResult{
					Query:     query,
					TopK:      topK,
					Hits:      cached.Hits,
					Context:   cached.Context,
					Method:    types.MethodCache,
					CacheHit:  true,
					CacheTier: string(tier),
					Duration:  time.Since(start),
				}
				s.record(ctx, result)
				return result, nil
			}
		}
	}

	variants := s.variants(query)
	hits := s.scoreVariants(ctx, variants)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := s.ranker.Rank(hits, topK)

	method := types.MethodLexical
	if s.retr.VectorCapable() {
		method = types.MethodLexicalVector
	}

	result := &types.RetrieveResult{
		Query:    query,
		TopK:     topK,
		Hits:     ranked,
		Context:  FormatContext(ranked),
		Method:   method,
		Duration: time.Since(start),
	}

	if s.cache != nil && len(ranked) > 0 {
		payload, err := json.Marshal(cachedPayload{
			Hits:    ranked,
			Context: result.Context,
			Method:  method,
		})
		if err != nil {
			s.log.Warn("result payload marshal failed, skipping cache write", zap.Error(err))
		} else {
			s.cache.Set(key, payload)
		}
	}

	s.record(ctx, result)
	return result, nil
}

// variants produces the query variants to score. With expansion disabled
// the normalized original is the only variant.
func (s *Service) variants(query string) []expander.Variant {
	if !s.opts.EnableExpansion {
		return []expander.Variant{{Text: expander.Normalize(query), Method: expander.MethodOriginal}}
	}
	return s.expander.Expand(query, s.opts.MaxVariants)
}

// scoreVariants scores all variants, in parallel when there is more
// than one. Results are collected into a slice indexed by variant
// position, so the merged candidate set is identical regardless of
// completion order; the ranker's tie-break keeps the final order
// deterministic.
func (s *Service) scoreVariants(ctx context.Context, variants []expander.Variant) []retriever.Hit {
	if len(variants) == 1 {
		return s.retr.Score(ctx, variants[0])
	}

	perVariant := make([][]retriever.Hit, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		g.Go(func() error {
			perVariant[i] = s.retr.Score(gctx, v)
			return nil
		})
	}
	// Scoring never returns errors; the group only propagates context
	// cancellation.
	_ = g.Wait()

	var hits []retriever.Hit
	for _, vh := range perVariant {
		hits = append(hits, vh...)
	}
	return hits
}

// record logs the outcome to the analytics side channel, best effort.
func (s *Service) record(ctx context.Context, result *types.RetrieveResult) {
	if s.analytics == nil {
		return
	}
	s.analytics.Log(ctx, types.AnalyticsRecord{
		Timestamp:   time.Now(),
		Query:       result.Query,
		Method:      result.Method,
		ResultCount: len(result.Hits),
		LatencyMS:   float64(result.Duration.Microseconds()) / 1000.0,
		CacheHit:    result.CacheHit,
	})
}

// FormatContext renders ranked hits as the numbered material block the
// generation pipeline consumes. An empty hit list renders as an empty
// string.
func FormatContext(hits []types.ScoredHit) string {
	if len(hits) == 0 {
		return ""
	}

	var b strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&b, "\n--- Material %d (score: %.3f) ---\n", h.Rank, h.CompositeScore)
		fmt.Fprintf(&b, "[Source]: %s\n", h.Source)
		fmt.Fprintf(&b, "[Content]: %s\n", h.Content)
	}
	return b.String()
}
