package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rengrx/research-report-orchestrator/internal/analytics"
	"github.com/rengrx/research-report-orchestrator/internal/cache"
	"github.com/rengrx/research-report-orchestrator/internal/config"
	"github.com/rengrx/research-report-orchestrator/internal/corpus"
	"github.com/rengrx/research-report-orchestrator/internal/expander"
	"github.com/rengrx/research-report-orchestrator/internal/logger"
	"github.com/rengrx/research-report-orchestrator/internal/mcp"
	"github.com/rengrx/research-report-orchestrator/internal/ranker"
	"github.com/rengrx/research-report-orchestrator/internal/retrieval"
	"github.com/rengrx/research-report-orchestrator/internal/retriever"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	query := flag.String("query", "", "run one retrieval and exit instead of serving MCP")
	topK := flag.Int("top-k", 0, "number of results for -query (0 uses the configured default)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("reportmat retrieval server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", analytics.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", analytics.DriverName)
		os.Exit(0)
	}

	// .env is optional; environment always wins over the file.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting reportmat",
		zap.String("version", version),
		zap.String("env", cfg.Env),
		zap.String("sqlite_driver", analytics.DriverName))

	deps, err := build(cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}

	if *query != "" {
		runOnce(deps, *query, *topK, log)
		return
	}

	serve(deps, log)
}

// build wires the retrieval pipeline from a validated configuration.
// Cache and analytics construction failures are soft: the process comes
// up without the affected feature.
func build(cfg *config.Config, log *zap.Logger) (mcp.Deps, error) {
	corp, stats, err := corpus.LoadDir(cfg.Corpus.MaterialDir, corpus.LoadOptions{
		ChunkSize:    cfg.Corpus.ChunkSize,
		ChunkOverlap: cfg.Corpus.ChunkOverlap,
	}, log)
	if err != nil {
		return mcp.Deps{}, fmt.Errorf("load corpus: %w", err)
	}

	synonyms := expander.DefaultSynonyms()
	if cfg.Retrieval.SynonymsPath != "" {
		loaded, err := expander.LoadSynonyms(cfg.Retrieval.SynonymsPath)
		if err != nil {
			log.Warn("synonym table unreadable, using built-in defaults",
				zap.String("path", cfg.Retrieval.SynonymsPath), zap.Error(err))
		} else {
			synonyms = loaded
		}
	}
	exp := expander.New(synonyms)

	retr := retriever.New(corp, retriever.Options{
		EnableVector: cfg.Retrieval.EnableVector,
	}, log)

	rank := ranker.New(corp, ranker.Weights{
		Lexical:     cfg.Retrieval.Weights.Lexical,
		DocWeight:   cfg.Retrieval.Weights.DocWeight,
		DocLength:   cfg.Retrieval.Weights.DocLength,
		Credibility: cfg.Retrieval.Weights.Credibility,
	})

	var cm *cache.Manager
	if cfg.Cache.Enabled {
		cm, err = cache.NewManager(cache.Options{
			Dir:           cfg.Cache.Dir,
			MemoryTTL:     cfg.Cache.MemoryTTL(),
			DiskTTL:       cfg.Cache.DiskTTL(),
			MaxBytes:      cfg.Cache.MaxSizeBytes,
			MemoryEntries: cfg.Cache.MemoryEntries,
		}, log)
		if err != nil {
			log.Warn("cache unavailable, continuing without it", zap.Error(err))
			cm = nil
		}
	}

	var rec *analytics.Recorder
	if cfg.Analytics.Enabled {
		rec, err = analytics.Open(cfg.Analytics.Path, log)
		if err != nil {
			log.Warn("query log unavailable, continuing without analytics", zap.Error(err))
			rec = nil
		}
	}

	svc := retrieval.NewService(retrieval.Deps{
		Retriever: retr,
		Ranker:    rank,
		Expander:  exp,
		Cache:     cm,
		Analytics: rec,
		Logger:    log,
	}, retrieval.Options{
		EnableExpansion: cfg.Retrieval.EnableExpansion,
		MaxVariants:     cfg.Retrieval.MaxVariants,
		DefaultTopK:     cfg.Retrieval.DefaultTopK,
	})

	return mcp.Deps{
		Service:   svc,
		Retriever: retr,
		Corpus:    corp,
		LoadStats: stats,
		Cache:     cm,
		Analytics: rec,
		Logger:    log,
	}, nil
}

// runOnce executes a single retrieval and prints the formatted context
// block to stdout.
func runOnce(deps mcp.Deps, query string, topK int, log *zap.Logger) {
	defer func() { _ = deps.Analytics.Close() }()

	result, err := deps.Service.Retrieve(context.Background(), query, topK)
	if err != nil {
		log.Fatal("retrieval failed", zap.Error(err))
	}

	fmt.Printf("query: %s\nmethod: %s  results: %d  duration: %s\n",
		result.Query, result.Method, len(result.Hits), result.Duration)
	if result.Context == "" {
		fmt.Println("no matching material")
		return
	}
	fmt.Println(result.Context)
}

// serve runs the MCP server on stdio until a shutdown signal arrives.
func serve(deps mcp.Deps, log *zap.Logger) {
	srv := mcp.NewServer(deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Info("MCP server ready, listening on stdio")
		errChan <- srv.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}

	log.Info("server stopped")
}
