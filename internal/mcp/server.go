package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/rengrx/research-report-orchestrator/internal/analytics"
	"github.com/rengrx/research-report-orchestrator/internal/cache"
	"github.com/rengrx/research-report-orchestrator/internal/corpus"
	"github.com/rengrx/research-report-orchestrator/internal/retrieval"
	"github.com/rengrx/research-report-orchestrator/internal/retriever"
)

const (
	// ServerName is the MCP server name
	ServerName = "reportmat"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Deps are the long-lived collaborators the server exposes over MCP.
// Cache and Analytics may be nil when disabled.
type Deps struct {
	Service   *retrieval.Service
	Retriever *retriever.Retriever
	Corpus    *corpus.Corpus
	LoadStats *corpus.LoadStats
	Cache     *cache.Manager
	Analytics *analytics.Recorder
	Logger    *zap.Logger
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	service   *retrieval.Service
	retriever *retriever.Retriever
	corpus    *corpus.Corpus
	loadStats *corpus.LoadStats
	cache     *cache.Manager
	analytics *analytics.Recorder
	log       *zap.Logger
}

// NewServer creates a new MCP server instance over already-constructed
// dependencies.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		service:   deps.Service,
		retriever: deps.Retriever,
		corpus:    deps.Corpus,
		loadStats: deps.LoadStats,
		cache:     deps.Cache,
		analytics: deps.Analytics,
		log:       deps.Logger,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.analytics.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(retrieveMaterialTool(), s.handleRetrieveMaterial)
	s.mcp.AddTool(corpusStatusTool(), s.handleCorpusStatus)
	s.mcp.AddTool(cacheStatsTool(), s.handleCacheStats)
	s.mcp.AddTool(cacheCleanupTool(), s.handleCacheCleanup)
	s.mcp.AddTool(topQueriesTool(), s.handleTopQueries)
}
