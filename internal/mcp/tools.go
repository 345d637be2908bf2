package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rengrx/research-report-orchestrator/internal/retrieval"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32001 // Query parameter is empty
)

// handleRetrieveMaterial handles the retrieve_material tool invocation
func (s *Server) handleRetrieveMaterial(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	topK := getIntDefault(args, "top_k", 6)
	if topK < 1 || topK > 50 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 50", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	format := getStringDefault(args, "format", "json")
	if format != "json" && format != "text" {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid format", map[string]interface{}{
			"param":   "format",
			"value":   format,
			"allowed": []string{"json", "text"},
		})
	}

	result, err := s.service.Retrieve(ctx, query, topK)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			return nil, newMCPError(ErrorCodeEmptyQuery, "query cannot be empty", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if format == "text" {
		return mcp.NewToolResultText(result.Context), nil
	}

	response := map[string]interface{}{
		"query":       result.Query,
		"top_k":       result.TopK,
		"method":      result.Method,
		"cache_hit":   result.CacheHit,
		"duration_ms": result.Duration.Milliseconds(),
		"hits":        result.Hits,
	}
	if result.CacheHit {
		response["cache_tier"] = result.CacheTier
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCorpusStatus handles the corpus_status tool invocation
func (s *Server) handleCorpusStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"documents":      s.corpus.Len(),
		"vector_capable": s.retriever.VectorCapable(),
		"cache_enabled":  s.cache != nil,
	}
	if s.loadStats != nil {
		response["files_loaded"] = s.loadStats.FilesLoaded
		response["files_skipped"] = s.loadStats.FilesSkipped
		if len(s.loadStats.SkippedFiles) > 0 {
			response["skipped_files"] = s.loadStats.SkippedFiles
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCacheStats handles the cache_stats tool invocation
func (s *Server) handleCacheStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.cache == nil {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"enabled": false,
		})), nil
	}

	stats := s.cache.Stats()
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"enabled":        true,
		"total_requests": stats.TotalRequests,
		"memory_hits":    stats.MemoryHits,
		"disk_hits":      stats.DiskHits,
		"misses":         stats.Misses,
		"hit_rate":       fmt.Sprintf("%.1f%%", stats.HitRate*100),
	})), nil
}

// handleCacheCleanup handles the cache_cleanup tool invocation
func (s *Server) handleCacheCleanup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.cache == nil {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"enabled": false,
			"removed": 0,
		})), nil
	}

	removed := s.cache.Cleanup()
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"enabled": true,
		"removed": removed,
	})), nil
}

// handleTopQueries handles the top_queries tool invocation
func (s *Server) handleTopQueries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	top, err := s.analytics.TopQueries(ctx, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "top query aggregation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"enabled": s.analytics != nil,
		"queries": top,
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
