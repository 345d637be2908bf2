package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// retrieveMaterialTool returns the tool definition for retrieve_material
func retrieveMaterialTool() mcp.Tool {
	return mcp.Tool{
		Name:        "retrieve_material",
		Description: "Retrieve supporting material snippets relevant to a query, ranked by composite relevance",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text query (Chinese or English)",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of material snippets to return (1-50)",
					"default":     6,
					"minimum":     1,
					"maximum":     50,
				},
				"format": map[string]interface{}{
					"type":        "string",
					"description": "Response format: 'json' for structured hits, 'text' for the formatted context block",
					"default":     "json",
					"enum":        []string{"json", "text"},
				},
			},
			Required: []string{"query"},
		},
	}
}

// corpusStatusTool returns the tool definition for corpus_status
func corpusStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "corpus_status",
		Description: "Report corpus size, load statistics and retrieval capabilities",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// cacheStatsTool returns the tool definition for cache_stats
func cacheStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cache_stats",
		Description: "Report cumulative query cache counters (requests, hits per tier, misses)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// cacheCleanupTool returns the tool definition for cache_cleanup
func cacheCleanupTool() mcp.Tool {
	return mcp.Tool{
		Name:        "cache_cleanup",
		Description: "Remove stale disk cache entries and report how many were removed",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// topQueriesTool returns the tool definition for top_queries
func topQueriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "top_queries",
		Description: "Return the most frequent queries from the analytics log",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of queries to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}
