// Package mcp implements the Model Context Protocol server exposing
// the retrieval subsystem to report-generation clients.
//
// The server communicates over stdio using JSON-RPC 2.0 and exposes
// five tools:
//
//   - retrieve_material: rank corpus snippets against a query
//   - corpus_status: corpus size and load statistics
//   - cache_stats: cumulative cache counters
//   - cache_cleanup: purge stale disk cache entries
//   - top_queries: most frequent queries from the analytics log
//
// All logging goes to stderr; stdout carries only protocol frames.
package mcp
