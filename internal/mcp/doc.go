// Package mcp implements the Model Context Protocol (MCP) server for
// repodoc.
//
// The server exposes three tools to MCP clients:
//   - index_repo: scan a repository and add its source chunks to the
//     vector index
//   - retrieve_context: fetch the top-k indexed chunks for a query
//   - generate_docs: produce a full documentation report for a
//     repository
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Standard output carries protocol messages only; all logging goes to
// standard error.
//
// # Tool: index_repo
//
//	Request:
//	{
//	  "name": "index_repo",
//	  "arguments": {"path": "/path/to/repo"}
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "files_scanned": 120,
//	  "files_indexed": 87,
//	  "chunks_created": 342,
//	  "index_entries": 342,
//	  "duration_ms": 410
//	}
//
// # Tool: retrieve_context
//
//	Request:
//	{
//	  "name": "retrieve_context",
//	  "arguments": {"query": "authentication middleware", "k": 5}
//	}
//
// The response carries the scored chunks plus a ready-to-use context
// string with the chunk texts joined by blank lines.
//
// # Tool: generate_docs
//
//	Request:
//	{
//	  "name": "generate_docs",
//	  "arguments": {"path": "/path/to/repo"}
//	}
//
// The response is the JSON documentation report: project info,
// endpoints, per-endpoint explanations, summaries, and dependency
// analysis. Sections whose model call failed carry a warning string
// instead; the report itself still succeeds.
package mcp
