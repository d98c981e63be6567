package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexRepoTool returns the tool definition for index_repo
func indexRepoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_repo",
		Description: "Scan a repository, chunk its source files, and add them to the vector index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
			},
			Required: []string{"path"},
		},
	}
}

// retrieveContextTool returns the tool definition for retrieve_context
func retrieveContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "retrieve_context",
		Description: "Retrieve the most relevant indexed chunks for a query, ready to paste into a prompt",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text query",
				},
				"k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of chunks to retrieve (1-100)",
					"default":     5,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// generateDocsTool returns the tool definition for generate_docs
func generateDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_docs",
		Description: "Analyze a repository and generate a documentation report (endpoints, summaries, dependency analysis)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
			},
			Required: []string{"path"},
		},
	}
}
