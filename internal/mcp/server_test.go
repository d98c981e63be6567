package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdocgen/repodoc/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("REPODOC_EMBEDDING_PROVIDER", "local")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg := config.Default()
	cfg.IndexPath = filepath.Join(t.TempDir(), "index.db")

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(s.close)
	return s
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func writeTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	code := `from flask import Flask
app = Flask(__name__)

@app.get("/items")
def list_items():
    return []
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte(code), 0o644))
	return root
}

func TestNewServerComponents(t *testing.T) {
	s := newTestServer(t)

	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.store)
	assert.NotNil(t, s.retriever)
	assert.NotNil(t, s.chunker)
	assert.NotNil(t, s.scanner)
	assert.NotNil(t, s.pipeline)
}

func TestNewServerUsesConfiguredEmbedder(t *testing.T) {
	t.Setenv("REPODOC_EMBEDDING_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("JINA_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg := config.Default()
	cfg.IndexPath = filepath.Join(t.TempDir(), "index.db")
	cfg.Embedder.Provider = "local"

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(s.close)
	assert.Equal(t, "local", s.emb.Provider())
}

func TestNewServerRejectsUnkeyedRemoteEmbedder(t *testing.T) {
	t.Setenv("REPODOC_EMBEDDING_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("JINA_API_KEY", "")

	cfg := config.Default()
	cfg.IndexPath = filepath.Join(t.TempDir(), "index.db")
	cfg.Embedder.Provider = "openai"

	_, err := NewServer(cfg, nil)
	require.Error(t, err)
}

func TestHandleIndexRepo(t *testing.T) {
	s := newTestServer(t)
	repo := writeTestRepo(t)

	res, err := s.handleIndexRepo(context.Background(), callRequest(map[string]interface{}{
		"path": repo,
	}))
	require.NoError(t, err)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &response))
	assert.Equal(t, true, response["indexed"])
	assert.Equal(t, float64(1), response["files_indexed"])
	assert.Equal(t, float64(1), response["chunks_created"])
}

func TestHandleIndexRepoMissingPath(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleIndexRepo(context.Background(), callRequest(map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleIndexRepoRelativePath(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleIndexRepo(context.Background(), callRequest(map[string]interface{}{
		"path": "relative/path",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleRetrieveContext(t *testing.T) {
	s := newTestServer(t)
	repo := writeTestRepo(t)

	_, err := s.handleIndexRepo(context.Background(), callRequest(map[string]interface{}{
		"path": repo,
	}))
	require.NoError(t, err)

	res, err := s.handleRetrieveContext(context.Background(), callRequest(map[string]interface{}{
		"query": "flask items route",
		"k":     float64(3),
	}))
	require.NoError(t, err)

	var response struct {
		Query   string `json:"query"`
		K       int    `json:"k"`
		Context string `json:"context"`
		Results []struct {
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &response))
	assert.Equal(t, "flask items route", response.Query)
	assert.Equal(t, 3, response.K)
	require.Len(t, response.Results, 1)
	assert.Contains(t, response.Context, "flask")
}

func TestHandleRetrieveContextEmptyQuery(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleRetrieveContext(context.Background(), callRequest(map[string]interface{}{
		"query": "",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestHandleRetrieveContextBadK(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleRetrieveContext(context.Background(), callRequest(map[string]interface{}{
		"query": "anything",
		"k":     float64(500),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleGenerateDocs(t *testing.T) {
	s := newTestServer(t)
	repo := writeTestRepo(t)

	res, err := s.handleGenerateDocs(context.Background(), callRequest(map[string]interface{}{
		"path": repo,
	}))
	require.NoError(t, err)

	var report struct {
		Status      string `json:"status"`
		ProjectInfo struct {
			Framework string `json:"framework"`
		} `json:"project_info"`
		Endpoints []string `json:"endpoints"`
		Warnings  []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, "success", report.Status)
	assert.Equal(t, "Flask", report.ProjectInfo.Framework)
	assert.Equal(t, []string{"GET /items"}, report.Endpoints)
	// No GOOGLE_API_KEY in tests, so every generated section degrades.
	assert.NotEmpty(t, report.Warnings)
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, validatePath(dir))
	assert.ErrorIs(t, validatePath(""), ErrPathRequired)
	assert.ErrorIs(t, validatePath("not/absolute"), ErrPathNotAbsolute)
	assert.ErrorIs(t, validatePath(filepath.Join(dir, "missing")), ErrPathNotFound)

	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.ErrorIs(t, validatePath(file), ErrNotDirectory)
}
