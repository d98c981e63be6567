package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/smartdocgen/repodoc/internal/chunker"
	"github.com/smartdocgen/repodoc/internal/config"
	"github.com/smartdocgen/repodoc/internal/docgen"
	"github.com/smartdocgen/repodoc/internal/embedder"
	"github.com/smartdocgen/repodoc/internal/index"
	"github.com/smartdocgen/repodoc/internal/llm"
	"github.com/smartdocgen/repodoc/internal/retriever"
	"github.com/smartdocgen/repodoc/internal/scanner"
)

const (
	// ServerName is the MCP server name
	ServerName = "repodoc-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	cfg       *config.AppConfig
	store     *index.Store
	emb       embedder.Embedder
	retriever *retriever.Retriever
	chunker   *chunker.Chunker
	scanner   *scanner.Scanner
	pipeline  *docgen.Pipeline
	logger    *log.Logger
}

// NewServer creates a new MCP server instance. The index lives at
// cfg.IndexPath, defaulting to ~/.repodoc/repodoc.db. If no generation
// API key is configured the generate_docs tool degrades its AI sections
// to warnings instead of failing.
func NewServer(cfg *config.AppConfig, logger *log.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}

	indexPath := cfg.IndexPath
	if indexPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir := filepath.Join(home, ".repodoc")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
		indexPath = filepath.Join(dir, "repodoc.db")
	}

	emb, err := embedder.NewFromConfig(embedder.Config{
		Kind:      cfg.Embedder.Provider,
		Model:     cfg.Embedder.Model,
		CacheSize: cfg.Embedder.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	store, err := index.Open(indexPath, emb)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	retr, err := retriever.New(store, emb)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	ch, err := chunker.New(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	provider := newProviderFromEnv(cfg, logger)

	maxFileSize := int64(cfg.Scanner.MaxFileSizeMB) * 1024 * 1024

	pipeline, err := docgen.New(docgen.Config{
		ChunkSize:   cfg.Chunker.ChunkSize,
		Overlap:     &cfg.Chunker.Overlap,
		TopK:        cfg.Retrieval.TopK,
		MaxFileSize: maxFileSize,
	}, emb, provider, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		cfg:       cfg,
		store:     store,
		emb:       emb,
		retriever: retr,
		chunker:   ch,
		scanner:   scanner.New(scanner.Config{MaxFileSize: maxFileSize}),
		pipeline:  pipeline,
		logger:    logger,
	}

	s.registerTools()
	return s, nil
}

// newProviderFromEnv builds the generation provider, or nil when no key
// is configured.
func newProviderFromEnv(cfg *config.AppConfig, logger *log.Logger) llm.Provider {
	provider, err := llm.NewGeminiProvider(os.Getenv("GOOGLE_API_KEY"), cfg.Generation.Model)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			logger.Printf("GOOGLE_API_KEY not set, generated report sections will be unavailable")
			return nil
		}
		logger.Printf("generation provider unavailable: %v", err)
		return nil
	}
	return provider
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer s.close()
	return server.ServeStdio(s.mcp)
}

func (s *Server) close() {
	_ = s.store.Close()
	_ = s.emb.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexRepoTool(), s.handleIndexRepo)
	s.mcp.AddTool(retrieveContextTool(), s.handleRetrieveContext)
	s.mcp.AddTool(generateDocsTool(), s.handleGenerateDocs)
}
