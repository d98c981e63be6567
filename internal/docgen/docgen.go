// Package docgen orchestrates the documentation pipeline: scan a
// repository, index its source into the vector store, analyze it, and
// generate each report section from retrieved context.
//
// Section generation degrades rather than fails: if the model call for
// one section errors, that section carries a warning string and the
// rest of the report is still produced. Pipeline-stage errors (scan,
// chunk, index) remain fatal and typed.
package docgen

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/smartdocgen/repodoc/internal/analyzer"
	"github.com/smartdocgen/repodoc/internal/chunker"
	"github.com/smartdocgen/repodoc/internal/embedder"
	"github.com/smartdocgen/repodoc/internal/index"
	"github.com/smartdocgen/repodoc/internal/llm"
	"github.com/smartdocgen/repodoc/internal/retriever"
	"github.com/smartdocgen/repodoc/internal/scanner"
	"github.com/smartdocgen/repodoc/pkg/types"
)

// Retrieval queries per section, matching what each section needs from
// the corpus.
const (
	queryProjectOverview = "Project overview"
	queryAPIRoutes       = "API routes and controllers"
	queryArchitecture    = "project architecture"
)

// ProjectInfo describes the analyzed repository.
type ProjectInfo struct {
	Name      string   `json:"name"`
	Languages []string `json:"languages"`
	Framework string   `json:"framework"`
}

// Report is the full generated documentation for one repository.
type Report struct {
	Status                string                    `json:"status"`
	ProjectInfo           ProjectInfo               `json:"project_info"`
	Endpoints             []string                  `json:"endpoints"`
	EndpointExplanations  []llm.EndpointExplanation `json:"endpoint_explanations,omitempty"`
	ProjectSummary        string                    `json:"project_summary,omitempty"`
	LanguageSummary       string                    `json:"language_summary,omitempty"`
	DependencyFile        string                    `json:"dependency_file,omitempty"`
	DependencyExplanation string                    `json:"dependency_explanation,omitempty"`
	Warnings              []string                  `json:"warnings,omitempty"`
}

// Config contains pipeline configuration.
type Config struct {
	ChunkSize   int    // default chunker.DefaultChunkSize
	Overlap     *int   // nil means chunker.DefaultOverlap; zero overlap is valid
	TopK        int    // chunks retrieved per section (default retriever.DefaultTopK)
	IndexPath   string // SQLite index location (default: .repodoc-index.db inside the repo)
	MaxFileSize int64  // per-file scan cap in bytes (default scanner.DefaultMaxFileSize)
}

// Pipeline wires the scanner, chunker, index, retriever, and model
// provider into a report generator.
type Pipeline struct {
	scan      *scanner.Scanner
	chunk     *chunker.Chunker
	emb       embedder.Embedder
	provider  llm.Provider
	topK      int
	indexPath string
	logger    *log.Logger
}

// New creates a Pipeline. The provider may be nil, in which case every
// generated section degrades to a warning and only the static analysis
// survives.
func New(cfg Config, emb embedder.Embedder, provider llm.Provider, logger *log.Logger) (*Pipeline, error) {
	if emb == nil {
		return nil, fmt.Errorf("%w: pipeline requires an embedder", types.ErrConfiguration)
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = chunker.DefaultChunkSize
	}
	overlap := chunker.DefaultOverlap
	if cfg.Overlap != nil {
		overlap = *cfg.Overlap
	}
	if cfg.TopK <= 0 {
		cfg.TopK = retriever.DefaultTopK
	}

	ch, err := chunker.New(cfg.ChunkSize, overlap)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.Default()
	}

	return &Pipeline{
		scan:      scanner.New(scanner.Config{MaxFileSize: cfg.MaxFileSize}),
		chunk:     ch,
		emb:       emb,
		provider:  provider,
		topK:      cfg.TopK,
		indexPath: cfg.IndexPath,
		logger:    logger,
	}, nil
}

// Generate runs the full pipeline over the repository at repoPath.
func (p *Pipeline) Generate(ctx context.Context, repoPath string) (*Report, error) {
	docs, err := p.scan.Scan(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no readable files found in %s", types.ErrInvalidArgument, repoPath)
	}

	sourceDocs := analyzer.FilterSourceDocs(docs, scanner.IsSourceFile)
	if len(sourceDocs) == 0 {
		return nil, fmt.Errorf("%w: no source code files found in %s", types.ErrInvalidArgument, repoPath)
	}

	chunks := p.chunk.Split(sourceDocs)

	indexPath := p.indexPath
	if indexPath == "" {
		indexPath = filepath.Join(repoPath, ".repodoc-index.db")
	}
	store, err := index.Open(indexPath, p.emb)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	if err := store.Ingest(ctx, chunks); err != nil {
		return nil, err
	}

	ret, err := retriever.New(store, p.emb)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(sourceDocs))
	for i, d := range sourceDocs {
		contents[i] = d.Content
	}
	endpoints := analyzer.ExtractEndpoints(contents)
	classification := analyzer.Classify(sourceDocs)

	report := &Report{
		Status: "success",
		ProjectInfo: ProjectInfo{
			Name:      filepath.Base(repoPath),
			Languages: classification.Languages,
			Framework: classification.Framework,
		},
		Endpoints: endpoints,
	}

	report.ProjectSummary = p.generateSection(ctx, ret, report, "project summary",
		queryProjectOverview, func(ragContext string) string {
			return llm.ProjectSummaryPrompt(endpoints, ragContext)
		})

	report.EndpointExplanations = p.explainEndpoints(ctx, ret, report, endpoints)

	report.LanguageSummary = p.generateSection(ctx, ret, report, "language summary",
		queryArchitecture, func(ragContext string) string {
			return llm.LanguageSummaryPrompt(classification.Languages, classification.Framework,
				sampleCode(sourceDocs), ragContext)
		})

	if depFile, ok := analyzer.FindDependencyFile(docs); ok {
		report.DependencyFile = depFile.Path
		name := filepath.Base(depFile.Path)
		report.DependencyExplanation = p.generateSection(ctx, ret, report, "dependency explanation",
			name+" dependencies", func(ragContext string) string {
				return llm.DependencyExplanationPrompt(name, depFile.Content, ragContext)
			})
	}

	return report, nil
}

// generateSection retrieves context and calls the model for one report
// section, degrading to a warning string on failure.
func (p *Pipeline) generateSection(ctx context.Context, ret *retriever.Retriever, report *Report,
	section, query string, buildPrompt func(ragContext string) string) string {

	ragContext, err := ret.Retrieve(ctx, query, p.topK)
	if err != nil {
		return p.degrade(report, section, err)
	}

	if p.provider == nil {
		return p.degrade(report, section, llm.ErrMissingAPIKey)
	}

	text, err := p.provider.GenerateText(ctx, buildPrompt(ragContext))
	if err != nil {
		return p.degrade(report, section, err)
	}
	return text
}

// explainEndpoints generates the per-endpoint explanation section.
func (p *Pipeline) explainEndpoints(ctx context.Context, ret *retriever.Retriever, report *Report,
	endpoints []string) []llm.EndpointExplanation {

	if len(endpoints) == 0 {
		return nil
	}

	text := p.generateSection(ctx, ret, report, "endpoint explanations",
		queryAPIRoutes, func(ragContext string) string {
			return llm.EndpointExplanationsPrompt(endpoints, ragContext)
		})

	return llm.ParseEndpointExplanations(text, endpoints)
}

// degrade records a section failure and returns the warning text that
// takes the section's place.
func (p *Pipeline) degrade(report *Report, section string, err error) string {
	warning := fmt.Sprintf("%s unavailable: %v", section, err)
	report.Warnings = append(report.Warnings, warning)
	p.logger.Printf("docgen: %s", warning)
	return warning
}

// sampleCode concatenates the first few source files for the language
// summary prompt. The prompt layer applies its own byte cap.
func sampleCode(docs []types.Document) string {
	n := 3
	if len(docs) < n {
		n = len(docs)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = docs[i].Content
	}
	return strings.Join(parts, "\n")
}
