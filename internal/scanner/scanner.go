// Package scanner walks a repository tree and loads its text files as
// documents for chunking and analysis.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/smartdocgen/repodoc/pkg/types"
)

const (
	// DefaultMaxFileSize caps files read into memory.
	DefaultMaxFileSize = 5 * 1024 * 1024
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"venv":         true,
}

// binaryExts are extensions skipped without reading.
var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".bz2": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true,
	".o": true, ".bin": true, ".db": true, ".sqlite": true, ".sqlite3": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
	".pyc": true, ".class": true, ".jar": true, ".war": true,
}

// sourceExts mark files the analyzer inspects for endpoints and
// language classification.
var sourceExts = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".go": true, ".java": true, ".kt": true, ".rb": true, ".php": true,
	".rs": true, ".c": true, ".cpp": true, ".h": true, ".cs": true,
	".swift": true, ".scala": true,
}

// Config contains scanner configuration
type Config struct {
	MaxFileSize int64 // Per-file byte cap (default: DefaultMaxFileSize)
	Workers     int   // Concurrent file readers (default: runtime.NumCPU())
}

// Scanner walks repository trees and reads eligible files.
type Scanner struct {
	maxFileSize int64
	workers     int
}

// New creates a Scanner. Zero config fields take defaults.
func New(cfg Config) *Scanner {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Scanner{maxFileSize: cfg.MaxFileSize, workers: cfg.Workers}
}

// Scan walks rootPath and returns one Document per eligible file. The
// Document ID and Path are the file's path relative to rootPath, and
// results are ordered by that path so repeated scans are deterministic.
// Oversized, binary, and hidden entries are skipped silently.
func (s *Scanner) Scan(ctx context.Context, rootPath string) ([]types.Document, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot access %s: %v", types.ErrInvalidArgument, rootPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", types.ErrInvalidArgument, rootPath)
	}

	paths, err := s.discoverFiles(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", rootPath, err)
	}

	docs := make([]types.Document, 0, len(paths))
	var mu sync.Mutex

	semaphore := make(chan struct{}, s.workers)
	g, gctx := errgroup.WithContext(ctx)

	for _, relPath := range paths {
		relPath := relPath
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			data, err := os.ReadFile(filepath.Join(rootPath, relPath))
			if err != nil {
				// Unreadable files are skipped, not fatal
				return nil
			}

			content := sanitizeUTF8(data)
			if strings.TrimSpace(content) == "" {
				return nil
			}

			mu.Lock()
			docs = append(docs, types.Document{ID: relPath, Path: relPath, Content: content})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// discoverFiles walks the tree applying the skip rules, returning
// root-relative paths.
func (s *Scanner) discoverFiles(rootPath string) ([]string, error) {
	var paths []string

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		name := info.Name()
		if info.IsDir() {
			if path == rootPath {
				return nil
			}
			// Skip hidden directories
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if binaryExts[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		if info.Size() > s.maxFileSize {
			return nil
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(relPath))
		return nil
	})

	return paths, err
}

// IsSourceFile reports whether a path has an extension the analyzer
// understands.
func IsSourceFile(path string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(path))]
}

// sanitizeUTF8 replaces invalid byte sequences so downstream chunking
// never splits inside a mangled rune.
func sanitizeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}
