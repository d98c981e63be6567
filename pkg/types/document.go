package types

import (
	"fmt"
	"strings"
)

// Document is an immutable unit of input text. ID defaults to the
// document's position in the input list when the caller does not assign
// one; scanners typically use the repo-relative path.
type Document struct {
	ID      string
	Path    string
	Content string
}

// IsEmpty reports whether the document contains only whitespace.
func (d *Document) IsEmpty() bool {
	return strings.TrimSpace(d.Content) == ""
}

// NewDocuments wraps raw texts as documents, assigning positional IDs.
func NewDocuments(texts []string) []Document {
	docs := make([]Document, len(texts))
	for i, t := range texts {
		docs[i] = Document{
			ID:      fmt.Sprintf("doc-%d", i),
			Content: t,
		}
	}
	return docs
}
