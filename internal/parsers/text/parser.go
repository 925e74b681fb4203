// Package text parses plain text and markdown study material.
package text

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles plain text files.
type Parser struct{}

// New creates a new text parser.
func New() *Parser {
	return &Parser{}
}

// Supports reports whether the extension is a plain text format.
func (p *Parser) Supports(extension string) bool {
	switch extension {
	case "txt", "md", "markdown":
		return true
	}
	return false
}

// Parse reads the file into a text document. Read failures degrade to a
// document carrying the error in metadata.
func (p *Parser) Parse(_ context.Context, path string) (*domain.Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ErrInvalidInput
	}

	doc := &domain.Document{
		ID:      docID(path),
		DocType: domain.DocTypeText,
		Metadata: map[string]any{
			domain.MetaSource: path,
			domain.MetaTitle:  titleFromPath(path),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		doc.Metadata[domain.MetaError] = err.Error()
		return doc, nil
	}
	doc.Content = normalizeWhitespace(string(data))
	return doc, nil
}

var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)

// normalizeWhitespace collapses whitespace runs to single spaces within
// each paragraph. Blank-line paragraph breaks survive, since excerpt
// selection splits on them.
func normalizeWhitespace(text string) string {
	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		paragraphs = append(paragraphs, strings.Join(fields, " "))
	}
	return strings.Join(paragraphs, "\n\n")
}

// docID derives a stable identifier from the source filename.
func docID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// titleFromPath turns the filename into a human-readable title.
func titleFromPath(path string) string {
	title := docID(path)
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.ReplaceAll(title, "-", " ")
	return title
}
