// Package pdf parses PDF files by shelling out to the poppler tools.
package pdf

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser extracts text from PDF files using pdftotext, with page count
// and document info from pdfinfo when available.
type Parser struct {
	runner driven.CommandRunner
}

// New creates a new PDF parser.
func New(runner driven.CommandRunner) *Parser {
	return &Parser{runner: runner}
}

// Supports reports whether the extension is pdf.
func (p *Parser) Supports(extension string) bool {
	return extension == "pdf"
}

// Parse extracts the text content of the PDF. When pdftotext is missing
// or fails, the document degrades to an error record so the file still
// shows up in the index.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ErrInvalidInput
	}
	if p.runner == nil {
		return nil, domain.ErrInvalidInput
	}

	doc := &domain.Document{
		ID:      docID(path),
		DocType: domain.DocTypePdf,
		Metadata: map[string]any{
			domain.MetaSource: path,
			domain.MetaTitle:  titleFromPath(path),
		},
	}

	out, err := p.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		doc.Metadata[domain.MetaError] = "pdftotext: " + err.Error()
		return doc, nil
	}

	content := strings.TrimSpace(string(out))
	// pdftotext separates pages with form feeds.
	pages := strings.Count(content, "\f") + 1
	doc.Content = strings.ReplaceAll(content, "\f", "\n\n")
	doc.Metadata[domain.MetaPages] = pages

	p.applyInfo(ctx, path, doc)
	return doc, nil
}

// applyInfo enriches the document with pdfinfo output: the authoritative
// page count plus the Title, Author and Subject fields when the PDF
// carries them. Best effort.
func (p *Parser) applyInfo(ctx context.Context, path string, doc *domain.Document) {
	out, err := p.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch key {
		case "Pages":
			if n, err := strconv.Atoi(value); err == nil {
				doc.Metadata[domain.MetaPages] = n
			}
		case "Title":
			doc.Metadata[domain.MetaTitle] = value
		case "Author":
			doc.Metadata[domain.MetaAuthor] = value
		case "Subject":
			doc.Metadata[domain.MetaSubject] = value
		}
	}
}

// InstallInstructions returns help for installing the poppler tools.
func InstallInstructions() string {
	return `PDF support requires pdftotext from poppler:
  macOS:  brew install poppler
  Debian: apt install poppler-utils
  Fedora: dnf install poppler-utils`
}

func docID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func titleFromPath(path string) string {
	title := docID(path)
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.ReplaceAll(title, "-", " ")
	return title
}
