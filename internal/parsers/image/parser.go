// Package image parses images of study material through the OCR engine.
package image

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser extracts text from images. Table detection runs first so tabular
// material keeps its row structure; everything else goes through full-page
// recognition.
type Parser struct {
	ocr      driven.OCREngine
	language string
}

// New creates a new image parser.
func New(ocr driven.OCREngine, language string) *Parser {
	return &Parser{ocr: ocr, language: language}
}

// Supports reports whether the extension is a known image format.
func (p *Parser) Supports(extension string) bool {
	switch extension {
	case "png", "jpg", "jpeg", "gif", "bmp", "tiff", "webp":
		return true
	}
	return false
}

// Parse runs OCR over the image. Recognition failures degrade to an error
// document; missing dimensions are simply omitted.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ErrInvalidInput
	}
	if p.ocr == nil {
		return nil, domain.ErrOCRUnavailable
	}

	doc := &domain.Document{
		ID:      docID(path),
		DocType: domain.DocTypeImage,
		Metadata: map[string]any{
			domain.MetaSource: path,
			domain.MetaTitle:  titleFromPath(path),
		},
	}

	if w, h, err := p.ocr.Dimensions(ctx, path); err == nil && w > 0 && h > 0 {
		doc.Metadata[domain.MetaWidth] = w
		doc.Metadata[domain.MetaHeight] = h
	}

	tables, err := p.ocr.DetectTables(ctx, path)
	if err == nil && len(tables) > 0 {
		doc.Content = renderTables(tables)
		doc.Metadata[domain.MetaHasTables] = true
		doc.Metadata[domain.MetaTableCount] = len(tables)
		return doc, nil
	}

	result, err := p.ocr.ExtractText(ctx, path, p.language, true)
	if err != nil {
		doc.Metadata[domain.MetaError] = "ocr: " + err.Error()
		return doc, nil
	}
	doc.Content = strings.TrimSpace(result.Text)
	return doc, nil
}

// renderTables flattens detected tables into pipe-separated rows, one
// blank line between tables.
func renderTables(tables []driven.TableRegion) string {
	var blocks []string
	for _, table := range tables {
		var rows []string
		for _, row := range table.Rows {
			rows = append(rows, strings.Join(row, " | "))
		}
		blocks = append(blocks, strings.Join(rows, "\n"))
	}
	return strings.Join(blocks, "\n\n")
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
