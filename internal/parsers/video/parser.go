// Package video parses video lectures through the transcription engine.
package video

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser transcribes video files into text documents with timed segments.
type Parser struct {
	transcriber driven.Transcriber
	language    string
}

// New creates a new video parser.
func New(transcriber driven.Transcriber, language string) *Parser {
	return &Parser{transcriber: transcriber, language: language}
}

// Supports reports whether the extension is a known video container.
func (p *Parser) Supports(extension string) bool {
	switch extension {
	case "mp4", "avi", "mov", "mkv", "webm":
		return true
	}
	return false
}

// Parse transcribes the video. Transcription failures degrade to an error
// document so the file still appears in the index.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ErrInvalidInput
	}
	if p.transcriber == nil {
		return nil, domain.ErrTranscriptionUnavailable
	}

	doc := &domain.Document{
		ID:      docID(path),
		DocType: domain.DocTypeVideo,
		Metadata: map[string]any{
			domain.MetaSource: path,
			domain.MetaTitle:  titleFromPath(path),
		},
	}

	result, err := p.transcriber.Transcribe(ctx, path, p.language)
	if err != nil {
		doc.Metadata[domain.MetaError] = "transcription: " + err.Error()
		return doc, nil
	}

	doc.Content = strings.TrimSpace(result.Text)
	if len(result.Segments) > 0 {
		doc.Metadata[domain.MetaTimestamps] = result.Segments
		doc.Metadata[domain.MetaDuration] = result.Segments[len(result.Segments)-1].End
	}
	return doc, nil
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
