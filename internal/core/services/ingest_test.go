package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// mockParser implements driven.Parser for testing.
type mockParser struct {
	extensions []string
	parseErr   error
	degraded   bool
}

func (m *mockParser) Supports(extension string) bool {
	for _, ext := range m.extensions {
		if ext == extension {
			return true
		}
	}
	return false
}

func (m *mockParser) Parse(_ context.Context, path string) (*domain.Document, error) {
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	doc := &domain.Document{
		ID:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Content: "conteúdo de " + path,
		DocType: domain.DocTypeText,
		Metadata: map[string]any{
			domain.MetaSource: path,
		},
	}
	if m.degraded {
		doc.Content = ""
		doc.Metadata[domain.MetaError] = "extraction failed"
	}
	return doc, nil
}

// mockRegistry implements driven.ParserRegistry for testing.
type mockRegistry struct {
	parsers []driven.Parser
}

func (m *mockRegistry) Register(p driven.Parser) {
	m.parsers = append(m.parsers, p)
}

func (m *mockRegistry) ForFile(path string) driven.Parser {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, p := range m.parsers {
		if p.Supports(ext) {
			return p
		}
	}
	return nil
}

func (m *mockRegistry) Parsers() []driven.Parser {
	return m.parsers
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("conteúdo"), 0o644))
	}
}

func TestIngestService_IngestFile(t *testing.T) {
	ctx := context.Background()

	t.Run("supported file is indexed", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "aula.txt")

		index := &mockIndex{}
		registry := &mockRegistry{}
		registry.Register(&mockParser{extensions: []string{"txt"}})
		svc := NewIngestService(registry, index)

		require.NoError(t, svc.IngestFile(ctx, filepath.Join(dir, "aula.txt")))
		require.Len(t, index.added, 1)
		assert.Equal(t, "aula", index.added[0].ID)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		svc := NewIngestService(&mockRegistry{}, &mockIndex{})
		err := svc.IngestFile(ctx, "/tmp/arquivo.xyz")
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("empty path is invalid", func(t *testing.T) {
		svc := NewIngestService(&mockRegistry{}, &mockIndex{})
		assert.ErrorIs(t, svc.IngestFile(ctx, "  "), domain.ErrInvalidInput)
	})
}

func TestIngestService_IngestDirectory(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed directory counts per outcome", func(t *testing.T) {
		dir := t.TempDir()
		for i := 0; i < 7; i++ {
			writeFiles(t, dir, fmt.Sprintf("aula%d.txt", i))
		}
		writeFiles(t, dir, "video.xyz", "planilha.abc", "binario.bin")

		index := &mockIndex{}
		registry := &mockRegistry{}
		registry.Register(&mockParser{extensions: []string{"txt"}})
		svc := NewIngestService(registry, index)

		report, err := svc.IngestDirectory(ctx, dir)
		require.NoError(t, err)

		assert.Equal(t, 10, report.TotalFiles)
		assert.Equal(t, 7, report.IndexedCount)
		assert.Len(t, report.Unsupported, 3)
		assert.Empty(t, report.Failed)
		assert.Len(t, index.added, 7)
	})

	t.Run("subdirectories are walked", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "modulo1")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		writeFiles(t, dir, "a.txt")
		writeFiles(t, sub, "b.txt")

		registry := &mockRegistry{}
		registry.Register(&mockParser{extensions: []string{"txt"}})
		svc := NewIngestService(registry, &mockIndex{})

		report, err := svc.IngestDirectory(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 2, report.IndexedCount)
	})

	t.Run("hidden entries are skipped", func(t *testing.T) {
		dir := t.TempDir()
		hidden := filepath.Join(dir, ".cache")
		require.NoError(t, os.MkdirAll(hidden, 0o755))
		writeFiles(t, hidden, "ignored.txt")
		writeFiles(t, dir, "a.txt", ".hidden.txt")

		registry := &mockRegistry{}
		registry.Register(&mockParser{extensions: []string{"txt"}})
		svc := NewIngestService(registry, &mockIndex{})

		report, err := svc.IngestDirectory(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalFiles)
		assert.Equal(t, 1, report.IndexedCount)
	})

	t.Run("degraded parses are indexed but flagged", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "ruim.txt")

		index := &mockIndex{}
		registry := &mockRegistry{}
		registry.Register(&mockParser{extensions: []string{"txt"}, degraded: true})
		svc := NewIngestService(registry, index)

		report, err := svc.IngestDirectory(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, 1, report.IndexedCount)
		assert.Len(t, report.Failed, 1)
		require.Len(t, index.added, 1)
		assert.NotEmpty(t, index.added[0].ParseError())
	})
}
