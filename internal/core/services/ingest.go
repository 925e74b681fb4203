package services

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driving"
	"github.com/tutoria-labs/tutoria/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService normalizes files through the parser registry and forwards
// the resulting documents to the retrieval backend.
type IngestService struct {
	registry driven.ParserRegistry
	index    driven.DocumentIndex
}

// NewIngestService creates an ingestor.
func NewIngestService(registry driven.ParserRegistry, index driven.DocumentIndex) *IngestService {
	return &IngestService{registry: registry, index: index}
}

// IngestFile parses one file and indexes the resulting document. Files
// with no matching parser return ErrUnsupportedType.
func (s *IngestService) IngestFile(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}

	parser := s.registry.ForFile(path)
	if parser == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(path))
	}

	doc, err := parser.Parse(ctx, path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if msg := doc.ParseError(); msg != "" {
		logger.Warn("Degraded parse for %s: %s", path, msg)
	}

	if err := s.index.Add(ctx, doc); err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}
	logger.Debug("Indexed %s as %s (%s)", path, doc.ID, doc.DocType)
	return nil
}

// IngestDirectory walks dir recursively and ingests every regular file.
// A single file's failure never aborts the batch; the report carries the
// per-file outcomes. Hidden files and directories are skipped.
func (s *IngestService) IngestDirectory(ctx context.Context, dir string) (*driving.IngestReport, error) {
	report := &driving.IngestReport{}
	batch := make([]*domain.Document, 0, 16)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if base := filepath.Base(path); strings.HasPrefix(base, ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		report.TotalFiles++
		parser := s.registry.ForFile(path)
		if parser == nil {
			report.Unsupported = append(report.Unsupported, path)
			return nil
		}

		doc, err := parser.Parse(ctx, path)
		if err != nil {
			report.Failed = append(report.Failed, path)
			logger.Warn("Parse failed for %s: %v", path, err)
			return nil
		}
		// Degraded documents are indexed anyway so the learner can see
		// the file exists, but the report flags them.
		if msg := doc.ParseError(); msg != "" {
			report.Failed = append(report.Failed, path)
			logger.Warn("Degraded parse for %s: %s", path, msg)
		}

		batch = append(batch, doc)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walking %s: %w", dir, err)
	}

	if len(batch) > 0 {
		if err := s.index.AddBatch(ctx, batch); err != nil {
			return report, fmt.Errorf("indexing batch: %w", err)
		}
		report.IndexedCount = len(batch)
	}

	logger.Info("Ingested %d/%d files from %s (%d unsupported, %d failed)",
		report.IndexedCount, report.TotalFiles, dir, len(report.Unsupported), len(report.Failed))
	return report, nil
}
