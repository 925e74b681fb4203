package driving

import "context"

// IngestReport summarizes a batch ingestion run.
type IngestReport struct {
	// TotalFiles is the number of regular files visited.
	TotalFiles int

	// IndexedCount is the number of documents handed to the index.
	IndexedCount int

	// Unsupported lists files skipped because no parser matched.
	Unsupported []string

	// Failed lists files whose parse degraded to an error document.
	Failed []string
}

// Ingestor normalizes files into documents and forwards them to the
// retrieval backend.
type Ingestor interface {
	// IngestFile parses and indexes one file.
	IngestFile(ctx context.Context, path string) error

	// IngestDirectory walks dir recursively. One file's failure never
	// aborts the batch; the report carries per-file outcomes.
	IngestDirectory(ctx context.Context, dir string) (*IngestReport, error)
}
