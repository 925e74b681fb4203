package driven

import (
	"context"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

// Transcription is the result of running speech-to-text over a media file.
type Transcription struct {
	Text     string
	Segments []domain.Segment
	Language string
}

// Transcriber is the speech-to-text engine boundary, used for both video
// and audio files. Implemented elsewhere; the core only consumes it.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string) (*Transcription, error)
}

// WordBox is a recognized word with its bounding box on the page.
type WordBox struct {
	Text   string
	X      int
	Y      int
	Width  int
	Height int
}

// OCRResult is the output of full-page text extraction.
type OCRResult struct {
	Text      string
	WordBoxes []WordBox
}

// TableRegion is a detected table with its extracted cell grid.
type TableRegion struct {
	Rows [][]string
}

// OCREngine is the optical character recognition boundary.
type OCREngine interface {
	// ExtractText runs full-page recognition.
	ExtractText(ctx context.Context, path, language string, preprocess bool) (*OCRResult, error)

	// DetectTables looks for tabular regions. An empty slice means none
	// were found; callers then fall back to ExtractText.
	DetectTables(ctx context.Context, path string) ([]TableRegion, error)

	// Dimensions returns the pixel width and height of the image.
	// Best effort: an error means dimensions are simply omitted.
	Dimensions(ctx context.Context, path string) (width, height int, err error)
}
