package parsers

import (
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
	"github.com/tutoria-labs/tutoria/internal/parsers/audio"
	"github.com/tutoria-labs/tutoria/internal/parsers/image"
	"github.com/tutoria-labs/tutoria/internal/parsers/jsonfile"
	"github.com/tutoria-labs/tutoria/internal/parsers/pdf"
	"github.com/tutoria-labs/tutoria/internal/parsers/text"
	"github.com/tutoria-labs/tutoria/internal/parsers/video"
)

// Default builds the standard registry. Text, PDF and JSON parsers are
// always present; media parsers register only when their engine is
// configured, so unsupported media files are reported as such instead of
// failing mid-parse.
func Default(runner driven.CommandRunner, transcriber driven.Transcriber, ocr driven.OCREngine, language string) *Registry {
	r := NewRegistry()
	r.Register(text.New())
	r.Register(pdf.New(runner))
	r.Register(jsonfile.New())
	if transcriber != nil {
		r.Register(video.New(transcriber, language))
		r.Register(audio.New(transcriber, language))
	}
	if ocr != nil {
		r.Register(image.New(ocr, language))
	}
	return r
}
