package driven

import (
	"context"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

// Parser turns a raw file into a normalized Document.
//
// Parsing never raises past this boundary: when the underlying extraction
// fails, implementations return a Document with empty Content and the
// failure recorded under the "error" metadata key, with a nil error.
// A non-nil error is reserved for invalid input (empty path, nil receiver
// dependencies), which callers treat as a programming mistake.
type Parser interface {
	// Supports reports whether this parser handles the extension
	// (lowercase, without the leading dot).
	Supports(extension string) bool

	// Parse extracts a Document from the file at path.
	Parse(ctx context.Context, path string) (*domain.Document, error)
}

// ParserRegistry selects the parser for a file. Registration order is a
// priority rule: the first registered parser whose Supports matches wins.
type ParserRegistry interface {
	// Register appends a parser. Order of registration is preserved.
	Register(p Parser)

	// ForFile returns the first parser supporting the file's extension,
	// or nil when the type is unsupported.
	ForFile(path string) Parser

	// Parsers returns the registered parsers in registration order.
	Parsers() []Parser
}

// CommandRunner executes an external command and returns its combined
// output. Injected so parsers that shell out (pdftotext, pdfinfo) can be
// tested without the binary installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
