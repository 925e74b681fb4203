package domain

import "strings"

// DocType identifies the media type of an ingested document.
// The tag set is closed: parsers only ever produce one of these values.
type DocType string

const (
	DocTypeText  DocType = "text"
	DocTypePdf   DocType = "pdf"
	DocTypeVideo DocType = "video"
	DocTypeImage DocType = "image"
	DocTypeJSON  DocType = "json"
	DocTypeAudio DocType = "audio"
)

// DisplayName returns a human-readable name for the document type.
func (t DocType) DisplayName() string {
	switch t {
	case DocTypeText:
		return "Text"
	case DocTypePdf:
		return "PDF"
	case DocTypeVideo:
		return "Video"
	case DocTypeImage:
		return "Image"
	case DocTypeJSON:
		return "JSON"
	case DocTypeAudio:
		return "Audio"
	default:
		return "Document"
	}
}

// Metadata keys shared across parsers.
const (
	MetaSource     = "source"
	MetaTitle      = "title"
	MetaError      = "error"
	MetaPages      = "pages"
	MetaAuthor     = "author"
	MetaSubject    = "subject"
	MetaDuration   = "duration_seconds"
	MetaTimestamps = "timestamps"
	MetaWidth      = "image_width"
	MetaHeight     = "image_height"
	MetaHasTables  = "has_tables"
	MetaTableCount = "table_count"
)

// Segment is a timed fragment of a transcription.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Document is the normalized unit of indexable content produced by a parser.
// Content is always a string: a parser that fails produces a Document with
// empty Content and the error recorded under the "error" metadata key, so
// downstream code never branches on nil.
type Document struct {
	// ID is derived from the source filename.
	ID string

	// Content is the extracted textual representation: raw text, OCR text,
	// transcript, or flattened structured data.
	Content string

	// DocType is the closed media type tag.
	DocType DocType

	// Metadata carries "source" and "title" for every document plus
	// type-specific keys (pages, duration_seconds, timestamps, ...).
	Metadata map[string]any

	// Embedding is the optional vector representation. Ownership of the
	// document transfers to the retrieval backend once set.
	Embedding []float32
}

// IsIndexed reports whether the document carries an embedding.
func (d *Document) IsIndexed() bool {
	return d.Embedding != nil
}

// Source returns the source path from metadata, or "" when absent.
func (d *Document) Source() string {
	if d.Metadata == nil {
		return ""
	}
	if s, ok := d.Metadata[MetaSource].(string); ok {
		return s
	}
	return ""
}

// Title returns the title from metadata, falling back to the first words of
// the content and finally the document id.
func (d *Document) Title() string {
	if d.Metadata != nil {
		if t, ok := d.Metadata[MetaTitle].(string); ok && t != "" {
			return t
		}
	}
	words := strings.Fields(d.Content)
	if len(words) > 5 {
		return strings.Join(words[:5], " ") + "..."
	}
	if len(words) > 0 {
		return strings.Join(words, " ")
	}
	return d.ID
}

// ParseError returns the recorded parse error message, or "" when the
// document parsed cleanly.
func (d *Document) ParseError() string {
	if d.Metadata == nil {
		return ""
	}
	if e, ok := d.Metadata[MetaError].(string); ok {
		return e
	}
	return ""
}
