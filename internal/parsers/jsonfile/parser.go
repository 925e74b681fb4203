// Package jsonfile parses structured JSON study material by flattening it
// into searchable text.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles JSON files.
type Parser struct{}

// New creates a new JSON parser.
func New() *Parser {
	return &Parser{}
}

// Supports reports whether the extension is json.
func (p *Parser) Supports(extension string) bool {
	return extension == "json"
}

// Parse flattens the JSON structure into "path: value" lines so nested
// content becomes searchable. Malformed JSON degrades to an error
// document.
func (p *Parser) Parse(_ context.Context, path string) (*domain.Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ErrInvalidInput
	}

	doc := &domain.Document{
		ID:      docID(path),
		DocType: domain.DocTypeJSON,
		Metadata: map[string]any{
			domain.MetaSource: path,
			domain.MetaTitle:  titleFromPath(path),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		doc.Metadata[domain.MetaError] = err.Error()
		return doc, nil
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		doc.Metadata[domain.MetaError] = "invalid json: " + err.Error()
		return doc, nil
	}

	var lines []string
	flatten("", value, &lines)
	doc.Content = strings.Join(lines, "\n")
	return doc, nil
}

// flatten walks the structure depth first. Object keys extend the path
// with dots, array elements with a bracketed index. Map keys are visited
// in sorted order so output is stable.
func flatten(prefix string, value any, lines *[]string) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(joinPath(prefix, k), v[k], lines)
		}
	case []any:
		for i, item := range v {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), item, lines)
		}
	case nil:
		// Nulls carry no searchable content.
	default:
		*lines = append(*lines, fmt.Sprintf("%s: %v", prefix, v))
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
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
