package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
	"github.com/tutoria-labs/tutoria/internal/parsers/text"
)

// fakeParser claims a fixed extension set.
type fakeParser struct {
	name string
	exts map[string]bool
}

func (f *fakeParser) Supports(extension string) bool {
	return f.exts[extension]
}

func (f *fakeParser) Parse(_ context.Context, path string) (*domain.Document, error) {
	return &domain.Document{ID: f.name, Metadata: map[string]any{domain.MetaSource: path}}, nil
}

func TestRegistry_ForFile(t *testing.T) {
	r := NewRegistry()
	first := &fakeParser{name: "first", exts: map[string]bool{"txt": true}}
	second := &fakeParser{name: "second", exts: map[string]bool{"txt": true, "md": true}}
	r.Register(first)
	r.Register(second)

	t.Run("first registration wins", func(t *testing.T) {
		assert.Same(t, driven.Parser(first), r.ForFile("/m/a.txt"))
	})

	t.Run("later parsers cover the rest", func(t *testing.T) {
		assert.Same(t, driven.Parser(second), r.ForFile("/m/a.md"))
	})

	t.Run("extension match is case insensitive", func(t *testing.T) {
		assert.Same(t, driven.Parser(first), r.ForFile("/m/A.TXT"))
	})

	t.Run("unknown extension", func(t *testing.T) {
		assert.Nil(t, r.ForFile("/m/a.xyz"))
	})

	t.Run("no extension", func(t *testing.T) {
		assert.Nil(t, r.ForFile("/m/Makefile"))
	})
}

func TestDefault(t *testing.T) {
	t.Run("media parsers need their engines", func(t *testing.T) {
		r := Default(NewExecRunner(), nil, nil, "pt")
		require.Len(t, r.Parsers(), 3)
		assert.Nil(t, r.ForFile("/m/aula.mp4"))
		assert.Nil(t, r.ForFile("/m/slide.png"))
		assert.NotNil(t, r.ForFile("/m/aula.txt"))
		assert.NotNil(t, r.ForFile("/m/apostila.pdf"))
		assert.NotNil(t, r.ForFile("/m/curso.json"))
	})

	t.Run("text parser outranks others for txt", func(t *testing.T) {
		r := Default(NewExecRunner(), nil, nil, "pt")
		assert.IsType(t, &text.Parser{}, r.ForFile("/m/a.txt"))
	})
}
