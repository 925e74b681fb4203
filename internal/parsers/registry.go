package parsers

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry holds parsers in registration order. Selection is first match:
// earlier registrations take priority over later ones.
type Registry struct {
	parsers []driven.Parser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a parser.
func (r *Registry) Register(p driven.Parser) {
	r.parsers = append(r.parsers, p)
}

// ForFile returns the first parser supporting the file's extension, or nil.
func (r *Registry) ForFile(path string) driven.Parser {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil
	}
	for _, p := range r.parsers {
		if p.Supports(ext) {
			return p
		}
	}
	return nil
}

// Parsers returns the registered parsers in registration order.
func (r *Registry) Parsers() []driven.Parser {
	return r.parsers
}

// Ensure ExecRunner implements the interface.
var _ driven.CommandRunner = (*ExecRunner)(nil)

// ExecRunner runs external commands on the host. Parsers that shell out
// (pdftotext, pdfinfo) receive it at construction so tests can substitute
// a double.
type ExecRunner struct{}

// NewExecRunner creates a command runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and returns its stdout.
func (e *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
