// Package logger implements the --verbose diagnostics channel. All output
// goes to stderr so answers on stdout stay pipeable; nothing is printed
// unless verbose mode is on.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose toggles verbose mode.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects the diagnostics channel, normally to a buffer in
// tests. The default is os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug logs pipeline detail at the finest level.
func Debug(format string, args ...any) {
	write("[DEBUG] ", format, args...)
}

// Info logs progress messages.
func Info(format string, args ...any) {
	write("[INFO] ", format, args...)
}

// Warn logs recoverable problems, typically degraded retrieval.
func Warn(format string, args ...any) {
	write("[WARN] ", format, args...)
}

// Section prints a banner separating pipeline phases.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func write(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}
