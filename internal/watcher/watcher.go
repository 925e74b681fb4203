// Package watcher keeps the index in sync with the materials directory.
// It debounces filesystem events per path and hands surviving paths to
// the ingestor through a rate-limited worker.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driving"
	"github.com/tutoria-labs/tutoria/internal/logger"
)

// DefaultCooldown suppresses repeated events for the same path. Editors
// and copies fire several writes per save; only the first one within the
// window triggers ingestion.
const DefaultCooldown = 5 * time.Second

// queueSize bounds pending ingestions. Events beyond it are dropped with
// a warning rather than blocking the notify loop.
const queueSize = 256

// Options tune a Watcher.
type Options struct {
	// Cooldown overrides DefaultCooldown when positive.
	Cooldown time.Duration

	// Ignore lists doublestar patterns matched against paths relative
	// to the watched root.
	Ignore []string

	// MaxPerSecond rate limits ingestion. Zero means 4 per second.
	MaxPerSecond int
}

// Watcher watches a directory tree and re-ingests changed files.
type Watcher struct {
	root     string
	ingestor driving.Ingestor
	cooldown time.Duration
	ignore   []string
	limiter  *rate.Limiter

	mu       sync.Mutex
	lastSeen map[string]time.Time

	fw     *fsnotify.Watcher
	queue  chan string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher for the directory tree rooted at root.
func New(root string, ingestor driving.Ingestor, opts Options) (*Watcher, error) {
	if root == "" || ingestor == nil {
		return nil, domain.ErrInvalidInput
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("checking watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	perSecond := opts.MaxPerSecond
	if perSecond <= 0 {
		perSecond = 4
	}

	return &Watcher{
		root:     root,
		ingestor: ingestor,
		cooldown: cooldown,
		ignore:   opts.Ignore,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), perSecond),
		lastSeen: make(map[string]time.Time),
		queue:    make(chan string, queueSize),
	}, nil
}

// Start begins watching. It returns once the watches are established;
// event handling runs in background goroutines until Stop or context
// cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	w.fw = fw

	if err := w.addRecursive(w.root); err != nil {
		fw.Close()
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(2)
	go w.eventLoop(ctx)
	go w.worker(ctx)

	logger.Info("Watching %s (cooldown %s)", w.root, w.cooldown)
	return nil
}

// Stop halts event handling and waits for in-flight ingestion.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.fw != nil {
		w.fw.Close()
	}
	w.wg.Wait()
}

// eventLoop consumes filesystem notifications until the context ends.
func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if w.ignored(event.Name) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		// New subdirectories join the watch; their files arrive as
		// separate create events.
		if event.Op.Has(fsnotify.Create) {
			if err := w.addRecursive(event.Name); err != nil {
				logger.Warn("Watching new directory %s failed: %v", event.Name, err)
			}
		}
		return
	}

	if !w.pastCooldown(event.Name) {
		logger.Debug("Debounced %s", event.Name)
		return
	}

	select {
	case w.queue <- event.Name:
	default:
		logger.Warn("Ingestion queue full, dropping %s", event.Name)
	}
}

// worker drains the queue, rate limited, and ingests each path.
func (w *Watcher) worker(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.queue:
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.ingest(ctx, path)
		}
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	err := w.ingestor.IngestFile(ctx, path)
	switch {
	case err == nil:
		logger.Info("Re-indexed %s", path)
	case errors.Is(err, domain.ErrUnsupportedType):
		logger.Debug("Skipping unsupported file %s", path)
	default:
		logger.Warn("Ingesting %s failed: %v", path, err)
	}
}

// pastCooldown reports whether the path is outside its debounce window
// and marks it seen.
func (w *Watcher) pastCooldown(path string) bool {
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	if last, ok := w.lastSeen[path]; ok && now.Sub(last) < w.cooldown {
		return false
	}
	w.lastSeen[path] = now
	return true
}

// ignored reports whether the path is hidden or matches an ignore glob.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	for _, pattern := range w.ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// addRecursive watches dir and every non-hidden subdirectory below it.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
