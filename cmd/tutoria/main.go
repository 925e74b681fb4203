package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	configfile "github.com/tutoria-labs/tutoria/internal/adapters/driven/config/file"
	redisadapter "github.com/tutoria-labs/tutoria/internal/adapters/driven/redis"
	"github.com/tutoria-labs/tutoria/internal/adapters/driven/reranker"
	"github.com/tutoria-labs/tutoria/internal/adapters/driven/storage/memory"
	"github.com/tutoria-labs/tutoria/internal/adapters/driven/storage/sqlite"
	"github.com/tutoria-labs/tutoria/internal/adapters/driving/cli"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
	"github.com/tutoria-labs/tutoria/internal/core/services"
	"github.com/tutoria-labs/tutoria/internal/logger"
	"github.com/tutoria-labs/tutoria/internal/parsers"
	"github.com/tutoria-labs/tutoria/internal/watcher"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := configfile.Load(getEnv("TUTORIA_CONFIG_DIR", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyEnvOverrides(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vocab := services.MustLoadVocabulary()
	index := memory.NewDocumentIndex()

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	progress := store.ProgressStore()

	conversations, closeRedis, err := conversationStore(ctx, cfg.RedisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Redis: %v\n", err)
		os.Exit(1)
	}
	defer closeRedis()

	var rerank driven.Reranker
	if cfg.Reranker.Enabled {
		rerank = reranker.New(progress, vocab.ClassifyFeedback)
	}

	registry := parsers.Default(parsers.NewExecRunner(), nil, nil, cfg.Language)
	ingestor := services.NewIngestService(registry, index)
	responder := services.NewResponderService(index, progress, conversations, rerank, vocab)
	analyzer := services.NewGapAnalyzerService(progress, index, vocab)

	cli.SetVersion(version)
	cli.SetServices(ingestor, responder, analyzer, &watchRunner{
		ingestor:  ingestor,
		materials: cfg.MaterialsDir,
		cooldown:  time.Duration(cfg.Watcher.CooldownSeconds) * time.Second,
		ignore:    cfg.Watcher.Ignore,
		maxRate:   cfg.Watcher.MaxPerSecond,
	})

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// conversationStore picks Redis when configured, otherwise the in-process
// store. The returned func closes the Redis client when one was opened.
func conversationStore(ctx context.Context, redisURL string) (driven.ConversationStore, func(), error) {
	if redisURL == "" {
		return memory.NewConversationStore(), func() {}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("Using Redis conversation store")
	return redisadapter.NewConversationStore(client), func() { client.Close() }, nil
}

// watchRunner adapts the watcher package to the CLI's WatchStarter. It
// blocks until the process receives a shutdown signal.
type watchRunner struct {
	ingestor  *services.IngestService
	materials string
	cooldown  time.Duration
	ignore    []string
	maxRate   int
}

func (r *watchRunner) Watch(dir string) error {
	if dir == "" {
		dir = r.materials
	}
	w, err := watcher.New(dir, r.ingestor, watcher.Options{
		Cooldown:     r.cooldown,
		Ignore:       r.ignore,
		MaxPerSecond: r.maxRate,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

func applyEnvOverrides(cfg *configfile.Config) {
	if v := os.Getenv("TUTORIA_MATERIALS_DIR"); v != "" {
		cfg.MaterialsDir = v
	}
	if v := os.Getenv("TUTORIA_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TUTORIA_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
