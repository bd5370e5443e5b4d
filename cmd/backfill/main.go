package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/internal/embedding"
	"github.com/mlee/socialnet-backend/internal/post"
	"github.com/mlee/socialnet-backend/internal/repository"
	"github.com/mlee/socialnet-backend/internal/user"
	"github.com/mlee/socialnet-backend/pkg/database"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/joho/godotenv"
)

// Batch driver for the embedding backfill: walks all users and posts,
// regenerates stale embeddings, and exits non-zero if any entity failed.
func main() {
	force := flag.Bool("force", false, "regenerate embeddings even when the content hash is unchanged")
	sinceFlag := flag.String("since", "", "only process entities updated within this duration (e.g. 24h)")
	delayFlag := flag.String("delay", "", "delay between embedding provider calls (overrides EMBEDDING_BACKFILL_DELAY)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if *delayFlag != "" {
		cfg.Embedding.BackfillDelay = *delayFlag
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	var since time.Time
	if *sinceFlag != "" {
		window, err := time.ParseDuration(*sinceFlag)
		if err != nil {
			appLogger.Fatal("Invalid --since duration '" + *sinceFlag + "': " + err.Error())
		}
		since = time.Now().Add(-window)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database: " + err.Error())
	}

	userRepo := repository.NewGORMUserRepository(db, appLogger)
	postRepo := repository.NewGORMPostRepository(db, appLogger)
	embeddingStore := repository.NewGORMEmbeddingStore(db, appLogger)

	embeddingClient, err := embedding.NewClient(&cfg.Embedding)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedding client: " + err.Error())
	}
	generator := embedding.NewGenerator(&cfg.Embedding, embeddingClient, embeddingStore, appLogger)

	// Posts need their owner's profile for the canonical projection
	userService, err := user.NewService(&cfg.JWT, userRepo, generator, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize user service: " + err.Error())
	}

	sources := []embedding.Source{
		user.NewEmbeddingSource(userRepo),
		post.NewEmbeddingSource(postRepo, userService),
	}

	backfill, err := embedding.NewBackfill(&cfg.Embedding, generator, sources, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize backfill: " + err.Error())
	}

	// Interruption stops the run between entities, never mid-upsert
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary := backfill.Run(ctx, *force, since)

	fmt.Printf("Backfill summary: processed=%d created=%d updated=%d skipped=%d failed=%d\n",
		summary.Processed, summary.Created, summary.Updated, summary.Skipped, summary.Failed)
	for _, itemErr := range summary.Errors {
		fmt.Printf("  error: %v\n", itemErr.Err)
	}

	if summary.Failed > 0 || len(summary.Errors) > 0 {
		os.Exit(1)
	}
}
