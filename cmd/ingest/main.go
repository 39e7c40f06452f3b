package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/clipseek/clipseek/internal/config"
	"github.com/clipseek/clipseek/internal/embed"
	"github.com/clipseek/clipseek/internal/index"
	"github.com/clipseek/clipseek/internal/ingest"
	"github.com/clipseek/clipseek/internal/logger"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	collection := flag.String("collection", "", "Target collection (defaults to COLLECTION env)")
	manifest := flag.String("manifest", "", "Path to a JSONL manifest of {fileurl, caption} records (defaults to stdin)")
	flag.Parse()

	logger.Init(*debug)

	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	coll := *collection
	if coll == "" {
		coll = cfg.Collection
	}

	// Cancel the run on SIGINT/SIGTERM so a partial flush can finish.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := index.NewClient(ctx, cfg.MilvusAddr, cfg.MilvusAPIKey)
	if err != nil {
		logger.Error("Failed to connect to the vector index: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	embedder := embed.NewCLIPEmbedder(embed.Config{
		URL:        cfg.EmbedURL,
		Model:      cfg.EmbedModel,
		Pretrained: cfg.EmbedPretrained,
	})

	input := os.Stdin
	if *manifest != "" {
		f, err := os.Open(*manifest)
		if err != nil {
			logger.Error("Failed to open manifest: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		input = f
	}

	pipeline := ingest.NewPipeline(embedder, index.NewBuffer(store), cfg.FlushEvery)
	ingested, err := pipeline.Run(ctx, input, coll)
	if err != nil {
		logger.Error("Ingestion aborted after %d records: %v", ingested, err)
		os.Exit(1)
	}

	logger.Info("Done: %d records ingested into %s", ingested, coll)
}
