package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/clipseek/clipseek/internal/config"
	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/embed"
	"github.com/clipseek/clipseek/internal/index"
	"github.com/clipseek/clipseek/internal/logger"
	"github.com/clipseek/clipseek/internal/search"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	collection := flag.String("collection", "", "Collection to search (defaults to COLLECTION env)")
	k := flag.Int("k", 5, "Number of results to return")
	memory := flag.Bool("memory", false, "Use an empty in-memory store instead of Milvus (smoke runs)")
	flag.Parse()

	logger.Init(*debug)

	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	query := strings.Join(flag.Args(), " ")
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: search [flags] <query text>")
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil && !*memory {
		logger.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var store core.VectorStore
	if *memory {
		store = index.NewMemoryStore()
	} else {
		store, err = index.NewClient(ctx, cfg.MilvusAddr, cfg.MilvusAPIKey)
		if err != nil {
			logger.Error("Failed to connect to the vector index: %v", err)
			os.Exit(1)
		}
	}
	defer store.Close()

	embedURL := config.DefaultEmbedURL
	embedModel := config.DefaultEmbedModel
	embedPretrained := config.DefaultEmbedPretrained
	if cfg != nil {
		embedURL = cfg.EmbedURL
		embedModel = cfg.EmbedModel
		embedPretrained = cfg.EmbedPretrained
	}

	embedder := embed.NewCLIPEmbedder(embed.Config{
		URL:        embedURL,
		Model:      embedModel,
		Pretrained: embedPretrained,
	})

	coll := *collection
	if coll == "" {
		if cfg != nil {
			coll = cfg.Collection
		} else {
			coll = config.DefaultCollection
		}
	}

	service := search.NewService(embedder, store)
	hits, err := service.Search(ctx, coll, query, *k)
	if err != nil {
		logger.Error("Search failed: %v", err)
		os.Exit(1)
	}

	fmt.Println(search.FormatHitsAsJSON(hits))
}
