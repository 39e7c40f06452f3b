package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/clipseek/clipseek/internal/auth"
	"github.com/clipseek/clipseek/internal/config"
	"github.com/clipseek/clipseek/internal/embed"
	"github.com/clipseek/clipseek/internal/index"
	"github.com/clipseek/clipseek/internal/logger"
	"github.com/clipseek/clipseek/internal/search"
	"github.com/clipseek/clipseek/internal/telegram"
)

func main() {
	// Parse command line flags
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Initialize logger
	logger.Init(*debug)

	logger.Info("Starting clip search bot...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	// Load configuration
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("Configuration error: %v", err)
		os.Exit(1)
	}
	if cfg.TelegramToken == "" {
		logger.Error("TG_BOT_TOKEN environment variable is required")
		os.Exit(1)
	}

	if logger.IsDebugEnabled() {
		logger.Debug("Configuration loaded: MilvusAddr=%s, EmbedURL=%s, Collection=%s",
			cfg.MilvusAddr, cfg.EmbedURL, cfg.Collection)
	}

	// Set up context with cancellation tied to shutdown signals
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize services
	logger.Info("Initializing services...")

	policyService := auth.NewPolicyService(cfg.AdminUserIDs, cfg.AllowedUserIDs)

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

	searchService := search.NewService(embedder, store)

	// Initialize Telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, searchService, policyService, cfg.Collection)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot: %v", err)
		os.Exit(1)
	}

	// Start the bot; blocks until a shutdown signal cancels the context
	bot.Start(ctx)

	logger.Info("Bot has been shut down")
}
