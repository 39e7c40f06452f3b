package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/clipseek/clipseek/internal/core"
	"github.com/clipseek/clipseek/internal/logger"
	"github.com/clipseek/clipseek/internal/search"
)

const defaultTopK = 5

// PolicyService defines the interface for checking user permissions.
type PolicyService interface {
	IsAllowed(userID int64) bool
	CanIngest(userID int64) bool
}

// SearchService defines the search and indexing operations the bot
// drives.
type SearchService interface {
	Search(ctx context.Context, collection, query string, k int) ([]core.SearchHit, error)
	Index(ctx context.Context, collection, caption string, payload core.Payload) (string, error)
}

// Bot is a thin Telegram front-end over the search service: a text
// message is treated as a query and answered with the top clip URLs.
// Admins can additionally add single clips with /add.
type Bot struct {
	bot        *bot.Bot
	service    SearchService
	policy     PolicyService
	collection string
}

// NewBot creates a new bot instance searching the given default collection.
func NewBot(token string, service SearchService, policy PolicyService, collection string) (*Bot, error) {
	b := &Bot{
		service:    service,
		policy:     policy,
		collection: collection,
	}

	botAPI, err := bot.New(token, bot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	b.bot = botAPI
	return b, nil
}

// Start runs the bot's long-polling loop until the context is canceled.
func (b *Bot) Start(ctx context.Context) {
	logger.Info("Telegram bot started, default collection %s", b.collection)
	b.bot.Start(ctx)
}

// handleUpdate processes one incoming update.
func (b *Bot) handleUpdate(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	userID := msg.From.ID

	if !b.policy.IsAllowed(userID) {
		logger.Warn("Rejected query from user %d", userID)
		b.reply(ctx, msg.Chat.ID, "Sorry, you are not allowed to use this bot.")
		return
	}

	if isAddCommand(msg.Text) {
		b.handleAdd(ctx, msg.Chat.ID, userID, msg.Text)
		return
	}

	query, k, collection := parseQuery(msg.Text, b.collection)
	if query == "" {
		b.reply(ctx, msg.Chat.ID, "Send me a description of a clip, e.g. \"red sports car\". Options: k=10 collection=feeds_clips_100. Admins: /add <fileurl> <caption>")
		return
	}

	hits, err := b.service.Search(ctx, collection, query, k)
	if err != nil {
		logger.Error("Search failed for user %d: %v", userID, err)
		b.reply(ctx, msg.Chat.ID, "Search failed, please try again later.")
		return
	}

	b.reply(ctx, msg.Chat.ID, formatReply(collection, hits))
}

// handleAdd indexes a single clip on behalf of an admin.
func (b *Bot) handleAdd(ctx context.Context, chatID, userID int64, text string) {
	if !b.policy.CanIngest(userID) {
		logger.Warn("Rejected /add from non-admin user %d", userID)
		b.reply(ctx, chatID, "Sorry, only admins can add clips.")
		return
	}

	fileURL, caption, collection := parseAdd(text, b.collection)
	if fileURL == "" || caption == "" {
		b.reply(ctx, chatID, "Usage: /add <fileurl> <caption...> [collection=NAME]")
		return
	}

	id, err := b.service.Index(ctx, collection, caption, core.Payload{
		search.PayloadKeyFileURL: fileURL,
	})
	if err != nil {
		logger.Error("Failed to add clip for user %d: %v", userID, err)
		b.reply(ctx, chatID, "Failed to add the clip, please try again later.")
		return
	}

	b.reply(ctx, chatID, fmt.Sprintf("Added %s to %s as %s.", fileURL, collection, id))
}

// reply sends a plain-text message to the chat.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	_, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		logger.Error("Failed to send message to chat %d: %v", chatID, err)
	}
}

// isAddCommand reports whether the message is an /add command.
func isAddCommand(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && fields[0] == "/add"
}

// parseAdd extracts the file URL, caption and optional "collection=NAME"
// token from an /add command. The first plain token is the file URL, the
// remaining ones form the caption.
func parseAdd(text, defaultCollection string) (fileURL, caption, collection string) {
	collection = defaultCollection

	var captionWords []string
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0:
			// the /add command itself
		case strings.HasPrefix(word, "collection="):
			if name := strings.TrimPrefix(word, "collection="); name != "" {
				collection = name
			}
		case fileURL == "":
			fileURL = word
		default:
			captionWords = append(captionWords, word)
		}
	}

	return fileURL, strings.Join(captionWords, " "), collection
}

// parseQuery extracts the query text plus optional "k=N" and
// "collection=NAME" tokens from a message. A leading /search command is
// stripped.
func parseQuery(text, defaultCollection string) (query string, k int, collection string) {
	k = defaultTopK
	collection = defaultCollection

	var queryWords []string
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0 && strings.HasPrefix(word, "/"):
			if word != "/search" {
				return "", k, collection
			}
		case strings.HasPrefix(word, "k="):
			if n, err := strconv.Atoi(strings.TrimPrefix(word, "k=")); err == nil && n > 0 {
				k = n
			}
		case strings.HasPrefix(word, "collection="):
			if name := strings.TrimPrefix(word, "collection="); name != "" {
				collection = name
			}
		default:
			queryWords = append(queryWords, word)
		}
	}

	return strings.Join(queryWords, " "), k, collection
}

// formatReply renders hits as a readable message with one clip per line.
func formatReply(collection string, hits []core.SearchHit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No matching clips found in %s.", collection)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Top %d results from %s:\n", len(hits), collection))
	for i, hit := range hits {
		fileURL := "(no file url)"
		if hit.Payload != nil {
			if v, ok := hit.Payload[search.PayloadKeyFileURL].(string); ok && v != "" {
				fileURL = v
			}
		}
		builder.WriteString(fmt.Sprintf("%d. %s (score %.4f)\n", i+1, fileURL, hit.Score))
	}
	return builder.String()
}
