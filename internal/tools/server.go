// Package tools exposes the Anki collection and the study analytics
// over MCP. Each tool handler fetches what it needs from AnkiConnect,
// hands plain values to the analytics, and renders a text result.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/conorfennell/ankimcp/internal/anki"
	"github.com/conorfennell/ankimcp/internal/config"
	"github.com/conorfennell/ankimcp/internal/review"
)

const (
	serverName    = "anki-mcp"
	serverVersion = "1.2.0"
)

// ReviewSource supplies the historical review log. The plain
// AnkiConnect client satisfies it, as does the sqlite-backed cached
// source.
type ReviewSource interface {
	ReviewLog(ctx context.Context, deck string, sinceMillis int64) ([]review.LogEntry, error)
}

// Server wires the tool handlers to an AnkiConnect client and a
// review-log source.
type Server struct {
	client *anki.Client
	logs   ReviewSource
	cfg    config.Config
	log    *slog.Logger
	mcp    *server.MCPServer
	now    func() time.Time // swapped out in tests
}

// New builds the MCP server with every tool registered.
func New(client *anki.Client, logs ReviewSource, cfg config.Config, log *slog.Logger) *Server {
	s := &Server{
		client: client,
		logs:   logs,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
	s.mcp = server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))
	s.register()
	return s
}

// ServeStdio runs the server over stdin/stdout until the client hangs
// up.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// boundary is the day-boundary policy shared by every calendar-aware
// tool.
func (s *Server) boundary() review.Boundary {
	return review.Boundary{
		UTCOffsetMinutes: s.cfg.UTCOffsetMinutes,
		DayStartHour:     s.cfg.DayStartHour,
	}
}

// ankiError renders an upstream failure the way the tools report it:
// as a tool-level error message, not a protocol error.
func (s *Server) ankiError(err error) *mcp.CallToolResult {
	s.log.Error("ankiconnect call failed", "error", err)
	return mcp.NewToolResultError(fmt.Sprintf(
		"AnkiConnect error: %v\n\nMake sure Anki is running and AnkiConnect is installed.", err))
}

func (s *Server) register() {
	s.mcp.AddTool(mcp.NewTool("anki_health_check",
		mcp.WithDescription("Check if Anki is running with AnkiConnect enabled. Returns the AnkiConnect version."),
	), s.handleHealthCheck)

	s.mcp.AddTool(mcp.NewTool("list_decks",
		mcp.WithDescription("List all Anki deck names."),
	), s.handleListDecks)

	s.mcp.AddTool(mcp.NewTool("list_note_types",
		mcp.WithDescription("List all note types (models) and their fields."),
	), s.handleListNoteTypes)

	s.mcp.AddTool(mcp.NewTool("add_flashcard",
		mcp.WithDescription("Add a single flashcard to Anki. Creates the deck if it doesn't exist."),
		mcp.WithString("deck", mcp.Required(), mcp.Description("Target deck name (created if it doesn't exist)")),
		mcp.WithString("front", mcp.Required(), mcp.Description("Front of card (question/prompt)")),
		mcp.WithString("back", mcp.Required(), mcp.Description("Back of card (answer)")),
		mcp.WithArray("tags", mcp.Description("Optional list of tags"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("model", mcp.Description("Note type (default: Basic)")),
	), s.handleAddFlashcard)

	s.mcp.AddTool(mcp.NewTool("add_flashcards_batch",
		mcp.WithDescription("Add multiple flashcards in one operation. Much faster than adding one at a time."),
		mcp.WithString("deck", mcp.Required(), mcp.Description("Target deck name")),
		mcp.WithArray("cards", mcp.Required(),
			mcp.Description("List of cards with front, back, and optional tags"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"front": map[string]any{"type": "string"},
					"back":  map[string]any{"type": "string"},
					"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"front", "back"},
			})),
		mcp.WithArray("tags", mcp.Description("Tags applied to all cards"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("model", mcp.Description("Note type (default: Basic)")),
	), s.handleAddFlashcardsBatch)

	s.mcp.AddTool(mcp.NewTool("add_cloze_card",
		mcp.WithDescription("Add a cloze deletion card. Text should contain {{c1::deletions}} markup, or pass target_word to wrap its first occurrence."),
		mcp.WithString("deck", mcp.Required(), mcp.Description("Target deck name")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text with {{c1::deletions}} marked, or a plain sentence when target_word is given")),
		mcp.WithString("target_word", mcp.Description("Word in the text to turn into the deletion")),
		mcp.WithString("extra", mcp.Description("Additional context shown on back")),
		mcp.WithArray("tags", mcp.Description("Optional tags"), mcp.Items(map[string]any{"type": "string"})),
	), s.handleAddClozeCard)

	s.mcp.AddTool(mcp.NewTool("add_spanish_vocab",
		mcp.WithDescription("Add a Spanish vocabulary card with consistent formatting, gender annotation and suggested tags."),
		mcp.WithString("spanish", mcp.Required(), mcp.Description("Spanish word or phrase")),
		mcp.WithString("english", mcp.Required(), mcp.Description("English translation")),
		mcp.WithString("example", mcp.Description("Optional example sentence in Spanish")),
		mcp.WithString("gender", mcp.Description("Gender indicator for nouns: m, f, el or la")),
		mcp.WithString("pos", mcp.Description("Part of speech: verb, noun, adjective, adverb, phrase or expression")),
		mcp.WithArray("tags", mcp.Description("Additional tags"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("deck", mcp.Description("Target deck name (default: Spanish)")),
	), s.handleAddSpanishVocab)

	s.mcp.AddTool(mcp.NewTool("add_spanish_verb",
		mcp.WithDescription("Add a Spanish verb card with AR/ER/IR classification, conjugation notes and suggested tags."),
		mcp.WithString("infinitive", mcp.Required(), mcp.Description("Verb infinitive, e.g. hablar or levantarse")),
		mcp.WithString("english", mcp.Required(), mcp.Description("English translation")),
		mcp.WithString("conjugation_notes", mcp.Description("Irregularities or stem changes worth showing on the back")),
		mcp.WithString("example", mcp.Description("Optional example sentence in Spanish")),
		mcp.WithArray("tags", mcp.Description("Additional tags"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("deck", mcp.Description("Target deck name (default: Spanish)")),
	), s.handleAddSpanishVerb)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search Anki notes using Anki's search syntax (e.g., 'deck:Spanish tag:verb')."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Anki search query")),
		mcp.WithNumber("limit", mcp.Description("Max results to return (default: 20)")),
	), s.handleSearchNotes)

	s.mcp.AddTool(mcp.NewTool("deck_stats",
		mcp.WithDescription("Show per-deck card counts (new/learning/review) and today's review total."),
		mcp.WithString("deck", mcp.Description("Limit to one deck (default: all decks)")),
	), s.handleDeckStats)

	s.mcp.AddTool(mcp.NewTool("sync_anki",
		mcp.WithDescription("Synchronize the local Anki collection with AnkiWeb."),
	), s.handleSync)

	s.mcp.AddTool(mcp.NewTool("study_streak",
		mcp.WithDescription("Show the current and longest streaks of consecutive study days."),
		mcp.WithString("deck", mcp.Description("Limit to one deck (default: all decks)")),
	), s.handleStudyStreak)

	s.mcp.AddTool(mcp.NewTool("retention_stats",
		mcp.WithDescription("Show retention (success vs lapse rates) and a per-rating breakdown over a recent window."),
		mcp.WithString("deck", mcp.Description("Limit to one deck (default: all decks)")),
		mcp.WithNumber("window_days", mcp.Description("How many days back to look (default from config)")),
	), s.handleRetentionStats)

	s.mcp.AddTool(mcp.NewTool("learning_curve",
		mcp.WithDescription("Show a day-by-day series of reviews, new cards and retention over a recent window."),
		mcp.WithNumber("window_days", mcp.Description("How many days back to look (default from config)")),
		mcp.WithString("deck", mcp.Description("Limit to one deck (default: all decks)")),
	), s.handleLearningCurve)

	s.mcp.AddTool(mcp.NewTool("problem_cards",
		mcp.WithDescription("Find struggling cards by low ease, high lapse count, or both, worst first."),
		mcp.WithString("criteria", mcp.Description("One of low_ease, high_lapses or all (default: all)")),
		mcp.WithNumber("ease_threshold", mcp.Description("Ease cutoff in permille (default from config)")),
		mcp.WithNumber("lapse_threshold", mcp.Description("Lapse count cutoff (default from config)")),
		mcp.WithString("deck", mcp.Description("Limit to one deck (default: all decks)")),
		mcp.WithNumber("limit", mcp.Description("Max cards to return (default from config)")),
	), s.handleProblemCards)
}
