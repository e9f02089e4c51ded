package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/conorfennell/ankimcp/internal/anki"
	"github.com/conorfennell/ankimcp/internal/spanish"
)

func (s *Server) handleHealthCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	version, err := s.client.Version(ctx)
	if err != nil {
		return s.ankiError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✓ Anki is running with AnkiConnect version %d", version)), nil
}

func (s *Server) handleListDecks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	decks, err := s.client.DeckNames(ctx)
	if err != nil {
		return s.ankiError(err), nil
	}
	sort.Strings(decks)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d decks:\n", len(decks))
	for _, deck := range decks {
		fmt.Fprintf(&b, "- %s\n", deck)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleListNoteTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	models, err := s.client.ModelNames(ctx)
	if err != nil {
		return s.ankiError(err), nil
	}
	sort.Strings(models)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d note types:\n", len(models))
	for _, model := range models {
		fields, err := s.client.ModelFieldNames(ctx, model)
		if err != nil {
			return s.ankiError(err), nil
		}
		fmt.Fprintf(&b, "- %s: [%s]\n", model, strings.Join(fields, ", "))
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

// ensureDeck creates the deck, treating "already exists" style
// refusals from AnkiConnect as success.
func (s *Server) ensureDeck(ctx context.Context, deck string) error {
	_, err := s.client.CreateDeck(ctx, deck)
	var connErr *anki.ConnectError
	if errors.As(err, &connErr) {
		return nil
	}
	return err
}

func (s *Server) handleAddFlashcard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck, err := req.RequireString("deck")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	front, err := req.RequireString("front")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	back, err := req.RequireString("back")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := req.GetStringSlice("tags", nil)
	model := req.GetString("model", "Basic")

	if err := s.ensureDeck(ctx, deck); err != nil {
		return s.ankiError(err), nil
	}

	noteID, err := s.client.AddNote(ctx, anki.Note{
		DeckName:  deck,
		ModelName: model,
		Fields:    map[string]string{"Front": front, "Back": back},
		Tags:      tags,
	})
	if err != nil {
		return s.ankiError(err), nil
	}
	if noteID == nil {
		return mcp.NewToolResultText(fmt.Sprintf("⚠ Duplicate card not added (already exists in '%s')", deck)), nil
	}

	tagsNote := ""
	if len(tags) > 0 {
		tagsNote = fmt.Sprintf(" (tags: %s)", strings.Join(tags, ", "))
	}
	return mcp.NewToolResultText(fmt.Sprintf("✓ Added flashcard to '%s'%s\nNote ID: %d", deck, tagsNote, *noteID)), nil
}

func (s *Server) handleAddFlashcardsBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Deck  string `json:"deck"`
		Cards []struct {
			Front string   `json:"front"`
			Back  string   `json:"back"`
			Tags  []string `json:"tags"`
		} `json:"cards"`
		Tags  []string `json:"tags"`
		Model string   `json:"model"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Deck == "" || len(args.Cards) == 0 {
		return mcp.NewToolResultError("deck and a non-empty cards list are required"), nil
	}
	if args.Model == "" {
		args.Model = "Basic"
	}

	if err := s.ensureDeck(ctx, args.Deck); err != nil {
		return s.ankiError(err), nil
	}

	notes := make([]anki.Note, 0, len(args.Cards))
	for _, card := range args.Cards {
		notes = append(notes, anki.Note{
			DeckName:  args.Deck,
			ModelName: args.Model,
			Fields:    map[string]string{"Front": card.Front, "Back": card.Back},
			Tags:      mergeTags(args.Tags, card.Tags),
		})
	}

	ids, err := s.client.AddNotes(ctx, notes)
	if err != nil {
		return s.ankiError(err), nil
	}

	added, duplicates := 0, 0
	for _, id := range ids {
		if id != nil {
			added++
		} else {
			duplicates++
		}
	}

	lines := []string{
		fmt.Sprintf("✓ Batch add to '%s' complete:", args.Deck),
		fmt.Sprintf("  - Added: %d", added),
		fmt.Sprintf("  - Duplicates skipped: %d", duplicates),
		fmt.Sprintf("  - Total: %d", len(args.Cards)),
	}
	if len(args.Tags) > 0 {
		lines = append(lines, fmt.Sprintf("  - Tags: %s", strings.Join(args.Tags, ", ")))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

// mergeTags combines global and per-card tags, dropping duplicates
// while keeping first-seen order.
func mergeTags(global, own []string) []string {
	seen := make(map[string]bool, len(global)+len(own))
	merged := make([]string, 0, len(global)+len(own))
	for _, t := range append(append([]string{}, global...), own...) {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	return merged
}

func (s *Server) handleAddClozeCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck, err := req.RequireString("deck")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	extra := req.GetString("extra", "")
	tags := req.GetStringSlice("tags", nil)

	if target := req.GetString("target_word", ""); target != "" && !strings.Contains(text, "{{c") {
		clozed := spanish.SentenceCloze(text, target)
		if clozed == text {
			return mcp.NewToolResultError(fmt.Sprintf("target word %q not found in text", target)), nil
		}
		text = clozed
	}
	if !strings.Contains(text, "{{c") {
		return mcp.NewToolResultError("text has no {{c1::...}} deletions; mark one or pass target_word"), nil
	}

	if err := s.ensureDeck(ctx, deck); err != nil {
		return s.ankiError(err), nil
	}

	noteID, err := s.client.AddNote(ctx, anki.Note{
		DeckName:  deck,
		ModelName: "Cloze",
		Fields:    map[string]string{"Text": text, "Extra": extra},
		Tags:      tags,
	})
	if err != nil {
		return s.ankiError(err), nil
	}
	if noteID == nil {
		return mcp.NewToolResultText(fmt.Sprintf("⚠ Duplicate cloze card not added (already exists in '%s')", deck)), nil
	}

	tagsNote := ""
	if len(tags) > 0 {
		tagsNote = fmt.Sprintf(" (tags: %s)", strings.Join(tags, ", "))
	}
	return mcp.NewToolResultText(fmt.Sprintf("✓ Added cloze card to '%s'%s\nNote ID: %d\nText: %s", deck, tagsNote, *noteID, text)), nil
}

func (s *Server) handleAddSpanishVocab(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	word, err := req.RequireString("spanish")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	english, err := req.RequireString("english")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	example := req.GetString("example", "")
	gender := req.GetString("gender", "")
	pos := req.GetString("pos", "")
	deck := req.GetString("deck", "Spanish")

	card := spanish.VocabCard(word, english, example, gender)
	tags := spanish.SuggestTags(word, pos, req.GetStringSlice("tags", nil))

	if err := s.ensureDeck(ctx, deck); err != nil {
		return s.ankiError(err), nil
	}

	noteID, err := s.client.AddNote(ctx, anki.Note{
		DeckName:  deck,
		ModelName: "Basic",
		Fields:    map[string]string{"Front": card.Front, "Back": card.Back},
		Tags:      tags,
	})
	if err != nil {
		return s.ankiError(err), nil
	}
	if noteID == nil {
		return mcp.NewToolResultText(fmt.Sprintf("⚠ Duplicate card not added (already exists in '%s')", deck)), nil
	}

	tagsNote := ""
	if len(tags) > 0 {
		tagsNote = fmt.Sprintf(" (tags: %s)", strings.Join(tags, ", "))
	}
	return mcp.NewToolResultText(fmt.Sprintf("✓ Added Spanish vocab card to '%s'%s\nNote ID: %d", deck, tagsNote, *noteID)), nil
}

func (s *Server) handleAddSpanishVerb(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infinitive, err := req.RequireString("infinitive")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	english, err := req.RequireString("english")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes := req.GetString("conjugation_notes", "")
	example := req.GetString("example", "")
	deck := req.GetString("deck", "Spanish")

	card := spanish.VerbCard(infinitive, english, notes, example)
	tags := spanish.SuggestTags(infinitive, "verb", req.GetStringSlice("tags", nil))

	if err := s.ensureDeck(ctx, deck); err != nil {
		return s.ankiError(err), nil
	}

	noteID, err := s.client.AddNote(ctx, anki.Note{
		DeckName:  deck,
		ModelName: "Basic",
		Fields:    map[string]string{"Front": card.Front, "Back": card.Back},
		Tags:      tags,
	})
	if err != nil {
		return s.ankiError(err), nil
	}
	if noteID == nil {
		return mcp.NewToolResultText(fmt.Sprintf("⚠ Duplicate card not added (already exists in '%s')", deck)), nil
	}

	tagsNote := ""
	if len(tags) > 0 {
		tagsNote = fmt.Sprintf(" (tags: %s)", strings.Join(tags, ", "))
	}
	return mcp.NewToolResultText(fmt.Sprintf("✓ Added Spanish verb card to '%s'%s\nNote ID: %d", deck, tagsNote, *noteID)), nil
}

func (s *Server) handleSearchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 20)

	noteIDs, err := s.client.FindNotes(ctx, query)
	if err != nil {
		return s.ankiError(err), nil
	}
	if len(noteIDs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No notes found matching: %s", query)), nil
	}
	if len(noteIDs) > limit {
		noteIDs = noteIDs[:limit]
	}

	notes, err := s.client.NotesInfo(ctx, noteIDs)
	if err != nil {
		return s.ankiError(err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d notes (showing up to %d):\n", len(notes), limit)
	for _, note := range notes {
		fmt.Fprintf(&b, "- ID %d: %s%s\n", note.NoteID, formatNoteFields(note), formatNoteTags(note.Tags))
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

// formatNoteFields joins field excerpts in display order, each capped
// at 50 characters.
func formatNoteFields(note anki.NoteInfo) string {
	names := make([]string, 0, len(note.Fields))
	for name := range note.Fields {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return note.Fields[names[i]].Order < note.Fields[names[j]].Order
	})

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, excerpt(note.Fields[name].Value, 50)))
	}
	return strings.Join(parts, " | ")
}

func formatNoteTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return fmt.Sprintf(" [%s]", strings.Join(tags, ", "))
}

func excerpt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (s *Server) handleDeckStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := req.GetString("deck", "")

	decks := []string{deck}
	if deck == "" {
		var err error
		decks, err = s.client.DeckNames(ctx)
		if err != nil {
			return s.ankiError(err), nil
		}
	}

	stats, err := s.client.DeckStats(ctx, decks)
	if err != nil {
		return s.ankiError(err), nil
	}
	today, err := s.client.NumCardsReviewedToday(ctx)
	if err != nil {
		return s.ankiError(err), nil
	}

	ordered := make([]anki.DeckStat, 0, len(stats))
	for _, st := range stats {
		ordered = append(ordered, st)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	var b strings.Builder
	fmt.Fprintf(&b, "Reviewed today: %d cards\n\n", today)
	for _, st := range ordered {
		fmt.Fprintf(&b, "%s: %d cards (new: %d, learning: %d, review: %d)\n",
			st.Name, st.TotalInDeck, st.NewCount, st.LearnCount, st.ReviewCount)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.client.Sync(ctx); err != nil {
		return s.ankiError(err), nil
	}
	return mcp.NewToolResultText("✓ Anki collection synchronized with AnkiWeb"), nil
}
