package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/conorfennell/ankimcp/internal/config"
	"github.com/conorfennell/ankimcp/internal/review"
)

// stubSource is a canned ReviewSource that records what it was asked
// for.
type stubSource struct {
	entries []review.LogEntry
	err     error

	gotDeck  string
	gotSince int64
}

func (s *stubSource) ReviewLog(ctx context.Context, deck string, sinceMillis int64) ([]review.LogEntry, error) {
	s.gotDeck = deck
	s.gotSince = sinceMillis
	return s.entries, s.err
}

func testServer(logs ReviewSource, now time.Time) *Server {
	return &Server{
		logs: logs,
		cfg:  config.Default(),
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:  func() time.Time { return now },
	}
}

func callArgs(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("Expected result content, got none")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestHandleStudyStreak(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	source := &stubSource{entries: []review.LogEntry{
		{CardID: 1, TimestampMillis: yesterday.UnixMilli(), Rating: review.Good},
		{CardID: 2, TimestampMillis: now.Add(-time.Hour).UnixMilli(), Rating: review.Good},
	}}

	s := testServer(source, now)
	res, err := s.handleStudyStreak(context.Background(), callArgs(map[string]any{"deck": "Spanish"}))
	if err != nil {
		t.Fatalf("Expected no handler error, got %v", err)
	}

	got := resultText(t, res)
	if !strings.Contains(got, "Current streak: 2 days") {
		t.Errorf("Expected a 2-day streak, got %q", got)
	}
	if source.gotDeck != "Spanish" {
		t.Errorf("Expected deck 'Spanish' passed through, got %q", source.gotDeck)
	}
	if source.gotSince != 0 {
		t.Errorf("Expected full history fetch, got since=%d", source.gotSince)
	}
}

func TestHandleStudyStreakSourceError(t *testing.T) {
	source := &stubSource{err: errors.New("connection refused")}
	s := testServer(source, time.Now())

	res, err := s.handleStudyStreak(context.Background(), callArgs(nil))
	if err != nil {
		t.Fatalf("Expected tool-level error result, got handler error %v", err)
	}
	if !res.IsError {
		t.Error("Expected an error result")
	}
	if !strings.Contains(resultText(t, res), "Make sure Anki is running") {
		t.Errorf("Expected the AnkiConnect hint, got %q", resultText(t, res))
	}
}

func TestHandleRetentionStatsWindow(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	source := &stubSource{entries: []review.LogEntry{
		{CardID: 1, TimestampMillis: now.Add(-time.Hour).UnixMilli(), Rating: review.Again},
		{CardID: 2, TimestampMillis: now.Add(-2 * time.Hour).UnixMilli(), Rating: review.Good},
	}}

	s := testServer(source, now)
	res, err := s.handleRetentionStats(context.Background(), callArgs(map[string]any{"window_days": float64(7)}))
	if err != nil {
		t.Fatalf("Expected no handler error, got %v", err)
	}

	wantSince := now.UnixMilli() - 7*24*60*60*1000
	if source.gotSince != wantSince {
		t.Errorf("Expected since=%d for a 7-day window, got %d", wantSince, source.gotSince)
	}
	got := resultText(t, res)
	if !strings.Contains(got, "last 7 days") {
		t.Errorf("Expected the window in the output, got %q", got)
	}
	if !strings.Contains(got, "Success rate: 50.0%") {
		t.Errorf("Expected 50%% success, got %q", got)
	}
}

func TestHandleRetentionStatsRejectsNegativeWindow(t *testing.T) {
	source := &stubSource{entries: []review.LogEntry{
		{CardID: 1, TimestampMillis: 1, Rating: review.Good},
	}}
	s := testServer(source, time.Now())

	res, err := s.handleRetentionStats(context.Background(), callArgs(map[string]any{"window_days": float64(-5)}))
	if err != nil {
		t.Fatalf("Expected tool-level error result, got handler error %v", err)
	}
	if !res.IsError {
		t.Error("Expected an error result for a negative window")
	}
	if !strings.Contains(resultText(t, res), "window_days") {
		t.Errorf("Expected the offending parameter named, got %q", resultText(t, res))
	}
	if source.gotDeck != "" || source.gotSince != 0 {
		t.Error("Expected no fetch to be attempted for a rejected window")
	}
}

func TestHandleAddClozeCardRejectsBadText(t *testing.T) {
	s := testServer(&stubSource{}, time.Now())

	t.Run("target word missing from text", func(t *testing.T) {
		res, err := s.handleAddClozeCard(context.Background(), callArgs(map[string]any{
			"deck":        "Spanish",
			"text":        "La casa es grande",
			"target_word": "perro",
		}))
		if err != nil {
			t.Fatalf("Expected tool-level error result, got handler error %v", err)
		}
		if !res.IsError {
			t.Error("Expected an error result when the target word is absent")
		}
	})

	t.Run("no deletions and no target word", func(t *testing.T) {
		res, err := s.handleAddClozeCard(context.Background(), callArgs(map[string]any{
			"deck": "Spanish",
			"text": "La casa es grande",
		}))
		if err != nil {
			t.Fatalf("Expected tool-level error result, got handler error %v", err)
		}
		if !res.IsError {
			t.Error("Expected an error result for text without deletions")
		}
	})
}

func TestHandleLearningCurveRejectsNegativeWindow(t *testing.T) {
	s := testServer(&stubSource{}, time.Now())

	res, err := s.handleLearningCurve(context.Background(), callArgs(map[string]any{"window_days": float64(-1)}))
	if err != nil {
		t.Fatalf("Expected tool-level error result, got handler error %v", err)
	}
	if !res.IsError {
		t.Error("Expected an error result for a negative window")
	}
	if !strings.Contains(resultText(t, res), "window_days") {
		t.Errorf("Expected the offending parameter named, got %q", resultText(t, res))
	}
}
