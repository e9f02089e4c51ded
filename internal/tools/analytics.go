package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/conorfennell/ankimcp/internal/review"
)

func (s *Server) handleStudyStreak(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := req.GetString("deck", "")
	nowMillis := s.now().UnixMilli()

	entries, err := s.logs.ReviewLog(ctx, deck, 0)
	if err != nil {
		return s.ankiError(err), nil
	}

	result := review.Streak(entries, nowMillis, s.boundary())
	return mcp.NewToolResultText(formatStreak(result, deck)), nil
}

func formatStreak(r review.StreakResult, deck string) string {
	scope := "all decks"
	if deck != "" {
		scope = fmt.Sprintf("deck '%s'", deck)
	}
	if r.LastStudy == nil {
		return fmt.Sprintf("No study history found for %s.", scope)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Study streak for %s:\n", scope)
	fmt.Fprintf(&b, "- Current streak: %s\n", pluralDays(r.CurrentDays))
	fmt.Fprintf(&b, "- Longest streak: %s\n", pluralDays(r.LongestDays))
	fmt.Fprintf(&b, "- Last studied: %s", r.LastStudy)
	return b.String()
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func (s *Server) handleRetentionStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := req.GetString("deck", "")
	days := req.GetInt("window_days", s.cfg.DefaultWindowDays)
	if days < 0 {
		cfgErr := &review.ConfigError{Param: "window_days", Msg: fmt.Sprintf("must not be negative, got %d", days)}
		return mcp.NewToolResultError(cfgErr.Error()), nil
	}
	nowMillis := s.now().UnixMilli()

	since := int64(0)
	if days > 0 {
		since = nowMillis - int64(days)*24*60*60*1000
	}

	entries, err := s.logs.ReviewLog(ctx, deck, since)
	if err != nil {
		return s.ankiError(err), nil
	}

	summary := review.Retention(entries)
	return mcp.NewToolResultText(formatRetention(summary, deck, days)), nil
}

func formatRetention(r review.RetentionSummary, deck string, days int) string {
	scope := "all decks"
	if deck != "" {
		scope = fmt.Sprintf("deck '%s'", deck)
	}
	if !r.HasData() {
		return fmt.Sprintf("No reviews found for %s in the last %d days.", scope, days)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Retention for %s over the last %d days:\n", scope, days)
	fmt.Fprintf(&b, "- Reviews: %d\n", r.Total)
	fmt.Fprintf(&b, "- Success rate: %.1f%%\n", r.SuccessRate*100)
	fmt.Fprintf(&b, "- Lapse rate: %.1f%%\n", r.LapseRate()*100)
	fmt.Fprintf(&b, "- Answer breakdown: Again %d, Hard %d, Good %d, Easy %d",
		r.ByRating[review.Again], r.ByRating[review.Hard],
		r.ByRating[review.Good], r.ByRating[review.Easy])
	return b.String()
}

func (s *Server) handleLearningCurve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := req.GetString("deck", "")
	days := req.GetInt("window_days", s.cfg.DefaultWindowDays)
	nowMillis := s.now().UnixMilli()

	entries, err := s.logs.ReviewLog(ctx, deck, 0)
	if err != nil {
		return s.ankiError(err), nil
	}

	points, err := review.Curve(entries, days, nowMillis, s.boundary())
	if err != nil {
		var cfgErr *review.ConfigError
		if errors.As(err, &cfgErr) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return s.ankiError(err), nil
	}

	return mcp.NewToolResultText(formatCurve(points, deck)), nil
}

func formatCurve(points []review.CurvePoint, deck string) string {
	scope := "all decks"
	if deck != "" {
		scope = fmt.Sprintf("deck '%s'", deck)
	}

	total := 0
	for _, p := range points {
		total += p.Reviews
	}
	if total == 0 {
		return fmt.Sprintf("No reviews found for %s in the last %d days.", scope, len(points)-1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Learning curve for %s (%d days):\n", scope, len(points)-1)
	for _, p := range points {
		if p.Reviews == 0 {
			fmt.Fprintf(&b, "%s: no reviews\n", p.Day)
			continue
		}
		line := fmt.Sprintf("%s: %d reviews, %d new", p.Day, p.Reviews, p.NewCards)
		if p.HasRetention {
			line += fmt.Sprintf(", %.1f%% success", p.SuccessRate*100)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(curveTrend(points))
	return strings.TrimRight(b.String(), "\n")
}

// curveTrend compares the success rate of the older half of the window
// against the newer half.
func curveTrend(points []review.CurvePoint) string {
	mid := len(points) / 2
	older := points[:mid]
	newer := points[mid:]

	olderRate, olderOK := halfRate(older)
	newerRate, newerOK := halfRate(newer)
	if !olderOK || !newerOK {
		return ""
	}

	diff := (newerRate - olderRate) * 100
	switch {
	case diff > 1:
		return fmt.Sprintf("Trend: improving (+%.1f%% vs earlier half)\n", diff)
	case diff < -1:
		return fmt.Sprintf("Trend: declining (%.1f%% vs earlier half)\n", diff)
	default:
		return "Trend: stable\n"
	}
}

func halfRate(points []review.CurvePoint) (float64, bool) {
	var sum float64
	var n int
	for _, p := range points {
		if p.HasRetention {
			sum += p.SuccessRate
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (s *Server) handleProblemCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := req.GetString("deck", "")
	criteriaName := req.GetString("criteria", "all")
	limit := req.GetInt("limit", s.cfg.ProblemCardLimit)
	easeThreshold := req.GetInt("ease_threshold", s.cfg.EaseThreshold)
	lapseThreshold := req.GetInt("lapse_threshold", s.cfg.LapseThreshold)

	criteria, err := review.ParseCriteria(criteriaName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	states, err := s.client.CardStates(ctx, deck, nil)
	if err != nil {
		return s.ankiError(err), nil
	}

	cards, err := review.ProblemCards(states, criteria, easeThreshold, lapseThreshold, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatProblemCards(cards, criteria, deck)), nil
}

func formatProblemCards(cards []review.CardState, criteria review.ProblemCriteria, deck string) string {
	scope := "all decks"
	if deck != "" {
		scope = fmt.Sprintf("deck '%s'", deck)
	}
	if len(cards) == 0 {
		return fmt.Sprintf("No problem cards found in %s (criteria: %s).", scope, criteria)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d problem cards in %s (criteria: %s):\n", len(cards), scope, criteria)
	for _, c := range cards {
		suspended := ""
		if c.Suspended {
			suspended = " [suspended]"
		}
		fmt.Fprintf(&b, "- Card %d (%s): ease %d, lapses %d, %d reviews, interval %dd%s\n",
			c.CardID, c.DeckName, c.Ease, c.Lapses, c.ReviewCount, c.IntervalDays, suspended)
	}
	return strings.TrimRight(b.String(), "\n")
}
