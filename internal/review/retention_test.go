package review

import (
	"math"
	"testing"
)

func TestRetention(t *testing.T) {
	t.Run("mixed ratings", func(t *testing.T) {
		entries := []LogEntry{
			{Rating: Good}, {Rating: Good}, {Rating: Easy},
			{Rating: Again}, {Rating: Hard},
		}
		s := Retention(entries)
		if !s.HasData() {
			t.Fatal("Expected summary to report data")
		}
		if s.Total != 5 {
			t.Errorf("Expected 5 reviews, got %d", s.Total)
		}
		if s.ByRating[Again] != 1 || s.ByRating[Good] != 2 {
			t.Errorf("Unexpected histogram: %v", s.ByRating)
		}
		if math.Abs(s.SuccessRate-0.8) > 1e-9 {
			t.Errorf("Expected success rate 0.8, got %f", s.SuccessRate)
		}
	})

	t.Run("success and lapse rates sum to one", func(t *testing.T) {
		entries := []LogEntry{
			{Rating: Again}, {Rating: Again}, {Rating: Good},
			{Rating: Easy}, {Rating: Hard}, {Rating: Again}, {Rating: Good},
		}
		s := Retention(entries)
		if sum := s.SuccessRate + s.LapseRate(); math.Abs(sum-1) > 1e-9 {
			t.Errorf("Expected rates to sum to 1, got %f", sum)
		}
	})

	t.Run("all lapses", func(t *testing.T) {
		s := Retention([]LogEntry{{Rating: Again}, {Rating: Again}})
		if s.SuccessRate != 0 {
			t.Errorf("Expected success rate 0, got %f", s.SuccessRate)
		}
		if !s.HasData() {
			t.Error("A real zero must still count as data")
		}
	})

	t.Run("empty window is no data, not zero", func(t *testing.T) {
		s := Retention(nil)
		if s.HasData() {
			t.Error("Expected an empty window to report no data")
		}
		if s.Total != 0 {
			t.Errorf("Expected zero total, got %d", s.Total)
		}
		if math.IsNaN(s.SuccessRate) {
			t.Error("Rates must never be NaN")
		}
	})
}
