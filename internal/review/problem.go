package review

import (
	"fmt"
	"sort"
)

// ProblemCriteria selects how struggling cards are detected. It is a
// closed set: ParseCriteria is the only way in from user input, so an
// unknown value is rejected up front instead of falling through to a
// default.
type ProblemCriteria int

const (
	LowEase ProblemCriteria = iota
	HighLapses
	AllProblems
)

// ParseCriteria maps the wire-level criteria strings onto the typed
// constants.
func ParseCriteria(s string) (ProblemCriteria, error) {
	switch s {
	case "low_ease":
		return LowEase, nil
	case "high_lapses":
		return HighLapses, nil
	case "all":
		return AllProblems, nil
	}
	return 0, &ConfigError{Param: "criteria", Msg: fmt.Sprintf("unknown value %q (want low_ease, high_lapses or all)", s)}
}

func (c ProblemCriteria) String() string {
	switch c {
	case LowEase:
		return "low_ease"
	case HighLapses:
		return "high_lapses"
	case AllProblems:
		return "all"
	}
	return "unknown"
}

// Default thresholds for struggling-card detection.
const (
	DefaultEaseThreshold  = 2000 // permille
	DefaultLapseThreshold = 8
)

// ProblemCards filters and ranks struggling cards, worst first:
// LowEase ascends by ease, HighLapses descends by lapses, and
// AllProblems merges both sets (deduplicated by card id) under a
// composite severity score. The full candidate set is ranked before
// the limit is applied; limit <= 0 means no limit.
//
// Both thresholds must be positive. A zero or negative threshold is a
// configuration mistake and is reported, not clamped.
func ProblemCards(states []CardState, criteria ProblemCriteria, easeThreshold, lapseThreshold, limit int) ([]CardState, error) {
	if easeThreshold <= 0 {
		return nil, &ConfigError{Param: "ease_threshold", Msg: fmt.Sprintf("must be positive, got %d", easeThreshold)}
	}
	if lapseThreshold <= 0 {
		return nil, &ConfigError{Param: "lapse_threshold", Msg: fmt.Sprintf("must be positive, got %d", lapseThreshold)}
	}

	var out []CardState
	switch criteria {
	case LowEase:
		for _, c := range states {
			if c.Ease < easeThreshold {
				out = append(out, c)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Ease < out[j].Ease })
	case HighLapses:
		for _, c := range states {
			if c.Lapses >= lapseThreshold {
				out = append(out, c)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Lapses > out[j].Lapses })
	case AllProblems:
		seen := make(map[int64]bool, len(states))
		for _, c := range states {
			if seen[c.CardID] {
				continue
			}
			if c.Ease < easeThreshold || c.Lapses >= lapseThreshold {
				seen[c.CardID] = true
				out = append(out, c)
			}
		}
		severity := func(c CardState) float64 {
			return float64(easeThreshold-c.Ease)/float64(easeThreshold) +
				float64(c.Lapses)/float64(lapseThreshold)
		}
		sort.SliceStable(out, func(i, j int) bool { return severity(out[i]) > severity(out[j]) })
	default:
		return nil, &ConfigError{Param: "criteria", Msg: fmt.Sprintf("unknown criteria %d", criteria)}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
