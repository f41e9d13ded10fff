package entities

import (
	"fmt"
	"strings"
)

// LeaderboardLimit is the number of entries kept after ranking
const LeaderboardLimit = 20

// LeaderboardMode selects how the leaderboard is computed and ordered
type LeaderboardMode string

const (
	LeaderboardModeGlobal      LeaderboardMode = "global"
	LeaderboardModeOddsRange   LeaderboardMode = "odds_range"
	LeaderboardModeSport       LeaderboardMode = "sport"
	LeaderboardModeTotal       LeaderboardMode = "total"
	LeaderboardModeAvgOdds     LeaderboardMode = "avg_odds"
	LeaderboardModeExactScores LeaderboardMode = "exact_scores"
)

// LeaderboardParams carries the mode and its optional filters
type LeaderboardParams struct {
	Mode      LeaderboardMode `json:"mode"`
	OddsRange OddsRange       `json:"odds_range,omitempty"`
	Sport     *Sport          `json:"sport,omitempty"`
}

// ParseLeaderboardParams builds params from raw query values, applying defaults.
// An empty mode means global; odds_range mode defaults to the very_safe bucket.
func ParseLeaderboardParams(mode, oddsRange, sport string) (LeaderboardParams, error) {
	params := LeaderboardParams{Mode: LeaderboardMode(strings.TrimSpace(mode))}
	if params.Mode == "" {
		params.Mode = LeaderboardModeGlobal
	}

	switch params.Mode {
	case LeaderboardModeGlobal, LeaderboardModeTotal, LeaderboardModeAvgOdds, LeaderboardModeExactScores:
	case LeaderboardModeOddsRange:
		params.OddsRange = OddsRange(strings.TrimSpace(oddsRange))
		if params.OddsRange == "" {
			params.OddsRange = OddsRangeVerySafe
		}
		if !params.OddsRange.IsValid() {
			return params, NewValidationError("odds_range", fmt.Sprintf("unknown odds range %q", oddsRange))
		}
	case LeaderboardModeSport:
		if s := Sport(strings.ToLower(strings.TrimSpace(sport))); s != "" {
			if !s.IsValid() {
				return params, NewValidationError("sport", fmt.Sprintf("unknown sport %q", sport))
			}
			params.Sport = &s
		}
	default:
		return params, NewValidationError("mode", fmt.Sprintf("unknown leaderboard mode %q", mode))
	}

	return params, nil
}

// LeaderboardEntry is one ranked user
type LeaderboardEntry struct {
	Rank                  int     `json:"rank"`
	UserID                string  `json:"user_id"`
	Pseudo                *string `json:"pseudo,omitempty"`
	Email                 *string `json:"email,omitempty"`
	TotalPredictions      int     `json:"total_predictions"`
	SuccessPredictions    int     `json:"success_predictions"`
	ExactScorePredictions int     `json:"exact_score_predictions"`
	SuccessRate           float64 `json:"success_rate"`
	AvgOdds               float64 `json:"avg_odds"`
}
