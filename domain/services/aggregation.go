package services

import (
	"sort"

	"tipster/domain/entities"
)

// tally counts finalized predictions for one user or bucket
type tally struct {
	total   int
	success int
	exact   int
	odds    float64
}

func (t *tally) add(p *entities.Prediction) {
	t.total++
	t.odds += p.Odds
	if p.IsWin() {
		t.success++
	}
	if p.IsExactHit() {
		t.exact++
	}
}

// calculateWinRate returns the percentage of wins, 0 when there is nothing to count
func calculateWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

func calculateAverage(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// ComputeUserStats builds a statistics snapshot from a user's predictions.
// Only finalized predictions are counted.
func ComputeUserStats(predictions []*entities.Prediction) entities.UserStats {
	var t tally
	for _, p := range predictions {
		if !p.IsFinalized() {
			continue
		}
		t.add(p)
	}

	return entities.UserStats{
		TotalPredictions:      t.total,
		SuccessPredictions:    t.success,
		ExactScorePredictions: t.exact,
		SuccessRate:           calculateWinRate(t.success, t.total),
		AvgOdds:               calculateAverage(t.odds, t.total),
	}
}

// ComputeOddsRangeBreakdown groups finalized predictions into the four odds buckets.
// Odds outside every bucket are ignored.
func ComputeOddsRangeBreakdown(predictions []*entities.Prediction) []entities.OddsRangeStats {
	tallies := make(map[entities.OddsRange]*tally, len(entities.OddsRanges))
	for _, r := range entities.OddsRanges {
		tallies[r] = &tally{}
	}

	for _, p := range predictions {
		if !p.IsFinalized() {
			continue
		}
		if r, ok := entities.OddsRangeFor(p.Odds); ok {
			tallies[r].add(p)
		}
	}

	breakdown := make([]entities.OddsRangeStats, 0, len(entities.OddsRanges))
	for _, r := range entities.OddsRanges {
		t := tallies[r]
		bounds, _ := r.Bounds()
		breakdown = append(breakdown, entities.OddsRangeStats{
			Range:   r,
			Bounds:  bounds,
			Count:   t.total,
			Success: t.success,
			Rate:    calculateWinRate(t.success, t.total),
		})
	}
	return breakdown
}

// leaderboardPredicate returns the prediction filter a mode recomputes stats with,
// or nil when the mode ranks on the stored snapshots.
func leaderboardPredicate(params entities.LeaderboardParams) func(*entities.Prediction) bool {
	switch params.Mode {
	case entities.LeaderboardModeOddsRange:
		r := params.OddsRange
		return func(p *entities.Prediction) bool { return r.Contains(p.Odds) }
	case entities.LeaderboardModeSport:
		if params.Sport == nil {
			return nil
		}
		sport := *params.Sport
		return func(p *entities.Prediction) bool { return p.Sport == sport }
	case entities.LeaderboardModeExactScores:
		return func(p *entities.Prediction) bool { return p.HasProbableScore() }
	}
	return nil
}

func newLeaderboardEntry(u *entities.User) *entities.LeaderboardEntry {
	return &entities.LeaderboardEntry{
		UserID:                u.ID,
		Pseudo:                u.Pseudo,
		Email:                 u.Email,
		TotalPredictions:      u.Stats.TotalPredictions,
		SuccessPredictions:    u.Stats.SuccessPredictions,
		ExactScorePredictions: u.Stats.ExactScorePredictions,
		SuccessRate:           u.Stats.SuccessRate,
		AvgOdds:               u.Stats.AvgOdds,
	}
}

// BuildLeaderboard ranks users for the given mode.
//
// Snapshot modes (global, total, avg_odds, sport without a sport) rank the stored stats.
// Filtered modes (odds_range, sport, exact_scores) recompute total and success from the
// finalized predictions matching the filter; exact_scores uses exact hits as successes.
// Users with no eligible prediction are dropped, the rest are sorted by success rate then
// by the mode's tie-break, truncated to LeaderboardLimit and numbered from 1.
func BuildLeaderboard(users []*entities.User, predictions []*entities.Prediction, params entities.LeaderboardParams) []*entities.LeaderboardEntry {
	entries := make([]*entities.LeaderboardEntry, 0, len(users))

	if match := leaderboardPredicate(params); match != nil {
		perUser := make(map[string]*tally)
		for _, p := range predictions {
			if !p.IsFinalized() || !match(p) {
				continue
			}
			t, ok := perUser[p.UserID]
			if !ok {
				t = &tally{}
				perUser[p.UserID] = t
			}
			t.add(p)
		}

		for _, u := range users {
			t, ok := perUser[u.ID]
			if !ok || t.total == 0 {
				continue
			}
			entry := newLeaderboardEntry(u)
			entry.TotalPredictions = t.total
			if params.Mode == entities.LeaderboardModeExactScores {
				entry.SuccessPredictions = t.exact
				entry.ExactScorePredictions = t.exact
				entry.SuccessRate = calculateWinRate(t.exact, t.total)
			} else {
				entry.SuccessPredictions = t.success
				entry.SuccessRate = calculateWinRate(t.success, t.total)
			}
			entries = append(entries, entry)
		}
	} else {
		for _, u := range users {
			if u.Stats.TotalPredictions <= 0 {
				continue
			}
			if params.Mode == entities.LeaderboardModeAvgOdds && u.Stats.AvgOdds <= 0 {
				continue
			}
			entries = append(entries, newLeaderboardEntry(u))
		}
	}

	sort.Slice(entries, leaderboardLess(entries, params.Mode))

	if len(entries) > entities.LeaderboardLimit {
		entries = entries[:entities.LeaderboardLimit]
	}
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries
}

func leaderboardLess(entries []*entities.LeaderboardEntry, mode entities.LeaderboardMode) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.SuccessRate != b.SuccessRate {
			return a.SuccessRate > b.SuccessRate
		}

		switch mode {
		case entities.LeaderboardModeAvgOdds:
			if a.AvgOdds != b.AvgOdds {
				return a.AvgOdds > b.AvgOdds
			}
		case entities.LeaderboardModeExactScores:
			if a.ExactScorePredictions != b.ExactScorePredictions {
				return a.ExactScorePredictions > b.ExactScorePredictions
			}
		default:
			if a.TotalPredictions != b.TotalPredictions {
				return a.TotalPredictions > b.TotalPredictions
			}
		}

		return a.UserID < b.UserID
	}
}

// BuildPerformanceBadges derives up to three badges from a statistics snapshot.
// Each category contributes at most one candidate; lower priority values show first.
func BuildPerformanceBadges(stats entities.UserStats) []entities.Badge {
	total := stats.TotalPredictions
	rate := stats.SuccessRate
	exact := stats.ExactScorePredictions
	avgOdds := stats.AvgOdds

	var candidates []entities.BadgeCandidate
	add := func(b entities.Badge, priority int) {
		candidates = append(candidates, entities.BadgeCandidate{Badge: b, Priority: priority})
	}

	// Ranking
	switch {
	case total >= 100 && rate >= 85:
		add(entities.BadgeTop3, 1)
	case total >= 50 && rate >= 80:
		add(entities.BadgeTop10, 2)
	case total >= 25 && rate >= 75:
		add(entities.BadgeTop50, 3)
	}

	// Experience
	switch {
	case total == 0:
		add(entities.BadgeNewbie, 10)
	case total < 10:
		add(entities.BadgeBeginner, 9)
	case total < 25:
		add(entities.BadgeAmateur, 8)
	case total < 50:
		add(entities.BadgeIntermediate, 7)
	case total < 100:
		add(entities.BadgeExpert, 6)
	case total < 200:
		add(entities.BadgeMaster, 5)
	default:
		add(entities.BadgeLegend, 4)
	}

	// Performance
	switch {
	case rate == 100 && total >= 5:
		add(entities.BadgePerfect, 1)
	case rate >= 90 && total >= 20:
		add(entities.BadgeConsistent, 2)
	case rate >= 70 && total >= 10 && total < 25:
		add(entities.BadgeRisingStar, 3)
	}

	// Specialization
	switch {
	case exact >= 10 && total >= 30:
		add(entities.BadgeExactMaster, 4)
	case avgOdds >= 3.0 && total >= 15:
		add(entities.BadgeHighRoller, 5)
	case avgOdds > 0 && avgOdds <= 1.5 && total >= 20:
		add(entities.BadgeSafePlayer, 6)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})

	badges := make([]entities.Badge, 0, entities.MaxBadges)
	for _, c := range candidates {
		if len(badges) == entities.MaxBadges {
			break
		}
		badges = append(badges, c.Badge)
	}
	return badges
}
