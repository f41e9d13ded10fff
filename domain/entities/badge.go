package entities

// Badge is a display label derived from a user's statistics
type Badge string

// MaxBadges is the number of badges shown for a user
const MaxBadges = 3

// Ranking tier
const (
	BadgeTop3  Badge = "top3"
	BadgeTop10 Badge = "top10"
	BadgeTop50 Badge = "top50"
)

// Experience tier
const (
	BadgeNewbie       Badge = "newbie"
	BadgeBeginner     Badge = "beginner"
	BadgeAmateur      Badge = "amateur"
	BadgeIntermediate Badge = "intermediate"
	BadgeExpert       Badge = "expert"
	BadgeMaster       Badge = "master"
	BadgeLegend       Badge = "legend"
)

// Performance tier
const (
	BadgePerfect    Badge = "perfect"
	BadgeConsistent Badge = "consistent"
	BadgeRisingStar Badge = "rising_star"
)

// Specialization tier
const (
	BadgeExactMaster Badge = "exact_master"
	BadgeHighRoller  Badge = "high_roller"
	BadgeSafePlayer  Badge = "safe_player"
)

// BadgeCandidate pairs a badge with its display priority (lower shows first)
type BadgeCandidate struct {
	Badge    Badge
	Priority int
}
