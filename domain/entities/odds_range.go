package entities

// OddsRange is a fixed bucket of odds values
type OddsRange string

const (
	OddsRangeVerySafe       OddsRange = "very_safe"
	OddsRangeModeratelySafe OddsRange = "moderately_safe"
	OddsRangeRisky          OddsRange = "risky"
	OddsRangeVeryRisky      OddsRange = "very_risky"
)

// OddsBounds holds the inclusive limits of a bucket
type OddsBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// OddsRanges lists every bucket in ascending order
var OddsRanges = []OddsRange{
	OddsRangeVerySafe,
	OddsRangeModeratelySafe,
	OddsRangeRisky,
	OddsRangeVeryRisky,
}

var oddsBounds = map[OddsRange]OddsBounds{
	OddsRangeVerySafe:       {Min: 1.00, Max: 1.50},
	OddsRangeModeratelySafe: {Min: 1.51, Max: 2.00},
	OddsRangeRisky:          {Min: 2.01, Max: 5.00},
	OddsRangeVeryRisky:      {Min: 5.01, Max: 999},
}

// Bounds returns the inclusive limits of the bucket
func (r OddsRange) Bounds() (OddsBounds, bool) {
	b, ok := oddsBounds[r]
	return b, ok
}

// IsValid returns true for a known bucket
func (r OddsRange) IsValid() bool {
	_, ok := oddsBounds[r]
	return ok
}

// Contains returns true if the odds value falls inside the bucket
func (r OddsRange) Contains(odds float64) bool {
	b, ok := oddsBounds[r]
	if !ok {
		return false
	}
	return odds >= b.Min && odds <= b.Max
}

// OddsRangeFor returns the bucket an odds value belongs to.
// Values between two buckets (e.g. 1.505) or above 999 belong to none.
func OddsRangeFor(odds float64) (OddsRange, bool) {
	for _, r := range OddsRanges {
		if r.Contains(odds) {
			return r, true
		}
	}
	return "", false
}

// OddsRangeStats is the success summary of one bucket
type OddsRangeStats struct {
	Range   OddsRange  `json:"range"`
	Bounds  OddsBounds `json:"bounds"`
	Count   int        `json:"count"`
	Success int        `json:"success"`
	Rate    float64    `json:"rate"`
}
