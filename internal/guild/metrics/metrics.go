// Package metrics computes the derived figures of an expedition from its
// current assignment set. Everything here is pure; callers recompute on
// demand instead of caching.
package metrics

import "math"

// AdventurerInput is the slice of an adventurer the calculator cares about.
type AdventurerInput struct {
	DailyRate  int64
	Experience int
}

// Cost is the guild's total wage liability for the expedition:
// sum of dailyRate * estimatedDuration over the assigned adventurers.
// Equipment never enters the cost.
func Cost(adventurers []AdventurerInput, estimatedDuration int) int64 {
	var total int64
	for _, a := range adventurers {
		total += a.DailyRate * int64(estimatedDuration)
	}
	return total
}

// Contribution is one adventurer's share of the success estimate:
// min(recommendedXP, experience) / recommendedXP, clamped to [0,1].
// A recommendedXP of 0 yields 0 rather than dividing by zero.
func Contribution(experience, recommendedXP int) float64 {
	if recommendedXP <= 0 {
		return 0
	}
	if experience >= recommendedXP {
		return 1
	}
	if experience <= 0 {
		return 0
	}
	return float64(experience) / float64(recommendedXP)
}

// SuccessRate aggregates the contributions into a capped estimate in
// [0, 0.80], rounded to two decimals. The 0.8 factor in the denominator and
// the *80 scaling keep the maximum below 100% on purpose: equipment and
// luck are not modeled, so headroom stays reserved for them. An empty
// assignment set scores 0.
func SuccessRate(adventurers []AdventurerInput, recommendedXP int) float64 {
	if len(adventurers) == 0 {
		return 0
	}

	var sum float64
	for _, a := range adventurers {
		sum += Contribution(a.Experience, recommendedXP)
	}

	denom := math.Max(1, float64(len(adventurers))*0.8)
	ratio := math.Min(1, sum/denom)
	return math.Round(ratio*80) / 100
}

// Denominations is an integer amount of minor currency units broken into
// display denominations. The transform is exact and reversible.
type Denominations struct {
	Hundreds int64 `json:"hundreds"`
	Tens     int64 `json:"tens"`
	Units    int64 `json:"units"`
}

// DecomposeAmount splits amount into hundreds, tens and units:
// units = amount mod 10, tens = (amount/10) mod 10, hundreds = amount/100.
func DecomposeAmount(amount int64) Denominations {
	return Denominations{
		Hundreds: amount / 100,
		Tens:     (amount / 10) % 10,
		Units:    amount % 10,
	}
}

// ComposeAmount is the inverse of DecomposeAmount.
func ComposeAmount(d Denominations) int64 {
	return d.Hundreds*100 + d.Tens*10 + d.Units
}
