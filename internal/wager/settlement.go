package wager

import (
	"math"
	"sort"
)

// House edge percentage (kept by bot to prevent exploits)
const HouseEdge = 0.05

// Pools smaller than this keep the full pot distributable.
const houseEdgeMinPool = 100

// Bonus rates for pools without a real losing side to pay from.
const (
	soloBonusRate  = 0.25
	sweepBonusRate = 0.20
)

// Win-side payouts get a random boost drawn from this range.
const (
	multiplierMin = 1.05
	multiplierMax = 1.20
)

// Rand is the source for the win-side payout multiplier. Injectable so
// settlements can be reproduced with a seeded source.
type Rand interface {
	Float64() float64
}

// Payout is one bettor's settlement line.
type Payout struct {
	UserID string
	Side   Side
	Stake  int
	Payout int
	Profit int
}

// ComputePayouts turns a pool's wagers plus the subject's match outcome into
// payouts. Pure except for the injected Rand. All amounts are integers and
// every proportional share or multiplier application is floored where it
// happens, so a couple units of the pot can go unpaid. That loss stays with
// the house and is never redistributed.
//
// The multiplier is drawn independently per winning bettor.
func ComputePayouts(wagers map[Side]map[string]int, outcome Side, rng Rand) []Payout {
	winners := wagers[outcome]
	losers := wagers[outcome.Other()]

	winTotal := sumStakes(winners)
	loseTotal := sumStakes(losers)
	total := winTotal + loseTotal
	if total == 0 {
		return nil
	}

	var payouts []Payout
	for userID, stake := range losers {
		payouts = append(payouts, Payout{
			UserID: userID,
			Side:   outcome.Other(),
			Stake:  stake,
			Payout: 0,
			Profit: -stake,
		})
	}

	// Everyone bet against the subject's actual result: all losers, the
	// house keeps the pot.
	if winTotal == 0 {
		sortPayouts(payouts)
		return payouts
	}

	switch {
	case len(winners)+len(losers) == 1:
		// Lone bettor, necessarily on the winning side: stake back plus a
		// consolation bonus.
		for userID, stake := range winners {
			bonus := minBonus(soloBonusRate, stake)
			if outcome == SideWin {
				bonus = int(math.Floor(float64(bonus) * drawMultiplier(rng)))
			}
			payouts = append(payouts, Payout{
				UserID: userID,
				Side:   outcome,
				Stake:  stake,
				Payout: stake + bonus,
				Profit: bonus,
			})
		}

	case loseTotal == 0:
		// Two or more bettors, all on the winning side: nothing to split,
		// each gets a flat refund bonus instead.
		for userID, stake := range winners {
			pay := stake + minBonus(sweepBonusRate, stake)
			if outcome == SideWin {
				pay = int(math.Floor(float64(pay) * drawMultiplier(rng)))
			}
			payouts = append(payouts, Payout{
				UserID: userID,
				Side:   outcome,
				Stake:  stake,
				Payout: pay,
				Profit: pay - stake,
			})
		}

	default:
		// Pari-mutuel split: winners divide the distributable pot in
		// proportion to stake.
		distributable := total
		if total >= houseEdgeMinPool {
			distributable = total - total*5/100
		}
		for userID, stake := range winners {
			share := distributable * stake / winTotal
			if outcome == SideWin {
				share = int(math.Floor(float64(share) * drawMultiplier(rng)))
			}
			payouts = append(payouts, Payout{
				UserID: userID,
				Side:   outcome,
				Stake:  stake,
				Payout: share,
				Profit: share - stake,
			})
		}
	}

	sortPayouts(payouts)
	return payouts
}

// minBonus is rate×stake rounded, but at least 1.
func minBonus(rate float64, stake int) int {
	bonus := int(math.Round(rate * float64(stake)))
	if bonus < 1 {
		bonus = 1
	}
	return bonus
}

// drawMultiplier picks a boost in [multiplierMin, multiplierMax], rounded to
// two decimals.
func drawMultiplier(rng Rand) float64 {
	m := multiplierMin + rng.Float64()*(multiplierMax-multiplierMin)
	return math.Round(m*100) / 100
}

func sumStakes(side map[string]int) int {
	total := 0
	for _, stake := range side {
		total += stake
	}
	return total
}

func sortPayouts(payouts []Payout) {
	sort.Slice(payouts, func(i, j int) bool {
		return payouts[i].UserID < payouts[j].UserID
	})
}
