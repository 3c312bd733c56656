package engine

import (
	"sort"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

// SettlePots partitions the hand's contributions into pot tiers. Distinct
// contribution levels are sorted ascending; each tier collects
// (level - previousLevel) from every player who contributed at least that
// much. Folded players' chips stay in the tier amounts but folded players are
// never eligible to win a tier. Tier 0 is the main pot.
func SettlePots(players []*models.Player) []models.SidePot {
	levels := contributionLevels(players)
	tiers := make([]models.SidePot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		count := 0
		eligible := make([]string, 0, len(players))
		for _, p := range players {
			if p == nil || p.TotalInvested < level {
				continue
			}
			count++
			if p.Status != models.StatusFolded && p.Status != models.StatusSittingOut {
				eligible = append(eligible, p.PlayerID)
			}
		}
		amount := (level - prev) * count
		prev = level
		if amount == 0 {
			continue
		}
		tiers = append(tiers, models.SidePot{Amount: amount, EligiblePlayers: eligible})
	}
	return tiers
}

// BuildPots is the snapshot view of SettlePots: first tier as the main pot,
// remaining tiers as side pots.
func BuildPots(players []*models.Player) models.Pot {
	tiers := SettlePots(players)
	if len(tiers) == 0 {
		return models.Pot{Main: 0, Side: []models.SidePot{}}
	}
	return models.Pot{Main: tiers[0].Amount, Side: tiers[1:]}
}

// DistributePots pays each tier to its best-ranked eligible player(s). Ties
// split evenly; the odd remainder chips go one each to the tied winners
// ordered clockwise starting from the first seat after the dealer button.
// Exactly one winner entry is emitted per player per tier.
func DistributePots(tiers []models.SidePot, players []*models.Player, communityCards []models.Card, dealerPos int) []models.Winner {
	winners := make([]models.Winner, 0, len(tiers))

	contenders := make([]*models.Player, 0, len(players))
	for _, p := range players {
		if p != nil && p.Status != models.StatusFolded && p.Status != models.StatusSittingOut {
			contenders = append(contenders, p)
		}
	}
	if len(contenders) == 0 {
		return winners
	}

	// Uncontested: the last player standing takes everything, no evaluation.
	if len(contenders) == 1 {
		total := 0
		for _, tier := range tiers {
			total += tier.Amount
		}
		winners = append(winners, models.Winner{
			PlayerID:   contenders[0].PlayerID,
			PlayerName: contenders[0].PlayerName,
			Amount:     total,
			HandRank:   "Winner by default",
			HandCards:  contenders[0].Cards,
		})
		return winners
	}

	ranks := make(map[string]HandRank, len(contenders))
	bySeat := make(map[string]*models.Player, len(contenders))
	for _, p := range contenders {
		seven := append(append([]models.Card{}, p.Cards...), communityCards...)
		ranks[p.PlayerID] = Evaluate(seven)
		bySeat[p.PlayerID] = p
	}

	// A tier funded only by players who have since folded has no eligible
	// winner of its own. Eligibility shrinks as levels rise, so such tiers
	// sit above every live one; their chips roll down into the deepest tier
	// that still has a live contender so every committed chip is paid out.
	paid := make([]models.SidePot, len(tiers))
	copy(paid, tiers)
	live := func(tier models.SidePot) bool {
		for _, id := range tier.EligiblePlayers {
			if _, ok := bySeat[id]; ok {
				return true
			}
		}
		return false
	}
	last := -1
	for i, tier := range paid {
		if live(tier) {
			last = i
		}
	}
	if last == -1 {
		// No contender contributed anywhere; split everything among them.
		ids := make([]string, 0, len(contenders))
		for _, p := range contenders {
			ids = append(ids, p.PlayerID)
		}
		total := 0
		for i := range paid {
			total += paid[i].Amount
			paid[i].Amount = 0
		}
		paid = append(paid, models.SidePot{Amount: total, EligiblePlayers: ids})
	} else {
		for i := range paid {
			if i != last && !live(paid[i]) {
				paid[last].Amount += paid[i].Amount
				paid[i].Amount = 0
			}
		}
	}

	for potIndex, tier := range paid {
		if tier.Amount == 0 {
			continue
		}
		best := make([]*models.Player, 0, len(tier.EligiblePlayers))
		for _, id := range tier.EligiblePlayers {
			p, ok := bySeat[id]
			if !ok {
				continue
			}
			if len(best) == 0 {
				best = append(best, p)
				continue
			}
			switch Compare(ranks[p.PlayerID], ranks[best[0].PlayerID]) {
			case 1:
				best = best[:0]
				best = append(best, p)
			case 0:
				best = append(best, p)
			}
		}
		if len(best) == 0 {
			continue
		}

		share := tier.Amount / len(best)
		odd := tier.Amount % len(best)
		ordered := orderClockwiseFromDealer(best, dealerPos, len(players))
		for i, p := range ordered {
			amount := share
			if i < odd {
				amount++
			}
			rank := ranks[p.PlayerID]
			winners = append(winners, models.Winner{
				PlayerID:   p.PlayerID,
				PlayerName: p.PlayerName,
				Amount:     amount,
				HandRank:   rank.String(),
				HandCards:  rank.Best,
				PotIndex:   potIndex,
			})
		}
	}
	return winners
}

// orderClockwiseFromDealer sorts tied winners by seat distance clockwise from
// the seat after the dealer button. This is the explicit odd-chip policy, not
// an accident of map iteration.
func orderClockwiseFromDealer(tied []*models.Player, dealerPos, numSeats int) []*models.Player {
	ordered := make([]*models.Player, len(tied))
	copy(ordered, tied)
	if numSeats == 0 {
		return ordered
	}
	distance := func(seat int) int {
		return ((seat - dealerPos - 1) % numSeats + numSeats) % numSeats
	}
	sort.Slice(ordered, func(i, j int) bool {
		return distance(ordered[i].SeatNumber) < distance(ordered[j].SeatNumber)
	})
	return ordered
}

func contributionLevels(players []*models.Player) []int {
	seen := make(map[int]struct{})
	levels := make([]int, 0, len(players))
	for _, p := range players {
		if p == nil || p.TotalInvested == 0 {
			continue
		}
		if _, ok := seen[p.TotalInvested]; ok {
			continue
		}
		seen[p.TotalInvested] = struct{}{}
		levels = append(levels, p.TotalInvested)
	}
	sort.Ints(levels)
	return levels
}
