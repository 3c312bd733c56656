package engine

import (
	"sort"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

type HandCategory int

const (
	HighCard HandCategory = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (hc HandCategory) String() string {
	names := []string{"High Card", "One Pair", "Two Pair", "Three of a Kind", "Straight", "Flush", "Full House", "Four of a Kind", "Straight Flush", "Royal Flush"}
	return names[hc]
}

// HandRank is the evaluated strength of the best 5-card hand from a 7-card
// combination. Tiebreak holds the rank values that break ties within a
// category, most significant first (pair rank before kickers, and so on).
type HandRank struct {
	Category HandCategory  `json:"category"`
	Tiebreak []int         `json:"tiebreak"`
	Best     []models.Card `json:"best"`
}

func (hr HandRank) String() string {
	return hr.Category.String()
}

// Compare returns -1, 0 or 1 ordering a against b: category first, then the
// tiebreak vector telescoping through kickers in descending significance.
func Compare(a, b HandRank) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	for i := 0; i < len(a.Tiebreak) && i < len(b.Tiebreak); i++ {
		if a.Tiebreak[i] != b.Tiebreak[i] {
			if a.Tiebreak[i] > b.Tiebreak[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Evaluate classifies the best 5-card hand obtainable from the given cards
// (hole cards plus community, up to 7). Pure and deterministic.
func Evaluate(cards []models.Card) HandRank {
	sorted := make([]models.Card, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Value() > sorted[j].Value()
	})

	flushCards := findFlush(sorted)
	if flushCards != nil {
		if run, high := findStraight(flushCards); run != nil {
			if high == 14 {
				return HandRank{Category: RoyalFlush, Tiebreak: []int{high}, Best: run}
			}
			return HandRank{Category: StraightFlush, Tiebreak: []int{high}, Best: run}
		}
	}

	groups := rankGroups(sorted)

	if g := groupOfSize(groups, 4); g != nil {
		kickers := excludeRanks(sorted, g.value)
		best := append(append([]models.Card{}, g.cards...), kickers[0])
		return HandRank{
			Category: FourOfAKind,
			Tiebreak: []int{g.value, kickers[0].Value()},
			Best:     best,
		}
	}

	trips := groupsOfAtLeast(groups, 3)
	if len(trips) > 0 {
		pairValue := 0
		var pairCards []models.Card
		for _, g := range groups {
			if g.value == trips[0].value {
				continue
			}
			if len(g.cards) >= 2 {
				pairValue = g.value
				pairCards = g.cards[:2]
				break
			}
		}
		if pairValue > 0 {
			best := append(append([]models.Card{}, trips[0].cards[:3]...), pairCards...)
			return HandRank{
				Category: FullHouse,
				Tiebreak: []int{trips[0].value, pairValue},
				Best:     best,
			}
		}
	}

	if flushCards != nil {
		best := flushCards[:5]
		return HandRank{Category: Flush, Tiebreak: cardValues(best), Best: best}
	}

	if run, high := findStraight(sorted); run != nil {
		return HandRank{Category: Straight, Tiebreak: []int{high}, Best: run}
	}

	if len(trips) > 0 {
		kickers := excludeRanks(sorted, trips[0].value)
		best := append(append([]models.Card{}, trips[0].cards[:3]...), kickers[:2]...)
		return HandRank{
			Category: ThreeOfAKind,
			Tiebreak: []int{trips[0].value, kickers[0].Value(), kickers[1].Value()},
			Best:     best,
		}
	}

	pairs := groupsOfAtLeast(groups, 2)
	if len(pairs) >= 2 {
		kickers := excludeRanks(sorted, pairs[0].value, pairs[1].value)
		best := append(append([]models.Card{}, pairs[0].cards[:2]...), pairs[1].cards[:2]...)
		best = append(best, kickers[0])
		return HandRank{
			Category: TwoPair,
			Tiebreak: []int{pairs[0].value, pairs[1].value, kickers[0].Value()},
			Best:     best,
		}
	}

	if len(pairs) == 1 {
		kickers := excludeRanks(sorted, pairs[0].value)
		best := append(append([]models.Card{}, pairs[0].cards[:2]...), kickers[:3]...)
		return HandRank{
			Category: OnePair,
			Tiebreak: append([]int{pairs[0].value}, cardValues(kickers[:3])...),
			Best:     best,
		}
	}

	best := sorted[:5]
	return HandRank{Category: HighCard, Tiebreak: cardValues(best), Best: best}
}

type rankGroup struct {
	value int
	cards []models.Card
}

// rankGroups partitions sorted cards by rank, ordered by count descending then
// rank descending.
func rankGroups(sorted []models.Card) []rankGroup {
	byValue := make(map[int][]models.Card)
	for _, card := range sorted {
		byValue[card.Value()] = append(byValue[card.Value()], card)
	}
	groups := make([]rankGroup, 0, len(byValue))
	for value, cards := range byValue {
		groups = append(groups, rankGroup{value: value, cards: cards})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].cards) != len(groups[j].cards) {
			return len(groups[i].cards) > len(groups[j].cards)
		}
		return groups[i].value > groups[j].value
	})
	return groups
}

func groupOfSize(groups []rankGroup, n int) *rankGroup {
	for i := range groups {
		if len(groups[i].cards) == n {
			return &groups[i]
		}
	}
	return nil
}

func groupsOfAtLeast(groups []rankGroup, n int) []rankGroup {
	out := make([]rankGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.cards) >= n {
			out = append(out, g)
		}
	}
	return out
}

// findFlush returns the suited cards sorted descending when any suit holds
// five or more, nil otherwise.
func findFlush(sorted []models.Card) []models.Card {
	bySuit := make(map[models.Suit][]models.Card)
	for _, card := range sorted {
		bySuit[card.Suit] = append(bySuit[card.Suit], card)
	}
	for _, cards := range bySuit {
		if len(cards) >= 5 {
			return cards
		}
	}
	return nil
}

// findStraight locates the highest 5-card run among the given cards (sorted
// descending), treating the Ace as low for the wheel. Returns the run and its
// high card value.
func findStraight(sorted []models.Card) ([]models.Card, int) {
	byValue := make(map[int]models.Card, len(sorted))
	values := make([]int, 0, len(sorted))
	for _, card := range sorted {
		if _, seen := byValue[card.Value()]; !seen {
			byValue[card.Value()] = card
			values = append(values, card.Value())
		}
	}

	runLen := 1
	for i := 1; i < len(values); i++ {
		if values[i-1]-values[i] == 1 {
			runLen++
			if runLen == 5 {
				high := values[i-4]
				run := make([]models.Card, 0, 5)
				for v := high; v > high-5; v-- {
					run = append(run, byValue[v])
				}
				return run, high
			}
		} else {
			runLen = 1
		}
	}

	// Wheel: A-2-3-4-5 with the Ace playing low.
	if _, hasAce := byValue[14]; hasAce {
		run := make([]models.Card, 0, 5)
		for _, v := range []int{5, 4, 3, 2} {
			card, ok := byValue[v]
			if !ok {
				return nil, 0
			}
			run = append(run, card)
		}
		run = append(run, byValue[14])
		return run, 5
	}
	return nil, 0
}

// excludeRanks returns sorted cards whose value is not in the exclusion set,
// preserving descending order.
func excludeRanks(sorted []models.Card, exclude ...int) []models.Card {
	out := make([]models.Card, 0, len(sorted))
	for _, card := range sorted {
		skip := false
		for _, v := range exclude {
			if card.Value() == v {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, card)
		}
	}
	return out
}

func cardValues(cards []models.Card) []int {
	values := make([]int, len(cards))
	for i, card := range cards {
		values[i] = card.Value()
	}
	return values
}
