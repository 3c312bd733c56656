package models

import "time"

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
	PhaseFinished Phase = "finished"
)

// CommunityCardCount is the deterministic card count for a phase (0/3/4/5).
func (p Phase) CommunityCardCount() int {
	switch p {
	case PhaseFlop:
		return 3
	case PhaseTurn:
		return 4
	case PhaseRiver, PhaseShowdown, PhaseFinished:
		return 5
	}
	return 0
}

type TableConfig struct {
	SmallBlind    int `json:"smallBlind"`
	BigBlind      int `json:"bigBlind"`
	MaxPlayers    int `json:"maxPlayers"`
	MinBuyIn      int `json:"minBuyIn,omitempty"`
	MaxBuyIn      int `json:"maxBuyIn,omitempty"`
	ActionTimeout int `json:"actionTimeout"`
}

type SidePot struct {
	Amount          int      `json:"amount"`
	EligiblePlayers []string `json:"eligiblePlayers"`
}

type Pot struct {
	Main int       `json:"main"`
	Side []SidePot `json:"side,omitempty"`
}

func (p Pot) Total() int {
	total := p.Main
	for _, sp := range p.Side {
		total += sp.Amount
	}
	return total
}

type CurrentHand struct {
	HandID             string     `json:"handId"`
	HandNumber         int        `json:"handNumber"`
	Phase              Phase      `json:"phase"`
	DealerPosition     int        `json:"dealerPosition"`
	SmallBlindPosition int        `json:"smallBlindPosition"`
	BigBlindPosition   int        `json:"bigBlindPosition"`
	CurrentPosition    int        `json:"currentPosition"`
	CommunityCards     []Card     `json:"communityCards"`
	BurnedCards        []Card     `json:"-"`
	Pot                Pot        `json:"pot"`
	CurrentBet         int        `json:"currentBet"`
	MinRaise           int        `json:"minRaise"`
	DeckCommitHash     string     `json:"deckCommitHash,omitempty"`
	ActionDeadline     *time.Time `json:"actionDeadline,omitempty"`
	ActionSequence     uint64     `json:"actionSequence"`
}

type Winner struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Amount     int    `json:"amount"`
	HandRank   string `json:"handRank"`
	HandCards  []Card `json:"handCards,omitempty"`
	PotIndex   int    `json:"potIndex"`
}

type Table struct {
	TableID     string       `json:"tableId"`
	Config      TableConfig  `json:"config"`
	CurrentHand *CurrentHand `json:"currentHand,omitempty"`
	Players     []*Player    `json:"players"`
	Winners     []Winner     `json:"winners,omitempty"`
	Deck        *Deck        `json:"-"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// HandInProgress reports whether a hand is between start and finish. Joins and
// seat changes are allowed at any time; hand-scoped mutations are not.
func (t *Table) HandInProgress() bool {
	if t.CurrentHand == nil {
		return false
	}
	switch t.CurrentHand.Phase {
	case PhaseWaiting, PhaseFinished:
		return false
	}
	return true
}
