package models

type PlayerStatus string

const (
	StatusActive     PlayerStatus = "active"
	StatusFolded     PlayerStatus = "folded"
	StatusAllIn      PlayerStatus = "allin"
	StatusSittingOut PlayerStatus = "sitting_out"
)

type Player struct {
	PlayerID          string       `json:"playerId"`
	PlayerName        string       `json:"playerName"`
	SeatNumber        int          `json:"seatNumber"`
	Chips             int          `json:"chips"`
	Status            PlayerStatus `json:"status"`
	Bet               int          `json:"bet"`
	Cards             []Card       `json:"cards,omitempty"`
	IsDealer          bool         `json:"isDealer"`
	IsSmallBlind      bool         `json:"isSmallBlind"`
	IsBigBlind        bool         `json:"isBigBlind"`
	LastAction        ActionType   `json:"lastAction,omitempty"`
	LastActionAmount  int          `json:"lastActionAmount,omitempty"`
	TotalInvested     int          `json:"totalInvested"`
	HasActedThisRound bool         `json:"-"`
	// LeavePending defers seat release to the next hand boundary so chips a
	// leaving player already committed stay in the pot they belong to.
	LeavePending bool `json:"-"`
	// JoinPending marks a seat taken while a hand was running; the player is
	// dealt in at the next hand boundary.
	JoinPending bool `json:"-"`
}

func NewPlayer(id, name string, seatNumber, chips int) *Player {
	return &Player{
		PlayerID:   id,
		PlayerName: name,
		SeatNumber: seatNumber,
		Chips:      chips,
		Status:     StatusActive,
		Cards:      make([]Card, 0, 2),
	}
}

func (p *Player) Reset() {
	p.Bet = 0
	p.Cards = make([]Card, 0, 2)
	p.IsDealer = false
	p.IsSmallBlind = false
	p.IsBigBlind = false
	p.LastAction = ""
	p.LastActionAmount = 0
	p.TotalInvested = 0
	p.HasActedThisRound = false
	if p.Status != StatusSittingOut && p.Chips > 0 {
		p.Status = StatusActive
	}
}

func (p *Player) AddChips(amount int) {
	p.Chips += amount
}

// PlaceBet commits chips to the pot, capped at the player's stack. A bet for
// the whole stack flips the player all-in. TotalInvested is the contribution
// record the pot accountant settles from.
func (p *Player) PlaceBet(amount int) {
	if amount >= p.Chips {
		amount = p.Chips
		p.Status = StatusAllIn
	}
	p.Chips -= amount
	p.Bet += amount
	p.TotalInvested += amount
}
