package models

type Event struct {
	Event   string      `json:"event"`
	TableID string      `json:"tableId"`
	Data    interface{} `json:"data,omitempty"`
}

// DeckCommittedEvent publishes the commitment hash before any card is dealt.
type DeckCommittedEvent struct {
	HandID     string `json:"handId"`
	HandNumber int    `json:"handNumber"`
	CommitHash string `json:"commitHash"`
}

type ActionRequiredEvent struct {
	PlayerID string `json:"playerId"`
	Deadline string `json:"deadline"`
}

// HandFinishedEvent carries the payout and the revealed commitment so anyone
// can verify the deck was not tampered with after the hash was published.
type HandFinishedEvent struct {
	HandID     string   `json:"handId"`
	Winners    []Winner `json:"winners"`
	Seed       string   `json:"seed"`
	CardOrder  []Card   `json:"cardOrder"`
	CommitHash string   `json:"commitHash"`
}

type PlayerBustedEvent struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// IntegrityFailureEvent is emitted when a hand is aborted because the chip
// conservation check failed. It is surfaced for investigation, never swallowed.
type IntegrityFailureEvent struct {
	HandID  string `json:"handId"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
