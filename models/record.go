package models

import "time"

// ActionRecord is the append-only audit entry written after every accepted
// action. Records are never mutated once emitted.
type ActionRecord struct {
	ID           string     `json:"id"`
	HandID       string     `json:"handId"`
	TableID      string     `json:"tableId"`
	PlayerID     string     `json:"playerId"`
	SeatNumber   int        `json:"seatNumber"`
	Phase        Phase      `json:"phase"`
	Action       ActionType `json:"action"`
	Amount       int        `json:"amount"`
	ResultingPot int        `json:"resultingPot"`
	Sequence     uint64     `json:"sequence"`
	CreatedAt    time.Time  `json:"createdAt"`
}
