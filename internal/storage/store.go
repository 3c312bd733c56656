package storage

import (
	"context"
	"errors"
	"time"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

// ErrNotFound is returned when a lookup misses.
var ErrNotFound = errors.New("storage: not found")

// DeckCommitment is the persisted fairness record for one hand. The hash is
// written before any card is dealt; seed and order are filled in at reveal.
type DeckCommitment struct {
	HandID      string
	TableID     string
	Hash        string
	SeedHex     string
	CardOrder   []string
	CommittedAt time.Time
	RevealedAt  *time.Time
}

// Revealed reports whether the seed and order have been published.
func (c *DeckCommitment) Revealed() bool {
	return c.RevealedAt != nil
}

// Store is the durable audit log behind the engine. Every method is
// synchronous; the write-behind wrapper adds queuing and retries on top.
type Store interface {
	RecordAction(ctx context.Context, record models.ActionRecord) error
	CommitDeck(ctx context.Context, tableID, handID, hash string) error
	RevealDeck(ctx context.Context, handID, seedHex string, cardOrder []string) error
	GetDeckCommitment(ctx context.Context, handID string) (*DeckCommitment, error)
	ListActions(ctx context.Context, handID string) ([]models.ActionRecord, error)
	UpsertSeat(ctx context.Context, tableID string, seatNumber int, player *models.Player) error
	UpsertTable(ctx context.Context, snapshot models.Table) error
	Close() error
}

// EncodeCardOrder flattens a dealt deck into its wire strings for storage.
func EncodeCardOrder(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
