package engine

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

// Commitment binds a hand's full card order before any card is dealt. The
// hash is published immediately; seed and order stay secret until the hand
// finishes, then get revealed so anyone can re-derive the hash.
type Commitment struct {
	HandID    string
	Seed      []byte
	CardOrder []models.Card
	Hash      string
}

func (c *Commitment) SeedHex() string {
	return hex.EncodeToString(c.Seed)
}

// Commit generates a 256-bit random seed, derives the deterministic shuffle
// for it and returns the commitment hash over (handID, seed, card order).
func Commit(handID string) (*Commitment, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate commitment seed: %w", err)
	}
	order := ShuffleFromSeed(seed)
	return &Commitment{
		HandID:    handID,
		Seed:      seed,
		CardOrder: order,
		Hash:      commitHash(handID, seed, order),
	}, nil
}

// Verify recomputes the commitment hash for a revealed (seed, order) pair and
// compares it against the published one. It returns false on any mismatch,
// malformed seed or card order included; it never panics and never errors.
func Verify(handID string, seedHex string, order []models.Card, hash string) bool {
	seed, err := hex.DecodeString(seedHex)
	if err != nil || len(seed) != 32 {
		return false
	}
	if !isFullDeck(order) {
		return false
	}
	return commitHash(handID, seed, order) == hash
}

// ShuffleFromSeed runs a Fisher-Yates shuffle over the standard deck driven by
// a SHA-256 counter stream. The same seed always reproduces the same order.
func ShuffleFromSeed(seed []byte) []models.Card {
	cards := models.StandardDeck()
	stream := &seedStream{seed: seed}
	for i := len(cards) - 1; i > 0; i-- {
		j := stream.intn(uint64(i + 1))
		cards[i], cards[j] = cards[j], cards[i]
	}
	return cards
}

func commitHash(handID string, seed []byte, order []models.Card) string {
	h := sha256.New()
	h.Write([]byte(handID))
	h.Write([]byte{0})
	h.Write(seed)
	h.Write([]byte{0})
	for _, card := range order {
		h.Write([]byte(card.String()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func isFullDeck(order []models.Card) bool {
	if len(order) != 52 {
		return false
	}
	seen := make(map[models.Card]struct{}, 52)
	for _, card := range order {
		if card.Value() == 0 {
			return false
		}
		switch card.Suit {
		case models.Hearts, models.Diamonds, models.Clubs, models.Spades:
		default:
			return false
		}
		if _, dup := seen[card]; dup {
			return false
		}
		seen[card] = struct{}{}
	}
	return true
}

// seedStream yields uniform random indices from SHA-256(seed || counter)
// blocks, with rejection sampling to avoid modulo bias.
type seedStream struct {
	seed    []byte
	counter uint64
	buf     []byte
}

func (s *seedStream) next() uint64 {
	if len(s.buf) < 8 {
		h := sha256.New()
		h.Write(s.seed)
		var ctr [8]byte
		binary.BigEndian.PutUint64(ctr[:], s.counter)
		h.Write(ctr[:])
		s.counter++
		s.buf = h.Sum(nil)
	}
	v := binary.BigEndian.Uint64(s.buf[:8])
	s.buf = s.buf[8:]
	return v
}

func (s *seedStream) intn(n uint64) uint64 {
	limit := (^uint64(0) / n) * n
	for {
		v := s.next()
		if v < limit {
			return v % n
		}
	}
}
