package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

// MemoryStore keeps the audit log in process. Used by tests and by
// deployments that run without a database.
type MemoryStore struct {
	mu          sync.RWMutex
	actions     map[string][]models.ActionRecord
	commitments map[string]*DeckCommitment
	seats       map[string]map[int]*models.Player
	tables      map[string]models.Table
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		actions:     make(map[string][]models.ActionRecord),
		commitments: make(map[string]*DeckCommitment),
		seats:       make(map[string]map[int]*models.Player),
		tables:      make(map[string]models.Table),
	}
}

func (m *MemoryStore) RecordAction(_ context.Context, record models.ActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.actions[record.HandID] {
		if existing.ID == record.ID {
			return nil
		}
	}
	m.actions[record.HandID] = append(m.actions[record.HandID], record)
	return nil
}

func (m *MemoryStore) CommitDeck(_ context.Context, tableID, handID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.commitments[handID]; exists {
		return nil
	}
	m.commitments[handID] = &DeckCommitment{
		HandID:      handID,
		TableID:     tableID,
		Hash:        hash,
		CommittedAt: time.Now().UTC(),
	}
	return nil
}

func (m *MemoryStore) RevealDeck(_ context.Context, handID, seedHex string, cardOrder []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, exists := m.commitments[handID]
	if !exists {
		return ErrNotFound
	}
	now := time.Now().UTC()
	c.SeedHex = seedHex
	c.CardOrder = append([]string(nil), cardOrder...)
	c.RevealedAt = &now
	return nil
}

func (m *MemoryStore) GetDeckCommitment(_ context.Context, handID string) (*DeckCommitment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, exists := m.commitments[handID]
	if !exists {
		return nil, ErrNotFound
	}
	out := *c
	out.CardOrder = append([]string(nil), c.CardOrder...)
	if c.RevealedAt != nil {
		t := *c.RevealedAt
		out.RevealedAt = &t
	}
	return &out, nil
}

func (m *MemoryStore) ListActions(_ context.Context, handID string) ([]models.ActionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := append([]models.ActionRecord(nil), m.actions[handID]...)
	sort.Slice(records, func(i, j int) bool { return records[i].Sequence < records[j].Sequence })
	return records, nil
}

func (m *MemoryStore) UpsertSeat(_ context.Context, tableID string, seatNumber int, player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seats, exists := m.seats[tableID]
	if !exists {
		seats = make(map[int]*models.Player)
		m.seats[tableID] = seats
	}
	if player == nil {
		seats[seatNumber] = nil
		return nil
	}
	p := *player
	seats[seatNumber] = &p
	return nil
}

func (m *MemoryStore) UpsertTable(_ context.Context, snapshot models.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[snapshot.TableID] = snapshot
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
