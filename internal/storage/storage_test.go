package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raydebug/puretexaspoker-sub003/engine"
	"github.com/raydebug/puretexaspoker-sub003/models"
)

func record(handID string, seq uint64) models.ActionRecord {
	return models.ActionRecord{
		ID:        handID + "-" + string(rune('a'+seq)),
		HandID:    handID,
		TableID:   "table-1",
		PlayerID:  "player-1",
		Phase:     models.PhasePreflop,
		Action:    models.ActionCall,
		Amount:    10,
		Sequence:  seq,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStoreActionLog(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.RecordAction(ctx, record("hand-1", 2)))
	require.NoError(t, store.RecordAction(ctx, record("hand-1", 1)))
	// Duplicate delivery of the same record is absorbed.
	require.NoError(t, store.RecordAction(ctx, record("hand-1", 1)))

	records, err := store.ListActions(ctx, "hand-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[0].Sequence)
	assert.Equal(t, uint64(2), records[1].Sequence)
}

func TestMemoryStoreCommitReveal(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CommitDeck(ctx, "table-1", "hand-1", "abc123"))

	c, err := store.GetDeckCommitment(ctx, "hand-1")
	require.NoError(t, err)
	assert.Equal(t, "abc123", c.Hash)
	assert.False(t, c.Revealed())
	assert.Empty(t, c.SeedHex)

	order := []string{"Ah", "Kd"}
	require.NoError(t, store.RevealDeck(ctx, "hand-1", "deadbeef", order))

	c, err = store.GetDeckCommitment(ctx, "hand-1")
	require.NoError(t, err)
	assert.True(t, c.Revealed())
	assert.Equal(t, "deadbeef", c.SeedHex)
	assert.Equal(t, order, c.CardOrder)

	err = store.RevealDeck(ctx, "hand-unknown", "deadbeef", order)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetDeckCommitment(ctx, "hand-unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

// flakyStore fails a configured number of times before succeeding.
type flakyStore struct {
	*MemoryStore
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyStore) RecordAction(ctx context.Context, record models.ActionRecord) error {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		return errors.New("connection reset")
	}
	return f.MemoryStore.RecordAction(ctx, record)
}

func TestAsyncWriterRetries(t *testing.T) {
	flaky := &flakyStore{MemoryStore: NewMemoryStore(), failures: 2}
	writer := NewAsyncWriter(flaky, log.New(io.Discard))

	writer.RecordAction(record("hand-1", 1))
	writer.Stop()

	records, err := flaky.ListActions(context.Background(), "hand-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	flaky.mu.Lock()
	assert.Equal(t, 3, flaky.calls)
	flaky.mu.Unlock()
}

func TestAsyncWriterDropsWritesAfterStop(t *testing.T) {
	store := NewMemoryStore()
	writer := NewAsyncWriter(store, log.New(io.Discard))
	writer.Stop()

	// A late engine write during shutdown is dropped, never a panic.
	writer.RecordAction(record("hand-1", 1))
	writer.Stop()

	records, err := store.ListActions(context.Background(), "hand-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAsyncWriterCommitRevealFlow(t *testing.T) {
	store := NewMemoryStore()
	writer := NewAsyncWriter(store, log.New(io.Discard))

	commitment, err := engine.Commit("hand-1")
	require.NoError(t, err)

	writer.CommitDeck("table-1", *commitment)
	writer.RevealDeck("hand-1", commitment.SeedHex(), commitment.CardOrder)
	writer.Stop()

	c, err := store.GetDeckCommitment(context.Background(), "hand-1")
	require.NoError(t, err)
	assert.Equal(t, commitment.Hash, c.Hash)
	assert.True(t, c.Revealed())
	assert.Len(t, c.CardOrder, 52)
}
