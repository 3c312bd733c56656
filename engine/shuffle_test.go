package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

func TestCommitProducesFullDeck(t *testing.T) {
	commitment, err := Commit("hand-1")
	require.NoError(t, err)

	assert.Len(t, commitment.Seed, 32)
	assert.Len(t, commitment.CardOrder, 52)
	assert.Len(t, commitment.Hash, 64)

	seen := make(map[models.Card]struct{})
	for _, card := range commitment.CardOrder {
		_, dup := seen[card]
		assert.False(t, dup, "card %s appears twice", card)
		seen[card] = struct{}{}
	}
}

func TestShuffleFromSeedIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	first := ShuffleFromSeed(seed)
	second := ShuffleFromSeed(seed)
	assert.Equal(t, first, second)

	seed[0] ^= 0xff
	different := ShuffleFromSeed(seed)
	assert.NotEqual(t, first, different)
}

func TestVerifyRoundTrip(t *testing.T) {
	commitment, err := Commit("hand-1")
	require.NoError(t, err)

	assert.True(t, Verify("hand-1", commitment.SeedHex(), commitment.CardOrder, commitment.Hash))

	// The hash binds the hand id.
	assert.False(t, Verify("hand-2", commitment.SeedHex(), commitment.CardOrder, commitment.Hash))
}

func TestVerifyRejectsTamperedOrder(t *testing.T) {
	commitment, err := Commit("hand-1")
	require.NoError(t, err)

	swapped := append([]models.Card(nil), commitment.CardOrder...)
	swapped[0], swapped[51] = swapped[51], swapped[0]
	assert.False(t, Verify("hand-1", commitment.SeedHex(), swapped, commitment.Hash))
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	commitment, err := Commit("hand-1")
	require.NoError(t, err)

	// Seed not hex, wrong length, truncated deck, duplicated card: all are
	// just invalid, never panics or errors.
	assert.False(t, Verify("hand-1", "zz", commitment.CardOrder, commitment.Hash))
	assert.False(t, Verify("hand-1", "deadbeef", commitment.CardOrder, commitment.Hash))
	assert.False(t, Verify("hand-1", commitment.SeedHex(), commitment.CardOrder[:51], commitment.Hash))

	dup := append([]models.Card(nil), commitment.CardOrder...)
	dup[1] = dup[0]
	assert.False(t, Verify("hand-1", commitment.SeedHex(), dup, commitment.Hash))
}

func TestCommitmentsAreUnique(t *testing.T) {
	a, err := Commit("hand-1")
	require.NoError(t, err)
	b, err := Commit("hand-1")
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash, b.Hash, "fresh seed per hand")
}
