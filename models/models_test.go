package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardDeckHas52UniqueCards(t *testing.T) {
	deck := StandardDeck()
	require.Len(t, deck, 52)

	seen := make(map[Card]struct{})
	for _, card := range deck {
		_, dup := seen[card]
		assert.False(t, dup, "duplicate card %s", card)
		seen[card] = struct{}{}
	}
}

func TestDeckDealsFromCommittedOrder(t *testing.T) {
	order := StandardDeck()
	deck := NewDeckFromOrder(order)

	first, err := deck.Deal()
	require.NoError(t, err)
	assert.Equal(t, order[0], first)

	rest, err := deck.DealMultiple(51)
	require.NoError(t, err)
	assert.Equal(t, order[1:], rest)
	assert.Equal(t, 0, deck.CardsRemaining())

	_, err = deck.Deal()
	assert.Error(t, err, "an exhausted deck never reshuffles")
}

func TestParseCard(t *testing.T) {
	card, err := ParseCard("Ah")
	require.NoError(t, err)
	assert.Equal(t, Card{Rank: Ace, Suit: Hearts}, card)

	for _, bad := range []string{"", "A", "Ahh", "Xh", "Az", "ah"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseActionBoundary(t *testing.T) {
	action, err := ParseAction("raise", 40)
	require.NoError(t, err)
	assert.Equal(t, Action{Type: ActionRaise, Amount: 40}, action)

	// Fold ignores any amount.
	action, err = ParseAction("fold", 999)
	require.NoError(t, err)
	assert.Equal(t, Action{Type: ActionFold}, action)

	_, err = ParseAction("raise", 0)
	assertClass(t, err, ClassValidation, CodeInvalidAmount)
	_, err = ParseAction("bet", -5)
	assertClass(t, err, ClassValidation, CodeInvalidAmount)
	_, err = ParseAction("splash", 0)
	assertClass(t, err, ClassValidation, CodeInvalidAction)
}

func assertClass(t *testing.T, err error, class ErrorClass, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	ge, ok := AsGameError(err)
	require.True(t, ok)
	assert.Equal(t, class, ge.Class)
	assert.Equal(t, code, ge.Code)
}

func TestPlaceBetCapsAtStack(t *testing.T) {
	p := NewPlayer("alice", "alice", 0, 100)

	p.PlaceBet(40)
	assert.Equal(t, 60, p.Chips)
	assert.Equal(t, 40, p.Bet)
	assert.Equal(t, 40, p.TotalInvested)
	assert.Equal(t, StatusActive, p.Status)

	// Betting more than the stack commits exactly the stack and flips the
	// player all-in.
	p.PlaceBet(500)
	assert.Equal(t, 0, p.Chips)
	assert.Equal(t, 100, p.Bet)
	assert.Equal(t, 100, p.TotalInvested)
	assert.Equal(t, StatusAllIn, p.Status)
}

func TestPhaseCommunityCardCount(t *testing.T) {
	assert.Equal(t, 0, PhaseWaiting.CommunityCardCount())
	assert.Equal(t, 0, PhasePreflop.CommunityCardCount())
	assert.Equal(t, 3, PhaseFlop.CommunityCardCount())
	assert.Equal(t, 4, PhaseTurn.CommunityCardCount())
	assert.Equal(t, 5, PhaseRiver.CommunityCardCount())
	assert.Equal(t, 5, PhaseFinished.CommunityCardCount())
}
